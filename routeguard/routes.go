package routeguard

// Route path constants
// All portal routes are defined here to ensure consistency and prevent typos
const (
	// Login screen, always renderable
	RouteLogin = "/login"

	// Protected views
	RouteDashboard    = "/dashboard"
	RouteCustomers    = "/customers"
	RouteAccounts     = "/accounts"
	RouteTransactions = "/transactions"
	RouteCards        = "/cards"
	RouteLoans        = "/loans"
	RouteReports      = "/reports"

	// Central-bank portal views
	RouteOverview   = "/overview"
	RouteBranches   = "/branches"
	RouteCompliance = "/compliance"
	RouteLiquidity  = "/liquidity"
	RoutePolicy     = "/policy"
	RouteAudit      = "/audit"
)
