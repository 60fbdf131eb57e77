package config

// PortalKind identifies which of the three portal frontends this process is.
// The branch portal sends a branch code with its login request; the customer
// portal's backend returns the token under a different field name.
type PortalKind string

const (
	PortalBranch      PortalKind = "branch"
	PortalCentralBank PortalKind = "central-bank"
	PortalCustomer    PortalKind = "customer"
)

type PortalConfig interface {
	GetPortalKind() PortalKind
}

type Portal struct{}

var _ PortalConfig = Portal{}

func (Portal) GetPortalKind() PortalKind {
	switch GetEnv(portalKindVar, string(PortalBranch)) {
	case string(PortalCentralBank):
		return PortalCentralBank
	case string(PortalCustomer):
		return PortalCustomer
	default:
		return PortalBranch
	}
}
