// Package mockbank is a local stand-in for the banking backend: seeded
// users, bearer-guarded read endpoints and both observed login response
// shapes. The portals develop and run their end-to-end tests against it.
package mockbank

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/flanux/bankportal/internal/config"
)

// Options configures the mock backend.
type Options struct {
	// Portal selects the login response shape: branch and central-bank
	// backends answer {accessToken, user}, the customer backend
	// {token, user}.
	Portal config.PortalKind

	// TokenSecret signs minted tokens. A default is used when empty.
	TokenSecret []byte

	// TokenExpiry defaults to one hour.
	TokenExpiry time.Duration

	// LoginRate throttles /auth/login. Defaults to 5/sec with burst 10.
	LoginRate  rate.Limit
	LoginBurst int
}

// Server is the mock banking backend.
type Server struct {
	router  chi.Router
	users   map[string]User // by username
	tokens  *tokenRegistry
	minter  *TokenMinter
	metrics *Collector
	portal  config.PortalKind
}

// New seeds the users and wires the router.
func New(opts Options) (*Server, error) {
	if len(opts.TokenSecret) == 0 {
		opts.TokenSecret = []byte("mockbank-dev-secret")
	}
	if opts.TokenExpiry == 0 {
		opts.TokenExpiry = time.Hour
	}
	if opts.LoginRate == 0 {
		opts.LoginRate = 5
		opts.LoginBurst = 10
	}
	if opts.Portal == "" {
		opts.Portal = config.PortalBranch
	}

	seeded, err := SeedUsers()
	if err != nil {
		return nil, err
	}
	users := make(map[string]User, len(seeded))
	for _, u := range seeded {
		users[u.Username] = u
	}

	s := &Server{
		users:   users,
		tokens:  newTokenRegistry(),
		minter:  NewTokenMinter(opts.TokenSecret, opts.TokenExpiry),
		metrics: NewCollector(prometheus.NewRegistry()),
		portal:  opts.Portal,
	}

	r := chi.NewRouter()
	r.Use(requestLogger)

	r.Route("/auth", func(r chi.Router) {
		r.With(loginRateLimit(rate.NewLimiter(opts.LoginRate, opts.LoginBurst))).
			Post("/login", s.handleLogin)
		r.Post("/logout", s.handleLogout)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Get("/accounts", s.handleAccounts)
		r.Get("/customers", s.handleCustomers)
	})

	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	s.router = r
	return s, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

type loginRequest struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	BranchCode string `json:"branchCode"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.metrics.RecordLoginFailure()
		http.Error(w, `{"error":"invalid_request"}`, http.StatusBadRequest)
		return
	}

	user, ok := s.users[req.Username]
	if !ok || !CheckPasswordHash(req.Password, user.PasswordHash) {
		s.metrics.RecordLoginFailure()
		http.Error(w, `{"error":"invalid_credentials"}`, http.StatusUnauthorized)
		return
	}

	token, err := s.minter.Mint(user)
	if err != nil {
		log.Error().Err(err).Msg("Failed to mint token")
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	s.tokens.register(token, user.ID)
	s.metrics.RecordLoginSuccess()

	tokenField := "accessToken"
	if s.portal == config.PortalCustomer {
		tokenField = "token"
	}
	response := map[string]interface{}{
		tokenField:  token,
		"tokenType": "Bearer",
		"expiresIn": 3600,
		"user":      user,
	}
	writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	authHeader := r.Header.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
		s.tokens.revoke(parts[1])
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAccounts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, []map[string]interface{}{
		{"id": "a1", "accountNumber": "ACC-001", "customerId": "c1", "customerName": "Priya Sharma", "type": "SAVINGS", "balance": 1250.50, "status": "active"},
		{"id": "a2", "accountNumber": "ACC-002", "customerId": "c1", "customerName": "Priya Sharma", "type": "CHECKING", "balance": 310.00, "status": "active"},
		{"id": "a3", "accountNumber": "ACC-003", "customerId": "c2", "customerName": "Tom Olsen", "type": "FIXED_DEPOSIT", "balance": 9000.00, "status": "frozen"},
	})
}

func (s *Server) handleCustomers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, []map[string]interface{}{
		{"id": "c1", "firstName": "Priya", "lastName": "Sharma", "email": "priya@example.com", "phone": "+44 20 7946 0001"},
		{"id": "c2", "firstName": "Tom", "lastName": "Olsen", "email": "tom@example.com", "phone": "+44 20 7946 0002"},
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}
