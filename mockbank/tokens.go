package mockbank

import (
	"sync"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// TokenMinter issues HS256-signed JWTs. The portals treat them as opaque
// strings; the shape only exists so traffic looks like the real backend's.
type TokenMinter struct {
	secret []byte
	expiry time.Duration
}

// NewTokenMinter creates a minter signing with the given secret.
func NewTokenMinter(secret []byte, expiry time.Duration) *TokenMinter {
	return &TokenMinter{secret: secret, expiry: expiry}
}

// Mint creates an access token for the user.
func (m *TokenMinter) Mint(user User) (string, error) {
	claims := jwtlib.MapClaims{
		"iss":  "mockbank",
		"sub":  user.Username,
		"role": user.Role,
		"iat":  NowTimeFunc().Unix(),
		"exp":  NowTimeFunc().Add(m.expiry).Unix(),
		"jti":  uuid.New().String(),
	}
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", errors.Wrap(err, "[TokenMinter.Mint] token.SignedString")
	}
	return signed, nil
}

// tokenRegistry is the server-side session table: tokens are valid while
// registered, revoked on logout. Lookup by membership keeps the bearer check
// independent of the token's internal shape.
type tokenRegistry struct {
	mu     sync.RWMutex
	active map[string]int // token -> user ID
}

func newTokenRegistry() *tokenRegistry {
	return &tokenRegistry{active: make(map[string]int)}
}

func (r *tokenRegistry) register(token string, userID int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active[token] = userID
}

func (r *tokenRegistry) lookup(token string) (int, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	userID, ok := r.active[token]
	return userID, ok
}

func (r *tokenRegistry) revoke(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.active, token)
}
