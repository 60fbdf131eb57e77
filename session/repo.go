package session

import (
	"context"
	"encoding/json"
)

// Storage keys for the persisted session. Written together on login and
// cleared together on logout/invalidate so that a token is never present
// without its principal, or vice versa.
const (
	TokenKey     = "authToken"
	PrincipalKey = "userData"
)

// Backend performs the authentication wire calls. Login returns the raw
// response body for normalization; implementations map a backend rejection
// to errors.ErrInvalidCredentials and a transport fault to
// errors.ErrNetworkFailure. Logout is best-effort and may be called with an
// empty token.
type Backend interface {
	Login(ctx context.Context, creds Credentials) (json.RawMessage, error)
	Logout(ctx context.Context, token Token) error
}

// KeyValueRepo is the persisted session storage. Get returns
// errors.ErrKeyNotFound for an absent key.
type KeyValueRepo interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}
