package session

import (
	"encoding/json"
	"unicode"

	"github.com/pkg/errors"

	apperrors "github.com/flanux/bankportal/internal/errors"
)

// rawLoginResponse is the backend's uncontrolled login payload. The two
// observed variants are {accessToken, user} (branch and central-bank
// backends) and {token, user} (customer backend). Unknown fields are
// ignored.
type rawLoginResponse struct {
	AccessToken string   `json:"accessToken"`
	Token       string   `json:"token"`
	User        *rawUser `json:"user"`
}

// rawUser extracts user fields loosely; json.Number tolerates backends that
// send ids as numbers or strings.
type rawUser struct {
	ID         json.Number `json:"id"`
	Username   string      `json:"username"`
	Name       string      `json:"name"`
	Email      string      `json:"email"`
	Role       string      `json:"role"`
	CustomerID json.Number `json:"customerId"`
	BranchID   json.Number `json:"branchId"`
}

// Normalize maps a raw backend login payload into a canonical Session.
// The token is extracted by first-match priority (accessToken, then token);
// a user object with id, username and role must be present. Anything else
// fails with errors.ErrMalformedResponse, never a partially-populated
// Session. IssuedAt is left for the Store to stamp.
func Normalize(raw []byte) (*Session, error) {
	var resp rawLoginResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, errors.Wrap(apperrors.ErrMalformedResponse, err.Error())
	}

	token := resp.AccessToken
	if token == "" {
		token = resp.Token
	}
	if token == "" {
		return nil, errors.Wrap(apperrors.ErrMalformedResponse, "no token field")
	}

	if resp.User == nil {
		return nil, errors.Wrap(apperrors.ErrMalformedResponse, "no user object")
	}
	user := resp.User
	if user.ID.String() == "" || user.Username == "" || user.Role == "" {
		return nil, errors.Wrap(apperrors.ErrMalformedResponse, "user missing id, username or role")
	}

	name := user.Name
	if name == "" {
		name = capitalize(user.Username)
	}

	return &Session{
		Principal: Principal{
			ID:         user.ID.String(),
			Username:   user.Username,
			Name:       name,
			Email:      user.Email,
			Role:       user.Role,
			CustomerID: user.CustomerID.String(),
			BranchID:   user.BranchID.String(),
		},
		Token: Token(token),
	}, nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	return string(unicode.ToUpper(runes[0])) + string(runes[1:])
}
