package apiclient

import (
	"net/http"

	"github.com/flanux/bankportal/session"
)

// SessionBinding is the slice of the session store the client needs: a
// synchronous read of the current session, and the forced-teardown hook.
type SessionBinding interface {
	Current() *session.Session
	Invalidate(reason session.Reason)
}

var _ http.RoundTripper = (*bearerTransport)(nil)

// bearerTransport decorates a RoundTripper with the credential policy: when
// a session exists the token goes out as a bearer Authorization header, and
// an authorization-failure response tears the session down. Requests with no
// session pass through unmodified (login itself is unauthenticated).
type bearerTransport struct {
	base    http.RoundTripper
	binding SessionBinding
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if sess := t.binding.Current(); sess != nil {
		// Clone per RoundTripper contract: the caller's request is not ours
		// to mutate.
		req = req.Clone(req.Context())
		req.Header.Set("Authorization", "Bearer "+string(sess.Token))
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		// Invalidate is idempotent, so concurrent 401s still collapse into
		// a single teardown.
		t.binding.Invalidate(session.ReasonUnauthorized)
	}
	return resp, nil
}
