package apiclient_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flanux/bankportal/apiclient"
	"github.com/flanux/bankportal/internal/errors"
	"github.com/flanux/bankportal/session"
	"github.com/flanux/bankportal/session/repofakes"
)

func authedStore(t *testing.T) (*session.Store, *repofakes.FakeKeyValueRepo) {
	t.Helper()

	backend := repofakes.NewFakeBackend()
	backend.LoginFn = func(ctx context.Context, creds session.Credentials) (json.RawMessage, error) {
		return json.RawMessage(`{"accessToken": "tok123", "user": {"id": 1, "username": "jane", "role": "TELLER"}}`), nil
	}
	storage := repofakes.NewFakeKeyValueRepo()
	store, err := session.NewStore(backend, storage)
	require.NoError(t, err)
	require.NoError(t, store.Login(context.Background(), session.Credentials{Username: "jane", Password: "pw"}))
	return store, storage
}

func emptyStore(t *testing.T) *session.Store {
	t.Helper()
	store, err := session.NewStore(repofakes.NewFakeBackend(), repofakes.NewFakeKeyValueRepo())
	require.NoError(t, err)
	return store
}

func TestBearerAttachedWhenAuthenticated(t *testing.T) {
	store, _ := authedStore(t)

	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client := apiclient.New(srv.URL, store)
	_, err := client.Accounts(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Bearer tok123", gotAuth)
}

func TestRequestUnmodifiedWithoutSession(t *testing.T) {
	store := emptyStore(t)

	var sawAuthHeader bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawAuthHeader = r.Header["Authorization"]
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client := apiclient.New(srv.URL, store)
	_, err := client.Accounts(context.Background())
	require.NoError(t, err)
	require.False(t, sawAuthHeader)
}

func TestUnauthorizedResponseInvalidatesSession(t *testing.T) {
	store, storage := authedStore(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := apiclient.New(srv.URL, store)
	_, err := client.Accounts(context.Background())
	require.ErrorIs(t, err, errors.ErrUnauthorized)

	require.Nil(t, store.Current())
	require.Equal(t, session.StateUnauthenticated, store.State())
	require.False(t, storage.Has(session.TokenKey))
	require.False(t, storage.Has(session.PrincipalKey))
}

func TestConcurrentUnauthorizedResponsesCollapseToOneTeardown(t *testing.T) {
	store, _ := authedStore(t)

	var transitions []session.Transition
	var transitionsMu sync.Mutex
	store.Subscribe(func(tr session.Transition) {
		transitionsMu.Lock()
		transitions = append(transitions, tr)
		transitionsMu.Unlock()
	})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := apiclient.New(srv.URL, store)

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			client.Accounts(context.Background()) //nolint:errcheck // all three fail identically
		}()
	}
	wg.Wait()

	// One Invalidating and one Unauthenticated transition, not three of each.
	transitionsMu.Lock()
	defer transitionsMu.Unlock()
	require.Len(t, transitions, 2)
	require.Equal(t, session.ReasonUnauthorized, transitions[0].Reason)
}

func TestAccountsDecode(t *testing.T) {
	store, _ := authedStore(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/accounts", r.URL.Path)
		w.Write([]byte(`[{"id":"a1","accountNumber":"ACC-001","type":"SAVINGS","balance":1250.50,"status":"active","customerId":"c1"}]`))
	}))
	defer srv.Close()

	client := apiclient.New(srv.URL, store)
	accounts, err := client.Accounts(context.Background())
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	require.Equal(t, "ACC-001", accounts[0].AccountNumber)
	require.Equal(t, 1250.50, accounts[0].Balance)
}

func TestServerErrorDoesNotTouchSession(t *testing.T) {
	store, _ := authedStore(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := apiclient.New(srv.URL, store)
	_, err := client.Accounts(context.Background())
	require.ErrorIs(t, err, errors.ErrInternal)
	require.NotNil(t, store.Current(), "a 500 is not an authorization failure")
}
