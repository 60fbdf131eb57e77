package session_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/flanux/bankportal/internal/errors"
	"github.com/flanux/bankportal/session"
	"github.com/flanux/bankportal/session/repofakes"
)

const (
	testToken    = "tok123"
	testUsername = "jane"
	testPassword = "password123"
)

var goodLoginBody = json.RawMessage(`{"accessToken": "tok123", "user": {"id": 1, "username": "jane", "role": "TELLER"}}`)

// testFixture holds all test dependencies
type testFixture struct {
	backend *repofakes.FakeBackend
	storage *repofakes.FakeKeyValueRepo
	store   *session.Store
}

func setupTestFixture(t *testing.T, options ...session.StoreOption) *testFixture {
	t.Helper()

	backend := repofakes.NewFakeBackend()
	backend.LoginFn = func(ctx context.Context, creds session.Credentials) (json.RawMessage, error) {
		return goodLoginBody, nil
	}
	storage := repofakes.NewFakeKeyValueRepo()

	store, err := session.NewStore(backend, storage, options...)
	require.NoError(t, err)

	return &testFixture{backend: backend, storage: storage, store: store}
}

func testCredentials() session.Credentials {
	return session.Credentials{Username: testUsername, Password: testPassword}
}

func TestNewStoreRequiresDependencies(t *testing.T) {
	_, err := session.NewStore(nil, repofakes.NewFakeKeyValueRepo())
	require.Error(t, err)

	_, err = session.NewStore(repofakes.NewFakeBackend(), nil)
	require.Error(t, err)
}

func TestLoginSuccess(t *testing.T) {
	issued := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	f := setupTestFixture(t, session.WithNowTime(func() time.Time { return issued }))

	err := f.store.Login(context.Background(), testCredentials())
	require.NoError(t, err)

	require.Equal(t, session.StateAuthenticated, f.store.State())
	sess := f.store.Current()
	require.NotNil(t, sess)
	require.Equal(t, session.Token(testToken), sess.Token)
	require.Equal(t, "TELLER", sess.Principal.Role)
	require.Equal(t, issued, sess.IssuedAt)

	// Both storage keys written together
	token, err := f.storage.Get(session.TokenKey)
	require.NoError(t, err)
	require.Equal(t, testToken, token)
	principalJSON, err := f.storage.Get(session.PrincipalKey)
	require.NoError(t, err)
	var principal session.Principal
	require.NoError(t, json.Unmarshal([]byte(principalJSON), &principal))
	require.Equal(t, testUsername, principal.Username)
}

func TestLoginInvalidCredentials(t *testing.T) {
	f := setupTestFixture(t)
	f.backend.LoginFn = func(ctx context.Context, creds session.Credentials) (json.RawMessage, error) {
		return nil, errors.ErrInvalidCredentials
	}

	err := f.store.Login(context.Background(), testCredentials())
	require.ErrorIs(t, err, errors.ErrInvalidCredentials)
	require.Equal(t, session.StateUnauthenticated, f.store.State())
	require.Nil(t, f.store.Current())
	require.False(t, f.storage.Has(session.TokenKey))
	require.False(t, f.storage.Has(session.PrincipalKey))
}

func TestLoginNetworkFailure(t *testing.T) {
	f := setupTestFixture(t)
	f.backend.LoginFn = func(ctx context.Context, creds session.Credentials) (json.RawMessage, error) {
		return nil, errors.Wrapf(errors.ErrNetworkFailure, "connection refused")
	}

	err := f.store.Login(context.Background(), testCredentials())
	require.ErrorIs(t, err, errors.ErrNetworkFailure)
	require.Equal(t, session.StateUnauthenticated, f.store.State())
}

func TestLoginMalformedResponseLeavesNoPartialSession(t *testing.T) {
	f := setupTestFixture(t)
	f.backend.LoginFn = func(ctx context.Context, creds session.Credentials) (json.RawMessage, error) {
		return json.RawMessage(`{"accessToken": "tok-only"}`), nil
	}

	err := f.store.Login(context.Background(), testCredentials())
	require.ErrorIs(t, err, errors.ErrMalformedResponse)
	require.Nil(t, f.store.Current())
	require.False(t, f.storage.Has(session.TokenKey))
	require.False(t, f.storage.Has(session.PrincipalKey))
}

func TestLoginRejectsConcurrentAttempt(t *testing.T) {
	f := setupTestFixture(t)

	entered := make(chan struct{})
	release := make(chan struct{})
	f.backend.LoginFn = func(ctx context.Context, creds session.Credentials) (json.RawMessage, error) {
		close(entered)
		<-release
		return goodLoginBody, nil
	}

	var wg sync.WaitGroup
	var firstErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		firstErr = f.store.Login(context.Background(), testCredentials())
	}()

	<-entered
	err := f.store.Login(context.Background(), testCredentials())
	require.ErrorIs(t, err, errors.ErrLoginInProgress)

	close(release)
	wg.Wait()
	require.NoError(t, firstErr)
	require.Equal(t, session.StateAuthenticated, f.store.State())
}

func TestStaleLoginResponseIsDiscarded(t *testing.T) {
	f := setupTestFixture(t)

	entered := make(chan struct{})
	release := make(chan struct{})
	staleBody := json.RawMessage(`{"accessToken": "stale-token", "user": {"id": 1, "username": "old", "role": "TELLER"}}`)
	f.backend.LoginFn = func(ctx context.Context, creds session.Credentials) (json.RawMessage, error) {
		close(entered)
		<-release
		return staleBody, nil
	}

	var wg sync.WaitGroup
	var staleErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		// The superseded attempt reports no outcome; it must simply not
		// mutate state.
		staleErr = f.store.Login(context.Background(), session.Credentials{Username: "old", Password: "pw"})
	}()

	<-entered
	// The user gives up on the slow attempt and starts over.
	f.store.Logout(context.Background())

	f.backend.LoginFn = func(ctx context.Context, creds session.Credentials) (json.RawMessage, error) {
		return json.RawMessage(`{"accessToken": "fresh-token", "user": {"id": 2, "username": "new", "role": "ADMIN"}}`), nil
	}
	require.NoError(t, f.store.Login(context.Background(), session.Credentials{Username: "new", Password: "pw"}))

	// Now let the first call's response arrive late.
	close(release)
	wg.Wait()
	require.NoError(t, staleErr)

	sess := f.store.Current()
	require.NotNil(t, sess)
	require.Equal(t, session.Token("fresh-token"), sess.Token)
	require.Equal(t, "new", sess.Principal.Username)

	token, err := f.storage.Get(session.TokenKey)
	require.NoError(t, err)
	require.Equal(t, "fresh-token", token)
}

func TestLogoutClearsLocallyEvenWhenServerCallFails(t *testing.T) {
	f := setupTestFixture(t)
	require.NoError(t, f.store.Login(context.Background(), testCredentials()))

	var sessionAlreadyCleared bool
	f.backend.LogoutFn = func(ctx context.Context, token session.Token) error {
		sessionAlreadyCleared = f.store.Current() == nil
		return errors.Wrapf(errors.ErrNetworkFailure, "connection reset")
	}

	f.store.Logout(context.Background())

	require.Nil(t, f.store.Current())
	require.Equal(t, session.StateUnauthenticated, f.store.State())
	require.False(t, f.storage.Has(session.TokenKey))
	require.False(t, f.storage.Has(session.PrincipalKey))

	require.Equal(t, 1, f.backend.LogoutCalls(), "best-effort server logout attempted")
	require.True(t, sessionAlreadyCleared, "local teardown precedes the server call")
}

func TestLogoutWithoutSessionIsQuiet(t *testing.T) {
	f := setupTestFixture(t)

	var notifications []session.Transition
	f.store.Subscribe(func(tr session.Transition) { notifications = append(notifications, tr) })

	f.store.Logout(context.Background())
	require.Empty(t, notifications)
	require.Equal(t, 0, f.backend.LogoutCalls())
}

func TestInvalidateIsIdempotent(t *testing.T) {
	f := setupTestFixture(t)
	require.NoError(t, f.store.Login(context.Background(), testCredentials()))

	var transitions []session.Transition
	f.store.Subscribe(func(tr session.Transition) { transitions = append(transitions, tr) })

	// Three concurrent requests all coming back 401 must drive exactly one
	// teardown.
	f.store.Invalidate(session.ReasonUnauthorized)
	f.store.Invalidate(session.ReasonUnauthorized)
	f.store.Invalidate(session.ReasonUnauthorized)

	require.Len(t, transitions, 2)
	require.Equal(t, session.StateInvalidating, transitions[0].To)
	require.Equal(t, session.StateUnauthenticated, transitions[1].To)
	require.Equal(t, session.ReasonUnauthorized, transitions[1].Reason)
	require.Nil(t, f.store.Current())
	require.False(t, f.storage.Has(session.TokenKey))
	require.Equal(t, 0, f.backend.LogoutCalls(), "invalidate makes no server call")
}

func TestHydrateRestoresPersistedSession(t *testing.T) {
	storage := repofakes.NewFakeKeyValueRepo()
	require.NoError(t, storage.Set(session.TokenKey, "persisted-token"))
	require.NoError(t, storage.Set(session.PrincipalKey, `{"id":"9","username":"amy","name":"Amy","role":"AUDITOR"}`))

	backend := repofakes.NewFakeBackend()
	store, err := session.NewStore(backend, storage)
	require.NoError(t, err)

	require.Equal(t, session.StateAuthenticated, store.State())
	sess := store.Current()
	require.NotNil(t, sess)
	require.Equal(t, session.Token("persisted-token"), sess.Token)
	require.Equal(t, "AUDITOR", sess.Principal.Role)
	require.Equal(t, 0, backend.LoginCalls(), "hydration must not contact the backend")
}

func TestHydrateClearsPartialStorage(t *testing.T) {
	tests := []struct {
		name  string
		setup func(storage *repofakes.FakeKeyValueRepo)
	}{
		{"token without principal", func(s *repofakes.FakeKeyValueRepo) {
			require.NoError(t, s.Set(session.TokenKey, "orphan-token"))
		}},
		{"principal without token", func(s *repofakes.FakeKeyValueRepo) {
			require.NoError(t, s.Set(session.PrincipalKey, `{"id":"1","username":"x","role":"Y"}`))
		}},
		{"corrupt principal", func(s *repofakes.FakeKeyValueRepo) {
			require.NoError(t, s.Set(session.TokenKey, "tok"))
			require.NoError(t, s.Set(session.PrincipalKey, "{not json"))
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			storage := repofakes.NewFakeKeyValueRepo()
			tc.setup(storage)

			store, err := session.NewStore(repofakes.NewFakeBackend(), storage)
			require.NoError(t, err)

			require.Equal(t, session.StateUnauthenticated, store.State())
			require.Nil(t, store.Current())
			require.False(t, storage.Has(session.TokenKey))
			require.False(t, storage.Has(session.PrincipalKey))
		})
	}
}

func TestSubscribersNotifiedInRegistrationOrder(t *testing.T) {
	f := setupTestFixture(t)

	var order []string
	f.store.Subscribe(func(tr session.Transition) { order = append(order, "first") })
	f.store.Subscribe(func(tr session.Transition) { order = append(order, "second") })
	f.store.Subscribe(func(tr session.Transition) { order = append(order, "third") })

	require.NoError(t, f.store.Login(context.Background(), testCredentials()))

	// Two transitions (→Authenticating, →Authenticated), FIFO within each.
	require.Equal(t, []string{"first", "second", "third", "first", "second", "third"}, order)
}

func TestSubscriberAddedDuringNotificationSkipsCurrentTransition(t *testing.T) {
	f := setupTestFixture(t)

	var lateCalls int
	var registered bool
	f.store.Subscribe(func(tr session.Transition) {
		if !registered {
			registered = true
			f.store.Subscribe(func(tr session.Transition) { lateCalls++ })
		}
	})

	require.NoError(t, f.store.Login(context.Background(), testCredentials()))

	// The late subscriber missed the Authenticating transition that
	// triggered its registration but saw the Authenticated one.
	require.Equal(t, 1, lateCalls)
}

func TestUnsubscribeStopsNotifications(t *testing.T) {
	f := setupTestFixture(t)

	var calls int
	id := f.store.Subscribe(func(tr session.Transition) { calls++ })
	f.store.Unsubscribe(id)

	require.NoError(t, f.store.Login(context.Background(), testCredentials()))
	require.Zero(t, calls)
}

func TestCurrentReturnsCopy(t *testing.T) {
	f := setupTestFixture(t)
	require.NoError(t, f.store.Login(context.Background(), testCredentials()))

	sess := f.store.Current()
	sess.Token = "tampered"
	require.Equal(t, session.Token(testToken), f.store.Current().Token)
}
