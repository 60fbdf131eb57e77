package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	apperrors "github.com/flanux/bankportal/internal/errors"
)

// State is the session store's lifecycle state.
type State string

const (
	StateUnauthenticated State = "unauthenticated"
	StateAuthenticating  State = "authenticating"
	StateAuthenticated   State = "authenticated"
	StateInvalidating    State = "invalidating"
)

// Reason tags a state transition so subscribers can distinguish an explicit
// logout from a forced invalidation.
type Reason string

const (
	ReasonLogin        Reason = "login"
	ReasonLoginFailed  Reason = "login_failed"
	ReasonLogout       Reason = "logout"
	ReasonUnauthorized Reason = "unauthorized"
)

// Transition describes a single state change. Session is the session after
// the transition, nil when none.
type Transition struct {
	From    State
	To      State
	Reason  Reason
	Session *Session
}

// Subscriber receives state transitions in FIFO registration order.
type Subscriber func(Transition)

type subscription struct {
	id uuid.UUID
	fn Subscriber
}

// Store holds the single current session for the process. All session
// mutation flows through it: login, logout, forced invalidation and the
// hydrate step at construction. Every other component only reads through
// Current.
type Store struct {
	mu      sync.Mutex
	state   State
	current *Session
	gen     uint64 // bumped by every login issue, logout and invalidation
	subs    []subscription

	backend Backend
	storage KeyValueRepo
	nowTime func() time.Time // injectable for testing

	logoutTimeout time.Duration
}

// StoreOption modifies the Store at construction.
type StoreOption func(*Store)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) StoreOption {
	return func(s *Store) {
		s.nowTime = nowFunc
	}
}

// WithLogoutTimeout bounds the best-effort server-side logout call.
func WithLogoutTimeout(d time.Duration) StoreOption {
	return func(s *Store) {
		s.logoutTimeout = d
	}
}

// NewStore initializes the store and synchronously hydrates it from
// persisted storage: when both storage keys hold valid data the store starts
// Authenticated without contacting the backend. Partial or corrupt storage
// is cleared so the token-present ⇔ principal-present invariant holds.
func NewStore(backend Backend, storage KeyValueRepo, options ...StoreOption) (*Store, error) {
	if backend == nil {
		return nil, errors.New("[NewStore] backend is required")
	}
	if storage == nil {
		return nil, errors.New("[NewStore] storage repo is required")
	}

	store := &Store{
		state:         StateUnauthenticated,
		backend:       backend,
		storage:       storage,
		nowTime:       time.Now,
		logoutTimeout: 5 * time.Second,
	}
	for _, opt := range options {
		opt(store)
	}

	store.hydrate()
	return store, nil
}

// hydrate restores a persisted session. Runs before any subscriber can
// register, so no notification is emitted.
func (s *Store) hydrate() {
	token, tokenErr := s.storage.Get(TokenKey)
	principalJSON, principalErr := s.storage.Get(PrincipalKey)

	if tokenErr != nil || principalErr != nil || token == "" {
		s.clearStorage()
		return
	}

	var principal Principal
	if err := json.Unmarshal([]byte(principalJSON), &principal); err != nil {
		log.Warn().Err(err).Msg("Discarding corrupt persisted session")
		s.clearStorage()
		return
	}

	s.current = &Session{Principal: principal, Token: Token(token)}
	s.state = StateAuthenticated
}

// Login authenticates against the backend. At most one login may be in
// flight; a second call while one is outstanding fails fast with
// errors.ErrLoginInProgress. A completion whose generation has been
// superseded by a later login, logout or invalidation is discarded without
// mutating state.
func (s *Store) Login(ctx context.Context, creds Credentials) error {
	s.mu.Lock()
	if s.state == StateAuthenticating {
		s.mu.Unlock()
		return apperrors.ErrLoginInProgress
	}
	s.gen++
	gen := s.gen
	t := s.transitionLocked(StateAuthenticating, ReasonLogin, s.current)
	subs := s.subsSnapshotLocked()
	s.mu.Unlock()
	s.notify(subs, t)

	raw, err := s.backend.Login(ctx, creds)

	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		log.Debug().Msg("Discarding superseded login response")
		return nil
	}

	if err != nil {
		t := s.loginFailedLocked()
		subs := s.subsSnapshotLocked()
		s.mu.Unlock()
		s.notify(subs, t)
		return errors.Wrap(err, "[Store.Login] backend.Login")
	}

	sess, err := Normalize(raw)
	if err != nil {
		t := s.loginFailedLocked()
		subs := s.subsSnapshotLocked()
		s.mu.Unlock()
		s.notify(subs, t)
		log.Error().Err(err).Msg("Login response failed normalization")
		return errors.Wrap(err, "[Store.Login] Normalize")
	}
	sess.IssuedAt = s.nowTime()

	s.current = sess
	s.persistLocked(sess)
	t = s.transitionLocked(StateAuthenticated, ReasonLogin, sess)
	subs = s.subsSnapshotLocked()
	s.mu.Unlock()
	s.notify(subs, t)
	return nil
}

// Logout unconditionally clears the in-memory session and both storage keys
// first, then notifies the backend on a best-effort basis. The server call's
// failure is logged and never rolls back the local teardown, which has
// already happened by the time the call is issued.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	s.gen++
	token := Token("")
	if s.current != nil {
		token = s.current.Token
	}
	hadSession := s.state != StateUnauthenticated
	s.current = nil
	s.clearStorage()

	var transitions []Transition
	if hadSession {
		transitions = append(transitions, s.transitionLocked(StateInvalidating, ReasonLogout, nil))
		transitions = append(transitions, s.transitionLocked(StateUnauthenticated, ReasonLogout, nil))
	} else {
		s.state = StateUnauthenticated
	}
	subs := s.subsSnapshotLocked()
	s.mu.Unlock()
	for _, t := range transitions {
		s.notify(subs, t)
	}

	if token == "" {
		return
	}
	// Local state is already gone; this can only ever fail harmlessly.
	logoutCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.logoutTimeout)
	defer cancel()
	if err := s.backend.Logout(logoutCtx, token); err != nil {
		log.Warn().Err(err).Msg("Best-effort server logout failed")
	}
}

// Invalidate is the forced-teardown path taken when an authorized call comes
// back rejected. It is idempotent: a call while already Unauthenticated or
// Invalidating is a no-op, so concurrent failing requests collapse to a
// single transition. No server call is made.
func (s *Store) Invalidate(reason Reason) {
	s.mu.Lock()
	if s.state == StateUnauthenticated || s.state == StateInvalidating {
		s.mu.Unlock()
		return
	}
	s.gen++
	s.current = nil
	s.clearStorage()
	t1 := s.transitionLocked(StateInvalidating, reason, nil)
	t2 := s.transitionLocked(StateUnauthenticated, reason, nil)
	subs := s.subsSnapshotLocked()
	s.mu.Unlock()
	s.notify(subs, t1)
	s.notify(subs, t2)
}

// Current returns a copy of the active session, or nil. Never blocks on the
// network.
func (s *Store) Current() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	sess := *s.current
	return &sess
}

// State returns the store's lifecycle state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// IsAuthenticated reports whether a session is active.
func (s *Store) IsAuthenticated() bool {
	return s.Current() != nil
}

// Subscribe registers fn for every subsequent state transition.
// Notification order is FIFO by registration; a subscriber added during a
// notification callback is not invoked for that same transition.
func (s *Store) Subscribe(fn Subscriber) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New()
	s.subs = append(s.subs, subscription{id: id, fn: fn})
	return id
}

// Unsubscribe removes a previously registered subscriber.
func (s *Store) Unsubscribe(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sub := range s.subs {
		if sub.id == id {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			return
		}
	}
}

// loginFailedLocked tears down whatever session the failed attempt may have
// been replacing; the state and the presence of a session always agree.
func (s *Store) loginFailedLocked() Transition {
	s.current = nil
	s.clearStorage()
	return s.transitionLocked(StateUnauthenticated, ReasonLoginFailed, nil)
}

func (s *Store) transitionLocked(to State, reason Reason, sess *Session) Transition {
	t := Transition{From: s.state, To: to, Reason: reason}
	if sess != nil {
		copySess := *sess
		t.Session = &copySess
	}
	s.state = to
	return t
}

func (s *Store) subsSnapshotLocked() []subscription {
	snapshot := make([]subscription, len(s.subs))
	copy(snapshot, s.subs)
	return snapshot
}

func (s *Store) notify(subs []subscription, t Transition) {
	for _, sub := range subs {
		sub.fn(t)
	}
}

// persistLocked writes both storage keys together. Persistence is
// best-effort: a storage fault is logged and does not fail the login.
func (s *Store) persistLocked(sess *Session) {
	principalJSON, err := json.Marshal(sess.Principal)
	if err != nil {
		log.Error().Err(err).Msg("Failed to serialize principal")
		return
	}
	if err := s.storage.Set(TokenKey, string(sess.Token)); err != nil {
		log.Error().Err(err).Msg("Failed to persist token")
		return
	}
	if err := s.storage.Set(PrincipalKey, string(principalJSON)); err != nil {
		log.Error().Err(err).Msg("Failed to persist principal")
	}
}

// clearStorage deletes both keys, attempting each even if the other fails.
func (s *Store) clearStorage() {
	if err := s.storage.Delete(TokenKey); err != nil && !apperrors.Is(err, apperrors.ErrKeyNotFound) {
		log.Warn().Err(err).Msg("Failed to clear persisted token")
	}
	if err := s.storage.Delete(PrincipalKey); err != nil && !apperrors.Is(err, apperrors.ErrKeyNotFound) {
		log.Warn().Err(err).Msg("Failed to clear persisted principal")
	}
}
