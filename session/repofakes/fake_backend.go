package repofakes

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/flanux/bankportal/session"
)

var _ session.Backend = (*FakeBackend)(nil)

// FakeBackend is a scriptable session.Backend. Assign LoginFn/LogoutFn to
// control outcomes; call counts are tracked for assertions.
type FakeBackend struct {
	LoginFn  func(ctx context.Context, creds session.Credentials) (json.RawMessage, error)
	LogoutFn func(ctx context.Context, token session.Token) error

	lock         sync.Mutex
	loginCalls   int
	logoutCalls  int
	logoutTokens []session.Token
}

func NewFakeBackend() *FakeBackend {
	return &FakeBackend{}
}

func (b *FakeBackend) Login(ctx context.Context, creds session.Credentials) (json.RawMessage, error) {
	b.lock.Lock()
	b.loginCalls++
	b.lock.Unlock()
	if b.LoginFn == nil {
		return nil, nil
	}
	return b.LoginFn(ctx, creds)
}

func (b *FakeBackend) Logout(ctx context.Context, token session.Token) error {
	b.lock.Lock()
	b.logoutCalls++
	b.logoutTokens = append(b.logoutTokens, token)
	b.lock.Unlock()
	if b.LogoutFn == nil {
		return nil
	}
	return b.LogoutFn(ctx, token)
}

func (b *FakeBackend) LoginCalls() int {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.loginCalls
}

func (b *FakeBackend) LogoutCalls() int {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.logoutCalls
}
