package repofakes

import (
	"sync"

	"github.com/flanux/bankportal/internal/errors"
	"github.com/flanux/bankportal/session"
)

var _ session.KeyValueRepo = (*FakeKeyValueRepo)(nil)

// FakeKeyValueRepo is an in-memory KeyValueRepo with per-operation error
// injection for tests.
type FakeKeyValueRepo struct {
	values map[string]string
	lock   sync.RWMutex

	// Optional error injection
	SetErr    error
	DeleteErr error
}

func NewFakeKeyValueRepo() *FakeKeyValueRepo {
	return &FakeKeyValueRepo{values: make(map[string]string)}
}

func (r *FakeKeyValueRepo) Get(key string) (string, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	value, ok := r.values[key]
	if !ok {
		return "", errors.ErrKeyNotFound
	}
	return value, nil
}

func (r *FakeKeyValueRepo) Set(key, value string) error {
	if r.SetErr != nil {
		return r.SetErr
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	r.values[key] = value
	return nil
}

func (r *FakeKeyValueRepo) Delete(key string) error {
	if r.DeleteErr != nil {
		return r.DeleteErr
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	delete(r.values, key)
	return nil
}

// Has reports whether a key is present, for assertions.
func (r *FakeKeyValueRepo) Has(key string) bool {
	r.lock.RLock()
	defer r.lock.RUnlock()
	_, ok := r.values[key]
	return ok
}
