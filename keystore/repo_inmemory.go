package keystore

import (
	"sync"

	"github.com/flanux/bankportal/internal/errors"
	"github.com/flanux/bankportal/session"
)

var _ session.KeyValueRepo = (*InMemoryRepo)(nil)

// InMemoryRepo is an in-memory implementation of session.KeyValueRepo.
// Nothing survives a restart; intended for tests and throwaway portals.
type InMemoryRepo struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewInMemoryRepo creates a new in-memory key/value repository
func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{values: make(map[string]string)}
}

func (r *InMemoryRepo) Get(key string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	value, ok := r.values[key]
	if !ok {
		return "", errors.ErrKeyNotFound
	}
	return value, nil
}

func (r *InMemoryRepo) Set(key, value string) error {
	if key == "" {
		return errors.Wrapf(errors.ErrInternal, "key is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values[key] = value
	return nil
}

func (r *InMemoryRepo) Delete(key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.values, key) // Already doesn't exist, no error
	return nil
}
