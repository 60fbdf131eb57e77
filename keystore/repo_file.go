// Package keystore provides session.KeyValueRepo implementations: a
// file-backed store standing in for the browser's localStorage, and an
// in-memory store for tests.
package keystore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"

	apperrors "github.com/flanux/bankportal/internal/errors"
	"github.com/flanux/bankportal/session"
)

const storeFileName = "session.json"

var _ session.KeyValueRepo = (*FileRepo)(nil)

// FileRepo persists key/value pairs as a single JSON file under the data
// folder. Writes go through a temp file and rename so a crash mid-write
// leaves either the old or the new content, never a torn file.
type FileRepo struct {
	mu   sync.Mutex
	path string
}

// NewFileRepo creates the data folder if needed and returns a repository
// backed by <dataFolder>/session.json.
func NewFileRepo(dataFolder string) (*FileRepo, error) {
	if dataFolder == "" {
		return nil, errors.New("[NewFileRepo] data folder is required")
	}
	if err := os.MkdirAll(dataFolder, 0o700); err != nil {
		return nil, errors.Wrap(err, "[NewFileRepo] os.MkdirAll")
	}
	return &FileRepo{path: filepath.Join(dataFolder, storeFileName)}, nil
}

func (r *FileRepo) Get(key string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	values, err := r.load()
	if err != nil {
		return "", err
	}
	value, ok := values[key]
	if !ok {
		return "", apperrors.ErrKeyNotFound
	}
	return value, nil
}

func (r *FileRepo) Set(key, value string) error {
	if key == "" {
		return errors.New("[FileRepo.Set] key is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	values, err := r.load()
	if err != nil {
		return err
	}
	values[key] = value
	return r.save(values)
}

func (r *FileRepo) Delete(key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	values, err := r.load()
	if err != nil {
		return err
	}
	if _, ok := values[key]; !ok {
		return nil // Already doesn't exist, no error
	}
	delete(values, key)
	return r.save(values)
}

func (r *FileRepo) load() (map[string]string, error) {
	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "[FileRepo.load] os.ReadFile")
	}
	values := map[string]string{}
	if err := json.Unmarshal(data, &values); err != nil {
		// A corrupt store is treated as empty; the session layer clears
		// partial state anyway.
		return map[string]string{}, nil
	}
	return values, nil
}

func (r *FileRepo) save(values map[string]string) error {
	data, err := json.Marshal(values)
	if err != nil {
		return errors.Wrap(err, "[FileRepo.save] json.Marshal")
	}
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return errors.Wrap(err, "[FileRepo.save] os.WriteFile")
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return errors.Wrap(err, "[FileRepo.save] os.Rename")
	}
	return nil
}
