// Package store persists the account as a single JSON document, rewritten
// wholesale at the end of each tick.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"trendbot/account"
	"trendbot/market"
)

// FileStore reads and writes the account document at a fixed path.
type FileStore struct {
	path         string
	startBalance float64
}

// NewFileStore creates a store for the given path. startBalance seeds the
// default account when no file exists yet.
func NewFileStore(path string, startBalance float64) *FileStore {
	return &FileStore{path: path, startBalance: startBalance}
}

// Load reads the account document, or returns a fresh default account when
// the file does not exist yet.
func (s *FileStore) Load() (*account.Account, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return account.New(s.startBalance), nil
		}
		return nil, fmt.Errorf("%w: read account file: %v", market.ErrPersistence, err)
	}

	acct := &account.Account{}
	if err := json.Unmarshal(data, acct); err != nil {
		return nil, fmt.Errorf("%w: parse account file: %v", market.ErrPersistence, err)
	}
	if acct.History == nil {
		acct.History = []account.ClosedTrade{}
	}
	if acct.OrderLog == nil {
		acct.OrderLog = []account.LogEntry{}
	}
	return acct, nil
}

// Save rewrites the account document atomically: marshal to a temp file in
// the same directory, fsync, then rename over the target. A concurrent
// reader never observes a half-written store, and a failed write leaves the
// previous document intact.
func (s *FileStore) Save(acct *account.Account) error {
	data, err := json.MarshalIndent(acct, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: marshal account: %v", market.ErrPersistence, err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".account-*.json")
	if err != nil {
		return fmt.Errorf("%w: create temp file: %v", market.ErrPersistence, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: write temp file: %v", market.ErrPersistence, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: sync temp file: %v", market.ErrPersistence, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: close temp file: %v", market.ErrPersistence, err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: replace account file: %v", market.ErrPersistence, err)
	}
	return nil
}

// Path returns the account file path.
func (s *FileStore) Path() string {
	return s.path
}
