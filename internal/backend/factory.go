package backend

import (
	"fmt"

	"kharcha/internal/ledger"
	"kharcha/internal/ledger/memory"
	"kharcha/internal/storage"
)

// New builds the ledger store for the configured backend. The returned
// cleanup function releases any resources the store holds and is safe to
// call exactly once.
func New(cfg Config) (ledger.Store, func() error, error) {
	switch cfg.Type {
	case TypeMemory:
		return memory.New(), func() error { return nil }, nil
	case TypeSQLite:
		repo, err := storage.NewSQLiteRepository(cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("initialize sqlite backend: %w", err)
		}
		return repo, repo.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown backend type %q", cfg.Type)
	}
}
