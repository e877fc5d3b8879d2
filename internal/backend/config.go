package backend

import (
	"fmt"

	"kharcha/internal/config"
)

// Type identifies a persistence backend.
type Type string

const (
	TypeMemory Type = "memory"
	TypeSQLite Type = "sqlite"
)

// Config carries the settings needed to build a backend.
type Config struct {
	Type       Type
	SQLitePath string
}

// FromAppConfig maps the application configuration to a backend config.
func FromAppConfig(cfg *config.Config) (Config, error) {
	switch Type(cfg.DataBackend) {
	case TypeMemory:
		return Config{Type: TypeMemory}, nil
	case TypeSQLite:
		return Config{Type: TypeSQLite, SQLitePath: cfg.SQLiteDBPath}, nil
	default:
		return Config{}, fmt.Errorf("unknown data backend %q", cfg.DataBackend)
	}
}
