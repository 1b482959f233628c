package config

import (
	"fmt"
	"strings"
)

const (
	// DriverPostgres stores the archive in PostgreSQL via lib/pq.
	DriverPostgres = "postgres"
	// DriverSQLite stores the archive in a local SQLite file via modernc.org/sqlite.
	DriverSQLite = "sqlite"
)

// ArchiveConfig holds the optional request archive database settings.
// An empty Driver disables the archive.
type ArchiveConfig struct {
	Driver         string `yaml:"driver" envconfig:"ARCHIVE_DRIVER"`
	Host           string `yaml:"host" envconfig:"DB_HOST"`
	Port           string `yaml:"port" envconfig:"DB_PORT"`
	User           string `yaml:"user" envconfig:"DB_USER"`
	Password       string `yaml:"password" envconfig:"DB_PASSWORD"`
	Name           string `yaml:"name" envconfig:"DB_NAME"`
	SSLMode        string `yaml:"sslmode" envconfig:"DB_SSLMODE"`
	Path           string `yaml:"path" envconfig:"ARCHIVE_SQLITE_PATH"`
	MaxConnections int    `yaml:"max_connections" envconfig:"DB_MAX_CONNECTIONS"`
	MigrationsDir  string `yaml:"migrations_dir" envconfig:"ARCHIVE_MIGRATIONS_DIR"`
}

// Enabled reports whether the archive should be wired.
func (c ArchiveConfig) Enabled() bool {
	return c.Driver != ""
}

func normalizeArchive(c *ArchiveConfig) error {
	c.Driver = strings.ToLower(strings.TrimSpace(c.Driver))
	switch c.Driver {
	case "":
		return nil
	case DriverPostgres:
		if c.Host == "" || c.Name == "" {
			return fmt.Errorf("archive.host and archive.name are required for driver %q", c.Driver)
		}
		if c.Port == "" {
			c.Port = "5432"
		}
		if c.SSLMode == "" {
			c.SSLMode = "disable"
		}
	case DriverSQLite:
		if c.Path == "" {
			c.Path = "clinicbot.db"
		}
	default:
		return fmt.Errorf("invalid archive.driver %q; allowed: postgres, sqlite", c.Driver)
	}
	if c.MaxConnections <= 0 {
		c.MaxConnections = 4
	}
	if c.MigrationsDir == "" {
		c.MigrationsDir = "migrations"
	}
	return nil
}
