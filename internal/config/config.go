package config

import (
	"context"
	"database/sql"
	"fmt"
)

// Config holds global configuration values.
type Config struct {
	TablePrefix string `env:"TABLE_PREFIX,default=cf_"`
}

// T prefixes the given table name with the configured prefix.
func (c *Config) T(name string) string {
	return c.TablePrefix + name
}

// CheckPrefix verifies that tables with the configured prefix exist in the
// connected database. It returns an error if none are found.
func CheckPrefix(ctx context.Context, db *sql.DB, driver, prefix string) error {
	q := "SELECT COUNT(*) FROM information_schema.tables WHERE table_name LIKE ?"
	if driver == "postgres" {
		q = "SELECT COUNT(*) FROM information_schema.tables WHERE table_name LIKE $1"
	}
	var cnt int
	if err := db.QueryRowContext(ctx, q, prefix+"%").Scan(&cnt); err != nil {
		return err
	}
	if cnt == 0 {
		return fmt.Errorf("no tables with prefix %q found; run migrations or set TABLE_PREFIX correctly", prefix)
	}
	return nil
}
