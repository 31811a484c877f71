// Package migrator applies the embedded schema migrations. SQL files are
// written against the cf_ prefix and rewritten for the configured one.
package migrator

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"
)

// Migration holds the up and down statements for one schema version.
type Migration struct {
	Version int
	UpSQL   string
	DownSQL string
}

// Migrator applies embedded SQL migrations for one driver and prefix.
type Migrator struct {
	migrations  []Migration
	TablePrefix string
	Driver      string
}

// New returns a Migrator for the driver with the given table prefix.
func New(driver, prefix string) *Migrator {
	var migs []Migration
	if driver == "postgres" {
		migs = postgresMigrations
	} else {
		migs = mysqlMigrations
	}
	migs = withPrefix(migs, prefix)
	return &Migrator{migrations: migs, TablePrefix: prefix, Driver: driver}
}

func withPrefix(migs []Migration, prefix string) []Migration {
	res := make([]Migration, len(migs))
	for i, m := range migs {
		m.UpSQL = strings.ReplaceAll(m.UpSQL, "cf_", prefix)
		m.DownSQL = strings.ReplaceAll(m.DownSQL, "cf_", prefix)
		res[i] = m
	}
	return res
}

func (m *Migrator) versionTable() string {
	return m.TablePrefix + "schema_version"
}

func (m *Migrator) ensureVersionTable(ctx context.Context, db *sql.DB) error {
	var q string
	if m.Driver == "postgres" {
		q = fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (version INTEGER PRIMARY KEY, applied_at TIMESTAMPTZ NOT NULL DEFAULT now())", pq.QuoteIdentifier(m.versionTable()))
	} else {
		q = fmt.Sprintf("CREATE TABLE IF NOT EXISTS `%s` (version INT PRIMARY KEY, applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP)", m.versionTable())
	}
	_, err := db.ExecContext(ctx, q)
	return err
}

// Current returns the highest applied version, zero when none is applied.
func (m *Migrator) Current(ctx context.Context, db *sql.DB) (int, error) {
	if err := m.ensureVersionTable(ctx, db); err != nil {
		return 0, err
	}
	var q string
	if m.Driver == "postgres" {
		q = fmt.Sprintf("SELECT MAX(version) FROM %s", pq.QuoteIdentifier(m.versionTable()))
	} else {
		q = fmt.Sprintf("SELECT MAX(version) FROM `%s`", m.versionTable())
	}
	var v sql.NullInt64
	if err := db.QueryRowContext(ctx, q).Scan(&v); err != nil {
		return 0, err
	}
	if !v.Valid {
		return 0, nil
	}
	return int(v.Int64), nil
}

// Up applies migrations until target. Zero means latest.
func (m *Migrator) Up(ctx context.Context, db *sql.DB, target int) error {
	cur, err := m.Current(ctx, db)
	if err != nil {
		return err
	}
	if target == 0 {
		target = m.migrations[len(m.migrations)-1].Version
	}
	for _, mig := range m.migrations {
		if mig.Version <= cur || mig.Version > target {
			continue
		}
		if err := m.apply(ctx, db, mig.UpSQL); err != nil {
			return fmt.Errorf("migrate up to %d: %w", mig.Version, err)
		}
		if err := m.record(ctx, db, mig.Version); err != nil {
			return err
		}
	}
	return nil
}

// Down reverts migrations until only target remains applied.
func (m *Migrator) Down(ctx context.Context, db *sql.DB, target int) error {
	cur, err := m.Current(ctx, db)
	if err != nil {
		return err
	}
	for i := len(m.migrations) - 1; i >= 0; i-- {
		mig := m.migrations[i]
		if mig.Version > cur || mig.Version <= target {
			continue
		}
		if err := m.apply(ctx, db, mig.DownSQL); err != nil {
			return fmt.Errorf("migrate down from %d: %w", mig.Version, err)
		}
		if err := m.unrecord(ctx, db, mig.Version); err != nil {
			return err
		}
	}
	return nil
}

func (m *Migrator) apply(ctx context.Context, db *sql.DB, src string) error {
	for _, stmt := range splitSQL(src) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (m *Migrator) record(ctx context.Context, db *sql.DB, version int) error {
	var q string
	if m.Driver == "postgres" {
		q = fmt.Sprintf("INSERT INTO %s (version) VALUES ($1)", pq.QuoteIdentifier(m.versionTable()))
	} else {
		q = fmt.Sprintf("INSERT INTO `%s` (version) VALUES (?)", m.versionTable())
	}
	_, err := db.ExecContext(ctx, q, version)
	return err
}

func (m *Migrator) unrecord(ctx context.Context, db *sql.DB, version int) error {
	var q string
	if m.Driver == "postgres" {
		q = fmt.Sprintf("DELETE FROM %s WHERE version=$1", pq.QuoteIdentifier(m.versionTable()))
	} else {
		q = fmt.Sprintf("DELETE FROM `%s` WHERE version=?", m.versionTable())
	}
	_, err := db.ExecContext(ctx, q, version)
	return err
}

// splitSQL breaks a migration file into individual statements. Dollar-quoted
// bodies and quoted literals keep their semicolons.
func splitSQL(src string) []string {
	var res []string
	var buf strings.Builder
	inQuote := false
	inDollar := false
	for i := 0; i < len(src); i++ {
		c := src[i]
		switch {
		case inDollar:
			buf.WriteByte(c)
			if c == '$' && i > 0 && strings.HasSuffix(buf.String(), "$$") {
				inDollar = false
			}
		case inQuote:
			buf.WriteByte(c)
			if c == '\'' {
				inQuote = false
			}
		case c == '\'':
			inQuote = true
			buf.WriteByte(c)
		case c == '$' && i+1 < len(src) && src[i+1] == '$':
			inDollar = true
			buf.WriteByte(c)
		case c == ';':
			stmt := strings.TrimSpace(buf.String())
			if stmt != "" {
				res = append(res, stmt)
			}
			buf.Reset()
		default:
			buf.WriteByte(c)
		}
	}
	if stmt := strings.TrimSpace(buf.String()); stmt != "" {
		res = append(res, stmt)
	}
	return res
}
