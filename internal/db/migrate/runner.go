// Package migrate applies the embedded SQL schema migrations with golang-migrate.
package migrate

import (
	"errors"
	"fmt"

	"dastyar-dashboard/internal/db"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// ErrNoChange is returned when the database is already at the target version.
var ErrNoChange = migrate.ErrNoChange

func newMigrator(dsn string) (*migrate.Migrate, error) {
	if dsn == "" {
		return nil, errors.New("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}
	src, err := iofs.New(db.Migrations, "migrations")
	if err != nil {
		return nil, fmt.Errorf("migrate source: %w", err)
	}
	return migrate.NewWithSourceInstance("iofs", src, dsn)
}

// Up applies all pending migrations. Returns ErrNoChange when the schema is
// already current.
func Up(dsn string) error {
	m, err := newMigrator(dsn)
	if err != nil {
		return err
	}
	defer func() { _, _ = m.Close() }()
	return m.Up()
}

// Down rolls back all applied migrations.
func Down(dsn string) error {
	m, err := newMigrator(dsn)
	if err != nil {
		return err
	}
	defer func() { _, _ = m.Close() }()
	return m.Down()
}

// Run dispatches on direction ("up" or "down"). ErrNoChange is swallowed so
// re-running against a current schema is not an error.
func Run(dsn string, direction string) error {
	var err error
	switch direction {
	case "up":
		err = Up(dsn)
	case "down":
		err = Down(dsn)
	default:
		return fmt.Errorf("direction must be up or down, got %q", direction)
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
