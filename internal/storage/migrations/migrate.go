package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
)

//go:embed sql/*.sql
var migrationsFS embed.FS

// Result reports the schema version before and after a run.
type Result struct {
	PreMigrationVersion  uint
	PostMigrationVersion uint
}

// Up applies every pending migration to the database behind dsn. It uses its own
// connection, which is closed before returning.
func Up(dsn string) (*Result, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres.WithInstance: %w", err)
	}

	source, err := iofs.New(migrationsFS, "sql")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("iofs.New: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate.NewWithInstance: %w", err)
	}
	defer m.Close()

	result := &Result{}
	result.PreMigrationVersion, err = version(m)
	if err != nil {
		return nil, fmt.Errorf("m.Version.preMigrationVersion: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return nil, fmt.Errorf("m.Up: %w", err)
	}

	result.PostMigrationVersion, err = version(m)
	if err != nil {
		return nil, fmt.Errorf("m.Version.postMigrationVersion: %w", err)
	}
	return result, nil
}

func version(m *migrate.Migrate) (uint, error) {
	v, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if dirty {
		return v, fmt.Errorf("schema version %d is dirty", v)
	}
	return v, nil
}
