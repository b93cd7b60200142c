package migrate

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strconv"
	"sync"

	"github.com/angelmondragon/accounts-backend/pkg/config"
	"github.com/pressly/goose/v3"
)

const DefaultDir = "pkg/migrate/migrations"

// embeddedDir is the path of the migrations inside the embedded FS.
const embeddedDir = "migrations"

//go:embed migrations/*.sql
var migrationsFS embed.FS

// goose keeps dialect and base FS in package globals.
var gooseMu sync.Mutex

// Dialect maps a relational store driver to its goose dialect.
func Dialect(driver string) (string, error) {
	switch driver {
	case config.StoreDriverPostgres:
		return "postgres", nil
	case config.StoreDriverSQLite:
		return "sqlite3", nil
	default:
		return "", fmt.Errorf("no migration dialect for store driver %q", driver)
	}
}

// Run executes a goose command against the embedded migrations.
func Run(ctx context.Context, db *sql.DB, driver string, command string, args ...string) error {
	if db == nil {
		return fmt.Errorf("db is required")
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()

	if err := prepare(driver); err != nil {
		return err
	}
	if err := goose.RunContext(ctx, command, db, embeddedDir, args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

// MigrateToVersion migrates up/down to the requested version by comparing current DB version.
func MigrateToVersion(ctx context.Context, db *sql.DB, driver string, targetVersion string) error {
	if targetVersion == "" {
		return fmt.Errorf("targetVersion is required")
	}
	target, err := strconv.ParseInt(targetVersion, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid version %q (expected YYYYMMDDHHMMSS): %w", targetVersion, err)
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()

	if err := prepare(driver); err != nil {
		return err
	}

	current, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return fmt.Errorf("get db version: %w", err)
	}

	switch {
	case current == target:
		return nil
	case current < target:
		if err := goose.UpToContext(ctx, db, embeddedDir, target); err != nil {
			return fmt.Errorf("goose up-to %d: %w", target, err)
		}
	default:
		if err := goose.DownToContext(ctx, db, embeddedDir, target); err != nil {
			return fmt.Errorf("goose down-to %d: %w", target, err)
		}
	}
	return nil
}

func prepare(driver string) error {
	dialect, err := Dialect(driver)
	if err != nil {
		return err
	}
	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	return nil
}
