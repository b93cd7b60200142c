package migrate_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/angelmondragon/accounts-backend/pkg/config"
	"github.com/angelmondragon/accounts-backend/pkg/db"
	"github.com/angelmondragon/accounts-backend/pkg/migrate"
)

func TestUsersMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_users.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no users migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	for _, check := range []string{
		"CREATE TABLE IF NOT EXISTS users",
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_users_email ON users (email)",
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_users_phone_number ON users (phone_number)",
		"DROP TABLE IF EXISTS users",
	} {
		if !strings.Contains(content, check) {
			t.Fatalf("migration missing %q", check)
		}
	}
}

func TestValidateDir(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("ValidateDir: %v", err)
	}
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()
	path, err := migrate.CreateSQLMigration(dir, "Add Users Index!")
	if err != nil {
		t.Fatalf("CreateSQLMigration: %v", err)
	}
	if !strings.HasSuffix(path, "_add_users_index.sql") {
		t.Fatalf("unexpected path %q", path)
	}
	if err := migrate.ValidateDir(dir); err != nil {
		t.Fatalf("generated migration should validate: %v", err)
	}
}

func TestRun_SQLiteUpAndDown(t *testing.T) {
	ctx := context.Background()
	client, err := db.New(ctx, config.StoreDriverSQLite, config.DBConfig{SQLitePath: "file::memory:"}, nil)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer client.Close()

	sqlDB, err := client.SQL()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}

	if err := migrate.Run(ctx, sqlDB, config.StoreDriverSQLite, "up"); err != nil {
		t.Fatalf("up: %v", err)
	}
	if _, err := sqlDB.ExecContext(ctx, `INSERT INTO users (id, first_name, last_name, display_name, email, password_hash, created_at) VALUES ('1', 'Jane', 'Doe', 'Jane Doe', 'jane@example.com', 'x', CURRENT_TIMESTAMP)`); err != nil {
		t.Fatalf("insert after up: %v", err)
	}
	_, err = sqlDB.ExecContext(ctx, `INSERT INTO users (id, first_name, last_name, display_name, email, password_hash, created_at) VALUES ('2', 'Jane', 'Doe', 'Jane Doe', 'jane@example.com', 'x', CURRENT_TIMESTAMP)`)
	if !db.IsUniqueViolation(err, "users.email") {
		t.Fatalf("expected unique violation on email, got %v", err)
	}

	if err := migrate.Run(ctx, sqlDB, config.StoreDriverSQLite, "down"); err != nil {
		t.Fatalf("down: %v", err)
	}
	if _, err := sqlDB.ExecContext(ctx, `SELECT 1 FROM users`); err == nil {
		t.Fatal("expected users table to be dropped")
	}
}

func TestDialect(t *testing.T) {
	if d, err := migrate.Dialect(config.StoreDriverPostgres); err != nil || d != "postgres" {
		t.Fatalf("unexpected postgres dialect %q %v", d, err)
	}
	if _, err := migrate.Dialect(config.StoreDriverMongo); err == nil {
		t.Fatal("expected error for mongo driver")
	}
}
