// store_test.go provides a shared test database helper for all store
// integration tests. Tests are skipped if PostgreSQL is not available.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/google/uuid"

	"inkwell/internal/database"
	"inkwell/internal/models"
)

// testDSN returns the PostgreSQL connection string for testing.
// Uses environment variables with defaults matching docker-compose.yml.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "inkwell")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "inkwell")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test database and runs migrations.
// If the database is unavailable, the test is skipped. A cleanup
// function is registered to close the connection when the test finishes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("pgx", testDSN())
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	// Downgrade goose global state.
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testUser creates a throwaway user with a funded credit account and
// registers cleanup. The cascade on users removes jobs, accounts, and
// transactions with it.
func testUser(t *testing.T, db *sql.DB, credits int) *models.User {
	t.Helper()
	ctx := context.Background()

	suffix := fmt.Sprintf("%d-%s", time.Now().UnixNano(), uuid.New().String()[:8])
	u, err := NewUserStore(db).Create(ctx, "test-"+suffix+"@inkwell.test", "tk-"+suffix, "secret-"+suffix)
	if err != nil {
		t.Fatalf("create test user: %v", err)
	}
	t.Cleanup(func() {
		db.Exec("DELETE FROM users WHERE id = $1", u.ID)
	})

	if credits > 0 {
		if err := NewLedgerStore(db).CreateAccount(ctx, u.ID, credits); err != nil {
			t.Fatalf("create test credit account: %v", err)
		}
	}
	return u
}

// testJob creates a draft job for the user with a small default spec.
func testJob(t *testing.T, db *sql.DB, userID uuid.UUID) *models.ContentJob {
	t.Helper()

	j := &models.ContentJob{
		UserID:          userID,
		MainKeyword:     "standing desks",
		WordCountTarget: 1200,
		Tone:            "informative",
		H2List:          []string{"Why Standing Desks Matter", "How to Choose One"},
	}
	if err := NewJobStore(db).Create(context.Background(), j); err != nil {
		t.Fatalf("create test job: %v", err)
	}
	return j
}
