// README: Daily FAQ quota tests; need SECRETHOUSE_TEST_DSN.
package faq

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"secrethouse/internal/infra"
)

// TestUseQuestionNewUser verifies that a user absent from the table is initialised on first call.
func TestUseQuestionNewUser(t *testing.T) {
	q, db := setupTestQuota(t, 3)
	ctx := context.Background()

	if err := q.UseQuestion(ctx, "user_new"); err != nil {
		t.Fatalf("UseQuestion for new user: %v", err)
	}
	var used int
	if err := db.QueryRow(ctx, "SELECT questions FROM faq_usage WHERE user_id = 'user_new' AND day = '2025-03-15'").Scan(&used); err != nil {
		t.Fatalf("query: %v", err)
	}
	if used != 1 {
		t.Fatalf("expected 1 question used, got %d", used)
	}
}

// TestUseQuestionLimit verifies that the limit blocks and a new day starts fresh.
func TestUseQuestionLimit(t *testing.T) {
	q, _ := setupTestQuota(t, 2)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := q.UseQuestion(ctx, "user_limit"); err != nil {
			t.Fatalf("question %d: %v", i, err)
		}
	}
	if err := q.UseQuestion(ctx, "user_limit"); err != ErrQuotaExceeded {
		t.Fatalf("expected ErrQuotaExceeded, got %v", err)
	}

	q.now = func() time.Time { return time.Date(2025, 3, 16, 9, 0, 0, 0, time.UTC) }
	if err := q.UseQuestion(ctx, "user_limit"); err != nil {
		t.Fatalf("next day: %v", err)
	}
}

func setupTestQuota(t *testing.T, limit int) (*Quota, *pgxpool.Pool) {
	t.Helper()

	dsn := os.Getenv("SECRETHOUSE_TEST_DSN")
	if dsn == "" {
		t.Skip("SECRETHOUSE_TEST_DSN not set; skipping DB-backed quota tests")
	}

	ctx := context.Background()
	db, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	dir, err := infra.FindMigrationsDir()
	if err != nil {
		t.Fatalf("locate migrations: %v", err)
	}
	if err := infra.ApplyMigrations(ctx, db, dir); err != nil {
		t.Fatalf("apply migration: %v", err)
	}
	if _, err := db.Exec(ctx, "TRUNCATE TABLE faq_usage"); err != nil {
		t.Fatalf("truncate: %v", err)
	}

	q := NewQuota(NewQuotaStore(db), limit, time.UTC)
	q.now = func() time.Time { return time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC) }
	return q, db
}
