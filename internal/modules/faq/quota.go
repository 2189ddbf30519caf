package faq

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// QuotaStore handles faq_usage persistence.
type QuotaStore struct {
	db *pgxpool.Pool
}

// NewQuotaStore returns a QuotaStore backed by the given connection pool.
func NewQuotaStore(db *pgxpool.Pool) *QuotaStore {
	return &QuotaStore{db: db}
}

// UseQuestion atomically checks the daily limit and counts one question.
// Returns ErrQuotaExceeded when 0 rows are updated (limit reached or no row for the day).
func (s *QuotaStore) UseQuestion(ctx context.Context, userID string, day time.Time, limit int) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE faq_usage SET questions = questions + 1
		WHERE user_id = $1 AND day = $2 AND questions < $3
	`, userID, day.Format("2006-01-02"), limit)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrQuotaExceeded
	}
	return nil
}

// EnsureDay inserts the user's row for day. An existing row is kept (ON CONFLICT DO NOTHING).
func (s *QuotaStore) EnsureDay(ctx context.Context, userID string, day time.Time) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO faq_usage (user_id, day, questions)
		VALUES ($1, $2, 0)
		ON CONFLICT (user_id, day) DO NOTHING
	`, userID, day.Format("2006-01-02"))
	return err
}

// Quota enforces the per-user daily question limit.
type Quota struct {
	store *QuotaStore
	limit int
	loc   *time.Location
	now   func() time.Time
}

// NewQuota creates a Quota. A non-positive limit uses DefaultDailyQuestions.
func NewQuota(store *QuotaStore, limit int, loc *time.Location) *Quota {
	if limit <= 0 {
		limit = DefaultDailyQuestions
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Quota{store: store, limit: limit, loc: loc, now: time.Now}
}

// UseQuestion counts one question for today in the configured timezone.
// The day row is created on first use and the deduction retried once.
func (q *Quota) UseQuestion(ctx context.Context, userID string) error {
	day := q.now().In(q.loc)
	err := q.store.UseQuestion(ctx, userID, day, q.limit)
	if err != ErrQuotaExceeded {
		return err
	}
	if initErr := q.store.EnsureDay(ctx, userID, day); initErr != nil {
		return initErr
	}
	return q.store.UseQuestion(ctx, userID, day, q.limit)
}
