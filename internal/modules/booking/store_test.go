// README: Booking store and review tests; need SECRETHOUSE_TEST_DSN.
package booking

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"secrethouse/internal/infra"
	"secrethouse/internal/types"
)

type recordingNotifier struct {
	mu        sync.Mutex
	created   []types.ID
	decisions []Status
}

func (n *recordingNotifier) NotifyNewBooking(ctx context.Context, r *Record) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.created = append(n.created, r.ID)
	return nil
}

func (n *recordingNotifier) NotifyDecision(ctx context.Context, r *Record, actorID string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.decisions = append(n.decisions, r.Status)
	return nil
}

func submitCommand(ref types.ID) SubmitCommand {
	yes, no := true, false
	total := d(420)
	return SubmitCommand{
		Ref:            ref,
		ConversationID: "chat-1",
		UserID:         "42",
		Context: Context{
			Tariff: "12 часов", StartDate: "20.03.2025", StartTime: "14:00",
			FinishDate: "20.03.2025", FinishTime: "23:00",
			Sauna: &yes, SecretRoom: &no, SecondBedroom: &yes,
			NumberGuests: 2, Contact: "@guest", Comment: Comment{Provided: true},
			TotalCost: &total,
		},
		Proof: PaymentProof{FileID: "file-1", FileType: "photo", FileSize: 2048, UploadedAt: time.Now()},
	}
}

func TestSubmitAndGet(t *testing.T) {
	notifier := &recordingNotifier{}
	svc := NewService(setupTestStore(t), notifier, minsk, nil)
	ctx := context.Background()

	rec, err := svc.Submit(ctx, submitCommand("b-1"))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if rec.Status != StatusPending {
		t.Fatalf("status = %s, want pending", rec.Status)
	}
	if len(notifier.created) != 1 {
		t.Fatalf("expected one admin notification, got %d", len(notifier.created))
	}

	got, err := svc.Get(ctx, "b-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Context.Tariff != "12 часов" || got.Context.NumberGuests != 2 {
		t.Fatalf("unexpected context: %+v", got.Context)
	}
	if got.Context.FirstBedroom != nil {
		t.Fatalf("first bedroom should stay NULL")
	}
	if got.Context.SecondBedroom == nil || !*got.Context.SecondBedroom {
		t.Fatalf("second bedroom lost")
	}
	if !got.Total.Amount.Equal(d(420)) {
		t.Fatalf("total = %s", got.Total.Amount)
	}
	if got.StartAt == nil || got.EndAt == nil || !got.EndAt.After(*got.StartAt) {
		t.Fatalf("period not stored: %v %v", got.StartAt, got.EndAt)
	}
	if got.Proof.FileID != "file-1" {
		t.Fatalf("proof = %+v", got.Proof)
	}

	if _, err := svc.Get(ctx, "missing"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestReviewFlow(t *testing.T) {
	notifier := &recordingNotifier{}
	svc := NewService(setupTestStore(t), notifier, minsk, nil)
	ctx := context.Background()

	if _, err := svc.Submit(ctx, submitCommand("b-2")); err != nil {
		t.Fatalf("submit: %v", err)
	}
	rec, err := svc.Approve(ctx, "b-2", "admin-1")
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if rec.Status != StatusApproved {
		t.Fatalf("status = %s", rec.Status)
	}
	if _, err := svc.Reject(ctx, "b-2", "admin-1"); err != ErrInvalidState {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
	if _, err := svc.Cancel(ctx, "b-2", "admin-1"); err != nil {
		t.Fatalf("cancel approved: %v", err)
	}
	if len(notifier.decisions) != 2 {
		t.Fatalf("expected 2 decision notifications, got %d", len(notifier.decisions))
	}
}

func TestConcurrentReviewSameBooking(t *testing.T) {
	svc := NewService(setupTestStore(t), nil, minsk, nil)
	ctx := context.Background()
	if _, err := svc.Submit(ctx, submitCommand("b-3")); err != nil {
		t.Fatalf("submit: %v", err)
	}

	decisions := []Status{StatusApproved, StatusRejected, StatusApproved}
	errs := make(chan error, len(decisions))
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i, dec := range decisions {
		wg.Add(1)
		go func(actor string, dec Status) {
			defer wg.Done()
			<-start
			_, err := svc.Review(ctx, ReviewCommand{BookingID: "b-3", Decision: dec, ActorID: actor})
			errs <- err
		}(string(rune('a'+i)), dec)
	}
	close(start)
	wg.Wait()
	close(errs)

	success := 0
	for err := range errs {
		switch err {
		case nil:
			success++
		case ErrConflict, ErrInvalidState:
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if success != 1 {
		t.Fatalf("expected exactly one successful review, got %d", success)
	}
}

func TestOccupied(t *testing.T) {
	store := setupTestStore(t)
	svc := NewService(store, nil, minsk, nil)
	ctx := context.Background()

	if _, err := svc.Submit(ctx, submitCommand("b-4")); err != nil {
		t.Fatalf("submit: %v", err)
	}
	rejected := submitCommand("b-5")
	if _, err := svc.Submit(ctx, rejected); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := svc.Reject(ctx, "b-5", "admin"); err != nil {
		t.Fatalf("reject: %v", err)
	}

	from := time.Date(2025, 3, 1, 0, 0, 0, 0, minsk)
	to := time.Date(2025, 3, 31, 0, 0, 0, 0, minsk)
	periods, err := store.Occupied(ctx, from, to)
	if err != nil {
		t.Fatalf("occupied: %v", err)
	}
	if len(periods) != 1 || periods[0].BookingID != "b-4" {
		t.Fatalf("unexpected periods: %+v", periods)
	}

	periods, err = store.Occupied(ctx, to, to.AddDate(0, 1, 0))
	if err != nil {
		t.Fatalf("occupied: %v", err)
	}
	if len(periods) != 0 {
		t.Fatalf("expected no periods in April, got %+v", periods)
	}
}

func TestSubmitValidation(t *testing.T) {
	svc := NewService(nil, nil, nil, nil)
	if _, err := svc.Submit(context.Background(), SubmitCommand{}); err != ErrBadRequest {
		t.Fatalf("expected ErrBadRequest, got %v", err)
	}
}

func setupTestStore(t *testing.T) *Store {
	t.Helper()

	dsn := os.Getenv("SECRETHOUSE_TEST_DSN")
	if dsn == "" {
		t.Skip("SECRETHOUSE_TEST_DSN not set; skipping DB-backed booking tests")
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
	if _, err := db.Exec(ctx, "TRUNCATE TABLE booking_events, bookings"); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
	return NewStore(db)
}
