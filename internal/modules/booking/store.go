// README: Booking store backed by PostgreSQL.
package booking

import (
    "context"
    "errors"
    "time"

    "github.com/jackc/pgx/v5"
    "github.com/jackc/pgx/v5/pgxpool"
    "github.com/shopspring/decimal"

    "secrethouse/internal/types"
)

type Store struct {
    db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
    return &Store{db: db}
}

func (s *Store) Create(ctx context.Context, r *Record) error {
    c := r.Context
    var comment *string
    if c.Comment.Provided && c.Comment.Text != "" {
        comment = &c.Comment.Text
    }
    var tariffID *int
    if id, ok := c.TariffID(); ok {
        n := int(id)
        tariffID = &n
    }
    var total *string
    if c.TotalCost != nil {
        v := r.Total.Amount.String()
        total = &v
    }
    var uploadedAt *time.Time
    if !r.Proof.UploadedAt.IsZero() {
        uploadedAt = &r.Proof.UploadedAt
    }

    _, err := s.db.Exec(ctx, `
        INSERT INTO bookings (
            id, conversation_id, user_id, tariff, tariff_id,
            start_date, start_time, finish_date, finish_time, start_at, end_at,
            first_bedroom, second_bedroom, sauna, photoshoot, secret_room,
            number_guests, contact, comment, total, currency,
            status, status_version,
            proof_file_id, proof_file_type, proof_file_size, proof_uploaded_at, created_at
        ) VALUES (
            $1, $2, $3, $4, $5,
            $6, $7, $8, $9, $10, $11,
            $12, $13, $14, $15, $16,
            $17, $18, $19, $20::text::numeric, $21,
            $22, $23,
            $24, $25, $26, $27, $28
        )`,
        string(r.ID), r.ConversationID, r.UserID, c.Tariff, tariffID,
        c.StartDate, c.StartTime, c.FinishDate, c.FinishTime, r.StartAt, r.EndAt,
        c.FirstBedroom, c.SecondBedroom, c.Sauna, c.Photoshoot, c.SecretRoom,
        c.NumberGuests, c.Contact, comment, total, r.Total.Currency,
        string(r.Status), r.StatusVersion,
        r.Proof.FileID, r.Proof.FileType, r.Proof.FileSize, uploadedAt, r.CreatedAt,
    )
    return err
}

func (s *Store) Get(ctx context.Context, id types.ID) (*Record, error) {
    row := s.db.QueryRow(ctx, `
        SELECT id, conversation_id, user_id, tariff,
               start_date, start_time, finish_date, finish_time, start_at, end_at,
               first_bedroom, second_bedroom, sauna, photoshoot, secret_room,
               number_guests, contact, comment, total::text, currency,
               status, status_version,
               proof_file_id, proof_file_type, proof_file_size, proof_uploaded_at,
               created_at, reviewed_at
        FROM bookings
        WHERE id = $1`, string(id),
    )

    var r Record
    var comment, total *string
    var uploadedAt *time.Time
    c := &r.Context
    err := row.Scan(
        &r.ID, &r.ConversationID, &r.UserID, &c.Tariff,
        &c.StartDate, &c.StartTime, &c.FinishDate, &c.FinishTime, &r.StartAt, &r.EndAt,
        &c.FirstBedroom, &c.SecondBedroom, &c.Sauna, &c.Photoshoot, &c.SecretRoom,
        &c.NumberGuests, &c.Contact, &comment, &total, &r.Total.Currency,
        &r.Status, &r.StatusVersion,
        &r.Proof.FileID, &r.Proof.FileType, &r.Proof.FileSize, &uploadedAt,
        &r.CreatedAt, &r.ReviewedAt,
    )
    if errors.Is(err, pgx.ErrNoRows) {
        return nil, ErrNotFound
    }
    if err != nil {
        return nil, err
    }

    c.Comment = Comment{Provided: true}
    if comment != nil {
        c.Comment.Text = *comment
    }
    if total != nil {
        amount, err := decimal.NewFromString(*total)
        if err != nil {
            return nil, err
        }
        r.Total.Amount = amount
        c.TotalCost = &amount
    }
    if uploadedAt != nil {
        r.Proof.UploadedAt = *uploadedAt
    }
    return &r, nil
}

func (s *Store) UpdateStatus(ctx context.Context, id types.ID, from, to Status, version int) (bool, error) {
    tag, err := s.db.Exec(ctx, `
        UPDATE bookings
        SET status = $1,
            status_version = status_version + 1,
            reviewed_at = CASE WHEN $1 IN ('approved', 'rejected') THEN NOW() ELSE reviewed_at END
        WHERE id = $2 AND status = $3 AND status_version = $4`,
        string(to),
        string(id),
        string(from),
        version,
    )
    if err != nil {
        return false, err
    }
    return tag.RowsAffected() == 1, nil
}

func (s *Store) AppendEvent(ctx context.Context, e *Event) error {
    _, err := s.db.Exec(ctx, `
        INSERT INTO booking_events (
            booking_id, from_status, to_status, actor_type, actor_id, created_at
        ) VALUES ($1, $2, $3, $4, $5, $6)`,
        string(e.BookingID),
        string(e.FromStatus),
        string(e.ToStatus),
        e.ActorType,
        e.ActorID,
        e.CreatedAt,
    )
    return err
}

// Period is the occupied span of one booking.
type Period struct {
    BookingID types.ID
    Start     time.Time
    End       time.Time
    Status    Status
}

// Occupied lists pending and approved bookings overlapping [from, to].
func (s *Store) Occupied(ctx context.Context, from, to time.Time) ([]Period, error) {
    rows, err := s.db.Query(ctx, `
        SELECT id, start_at, end_at, status
        FROM bookings
        WHERE status IN ('pending', 'approved')
          AND start_at IS NOT NULL AND end_at IS NOT NULL
          AND start_at <= $2 AND end_at >= $1
        ORDER BY start_at`, from, to,
    )
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    var out []Period
    for rows.Next() {
        var p Period
        if err := rows.Scan(&p.BookingID, &p.Start, &p.End, &p.Status); err != nil {
            return nil, err
        }
        out = append(out, p)
    }
    return out, rows.Err()
}
