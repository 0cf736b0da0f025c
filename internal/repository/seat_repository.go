package repository // repository defines data access for seats

import (
	"context"      // context allows query cancellation and timeouts
	"database/sql" // sql provides DB primitives
	"errors"       // errors for sentinel comparisons
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/seat-booking/internal/model"
)

// LockedSeat is a seat row held under an exclusive lock for the lifetime of
// the enclosing transaction.  It is only valid inside the callback passed
// to WithSeatLocked.
type LockedSeat interface {
	// Current returns the seat as read under the lock, including any
	// change made through MarkBooked.
	Current() model.Seat
	// MarkBooked transitions the seat to booked for c.  It returns
	// ErrConflict when the row is no longer available.
	MarkBooked(ctx context.Context, c model.Claimant, at time.Time) error
}

// SeatRepo provides methods to work with seats in the database.
type SeatRepo struct {
	db *sql.DB
}

// NewSeatRepo constructs a SeatRepo with the given DB handle.
func NewSeatRepo(db *sql.DB) *SeatRepo {
	return &SeatRepo{db: db}
}

// DB exposes the underlying handle for callers that need their own
// transactions.
func (r *SeatRepo) DB() *sql.DB { return r.db }

const seatColumns = `id, seat_number, status, claimant_id, claimant_name, booked_at, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSeat(row rowScanner) (model.Seat, error) {
	var (
		s      model.Seat
		status string
		cid    sql.NullString
		cname  sql.NullString
		booked sql.NullTime
	)
	if err := row.Scan(&s.ID, &s.SeatNumber, &status, &cid, &cname, &booked, &s.CreatedAt); err != nil {
		return model.Seat{}, err
	}
	s.Status = model.SeatStatus(status)
	if cid.Valid {
		s.ClaimantID = &cid.String
	}
	if cname.Valid {
		s.ClaimantName = &cname.String
	}
	if booked.Valid {
		t := booked.Time.UTC()
		s.BookedAt = &t
	}
	return s, nil
}

// List returns every seat ordered by id.
func (r *SeatRepo) List(ctx context.Context) ([]model.Seat, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+seatColumns+` FROM seats ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seats := make([]model.Seat, 0)
	for rows.Next() {
		s, err := scanSeat(rows)
		if err != nil {
			return nil, err
		}
		seats = append(seats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return seats, nil
}

// GetByID retrieves a seat by its id.  It never takes a lock.
func (r *SeatRepo) GetByID(ctx context.Context, id uint64) (*model.Seat, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+seatColumns+` FROM seats WHERE id = ?`, id)
	s, err := scanSeat(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSeatNotFound
		}
		return nil, err
	}
	return &s, nil
}

// CreateBulk inserts new available seats in a single statement and
// returns them as stored.  A seat number that already exists fails the
// whole batch with ErrConflict.
func (r *SeatRepo) CreateBulk(ctx context.Context, seatNumbers []string) ([]model.Seat, error) {
	if len(seatNumbers) == 0 {
		return []model.Seat{}, nil
	}
	query := `INSERT INTO seats (seat_number) VALUES `
	args := make([]any, 0, len(seatNumbers))
	for i, n := range seatNumbers {
		if i > 0 {
			query += ","
		}
		query += "(?)"
		args = append(args, n)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isDuplicate(err) {
			return nil, ErrConflict
		}
		return nil, err
	}

	// Re-read by seat number so callers get the assigned ids.
	sel := `SELECT ` + seatColumns + ` FROM seats WHERE seat_number IN (` + placeholders(len(seatNumbers)) + `) ORDER BY id`
	rows, err := r.db.QueryContext(ctx, sel, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	created := make([]model.Seat, 0, len(seatNumbers))
	for rows.Next() {
		s, err := scanSeat(rows)
		if err != nil {
			return nil, err
		}
		created = append(created, s)
	}
	return created, rows.Err()
}

// WithSeatLocked runs fn while holding an exclusive row lock on seat id.
// The lock is taken with SELECT ... FOR UPDATE inside a transaction, so a
// second caller on the same seat blocks until the first commits or rolls
// back and then reads the committed state.  Other seats are not locked.
//
// The transaction commits when fn returns nil and is rolled back on every
// other path: fn's error, a panic, a failed commit or a cancelled context.
// A missing seat yields ErrSeatNotFound without calling fn.
func (r *SeatRepo) WithSeatLocked(ctx context.Context, id uint64, fn func(LockedSeat) error) (err error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	committed := false
	defer func() {
		if committed {
			return
		}
		_ = tx.Rollback()
		if p := recover(); p != nil {
			panic(p)
		}
	}()

	row := tx.QueryRowContext(ctx, `SELECT `+seatColumns+` FROM seats WHERE id = ? FOR UPDATE`, id)
	seat, err := scanSeat(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrSeatNotFound
		}
		return fmt.Errorf("lock seat %d: %w", id, err)
	}

	if err := fn(&lockedSeat{tx: tx, seat: seat}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	committed = true
	return nil
}

// lockedSeat is the *sql.Tx backed LockedSeat.
type lockedSeat struct {
	tx   *sql.Tx
	seat model.Seat
}

func (l *lockedSeat) Current() model.Seat { return l.seat }

func (l *lockedSeat) MarkBooked(ctx context.Context, c model.Claimant, at time.Time) error {
	var name any
	if c.DisplayName != "" {
		name = c.DisplayName
	}
	at = at.UTC()
	res, err := l.tx.ExecContext(ctx,
		`UPDATE seats SET status = 'booked', claimant_id = ?, claimant_name = ?, booked_at = ?
		 WHERE id = ? AND status = 'available'`,
		c.ID, name, at, l.seat.ID,
	)
	if err != nil {
		return fmt.Errorf("mark seat %d booked: %w", l.seat.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark seat %d booked: %w", l.seat.ID, err)
	}
	if n != 1 {
		return ErrConflict
	}
	id := c.ID
	l.seat.Status = model.SeatBooked
	l.seat.ClaimantID = &id
	if c.DisplayName != "" {
		dn := c.DisplayName
		l.seat.ClaimantName = &dn
	}
	l.seat.BookedAt = &at
	return nil
}

// placeholders returns "?, ?, ..." with n markers.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
