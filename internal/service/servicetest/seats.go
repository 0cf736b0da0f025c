// Package servicetest provides in-memory stores with the same locking and
// atomicity contract as the MySQL repositories, for tests of the service
// and handler layers.
package servicetest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/iliyamo/seat-booking/internal/model"
	"github.com/iliyamo/seat-booking/internal/repository"
)

// Seats is an in-memory seat table.  Each seat has its own mutex that is
// held for the whole WithSeatLocked callback, the way InnoDB holds a row
// lock until commit.  Changes made through the LockedSeat are staged and
// only applied when the callback returns nil and the commit hook succeeds.
type Seats struct {
	mu     sync.RWMutex
	seats  map[uint64]*seatRow
	nextID uint64

	// CommitErr, when set, is called at commit time; a non-nil result
	// aborts the commit and discards the staged change.
	CommitErr func(seatID uint64) error
}

// seatRow.seat holds committed state.  It is written with both lock and
// Seats.mu held, so plain reads only need Seats.mu and never wait on a
// booking in flight.
type seatRow struct {
	lock sync.Mutex
	seat model.Seat
}

// NewSeats returns a table with n available seats labelled A1..An.
func NewSeats(n int) *Seats {
	s := &Seats{seats: map[uint64]*seatRow{}}
	labels := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		labels = append(labels, fmt.Sprintf("A%d", i))
	}
	_, _ = s.CreateBulk(context.Background(), labels)
	return s
}

// CreateBulk appends new available seats.
func (s *Seats) CreateBulk(_ context.Context, numbers []string) ([]model.Seat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range numbers {
		for _, row := range s.seats {
			if row.seat.SeatNumber == n {
				return nil, repository.ErrConflict
			}
		}
	}
	created := make([]model.Seat, 0, len(numbers))
	for _, n := range numbers {
		s.nextID++
		seat := model.Seat{ID: s.nextID, SeatNumber: n, Status: model.SeatAvailable, CreatedAt: time.Now().UTC()}
		s.seats[seat.ID] = &seatRow{seat: seat}
		created = append(created, seat)
	}
	return created, nil
}

// List returns a committed snapshot of all seats ordered by id.
func (s *Seats) List(_ context.Context) ([]model.Seat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Seat, 0, len(s.seats))
	for id := uint64(1); id <= s.nextID; id++ {
		if row, ok := s.seats[id]; ok {
			out = append(out, row.seat)
		}
	}
	return out, nil
}

// GetByID returns the committed state of one seat.
func (s *Seats) GetByID(_ context.Context, id uint64) (*model.Seat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.seats[id]
	if !ok {
		return nil, repository.ErrSeatNotFound
	}
	seat := row.seat
	return &seat, nil
}

// Len reports how many seats exist.
func (s *Seats) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.seats)
}

// WithSeatLocked implements service.SeatLocker.
func (s *Seats) WithSeatLocked(ctx context.Context, id uint64, fn func(repository.LockedSeat) error) error {
	row, ok := s.row(id)
	if !ok {
		return repository.ErrSeatNotFound
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	row.lock.Lock()
	defer row.lock.Unlock()

	staged := &lockedSeat{seat: row.seat}
	if err := fn(staged); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.CommitErr != nil {
		if err := s.CommitErr(id); err != nil {
			return err
		}
	}
	s.mu.Lock()
	row.seat = staged.seat
	s.mu.Unlock()
	return nil
}

func (s *Seats) row(id uint64) (*seatRow, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.seats[id]
	return row, ok
}

type lockedSeat struct {
	seat model.Seat
}

func (l *lockedSeat) Current() model.Seat { return l.seat }

func (l *lockedSeat) MarkBooked(_ context.Context, c model.Claimant, at time.Time) error {
	if l.seat.Status != model.SeatAvailable {
		return repository.ErrConflict
	}
	id := c.ID
	l.seat.Status = model.SeatBooked
	l.seat.ClaimantID = &id
	if c.DisplayName != "" {
		name := c.DisplayName
		l.seat.ClaimantName = &name
	}
	at = at.UTC()
	l.seat.BookedAt = &at
	return nil
}
