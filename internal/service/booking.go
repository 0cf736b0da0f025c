// Package service holds the booking rules that sit between the HTTP
// handlers and the repositories: the seat assignment engine and the review
// recorder.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/seat-booking/internal/model"
	"github.com/iliyamo/seat-booking/internal/monitoring"
	"github.com/iliyamo/seat-booking/internal/repository"
)

// OutcomeStatus is the closed set of non-failure booking results.
type OutcomeStatus string

const (
	Confirmed     OutcomeStatus = "confirmed"
	NotFound      OutcomeStatus = "not_found"
	AlreadyBooked OutcomeStatus = "already_booked"
)

// Outcome is the result of one booking attempt.  Seat is the seat as
// observed under the lock; it is zero for NotFound.
type Outcome struct {
	Status OutcomeStatus
	Seat   model.Seat
}

// SeatLocker gives exclusive, transactional access to one seat at a time.
// *repository.SeatRepo is the production implementation.
type SeatLocker interface {
	WithSeatLocked(ctx context.Context, seatID uint64, fn func(repository.LockedSeat) error) error
}

// Booker is the seat assignment engine.  For any set of concurrent Book
// calls on one seat, exactly one observes it available and books it; the
// rest get AlreadyBooked.
type Booker struct {
	seats  SeatLocker
	events EventPublisher
	log    *zap.Logger
	now    func() time.Time
}

// NewBooker constructs a Booker.  A nil publisher disables events.
func NewBooker(seats SeatLocker, events EventPublisher, log *zap.Logger) *Booker {
	if events == nil {
		events = NopPublisher{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Booker{seats: seats, events: events, log: log, now: time.Now}
}

// Book claims seatID for c.  The returned error is non-nil only for an
// invalid claimant or a storage failure (wrapping ErrStorage); in the
// latter case the seat is left exactly as it was.
func (b *Booker) Book(ctx context.Context, seatID uint64, c model.Claimant) (Outcome, error) {
	c, err := normalizeClaimant(c)
	if err != nil {
		return Outcome{}, err
	}

	start := time.Now()
	var out Outcome
	err = b.seats.WithSeatLocked(ctx, seatID, func(ls repository.LockedSeat) error {
		seat := ls.Current()
		if !seat.IsAvailable() {
			out = Outcome{Status: AlreadyBooked, Seat: seat}
			return nil
		}
		if err := ls.MarkBooked(ctx, c, b.now().UTC()); err != nil {
			return err
		}
		out = Outcome{Status: Confirmed, Seat: ls.Current()}
		return nil
	})
	elapsed := time.Since(start)

	switch {
	case err == nil:
	case errors.Is(err, repository.ErrSeatNotFound):
		out = Outcome{Status: NotFound}
	case errors.Is(err, repository.ErrConflict):
		// The guarded update found the row taken; the transaction was
		// rolled back and nothing changed.
		out = Outcome{Status: AlreadyBooked}
	default:
		monitoring.TrackBooking("storage_failure", elapsed)
		b.log.Error("booking failed",
			zap.Uint64("seat_id", seatID),
			zap.String("claimant_id", c.ID),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		)
		return Outcome{}, fmt.Errorf("%w: book seat %d: %w", ErrStorage, seatID, err)
	}

	monitoring.TrackBooking(string(out.Status), elapsed)
	logf := b.log.Debug
	if out.Status == Confirmed {
		logf = b.log.Info
	}
	logf("booking attempt",
		zap.Uint64("seat_id", seatID),
		zap.String("claimant_id", c.ID),
		zap.String("outcome", string(out.Status)),
		zap.Duration("elapsed", elapsed),
	)

	if out.Status == Confirmed {
		if err := b.events.PublishSeatBooked(ctx, out.Seat); err != nil {
			monitoring.TrackPublishFailure("seat.booked")
			b.log.Warn("publish seat.booked failed", zap.Uint64("seat_id", seatID), zap.Error(err))
		}
	}
	return out, nil
}

func normalizeClaimant(c model.Claimant) (model.Claimant, error) {
	c.ID = strings.TrimSpace(c.ID)
	c.DisplayName = strings.TrimSpace(c.DisplayName)
	if c.ID == "" {
		return c, fmt.Errorf("%w: claimant id is required", ErrInvalidClaimant)
	}
	if len(c.ID) > maxClaimantID {
		return c, fmt.Errorf("%w: claimant id longer than %d", ErrInvalidClaimant, maxClaimantID)
	}
	if len(c.DisplayName) > maxClaimantName {
		return c, fmt.Errorf("%w: display name longer than %d", ErrInvalidClaimant, maxClaimantName)
	}
	return c, nil
}
