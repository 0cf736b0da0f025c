// Package queue defines message payloads exchanged over the message broker.
package queue

import (
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/seat-booking/internal/model"
)

// Queue names.  Both are durable and use the default exchange.
const (
	SeatBookedQueue     = "seat.booked"
	ReviewRecordedQueue = "review.recorded"
)

// SeatBookedEvent is published after a booking transaction commits.  It
// carries enough information for downstream consumers to log or notify
// without querying the primary database.
type SeatBookedEvent struct {
	EventID      string `json:"event_id"`
	SeatID       uint64 `json:"seat_id"`
	SeatNumber   string `json:"seat_number"`
	ClaimantID   string `json:"claimant_id"`
	ClaimantName string `json:"claimant_name,omitempty"`
	BookedAt     string `json:"booked_at"`
}

// ReviewRecordedEvent is published after a review has been stored.
type ReviewRecordedEvent struct {
	EventID       string  `json:"event_id"`
	ReviewID      uint64  `json:"review_id"`
	SeatID        uint64  `json:"seat_id"`
	SeatNumber    string  `json:"seat_number"`
	ClaimantID    string  `json:"claimant_id"`
	AverageScore  float64 `json:"average_score"`
	OverallRating string  `json:"overall_rating"`
	RecordedAt    string  `json:"recorded_at"`
}

func NewSeatBookedEvent(s model.Seat) SeatBookedEvent {
	ev := SeatBookedEvent{
		EventID:    uuid.NewString(),
		SeatID:     s.ID,
		SeatNumber: s.SeatNumber,
	}
	if s.ClaimantID != nil {
		ev.ClaimantID = *s.ClaimantID
	}
	if s.ClaimantName != nil {
		ev.ClaimantName = *s.ClaimantName
	}
	at := time.Now().UTC()
	if s.BookedAt != nil {
		at = s.BookedAt.UTC()
	}
	ev.BookedAt = at.Format(time.RFC3339)
	return ev
}

func NewReviewRecordedEvent(s model.Seat, rv model.Review) ReviewRecordedEvent {
	at := rv.CreatedAt
	if at.IsZero() {
		at = time.Now()
	}
	return ReviewRecordedEvent{
		EventID:       uuid.NewString(),
		ReviewID:      rv.ID,
		SeatID:        s.ID,
		SeatNumber:    s.SeatNumber,
		ClaimantID:    rv.ClaimantID,
		AverageScore:  rv.AverageScore,
		OverallRating: rv.OverallRating,
		RecordedAt:    at.UTC().Format(time.RFC3339),
	}
}
