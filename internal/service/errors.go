package service

import "errors"

var (
	// ErrStorage wraps any failure of the durable store.  It is the only
	// error kind a caller may retry, and it is never used for a seat that
	// is merely taken.
	ErrStorage = errors.New("storage failure")

	// ErrInvalidClaimant is returned when the claimant id is missing or a
	// claimant field exceeds its column size.
	ErrInvalidClaimant = errors.New("invalid claimant")

	// ErrSeatNotBooked rejects a review for a seat nobody has booked.
	ErrSeatNotBooked = errors.New("seat not booked")

	// ErrMissingOverall rejects a review without the overall experience.
	ErrMissingOverall = errors.New("overall experience is required")

	// ErrAspectTooLong rejects a review with an aspect text over
	// MaxAspectRunes.
	ErrAspectTooLong = errors.New("aspect text too long")
)

// MaxAspectRunes caps each aspect text, counted in characters after
// trimming.
const MaxAspectRunes = 4000

const (
	maxClaimantID   = 64
	maxClaimantName = 120
)
