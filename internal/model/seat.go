package model

import "time"

// SeatStatus is the availability state of a seat.  A seat only ever moves
// from SeatAvailable to SeatBooked; there is no way back.
type SeatStatus string

const (
	SeatAvailable SeatStatus = "available"
	SeatBooked    SeatStatus = "booked"
)

// Seat is a single bookable unit of inventory.
//
// Fields:
//  ID           – primary key, assigned at creation and never reused.
//  SeatNumber   – human readable code such as "A7", unique.
//  Status       – available or booked.
//  ClaimantID   – set if and only if Status is booked.
//  ClaimantName – optional display name captured at booking time.
//  BookedAt     – moment of the available -> booked transition.
//  CreatedAt    – creation timestamp.
type Seat struct {
	ID           uint64     `json:"id"`                      // seats.id
	SeatNumber   string     `json:"seat_number"`             // seats.seat_number
	Status       SeatStatus `json:"status"`                  // seats.status
	ClaimantID   *string    `json:"claimant_id,omitempty"`   // seats.claimant_id (nullable)
	ClaimantName *string    `json:"claimant_name,omitempty"` // seats.claimant_name (nullable)
	BookedAt     *time.Time `json:"booked_at,omitempty"`     // seats.booked_at (nullable)
	CreatedAt    time.Time  `json:"created_at"`              // seats.created_at
}

// IsAvailable reports whether the seat can still be claimed.
func (s Seat) IsAvailable() bool {
	return s.Status == SeatAvailable
}

// Claimant identifies the caller a seat is booked for.  ID is opaque to the
// service; DisplayName is optional.
type Claimant struct {
	ID          string
	DisplayName string
}

// SeatSummary counts the inventory by state.
type SeatSummary struct {
	Total     int `json:"total"`
	Available int `json:"available"`
	Booked    int `json:"booked"`
}

// Summarize counts seats by status.
func Summarize(seats []Seat) SeatSummary {
	sum := SeatSummary{Total: len(seats)}
	for _, s := range seats {
		if s.IsAvailable() {
			sum.Available++
		} else {
			sum.Booked++
		}
	}
	return sum
}
