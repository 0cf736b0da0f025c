package model

import "time"

// Aspect names one dimension of free-text feedback.
type Aspect string

const (
	AspectOverallExperience Aspect = "overall_experience"
	AspectSoundQuality      Aspect = "sound_quality"
	AspectSeatComfort       Aspect = "seat_comfort"
	AspectSeatHeight        Aspect = "seat_height"
	AspectViewQuality       Aspect = "view_quality"
	AspectBookingService    Aspect = "booking_service"
	AspectStaffBehavior     Aspect = "staff_behavior"
	AspectCleanliness       Aspect = "cleanliness"
	AspectValueForMoney     Aspect = "value_for_money"
)

// Aspects lists every known aspect in display order.  The overall
// experience is the only mandatory one.
var Aspects = []Aspect{
	AspectOverallExperience,
	AspectSoundQuality,
	AspectSeatComfort,
	AspectSeatHeight,
	AspectViewQuality,
	AspectBookingService,
	AspectStaffBehavior,
	AspectCleanliness,
	AspectValueForMoney,
}

// Valid reports whether a is one of the known aspects.
func (a Aspect) Valid() bool {
	for _, known := range Aspects {
		if a == known {
			return true
		}
	}
	return false
}

// AspectScore is the scored form of one supplied aspect.
type AspectScore struct {
	Aspect    Aspect  `json:"aspect"`    // review_aspects.aspect
	Text      string  `json:"text"`      // review_aspects.body
	Score     float64 `json:"score"`     // review_aspects.score
	Sentiment string  `json:"sentiment"` // review_aspects.sentiment
}

// Review is append-only feedback attached to a booked seat.  Aspects holds
// only the aspects that were actually supplied; RawScore is their mean and
// AverageScore the same mean rounded for display.  OverallRating and the
// analytics classification both use RawScore.
type Review struct {
	ID            uint64        `json:"id"`             // reviews.id
	SeatID        uint64        `json:"seat_id"`        // reviews.seat_id
	ClaimantID    string        `json:"claimant_id"`    // reviews.claimant_id
	ClaimantName  string        `json:"claimant_name"`  // reviews.claimant_name
	Aspects       []AspectScore `json:"aspects"`        // review_aspects rows
	AverageScore  float64       `json:"average_score"`  // reviews.average_score
	RawScore      float64       `json:"-"`              // reviews.raw_score
	OverallRating string        `json:"overall_rating"` // reviews.overall_rating
	CreatedAt     time.Time     `json:"created_at"`     // reviews.created_at
}

// Aspect returns the score for a, if it was supplied.
func (r *Review) Aspect(a Aspect) (AspectScore, bool) {
	for _, s := range r.Aspects {
		if s.Aspect == a {
			return s, true
		}
	}
	return AspectScore{}, false
}

// AspectStats aggregates all stored scores of one aspect.
type AspectStats struct {
	Aspect       Aspect  `json:"aspect"`
	Count        int     `json:"count"`
	AverageScore float64 `json:"average_score"`
	Positive     int     `json:"positive"`
	Negative     int     `json:"negative"`
	Neutral      int     `json:"neutral"`
}

// Analytics is computed on demand over every stored review.  Positive,
// Negative and Neutral classify reviews by their unrounded mean score.
type Analytics struct {
	TotalReviews int            `json:"total_reviews"`
	AverageScore float64        `json:"average_score"`
	Positive     int            `json:"positive"`
	Negative     int            `json:"negative"`
	Neutral      int            `json:"neutral"`
	Ratings      map[string]int `json:"ratings"`
	Aspects      []AspectStats  `json:"aspects"`
}
