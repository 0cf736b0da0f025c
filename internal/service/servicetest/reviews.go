package servicetest

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/iliyamo/seat-booking/internal/model"
	"github.com/iliyamo/seat-booking/internal/sentiment"
)

// ErrInjected is returned by Reviews.Create when Fail is set.
var ErrInjected = errors.New("injected failure")

// Reviews is an append-only in-memory review table.
type Reviews struct {
	mu      sync.Mutex
	reviews []model.Review

	// Fail makes Create return ErrInjected without storing anything.
	Fail bool
}

// NewReviews returns an empty table.
func NewReviews() *Reviews { return &Reviews{} }

// Create stores a copy of rv and assigns its id.
func (r *Reviews) Create(_ context.Context, rv *model.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Fail {
		return ErrInjected
	}
	rv.ID = uint64(len(r.reviews) + 1)
	if rv.CreatedAt.IsZero() {
		rv.CreatedAt = time.Now().UTC()
	}
	cp := *rv
	cp.Aspects = slices.Clone(rv.Aspects)
	r.reviews = append(r.reviews, cp)
	return nil
}

// Len reports how many reviews are stored.
func (r *Reviews) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.reviews)
}

// List returns the newest reviews first, at most limit (all when <= 0).
func (r *Reviews) List(_ context.Context, limit int) ([]model.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Review, 0, len(r.reviews))
	for i := len(r.reviews) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, r.reviews[i])
	}
	return out, nil
}

// ListBySeat returns the reviews of one seat, newest first.
func (r *Reviews) ListBySeat(_ context.Context, seatID uint64) ([]model.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Review, 0)
	for i := len(r.reviews) - 1; i >= 0; i-- {
		if r.reviews[i].SeatID == seatID {
			out = append(out, r.reviews[i])
		}
	}
	return out, nil
}

// Analytics computes the same figures as the SQL aggregate queries.
func (r *Reviews) Analytics(_ context.Context) (*model.Analytics, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := &model.Analytics{Ratings: map[string]int{}, Aspects: []model.AspectStats{}}
	scores := make([]float64, 0, len(r.reviews))
	perAspect := map[model.Aspect][]model.AspectScore{}
	for _, rv := range r.reviews {
		out.TotalReviews++
		scores = append(scores, rv.AverageScore)
		switch sentiment.Label(rv.RawScore) {
		case sentiment.Positive:
			out.Positive++
		case sentiment.Negative:
			out.Negative++
		default:
			out.Neutral++
		}
		out.Ratings[rv.OverallRating]++
		for _, a := range rv.Aspects {
			perAspect[a.Aspect] = append(perAspect[a.Aspect], a)
		}
	}
	out.AverageScore = sentiment.Mean(scores)
	for _, a := range model.Aspects {
		list, ok := perAspect[a]
		if !ok {
			continue
		}
		st := model.AspectStats{Aspect: a, Count: len(list)}
		vals := make([]float64, 0, len(list))
		for _, s := range list {
			vals = append(vals, s.Score)
			switch s.Sentiment {
			case sentiment.Positive:
				st.Positive++
			case sentiment.Negative:
				st.Negative++
			default:
				st.Neutral++
			}
		}
		st.AverageScore = sentiment.Mean(vals)
		out.Aspects = append(out.Aspects, st)
	}
	return out, nil
}
