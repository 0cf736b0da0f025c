package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/iliyamo/seat-booking/internal/model"
	"github.com/iliyamo/seat-booking/internal/monitoring"
	"github.com/iliyamo/seat-booking/internal/repository"
	"github.com/iliyamo/seat-booking/internal/sentiment"
)

// SeatReader looks up a seat without locking it.
type SeatReader interface {
	GetByID(ctx context.Context, id uint64) (*model.Seat, error)
}

// ReviewWriter persists a review and its aspect scores atomically.
type ReviewWriter interface {
	Create(ctx context.Context, rv *model.Review) error
}

// ReviewRecorder scores and stores feedback for booked seats.
type ReviewRecorder struct {
	seats   SeatReader
	reviews ReviewWriter
	scorer  sentiment.Scorer
	events  EventPublisher
	log     *zap.Logger
	now     func() time.Time
}

// NewReviewRecorder constructs a ReviewRecorder.  A nil publisher disables
// events.
func NewReviewRecorder(seats SeatReader, reviews ReviewWriter, scorer sentiment.Scorer, events EventPublisher, log *zap.Logger) *ReviewRecorder {
	if events == nil {
		events = NopPublisher{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ReviewRecorder{seats: seats, reviews: reviews, scorer: scorer, events: events, log: log, now: time.Now}
}

// Submit scores each supplied aspect, derives the aggregate and stores the
// review.  Blank texts count as not supplied and are left out of the mean.
// The claimant is recorded as given; it is not required to match the
// seat's claimant.  When the claimant id is blank the seat's claimant is
// used.  An aspect text longer than MaxAspectRunes fails with
// ErrAspectTooLong before the seat is looked up.
func (r *ReviewRecorder) Submit(ctx context.Context, seatID uint64, c model.Claimant, texts map[model.Aspect]string) (*model.Review, error) {
	overall := strings.TrimSpace(texts[model.AspectOverallExperience])
	if overall == "" {
		return nil, ErrMissingOverall
	}
	for a, text := range texts {
		if !a.Valid() {
			return nil, fmt.Errorf("unknown aspect %q", a)
		}
		if utf8.RuneCountInString(strings.TrimSpace(text)) > MaxAspectRunes {
			return nil, fmt.Errorf("%w: %s", ErrAspectTooLong, a)
		}
	}

	seat, err := r.seats.GetByID(ctx, seatID)
	if err != nil {
		if errors.Is(err, repository.ErrSeatNotFound) {
			return nil, repository.ErrSeatNotFound
		}
		return nil, fmt.Errorf("%w: load seat %d: %w", ErrStorage, seatID, err)
	}
	if seat.Status != model.SeatBooked {
		return nil, ErrSeatNotBooked
	}

	if strings.TrimSpace(c.ID) == "" && seat.ClaimantID != nil {
		c.ID = *seat.ClaimantID
		if c.DisplayName == "" && seat.ClaimantName != nil {
			c.DisplayName = *seat.ClaimantName
		}
	}
	c, err = normalizeClaimant(c)
	if err != nil {
		return nil, err
	}

	rv := &model.Review{
		SeatID:       seatID,
		ClaimantID:   c.ID,
		ClaimantName: c.DisplayName,
		Aspects:      make([]model.AspectScore, 0, len(texts)),
		CreatedAt:    r.now().UTC(),
	}
	raw := make([]float64, 0, len(texts))
	for _, a := range model.Aspects {
		text := strings.TrimSpace(texts[a])
		if text == "" {
			continue
		}
		p := r.scorer.Polarity(text)
		raw = append(raw, p)
		rv.Aspects = append(rv.Aspects, model.AspectScore{
			Aspect:    a,
			Text:      text,
			Score:     sentiment.Round(p),
			Sentiment: sentiment.Label(p),
		})
	}
	mean := sentiment.Mean(raw)
	rv.RawScore = mean
	rv.AverageScore = sentiment.Round(mean)
	rv.OverallRating = sentiment.Rating(mean)

	if err := r.reviews.Create(ctx, rv); err != nil {
		r.log.Error("store review failed", zap.Uint64("seat_id", seatID), zap.Error(err))
		return nil, fmt.Errorf("%w: store review: %w", ErrStorage, err)
	}
	monitoring.TrackReview(rv.OverallRating)
	r.log.Info("review recorded",
		zap.Uint64("seat_id", seatID),
		zap.Uint64("review_id", rv.ID),
		zap.Int("aspects", len(rv.Aspects)),
		zap.Float64("average_score", rv.AverageScore),
		zap.String("overall_rating", rv.OverallRating),
	)

	if err := r.events.PublishReviewRecorded(ctx, *seat, *rv); err != nil {
		monitoring.TrackPublishFailure("review.recorded")
		r.log.Warn("publish review.recorded failed", zap.Uint64("review_id", rv.ID), zap.Error(err))
	}
	return rv, nil
}
