package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/seat-booking/internal/model"
	"github.com/iliyamo/seat-booking/internal/repository"
	"github.com/iliyamo/seat-booking/internal/sentiment"
	"github.com/iliyamo/seat-booking/internal/service/servicetest"
)

func bookedSeats(t *testing.T) *servicetest.Seats {
	t.Helper()
	seats := servicetest.NewSeats(3)
	out, err := NewBooker(seats, nil, nil).Book(context.Background(), 1, model.Claimant{ID: "101", DisplayName: "Alice"})
	require.NoError(t, err)
	require.Equal(t, Confirmed, out.Status)
	return seats
}

func TestSubmit_AggregatesSuppliedAspectsOnly(t *testing.T) {
	seats := bookedSeats(t)
	reviews := servicetest.NewReviews()
	scorer := servicetest.Scorer{"great night": 0.4, "a bit loud": -0.2, "it was a seat": 0.0}
	pub := &recordingPublisher{}
	rec := NewReviewRecorder(seats, reviews, scorer, pub, nil)

	rv, err := rec.Submit(context.Background(), 1, model.Claimant{ID: "101", DisplayName: "Alice"}, map[model.Aspect]string{
		model.AspectOverallExperience: "great night",
		model.AspectSoundQuality:      "a bit loud",
		model.AspectSeatHeight:        "it was a seat",
		model.AspectCleanliness:       "   ",
	})
	require.NoError(t, err)

	require.Len(t, rv.Aspects, 3)
	assert.Equal(t, 0.0667, rv.AverageScore)
	assert.Equal(t, sentiment.Average, rv.OverallRating)

	overall, ok := rv.Aspect(model.AspectOverallExperience)
	require.True(t, ok)
	assert.Equal(t, 0.4, overall.Score)
	assert.Equal(t, sentiment.Positive, overall.Sentiment)

	sound, _ := rv.Aspect(model.AspectSoundQuality)
	assert.Equal(t, sentiment.Negative, sound.Sentiment)
	height, _ := rv.Aspect(model.AspectSeatHeight)
	assert.Equal(t, sentiment.Neutral, height.Sentiment)
	_, ok = rv.Aspect(model.AspectCleanliness)
	assert.False(t, ok)

	assert.Equal(t, 1, reviews.Len())
	assert.NotZero(t, rv.ID)
	assert.Len(t, pub.reviews, 1)
}

func TestSubmit_RejectsAvailableSeat(t *testing.T) {
	seats := bookedSeats(t)
	reviews := servicetest.NewReviews()
	rec := NewReviewRecorder(seats, reviews, sentiment.NewVader(), nil, nil)

	_, err := rec.Submit(context.Background(), 2, model.Claimant{ID: "101"}, map[model.Aspect]string{
		model.AspectOverallExperience: "lovely",
	})
	assert.ErrorIs(t, err, ErrSeatNotBooked)
	assert.Equal(t, 0, reviews.Len())
}

func TestSubmit_UnknownSeat(t *testing.T) {
	rec := NewReviewRecorder(bookedSeats(t), servicetest.NewReviews(), sentiment.NewVader(), nil, nil)

	_, err := rec.Submit(context.Background(), 42, model.Claimant{ID: "101"}, map[model.Aspect]string{
		model.AspectOverallExperience: "lovely",
	})
	assert.ErrorIs(t, err, repository.ErrSeatNotFound)
}

func TestSubmit_RequiresOverallExperience(t *testing.T) {
	reviews := servicetest.NewReviews()
	rec := NewReviewRecorder(bookedSeats(t), reviews, sentiment.NewVader(), nil, nil)

	_, err := rec.Submit(context.Background(), 1, model.Claimant{ID: "101"}, map[model.Aspect]string{
		model.AspectSoundQuality: "crisp",
	})
	assert.ErrorIs(t, err, ErrMissingOverall)
	assert.Equal(t, 0, reviews.Len())
}

func TestSubmit_ClaimantNotRequiredToMatch(t *testing.T) {
	rec := NewReviewRecorder(bookedSeats(t), servicetest.NewReviews(), sentiment.NewVader(), nil, nil)

	rv, err := rec.Submit(context.Background(), 1, model.Claimant{ID: "someone-else"}, map[model.Aspect]string{
		model.AspectOverallExperience: "fine",
	})
	require.NoError(t, err)
	assert.Equal(t, "someone-else", rv.ClaimantID)
}

func TestSubmit_BlankClaimantFallsBackToSeatClaimant(t *testing.T) {
	rec := NewReviewRecorder(bookedSeats(t), servicetest.NewReviews(), sentiment.NewVader(), nil, nil)

	rv, err := rec.Submit(context.Background(), 1, model.Claimant{}, map[model.Aspect]string{
		model.AspectOverallExperience: "fine",
	})
	require.NoError(t, err)
	assert.Equal(t, "101", rv.ClaimantID)
	assert.Equal(t, "Alice", rv.ClaimantName)
}

func TestSubmit_StorageFailure(t *testing.T) {
	reviews := servicetest.NewReviews()
	reviews.Fail = true
	rec := NewReviewRecorder(bookedSeats(t), reviews, sentiment.NewVader(), nil, nil)

	_, err := rec.Submit(context.Background(), 1, model.Claimant{ID: "101"}, map[model.Aspect]string{
		model.AspectOverallExperience: "fine",
	})
	assert.ErrorIs(t, err, ErrStorage)
	assert.ErrorIs(t, err, servicetest.ErrInjected)
}

func TestSubmit_SameTextScoresTheSame(t *testing.T) {
	rec := NewReviewRecorder(bookedSeats(t), servicetest.NewReviews(), sentiment.NewVader(), nil, nil)
	texts := map[model.Aspect]string{model.AspectOverallExperience: "The staff were very friendly but the seat was not comfortable"}

	first, err := rec.Submit(context.Background(), 1, model.Claimant{ID: "101"}, texts)
	require.NoError(t, err)
	second, err := rec.Submit(context.Background(), 1, model.Claimant{ID: "101"}, texts)
	require.NoError(t, err)
	assert.Equal(t, first.Aspects, second.Aspects)
	assert.Equal(t, first.AverageScore, second.AverageScore)
}

func TestSubmit_AnalyticsClassifiesOnUnroundedMean(t *testing.T) {
	reviews := servicetest.NewReviews()
	rec := NewReviewRecorder(bookedSeats(t), reviews, servicetest.Scorer{"on the fence": 0.10004}, nil, nil)

	rv, err := rec.Submit(context.Background(), 1, model.Claimant{ID: "101"}, map[model.Aspect]string{
		model.AspectOverallExperience: "on the fence",
	})
	require.NoError(t, err)
	assert.Equal(t, 0.1, rv.AverageScore)
	assert.Equal(t, 0.10004, rv.RawScore)
	assert.Equal(t, sentiment.Neutral, sentiment.Label(rv.AverageScore))

	a, err := reviews.Analytics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, a.Positive)
	assert.Equal(t, 0, a.Neutral)
	assert.Equal(t, map[string]int{sentiment.Average: 1}, a.Ratings)
}

func TestSubmit_RejectsOversizeAspect(t *testing.T) {
	reviews := servicetest.NewReviews()
	rec := NewReviewRecorder(bookedSeats(t), reviews, sentiment.NewVader(), nil, nil)

	_, err := rec.Submit(context.Background(), 1, model.Claimant{ID: "101"}, map[model.Aspect]string{
		model.AspectOverallExperience: "fine",
		model.AspectSoundQuality:      strings.Repeat("é", MaxAspectRunes+1),
	})
	assert.ErrorIs(t, err, ErrAspectTooLong)
	assert.NotErrorIs(t, err, ErrStorage)
	assert.Equal(t, 0, reviews.Len())

	rv, err := rec.Submit(context.Background(), 1, model.Claimant{ID: "101"}, map[model.Aspect]string{
		model.AspectOverallExperience: strings.Repeat("é", MaxAspectRunes),
	})
	require.NoError(t, err)
	assert.Len(t, rv.Aspects, 1)
}
