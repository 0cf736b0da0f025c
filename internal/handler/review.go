package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/seat-booking/internal/middleware"
	"github.com/iliyamo/seat-booking/internal/model"
	"github.com/iliyamo/seat-booking/internal/repository"
	"github.com/iliyamo/seat-booking/internal/sentiment"
	"github.com/iliyamo/seat-booking/internal/service"
)

// ReviewSubmitter is implemented by *service.ReviewRecorder.
type ReviewSubmitter interface {
	Submit(ctx context.Context, seatID uint64, c model.Claimant, texts map[model.Aspect]string) (*model.Review, error)
}

// ReviewHandler serves POST /review/:seat_id.
type ReviewHandler struct {
	Recorder ReviewSubmitter
	Log      *zap.Logger
}

func NewReviewHandler(r ReviewSubmitter, log *zap.Logger) *ReviewHandler {
	if r == nil {
		panic("nil recorder passed to NewReviewHandler")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ReviewHandler{Recorder: r, Log: log}
}

// reviewRequest uses the field names of the booking page form.
type reviewRequest struct {
	ClaimantID     string `json:"claimant_id"`
	DisplayName    string `json:"display_name"`
	Overall        string `json:"overall_experience"`
	SoundQuality   string `json:"sound_quality_review"`
	SeatComfort    string `json:"seat_comfort_review"`
	SeatHeight     string `json:"seat_height_review"`
	ViewQuality    string `json:"view_quality_review"`
	BookingService string `json:"booking_service_review"`
	StaffBehavior  string `json:"staff_behavior_review"`
	Cleanliness    string `json:"cleanliness_review"`
	ValueForMoney  string `json:"value_for_money_review"`
}

func (r reviewRequest) texts() map[model.Aspect]string {
	return map[model.Aspect]string{
		model.AspectOverallExperience: r.Overall,
		model.AspectSoundQuality:      r.SoundQuality,
		model.AspectSeatComfort:       r.SeatComfort,
		model.AspectSeatHeight:        r.SeatHeight,
		model.AspectViewQuality:       r.ViewQuality,
		model.AspectBookingService:    r.BookingService,
		model.AspectStaffBehavior:     r.StaffBehavior,
		model.AspectCleanliness:       r.Cleanliness,
		model.AspectValueForMoney:     r.ValueForMoney,
	}
}

// Submit scores and stores a review for a booked seat and answers with the
// analysis.
func (h *ReviewHandler) Submit(c echo.Context) error {
	seatID, ok := parseSeatID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, errorBody("invalid seat_id"))
	}
	var body reviewRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
	}
	claimant := model.Claimant{ID: body.ClaimantID, DisplayName: body.DisplayName}
	if sub, ok := middleware.ClaimantID(c); ok {
		claimant.ID = sub
	}

	rv, err := h.Recorder.Submit(c.Request().Context(), seatID, claimant, body.texts())
	switch {
	case err == nil:
		return c.JSON(http.StatusCreated, echo.Map{"review_id": rv.ID, "review_analysis": analysis(rv)})
	case errors.Is(err, repository.ErrSeatNotFound):
		return c.JSON(http.StatusNotFound, errorBody("seat not found"))
	case errors.Is(err, service.ErrSeatNotBooked):
		return c.JSON(http.StatusConflict, errorBody("seat not booked"))
	case errors.Is(err, service.ErrMissingOverall):
		return c.JSON(http.StatusBadRequest, errorBody("overall_experience is required"))
	case errors.Is(err, service.ErrInvalidClaimant):
		return c.JSON(http.StatusBadRequest, errorBody("invalid claimant"))
	case errors.Is(err, service.ErrAspectTooLong):
		return c.JSON(http.StatusBadRequest, errorBody(fmt.Sprintf("review text too long (max %d characters per aspect)", service.MaxAspectRunes)))
	case errors.Is(err, service.ErrStorage):
		h.Log.Error("review failed", zap.Uint64("seat_id", seatID), zap.Error(err))
		return c.JSON(http.StatusServiceUnavailable, errorBody("storage unavailable, retry later"))
	default:
		h.Log.Error("review failed", zap.Uint64("seat_id", seatID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, errorBody("could not record review"))
	}
}

// analysis flattens a review into {overall_rating, average_score,
// <aspect>: {score, sentiment}}.  Aspects that were not supplied are left
// out.
func analysis(rv *model.Review) echo.Map {
	out := echo.Map{
		"overall_rating": rv.OverallRating,
		"average_score":  rv.AverageScore,
	}
	for _, a := range rv.Aspects {
		out[string(a.Aspect)] = sentiment.Result{Score: a.Score, Sentiment: a.Sentiment}
	}
	return out
}
