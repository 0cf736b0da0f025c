package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/seat-booking/internal/model"
	"github.com/iliyamo/seat-booking/internal/repository"
)

const (
	defaultReviewLimit = 100
	maxReviewLimit     = 1000
)

// SeatLister is the read side of *repository.SeatRepo.
type SeatLister interface {
	List(ctx context.Context) ([]model.Seat, error)
	GetByID(ctx context.Context, id uint64) (*model.Seat, error)
}

// ReviewLister is the read side of *repository.ReviewRepo.
type ReviewLister interface {
	List(ctx context.Context, limit int) ([]model.Review, error)
	ListBySeat(ctx context.Context, seatID uint64) ([]model.Review, error)
	Analytics(ctx context.Context) (*model.Analytics, error)
}

// QueryHandler serves the read-only endpoints.  Every response is computed
// from the store at request time.
type QueryHandler struct {
	Seats   SeatLister
	Reviews ReviewLister
	Log     *zap.Logger
}

func NewQueryHandler(seats SeatLister, reviews ReviewLister, log *zap.Logger) *QueryHandler {
	if seats == nil || reviews == nil {
		panic("nil repository passed to NewQueryHandler")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &QueryHandler{Seats: seats, Reviews: reviews, Log: log}
}

// ListSeats handles GET /seats.
func (h *QueryHandler) ListSeats(c echo.Context) error {
	seats, err := h.Seats.List(c.Request().Context())
	if err != nil {
		return h.unavailable(c, "list seats", err)
	}
	sum := model.Summarize(seats)
	return c.JSON(http.StatusOK, echo.Map{
		"seats":     seats,
		"total":     sum.Total,
		"available": sum.Available,
		"booked":    sum.Booked,
	})
}

// ListReviews handles GET /reviews?limit=N, newest first.
func (h *QueryHandler) ListReviews(c echo.Context) error {
	limit := defaultReviewLimit
	if s := c.QueryParam("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return c.JSON(http.StatusBadRequest, errorBody("limit must be a positive integer"))
		}
		limit = min(n, maxReviewLimit)
	}
	reviews, err := h.Reviews.List(c.Request().Context(), limit)
	if err != nil {
		return h.unavailable(c, "list reviews", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"reviews": reviews, "count": len(reviews)})
}

// ListSeatReviews handles GET /reviews/:seat_id.
func (h *QueryHandler) ListSeatReviews(c echo.Context) error {
	seatID, ok := parseSeatID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, errorBody("invalid seat_id"))
	}
	ctx := c.Request().Context()
	if _, err := h.Seats.GetByID(ctx, seatID); err != nil {
		if errors.Is(err, repository.ErrSeatNotFound) {
			return c.JSON(http.StatusNotFound, errorBody("seat not found"))
		}
		return h.unavailable(c, "get seat", err)
	}
	reviews, err := h.Reviews.ListBySeat(ctx, seatID)
	if err != nil {
		return h.unavailable(c, "list seat reviews", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"seat_id": seatID, "reviews": reviews, "count": len(reviews)})
}

// Analytics handles GET /analytics.
func (h *QueryHandler) Analytics(c echo.Context) error {
	a, err := h.Reviews.Analytics(c.Request().Context())
	if err != nil {
		return h.unavailable(c, "analytics", err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *QueryHandler) unavailable(c echo.Context, op string, err error) error {
	h.Log.Error(op+" failed", zap.Error(err))
	return c.JSON(http.StatusServiceUnavailable, errorBody("storage unavailable, retry later"))
}
