package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/seat-booking/internal/middleware"
	"github.com/iliyamo/seat-booking/internal/model"
	"github.com/iliyamo/seat-booking/internal/service"
)

// SeatBooker is implemented by *service.Booker.
type SeatBooker interface {
	Book(ctx context.Context, seatID uint64, c model.Claimant) (service.Outcome, error)
}

// BookingHandler serves POST /book/:seat_id.
type BookingHandler struct {
	Booker SeatBooker
	Log    *zap.Logger
}

func NewBookingHandler(b SeatBooker, log *zap.Logger) *BookingHandler {
	if b == nil {
		panic("nil booker passed to NewBookingHandler")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &BookingHandler{Booker: b, Log: log}
}

type bookRequest struct {
	ClaimantID  string `json:"claimant_id"`
	DisplayName string `json:"display_name"`
}

// Book claims a seat.  A verified bearer token's subject replaces any
// claimant_id in the body.  Losing a race is a 409 with status
// already_booked, never a 5xx.
func (h *BookingHandler) Book(c echo.Context) error {
	seatID, ok := parseSeatID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, errorBody("invalid seat_id"))
	}
	var body bookRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
	}
	claimant := model.Claimant{ID: body.ClaimantID, DisplayName: body.DisplayName}
	if sub, ok := middleware.ClaimantID(c); ok {
		claimant.ID = sub
		if claimant.DisplayName == "" {
			claimant.DisplayName = middleware.ClaimantName(c)
		}
	}

	out, err := h.Booker.Book(c.Request().Context(), seatID, claimant)
	switch {
	case errors.Is(err, service.ErrInvalidClaimant):
		return c.JSON(http.StatusBadRequest, errorBody("claimant_id is required (max 64 chars), display_name max 120 chars"))
	case errors.Is(err, service.ErrStorage):
		h.Log.Error("booking failed", zap.Uint64("seat_id", seatID), zap.Error(err))
		return c.JSON(http.StatusServiceUnavailable, errorBody("storage unavailable, retry later"))
	case err != nil:
		h.Log.Error("booking failed", zap.Uint64("seat_id", seatID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, errorBody("could not book seat"))
	}

	switch out.Status {
	case service.Confirmed:
		return c.JSON(http.StatusOK, echo.Map{"status": out.Status, "seat": out.Seat})
	case service.NotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"status": out.Status, "error": "seat not found"})
	default:
		return c.JSON(http.StatusConflict, echo.Map{"status": out.Status, "error": "seat already booked"})
	}
}
