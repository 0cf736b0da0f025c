package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/seat-booking/internal/middleware"
	"github.com/iliyamo/seat-booking/internal/model"
	"github.com/iliyamo/seat-booking/internal/repository"
	"github.com/iliyamo/seat-booking/internal/utils"
)

const (
	adminSubject     = "admin"
	maxSeatNumberLen = 10
	maxSeatsPerCall  = 500
)

// SeatCreator is implemented by *repository.SeatRepo.
type SeatCreator interface {
	CreateBulk(ctx context.Context, seatNumbers []string) ([]model.Seat, error)
}

// AdminHandler issues admin tokens and manages the seat inventory.
type AdminHandler struct {
	Seats        SeatCreator
	JWTSecret    string
	PasswordHash string // bcrypt; empty disables POST /admin/token
	AccessTTLMin int
	Log          *zap.Logger
}

func NewAdminHandler(seats SeatCreator, jwtSecret, passwordHash string, accessTTLMin int, log *zap.Logger) *AdminHandler {
	if seats == nil {
		panic("nil repository passed to NewAdminHandler")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &AdminHandler{
		Seats:        seats,
		JWTSecret:    jwtSecret,
		PasswordHash: passwordHash,
		AccessTTLMin: accessTTLMin,
		Log:          log,
	}
}

// Token handles POST /admin/token: {password} -> {access_token, expires_at}.
func (h *AdminHandler) Token(c echo.Context) error {
	var body struct {
		Password string `json:"password"`
	}
	if err := c.Bind(&body); err != nil || body.Password == "" {
		return c.JSON(http.StatusBadRequest, errorBody("password is required"))
	}
	if h.PasswordHash == "" || !utils.VerifyPassword(h.PasswordHash, body.Password) {
		return c.JSON(http.StatusUnauthorized, errorBody("invalid credentials"))
	}
	at, err := utils.NewAccessToken(h.JWTSecret, adminSubject, middleware.RoleAdmin, h.AccessTTLMin)
	if err != nil {
		h.Log.Error("sign admin token", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, errorBody("could not issue token"))
	}
	return c.JSON(http.StatusOK, echo.Map{"access_token": at.Token, "expires_at": at.Exp})
}

// CreateSeats handles POST /admin/seats: {seat_numbers: [...]}.  The batch
// is all or nothing; an existing seat number fails it with 409.
func (h *AdminHandler) CreateSeats(c echo.Context) error {
	var body struct {
		SeatNumbers []string `json:"seat_numbers"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
	}
	numbers, msg := normalizeSeatNumbers(body.SeatNumbers)
	if msg != "" {
		return c.JSON(http.StatusBadRequest, errorBody(msg))
	}

	seats, err := h.Seats.CreateBulk(c.Request().Context(), numbers)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, errorBody("seat number already exists"))
		}
		h.Log.Error("create seats", zap.Error(err))
		return c.JSON(http.StatusServiceUnavailable, errorBody("storage unavailable, retry later"))
	}
	h.Log.Info("seats created", zap.Int("count", len(seats)))
	return c.JSON(http.StatusCreated, echo.Map{"seats": seats, "count": len(seats)})
}

// normalizeSeatNumbers upper-cases and trims labels and rejects empty,
// oversized or repeated ones.  A non-empty message means invalid input.
func normalizeSeatNumbers(in []string) ([]string, string) {
	if len(in) == 0 {
		return nil, "seat_numbers is required"
	}
	if len(in) > maxSeatsPerCall {
		return nil, "too many seat_numbers"
	}
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, n := range in {
		n = strings.ToUpper(strings.TrimSpace(n))
		if n == "" || len(n) > maxSeatNumberLen {
			return nil, "seat numbers must be 1-10 characters"
		}
		if seen[n] {
			return nil, "duplicate seat number " + n
		}
		seen[n] = true
		out = append(out, n)
	}
	return out, ""
}
