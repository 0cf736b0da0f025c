package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/seat-booking/internal/handler"
	"github.com/iliyamo/seat-booking/internal/middleware"
	"github.com/iliyamo/seat-booking/internal/service"
	"github.com/iliyamo/seat-booking/internal/service/servicetest"
	"github.com/iliyamo/seat-booking/internal/utils"
)

func TestRoutesWired(t *testing.T) {
	seats := servicetest.NewSeats(2)
	reviews := servicetest.NewReviews()

	e := echo.New()
	RegisterRoutes(e)
	RegisterQuery(e, handler.NewQueryHandler(seats, reviews, nil))
	RegisterBooking(e,
		handler.NewBookingHandler(service.NewBooker(seats, nil, nil), nil),
		handler.NewReviewHandler(service.NewReviewRecorder(seats, reviews, servicetest.Scorer{}, nil, nil), nil),
		"secret", nil)
	RegisterAdmin(e, handler.NewAdminHandler(seats, "secret", "", 5, nil), "secret")

	cases := []struct {
		method, path, body string
		want               int
	}{
		{http.MethodGet, "/healthz", "", http.StatusOK},
		{http.MethodGet, "/metrics", "", http.StatusOK},
		{http.MethodGet, "/seats", "", http.StatusOK},
		{http.MethodGet, "/reviews", "", http.StatusOK},
		{http.MethodGet, "/reviews/1", "", http.StatusOK},
		{http.MethodGet, "/analytics", "", http.StatusOK},
		{http.MethodPost, "/book/1", `{"claimant_id":"A"}`, http.StatusOK},
		{http.MethodPost, "/review/1", `{"overall_experience":"fine"}`, http.StatusCreated},
		{http.MethodPost, "/admin/token", `{"password":"x"}`, http.StatusUnauthorized},
		{http.MethodPost, "/admin/seats", `{"seat_numbers":["B1"]}`, http.StatusUnauthorized},
		{http.MethodPost, "/review/1", `{"overall_experience":"` + strings.Repeat("x", 70*1024) + `"}`, http.StatusRequestEntityTooLarge},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, tc.want, rec.Code, "%s %s", tc.method, tc.path)
	}
}

func TestBookingRoutesRefuseAdminToken(t *testing.T) {
	seats := servicetest.NewSeats(1)
	e := echo.New()
	RegisterBooking(e,
		handler.NewBookingHandler(service.NewBooker(seats, nil, nil), nil),
		handler.NewReviewHandler(service.NewReviewRecorder(seats, servicetest.NewReviews(), servicetest.Scorer{}, nil, nil), nil),
		"secret", nil)
	at, err := utils.NewAccessToken("secret", "admin", middleware.RoleAdmin, 5)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/book/1", strings.NewReader(`{"claimant_id":"A"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("Authorization", "Bearer "+at.Token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
