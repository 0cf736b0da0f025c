package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/seat-booking/internal/middleware"
	"github.com/iliyamo/seat-booking/internal/model"
	"github.com/iliyamo/seat-booking/internal/service"
	"github.com/iliyamo/seat-booking/internal/service/servicetest"
	"github.com/iliyamo/seat-booking/internal/utils"
)

const testSecret = "handler-secret"

type env struct {
	e       *echo.Echo
	seats   *servicetest.Seats
	reviews *servicetest.Reviews
}

func newEnv(t *testing.T, n int) *env {
	t.Helper()
	seats := servicetest.NewSeats(n)
	reviews := servicetest.NewReviews()
	scorer := servicetest.Scorer{"great night": 0.4, "a bit loud": -0.2, "it was a seat": 0.0, "awful": -0.9}

	bh := NewBookingHandler(service.NewBooker(seats, nil, nil), nil)
	rh := NewReviewHandler(service.NewReviewRecorder(seats, reviews, scorer, nil, nil), nil)
	qh := NewQueryHandler(seats, reviews, nil)

	e := echo.New()
	e.GET("/seats", qh.ListSeats)
	e.GET("/reviews", qh.ListReviews)
	e.GET("/reviews/:seat_id", qh.ListSeatReviews)
	e.GET("/analytics", qh.Analytics)
	auth := []echo.MiddlewareFunc{middleware.OptionalJWT(testSecret), middleware.DenyRole(middleware.RoleAdmin)}
	e.POST("/book/:seat_id", bh.Book, auth...)
	e.POST("/review/:seat_id", rh.Submit, auth...)
	return &env{e: e, seats: seats, reviews: reviews}
}

func (v *env) do(method, path, body string, hdr ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for i := 0; i+1 < len(hdr); i += 2 {
		req.Header.Set(hdr[i], hdr[i+1])
	}
	rec := httptest.NewRecorder()
	v.e.ServeHTTP(rec, req)
	return rec
}

type seatsResponse struct {
	Seats     []model.Seat `json:"seats"`
	Total     int          `json:"total"`
	Available int          `json:"available"`
	Booked    int          `json:"booked"`
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func seatByID(t *testing.T, seats []model.Seat, id uint64) model.Seat {
	t.Helper()
	for _, s := range seats {
		if s.ID == id {
			return s
		}
	}
	t.Fatalf("seat %d not listed", id)
	return model.Seat{}
}

func TestSecondClaimantCannotTakeBookedSeat(t *testing.T) {
	v := newEnv(t, 10)

	rec := v.do(http.MethodPost, "/book/3", `{"claimant_id":"A","display_name":"Alice"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = v.do(http.MethodGet, "/seats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[seatsResponse](t, rec)
	assert.Equal(t, 10, got.Total)
	assert.Equal(t, 9, got.Available)
	assert.Equal(t, 1, got.Booked)
	s3 := seatByID(t, got.Seats, 3)
	require.NotNil(t, s3.ClaimantName)
	assert.Equal(t, "Alice", *s3.ClaimantName)

	rec = v.do(http.MethodPost, "/book/3", `{"claimant_id":"B","display_name":"Bob"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "already_booked", decode[map[string]any](t, rec)["status"])

	got = decode[seatsResponse](t, v.do(http.MethodGet, "/seats", ""))
	s3 = seatByID(t, got.Seats, 3)
	assert.Equal(t, "A", *s3.ClaimantID)
	assert.Equal(t, "Alice", *s3.ClaimantName)
	assert.Equal(t, 1, got.Booked)
}

func TestBookErrors(t *testing.T) {
	v := newEnv(t, 3)

	assert.Equal(t, http.StatusNotFound, v.do(http.MethodPost, "/book/42", `{"claimant_id":"A"}`).Code)
	assert.Equal(t, 3, v.seats.Len())
	assert.Equal(t, http.StatusBadRequest, v.do(http.MethodPost, "/book/abc", `{"claimant_id":"A"}`).Code)
	assert.Equal(t, http.StatusBadRequest, v.do(http.MethodPost, "/book/0", `{"claimant_id":"A"}`).Code)
	assert.Equal(t, http.StatusBadRequest, v.do(http.MethodPost, "/book/1", `{"claimant_id":"  "}`).Code)
	assert.Equal(t, http.StatusBadRequest, v.do(http.MethodPost, "/book/1", `{not json`).Code)

	v.seats.CommitErr = func(uint64) error { return errors.New("disk full") }
	assert.Equal(t, http.StatusServiceUnavailable, v.do(http.MethodPost, "/book/1", `{"claimant_id":"A"}`).Code)
	v.seats.CommitErr = nil

	// the failed attempt left the seat bookable
	assert.Equal(t, http.StatusOK, v.do(http.MethodPost, "/book/1", `{"claimant_id":"A"}`).Code)
}

func TestBookTokenSubjectWins(t *testing.T) {
	v := newEnv(t, 2)
	at, err := utils.NewAccessToken(testSecret, "u-token", "", 5)
	require.NoError(t, err)

	rec := v.do(http.MethodPost, "/book/2", `{"claimant_id":"spoofed"}`, "Authorization", "Bearer "+at.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	seat, err := v.seats.GetByID(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "u-token", *seat.ClaimantID)

	rec = v.do(http.MethodPost, "/book/1", `{"claimant_id":"A"}`, "Authorization", "Bearer nope")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestWriteEndpointsRefuseAdminToken(t *testing.T) {
	v := newEnv(t, 2)
	at, err := utils.NewAccessToken(testSecret, "admin", middleware.RoleAdmin, 5)
	require.NoError(t, err)
	auth := []string{"Authorization", "Bearer " + at.Token}

	assert.Equal(t, http.StatusForbidden, v.do(http.MethodPost, "/book/1", `{"claimant_id":"A"}`, auth...).Code)
	seat, err := v.seats.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, model.SeatAvailable, seat.Status)

	require.Equal(t, http.StatusOK, v.do(http.MethodPost, "/book/1", `{"claimant_id":"A"}`).Code)
	assert.Equal(t, http.StatusForbidden, v.do(http.MethodPost, "/review/1", `{"overall_experience":"great night"}`, auth...).Code)
	assert.Equal(t, 0, v.reviews.Len())
}

func TestReviewRejectsOversizeAspect(t *testing.T) {
	v := newEnv(t, 2)
	require.Equal(t, http.StatusOK, v.do(http.MethodPost, "/book/1", `{"claimant_id":"A"}`).Code)

	long := strings.Repeat("x", service.MaxAspectRunes+1)
	rec := v.do(http.MethodPost, "/review/1", `{"overall_experience":"great night","view_quality_review":"`+long+`"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	assert.Contains(t, decode[map[string]any](t, rec)["error"], "too long")
	assert.Equal(t, 0, v.reviews.Len())
}

func TestReviewFlow(t *testing.T) {
	v := newEnv(t, 3)
	review := `{"claimant_id":"A","overall_experience":"great night","sound_quality_review":"a bit loud","seat_height_review":"it was a seat","cleanliness_review":""}`

	rec := v.do(http.MethodPost, "/review/1", review)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, 0, v.reviews.Len())

	require.Equal(t, http.StatusOK, v.do(http.MethodPost, "/book/1", `{"claimant_id":"A","display_name":"Alice"}`).Code)

	rec = v.do(http.MethodPost, "/review/1", review)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decode[struct {
		Analysis map[string]json.RawMessage `json:"review_analysis"`
	}](t, rec)
	assert.JSONEq(t, `"average"`, string(body.Analysis["overall_rating"]))
	assert.JSONEq(t, `0.0667`, string(body.Analysis["average_score"]))
	assert.JSONEq(t, `{"score":0.4,"sentiment":"positive"}`, string(body.Analysis["overall_experience"]))
	assert.JSONEq(t, `{"score":-0.2,"sentiment":"negative"}`, string(body.Analysis["sound_quality"]))
	assert.NotContains(t, body.Analysis, "cleanliness")

	assert.Equal(t, http.StatusBadRequest, v.do(http.MethodPost, "/review/1", `{"claimant_id":"A","sound_quality_review":"awful"}`).Code)
	assert.Equal(t, http.StatusNotFound, v.do(http.MethodPost, "/review/9", review).Code)
	assert.Equal(t, 1, v.reviews.Len())
}

func TestQueryEndpoints(t *testing.T) {
	v := newEnv(t, 3)
	require.Equal(t, http.StatusOK, v.do(http.MethodPost, "/book/2", `{"claimant_id":"A"}`).Code)
	require.Equal(t, http.StatusCreated, v.do(http.MethodPost, "/review/2", `{"overall_experience":"awful"}`).Code)

	rec := v.do(http.MethodGet, "/reviews?limit=5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[struct {
		Reviews []model.Review `json:"reviews"`
		Count   int            `json:"count"`
	}](t, rec)
	require.Equal(t, 1, list.Count)
	assert.Equal(t, "A", list.Reviews[0].ClaimantID)
	assert.Equal(t, "very_poor", list.Reviews[0].OverallRating)

	assert.Equal(t, http.StatusBadRequest, v.do(http.MethodGet, "/reviews?limit=abc", "").Code)
	assert.Equal(t, http.StatusBadRequest, v.do(http.MethodGet, "/reviews?limit=0", "").Code)
	assert.Equal(t, http.StatusNotFound, v.do(http.MethodGet, "/reviews/99", "").Code)

	rec = v.do(http.MethodGet, "/reviews/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), decode[map[string]any](t, rec)["count"])

	rec = v.do(http.MethodGet, "/analytics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	a := decode[model.Analytics](t, rec)
	assert.Equal(t, 1, a.TotalReviews)
	assert.Equal(t, 1, a.Negative)
	assert.Equal(t, 1, a.Ratings["very_poor"])
}

func TestAdminHandler(t *testing.T) {
	seats := servicetest.NewSeats(2)
	hash, err := utils.HashPassword("letmein", bcrypt.MinCost)
	require.NoError(t, err)
	h := NewAdminHandler(seats, testSecret, hash, 5, nil)

	e := echo.New()
	e.POST("/admin/token", h.Token)
	e.POST("/admin/seats", h.CreateSeats, middleware.JWTAuth(testSecret), middleware.RequireRole(middleware.RoleAdmin))
	v := &env{e: e, seats: seats}

	assert.Equal(t, http.StatusUnauthorized, v.do(http.MethodPost, "/admin/token", `{"password":"nope"}`).Code)
	assert.Equal(t, http.StatusBadRequest, v.do(http.MethodPost, "/admin/token", `{}`).Code)

	rec := v.do(http.MethodPost, "/admin/token", `{"password":"letmein"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	token := decode[map[string]any](t, rec)["access_token"].(string)
	auth := []string{"Authorization", "Bearer " + token}

	assert.Equal(t, http.StatusUnauthorized, v.do(http.MethodPost, "/admin/seats", `{"seat_numbers":["B1"]}`).Code)

	rec = v.do(http.MethodPost, "/admin/seats", `{"seat_numbers":["b1"," B2 "]}`, auth...)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, 4, seats.Len())

	assert.Equal(t, http.StatusConflict, v.do(http.MethodPost, "/admin/seats", `{"seat_numbers":["A1"]}`, auth...).Code)
	assert.Equal(t, http.StatusBadRequest, v.do(http.MethodPost, "/admin/seats", `{"seat_numbers":["C1","c1"]}`, auth...).Code)
	assert.Equal(t, http.StatusBadRequest, v.do(http.MethodPost, "/admin/seats", `{"seat_numbers":[]}`, auth...).Code)
	assert.Equal(t, 4, seats.Len())
}

func TestHealth(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/healthz", nil), rec)
	require.NoError(t, Health(c))
	assert.Equal(t, "ok", rec.Body.String())
}
