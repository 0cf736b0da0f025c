package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iliyamo/seat-booking/internal/handler"
	"github.com/iliyamo/seat-booking/internal/middleware"
)

// RegisterRoutes registers operational routes that never require
// authentication: the health check and the Prometheus scrape endpoint.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// RegisterQuery registers the read-only inventory, review and analytics
// endpoints.  Nothing here is cached.
func RegisterQuery(e *echo.Echo, q *handler.QueryHandler) {
	e.GET("/seats", q.ListSeats)
	e.GET("/reviews", q.ListReviews)
	e.GET("/reviews/:seat_id", q.ListSeatReviews)
	e.GET("/analytics", q.Analytics)
}

// MaxWriteBody caps request bodies on the write endpoints.  Nine aspect
// texts of a few thousand characters fit comfortably.
const MaxWriteBody = "64K"

// RegisterBooking registers the write endpoints.  A bearer token is
// optional; when present it must be valid and its subject becomes the
// claimant.  Admin tokens are refused so the admin subject never ends up
// as a seat claimant.  limiter throttles bursts before they reach the seat
// lock.
func RegisterBooking(e *echo.Echo, b *handler.BookingHandler, r *handler.ReviewHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	mw := []echo.MiddlewareFunc{
		echomw.BodyLimit(MaxWriteBody),
		middleware.OptionalJWT(jwtSecret),
		middleware.DenyRole(middleware.RoleAdmin),
	}
	if limiter != nil {
		mw = append(mw, limiter)
	}
	e.POST("/book/:seat_id", b.Book, mw...)
	e.POST("/review/:seat_id", r.Submit, mw...)
}

// RegisterAdmin registers the admin token endpoint and the ADMIN-only
// inventory endpoint under /admin.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string) {
	g := e.Group("/admin")
	g.POST("/token", a.Token)
	g.POST("/seats", a.CreateSeats, middleware.JWTAuth(jwtSecret), middleware.RequireRole(middleware.RoleAdmin))
}
