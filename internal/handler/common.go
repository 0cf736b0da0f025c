package handler // handler defines http handlers

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

// parseSeatID reads the :seat_id path parameter.  Zero and non-numeric
// values are rejected.
func parseSeatID(c echo.Context) (uint64, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(c.Param("seat_id")), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// errorBody is the JSON shape of every error response.
func errorBody(msg string) echo.Map {
	return echo.Map{"error": msg}
}
