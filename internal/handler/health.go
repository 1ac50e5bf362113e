package handler // declare the package name; contains HTTP handlers

import (
    "net/http"          // net/http provides status codes and response helpers

    "github.com/labstack/echo/v4" // echo is the web framework used for this project
)

// Health is the liveness endpoint behind /healthz.  It deliberately does
// not touch the database or Redis: the server is considered alive as long
// as it can answer, and degraded dependencies are surfaced through logs
// and metrics instead.
func Health(c echo.Context) error {
    return c.String(http.StatusOK, "ok")
}
