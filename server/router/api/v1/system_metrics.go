package v1

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Avaneesh16/Travel-Genie/server/internal/observability"
)

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status          string                         `json:"status"`
	Version         string                         `json:"version"`
	CalendarBackend string                         `json:"calendar_backend"`
	Timezone        string                         `json:"timezone"`
	UptimeSeconds   int64                          `json:"uptime_seconds"`
	SuccessRate     float64                        `json:"success_rate"`
	Metrics         *observability.MetricsSnapshot `json:"metrics"`
}

// Healthz reports liveness with the in-memory intent counters.
// GET /healthz
func (s *APIV1Service) Healthz(c echo.Context) error {
	snapshot := observability.GlobalMetrics().Snapshot()
	return c.JSON(http.StatusOK, HealthResponse{
		Status:          "ok",
		Version:         s.Profile.Version,
		CalendarBackend: s.Profile.CalendarBackend,
		Timezone:        s.Materializer.Location().String(),
		UptimeSeconds:   int64(time.Since(s.startedAt).Seconds()),
		SuccessRate:     snapshot.SuccessRate(),
		Metrics:         snapshot,
	})
}

func metricsHandler() http.Handler {
	return observability.Handler()
}

// MetricsMiddleware records the count and latency of every request by its
// route pattern.
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				// Let echo write the response so the status is known.
				c.Error(err)
			}

			route := c.Path()
			if route == "" {
				route = "unknown"
			}
			status := strconv.Itoa(c.Response().Status)
			observability.ObserveHTTPRequest(c.Request().Method, route, status, time.Since(start))
			return nil
		}
	}
}
