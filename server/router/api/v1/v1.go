// Package v1 serves the chat, calendar and preference API over echo.
package v1

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/sync/semaphore"

	"github.com/Avaneesh16/Travel-Genie/internal/profile"
	"github.com/Avaneesh16/Travel-Genie/plugin/ai/aitime"
	ratelimit "github.com/Avaneesh16/Travel-Genie/server/middleware"
	"github.com/Avaneesh16/Travel-Genie/server/service/assistant"
	"github.com/Avaneesh16/Travel-Genie/server/service/preference"
	"github.com/Avaneesh16/Travel-Genie/server/service/schedule"
)

// PreferenceService reads and patches session preferences.
type PreferenceService interface {
	GetPreferences(ctx context.Context, sessionID string) (preference.Preferences, error)
	UpdatePreferencesJSON(ctx context.Context, sessionID string, patch []byte) (preference.Preferences, error)
}

// APIV1Service holds the handlers of the v1 API.
type APIV1Service struct {
	Profile      *profile.Profile
	Assistant    *assistant.Assistant
	Materializer *schedule.Materializer
	Preferences  PreferenceService
	Times        aitime.TimeService

	limiter *ratelimit.RateLimiter
	// chatSemaphore bounds chats talking to the calendar backend at once.
	chatSemaphore *semaphore.Weighted
	startedAt     time.Time
}

// NewAPIV1Service wires the handlers.
func NewAPIV1Service(p *profile.Profile, asst *assistant.Assistant, mat *schedule.Materializer, prefs PreferenceService, times aitime.TimeService) *APIV1Service {
	concurrency := p.MaxConcurrentChats
	if concurrency <= 0 {
		concurrency = 8
	}
	return &APIV1Service{
		Profile:       p,
		Assistant:     asst,
		Materializer:  mat,
		Preferences:   prefs,
		Times:         times,
		limiter:       ratelimit.NewRateLimiter(p.RateLimit, p.RateBurst),
		chatSemaphore: semaphore.NewWeighted(concurrency),
		startedAt:     time.Now(),
	}
}

// Limiter returns the per-session chat limiter.
func (s *APIV1Service) Limiter() *ratelimit.RateLimiter {
	return s.limiter
}

// Register mounts every route on e.
func (s *APIV1Service) Register(e *echo.Echo) {
	e.Use(middleware.Recover())
	e.Use(MetricsMiddleware())

	e.GET("/healthz", s.Healthz)
	e.GET("/metrics", echo.WrapHandler(metricsHandler()))

	api := e.Group("/api/v1", middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOriginFunc: func(_ string) (bool, error) {
			return true, nil
		},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"*"},
		AllowCredentials: true,
	}), s.sessionMiddleware)

	api.POST("/chat", s.Chat, s.limiter.Middleware(SessionID))
	api.GET("/chat/history", s.GetHistory)
	api.DELETE("/chat/history", s.ClearHistory)
	api.POST("/parse", s.Parse)

	api.GET("/calendar", s.ListCalendar)
	api.GET("/availability", s.GetAvailability)
	api.GET("/normalize", s.Normalize)

	api.GET("/preferences", s.GetPreferences)
	api.PUT("/preferences", s.UpdatePreferences)

	slog.Debug("api v1 routes registered", "routes", len(e.Routes()))
}
