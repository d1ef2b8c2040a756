package v1

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/lithammer/shortuuid/v4"

	"github.com/Avaneesh16/Travel-Genie/server/internal/observability"
)

const (
	// SessionCookie carries the session ID between requests.
	SessionCookie = "travelgenie_session"
	// SessionHeader overrides the cookie for API clients.
	SessionHeader = "X-Session-ID"
	// RequestIDHeader is echoed back on every API response.
	RequestIDHeader = "X-Request-ID"

	sessionContextKey = "session_id"
	sessionMaxAge     = 30 * 24 * time.Hour
)

// SessionID returns the session of the current request.
func SessionID(c echo.Context) string {
	id, _ := c.Get(sessionContextKey).(string)
	return id
}

// sessionMiddleware resolves the session from the header or cookie, minting
// a new one when neither is present, and attaches a request context.
func (s *APIV1Service) sessionMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		id := strings.TrimSpace(req.Header.Get(SessionHeader))
		if id == "" {
			if cookie, err := req.Cookie(SessionCookie); err == nil {
				id = strings.TrimSpace(cookie.Value)
			}
		}
		if id == "" {
			id = shortuuid.New()
			c.SetCookie(&http.Cookie{
				Name:     SessionCookie,
				Value:    id,
				Path:     "/",
				MaxAge:   int(sessionMaxAge.Seconds()),
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
				Secure:   !s.Profile.IsDev(),
			})
		}
		c.Set(sessionContextKey, id)

		requestID := strings.TrimSpace(req.Header.Get(RequestIDHeader))
		var reqCtx *observability.RequestContext
		if requestID != "" {
			reqCtx = observability.NewRequestContextWithID(nil, requestID, id)
		} else {
			reqCtx = observability.NewRequestContext(nil, id)
		}
		c.Response().Header().Set(RequestIDHeader, reqCtx.RequestID)
		c.SetRequest(req.WithContext(observability.WithRequestContext(req.Context(), reqCtx)))
		return next(c)
	}
}
