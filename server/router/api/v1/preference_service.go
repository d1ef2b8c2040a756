package v1

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "github.com/Avaneesh16/Travel-Genie/server/internal/errors"
	"github.com/Avaneesh16/Travel-Genie/server/internal/observability"
	"github.com/Avaneesh16/Travel-Genie/server/render"
	"github.com/Avaneesh16/Travel-Genie/server/service/preference"
)

const maxPreferenceBody = 64 << 10

// PreferencesResponse is the body of the preference endpoints.
type PreferencesResponse struct {
	Preferences preference.Preferences `json:"preferences"`
	Text        string                 `json:"text"`
	Warnings    []string               `json:"warnings,omitempty"`
}

// GetPreferences returns the preferences of the session. When they cannot be
// loaded the defaults are returned with a warning.
// GET /api/v1/preferences
func (s *APIV1Service) GetPreferences(c echo.Context) error {
	ctx := c.Request().Context()
	prefs, err := s.Preferences.GetPreferences(ctx, SessionID(c))
	resp := PreferencesResponse{Preferences: prefs, Text: render.FormatPreferences(prefs)}
	if err != nil {
		observability.Logger(ctx).Warn("failed to load preferences", slog.String("error", err.Error()))
		resp.Warnings = []string{"Couldn't load your preferences, showing defaults"}
	}
	return c.JSON(http.StatusOK, resp)
}

// UpdatePreferences merges a partial preference document into the session's.
// PUT /api/v1/preferences
func (s *APIV1Service) UpdatePreferences(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxPreferenceBody))
	if err != nil || len(body) == 0 {
		return writeError(c, apperrors.InvalidArgument("preferences body is required"))
	}

	prefs, err := s.Preferences.UpdatePreferencesJSON(c.Request().Context(), SessionID(c), body)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, PreferencesResponse{Preferences: prefs, Text: render.FormatPreferences(prefs)})
}
