// Package preference owns the per-session preference document read by trip
// planning and rendered in chat.
package preference

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	apperrors "github.com/Avaneesh16/Travel-Genie/server/internal/errors"
	"github.com/Avaneesh16/Travel-Genie/store"
	"github.com/Avaneesh16/Travel-Genie/store/cache"
)

// Travel modes.
const (
	ModeDriving = "driving"
	ModeFlying  = "flying"
)

// FoodPreferences holds dining preferences.
type FoodPreferences struct {
	BudgetPerMeal       int      `json:"budget_per_meal" yaml:"budget_per_meal"`
	DietaryRestrictions []string `json:"dietary_restrictions" yaml:"dietary_restrictions"`
	CuisinePreferences  []string `json:"cuisine_preferences" yaml:"cuisine_preferences"`
}

// TravelPreferences shapes generated trip events and travel plan text.
type TravelPreferences struct {
	Mode string `json:"mode" yaml:"mode"`
	// MaxTravelTime is in minutes.
	MaxTravelTime       int      `json:"max_travel_time" yaml:"max_travel_time"`
	AccommodationBudget int      `json:"accommodation_budget" yaml:"accommodation_budget"`
	PreferredAirlines   []string `json:"preferred_airlines" yaml:"preferred_airlines"`
}

// Preferences is the full preference document of a session.
type Preferences struct {
	Theme         string `json:"theme" yaml:"theme"`
	Language      string `json:"language" yaml:"language"`
	Notifications bool   `json:"notifications" yaml:"notifications"`
	// CalendarDefaultDuration is in minutes.
	CalendarDefaultDuration int               `json:"calendar_default_duration" yaml:"calendar_default_duration"`
	Timezone                string            `json:"timezone" yaml:"timezone"`
	Food                    FoodPreferences   `json:"food_preferences" yaml:"food_preferences"`
	Travel                  TravelPreferences `json:"travel_preferences" yaml:"travel_preferences"`
}

// DefaultPreferences returns the document every new session starts with.
func DefaultPreferences() Preferences {
	return Preferences{
		Theme:                   "light",
		Language:                "en",
		Notifications:           true,
		CalendarDefaultDuration: 60,
		Timezone:                "America/Denver",
		Food: FoodPreferences{
			BudgetPerMeal:       20,
			DietaryRestrictions: []string{},
			CuisinePreferences:  []string{},
		},
		Travel: TravelPreferences{
			Mode:                ModeDriving,
			MaxTravelTime:       60,
			AccommodationBudget: 150,
			PreferredAirlines:   []string{},
		},
	}
}

// ParsePreferences decodes a stored document. Missing fields keep their
// defaults; an empty or malformed document yields the defaults.
func ParsePreferences(raw string) Preferences {
	prefs := DefaultPreferences()
	if raw == "" {
		return prefs
	}
	if err := json.Unmarshal([]byte(raw), &prefs); err != nil {
		slog.Debug("malformed preferences, using defaults", "error", err)
		return DefaultPreferences()
	}
	prefs.normalize()
	return prefs
}

// normalize replaces explicit nulls with empty values.
func (p *Preferences) normalize() {
	if p.Food.DietaryRestrictions == nil {
		p.Food.DietaryRestrictions = []string{}
	}
	if p.Food.CuisinePreferences == nil {
		p.Food.CuisinePreferences = []string{}
	}
	if p.Travel.PreferredAirlines == nil {
		p.Travel.PreferredAirlines = []string{}
	}
}

// Encode returns the JSON form stored per session.
func (p Preferences) Encode() (string, error) {
	p.normalize()
	b, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Store is the interface for store operations needed by the preference service.
type Store interface {
	GetUserPreferences(ctx context.Context, find *store.FindUserPreferences) (*store.UserPreferences, error)
	UpsertUserPreferences(ctx context.Context, upsert *store.UpsertUserPreferences) (*store.UserPreferences, error)
}

// Service reads and writes session preferences through a tiered cache.
type Service struct {
	store Store
	cache *cache.TieredCache
}

// NewService creates a preference service. A nil cache gets a memory-only one.
func NewService(st Store, c *cache.TieredCache) *Service {
	if c == nil {
		c = cache.NewTieredCache(nil)
	}
	return &Service{store: st, cache: c}
}

func cacheKey(sessionID string) string {
	return cache.GenerateCacheKey("prefs", sessionID)
}

// GetPreferences returns the preferences of sessionID. The first read of an
// unknown session stores the defaults. On store failure the defaults are
// returned together with the error.
func (s *Service) GetPreferences(ctx context.Context, sessionID string) (Preferences, error) {
	var fetchErr error
	raw, ok := s.cache.Get(ctx, cacheKey(sessionID), func(ctx context.Context, _ string) (string, error) {
		raw, err := s.load(ctx, sessionID)
		fetchErr = err
		return raw, err
	})
	if !ok {
		if fetchErr == nil {
			fetchErr = fmt.Errorf("preferences for session %s not found", sessionID)
		}
		return DefaultPreferences(), fetchErr
	}
	return ParsePreferences(raw), nil
}

func (s *Service) load(ctx context.Context, sessionID string) (string, error) {
	existing, err := s.store.GetUserPreferences(ctx, &store.FindUserPreferences{SessionID: &sessionID})
	if err != nil {
		return "", fmt.Errorf("failed to get preferences: %w", err)
	}
	if existing != nil {
		return existing.Preferences, nil
	}

	slog.Info("creating default preferences", "session_id", sessionID)
	raw, err := DefaultPreferences().Encode()
	if err != nil {
		return "", err
	}
	created, err := s.store.UpsertUserPreferences(ctx, &store.UpsertUserPreferences{
		SessionID:   sessionID,
		Preferences: raw,
	})
	if err != nil {
		return "", fmt.Errorf("failed to store default preferences: %w", err)
	}
	return created.Preferences, nil
}

// UpdatePreferences replaces the preferences of sessionID.
func (s *Service) UpdatePreferences(ctx context.Context, sessionID string, prefs Preferences) (Preferences, error) {
	raw, err := prefs.Encode()
	if err != nil {
		return Preferences{}, fmt.Errorf("failed to encode preferences: %w", err)
	}
	updated, err := s.store.UpsertUserPreferences(ctx, &store.UpsertUserPreferences{
		SessionID:   sessionID,
		Preferences: raw,
	})
	if err != nil {
		return Preferences{}, fmt.Errorf("failed to update preferences: %w", err)
	}
	s.cache.Set(ctx, cacheKey(sessionID), updated.Preferences)
	return ParsePreferences(updated.Preferences), nil
}

// UpdatePreferencesJSON merges a partial JSON document over the current
// preferences of sessionID.
func (s *Service) UpdatePreferencesJSON(ctx context.Context, sessionID string, patch []byte) (Preferences, error) {
	current, err := s.GetPreferences(ctx, sessionID)
	if err != nil {
		return Preferences{}, err
	}
	if err := json.Unmarshal(patch, &current); err != nil {
		return Preferences{}, apperrors.Wrap(err, apperrors.ErrCodeInvalidArgument, "invalid preferences")
	}
	return s.UpdatePreferences(ctx, sessionID, current)
}
