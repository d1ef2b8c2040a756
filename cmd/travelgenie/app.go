package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"

	"github.com/Avaneesh16/Travel-Genie/internal/profile"
	"github.com/Avaneesh16/Travel-Genie/plugin/ai/aitime"
	aischedule "github.com/Avaneesh16/Travel-Genie/plugin/ai/schedule"
	"github.com/Avaneesh16/Travel-Genie/plugin/calendar"
	"github.com/Avaneesh16/Travel-Genie/plugin/calendar/google"
	"github.com/Avaneesh16/Travel-Genie/plugin/calendar/ics"
	"github.com/Avaneesh16/Travel-Genie/server/ai"
	"github.com/Avaneesh16/Travel-Genie/server/service/assistant"
	"github.com/Avaneesh16/Travel-Genie/server/service/preference"
	"github.com/Avaneesh16/Travel-Genie/server/service/schedule"
	"github.com/Avaneesh16/Travel-Genie/store"
	"github.com/Avaneesh16/Travel-Genie/store/cache"
	"github.com/Avaneesh16/Travel-Genie/store/db"
)

// app is every long-lived component of a running assistant.
type app struct {
	profile      *profile.Profile
	store        *store.Store
	cache        *cache.TieredCache
	preferences  *preference.Service
	materializer *schedule.Materializer
	assistant    *assistant.Assistant
}

// newApp opens the store and the calendar backend and wires the assistant.
// Background jobs started here stop when ctx is done.
func newApp(ctx context.Context, p *profile.Profile) (*app, error) {
	driver, err := db.NewDBDriver(p)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create db driver")
	}
	st := store.New(driver, p)
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, errors.Wrap(err, "failed to migrate")
	}

	loc := p.Location()
	backend, err := newBackend(ctx, p, st, loc)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	tiered := cache.NewTieredCache(tieredConfig(p))
	prefs := preference.NewService(st, tiered)

	var chat assistant.Chatter
	if p.IsAIEnabled() {
		provider, err := ai.NewProvider(&ai.Config{
			BaseURL:   p.OpenAIBaseURL,
			APIKey:    p.OpenAIAPIKey,
			ChatModel: p.OpenAIModel,
		})
		if err != nil {
			slog.Warn("chat fallback disabled", "error", err)
		} else {
			slog.Info("chat fallback enabled", "model", provider.Model())
			chat = provider
		}
	}

	mat := schedule.NewMaterializer(backend, loc)
	return &app{
		profile:      p,
		store:        st,
		cache:        tiered,
		preferences:  prefs,
		materializer: mat,
		assistant: assistant.New(assistant.Options{
			Classifier:   aischedule.NewIntentClassifier(aitime.NewParser(loc)),
			Materializer: mat,
			Preferences:  prefs,
			Chat:         chat,
		}),
	}, nil
}

func newBackend(ctx context.Context, p *profile.Profile, st *store.Store, loc *time.Location) (calendar.Backend, error) {
	switch p.CalendarBackend {
	case profile.BackendGoogle:
		client, err := google.New(ctx, google.Config{
			CredentialsFile: p.GoogleCredentialsFile,
			TokenFile:       p.GoogleTokenFile,
			CalendarID:      p.GoogleCalendarID,
		})
		if err != nil {
			return nil, errors.Wrap(err, "failed to connect to google calendar")
		}
		slog.Info("using google calendar", "calendar_id", p.GoogleCalendarID)
		return client, nil

	case profile.BackendICS:
		backend, err := ics.Open(p.ICSPath, loc)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to open %s", p.ICSPath)
		}
		if p.ICSRefresh != "" {
			if err := backend.ScheduleReload(ctx, p.ICSRefresh); err != nil {
				return nil, err
			}
		}
		slog.Info("using ics calendar", "path", p.ICSPath, "refresh", p.ICSRefresh)
		return backend, nil

	default:
		slog.Info("using built-in calendar", "driver", p.Driver)
		return schedule.NewStoreBackend(st), nil
	}
}

// tieredConfig enables the Redis L2 when an address is configured and
// reachable.
func tieredConfig(p *profile.Profile) *cache.TieredCacheConfig {
	cfg := cache.DefaultTieredConfig()
	if p.RedisAddr == "" {
		return cfg
	}
	redisCfg := cache.DefaultRedisConfig()
	redisCfg.Addr = p.RedisAddr
	redisCfg.Password = p.RedisPassword
	redisCache, err := cache.NewRedisCache(redisCfg)
	if err != nil {
		slog.Warn("redis unavailable, continuing with memory cache only", "addr", p.RedisAddr, "error", err)
		return cfg
	}
	cfg.Redis = redisCache
	return cfg
}

func (a *app) Close() error {
	if err := a.assistant.Close(); err != nil {
		slog.Warn("failed to close assistant", "error", err)
	}
	if err := a.cache.Close(); err != nil {
		slog.Warn("failed to close cache", "error", err)
	}
	return a.store.Close()
}
