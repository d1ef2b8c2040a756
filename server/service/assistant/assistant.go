// Package assistant routes one chat message through classification, the
// calendar and the conversational fallback, and renders the reply.
package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	aischedule "github.com/Avaneesh16/Travel-Genie/plugin/ai/schedule"
	"github.com/Avaneesh16/Travel-Genie/plugin/ai/timeout"
	"github.com/Avaneesh16/Travel-Genie/server/ai"
	apperrors "github.com/Avaneesh16/Travel-Genie/server/internal/errors"
	"github.com/Avaneesh16/Travel-Genie/server/internal/observability"
	"github.com/Avaneesh16/Travel-Genie/server/render"
	"github.com/Avaneesh16/Travel-Genie/server/service/preference"
	"github.com/Avaneesh16/Travel-Genie/server/service/schedule"
	"github.com/Avaneesh16/Travel-Genie/store/cache"
)

// HelpText is the reply to unrecognized messages when no chat model is configured.
const HelpText = "🧞 I can help with your calendar and trips. Try:\n" +
	"• \"show my calendar\"\n" +
	"• \"am I free on friday?\"\n" +
	"• \"add lunch with Sam tomorrow at noon\"\n" +
	"• \"add yoga every day for 2 weeks at 7am\"\n" +
	"• \"plan a trip to Denver from next friday to next monday\""

const (
	// travelFallbackWindow is how far ahead a free-form travel query looks.
	travelFallbackWindow = 30 * 24 * time.Hour
	// maxHistory is the number of turns kept per session for the chat model.
	maxHistory = 20
)

// Chatter answers free-form messages.
type Chatter interface {
	Chat(ctx context.Context, history []ai.Message, message string) (string, error)
}

// PreferenceReader returns the preferences of a session.
type PreferenceReader interface {
	GetPreferences(ctx context.Context, sessionID string) (preference.Preferences, error)
}

// Reply is the outcome of one message.
type Reply struct {
	Success  bool                  `json:"success"`
	Intent   aischedule.IntentKind `json:"intent"`
	Text     string                `json:"text"`
	HTML     string                `json:"html,omitempty"`
	Warnings []string              `json:"warnings,omitempty"`
	Code     apperrors.ErrorCode   `json:"code,omitempty"`
}

// Options configure an Assistant.
type Options struct {
	Classifier   *aischedule.IntentClassifier
	Materializer *schedule.Materializer
	Preferences  PreferenceReader
	// Chat is optional; without it unrecognized messages get HelpText.
	Chat Chatter
	// Now defaults to time.Now.
	Now func() time.Time
}

// Assistant handles chat messages.
type Assistant struct {
	classifier   *aischedule.IntentClassifier
	materializer *schedule.Materializer
	prefs        PreferenceReader
	chat         Chatter
	now          func() time.Time

	// historyMu serializes the read-append-write of a session's turns.
	historyMu sync.Mutex
	history   *cache.Cache
}

// New creates an assistant.
func New(opts Options) *Assistant {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Assistant{
		classifier:   opts.Classifier,
		materializer: opts.Materializer,
		prefs:        opts.Preferences,
		chat:         opts.Chat,
		now:          now,
		history: cache.New(cache.Config{
			DefaultTTL:      2 * time.Hour,
			CleanupInterval: 10 * time.Minute,
			MaxItems:        1000,
		}),
	}
}

// Close releases the conversation history.
func (a *Assistant) Close() error {
	return a.history.Close()
}

// Classify returns the intent of message at the current time.
func (a *Assistant) Classify(message string) aischedule.Intent {
	intent, _ := a.classifier.ClassifyAt(message, a.now())
	return intent
}

// Handle processes one message of sessionID. Only an empty message is an
// error; every other outcome, failures included, is described by the reply.
func (a *Assistant) Handle(ctx context.Context, sessionID, message string) (*Reply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, apperrors.InvalidArgument("message is empty")
	}

	reqCtx, ok := observability.FromContext(ctx)
	if !ok {
		reqCtx = observability.NewRequestContext(slog.Default(), sessionID)
		ctx = observability.WithRequestContext(ctx, reqCtx)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout.MessageTimeout)
	defer cancel()

	now := a.now()
	intent, matcher := a.classifier.ClassifyAt(message, now)
	kind := intent.Kind().String()
	reqCtx.SetIntent(kind)
	reqCtx.Debug("message classified",
		slog.String("matcher", matcher),
		slog.Int(observability.LogFieldMessageLen, len(message)))

	metrics := observability.GlobalMetrics()
	metrics.RecordRequest(kind)
	start := time.Now()

	reply := a.dispatch(ctx, sessionID, message, intent, now)
	reply.Intent = intent.Kind()

	metrics.RecordDuration(kind, time.Since(start))
	if !reply.Success {
		metrics.RecordFailure(kind)
	}

	html, err := render.RenderHTML(reply.Text)
	if err != nil {
		reqCtx.Error("failed to render reply", err)
	} else {
		reply.HTML = html
	}

	a.remember(ctx, sessionID, ai.Message{Role: ai.RoleUser, Content: message}, ai.Message{Role: ai.RoleAssistant, Content: reply.Text})
	reqCtx.Info("message handled",
		slog.Bool("success", reply.Success),
		slog.Int64(observability.LogFieldDuration, reqCtx.DurationMs()))
	return reply, nil
}

func (a *Assistant) dispatch(ctx context.Context, sessionID, message string, intent aischedule.Intent, now time.Time) *Reply {
	loc := a.materializer.Location()

	switch in := intent.(type) {
	case aischedule.ViewCalendar:
		events, warnings := a.materializer.Upcoming(ctx)
		return &Reply{Success: true, Text: render.FormatCalendarView(events, loc), Warnings: warnings}

	case aischedule.CheckAvailability:
		availability, warnings := a.materializer.Availability(ctx, in.Date)
		return &Reply{Success: true, Text: render.FormatAvailability(availability), Warnings: warnings}

	case aischedule.CreateEvent:
		result, err := a.materializer.CreateSingle(ctx, in)
		if err != nil {
			return failure(apperrors.CalendarWriteFailed("create event", err),
				fmt.Sprintf("❌ Couldn't add **%s** to your calendar: %v", in.Summary, errors.Unwrap(err)))
		}
		return &Reply{Success: true, Text: render.FormatCreated(result, loc), Warnings: result.Warnings}

	case aischedule.RecurringEvent:
		return a.handleRecurring(ctx, in, loc)

	case aischedule.TripPlanning:
		return a.handleTrip(ctx, sessionID, in)

	case aischedule.Unrecognized:
		if aischedule.IsTravelQuery(in.Message) {
			if dest, ok := aischedule.ExtractDestination(in.Message); ok {
				return a.handleTrip(ctx, sessionID, aischedule.TripPlanning{
					Location:  dest,
					StartDate: now.Add(24 * time.Hour),
					EndDate:   now.Add(travelFallbackWindow),
				})
			}
		}
		return a.converse(ctx, sessionID, message)
	}

	return failure(apperrors.InvalidArgument("unsupported intent"), "❌ I don't know how to handle that yet.")
}

func (a *Assistant) handleRecurring(ctx context.Context, in aischedule.RecurringEvent, loc *time.Location) *Reply {
	result, err := a.materializer.ExpandRecurring(ctx, in)
	switch {
	case err == nil:
		return &Reply{Success: true, Text: render.FormatRecurringResult(result, loc), Warnings: result.Warnings}
	case errors.Is(err, schedule.ErrBatchAborted):
		reply := failure(apperrors.ScheduleConflict(err.Error()), render.FormatRecurringResult(result, loc))
		reply.Warnings = result.Warnings
		return reply
	case result == nil:
		return failure(apperrors.InvalidArgument(err.Error()), fmt.Sprintf("❌ Couldn't set up **%s**: %v", in.Summary, err))
	default:
		reply := failure(apperrors.CalendarWriteFailed("create recurring events", err), render.FormatRecurringFailure(result, err))
		reply.Warnings = result.Warnings
		return reply
	}
}

func (a *Assistant) handleTrip(ctx context.Context, sessionID string, in aischedule.TripPlanning) *Reply {
	var warnings []string
	prefs := preference.DefaultPreferences()
	if a.prefs != nil {
		p, err := a.prefs.GetPreferences(ctx, sessionID)
		if err != nil {
			observability.Logger(ctx).Warn("failed to load preferences", "error", err)
			warnings = append(warnings, "Couldn't load your preferences, using defaults")
		} else {
			prefs = p
		}
	}

	result, err := a.materializer.PlanTrip(ctx, in, prefs.Travel)
	if err != nil {
		return failure(apperrors.Wrap(err, apperrors.ErrCodeInternal, "trip planning failed"),
			fmt.Sprintf("❌ Couldn't plan the trip to %s: %v", in.Location, err))
	}
	return &Reply{
		Success:  !result.NoAvailability(),
		Text:     render.FormatTravelPlan(result),
		Warnings: append(warnings, result.Warnings...),
	}
}

func (a *Assistant) converse(ctx context.Context, sessionID, message string) *Reply {
	if a.chat == nil {
		return &Reply{Success: true, Text: HelpText}
	}
	answer, err := a.chat.Chat(ctx, a.recall(ctx, sessionID), message)
	if err != nil {
		observability.Logger(ctx).Warn("chat fallback failed", "error", err)
		return failure(apperrors.LLMUnavailable("chat model unavailable", err),
			"😕 Sorry, I couldn't reach my assistant brain right now. Please try again in a moment.")
	}
	return &Reply{Success: true, Text: answer}
}

func failure(err *apperrors.AppError, text string) *Reply {
	return &Reply{Success: false, Text: text, Code: err.Code}
}

func historyKey(sessionID string) string {
	return "history:" + sessionID
}

func (a *Assistant) recall(ctx context.Context, sessionID string) []ai.Message {
	raw, ok := a.history.Get(ctx, historyKey(sessionID))
	if !ok {
		return nil
	}
	var turns []ai.Message
	if err := json.Unmarshal([]byte(raw), &turns); err != nil {
		return nil
	}
	return turns
}

func (a *Assistant) remember(ctx context.Context, sessionID string, turns ...ai.Message) {
	a.historyMu.Lock()
	defer a.historyMu.Unlock()

	history := append(a.recall(ctx, sessionID), turns...)
	if len(history) > maxHistory {
		history = history[len(history)-maxHistory:]
	}
	raw, err := json.Marshal(history)
	if err != nil {
		return
	}
	a.history.Set(ctx, historyKey(sessionID), string(raw))
}

// History returns the remembered turns of sessionID, oldest first.
func (a *Assistant) History(ctx context.Context, sessionID string) []ai.Message {
	return a.recall(ctx, sessionID)
}

// ClearHistory forgets the conversation of sessionID.
func (a *Assistant) ClearHistory(ctx context.Context, sessionID string) {
	a.historyMu.Lock()
	defer a.historyMu.Unlock()
	a.history.Delete(ctx, historyKey(sessionID))
}
