// Package dialog runs the per-user weather conversation: menu actions start
// dialogs, text input advances them, and profile defaults short-circuit
// prompting entirely.
package dialog

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/m3rciful/weatherbot/core/logger"
	"github.com/m3rciful/weatherbot/core/telegram/state"
	"github.com/m3rciful/weatherbot/internal/domain"
)

// Dialog steps. A user outside any step is in state.StateIdle.
const (
	StepCurrentCity  state.State = "weather.current.city"
	StepForecastCity state.State = "weather.forecast.city"
	StepForecastDays state.State = "weather.forecast.days"
	StepProfileCity  state.State = "profile.city"
	StepProfileDays  state.State = "profile.days"
)

const tempCityKey = "city"

// Forecast dialogs accept a narrower day span than profile defaults.
const (
	maxForecastDays = 10
	maxProfileDays  = 14
)

// Action is a recognized main-menu trigger.
type Action string

const (
	ActionCurrent    Action = "weather.current"
	ActionForecast   Action = "weather.forecast"
	ActionProfile    Action = "profile.show"
	ActionChangeCity Action = "profile.change_city"
	ActionChangeDays Action = "profile.change_days"
	ActionHelp       Action = "help"
	ActionBack       Action = "back"
)

// Menu selects the reply keyboard attached to an outgoing message.
type Menu int

const (
	MenuNone Menu = iota
	MenuMain
	MenuProfile
	MenuRemove
)

// Reply is a single outgoing message produced by a dialog step.
type Reply struct {
	Text string
	Menu Menu
}

// ProfileStore persists per-user defaults.
type ProfileStore interface {
	Get(ctx context.Context, userID int64) (*domain.UserProfile, error)
	Upsert(ctx context.Context, userID int64, city *string, days *int) error
}

// WeatherProvider fetches normalized weather data.
type WeatherProvider interface {
	Current(ctx context.Context, city string) (*domain.CurrentWeather, error)
	Forecast(ctx context.Context, city string, days int) (*domain.Forecast, error)
}

type actionFunc func(ctx context.Context, userID int64) (Reply, error)

type stepFunc func(ctx context.Context, userID int64, text string) (Reply, error)

// Engine owns the session map and drives the state machine. Menu actions and
// dialog steps dispatch through explicit lookup tables.
type Engine struct {
	sessions state.Manager
	profiles ProfileStore
	weather  WeatherProvider

	actions map[Action]actionFunc
	steps   map[state.State]stepFunc
}

// NewEngine wires the dispatch tables.
func NewEngine(sessions state.Manager, profiles ProfileStore, weather WeatherProvider) *Engine {
	e := &Engine{
		sessions: sessions,
		profiles: profiles,
		weather:  weather,
	}
	e.actions = map[Action]actionFunc{
		ActionCurrent:    e.startCurrent,
		ActionForecast:   e.startForecast,
		ActionProfile:    e.showProfile,
		ActionChangeCity: e.startChangeCity,
		ActionChangeDays: e.startChangeDays,
		ActionHelp:       e.help,
		ActionBack:       e.backToMenu,
	}
	e.steps = map[state.State]stepFunc{
		StepCurrentCity:  e.stepCurrentCity,
		StepForecastCity: e.stepForecastCity,
		StepForecastDays: e.stepForecastDays,
		StepProfileCity:  e.stepProfileCity,
		StepProfileDays:  e.stepProfileDays,
	}
	return e
}

// InProgress reports whether the user has a dialog step awaiting input.
func (e *Engine) InProgress(userID int64) bool {
	return e.sessions.InProgress(userID)
}

// Start handles /start: creates a profile row if missing and greets the user.
func (e *Engine) Start(ctx context.Context, userID int64, firstName string) (Reply, error) {
	profile, err := e.profiles.Get(ctx, userID)
	if err != nil {
		return Reply{Text: textStoreError, Menu: MenuMain}, err
	}
	if profile == nil {
		days := 3
		if err := e.profiles.Upsert(ctx, userID, nil, &days); err != nil {
			return Reply{Text: textStoreError, Menu: MenuMain}, err
		}
	}
	return Reply{Text: formatGreeting(firstName), Menu: MenuMain}, nil
}

// HandleAction dispatches a recognized menu action. The returned Reply is
// always sendable; the error, when set, is the underlying failure for the
// caller's logging.
func (e *Engine) HandleAction(ctx context.Context, userID int64, action Action) (Reply, error) {
	h, ok := e.actions[action]
	if !ok {
		return Reply{Text: textMainMenu, Menu: MenuMain}, nil
	}
	return h(ctx, userID)
}

// HandleText advances the user's current dialog step with free-text input.
// Returns ok=false when no dialog is in progress.
func (e *Engine) HandleText(ctx context.Context, userID int64, text string) (Reply, bool, error) {
	step := e.sessions.GetState(userID)
	h, ok := e.steps[step]
	if !ok {
		return Reply{}, false, nil
	}
	reply, err := h(ctx, userID, strings.TrimSpace(text))
	return reply, true, err
}

// Menu actions

func (e *Engine) startCurrent(ctx context.Context, userID int64) (Reply, error) {
	profile, err := e.profiles.Get(ctx, userID)
	if err != nil {
		return Reply{Text: textStoreError, Menu: MenuMain}, err
	}
	if city := profile.City(); city != "" {
		return e.fetchCurrent(ctx, userID, city)
	}
	e.sessions.SetState(userID, StepCurrentCity)
	return Reply{Text: textAskCity, Menu: MenuRemove}, nil
}

func (e *Engine) startForecast(ctx context.Context, userID int64) (Reply, error) {
	profile, err := e.profiles.Get(ctx, userID)
	if err != nil {
		return Reply{Text: textStoreError, Menu: MenuMain}, err
	}
	if city := profile.City(); city != "" {
		return e.fetchForecast(ctx, userID, city, profile.ForecastDays())
	}
	e.sessions.SetState(userID, StepForecastCity)
	return Reply{Text: textAskCity, Menu: MenuRemove}, nil
}

func (e *Engine) showProfile(ctx context.Context, userID int64) (Reply, error) {
	profile, err := e.profiles.Get(ctx, userID)
	if err != nil {
		return Reply{Text: textStoreError, Menu: MenuMain}, err
	}
	if profile == nil {
		return Reply{Text: textNoProfile, Menu: MenuProfile}, nil
	}
	return Reply{Text: formatProfile(profile), Menu: MenuProfile}, nil
}

func (e *Engine) startChangeCity(_ context.Context, userID int64) (Reply, error) {
	e.sessions.SetState(userID, StepProfileCity)
	return Reply{Text: textAskProfileCity, Menu: MenuRemove}, nil
}

func (e *Engine) startChangeDays(_ context.Context, userID int64) (Reply, error) {
	e.sessions.SetState(userID, StepProfileDays)
	return Reply{Text: textAskProfileDays, Menu: MenuRemove}, nil
}

func (e *Engine) help(context.Context, int64) (Reply, error) {
	return Reply{Text: textHelp, Menu: MenuMain}, nil
}

func (e *Engine) backToMenu(_ context.Context, userID int64) (Reply, error) {
	e.sessions.Clear(userID)
	return Reply{Text: textMainMenu, Menu: MenuMain}, nil
}

// Dialog steps

func (e *Engine) stepCurrentCity(ctx context.Context, userID int64, text string) (Reply, error) {
	if text == "" {
		return Reply{Text: textAskCity}, nil
	}
	return e.fetchCurrent(ctx, userID, text)
}

func (e *Engine) stepForecastCity(_ context.Context, userID int64, text string) (Reply, error) {
	if text == "" {
		return Reply{Text: textAskCity}, nil
	}
	e.sessions.SetTemp(userID, tempCityKey, text)
	e.sessions.SetState(userID, StepForecastDays)
	return Reply{Text: textAskForecastDays}, nil
}

func (e *Engine) stepForecastDays(ctx context.Context, userID int64, text string) (Reply, error) {
	days, err := strconv.Atoi(text)
	if err != nil {
		return Reply{Text: textNotANumber}, nil
	}
	if days < 1 || days > maxForecastDays {
		return Reply{Text: textForecastDaysRange}, nil
	}
	city, _ := e.sessions.GetTempString(userID, tempCityKey)
	return e.fetchForecast(ctx, userID, city, days)
}

func (e *Engine) stepProfileCity(ctx context.Context, userID int64, text string) (Reply, error) {
	if text == "" {
		return Reply{Text: textAskProfileCity}, nil
	}
	e.sessions.Clear(userID)
	if err := e.profiles.Upsert(ctx, userID, &text, nil); err != nil {
		return Reply{Text: textStoreError, Menu: MenuMain}, err
	}
	return Reply{Text: formatCityChanged(text), Menu: MenuMain}, nil
}

func (e *Engine) stepProfileDays(ctx context.Context, userID int64, text string) (Reply, error) {
	days, err := strconv.Atoi(text)
	if err != nil {
		return Reply{Text: textNotANumber}, nil
	}
	if days < 1 || days > maxProfileDays {
		return Reply{Text: textProfileDaysRange}, nil
	}
	e.sessions.Clear(userID)
	if err := e.profiles.Upsert(ctx, userID, nil, &days); err != nil {
		return Reply{Text: textStoreError, Menu: MenuMain}, err
	}
	return Reply{Text: formatDaysChanged(days), Menu: MenuMain}, nil
}

// Weather fetches. The session is cleared before the provider call: whatever
// the outcome, the dialog is over.

func (e *Engine) fetchCurrent(ctx context.Context, userID int64, city string) (Reply, error) {
	e.sessions.Clear(userID)

	w, err := e.weather.Current(ctx, city)
	if err != nil {
		return e.weatherFailure(ctx, userID, city, err)
	}
	logger.Debug(ctx, "dialog", "weather.current.sent",
		slog.Int64("user_id", userID),
		slog.String("city", city),
	)
	return Reply{Text: formatCurrent(w), Menu: MenuMain}, nil
}

func (e *Engine) fetchForecast(ctx context.Context, userID int64, city string, days int) (Reply, error) {
	e.sessions.Clear(userID)

	f, err := e.weather.Forecast(ctx, city, days)
	if err != nil {
		return e.weatherFailure(ctx, userID, city, err)
	}
	logger.Debug(ctx, "dialog", "weather.forecast.sent",
		slog.Int64("user_id", userID),
		slog.String("city", city),
		slog.Int("days", days),
		slog.Int("days_returned", len(f.Days)),
	)
	return Reply{Text: formatForecast(f, days), Menu: MenuMain}, nil
}

func (e *Engine) weatherFailure(ctx context.Context, userID int64, city string, err error) (Reply, error) {
	if errors.Is(err, domain.ErrCityNotFound) {
		logger.Warn(ctx, "dialog", "city.not_found",
			slog.Int64("user_id", userID),
			slog.String("city", city),
		)
		return Reply{Text: textCityNotFound, Menu: MenuMain}, nil
	}
	return Reply{Text: textProviderError, Menu: MenuMain}, err
}
