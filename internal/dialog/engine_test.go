package dialog

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/m3rciful/weatherbot/core/telegram/state"
	"github.com/m3rciful/weatherbot/internal/domain"
)

type fakeStore struct {
	profiles map[int64]*domain.UserProfile
	upserts  int
	failGet  bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{profiles: make(map[int64]*domain.UserProfile)}
}

func (s *fakeStore) Get(_ context.Context, userID int64) (*domain.UserProfile, error) {
	if s.failGet {
		return nil, errors.New("store down")
	}
	return s.profiles[userID], nil
}

func (s *fakeStore) Upsert(_ context.Context, userID int64, city *string, days *int) error {
	s.upserts++
	p := s.profiles[userID]
	if p == nil {
		p = &domain.UserProfile{UserID: userID, DefaultDays: 3}
		s.profiles[userID] = p
	}
	if city != nil {
		p.DefaultCity.String = *city
		p.DefaultCity.Valid = true
	}
	if days != nil {
		p.DefaultDays = *days
	}
	return nil
}

func (s *fakeStore) set(userID int64, city string, days int) {
	p := &domain.UserProfile{UserID: userID, DefaultDays: days}
	if city != "" {
		p.DefaultCity.String = city
		p.DefaultCity.Valid = true
	}
	s.profiles[userID] = p
}

type providerCall struct {
	op   string
	city string
	days int
}

type fakeProvider struct {
	calls        []providerCall
	err          error
	forecastDays int
}

func (p *fakeProvider) Current(_ context.Context, city string) (*domain.CurrentWeather, error) {
	p.calls = append(p.calls, providerCall{op: "current", city: city})
	if p.err != nil {
		return nil, p.err
	}
	return &domain.CurrentWeather{City: city, Country: "Testland", TempC: 21.5, TempF: 70.7}, nil
}

func (p *fakeProvider) Forecast(_ context.Context, city string, days int) (*domain.Forecast, error) {
	p.calls = append(p.calls, providerCall{op: "forecast", city: city, days: days})
	if p.err != nil {
		return nil, p.err
	}
	n := p.forecastDays
	if n == 0 {
		n = days
	}
	f := &domain.Forecast{City: city, Country: "Testland"}
	for i := 0; i < n; i++ {
		f.Days = append(f.Days, domain.ForecastDay{Date: "2026-09-01", MaxC: 20, MinC: 10, AvgC: 15})
	}
	return f, nil
}

func newTestEngine() (*Engine, *fakeStore, *fakeProvider, state.Manager) {
	store := newFakeStore()
	provider := &fakeProvider{}
	sessions := state.NewMemoryManager()
	return NewEngine(sessions, store, provider), store, provider, sessions
}

const userID = int64(42)

func ctx() context.Context { return context.Background() }

func TestCurrentWithoutProfilePromptsForCity(t *testing.T) {
	e, _, provider, sessions := newTestEngine()

	reply, err := e.HandleAction(ctx(), userID, ActionCurrent)
	if err != nil {
		t.Fatalf("HandleAction: %v", err)
	}
	if reply.Text != textAskCity {
		t.Errorf("reply = %q, want city prompt", reply.Text)
	}
	if got := sessions.GetState(userID); got != StepCurrentCity {
		t.Errorf("state = %q, want %q", got, StepCurrentCity)
	}
	if len(provider.calls) != 0 {
		t.Errorf("provider called %d times before city input", len(provider.calls))
	}

	// Non-city chatter like empty input keeps the step alive.
	if _, _, err := e.HandleText(ctx(), userID, "   "); err != nil {
		t.Fatalf("HandleText: %v", err)
	}
	if got := sessions.GetState(userID); got != StepCurrentCity {
		t.Errorf("state after blank input = %q, want %q", got, StepCurrentCity)
	}
}

func TestCurrentCityInputFetchesAndResets(t *testing.T) {
	e, _, provider, sessions := newTestEngine()

	if _, err := e.HandleAction(ctx(), userID, ActionCurrent); err != nil {
		t.Fatal(err)
	}
	reply, handled, err := e.HandleText(ctx(), userID, "Berlin")
	if err != nil || !handled {
		t.Fatalf("HandleText: handled=%v err=%v", handled, err)
	}
	if len(provider.calls) != 1 || provider.calls[0].city != "Berlin" {
		t.Fatalf("provider calls = %+v", provider.calls)
	}
	if !strings.Contains(reply.Text, "Berlin") || !strings.Contains(reply.Text, "21.5°C") {
		t.Errorf("reply = %q", reply.Text)
	}
	if sessions.InProgress(userID) {
		t.Error("dialog still in progress after completion")
	}
}

func TestForecastShortCircuitsOnProfileDefaults(t *testing.T) {
	e, store, provider, _ := newTestEngine()
	store.set(userID, "Tokyo", 5)

	reply, err := e.HandleAction(ctx(), userID, ActionForecast)
	if err != nil {
		t.Fatalf("HandleAction: %v", err)
	}
	if len(provider.calls) != 1 {
		t.Fatalf("provider calls = %+v", provider.calls)
	}
	call := provider.calls[0]
	if call.op != "forecast" || call.city != "Tokyo" || call.days != 5 {
		t.Errorf("call = %+v, want forecast Tokyo/5", call)
	}
	if strings.Contains(reply.Text, textAskCity) {
		t.Error("prompt shown despite stored defaults")
	}
}

func TestForecastRendersProviderReturnedSpan(t *testing.T) {
	e, store, provider, _ := newTestEngine()
	store.set(userID, "Oslo", 10)
	provider.forecastDays = 3

	reply, err := e.HandleAction(ctx(), userID, ActionForecast)
	if err != nil {
		t.Fatalf("HandleAction: %v", err)
	}
	if got := strings.Count(reply.Text, "📆"); got != 3 {
		t.Errorf("rendered %d day entries, want 3", got)
	}
}

func TestForecastDaysValidation(t *testing.T) {
	e, _, provider, sessions := newTestEngine()

	if _, err := e.HandleAction(ctx(), userID, ActionForecast); err != nil {
		t.Fatal(err)
	}
	if _, _, err := e.HandleText(ctx(), userID, "Oslo"); err != nil {
		t.Fatal(err)
	}
	if got := sessions.GetState(userID); got != StepForecastDays {
		t.Fatalf("state = %q, want %q", got, StepForecastDays)
	}

	for _, input := range []string{"abc", "0", "11", "-3"} {
		reply, _, err := e.HandleText(ctx(), userID, input)
		if err != nil {
			t.Fatalf("HandleText(%q): %v", input, err)
		}
		if reply.Text != textNotANumber && reply.Text != textForecastDaysRange {
			t.Errorf("input %q: reply = %q, want corrective message", input, reply.Text)
		}
		if got := sessions.GetState(userID); got != StepForecastDays {
			t.Errorf("input %q: state = %q, want %q", input, got, StepForecastDays)
		}
		if len(provider.calls) != 0 {
			t.Errorf("input %q: provider called", input)
		}
	}

	if _, _, err := e.HandleText(ctx(), userID, "7"); err != nil {
		t.Fatal(err)
	}
	if len(provider.calls) != 1 || provider.calls[0].city != "Oslo" || provider.calls[0].days != 7 {
		t.Errorf("provider calls = %+v, want forecast Oslo/7", provider.calls)
	}
	if sessions.InProgress(userID) {
		t.Error("dialog still in progress after forecast sent")
	}
}

func TestProfileDaysValidation(t *testing.T) {
	e, store, _, sessions := newTestEngine()

	if _, err := e.HandleAction(ctx(), userID, ActionChangeDays); err != nil {
		t.Fatal(err)
	}
	for _, input := range []string{"abc", "0", "15"} {
		reply, _, err := e.HandleText(ctx(), userID, input)
		if err != nil {
			t.Fatalf("HandleText(%q): %v", input, err)
		}
		if reply.Text != textNotANumber && reply.Text != textProfileDaysRange {
			t.Errorf("input %q: reply = %q", input, reply.Text)
		}
		if got := sessions.GetState(userID); got != StepProfileDays {
			t.Errorf("input %q: state = %q, want %q", input, got, StepProfileDays)
		}
		if store.upserts != 0 {
			t.Errorf("input %q: store written", input)
		}
	}

	reply, _, err := e.HandleText(ctx(), userID, "14")
	if err != nil {
		t.Fatal(err)
	}
	if store.upserts != 1 || store.profiles[userID].DefaultDays != 14 {
		t.Errorf("upserts = %d, profile = %+v", store.upserts, store.profiles[userID])
	}
	if !strings.Contains(reply.Text, "14") {
		t.Errorf("confirmation = %q", reply.Text)
	}
	if sessions.InProgress(userID) {
		t.Error("dialog still in progress after save")
	}
}

func TestProfileCityChange(t *testing.T) {
	e, store, _, sessions := newTestEngine()

	if _, err := e.HandleAction(ctx(), userID, ActionChangeCity); err != nil {
		t.Fatal(err)
	}
	reply, _, err := e.HandleText(ctx(), userID, "Paris")
	if err != nil {
		t.Fatal(err)
	}
	if got := store.profiles[userID].City(); got != "Paris" {
		t.Errorf("stored city = %q, want Paris", got)
	}
	if store.profiles[userID].DefaultDays != 3 {
		t.Errorf("default days changed: %d", store.profiles[userID].DefaultDays)
	}
	if !strings.Contains(reply.Text, "Paris") {
		t.Errorf("confirmation = %q", reply.Text)
	}
	if sessions.InProgress(userID) {
		t.Error("dialog still in progress")
	}
}

func TestRepeatedCityChangeIsIdempotent(t *testing.T) {
	e, store, _, _ := newTestEngine()
	store.set(userID, "Oslo", 7)

	for i := 0; i < 2; i++ {
		if _, err := e.HandleAction(ctx(), userID, ActionChangeCity); err != nil {
			t.Fatal(err)
		}
		if _, _, err := e.HandleText(ctx(), userID, "Paris"); err != nil {
			t.Fatal(err)
		}
	}

	p := store.profiles[userID]
	if p.City() != "Paris" {
		t.Errorf("city = %q, want Paris", p.City())
	}
	if p.DefaultDays != 7 {
		t.Errorf("days = %d, want 7 (city change must not touch days)", p.DefaultDays)
	}
}

func TestCityNotFoundClearsDialog(t *testing.T) {
	e, _, provider, sessions := newTestEngine()
	provider.err = domain.ErrCityNotFound

	if _, err := e.HandleAction(ctx(), userID, ActionCurrent); err != nil {
		t.Fatal(err)
	}
	reply, _, err := e.HandleText(ctx(), userID, "Atlantis")
	if err != nil {
		t.Fatalf("city-not-found must not surface as handler error, got %v", err)
	}
	if reply.Text != textCityNotFound {
		t.Errorf("reply = %q", reply.Text)
	}
	if sessions.InProgress(userID) {
		t.Error("state not cleared after not-found")
	}
}

func TestProviderFailureRendersGenericMessage(t *testing.T) {
	e, store, provider, sessions := newTestEngine()
	store.set(userID, "Berlin", 3)
	provider.err = &domain.ProviderError{Op: "current.json", Err: errors.New("status 500")}

	reply, err := e.HandleAction(ctx(), userID, ActionCurrent)
	if err == nil {
		t.Fatal("expected underlying error for logging")
	}
	if reply.Text != textProviderError {
		t.Errorf("reply = %q", reply.Text)
	}
	if sessions.InProgress(userID) {
		t.Error("state not cleared after provider failure")
	}
}

func TestBackDiscardsPendingDialog(t *testing.T) {
	e, _, _, sessions := newTestEngine()

	if _, err := e.HandleAction(ctx(), userID, ActionForecast); err != nil {
		t.Fatal(err)
	}
	if _, _, err := e.HandleText(ctx(), userID, "Oslo"); err != nil {
		t.Fatal(err)
	}

	reply, err := e.HandleAction(ctx(), userID, ActionBack)
	if err != nil {
		t.Fatal(err)
	}
	if reply.Text != textMainMenu {
		t.Errorf("reply = %q", reply.Text)
	}
	if sessions.InProgress(userID) {
		t.Error("pending dialog survived back action")
	}
	if _, ok := sessions.GetTempString(userID, tempCityKey); ok {
		t.Error("pending city survived back action")
	}
}

func TestStartCreatesProfileOnce(t *testing.T) {
	e, store, _, _ := newTestEngine()

	reply, err := e.Start(ctx(), userID, "Иван")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(reply.Text, "Иван") {
		t.Errorf("greeting = %q", reply.Text)
	}
	p := store.profiles[userID]
	if p == nil || p.DefaultDays != 3 || p.DefaultCity.Valid {
		t.Errorf("profile after start = %+v", p)
	}

	store.upserts = 0
	if _, err := e.Start(ctx(), userID, "Иван"); err != nil {
		t.Fatal(err)
	}
	if store.upserts != 0 {
		t.Error("start rewrote existing profile")
	}
}

func TestShowProfileFallbacks(t *testing.T) {
	e, store, _, _ := newTestEngine()

	reply, err := e.HandleAction(ctx(), userID, ActionProfile)
	if err != nil {
		t.Fatal(err)
	}
	if reply.Text != textNoProfile {
		t.Errorf("reply = %q", reply.Text)
	}

	store.set(userID, "", 0)
	store.profiles[userID].DefaultDays = 0
	reply, err = e.HandleAction(ctx(), userID, ActionProfile)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(reply.Text, "не указан") || !strings.Contains(reply.Text, "*3*") {
		t.Errorf("profile view = %q", reply.Text)
	}
	if reply.Menu != MenuProfile {
		t.Errorf("menu = %v, want profile menu", reply.Menu)
	}
}

func TestStoreFailureSurfacesError(t *testing.T) {
	e, store, _, _ := newTestEngine()
	store.failGet = true

	reply, err := e.HandleAction(ctx(), userID, ActionCurrent)
	if err == nil {
		t.Fatal("expected store error")
	}
	if reply.Text != textStoreError {
		t.Errorf("reply = %q", reply.Text)
	}
}
