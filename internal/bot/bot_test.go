package bot

import (
	"context"
	"testing"

	"github.com/m3rciful/weatherbot/core/telegram/state"
	"github.com/m3rciful/weatherbot/internal/dialog"
	"github.com/m3rciful/weatherbot/internal/domain"

	tele "gopkg.in/telebot.v4"
)

type stubStore struct {
	profiles map[int64]*domain.UserProfile
	upserts  int
}

func (s *stubStore) Get(_ context.Context, userID int64) (*domain.UserProfile, error) {
	return s.profiles[userID], nil
}

func (s *stubStore) Upsert(_ context.Context, userID int64, city *string, days *int) error {
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

type stubProvider struct{ calls int }

func (p *stubProvider) Current(context.Context, string) (*domain.CurrentWeather, error) {
	p.calls++
	return &domain.CurrentWeather{City: "Berlin", Country: "Germany", TempC: 20, TempF: 68}, nil
}

func (p *stubProvider) Forecast(context.Context, string, int) (*domain.Forecast, error) {
	p.calls++
	return &domain.Forecast{City: "Berlin", Country: "Germany"}, nil
}

// stubContext implements the handful of tele.Context methods the module
// touches; everything else panics via the embedded nil interface.
type stubContext struct {
	tele.Context
	text   string
	sender *tele.User
	chat   *tele.Chat
	store  map[string]interface{}
	sent   []string
}

func newStubContext(userID int64, text string) *stubContext {
	return &stubContext{
		text:   text,
		sender: &tele.User{ID: userID, FirstName: "Тест"},
		chat:   &tele.Chat{ID: userID},
		store:  make(map[string]interface{}),
	}
}

func (c *stubContext) Update() tele.Update { return tele.Update{ID: 1} }
func (c *stubContext) Sender() *tele.User  { return c.sender }
func (c *stubContext) Chat() *tele.Chat    { return c.chat }
func (c *stubContext) Text() string        { return c.text }

func (c *stubContext) Get(key string) interface{} { return c.store[key] }

func (c *stubContext) Set(key string, v interface{}) { c.store[key] = v }

func (c *stubContext) Send(what interface{}, _ ...interface{}) error {
	if s, ok := what.(string); ok {
		c.sent = append(c.sent, s)
	}
	return nil
}

func newTestModule() (*Module, *stubStore, *stubProvider) {
	store := &stubStore{profiles: make(map[int64]*domain.UserProfile)}
	provider := &stubProvider{}
	engine := dialog.NewEngine(state.NewMemoryManager(), store, provider)
	return New(engine), store, provider
}

func TestBackButtonEscapesPendingProfileStep(t *testing.T) {
	m, store, _ := newTestModule()
	const userID = int64(99)

	if _, err := m.engine.HandleAction(context.Background(), userID, dialog.ActionChangeCity); err != nil {
		t.Fatal(err)
	}
	if !m.InProgress(userID) {
		t.Fatal("expected pending step after change-city action")
	}

	c := newStubContext(userID, btnBack)
	if err := m.HandleText(c); err != nil {
		t.Fatalf("HandleText: %v", err)
	}

	if store.upserts != 0 {
		t.Errorf("back label reached the store: %d upserts", store.upserts)
	}
	if p := store.profiles[userID]; p != nil && p.DefaultCity.Valid {
		t.Errorf("back label stored as city %q", p.DefaultCity.String)
	}
	if m.InProgress(userID) {
		t.Error("session not cleared by back button")
	}
	if len(c.sent) != 1 || c.sent[0] != "Главное меню:" {
		t.Errorf("sent = %v, want main menu text", c.sent)
	}
}

func TestBackButtonSkipsProviderDuringCityStep(t *testing.T) {
	m, _, provider := newTestModule()
	const userID = int64(100)

	if _, err := m.engine.HandleAction(context.Background(), userID, dialog.ActionCurrent); err != nil {
		t.Fatal(err)
	}
	if !m.InProgress(userID) {
		t.Fatal("expected pending city step")
	}

	c := newStubContext(userID, btnBack)
	if err := m.HandleText(c); err != nil {
		t.Fatalf("HandleText: %v", err)
	}

	if provider.calls != 0 {
		t.Errorf("back label sent to provider as a city query (%d calls)", provider.calls)
	}
	if m.InProgress(userID) {
		t.Error("session not cleared by back button")
	}
}
