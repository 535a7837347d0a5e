package state

import "testing"

func TestMemoryManagerIdleByDefault(t *testing.T) {
	m := NewMemoryManager()

	if st := m.GetState(1); st != StateIdle {
		t.Fatalf("expected idle state for unknown user, got %q", st)
	}
	if m.InProgress(1) {
		t.Fatal("unknown user must not be in progress")
	}
	sess := m.Get(1)
	if sess == nil || sess.State != StateIdle {
		t.Fatalf("expected default idle session, got %+v", sess)
	}
}

func TestMemoryManagerStateTransitions(t *testing.T) {
	m := NewMemoryManager()
	const userID = int64(42)

	m.SetState(userID, State("weather.forecast.city"))
	if !m.InProgress(userID) {
		t.Fatal("expected in-progress after SetState")
	}
	if st := m.GetState(userID); st != State("weather.forecast.city") {
		t.Fatalf("unexpected state %q", st)
	}

	m.ClearState(userID)
	if m.InProgress(userID) {
		t.Fatal("expected idle after ClearState")
	}
	if st := m.GetState(userID); st != StateIdle {
		t.Fatalf("expected idle, got %q", st)
	}
}

func TestMemoryManagerTempData(t *testing.T) {
	m := NewMemoryManager()
	const userID = int64(7)

	if _, ok := m.GetTemp(userID, "city"); ok {
		t.Fatal("temp data must be empty for a new user")
	}

	m.SetTemp(userID, "city", "Berlin")
	city, ok := m.GetTempString(userID, "city")
	if !ok || city != "Berlin" {
		t.Fatalf("expected Berlin, got %q (ok=%v)", city, ok)
	}

	m.SetTemp(userID, "days", 5)
	if _, ok := m.GetTempString(userID, "days"); ok {
		t.Fatal("GetTempString must reject non-string values")
	}

	m.ClearTemp(userID, "city")
	if _, ok := m.GetTemp(userID, "city"); ok {
		t.Fatal("expected temp key removed")
	}
}

func TestMemoryManagerStatesAreScopedPerUser(t *testing.T) {
	m := NewMemoryManager()

	m.SetState(1, State("profile.city"))
	m.SetState(2, State("profile.days"))

	if st := m.GetState(1); st != State("profile.city") {
		t.Fatalf("user 1 state = %q", st)
	}
	if st := m.GetState(2); st != State("profile.days") {
		t.Fatalf("user 2 state = %q", st)
	}

	m.Clear(1)
	if m.InProgress(1) {
		t.Fatal("user 1 should be idle after Clear")
	}
	if !m.InProgress(2) {
		t.Fatal("user 2 must keep its state")
	}
}
