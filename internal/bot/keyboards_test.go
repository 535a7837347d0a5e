package bot

import (
	"testing"

	"github.com/m3rciful/weatherbot/internal/dialog"
)

func TestEveryKeyboardButtonDispatchesAnAction(t *testing.T) {
	buttons := []string{
		btnCurrent, btnForecast, btnProfile, btnHelp,
		btnChangeCity, btnChangeDays, btnBack,
	}
	for _, label := range buttons {
		if _, ok := menuActions[label]; !ok {
			t.Errorf("button %q has no action mapping", label)
		}
	}
	if len(menuActions) != len(buttons) {
		t.Errorf("menuActions has %d entries, want %d", len(menuActions), len(buttons))
	}
}

func TestMarkupSelection(t *testing.T) {
	if markupFor(dialog.MenuNone) != nil {
		t.Error("MenuNone must not attach markup")
	}
	if m := markupFor(dialog.MenuRemove); m == nil || !m.RemoveKeyboard {
		t.Error("MenuRemove must hide the keyboard")
	}

	main := markupFor(dialog.MenuMain)
	if main == nil || len(main.ReplyKeyboard) != 3 {
		t.Fatalf("main menu rows = %+v", main)
	}
	if got := main.ReplyKeyboard[2]; len(got) != 2 {
		t.Errorf("last main row has %d buttons, want profile+help", len(got))
	}

	profile := markupFor(dialog.MenuProfile)
	if profile == nil || len(profile.ReplyKeyboard) != 3 {
		t.Fatalf("profile menu rows = %+v", profile)
	}
	if profile.ReplyKeyboard[2][0].Text != btnBack {
		t.Errorf("profile menu last row = %+v, want back button", profile.ReplyKeyboard[2])
	}
}
