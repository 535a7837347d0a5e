package bot

import (
	"github.com/m3rciful/weatherbot/core/telegram/keyboard"
	"github.com/m3rciful/weatherbot/internal/dialog"

	tele "gopkg.in/telebot.v4"
)

// Main-menu button labels. These exact strings arrive back as message text
// when the user taps a button.
const (
	btnCurrent    = "🌡 Погода сейчас"
	btnForecast   = "📅 Прогноз погоды"
	btnProfile    = "👤 Мой профиль"
	btnHelp       = "ℹ️ Помощь"
	btnChangeCity = "📍 Изменить город"
	btnChangeDays = "📊 Изменить количество дней"
	btnBack       = "🔙 Назад"
)

// menuActions maps button labels onto dialog actions.
var menuActions = map[string]dialog.Action{
	btnCurrent:    dialog.ActionCurrent,
	btnForecast:   dialog.ActionForecast,
	btnProfile:    dialog.ActionProfile,
	btnHelp:       dialog.ActionHelp,
	btnChangeCity: dialog.ActionChangeCity,
	btnChangeDays: dialog.ActionChangeDays,
	btnBack:       dialog.ActionBack,
}

func mainMenu() *tele.ReplyMarkup {
	return keyboard.ReplyButtons(
		[]string{btnCurrent},
		[]string{btnForecast},
		[]string{btnProfile, btnHelp},
	)
}

func profileMenu() *tele.ReplyMarkup {
	return keyboard.ReplyButtons(
		[]string{btnChangeCity},
		[]string{btnChangeDays},
		[]string{btnBack},
	)
}

func markupFor(menu dialog.Menu) *tele.ReplyMarkup {
	switch menu {
	case dialog.MenuMain:
		return mainMenu()
	case dialog.MenuProfile:
		return profileMenu()
	case dialog.MenuRemove:
		return keyboard.RemoveKeyboard()
	default:
		return nil
	}
}
