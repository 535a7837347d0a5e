package dialog

import (
	"fmt"
	"strconv"

	"github.com/m3rciful/weatherbot/core/telegram/format"
	"github.com/m3rciful/weatherbot/internal/domain"
)

const (
	textAskCity         = "Введи название города:"
	textAskForecastDays = "На сколько дней прогноз? (1-14):"
	textAskProfileCity  = "Введи название города по умолчанию:"
	textAskProfileDays  = "Сколько дней показывать в прогнозе? (1-14):"

	textNotANumber        = "Введи число!"
	textForecastDaysRange = "Количество дней должно быть от 1 до 10!"
	textProfileDaysRange  = "Количество дней должно быть от 1 до 14!"

	textCityNotFound  = "Город не найден! Попробуй ещё раз."
	textProviderError = "Не удалось получить погоду. Попробуй позже."
	textStoreError    = "Не удалось сохранить настройки. Попробуй позже."

	textMainMenu  = "Главное меню:"
	textNoProfile = "У тебя ещё нет сохранённого профиля."

	textHelp = "🤖 *Как пользоваться ботом:*\n\n" +
		"🌡 *Погода сейчас* - текущая температура\n" +
		"📅 *Прогноз погоды* - прогноз на несколько дней\n" +
		"👤 *Мой профиль* - настрой город и количество дней по умолчанию\n\n" +
		"*Совет:* Настрой профиль, и бот будет автоматически показывать погоду для твоего города!"
)

func formatGreeting(firstName string) string {
	return fmt.Sprintf("Привет, %s! 👋\nЯ помогу тебе узнать погоду.\n\nВыбери действие:", format.EscapeV1(firstName))
}

func formatTemp(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatCurrent(w *domain.CurrentWeather) string {
	return fmt.Sprintf("🌍 *%s, %s*\n\n🌡 Температура: %s°C (%s°F)",
		format.EscapeV1(w.City), format.EscapeV1(w.Country), formatTemp(w.TempC), formatTemp(w.TempF))
}

func formatForecast(f *domain.Forecast, days int) string {
	text := fmt.Sprintf("🌍 *%s, %s*\n📅 Прогноз на %d дн.:\n\n", format.EscapeV1(f.City), format.EscapeV1(f.Country), days)
	for _, d := range f.Days {
		text += fmt.Sprintf("📆 *%s*\n   🌡 Макс: %s°C\n   🌡 Мин: %s°C\n   🌡 Средн: %s°C\n\n",
			d.Date, formatTemp(d.MaxC), formatTemp(d.MinC), formatTemp(d.AvgC))
	}
	return text
}

func formatProfile(p *domain.UserProfile) string {
	city := p.City()
	if city == "" {
		city = "не указан"
	} else {
		city = format.EscapeV1(city)
	}
	return fmt.Sprintf("👤 *Твой профиль*\n\n"+
		"📍 Город по умолчанию: *%s*\n"+
		"📊 Дней в прогнозе: *%d*\n\n"+
		"Теперь при запросе погоды будут использоваться эти настройки!\n"+
		"Ты можешь изменить их в любой момент.",
		city, p.ForecastDays())
}

func formatCityChanged(city string) string {
	return fmt.Sprintf("✅ Город по умолчанию изменён на: *%s*", format.EscapeV1(city))
}

func formatDaysChanged(days int) string {
	return fmt.Sprintf("✅ Количество дней изменено на: *%d*", days)
}
