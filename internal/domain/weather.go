package domain

// CurrentWeather is a provider-independent snapshot of conditions in a city.
type CurrentWeather struct {
	City    string
	Country string
	TempC   float64
	TempF   float64
}

// ForecastDay is one day of a multi-day forecast.
type ForecastDay struct {
	Date string
	MaxC float64
	MinC float64
	AvgC float64
}

// Forecast is a normalized multi-day forecast. Days holds whatever the
// provider returned, which may be shorter than the requested span.
type Forecast struct {
	City    string
	Country string
	Days    []ForecastDay
}
