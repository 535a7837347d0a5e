package weatherapi

import "time"

// Config holds weatherapi.com connection settings.
type Config struct {
	APIKey         string `yaml:"api_key" envconfig:"WEATHER_API_KEY"`
	BaseURL        string `yaml:"base_url" envconfig:"WEATHER_BASE_URL"`
	TimeoutSeconds int    `yaml:"timeout_seconds" envconfig:"WEATHER_TIMEOUT_SECONDS"`
}

// Normalize applies defaults for unset fields.
func (c *Config) Normalize() {
	if c.BaseURL == "" {
		c.BaseURL = "http://api.weatherapi.com/v1"
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 10
	}
}

// Timeout returns the request timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
