package domain

import (
	"database/sql"
	"time"
)

// UserProfile holds per-user weather defaults.
// DefaultCity is nullable until the user sets it.
type UserProfile struct {
	UserID      int64          `db:"user_id"`
	DefaultCity sql.NullString `db:"default_city"`
	DefaultDays int            `db:"default_days"`
	CreatedAt   time.Time      `db:"created_at"`
}

// City returns the default city or empty string when unset.
func (p *UserProfile) City() string {
	if p == nil || !p.DefaultCity.Valid {
		return ""
	}
	return p.DefaultCity.String
}

// ForecastDays returns the stored day count, falling back to 3 when the
// stored value is unusable.
func (p *UserProfile) ForecastDays() int {
	if p == nil || p.DefaultDays < 1 {
		return 3
	}
	return p.DefaultDays
}
