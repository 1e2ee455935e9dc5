package entity

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// UserPreference is the per-user configuration consumed by the notification
// stage. It is a read-only input to the pipeline and mutated only by the user.
type UserPreference struct {
	UserID               uuid.UUID `json:"user_id"`                // The ID of the user this preference belongs to; unique.
	EmailNotifications   bool      `json:"email_notifications"`    // Master switch for email delivery.
	NewReviewAlerts      bool      `json:"new_review_alerts"`      // Whether every new review produces a notification.
	RatingAlertThreshold int       `json:"rating_alert_threshold"` // Ratings at or below this value raise an alert.
	SentimentThreshold   float64   `json:"sentiment_threshold"`    // Scores below this (negative) value raise an alert; more negative = stricter.
	QuietHoursStart      string    `json:"quiet_hours_start"`      // Start of the quiet window, "HH:MM" in the user's timezone.
	QuietHoursEnd        string    `json:"quiet_hours_end"`        // End of the quiet window, "HH:MM"; may wrap past midnight.
	Timezone             string    `json:"timezone"`               // IANA timezone name for quiet-hours evaluation.
	WeeklySummary        bool      `json:"weekly_summary"`         // Whether to send weekly summary emails.
	MonthlyReport        bool      `json:"monthly_report"`         // Whether to send monthly report emails.
	UpdatedAt            time.Time `json:"updated_at"`             // Timestamp of the last modification.
}

// Location resolves the preference's timezone, falling back to UTC when the
// name is empty or unknown.
func (p *UserPreference) Location() *time.Location {
	if p.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return time.UTC
	}

	return loc
}

// InQuietHours reports whether the given instant falls inside the user's
// quiet window [start, end), evaluated in the user's timezone. A window whose
// start equals its end is treated as disabled, as is a window that fails to
// parse.
func (p *UserPreference) InQuietHours(at time.Time) bool {
	start, err := parseClock(p.QuietHoursStart)
	if err != nil {
		return false
	}
	end, err := parseClock(p.QuietHoursEnd)
	if err != nil {
		return false
	}
	if start == end {
		return false
	}

	local := at.In(p.Location())
	cur := local.Hour()*60 + local.Minute()

	if start < end {
		return cur >= start && cur < end
	}

	// Window wraps past midnight, e.g. 22:00-08:00.
	return cur >= start || cur < end
}

// QuietHoursEndAfter returns the first instant at or after the given time
// that is outside the quiet window. When the instant is already outside the
// window it is returned unchanged.
func (p *UserPreference) QuietHoursEndAfter(at time.Time) time.Time {
	if !p.InQuietHours(at) {
		return at
	}

	end, err := parseClock(p.QuietHoursEnd)
	if err != nil {
		return at
	}

	local := at.In(p.Location())
	endToday := time.Date(local.Year(), local.Month(), local.Day(), end/60, end%60, 0, 0, local.Location())
	if !endToday.After(local) {
		endToday = endToday.AddDate(0, 0, 1)
	}

	return endToday
}

// parseClock converts a "HH:MM" string into minutes past midnight.
func parseClock(s string) (int, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock value %q", s)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid hour in clock value %q", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid minute in clock value %q", s)
	}

	return hour*60 + minute, nil
}
