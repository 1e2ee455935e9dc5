package model

import (
	"time"

	"github.com/google/uuid"
)

// UserPreferenceModel mirrors the 'user_preferences' table. UserID references
// users.id (UUID) and doubles as the primary key, one preference row per user.
type UserPreferenceModel struct {
	UserID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	EmailNotifications   bool      `gorm:"not null;default:true"`
	NewReviewAlerts      bool      `gorm:"not null;default:true"`
	RatingAlertThreshold int       `gorm:"not null;default:2"`
	SentimentThreshold   float64   `gorm:"not null;default:-0.5"`
	QuietHoursStart      string    `gorm:"type:varchar(5)"`
	QuietHoursEnd        string    `gorm:"type:varchar(5)"`
	Timezone             string    `gorm:"type:varchar(64)"`
	WeeklySummary        bool      `gorm:"not null;default:false"`
	MonthlyReport        bool      `gorm:"not null;default:false"`
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// TableName explicitly sets the table name for GORM.
func (UserPreferenceModel) TableName() string {
	return "user_preferences"
}
