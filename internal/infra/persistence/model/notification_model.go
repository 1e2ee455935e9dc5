package model

import (
	"time"

	"github.com/google/uuid"
)

// NotificationRecordModel mirrors the 'notification_records' table. The
// composite unique index on (review_id, type) makes per-review notifications
// at-most-once; review_id is NULL for periodic summaries, which PostgreSQL
// exempts from the uniqueness check.
type NotificationRecordModel struct {
	ID            uuid.UUID  `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	UserID        uuid.UUID  `gorm:"type:uuid;not null;index"`
	BusinessID    *uuid.UUID `gorm:"type:uuid"`
	ReviewID      *uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_notifications_review_type"`
	Type          string     `gorm:"type:varchar(32);not null;uniqueIndex:idx_notifications_review_type"`
	Subject       string     `gorm:"type:varchar(255);not null"`
	Body          string     `gorm:"type:text;not null"`
	Status        string     `gorm:"type:varchar(16);not null;default:'pending';index"`
	DeferredUntil *time.Time `gorm:"index"`
	SentAt        *time.Time
	ErrorMessage  string `gorm:"type:text"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName explicitly sets the table name for GORM.
func (NotificationRecordModel) TableName() string {
	return "notification_records"
}
