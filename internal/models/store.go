package models

import "time"

// KVEntry backs the key-value store used for the crisis log.
type KVEntry struct {
	Key       string `gorm:"primaryKey;column:entry_key;size:191"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

func (KVEntry) TableName() string { return "kv_entries" }

// FollowUp is a scheduled check-in after a crisis. It carries no user data.
type FollowUp struct {
	ID           string    `gorm:"primaryKey;size:36"`
	Severity     RiskLevel `gorm:"size:16"`
	ScheduledFor time.Time `gorm:"index"`
	Delivered    bool      `gorm:"index"`
	DeliveredAt  *time.Time
	CreatedAt    time.Time
}
