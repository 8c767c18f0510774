package models

import (
	"time"
)

type APIKey struct {
	KeyID       string     `gorm:"primaryKey;type:varchar(50)" json:"key_id"`
	APIKey      string     `gorm:"column:api_key;type:varchar(32);not null;uniqueIndex" json:"api_key"`
	UserID      string     `gorm:"type:varchar(50);not null;index" json:"user_id"`
	Description string     `gorm:"type:varchar(255)" json:"description"`
	CreatedAt   time.Time  `gorm:"type:timestamptz;autoCreateTime" json:"created_at"`
	LastUsedAt  *time.Time `gorm:"type:timestamptz" json:"last_used_at,omitempty"`
	IsActive    bool       `gorm:"not null;default:true" json:"is_active"`
}

func (APIKey) TableName() string {
	return "api_keys"
}
