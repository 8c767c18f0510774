package models

import (
	"time"

	"gorm.io/datatypes"
)

// APILog is one authenticated API request, recorded best-effort.
type APILog struct {
	LogID         uint64         `gorm:"primaryKey;autoIncrement"`
	KeyID         string         `gorm:"type:varchar(50);index"`
	UserID        string         `gorm:"type:varchar(50);not null;index"`
	Endpoint      string         `gorm:"type:varchar(255);not null"`
	Method        string         `gorm:"type:varchar(10);not null"`
	StatusCode    int            `gorm:"not null"`
	Timestamp     time.Time      `gorm:"type:timestamptz;autoCreateTime;index"`
	RequestParams datatypes.JSON `gorm:"type:jsonb"`
	IPAddress     string         `gorm:"type:varchar(45)"`
}

func (APILog) TableName() string {
	return "api_logs"
}
