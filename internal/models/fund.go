package models

import (
	"time"
)

// Fund is one ETF, keyed by the numeric fund ID carried in the source
// filename. Metadata is last-write-wins across ingestion runs.
type Fund struct {
	FundID        string     `gorm:"primaryKey;type:varchar(20)" json:"fund_id"`
	FundSymbol    string     `gorm:"type:varchar(10);not null;index" json:"fund_symbol"`
	FundName      string     `gorm:"type:text;not null" json:"fund_name"`
	InceptionDate *time.Time `gorm:"type:date" json:"inception_date,omitempty"`
	Issuer        string     `gorm:"type:text;not null" json:"issuer"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime" json:"-"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime" json:"-"`
}

func (Fund) TableName() string {
	return "fund_info"
}
