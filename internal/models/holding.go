package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Holding is one constituent of a fund's snapshot for a given reported date.
// Rows are immutable once ingested; the unique index over
// (fund_id, timestamp_reported, holding_symbol) makes re-ingestion a no-op.
type Holding struct {
	ID            uint64 `gorm:"primaryKey;autoIncrement"`
	FundID        string `gorm:"type:varchar(20);not null;index;uniqueIndex:ux_holdings_snapshot"`
	HoldingSymbol string `gorm:"type:varchar(20);not null;uniqueIndex:ux_holdings_snapshot"`
	HoldingName   string `gorm:"type:text;not null"`

	Percent decimal.Decimal `gorm:"type:numeric(12,8);not null;default:0"`

	TimestampObserved time.Time `gorm:"type:timestamptz;not null"`
	TimestampReported time.Time `gorm:"type:timestamptz;not null;index;uniqueIndex:ux_holdings_snapshot"`
}

func (Holding) TableName() string {
	return "holdings"
}
