package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"fundholdings/internal/models"
)

// Repository is the persistence surface shared by the ingestion write path
// and the query read path. Multi-statement operations run inside InTx so a
// concurrent ingestion run is never observed mid-update.
type Repository interface {
	InTx(ctx context.Context, fn func(tx *gorm.DB) error) error

	// Ingestion write path.
	UpsertFundTx(ctx context.Context, tx *gorm.DB, fund *models.Fund) error
	HasSnapshotTx(ctx context.Context, tx *gorm.DB, fundID string, reportedAt time.Time) (bool, error)
	// InsertHoldingsTx bulk-inserts snapshot rows. Rows colliding with the
	// (fund_id, timestamp_reported, holding_symbol) unique index are dropped
	// rather than erroring, which is the actual idempotency enforcement.
	InsertHoldingsTx(ctx context.Context, tx *gorm.DB, items []models.Holding) (int64, error)

	// Query read path.
	GetFundBySymbolTx(ctx context.Context, tx *gorm.DB, symbol string) (*models.Fund, error)
	LatestReportedAtTx(ctx context.Context, tx *gorm.DB, fundID string) (*time.Time, error)
	ListHoldingsTx(ctx context.Context, tx *gorm.DB, params ListHoldingsParams) ([]models.Holding, error)

	// API credentials and request audit.
	InsertAPIKey(ctx context.Context, item *models.APIKey) error
	GetAPIKeyByValue(ctx context.Context, apiKey string) (*models.APIKey, error)
	TouchAPIKey(ctx context.Context, keyID string, usedAt time.Time) error
	ListAPIKeysByUser(ctx context.Context, userID string) ([]models.APIKey, error)
	DeactivateAPIKey(ctx context.Context, keyID string) (bool, error)
	InsertAPILog(ctx context.Context, item *models.APILog) error
}

type ListHoldingsParams struct {
	FundID     string
	ReportedAt time.Time
	// Symbols is an exact-match inclusion filter over uppercased holding
	// symbols; empty means all rows for the date.
	Symbols []string
}
