package gormrepository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fundholdings/internal/models"
	"fundholdings/internal/repository"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) InTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(fn)
}

// --- Ingestion write path ---------------------------------------------------

func (s *Store) UpsertFundTx(ctx context.Context, tx *gorm.DB, fund *models.Fund) error {
	if fund == nil || strings.TrimSpace(fund.FundID) == "" {
		return nil
	}
	return tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "fund_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"fund_symbol",
			"fund_name",
			"inception_date",
			"issuer",
			"updated_at",
		}),
	}).Create(fund).Error
}

func (s *Store) HasSnapshotTx(ctx context.Context, tx *gorm.DB, fundID string, reportedAt time.Time) (bool, error) {
	var count int64
	err := tx.WithContext(ctx).
		Model(&models.Holding{}).
		Where("fund_id = ?", fundID).
		Where("timestamp_reported = ?", reportedAt).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) InsertHoldingsTx(ctx context.Context, tx *gorm.DB, items []models.Holding) (int64, error) {
	if len(items) == 0 {
		return 0, nil
	}
	res := tx.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(items, 200)
	return res.RowsAffected, res.Error
}

// --- Query read path --------------------------------------------------------

func (s *Store) GetFundBySymbolTx(ctx context.Context, tx *gorm.DB, symbol string) (*models.Fund, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return nil, nil
	}
	var item models.Fund
	err := tx.WithContext(ctx).
		Model(&models.Fund{}).
		Where("fund_symbol = ?", symbol).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) LatestReportedAtTx(ctx context.Context, tx *gorm.DB, fundID string) (*time.Time, error) {
	row := tx.WithContext(ctx).
		Model(&models.Holding{}).
		Where("fund_id = ?", fundID).
		Select("MAX(timestamp_reported)").
		Row()
	var latest sql.NullTime
	if err := row.Scan(&latest); err != nil {
		return nil, err
	}
	if !latest.Valid {
		return nil, nil
	}
	t := latest.Time.UTC()
	return &t, nil
}

func (s *Store) ListHoldingsTx(ctx context.Context, tx *gorm.DB, params repository.ListHoldingsParams) ([]models.Holding, error) {
	query := tx.WithContext(ctx).
		Model(&models.Holding{}).
		Where("fund_id = ?", params.FundID).
		Where("timestamp_reported = ?", params.ReportedAt)
	if len(params.Symbols) > 0 {
		query = query.Where("holding_symbol IN ?", params.Symbols)
	}
	var items []models.Holding
	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// --- API credentials and audit ----------------------------------------------

func (s *Store) InsertAPIKey(ctx context.Context, item *models.APIKey) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) GetAPIKeyByValue(ctx context.Context, apiKey string) (*models.APIKey, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, nil
	}
	var item models.APIKey
	err := s.db.WithContext(ctx).
		Model(&models.APIKey{}).
		Where("api_key = ?", apiKey).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) TouchAPIKey(ctx context.Context, keyID string, usedAt time.Time) error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.WithContext(ctx).
		Model(&models.APIKey{}).
		Where("key_id = ?", keyID).
		Update("last_used_at", usedAt).
		Error
}

func (s *Store) ListAPIKeysByUser(ctx context.Context, userID string) ([]models.APIKey, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.APIKey
	err := s.db.WithContext(ctx).
		Model(&models.APIKey{}).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) DeactivateAPIKey(ctx context.Context, keyID string) (bool, error) {
	if s == nil || s.db == nil {
		return false, nil
	}
	res := s.db.WithContext(ctx).
		Model(&models.APIKey{}).
		Where("key_id = ?", keyID).
		Update("is_active", false)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (s *Store) InsertAPILog(ctx context.Context, item *models.APILog) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}
