package service

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"fundholdings/internal/models"
	"fundholdings/internal/repository"
)

// stubRepo is a test-only in-memory implementation of repository.Repository.
type stubRepo struct {
	funds    map[string]models.Fund
	holdings []models.Holding
	keys     map[string]models.APIKey
	logs     []models.APILog

	failTx bool
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		funds: map[string]models.Fund{},
		keys:  map[string]models.APIKey{},
	}
}

type stubTxError struct{}

func (stubTxError) Error() string { return "stub tx failure" }

func (s *stubRepo) InTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if s.failTx {
		return stubTxError{}
	}
	return fn(nil)
}

func (s *stubRepo) UpsertFundTx(ctx context.Context, tx *gorm.DB, fund *models.Fund) error {
	if fund == nil {
		return nil
	}
	s.funds[fund.FundID] = *fund
	return nil
}

func (s *stubRepo) HasSnapshotTx(ctx context.Context, tx *gorm.DB, fundID string, reportedAt time.Time) (bool, error) {
	for _, h := range s.holdings {
		if h.FundID == fundID && h.TimestampReported.Equal(reportedAt) {
			return true, nil
		}
	}
	return false, nil
}

func (s *stubRepo) InsertHoldingsTx(ctx context.Context, tx *gorm.DB, items []models.Holding) (int64, error) {
	var inserted int64
	for _, item := range items {
		dup := false
		for _, h := range s.holdings {
			if h.FundID == item.FundID &&
				h.HoldingSymbol == item.HoldingSymbol &&
				h.TimestampReported.Equal(item.TimestampReported) {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		s.holdings = append(s.holdings, item)
		inserted++
	}
	return inserted, nil
}

func (s *stubRepo) GetFundBySymbolTx(ctx context.Context, tx *gorm.DB, symbol string) (*models.Fund, error) {
	for _, f := range s.funds {
		if f.FundSymbol == symbol {
			fund := f
			return &fund, nil
		}
	}
	return nil, nil
}

func (s *stubRepo) LatestReportedAtTx(ctx context.Context, tx *gorm.DB, fundID string) (*time.Time, error) {
	var latest *time.Time
	for _, h := range s.holdings {
		if h.FundID != fundID {
			continue
		}
		t := h.TimestampReported
		if latest == nil || t.After(*latest) {
			latest = &t
		}
	}
	return latest, nil
}

func (s *stubRepo) ListHoldingsTx(ctx context.Context, tx *gorm.DB, params repository.ListHoldingsParams) ([]models.Holding, error) {
	want := map[string]struct{}{}
	for _, sym := range params.Symbols {
		want[sym] = struct{}{}
	}
	var out []models.Holding
	for _, h := range s.holdings {
		if h.FundID != params.FundID || !h.TimestampReported.Equal(params.ReportedAt) {
			continue
		}
		if len(want) > 0 {
			if _, ok := want[h.HoldingSymbol]; !ok {
				continue
			}
		}
		out = append(out, h)
	}
	return out, nil
}

func (s *stubRepo) InsertAPIKey(ctx context.Context, item *models.APIKey) error {
	if item != nil {
		s.keys[item.KeyID] = *item
	}
	return nil
}

func (s *stubRepo) GetAPIKeyByValue(ctx context.Context, apiKey string) (*models.APIKey, error) {
	for _, k := range s.keys {
		if k.APIKey == apiKey {
			key := k
			return &key, nil
		}
	}
	return nil, nil
}

func (s *stubRepo) TouchAPIKey(ctx context.Context, keyID string, usedAt time.Time) error {
	if k, ok := s.keys[keyID]; ok {
		k.LastUsedAt = &usedAt
		s.keys[keyID] = k
	}
	return nil
}

func (s *stubRepo) ListAPIKeysByUser(ctx context.Context, userID string) ([]models.APIKey, error) {
	var out []models.APIKey
	for _, k := range s.keys {
		if k.UserID == userID {
			out = append(out, k)
		}
	}
	return out, nil
}

func (s *stubRepo) DeactivateAPIKey(ctx context.Context, keyID string) (bool, error) {
	k, ok := s.keys[strings.TrimSpace(keyID)]
	if !ok {
		return false, nil
	}
	k.IsActive = false
	s.keys[keyID] = k
	return true, nil
}

func (s *stubRepo) InsertAPILog(ctx context.Context, item *models.APILog) error {
	if item != nil {
		s.logs = append(s.logs, *item)
	}
	return nil
}
