package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"fundholdings/internal/models"
	"fundholdings/internal/repository"
)

// NotFoundError is returned when no fund matches the requested symbol. The
// HTTP layer maps it to a 404; everything else is an internal failure.
type NotFoundError struct {
	Symbol string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("fund with symbol %s not found", e.Symbol)
}

// FundQueryService resolves a fund symbol to its metadata plus the holdings
// of its latest reported snapshot.
type FundQueryService struct {
	Repo repository.Repository
}

type HoldingView struct {
	HoldingSymbol     string          `json:"holding_symbol"`
	HoldingName       string          `json:"holding_name"`
	Percent           decimal.Decimal `json:"percent"`
	TimestampReported string          `json:"timestamp_reported"`
}

type FundView struct {
	FundID        string        `json:"fund_id"`
	FundSymbol    string        `json:"fund_symbol"`
	FundName      string        `json:"fund_name"`
	InceptionDate *string       `json:"inception_date,omitempty"`
	Issuer        string        `json:"issuer"`
	Holdings      []HoldingView `json:"holdings"`
}

// Lookup finds the fund for symbol (case-insensitive) and attaches the
// holdings of its latest snapshot, optionally filtered to holdingFilter
// symbols. A fund with no ingested snapshot yet returns an empty holdings
// list, not an error. All reads share one transaction.
func (s *FundQueryService) Lookup(ctx context.Context, symbol string, holdingFilter []string) (*FundView, error) {
	if s == nil || s.Repo == nil {
		return nil, &NotFoundError{Symbol: symbol}
	}
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	filter := normalizeSymbols(holdingFilter)

	var view *FundView
	err := s.Repo.InTx(ctx, func(tx *gorm.DB) error {
		fund, err := s.Repo.GetFundBySymbolTx(ctx, tx, symbol)
		if err != nil {
			return err
		}
		if fund == nil {
			return &NotFoundError{Symbol: symbol}
		}

		view = &FundView{
			FundID:     fund.FundID,
			FundSymbol: fund.FundSymbol,
			FundName:   fund.FundName,
			Issuer:     fund.Issuer,
			Holdings:   []HoldingView{},
		}
		if fund.InceptionDate != nil {
			d := fund.InceptionDate.Format("2006-01-02")
			view.InceptionDate = &d
		}

		latest, err := s.Repo.LatestReportedAtTx(ctx, tx, fund.FundID)
		if err != nil {
			return err
		}
		if latest == nil {
			return nil
		}

		items, err := s.Repo.ListHoldingsTx(ctx, tx, repository.ListHoldingsParams{
			FundID:     fund.FundID,
			ReportedAt: *latest,
			Symbols:    filter,
		})
		if err != nil {
			return err
		}
		for _, h := range items {
			view.Holdings = append(view.Holdings, holdingView(h))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func holdingView(h models.Holding) HoldingView {
	return HoldingView{
		HoldingSymbol:     h.HoldingSymbol,
		HoldingName:       h.HoldingName,
		Percent:           h.Percent,
		TimestampReported: h.TimestampReported.UTC().Format(time.RFC3339),
	}
}

// normalizeSymbols uppercases and de-duplicates filter symbols, dropping
// blanks.
func normalizeSymbols(items []string) []string {
	out := make([]string, 0, len(items))
	seen := map[string]struct{}{}
	for _, raw := range items {
		val := strings.ToUpper(strings.TrimSpace(raw))
		if val == "" {
			continue
		}
		if _, ok := seen[val]; ok {
			continue
		}
		seen[val] = struct{}{}
		out = append(out, val)
	}
	return out
}
