package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"fundholdings/internal/config"
	"fundholdings/internal/models"
	"fundholdings/internal/parser"
	"fundholdings/internal/repository"
)

// IngestService drives one batch of snapshot-file ingestion: it scans the
// data directory, parses each holdings file, and reconciles the result
// against the store. Files are processed sequentially; a bad file never
// aborts the batch.
type IngestService struct {
	Repo   repository.Repository
	Config config.IngestConfig
	Logger *zap.Logger
}

type IngestResult struct {
	Files           int `json:"files"`
	Ingested        int `json:"ingested"`
	Holdings        int `json:"holdings"`
	AlreadyIngested int `json:"already_ingested"`
	Skipped         int `json:"skipped"`
	Failed          int `json:"failed"`
}

// Run processes every *-holdings.csv under the configured directory. The
// returned error is reserved for batch-level failures (unreadable data
// directory); per-file problems are logged and counted instead.
func (s *IngestService) Run(ctx context.Context) (IngestResult, error) {
	var result IngestResult
	if s == nil || s.Repo == nil {
		return result, nil
	}

	dir := s.Config.DataDir
	entries, err := os.ReadDir(dir)
	if err != nil {
		return result, err
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), "-holdings.csv") {
			continue
		}
		result.Files++
		s.processFile(ctx, filepath.Join(dir, entry.Name()), entry.Name(), &result)
	}

	s.logInfo("ingest batch complete",
		zap.Int("files", result.Files),
		zap.Int("ingested", result.Ingested),
		zap.Int("holdings", result.Holdings),
		zap.Int("already_ingested", result.AlreadyIngested),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}

func (s *IngestService) processFile(ctx context.Context, path, filename string, result *IngestResult) {
	info, err := os.Stat(path)
	if err != nil {
		s.logWarn("stat file failed", err, zap.String("file", filename))
		result.Failed++
		return
	}
	content, err := os.ReadFile(path)
	if err != nil {
		s.logWarn("read file failed", err, zap.String("file", filename))
		result.Failed++
		return
	}

	snap, err := parser.ParseSnapshot(filename, content)
	if err != nil {
		s.logInfo("skipping file", zap.String("file", filename), zap.String("reason", err.Error()))
		result.Skipped++
		return
	}
	for _, w := range snap.Warnings {
		s.logWarn("parse warning", nil, zap.String("file", filename), zap.String("warning", w))
	}

	observedAt := info.ModTime().UTC()
	var reportedAt time.Time
	if snap.ReportedAt != nil {
		reportedAt = *snap.ReportedAt
	} else {
		// No "Fund Holdings as of" header; fall back to the file's
		// modification time at day granularity.
		y, m, d := observedAt.Date()
		reportedAt = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		s.logWarn("reported date absent, using file timestamp", nil,
			zap.String("file", filename),
			zap.Time("reported_at", reportedAt),
		)
	}

	var already bool
	var inserted int64
	err = s.Repo.InTx(ctx, func(tx *gorm.DB) error {
		fund := &models.Fund{
			FundID:        snap.FundID,
			FundSymbol:    snap.FundSymbol,
			FundName:      snap.FundName,
			InceptionDate: snap.InceptionDate,
			Issuer:        snap.Issuer,
		}
		if err := s.Repo.UpsertFundTx(ctx, tx, fund); err != nil {
			return err
		}
		if len(snap.Entries) == 0 {
			return nil
		}
		exists, err := s.Repo.HasSnapshotTx(ctx, tx, snap.FundID, reportedAt)
		if err != nil {
			return err
		}
		if exists {
			already = true
			return nil
		}
		items := make([]models.Holding, 0, len(snap.Entries))
		for _, e := range snap.Entries {
			items = append(items, models.Holding{
				FundID:            snap.FundID,
				HoldingSymbol:     e.HoldingSymbol,
				HoldingName:       e.HoldingName,
				Percent:           e.Percent,
				TimestampObserved: observedAt,
				TimestampReported: reportedAt,
			})
		}
		inserted, err = s.Repo.InsertHoldingsTx(ctx, tx, items)
		return err
	})
	if err != nil {
		// Rolled back by the transaction wrapper; the batch continues.
		s.logWarn("file ingestion failed", err, zap.String("file", filename))
		result.Failed++
		return
	}

	switch {
	case already:
		s.logInfo("holdings already ingested, skipping",
			zap.String("fund_symbol", snap.FundSymbol),
			zap.Time("reported_at", reportedAt),
		)
		result.AlreadyIngested++
	case len(snap.Entries) == 0:
		s.logInfo("no holdings found",
			zap.String("fund_symbol", snap.FundSymbol),
			zap.Time("reported_at", reportedAt),
		)
		result.Ingested++
	default:
		s.logInfo("ingested holdings",
			zap.String("fund_symbol", snap.FundSymbol),
			zap.Time("reported_at", reportedAt),
			zap.Int64("holdings", inserted),
		)
		result.Ingested++
		result.Holdings += int(inserted)
	}
}

func (s *IngestService) logInfo(msg string, fields ...zap.Field) {
	if s == nil || s.Logger == nil {
		return
	}
	s.Logger.Info(msg, fields...)
}

func (s *IngestService) logWarn(msg string, err error, fields ...zap.Field) {
	if s == nil || s.Logger == nil {
		return
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	s.Logger.Warn(msg, fields...)
}
