package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"fundholdings/internal/config"
)

const exampleFile = `PLTL: Example Fund
Issuer: Example Co
Fund Holdings as of: 2024-01-15

Holding,Symbol,Weighting
Company A,ABC,1.23%
Company B,DEF,0.50%
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func newIngestService(repo *stubRepo, dir string) *IngestService {
	return &IngestService{
		Repo:   repo,
		Config: config.IngestConfig{DataDir: dir},
	}
}

func TestIngest_ExampleFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "4220_PLTL-holdings.csv", exampleFile)

	repo := newStubRepo()
	svc := newIngestService(repo, dir)

	result, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if result.Files != 1 || result.Ingested != 1 || result.Holdings != 2 {
		t.Fatalf("result=%+v", result)
	}

	fund, ok := repo.funds["4220"]
	if !ok {
		t.Fatalf("fund not upserted")
	}
	if fund.FundSymbol != "PLTL" || fund.FundName != "Example Fund" || fund.Issuer != "Example Co" {
		t.Fatalf("fund=%+v", fund)
	}

	if len(repo.holdings) != 2 {
		t.Fatalf("holdings=%d", len(repo.holdings))
	}
	want := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	for _, h := range repo.holdings {
		if !h.TimestampReported.Equal(want) {
			t.Fatalf("reported=%v", h.TimestampReported)
		}
	}
	if !repo.holdings[0].Percent.Equal(decimal.RequireFromString("0.0123")) {
		t.Fatalf("percent=%s", repo.holdings[0].Percent)
	}
}

func TestIngest_Idempotent(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "4220_PLTL-holdings.csv", exampleFile)

	repo := newStubRepo()
	svc := newIngestService(repo, dir)

	if _, err := svc.Run(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	result, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if result.AlreadyIngested != 1 || result.Ingested != 0 {
		t.Fatalf("result=%+v", result)
	}
	if len(repo.holdings) != 2 {
		t.Fatalf("holdings=%d after re-run, want 2", len(repo.holdings))
	}
}

func TestIngest_MalformedFilenameDoesNotAbortBatch(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "abc-holdings.csv", exampleFile)
	writeFile(t, dir, "4220_PLTL-holdings.csv", exampleFile)

	repo := newStubRepo()
	svc := newIngestService(repo, dir)

	result, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if result.Files != 2 || result.Skipped != 1 || result.Ingested != 1 {
		t.Fatalf("result=%+v", result)
	}
	if _, ok := repo.funds["4220"]; !ok {
		t.Fatalf("valid file was not processed")
	}
}

func TestIngest_MissingRequiredFieldsSkipped(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "4220_PLTL-holdings.csv", "Fund Holdings as of: 2024-01-15\n")

	repo := newStubRepo()
	svc := newIngestService(repo, dir)

	result, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if result.Skipped != 1 || result.Ingested != 0 {
		t.Fatalf("result=%+v", result)
	}
	if len(repo.funds) != 0 {
		t.Fatalf("fund upserted from skipped file")
	}
}

func TestIngest_ReportedDateFallsBackToMtime(t *testing.T) {
	dir := t.TempDir()
	content := "PLTL: Example Fund\nIssuer: Example Co\n\nHolding,Symbol,Weighting\nCompany A,ABC,1.23%\n"
	path := writeFile(t, dir, "4220_PLTL-holdings.csv", content)

	mtime := time.Date(2024, 2, 20, 14, 30, 5, 0, time.UTC)
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	repo := newStubRepo()
	svc := newIngestService(repo, dir)

	if _, err := svc.Run(context.Background()); err != nil {
		t.Fatalf("err=%v", err)
	}
	if len(repo.holdings) != 1 {
		t.Fatalf("holdings=%d", len(repo.holdings))
	}
	h := repo.holdings[0]
	wantReported := time.Date(2024, 2, 20, 0, 0, 0, 0, time.UTC)
	if !h.TimestampReported.Equal(wantReported) {
		t.Fatalf("reported=%v want %v", h.TimestampReported, wantReported)
	}
	if !h.TimestampObserved.Equal(mtime) {
		t.Fatalf("observed=%v want %v", h.TimestampObserved, mtime)
	}
}

func TestIngest_NoHoldingsStillUpsertsFund(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "4220_PLTL-holdings.csv", "PLTL: Example Fund\nIssuer: Example Co\n")

	repo := newStubRepo()
	svc := newIngestService(repo, dir)

	result, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if result.Ingested != 1 || result.Holdings != 0 {
		t.Fatalf("result=%+v", result)
	}
	if _, ok := repo.funds["4220"]; !ok {
		t.Fatalf("fund not upserted")
	}
	if len(repo.holdings) != 0 {
		t.Fatalf("holdings=%d", len(repo.holdings))
	}
}

func TestIngest_TxFailureCountsFileAndContinues(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "4220_PLTL-holdings.csv", exampleFile)
	writeFile(t, dir, "4221_QRST-holdings.csv", "QRST: Other Fund\nIssuer: Example Co\n")

	repo := newStubRepo()
	repo.failTx = true
	svc := newIngestService(repo, dir)

	result, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if result.Failed != 2 {
		t.Fatalf("result=%+v", result)
	}
}

func TestIngest_MissingDirIsFatal(t *testing.T) {
	repo := newStubRepo()
	svc := newIngestService(repo, filepath.Join(t.TempDir(), "nope"))

	if _, err := svc.Run(context.Background()); err == nil {
		t.Fatalf("expected error for missing data dir")
	}
}
