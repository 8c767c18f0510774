// Package parser turns one raw holdings snapshot file into structured fund
// metadata and holding rows. Recoverable problems (bad dates, bad weightings)
// are collected as warnings; files that cannot produce a usable fund record
// are rejected with a SkipError so the ingestion batch can move on.
package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Source filenames look like 4220_PLTL-holdings.csv: numeric fund ID,
// uppercase fund symbol.
var filePattern = regexp.MustCompile(`^(\d+)_([A-Z]+)-holdings\.csv$`)

const (
	headerLines     = 15
	holdingsMarker  = "Holding,Symbol,Weighting"
	keyInception    = "Inception Date"
	keyHoldingsAsOf = "Fund Holdings as of"
	keyIssuer       = "Issuer"
)

// SkipError marks a file that should be skipped, not a failed batch.
type SkipError struct {
	Reason string
}

func (e *SkipError) Error() string {
	return e.Reason
}

type Entry struct {
	HoldingName   string
	HoldingSymbol string
	Percent       decimal.Decimal
}

type Snapshot struct {
	FundID        string
	FundSymbol    string
	FundName      string
	Issuer        string
	InceptionDate *time.Time

	// ReportedAt is nil when the file carries no usable "Fund Holdings as of"
	// header; the caller substitutes its own provenance (file mtime).
	ReportedAt *time.Time

	Entries  []Entry
	Warnings []string
}

// ParseSnapshot parses the header-plus-CSV-body layout of a holdings file.
// It never returns a partially valid snapshot: the result is either a
// *Snapshot with mandatory fund metadata present, or a *SkipError.
func ParseSnapshot(filename string, content []byte) (*Snapshot, error) {
	m := filePattern.FindStringSubmatch(filename)
	if m == nil {
		return nil, &SkipError{Reason: "filename pattern mismatch"}
	}

	snap := &Snapshot{
		FundID:     m[1],
		FundSymbol: m[2],
	}

	lines := strings.Split(string(content), "\n")
	parseHeader(snap, lines)
	parseHoldings(snap, lines)

	var missing []string
	if snap.FundName == "" {
		missing = append(missing, "fund name")
	}
	if snap.Issuer == "" {
		missing = append(missing, "issuer")
	}
	if len(missing) > 0 {
		return nil, &SkipError{
			Reason: "missing required fund information: " + strings.Join(missing, ", "),
		}
	}

	return snap, nil
}

func parseHeader(snap *Snapshot, lines []string) {
	limit := headerLines
	if len(lines) < limit {
		limit = len(lines)
	}
	for _, line := range lines[:limit] {
		line = cleanString(line)
		if line == "" {
			continue
		}
		idx := strings.Index(line, ":")
		if idx < 0 {
			continue
		}
		key := cleanString(line[:idx])
		value := cleanString(line[idx+1:])

		switch key {
		case snap.FundSymbol:
			snap.FundName = value
		case keyInception:
			d, ok := parseDate(value)
			if !ok && value != "" {
				snap.warnf("could not parse inception date %q, using null", value)
				continue
			}
			if ok {
				snap.InceptionDate = &d
			}
		case keyHoldingsAsOf:
			d, ok := parseDate(value)
			if !ok {
				if value != "" {
					snap.warnf("could not parse reported date %q, treating as absent", value)
				}
				continue
			}
			snap.ReportedAt = &d
		case keyIssuer:
			snap.Issuer = value
		}
	}
}

func parseHoldings(snap *Snapshot, lines []string) {
	start := -1
	for i, line := range lines {
		if strings.Contains(line, holdingsMarker) {
			start = i + 1
			break
		}
	}
	if start < 0 || start >= len(lines) {
		return
	}

	r := csv.NewReader(strings.NewReader(strings.Join(lines[start:], "\n")))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Malformed row; drop it and keep reading.
			continue
		}
		if len(row) < 3 {
			continue
		}
		name := cleanString(row[0])
		symbol := cleanString(row[1])
		weighting := cleanString(row[2])
		if name == "" || symbol == "" || weighting == "" {
			continue
		}
		pct, ok := parsePercentage(weighting)
		if !ok {
			snap.warnf("could not parse percentage %q, using 0", weighting)
			pct = decimal.Zero
		}
		snap.Entries = append(snap.Entries, Entry{
			HoldingName:   name,
			HoldingSymbol: symbol,
			Percent:       pct,
		})
	}
}

// cleanString trims surrounding whitespace and enclosing quote characters.
func cleanString(s string) string {
	return strings.Trim(strings.TrimSpace(s), `"'`)
}

// parseDate parses YYYY-MM-DD as midnight UTC.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	d, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// parsePercentage converts "0.87%" to the decimal fraction 0.0087.
func parsePercentage(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d.Div(decimal.NewFromInt(100)), true
}

func (s *Snapshot) warnf(format string, args ...any) {
	s.Warnings = append(s.Warnings, fmt.Sprintf(format, args...))
}
