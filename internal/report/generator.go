// Package report renders session close-out artifacts to durable storage and
// prunes stale ones. The artifact of record is a flat CSV table
// (section,field,value); an optional PDF summary is written alongside it.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/La-Clique-qui-Recycle/Recyclic-sub002/internal/apierror"
	"github.com/La-Clique-qui-Recycle/Recyclic-sub002/internal/model"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Generator writes close-out artifacts and applies the retention policy.
// Retention is sweep-on-write: every Generate call prunes files older than
// retentionDays, never touching the artifact written in that same call.
type Generator struct {
	dir           string
	prefix        string
	retentionDays int
	pdfSummary    bool
	now           func() time.Time
}

func NewGenerator(dir, prefix string, retentionDays int, pdfSummary bool) *Generator {
	return &Generator{
		dir:           dir,
		prefix:        prefix,
		retentionDays: retentionDays,
		pdfSummary:    pdfSummary,
		now:           time.Now,
	}
}

// Dir returns the directory artifacts are written to.
func (g *Generator) Dir() string { return g.dir }

// Generate renders the CSV close-out artifact for a closed session and runs
// the retention sweep. Returns the artifact's base filename. A failed write
// never leaves a partial artifact visible: content goes to a temp file that
// is renamed into place only once fully flushed.
func (g *Generator) Generate(s *model.Session) (string, error) {
	if err := os.MkdirAll(g.dir, 0o755); err != nil {
		return "", apierror.IO("report: create reports dir", err)
	}

	stamp := g.now().Format("20060102150405")
	filename := fmt.Sprintf("%s_%s_%s.csv", g.prefix, s.ID, stamp)

	if err := g.writeCSV(filename, s); err != nil {
		return "", err
	}
	justWritten := map[string]bool{filename: true}

	if g.pdfSummary {
		pdfName := fmt.Sprintf("%s_%s_%s.pdf", g.prefix, s.ID, stamp)
		if err := g.writeSummaryPDF(pdfName, s); err != nil {
			return "", err
		}
		justWritten[pdfName] = true
	}

	if err := g.sweep(justWritten); err != nil {
		return "", err
	}

	log.Info().
		Str("session_id", s.ID.String()).
		Str("file", filename).
		Msg("report: artifact generated")
	return filename, nil
}

func (g *Generator) writeCSV(filename string, s *model.Session) error {
	tmp, err := os.CreateTemp(g.dir, ".tmp-report-*")
	if err != nil {
		return apierror.IO("report: create temp file", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	for _, row := range buildRows(s) {
		if err := w.Write(row); err != nil {
			tmp.Close()
			return apierror.IO("report: write row", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return apierror.IO("report: flush", err)
	}
	if err := tmp.Close(); err != nil {
		return apierror.IO("report: close temp file", err)
	}

	if err := os.Rename(tmp.Name(), filepath.Join(g.dir, filename)); err != nil {
		return apierror.IO("report: publish artifact", err)
	}
	return nil
}

// buildRows flattens the session into section,field,value facts.
func buildRows(s *model.Session) [][]string {
	rows := [][]string{
		{"section", "field", "value"},
		{"summary", "session_id", s.ID.String()},
		{"summary", "operator_id", s.OperatorID.String()},
		{"summary", "site_id", s.SiteID.String()},
		{"summary", "opened_at", s.OpenedAt.UTC().Format(time.RFC3339)},
	}
	if s.ClosedAt != nil {
		rows = append(rows, []string{"summary", "closed_at", s.ClosedAt.UTC().Format(time.RFC3339)})
	}
	rows = append(rows, []string{"summary", "initial_amount", s.InitialAmount.StringFixed(2)})
	if s.ClosingAmount != nil {
		rows = append(rows, []string{"summary", "closing_amount", s.ClosingAmount.StringFixed(2)})
	}
	if s.ActualAmount != nil {
		rows = append(rows, []string{"summary", "actual_amount", s.ActualAmount.StringFixed(2)})
	}
	if s.Variance != nil {
		rows = append(rows, []string{"summary", "variance", s.Variance.StringFixed(2)})
	}
	if s.VarianceComment != nil && *s.VarianceComment != "" {
		rows = append(rows, []string{"summary", "variance_comment", *s.VarianceComment})
	}

	total := decimal.Zero
	for _, sale := range s.Sales {
		total = total.Add(sale.TotalAmount)
	}
	rows = append(rows,
		[]string{"sales", "count", fmt.Sprintf("%d", len(s.Sales))},
		[]string{"sales", "total", total.StringFixed(2)},
	)
	for _, sale := range s.Sales {
		rows = append(rows, []string{"sale", sale.Label, sale.TotalAmount.StringFixed(2)})
	}
	return rows
}

// sweep removes artifacts older than the retention window, skipping the
// file(s) written by the current call regardless of their timestamps.
func (g *Generator) sweep(exclude map[string]bool) error {
	if g.retentionDays <= 0 {
		return nil
	}
	cutoff := g.now().AddDate(0, 0, -g.retentionDays)

	entries, err := os.ReadDir(g.dir)
	if err != nil {
		return apierror.IO("report: list reports dir", err)
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || exclude[entry.Name()] {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return apierror.IO("report: stat artifact", err)
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(g.dir, entry.Name())); err != nil {
				return apierror.IO("report: remove stale artifact", err)
			}
			removed++
		}
	}
	if removed > 0 {
		log.Info().Int("removed", removed).Msg("report: retention sweep")
	}
	return nil
}
