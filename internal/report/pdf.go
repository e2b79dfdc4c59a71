package report

// pdf.go — printable close-out summary rendered with go-pdf/fpdf.
// A compact A5 sheet for the depot's paper binder: session header, amount
// table, variance line, and the individual sales.

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/La-Clique-qui-Recycle/Recyclic-sub002/internal/apierror"
	"github.com/La-Clique-qui-Recycle/Recyclic-sub002/internal/model"

	"github.com/go-pdf/fpdf"
)

// writeSummaryPDF renders the sheet and publishes it with the same
// temp-then-rename discipline as the CSV: a failed render never leaves a
// partial PDF visible to the download or sync paths.
func (g *Generator) writeSummaryPDF(filename string, s *model.Session) error {
	pdf := fpdf.New("P", "mm", "A5", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 20

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW, 8, "Session close-out", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, fmt.Sprintf("Session %s", s.ID), "", 1, "C", false, 0, "")
	pdf.CellFormat(contentW, 5, s.OpenedAt.Format("02/01/2006 15:04"), "", 1, "C", false, 0, "")
	pdf.Ln(3)

	pdf.Line(10, pdf.GetY(), pageW-10, pdf.GetY())
	pdf.Ln(3)

	// ── Amounts ──────────────────────────────────────────────────────────────
	col1 := contentW * 0.6
	col2 := contentW * 0.4

	row := func(label, value string, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 9)
		pdf.CellFormat(col1, 6, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 6, value, "", 1, "R", false, 0, "")
	}

	row("Initial amount", s.InitialAmount.StringFixed(2), false)
	if s.ClosingAmount != nil {
		row("Theoretical closing", s.ClosingAmount.StringFixed(2), false)
	}
	if s.ActualAmount != nil {
		row("Counted amount", s.ActualAmount.StringFixed(2), false)
	}
	if s.Variance != nil {
		row("Variance", s.Variance.StringFixed(2), true)
	}
	if s.VarianceComment != nil && *s.VarianceComment != "" {
		pdf.SetFont("Helvetica", "I", 8)
		pdf.MultiCell(contentW, 4, *s.VarianceComment, "", "L", false)
	}

	// ── Sales ────────────────────────────────────────────────────────────────
	if len(s.Sales) > 0 {
		pdf.Ln(3)
		pdf.Line(10, pdf.GetY(), pageW-10, pdf.GetY())
		pdf.Ln(2)

		pdf.SetFont("Helvetica", "B", 8)
		pdf.CellFormat(col1, 5, "Sale", "B", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, "Amount", "B", 1, "R", false, 0, "")

		pdf.SetFont("Helvetica", "", 8)
		for _, sale := range s.Sales {
			pdf.CellFormat(col1, 5, truncateLabel(sale.Label, 34), "", 0, "L", false, 0, "")
			pdf.CellFormat(col2, 5, sale.TotalAmount.StringFixed(2), "", 1, "R", false, 0, "")
		}
	}

	tmp, err := os.CreateTemp(g.dir, ".tmp-report-*")
	if err != nil {
		return apierror.IO("report: create temp file", err)
	}
	defer os.Remove(tmp.Name())

	if err := pdf.Output(tmp); err != nil {
		tmp.Close()
		return apierror.IO("report: write pdf summary", err)
	}
	if err := tmp.Close(); err != nil {
		return apierror.IO("report: close temp file", err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(g.dir, filename)); err != nil {
		return apierror.IO("report: publish pdf summary", err)
	}
	return nil
}

// truncateLabel caps a label at max runes, never splitting a multibyte
// character.
func truncateLabel(label string, max int) string {
	r := []rune(label)
	if len(r) <= max {
		return label
	}
	return string(r[:max-1]) + "…"
}
