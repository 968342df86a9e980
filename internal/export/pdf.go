package export

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/examterm/examterm/internal/i18n"
	"github.com/examterm/examterm/internal/model"
)

const (
	pageWidth  = 210.0
	pageHeight = 297.0

	pageLeftMargin   = 10.0
	pageRightMargin  = 10.0
	pageTopMargin    = 10.0
	pageBottomMargin = 20.0
)

// DefaultPDFPath returns the timestamped result file name in dir, for
// example "[08-29][14-05]_Exam_Result_Summary.pdf".
func DefaultPDFPath(dir string, finishedAt time.Time) string {
	name := finishedAt.Format("[01-02][15-04]") + "_Exam_Result_Summary.pdf"
	return filepath.Join(dir, name)
}

// SavePDF writes the result summary sheet to path.
func SavePDF(path string, sum model.EvaluationSummary) error {
	xArea := pageWidth - pageLeftMargin - pageRightMargin

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAuthor(sum.ExamTitle, false)
	pdf.SetCreator("examterm", false)
	pdf.SetSubject("Exam Results", false)
	pdf.SetMargins(pageLeftMargin, pageTopMargin, pageRightMargin)
	pdf.AliasNbPages("")
	pdf.AddPage()

	// Sheet border.
	pdf.Line(10, 10, 200, 10)
	pdf.Line(10, 277, 200, 277)
	pdf.Line(10, 10, 10, 277)
	pdf.Line(200, 10, 200, 277)

	// Fill color follows the outcome.
	if sum.Passed {
		pdf.SetFillColor(220, 255, 220)
	} else {
		pdf.SetFillColor(255, 220, 220)
	}

	// Title banner.
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(xArea, 20, "Exam Results", "1", 0, "C", true, 0, "")

	// Outcome chip in the footer corner.
	label := i18n.T("result.failed")
	if sum.Passed {
		label = i18n.T("result.passed")
	}
	pdf.SetFont("Helvetica", "", 24)
	pdf.SetXY(pageWidth-pageRightMargin-70, pageHeight-pageBottomMargin-40)
	pdf.CellFormat(60, 30, label, "1", 0, "C", true, 0, "")

	// Summary rows.
	rows := SummaryRows(sum)
	startY := 40.0
	lineHeight := 8.0
	for _, row := range rows {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.SetXY(20, startY)
		pdf.CellFormat(60, lineHeight, row.Label, "", 0, "L", false, 0, "")

		if row.Fixed {
			pdf.SetFont("Courier", "", 11)
		} else {
			pdf.SetFont("Helvetica", "", 11)
		}
		pdf.SetXY(77, startY)
		pdf.CellFormat(120, lineHeight, row.Value, "", 0, "L", false, 0, "")

		startY += float64(row.Skip) * lineHeight
	}

	// Watermark.
	pdf.SetTextColor(100, 100, 100)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetXY(pageLeftMargin+3, pageHeight-pageBottomMargin-8)
	pdf.CellFormat(0, 5, "Created with examterm", "", 0, "L", false, 0, "")

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("save result PDF %s: %w", path, err)
	}
	slog.Info("saved exam results PDF", "path", path)
	return nil
}
