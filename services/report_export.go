package services

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
	"github.com/yeremiapane/global-bites/utils"
)

// WriteOrderReportPDF renders the order report as a one-page A4 summary.
func WriteOrderReportPDF(w io.Writer, report *OrderReport) error {
	return renderOrderReport(report).Output(w)
}

// renderOrderReport lays out the report with the core fonts. Text goes through the cp1252
// translator; runes outside cp1252 print as '.'.
func renderOrderReport(report *OrderReport) *fpdf.Fpdf {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Global Bites Order Report", true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, "Global Bites - Order Report")
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Period: %s to %s",
		report.Range.Start.Format("2006-01-02"), report.Range.End.Format("2006-01-02")))
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, "Summary")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 10)
	summaryRows := [][2]string{
		{"Total orders", fmt.Sprintf("%d", report.Summary.TotalOrders)},
		{"Total revenue", utils.FormatCurrency(report.Summary.TotalRevenue)},
		{"Average ticket", utils.FormatCurrency(report.Summary.AvgTicket)},
	}
	for _, row := range summaryRows {
		pdf.CellFormat(60, 7, row[0], "1", 0, "L", false, 0, "")
		pdf.CellFormat(60, 7, row[1], "1", 1, "R", false, 0, "")
	}
	pdf.Ln(6)

	writeTable(pdf, tr, "Daily trends", []string{"Date", "Orders", "Revenue"}, func(add func(...string)) {
		for _, t := range report.DailyTrends {
			add(t.Date, fmt.Sprintf("%d", t.Count), utils.FormatCurrency(t.Revenue))
		}
	})

	writeTable(pdf, tr, "Status distribution", []string{"Status", "Orders"}, func(add func(...string)) {
		for _, s := range report.StatusDistribution {
			add(s.Name, fmt.Sprintf("%d", s.Value))
		}
	})

	writeTable(pdf, tr, "Category performance", []string{"Category", "Units sold", "Revenue"}, func(add func(...string)) {
		for _, c := range report.CategoryPerformance {
			add(c.Category, fmt.Sprintf("%d", c.UnitsSold), utils.FormatCurrency(c.Revenue))
		}
	})

	return pdf
}

func writeTable(pdf *fpdf.Fpdf, tr func(string) string, title string, headers []string, rows func(add func(...string))) {
	const colWidth = 50.0

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, title)
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for _, h := range headers {
		pdf.CellFormat(colWidth, 7, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	empty := true
	rows(func(values ...string) {
		empty = false
		for i, v := range values {
			align := "L"
			if i > 0 {
				align = "R"
			}
			pdf.CellFormat(colWidth, 7, tr(v), "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	})
	if empty {
		pdf.CellFormat(colWidth*float64(len(headers)), 7, "No data", "1", 1, "C", false, 0, "")
	}
	pdf.Ln(6)
}
