package reports

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"uren/internal/domain/commission"
)

// PayoutOverviewPDF renders a payout overview document: invoice totals at the
// top, then one line per profile.
func PayoutOverviewPDF(result commission.Result, generatedAt time.Time) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Payout overview")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", generatedAt.Format("2006-01-02 15:04")))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Entries: %d", len(result.PerEntry)))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Client invoice total: %.2f", result.Totals.ClientInvoiceTotal))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Total deductions: %.2f", result.Totals.TotalDeductions))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(55, 8, "Profile", "1", 0, "", false, 0, "")
	pdf.CellFormat(32, 8, "Own pay", "1", 0, "R", false, 0, "")
	pdf.CellFormat(32, 8, "Hourly recv.", "1", 0, "R", false, 0, "")
	pdf.CellFormat(32, 8, "Margin recv.", "1", 0, "R", false, 0, "")
	pdf.CellFormat(32, 8, "Total", "1", 0, "R", false, 0, "")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 11)
	for _, rec := range result.Payouts {
		pdf.CellFormat(55, 8, rec.Name, "1", 0, "", false, 0, "")
		pdf.CellFormat(32, 8, fmt.Sprintf("%.2f", rec.OwnPay), "1", 0, "R", false, 0, "")
		pdf.CellFormat(32, 8, fmt.Sprintf("%.2f", rec.ReceivedHourly), "1", 0, "R", false, 0, "")
		pdf.CellFormat(32, 8, fmt.Sprintf("%.2f", rec.ReceivedMargin), "1", 0, "R", false, 0, "")
		pdf.CellFormat(32, 8, fmt.Sprintf("%.2f", rec.Total), "1", 0, "R", false, 0, "")
		pdf.Ln(8)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
