package reports

import (
	"io"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// FileName stamps the export with its generation date.
func FileName(generatedAt time.Time) string {
	return "work_data_report_" + generatedAt.Format("20060102") + ".pdf"
}

// WritePDF renders the work-data rows as a single-page table.
func WritePDF(w io.Writer, rows []WorkData, generatedAt time.Time) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 12, "Work Data Report", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 8, "Generated on: "+generatedAt.Format("January 2, 2006"), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	widths := []float64{70, 30, 30, 30, 30}
	headers := []string{"Name", "Holiday Days", "Jiatiao Days", "Work Days", "Work Hours"}

	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetFillColor(249, 250, 251)
	for i, header := range headers {
		pdf.CellFormat(widths[i], 9, header, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, row := range rows {
		pdf.CellFormat(widths[0], 8, row.Name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 8, strconv.Itoa(row.HolidayDays), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[2], 8, strconv.Itoa(row.LeaveDays), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[3], 8, strconv.Itoa(row.WorkDays), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[4], 8, strconv.Itoa(row.WorkHours), "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}

	return pdf.Output(w)
}
