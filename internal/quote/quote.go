package quote

import (
	"fmt"
	"io"
	"strings"
	"time"

	"print-personalizer/internal/models"

	"github.com/xuri/excelize/v2"
)

const (
	sheet     = "Quote"
	euroFmt   = `#,##0.00 "€"`
	firstLine = 7
)

// Quote is a priced personalization request ready to be exported.
type Quote struct {
	ProductID   string
	Quantity    int
	Sides       []string
	Areas       []string
	Breakdown   *models.PricingBreakdown
	GeneratedAt time.Time
}

// Filename is the suggested download name.
func (q Quote) Filename() string {
	return fmt.Sprintf("quote_%s_%s.xlsx", q.ProductID, q.GeneratedAt.Format("20060102_1504"))
}

// Write renders the quote as an xlsx workbook.
func Write(w io.Writer, q Quote) error {
	if q.Breakdown == nil {
		return fmt.Errorf("quote.Write: missing breakdown")
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("quote.Write: rename sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("quote.Write: style: %w", err)
	}
	money, err := f.NewStyle(&excelize.Style{CustomNumFmt: ptr(euroFmt)})
	if err != nil {
		return fmt.Errorf("quote.Write: style: %w", err)
	}
	boldMoney, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}, CustomNumFmt: ptr(euroFmt)})
	if err != nil {
		return fmt.Errorf("quote.Write: style: %w", err)
	}

	// Request info
	f.SetCellValue(sheet, "A1", "Product")
	f.SetCellValue(sheet, "B1", q.ProductID)
	f.SetCellValue(sheet, "A2", "Quantity")
	f.SetCellValue(sheet, "B2", q.Quantity)
	f.SetCellValue(sheet, "A3", "Sides")
	f.SetCellValue(sheet, "B3", joinIDs(q.Sides))
	f.SetCellValue(sheet, "A4", "Areas")
	f.SetCellValue(sheet, "B4", joinIDs(q.Areas))
	f.SetCellValue(sheet, "A5", "Generated At")
	f.SetCellValue(sheet, "B5", q.GeneratedAt.Format("2006-01-02 15:04"))
	f.SetCellStyle(sheet, "A1", "A5", bold)

	// Breakdown lines
	headers := []string{"Description", "Type", "Amount"}
	for col, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, firstLine-1)
		f.SetCellValue(sheet, cell, header)
	}
	f.SetCellStyle(sheet, "A6", "C6", bold)

	row := firstLine
	for _, item := range q.Breakdown.Breakdown {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), item.Description)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), string(item.Type))
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), item.Amount)
		f.SetCellStyle(sheet, fmt.Sprintf("C%d", row), fmt.Sprintf("C%d", row), money)
		row++
	}

	// Totals
	row++
	totals := []struct {
		label string
		value float64
	}{
		{"Base price", q.Breakdown.BasePrice},
		{"Personalization", q.Breakdown.PersonalizationPrice},
		{"Quantity discount", 0 - q.Breakdown.QuantityDiscount},
		{"Final price", q.Breakdown.FinalPrice},
	}
	for _, t := range totals {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), t.label)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), t.value)
		f.SetCellStyle(sheet, fmt.Sprintf("C%d", row), fmt.Sprintf("C%d", row), money)
		row++
	}
	last := row - 1
	f.SetCellStyle(sheet, fmt.Sprintf("A%d", last), fmt.Sprintf("A%d", last), bold)
	f.SetCellStyle(sheet, fmt.Sprintf("C%d", last), fmt.Sprintf("C%d", last), boldMoney)

	f.SetColWidth(sheet, "A", "A", 40)
	f.SetColWidth(sheet, "B", "C", 18)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("quote.Write: %w", err)
	}
	return nil
}

func joinIDs(ids []string) string {
	if len(ids) == 0 {
		return "-"
	}
	return strings.Join(ids, ", ")
}

func ptr[T any](v T) *T { return &v }
