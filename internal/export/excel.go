package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"probook/internal/models"
)

const sheetName = "Bookings"

// Excel writes the bookings as an xlsx workbook with one sheet, using
// the same columns as the CSV export. Row order matches the input order.
func Excel(w io.Writer, bookings []models.Booking) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", sheetName)

	if err := writeRow(f, 1, CSVHeader); err != nil {
		return err
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		startCell, _ := excelize.CoordinatesToCellName(1, 1)
		endCell, _ := excelize.CoordinatesToCellName(len(CSVHeader), 1)
		_ = f.SetCellStyle(sheetName, startCell, endCell, style)
	}

	for i, b := range bookings {
		row := []interface{}{
			b.ID, b.Name, b.Email, b.Phone, b.ServiceID, b.ServiceName,
			b.DurationMinutes, b.Date, b.Time, string(b.Status), b.Notes,
			formatCreatedAt(b.CreatedAt),
		}
		if err := writeCells(f, i+2, row); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, rowNum int, values []string) error {
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	return writeCells(f, rowNum, row)
}

func writeCells(f *excelize.File, rowNum int, row []interface{}) error {
	for i, val := range row {
		cell, err := excelize.CoordinatesToCellName(i+1, rowNum)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, val); err != nil {
			return fmt.Errorf("set cell %s: %w", cell, err)
		}
	}
	return nil
}
