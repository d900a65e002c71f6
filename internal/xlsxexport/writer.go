package xlsxexport

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"regscan/internal/csvexport"
	"regscan/internal/domain"
)

const sheetName = "Matches"

// Build renders items into an XLSX workbook with the same columns as the CSV
// export. Product codes are written as string cells, so no formula wrapping
// is needed to keep them textual.
func Build(items []domain.ExtractionItem, processedAt time.Time) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("renaming sheet: %w", err)
	}

	header := make([]interface{}, len(csvexport.Columns))
	for i, c := range csvexport.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("writing header: %w", err)
	}

	for i := range items {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		r := csvexport.NewRow(i+1, &items[i], processedAt)
		row := []interface{}{
			r.Seq,
			r.ProductCode,
			r.CompanyName,
			r.RegNo,
			r.RegNoDigits,
			r.ProcessedAt.Format(time.RFC3339),
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serializing workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// BuildFilename returns the attachment filename: regscan_{YYYY-MM-DD}.xlsx.
func BuildFilename(processedAt time.Time) string {
	return fmt.Sprintf("regscan_%s.xlsx", processedAt.Format("2006-01-02"))
}
