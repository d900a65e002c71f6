package csvexport

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"regscan/internal/domain"
	"regscan/internal/validate"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// Columns defines the export header row.
var Columns = []string{
	"No",
	"Product Code",
	"Company Name",
	"Registration Number",
	"Registration Number (Digits)",
	"Processed At",
}

// Writer wraps csv.Writer for exporting extraction items as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(Columns)
}

// WriteItems converts items to rows and writes them. The sequence column is
// 1..N in input order; processedAt fills the timestamp column for every row.
func (w *Writer) WriteItems(items []domain.ExtractionItem, processedAt time.Time) error {
	for i := range items {
		row := NewRow(i+1, &items[i], processedAt)
		if err := w.csv.Write(renderRow(&row)); err != nil {
			return err
		}
	}
	return nil
}

// NewRow derives the write-once export row for one item.
func NewRow(seq int, item *domain.ExtractionItem, processedAt time.Time) domain.ExportRow {
	return domain.ExportRow{
		Seq:         seq,
		ProductCode: item.ProductCode,
		CompanyName: item.CompanyName,
		RegNo:       item.BusinessRegNo,
		RegNoDigits: validate.DigitsOnly(item.BusinessRegNo),
		ProcessedAt: processedAt,
	}
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

// Build renders the complete artifact: BOM, header, and one row per item.
// Deterministic given identical items and timestamp.
func Build(items []domain.ExtractionItem, processedAt time.Time) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(BOM)

	w := NewWriter(&buf)
	if err := w.WriteHeader(); err != nil {
		return nil, err
	}
	if err := w.WriteItems(items, processedAt); err != nil {
		return nil, err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// renderRow converts one export row to CSV fields. The product code is
// wrapped in an Excel text formula so spreadsheet tools keep leading zeros
// instead of coercing the code to a number.
func renderRow(row *domain.ExportRow) []string {
	return []string{
		strconv.Itoa(row.Seq),
		`="` + row.ProductCode + `"`,
		row.CompanyName,
		row.RegNo,
		row.RegNoDigits,
		row.ProcessedAt.Format(time.RFC3339),
	}
}

// BuildFilename returns the attachment filename: regscan_{YYYY-MM-DD}.csv.
func BuildFilename(processedAt time.Time) string {
	return fmt.Sprintf("regscan_%s.csv", processedAt.Format("2006-01-02"))
}
