package resumes

import (
	"encoding/base64"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const (
	SheetName        = "Resumes"
	ViewResumeColumn = "View Resume"
)

var exportColumns = []string{"Name", "Email", "Phone", "File Name", "Qualification"}

// Rows returns the header followed by one row per record. Absent fields are empty cells.
func Rows(records []Record, includeViewLinks bool) [][]string {
	header := append([]string(nil), exportColumns...)
	if includeViewLinks {
		header = append(header, ViewResumeColumn)
	}
	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, header)
	for _, rec := range records {
		row := []string{
			deref(rec.Name),
			deref(rec.Email),
			deref(rec.Phone),
			rec.FileName,
			rec.Qualification,
		}
		if includeViewLinks {
			row = append(row, rec.ViewURL)
		}
		rows = append(rows, row)
	}
	return rows
}

// WriteCSV writes the records as CSV.
func WriteCSV(w io.Writer, records []Record, includeViewLinks bool) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(Rows(records, includeViewLinks)); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// WriteXLSX writes the records to a single-sheet workbook.
// View links are left out; data URIs exceed the spreadsheet cell limit.
func WriteXLSX(w io.Writer, records []Record) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	for i, row := range Rows(records, false) {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

// DataURI embeds data as a base64 data URI.
func DataURI(mimeType string, data []byte) string {
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
