package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// File-level failures. Any of these aborts the whole batch; they are never
// mixed into per-row failure counts.
var (
	ErrEmptyFile       = errors.New("spreadsheet has no rows")
	ErrTooManyRows     = errors.New("spreadsheet exceeds the row limit")
	ErrUnsupportedFile = errors.New("unsupported spreadsheet format")
)

// Sheet is one parsed spreadsheet: a header row plus data rows of raw cell
// values. Cells are kept untyped so the date normalizer can distinguish
// native dates and serial numbers from text.
type Sheet struct {
	Headers []string
	Rows    [][]any
}

// ReadSheet parses an uploaded spreadsheet by extension: .csv and .xlsx are
// supported, the first worksheet of an .xlsx is used. maxRows, when
// positive, caps the number of data rows.
func ReadSheet(filename string, data []byte, maxRows int) (*Sheet, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return readCSV(data, maxRows)
	case ".xlsx":
		return readXLSX(data, maxRows)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, filepath.Ext(filename))
	}
}

func readCSV(data []byte, maxRows int) (*Sheet, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records := make([][]string, 0, 1024)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse csv: %w", err)
		}
		records = append(records, record)
	}
	return buildSheet(records, maxRows)
}

func readXLSX(data []byte, maxRows int) (*Sheet, error) {
	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyFile
	}

	// Raw values keep serial dates numeric instead of whatever display
	// format the workbook happens to carry.
	records, err := file.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read worksheet: %w", err)
	}
	return buildSheet(records, maxRows)
}

func buildSheet(records [][]string, maxRows int) (*Sheet, error) {
	if len(records) == 0 {
		return nil, ErrEmptyFile
	}
	if maxRows > 0 && len(records)-1 > maxRows {
		return nil, fmt.Errorf("%w: %d rows", ErrTooManyRows, len(records)-1)
	}

	headers := make([]string, len(records[0]))
	for i, header := range records[0] {
		headers[i] = strings.TrimPrefix(strings.TrimSpace(header), "\uFEFF")
	}

	rows := make([][]any, 0, len(records)-1)
	for _, record := range records[1:] {
		cells := make([]any, len(record))
		empty := true
		for i, cell := range record {
			cells[i] = cell
			if strings.TrimSpace(cell) != "" {
				empty = false
			}
		}
		if empty {
			continue
		}
		rows = append(rows, cells)
	}
	return &Sheet{Headers: headers, Rows: rows}, nil
}
