// Package workbook reads uploaded spreadsheet files into sheets of string
// cells.
//
// Two formats are accepted: CSV (one unnamed sheet) and xlsx workbooks (one
// or more named sheets). Readers handle the usual artifacts of
// human-exported files: UTF-8 BOMs, invalid byte sequences, ragged rows,
// and leading blank rows before the header.
package workbook

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

// ErrEmptyFile indicates the file contained no usable rows.
var ErrEmptyFile = errors.New("file contains no data rows")

// Sheet is one sheet's worth of raw cells. Header is the first non-empty
// row; Rows are the data rows after it, in file order.
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]string
}

// Read parses file data into sheets based on the file extension.
// ".xlsx" and ".xlsm" open as workbooks; everything else parses as CSV.
func Read(fileName string, data []byte) ([]Sheet, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".xlsx", ".xlsm":
		return readWorkbook(fileName, data)
	default:
		sheet, err := ReadCSV(fileName, data)
		if err != nil {
			return nil, err
		}
		return []Sheet{sheet}, nil
	}
}

// ReadCSV parses CSV data into a single sheet named after the file.
func ReadCSV(fileName string, data []byte) (Sheet, error) {
	data = skipBOM(sanitizeUTF8(data))

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var records [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Sheet{}, fmt.Errorf("parse CSV: %w", err)
		}
		records = append(records, record)
	}

	name := strings.TrimSuffix(filepath.Base(fileName), filepath.Ext(fileName))
	return buildSheet(name, records)
}

// readWorkbook opens an xlsx workbook and extracts every non-empty sheet.
func readWorkbook(fileName string, data []byte) ([]Sheet, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	var sheets []Sheet
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", name, err)
		}
		sheet, err := buildSheet(name, rows)
		if err != nil {
			continue // empty sheet, skip
		}
		sheets = append(sheets, sheet)
	}
	if len(sheets) == 0 {
		return nil, ErrEmptyFile
	}
	return sheets, nil
}

// buildSheet locates the header row and splits off the data rows.
func buildSheet(name string, records [][]string) (Sheet, error) {
	headerIdx := -1
	for i, row := range records {
		if !isEmptyRow(row) {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return Sheet{}, ErrEmptyFile
	}

	header := make([]string, len(records[headerIdx]))
	for i, cell := range records[headerIdx] {
		header[i] = CleanCell(cell)
	}

	var rows [][]string
	for _, row := range records[headerIdx+1:] {
		if isEmptyRow(row) {
			continue
		}
		rows = append(rows, row)
	}
	return Sheet{Name: name, Header: header, Rows: rows}, nil
}

// CleanCell strips surrounding whitespace and the ="value" Excel formula
// wrapper some exporters emit.
func CleanCell(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, `="`) && strings.HasSuffix(s, `"`) && len(s) > 3 {
		s = s[2 : len(s)-1]
	}
	return strings.TrimSpace(s)
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// skipBOM removes a UTF-8 byte order mark, common in Windows exports.
func skipBOM(data []byte) []byte {
	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		return data[3:]
	}
	return data
}

// sanitizeUTF8 replaces invalid UTF-8 sequences with the replacement
// character so the CSV parser never sees broken runes.
func sanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}
	var buf bytes.Buffer
	buf.Grow(len(data))
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune(utf8.RuneError)
		} else {
			buf.Write(data[:size])
		}
		data = data[size:]
	}
	return buf.Bytes()
}
