// Package dataset loads the source corpus dataset into records.
package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/docly-ai/texforge/internal/domain"
)

// Column names expected in the dataset header row.
const (
	colID          = "id"
	colUserPrompt  = "user_prompt"
	colKeywords    = "keywords"
	colDocType     = "doc_type"
	colStructure   = "document_structure"
	colElements    = "content_elements"
	colLatexOutput = "latex_output"
)

// Load reads the dataset at path and returns corpus records. The format is
// chosen by extension: .xlsx via excelize, .csv via encoding/csv. sheet names
// the xlsx sheet; the first sheet is used when empty.
func Load(path, sheet string) ([]domain.Record, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return loadExcel(path, sheet)
	case ".csv":
		return loadCSV(path)
	default:
		return nil, fmt.Errorf("unsupported dataset format %q", filepath.Ext(path))
	}
}

func loadExcel(path, sheet string) ([]domain.Record, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset %s: %w", path, err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	return rowsToRecords(rows)
}

func loadCSV(path string) ([]domain.Record, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open dataset %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // tolerate ragged rows, missing cells become ""

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	return rowsToRecords(rows)
}

// rowsToRecords maps a header row plus data rows into records. Column order
// is free; lookup goes by header name. Rows without an id are skipped.
func rowsToRecords(rows [][]string) ([]domain.Record, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("dataset is empty")
	}

	cols := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := cols[colID]; !ok {
		return nil, fmt.Errorf("dataset header is missing %q column", colID)
	}

	cell := func(row []string, name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	records := make([]domain.Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		id := cell(row, colID)
		if id == "" {
			continue
		}

		var keywords []string
		if raw := cell(row, colKeywords); raw != "" {
			keywords = strings.Split(raw, ",")
		}

		records = append(records, domain.NewRecord(
			id,
			cell(row, colDocType),
			keywords,
			cell(row, colUserPrompt),
			cell(row, colLatexOutput),
			cell(row, colStructure),
			cell(row, colElements),
		))
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("dataset has no usable rows")
	}
	return records, nil
}
