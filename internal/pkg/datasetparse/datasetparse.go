package datasetparse

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

const previewRows = 10

var ErrUnsupportedFormat = errors.New("unsupported dataset format")

// Result describes a parsed tabular dataset: the header, the number of data
// rows, and up to the first ten rows keyed by column name.
type Result struct {
	Format      string                   `json:"format"`
	Columns     []string                 `json:"columns"`
	RowCount    int                      `json:"rowCount"`
	ColumnCount int                      `json:"columnCount"`
	Preview     []map[string]interface{} `json:"preview"`
}

// DetectFormat maps a file name to one of csv/json/yaml by extension.
func DetectFormat(filename string) (string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return "csv", nil
	case ".json":
		return "json", nil
	case ".yml", ".yaml":
		return "yaml", nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filename)
	}
}

func Parse(r io.Reader, format string) (*Result, error) {
	switch format {
	case "csv":
		return parseCSV(r)
	case "json":
		return parseJSON(r)
	case "yaml":
		return parseYAML(r)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

func parseCSV(r io.Reader) (*Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return &Result{Format: "csv", Columns: []string{}, Preview: []map[string]interface{}{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header failed: %w", err)
	}

	columns := make([]string, len(header))
	for i, col := range header {
		columns[i] = strings.TrimSpace(col)
	}

	result := &Result{
		Format:      "csv",
		Columns:     columns,
		ColumnCount: len(columns),
		Preview:     []map[string]interface{}{},
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row failed: %w", err)
		}
		result.RowCount++
		if len(result.Preview) < previewRows {
			row := make(map[string]interface{}, len(columns))
			for i, col := range columns {
				if i < len(record) {
					row[col] = record[i]
				} else {
					row[col] = ""
				}
			}
			result.Preview = append(result.Preview, row)
		}
	}
	return result, nil
}

func parseJSON(r io.Reader) (*Result, error) {
	var rows []map[string]interface{}
	if err := json.NewDecoder(r).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode json dataset failed: %w", err)
	}
	return fromRows("json", rows), nil
}

func parseYAML(r io.Reader) (*Result, error) {
	var rows []map[string]interface{}
	if err := yaml.NewDecoder(r).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode yaml dataset failed: %w", err)
	}
	return fromRows("yaml", rows), nil
}

// fromRows derives the column set from the union of keys across all rows so a
// sparse record cannot hide a column.
func fromRows(format string, rows []map[string]interface{}) *Result {
	seen := map[string]struct{}{}
	var columns []string
	for _, row := range rows {
		for key := range row {
			if _, ok := seen[key]; !ok {
				seen[key] = struct{}{}
				columns = append(columns, key)
			}
		}
	}
	sort.Strings(columns)
	if columns == nil {
		columns = []string{}
	}

	preview := make([]map[string]interface{}, 0, previewRows)
	for i := 0; i < len(rows) && i < previewRows; i++ {
		preview = append(preview, rows[i])
	}

	return &Result{
		Format:      format,
		Columns:     columns,
		RowCount:    len(rows),
		ColumnCount: len(columns),
		Preview:     preview,
	}
}
