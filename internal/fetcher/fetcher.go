// Package fetcher parses uploaded spreadsheets (CSV or XLSX) into a header
// row plus data rows before the import pipeline begins.
package fetcher

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// ReadFile detects the spreadsheet format by extension and parses it.
// The first row is the header; remaining rows are data.
func ReadFile(path string) ([]string, [][]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return ReadXLSX(path, XLSXOptions{})
	case ".csv", ".txt":
		f, err := os.Open(path)
		if err != nil {
			return nil, nil, eris.Wrap(err, "fetcher: open file")
		}
		defer f.Close() //nolint:errcheck
		return ReadCSV(f, CSVOptions{DetectDelimiter: true, TrimSpace: true})
	default:
		return nil, nil, eris.Errorf("fetcher: unsupported file type %q", filepath.Ext(path))
	}
}
