package fetcher

import (
	"bufio"
	"encoding/csv"
	"io"
	"strings"

	"github.com/rotisserie/eris"
)

// CSVOptions configures the CSV parser.
type CSVOptions struct {
	Delimiter       rune // default ','
	DetectDelimiter bool // if set, sniff ';' vs ',' from the header line
	LazyQuotes      bool
	TrimSpace       bool
}

// ReadCSV reads a delimited file and returns the header row and data rows.
// Exported spreadsheets from Brazilian tooling commonly use ';', so the
// delimiter can be sniffed from the header line.
func ReadCSV(r io.Reader, opts CSVOptions) ([]string, [][]string, error) {
	br := bufio.NewReader(r)

	delim := opts.Delimiter
	if delim == 0 {
		delim = ','
	}
	if opts.DetectDelimiter {
		if peeked, err := br.Peek(4096); err == nil || len(peeked) > 0 {
			firstLine, _, _ := strings.Cut(string(peeked), "\n")
			if strings.Count(firstLine, ";") > strings.Count(firstLine, ",") {
				delim = ';'
			}
		}
	}

	reader := csv.NewReader(br)
	reader.Comma = delim
	reader.LazyQuotes = opts.LazyQuotes
	reader.FieldsPerRecord = -1 // allow variable fields

	var header []string
	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, eris.Wrap(err, "csv: read row")
		}

		if opts.TrimSpace {
			for i, field := range record {
				record[i] = strings.TrimSpace(field)
			}
		}

		if header == nil {
			header = record
			continue
		}
		rows = append(rows, record)
	}

	if header == nil {
		return nil, nil, eris.New("csv: file has no header row")
	}
	return header, rows, nil
}
