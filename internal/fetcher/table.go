package fetcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Table is a header row plus the data rows beneath it.
type Table struct {
	Header []string
	Rows   [][]string
}

// Index returns the position of column in the header, or -1.
func (t *Table) Index(column string) int {
	for i, h := range t.Header {
		if h == column {
			return i
		}
	}
	return -1
}

// TableOptions configures ReadTable.
type TableOptions struct {
	Sheet     string // xlsx only; empty means the first sheet
	SkipRows  int    // rows above the header, e.g. an export title
	Delimiter rune   // csv only; default ','
}

// ReadTable reads a .xlsx or .csv file. The first row after SkipRows is the
// header; header cells are trimmed of surrounding whitespace, and so are all
// CSV cells.
func ReadTable(ctx context.Context, path string, opts TableOptions) (*Table, error) {
	var (
		rows [][]string
		err  error
	)

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx":
		rows, err = ReadXLSX(path, XLSXOptions{SheetName: opts.Sheet, SkipRows: opts.SkipRows, RawNumbers: true})
	case ".csv":
		rows, err = readCSVFile(ctx, path, opts)
	default:
		return nil, eris.Errorf("table: unsupported file type %q", ext)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "table: read %s", path)
	}

	if len(rows) == 0 {
		return nil, eris.Errorf("table: %s has no header row", path)
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(h)
	}

	return &Table{Header: header, Rows: rows[1:]}, nil
}

// readCSVFile reads a CSV export, dropping a leading byte order mark.
func readCSVFile(ctx context.Context, path string, opts TableOptions) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "csv: open file")
	}
	defer f.Close() //nolint:errcheck

	r := transform.NewReader(f, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	rows, err := ReadCSV(ctx, r, CSVOptions{
		Delimiter:  opts.Delimiter,
		LazyQuotes: true,
		TrimSpace:  true,
	})
	if err != nil {
		return nil, err
	}
	if opts.SkipRows >= len(rows) {
		return nil, nil
	}
	return rows[opts.SkipRows:], nil
}
