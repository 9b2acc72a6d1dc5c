package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

var errInvalidUTF8 = errors.New("invalid UTF-8")

type decoder struct {
	name   string
	decode func([]byte) (string, error)
}

// decoders are attempted in order; a file is skipped only when all fail.
var decoders = []decoder{
	{name: "utf-8", decode: decodeUTF8},
	{name: "latin-1", decode: decodeLatin1},
}

func decodeUTF8(b []byte) (string, error) {
	if !utf8.Valid(b) {
		return "", errInvalidUTF8
	}
	return strings.TrimPrefix(string(b), "\ufeff"), nil
}

func decodeLatin1(b []byte) (string, error) {
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		return "", fmt.Errorf("latin-1: %w", err)
	}
	return string(out), nil
}

// rawTable is one decoded source file.
type rawTable struct {
	path     string
	encoding string
	// index maps source column position to canonical column.
	index map[int]string
	// labels maps canonical column to the header text used by this file.
	labels          map[string]string
	rows            []RawRecord
	repeatedHeaders int
	// malformed counts rows the CSV reader rejected.
	malformed int
}

func readSource(path string) (*rawTable, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		t, err := readWorkbook(path)
		if err != nil {
			return nil, err
		}
		t.path = path
		t.encoding = "xlsx"
		return t, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	var errs []error
	for _, d := range decoders {
		text, err := d.decode(b)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", d.name, err))
			continue
		}
		t, err := parseTable(text)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", d.name, err))
			continue
		}
		t.path = path
		t.encoding = d.name
		return t, nil
	}
	return nil, errors.Join(errs...)
}

func parseTable(text string) (*rawTable, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return newTable(nil), nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	t := newTable(header)
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			// A malformed row costs only itself.
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				t.malformed++
				continue
			}
			return nil, fmt.Errorf("read rows: %w", err)
		}
		t.add(rec)
	}
	return t, nil
}

// readWorkbook loads the first worksheet of an Excel export.
func readWorkbook(path string) (*rawTable, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return newTable(nil), nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return newTable(nil), nil
	}
	t := newTable(rows[0])
	for _, rec := range rows[1:] {
		t.add(rec)
	}
	return t, nil
}

// newTable maps header positions onto canonical columns. When two headers
// canonicalize to the same column the first one wins.
func newTable(header []string) *rawTable {
	t := &rawTable{
		index:  make(map[int]string, len(header)),
		labels: make(map[string]string, len(header)),
	}
	for i, h := range header {
		col, ok := CanonicalColumn(h)
		if !ok {
			continue
		}
		if _, dup := t.labels[col]; dup {
			continue
		}
		t.index[i] = col
		t.labels[col] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}
	return t
}

func (t *rawTable) add(rec []string) {
	raw := make(RawRecord, len(t.index))
	for i, col := range t.index {
		if i < len(rec) {
			raw[col] = rec[i]
		}
	}
	if isRepeatedHeader(raw, t.labels) {
		t.repeatedHeaders++
		return
	}
	t.rows = append(t.rows, raw)
}

// isRepeatedHeader catches header lines embedded in concatenated exports.
func isRepeatedHeader(raw RawRecord, labels map[string]string) bool {
	label, ok := labels[ColProduct]
	if !ok {
		return false
	}
	v, _ := raw.Get(ColProduct)
	return v != "" && strings.EqualFold(v, label)
}
