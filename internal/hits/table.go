// internal/hits/table.go
package hits

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
)

// ScaffoldID is a scaffold (nucleotide) accession as it appears in the
// Scaffold column of a cblaster binary output file.
type ScaffoldID string

// ErrMalformedInput reports a hit table that does not look like cblaster
// binary output (missing columns, no data rows, unreadable CSV).
var ErrMalformedInput = errors.New("malformed hit table")

// Columns every cblaster binary file must carry. The Scaffold column is the
// join key for everything downstream.
var requiredColumns = []string{"Organism", "Scaffold", "Start", "End", "Score"}

const minColumns = 6

// Hit is one data row of the binary file, kept verbatim so the cleaned
// output can reproduce the input schema byte for byte.
type Hit struct {
	Row    int // 0-based data row index, in file order
	Fields []string
}

// Table is the parsed binary file plus a scaffold → row index built once at
// read time, so later stages never match scaffold IDs against raw file text.
type Table struct {
	Header []string
	Hits   []Hit

	scaffoldCol int
	rowOf       map[ScaffoldID]int
}

// ReadTable parses a cblaster binary CSV file.
func ReadTable(path string) (*Table, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = fh.Close() }()

	rd := csv.NewReader(fh)
	rd.FieldsPerRecord = -1 // cblaster rows can be ragged past the fixed columns

	rows, err := rd.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedInput, path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s: empty file", ErrMalformedInput, path)
	}

	header := rows[0]
	if len(header) < minColumns {
		return nil, fmt.Errorf("%w: %s: expected at least %d columns, got %d", ErrMalformedInput, path, minColumns, len(header))
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[name] = i
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("%w: %s: missing column %q", ErrMalformedInput, path, name)
		}
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%w: %s: no hits beyond the header row", ErrMalformedInput, path)
	}

	t := &Table{
		Header:      header,
		scaffoldCol: cols["Scaffold"],
		rowOf:       make(map[ScaffoldID]int, len(rows)-1),
	}
	for i, row := range rows[1:] {
		if t.scaffoldCol >= len(row) {
			return nil, fmt.Errorf("%w: %s: row %d has no Scaffold field", ErrMalformedInput, path, i+1)
		}
		h := Hit{Row: i, Fields: row}
		t.Hits = append(t.Hits, h)
		if _, seen := t.rowOf[t.scaffold(h)]; !seen {
			t.rowOf[t.scaffold(h)] = i
		}
	}
	return t, nil
}

func (t *Table) scaffold(h Hit) ScaffoldID { return ScaffoldID(h.Fields[t.scaffoldCol]) }

// Scaffolds returns one scaffold ID per data row, in file order.
func (t *Table) Scaffolds() []ScaffoldID {
	out := make([]ScaffoldID, len(t.Hits))
	for i, h := range t.Hits {
		out[i] = t.scaffold(h)
	}
	return out
}

// RowOf returns the data row index of the first hit on the given scaffold.
func (t *Table) RowOf(s ScaffoldID) (int, bool) {
	i, ok := t.rowOf[s]
	return i, ok
}

// HitFor returns the first hit on the given scaffold.
func (t *Table) HitFor(s ScaffoldID) (Hit, bool) {
	i, ok := t.rowOf[s]
	if !ok {
		return Hit{}, false
	}
	return t.Hits[i], true
}
