package seed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// table is one parsed CSV file. Rows keep the line they started on so errors
// can point at the source.
type table struct {
	name    string
	columns map[string]int
	rows    []row
}

type row struct {
	line   int
	fields []string
}

func parseTable(name string, r io.Reader) (*table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 0

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return &table{name: name, columns: map[string]int{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("seed: %s: read header: %w", name, err)
	}

	t := &table{name: name, columns: make(map[string]int, len(header))}
	for i, col := range header {
		col = strings.TrimSpace(strings.TrimPrefix(col, "\ufeff"))
		t.columns[col] = i
	}

	for {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("seed: %s: %w", name, err)
		}
		line, _ := cr.FieldPos(0)
		t.rows = append(t.rows, row{line: line, fields: fields})
	}
	return t, nil
}

// require fails unless every named column is present in the header.
func (t *table) require(cols ...string) error {
	var missing []string
	for _, c := range cols {
		if _, ok := t.columns[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("seed: %s: missing columns %s", t.name, strings.Join(missing, ", "))
	}
	return nil
}

// str returns the value of col in r. Columns are checked by require first.
func (t *table) str(r row, col string) string {
	return r.fields[t.columns[col]]
}

// optional returns nil for an empty cell.
func (t *table) optional(r row, col string) *string {
	v := t.str(r, col)
	if v == "" {
		return nil
	}
	return &v
}

func (t *table) int(r row, col string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(t.str(r, col)))
	if err != nil {
		return 0, t.errorf(r, "%s: %q is not an integer", col, t.str(r, col))
	}
	return v, nil
}

// flag is true only for the literal True.
func (t *table) flag(r row, col string) bool {
	return t.str(r, col) == "True"
}

func (t *table) errorf(r row, format string, args ...any) error {
	return fmt.Errorf("seed: %s line %d: %s", t.name, r.line, fmt.Sprintf(format, args...))
}
