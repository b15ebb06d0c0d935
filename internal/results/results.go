// Package results reads nodal solver output back into per-node quantities.
package results

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
)

// DisplacementField is the name of the field built from u1..u3
const DisplacementField = "Displacement"

// ErrNoHeader is returned when a table has no "# node ..." header line
var ErrNoHeader = errors.New("missing header line")

// Table is a nodal result table. Columns excludes the leading node column.
type Table struct {
	Columns []string
	Nodes   []int
	Rows    [][]float64
}

// Summary holds displacement maxima. The per-axis values are maxima of
// absolute components.
type Summary struct {
	MaxMagnitude float64
	MaxX         float64
	MaxY         float64
	MaxZ         float64
	NodeAtMax    int
}

// ParseTable reads a whitespace separated table. The first comment line is
// the header and must start with "node u1 u2 u3".
func ParseTable(r io.Reader) (*Table, error) {
	sc := bufio.NewScanner(r)
	t := &Table{}
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		if t.Columns == nil {
			if !strings.HasPrefix(text, "#") {
				return nil, fmt.Errorf("line %d: %w", line, ErrNoHeader)
			}
			cols := strings.Fields(strings.TrimPrefix(text, "#"))
			if len(cols) < 4 || !strings.EqualFold(cols[0], "node") {
				return nil, fmt.Errorf("line %d: header must start with node u1 u2 u3", line)
			}
			t.Columns = cols[1:]
			continue
		}
		if strings.HasPrefix(text, "#") || strings.HasPrefix(text, "*") {
			continue
		}

		fields := strings.Fields(text)
		if len(fields) != len(t.Columns)+1 {
			return nil, fmt.Errorf("line %d: expected %d columns, got %d", line, len(t.Columns)+1, len(fields))
		}
		id, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: node id: %w", line, err)
		}
		row := make([]float64, len(t.Columns))
		for i, f := range fields[1:] {
			if row[i], err = strconv.ParseFloat(f, 64); err != nil {
				return nil, fmt.Errorf("line %d column %s: %w", line, t.Columns[i], err)
			}
		}
		t.Nodes = append(t.Nodes, id)
		t.Rows = append(t.Rows, row)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if t.Columns == nil {
		return nil, ErrNoHeader
	}
	return t, nil
}

// ParseFile reads a table from path
func ParseFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t, err := ParseTable(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// DisplacementSummary computes the maximum displacement magnitude and the
// per-axis maxima of the first three columns
func (t *Table) DisplacementSummary() Summary {
	var s Summary
	for i, row := range t.Rows {
		x, y, z := row[0], row[1], row[2]
		s.MaxX = math.Max(s.MaxX, math.Abs(x))
		s.MaxY = math.Max(s.MaxY, math.Abs(y))
		s.MaxZ = math.Max(s.MaxZ, math.Abs(z))
		if m := math.Sqrt(x*x + y*y + z*z); m > s.MaxMagnitude || s.NodeAtMax == 0 {
			s.MaxMagnitude = m
			s.NodeAtMax = t.Nodes[i]
		}
	}
	return s
}

// Field returns a per-node field. "Displacement" yields the three
// components; any other name selects a single column, case-insensitively.
func (t *Table) Field(name string) (map[int][]float64, error) {
	cols := []int{0, 1, 2}
	if !strings.EqualFold(name, DisplacementField) {
		cols = nil
		for i, c := range t.Columns {
			if strings.EqualFold(c, name) {
				cols = []int{i}
				break
			}
		}
		if cols == nil {
			return nil, fmt.Errorf("no result column %q (have %s)", name, strings.Join(t.Columns, ", "))
		}
	}

	out := make(map[int][]float64, len(t.Nodes))
	for i, id := range t.Nodes {
		v := make([]float64, len(cols))
		for k, c := range cols {
			v[k] = t.Rows[i][c]
		}
		out[id] = v
	}
	return out, nil
}

// FieldNames lists the fields a table can produce
func (t *Table) FieldNames() []string {
	names := []string{DisplacementField}
	extra := append([]string(nil), t.Columns[3:]...)
	sort.Strings(extra)
	return append(names, extra...)
}
