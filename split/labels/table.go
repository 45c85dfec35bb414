// Package labels provides the in-memory label table backing the split engine.
// This package has no dependencies on split/ — it stores pure per-trace metadata.
package labels

import "fmt"

// ProtocolTCP is the protocol tag of TCP traces. Every other tag is treated
// as a QUIC version (e.g. "quic", "h3-29").
const ProtocolTCP = "tcp"

// UnmonitoredClass is the class label of open-world (unmonitored) traces.
const UnmonitoredClass = -1

// Table is a columnar view of per-trace metadata, indexed 0..Len()-1.
// Monitored traces carry class >= 0 and group 0; unmonitored traces carry
// class -1 and a strictly negative group unique per originating site.
// Tables are read-only once loaded.
type Table struct {
	Class    []int
	Group    []int
	Protocol []string
	Region   []string
}

// Len returns the number of traces in the table.
func (t *Table) Len() int {
	return len(t.Class)
}

// Validate checks column lengths and the class/group sign conventions.
func (t *Table) Validate() error {
	n := len(t.Class)
	if len(t.Group) != n || len(t.Protocol) != n || len(t.Region) != n {
		return fmt.Errorf("ragged columns: class=%d group=%d protocol=%d region=%d",
			n, len(t.Group), len(t.Protocol), len(t.Region))
	}
	for i := 0; i < n; i++ {
		if t.Protocol[i] == "" {
			return fmt.Errorf("row %d: empty protocol", i)
		}
		switch {
		case t.Class[i] == UnmonitoredClass:
			if t.Group[i] >= 0 {
				return fmt.Errorf("row %d: unmonitored trace with non-negative group %d", i, t.Group[i])
			}
		case t.Class[i] >= 0:
			if t.Group[i] != 0 {
				return fmt.Errorf("row %d: monitored trace with group %d, want 0", i, t.Group[i])
			}
		default:
			return fmt.Errorf("row %d: invalid class %d", i, t.Class[i])
		}
	}
	return nil
}

// IsTCP reports whether row i is a TCP trace.
func (t *Table) IsTCP(i int) bool {
	return t.Protocol[i] == ProtocolTCP
}

// Monitored returns the row indices of closed-world traces, in table order.
func (t *Table) Monitored() []int {
	return t.rowsWhere(func(i int) bool { return t.Class[i] != UnmonitoredClass })
}

// Unmonitored returns the row indices of open-world traces, in table order.
func (t *Table) Unmonitored() []int {
	return t.rowsWhere(func(i int) bool { return t.Class[i] == UnmonitoredClass })
}

func (t *Table) rowsWhere(keep func(int) bool) []int {
	rows := make([]int, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		if keep(i) {
			rows = append(rows, i)
		}
	}
	return rows
}

// Classes returns the distinct monitored class labels in first-appearance order.
func (t *Table) Classes() []int {
	seen := make(map[int]bool)
	var classes []int
	for _, c := range t.Class {
		if c != UnmonitoredClass && !seen[c] {
			seen[c] = true
			classes = append(classes, c)
		}
	}
	return classes
}

// Protocols returns the distinct protocol tags in first-appearance order.
func (t *Table) Protocols() []string {
	seen := make(map[string]bool)
	var protos []string
	for _, p := range t.Protocol {
		if !seen[p] {
			seen[p] = true
			protos = append(protos, p)
		}
	}
	return protos
}

// Regions returns the distinct region tags in first-appearance order.
func (t *Table) Regions() []string {
	seen := make(map[string]bool)
	var regions []string
	for _, r := range t.Region {
		if !seen[r] {
			seen[r] = true
			regions = append(regions, r)
		}
	}
	return regions
}
