package labels

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
)

// requiredColumns are the header names a label CSV must carry. Extra columns
// (e.g. "url") are ignored.
var requiredColumns = []string{"class", "group", "protocol", "region"}

// ReadCSV loads a label table from a CSV file with a header row naming at
// least the columns class, group, protocol and region, in any order.
func ReadCSV(path string) (*Table, error) {
	if path == "" {
		return nil, fmt.Errorf("label CSV path must not be empty")
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening label CSV %s: %w", path, err)
	}
	defer file.Close() //nolint:errcheck // read-only file

	table, err := ParseCSV(file)
	if err != nil {
		return nil, fmt.Errorf("label CSV %s: %w", path, err)
	}
	return table, nil
}

// ParseCSV reads a label table from r. See ReadCSV for the expected format.
func ParseCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[name] = i
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("missing column %q in header %v", name, header)
		}
	}

	table := &Table{}
	rowIdx := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", rowIdx, err)
		}

		class, err := strconv.Atoi(record[cols["class"]])
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid class %q: %w", rowIdx, record[cols["class"]], err)
		}
		group, err := strconv.Atoi(record[cols["group"]])
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid group %q: %w", rowIdx, record[cols["group"]], err)
		}

		table.Class = append(table.Class, class)
		table.Group = append(table.Group, group)
		table.Protocol = append(table.Protocol, record[cols["protocol"]])
		table.Region = append(table.Region, record[cols["region"]])
		rowIdx++
	}

	if table.Len() == 0 {
		return nil, fmt.Errorf("no data rows")
	}
	if err := table.Validate(); err != nil {
		return nil, err
	}
	return table, nil
}
