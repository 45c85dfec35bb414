package split

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/tracesplit/tracesplit/split/labels"
)

// LoadLabels reads and validates a label table from a CSV file. Failures
// are reported as ErrInput before any output is written.
func LoadLabels(path string) (*labels.Table, error) {
	logrus.Infof("Reading labels from %q...", path)
	table, err := labels.ReadCSV(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInput, err)
	}
	logrus.Infof("Loaded %d traces (%d monitored classes, %d protocols, %d regions)",
		table.Len(), len(table.Classes()), len(table.Protocols()), len(table.Regions()))
	return table, nil
}

// ParseLabels reads and validates a label table from an open CSV stream.
func ParseLabels(r io.Reader) (*labels.Table, error) {
	table, err := labels.ParseCSV(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInput, err)
	}
	return table, nil
}
