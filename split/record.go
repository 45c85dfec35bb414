package split

import (
	"encoding/json"
	"fmt"
	"io"
	"math/rand"

	"github.com/tracesplit/tracesplit/split/labels"
)

// Record is the serialized form of one repetition, consumed by external
// feature-extraction and classifier jobs. TrainVal is a random permutation
// of Train followed by Val, for classifiers that carve their own internal
// validation split. Records are written one JSON object per line so that a
// consumer can pick a repetition by line offset.
type Record struct {
	Train    []int `json:"train"`
	Val      []int `json:"val"`
	Test     []int `json:"test"`
	TrainVal []int `json:"train-val"`
}

// NewRecord builds the Record for one split, drawing the train-val
// permutation from rng.
func NewRecord(sp Split, rng *rand.Rand) Record {
	combined := make([]int, 0, len(sp.Train)+len(sp.Val))
	combined = append(combined, sp.Train...)
	combined = append(combined, sp.Val...)

	trainVal := make([]int, len(combined))
	for i, p := range rng.Perm(len(combined)) {
		trainVal[i] = combined[p]
	}

	return Record{
		Train:    orEmpty(sp.Train),
		Val:      orEmpty(sp.Val),
		Test:     orEmpty(sp.Test),
		TrainVal: trainVal,
	}
}

// Records runs the full pipeline over tbl and returns one Record per
// repetition, ready for serialization.
func (s *Splitter) Records(tbl *labels.Table) ([]Record, error) {
	splits, err := s.Split(tbl)
	if err != nil {
		return nil, err
	}
	rng := s.rng.ForStage(StageAssemble)
	records := make([]Record, len(splits))
	for i, sp := range splits {
		records[i] = NewRecord(sp, rng)
	}
	return records, nil
}

// WriteRecords serializes records to w as a line-delimited JSON stream.
func WriteRecords(w io.Writer, records []Record) error {
	enc := json.NewEncoder(w)
	for i, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("encoding repetition %d: %w", i, err)
		}
	}
	return nil
}

// orEmpty returns xs, or an allocated empty slice when xs is nil, so that
// empty partitions serialize as [] rather than null.
func orEmpty(xs []int) []int {
	if xs == nil {
		return []int{}
	}
	return xs
}
