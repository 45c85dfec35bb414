package split

import (
	"bytes"
	"encoding/json"
	"math/rand"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRecord_TrainValIsPermutation(t *testing.T) {
	sp := Split{Train: []int{4, 8, 15}, Val: []int{16, 23}, Test: []int{42}}
	rec := NewRecord(sp, rand.New(rand.NewSource(1)))

	assert.Equal(t, sp.Train, rec.Train)
	assert.Equal(t, sp.Val, rec.Val)
	assert.Equal(t, sp.Test, rec.Test)

	got := append([]int(nil), rec.TrainVal...)
	sort.Ints(got)
	assert.Equal(t, []int{4, 8, 15, 16, 23}, got,
		"train-val must be a permutation of train followed by val")
}

func TestNewRecord_EmptyValSerializesAsArray(t *testing.T) {
	rec := NewRecord(Split{Train: []int{1}, Test: []int{2}}, rand.New(rand.NewSource(2)))

	data, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"val":[]`)
	assert.NotContains(t, string(data), "null")
}

func TestWriteRecords_LineDelimited(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	records := []Record{
		NewRecord(Split{Train: []int{0, 1}, Val: []int{2}, Test: []int{3}}, rng),
		NewRecord(Split{Train: []int{4}, Val: []int{5}, Test: []int{6}}, rng),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteRecords(&buf, records))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2, "one JSON record per line")

	// A consumer picks a repetition by line offset and stable key names.
	var decoded map[string][]int
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &decoded))
	assert.ElementsMatch(t, []string{"train", "val", "test", "train-val"}, keys(decoded))
	assert.Equal(t, []int{4}, decoded["train"])
	assert.Equal(t, []int{6}, decoded["test"])
}

func keys(m map[string][]int) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
