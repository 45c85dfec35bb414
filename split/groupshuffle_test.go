package split

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// groupedRows builds nGroups groups of perGroup rows with negative group ids.
func groupedRows(nGroups, perGroup int) (rows, groups []int) {
	for g := 0; g < nGroups; g++ {
		for i := 0; i < perGroup; i++ {
			rows = append(rows, len(rows))
			groups = append(groups, -(g + 1))
		}
	}
	return rows, groups
}

func TestGroupShuffleSplit_GroupIsolation(t *testing.T) {
	rows, groups := groupedRows(20, 3)
	groupOf := make(map[int]int, len(rows))
	for i, r := range rows {
		groupOf[r] = groups[i]
	}
	rng := rand.New(rand.NewSource(1))

	folds, err := GroupShuffleSplit(rows, groups, 10, 0.2, rng)
	require.NoError(t, err)
	require.Len(t, folds, 10)

	for f, fold := range folds {
		testGroups := make(map[int]bool)
		for _, r := range fold.Test {
			testGroups[groupOf[r]] = true
		}
		for _, r := range fold.TrainVal {
			assert.False(t, testGroups[groupOf[r]],
				"split %d: group %d straddles train and test", f, groupOf[r])
		}
	}
}

func TestGroupShuffleSplit_TestGroupCount(t *testing.T) {
	rows, groups := groupedRows(10, 2)
	rng := rand.New(rand.NewSource(2))

	// ceil(0.25 * 10) = 3 groups, 2 rows each.
	folds, err := GroupShuffleSplit(rows, groups, 5, 0.25, rng)
	require.NoError(t, err)
	for f, fold := range folds {
		assert.Len(t, fold.Test, 6, "split %d", f)
		assert.Len(t, fold.TrainVal, 14, "split %d", f)
	}
}

func TestGroupShuffleSplit_SplitsAreIndependentDraws(t *testing.T) {
	rows, groups := groupedRows(50, 1)
	rng := rand.New(rand.NewSource(3))

	folds, err := GroupShuffleSplit(rows, groups, 2, 0.5, rng)
	require.NoError(t, err)
	assert.NotEqual(t, folds[0].Test, folds[1].Test,
		"independent shuffle splits produced identical test sides")
}

func TestGroupShuffleSplit_Errors(t *testing.T) {
	rows, groups := groupedRows(2, 2)
	rng := rand.New(rand.NewSource(4))

	tests := []struct {
		name     string
		nSplits  int
		testSize float64
	}{
		{"zero test size", 1, 0},
		{"full test size", 1, 1},
		{"no train groups left", 1, 0.99},
		{"zero splits", 0, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := GroupShuffleSplit(rows, groups, tt.nSplits, tt.testSize, rng)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrConfig))
		})
	}

	_, err := GroupShuffleSplit(rows, groups[:1], 1, 0.5, rng)
	assert.True(t, errors.Is(err, ErrInvariant))
}
