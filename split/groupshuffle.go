package split

import (
	"fmt"
	"math"
	"math/rand"
)

// GroupShuffleSplit produces nSplits independent random partitions of rows
// into (TrainVal, Test) such that no group straddles the two sides.
// groups[i] is the group id of rows[i]; testSize is the fraction of distinct
// groups assigned to the test side, rounded up.
//
// Unlike a k-fold, successive splits are independent draws: the same group
// may land in the test side of several splits, but never in both sides of
// one split.
func GroupShuffleSplit(rows, groups []int, nSplits int, testSize float64, rng *rand.Rand) ([]Fold, error) {
	if len(rows) != len(groups) {
		return nil, fmt.Errorf("%w: %d rows but %d group ids", ErrInvariant, len(rows), len(groups))
	}
	if nSplits < 1 {
		return nil, fmt.Errorf("%w: n_splits must be at least 1, got %d", ErrConfig, nSplits)
	}
	if testSize <= 0 || testSize >= 1 {
		return nil, fmt.Errorf("%w: test_size must be in (0, 1), got %v", ErrConfig, testSize)
	}

	unique := uniqueInts(groups)
	nTest := int(math.Ceil(testSize * float64(len(unique))))
	if nTest == 0 {
		return nil, fmt.Errorf("%w: no groups available for the test partition (%d groups, test_size=%v)",
			ErrConfig, len(unique), testSize)
	}
	if nTest >= len(unique) {
		return nil, fmt.Errorf("%w: no groups left for the train partition (%d groups, test_size=%v)",
			ErrConfig, len(unique), testSize)
	}

	folds := make([]Fold, 0, nSplits)
	for s := 0; s < nSplits; s++ {
		shuffled := append([]int(nil), unique...)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		testGroups := make(map[int]bool, nTest)
		for _, g := range shuffled[:nTest] {
			testGroups[g] = true
		}

		var fold Fold
		for i, row := range rows {
			if testGroups[groups[i]] {
				fold.Test = append(fold.Test, row)
			} else {
				fold.TrainVal = append(fold.TrainVal, row)
			}
		}
		folds = append(folds, fold)
	}
	return folds, nil
}

// uniqueInts returns the distinct values of xs in first-appearance order.
func uniqueInts(xs []int) []int {
	seen := make(map[int]bool, len(xs))
	var out []int
	for _, x := range xs {
		if !seen[x] {
			seen[x] = true
			out = append(out, x)
		}
	}
	return out
}
