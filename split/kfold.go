package split

import (
	"fmt"
	"math/rand"
)

// Fold is one repetition's candidate partition: the held-out test rows and
// the remaining train/validation rows. Row values are indices into the
// backing label table.
type Fold struct {
	TrainVal []int
	Test     []int
}

// RepeatedStratifiedKFold partitions rows into nSplits folds preserving the
// relative frequency of every stratum code, independently nRepeats times.
// It returns nSplits*nRepeats folds, repetition-major: fold f of repeat r is
// element r*nSplits+f, with that fold held out as Test and the remaining
// folds concatenated into TrainVal.
//
// codes[i] is the dense stratum code of rows[i] (see StratifyCodes). Every
// stratum must contain at least nSplits rows; otherwise some fold would miss
// the stratum entirely and the function fails with ErrConfig.
func RepeatedStratifiedKFold(rows, codes []int, nSplits, nRepeats int, rng *rand.Rand) ([]Fold, error) {
	if len(rows) != len(codes) {
		return nil, fmt.Errorf("%w: %d rows but %d stratum codes", ErrInvariant, len(rows), len(codes))
	}
	if nSplits < 2 {
		return nil, fmt.Errorf("%w: n_splits must be at least 2, got %d", ErrConfig, nSplits)
	}
	if nRepeats < 1 {
		return nil, fmt.Errorf("%w: n_repeats must be at least 1, got %d", ErrConfig, nRepeats)
	}

	// Bucket row positions by stratum code. Codes are dense, so the bucket
	// slice index is the code itself.
	nStrata := 0
	for _, c := range codes {
		if c+1 > nStrata {
			nStrata = c + 1
		}
	}
	buckets := make([][]int, nStrata)
	for i, c := range codes {
		buckets[c] = append(buckets[c], rows[i])
	}
	for c, b := range buckets {
		if len(b) < nSplits {
			return nil, fmt.Errorf("%w: stratum %d has %d samples, need at least n_splits=%d",
				ErrConfig, c, len(b), nSplits)
		}
	}

	folds := make([]Fold, 0, nSplits*nRepeats)
	for r := 0; r < nRepeats; r++ {
		perFold := make([][]int, nSplits)
		for _, bucket := range buckets {
			shuffled := append([]int(nil), bucket...)
			rng.Shuffle(len(shuffled), func(i, j int) {
				shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
			})

			// Distribute the stratum across folds: the first len%nSplits
			// folds take one extra row.
			base, rem := len(shuffled)/nSplits, len(shuffled)%nSplits
			pos := 0
			for f := 0; f < nSplits; f++ {
				take := base
				if f < rem {
					take++
				}
				perFold[f] = append(perFold[f], shuffled[pos:pos+take]...)
				pos += take
			}
		}

		for f := 0; f < nSplits; f++ {
			fold := Fold{Test: perFold[f]}
			for g := 0; g < nSplits; g++ {
				if g != f {
					fold.TrainVal = append(fold.TrainVal, perFold[g]...)
				}
			}
			folds = append(folds, fold)
		}
	}
	return folds, nil
}
