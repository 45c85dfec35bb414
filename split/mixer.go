package split

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/tracesplit/tracesplit/split/labels"
)

// MixProtocols subsamples a monitored test candidate to the target QUIC
// mixture fraction while preserving per-class balance. Every (class,
// protocol) bucket keeps a uniformly-random subset without replacement:
// round(quicFrac*n) rows for QUIC buckets, round((1-quicFrac)*n) for TCP
// buckets. The boundaries are exact — quicFrac 0 drops QUIC buckets whole
// and keeps TCP buckets untouched, quicFrac 1 is the mirror image — and
// consume no randomness. The retained rows are reshuffled before being
// returned so their order carries no class or protocol signal.
//
// A single-sample bucket is kept iff its effective fraction is >= 0.5; no
// minimum-count floor is imposed beyond the k-fold preconditions upstream.
func MixProtocols(tbl *labels.Table, rows []int, quicFrac float64, rng *rand.Rand) ([]int, error) {
	if quicFrac < 0 || quicFrac > 1 {
		return nil, fmt.Errorf("%w: quic_frac must be in [0, 1], got %v", ErrConfig, quicFrac)
	}

	// Bucket rows by (class, protocol) in first-appearance order so that RNG
	// consumption order is fixed.
	codes, enc := stratifyCodes(tbl, rows, true)
	buckets := make([][]int, enc.len())
	for i, c := range codes {
		buckets[c] = append(buckets[c], rows[i])
	}

	retained := make([]int, 0, len(rows))
	for c, bucket := range buckets {
		frac := quicFrac
		if enc.stratumOf(c).protocol == labels.ProtocolTCP {
			frac = 1 - quicFrac
		}
		keep := int(math.Round(frac * float64(len(bucket))))
		switch {
		case keep <= 0:
			// dropped whole
		case keep >= len(bucket):
			retained = append(retained, bucket...)
		default:
			shuffled := append([]int(nil), bucket...)
			rng.Shuffle(len(shuffled), func(i, j int) {
				shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
			})
			retained = append(retained, shuffled[:keep]...)
		}
	}

	rng.Shuffle(len(retained), func(i, j int) {
		retained[i], retained[j] = retained[j], retained[i]
	})
	return retained, nil
}
