package split

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/tracesplit/tracesplit/split/labels"
)

// SelectTraces filters the monitored rows of tbl down to a balanced
// experiment subset: every retained class contributes exactly nTraces rows,
// evenly divided across protocols, with at least
// ceil(nTraces/nRegions/nProtocols) rows sampled from each collection
// region. Classes that cannot produce the full count for every protocol are
// dropped. A positive nClasses additionally downsamples the surviving class
// set, failing with ErrConfig when fewer classes remain than requested;
// nClasses <= 0 keeps every surviving class.
//
// The returned row indices are sorted ascending.
func SelectTraces(tbl *labels.Table, nTraces, nClasses int, rng *rand.Rand) ([]int, error) {
	if nTraces < 1 {
		return nil, fmt.Errorf("%w: n_traces must be positive, got %d", ErrConfig, nTraces)
	}

	monitored := tbl.Monitored()
	if len(monitored) == 0 {
		return nil, fmt.Errorf("%w: no monitored samples in the label table", ErrConfig)
	}

	protocols := tbl.Protocols()
	if nTraces%len(protocols) != 0 {
		return nil, fmt.Errorf("%w: n_traces=%d is not divisible by the %d protocols",
			ErrConfig, nTraces, len(protocols))
	}
	perProtocol := nTraces / len(protocols)
	perRegion := int(math.Ceil(float64(nTraces) / float64(len(tbl.Regions())) / float64(len(protocols))))

	// Bucket monitored rows by (protocol, class), preserving table order.
	type bucketKey struct {
		protocol string
		class    int
	}
	buckets := make(map[bucketKey][]int)
	var order []bucketKey
	for _, r := range monitored {
		k := bucketKey{protocol: tbl.Protocol[r], class: tbl.Class[r]}
		if _, ok := buckets[k]; !ok {
			order = append(order, k)
		}
		buckets[k] = append(buckets[k], r)
	}
	// Map iteration order is random; fix the RNG consumption order instead.
	sort.Slice(order, func(i, j int) bool {
		if order[i].protocol != order[j].protocol {
			return order[i].protocol < order[j].protocol
		}
		return order[i].class < order[j].class
	})

	selected := make(map[int][]int) // class -> rows kept across protocols
	for _, k := range order {
		rows := sampleByRegion(tbl, buckets[k], perProtocol, perRegion, rng)
		if rows == nil {
			continue // bucket cannot fill its quota
		}
		selected[k.class] = append(selected[k.class], rows...)
	}

	// Keep only classes that produced the full count for every protocol.
	var valid []int
	for class, rows := range selected {
		if len(rows) == nTraces {
			valid = append(valid, class)
		}
	}
	sort.Ints(valid)

	if nClasses > 0 {
		if len(valid) < nClasses {
			return nil, fmt.Errorf("%w: only %d of the requested %d classes available after filtering to classes with %d traces",
				ErrConfig, len(valid), nClasses, nTraces)
		}
		rng.Shuffle(len(valid), func(i, j int) {
			valid[i], valid[j] = valid[j], valid[i]
		})
		valid = valid[:nClasses]
	}

	var result []int
	for _, class := range valid {
		result = append(result, selected[class]...)
	}
	sort.Ints(result)
	return result, nil
}

// sampleByRegion samples total rows from one (protocol, class) bucket with a
// per-region minimum: every region holding at least perRegion rows
// contributes a random perRegion of them, and the union is downsampled to
// total. Returns nil when the union falls short.
func sampleByRegion(tbl *labels.Table, rows []int, total, perRegion int, rng *rand.Rand) []int {
	byRegion := make(map[string][]int)
	var regions []string
	for _, r := range rows {
		reg := tbl.Region[r]
		if _, ok := byRegion[reg]; !ok {
			regions = append(regions, reg)
		}
		byRegion[reg] = append(byRegion[reg], r)
	}
	sort.Strings(regions)

	var pool []int
	for _, reg := range regions {
		candidates := byRegion[reg]
		if len(candidates) < perRegion {
			continue
		}
		shuffled := append([]int(nil), candidates...)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		pool = append(pool, shuffled[:perRegion]...)
	}

	if len(pool) < total {
		return nil
	}
	rng.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
	return pool[:total]
}
