package split

import "github.com/tracesplit/tracesplit/split/labels"

// stratum is a stratification key: class alone, or class combined with
// protocol for the monitored k-fold.
type stratum struct {
	class    int
	protocol string
}

// stratumEncoder maps strata to dense integer codes, assigned in
// first-appearance order. The mapping is an explicit bijection so that code
// assignment is deterministic across runs and reimplementations, instead of
// depending on incidental hash or category ordering.
type stratumEncoder struct {
	codes map[stratum]int
	order []stratum
}

func newStratumEncoder() *stratumEncoder {
	return &stratumEncoder{codes: make(map[stratum]int)}
}

// code returns the dense code for s, assigning the next code on first sight.
func (e *stratumEncoder) code(s stratum) int {
	if c, ok := e.codes[s]; ok {
		return c
	}
	c := len(e.order)
	e.codes[s] = c
	e.order = append(e.order, s)
	return c
}

// len returns the number of distinct strata seen so far.
func (e *stratumEncoder) len() int {
	return len(e.order)
}

// stratumOf returns the stratum assigned to a dense code.
func (e *stratumEncoder) stratumOf(code int) stratum {
	return e.order[code]
}

// StratifyCodes returns one dense stratum code per row. When byProtocol is
// true the stratum is the (class, protocol) pair, otherwise class alone.
// Codes are dense in [0, n) where n is the number of distinct strata among
// the given rows.
func StratifyCodes(tbl *labels.Table, rows []int, byProtocol bool) []int {
	codes, _ := stratifyCodes(tbl, rows, byProtocol)
	return codes
}

func stratifyCodes(tbl *labels.Table, rows []int, byProtocol bool) ([]int, *stratumEncoder) {
	enc := newStratumEncoder()
	codes := make([]int, len(rows))
	for i, row := range rows {
		s := stratum{class: tbl.Class[row]}
		if byProtocol {
			s.protocol = tbl.Protocol[row]
		}
		codes[i] = enc.code(s)
	}
	return codes, enc
}
