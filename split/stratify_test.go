package split

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tracesplit/tracesplit/split/labels"
)

func TestStratifyCodes_PairBijection(t *testing.T) {
	tbl := &labels.Table{
		Class:    []int{0, 0, 1, 1, 0},
		Group:    []int{0, 0, 0, 0, 0},
		Protocol: []string{"tcp", "quic", "tcp", "quic", "tcp"},
		Region:   []string{"east", "east", "east", "east", "east"},
	}
	rows := []int{0, 1, 2, 3, 4}

	codes := StratifyCodes(tbl, rows, true)

	// Codes are assigned in first-appearance order and repeated pairs reuse
	// their code.
	assert.Equal(t, []int{0, 1, 2, 3, 0}, codes)
}

func TestStratifyCodes_ClassOnly(t *testing.T) {
	tbl := &labels.Table{
		Class:    []int{2, 2, 5, 5},
		Group:    []int{0, 0, 0, 0},
		Protocol: []string{"tcp", "quic", "tcp", "quic"},
		Region:   []string{"east", "east", "east", "east"},
	}
	rows := []int{0, 1, 2, 3}

	codes := StratifyCodes(tbl, rows, false)

	// Protocol is ignored, so each class collapses to one code.
	assert.Equal(t, []int{0, 0, 1, 1}, codes)
}

func TestStratifyCodes_ManyDistinctPairsNoCollision(t *testing.T) {
	tbl := &labels.Table{}
	var rows []int
	for c := 0; c < 50; c++ {
		for _, p := range []string{"tcp", "quic", "h3-29"} {
			rows = append(rows, len(tbl.Class))
			tbl.Class = append(tbl.Class, c)
			tbl.Group = append(tbl.Group, 0)
			tbl.Protocol = append(tbl.Protocol, p)
			tbl.Region = append(tbl.Region, "east")
		}
	}

	codes := StratifyCodes(tbl, rows, true)

	seen := make(map[int]bool)
	for _, c := range codes {
		assert.False(t, seen[c], "code %d assigned to two distinct pairs", c)
		seen[c] = true
	}
	assert.Len(t, seen, 150)
}
