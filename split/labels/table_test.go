package labels

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_MonitoredUnmonitored(t *testing.T) {
	tbl := &Table{
		Class:    []int{0, 0, -1, 1, -1},
		Group:    []int{0, 0, -1, 0, -2},
		Protocol: []string{"tcp", "quic", "tcp", "tcp", "quic"},
		Region:   []string{"east", "east", "west", "west", "east"},
	}
	require.NoError(t, tbl.Validate())

	assert.Equal(t, []int{0, 1, 3}, tbl.Monitored())
	assert.Equal(t, []int{2, 4}, tbl.Unmonitored())
	assert.Equal(t, []int{0, 1}, tbl.Classes())
	assert.Equal(t, []string{"tcp", "quic"}, tbl.Protocols())
	assert.Equal(t, []string{"east", "west"}, tbl.Regions())
	assert.True(t, tbl.IsTCP(0))
	assert.False(t, tbl.IsTCP(1))
}

func TestTable_Validate(t *testing.T) {
	tests := []struct {
		name string
		tbl  Table
	}{
		{"ragged columns", Table{
			Class:    []int{0, 1},
			Group:    []int{0},
			Protocol: []string{"tcp", "tcp"},
			Region:   []string{"east", "east"},
		}},
		{"empty protocol", Table{
			Class:    []int{0},
			Group:    []int{0},
			Protocol: []string{""},
			Region:   []string{"east"},
		}},
		{"unmonitored with non-negative group", Table{
			Class:    []int{-1},
			Group:    []int{0},
			Protocol: []string{"tcp"},
			Region:   []string{"east"},
		}},
		{"monitored with group", Table{
			Class:    []int{3},
			Group:    []int{-1},
			Protocol: []string{"tcp"},
			Region:   []string{"east"},
		}},
		{"class below -1", Table{
			Class:    []int{-2},
			Group:    []int{-1},
			Protocol: []string{"tcp"},
			Region:   []string{"east"},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.tbl.Validate())
		})
	}
}
