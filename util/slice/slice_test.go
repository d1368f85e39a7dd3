package slice

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFilter(t *testing.T) {
	tests := []struct {
		name     string
		vals     []string
		expected []string
	}{
		{"empty", nil, []string{}},
		{"none match", []string{"stderr"}, []string{}},
		{"some match", []string{"stderr", "stdout", "stderr", "file.log"}, []string{"stdout", "file.log"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Filter(tt.vals, func(v string) bool { return v != "stderr" })
			require.Equal(t, tt.expected, res)
		})
	}
}

func TestUnique(t *testing.T) {
	require.Equal(t, []string{}, Unique[string](nil))
	require.Equal(t, []string{"b", "a", "c"}, Unique([]string{"b", "a", "b", "c", "a"}))
	require.Equal(t, []int{1, 2}, Unique([]int{1, 1, 2}))
}

func TestFindPos(t *testing.T) {
	require.Equal(t, 1, FindPos([]string{"a", "b"}, "b"))
	require.Equal(t, -1, FindPos([]string{"a", "b"}, "c"))
}

func TestDiscardFromSlice(t *testing.T) {
	res := DiscardFromSlice([]int{1, 2, 3, 4, 5}, func(v int) bool { return v%2 == 0 })
	require.Equal(t, []int{1, 3, 5}, res)
}
