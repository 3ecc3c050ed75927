package workload

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/benz9527/treex/lib/tree"
)

func TestDump(t *testing.T) {
	testcases := []struct {
		name     string
		keys     []int
		removes  []int
		expected string
		err      error
	}{
		{
			name:     "empty",
			expected: "",
		},
		{
			name: "three keys",
			keys: []int{10, 20, 30},
			expected: "└── 20(Black)\n" +
				"    ├── 10(Red)\n" +
				"    └── 30(Red)\n",
		},
		{
			name:    "remove the root",
			keys:    []int{10, 20, 30},
			removes: []int{20},
			expected: "└── 30(Black)\n" +
				"    └── 10(Red)\n",
		},
		{
			name:    "remove all",
			keys:    []int{10, 20, 30},
			removes: []int{30, 10, 20},
		},
		{
			name:    "remove missing key",
			keys:    []int{10},
			removes: []int{11},
			err:     tree.ErrKeyNotFound,
		},
		{
			name:    "remove from empty",
			removes: []int{1},
			err:     tree.ErrTreeEmpty,
		},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			buf := &bytes.Buffer{}
			err := Dump(buf, tc.keys, tc.removes)
			if tc.err != nil {
				require.ErrorIs(tt, err, tc.err)
				return
			}
			require.NoError(tt, err)
			require.Equal(tt, tc.expected, buf.String())
		})
	}
}
