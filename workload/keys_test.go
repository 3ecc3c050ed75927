package workload

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseKeys(t *testing.T) {
	testcases := []struct {
		name     string
		input    string
		expected []int
		hasErr   bool
	}{
		{
			name:     "empty",
			input:    "",
			expected: []int{},
		},
		{
			name:     "mixed spaces",
			input:    "10 20\n30\t-5\n\n7 ",
			expected: []int{10, 20, 30, -5, 7},
		},
		{
			name:   "not a number",
			input:  "1 2 x3",
			hasErr: true,
		},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			keys, err := ParseKeys(strings.NewReader(tc.input))
			if tc.hasErr {
				require.ErrorIs(tt, err, ErrInvalidKey)
				return
			}
			require.NoError(tt, err)
			require.Equal(tt, tc.expected, keys)
		})
	}
}

func TestLoadKeys(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "keys.txt"), []byte("52 47 3 35 24\n"), 0o644))

	keys, err := LoadKeys(dir, "keys.txt")
	require.NoError(t, err)
	require.Equal(t, []int{52, 47, 3, 35, 24}, keys)

	_, err = LoadKeys(dir, "missing.txt")
	require.Error(t, err)

	// The file must stay beneath the dir.
	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0o755))
	_, err = LoadKeys(sub, "../keys.txt")
	require.Error(t, err)
}
