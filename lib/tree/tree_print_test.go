package tree

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRBTreeFprint(t *testing.T) {
	tree := NewRBTree[int]()
	for _, key := range []int{10, 20, 30} {
		tree.InsertKey(key)
	}
	buf := &bytes.Buffer{}
	require.NoError(t, tree.Fprint(buf))
	require.Equal(t, "└── 20(Black)\n"+
		"    ├── 10(Red)\n"+
		"    └── 30(Red)\n", buf.String())
	require.Equal(t, buf.String(), tree.String())
}

func TestBinaryTreeFprint(t *testing.T) {
	testcases := []struct {
		name     string
		keys     []int
		expected string
	}{
		{
			name:     "empty",
			expected: "",
		},
		{
			name: "right chain",
			keys: []int{1, 2, 3},
			expected: "└── 1\n" +
				"    └── 2\n" +
				"        └── 3\n",
		},
		{
			name: "nested",
			keys: testShapeKeys,
			expected: "└── 50\n" +
				"    ├── 30\n" +
				"    │   ├── 20\n" +
				"    │   └── 40\n" +
				"    │       └── 35\n" +
				"    └── 70\n" +
				"        ├── 60\n" +
				"        └── 80\n",
		},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			tree := NewBinaryTree[int]()
			for _, key := range tc.keys {
				tree.InsertKey(key)
			}
			buf := &bytes.Buffer{}
			require.NoError(tt, tree.Fprint(buf))
			require.Equal(tt, tc.expected, buf.String())
		})
	}
}

var errTestSink = errors.New("sink closed")

type failingWriter struct {
	remains int
}

func (w *failingWriter) Write(p []byte) (int, error) {
	if w.remains <= 0 {
		return 0, errTestSink
	}
	w.remains--
	return len(p), nil
}

func TestFprint_WriterError(t *testing.T) {
	tree := NewBinaryTree[int]()
	for _, key := range testShapeKeys {
		tree.InsertKey(key)
	}
	for i := 0; i < len(testShapeKeys); i++ {
		err := tree.Fprint(&failingWriter{remains: i})
		require.ErrorIs(t, err, errTestSink)
	}
	require.NoError(t, tree.Fprint(&failingWriter{remains: len(testShapeKeys)}))
}
