package tree

import (
	randv2 "math/rand/v2"
	"sort"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

type checkData struct {
	color RBColor
	key   uint64
}

func requireInorder(t *testing.T, tree Tree[uint64], expected []checkData) {
	require.Equal(t, int64(len(expected)), tree.Len())
	tree.Foreach(func(idx int64, node *Node[uint64]) bool {
		require.Equal(t, expected[idx].color, node.Color())
		require.Equal(t, expected[idx].key, node.Key())
		return true
	})
	require.NoError(t, ValidateRBTree(tree))
}

func inorderKeys[K int | uint64 | string](tree Tree[K]) []K {
	keys := make([]K, 0, tree.Len())
	tree.Foreach(func(idx int64, node *Node[K]) bool {
		keys = append(keys, node.Key())
		return true
	})
	return keys
}

func TestRBTreeExampleScenario(t *testing.T) {
	tree := NewRBTree[int]()
	for _, key := range []int{10, 20, 30} {
		tree.InsertKey(key)
		require.NoError(t, ValidateRBTree(tree))
	}

	root := tree.Root()
	require.Equal(t, 20, root.Key())
	require.Equal(t, Black, root.Color())
	require.Equal(t, 10, root.Left().Key())
	require.Equal(t, Red, root.Left().Color())
	require.Equal(t, 30, root.Right().Key())
	require.Equal(t, Red, root.Right().Color())

	require.True(t, tree.Find(25).IsNil())
	require.Equal(t, tree.Nil(), tree.Find(25))

	n30 := tree.Find(30)
	require.False(t, n30.IsNil())
	require.Equal(t, 20, n30.Predecessor().Key())
	require.True(t, n30.Successor().IsNil())
	require.True(t, tree.Find(10).Predecessor().IsNil())
	require.Equal(t, 2, tree.Height())
}

func TestRBTreeInsertAndRemove_Colors(t *testing.T) {
	tree := NewRBTree[uint64]()

	tree.InsertKey(52)
	requireInorder(t, tree, []checkData{{Black, 52}})

	tree.InsertKey(47)
	requireInorder(t, tree, []checkData{{Red, 47}, {Black, 52}})

	tree.InsertKey(3)
	requireInorder(t, tree, []checkData{{Red, 3}, {Black, 47}, {Red, 52}})

	tree.InsertKey(35)
	requireInorder(t, tree, []checkData{{Black, 3}, {Red, 35}, {Black, 47}, {Black, 52}})

	tree.InsertKey(24)
	requireInorder(t, tree, []checkData{{Red, 3}, {Black, 24}, {Red, 35}, {Black, 47}, {Black, 52}})

	// remove

	x, err := tree.Delete(24)
	require.NoError(t, err)
	require.Equal(t, uint64(24), x.Key())
	require.True(t, x.Left().IsNil())
	require.True(t, x.Right().IsNil())
	require.True(t, x.Parent().IsNil())
	requireInorder(t, tree, []checkData{{Red, 3}, {Black, 35}, {Black, 47}, {Black, 52}})

	x, err = tree.Delete(47)
	require.NoError(t, err)
	require.Equal(t, uint64(47), x.Key())
	requireInorder(t, tree, []checkData{{Black, 3}, {Black, 35}, {Black, 52}})
	require.Equal(t, uint64(35), tree.Root().Key())

	x, err = tree.Delete(52)
	require.NoError(t, err)
	require.Equal(t, uint64(52), x.Key())
	requireInorder(t, tree, []checkData{{Red, 3}, {Black, 35}})

	x, err = tree.Delete(3)
	require.NoError(t, err)
	require.Equal(t, uint64(3), x.Key())
	requireInorder(t, tree, []checkData{{Black, 35}})

	x, err = tree.Delete(35)
	require.NoError(t, err)
	require.Equal(t, uint64(35), x.Key())
	require.Equal(t, int64(0), tree.Len())
	require.Equal(t, tree.Nil(), tree.Root())
}

func TestRBTree_RemoveMin(t *testing.T) {
	tree := NewRBTree[uint64]()
	for _, key := range []uint64{52, 47, 3, 35, 24} {
		tree.InsertKey(key)
	}
	requireInorder(t, tree, []checkData{{Red, 3}, {Black, 24}, {Red, 35}, {Black, 47}, {Black, 52}})

	expected := [][]checkData{
		{{Black, 24}, {Red, 35}, {Black, 47}, {Black, 52}},
		{{Black, 35}, {Black, 47}, {Black, 52}},
		{{Black, 47}, {Red, 52}},
		{{Black, 52}},
		{},
	}
	for _, exp := range expected {
		_min := tree.Min()
		require.False(t, _min.IsNil())
		tree.Remove(_min)
		requireInorder(t, tree, exp)
	}
	require.True(t, tree.Min().IsNil())
	require.True(t, tree.Max().IsNil())
}

func TestRBTreeDelete_Errors(t *testing.T) {
	tree := NewRBTree[int]()
	_, err := tree.Delete(1)
	require.ErrorIs(t, err, ErrTreeEmpty)

	tree.InsertKey(1)
	_, err = tree.Delete(2)
	require.ErrorIs(t, err, ErrKeyNotFound)
	require.Equal(t, int64(1), tree.Len())
}

func rbtreeRandomInsertAndRemoveRunCore(t *testing.T, total int, removeRatio float64) {
	keys := lo.Uniq(lo.Times(total, func(int) int {
		return randv2.IntN(total * 10)
	}))
	tree := NewRBTree[int]()
	for i, key := range keys {
		tree.InsertKey(key)
		require.NoErrorf(t, ValidateRBTree(tree), "insert %d-th key %d", i, key)
	}

	sorted := append([]int(nil), keys...)
	sort.Ints(sorted)
	require.Equal(t, sorted, inorderKeys(tree))

	for _, key := range keys {
		node := tree.Find(key)
		require.False(t, node.IsNil())
		require.Equal(t, key, node.Key())
	}

	removes := lo.Shuffle(append([]int(nil), keys...))
	removes = removes[:int(float64(len(removes))*removeRatio)]
	for _, key := range removes {
		node := tree.Find(key)
		require.False(t, node.IsNil())
		tree.Remove(node)
		require.NoErrorf(t, ValidateRBTree(tree), "remove key %d", key)
		require.True(t, tree.Find(key).IsNil())
	}

	remains, _ := lo.Difference(keys, removes)
	sort.Ints(remains)
	require.Equal(t, len(remains), int(tree.Len()))
	if len(remains) > 0 {
		require.Equal(t, remains, inorderKeys(tree))
	}
}

func TestRBTreeRandomInsertAndRemove(t *testing.T) {
	testcases := []struct {
		name        string
		total       int
		removeRatio float64
	}{
		{
			name:        "small remove 20%",
			total:       64,
			removeRatio: 0.2,
		},
		{
			name:        "small remove all",
			total:       64,
			removeRatio: 1,
		},
		{
			name:        "remove 50% of 2000",
			total:       2000,
			removeRatio: 0.5,
		},
		{
			name:        "remove all of 2000",
			total:       2000,
			removeRatio: 1,
		},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			rbtreeRandomInsertAndRemoveRunCore(tt, tc.total, tc.removeRatio)
		})
	}
}

func TestRBTreeSequentialNumber(t *testing.T) {
	insertTotal := 1000
	tree := NewRBTree[int]()
	for i := 0; i < insertTotal; i++ {
		tree.InsertKey(i)
		require.NoError(t, ValidateRBTree(tree))
	}
	tree.Foreach(func(idx int64, node *Node[int]) bool {
		require.Equal(t, int(idx), node.Key())
		return true
	})
	// The height is bounded by 2*log2(n+1).
	require.LessOrEqual(t, tree.Height(), 20)

	for i := insertTotal - 1; i >= 0; i -= 2 {
		_, err := tree.Delete(i)
		require.NoError(t, err)
		require.NoError(t, ValidateRBTree(tree))
	}
	tree.Foreach(func(idx int64, node *Node[int]) bool {
		require.Equal(t, int(idx*2), node.Key())
		return true
	})
}

func TestRBTreeDuplicateKeys(t *testing.T) {
	tree := NewRBTree[int]()
	inserted := make([]*Node[int], 0, 64)
	for i := 0; i < 64; i++ {
		node := tree.NewNode(i % 4)
		tree.Insert(node)
		inserted = append(inserted, node)
		require.NoError(t, ValidateRBTree(tree))
	}

	// Equal keys keep the insertion order.
	expected := make([]*Node[int], 0, 64)
	for k := 0; k < 4; k++ {
		for i := k; i < 64; i += 4 {
			expected = append(expected, inserted[i])
		}
	}
	actual := make([]*Node[int], 0, 64)
	tree.Foreach(func(idx int64, node *Node[int]) bool {
		actual = append(actual, node)
		return true
	})
	require.Equal(t, expected, actual)

	for _, node := range inserted {
		tree.Remove(node)
		require.NoError(t, ValidateRBTree(tree))
	}
	require.Equal(t, int64(0), tree.Len())
	require.Equal(t, tree.Nil(), tree.Root())
}

func TestRBTreeStringKeys(t *testing.T) {
	tree := NewRBTree[string]()
	words := []string{"pear", "apple", "fig", "kiwi", "banana", "cherry", "date"}
	for _, w := range words {
		tree.InsertKey(w)
	}
	require.NoError(t, ValidateRBTree(tree))
	require.Equal(t, []string{"apple", "banana", "cherry", "date", "fig", "kiwi", "pear"}, inorderKeys(tree))
	require.Equal(t, "apple", tree.Min().Key())
	require.Equal(t, "pear", tree.Max().Key())
	require.Equal(t, "cherry", tree.Find("date").Predecessor().Key())
	require.Equal(t, "fig", tree.Find("date").Successor().Key())
}

func TestRBTreeRelease(t *testing.T) {
	tree := NewRBTree[uint64]()
	nodes := make([]*Node[uint64], 0, 1000)
	for i := uint64(0); i < 1000; i++ {
		nodes = append(nodes, tree.InsertKey(i))
	}
	tree.Release()
	require.Equal(t, int64(0), tree.Len())
	require.Equal(t, tree.Nil(), tree.Root())
	for _, node := range nodes {
		require.Nil(t, node.Parent())
		require.Nil(t, node.Left())
		require.Nil(t, node.Right())
	}

	// Reusable after release.
	tree.InsertKey(7)
	require.Equal(t, int64(1), tree.Len())
	require.NoError(t, ValidateRBTree(tree))
}

func BenchmarkRBTree_Random(b *testing.B) {
	b.StopTimer()
	tree := NewRBTree[int]()

	rngArr := make([]int, 0, b.N)
	for i := 0; i < b.N; i++ {
		rngArr = append(rngArr, randv2.Int())
	}

	b.StartTimer()
	for i := 0; i < b.N; i++ {
		tree.InsertKey(rngArr[i])
	}
}

func BenchmarkRBTree_Serial(b *testing.B) {
	tree := NewRBTree[int]()
	for i := 0; i < b.N; i++ {
		tree.InsertKey(i)
	}
}
