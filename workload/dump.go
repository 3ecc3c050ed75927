package workload

import (
	"fmt"
	"io"

	"github.com/benz9527/treex/lib/infra"
	"github.com/benz9527/treex/lib/tree"
)

// Dump inserts the keys into a new red-black tree, deletes the removes
// in order, then writes the structure. A remove which is not in the
// tree anymore fails the dump.
func Dump(w io.Writer, keys, removes []int, opts ...tree.TreeOption[int]) error {
	rbtree := tree.NewRBTree[int](opts...)
	for _, key := range keys {
		rbtree.InsertKey(key)
	}
	for _, key := range removes {
		if _, err := rbtree.Delete(key); err != nil {
			return err
		}
	}
	if err := tree.ValidateRBTree(rbtree); err != nil {
		return err
	}
	if err := rbtree.Fprint(w); err != nil {
		return infra.WrapErrorStackWithMessage(err, fmt.Sprintf("dump %d nodes", rbtree.Len()))
	}
	return nil
}
