package tree

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"

	"github.com/benz9527/treex/lib/infra"
)

var (
	ErrRedViolation       = errors.New("[rbtree] red violation")
	ErrBlackViolation     = errors.New("[rbtree] black violation")
	ErrRootColorViolation = errors.New("[rbtree] root color violation")
	ErrOrderViolation     = errors.New("[tree] order violation")
	ErrLinkViolation      = errors.New("[tree] link violation")
)

// rbtree rule validation utilities.

// References:
// https://github1s.com/minghu6/rust-minghu6/blob/master/coll_st/src/bst/rb.rs

// Inorder traversal to validate that a red node has no red child.
func RedViolationValidate[K infra.OrderedKey](tree Tree[K]) error {
	var err error
	tree.Foreach(func(idx int64, node *Node[K]) bool {
		if node.isRed() && (node.left.isRed() || node.right.isRed()) {
			err = infra.WrapErrorStackWithMessage(ErrRedViolation,
				fmt.Sprintf("red node %v has a red child", node.key),
			)
			return false
		}
		return true
	})
	return err
}

func RootColorValidate[K infra.OrderedKey](tree Tree[K]) error {
	if root := tree.Root(); !root.IsNil() && root.color != Black {
		return infra.WrapErrorStackWithMessage(ErrRootColorViolation,
			fmt.Sprintf("root %v is %s", root.key, root.color),
		)
	}
	if tree.Nil().color != Black {
		return infra.WrapErrorStackWithMessage(ErrRootColorViolation, "sentinel is not black")
	}
	return nil
}

// BFS traversal to load all nodes owning at least one sentinel child.
func bfsLeaves[K infra.OrderedKey](tree Tree[K]) []*Node[K] {
	if tree.Root().IsNil() {
		return nil
	}

	leaves := make([]*Node[K], 0, tree.Len()>>1+1)
	queue := make([]*Node[K], 0, tree.Len())
	defer func() {
		clear(queue)
	}()
	queue = append(queue, tree.Root())

	for i := 0; i < len(queue); i++ {
		aux := queue[i]
		l, r := aux.left, aux.right
		if /* nil leaves, keep one */ l.IsNil() || r.IsNil() {
			leaves = append(leaves, aux)
		}
		if !l.IsNil() {
			queue = append(queue, l)
		}
		if !r.IsNil() {
			queue = append(queue, r)
		}
	}
	return leaves
}

func blackDepth[K infra.OrderedKey](target *Node[K]) int {
	depth := 0
	for aux := target; !aux.IsNil(); aux = aux.parent {
		if aux.isBlack() {
			depth++
		}
	}
	return depth
}

/*
<X> is a RED node.
[X] is a BLACK node (or NIL).

	        [13]
	        /  \
	     <8>    [15]
	     / \    /  \
	  [6] [11] [14] [17]
	  /              /
	<1>            [16]

Each node holding a NIL child has the same black depth to the root,
so every root to NIL path goes through the same number of black nodes.
*/
func BlackViolationValidate[K infra.OrderedKey](tree Tree[K]) error {
	leaves := bfsLeaves[K](tree)
	if leaves == nil {
		return nil
	}

	depth := blackDepth[K](leaves[0])
	for i := 1; i < len(leaves); i++ {
		if d := blackDepth[K](leaves[i]); d != depth {
			return infra.WrapErrorStackWithMessage(ErrBlackViolation,
				fmt.Sprintf("node %v black depth %d, node %v black depth %d", leaves[0].key, depth, leaves[i].key, d),
			)
		}
	}
	return nil
}

// OrderViolationValidate checks the inorder keys are non-decreasing.
func OrderViolationValidate[K infra.OrderedKey](tree Tree[K]) error {
	var (
		err  error
		prev K
	)
	tree.Foreach(func(idx int64, node *Node[K]) bool {
		if idx > 0 && node.key < prev {
			err = infra.WrapErrorStackWithMessage(ErrOrderViolation,
				fmt.Sprintf("key %v at %d is less than the previous key %v", node.key, idx, prev),
			)
			return false
		}
		prev = node.key
		return true
	})
	return err
}

// LinkViolationValidate checks the parent back-references, the shared
// sentinel and the node count.
func LinkViolationValidate[K infra.OrderedKey](tree Tree[K]) error {
	sentinel := tree.Nil()
	if root := tree.Root(); root != sentinel && root.parent != sentinel {
		return infra.WrapErrorStackWithMessage(ErrLinkViolation,
			fmt.Sprintf("root %v parent is not the sentinel", root.key),
		)
	}

	var (
		err   error
		count int64
	)
	checkChild := func(node, child *Node[K]) error {
		if child.IsNil() {
			if child != sentinel {
				return infra.WrapErrorStackWithMessage(ErrLinkViolation,
					fmt.Sprintf("node %v has a foreign nil child", node.key),
				)
			}
			return nil
		}
		if child.parent != node {
			return infra.WrapErrorStackWithMessage(ErrLinkViolation,
				fmt.Sprintf("child %v parent is not %v", child.key, node.key),
			)
		}
		return nil
	}
	tree.Foreach(func(idx int64, node *Node[K]) bool {
		count++
		err = multierr.Combine(checkChild(node, node.left), checkChild(node, node.right))
		return err == nil
	})
	if err != nil {
		return err
	}
	if count != tree.Len() {
		return infra.WrapErrorStackWithMessage(ErrLinkViolation,
			fmt.Sprintf("counted %d nodes, but the tree len is %d", count, tree.Len()),
		)
	}
	return nil
}

// ValidateBinaryTree validates the rules shared by all binary search trees.
func ValidateBinaryTree[K infra.OrderedKey](tree Tree[K]) error {
	return multierr.Combine(
		OrderViolationValidate[K](tree),
		LinkViolationValidate[K](tree),
	)
}

// ValidateRBTree validates all rbtree properties.
func ValidateRBTree[K infra.OrderedKey](tree Tree[K]) error {
	return multierr.Combine(
		RootColorValidate[K](tree),
		RedViolationValidate[K](tree),
		BlackViolationValidate[K](tree),
		OrderViolationValidate[K](tree),
		LinkViolationValidate[K](tree),
	)
}
