package tree

import (
	"errors"
	"fmt"
	"strings"

	"github.com/benz9527/treex/lib/infra"
)

var (
	ErrTreeEmpty   = errors.New("[tree] empty element to remove")
	ErrKeyNotFound = errors.New("[tree] key not found")
)

const defaultStackSize = 64

type treeKind string

const (
	binaryTreeKind treeKind = "bst"
	rbTreeKind     treeKind = "rbtree"
)

var _ Tree[int] = (*binaryTree[int])(nil)

// binaryTree is the plain (unbalanced) binary search tree. The balancing
// trees are layered on top of its structural primitives.
type binaryTree[K infra.OrderedKey] struct {
	root      *Node[K]
	sentinel  *Node[K]
	count     int64
	statsName string
	stats     *treeStats
	nodeFmt   func(node *Node[K]) string
}

func (tree *binaryTree[K]) Len() int64 {
	return tree.count
}

func (tree *binaryTree[K]) Root() *Node[K] {
	return tree.root
}

func (tree *binaryTree[K]) Nil() *Node[K] {
	return tree.sentinel
}

func (tree *binaryTree[K]) NewNode(key K) *Node[K] {
	return &Node[K]{
		key:    key,
		color:  Black,
		parent: tree.sentinel,
		left:   tree.sentinel,
		right:  tree.sentinel,
	}
}

func (tree *binaryTree[K]) Find(key K) *Node[K] {
	return tree.root.Find(key)
}

func (tree *binaryTree[K]) Min() *Node[K] {
	return tree.root.Min()
}

func (tree *binaryTree[K]) Max() *Node[K] {
	return tree.root.Max()
}

func (tree *binaryTree[K]) Height() int {
	return tree.root.Height()
}

// Insert descends from the root, the last real node visited becomes
// the parent. Equal keys go right, so duplicates keep insertion order.
// The node's children are expected to be the sentinel already.
func (tree *binaryTree[K]) Insert(node *Node[K]) {
	x, y := tree.root, tree.sentinel
	for !x.IsNil() {
		y = x
		if node.key < x.key {
			x = x.left
		} else {
			x = x.right
		}
	}

	node.parent = y
	switch {
	case y.IsNil():
		tree.root = node
	case node.key < y.key:
		y.left = node
	default:
		y.right = node
	}
	tree.count++
	tree.stats.recordInsert()
}

func (tree *binaryTree[K]) InsertKey(key K) *Node[K] {
	node := tree.NewNode(key)
	tree.Insert(node)
	return node
}

func (tree *binaryTree[K]) Remove(node *Node[K]) {
	tree.splice(node)
	tree.detach(node)
}

func (tree *binaryTree[K]) Delete(key K) (*Node[K], error) {
	return tree.deleteKey(key, tree.Remove)
}

/*
splice unlinks z from the tree structure.

s1: Z has no left child, the right child R (maybe nil) takes Z's place.

	  |           |
	  Z    ==>    R
	   \
	    R

s2: Z has no right child, the left child L takes Z's place.

s3: Z has both children. Z's succ Y has no left child.
Y is moved out of its position (its right child X takes its place),
then Y takes Z's place and adopts Z's children.

	    |                    |
	    Z                    Y
	   / \                  / \
	  L   R      ==>       L   R
	     /                    /
	    Y                    X
	     \
	      X

moved is the node that left its original position (Z or Y).
fix is the node occupying the vacated slot (maybe the sentinel)
and fixParent is its parent after the splice.
*/
func (tree *binaryTree[K]) splice(z *Node[K]) (moved, fix, fixParent *Node[K]) {
	switch {
	case /* s1 */ z.left.IsNil():
		moved, fix, fixParent = z, z.right, z.parent
		z.transplant(tree, z.right)
	case /* s2 */ z.right.IsNil():
		moved, fix, fixParent = z, z.left, z.parent
		z.transplant(tree, z.left)
	default: /* s3 */
		y := z.Successor()
		moved, fix = y, y.right
		if y.parent == z {
			fixParent = y
		} else {
			fixParent = y.parent
			y.transplant(tree, y.right)
			y.right = z.right
			y.right.parent = y
		}
		z.transplant(tree, y)
		y.left = z.left
		y.left.parent = y
	}
	return moved, fix, fixParent
}

// detach clears the removed node's links so it does not reach into the
// live tree anymore.
func (tree *binaryTree[K]) detach(node *Node[K]) {
	node.parent, node.left, node.right = nil, nil, nil
	tree.count--
	tree.stats.recordRemove()
}

func (tree *binaryTree[K]) deleteKey(key K, remove func(node *Node[K])) (*Node[K], error) {
	if tree.count <= 0 || tree.root.IsNil() {
		return nil, infra.WrapErrorStackWithMessage(ErrTreeEmpty, fmt.Sprintf("delete key %v", key))
	}
	node := tree.Find(key)
	if node.IsNil() {
		return nil, infra.WrapErrorStackWithMessage(ErrKeyNotFound, fmt.Sprintf("delete key %v", key))
	}
	remove(node)
	return node, nil
}

/*
		 |                         |
		 X                         Y
		/ \     leftRotate(X)     / \
	   L   Y    ============>    X   Yr
		  / \                   / \
		Yl   Yr                L   Yl
*/
func (tree *binaryTree[K]) leftRotate(x *Node[K]) {
	y := x.right
	if x.IsNil() || y.IsNil() {
		// impossible run to here
		panic( /* debug assertion */ "[tree] left rotate node x is nil or x.right is nil")
	}

	x.right = y.left
	if !y.left.IsNil() {
		y.left.parent = x
	}
	x.transplant(tree, y)
	y.left = x
	x.parent = y
	tree.stats.recordRotate(Left)
}

/*
		   |                         |
		   Y                         X
		  / \     rightRotate(Y)    / \
		 X   Yr   ============>    L   Y
		/ \                           / \
	   L   Xr                       Xr   Yr
*/
func (tree *binaryTree[K]) rightRotate(y *Node[K]) {
	x := y.left
	if y.IsNil() || x.IsNil() {
		// impossible run to here
		panic( /* debug assertion */ "[tree] right rotate node y is nil or y.left is nil")
	}

	y.left = x.right
	if !x.right.IsNil() {
		x.right.parent = y
	}
	y.transplant(tree, x)
	x.right = y
	y.parent = x
	tree.stats.recordRotate(Right)
}

// Inorder traversal to implement the DFS.
func (tree *binaryTree[K]) Foreach(action func(idx int64, node *Node[K]) bool) {
	stack := make([]*Node[K], 0, defaultStackSize)
	defer func() {
		clear(stack)
	}()

	idx := int64(0)
	for aux := tree.root; !aux.IsNil() || len(stack) > 0; {
		for ; !aux.IsNil(); aux = aux.left {
			stack = append(stack, aux)
		}
		aux = stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !action(idx, aux) {
			return
		}
		idx++
		aux = aux.right
	}
}

func (tree *binaryTree[K]) Release() {
	if tree.root.IsNil() {
		return
	}

	stack := make([]*Node[K], 0, defaultStackSize)
	defer func() {
		clear(stack)
	}()

	released := int64(0)
	for stack = append(stack, tree.root); len(stack) > 0; {
		aux := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !aux.left.IsNil() {
			stack = append(stack, aux.left)
		}
		if !aux.right.IsNil() {
			stack = append(stack, aux.right)
		}
		aux.parent, aux.left, aux.right = nil, nil, nil
		released++
	}
	tree.root = tree.sentinel
	tree.count = 0
	tree.stats.recordRelease(released)
}

func (tree *binaryTree[K]) String() string {
	builder := &strings.Builder{}
	_ = tree.Fprint(builder)
	return builder.String()
}

type TreeOption[K infra.OrderedKey] func(*binaryTree[K])

// WithTreeStats enables the otel metrics of the tree.
// The meter is named by TreeStatsName and the given name.
func WithTreeStats[K infra.OrderedKey](name string) TreeOption[K] {
	return func(tree *binaryTree[K]) {
		tree.statsName = name
	}
}

func newBinaryTree[K infra.OrderedKey](kind treeKind, opts ...TreeOption[K]) *binaryTree[K] {
	sentinel := &Node[K]{
		color: Black,
		isNil: true,
	}
	tree := &binaryTree[K]{
		root:     sentinel,
		sentinel: sentinel,
		nodeFmt: func(node *Node[K]) string {
			return fmt.Sprintf("%v", node.key)
		},
	}

	for _, o := range opts {
		o(tree)
	}
	if tree.statsName != "" {
		tree.stats = newTreeStats(tree.statsName, kind)
	}
	return tree
}

// NewBinaryTree creates a plain binary search tree without balancing.
func NewBinaryTree[K infra.OrderedKey](opts ...TreeOption[K]) Tree[K] {
	return newBinaryTree[K](binaryTreeKind, opts...)
}
