package tree

import "github.com/benz9527/treex/lib/infra"

// Node is an entry of the tree. The parent link is a back-reference
// for navigation and relinking only.
//
// A missing child, or the root's missing parent, is the sentinel of
// the tree owning the node. The sentinel is black and holds no key.
type Node[K infra.OrderedKey] struct {
	parent *Node[K]
	left   *Node[K]
	right  *Node[K]
	key    K
	color  RBColor
	isNil  bool
}

func (node *Node[K]) Key() K {
	return node.key
}

// SetKey replaces the key in place. The caller keeps the ordering of
// the tree, the node is not repositioned.
func (node *Node[K]) SetKey(key K) {
	node.key = key
}

func (node *Node[K]) Color() RBColor {
	return node.color
}

func (node *Node[K]) Left() *Node[K] {
	return node.left
}

func (node *Node[K]) Right() *Node[K] {
	return node.right
}

func (node *Node[K]) Parent() *Node[K] {
	return node.parent
}

// IsNil reports whether the node is a sentinel. A detached link (Go nil)
// is treated the same way.
func (node *Node[K]) IsNil() bool {
	return node == nil || node.isNil
}

func (node *Node[K]) isRed() bool {
	return !node.IsNil() && node.color == Red
}

func (node *Node[K]) isBlack() bool {
	return node.IsNil() || node.color == Black
}

func (node *Node[K]) IsLeftChild() bool {
	return !node.IsNil() && !node.parent.IsNil() && node == node.parent.left
}

func (node *Node[K]) IsRightChild() bool {
	return !node.IsNil() && !node.parent.IsNil() && node == node.parent.right
}

func (node *Node[K]) Direction() RBDirection {
	if node.IsNil() {
		// impossible run to here
		panic( /* debug assertion */ "[tree] nil leaf node without direction")
	}

	if node.parent.IsNil() {
		return Root
	}
	if node == node.parent.left {
		return Left
	}
	return Right
}

// Min returns the leftmost node of the subtree rooted at node.
func (node *Node[K]) Min() *Node[K] {
	aux := node
	for ; !aux.left.IsNil(); aux = aux.left {
	}
	return aux
}

// Max returns the rightmost node of the subtree rooted at node.
func (node *Node[K]) Max() *Node[K] {
	aux := node
	for ; !aux.right.IsNil(); aux = aux.right {
	}
	return aux
}

// Predecessor is the previous node in sorted order, or the sentinel.
func (node *Node[K]) Predecessor() *Node[K] {
	if !node.left.IsNil() {
		return node.left.Max()
	}

	aux := node
	// Backtrack until aux is a right child, its parent is the pred.
	for aux.IsLeftChild() {
		aux = aux.parent
	}
	return aux.parent
}

// Successor is the next node in sorted order, or the sentinel.
func (node *Node[K]) Successor() *Node[K] {
	if !node.right.IsNil() {
		return node.right.Min()
	}

	aux := node
	// Backtrack until aux is a left child, its parent is the succ.
	for aux.IsRightChild() {
		aux = aux.parent
	}
	return aux.parent
}

// Height is 0 for the sentinel. It walks the whole subtree.
func (node *Node[K]) Height() int {
	if node.IsNil() {
		return 0
	}
	return max(node.left.Height(), node.right.Height()) + 1
}

// Find descends from node and returns the first node holding an equal
// key, or the sentinel on miss.
func (node *Node[K]) Find(key K) *Node[K] {
	aux := node
	for !aux.IsNil() {
		if infra.KeyEqual(key, aux.key) {
			break
		} else if key < aux.key {
			aux = aux.left
		} else {
			aux = aux.right
		}
	}
	return aux
}

// transplant replaces the edge from node's parent (or the root) by
// replacement. The node's own links are untouched.
func (node *Node[K]) transplant(tree *binaryTree[K], replacement *Node[K]) {
	switch {
	case node.parent.IsNil():
		tree.root = replacement
	case node == node.parent.left:
		node.parent.left = replacement
	default:
		node.parent.right = replacement
	}

	if !replacement.IsNil() {
		replacement.parent = node.parent
	}
}
