package tree

import (
	"io"

	"github.com/benz9527/treex/lib/infra"
)

// go install golang.org/x/tools/cmd/stringer@latest

//go:generate stringer -type=RBColor
type RBColor uint8

const (
	Black RBColor = iota
	Red
)

//go:generate stringer -type=RBDirection
type RBDirection int8

const (
	Left RBDirection = -1 + iota
	Root
	Right
)

// Tree is an intrusive binary search tree.
// The nodes are created by NewNode, then owned by the tree after Insert.
//
// Not found or absent results are the tree's sentinel node, compare
// them by node.IsNil() or against Nil() before reading the key.
//
// A tree is not thread safe. Exactly one operation may be in flight
// at a time, callers must synchronize shared trees by themselves.
type Tree[K infra.OrderedKey] interface {
	Len() int64
	Root() *Node[K]
	// Nil returns the sentinel of this tree.
	Nil() *Node[K]
	// NewNode creates a detached node whose children point to the sentinel.
	NewNode(key K) *Node[K]
	// Insert links the node into the tree. Equal keys are routed right.
	Insert(node *Node[K])
	InsertKey(key K) *Node[K]
	// Remove splices the node out and detaches it. The node must belong
	// to this tree.
	Remove(node *Node[K])
	// Delete removes the first node found by key and returns it detached.
	Delete(key K) (*Node[K], error)
	Find(key K) *Node[K]
	Min() *Node[K]
	Max() *Node[K]
	Height() int
	// Foreach runs in order until the action returns false.
	Foreach(action func(idx int64, node *Node[K]) bool)
	// Fprint dumps the tree structure into w.
	Fprint(w io.Writer) error
	String() string
	// Release detaches all nodes and resets the tree to empty.
	Release()
}
