package tree

import (
	"io"
)

const (
	connectorMid  = "├── "
	connectorLast = "└── "
	prefixMid     = "│   "
	prefixLast    = "    "
)

// Fprint writes the tree root first, then each child recursively.
//
//	└── 20(Black)
//	    ├── 10(Red)
//	    └── 30(Red)
//
// An empty tree writes nothing.
func (tree *binaryTree[K]) Fprint(w io.Writer) error {
	if tree.root.IsNil() {
		return nil
	}
	return tree.fprint(w, tree.root, "", true)
}

func (tree *binaryTree[K]) fprint(w io.Writer, node *Node[K], prefix string, isLast bool) error {
	connector, childPrefix := connectorMid, prefix+prefixMid
	if isLast {
		connector, childPrefix = connectorLast, prefix+prefixLast
	}
	if _, err := io.WriteString(w, prefix+connector+tree.nodeFmt(node)+"\n"); err != nil {
		return err
	}

	hasLeft, hasRight := !node.left.IsNil(), !node.right.IsNil()
	if hasLeft {
		if err := tree.fprint(w, node.left, childPrefix, !hasRight); err != nil {
			return err
		}
	}
	if hasRight {
		if err := tree.fprint(w, node.right, childPrefix, true); err != nil {
			return err
		}
	}
	return nil
}
