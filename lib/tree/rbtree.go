package tree

import (
	"fmt"

	"github.com/benz9527/treex/lib/infra"
)

var _ Tree[int] = (*rbTree[int])(nil)

// References:
// https://en.wikipedia.org/wiki/Red%E2%80%93black_tree#Properties
// p1. Every node is either red or black.
// p2. The sentinel (NIL) is black.
// p3. A red node does not have a red child. (red-violation)
// p4. Every path from a given node to any of its descendant
//   NIL nodes goes through the same number of black nodes. (black-violation)
// p5. The root is black.
// So the longest path is at most 2 * the shortest path.

// rbTree only intercepts Insert and Remove. The structural work is done
// by the embedded binary tree, then the colors are repaired.
type rbTree[K infra.OrderedKey] struct {
	*binaryTree[K]
}

// Insert paints the new node red after the structural insert.
func (tree *rbTree[K]) Insert(node *Node[K]) {
	tree.binaryTree.Insert(node)
	node.color = Red
	tree.insertRebalance(node)
}

func (tree *rbTree[K]) InsertKey(key K) *Node[K] {
	node := tree.NewNode(key)
	tree.Insert(node)
	return node
}

/*
<X> is a RED node.
[X] is a BLACK node (or NIL).

The loop runs while the parent P of X is red. The root's parent is the
sentinel which is always black, so the loop never passes the root.
Then G, the grandpa, must be black and real.

im1: The uncle U is red. Repaint P and U into black, G into red.
G may be red-violation now, continue from G.

	    [G]             <G>
	    / \             / \
	  <P> <U>  ====>  [P] [U]
	  /               /
	<X>             <X>

im2: The uncle U is black and X is opposite direction to P.
Rotate P to X's side, X and P swap roles, then enter im3.

	  [G]                 [G]
	  / \    rotate(P)    / \
	<P> [U]  ========>  <X> [U]
	  \                 /
	  <X>             <P>

im3: The uncle U is black and X is the same direction as P.
Repaint P into black, G into red, rotate G to U's side.
P is black now, the loop ends.

	    [G]                 <P>               [P]
	    / \    rotate(G)    / \    repaint    / \
	  <P> [U]  ========>  <X> [G]  ======>  <X> <G>
	  /                         \                 \
	<X>                         [U]               [U]

Finally, the root is painted into black. It may be repainted red by im1.
*/
func (tree *rbTree[K]) insertRebalance(x *Node[K]) {
	loops := int64(0)
	for x.parent.isRed() {
		loops++
		p, gp := x.parent, x.parent.parent
		if p == gp.left {
			if u := gp.right; /* im1 */ u.isRed() {
				p.color, u.color, gp.color = Black, Black, Red
				x = gp
				continue
			}
			if /* im2 */ x == p.right {
				x = p
				tree.leftRotate(x)
				p = x.parent
			}
			/* im3 */
			p.color, gp.color = Black, Red
			tree.rightRotate(gp)
		} else {
			if u := gp.left; /* im1 */ u.isRed() {
				p.color, u.color, gp.color = Black, Black, Red
				x = gp
				continue
			}
			if /* im2 */ x == p.left {
				x = p
				tree.rightRotate(x)
				p = x.parent
			}
			/* im3 */
			p.color, gp.color = Black, Red
			tree.leftRotate(gp)
		}
	}
	tree.root.color = Black
	tree.stats.recordFixup(opInsert, loops)
}

// Remove splices z out. When z has two children its succ is moved into
// z's position and takes over z's color, so the color that left the
// tree is the succ's original one.
func (tree *rbTree[K]) Remove(z *Node[K]) {
	moved, fix, fixParent := tree.splice(z)
	removedColor := moved.color
	if moved != z {
		moved.color = z.color
	}
	if removedColor == Black {
		tree.removeRebalance(fix, fixParent)
	}
	tree.detach(z)
}

func (tree *rbTree[K]) Delete(key K) (*Node[K], error) {
	return tree.deleteKey(key, tree.Remove)
}

/*
<X> is a RED node.
[X] is a BLACK node (or NIL).
{X} is either a RED node or a BLACK node.

X carries an extra black after a black node left its path. X may be the
sentinel, so its parent P is tracked explicitly and the sentinel is never
written. The loop runs while X is black and not the root.

Sc is the sibling S's child at the same side as X.
Sd is the sibling S's child at the opposite side.

rm1: S is red, so P, Sc and Sd must be black.
Repaint S into black, P into red, rotate P to X's side.
X's new sibling is the former Sc, it is black. Enter rm2 to rm4.

	  [P]                   <S>               [S]
	  / \    l-rotate(P)    / \    repaint    / \
	[X] <S>  ==========>  [P] [Sd]  ======>  <P> [Sd]
	    / \               / \                / \
	 [Sc] [Sd]          [X] [Sc]           [X] [Sc]

rm2: S, Sc and Sd are black.
Repaint S into red, the extra black moves up to P.
If P is red the loop ends and P is painted black, otherwise continue
from P.

	  {P}             {P}
	  / \             / \
	[X] [S]  ====>  [X] <S>
	    / \             / \
	 [Sc] [Sd]       [Sc] [Sd]

rm3: S is black, Sc is red and Sd is black.
Repaint Sc into black, S into red, rotate S to Sd's side.
X's new sibling is the former Sc with a red Sd. Enter rm4.

	                        {P}                {P}
	  {P}                   / \                / \
	  / \    r-rotate(S)  [X] <Sc>   repaint  [X] [Sc]
	[X] [S]  ==========>        \    ======>       \
	    / \                     [S]                <S>
	  <Sc> [Sd]                   \                  \
	                              [Sd]               [Sd]

rm4: S is black and Sd is red.
S takes P's color, P and Sd are painted black, rotate P to X's side.
The extra black is absorbed, the loop ends.

	  {P}                   [S]                {S}
	  / \    l-rotate(P)    / \     repaint    / \
	[X] [S]  ==========>  {P} <Sd>  ======>  [P] [Sd]
	    / \               / \                / \
	 {Sc} <Sd>          [X] {Sc}           [X] {Sc}

The mirror cases apply when X is the right child.
*/
func (tree *rbTree[K]) removeRebalance(x, p *Node[K]) {
	loops := int64(0)
	for x != tree.root && x.isBlack() {
		loops++
		if p.IsNil() {
			// impossible run to here
			panic( /* debug assertion */ "[rbtree] remove rebalance without parent")
		}

		if x == p.left {
			s := p.right
			if /* rm1 */ s.isRed() {
				s.color, p.color = Black, Red
				tree.leftRotate(p)
				s = p.right
			}
			if /* rm2 */ s.left.isBlack() && s.right.isBlack() {
				s.color = Red
				x, p = p, p.parent
				continue
			}
			if /* rm3 */ s.right.isBlack() {
				s.left.color, s.color = Black, Red
				tree.rightRotate(s)
				s = p.right
			}
			/* rm4 */
			s.color, p.color, s.right.color = p.color, Black, Black
			tree.leftRotate(p)
		} else {
			s := p.left
			if /* rm1 */ s.isRed() {
				s.color, p.color = Black, Red
				tree.rightRotate(p)
				s = p.left
			}
			if /* rm2 */ s.left.isBlack() && s.right.isBlack() {
				s.color = Red
				x, p = p, p.parent
				continue
			}
			if /* rm3 */ s.left.isBlack() {
				s.right.color, s.color = Black, Red
				tree.leftRotate(s)
				s = p.left
			}
			/* rm4 */
			s.color, p.color, s.left.color = p.color, Black, Black
			tree.rightRotate(p)
		}
		x = tree.root
	}
	if !x.IsNil() {
		x.color = Black
	}
	tree.stats.recordFixup(opRemove, loops)
}

// NewRBTree creates a red-black tree.
func NewRBTree[K infra.OrderedKey](opts ...TreeOption[K]) Tree[K] {
	tree := &rbTree[K]{
		binaryTree: newBinaryTree[K](rbTreeKind, opts...),
	}
	tree.nodeFmt = func(node *Node[K]) string {
		return fmt.Sprintf("%v(%s)", node.key, node.color)
	}
	return tree
}
