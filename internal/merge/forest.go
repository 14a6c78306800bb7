// Package merge tracks which account identifiers were retired into which
// surviving accounts.
package merge

import (
	"fmt"

	"github.com/saltyjared/banking-system/internal/model"
)

// Node indexes one account record in the arena. Every created account gets
// its own node, including a re-created identifier.
type Node int

// NoNode is the parent of a root.
const NoNode Node = -1

// Forest is an arena-indexed union-find forest oriented toward the active
// accounts. Each node has at most one parent and roots are exactly the
// accounts that still accept writes.
type Forest struct {
	parent []Node
	names  []string
	byName map[string]Node // identifier -> most recently created node
}

// NewForest creates an empty Forest.
func NewForest() *Forest {
	return &Forest{byName: make(map[string]Node)}
}

// Add allocates a root node for name and makes it the node the name refers to.
func (f *Forest) Add(name string) Node {
	n := Node(len(f.parent))
	f.parent = append(f.parent, NoNode)
	f.names = append(f.names, name)
	f.byName[name] = n
	return n
}

// Lookup returns the node name currently refers to, retired or not.
func (f *Forest) Lookup(name string) (Node, bool) {
	n, ok := f.byName[name]
	return n, ok
}

// Name returns the identifier a node was created with.
func (f *Forest) Name(n Node) string {
	return f.names[n]
}

// IsRoot reports whether n has not been merged into another node.
func (f *Forest) IsRoot(n Node) bool {
	return f.parent[n] == NoNode
}

// Find returns the root of n and points every node on the walked path
// directly at it. Both passes are iterative so long chains cannot exhaust
// the stack.
func (f *Forest) Find(n Node) Node {
	root := n
	for f.parent[root] != NoNode {
		root = f.parent[root]
	}
	for n != root {
		next := f.parent[n]
		f.parent[n] = root
		n = next
	}
	return root
}

// Resolve returns the root node for an identifier.
func (f *Forest) Resolve(name string) (Node, error) {
	n, ok := f.byName[name]
	if !ok {
		return NoNode, fmt.Errorf("%w: %q", model.ErrAccountNotFound, name)
	}
	return f.Find(n), nil
}

// Link makes surviving the parent of retired. Both must be distinct roots.
func (f *Forest) Link(retired, surviving Node) error {
	if retired == surviving || !f.IsRoot(retired) || !f.IsRoot(surviving) {
		return fmt.Errorf("%w: cannot link %q into %q", model.ErrInvalidMerge, f.names[retired], f.names[surviving])
	}
	f.parent[retired] = surviving
	return nil
}

// Roots returns the active nodes in creation order.
func (f *Forest) Roots() []Node {
	var roots []Node
	for i, p := range f.parent {
		if p == NoNode {
			roots = append(roots, Node(i))
		}
	}
	return roots
}
