package merge

import (
	"fmt"

	"github.com/saltyjared/banking-system/internal/model"
)

// Edge records one successful merge.
type Edge struct {
	Retired   string
	Surviving string
	Timestamp int64
}

// BalanceMover moves the whole balance of one account record into another.
type BalanceMover interface {
	MoveBalance(from, to Node, ts int64) (int64, error)
}

// Resolver merges accounts and resolves identifiers through the forest.
type Resolver struct {
	forest *Forest
	mover  BalanceMover
	edges  []Edge
}

// NewResolver creates a Resolver over forest. mover carries the retired
// balance into the survivor.
func NewResolver(forest *Forest, mover BalanceMover) *Resolver {
	return &Resolver{forest: forest, mover: mover}
}

// Merge retires retiredID into survivingID at ts. Both identifiers must name
// distinct active accounts. On success the retired balance is moved into the
// survivor and the identifier stops accepting writes.
func (r *Resolver) Merge(retiredID, survivingID string, ts int64) (int64, error) {
	retired, err := r.activeNode(retiredID)
	if err != nil {
		return 0, err
	}
	surviving, err := r.activeNode(survivingID)
	if err != nil {
		return 0, err
	}
	if retired == surviving {
		return 0, fmt.Errorf("%w: cannot merge %q into itself", model.ErrInvalidMerge, retiredID)
	}

	balance, err := r.mover.MoveBalance(retired, surviving, ts)
	if err != nil {
		return 0, fmt.Errorf("moving balance of %q: %w", retiredID, err)
	}
	if err := r.forest.Link(retired, surviving); err != nil {
		return 0, err
	}
	r.edges = append(r.edges, Edge{Retired: retiredID, Surviving: survivingID, Timestamp: ts})
	return balance, nil
}

// Resolve returns the identifier of the active account id now belongs to.
func (r *Resolver) Resolve(id string) (string, error) {
	root, err := r.forest.Resolve(id)
	if err != nil {
		return "", err
	}
	return r.forest.Name(root), nil
}

// Edges returns the merges in the order they were applied.
func (r *Resolver) Edges() []Edge {
	out := make([]Edge, len(r.edges))
	copy(out, r.edges)
	return out
}

func (r *Resolver) activeNode(id string) (Node, error) {
	n, ok := r.forest.Lookup(id)
	if !ok {
		return NoNode, fmt.Errorf("%w: %q", model.ErrAccountNotFound, id)
	}
	if !r.forest.IsRoot(n) {
		return NoNode, fmt.Errorf("%w: %q was already merged into %q", model.ErrInvalidMerge, id, r.forest.Name(r.forest.Find(n)))
	}
	return n, nil
}
