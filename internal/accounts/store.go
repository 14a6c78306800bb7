// Package accounts owns account records and their append-only balance
// histories.
package accounts

import (
	"fmt"
	"math"

	"github.com/saltyjared/banking-system/internal/merge"
	"github.com/saltyjared/banking-system/internal/model"
)

// Store holds every account record ever created, indexed by forest node.
type Store struct {
	forest   *merge.Forest
	accounts []*Account
}

// NewStore creates a Store that allocates its records in forest.
func NewStore(forest *merge.Forest) *Store {
	return &Store{forest: forest}
}

// Create opens an account with a zero balance and an empty history.
func (s *Store) Create(id string, ts int64) (*Account, error) {
	if n, ok := s.forest.Lookup(id); ok && s.forest.IsRoot(n) {
		return nil, fmt.Errorf("%w: %q", model.ErrDuplicateAccount, id)
	}
	n := s.forest.Add(id)
	if int(n) != len(s.accounts) {
		return nil, fmt.Errorf("account arena out of sync: node %d, %d records", n, len(s.accounts))
	}
	acct := &Account{ID: id, CreatedAt: ts}
	s.accounts = append(s.accounts, acct)
	return acct, nil
}

// Account returns the record for a node.
func (s *Store) Account(n merge.Node) *Account {
	return s.accounts[n]
}

// Lookup returns the record of the active account id resolves to. Retired
// identifiers resolve to their survivor.
func (s *Store) Lookup(id string) (*Account, error) {
	root, err := s.forest.Resolve(id)
	if err != nil {
		return nil, err
	}
	return s.accounts[root], nil
}

// Active returns the node of id if it still accepts writes.
func (s *Store) Active(id string) (merge.Node, error) {
	n, ok := s.forest.Lookup(id)
	if !ok {
		return merge.NoNode, fmt.Errorf("%w: %q", model.ErrAccountNotFound, id)
	}
	if !s.forest.IsRoot(n) {
		survivor := s.forest.Name(s.forest.Find(n))
		return merge.NoNode, fmt.Errorf("%w: %q was merged into %q", model.ErrAccountNotFound, id, survivor)
	}
	return n, nil
}

// ApplyDelta adds delta to the balance of the account id resolves to and
// records the result at ts. Returns the new balance.
func (s *Store) ApplyDelta(id string, ts, delta int64) (int64, error) {
	root, err := s.forest.Resolve(id)
	if err != nil {
		return 0, err
	}
	return s.apply(root, ts, delta)
}

// ApplyDeltaNode is ApplyDelta addressed by node. The delta lands on the
// node's current root.
func (s *Store) ApplyDeltaNode(n merge.Node, ts, delta int64) (int64, error) {
	return s.apply(s.forest.Find(n), ts, delta)
}

// Deposit credits amount to the active account id.
func (s *Store) Deposit(id string, ts, amount int64) (int64, error) {
	if amount < 0 {
		return 0, fmt.Errorf("%w: deposit of %d", model.ErrInvalidAmount, amount)
	}
	if _, err := s.Active(id); err != nil {
		return 0, err
	}
	return s.ApplyDelta(id, ts, amount)
}

// Withdraw debits amount from the active account id.
func (s *Store) Withdraw(id string, ts, amount int64) (int64, error) {
	if amount < 0 {
		return 0, fmt.Errorf("%w: withdrawal of %d", model.ErrInvalidAmount, amount)
	}
	if _, err := s.Active(id); err != nil {
		return 0, err
	}
	return s.ApplyDelta(id, ts, -amount)
}

// Transfer moves amount between two active accounts. Either both sides are
// recorded or neither is. Returns the source balance.
func (s *Store) Transfer(fromID, toID string, ts, amount int64) (int64, error) {
	if amount < 0 {
		return 0, fmt.Errorf("%w: transfer of %d", model.ErrInvalidAmount, amount)
	}
	from, err := s.Active(fromID)
	if err != nil {
		return 0, fmt.Errorf("source: %w", err)
	}
	to, err := s.Active(toID)
	if err != nil {
		return 0, fmt.Errorf("destination: %w", err)
	}
	if from == to {
		return 0, fmt.Errorf("%w: %q", model.ErrSameAccount, fromID)
	}

	src, dst := s.accounts[from], s.accounts[to]
	if src.Balance < amount {
		return 0, fmt.Errorf("%w: %q has %d, transfer needs %d", model.ErrInsufficientFunds, fromID, src.Balance, amount)
	}
	if !src.canRecord(ts) || !dst.canRecord(ts) {
		return 0, fmt.Errorf("%w: transfer at %d precedes recorded history", model.ErrOutOfOrder, ts)
	}
	if err := checkCredit(dst, amount); err != nil {
		return 0, err
	}

	balance, err := s.apply(from, ts, -amount)
	if err != nil {
		return 0, err
	}
	if _, err := s.apply(to, ts, amount); err != nil {
		return 0, err
	}
	return balance, nil
}

// MoveBalance zeroes from and credits its balance to to, one history entry
// each. Returns the new balance of to.
func (s *Store) MoveBalance(from, to merge.Node, ts int64) (int64, error) {
	src, dst := s.accounts[from], s.accounts[to]
	if !src.canRecord(ts) || !dst.canRecord(ts) {
		return 0, fmt.Errorf("%w: merge at %d precedes recorded history", model.ErrOutOfOrder, ts)
	}
	amount := src.Balance
	if err := checkCredit(dst, amount); err != nil {
		return 0, err
	}
	if _, err := s.apply(from, ts, -amount); err != nil {
		return 0, err
	}
	return s.apply(to, ts, amount)
}

func (s *Store) apply(n merge.Node, ts, delta int64) (int64, error) {
	acct := s.accounts[n]
	next := acct.Balance + delta
	if delta < 0 && next < 0 {
		return 0, fmt.Errorf("%w: %q has %d, needs %d", model.ErrInsufficientFunds, acct.ID, acct.Balance, -delta)
	}
	if err := checkCredit(acct, delta); err != nil {
		return 0, err
	}
	if !acct.canRecord(ts) {
		return 0, fmt.Errorf("%w: %q history is past %d", model.ErrOutOfOrder, acct.ID, ts)
	}
	acct.Balance = next
	if err := acct.record(ts); err != nil {
		return 0, err
	}
	return next, nil
}

// checkCredit rejects a credit that would overflow the balance.
func checkCredit(acct *Account, delta int64) error {
	if delta > 0 && acct.Balance > math.MaxInt64-delta {
		return fmt.Errorf("%w: crediting %d to %q overflows its balance of %d", model.ErrInvalidAmount, delta, acct.ID, acct.Balance)
	}
	return nil
}
