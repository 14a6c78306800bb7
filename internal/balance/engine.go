// Package balance answers point-in-time balance queries.
package balance

import (
	"fmt"
	"sort"

	"github.com/saltyjared/banking-system/internal/accounts"
	"github.com/saltyjared/banking-system/internal/payments"
)

// Settler materializes cashback credits that are due by now.
type Settler interface {
	Settle(now int64) ([]payments.Credit, error)
}

// Engine reads balance histories, following merges to the surviving account.
type Engine struct {
	store   *accounts.Store
	settler Settler
}

// NewEngine creates an Engine over store. settler is run before every query
// so the history is complete up to the query time.
func NewEngine(store *accounts.Store, settler Settler) *Engine {
	return &Engine{store: store, settler: settler}
}

// BalanceAt returns the balance of the account id resolves to as of at,
// observed at now. A query before the first history entry answers zero.
func (e *Engine) BalanceAt(id string, now, at int64) (int64, error) {
	if _, err := e.store.Lookup(id); err != nil {
		return 0, err
	}
	if _, err := e.settler.Settle(now); err != nil {
		return 0, fmt.Errorf("settling cashback: %w", err)
	}
	acct, err := e.store.Lookup(id)
	if err != nil {
		return 0, err
	}
	return Search(acct, at), nil
}

// Search returns the balance recorded by the last history entry at or before
// at, or zero when there is none.
func Search(acct *accounts.Account, at int64) int64 {
	h := acct.History
	i := sort.Search(len(h), func(i int) bool { return h[i].Timestamp > at })
	if i == 0 {
		return 0
	}
	return h[i-1].Balance
}
