// Package ranking ranks accounts by what they have paid.
package ranking

import (
	"sort"

	"github.com/saltyjared/banking-system/internal/merge"
	"github.com/saltyjared/banking-system/internal/model"
	"github.com/saltyjared/banking-system/internal/payments"
)

// PaymentSource lists recorded payments.
type PaymentSource interface {
	Payments() []*payments.Payment
}

// View aggregates payment principals per active account.
type View struct {
	forest   *merge.Forest
	payments PaymentSource
}

// NewView creates a View.
func NewView(forest *merge.Forest, source PaymentSource) *View {
	return &View{forest: forest, payments: source}
}

// TopSpenders returns up to n active accounts ordered by total payments
// across their lineage, largest first, ties by identifier.
func (v *View) TopSpenders(n int) []model.Spender {
	if n <= 0 {
		return nil
	}
	totals := make(map[merge.Node]int64)
	for _, p := range v.payments.Payments() {
		totals[v.forest.Find(p.Owner)] += p.Amount
	}

	roots := v.forest.Roots()
	rows := make([]model.Spender, 0, len(roots))
	for _, r := range roots {
		rows = append(rows, model.Spender{AccountID: v.forest.Name(r), Total: totals[r]})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Total != rows[j].Total {
			return rows[i].Total > rows[j].Total
		}
		return rows[i].AccountID < rows[j].AccountID
	})
	if len(rows) > n {
		rows = rows[:n]
	}
	return rows
}
