package accounts

import (
	"fmt"

	"github.com/saltyjared/banking-system/internal/model"
)

// Account is one account record and its balance history.
type Account struct {
	ID        string
	CreatedAt int64
	Balance   int64 // minor units
	History   []model.Entry
}

// record appends the post-event balance at ts. Events sharing the last
// entry's instant fold into it, so timestamps stay strictly increasing.
func (a *Account) record(ts int64) error {
	if n := len(a.History); n > 0 {
		last := &a.History[n-1]
		switch {
		case ts == last.Timestamp:
			last.Balance = a.Balance
			return nil
		case ts < last.Timestamp:
			return fmt.Errorf("%w: %q history is at %d, event at %d", model.ErrOutOfOrder, a.ID, last.Timestamp, ts)
		}
	}
	a.History = append(a.History, model.Entry{Timestamp: ts, Balance: a.Balance})
	return nil
}

// canRecord reports whether an event at ts would keep the history ordered.
func (a *Account) canRecord(ts int64) bool {
	n := len(a.History)
	return n == 0 || ts >= a.History[n-1].Timestamp
}
