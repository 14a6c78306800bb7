package payments

import (
	"github.com/saltyjared/banking-system/internal/merge"
	"github.com/saltyjared/banking-system/internal/model"
)

// Payment is a debit that earns deferred cashback.
type Payment struct {
	ID         string
	OwnerID    string     // paying identifier as of creation
	Owner      merge.Node // paying record; the credit follows its merges
	Amount     int64
	Cashback   int64
	CreatedAt  int64
	CashbackAt int64
	Credited   bool
	CreditedTo string // survivor that received the cashback
	Forfeited  bool   // crediting would have overflowed the survivor's balance
}

// StatusAt derives the payment status at now.
func (p *Payment) StatusAt(now int64) model.PaymentStatus {
	return model.StatusAt(now, p.CashbackAt)
}
