// Package payments records cashback payments and materializes their credits
// lazily, the first time time is observed at or after the disbursement.
package payments

import (
	"errors"
	"fmt"
	"math"

	"github.com/saltyjared/banking-system/internal/accounts"
	"github.com/saltyjared/banking-system/internal/id"
	"github.com/saltyjared/banking-system/internal/merge"
	"github.com/saltyjared/banking-system/internal/model"
)

// Credit describes one cashback credit applied by Settle.
type Credit struct {
	PaymentID string
	AccountID string
	Amount    int64
	At        int64
	Balance   int64
	Forfeited bool
}

// Scheduler owns payment records.
type Scheduler struct {
	forest *merge.Forest
	store  *accounts.Store
	policy Policy

	payments []*Payment // creation order, which is also cashback order
	byID     map[string][]*Payment
	next     int // first payment that may still be uncredited
	seq      map[merge.Node]int
	total    int
}

// NewScheduler creates a Scheduler that debits and credits through store.
func NewScheduler(forest *merge.Forest, store *accounts.Store, policy Policy) (*Scheduler, error) {
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("invalid cashback policy: %w", err)
	}
	return &Scheduler{
		forest: forest,
		store:  store,
		policy: policy,
		byID:   make(map[string][]*Payment),
		seq:    make(map[merge.Node]int),
	}, nil
}

// Policy returns the cashback terms in effect.
func (s *Scheduler) Policy() Policy {
	return s.policy
}

// Pay debits amount from the active account id at ts and schedules its
// cashback.
func (s *Scheduler) Pay(accountID string, ts, amount int64) (*Payment, error) {
	if amount < 0 {
		return nil, fmt.Errorf("%w: payment of %d", model.ErrInvalidAmount, amount)
	}
	node, err := s.store.Active(accountID)
	if err != nil {
		return nil, err
	}
	if n := len(s.payments); n > 0 && ts <= s.payments[n-1].CreatedAt {
		return nil, fmt.Errorf("%w: payment at %d is not after %d", model.ErrOutOfOrder, ts, s.payments[n-1].CreatedAt)
	}
	if ts > math.MaxInt64-s.policy.Delay {
		return nil, fmt.Errorf("%w: cashback for a payment at %d would fall due past the last representable time", model.ErrOutOfOrder, ts)
	}
	if _, err := s.store.Withdraw(accountID, ts, amount); err != nil {
		return nil, err
	}

	p := &Payment{
		ID:         s.nextID(node),
		OwnerID:    accountID,
		Owner:      node,
		Amount:     amount,
		Cashback:   s.policy.Cashback(amount),
		CreatedAt:  ts,
		CashbackAt: ts + s.policy.Delay,
	}
	s.payments = append(s.payments, p)
	s.byID[p.ID] = append(s.byID[p.ID], p)
	return p, nil
}

// Settle credits every uncredited payment whose cashback is due by now, in
// disbursement order, to the account its owner resolves to at this moment.
// Calling it again for the same now credits nothing.
func (s *Scheduler) Settle(now int64) ([]Credit, error) {
	var credits []Credit
	for s.next < len(s.payments) {
		p := s.payments[s.next]
		if p.CashbackAt > now {
			break
		}
		if !p.Credited {
			c, err := s.credit(p)
			if err != nil {
				return credits, err
			}
			credits = append(credits, c)
		}
		s.next++
	}
	return credits, nil
}

// Status returns the status of paymentID as seen by accountID at now,
// settling anything due first. accountID may be a retired identifier; the
// payment must belong to the lineage it resolves to.
func (s *Scheduler) Status(accountID, paymentID string, now int64) (model.PaymentStatus, error) {
	p, err := s.Lookup(accountID, paymentID)
	if err != nil {
		return "", err
	}
	if _, err := s.Settle(now); err != nil {
		return "", err
	}
	return p.StatusAt(now), nil
}

// Lookup finds paymentID among the payments of the lineage accountID
// resolves to. When merged accounts reused an ID, the payment made by the
// exact record accountID names wins, then the survivor's own, then the
// earliest.
func (s *Scheduler) Lookup(accountID, paymentID string) (*Payment, error) {
	if _, err := id.ParsePaymentID(s.policy.Prefix, paymentID); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrPaymentNotFound, err)
	}
	named, ok := s.forest.Lookup(accountID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", model.ErrAccountNotFound, accountID)
	}
	root := s.forest.Find(named)

	var exact, own, first *Payment
	for _, p := range s.byID[paymentID] {
		if s.forest.Find(p.Owner) != root {
			continue
		}
		if first == nil {
			first = p
		}
		if p.Owner == named && exact == nil {
			exact = p
		}
		if p.Owner == root && own == nil {
			own = p
		}
	}
	switch {
	case exact != nil:
		return exact, nil
	case own != nil:
		return own, nil
	case first != nil:
		return first, nil
	}
	return nil, fmt.Errorf("%w: %q for account %q", model.ErrPaymentNotFound, paymentID, accountID)
}

// Payments returns every payment in creation order.
func (s *Scheduler) Payments() []*Payment {
	out := make([]*Payment, len(s.payments))
	copy(out, s.payments)
	return out
}

func (s *Scheduler) credit(p *Payment) (Credit, error) {
	target := s.forest.Name(s.forest.Find(p.Owner))
	balance, err := s.store.ApplyDeltaNode(p.Owner, p.CashbackAt, p.Cashback)
	if errors.Is(err, model.ErrInvalidAmount) {
		// The survivor's balance cannot absorb the credit. Forfeit it rather
		// than leave the payment due forever.
		p.Credited = true
		p.Forfeited = true
		p.CreditedTo = target
		return Credit{PaymentID: p.ID, AccountID: target, At: p.CashbackAt, Forfeited: true}, nil
	}
	if err != nil {
		return Credit{}, fmt.Errorf("crediting cashback of %s: %w", p.ID, err)
	}
	p.Credited = true
	p.CreditedTo = target
	return Credit{
		PaymentID: p.ID,
		AccountID: target,
		Amount:    p.Cashback,
		At:        p.CashbackAt,
		Balance:   balance,
	}, nil
}

func (s *Scheduler) nextID(owner merge.Node) string {
	s.total++
	if s.policy.Scope == ScopeLedger {
		return id.FormatPaymentID(s.policy.Prefix, s.total)
	}
	s.seq[owner]++
	return id.FormatPaymentID(s.policy.Prefix, s.seq[owner])
}
