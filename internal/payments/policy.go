package payments

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/saltyjared/banking-system/internal/id"
)

// Rounding selects how fractional cashback is turned into minor units.
type Rounding string

const (
	RoundFloor    Rounding = "floor"
	RoundHalfUp   Rounding = "half_up"
	RoundHalfEven Rounding = "half_even"
)

// Scope selects the sequence payment IDs are numbered in.
type Scope string

const (
	// ScopeAccount numbers payments per paying account.
	ScopeAccount Scope = "account"
	// ScopeLedger numbers payments across every account.
	ScopeLedger Scope = "ledger"
)

// DayMillis is one day in the ledger's default time unit.
const DayMillis int64 = 24 * 60 * 60 * 1000

// Policy holds the cashback terms applied to every payment.
type Policy struct {
	Rate     decimal.Decimal
	Delay    int64
	Rounding Rounding
	Prefix   string
	Scope    Scope
}

// DefaultPolicy returns 2% cashback, floored, paid one day later.
func DefaultPolicy() Policy {
	return Policy{
		Rate:     decimal.New(2, -2),
		Delay:    DayMillis,
		Rounding: RoundFloor,
		Prefix:   id.DefaultPaymentPrefix,
		Scope:    ScopeAccount,
	}
}

// Validate checks the policy terms and reports every problem at once.
func (p Policy) Validate() error {
	var errs []error
	if p.Rate.IsNegative() || p.Rate.GreaterThan(decimal.NewFromInt(1)) {
		errs = append(errs, fmt.Errorf("cashback_rate %s must be between 0 and 1", p.Rate))
	}
	if p.Delay < 0 {
		errs = append(errs, fmt.Errorf("cashback_delay %d must not be negative", p.Delay))
	}
	switch p.Rounding {
	case RoundFloor, RoundHalfUp, RoundHalfEven:
	default:
		errs = append(errs, fmt.Errorf("invalid rounding %q: must be one of %s, %s, %s", p.Rounding, RoundFloor, RoundHalfUp, RoundHalfEven))
	}
	switch p.Scope {
	case ScopeAccount, ScopeLedger:
	default:
		errs = append(errs, fmt.Errorf("invalid payment_scope %q: must be %s or %s", p.Scope, ScopeAccount, ScopeLedger))
	}
	if p.Prefix == "" {
		errs = append(errs, errors.New("payment_prefix cannot be empty"))
	}
	return errors.Join(errs...)
}

// Cashback returns the cashback owed on amount.
func (p Policy) Cashback(amount int64) int64 {
	raw := decimal.NewFromInt(amount).Mul(p.Rate)
	switch p.Rounding {
	case RoundHalfUp:
		raw = raw.Round(0)
	case RoundHalfEven:
		raw = raw.RoundBank(0)
	default:
		raw = raw.Floor()
	}
	return raw.IntPart()
}
