package config

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/saltyjared/banking-system/internal/payments"
)

// Policy converts the ledger settings into cashback terms.
func (c LedgerConfig) Policy() (payments.Policy, error) {
	rate, rateErr := decimal.NewFromString(c.CashbackRate)
	if rateErr != nil {
		rateErr = fmt.Errorf("invalid cashback_rate %q: %w", c.CashbackRate, rateErr)
	}
	p := payments.Policy{
		Rate:     rate,
		Delay:    c.CashbackDelay,
		Rounding: payments.Rounding(c.Rounding),
		Prefix:   c.PaymentPrefix,
		Scope:    payments.Scope(c.PaymentScope),
	}
	if err := errors.Join(rateErr, p.Validate()); err != nil {
		return payments.Policy{}, err
	}
	return p, nil
}
