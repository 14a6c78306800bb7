package model

import "errors"

// Error kinds reported by the ledger. Components wrap them with context;
// callers match with errors.Is.
var (
	ErrOutOfOrder        = errors.New("timestamp out of order")
	ErrDuplicateAccount  = errors.New("account already exists")
	ErrAccountNotFound   = errors.New("account not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrPaymentNotFound   = errors.New("payment not found")
	ErrInvalidMerge      = errors.New("invalid merge")
	ErrSameAccount       = errors.New("source and destination are the same account")
	ErrInvalidAmount     = errors.New("invalid amount")
)
