package model

import "fmt"

// Spender is one row of the top-spenders ranking.
type Spender struct {
	AccountID string
	Total     int64 // sum of payment principals, minor units
}

// String renders the row as "id(total)".
func (s Spender) String() string {
	return fmt.Sprintf("%s(%d)", s.AccountID, s.Total)
}
