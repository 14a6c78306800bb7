package model

// Entry is one point of an account's balance history: the balance after
// every event applied at Timestamp.
type Entry struct {
	Timestamp int64
	Balance   int64
}
