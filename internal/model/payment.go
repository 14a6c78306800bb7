package model

// PaymentStatus is the derived lifecycle state of a cashback payment.
type PaymentStatus string

const (
	StatusInProgress       PaymentStatus = "IN_PROGRESS"
	StatusCashbackReceived PaymentStatus = "CASHBACK_RECEIVED"
)

// StatusAt derives a payment's status from the observation time and the
// cashback disbursement time.
func StatusAt(now, cashbackAt int64) PaymentStatus {
	if now < cashbackAt {
		return StatusInProgress
	}
	return StatusCashbackReceived
}
