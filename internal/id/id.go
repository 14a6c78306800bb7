package id

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultPaymentPrefix is the prefix of generated payment IDs.
const DefaultPaymentPrefix = "payment"

// FormatPaymentID returns a payment ID like "payment3".
func FormatPaymentID(prefix string, seq int) string {
	return prefix + strconv.Itoa(seq)
}

// ParsePaymentID parses "payment3" into its sequence number.
func ParsePaymentID(prefix, paymentID string) (int, error) {
	digits, ok := strings.CutPrefix(paymentID, prefix)
	if !ok || digits == "" {
		return 0, fmt.Errorf("invalid payment ID format: %q", paymentID)
	}
	// Reject signs and leading zeros so each sequence has one spelling.
	if digits[0] < '1' || digits[0] > '9' {
		return 0, fmt.Errorf("invalid payment ID format: %q", paymentID)
	}
	seq, err := strconv.Atoi(digits)
	if err != nil {
		return 0, fmt.Errorf("invalid sequence in payment ID %q: %w", paymentID, err)
	}
	return seq, nil
}
