package id

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatPaymentID(t *testing.T) {
	tests := []struct {
		prefix string
		seq    int
		want   string
	}{
		{DefaultPaymentPrefix, 1, "payment1"},
		{DefaultPaymentPrefix, 12, "payment12"},
		{"pay-", 3, "pay-3"},
	}
	for _, tt := range tests {
		got := FormatPaymentID(tt.prefix, tt.seq)
		assert.Equal(t, tt.want, got)
	}
}

func TestParsePaymentID(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"payment1", 1},
		{"payment42", 42},
		{"payment1000", 1000},
	}
	for _, tt := range tests {
		seq, err := ParsePaymentID(DefaultPaymentPrefix, tt.input)
		require.NoError(t, err, "input: %s", tt.input)
		assert.Equal(t, tt.want, seq)
	}
}

func TestParsePaymentID_Errors(t *testing.T) {
	badInputs := []string{
		"",
		"payment",
		"payment0",
		"payment01",
		"payment-1",
		"payment1a",
		"refund1",
	}
	for _, input := range badInputs {
		_, err := ParsePaymentID(DefaultPaymentPrefix, input)
		assert.Error(t, err, "expected error for input: %s", input)
	}
}
