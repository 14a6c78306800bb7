package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saltyjared/banking-system/internal/merge"
	"github.com/saltyjared/banking-system/internal/model"
	"github.com/saltyjared/banking-system/internal/payments"
)

// mockPayments implements PaymentSource for testing.
type mockPayments []*payments.Payment

func (m mockPayments) Payments() []*payments.Payment { return m }

func TestTopSpenders(t *testing.T) {
	f := merge.NewForest()
	a := f.Add("A")
	b := f.Add("B")
	c := f.Add("C")
	f.Add("D")

	src := mockPayments{
		{ID: "payment1", Owner: a, Amount: 200, Cashback: 4},
		{ID: "payment1", Owner: b, Amount: 150},
		{ID: "payment2", Owner: b, Amount: 50},
		{ID: "payment1", Owner: c, Amount: 10},
	}
	v := NewView(f, src)

	assert.Equal(t, []model.Spender{
		{AccountID: "A", Total: 200},
		{AccountID: "B", Total: 200},
		{AccountID: "C", Total: 10},
		{AccountID: "D", Total: 0},
	}, v.TopSpenders(10))

	assert.Equal(t, []model.Spender{{AccountID: "A", Total: 200}}, v.TopSpenders(1))
	assert.Empty(t, v.TopSpenders(0))
	assert.Empty(t, v.TopSpenders(-3))
}

func TestTopSpenders_MergedLineage(t *testing.T) {
	f := merge.NewForest()
	x := f.Add("X")
	y := f.Add("Y")
	z := f.Add("Z")
	require.NoError(t, f.Link(x, y))

	v := NewView(f, mockPayments{
		{Owner: x, Amount: 30},
		{Owner: y, Amount: 20},
		{Owner: z, Amount: 40},
	})

	assert.Equal(t, []model.Spender{
		{AccountID: "Y", Total: 50},
		{AccountID: "Z", Total: 40},
	}, v.TopSpenders(5), "retired X is folded into Y and not listed")
}
