package ledger

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/saltyjared/banking-system/internal/merge"
	"github.com/saltyjared/banking-system/internal/model"
	"github.com/saltyjared/banking-system/internal/payments"
)

const day = payments.DayMillis

func newLedger(t *testing.T) *Ledger {
	t.Helper()
	return newLedgerWithPolicy(t, payments.DefaultPolicy())
}

func newLedgerWithPolicy(t *testing.T, policy payments.Policy) *Ledger {
	t.Helper()
	l, err := New(policy, zaptest.NewLogger(t))
	require.NoError(t, err)
	return l
}

// seedScenario replays the opening operations shared by the scenario tests.
func seedScenario(t *testing.T, l *Ledger) {
	t.Helper()
	require.NoError(t, l.CreateAccount(1, "A"))
	require.NoError(t, l.CreateAccount(2, "B"))

	bal, err := l.Deposit(3, "A", 2000)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), bal)
	bal, err = l.Deposit(4, "B", 1200)
	require.NoError(t, err)
	assert.Equal(t, int64(1200), bal)

	bal, err = l.Transfer(5, "B", "A", 200)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), bal)
	assertBalance(t, l, "A", 2200)

	pid, err := l.Pay(6, "A", 200)
	require.NoError(t, err)
	assert.Equal(t, "payment1", pid)
	assertBalance(t, l, "A", 2000)
}

func assertBalance(t *testing.T, l *Ledger, id string, want int64) {
	t.Helper()
	acct, err := l.Account(id)
	require.NoError(t, err)
	assert.Equal(t, want, acct.Balance, "balance of %s", id)
}

func TestScenario_PaymentAndRanking(t *testing.T) {
	l := newLedger(t)
	seedScenario(t, l)

	status, err := l.PaymentStatus(7, "A", "payment1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusInProgress, status)

	top, err := l.TopSpenders(8, 2)
	require.NoError(t, err)
	assert.Equal(t, []model.Spender{{AccountID: "A", Total: 200}, {AccountID: "B", Total: 0}}, top)
}

func TestScenario_MergeAndCashback(t *testing.T) {
	l := newLedger(t)
	seedScenario(t, l)

	require.NoError(t, l.MergeAccounts(9, "A", "B"))

	got, err := l.Balance(12, "A", 10)
	require.NoError(t, err)
	assert.Equal(t, int64(3000), got)

	got, err = l.Balance(day+10, "A", day+7)
	require.NoError(t, err)
	assert.Equal(t, int64(3004), got, "cashback of floor(0.02*200) is credited at day+6")

	got, err = l.Balance(day+11, "A", day+5)
	require.NoError(t, err)
	assert.Equal(t, int64(3000), got, "queries before disbursement do not see the credit")

	status, err := l.PaymentStatus(day+12, "A", "payment1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusCashbackReceived, status)
}

func TestOutOfOrderLeavesStateUnchanged(t *testing.T) {
	l := newLedger(t)
	seedScenario(t, l)

	_, err := l.Deposit(6, "A", 500)
	assert.ErrorIs(t, err, model.ErrOutOfOrder)
	_, err = l.Deposit(2, "A", 500)
	assert.ErrorIs(t, err, model.ErrOutOfOrder)
	assert.ErrorIs(t, l.CreateAccount(6, "C"), model.ErrOutOfOrder)
	_, err = l.TopSpenders(1, 1)
	assert.ErrorIs(t, err, model.ErrOutOfOrder)

	assertBalance(t, l, "A", 2000)
	_, err = l.Account("C")
	assert.ErrorIs(t, err, model.ErrAccountNotFound)

	_, err = l.Deposit(7, "A", 1)
	require.NoError(t, err)
}

func TestRejectedOperationsHaveNoEffect(t *testing.T) {
	l := newLedger(t)
	seedScenario(t, l)

	a, err := l.Account("A")
	require.NoError(t, err)
	b, err := l.Account("B")
	require.NoError(t, err)
	histA := append([]model.Entry(nil), a.History...)
	histB := append([]model.Entry(nil), b.History...)

	tests := []struct {
		name string
		run  func(ts int64) error
		want error
	}{
		{"duplicate account", func(ts int64) error { return l.CreateAccount(ts, "A") }, model.ErrDuplicateAccount},
		{"deposit unknown", func(ts int64) error { _, err := l.Deposit(ts, "Z", 1); return err }, model.ErrAccountNotFound},
		{"negative deposit", func(ts int64) error { _, err := l.Deposit(ts, "A", -5); return err }, model.ErrInvalidAmount},
		{"overdrawn transfer", func(ts int64) error { _, err := l.Transfer(ts, "B", "A", 5000); return err }, model.ErrInsufficientFunds},
		{"transfer to missing", func(ts int64) error { _, err := l.Transfer(ts, "A", "Z", 1); return err }, model.ErrAccountNotFound},
		{"transfer to self", func(ts int64) error { _, err := l.Transfer(ts, "A", "A", 1); return err }, model.ErrSameAccount},
		{"overdrawn payment", func(ts int64) error { _, err := l.Pay(ts, "B", 1001); return err }, model.ErrInsufficientFunds},
		{"unknown payment", func(ts int64) error { _, err := l.PaymentStatus(ts, "A", "payment9"); return err }, model.ErrPaymentNotFound},
		{"other account's payment", func(ts int64) error { _, err := l.PaymentStatus(ts, "B", "payment1"); return err }, model.ErrPaymentNotFound},
		{"self merge", func(ts int64) error { return l.MergeAccounts(ts, "A", "A") }, model.ErrInvalidMerge},
		{"merge missing", func(ts int64) error { return l.MergeAccounts(ts, "A", "Z") }, model.ErrAccountNotFound},
		{"balance of missing", func(ts int64) error { _, err := l.Balance(ts, "Z", 1); return err }, model.ErrAccountNotFound},
	}
	ts := int64(100)
	for _, tt := range tests {
		err := tt.run(ts)
		assert.ErrorIs(t, err, tt.want, tt.name)
		ts++
	}

	assert.Equal(t, histA, a.History)
	assert.Equal(t, histB, b.History)
	assert.Equal(t, int64(2000), a.Balance)
	assert.Equal(t, int64(1000), b.Balance)
	assert.Empty(t, l.Merges())
}

func TestRetiredIdentifier(t *testing.T) {
	l := newLedger(t)
	seedScenario(t, l)
	require.NoError(t, l.MergeAccounts(9, "A", "B"))

	// Writes through the retired identifier are rejected.
	_, err := l.Deposit(10, "B", 10)
	assert.ErrorIs(t, err, model.ErrAccountNotFound)
	_, err = l.Pay(11, "B", 10)
	assert.ErrorIs(t, err, model.ErrAccountNotFound)
	_, err = l.Transfer(12, "A", "B", 10)
	assert.ErrorIs(t, err, model.ErrAccountNotFound)
	assert.ErrorIs(t, l.MergeAccounts(13, "A", "B"), model.ErrInvalidMerge)

	// Reads are redirected to the survivor.
	got, err := l.Balance(14, "B", 9)
	require.NoError(t, err)
	assert.Equal(t, int64(3000), got)
	status, err := l.PaymentStatus(15, "B", "payment1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusInProgress, status)

	root, err := l.Resolve("B")
	require.NoError(t, err)
	assert.Equal(t, "A", root)

	top, err := l.TopSpenders(16, 5)
	require.NoError(t, err)
	assert.Equal(t, []model.Spender{{AccountID: "A", Total: 200}}, top)
}

func TestMergeTransitivity(t *testing.T) {
	l := newLedger(t)
	for i, id := range []string{"X", "Y", "Z"} {
		require.NoError(t, l.CreateAccount(int64(i+1), id))
	}
	_, err := l.Deposit(4, "X", 1000)
	require.NoError(t, err)
	_, err = l.Pay(5, "X", 500)
	require.NoError(t, err)

	require.NoError(t, l.MergeAccounts(6, "Y", "X"))
	require.NoError(t, l.MergeAccounts(7, "Z", "Y"))

	for _, id := range []string{"X", "Y", "Z"} {
		root, err := l.Resolve(id)
		require.NoError(t, err)
		assert.Equal(t, "Z", root, "Resolve(%s)", id)
	}
	assertBalance(t, l, "Z", 500)

	got, err := l.Balance(day+5, "Z", day+5)
	require.NoError(t, err)
	assert.Equal(t, int64(510), got)

	got, err = l.Balance(day+6, "X", day+4)
	require.NoError(t, err)
	assert.Equal(t, int64(500), got)

	top, err := l.TopSpenders(day+7, 3)
	require.NoError(t, err)
	assert.Equal(t, []model.Spender{{AccountID: "Z", Total: 500}}, top)
}

func TestCashbackIdempotent(t *testing.T) {
	l := newLedger(t)
	seedScenario(t, l)

	ts := day + 6
	for i := 0; i < 3; i++ {
		status, err := l.PaymentStatus(ts, "A", "payment1")
		require.NoError(t, err)
		assert.Equal(t, model.StatusCashbackReceived, status)
		ts++
		got, err := l.Balance(ts, "A", ts)
		require.NoError(t, err)
		assert.Equal(t, int64(2004), got)
		ts++
	}
	assertBalance(t, l, "A", 2004)
}

func TestCashbackDueAtOperationInstant(t *testing.T) {
	policy := payments.DefaultPolicy()
	policy.Delay = 10
	l := newLedgerWithPolicy(t, policy)
	seedScenario(t, l)

	// payment1 falls due at 16, the instant of this deposit.
	bal, err := l.Deposit(16, "A", 100)
	require.NoError(t, err)
	assert.Equal(t, int64(2104), bal)

	a, err := l.Account("A")
	require.NoError(t, err)
	assert.Equal(t, model.Entry{Timestamp: 16, Balance: 2104}, a.History[len(a.History)-1])

	got, err := l.Balance(17, "A", 15)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), got)
}

func TestBalanceBaseline(t *testing.T) {
	l := newLedger(t)
	require.NoError(t, l.CreateAccount(5, "A"))
	_, err := l.Deposit(10, "A", 70)
	require.NoError(t, err)

	for _, at := range []int64{-100, 0, 5, 9} {
		got, err := l.Balance(20+at+100, "A", at)
		require.NoError(t, err)
		assert.Zero(t, got, "at=%d", at)
	}
}

func TestRecreateRetiredIdentifier(t *testing.T) {
	l := newLedger(t)
	seedScenario(t, l)
	require.NoError(t, l.MergeAccounts(9, "A", "B"))

	require.NoError(t, l.CreateAccount(10, "B"))
	_, err := l.Deposit(11, "B", 5)
	require.NoError(t, err)

	assertBalance(t, l, "B", 5)
	assertBalance(t, l, "A", 3000)
	root, err := l.Resolve("B")
	require.NoError(t, err)
	assert.Equal(t, "B", root)

	_, err = l.PaymentStatus(12, "B", "payment1")
	assert.ErrorIs(t, err, model.ErrPaymentNotFound, "the new B has no payments")
}

func TestNew_InvalidPolicy(t *testing.T) {
	policy := payments.DefaultPolicy()
	policy.Scope = "global"
	_, err := New(policy, nil)
	assert.Error(t, err)
}

func TestNow(t *testing.T) {
	l := newLedger(t)
	_, ok := l.Now()
	assert.False(t, ok)

	require.NoError(t, l.CreateAccount(4, "A"))
	_, err := l.Deposit(3, "A", 1)
	require.Error(t, err)
	now, ok := l.Now()
	assert.True(t, ok)
	assert.Equal(t, int64(4), now)
}

func TestMergesRecorded(t *testing.T) {
	l := newLedger(t)
	seedScenario(t, l)
	require.NoError(t, l.MergeAccounts(9, "A", "B"))
	assert.Equal(t, []merge.Edge{{Retired: "B", Surviving: "A", Timestamp: 9}}, l.Merges())
}

func TestPayNearEndOfTime(t *testing.T) {
	l := newLedger(t)
	require.NoError(t, l.CreateAccount(1, "A"))
	_, err := l.Deposit(2, "A", 100)
	require.NoError(t, err)

	_, err = l.Pay(math.MaxInt64-998, "A", 50)
	assert.ErrorIs(t, err, model.ErrOutOfOrder)

	// The ledger keeps accepting later operations.
	bal, err := l.Deposit(math.MaxInt64-997, "A", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(101), bal)
	require.NoError(t, l.CreateAccount(math.MaxInt64-996, "B"))
}

func TestDepositOverflowRejected(t *testing.T) {
	l := newLedger(t)
	require.NoError(t, l.CreateAccount(1, "A"))
	_, err := l.Deposit(2, "A", math.MaxInt64)
	require.NoError(t, err)

	_, err = l.Deposit(3, "A", 1)
	assert.ErrorIs(t, err, model.ErrInvalidAmount)
	assertBalance(t, l, "A", math.MaxInt64)
}

func TestSession(t *testing.T) {
	a := newLedger(t)
	b := newLedger(t)
	assert.NotEmpty(t, a.Session())
	assert.NotEqual(t, a.Session(), b.Session())
}
