package script

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/saltyjared/banking-system/internal/model"
)

// Ledger is the operation surface a Runner drives.
type Ledger interface {
	CreateAccount(ts int64, id string) error
	Deposit(ts int64, id string, amount int64) (int64, error)
	Transfer(ts int64, fromID, toID string, amount int64) (int64, error)
	Pay(ts int64, id string, amount int64) (string, error)
	PaymentStatus(ts int64, id, paymentID string) (model.PaymentStatus, error)
	TopSpenders(ts int64, n int) ([]model.Spender, error)
	MergeAccounts(ts int64, survivingID, retiredID string) error
	Balance(ts int64, id string, at int64) (int64, error)
}

// Result is the outcome of one operation.
type Result struct {
	Op     Op
	Output string
	Err    error
}

// String renders the result as one output line.
func (r Result) String() string {
	if r.Err != nil {
		return fmt.Sprintf("%d %s -> error: %v", r.Op.Timestamp, r.Op.Name, r.Err)
	}
	return fmt.Sprintf("%d %s -> %s", r.Op.Timestamp, r.Op.Name, r.Output)
}

// Runner replays operations against a ledger.
type Runner struct {
	ledger Ledger
}

// NewRunner creates a Runner over l.
func NewRunner(l Ledger) *Runner {
	return &Runner{ledger: l}
}

// Run executes op. Malformed arguments are reported as the op's error.
func (r *Runner) Run(op Op) Result {
	out, err := r.dispatch(op)
	return Result{Op: op, Output: out, Err: err}
}

// RunAll executes ops in order. With failFast it stops after the first
// failing op.
func (r *Runner) RunAll(ops []Op, failFast bool) []Result {
	results := make([]Result, 0, len(ops))
	for _, op := range ops {
		res := r.Run(op)
		results = append(results, res)
		if failFast && res.Err != nil {
			break
		}
	}
	return results
}

func (r *Runner) dispatch(op Op) (string, error) {
	ts, a := op.Timestamp, op.Args
	switch op.Name {
	case OpCreateAccount:
		if err := r.ledger.CreateAccount(ts, a[0]); err != nil {
			return "", err
		}
		return "true", nil

	case OpDeposit:
		amount, err := parseAmount(a[1])
		if err != nil {
			return "", err
		}
		return formatInt(r.ledger.Deposit(ts, a[0], amount))

	case OpTransfer:
		amount, err := parseAmount(a[2])
		if err != nil {
			return "", err
		}
		return formatInt(r.ledger.Transfer(ts, a[0], a[1], amount))

	case OpPay:
		amount, err := parseAmount(a[1])
		if err != nil {
			return "", err
		}
		return r.ledger.Pay(ts, a[0], amount)

	case OpGetPaymentStatus:
		status, err := r.ledger.PaymentStatus(ts, a[0], a[1])
		return string(status), err

	case OpTopSpenders:
		n, err := strconv.Atoi(a[0])
		if err != nil {
			return "", fmt.Errorf("parsing count %q: %w", a[0], err)
		}
		spenders, err := r.ledger.TopSpenders(ts, n)
		if err != nil {
			return "", err
		}
		return FormatSpenders(spenders), nil

	case OpMergeAccounts:
		if err := r.ledger.MergeAccounts(ts, a[0], a[1]); err != nil {
			return "", err
		}
		return "true", nil

	case OpGetBalance:
		at, err := strconv.ParseInt(a[1], 10, 64)
		if err != nil {
			return "", fmt.Errorf("parsing time %q: %w", a[1], err)
		}
		return formatInt(r.ledger.Balance(ts, a[0], at))
	}
	return "", fmt.Errorf("unknown operation %q", op.Name)
}

// FormatSpenders renders a ranking as "A(200), B(0)".
func FormatSpenders(spenders []model.Spender) string {
	parts := make([]string, len(spenders))
	for i, s := range spenders {
		parts[i] = s.String()
	}
	return strings.Join(parts, ", ")
}

func parseAmount(s string) (int64, error) {
	amount, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing amount %q: %w", s, err)
	}
	return amount, nil
}

func formatInt(v int64, err error) (string, error) {
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(v, 10), nil
}
