// Package script reads operation scripts and replays them against a ledger.
//
// A script is CSV with one operation per row: the timestamp, the operation
// name, then its arguments. Lines starting with '#' are comments.
//
//	1,create_account,A
//	3,deposit,A,2000
//	6,pay,A,200
//	12,get_balance,A,10
package script

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Operation names, as accepted in scripts.
const (
	OpCreateAccount    = "create_account"
	OpDeposit          = "deposit"
	OpTransfer         = "transfer"
	OpPay              = "pay"
	OpGetPaymentStatus = "get_payment_status"
	OpTopSpenders      = "top_spenders"
	OpMergeAccounts    = "merge_accounts"
	OpGetBalance       = "get_balance"
)

// arity is the number of arguments each operation takes after its name.
var arity = map[string]int{
	OpCreateAccount:    1,
	OpDeposit:          2,
	OpTransfer:         3,
	OpPay:              2,
	OpGetPaymentStatus: 2,
	OpTopSpenders:      1,
	OpMergeAccounts:    2,
	OpGetBalance:       2,
}

const (
	colTimestamp = 0
	colOperation = 1
	colArgs      = 2
)

// Op is one parsed script row.
type Op struct {
	Line      int
	Timestamp int64
	Name      string
	Args      []string
}

// String renders the op the way it appeared in the script.
func (o Op) String() string {
	parts := append([]string{strconv.FormatInt(o.Timestamp, 10), o.Name}, o.Args...)
	return strings.Join(parts, ",")
}

// Parse reads every operation from r. Unknown operations and wrong argument
// counts are reported with their line number.
func Parse(r io.Reader) ([]Op, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var ops []Op
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading script: %w", err)
		}
		line, _ := cr.FieldPos(0)
		op, err := unmarshalOp(rec)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		op.Line = line
		ops = append(ops, op)
	}
	return ops, nil
}

func unmarshalOp(rec []string) (Op, error) {
	if len(rec) < colArgs {
		return Op{}, fmt.Errorf("expected timestamp and operation, got %d fields", len(rec))
	}
	ts, err := strconv.ParseInt(strings.TrimSpace(rec[colTimestamp]), 10, 64)
	if err != nil {
		return Op{}, fmt.Errorf("parsing timestamp %q: %w", rec[colTimestamp], err)
	}
	name := strings.ToLower(strings.TrimSpace(rec[colOperation]))
	want, ok := arity[name]
	if !ok {
		return Op{}, fmt.Errorf("unknown operation %q", rec[colOperation])
	}
	args := rec[colArgs:]
	if len(args) != want {
		return Op{}, fmt.Errorf("%s takes %d arguments, got %d", name, want, len(args))
	}
	for i := range args {
		args[i] = strings.TrimSpace(args[i])
	}
	return Op{Timestamp: ts, Name: name, Args: args}, nil
}
