// Package ledger wires the sequencer, account store, merge resolver, payment
// scheduler and read views into one session that every operation passes
// through.
package ledger

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/saltyjared/banking-system/internal/accounts"
	"github.com/saltyjared/banking-system/internal/balance"
	"github.com/saltyjared/banking-system/internal/clock"
	"github.com/saltyjared/banking-system/internal/merge"
	"github.com/saltyjared/banking-system/internal/model"
	"github.com/saltyjared/banking-system/internal/payments"
	"github.com/saltyjared/banking-system/internal/ranking"
)

// Ledger is one in-memory banking session. It is not safe for concurrent
// use; callers serialize operations and supply strictly increasing
// timestamps.
type Ledger struct {
	session string
	log     *zap.Logger

	seq      *clock.Sequencer
	forest   *merge.Forest
	store    *accounts.Store
	merges   *merge.Resolver
	payments *payments.Scheduler
	balances *balance.Engine
	ranking  *ranking.View
}

// New creates an empty ledger applying policy to every payment. A nil
// logger discards log output.
func New(policy payments.Policy, logger *zap.Logger) (*Ledger, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	forest := merge.NewForest()
	store := accounts.NewStore(forest)
	sched, err := payments.NewScheduler(forest, store, policy)
	if err != nil {
		return nil, err
	}

	session := uuid.NewString()
	l := &Ledger{
		session:  session,
		log:      logger.With(zap.String("session", session)),
		seq:      clock.NewSequencer(),
		forest:   forest,
		store:    store,
		merges:   merge.NewResolver(forest, store),
		payments: sched,
		balances: balance.NewEngine(store, sched),
		ranking:  ranking.NewView(forest, sched),
	}
	l.log.Debug("ledger session started",
		zap.String("cashback_rate", policy.Rate.String()),
		zap.Int64("cashback_delay", policy.Delay),
		zap.String("rounding", string(policy.Rounding)),
		zap.String("payment_scope", string(policy.Scope)),
	)
	return l, nil
}

// Session returns the identifier of this ledger session.
func (l *Ledger) Session() string {
	return l.session
}

// CreateAccount opens account id at ts.
func (l *Ledger) CreateAccount(ts int64, id string) error {
	if err := l.begin(ts); err != nil {
		return l.reject("create_account", ts, err)
	}
	if _, err := l.store.Create(id, ts); err != nil {
		return l.reject("create_account", ts, err)
	}
	return nil
}

// Deposit credits amount to id and returns the new balance.
func (l *Ledger) Deposit(ts int64, id string, amount int64) (int64, error) {
	if err := l.begin(ts); err != nil {
		return 0, l.reject("deposit", ts, err)
	}
	bal, err := l.store.Deposit(id, ts, amount)
	if err != nil {
		return 0, l.reject("deposit", ts, err)
	}
	return bal, nil
}

// Transfer moves amount from fromID to toID and returns the source balance.
func (l *Ledger) Transfer(ts int64, fromID, toID string, amount int64) (int64, error) {
	if err := l.begin(ts); err != nil {
		return 0, l.reject("transfer", ts, err)
	}
	bal, err := l.store.Transfer(fromID, toID, ts, amount)
	if err != nil {
		return 0, l.reject("transfer", ts, err)
	}
	return bal, nil
}

// Pay debits amount from id and returns the ID of the scheduled cashback
// payment.
func (l *Ledger) Pay(ts int64, id string, amount int64) (string, error) {
	if err := l.begin(ts); err != nil {
		return "", l.reject("pay", ts, err)
	}
	p, err := l.payments.Pay(id, ts, amount)
	if err != nil {
		return "", l.reject("pay", ts, err)
	}
	l.log.Debug("payment scheduled",
		zap.String("payment", p.ID),
		zap.String("account", id),
		zap.Int64("amount", p.Amount),
		zap.Int64("cashback", p.Cashback),
		zap.Int64("cashback_at", p.CashbackAt),
	)
	return p.ID, nil
}

// PaymentStatus returns the status of paymentID made by id, or by an account
// merged into the one id resolves to.
func (l *Ledger) PaymentStatus(ts int64, id, paymentID string) (model.PaymentStatus, error) {
	if err := l.begin(ts); err != nil {
		return "", l.reject("get_payment_status", ts, err)
	}
	status, err := l.payments.Status(id, paymentID, ts)
	if err != nil {
		return "", l.reject("get_payment_status", ts, err)
	}
	return status, nil
}

// TopSpenders ranks the n active accounts that paid the most. It observes
// time but materializes no credits.
func (l *Ledger) TopSpenders(ts int64, n int) ([]model.Spender, error) {
	if err := l.seq.Admit(ts); err != nil {
		return nil, l.reject("top_spenders", ts, err)
	}
	return l.ranking.TopSpenders(n), nil
}

// MergeAccounts merges retiredID into survivingID. The retired identifier
// stops accepting writes; reads and payment lookups through it are
// redirected to the survivor.
func (l *Ledger) MergeAccounts(ts int64, survivingID, retiredID string) error {
	if err := l.begin(ts); err != nil {
		return l.reject("merge_accounts", ts, err)
	}
	bal, err := l.merges.Merge(retiredID, survivingID, ts)
	if err != nil {
		return l.reject("merge_accounts", ts, err)
	}
	l.log.Info("accounts merged",
		zap.Int64("ts", ts),
		zap.String("retired", retiredID),
		zap.String("surviving", survivingID),
		zap.Int64("balance", bal),
	)
	return nil
}

// Balance returns the balance id had at time at, observed at ts.
func (l *Ledger) Balance(ts int64, id string, at int64) (int64, error) {
	if err := l.begin(ts); err != nil {
		return 0, l.reject("get_balance", ts, err)
	}
	amount, err := l.balances.BalanceAt(id, ts, at)
	if err != nil {
		return 0, l.reject("get_balance", ts, err)
	}
	return amount, nil
}

// Now returns the latest admitted timestamp and whether any operation has
// been admitted yet.
func (l *Ledger) Now() (int64, bool) {
	return l.seq.Last()
}

// Resolve returns the active identifier id now belongs to.
func (l *Ledger) Resolve(id string) (string, error) {
	return l.merges.Resolve(id)
}

// Merges returns every merge applied so far.
func (l *Ledger) Merges() []merge.Edge {
	return l.merges.Edges()
}

// Account returns the record of the account id resolves to.
func (l *Ledger) Account(id string) (*accounts.Account, error) {
	return l.store.Lookup(id)
}

// begin admits ts and materializes every cashback due by then.
func (l *Ledger) begin(ts int64) error {
	if err := l.seq.Admit(ts); err != nil {
		return err
	}
	credits, err := l.payments.Settle(ts)
	for _, c := range credits {
		if c.Forfeited {
			l.log.Warn("cashback forfeited: balance would overflow",
				zap.String("payment", c.PaymentID),
				zap.String("account", c.AccountID),
				zap.Int64("at", c.At),
			)
			continue
		}
		l.log.Info("cashback credited",
			zap.String("payment", c.PaymentID),
			zap.String("account", c.AccountID),
			zap.Int64("amount", c.Amount),
			zap.Int64("at", c.At),
			zap.Int64("balance", c.Balance),
		)
	}
	if err != nil {
		return fmt.Errorf("settling cashback at %d: %w", ts, err)
	}
	return nil
}

func (l *Ledger) reject(op string, ts int64, err error) error {
	l.log.Debug("operation rejected", zap.String("op", op), zap.Int64("ts", ts), zap.Error(err))
	return err
}
