package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/roach88/bountylist/internal/address"
	"github.com/roach88/bountylist/internal/store"
)

// Ledger persists committed state. Implemented by *store.Store.
type Ledger interface {
	LoadAccounts(ctx context.Context) ([]store.AccountState, error)
	LastSeq(ctx context.Context) (int64, error)
	CommittedIDs(ctx context.Context) ([]string, error)
	AirdropsSince(ctx context.Context, since time.Time) ([]store.TransactionRecord, error)
	Commit(ctx context.Context, rec store.TransactionRecord, updated []store.AccountState, reclaimed []address.Address) error
}

// Runtime hosts programs and executes transactions against its accounts.
//
// Thread-safety model:
//   - Execute(), Airdrop(), Account(): safe from any goroutine (runtime lock)
//   - Submit(): safe from any goroutine
//   - Run(): must be called from exactly one goroutine
type Runtime struct {
	mu        sync.Mutex
	accounts  map[address.Address]*Account
	programs  map[address.Address]Program
	committed map[string]struct{}

	rent    Rent
	clock   *Clock
	tokens  TokenGenerator
	ledger  Ledger
	metrics *Metrics
	faucet  *Faucet
	now     func() time.Time
	queue   *txQueue
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithRent overrides the rent schedule.
func WithRent(r Rent) Option {
	return func(rt *Runtime) { rt.rent = r }
}

// WithTokenGenerator overrides the receipt token source.
func WithTokenGenerator(g TokenGenerator) Option {
	return func(rt *Runtime) { rt.tokens = g }
}

// WithClock overrides the logical clock.
func WithClock(c *Clock) Option {
	return func(rt *Runtime) { rt.clock = c }
}

// WithLedger persists every committed transaction to l.
func WithLedger(l Ledger) Option {
	return func(rt *Runtime) { rt.ledger = l }
}

// WithRegisterer registers runtime metrics with reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(rt *Runtime) { rt.metrics = NewMetrics(reg) }
}

// WithFaucet rate limits airdrops to rps per recipient with the given burst.
// A zero rps disables limiting.
func WithFaucet(rps float64, burst int) Option {
	return func(rt *Runtime) { rt.faucet = NewFaucet(rps, burst, 0) }
}

// WithNow overrides the wall clock used by the faucet.
func WithNow(now func() time.Time) Option {
	return func(rt *Runtime) { rt.now = now }
}

// New creates an empty in-memory runtime.
func New(opts ...Option) *Runtime {
	rt := &Runtime{
		accounts:  make(map[address.Address]*Account),
		programs:  make(map[address.Address]Program),
		committed: make(map[string]struct{}),
		rent:      DefaultRent(),
		clock:     NewClock(),
		tokens:    UUIDv7Generator{},
		now:       time.Now,
		queue:     newTxQueue(),
	}
	for _, opt := range opts {
		opt(rt)
	}
	if rt.metrics == nil {
		rt.metrics = NewMetrics(nil)
	}
	return rt
}

// Open creates a runtime backed by ledger and restores its accounts,
// clock position and committed transaction ids.
func Open(ctx context.Context, ledger Ledger, opts ...Option) (*Runtime, error) {
	states, err := ledger.LoadAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("open runtime: %w", err)
	}
	seq, err := ledger.LastSeq(ctx)
	if err != nil {
		return nil, fmt.Errorf("open runtime: %w", err)
	}
	ids, err := ledger.CommittedIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("open runtime: %w", err)
	}

	opts = append([]Option{WithClock(NewClockAt(seq))}, opts...)
	opts = append(opts, WithLedger(ledger))
	rt := New(opts...)

	for _, st := range states {
		rt.accounts[st.Address] = &Account{
			Lamports: st.Lamports,
			Owner:    st.Owner,
			Data:     st.Data,
		}
	}
	for _, id := range ids {
		rt.committed[id] = struct{}{}
	}
	if err := rt.restoreFaucet(ctx); err != nil {
		return nil, fmt.Errorf("open runtime: %w", err)
	}
	rt.metrics.Accounts.Set(float64(len(rt.accounts)))

	slog.Info("runtime opened",
		"accounts", len(states),
		"seq", seq,
	)
	return rt, nil
}

// restoreFaucet replays recent airdrops into the faucet so that its limits
// hold across processes sharing one ledger.
func (rt *Runtime) restoreFaucet(ctx context.Context) error {
	if rt.faucet == nil {
		return nil
	}
	grants, err := rt.ledger.AirdropsSince(ctx, rt.now().Add(-rt.faucet.Window()))
	if err != nil {
		return err
	}
	for _, g := range grants {
		rt.faucet.Allow(g.Signer.String(), g.RecordedAt)
	}
	return nil
}

// Register installs a program at id, replacing any previous registration.
func (rt *Runtime) Register(id address.Address, p Program) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.programs[id] = p
}

// Rent returns the active rent schedule.
func (rt *Runtime) Rent() Rent {
	return rt.rent
}

// MinimumBalance returns the rent-exempt balance for space bytes.
func (rt *Runtime) MinimumBalance(space int) uint64 {
	return rt.rent.MinimumBalance(space)
}

// Account returns a copy of the committed account at addr.
func (rt *Runtime) Account(addr address.Address) (Account, bool) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.lookup(addr)
}

// Balance returns the lamports held at addr (zero if absent).
func (rt *Runtime) Balance(addr address.Address) uint64 {
	acct, _ := rt.Account(addr)
	return acct.Lamports
}

// lookup returns a copy of the account. Caller holds rt.mu.
func (rt *Runtime) lookup(addr address.Address) (Account, bool) {
	acct, ok := rt.accounts[addr]
	if !ok {
		return Account{}, false
	}
	return acct.Clone(), true
}

// Execute validates and runs tx, committing its effects only on success.
//
// The returned receipt is non-nil whenever the transaction was assigned a
// sequence number, including on failure. The error is the program's error
// wrapped in *InstructionError, or a *RuntimeError from validation.
func (rt *Runtime) Execute(ctx context.Context, tx Transaction) (*Receipt, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.execute(ctx, tx)
}

// execute runs a transaction. Caller holds rt.mu.
func (rt *Runtime) execute(ctx context.Context, tx Transaction) (*Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	id := tx.ID()
	program, known := rt.programs[tx.Instruction.ProgramID]

	rec := &Receipt{
		ID:          id,
		Seq:         rt.clock.Next(),
		Token:       rt.tokens.Generate(),
		Signer:      tx.Signer,
		Program:     tx.Instruction.ProgramID,
		Instruction: "unknown",
		Status:      StatusOK,
	}
	if namer, ok := program.(InstructionNamer); ok {
		rec.Instruction = namer.InstructionName(tx.Instruction.Data)
	}

	ictx := newInvokeContext(rt, tx)
	err := rt.validate(tx, id, known)
	if err == nil {
		if perr := program.Process(ictx, tx.Instruction); perr != nil {
			err = &InstructionError{TxID: id, Err: perr}
		}
	}

	var cs changeSet
	if err == nil {
		cs, err = ictx.finalize()
	}
	if err == nil {
		rec.Logs = ictx.logs
		if perr := rt.persist(ctx, rec, cs); perr != nil {
			// The in-memory reclamation already happened; restore from the journal.
			ictx.closed = false
			ictx.rollback()
			err = fmt.Errorf("commit transaction: %w", perr)
		}
	} else {
		ictx.rollback()
	}

	if err != nil {
		rec.Status = StatusFailed
		rec.ErrorCode = ErrorName(err)
		rec.Error = err.Error()
		rec.Logs = ictx.logs
		rt.recordFailure(ctx, rec)
		rt.metrics.observe(rec)
		slog.Info("transaction failed",
			"id", shortID(id),
			"seq", rec.Seq,
			"instruction", rec.Instruction,
			"code", rec.ErrorCode,
		)
		return rec, err
	}

	rt.committed[id] = struct{}{}
	rt.metrics.observe(rec)
	rt.metrics.Accounts.Set(float64(len(rt.accounts)))
	slog.Info("transaction committed",
		"id", shortID(id),
		"seq", rec.Seq,
		"instruction", rec.Instruction,
		"accounts", len(cs.updated),
		"reclaimed", len(cs.reclaimed),
	)
	return rec, nil
}

// validate runs the pre-execution checks in order: signature, signer metas,
// duplicate, program lookup.
func (rt *Runtime) validate(tx Transaction, id string, known bool) error {
	if err := tx.Verify(); err != nil {
		return err
	}
	if _, dup := rt.committed[id]; dup {
		return newError(ErrCodeDuplicateTransaction, tx.Signer, "transaction %s already committed", shortID(id))
	}
	if !known {
		return newError(ErrCodeUnknownProgram, tx.Instruction.ProgramID, "no program registered")
	}
	return nil
}

// persist writes a committed transaction to the ledger, if any.
func (rt *Runtime) persist(ctx context.Context, rec *Receipt, cs changeSet) error {
	if rt.ledger == nil {
		return nil
	}
	updated := make([]store.AccountState, 0, len(cs.updated))
	for addr, acct := range cs.updated {
		updated = append(updated, store.AccountState{
			Address:  addr,
			Lamports: acct.Lamports,
			Owner:    acct.Owner,
			Data:     acct.Data,
			Seq:      rec.Seq,
		})
	}
	slices.SortFunc(updated, func(a, b store.AccountState) int {
		return a.Address.Compare(b.Address)
	})
	return rt.ledger.Commit(ctx, toRecord(rec, rt.now()), updated, cs.reclaimed)
}

// recordFailure persists a failed receipt. A ledger error here does not
// replace the transaction's own error; it is logged.
func (rt *Runtime) recordFailure(ctx context.Context, rec *Receipt) {
	if rt.ledger == nil {
		return
	}
	if err := rt.ledger.Commit(ctx, toRecord(rec, rt.now()), nil, nil); err != nil {
		slog.Warn("failed to record failed transaction",
			"id", shortID(rec.ID),
			"seq", rec.Seq,
			"error", err,
		)
	}
}

// Airdrop credits amount lamports to a system account, creating it if needed.
func (rt *Runtime) Airdrop(ctx context.Context, to address.Address, amount uint64) (*Receipt, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	now := rt.now()
	if !rt.faucet.Allow(to.String(), now) {
		return nil, newError(ErrCodeRateLimited, to, "airdrop rate limit exceeded")
	}

	prev, existed := rt.lookup(to)
	if existed && prev.Owner != address.SystemProgramID {
		return nil, newError(ErrCodeIllegalOwner, to, "airdrop target is not a system account")
	}
	credited, ok := checkedAdd(prev.Lamports, amount)
	if !ok {
		return nil, newError(ErrCodeArithmeticOverflow, to, "balance overflow")
	}

	seq := rt.clock.Next()
	rec := &Receipt{
		ID:          fmt.Sprintf("airdrop-%d", seq),
		Seq:         seq,
		Token:       rt.tokens.Generate(),
		Signer:      to,
		Program:     address.SystemProgramID,
		Instruction: "airdrop",
		Status:      StatusOK,
		Logs:        []string{fmt.Sprintf("airdrop %d lamports", amount)},
	}

	next := Account{Lamports: credited, Owner: address.SystemProgramID, Data: prev.Data}
	if rt.ledger != nil {
		st := store.AccountState{Address: to, Lamports: next.Lamports, Owner: next.Owner, Data: next.Data, Seq: seq}
		if err := rt.ledger.Commit(ctx, toRecord(rec, now), []store.AccountState{st}, nil); err != nil {
			return nil, fmt.Errorf("commit airdrop: %w", err)
		}
	}
	rt.accounts[to] = &next

	rt.metrics.Airdrops.Add(float64(amount))
	rt.metrics.Accounts.Set(float64(len(rt.accounts)))
	slog.Info("airdrop",
		"to", to.String(),
		"amount", amount,
		"seq", seq,
	)
	return rec, nil
}

func toRecord(rec *Receipt, at time.Time) store.TransactionRecord {
	return store.TransactionRecord{
		ID:          rec.ID,
		Seq:         rec.Seq,
		Token:       rec.Token,
		Signer:      rec.Signer,
		Program:     rec.Program,
		Instruction: rec.Instruction,
		Status:      string(rec.Status),
		ErrorCode:   rec.ErrorCode,
		Error:       rec.Error,
		Logs:        rec.Logs,
		RecordedAt:  at,
	}
}

// FromRecord converts a persisted record back into a Receipt.
func FromRecord(r store.TransactionRecord) *Receipt {
	return &Receipt{
		ID:          r.ID,
		Seq:         r.Seq,
		Token:       r.Token,
		Signer:      r.Signer,
		Program:     r.Program,
		Instruction: r.Instruction,
		Status:      Status(r.Status),
		ErrorCode:   r.ErrorCode,
		Error:       r.Error,
		Logs:        r.Logs,
	}
}
