package harness

import (
	"context"
	"crypto/ed25519"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/bits"
	"slices"

	"github.com/roach88/bountylist/internal/address"
	"github.com/roach88/bountylist/internal/runtime"
	"github.com/roach88/bountylist/internal/store"
	"github.com/roach88/bountylist/internal/testutil"
	"github.com/roach88/bountylist/internal/todo"
)

// Harness executes one scenario against a fresh runtime and ledger.
type Harness struct {
	ctx      context.Context
	scenario *Scenario
	store    *store.Store
	rt       *runtime.Runtime
	keys     *testutil.Keyring
	labels   map[address.Address]string
	accounts map[string]address.Address
	nonce    uint64
	logger   *slog.Logger
}

// Option configures a Harness.
type Option func(*Harness)

// WithLogger sets the logger for step progress. The default discards output.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) { h.logger = l }
}

// Run executes a scenario and returns the result.
//
// Each scenario runs against a fresh in-memory ledger. Actors are funded in
// label order, then steps are submitted one at a time to the runtime's
// transaction loop, then assertions are evaluated.
//
// The returned error covers failures of the harness itself (ledger, setup,
// a step that cannot be built). Unexpected step outcomes and failed
// assertions are reported in Result.Errors.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	return RunContext(context.Background(), scenario, opts...)
}

// RunContext is Run with a caller-supplied context.
func RunContext(ctx context.Context, scenario *Scenario, opts ...Option) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create store: %w", err)
	}
	defer st.Close()

	rt, err := runtime.Open(ctx, st,
		runtime.WithTokenGenerator(testutil.NewSequentialTokens(scenario.Name)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open runtime: %w", err)
	}
	rt.Register(todo.ProgramID, todo.Program{})

	loopCtx, stopLoop := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- rt.Run(loopCtx) }()
	defer func() {
		rt.Stop()
		<-done
		stopLoop()
	}()

	h := &Harness{
		ctx:      ctx,
		scenario: scenario,
		store:    st,
		rt:       rt,
		keys:     testutil.NewKeyring(),
		labels:   make(map[address.Address]string),
		accounts: make(map[string]address.Address),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}

	if err := h.fund(); err != nil {
		return nil, fmt.Errorf("setup failed: %w", err)
	}

	result := NewResult()
	for i := range scenario.Steps {
		event, err := h.executeStep(i+1, &scenario.Steps[i])
		if err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i+1, scenario.Steps[i].Op, err)
		}
		result.Trace = append(result.Trace, event)

		want := scenario.Steps[i].Expect
		if want == "" {
			want = OutcomeOK
		}
		if event.Outcome != want {
			result.AddError(fmt.Sprintf("step %d (%s): expected %s, got %s",
				i+1, event.Op, want, event.Outcome))
		}
	}

	for i, a := range scenario.Assertions {
		if err := h.evaluate(a, result.Trace); err != nil {
			result.AddError(fmt.Sprintf("assertion %d: %v", i+1, err))
		}
	}

	h.logger.Info("scenario finished",
		"scenario", scenario.Name,
		"steps", len(result.Trace),
		"pass", result.Pass,
	)
	return result, nil
}

// fund airdrops each actor's starting balance in label order.
func (h *Harness) fund() error {
	labels := make([]string, 0, len(h.scenario.Actors))
	for label := range h.scenario.Actors {
		labels = append(labels, label)
	}
	slices.Sort(labels)

	for _, label := range labels {
		addr := h.actor(label)
		lamports := h.scenario.Actors[label]
		if lamports == 0 {
			continue
		}
		if lamports > math.MaxInt64 {
			return fmt.Errorf("fund %s: %d lamports exceeds the ledger maximum", label, lamports)
		}
		if _, err := h.rt.Airdrop(h.ctx, addr, lamports); err != nil {
			return fmt.Errorf("fund %s: %w", label, err)
		}
	}
	return nil
}

func (h *Harness) executeStep(n int, step *Step) (TraceEvent, error) {
	event := TraceEvent{Step: n, Op: step.Op, As: step.As}

	var (
		list address.Address
		run  func() (*runtime.Receipt, error)
	)
	switch step.Op {
	case OpNewList:
		owner := h.actor(step.As)
		ix, addr, err := todo.NewListInstruction(owner, step.List, *step.Capacity)
		if err != nil {
			return event, err
		}
		list = addr
		h.label(list, listLabel(step.As, step.List))
		run = func() (*runtime.Receipt, error) { return h.execute(step.As, ix) }

	case OpAdd:
		ownerLabel := firstNonEmpty(step.Owner, step.As)
		owner := h.actor(ownerLabel)
		user := h.actor(step.As)
		bounty, err := h.bounty(step)
		if err != nil {
			return event, err
		}
		ix, item, err := todo.AddInstruction(owner, step.List, user, step.Item, bounty)
		if err != nil {
			return event, err
		}
		if list, _, err = todo.FindListAddress(owner, step.List); err != nil {
			return event, err
		}
		h.label(list, listLabel(ownerLabel, step.List))
		h.label(item, itemLabel(ownerLabel, step.List, step.Item, step.As))
		run = func() (*runtime.Receipt, error) { return h.execute(step.As, ix) }

	case OpCancel:
		ownerLabel := firstNonEmpty(step.Owner, step.As)
		creatorLabel := firstNonEmpty(step.AddedBy, step.As)
		owner := h.actor(ownerLabel)
		creator := h.actor(creatorLabel)
		refund := h.actor(firstNonEmpty(step.RefundTo, creatorLabel))
		var err error
		if list, _, err = todo.FindListAddress(owner, step.List); err != nil {
			return event, err
		}
		item, _, err := todo.FindItemAddress(list, creator, step.Item)
		if err != nil {
			return event, err
		}
		ix, err := todo.CancelInstruction(owner, step.List, item, refund, h.actor(step.As))
		if err != nil {
			return event, err
		}
		h.label(list, listLabel(ownerLabel, step.List))
		h.label(item, itemLabel(ownerLabel, step.List, step.Item, creatorLabel))
		run = func() (*runtime.Receipt, error) { return h.execute(step.As, ix) }

	case OpAirdrop:
		to := h.actor(step.As)
		run = func() (*runtime.Receipt, error) { return h.rt.Airdrop(h.ctx, to, step.Amount) }

	default:
		return event, fmt.Errorf("unknown op %q", step.Op)
	}

	before := h.balances()
	rec, err := run()
	if err != nil && rec == nil && step.Op != OpAirdrop {
		return event, err
	}
	if err := h.ctx.Err(); err != nil {
		return event, err
	}

	event.Outcome = OutcomeOK
	if err != nil {
		event.Outcome = runtime.ErrorName(err)
	}
	if rec != nil {
		event.Seq = rec.Seq
		event.Token = rec.Token
	}
	if event.Deltas, err = h.deltas(before); err != nil {
		return event, err
	}
	if !list.IsZero() {
		if l, err := todo.FetchList(h.rt, list); err == nil {
			n := len(l.Items)
			event.Items = &n
		}
	}

	h.logger.Info("step executed",
		"step", n,
		"op", step.Op,
		"as", step.As,
		"outcome", event.Outcome,
	)
	return event, nil
}

// execute signs ix as label, submits it and waits for its result.
func (h *Harness) execute(label string, ix runtime.Instruction) (*runtime.Receipt, error) {
	h.nonce++
	tx := runtime.NewTransaction(ix, h.keys.Get(label), h.nonce)
	select {
	case res := <-h.rt.Submit(tx):
		return res.Receipt, res.Err
	case <-h.ctx.Done():
		return nil, h.ctx.Err()
	}
}

// bounty resolves a step's bounty, absolute or relative to the item's
// minimum balance.
func (h *Harness) bounty(step *Step) (uint64, error) {
	if step.Bounty != nil {
		return *step.Bounty, nil
	}
	minimum := h.rt.MinimumBalance(todo.ItemSpace(step.Item))
	offset := *step.BountyOverMinimum
	if offset < 0 && uint64(-offset) > minimum {
		return 0, fmt.Errorf("bounty_over_minimum %d is below zero (minimum %d)", offset, minimum)
	}
	return uint64(int64(minimum) + offset), nil
}

// actor returns the address of an actor, labelling it on first use.
func (h *Harness) actor(label string) address.Address {
	key := h.keys.Get(label)
	addr := address.FromPublicKey(key.Public().(ed25519.PublicKey))
	h.label(addr, label)
	return addr
}

func (h *Harness) label(addr address.Address, label string) {
	h.labels[addr] = label
	h.accounts[label] = addr
}

// balances snapshots every labelled account.
func (h *Harness) balances() map[address.Address]uint64 {
	out := make(map[address.Address]uint64, len(h.labels))
	for addr := range h.labels {
		out[addr] = h.rt.Balance(addr)
	}
	return out
}

// deltas returns the nonzero balance changes since before, keyed by label.
func (h *Harness) deltas(before map[address.Address]uint64) (map[string]int64, error) {
	var out map[string]int64
	for addr, label := range h.labels {
		diff, err := balanceDelta(before[addr], h.rt.Balance(addr))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", label, err)
		}
		if diff == 0 {
			continue
		}
		if out == nil {
			out = make(map[string]int64)
		}
		out[label] = diff
	}
	return out, nil
}

// balanceDelta returns after-before as a signed value. A change whose
// magnitude does not fit in an int64 is an error.
func balanceDelta(before, after uint64) (int64, error) {
	diff, borrow := bits.Sub64(after, before, 0)
	if borrow == 0 {
		if diff > math.MaxInt64 {
			return 0, fmt.Errorf("balance change +%d overflows int64", diff)
		}
		return int64(diff), nil
	}
	magnitude := -diff
	if magnitude > 1<<63 {
		return 0, fmt.Errorf("balance change -%d overflows int64", magnitude)
	}
	return int64(-magnitude), nil
}

func listLabel(owner, list string) string {
	return owner + ":" + list
}

func itemLabel(owner, list, item, creator string) string {
	return listLabel(owner, list) + ":" + item + "@" + creator
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
