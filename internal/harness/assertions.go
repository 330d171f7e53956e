package harness

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/bountylist/internal/store"
	"github.com/roach88/bountylist/internal/todo"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Trace    []TraceEvent
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, event := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] %s as %s: %s\n", event.Step, event.Op, event.As, event.Outcome)
	}
	return buf.String()
}

func (h *Harness) evaluate(a Assertion, trace []TraceEvent) error {
	switch a.Type {
	case AssertBalance:
		return h.assertBalance(a, trace)
	case AssertListItems:
		return h.assertListItems(a, trace)
	case AssertAccountAbsent:
		return h.assertAccountAbsent(a, trace)
	case AssertAccountClosed:
		return h.assertAccountClosed(a, trace)
	case AssertTraceCount:
		return assertTraceCount(a, trace)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

// assertBalance reads the account's committed balance from the ledger.
// An account without a ledger row has a zero balance.
func (h *Harness) assertBalance(a Assertion, trace []TraceEvent) error {
	addr, ok := h.accounts[a.Account]
	if !ok {
		return fmt.Errorf("unknown account label %q", a.Account)
	}

	var actual uint64
	st, err := h.store.ReadAccount(h.ctx, addr)
	switch {
	case errors.Is(err, store.ErrNotFound):
	case err != nil:
		return err
	default:
		actual = st.Lamports
	}

	if actual != a.Lamports {
		return &AssertionError{
			Type:     AssertBalance,
			Expected: fmt.Sprintf("%s holds %d lamports", a.Account, a.Lamports),
			Actual:   fmt.Sprintf("%d lamports", actual),
			Trace:    trace,
		}
	}
	return nil
}

// assertListItems compares the list's items, in order, by label.
func (h *Harness) assertListItems(a Assertion, trace []TraceEvent) error {
	prefix := listLabel(a.Owner, a.List)
	addr, ok := h.accounts[prefix]
	if !ok {
		return fmt.Errorf("unknown list %q", prefix)
	}
	list, err := todo.FetchList(h.rt, addr)
	if err != nil {
		return err
	}

	actual := make([]string, 0, len(list.Items))
	for _, item := range list.Items {
		label, ok := h.labels[item]
		if !ok {
			actual = append(actual, item.String())
			continue
		}
		actual = append(actual, strings.TrimPrefix(label, prefix+":"))
	}

	expected := a.Items
	if expected == nil {
		expected = []string{}
	}
	if !slices.Equal(actual, expected) {
		return &AssertionError{
			Type:     AssertListItems,
			Expected: fmt.Sprintf("%s holds %v", prefix, expected),
			Actual:   fmt.Sprintf("%v", actual),
			Trace:    trace,
		}
	}
	return nil
}

// assertAccountAbsent checks that the account has no ledger row: it was
// never created, or it was reclaimed once it held neither lamports nor data.
func (h *Harness) assertAccountAbsent(a Assertion, trace []TraceEvent) error {
	addr, ok := h.accounts[a.Account]
	if !ok {
		return fmt.Errorf("unknown account label %q", a.Account)
	}

	st, err := h.store.ReadAccount(h.ctx, addr)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return &AssertionError{
		Type:     AssertAccountAbsent,
		Expected: fmt.Sprintf("%s has no ledger row", a.Account),
		Actual:   fmt.Sprintf("%d lamports, %d data bytes (seq %d)", st.Lamports, len(st.Data), st.Seq),
		Trace:    trace,
	}
}

// assertAccountClosed checks that the account's ledger row is a drained
// record carrying the closed marker.
func (h *Harness) assertAccountClosed(a Assertion, trace []TraceEvent) error {
	addr, ok := h.accounts[a.Account]
	if !ok {
		return fmt.Errorf("unknown account label %q", a.Account)
	}

	actual := "no ledger row"
	st, err := h.store.ReadAccount(h.ctx, addr)
	switch {
	case errors.Is(err, store.ErrNotFound):
	case err != nil:
		return err
	case st.Lamports == 0 && todo.IsClosed(st.Data):
		return nil
	default:
		actual = fmt.Sprintf("%d lamports, closed marker %t (seq %d)", st.Lamports, todo.IsClosed(st.Data), st.Seq)
	}
	return &AssertionError{
		Type:     AssertAccountClosed,
		Expected: fmt.Sprintf("%s is closed with 0 lamports", a.Account),
		Actual:   actual,
		Trace:    trace,
	}
}

// assertTraceCount checks the number of events matching op and outcome.
func assertTraceCount(a Assertion, trace []TraceEvent) error {
	count := 0
	for _, event := range trace {
		if a.Op != "" && event.Op != a.Op {
			continue
		}
		if a.Outcome != "" && event.Outcome != a.Outcome {
			continue
		}
		count++
	}

	if count != a.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d events (op=%q outcome=%q)", a.Count, a.Op, a.Outcome),
			Actual:   fmt.Sprintf("%d events", count),
			Trace:    trace,
		}
	}
	return nil
}
