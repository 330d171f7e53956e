package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Op is a scenario step kind.
type Op string

const (
	OpNewList Op = "new_list"
	OpAdd     Op = "add"
	OpCancel  Op = "cancel"
	OpAirdrop Op = "airdrop"
)

// OutcomeOK is the outcome of a step that succeeded.
const OutcomeOK = "ok"

// Scenario is a scripted sequence of bounty list operations.
type Scenario struct {
	// Name identifies the scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description,omitempty"`

	// Actors maps each actor label to its starting balance in lamports.
	// Actors are funded by airdrop in label order before the first step.
	Actors map[string]uint64 `yaml:"actors"`

	// Steps run in order. A step whose outcome differs from its expect
	// fails the scenario but does not stop it.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final ledger and trace.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is one operation performed by an actor.
type Step struct {
	Op Op `yaml:"op"`

	// As is the acting (signing) actor.
	As string `yaml:"as"`

	// List is the list name (new_list, add, cancel).
	List string `yaml:"list,omitempty"`

	// Capacity is the new list's capacity (new_list).
	Capacity *uint16 `yaml:"capacity,omitempty"`

	// Owner is the list owner (add, cancel). Defaults to As.
	Owner string `yaml:"owner,omitempty"`

	// Item is the item name (add, cancel).
	Item string `yaml:"item,omitempty"`

	// Bounty is the absolute bounty in lamports (add).
	Bounty *uint64 `yaml:"bounty,omitempty"`

	// BountyOverMinimum is the bounty relative to the item's minimum
	// balance (add). Negative values produce a bounty below the minimum.
	BountyOverMinimum *int64 `yaml:"bounty_over_minimum,omitempty"`

	// AddedBy is the item's creator (cancel). Defaults to As.
	AddedBy string `yaml:"added_by,omitempty"`

	// RefundTo is the account passed as the creator to refund (cancel).
	// Defaults to AddedBy.
	RefundTo string `yaml:"refund_to,omitempty"`

	// Amount is the airdrop amount in lamports (airdrop).
	Amount uint64 `yaml:"amount,omitempty"`

	// Expect is the expected outcome. Defaults to "ok".
	Expect string `yaml:"expect,omitempty"`
}

// Assertion validates final ledger state or the trace.
type Assertion struct {
	// Type is one of balance, list_items, account_absent, account_closed,
	// trace_count.
	Type string `yaml:"type"`

	// Account is an account label (balance, account_absent, account_closed).
	Account string `yaml:"account,omitempty"`

	// Lamports is the expected balance (balance).
	Lamports uint64 `yaml:"lamports,omitempty"`

	// Owner and List identify a list (list_items).
	Owner string `yaml:"owner,omitempty"`
	List  string `yaml:"list,omitempty"`

	// Items is the expected item order as "<item>@<creator>" (list_items).
	Items []string `yaml:"items,omitempty"`

	// Op and Outcome filter trace events (trace_count). Empty matches all.
	Op      Op     `yaml:"op,omitempty"`
	Outcome string `yaml:"outcome,omitempty"`

	// Count is the expected number of matching events (trace_count).
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertBalance       = "balance"
	AssertListItems     = "list_items"
	AssertAccountAbsent = "account_absent"
	AssertAccountClosed = "account_closed"
	AssertTraceCount    = "trace_count"
)

// LoadScenario reads and parses a scenario YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(filepath.Base(path), data)
}

// ParseScenario parses scenario YAML. filename is used in error positions.
//
// Returns an error if the document violates the schema, contains unknown
// fields, or references undeclared actors.
func ParseScenario(filename string, data []byte) (*Scenario, error) {
	if err := checkSchema(filename, data); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks what the schema cannot express: per-op required
// fields and references to declared actors.
func validateScenario(s *Scenario) error {
	if len(s.Actors) == 0 {
		return fmt.Errorf("at least one actor is required")
	}
	for i := range s.Steps {
		if err := validateStep(s, &s.Steps[i]); err != nil {
			return fmt.Errorf("step %d (%s): %w", i+1, s.Steps[i].Op, err)
		}
	}
	for i := range s.Assertions {
		if err := validateAssertion(s, &s.Assertions[i]); err != nil {
			return fmt.Errorf("assertion %d (%s): %w", i+1, s.Assertions[i].Type, err)
		}
	}
	return nil
}

func validateStep(s *Scenario, step *Step) error {
	for _, label := range []string{step.As, step.Owner, step.AddedBy, step.RefundTo} {
		if err := s.checkActor(label); err != nil {
			return err
		}
	}

	switch step.Op {
	case OpNewList:
		if step.List == "" {
			return fmt.Errorf("list is required")
		}
		if step.Capacity == nil {
			return fmt.Errorf("capacity is required")
		}
	case OpAdd:
		if step.List == "" || step.Item == "" {
			return fmt.Errorf("list and item are required")
		}
		if (step.Bounty == nil) == (step.BountyOverMinimum == nil) {
			return fmt.Errorf("exactly one of bounty or bounty_over_minimum is required")
		}
	case OpCancel:
		if step.List == "" || step.Item == "" {
			return fmt.Errorf("list and item are required")
		}
	case OpAirdrop:
		if step.Amount == 0 {
			return fmt.Errorf("amount is required")
		}
	default:
		return fmt.Errorf("unknown op %q", step.Op)
	}
	return nil
}

func validateAssertion(s *Scenario, a *Assertion) error {
	switch a.Type {
	case AssertBalance, AssertAccountAbsent, AssertAccountClosed:
		if a.Account == "" {
			return fmt.Errorf("account is required")
		}
		owner, _, _ := strings.Cut(a.Account, ":")
		return s.checkActor(owner)
	case AssertListItems:
		if a.Owner == "" || a.List == "" {
			return fmt.Errorf("owner and list are required")
		}
		for _, item := range a.Items {
			_, creator, ok := strings.Cut(item, "@")
			if !ok {
				return fmt.Errorf("item %q must be <item>@<creator>", item)
			}
			if err := s.checkActor(creator); err != nil {
				return err
			}
		}
		return s.checkActor(a.Owner)
	case AssertTraceCount:
		return nil
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

// checkActor reports whether label is empty or a declared actor.
func (s *Scenario) checkActor(label string) error {
	if label == "" {
		return nil
	}
	if _, ok := s.Actors[label]; !ok {
		return fmt.Errorf("undeclared actor %q", label)
	}
	return nil
}
