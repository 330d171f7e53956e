package harness

// TraceEvent records the outcome of one scenario step.
type TraceEvent struct {
	Step int `json:"step"`

	// Seq and Token come from the step's receipt. Both are zero for a
	// rejected airdrop, which produces no receipt.
	Seq   int64  `json:"seq"`
	Token string `json:"token,omitempty"`

	Op      Op     `json:"op"`
	As      string `json:"as"`
	Outcome string `json:"outcome"`

	// Deltas holds the nonzero balance changes of labelled accounts.
	Deltas map[string]int64 `json:"deltas,omitempty"`

	// Items is the number of items in the step's list afterwards, or nil
	// when the list does not exist or the step has no list.
	Items *int `json:"items,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every step matched its expect and every assertion held.
	Pass bool `json:"pass"`

	// Trace contains one event per step, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains expectation and assertion failures.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
