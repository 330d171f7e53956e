package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/bountylist/internal/runtime"
)

// HistoryResult lists receipts in sequence order.
type HistoryResult struct {
	Receipts []*runtime.Receipt `json:"receipts"`
}

func (r HistoryResult) String() string {
	if len(r.Receipts) == 0 {
		return mutedStyle.Render("no transactions")
	}
	lines := make([]string, 0, len(r.Receipts))
	for _, rec := range r.Receipts {
		line := rec.String()
		if rec.Status == runtime.StatusOK {
			line = successStyle.Render(line)
		} else {
			line = errorStyle.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		after int64
		limit int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded transactions, including rejected ones",
		Long: `List receipts from the ledger in sequence order.

Examples:
  bountylist history
  bountylist history --after 10 --limit 5 --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), rootOpts)
			if err != nil {
				return err
			}
			defer s.Close()

			records, err := s.store.ReadTransactions(cmd.Context(), after, limit)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to read history", err)
			}
			result := HistoryResult{Receipts: make([]*runtime.Receipt, 0, len(records))}
			for _, r := range records {
				result.Receipts = append(result.Receipts, runtime.FromRecord(r))
			}
			return rootOpts.formatter(cmd).Success(result)
		},
	}

	cmd.Flags().Int64Var(&after, "after", 0, "only receipts with seq greater than this")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of receipts (0 = all)")
	return cmd
}
