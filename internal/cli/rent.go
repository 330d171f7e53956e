package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/bountylist/internal/todo"
)

// RentResult is the minimum balance of an account size.
type RentResult struct {
	Space    int    `json:"space"`
	Lamports uint64 `json:"lamports"`
}

func (r RentResult) String() string {
	return fmt.Sprintf("%d lamports for %d bytes", r.Lamports, r.Space)
}

// NewRentCommand creates the rent command.
func NewRentCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		list     string
		capacity uint16
		item     string
	)

	cmd := &cobra.Command{
		Use:   "rent [bytes]",
		Short: "Print the minimum balance for an account size",
		Long: `Print the rent-exempt minimum balance for an account of [bytes] bytes,
or for the account a list or item would occupy.

Examples:
  bountylist rent 124
  bountylist rent --list groceries --capacity 2
  bountylist rent --item milk`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var space int
			switch {
			case len(args) == 1 && list == "" && item == "":
				n, err := strconv.Atoi(args[0])
				if err != nil || n < 0 {
					return NewExitError(ExitCommandError, fmt.Sprintf("invalid size %q", args[0]))
				}
				space = n
			case len(args) == 0 && list != "" && item == "":
				name, err := normalizeName("list", list)
				if err != nil {
					return err
				}
				space = todo.ListSpace(name, capacity)
			case len(args) == 0 && item != "" && list == "":
				name, err := normalizeName("item", item)
				if err != nil {
					return err
				}
				space = todo.ItemSpace(name)
			default:
				return NewExitError(ExitCommandError, "give exactly one of [bytes], --list or --item")
			}

			return rootOpts.formatter(cmd).Success(RentResult{
				Space:    space,
				Lamports: rootOpts.cfg.Rent.MinimumBalance(space),
			})
		},
	}

	cmd.Flags().StringVar(&list, "list", "", "list name")
	cmd.Flags().Uint16Var(&capacity, "capacity", 0, "list capacity (with --list)")
	cmd.Flags().StringVar(&item, "item", "", "item name")
	return cmd
}
