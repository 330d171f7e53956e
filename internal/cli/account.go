package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/bountylist/internal/address"
	"github.com/roach88/bountylist/internal/runtime"
)

// ReceiptResult is a transaction receipt plus the account it concerns.
type ReceiptResult struct {
	Receipt *runtime.Receipt `json:"receipt"`
	Account address.Address  `json:"account"`

	// Balance is the account's balance after the transaction.
	Balance uint64 `json:"balance"`
}

func (r ReceiptResult) String() string {
	lines := []string{
		successStyle.Render("✔ " + r.Receipt.String()),
		field("account", accentStyle.Render(r.Account.String())),
		field("balance", fmt.Sprintf("%d lamports", r.Balance)),
	}
	for _, l := range r.Receipt.Logs {
		lines = append(lines, mutedStyle.Render("  log: "+l))
	}
	return strings.Join(lines, "\n")
}

// BalanceResult is an account balance.
type BalanceResult struct {
	Address  address.Address `json:"address"`
	Lamports uint64          `json:"lamports"`
	Exists   bool            `json:"exists"`
}

func (r BalanceResult) String() string {
	return fmt.Sprintf("%d lamports", r.Lamports)
}

// NewAirdropCommand creates the airdrop command.
func NewAirdropCommand(rootOpts *RootOptions) *cobra.Command {
	var to string

	cmd := &cobra.Command{
		Use:   "airdrop <lamports>",
		Short: "Credit lamports to a system account",
		Long: `Credit lamports to the wallet address, or to --to.

Amounts above the configured faucet.max_airdrop are refused.

Example:
  bountylist airdrop 1000000000`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseLamports(args[0])
			if err != nil {
				return err
			}
			if limit := rootOpts.cfg.Faucet.MaxAirdrop; limit > 0 && amount > limit {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("airdrop of %d exceeds faucet.max_airdrop %d", amount, limit))
			}
			recipient, err := resolveAddress(rootOpts, to)
			if err != nil {
				return err
			}

			s, err := openSession(cmd.Context(), rootOpts)
			if err != nil {
				return err
			}
			defer s.Close()

			rec, err := s.rt.Airdrop(cmd.Context(), recipient, amount)
			if err != nil {
				return WrapExitError(ExitFailure, "airdrop refused", err)
			}
			return rootOpts.formatter(cmd).SuccessWithTrace(ReceiptResult{
				Receipt: rec,
				Account: recipient,
				Balance: s.rt.Balance(recipient),
			}, rec.Token)
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "recipient address (default: wallet address)")
	return cmd
}

// NewBalanceCommand creates the balance command.
func NewBalanceCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "balance [address]",
		Short: "Print an account balance",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var target string
			if len(args) == 1 {
				target = args[0]
			}
			addr, err := resolveAddress(rootOpts, target)
			if err != nil {
				return err
			}

			s, err := openSession(cmd.Context(), rootOpts)
			if err != nil {
				return err
			}
			defer s.Close()

			acct, ok := s.rt.Account(addr)
			return rootOpts.formatter(cmd).Success(BalanceResult{
				Address:  addr,
				Lamports: acct.Lamports,
				Exists:   ok && acct.Live(),
			})
		},
	}
}
