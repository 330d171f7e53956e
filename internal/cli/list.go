package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/bountylist/internal/address"
	"github.com/roach88/bountylist/internal/runtime"
	"github.com/roach88/bountylist/internal/todo"
	"github.com/roach88/bountylist/internal/wallet"
)

// NewNewListCommand creates the new-list command.
func NewNewListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "new-list <name> <capacity>",
		Short: "Create a todo list owned by the wallet",
		Long: `Create a list that holds at most <capacity> items.

The list's rent-exempt minimum balance is paid by the wallet. Names longer
than 32 bytes share an address with their 32-byte prefix.

Example:
  bountylist new-list groceries 10`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := normalizeName("list", args[0])
			if err != nil {
				return err
			}
			capacity, err := strconv.ParseUint(args[1], 10, 16)
			if err != nil {
				return WrapExitError(ExitCommandError, fmt.Sprintf("invalid capacity %q", args[1]), err)
			}
			w, err := loadWallet(rootOpts)
			if err != nil {
				return err
			}

			ix, list, err := todo.NewListInstruction(w.Address(), name, uint16(capacity))
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to build instruction", err)
			}
			return submitAndReport(cmd, rootOpts, w, ix, list)
		},
	}
}

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	var owner string

	cmd := &cobra.Command{
		Use:   "add <list> <item> <bounty>",
		Short: "Add an item with a bounty to a list",
		Long: `Add an item to a list, escrowing <bounty> lamports in the item account.

The bounty must cover the item's rent-exempt minimum balance (see
'bountylist rent --item'). The list belongs to the wallet unless --owner
is given.

Example:
  bountylist add groceries milk 2000000 --owner <address>`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			listName, err := normalizeName("list", args[0])
			if err != nil {
				return err
			}
			itemName, err := normalizeName("item", args[1])
			if err != nil {
				return err
			}
			bounty, err := parseLamports(args[2])
			if err != nil {
				return err
			}
			w, err := loadWallet(rootOpts)
			if err != nil {
				return err
			}
			listOwner, err := ownerOrSelf(owner, w.Address())
			if err != nil {
				return err
			}

			ix, item, err := todo.AddInstruction(listOwner, listName, w.Address(), itemName, bounty)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to build instruction", err)
			}
			return submitAndReport(cmd, rootOpts, w, ix, item)
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "list owner address (default: wallet address)")
	return cmd
}

// NewCancelCommand creates the cancel command.
func NewCancelCommand(rootOpts *RootOptions) *cobra.Command {
	var owner, creator string

	cmd := &cobra.Command{
		Use:   "cancel <list> <item>",
		Short: "Cancel an item and refund its bounty to its creator",
		Long: `Remove an item from a list and return the item's whole balance to the
user who added it. Only the list owner or the item's creator may cancel.

The item is identified by its name and creator (--creator, default: the
wallet address).

Example:
  bountylist cancel groceries milk --creator <address>`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			listName, err := normalizeName("list", args[0])
			if err != nil {
				return err
			}
			itemName, err := normalizeName("item", args[1])
			if err != nil {
				return err
			}
			w, err := loadWallet(rootOpts)
			if err != nil {
				return err
			}
			listOwner, err := ownerOrSelf(owner, w.Address())
			if err != nil {
				return err
			}
			itemCreator, err := ownerOrSelf(creator, w.Address())
			if err != nil {
				return err
			}

			list, _, err := todo.FindListAddress(listOwner, listName)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to derive list address", err)
			}
			item, _, err := todo.FindItemAddress(list, itemCreator, itemName)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to derive item address", err)
			}
			ix, err := todo.CancelInstruction(listOwner, listName, item, itemCreator, w.Address())
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to build instruction", err)
			}
			return submitAndReport(cmd, rootOpts, w, ix, itemCreator)
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "list owner address (default: wallet address)")
	cmd.Flags().StringVar(&creator, "creator", "", "item creator address (default: wallet address)")
	return cmd
}

// ItemView is one list entry with its escrowed balance.
type ItemView struct {
	Address address.Address `json:"address"`
	Name    string          `json:"name"`
	Creator address.Address `json:"creator"`
	Bounty  uint64          `json:"bounty"`
}

// ListView is a list and its items in order.
type ListView struct {
	Address  address.Address `json:"address"`
	Owner    address.Address `json:"owner"`
	Name     string          `json:"name"`
	Capacity uint16          `json:"capacity"`
	Balance  uint64          `json:"balance"`
	Items    []ItemView      `json:"items"`
}

func (v ListView) String() string {
	lines := []string{
		titleStyle.Render(v.Name) + " " + mutedStyle.Render(v.Address.String()),
		field("owner", v.Owner),
		field("items", capacityBar(len(v.Items), int(v.Capacity), 20)),
	}
	for i, it := range v.Items {
		lines = append(lines, fmt.Sprintf("  %d. %s %s %s",
			i+1,
			it.Name,
			accentStyle.Render(fmt.Sprintf("%d lamports", it.Bounty)),
			mutedStyle.Render("by "+it.Creator.String()),
		))
	}
	return strings.Join(lines, "\n")
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	var owner string

	cmd := &cobra.Command{
		Use:   "show <list>",
		Short: "Show a list and its items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			listName, err := normalizeName("list", args[0])
			if err != nil {
				return err
			}
			listOwner, err := resolveAddress(rootOpts, owner)
			if err != nil {
				return err
			}
			addr, _, err := todo.FindListAddress(listOwner, listName)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to derive list address", err)
			}

			s, err := openSession(cmd.Context(), rootOpts)
			if err != nil {
				return err
			}
			defer s.Close()

			list, err := todo.FetchList(s.rt, addr)
			if err != nil {
				return WrapExitError(ExitFailure, fmt.Sprintf("list %q not found", listName), err)
			}

			view := ListView{
				Address:  addr,
				Owner:    list.Owner,
				Name:     list.Name,
				Capacity: list.Capacity,
				Balance:  s.rt.Balance(addr),
				Items:    make([]ItemView, 0, len(list.Items)),
			}
			for _, itemAddr := range list.Items {
				iv := ItemView{Address: itemAddr, Bounty: s.rt.Balance(itemAddr)}
				if item, err := todo.FetchItem(s.rt, itemAddr); err == nil {
					iv.Name = item.Name
					iv.Creator = item.Creator
				}
				view.Items = append(view.Items, iv)
			}
			return rootOpts.formatter(cmd).Success(view)
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "list owner address (default: wallet address)")
	return cmd
}

// ItemResult is a single item account.
type ItemResult struct {
	Address         address.Address `json:"address"`
	Name            string          `json:"name"`
	Creator         address.Address `json:"creator"`
	Bounty          uint64          `json:"bounty"`
	CreatorFinished bool            `json:"creator_finished"`
	OwnerFinished   bool            `json:"owner_finished"`
}

func (r ItemResult) String() string {
	return strings.Join([]string{
		titleStyle.Render(r.Name) + " " + mutedStyle.Render(r.Address.String()),
		field("creator", r.Creator),
		field("bounty", fmt.Sprintf("%d lamports", r.Bounty)),
	}, "\n")
}

// NewItemCommand creates the item command.
func NewItemCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "item <address>",
		Short: "Show an item account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := address.Parse(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid address", err)
			}

			s, err := openSession(cmd.Context(), rootOpts)
			if err != nil {
				return err
			}
			defer s.Close()

			item, err := todo.FetchItem(s.rt, addr)
			if err != nil {
				return WrapExitError(ExitFailure, "item not found", err)
			}
			return rootOpts.formatter(cmd).Success(ItemResult{
				Address:         addr,
				Name:            item.Name,
				Creator:         item.Creator,
				Bounty:          s.rt.Balance(addr),
				CreatorFinished: item.CreatorFinished,
				OwnerFinished:   item.OwnerFinished,
			})
		},
	}
}

// submitAndReport executes ix against the ledger and prints the receipt
// together with the resulting balance of account.
func submitAndReport(cmd *cobra.Command, opts *RootOptions, w *wallet.Wallet, ix runtime.Instruction, account address.Address) error {
	s, err := openSession(cmd.Context(), opts)
	if err != nil {
		return err
	}
	defer s.Close()

	rec, err := s.submit(cmd.Context(), w, ix)
	if err != nil {
		if rec != nil {
			opts.formatter(cmd).VerboseLog("receipt: %s", rec)
			for _, l := range rec.Logs {
				opts.formatter(cmd).VerboseLog("  log: %s", l)
			}
		}
		return err
	}
	return opts.formatter(cmd).SuccessWithTrace(ReceiptResult{
		Receipt: rec,
		Account: account,
		Balance: s.rt.Balance(account),
	}, rec.Token)
}

func ownerOrSelf(s string, self address.Address) (address.Address, error) {
	if s == "" {
		return self, nil
	}
	addr, err := address.Parse(s)
	if err != nil {
		return address.Address{}, WrapExitError(ExitCommandError, "invalid address", err)
	}
	return addr, nil
}
