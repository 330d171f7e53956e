package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/bountylist/internal/address"
	"github.com/roach88/bountylist/internal/wallet"
)

// KeygenOptions holds flags for the keygen command.
type KeygenOptions struct {
	*RootOptions
	Index   uint32
	Recover bool
	Force   bool
}

// KeygenResult describes a written keyfile.
type KeygenResult struct {
	Address   address.Address `json:"address"`
	Path      string          `json:"path"`
	Index     uint32          `json:"index"`
	Encrypted bool            `json:"encrypted"`

	// Mnemonic is set only for freshly generated wallets.
	Mnemonic string `json:"mnemonic,omitempty"`
}

func (r KeygenResult) String() string {
	lines := []string{
		successStyle.Render("✔ keypair written"),
		field("address", accentStyle.Render(r.Address.String())),
		field("path", r.Path),
		field("encrypted", r.Encrypted),
	}
	if r.Mnemonic != "" {
		lines = append(lines,
			"",
			titleStyle.Render("Recovery phrase (shown once):"),
			r.Mnemonic,
		)
	}
	return strings.Join(lines, "\n")
}

// NewKeygenCommand creates the keygen command.
func NewKeygenCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &KeygenOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Create a wallet keyfile",
		Long: `Create a wallet from a fresh 24-word BIP-39 recovery phrase and write it
to the keypair path.

With --recover the phrase is read from stdin instead. When the password
environment variable is set, the phrase is encrypted in the keyfile.

Examples:
  bountylist keygen
  echo "$PHRASE" | bountylist keygen --recover --index 1
  BOUNTYLIST_PASSWORD=secret bountylist keygen --keypair ./alice.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeygen(opts, cmd)
		},
	}

	cmd.Flags().Uint32Var(&opts.Index, "index", 0, "key index derived from the phrase")
	cmd.Flags().BoolVar(&opts.Recover, "recover", false, "read the recovery phrase from stdin")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "overwrite an existing keyfile")

	return cmd
}

func runKeygen(opts *KeygenOptions, cmd *cobra.Command) error {
	path := opts.cfg.Keypair

	var mnemonic string
	if opts.Recover {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read recovery phrase", err)
		}
		mnemonic = string(data)
	} else {
		w, err := wallet.Generate()
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to generate wallet", err)
		}
		mnemonic = w.Mnemonic
	}

	w, err := wallet.FromMnemonic(mnemonic, opts.Index)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid recovery phrase", err)
	}

	if opts.Force {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return WrapExitError(ExitCommandError, "failed to replace keyfile", err)
		}
	}
	password := opts.password()
	if err := wallet.Save(path, w, password); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return NewExitError(ExitCommandError,
				fmt.Sprintf("keyfile %s already exists (use --force to replace it)", path))
		}
		return WrapExitError(ExitCommandError, "failed to write keyfile", err)
	}

	result := KeygenResult{
		Address:   w.Address(),
		Path:      path,
		Index:     w.Index,
		Encrypted: password != "",
	}
	if !opts.Recover {
		result.Mnemonic = w.Mnemonic
	}
	return opts.formatter(cmd).Success(result)
}

// AddressResult is an account address.
type AddressResult struct {
	Address address.Address `json:"address"`
}

func (r AddressResult) String() string {
	return r.Address.String()
}

// NewAddressCommand creates the address command.
func NewAddressCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "address",
		Short: "Print the wallet address",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := loadWallet(rootOpts)
			if err != nil {
				return err
			}
			return rootOpts.formatter(cmd).Success(AddressResult{Address: w.Address()})
		},
	}
}
