package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/bountylist/internal/address"
	"github.com/roach88/bountylist/internal/runtime"
	"github.com/roach88/bountylist/internal/store"
	"github.com/roach88/bountylist/internal/todo"
	"github.com/roach88/bountylist/internal/wallet"
)

// session is a runtime opened over the configured ledger with the todo
// program registered.
type session struct {
	store *store.Store
	rt    *runtime.Runtime
}

func openSession(ctx context.Context, opts *RootOptions) (*session, error) {
	path := opts.cfg.Ledger
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to create ledger directory", err)
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open ledger", err)
	}

	rt, err := runtime.Open(ctx, st,
		runtime.WithRent(opts.cfg.Rent),
		runtime.WithFaucet(opts.cfg.Faucet.RPS, opts.cfg.Faucet.Burst),
	)
	if err != nil {
		st.Close()
		return nil, WrapExitError(ExitCommandError, "failed to load ledger", err)
	}
	rt.Register(todo.ProgramID, todo.Program{})
	return &session{store: st, rt: rt}, nil
}

func (s *session) Close() error {
	return s.store.Close()
}

// submit signs ix with w and executes it. A rejected transaction is an
// ExitFailure carrying the program or runtime error.
func (s *session) submit(ctx context.Context, w *wallet.Wallet, ix runtime.Instruction) (*runtime.Receipt, error) {
	tx := runtime.NewTransaction(ix, w.PrivateKey(), uint64(time.Now().UnixNano()))
	rec, err := s.rt.Execute(ctx, tx)
	if err != nil {
		if rec == nil {
			return nil, WrapExitError(ExitCommandError, "failed to execute transaction", err)
		}
		return rec, WrapExitError(ExitFailure, "transaction rejected", err)
	}
	return rec, nil
}

// loadWallet reads the configured keyfile.
func loadWallet(opts *RootOptions) (*wallet.Wallet, error) {
	w, err := wallet.Load(opts.cfg.Keypair, opts.password())
	if err != nil {
		return nil, WrapExitError(ExitCommandError,
			fmt.Sprintf("failed to load keypair %s (run 'bountylist keygen')", opts.cfg.Keypair), err)
	}
	return w, nil
}

// resolveAddress parses s, or returns the wallet address when s is empty.
func resolveAddress(opts *RootOptions, s string) (address.Address, error) {
	if s == "" {
		w, err := loadWallet(opts)
		if err != nil {
			return address.Address{}, err
		}
		return w.Address(), nil
	}
	addr, err := address.Parse(s)
	if err != nil {
		return address.Address{}, WrapExitError(ExitCommandError, "invalid address", err)
	}
	return addr, nil
}

// normalizeName returns name in Unicode NFC so that visually identical
// names derive the same addresses.
func normalizeName(kind, name string) (string, error) {
	if name == "" {
		return "", NewExitError(ExitCommandError, kind+" name must not be empty")
	}
	if !utf8.ValidString(name) {
		return "", NewExitError(ExitCommandError, kind+" name is not valid UTF-8")
	}
	return norm.NFC.String(name), nil
}

func parseLamports(s string) (uint64, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, WrapExitError(ExitCommandError, fmt.Sprintf("invalid lamport amount %q", s), err)
	}
	return v, nil
}
