package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/bountylist/internal/runtime"
)

const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

// cliEnv runs commands against a config file, ledger and keyfile in a
// temp directory.
type cliEnv struct {
	t      *testing.T
	dir    string
	config string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	t.Setenv(DefaultPasswordEnv, "")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("faucet:\n  rps: 100\n  burst: 100\n"), 0o600))
	return &cliEnv{t: t, dir: dir, config: path}
}

func (e *cliEnv) run(args ...string) (int, string, string) {
	e.t.Helper()
	var stdout, stderr bytes.Buffer
	code := Execute(append([]string{"--config", e.config}, args...), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

// jsonResponse mirrors CLIResponse with the payload left raw.
type jsonResponse struct {
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data"`
	Error   *CLIError       `json:"error"`
	TraceID string          `json:"trace_id"`
}

// runJSON runs a command in json format, checks its exit code and decodes
// the payload into v when v is non-nil.
func (e *cliEnv) runJSON(wantCode int, v any, args ...string) jsonResponse {
	e.t.Helper()
	code, stdout, stderr := e.run(append([]string{"--format", "json"}, args...)...)
	require.Equal(e.t, wantCode, code, "stdout: %s\nstderr: %s", stdout, stderr)

	var resp jsonResponse
	require.NoError(e.t, json.Unmarshal([]byte(stdout), &resp), stdout)
	if v != nil {
		require.NoError(e.t, json.Unmarshal(resp.Data, v))
	}
	return resp
}

func TestRootCommand_Subcommands(t *testing.T) {
	cmd := NewRootCommand()

	names := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	for _, want := range []string{
		"keygen", "address", "airdrop", "balance",
		"new-list", "add", "cancel", "show", "item",
		"history", "rent", "test",
	} {
		assert.True(t, names[want], "missing command %q", want)
	}
}

func TestRootCommand_GlobalFlags(t *testing.T) {
	cmd := NewRootCommand()
	flags := cmd.PersistentFlags()

	for _, name := range []string{"verbose", "format", "config", "ledger", "keypair", "password-env"} {
		assert.NotNil(t, flags.Lookup(name), "missing flag %q", name)
	}
	assert.Equal(t, "text", flags.Lookup("format").DefValue)
	assert.Equal(t, DefaultPasswordEnv, flags.Lookup("password-env").DefValue)
}

func TestExecute_InvalidFormat(t *testing.T) {
	env := newCLIEnv(t)
	code, _, stderr := env.run("--format", "xml", "rent", "10")
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr, "invalid format")
}

func TestExecute_UnknownCommand(t *testing.T) {
	env := newCLIEnv(t)
	code, _, stderr := env.run("transfer")
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr, "E_COMMAND")
}

func TestExecute_MissingConfig(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := Execute([]string{"--config", filepath.Join(t.TempDir(), "nope.yaml"), "rent", "1"}, &stdout, &stderr)
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr.String(), "failed to load config")
}

func TestRent(t *testing.T) {
	env := newCLIEnv(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"bytes", []string{"rent", "0"}, "890880 lamports for 0 bytes"},
		{"list", []string{"rent", "--list", "groceries", "--capacity", "2"}, "1753920 lamports for 124 bytes"},
		{"item", []string{"rent", "--item", "milk"}, "1238880 lamports for 50 bytes"},
		{"longer item", []string{"rent", "--item", "bread"}, "1245840 lamports for 51 bytes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, stdout, stderr := env.run(tt.args...)
			require.Equal(t, ExitSuccess, code, stderr)
			assert.Equal(t, tt.want+"\n", stdout)
		})
	}
}

func TestRent_Invalid(t *testing.T) {
	env := newCLIEnv(t)

	for _, args := range [][]string{
		{"rent"},
		{"rent", "-1"},
		{"rent", "10", "--item", "milk"},
		{"rent", "--list", "a", "--item", "b"},
	} {
		code, _, _ := env.run(args...)
		assert.Equal(t, ExitCommandError, code, "%v", args)
	}
}

func TestKeygen_Address(t *testing.T) {
	env := newCLIEnv(t)

	var kg KeygenResult
	env.runJSON(ExitSuccess, &kg, "keygen")
	assert.False(t, kg.Encrypted)
	assert.Len(t, strings.Fields(kg.Mnemonic), 24)
	assert.Equal(t, filepath.Join(env.dir, "id.yaml"), kg.Path)

	var addr AddressResult
	env.runJSON(ExitSuccess, &addr, "address")
	assert.Equal(t, kg.Address, addr.Address)

	// A second keygen never overwrites the keyfile.
	code, _, stderr := env.run("keygen")
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr, "already exists")

	env.runJSON(ExitSuccess, nil, "keygen", "--force")
}

func TestKeygen_RecoverIsDeterministic(t *testing.T) {
	recoverKey := func(t *testing.T, dir string, index string) KeygenResult {
		t.Helper()
		cmd, _ := newRootCommand()
		var stdout bytes.Buffer
		cmd.SetArgs([]string{
			"--format", "json",
			"--keypair", filepath.Join(dir, "id.yaml"),
			"--ledger", filepath.Join(dir, "ledger.db"),
			"--password-env", "",
			"keygen", "--recover", "--index", index,
		})
		cmd.SetIn(strings.NewReader(testMnemonic + "\n"))
		cmd.SetOut(&stdout)
		cmd.SetErr(&bytes.Buffer{})
		require.NoError(t, cmd.Execute())

		var result KeygenResult
		var resp jsonResponse
		require.NoError(t, json.Unmarshal(stdout.Bytes(), &resp))
		require.NoError(t, json.Unmarshal(resp.Data, &result))
		return result
	}

	a := recoverKey(t, t.TempDir(), "0")
	b := recoverKey(t, t.TempDir(), "0")
	c := recoverKey(t, t.TempDir(), "1")

	assert.Equal(t, a.Address, b.Address)
	assert.NotEqual(t, a.Address, c.Address)
	assert.Empty(t, a.Mnemonic, "recovered phrases are not echoed")
}

func TestKeygen_Encrypted(t *testing.T) {
	env := newCLIEnv(t)
	t.Setenv(DefaultPasswordEnv, "correct horse")

	var kg KeygenResult
	env.runJSON(ExitSuccess, &kg, "keygen")
	assert.True(t, kg.Encrypted)

	var addr AddressResult
	env.runJSON(ExitSuccess, &addr, "address")
	assert.Equal(t, kg.Address, addr.Address)

	t.Setenv(DefaultPasswordEnv, "")
	code, _, stderr := env.run("address")
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr, "failed to load keypair")
}

func TestAirdrop_Balance(t *testing.T) {
	env := newCLIEnv(t)
	env.runJSON(ExitSuccess, nil, "keygen")

	var bal BalanceResult
	env.runJSON(ExitSuccess, &bal, "balance")
	assert.Zero(t, bal.Lamports)
	assert.False(t, bal.Exists)

	var rec ReceiptResult
	resp := env.runJSON(ExitSuccess, &rec, "airdrop", "1000000000")
	assert.Equal(t, uint64(1_000_000_000), rec.Balance)
	assert.Equal(t, runtime.StatusOK, rec.Receipt.Status)
	assert.Equal(t, rec.Receipt.Token, resp.TraceID)
	assert.NotEmpty(t, resp.TraceID)

	env.runJSON(ExitSuccess, &bal, "balance")
	assert.Equal(t, uint64(1_000_000_000), bal.Lamports)
	assert.True(t, bal.Exists)

	code, stdout, _ := env.run("balance", bal.Address.String())
	assert.Equal(t, ExitSuccess, code)
	assert.Equal(t, "1000000000 lamports\n", stdout)
}

func TestAirdrop_OverLimit(t *testing.T) {
	env := newCLIEnv(t)
	env.runJSON(ExitSuccess, nil, "keygen")

	resp := env.runJSON(ExitCommandError, nil, "airdrop", "100000000001")
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E_COMMAND", resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "max_airdrop")
}

func TestAirdrop_RateLimitedAcrossRuns(t *testing.T) {
	env := newCLIEnv(t)
	require.NoError(t, os.WriteFile(env.config, []byte("faucet:\n  rps: 0.001\n  burst: 1\n"), 0o600))
	env.runJSON(ExitSuccess, nil, "keygen")

	env.runJSON(ExitSuccess, nil, "airdrop", "1000")
	resp := env.runJSON(ExitFailure, nil, "airdrop", "1000")
	require.NotNil(t, resp.Error)
	assert.Equal(t, "RATE_LIMITED", resp.Error.Code)

	var bal BalanceResult
	env.runJSON(ExitSuccess, &bal, "balance")
	assert.Equal(t, uint64(1000), bal.Lamports)

	env.runJSON(ExitSuccess, nil, "airdrop", "1000", "--to", "11111111111111111111111111111112")
}

func TestListLifecycle(t *testing.T) {
	env := newCLIEnv(t)

	var kg KeygenResult
	env.runJSON(ExitSuccess, &kg, "keygen")
	env.runJSON(ExitSuccess, nil, "airdrop", "1000000000")

	var created ReceiptResult
	env.runJSON(ExitSuccess, &created, "new-list", "groceries", "2")
	assert.Equal(t, uint64(1_753_920), created.Balance)

	var milk ReceiptResult
	env.runJSON(ExitSuccess, &milk, "add", "groceries", "milk", "1238980")
	assert.Equal(t, uint64(1_238_980), milk.Balance)

	env.runJSON(ExitSuccess, nil, "add", "groceries", "eggs", "1238880")

	full := env.runJSON(ExitFailure, nil, "add", "groceries", "bread", "2000000")
	require.NotNil(t, full.Error)
	assert.Equal(t, "ListFull", full.Error.Code)

	var view ListView
	env.runJSON(ExitSuccess, &view, "show", "groceries")
	assert.Equal(t, created.Account, view.Address)
	assert.Equal(t, kg.Address, view.Owner)
	assert.Equal(t, uint16(2), view.Capacity)
	require.Len(t, view.Items, 2)
	assert.Equal(t, "milk", view.Items[0].Name)
	assert.Equal(t, milk.Account, view.Items[0].Address)
	assert.Equal(t, uint64(1_238_980), view.Items[0].Bounty)
	assert.Equal(t, "eggs", view.Items[1].Name)

	var item ItemResult
	env.runJSON(ExitSuccess, &item, "item", milk.Account.String())
	assert.Equal(t, "milk", item.Name)
	assert.Equal(t, kg.Address, item.Creator)

	var cancelled ReceiptResult
	env.runJSON(ExitSuccess, &cancelled, "cancel", "groceries", "milk")
	assert.Equal(t, kg.Address, cancelled.Account)
	assert.Equal(t, uint64(997_007_200), cancelled.Balance)

	env.runJSON(ExitSuccess, &view, "show", "groceries")
	require.Len(t, view.Items, 1)
	assert.Equal(t, "eggs", view.Items[0].Name)

	env.runJSON(ExitFailure, nil, "item", milk.Account.String())

	var hist HistoryResult
	env.runJSON(ExitSuccess, &hist, "history")
	require.Len(t, hist.Receipts, 6)
	for i, rec := range hist.Receipts {
		assert.Equal(t, int64(i+1), rec.Seq)
	}
	assert.Equal(t, runtime.StatusFailed, hist.Receipts[4].Status)
	assert.Equal(t, "ListFull", hist.Receipts[4].ErrorCode)

	env.runJSON(ExitSuccess, &hist, "history", "--after", "4", "--limit", "1")
	require.Len(t, hist.Receipts, 1)
	assert.Equal(t, int64(5), hist.Receipts[0].Seq)
}

func TestListText(t *testing.T) {
	env := newCLIEnv(t)
	env.runJSON(ExitSuccess, nil, "keygen")
	env.runJSON(ExitSuccess, nil, "airdrop", "1000000000")
	env.runJSON(ExitSuccess, nil, "new-list", "chores", "3")

	code, stdout, stderr := env.run("add", "chores", "dishes", "1000")
	assert.Equal(t, ExitFailure, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "BountyTooSmall")

	code, stdout, stderr = env.run("show", "chores")
	require.Equal(t, ExitSuccess, code, stderr)
	assert.Contains(t, stdout, "chores")
	assert.Contains(t, stdout, "0/3")
}

func TestNewList_InvalidArgs(t *testing.T) {
	env := newCLIEnv(t)
	env.runJSON(ExitSuccess, nil, "keygen")

	for _, args := range [][]string{
		{"new-list", "groceries", "70000"},
		{"new-list", "groceries", "-1"},
		{"new-list", "", "2"},
		{"add", "groceries", "milk", "lots"},
		{"item", "not-an-address"},
	} {
		code, _, _ := env.run(args...)
		assert.Equal(t, ExitCommandError, code, "%v", args)
	}
}

func TestTestCommand(t *testing.T) {
	env := newCLIEnv(t)
	scenarios := filepath.Join("..", "harness", "testdata", "scenarios")

	var result TestResult
	env.runJSON(ExitSuccess, &result, "test", scenarios)
	assert.Equal(t, 4, result.Total)
	assert.Equal(t, 4, result.Passed)

	env.runJSON(ExitSuccess, &result, "test", scenarios, "--filter", "owner_*")
	require.Len(t, result.Scenarios, 1)
	assert.Equal(t, "owner_cancels", result.Scenarios[0].Name)

	code, stdout, _ := env.run("test", scenarios)
	assert.Equal(t, ExitSuccess, code)
	assert.Contains(t, stdout, "4 passed, 0 failed, 4 total")
}

func TestTestCommand_GoldenMismatch(t *testing.T) {
	env := newCLIEnv(t)
	scenarios := filepath.Join("..", "harness", "testdata", "scenarios")
	golden := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(golden, "owner_cancels.golden"), []byte("{}\n"), 0o644))

	resp := env.runJSON(ExitFailure, nil, "test", scenarios, "--golden", golden, "--filter", "owner_*")
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E_TEST_FAILED", resp.Error.Code)

	env.runJSON(ExitSuccess, nil, "test", scenarios, "--golden", golden, "--filter", "owner_*", "--update")
	env.runJSON(ExitSuccess, nil, "test", scenarios, "--golden", golden, "--filter", "owner_*")

	want, err := os.ReadFile(filepath.Join("..", "harness", "testdata", "golden", "owner_cancels.golden"))
	require.NoError(t, err)
	got, err := os.ReadFile(filepath.Join(golden, "owner_cancels.golden"))
	require.NoError(t, err)
	assert.Equal(t, string(want), string(got))
}

func TestTestCommand_MissingDir(t *testing.T) {
	env := newCLIEnv(t)
	code, _, _ := env.run("test", filepath.Join(env.dir, "missing"))
	assert.Equal(t, ExitCommandError, code)
}
