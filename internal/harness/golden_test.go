package harness

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunWithGolden_Scenarios(t *testing.T) {
	paths, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		name := strings.TrimSuffix(filepath.Base(path), ".yaml")
		t.Run(name, func(t *testing.T) {
			scenario, err := LoadScenario(path)
			require.NoError(t, err)
			require.Equal(t, name, scenario.Name, "golden files are named after the scenario")

			result, err := RunWithGolden(t, scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestRunWithGolden_Determinism(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/owner_cancels.yaml")
	require.NoError(t, err)

	first, err := Run(scenario)
	require.NoError(t, err)
	second, err := Run(scenario)
	require.NoError(t, err)

	a, err := MarshalSnapshot(scenario.Name, first.Trace)
	require.NoError(t, err)
	b, err := MarshalSnapshot(scenario.Name, second.Trace)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestMarshalSnapshot_OmitsEmptyFields(t *testing.T) {
	data, err := MarshalSnapshot("s", []TraceEvent{{Step: 1, Op: OpAirdrop, As: "alice", Outcome: "RATE_LIMITED"}})
	require.NoError(t, err)

	want := `{
  "scenario": "s",
  "trace": [
    {
      "step": 1,
      "seq": 0,
      "op": "airdrop",
      "as": "alice",
      "outcome": "RATE_LIMITED"
    }
  ]
}
`
	assert.Equal(t, want, string(data))
}
