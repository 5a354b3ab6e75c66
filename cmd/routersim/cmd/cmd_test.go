package cmd

import (
	"bytes"
	"encoding/json"
	"testing"

	"cosmossdk.io/log"
	"github.com/stretchr/testify/require"

	"github.com/openalpha/yield-router/testutil/simchain"
)

func TestScenarios(t *testing.T) {
	for _, name := range ScenarioNames() {
		t.Run(name, func(t *testing.T) {
			chain, err := simchain.New(log.NewNopLogger())
			require.NoError(t, err)
			f, err := chain.NewFixture(simchain.DefaultAmount)
			require.NoError(t, err)

			result, err := RunScenario(chain, f, name)
			require.NoError(t, err)
			require.Equal(t, name, result.Scenario)
			require.NotEmpty(t, result.Steps)
		})
	}
}

func TestOperationScenarioReturnsDeposit(t *testing.T) {
	chain, err := simchain.New(log.NewNopLogger())
	require.NoError(t, err)
	f, err := chain.NewFixture(simchain.DefaultAmount)
	require.NoError(t, err)

	result, err := RunScenario(chain, f, "operation")
	require.NoError(t, err)

	last := result.Steps[len(result.Steps)-1]
	require.Equal(t, "withdraw", last.Action)
	require.Equal(t, f.Amount.String(), last.UserWant)
	require.Equal(t, "0", last.UserShares)
}

func TestUnknownScenario(t *testing.T) {
	chain, err := simchain.New(log.NewNopLogger())
	require.NoError(t, err)
	f, err := chain.NewFixture(simchain.DefaultAmount)
	require.NoError(t, err)

	_, err = RunScenario(chain, f, "rug-pull")
	require.ErrorContains(t, err, "unknown scenario")
}

func execute(t *testing.T, args ...string) []byte {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append(args, "--quiet"))
	require.NoError(t, root.Execute())
	return out.Bytes()
}

func TestScenarioCmdPrintsJSON(t *testing.T) {
	var result Result
	require.NoError(t, json.Unmarshal(execute(t, "scenario", "sweep"), &result))
	require.Equal(t, "sweep", result.Scenario)
	require.Equal(t, "sweep", result.Steps[len(result.Steps)-1].Action)
}

func TestKeeperBotCmdHarvests(t *testing.T) {
	var summary BotSummary
	require.NoError(t, json.Unmarshal(execute(t, "keeperbot", "--blocks", "48"), &summary))
	require.Equal(t, 48, summary.Blocks)
	require.GreaterOrEqual(t, summary.Harvests, 1)
	require.Zero(t, summary.Submissions.FailedSubmissions)
}

func TestKeeperBotCmdPolicyBlocksHarvests(t *testing.T) {
	var summary BotSummary
	require.NoError(t, json.Unmarshal(execute(t, "keeperbot", "--blocks", "10", "--policy", "false"), &summary))
	require.Zero(t, summary.Harvests)
}
