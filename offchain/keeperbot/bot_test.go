package keeperbot_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/google/go-cmp/cmp"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	routermetrics "github.com/openalpha/yield-router/metrics"
	"github.com/openalpha/yield-router/offchain/keeperbot"
	"github.com/openalpha/yield-router/testutil/simchain"
)

// fakeReader answers triggers from fixed maps
type fakeReader struct {
	mu      sync.Mutex
	harvest map[string]bool
	tend    map[string]bool
	info    map[string]*keeperbot.StrategyInfo
	fail    bool
}

func newFakeReader() *fakeReader {
	return &fakeReader{
		harvest: map[string]bool{},
		tend:    map[string]bool{},
		info:    map[string]*keeperbot.StrategyInfo{},
	}
}

func (r *fakeReader) Strategies(ctx context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for s := range r.info {
		out = append(out, s)
	}
	return out, nil
}

func (r *fakeReader) Strategy(ctx context.Context, addr string) (*keeperbot.StrategyInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	info, ok := r.info[addr]
	if !ok {
		return nil, fmt.Errorf("unknown strategy %s", addr)
	}
	return info, nil
}

func (r *fakeReader) HarvestTrigger(ctx context.Context, addr string, callCost math.Int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return false, fmt.Errorf("rpc unavailable")
	}
	return r.harvest[addr], nil
}

func (r *fakeReader) TendTrigger(ctx context.Context, addr string, callCost math.Int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tend[addr], nil
}

func testConfig() *keeperbot.Config {
	cfg := keeperbot.DefaultConfig()
	cfg.PollInterval = 10 * time.Millisecond
	cfg.CheckInterval = time.Minute
	cfg.RetryDelay = 5 * time.Second
	return cfg
}

func TestTickSubmitsByTrigger(t *testing.T) {
	reader := newFakeReader()
	reader.harvest["s1"] = true
	reader.tend["s2"] = true
	submitter := keeperbot.NewMockSubmitter()
	collector := routermetrics.NewCollector(prometheus.NewRegistry())

	bot, err := keeperbot.New(testConfig(), reader, submitter, log.NewNopLogger(), keeperbot.WithMetrics(collector))
	require.NoError(t, err)

	now := time.Unix(1_700_000_000, 0)
	bot.Track("s1", now)
	bot.Track("s2", now)
	bot.Track("s3", now)
	bot.Track("later", now.Add(time.Hour))

	require.Equal(t, 3, bot.Tick(context.Background(), now))
	want := []keeperbot.Submission{
		{Action: keeperbot.ActionHarvest, Strategy: "s1"},
		{Action: keeperbot.ActionTend, Strategy: "s2"},
	}
	if diff := cmp.Diff(want, submitter.GetSubmissions()); diff != "" {
		t.Errorf("unexpected submissions (-want +got):\n%s", diff)
	}
	require.Equal(t, 4, bot.Scheduled())
	require.Equal(t, float64(1), testutil.ToFloat64(collector.BotSubmissions.WithLabelValues("harvest", "ok")))

	// everything was rescheduled a check interval out
	require.Zero(t, bot.Tick(context.Background(), now.Add(30*time.Second)))
	require.Equal(t, 3, bot.Tick(context.Background(), now.Add(time.Minute)))
}

func TestTickRetriesFailures(t *testing.T) {
	reader := newFakeReader()
	reader.harvest["s1"] = true
	submitter := keeperbot.NewMockSubmitter()
	submitter.SetSimulateFailure(true)

	bot, err := keeperbot.New(testConfig(), reader, submitter, log.NewNopLogger())
	require.NoError(t, err)

	now := time.Unix(1_700_000_000, 0)
	bot.Track("s1", now)
	require.Equal(t, 1, bot.Tick(context.Background(), now))
	require.Equal(t, int64(1), submitter.GetStatus().FailedSubmissions)

	// retried after RetryDelay rather than CheckInterval
	submitter.SetSimulateFailure(false)
	require.Equal(t, 1, bot.Tick(context.Background(), now.Add(5*time.Second)))
	require.Len(t, submitter.GetSubmissions(), 1)

	reader.mu.Lock()
	reader.fail = true
	reader.mu.Unlock()
	require.Equal(t, 1, bot.Tick(context.Background(), now.Add(5*time.Second+time.Minute)))
	require.Len(t, submitter.GetSubmissions(), 1)
}

func TestHarvestPolicyGate(t *testing.T) {
	reader := newFakeReader()
	reader.harvest["small"] = true
	reader.harvest["big"] = true
	reader.info["small"] = &keeperbot.StrategyInfo{Address: "small", EstimatedAssets: math.NewInt(10)}
	reader.info["big"] = &keeperbot.StrategyInfo{Address: "big", EstimatedAssets: math.NewInt(10_000)}
	submitter := keeperbot.NewMockSubmitter()

	cfg := testConfig()
	cfg.HarvestPolicy = "estimated_assets >= 1000"
	now := time.Unix(1_700_000_000, 0)
	bot, err := keeperbot.New(cfg, reader, submitter, log.NewNopLogger(),
		keeperbot.WithClock(func() time.Time { return now }))
	require.NoError(t, err)

	require.NoError(t, bot.Seed(context.Background()))
	require.Equal(t, 2, bot.Scheduled())
	require.Equal(t, 2, bot.Tick(context.Background(), now))
	require.Equal(t, []keeperbot.Submission{{Action: keeperbot.ActionHarvest, Strategy: "big"}}, submitter.GetSubmissions())
}

func TestNewRejectsBadPolicy(t *testing.T) {
	cfg := testConfig()
	cfg.HarvestPolicy = "estimated_assets +"
	_, err := keeperbot.New(cfg, newFakeReader(), nil, log.NewNopLogger())
	require.Error(t, err)
}

func TestNewRequiresReader(t *testing.T) {
	_, err := keeperbot.New(testConfig(), nil, keeperbot.NewMockSubmitter(), log.NewNopLogger())
	require.ErrorContains(t, err, "chain reader")
}

func TestRunStopsCleanly(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	reader := newFakeReader()
	reader.harvest["s1"] = true
	reader.info["s1"] = &keeperbot.StrategyInfo{Address: "s1"}
	submitter := keeperbot.NewMockSubmitter()

	bot, err := keeperbot.New(testConfig(), reader, submitter, log.NewNopLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- bot.Run(ctx) }()

	require.Eventually(t, func() bool {
		return len(submitter.GetSubmissions()) == 1
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("bot did not stop")
	}
}

func TestDiscoveryTracksClones(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	upgrader := websocket.Upgrader{}
	var subscribed sync.WaitGroup
	subscribed.Add(1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		var req map[string]any
		if err := conn.ReadJSON(&req); err != nil {
			return
		}
		subscribed.Done()
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"jsonrpc":"2.0","id":1,"result":{}}`))
		_ = conn.WriteMessage(websocket.TextMessage, []byte(
			`{"jsonrpc":"2.0","id":1,"result":{"events":{"cloned.clone":["clone-1"],"tm.event":["Tx"]}}}`))

		// hold the connection until the client goes away
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.WebSocketURL = "ws" + strings.TrimPrefix(srv.URL, "http")
	bot, err := keeperbot.New(cfg, newFakeReader(), keeperbot.NewMockSubmitter(), log.NewNopLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- bot.Run(ctx) }()

	subscribed.Wait()
	require.Eventually(t, func() bool {
		return bot.Watching("clone-1")
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestClonesFromEvents(t *testing.T) {
	events := map[string][]string{
		"cloned.clone":    {"a", "b"},
		"cloned.original": {"o"},
	}
	require.Equal(t, []string{"a", "b"}, keeperbot.ClonesFromEvents(events))
	require.Empty(t, keeperbot.ClonesFromEvents(map[string][]string{}))
}

func TestLocalChainHarvest(t *testing.T) {
	chain, err := simchain.New(log.NewNopLogger())
	require.NoError(t, err)
	f, err := chain.NewFixture(simchain.DefaultAmount)
	require.NoError(t, err)
	require.NoError(t, chain.Deposit(f))

	local := keeperbot.NewLocalChain(chain.Keeper, func() sdk.Context { return chain.Ctx }, f.Keeper)
	clock := func() time.Time { return chain.Ctx.BlockTime() }
	bot, err := keeperbot.New(testConfig(), local, local, log.NewNopLogger(), keeperbot.WithClock(clock))
	require.NoError(t, err)
	require.NoError(t, bot.Seed(context.Background()))
	require.True(t, bot.Watching(f.Strategy))

	chain.Mine(time.Second)
	require.Equal(t, 1, bot.Tick(context.Background(), chain.Ctx.BlockTime()))
	require.Equal(t, int64(1), local.GetStatus().TotalSubmissions)
	require.Len(t, chain.Keeper.GetHarvestReports(chain.Ctx, f.Strategy), 1)

	// credit was deployed, so the next check has nothing to do
	chain.Mine(time.Minute)
	require.Equal(t, 1, bot.Tick(context.Background(), chain.Ctx.BlockTime()))
	require.Equal(t, int64(1), local.GetStatus().TotalSubmissions)

	info, err := local.Strategy(context.Background(), f.Strategy)
	require.NoError(t, err)
	require.False(t, info.EmergencyExit)
	require.True(t, info.EstimatedAssets.IsPositive())
}
