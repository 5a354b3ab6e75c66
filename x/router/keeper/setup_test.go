package keeper_test

import (
	"testing"
	"time"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/openalpha/yield-router/testutil/simchain"
	"github.com/openalpha/yield-router/x/router/keeper"
)

// relativeApprox is the tolerance used when comparing asset amounts
var relativeApprox = math.LegacyNewDecWithPrec(1, 5)

func setup(t *testing.T, opts ...keeper.Option) (*simchain.Chain, *simchain.Fixture) {
	t.Helper()
	chain, err := simchain.New(log.NewNopLogger(), opts...)
	if err != nil {
		t.Fatalf("failed to create chain: %v", err)
	}
	f, err := chain.NewFixture(simchain.DefaultAmount)
	if err != nil {
		t.Fatalf("failed to deploy fixture: %v", err)
	}
	return chain, f
}

// setupStrategy returns the fixture with f.Strategy pointing at either the
// original or a fresh clone of it
func setupStrategy(t *testing.T, clone bool, opts ...keeper.Option) (*simchain.Chain, *simchain.Fixture) {
	t.Helper()
	chain, f := setup(t, opts...)
	if clone {
		addr, err := chain.Clone(f)
		if err != nil {
			t.Fatalf("failed to clone: %v", err)
		}
		f.Strategy = addr
	}
	return chain, f
}

func approxEqual(got, want math.Int) bool {
	if want.IsZero() {
		return got.IsZero()
	}
	diff := got.Sub(want).Abs()
	return math.LegacyNewDecFromInt(diff).QuoInt(want.Abs()).LTE(relativeApprox)
}

func requireApprox(t *testing.T, what string, got, want math.Int) {
	t.Helper()
	if !approxEqual(got, want) {
		t.Errorf("expected %s ~%s, got %s", what, want, got)
	}
}

func depositAndHarvest(t *testing.T, chain *simchain.Chain, f *simchain.Fixture) {
	t.Helper()
	if err := chain.Deposit(f); err != nil {
		t.Fatalf("deposit failed: %v", err)
	}
	harvest(t, chain, f)
}

func harvest(t *testing.T, chain *simchain.Chain, f *simchain.Fixture) {
	t.Helper()
	chain.Mine(time.Second)
	if _, err := chain.Keeper.Harvest(chain.Ctx, f.Keeper, f.Strategy); err != nil {
		t.Fatalf("harvest failed: %v", err)
	}
}

func countEvents(events sdk.Events, eventType string) int {
	n := 0
	for _, e := range events {
		if e.Type == eventType {
			n++
		}
	}
	return n
}

func attribute(e sdk.Event, key string) string {
	for _, a := range e.Attributes {
		if a.Key == key {
			return a.Value
		}
	}
	return ""
}
