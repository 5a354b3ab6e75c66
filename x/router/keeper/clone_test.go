package keeper_test

import (
	"errors"
	"testing"

	"github.com/openalpha/yield-router/x/router/types"
)

func TestCloneStrategy(t *testing.T) {
	chain, f := setup(t)
	ctx := chain.Ctx

	seen := map[string]bool{f.Strategy: true}
	for i := 0; i < 3; i++ {
		em := ctx.EventManager()
		before := len(em.Events())
		clone, err := chain.Keeper.CloneStrategy(ctx, f.User, f.Strategy, f.Vault, f.InnerVault,
			"test clone", f.Strategist, f.Rewards, f.Keeper)
		if err != nil {
			t.Fatalf("clone %d failed: %v", i, err)
		}
		if seen[clone] {
			t.Errorf("clone %d: address %s reused", i, clone)
		}
		seen[clone] = true

		events := em.Events()[before:]
		if n := countEvents(events, types.EventTypeCloned); n != 1 {
			t.Fatalf("clone %d: expected 1 cloned event, got %d", i, n)
		}
		for _, e := range events {
			if e.Type == types.EventTypeCloned && attribute(e, types.AttributeKeyClone) != clone {
				t.Errorf("clone %d: event clone %s, returned %s", i, attribute(e, types.AttributeKeyClone), clone)
			}
		}

		s := chain.Keeper.GetStrategy(ctx, clone)
		if s == nil {
			t.Fatalf("clone %d: record missing", i)
		}
		if !s.IsClone || s.Original != f.Strategy {
			t.Errorf("clone %d: expected clone of %s, got %+v", i, f.Strategy, s)
		}
		if s.Roles.Governance != f.Gov || s.Roles.Keeper != f.Keeper || s.Roles.Strategist != f.Strategist {
			t.Errorf("clone %d: unexpected roles %+v", i, s.Roles)
		}
	}

	records := chain.Keeper.GetCloneRecords(ctx)
	if len(records) != 3 {
		t.Fatalf("expected 3 clone records, got %d", len(records))
	}
	for i := 1; i < len(records); i++ {
		if records[i].Sequence <= records[i-1].Sequence {
			t.Errorf("expected increasing sequences, got %d after %d", records[i].Sequence, records[i-1].Sequence)
		}
	}
}

func TestCloneOfClone(t *testing.T) {
	chain, f := setup(t)
	clone, err := chain.Clone(f)
	if err != nil {
		t.Fatal(err)
	}
	_, err = chain.Keeper.CloneStrategy(chain.Ctx, f.Strategist, clone, f.Vault, f.InnerVault,
		"clone of clone", f.Strategist, f.Rewards, f.Keeper)
	if !errors.Is(err, types.ErrCloneOfClone) {
		t.Errorf("expected ErrCloneOfClone, got %v", err)
	}
}

func TestCloneValidation(t *testing.T) {
	chain, f := setup(t)
	ctx := chain.Ctx
	otherInner := chain.Inner.Create(ctx, "v3-usdc", "uusdc", 0, 0, "")

	testCases := []struct {
		name       string
		original   string
		innerVault string
		cloneName  string
		keeper     string
		wantErr    error
	}{
		{"unknown original", f.User, f.InnerVault, "x", f.Keeper, types.ErrStrategyNotFound},
		{"want mismatch", f.Strategy, otherInner, "x", f.Keeper, types.ErrWantMismatch},
		{"empty name", f.Strategy, f.InnerVault, "", f.Keeper, types.ErrInvalidName},
		{"bad keeper", f.Strategy, f.InnerVault, "x", "not-an-address", types.ErrInvalidAddress},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := chain.Keeper.CloneStrategy(ctx, f.User, tc.original, f.Vault, tc.innerVault,
				tc.cloneName, f.Strategist, f.Rewards, tc.keeper)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestCreateStrategyRoles(t *testing.T) {
	chain, f := setup(t)
	s := chain.Keeper.GetStrategy(chain.Ctx, f.Strategy)
	if s == nil {
		t.Fatal("strategy missing")
	}
	expected := types.Roles{
		Governance: f.Gov,
		Management: f.Management,
		Guardian:   f.Guardian,
		Strategist: f.Strategist,
		Keeper:     f.Keeper,
		Rewards:    f.Strategist,
	}
	if s.Roles != expected {
		t.Errorf("expected roles %+v, got %+v", expected, s.Roles)
	}
	if s.Want != f.Want {
		t.Errorf("expected want %s, got %s", f.Want, s.Want)
	}
	if s.IsClone || s.State != types.StrategyStateActive {
		t.Errorf("expected active original, got %+v", s)
	}
}
