package types

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/address"
)

func testAddr(name string) string {
	return sdk.AccAddress(address.Hash("types", []byte(name))).String()
}

func TestRoles(t *testing.T) {
	var r Roles
	r.Set(RoleKeeper, "k")
	r.Set(RoleGovernance, "g")
	r.Set("owner", "x")

	if r.Get(RoleKeeper) != "k" || r.Get(RoleGovernance) != "g" {
		t.Errorf("unexpected roles %+v", r)
	}
	if r.Get("owner") != "" {
		t.Error("expected unknown role to read empty")
	}
	if !r.HasAny("k", RoleStrategist, RoleKeeper) {
		t.Error("expected keeper to match")
	}
	if r.HasAny("k", RoleGovernance) {
		t.Error("expected keeper not to hold governance")
	}
	if r.HasAny("", RoleStrategist) {
		t.Error("expected empty caller to match nothing")
	}
}

func TestEmergencyExitIsOneWay(t *testing.T) {
	s := NewStrategy("addr", "name", "udai", "vault", "inner", Roles{}, 1, time.Unix(0, 0))
	if s.InEmergencyExit() {
		t.Fatal("expected new strategy to be active")
	}
	if !s.EnterEmergencyExit() {
		t.Error("expected first transition to report a change")
	}
	if s.EnterEmergencyExit() {
		t.Error("expected repeated transition to be a no-op")
	}
	if s.State.String() != "emergency_exiting" {
		t.Errorf("expected emergency_exiting, got %s", s.State)
	}
}

func TestTriggerConfigValidate(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(c *TriggerConfig)
		valid  bool
	}{
		{"default", func(c *TriggerConfig) {}, true},
		{"no max delay", func(c *TriggerConfig) { c.MaxReportDelay = 0; c.MinReportDelay = time.Hour }, true},
		{"min above max", func(c *TriggerConfig) { c.MinReportDelay = c.MaxReportDelay + 1 }, false},
		{"negative delay", func(c *TriggerConfig) { c.MinReportDelay = -1 }, false},
		{"nil threshold", func(c *TriggerConfig) { c.CreditThreshold = math.Int{} }, false},
		{"negative call cost", func(c *TriggerConfig) { c.MaxCallCost = math.NewInt(-1) }, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultTriggerConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.valid && err != nil {
				t.Errorf("expected valid, got %v", err)
			}
			if !tc.valid && err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestReportIDDeterministic(t *testing.T) {
	a := ReportID("strategy", 7)
	if a != ReportID("strategy", 7) {
		t.Error("expected identical ids for the same input")
	}
	if a == ReportID("strategy", 8) || a == ReportID("other", 7) {
		t.Error("expected distinct ids for distinct inputs")
	}
	r := NewHarvestReport("strategy", 7, 10, time.Unix(100, 0))
	if r.ReportID != a || !r.Profit.IsZero() || r.Timestamp != 100 {
		t.Errorf("unexpected report %+v", r)
	}
}

func TestCheckShortfall(t *testing.T) {
	if err := CheckShortfall(math.NewInt(10), math.NewInt(10)); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
	if err := CheckShortfall(math.NewInt(10), math.NewInt(4)); !errors.Is(err, ErrInsufficientLiquidity) {
		t.Errorf("expected ErrInsufficientLiquidity, got %v", err)
	}
}

func TestKeys(t *testing.T) {
	if bytes.HasPrefix(HarvestReportKey("ab", 1), HarvestReportPrefix("a")) {
		t.Error("expected report prefixes of different strategies not to nest")
	}
	if bytes.Compare(CloneRecordKey(255), CloneRecordKey(256)) >= 0 {
		t.Error("expected clone record keys to sort by sequence")
	}
}
