package vaultsim

import (
	"testing"
	"time"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	"cosmossdk.io/store"
	"cosmossdk.io/store/metrics"
	storetypes "cosmossdk.io/store/types"
	cmtproto "github.com/cometbft/cometbft/proto/tendermint/types"
	dbm "github.com/cosmos/cosmos-db"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/address"

	"github.com/openalpha/yield-router/x/router/types"
)

var start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func newTestContext(t *testing.T) (sdk.Context, storetypes.StoreKey) {
	t.Helper()
	storeKey := storetypes.NewKVStoreKey(StoreKey)
	db := dbm.NewMemDB()
	ms := store.NewCommitMultiStore(db, log.NewNopLogger(), metrics.NewNoOpMetrics())
	ms.MountStoreWithDB(storeKey, storetypes.StoreTypeIAVL, db)
	if err := ms.LoadLatestVersion(); err != nil {
		t.Fatalf("failed to load store: %v", err)
	}
	return sdk.NewContext(ms, cmtproto.Header{Height: 1, Time: start}, false, log.NewNopLogger()), storeKey
}

func addr(name string) string {
	return sdk.AccAddress(address.Hash("vaultsim", []byte(name))).String()
}

func TestBankTransfer(t *testing.T) {
	ctx, storeKey := newTestContext(t)
	bank := NewBank(storeKey)
	alice, bob := addr("alice"), addr("bob")

	bank.Mint(ctx, alice, "udai", math.NewInt(100))
	if err := bank.Transfer(ctx, alice, bob, "udai", math.NewInt(30)); err != nil {
		t.Fatal(err)
	}
	if err := bank.Transfer(ctx, alice, bob, "udai", math.NewInt(71)); err == nil {
		t.Error("expected insufficient funds")
	}
	if err := bank.Transfer(ctx, alice, bob, "udai", math.NewInt(-1)); err == nil {
		t.Error("expected negative transfer to fail")
	}
	if got := bank.Balance(ctx, alice, "udai"); !got.Equal(math.NewInt(70)) {
		t.Errorf("expected 70, got %s", got)
	}
	coin := bank.GetBalance(ctx, sdk.MustAccAddressFromBech32(bob), "udai")
	if !coin.Amount.Equal(math.NewInt(30)) {
		t.Errorf("expected 30, got %s", coin)
	}
	if err := bank.Burn(ctx, bob, "udai", math.NewInt(31)); err == nil {
		t.Error("expected burn above balance to fail")
	}
}

func TestInnerVaultReportAndUnlock(t *testing.T) {
	ctx, storeKey := newTestContext(t)
	bank := NewBank(storeKey)
	inner := NewInnerVaults(storeKey, bank)
	user, fees := addr("user"), addr("fees")
	unlock := 10 * 24 * time.Hour
	vault := inner.Create(ctx, "v3", "udai", unlock, 1_000, fees)

	bank.Mint(ctx, user, "udai", math.NewInt(1_000_000))
	shares, err := inner.Deposit(ctx, vault, user, math.NewInt(1_000_000))
	if err != nil {
		t.Fatal(err)
	}
	if !shares.Equal(math.NewInt(1_000_000)) {
		t.Errorf("expected 1:1 shares, got %s", shares)
	}

	// donation is invisible until reported
	bank.Mint(ctx, vault, "udai", math.NewInt(100_000))
	if got := inner.ConvertToAssets(ctx, vault, shares); !got.Equal(math.NewInt(1_000_000)) {
		t.Errorf("expected unreported donation ignored, got %s", got)
	}
	profit, err := inner.Report(ctx, vault)
	if err != nil {
		t.Fatal(err)
	}
	if !profit.Equal(math.NewInt(100_000)) {
		t.Errorf("expected profit 100000, got %s", profit)
	}
	if inner.BalanceOf(ctx, vault, fees).IsZero() {
		t.Error("expected fee shares minted")
	}
	if got := inner.ConvertToAssets(ctx, vault, shares); !got.Equal(math.NewInt(1_000_000)) {
		t.Errorf("expected locked profit excluded, got %s", got)
	}

	later := ctx.WithBlockTime(start.Add(unlock))
	// fee shares dilute the depositor: 1e6 * 1.1e6 / 1.01e6
	if got := inner.ConvertToAssets(later, vault, shares); !got.Equal(math.NewInt(1_089_108)) {
		t.Errorf("expected 1089108 after unlock, got %s", got)
	}
}

func TestInnerVaultReportLoss(t *testing.T) {
	ctx, storeKey := newTestContext(t)
	bank := NewBank(storeKey)
	inner := NewInnerVaults(storeKey, bank)
	user := addr("user")
	vault := inner.Create(ctx, "v3", "udai", 0, 0, "")
	bank.Mint(ctx, user, "udai", math.NewInt(1_000))
	if _, err := inner.Deposit(ctx, vault, user, math.NewInt(1_000)); err != nil {
		t.Fatal(err)
	}

	if err := inner.ReportLoss(ctx, vault, math.NewInt(1_001)); err == nil {
		t.Error("expected loss above total assets to fail")
	}
	if err := inner.ReportLoss(ctx, vault, math.NewInt(100)); err != nil {
		t.Fatal(err)
	}
	shares := inner.BalanceOf(ctx, vault, user)
	if got := inner.ConvertToAssets(ctx, vault, shares); !got.Equal(math.NewInt(900)) {
		t.Errorf("expected position worth 900, got %s", got)
	}
	if got := bank.Balance(ctx, vault, "udai"); !got.Equal(math.NewInt(900)) {
		t.Errorf("expected vault balance 900, got %s", got)
	}
	if got := inner.MaxWithdraw(ctx, vault, user); !got.Equal(math.NewInt(900)) {
		t.Errorf("expected max withdraw 900, got %s", got)
	}
}

func TestInnerVaultLimits(t *testing.T) {
	ctx, storeKey := newTestContext(t)
	bank := NewBank(storeKey)
	inner := NewInnerVaults(storeKey, bank)
	user := addr("user")
	vault := inner.Create(ctx, "v3", "udai", 0, 0, "")
	bank.Mint(ctx, user, "udai", math.NewInt(1_000))

	depositCap := math.NewInt(600)
	if err := inner.SetDepositLimit(ctx, vault, &depositCap); err != nil {
		t.Fatal(err)
	}
	if got := inner.MaxDeposit(ctx, vault, user); !got.Equal(depositCap) {
		t.Errorf("expected max deposit %s, got %s", depositCap, got)
	}
	if _, err := inner.Deposit(ctx, vault, user, math.NewInt(601)); err == nil {
		t.Error("expected deposit over limit to fail")
	}
	if _, err := inner.Deposit(ctx, vault, user, depositCap); err != nil {
		t.Fatal(err)
	}
	if got := inner.MaxDeposit(ctx, vault, user); !got.IsZero() {
		t.Errorf("expected exhausted capacity, got %s", got)
	}

	limit := math.NewInt(100)
	if err := inner.SetWithdrawable(ctx, vault, &limit); err != nil {
		t.Fatal(err)
	}
	if got := inner.MaxWithdraw(ctx, vault, user); !got.Equal(limit) {
		t.Errorf("expected max withdraw %s, got %s", limit, got)
	}
	if _, err := inner.Withdraw(ctx, vault, user, user, math.NewInt(60)); err != nil {
		t.Fatal(err)
	}
	if got := inner.MaxWithdraw(ctx, vault, user); !got.Equal(math.NewInt(40)) {
		t.Errorf("expected remaining limit 40, got %s", got)
	}
	if err := inner.SetWithdrawable(ctx, vault, nil); err != nil {
		t.Fatal(err)
	}
	if got := inner.MaxWithdraw(ctx, vault, user); !got.Equal(math.NewInt(540)) {
		t.Errorf("expected full position 540, got %s", got)
	}
}

type stubWithdrawer struct {
	bank  *Bank
	asset string
	calls int
}

func (s *stubWithdrawer) Withdraw(ctx sdk.Context, caller, strategy string, amount math.Int) (math.Int, error) {
	s.calls++
	freed := math.MinInt(amount, s.bank.Balance(ctx, strategy, s.asset))
	return freed, s.bank.Transfer(ctx, strategy, caller, s.asset, freed)
}

func TestOuterVaultReportCycle(t *testing.T) {
	ctx, storeKey := newTestContext(t)
	bank := NewBank(storeKey)
	outer := NewOuterVaults(storeKey, bank, log.NewNopLogger())
	w := &stubWithdrawer{bank: bank, asset: "udai"}
	outer.SetWithdrawer(w)

	user, strategy := addr("user"), addr("strategy")
	vault := outer.Create(ctx, "yv", "udai", types.VaultRoles{Governance: addr("gov")})
	bank.Mint(ctx, user, "udai", math.NewInt(1_000))

	if _, err := outer.Deposit(ctx, vault, user, math.NewInt(1_000)); err == nil {
		t.Error("expected zero deposit limit to reject deposits")
	}
	if err := outer.SetDepositLimit(ctx, vault, Unlimited); err != nil {
		t.Fatal(err)
	}
	if _, err := outer.Deposit(ctx, vault, user, math.NewInt(1_000)); err != nil {
		t.Fatal(err)
	}
	if err := outer.AddStrategy(ctx, vault, strategy, 5_000, math.ZeroInt(), Unlimited); err != nil {
		t.Fatal(err)
	}
	if got := outer.CreditAvailable(ctx, vault, strategy); !got.Equal(math.NewInt(500)) {
		t.Errorf("expected credit 500, got %s", got)
	}

	debt, err := outer.Report(ctx, vault, strategy, math.ZeroInt(), math.ZeroInt(), math.ZeroInt())
	if err != nil {
		t.Fatal(err)
	}
	if !debt.IsZero() || !bank.Balance(ctx, strategy, "udai").Equal(math.NewInt(500)) {
		t.Errorf("expected strategy funded with 500 and no debt outstanding, got %s / %s", bank.Balance(ctx, strategy, "udai"), debt)
	}

	// gain stays in the vault and unlocks over the degradation window
	bank.Mint(ctx, strategy, "udai", math.NewInt(100))
	ctx = ctx.WithBlockTime(start.Add(time.Hour))
	if _, err := outer.Report(ctx, vault, strategy, math.NewInt(100), math.ZeroInt(), math.ZeroInt()); err != nil {
		t.Fatal(err)
	}
	if got := outer.TotalAssets(ctx, vault); !got.Equal(math.NewInt(1_100)) {
		t.Errorf("expected total assets 1100, got %s", got)
	}
	if pps := outer.PricePerShare(ctx, vault); !pps.Equal(math.LegacyOneDec()) {
		t.Errorf("expected locked gain excluded from price, got %s", pps)
	}
	ctx = ctx.WithBlockTime(start.Add(time.Hour + LockedProfitDegradation))
	if pps := outer.PricePerShare(ctx, vault); !pps.Equal(math.LegacyMustNewDecFromStr("1.1")) {
		t.Errorf("expected price 1.1 after unlock, got %s", pps)
	}

	if err := outer.RevokeStrategy(ctx, vault, strategy); err != nil {
		t.Fatal(err)
	}
	if got := outer.DebtOutstanding(ctx, vault, strategy); !got.Equal(math.NewInt(500)) {
		t.Errorf("expected whole debt outstanding after revoke, got %s", got)
	}

	value, err := outer.Withdraw(ctx, vault, user, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !value.Equal(math.NewInt(1_100)) || w.calls != 1 {
		t.Errorf("expected 1100 through one strategy call, got %s after %d calls", value, w.calls)
	}
}
