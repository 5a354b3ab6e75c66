package vaultsim

import (
	"fmt"
	"time"

	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// InnerVaultState is an ERC-4626 style vault. Assets sent to the vault
// address directly are not counted until Report.
type InnerVaultState struct {
	Address     string   `json:"address"`
	Asset       string   `json:"asset"`
	TotalAssets math.Int `json:"total_assets"`
	TotalSupply math.Int `json:"total_supply"`

	ProfitMaxUnlockTime time.Duration `json:"profit_max_unlock_time"`
	PerformanceFeeBPS   uint64        `json:"performance_fee_bps"`
	FeeRecipient        string        `json:"fee_recipient"`
	LockedProfit        math.Int      `json:"locked_profit"`
	LockedAt            int64         `json:"locked_at"`

	DepositLimited  bool     `json:"deposit_limited"`
	DepositLimit    math.Int `json:"deposit_limit"`
	WithdrawLimited bool     `json:"withdraw_limited"`
	WithdrawLimit   math.Int `json:"withdraw_limit"`
}

// InnerVaults simulates every inner vault
type InnerVaults struct {
	storeKey storetypes.StoreKey
	bank     *Bank
}

// NewInnerVaults creates the inner vault simulator
func NewInnerVaults(storeKey storetypes.StoreKey, bank *Bank) *InnerVaults {
	return &InnerVaults{storeKey: storeKey, bank: bank}
}

// Create registers a new inner vault and returns its address
func (v *InnerVaults) Create(ctx sdk.Context, name, asset string, unlock time.Duration, feeBPS uint64, feeRecipient string) string {
	st := &InnerVaultState{
		Address:             VaultAddress("inner", name),
		Asset:               asset,
		TotalAssets:         math.ZeroInt(),
		TotalSupply:         math.ZeroInt(),
		ProfitMaxUnlockTime: unlock,
		PerformanceFeeBPS:   feeBPS,
		FeeRecipient:        feeRecipient,
		LockedProfit:        math.ZeroInt(),
		DepositLimit:        math.ZeroInt(),
		WithdrawLimit:       math.ZeroInt(),
	}
	v.set(ctx, st)
	return st.Address
}

// Get returns the state of a vault
func (v *InnerVaults) Get(ctx sdk.Context, vault string) (*InnerVaultState, error) {
	var st InnerVaultState
	if !getJSON(ctx.KVStore(v.storeKey), key(innerVaultKeyPrefix, vault), &st) {
		return nil, fmt.Errorf("inner vault %s not found", vault)
	}
	return &st, nil
}

func (v *InnerVaults) set(ctx sdk.Context, st *InnerVaultState) {
	setJSON(ctx.KVStore(v.storeKey), key(innerVaultKeyPrefix, st.Address), st)
}

func (v *InnerVaults) shares(ctx sdk.Context, vault, holder string) math.Int {
	bz := ctx.KVStore(v.storeKey).Get(key(innerSharesKeyPrefix, vault, holder))
	if bz == nil {
		return math.ZeroInt()
	}
	amt, _ := math.NewIntFromString(string(bz))
	return amt
}

func (v *InnerVaults) setShares(ctx sdk.Context, vault, holder string, amt math.Int) {
	ctx.KVStore(v.storeKey).Set(key(innerSharesKeyPrefix, vault, holder), []byte(amt.String()))
}

// lockedProfit is the part of the last report still unlocking
func (st *InnerVaultState) lockedProfit(now time.Time) math.Int {
	if !st.LockedProfit.IsPositive() || st.ProfitMaxUnlockTime <= 0 {
		return math.ZeroInt()
	}
	elapsed := now.Sub(time.Unix(st.LockedAt, 0))
	if elapsed >= st.ProfitMaxUnlockTime {
		return math.ZeroInt()
	}
	remaining := st.ProfitMaxUnlockTime - elapsed
	return mulDiv(st.LockedProfit, math.NewInt(int64(remaining)), math.NewInt(int64(st.ProfitMaxUnlockTime)))
}

func (st *InnerVaultState) freeAssets(now time.Time) math.Int {
	return st.TotalAssets.Sub(st.lockedProfit(now))
}

func (st *InnerVaultState) toShares(assets math.Int, now time.Time, roundUp bool) math.Int {
	if st.TotalSupply.IsZero() {
		return assets
	}
	if roundUp {
		return mulDivUp(assets, st.TotalSupply, st.freeAssets(now))
	}
	return mulDiv(assets, st.TotalSupply, st.freeAssets(now))
}

func (st *InnerVaultState) toAssets(shares math.Int, now time.Time) math.Int {
	if st.TotalSupply.IsZero() {
		return shares
	}
	return mulDiv(shares, st.freeAssets(now), st.TotalSupply)
}

// Asset returns the vault's underlying denom
func (v *InnerVaults) Asset(ctx sdk.Context, vault string) (string, error) {
	st, err := v.Get(ctx, vault)
	if err != nil {
		return "", err
	}
	return st.Asset, nil
}

// Deposit pulls assets from depositor and mints shares
func (v *InnerVaults) Deposit(ctx sdk.Context, vault, depositor string, assets math.Int) (math.Int, error) {
	st, err := v.Get(ctx, vault)
	if err != nil {
		return math.ZeroInt(), err
	}
	if assets.GT(v.maxDeposit(st)) {
		return math.ZeroInt(), fmt.Errorf("deposit %s exceeds limit", assets)
	}
	shares := st.toShares(assets, ctx.BlockTime(), false)
	if !shares.IsPositive() {
		return math.ZeroInt(), fmt.Errorf("deposit %s mints no shares", assets)
	}
	if err := v.bank.Transfer(ctx, depositor, st.Address, st.Asset, assets); err != nil {
		return math.ZeroInt(), err
	}
	st.TotalAssets = st.TotalAssets.Add(assets)
	st.TotalSupply = st.TotalSupply.Add(shares)
	v.set(ctx, st)
	v.setShares(ctx, vault, depositor, v.shares(ctx, vault, depositor).Add(shares))
	return shares, nil
}

// Withdraw burns owner's shares and sends assets to receiver
func (v *InnerVaults) Withdraw(ctx sdk.Context, vault, owner, receiver string, assets math.Int) (math.Int, error) {
	st, err := v.Get(ctx, vault)
	if err != nil {
		return math.ZeroInt(), err
	}
	if assets.GT(v.maxWithdraw(ctx, st, owner)) {
		return math.ZeroInt(), fmt.Errorf("withdraw %s exceeds max withdraw", assets)
	}
	shares := math.MinInt(st.toShares(assets, ctx.BlockTime(), true), v.shares(ctx, vault, owner))
	if err := v.bank.Transfer(ctx, st.Address, receiver, st.Asset, assets); err != nil {
		return math.ZeroInt(), err
	}
	st.TotalAssets = st.TotalAssets.Sub(assets)
	st.TotalSupply = st.TotalSupply.Sub(shares)
	if st.WithdrawLimited {
		st.WithdrawLimit = st.WithdrawLimit.Sub(assets)
	}
	v.set(ctx, st)
	v.setShares(ctx, vault, owner, v.shares(ctx, vault, owner).Sub(shares))
	return shares, nil
}

func (v *InnerVaults) maxDeposit(st *InnerVaultState) math.Int {
	if !st.DepositLimited {
		return Unlimited
	}
	if st.DepositLimit.LTE(st.TotalAssets) {
		return math.ZeroInt()
	}
	return st.DepositLimit.Sub(st.TotalAssets)
}

func (v *InnerVaults) maxWithdraw(ctx sdk.Context, st *InnerVaultState, owner string) math.Int {
	limit := st.toAssets(v.shares(ctx, st.Address, owner), ctx.BlockTime())
	limit = math.MinInt(limit, v.bank.Balance(ctx, st.Address, st.Asset))
	if st.WithdrawLimited {
		limit = math.MinInt(limit, st.WithdrawLimit)
	}
	return limit
}

// MaxDeposit returns the remaining deposit capacity
func (v *InnerVaults) MaxDeposit(ctx sdk.Context, vault, receiver string) math.Int {
	st, err := v.Get(ctx, vault)
	if err != nil {
		return math.ZeroInt()
	}
	return v.maxDeposit(st)
}

// MaxWithdraw returns what owner can withdraw right now
func (v *InnerVaults) MaxWithdraw(ctx sdk.Context, vault, owner string) math.Int {
	st, err := v.Get(ctx, vault)
	if err != nil {
		return math.ZeroInt()
	}
	return v.maxWithdraw(ctx, st, owner)
}

// BalanceOf returns holder's shares
func (v *InnerVaults) BalanceOf(ctx sdk.Context, vault, holder string) math.Int {
	return v.shares(ctx, vault, holder)
}

// ConvertToAssets prices shares at the unlocked share price
func (v *InnerVaults) ConvertToAssets(ctx sdk.Context, vault string, shares math.Int) math.Int {
	st, err := v.Get(ctx, vault)
	if err != nil {
		return math.ZeroInt()
	}
	return st.toAssets(shares, ctx.BlockTime())
}

// TotalAssets returns recorded assets, locked profit included
func (v *InnerVaults) TotalAssets(ctx sdk.Context, vault string) math.Int {
	st, err := v.Get(ctx, vault)
	if err != nil {
		return math.ZeroInt()
	}
	return st.TotalAssets
}

// ProfitMaxUnlockTime returns the profit unlock window
func (v *InnerVaults) ProfitMaxUnlockTime(ctx sdk.Context, vault string) time.Duration {
	st, err := v.Get(ctx, vault)
	if err != nil {
		return 0
	}
	return st.ProfitMaxUnlockTime
}

// Report records assets donated to the vault as profit. The performance fee
// is minted as shares to the fee recipient; the rest unlocks over
// ProfitMaxUnlockTime.
func (v *InnerVaults) Report(ctx sdk.Context, vault string) (profit math.Int, err error) {
	st, err := v.Get(ctx, vault)
	if err != nil {
		return math.ZeroInt(), err
	}
	balance := v.bank.Balance(ctx, st.Address, st.Asset)
	if !balance.GT(st.TotalAssets) {
		return math.ZeroInt(), nil
	}
	now := ctx.BlockTime()
	profit = balance.Sub(st.TotalAssets)
	fee := mulDiv(profit, math.NewIntFromUint64(st.PerformanceFeeBPS), math.NewInt(10_000))
	if fee.IsPositive() && st.FeeRecipient != "" {
		feeShares := st.toShares(fee, now, false)
		st.TotalSupply = st.TotalSupply.Add(feeShares)
		v.setShares(ctx, vault, st.FeeRecipient, v.shares(ctx, vault, st.FeeRecipient).Add(feeShares))
	} else {
		fee = math.ZeroInt()
	}
	st.LockedProfit = st.lockedProfit(now).Add(profit.Sub(fee))
	st.LockedAt = now.Unix()
	st.TotalAssets = balance
	v.set(ctx, st)
	return profit, nil
}

// ReportLoss burns amount of the vault's assets, as a bad investment would.
// Locked profit absorbs the loss first.
func (v *InnerVaults) ReportLoss(ctx sdk.Context, vault string, amount math.Int) error {
	st, err := v.Get(ctx, vault)
	if err != nil {
		return err
	}
	if !amount.IsPositive() || amount.GT(st.TotalAssets) {
		return fmt.Errorf("loss %s out of range (total assets %s)", amount, st.TotalAssets)
	}
	if err := v.bank.Burn(ctx, st.Address, st.Asset, amount); err != nil {
		return err
	}
	now := ctx.BlockTime()
	locked := st.lockedProfit(now)
	st.LockedProfit = locked.Sub(math.MinInt(locked, amount))
	st.LockedAt = now.Unix()
	st.TotalAssets = st.TotalAssets.Sub(amount)
	v.set(ctx, st)
	return nil
}

// SetDepositLimit caps total assets. A nil limit removes the cap.
func (v *InnerVaults) SetDepositLimit(ctx sdk.Context, vault string, limit *math.Int) error {
	st, err := v.Get(ctx, vault)
	if err != nil {
		return err
	}
	st.DepositLimited = limit != nil
	if limit != nil {
		st.DepositLimit = *limit
	}
	v.set(ctx, st)
	return nil
}

// SetWithdrawable limits how much can be withdrawn until the limit is used
// up or cleared. A nil limit restores full liquidity.
func (v *InnerVaults) SetWithdrawable(ctx sdk.Context, vault string, limit *math.Int) error {
	st, err := v.Get(ctx, vault)
	if err != nil {
		return err
	}
	st.WithdrawLimited = limit != nil
	if limit != nil {
		st.WithdrawLimit = *limit
	}
	v.set(ctx, st)
	return nil
}
