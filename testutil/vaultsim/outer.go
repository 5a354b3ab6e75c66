package vaultsim

import (
	"fmt"
	"time"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/openalpha/yield-router/x/router/types"
)

// LockedProfitDegradation is how long reported gains take to show in the share price
const LockedProfitDegradation = 6 * time.Hour

// OuterVaultState is a V2-style capital pool
type OuterVaultState struct {
	Address    string `json:"address"`
	Asset      string `json:"asset"`
	ShareDenom string `json:"share_denom"`

	Roles types.VaultRoles `json:"roles"`

	TotalIdle    math.Int `json:"total_idle"`
	TotalDebt    math.Int `json:"total_debt"`
	TotalSupply  math.Int `json:"total_supply"`
	DebtRatio    uint64   `json:"debt_ratio"`
	DepositLimit math.Int `json:"deposit_limit"`
	LockedProfit math.Int `json:"locked_profit"`
	LastReport   int64    `json:"last_report"`

	WithdrawalQueue []string `json:"withdrawal_queue"`
}

// OuterVaults simulates every outer vault
type OuterVaults struct {
	storeKey   storetypes.StoreKey
	bank       *Bank
	withdrawer types.StrategyWithdrawer
	logger     log.Logger
}

var _ types.OuterVaultKeeper = (*OuterVaults)(nil)

// NewOuterVaults creates the outer vault simulator
func NewOuterVaults(storeKey storetypes.StoreKey, bank *Bank, logger log.Logger) *OuterVaults {
	return &OuterVaults{storeKey: storeKey, bank: bank, logger: logger.With("module", "vaultsim/outer")}
}

// SetWithdrawer wires the strategy side of vault withdrawals
func (v *OuterVaults) SetWithdrawer(w types.StrategyWithdrawer) {
	v.withdrawer = w
}

// Create registers a new outer vault and returns its address.
// The deposit limit starts at zero, like a freshly initialized V2 vault.
func (v *OuterVaults) Create(ctx sdk.Context, name, asset string, roles types.VaultRoles) string {
	st := &OuterVaultState{
		Address:      VaultAddress("outer", name),
		Asset:        asset,
		ShareDenom:   "yv" + asset,
		Roles:        roles,
		TotalIdle:    math.ZeroInt(),
		TotalDebt:    math.ZeroInt(),
		TotalSupply:  math.ZeroInt(),
		DepositLimit: math.ZeroInt(),
		LockedProfit: math.ZeroInt(),
		LastReport:   ctx.BlockTime().Unix(),
	}
	v.set(ctx, st)
	return st.Address
}

// Get returns the state of a vault
func (v *OuterVaults) Get(ctx sdk.Context, vault string) (*OuterVaultState, error) {
	var st OuterVaultState
	if !getJSON(ctx.KVStore(v.storeKey), key(outerVaultKeyPrefix, vault), &st) {
		return nil, fmt.Errorf("outer vault %s not found", vault)
	}
	return &st, nil
}

func (v *OuterVaults) set(ctx sdk.Context, st *OuterVaultState) {
	setJSON(ctx.KVStore(v.storeKey), key(outerVaultKeyPrefix, st.Address), st)
}

func (v *OuterVaults) getParams(ctx sdk.Context, vault, strategy string) (*types.StrategyParams, bool) {
	var p types.StrategyParams
	if !getJSON(ctx.KVStore(v.storeKey), key(outerStrategyPrefix, vault, strategy), &p) {
		return nil, false
	}
	return &p, true
}

func (v *OuterVaults) setParams(ctx sdk.Context, vault, strategy string, p *types.StrategyParams) {
	setJSON(ctx.KVStore(v.storeKey), key(outerStrategyPrefix, vault, strategy), p)
}

func (st *OuterVaultState) totalAssets() math.Int {
	return st.TotalIdle.Add(st.TotalDebt)
}

func (st *OuterVaultState) lockedProfit(now time.Time) math.Int {
	if !st.LockedProfit.IsPositive() {
		return math.ZeroInt()
	}
	elapsed := now.Sub(time.Unix(st.LastReport, 0))
	if elapsed >= LockedProfitDegradation {
		return math.ZeroInt()
	}
	remaining := LockedProfitDegradation - elapsed
	return mulDiv(st.LockedProfit, math.NewInt(int64(remaining)), math.NewInt(int64(LockedProfitDegradation)))
}

func (st *OuterVaultState) freeFunds(now time.Time) math.Int {
	return st.totalAssets().Sub(st.lockedProfit(now))
}

func (st *OuterVaultState) sharesForAmount(amount math.Int, now time.Time) math.Int {
	free := st.freeFunds(now)
	if !free.IsPositive() {
		return math.ZeroInt()
	}
	return mulDiv(amount, st.TotalSupply, free)
}

func (st *OuterVaultState) shareValue(shares math.Int, now time.Time) math.Int {
	if st.TotalSupply.IsZero() {
		return shares
	}
	return mulDiv(shares, st.freeFunds(now), st.TotalSupply)
}

// ============ User Surface ============

// SetDepositLimit caps the vault's total assets
func (v *OuterVaults) SetDepositLimit(ctx sdk.Context, vault string, limit math.Int) error {
	st, err := v.Get(ctx, vault)
	if err != nil {
		return err
	}
	st.DepositLimit = limit
	v.set(ctx, st)
	return nil
}

// Deposit takes amount of the asset from user and mints shares
func (v *OuterVaults) Deposit(ctx sdk.Context, vault, user string, amount math.Int) (math.Int, error) {
	st, err := v.Get(ctx, vault)
	if err != nil {
		return math.ZeroInt(), err
	}
	if st.totalAssets().Add(amount).GT(st.DepositLimit) {
		return math.ZeroInt(), fmt.Errorf("deposit %s exceeds deposit limit %s", amount, st.DepositLimit)
	}
	shares := amount
	if st.TotalSupply.IsPositive() {
		shares = st.sharesForAmount(amount, ctx.BlockTime())
	}
	if !shares.IsPositive() {
		return math.ZeroInt(), fmt.Errorf("deposit %s mints no shares", amount)
	}
	if err := v.bank.Transfer(ctx, user, st.Address, st.Asset, amount); err != nil {
		return math.ZeroInt(), err
	}
	v.bank.Mint(ctx, user, st.ShareDenom, shares)
	st.TotalIdle = st.TotalIdle.Add(amount)
	st.TotalSupply = st.TotalSupply.Add(shares)
	v.set(ctx, st)
	return shares, nil
}

// Withdraw redeems up to maxShares of user's shares (nil means all). When
// strategies cannot free enough, only the shares covering what was paid out
// are burned and the user keeps the rest.
func (v *OuterVaults) Withdraw(ctx sdk.Context, vault, user string, maxShares *math.Int) (math.Int, error) {
	st, err := v.Get(ctx, vault)
	if err != nil {
		return math.ZeroInt(), err
	}
	now := ctx.BlockTime()
	shares := v.bank.Balance(ctx, user, st.ShareDenom)
	if maxShares != nil {
		shares = math.MinInt(shares, *maxShares)
	}
	if !shares.IsPositive() {
		return math.ZeroInt(), fmt.Errorf("no shares to withdraw")
	}

	value := st.shareValue(shares, now)
	if value.GT(st.TotalIdle) {
		for _, strategy := range st.WithdrawalQueue {
			if !value.GT(st.TotalIdle) {
				break
			}
			p, ok := v.getParams(ctx, vault, strategy)
			if !ok {
				continue
			}
			needed := math.MinInt(value.Sub(st.TotalIdle), p.TotalDebt)
			if !needed.IsPositive() || v.withdrawer == nil {
				continue
			}
			before := v.bank.Balance(ctx, st.Address, st.Asset)
			if _, err := v.withdrawer.Withdraw(ctx, st.Address, strategy, needed); err != nil {
				return math.ZeroInt(), err
			}
			withdrawn := v.bank.Balance(ctx, st.Address, st.Asset).Sub(before)
			st.TotalIdle = st.TotalIdle.Add(withdrawn)
			p.TotalDebt = p.TotalDebt.Sub(withdrawn)
			st.TotalDebt = st.TotalDebt.Sub(withdrawn)
			v.setParams(ctx, vault, strategy, p)
		}
		if value.GT(st.TotalIdle) {
			value = st.TotalIdle
			shares = math.MinInt(shares, mulDivUp(value, st.TotalSupply, st.freeFunds(now)))
		}
	}

	if err := v.bank.Burn(ctx, user, st.ShareDenom, shares); err != nil {
		return math.ZeroInt(), err
	}
	st.TotalSupply = st.TotalSupply.Sub(shares)
	st.TotalIdle = st.TotalIdle.Sub(value)
	v.set(ctx, st)
	if err := v.bank.Transfer(ctx, st.Address, user, st.Asset, value); err != nil {
		return math.ZeroInt(), err
	}
	return value, nil
}

// ============ Governance Surface ============

// AddStrategy attaches a strategy with a debt ratio and per-harvest debt bounds
func (v *OuterVaults) AddStrategy(ctx sdk.Context, vault, strategy string, debtRatio uint64, minDebt, maxDebt math.Int) error {
	st, err := v.Get(ctx, vault)
	if err != nil {
		return err
	}
	if _, ok := v.getParams(ctx, vault, strategy); ok {
		return fmt.Errorf("strategy %s already added", strategy)
	}
	if st.DebtRatio+debtRatio > types.MaxBPS {
		return fmt.Errorf("debt ratio %d over limit", st.DebtRatio+debtRatio)
	}
	now := ctx.BlockTime().Unix()
	v.setParams(ctx, vault, strategy, &types.StrategyParams{
		Activation:        now,
		DebtRatio:         debtRatio,
		MinDebtPerHarvest: minDebt,
		MaxDebtPerHarvest: maxDebt,
		LastReport:        now,
		TotalDebt:         math.ZeroInt(),
		TotalGain:         math.ZeroInt(),
		TotalLoss:         math.ZeroInt(),
	})
	st.DebtRatio += debtRatio
	st.WithdrawalQueue = append(st.WithdrawalQueue, strategy)
	v.set(ctx, st)
	return nil
}

// UpdateStrategyDebtRatio changes a strategy's target share of vault assets
func (v *OuterVaults) UpdateStrategyDebtRatio(ctx sdk.Context, vault, strategy string, debtRatio uint64) error {
	st, err := v.Get(ctx, vault)
	if err != nil {
		return err
	}
	p, ok := v.getParams(ctx, vault, strategy)
	if !ok {
		return fmt.Errorf("strategy %s not added", strategy)
	}
	total := st.DebtRatio - p.DebtRatio + debtRatio
	if total > types.MaxBPS {
		return fmt.Errorf("debt ratio %d over limit", total)
	}
	st.DebtRatio = total
	p.DebtRatio = debtRatio
	v.setParams(ctx, vault, strategy, p)
	v.set(ctx, st)
	return nil
}

// ============ Strategy Surface ============

// Asset returns the vault's underlying denom
func (v *OuterVaults) Asset(ctx sdk.Context, vault string) (string, error) {
	st, err := v.Get(ctx, vault)
	if err != nil {
		return "", err
	}
	return st.Asset, nil
}

// ShareDenom returns the vault's share denom
func (v *OuterVaults) ShareDenom(ctx sdk.Context, vault string) (string, error) {
	st, err := v.Get(ctx, vault)
	if err != nil {
		return "", err
	}
	return st.ShareDenom, nil
}

// Roles returns the vault roles inherited by strategies
func (v *OuterVaults) Roles(ctx sdk.Context, vault string) (types.VaultRoles, error) {
	st, err := v.Get(ctx, vault)
	if err != nil {
		return types.VaultRoles{}, err
	}
	return st.Roles, nil
}

// StrategyParams returns the vault's record of a strategy
func (v *OuterVaults) StrategyParams(ctx sdk.Context, vault, strategy string) (types.StrategyParams, error) {
	p, ok := v.getParams(ctx, vault, strategy)
	if !ok {
		return types.StrategyParams{}, fmt.Errorf("strategy %s not added to %s", strategy, vault)
	}
	return *p, nil
}

func (v *OuterVaults) debtOutstanding(st *OuterVaultState, p *types.StrategyParams) math.Int {
	if st.DebtRatio == 0 {
		return p.TotalDebt
	}
	limit := mulDiv(math.NewIntFromUint64(p.DebtRatio), st.totalAssets(), math.NewInt(types.MaxBPS))
	if p.TotalDebt.LTE(limit) {
		return math.ZeroInt()
	}
	return p.TotalDebt.Sub(limit)
}

func (v *OuterVaults) creditAvailable(st *OuterVaultState, p *types.StrategyParams) math.Int {
	total := st.totalAssets()
	vaultLimit := mulDiv(math.NewIntFromUint64(st.DebtRatio), total, math.NewInt(types.MaxBPS))
	strategyLimit := mulDiv(math.NewIntFromUint64(p.DebtRatio), total, math.NewInt(types.MaxBPS))
	if strategyLimit.LTE(p.TotalDebt) || vaultLimit.LTE(st.TotalDebt) {
		return math.ZeroInt()
	}
	available := strategyLimit.Sub(p.TotalDebt)
	available = math.MinInt(available, vaultLimit.Sub(st.TotalDebt))
	available = math.MinInt(available, st.TotalIdle)
	if available.LT(p.MinDebtPerHarvest) {
		return math.ZeroInt()
	}
	return math.MinInt(available, p.MaxDebtPerHarvest)
}

// DebtOutstanding is how far the strategy is above its debt limit
func (v *OuterVaults) DebtOutstanding(ctx sdk.Context, vault, strategy string) math.Int {
	st, err := v.Get(ctx, vault)
	if err != nil {
		return math.ZeroInt()
	}
	p, ok := v.getParams(ctx, vault, strategy)
	if !ok {
		return math.ZeroInt()
	}
	return v.debtOutstanding(st, p)
}

// CreditAvailable is how much more the vault would lend the strategy
func (v *OuterVaults) CreditAvailable(ctx sdk.Context, vault, strategy string) math.Int {
	st, err := v.Get(ctx, vault)
	if err != nil {
		return math.ZeroInt()
	}
	p, ok := v.getParams(ctx, vault, strategy)
	if !ok {
		return math.ZeroInt()
	}
	return v.creditAvailable(st, p)
}

// Report settles a strategy harvest. Credit is sized before the gain lands,
// so realized profit stays in the vault. Returns the remaining debt outstanding.
func (v *OuterVaults) Report(ctx sdk.Context, vault, strategy string, gain, loss, debtPayment math.Int) (math.Int, error) {
	st, err := v.Get(ctx, vault)
	if err != nil {
		return math.ZeroInt(), err
	}
	p, ok := v.getParams(ctx, vault, strategy)
	if !ok {
		return math.ZeroInt(), fmt.Errorf("strategy %s not added to %s", strategy, vault)
	}
	if bal := v.bank.Balance(ctx, strategy, st.Asset); bal.LT(gain.Add(debtPayment)) {
		return math.ZeroInt(), fmt.Errorf("strategy balance %s below gain %s + debt payment %s", bal, gain, debtPayment)
	}
	now := ctx.BlockTime()

	if loss.IsPositive() {
		if loss.GT(p.TotalDebt) {
			return math.ZeroInt(), fmt.Errorf("loss %s exceeds debt %s", loss, p.TotalDebt)
		}
		if st.DebtRatio > 0 && st.TotalDebt.IsPositive() {
			change := mulDiv(loss, math.NewIntFromUint64(st.DebtRatio), st.TotalDebt).Uint64()
			if change > p.DebtRatio {
				change = p.DebtRatio
			}
			p.DebtRatio -= change
			st.DebtRatio -= change
		}
		p.TotalLoss = p.TotalLoss.Add(loss)
		p.TotalDebt = p.TotalDebt.Sub(loss)
		st.TotalDebt = st.TotalDebt.Sub(loss)
	}
	p.TotalGain = p.TotalGain.Add(gain)

	credit := v.creditAvailable(st, p)
	debt := v.debtOutstanding(st, p)
	debtPayment = math.MinInt(debtPayment, debt)
	if debtPayment.IsPositive() {
		p.TotalDebt = p.TotalDebt.Sub(debtPayment)
		st.TotalDebt = st.TotalDebt.Sub(debtPayment)
	}
	if credit.IsPositive() {
		p.TotalDebt = p.TotalDebt.Add(credit)
		st.TotalDebt = st.TotalDebt.Add(credit)
	}

	totalAvail := gain.Add(debtPayment)
	switch {
	case totalAvail.LT(credit):
		amt := credit.Sub(totalAvail)
		st.TotalIdle = st.TotalIdle.Sub(amt)
		if err := v.bank.Transfer(ctx, st.Address, strategy, st.Asset, amt); err != nil {
			return math.ZeroInt(), err
		}
	case totalAvail.GT(credit):
		amt := totalAvail.Sub(credit)
		st.TotalIdle = st.TotalIdle.Add(amt)
		if err := v.bank.Transfer(ctx, strategy, st.Address, st.Asset, amt); err != nil {
			return math.ZeroInt(), err
		}
	}

	locked := st.lockedProfit(now).Add(gain)
	if locked.GT(loss) {
		st.LockedProfit = locked.Sub(loss)
	} else {
		st.LockedProfit = math.ZeroInt()
	}
	p.LastReport = now.Unix()
	st.LastReport = now.Unix()
	v.setParams(ctx, vault, strategy, p)
	v.set(ctx, st)

	v.logger.Debug("strategy reported",
		"vault", vault,
		"strategy", strategy,
		"gain", gain.String(),
		"loss", loss.String(),
		"debt_payment", debtPayment.String(),
		"credit", credit.String(),
	)

	return v.debtOutstanding(st, p), nil
}

// RevokeStrategy sets the strategy's debt ratio to zero
func (v *OuterVaults) RevokeStrategy(ctx sdk.Context, vault, strategy string) error {
	st, err := v.Get(ctx, vault)
	if err != nil {
		return err
	}
	p, ok := v.getParams(ctx, vault, strategy)
	if !ok {
		return fmt.Errorf("strategy %s not added to %s", strategy, vault)
	}
	st.DebtRatio -= p.DebtRatio
	p.DebtRatio = 0
	v.setParams(ctx, vault, strategy, p)
	v.set(ctx, st)
	return nil
}

// PricePerShare is free funds per share, with locked profit excluded
func (v *OuterVaults) PricePerShare(ctx sdk.Context, vault string) math.LegacyDec {
	st, err := v.Get(ctx, vault)
	if err != nil || st.TotalSupply.IsZero() {
		return math.LegacyOneDec()
	}
	return math.LegacyNewDecFromInt(st.freeFunds(ctx.BlockTime())).QuoInt(st.TotalSupply)
}

// TotalAssets is idle plus lent assets
func (v *OuterVaults) TotalAssets(ctx sdk.Context, vault string) math.Int {
	st, err := v.Get(ctx, vault)
	if err != nil {
		return math.ZeroInt()
	}
	return st.totalAssets()
}

// BalanceOf returns holder's share balance
func (v *OuterVaults) BalanceOf(ctx sdk.Context, vault, holder string) math.Int {
	st, err := v.Get(ctx, vault)
	if err != nil {
		return math.ZeroInt()
	}
	return v.bank.Balance(ctx, holder, st.ShareDenom)
}
