package keeper

import (
	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/openalpha/yield-router/x/router/types"
)

// Harvest settles profit, loss and debt with the outer vault, then
// rebalances. Active strategies redeploy idle want into the inner vault;
// exiting strategies only divest. Inner vault illiquidity degrades to a
// partial settlement and never fails the call.
func (k *Keeper) Harvest(ctx sdk.Context, caller, addr string) (*types.HarvestReport, error) {
	s, err := k.mustGetStrategy(ctx, addr)
	if err != nil {
		return nil, err
	}
	if !s.Roles.HasAny(caller, types.RoleManagement, types.RoleStrategist, types.RoleKeeper, types.RoleGovernance) {
		return nil, errorsmod.Wrapf(types.ErrUnauthorized, "%s cannot harvest", caller)
	}

	params, err := k.StrategyParams(ctx, s)
	if err != nil {
		return nil, err
	}
	debtOutstanding := k.debtOutstanding(ctx, s)

	var profit, loss, debtPayment math.Int
	if s.InEmergencyExit() {
		profit, loss, debtPayment, err = k.prepareEmergencyReturn(ctx, s, params.TotalDebt, debtOutstanding)
	} else {
		profit, loss, debtPayment, err = k.prepareReturn(ctx, s, params.TotalDebt, debtOutstanding)
	}
	if err != nil {
		return nil, err
	}

	// The outer vault's answer sizes the deployment below.
	debtOutstanding, err = k.report(ctx, s, profit, loss, debtPayment)
	if err != nil {
		return nil, err
	}

	deposited := math.ZeroInt()
	if !s.InEmergencyExit() {
		deposited, err = k.adjustPosition(ctx, s, debtOutstanding)
		if err != nil {
			return nil, err
		}
	}

	seq := k.nextSequence(ctx, types.ReportSequenceKey)
	report := types.NewHarvestReport(s.Address, seq, ctx.BlockHeight(), ctx.BlockTime())
	report.Profit = profit
	report.Loss = loss
	report.DebtPayment = debtPayment
	report.DebtOutstanding = debtOutstanding
	report.Deposited = deposited
	report.TotalAssets = k.estimatedTotalAssets(ctx, s)
	report.EmergencyExit = s.InEmergencyExit()
	k.setHarvestReport(ctx, seq, report)

	s.ForceHarvestOnce = false
	s.LastHarvestHeight = ctx.BlockHeight()
	s.LastHarvestAt = ctx.BlockTime().Unix()
	k.SetStrategy(ctx, s)

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeHarvested,
			sdk.NewAttribute(types.AttributeKeyStrategy, s.Address),
			sdk.NewAttribute(types.AttributeKeyProfit, profit.String()),
			sdk.NewAttribute(types.AttributeKeyLoss, loss.String()),
			sdk.NewAttribute(types.AttributeKeyDebtPayment, debtPayment.String()),
			sdk.NewAttribute(types.AttributeKeyDebtOutstanding, debtOutstanding.String()),
		),
	)
	if k.metrics != nil {
		k.metrics.RecordHarvest(s.Address, s.State.String(),
			toFloat(profit), toFloat(loss), toFloat(debtOutstanding))
		k.metrics.RecordStrategyState(s.Address, toFloat(report.TotalAssets), s.InEmergencyExit())
	}
	k.logger.Info("harvested",
		"strategy", s.Address,
		"profit", profit.String(),
		"loss", loss.String(),
		"debt_payment", debtPayment.String(),
		"debt_outstanding", debtOutstanding.String(),
		"deposited", deposited.String(),
		"state", s.State.String(),
	)
	return report, nil
}

// prepareReturn realizes profit against the outer vault's recorded debt and
// frees what the vault asked for. Profit is whatever exceeds total debt;
// loss is the shortfall below it.
func (k *Keeper) prepareReturn(ctx sdk.Context, s *types.Strategy, totalDebt, debtOutstanding math.Int) (profit, loss, debtPayment math.Int, err error) {
	profit, loss = math.ZeroInt(), math.ZeroInt()
	assets := k.estimatedTotalAssets(ctx, s)
	if assets.GT(totalDebt) {
		profit = assets.Sub(totalDebt)
	} else {
		loss = totalDebt.Sub(assets)
	}

	toFree := profit.Add(debtOutstanding)
	idle := k.wantBalance(ctx, s)
	if toFree.GT(idle) {
		if _, err = k.innerWithdraw(ctx, s, toFree.Sub(idle)); err != nil {
			return
		}
	}

	wantBal := k.wantBalance(ctx, s)
	debtPayment = math.MinInt(debtOutstanding, wantBal)
	profit = math.MinInt(profit, wantBal.Sub(debtPayment))
	return
}

// prepareEmergencyReturn liquidates everything withdrawable. Loss is only
// realized once the position is fully unwound; until then the remainder
// is still expected to come back.
func (k *Keeper) prepareEmergencyReturn(ctx sdk.Context, s *types.Strategy, totalDebt, debtOutstanding math.Int) (profit, loss, debtPayment math.Int, err error) {
	profit, loss = math.ZeroInt(), math.ZeroInt()
	if _, err = k.innerWithdraw(ctx, s, k.innerPositionValue(ctx, s)); err != nil {
		return
	}

	wantBal := k.wantBalance(ctx, s)
	debtPayment = math.MinInt(wantBal, debtOutstanding)
	if wantBal.GT(totalDebt) {
		profit = wantBal.Sub(totalDebt)
	} else if k.innerPositionValue(ctx, s).IsZero() {
		loss = totalDebt.Sub(wantBal)
	}
	return
}

// adjustPosition deploys idle want above what is still owed to the vault.
// Deposits beyond the inner vault's capacity stay idle.
func (k *Keeper) adjustPosition(ctx sdk.Context, s *types.Strategy, debtOutstanding math.Int) (math.Int, error) {
	wantBal := k.wantBalance(ctx, s)
	if !wantBal.GT(debtOutstanding) {
		return math.ZeroInt(), nil
	}
	return k.innerDeposit(ctx, s, wantBal.Sub(debtOutstanding))
}

func toFloat(i math.Int) float64 {
	f, _ := i.ToLegacyDec().Float64()
	return f
}
