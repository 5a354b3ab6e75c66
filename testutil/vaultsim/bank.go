package vaultsim

import (
	"context"
	"fmt"

	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// Bank is a minimal balance ledger satisfying the router's BankKeeper
type Bank struct {
	storeKey storetypes.StoreKey
}

// NewBank creates a bank over storeKey
func NewBank(storeKey storetypes.StoreKey) *Bank {
	return &Bank{storeKey: storeKey}
}

// Balance returns holder's balance of denom
func (b *Bank) Balance(ctx sdk.Context, holder, denom string) math.Int {
	bz := ctx.KVStore(b.storeKey).Get(key(balanceKeyPrefix, holder, denom))
	if bz == nil {
		return math.ZeroInt()
	}
	amt, ok := math.NewIntFromString(string(bz))
	if !ok {
		return math.ZeroInt()
	}
	return amt
}

func (b *Bank) setBalance(ctx sdk.Context, holder, denom string, amt math.Int) {
	store := ctx.KVStore(b.storeKey)
	k := key(balanceKeyPrefix, holder, denom)
	if amt.IsZero() {
		store.Delete(k)
		return
	}
	store.Set(k, []byte(amt.String()))
}

// Mint credits holder with new coins
func (b *Bank) Mint(ctx sdk.Context, holder, denom string, amt math.Int) {
	b.setBalance(ctx, holder, denom, b.Balance(ctx, holder, denom).Add(amt))
}

// Burn removes coins from holder
func (b *Bank) Burn(ctx sdk.Context, holder, denom string, amt math.Int) error {
	bal := b.Balance(ctx, holder, denom)
	if bal.LT(amt) {
		return fmt.Errorf("burn %s%s: balance %s", amt, denom, bal)
	}
	b.setBalance(ctx, holder, denom, bal.Sub(amt))
	return nil
}

// Transfer moves amt of denom between two holders
func (b *Bank) Transfer(ctx sdk.Context, from, to, denom string, amt math.Int) error {
	if amt.IsNegative() {
		return fmt.Errorf("negative transfer %s", amt)
	}
	if amt.IsZero() {
		return nil
	}
	bal := b.Balance(ctx, from, denom)
	if bal.LT(amt) {
		return fmt.Errorf("insufficient funds: %s has %s%s, needs %s", from, bal, denom, amt)
	}
	b.setBalance(ctx, from, denom, bal.Sub(amt))
	b.setBalance(ctx, to, denom, b.Balance(ctx, to, denom).Add(amt))
	return nil
}

// GetBalance implements the router BankKeeper
func (b *Bank) GetBalance(ctx context.Context, addr sdk.AccAddress, denom string) sdk.Coin {
	return sdk.NewCoin(denom, b.Balance(sdk.UnwrapSDKContext(ctx), addr.String(), denom))
}

// SendCoins implements the router BankKeeper
func (b *Bank) SendCoins(ctx context.Context, fromAddr, toAddr sdk.AccAddress, amt sdk.Coins) error {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	for _, c := range amt {
		if err := b.Transfer(sdkCtx, fromAddr.String(), toAddr.String(), c.Denom, c.Amount); err != nil {
			return err
		}
	}
	return nil
}
