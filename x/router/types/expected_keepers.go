package types

import (
	"context"
	"time"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// BankKeeper defines the expected interface for the bank module
type BankKeeper interface {
	GetBalance(ctx context.Context, addr sdk.AccAddress, denom string) sdk.Coin
	SendCoins(ctx context.Context, fromAddr, toAddr sdk.AccAddress, amt sdk.Coins) error
}

// OuterVaultKeeper is the capital pool that allocates debt to strategies.
// Its return values are authoritative; the router never reconciles them.
type OuterVaultKeeper interface {
	Asset(ctx sdk.Context, vault string) (string, error)
	ShareDenom(ctx sdk.Context, vault string) (string, error)
	Roles(ctx sdk.Context, vault string) (VaultRoles, error)

	StrategyParams(ctx sdk.Context, vault, strategy string) (StrategyParams, error)
	DebtOutstanding(ctx sdk.Context, vault, strategy string) math.Int
	CreditAvailable(ctx sdk.Context, vault, strategy string) math.Int

	// Report settles gain, loss and debt payment and moves credit to or from
	// the strategy. It returns the debt the strategy still owes.
	Report(ctx sdk.Context, vault, strategy string, gain, loss, debtPayment math.Int) (math.Int, error)
	RevokeStrategy(ctx sdk.Context, vault, strategy string) error

	PricePerShare(ctx sdk.Context, vault string) math.LegacyDec
	TotalAssets(ctx sdk.Context, vault string) math.Int
	BalanceOf(ctx sdk.Context, vault, holder string) math.Int
}

// InnerVaultKeeper is the yield-bearing tokenized vault the router deposits into
type InnerVaultKeeper interface {
	Asset(ctx sdk.Context, vault string) (string, error)
	// Deposit pulls assets from depositor and mints shares
	Deposit(ctx sdk.Context, vault, depositor string, assets math.Int) (math.Int, error)
	// Withdraw burns owner's shares and sends assets to receiver
	Withdraw(ctx sdk.Context, vault, owner, receiver string, assets math.Int) (math.Int, error)
	MaxDeposit(ctx sdk.Context, vault, receiver string) math.Int
	MaxWithdraw(ctx sdk.Context, vault, owner string) math.Int
	BalanceOf(ctx sdk.Context, vault, holder string) math.Int
	ConvertToAssets(ctx sdk.Context, vault string, shares math.Int) math.Int
	TotalAssets(ctx sdk.Context, vault string) math.Int
	ProfitMaxUnlockTime(ctx sdk.Context, vault string) time.Duration
}

// StrategyWithdrawer is implemented by the router keeper and called by the
// outer vault when it needs funds back from a strategy.
type StrategyWithdrawer interface {
	Withdraw(ctx sdk.Context, caller, strategy string, amount math.Int) (math.Int, error)
}
