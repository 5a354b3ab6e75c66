package keeper

import (
	"encoding/json"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	routermetrics "github.com/openalpha/yield-router/metrics"
	"github.com/openalpha/yield-router/x/router/types"
)

// TendPolicy decides whether tending a strategy would have any effect
type TendPolicy func(ctx sdk.Context, s *types.Strategy, callCost math.Int) bool

// DefaultTendPolicy never asks for a tend: tend moves no assets
func DefaultTendPolicy(sdk.Context, *types.Strategy, math.Int) bool { return false }

// Option configures a Keeper
type Option func(*Keeper)

// WithTendPolicy replaces the tend trigger policy
func WithTendPolicy(p TendPolicy) Option {
	return func(k *Keeper) {
		if p != nil {
			k.tendPolicy = p
		}
	}
}

// WithMetrics enables prometheus recording
func WithMetrics(c *routermetrics.Collector) Option {
	return func(k *Keeper) { k.metrics = c }
}

// WithProtectedDenoms adds denoms that Sweep must never move
func WithProtectedDenoms(denoms ...string) Option {
	return func(k *Keeper) { k.protected = append(k.protected, denoms...) }
}

// Keeper manages the router module state
type Keeper struct {
	storeKey   storetypes.StoreKey
	bankKeeper types.BankKeeper
	outer      types.OuterVaultKeeper
	inner      types.InnerVaultKeeper
	logger     log.Logger

	tendPolicy TendPolicy
	metrics    *routermetrics.Collector
	protected  []string
}

var _ types.StrategyWithdrawer = (*Keeper)(nil)

// NewKeeper creates a new router keeper
func NewKeeper(
	storeKey storetypes.StoreKey,
	bankKeeper types.BankKeeper,
	outer types.OuterVaultKeeper,
	inner types.InnerVaultKeeper,
	logger log.Logger,
	opts ...Option,
) *Keeper {
	k := &Keeper{
		storeKey:   storeKey,
		bankKeeper: bankKeeper,
		outer:      outer,
		inner:      inner,
		logger:     logger.With("module", "x/"+types.ModuleName),
		tendPolicy: DefaultTendPolicy,
	}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

// Logger returns the module logger
func (k *Keeper) Logger() log.Logger {
	return k.logger
}

// GetStore returns the KVStore
func (k *Keeper) GetStore(ctx sdk.Context) storetypes.KVStore {
	return ctx.KVStore(k.storeKey)
}

// ============ Strategy Records ============

// SetStrategy saves a strategy record
func (k *Keeper) SetStrategy(ctx sdk.Context, s *types.Strategy) {
	bz, _ := json.Marshal(s)
	k.GetStore(ctx).Set(types.StrategyKey(s.Address), bz)
}

// GetStrategy returns a strategy record or nil
func (k *Keeper) GetStrategy(ctx sdk.Context, addr string) *types.Strategy {
	bz := k.GetStore(ctx).Get(types.StrategyKey(addr))
	if bz == nil {
		return nil
	}
	var s types.Strategy
	if err := json.Unmarshal(bz, &s); err != nil {
		return nil
	}
	return &s
}

// GetAllStrategies returns every strategy ordered by address
func (k *Keeper) GetAllStrategies(ctx sdk.Context) []*types.Strategy {
	iterator := storetypes.KVStorePrefixIterator(k.GetStore(ctx), types.StrategyKeyPrefix)
	defer iterator.Close()

	var strategies []*types.Strategy
	for ; iterator.Valid(); iterator.Next() {
		var s types.Strategy
		if err := json.Unmarshal(iterator.Value(), &s); err != nil {
			continue
		}
		strategies = append(strategies, &s)
	}
	return strategies
}

func (k *Keeper) mustGetStrategy(ctx sdk.Context, addr string) (*types.Strategy, error) {
	s := k.GetStrategy(ctx, addr)
	if s == nil {
		return nil, types.ErrStrategyNotFound.Wrap(addr)
	}
	return s, nil
}

// ============ Sequences ============

func (k *Keeper) nextSequence(ctx sdk.Context, key []byte) uint64 {
	store := k.GetStore(ctx)
	var seq uint64
	if bz := store.Get(key); bz != nil {
		seq = sdk.BigEndianToUint64(bz)
	}
	seq++
	store.Set(key, sdk.Uint64ToBigEndian(seq))
	return seq
}

// ============ Clone Records ============

// SetCloneRecord appends a clone discovery record
func (k *Keeper) SetCloneRecord(ctx sdk.Context, rec *types.CloneRecord) {
	bz, _ := json.Marshal(rec)
	k.GetStore(ctx).Set(types.CloneRecordKey(rec.Sequence), bz)
}

// GetCloneRecords returns clone records in creation order
func (k *Keeper) GetCloneRecords(ctx sdk.Context) []*types.CloneRecord {
	iterator := storetypes.KVStorePrefixIterator(k.GetStore(ctx), types.CloneRecordKeyPrefix)
	defer iterator.Close()

	var records []*types.CloneRecord
	for ; iterator.Valid(); iterator.Next() {
		var rec types.CloneRecord
		if err := json.Unmarshal(iterator.Value(), &rec); err != nil {
			continue
		}
		records = append(records, &rec)
	}
	return records
}

// ============ Harvest History ============

func (k *Keeper) setHarvestReport(ctx sdk.Context, seq uint64, report *types.HarvestReport) {
	bz, _ := json.Marshal(report)
	k.GetStore(ctx).Set(types.HarvestReportKey(report.Strategy, seq), bz)
}

// GetHarvestReports returns the reports of a strategy, oldest first
func (k *Keeper) GetHarvestReports(ctx sdk.Context, strategy string) []*types.HarvestReport {
	iterator := storetypes.KVStorePrefixIterator(k.GetStore(ctx), types.HarvestReportPrefix(strategy))
	defer iterator.Close()

	var reports []*types.HarvestReport
	for ; iterator.Valid(); iterator.Next() {
		var r types.HarvestReport
		if err := json.Unmarshal(iterator.Value(), &r); err != nil {
			continue
		}
		reports = append(reports, &r)
	}
	return reports
}
