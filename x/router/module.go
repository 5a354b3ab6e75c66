package router

import (
	"encoding/json"

	"cosmossdk.io/core/appmodule"
	"github.com/cosmos/cosmos-sdk/client"
	"github.com/cosmos/cosmos-sdk/codec"
	cdctypes "github.com/cosmos/cosmos-sdk/codec/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/module"
	"github.com/grpc-ecosystem/grpc-gateway/runtime"
	"github.com/spf13/cobra"

	"github.com/openalpha/yield-router/x/router/client/cli"
	"github.com/openalpha/yield-router/x/router/keeper"
	"github.com/openalpha/yield-router/x/router/types"
)

const (
	ModuleName = types.ModuleName
)

var (
	_ module.AppModuleBasic = AppModuleBasic{}
	_ appmodule.AppModule   = AppModule{}
)

// AppModuleBasic defines the basic application module for router
type AppModuleBasic struct{}

// Name returns the module's name
func (AppModuleBasic) Name() string {
	return ModuleName
}

// RegisterLegacyAminoCodec registers the module's types on the given LegacyAmino codec
func (AppModuleBasic) RegisterLegacyAminoCodec(cdc *codec.LegacyAmino) {
	cdc.RegisterConcrete(&types.MsgCreateStrategy{}, "router/MsgCreateStrategy", nil)
	cdc.RegisterConcrete(&types.MsgCloneStrategy{}, "router/MsgCloneStrategy", nil)
	cdc.RegisterConcrete(&types.MsgHarvest{}, "router/MsgHarvest", nil)
	cdc.RegisterConcrete(&types.MsgTend{}, "router/MsgTend", nil)
	cdc.RegisterConcrete(&types.MsgSetEmergencyExit{}, "router/MsgSetEmergencyExit", nil)
	cdc.RegisterConcrete(&types.MsgSweep{}, "router/MsgSweep", nil)
	cdc.RegisterConcrete(&types.MsgSetKeeper{}, "router/MsgSetKeeper", nil)
	cdc.RegisterConcrete(&types.MsgSetStrategist{}, "router/MsgSetStrategist", nil)
	cdc.RegisterConcrete(&types.MsgSetRewards{}, "router/MsgSetRewards", nil)
	cdc.RegisterConcrete(&types.MsgUpdateRoles{}, "router/MsgUpdateRoles", nil)
	cdc.RegisterConcrete(&types.MsgSetTriggerConfig{}, "router/MsgSetTriggerConfig", nil)
	cdc.RegisterConcrete(&types.MsgSetForceHarvestTriggerOnce{}, "router/MsgSetForceHarvestTriggerOnce", nil)
}

// RegisterInterfaces registers the module's interface types
func (AppModuleBasic) RegisterInterfaces(registry cdctypes.InterfaceRegistry) {
	registry.RegisterImplementations((*sdk.Msg)(nil),
		&types.MsgCreateStrategy{},
		&types.MsgCloneStrategy{},
		&types.MsgHarvest{},
		&types.MsgTend{},
		&types.MsgSetEmergencyExit{},
		&types.MsgSweep{},
		&types.MsgSetKeeper{},
		&types.MsgSetStrategist{},
		&types.MsgSetRewards{},
		&types.MsgUpdateRoles{},
		&types.MsgSetTriggerConfig{},
		&types.MsgSetForceHarvestTriggerOnce{},
	)
}

// DefaultGenesis returns default genesis state as raw bytes
func (AppModuleBasic) DefaultGenesis(cdc codec.JSONCodec) json.RawMessage {
	return nil
}

// ValidateGenesis performs genesis state validation
func (AppModuleBasic) ValidateGenesis(cdc codec.JSONCodec, config client.TxEncodingConfig, bz json.RawMessage) error {
	return nil
}

// RegisterGRPCGatewayRoutes registers the gRPC Gateway routes for the module.
// Queries are served from raw store reads by the CLI instead.
func (AppModuleBasic) RegisterGRPCGatewayRoutes(clientCtx client.Context, mux *runtime.ServeMux) {}

// GetTxCmd returns the root tx command for the router module
func (AppModuleBasic) GetTxCmd() *cobra.Command {
	return cli.GetTxCmd()
}

// GetQueryCmd returns the root query command for the router module
func (AppModuleBasic) GetQueryCmd() *cobra.Command {
	return cli.GetQueryCmd()
}

// AppModule implements an application module for the router module
type AppModule struct {
	AppModuleBasic
	keeper *keeper.Keeper
}

// NewAppModule creates a new AppModule object
func NewAppModule(k *keeper.Keeper) AppModule {
	return AppModule{
		AppModuleBasic: AppModuleBasic{},
		keeper:         k,
	}
}

// Name returns the module's name
func (am AppModule) Name() string {
	return ModuleName
}

// RegisterServices registers module services.
// The Msgs have no generated protobuf service descriptor, so nothing is
// registered with the configurator and an app's Msg router cannot reach the
// handlers. Callers go through MsgServer instead, as routersim and the keeper
// bot's LocalChain do.
func (am AppModule) RegisterServices(cfg module.Configurator) {}

// MsgServer returns the module's Msg handlers
func (am AppModule) MsgServer() *keeper.MsgServer {
	return keeper.NewMsgServerImpl(am.keeper)
}

// IsOnePerModuleType implements the depinject.OnePerModuleType interface
func (am AppModule) IsOnePerModuleType() {}

// IsAppModule implements the appmodule.AppModule interface
func (am AppModule) IsAppModule() {}

// EndBlocker refreshes strategy gauges
func (am AppModule) EndBlocker(ctx sdk.Context) error {
	return am.keeper.EndBlocker(ctx)
}
