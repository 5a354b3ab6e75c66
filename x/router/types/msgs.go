package types

import (
	"fmt"
	"time"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/math"
	"github.com/cosmos/gogoproto/proto"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// Message types
const (
	TypeMsgCreateStrategy             = "create_strategy"
	TypeMsgCloneStrategy              = "clone_strategy"
	TypeMsgHarvest                    = "harvest"
	TypeMsgTend                       = "tend"
	TypeMsgSetEmergencyExit           = "set_emergency_exit"
	TypeMsgSweep                      = "sweep"
	TypeMsgSetKeeper                  = "set_keeper"
	TypeMsgSetStrategist              = "set_strategist"
	TypeMsgSetRewards                 = "set_rewards"
	TypeMsgUpdateRoles                = "update_roles"
	TypeMsgSetTriggerConfig           = "set_trigger_config"
	TypeMsgSetForceHarvestTriggerOnce = "set_force_harvest_trigger_once"
)

// MaxNameLength bounds strategy names
const MaxNameLength = 64

var (
	_ sdk.Msg       = &MsgCreateStrategy{}
	_ sdk.Msg       = &MsgCloneStrategy{}
	_ sdk.Msg       = &MsgHarvest{}
	_ sdk.Msg       = &MsgTend{}
	_ sdk.Msg       = &MsgSetEmergencyExit{}
	_ sdk.Msg       = &MsgSweep{}
	_ sdk.Msg       = &MsgSetKeeper{}
	_ sdk.Msg       = &MsgSetStrategist{}
	_ sdk.Msg       = &MsgSetRewards{}
	_ sdk.Msg       = &MsgUpdateRoles{}
	_ sdk.Msg       = &MsgSetTriggerConfig{}
	_ sdk.Msg       = &MsgSetForceHarvestTriggerOnce{}
	_ proto.Message = &MsgHarvest{}
)

func validateAddress(field, addr string) error {
	if _, err := sdk.AccAddressFromBech32(addr); err != nil {
		return errorsmod.Wrapf(ErrInvalidAddress, "%s: %s", field, err)
	}
	return nil
}

// ValidateName checks a strategy name
func ValidateName(name string) error {
	if name == "" || len(name) > MaxNameLength {
		return errorsmod.Wrapf(ErrInvalidName, "name must be 1-%d characters", MaxNameLength)
	}
	return nil
}

func signer(addr string) []sdk.AccAddress {
	a, _ := sdk.AccAddressFromBech32(addr)
	return []sdk.AccAddress{a}
}

// MsgCreateStrategy deploys an original strategy between an outer and an inner vault
type MsgCreateStrategy struct {
	Creator    string `json:"creator"`
	Vault      string `json:"vault"`
	InnerVault string `json:"inner_vault"`
	Name       string `json:"name"`
}

// Route implements sdk.Msg
func (msg MsgCreateStrategy) Route() string { return ModuleName }

// Type implements sdk.Msg
func (msg MsgCreateStrategy) Type() string { return TypeMsgCreateStrategy }

// ValidateBasic implements sdk.Msg
func (msg MsgCreateStrategy) ValidateBasic() error {
	if err := validateAddress("creator", msg.Creator); err != nil {
		return err
	}
	if err := validateAddress("vault", msg.Vault); err != nil {
		return err
	}
	if err := validateAddress("inner_vault", msg.InnerVault); err != nil {
		return err
	}
	return ValidateName(msg.Name)
}

// GetSigners implements sdk.Msg
func (msg MsgCreateStrategy) GetSigners() []sdk.AccAddress { return signer(msg.Creator) }

// ProtoMessage implements proto.Message
func (*MsgCreateStrategy) ProtoMessage() {}

// XXX_MessageName names the message for its type URL
func (*MsgCreateStrategy) XXX_MessageName() string { return "router.v1.MsgCreateStrategy" }

// Reset implements proto.Message
func (msg *MsgCreateStrategy) Reset() { *msg = MsgCreateStrategy{} }

// String implements proto.Message
func (msg MsgCreateStrategy) String() string {
	return fmt.Sprintf("MsgCreateStrategy{Creator: %s, Vault: %s, InnerVault: %s, Name: %s}", msg.Creator, msg.Vault, msg.InnerVault, msg.Name)
}

// MsgCreateStrategyResponse returns the new strategy address
type MsgCreateStrategyResponse struct {
	Strategy string `json:"strategy"`
}

// MsgCloneStrategy replicates an original strategy onto another vault pair
type MsgCloneStrategy struct {
	Sender     string `json:"sender"`
	Original   string `json:"original"`
	Vault      string `json:"vault"`
	InnerVault string `json:"inner_vault"`
	Name       string `json:"name"`
	Strategist string `json:"strategist"`
	Rewards    string `json:"rewards"`
	Keeper     string `json:"keeper"`
}

// Route implements sdk.Msg
func (msg MsgCloneStrategy) Route() string { return ModuleName }

// Type implements sdk.Msg
func (msg MsgCloneStrategy) Type() string { return TypeMsgCloneStrategy }

// ValidateBasic implements sdk.Msg
func (msg MsgCloneStrategy) ValidateBasic() error {
	for _, f := range []struct{ field, addr string }{
		{"sender", msg.Sender},
		{"original", msg.Original},
		{"vault", msg.Vault},
		{"inner_vault", msg.InnerVault},
		{"strategist", msg.Strategist},
		{"rewards", msg.Rewards},
		{"keeper", msg.Keeper},
	} {
		if err := validateAddress(f.field, f.addr); err != nil {
			return err
		}
	}
	return ValidateName(msg.Name)
}

// GetSigners implements sdk.Msg
func (msg MsgCloneStrategy) GetSigners() []sdk.AccAddress { return signer(msg.Sender) }

// ProtoMessage implements proto.Message
func (*MsgCloneStrategy) ProtoMessage() {}

// XXX_MessageName names the message for its type URL
func (*MsgCloneStrategy) XXX_MessageName() string { return "router.v1.MsgCloneStrategy" }

// Reset implements proto.Message
func (msg *MsgCloneStrategy) Reset() { *msg = MsgCloneStrategy{} }

// String implements proto.Message
func (msg MsgCloneStrategy) String() string {
	return fmt.Sprintf("MsgCloneStrategy{Sender: %s, Original: %s, Vault: %s, InnerVault: %s, Name: %s}", msg.Sender, msg.Original, msg.Vault, msg.InnerVault, msg.Name)
}

// MsgCloneStrategyResponse returns the clone address
type MsgCloneStrategyResponse struct {
	Clone string `json:"clone"`
}

// MsgHarvest settles profit and loss with the outer vault and rebalances
type MsgHarvest struct {
	Caller   string `json:"caller"`
	Strategy string `json:"strategy"`
}

// Route implements sdk.Msg
func (msg MsgHarvest) Route() string { return ModuleName }

// Type implements sdk.Msg
func (msg MsgHarvest) Type() string { return TypeMsgHarvest }

// ValidateBasic implements sdk.Msg
func (msg MsgHarvest) ValidateBasic() error {
	if err := validateAddress("caller", msg.Caller); err != nil {
		return err
	}
	return validateAddress("strategy", msg.Strategy)
}

// GetSigners implements sdk.Msg
func (msg MsgHarvest) GetSigners() []sdk.AccAddress { return signer(msg.Caller) }

// ProtoMessage implements proto.Message
func (*MsgHarvest) ProtoMessage() {}

// XXX_MessageName names the message for its type URL
func (*MsgHarvest) XXX_MessageName() string { return "router.v1.MsgHarvest" }

// Reset implements proto.Message
func (msg *MsgHarvest) Reset() { *msg = MsgHarvest{} }

// String implements proto.Message
func (msg MsgHarvest) String() string {
	return fmt.Sprintf("MsgHarvest{Caller: %s, Strategy: %s}", msg.Caller, msg.Strategy)
}

// MsgHarvestResponse summarizes the harvest report
type MsgHarvestResponse struct {
	ReportID        string `json:"report_id"`
	Profit          string `json:"profit"`
	Loss            string `json:"loss"`
	DebtPayment     string `json:"debt_payment"`
	DebtOutstanding string `json:"debt_outstanding"`
}

// MsgTend runs maintenance between harvests
type MsgTend struct {
	Caller   string `json:"caller"`
	Strategy string `json:"strategy"`
}

// Route implements sdk.Msg
func (msg MsgTend) Route() string { return ModuleName }

// Type implements sdk.Msg
func (msg MsgTend) Type() string { return TypeMsgTend }

// ValidateBasic implements sdk.Msg
func (msg MsgTend) ValidateBasic() error {
	if err := validateAddress("caller", msg.Caller); err != nil {
		return err
	}
	return validateAddress("strategy", msg.Strategy)
}

// GetSigners implements sdk.Msg
func (msg MsgTend) GetSigners() []sdk.AccAddress { return signer(msg.Caller) }

// ProtoMessage implements proto.Message
func (*MsgTend) ProtoMessage() {}

// XXX_MessageName names the message for its type URL
func (*MsgTend) XXX_MessageName() string { return "router.v1.MsgTend" }

// Reset implements proto.Message
func (msg *MsgTend) Reset() { *msg = MsgTend{} }

// String implements proto.Message
func (msg MsgTend) String() string {
	return fmt.Sprintf("MsgTend{Caller: %s, Strategy: %s}", msg.Caller, msg.Strategy)
}

// MsgTendResponse is empty
type MsgTendResponse struct{}

// MsgSetEmergencyExit moves a strategy into emergency exit
type MsgSetEmergencyExit struct {
	Caller   string `json:"caller"`
	Strategy string `json:"strategy"`
}

// Route implements sdk.Msg
func (msg MsgSetEmergencyExit) Route() string { return ModuleName }

// Type implements sdk.Msg
func (msg MsgSetEmergencyExit) Type() string { return TypeMsgSetEmergencyExit }

// ValidateBasic implements sdk.Msg
func (msg MsgSetEmergencyExit) ValidateBasic() error {
	if err := validateAddress("caller", msg.Caller); err != nil {
		return err
	}
	return validateAddress("strategy", msg.Strategy)
}

// GetSigners implements sdk.Msg
func (msg MsgSetEmergencyExit) GetSigners() []sdk.AccAddress { return signer(msg.Caller) }

// ProtoMessage implements proto.Message
func (*MsgSetEmergencyExit) ProtoMessage() {}

// XXX_MessageName names the message for its type URL
func (*MsgSetEmergencyExit) XXX_MessageName() string { return "router.v1.MsgSetEmergencyExit" }

// Reset implements proto.Message
func (msg *MsgSetEmergencyExit) Reset() { *msg = MsgSetEmergencyExit{} }

// String implements proto.Message
func (msg MsgSetEmergencyExit) String() string {
	return fmt.Sprintf("MsgSetEmergencyExit{Caller: %s, Strategy: %s}", msg.Caller, msg.Strategy)
}

// MsgSetEmergencyExitResponse is empty
type MsgSetEmergencyExitResponse struct{}

// MsgSweep recovers a mis-sent denom to governance
type MsgSweep struct {
	Caller   string `json:"caller"`
	Strategy string `json:"strategy"`
	Denom    string `json:"denom"`
}

// Route implements sdk.Msg
func (msg MsgSweep) Route() string { return ModuleName }

// Type implements sdk.Msg
func (msg MsgSweep) Type() string { return TypeMsgSweep }

// ValidateBasic implements sdk.Msg
func (msg MsgSweep) ValidateBasic() error {
	if err := validateAddress("caller", msg.Caller); err != nil {
		return err
	}
	if err := validateAddress("strategy", msg.Strategy); err != nil {
		return err
	}
	if err := sdk.ValidateDenom(msg.Denom); err != nil {
		return errorsmod.Wrap(ErrInvalidAmount, err.Error())
	}
	return nil
}

// GetSigners implements sdk.Msg
func (msg MsgSweep) GetSigners() []sdk.AccAddress { return signer(msg.Caller) }

// ProtoMessage implements proto.Message
func (*MsgSweep) ProtoMessage() {}

// XXX_MessageName names the message for its type URL
func (*MsgSweep) XXX_MessageName() string { return "router.v1.MsgSweep" }

// Reset implements proto.Message
func (msg *MsgSweep) Reset() { *msg = MsgSweep{} }

// String implements proto.Message
func (msg MsgSweep) String() string {
	return fmt.Sprintf("MsgSweep{Caller: %s, Strategy: %s, Denom: %s}", msg.Caller, msg.Strategy, msg.Denom)
}

// MsgSweepResponse returns the swept amount
type MsgSweepResponse struct {
	Amount string `json:"amount"`
}

// MsgSetKeeper replaces the keeper role
type MsgSetKeeper struct {
	Caller   string `json:"caller"`
	Strategy string `json:"strategy"`
	Keeper   string `json:"keeper"`
}

// Route implements sdk.Msg
func (msg MsgSetKeeper) Route() string { return ModuleName }

// Type implements sdk.Msg
func (msg MsgSetKeeper) Type() string { return TypeMsgSetKeeper }

// ValidateBasic implements sdk.Msg
func (msg MsgSetKeeper) ValidateBasic() error {
	if err := validateAddress("caller", msg.Caller); err != nil {
		return err
	}
	if err := validateAddress("strategy", msg.Strategy); err != nil {
		return err
	}
	return validateAddress("keeper", msg.Keeper)
}

// GetSigners implements sdk.Msg
func (msg MsgSetKeeper) GetSigners() []sdk.AccAddress { return signer(msg.Caller) }

// ProtoMessage implements proto.Message
func (*MsgSetKeeper) ProtoMessage() {}

// XXX_MessageName names the message for its type URL
func (*MsgSetKeeper) XXX_MessageName() string { return "router.v1.MsgSetKeeper" }

// Reset implements proto.Message
func (msg *MsgSetKeeper) Reset() { *msg = MsgSetKeeper{} }

// String implements proto.Message
func (msg MsgSetKeeper) String() string {
	return fmt.Sprintf("MsgSetKeeper{Caller: %s, Strategy: %s, Keeper: %s}", msg.Caller, msg.Strategy, msg.Keeper)
}

// MsgSetStrategist replaces the strategist role
type MsgSetStrategist struct {
	Caller     string `json:"caller"`
	Strategy   string `json:"strategy"`
	Strategist string `json:"strategist"`
}

// Route implements sdk.Msg
func (msg MsgSetStrategist) Route() string { return ModuleName }

// Type implements sdk.Msg
func (msg MsgSetStrategist) Type() string { return TypeMsgSetStrategist }

// ValidateBasic implements sdk.Msg
func (msg MsgSetStrategist) ValidateBasic() error {
	if err := validateAddress("caller", msg.Caller); err != nil {
		return err
	}
	if err := validateAddress("strategy", msg.Strategy); err != nil {
		return err
	}
	return validateAddress("strategist", msg.Strategist)
}

// GetSigners implements sdk.Msg
func (msg MsgSetStrategist) GetSigners() []sdk.AccAddress { return signer(msg.Caller) }

// ProtoMessage implements proto.Message
func (*MsgSetStrategist) ProtoMessage() {}

// XXX_MessageName names the message for its type URL
func (*MsgSetStrategist) XXX_MessageName() string { return "router.v1.MsgSetStrategist" }

// Reset implements proto.Message
func (msg *MsgSetStrategist) Reset() { *msg = MsgSetStrategist{} }

// String implements proto.Message
func (msg MsgSetStrategist) String() string {
	return fmt.Sprintf("MsgSetStrategist{Caller: %s, Strategy: %s, Strategist: %s}", msg.Caller, msg.Strategy, msg.Strategist)
}

// MsgSetRewards replaces the rewards recipient
type MsgSetRewards struct {
	Caller   string `json:"caller"`
	Strategy string `json:"strategy"`
	Rewards  string `json:"rewards"`
}

// Route implements sdk.Msg
func (msg MsgSetRewards) Route() string { return ModuleName }

// Type implements sdk.Msg
func (msg MsgSetRewards) Type() string { return TypeMsgSetRewards }

// ValidateBasic implements sdk.Msg
func (msg MsgSetRewards) ValidateBasic() error {
	if err := validateAddress("caller", msg.Caller); err != nil {
		return err
	}
	if err := validateAddress("strategy", msg.Strategy); err != nil {
		return err
	}
	return validateAddress("rewards", msg.Rewards)
}

// GetSigners implements sdk.Msg
func (msg MsgSetRewards) GetSigners() []sdk.AccAddress { return signer(msg.Caller) }

// ProtoMessage implements proto.Message
func (*MsgSetRewards) ProtoMessage() {}

// XXX_MessageName names the message for its type URL
func (*MsgSetRewards) XXX_MessageName() string { return "router.v1.MsgSetRewards" }

// Reset implements proto.Message
func (msg *MsgSetRewards) Reset() { *msg = MsgSetRewards{} }

// String implements proto.Message
func (msg MsgSetRewards) String() string {
	return fmt.Sprintf("MsgSetRewards{Caller: %s, Strategy: %s, Rewards: %s}", msg.Caller, msg.Strategy, msg.Rewards)
}

// MsgUpdateRoles lets governance reassign any single role
type MsgUpdateRoles struct {
	Caller   string `json:"caller"`
	Strategy string `json:"strategy"`
	Role     string `json:"role"`
	Address  string `json:"address"`
}

// Route implements sdk.Msg
func (msg MsgUpdateRoles) Route() string { return ModuleName }

// Type implements sdk.Msg
func (msg MsgUpdateRoles) Type() string { return TypeMsgUpdateRoles }

// ValidateBasic implements sdk.Msg
func (msg MsgUpdateRoles) ValidateBasic() error {
	if err := validateAddress("caller", msg.Caller); err != nil {
		return err
	}
	if err := validateAddress("strategy", msg.Strategy); err != nil {
		return err
	}
	if !IsValidRole(msg.Role) {
		return errorsmod.Wrapf(ErrUnauthorized, "unknown role %q", msg.Role)
	}
	return validateAddress("address", msg.Address)
}

// GetSigners implements sdk.Msg
func (msg MsgUpdateRoles) GetSigners() []sdk.AccAddress { return signer(msg.Caller) }

// ProtoMessage implements proto.Message
func (*MsgUpdateRoles) ProtoMessage() {}

// XXX_MessageName names the message for its type URL
func (*MsgUpdateRoles) XXX_MessageName() string { return "router.v1.MsgUpdateRoles" }

// Reset implements proto.Message
func (msg *MsgUpdateRoles) Reset() { *msg = MsgUpdateRoles{} }

// String implements proto.Message
func (msg MsgUpdateRoles) String() string {
	return fmt.Sprintf("MsgUpdateRoles{Caller: %s, Strategy: %s, Role: %s, Address: %s}", msg.Caller, msg.Strategy, msg.Role, msg.Address)
}

// MsgSetTriggerConfig tunes the harvest trigger.
// Delays are in seconds, amounts in base units.
type MsgSetTriggerConfig struct {
	Caller          string `json:"caller"`
	Strategy        string `json:"strategy"`
	MinReportDelay  int64  `json:"min_report_delay"`
	MaxReportDelay  int64  `json:"max_report_delay"`
	CreditThreshold string `json:"credit_threshold"`
	MaxCallCost     string `json:"max_call_cost"`
}

// Route implements sdk.Msg
func (msg MsgSetTriggerConfig) Route() string { return ModuleName }

// Type implements sdk.Msg
func (msg MsgSetTriggerConfig) Type() string { return TypeMsgSetTriggerConfig }

// ValidateBasic implements sdk.Msg
func (msg MsgSetTriggerConfig) ValidateBasic() error {
	if err := validateAddress("caller", msg.Caller); err != nil {
		return err
	}
	if err := validateAddress("strategy", msg.Strategy); err != nil {
		return err
	}
	cfg, err := msg.TriggerConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return errorsmod.Wrap(ErrInvalidTriggerConfig, err.Error())
	}
	return nil
}

// TriggerConfig parses the message into a TriggerConfig
func (msg MsgSetTriggerConfig) TriggerConfig() (TriggerConfig, error) {
	threshold, ok := math.NewIntFromString(msg.CreditThreshold)
	if !ok {
		return TriggerConfig{}, errorsmod.Wrapf(ErrInvalidTriggerConfig, "credit threshold %q", msg.CreditThreshold)
	}
	maxCost := math.ZeroInt()
	if msg.MaxCallCost != "" {
		maxCost, ok = math.NewIntFromString(msg.MaxCallCost)
		if !ok {
			return TriggerConfig{}, errorsmod.Wrapf(ErrInvalidTriggerConfig, "max call cost %q", msg.MaxCallCost)
		}
	}
	return TriggerConfig{
		MinReportDelay:  time.Duration(msg.MinReportDelay) * time.Second,
		MaxReportDelay:  time.Duration(msg.MaxReportDelay) * time.Second,
		CreditThreshold: threshold,
		MaxCallCost:     maxCost,
	}, nil
}

// GetSigners implements sdk.Msg
func (msg MsgSetTriggerConfig) GetSigners() []sdk.AccAddress { return signer(msg.Caller) }

// ProtoMessage implements proto.Message
func (*MsgSetTriggerConfig) ProtoMessage() {}

// XXX_MessageName names the message for its type URL
func (*MsgSetTriggerConfig) XXX_MessageName() string { return "router.v1.MsgSetTriggerConfig" }

// Reset implements proto.Message
func (msg *MsgSetTriggerConfig) Reset() { *msg = MsgSetTriggerConfig{} }

// String implements proto.Message
func (msg MsgSetTriggerConfig) String() string {
	return fmt.Sprintf("MsgSetTriggerConfig{Caller: %s, Strategy: %s, MinReportDelay: %d, MaxReportDelay: %d}", msg.Caller, msg.Strategy, msg.MinReportDelay, msg.MaxReportDelay)
}

// MsgSetForceHarvestTriggerOnce makes the next trigger evaluation return true
type MsgSetForceHarvestTriggerOnce struct {
	Caller   string `json:"caller"`
	Strategy string `json:"strategy"`
	Force    bool   `json:"force"`
}

// Route implements sdk.Msg
func (msg MsgSetForceHarvestTriggerOnce) Route() string { return ModuleName }

// Type implements sdk.Msg
func (msg MsgSetForceHarvestTriggerOnce) Type() string { return TypeMsgSetForceHarvestTriggerOnce }

// ValidateBasic implements sdk.Msg
func (msg MsgSetForceHarvestTriggerOnce) ValidateBasic() error {
	if err := validateAddress("caller", msg.Caller); err != nil {
		return err
	}
	return validateAddress("strategy", msg.Strategy)
}

// GetSigners implements sdk.Msg
func (msg MsgSetForceHarvestTriggerOnce) GetSigners() []sdk.AccAddress { return signer(msg.Caller) }

// ProtoMessage implements proto.Message
func (*MsgSetForceHarvestTriggerOnce) ProtoMessage() {}

// XXX_MessageName names the message for its type URL
func (*MsgSetForceHarvestTriggerOnce) XXX_MessageName() string { return "router.v1.MsgSetForceHarvestTriggerOnce" }

// Reset implements proto.Message
func (msg *MsgSetForceHarvestTriggerOnce) Reset() { *msg = MsgSetForceHarvestTriggerOnce{} }

// String implements proto.Message
func (msg MsgSetForceHarvestTriggerOnce) String() string {
	return fmt.Sprintf("MsgSetForceHarvestTriggerOnce{Caller: %s, Strategy: %s, Force: %t}", msg.Caller, msg.Strategy, msg.Force)
}

// MsgEmptyResponse is returned by role and config updates
type MsgEmptyResponse struct{}
