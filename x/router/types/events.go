package types

// Event types
const (
	EventTypeStrategyCreated      = "strategy_created"
	EventTypeCloned               = "cloned"
	EventTypeHarvested            = "harvested"
	EventTypeTended               = "tended"
	EventTypeWithdrawn            = "withdrawn"
	EventTypeEmergencyExitEnabled = "emergency_exit_enabled"
	EventTypeSwept                = "swept"
	EventTypeRolesUpdated         = "roles_updated"
	EventTypeTriggerConfigUpdated = "trigger_config_updated"
	EventTypeForceHarvestSet      = "force_harvest_trigger_once"
)

// Event attribute keys
const (
	AttributeKeyStrategy        = "strategy"
	AttributeKeyClone           = "clone"
	AttributeKeyOriginal        = "original"
	AttributeKeyVault           = "vault"
	AttributeKeyInnerVault      = "inner_vault"
	AttributeKeyName            = "name"
	AttributeKeyStrategist      = "strategist"
	AttributeKeyRewards         = "rewards"
	AttributeKeyKeeper          = "keeper"
	AttributeKeyProfit          = "profit"
	AttributeKeyLoss            = "loss"
	AttributeKeyDebtPayment     = "debt_payment"
	AttributeKeyDebtOutstanding = "debt_outstanding"
	AttributeKeyRequested       = "requested"
	AttributeKeyFreed           = "freed"
	AttributeKeyDenom           = "denom"
	AttributeKeyAmount          = "amount"
	AttributeKeyRecipient       = "recipient"
	AttributeKeyRole            = "role"
	AttributeKeyAddress         = "address"
	AttributeKeyCaller          = "caller"
)
