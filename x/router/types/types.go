package types

import (
	"fmt"
	"time"

	"cosmossdk.io/math"
	"github.com/google/uuid"
)

// Module name and store key
const (
	ModuleName = "router"
	StoreKey   = ModuleName
)

// MaxBPS is the debt ratio denominator used by the outer vault
const MaxBPS = 10_000

// StrategyState is the lifecycle state of a strategy instance.
// The only legal transition is Active -> EmergencyExiting.
type StrategyState int32

const (
	StrategyStateActive StrategyState = iota
	StrategyStateEmergencyExiting
)

func (s StrategyState) String() string {
	switch s {
	case StrategyStateActive:
		return "active"
	case StrategyStateEmergencyExiting:
		return "emergency_exiting"
	default:
		return "unknown"
	}
}

// Roles is the capability set of a strategy
type Roles struct {
	Governance string `json:"governance"`
	Management string `json:"management"`
	Guardian   string `json:"guardian"`
	Strategist string `json:"strategist"`
	Keeper     string `json:"keeper"`
	Rewards    string `json:"rewards"`
}

// Role names used for authorization checks and events
const (
	RoleGovernance = "governance"
	RoleManagement = "management"
	RoleGuardian   = "guardian"
	RoleStrategist = "strategist"
	RoleKeeper     = "keeper"
	RoleRewards    = "rewards"
)

// IsValidRole reports whether role names a strategy role
func IsValidRole(role string) bool {
	switch role {
	case RoleGovernance, RoleManagement, RoleGuardian, RoleStrategist, RoleKeeper, RoleRewards:
		return true
	}
	return false
}

// Set assigns addr to role. Unknown roles are ignored.
func (r *Roles) Set(role, addr string) {
	switch role {
	case RoleGovernance:
		r.Governance = addr
	case RoleManagement:
		r.Management = addr
	case RoleGuardian:
		r.Guardian = addr
	case RoleStrategist:
		r.Strategist = addr
	case RoleKeeper:
		r.Keeper = addr
	case RoleRewards:
		r.Rewards = addr
	}
}

// HasAny reports whether addr holds at least one of the named roles
func (r Roles) HasAny(addr string, roles ...string) bool {
	if addr == "" {
		return false
	}
	for _, role := range roles {
		if r.Get(role) == addr {
			return true
		}
	}
	return false
}

// Get returns the address holding role
func (r Roles) Get(role string) string {
	switch role {
	case RoleGovernance:
		return r.Governance
	case RoleManagement:
		return r.Management
	case RoleGuardian:
		return r.Guardian
	case RoleStrategist:
		return r.Strategist
	case RoleKeeper:
		return r.Keeper
	case RoleRewards:
		return r.Rewards
	default:
		return ""
	}
}

// VaultRoles are the roles owned by the outer vault and inherited by its strategies
type VaultRoles struct {
	Governance string `json:"governance"`
	Management string `json:"management"`
	Guardian   string `json:"guardian"`
}

// TriggerConfig tunes when keepers should harvest
type TriggerConfig struct {
	MinReportDelay  time.Duration `json:"min_report_delay"`
	MaxReportDelay  time.Duration `json:"max_report_delay"`
	CreditThreshold math.Int      `json:"credit_threshold"`
	// MaxCallCost is the ceiling for the keeper's call cost. Zero disables the check.
	MaxCallCost math.Int `json:"max_call_cost"`
}

// DefaultTriggerConfig forces a harvest at least every 30 days
func DefaultTriggerConfig() TriggerConfig {
	return TriggerConfig{
		MinReportDelay:  0,
		MaxReportDelay:  30 * 24 * time.Hour,
		CreditThreshold: math.NewInt(1_000_000),
		MaxCallCost:     math.ZeroInt(),
	}
}

// Validate checks the trigger configuration
func (c TriggerConfig) Validate() error {
	if c.MinReportDelay < 0 || c.MaxReportDelay < 0 {
		return fmt.Errorf("report delays must be non-negative")
	}
	if c.MaxReportDelay != 0 && c.MinReportDelay > c.MaxReportDelay {
		return fmt.Errorf("min report delay %s exceeds max report delay %s", c.MinReportDelay, c.MaxReportDelay)
	}
	if c.CreditThreshold.IsNil() || c.CreditThreshold.IsNegative() {
		return fmt.Errorf("credit threshold must be non-negative")
	}
	if c.MaxCallCost.IsNil() || c.MaxCallCost.IsNegative() {
		return fmt.Errorf("max call cost must be non-negative")
	}
	return nil
}

// Strategy is the configuration record of one adapter instance.
// Clones share the keeper logic but own an independent record.
type Strategy struct {
	Address    string `json:"address"`
	Name       string `json:"name"`
	Want       string `json:"want"`
	Vault      string `json:"vault"`
	InnerVault string `json:"inner_vault"`

	Roles Roles         `json:"roles"`
	State StrategyState `json:"state"`

	IsClone  bool   `json:"is_clone"`
	Original string `json:"original,omitempty"`

	Triggers         TriggerConfig `json:"triggers"`
	ForceHarvestOnce bool          `json:"force_harvest_once"`

	CreatedHeight     int64 `json:"created_height"`
	CreatedAt         int64 `json:"created_at"`
	LastHarvestHeight int64 `json:"last_harvest_height"`
	LastHarvestAt     int64 `json:"last_harvest_at"`
}

// NewStrategy builds a fresh Active strategy record
func NewStrategy(addr, name, want, vault, innerVault string, roles Roles, height int64, now time.Time) *Strategy {
	return &Strategy{
		Address:       addr,
		Name:          name,
		Want:          want,
		Vault:         vault,
		InnerVault:    innerVault,
		Roles:         roles,
		State:         StrategyStateActive,
		Triggers:      DefaultTriggerConfig(),
		CreatedHeight: height,
		CreatedAt:     now.Unix(),
	}
}

// InEmergencyExit reports whether the strategy is unwinding
func (s *Strategy) InEmergencyExit() bool {
	return s.State == StrategyStateEmergencyExiting
}

// EnterEmergencyExit performs the one-way state transition.
// It returns false when the strategy was already exiting.
func (s *Strategy) EnterEmergencyExit() bool {
	if s.State == StrategyStateEmergencyExiting {
		return false
	}
	s.State = StrategyStateEmergencyExiting
	return true
}

// StrategyParams is the outer vault's view of a strategy
type StrategyParams struct {
	Activation        int64    `json:"activation"`
	DebtRatio         uint64   `json:"debt_ratio"`
	MinDebtPerHarvest math.Int `json:"min_debt_per_harvest"`
	MaxDebtPerHarvest math.Int `json:"max_debt_per_harvest"`
	LastReport        int64    `json:"last_report"`
	TotalDebt         math.Int `json:"total_debt"`
	TotalGain         math.Int `json:"total_gain"`
	TotalLoss         math.Int `json:"total_loss"`
}

// HarvestReport records the outcome of one harvest
type HarvestReport struct {
	ReportID        string   `json:"report_id"`
	Strategy        string   `json:"strategy"`
	Profit          math.Int `json:"profit"`
	Loss            math.Int `json:"loss"`
	DebtPayment     math.Int `json:"debt_payment"`
	DebtOutstanding math.Int `json:"debt_outstanding"`
	Deposited       math.Int `json:"deposited"`
	TotalAssets     math.Int `json:"total_assets"`
	EmergencyExit   bool     `json:"emergency_exit"`
	Height          int64    `json:"height"`
	Timestamp       int64    `json:"timestamp"`
}

// NewHarvestReport creates an empty report for a strategy.
// The ID is derived from the report sequence so every node computes the same value.
func NewHarvestReport(strategy string, seq uint64, height int64, now time.Time) *HarvestReport {
	return &HarvestReport{
		ReportID:        ReportID(strategy, seq),
		Strategy:        strategy,
		Profit:          math.ZeroInt(),
		Loss:            math.ZeroInt(),
		DebtPayment:     math.ZeroInt(),
		DebtOutstanding: math.ZeroInt(),
		Deposited:       math.ZeroInt(),
		TotalAssets:     math.ZeroInt(),
		Height:          height,
		Timestamp:       now.Unix(),
	}
}

// CloneRecord is the discovery log entry written for every clone
type CloneRecord struct {
	Sequence   uint64 `json:"sequence"`
	Clone      string `json:"clone"`
	Original   string `json:"original"`
	Vault      string `json:"vault"`
	InnerVault string `json:"inner_vault"`
	Name       string `json:"name"`
	Strategist string `json:"strategist"`
	Rewards    string `json:"rewards"`
	Keeper     string `json:"keeper"`
	Height     int64  `json:"height"`
}

// ReportID returns the deterministic identifier of the seq-th harvest report
func ReportID(strategy string, seq uint64) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("%s/%s/%d", ModuleName, strategy, seq))).String()
}
