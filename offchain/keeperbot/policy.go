package keeperbot

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// PolicyEnv is the environment a harvest policy expression sees
type PolicyEnv struct {
	Strategy        string  `expr:"strategy"`
	Name            string  `expr:"name"`
	CallCost        float64 `expr:"call_cost"`
	EstimatedAssets float64 `expr:"estimated_assets"`
	EmergencyExit   bool    `expr:"emergency_exit"`
	SinceHarvest    float64 `expr:"since_harvest"` // seconds
}

// Policy gates harvests the trigger already approved, e.g.
// `estimated_assets > 1e18 && since_harvest > 3600`.
type Policy struct {
	source  string
	program *vm.Program
}

// CompilePolicy compiles source once. An empty source allows everything.
func CompilePolicy(source string) (*Policy, error) {
	p := &Policy{source: source}
	if source == "" {
		return p, nil
	}
	program, err := expr.Compile(source, expr.Env(PolicyEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("failed to compile harvest policy: %w", err)
	}
	p.program = program
	return p, nil
}

// Allow evaluates the policy against env
func (p *Policy) Allow(env PolicyEnv) (bool, error) {
	if p == nil || p.program == nil {
		return true, nil
	}
	out, err := expr.Run(p.program, env)
	if err != nil {
		return false, fmt.Errorf("harvest policy %q: %w", p.source, err)
	}
	allowed, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("harvest policy %q returned %T", p.source, out)
	}
	return allowed, nil
}

// String returns the policy source
func (p *Policy) String() string {
	return p.source
}
