package keeperbot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"cosmossdk.io/math"
)

// Actions a bot can submit
const (
	ActionHarvest = "harvest"
	ActionTend    = "tend"
)

// StrategyInfo is the slice of strategy state the bot needs
type StrategyInfo struct {
	Address         string
	Name            string
	EstimatedAssets math.Int
	EmergencyExit   bool
	LastHarvestAt   time.Time
}

// ChainReader answers trigger queries for the bot
type ChainReader interface {
	// Strategies lists every strategy known to the chain
	Strategies(ctx context.Context) ([]string, error)

	// Strategy returns the state of one strategy
	Strategy(ctx context.Context, addr string) (*StrategyInfo, error)

	// HarvestTrigger evaluates the harvest trigger at callCost
	HarvestTrigger(ctx context.Context, addr string, callCost math.Int) (bool, error)

	// TendTrigger evaluates the tend trigger at callCost
	TendTrigger(ctx context.Context, addr string, callCost math.Int) (bool, error)
}

// TxSubmitter submits keeper transactions
type TxSubmitter interface {
	// Harvest submits a MsgHarvest for strategy
	Harvest(ctx context.Context, strategy string) error

	// Tend submits a MsgTend for strategy
	Tend(ctx context.Context, strategy string) error

	// GetStatus returns the submitter status
	GetStatus() SubmitterStatus
}

// SubmitterStatus represents the status of a submitter
type SubmitterStatus struct {
	Connected         bool
	LastSubmitTime    time.Time
	LastError         string
	TotalSubmissions  int64
	FailedSubmissions int64
}

// Submission is one recorded keeper transaction
type Submission struct {
	Action   string
	Strategy string
}

// MockSubmitter records submissions without touching a chain
type MockSubmitter struct {
	mu              sync.Mutex
	submissions     []Submission
	status          SubmitterStatus
	simulateFailure bool
}

// NewMockSubmitter creates a new mock submitter
func NewMockSubmitter() *MockSubmitter {
	return &MockSubmitter{
		status: SubmitterStatus{
			Connected: true,
		},
	}
}

func (s *MockSubmitter) submit(action, strategy string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.simulateFailure {
		s.status.FailedSubmissions++
		s.status.LastError = "simulated failure"
		return fmt.Errorf("simulated failure")
	}

	s.submissions = append(s.submissions, Submission{Action: action, Strategy: strategy})
	s.status.TotalSubmissions++
	s.status.LastSubmitTime = time.Now()
	return nil
}

// Harvest records a harvest
func (s *MockSubmitter) Harvest(ctx context.Context, strategy string) error {
	return s.submit(ActionHarvest, strategy)
}

// Tend records a tend
func (s *MockSubmitter) Tend(ctx context.Context, strategy string) error {
	return s.submit(ActionTend, strategy)
}

// GetStatus returns the mock submitter status
func (s *MockSubmitter) GetStatus() SubmitterStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// GetSubmissions returns all recorded submissions (for testing)
func (s *MockSubmitter) GetSubmissions() []Submission {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]Submission, len(s.submissions))
	copy(result, s.submissions)
	return result
}

// SetSimulateFailure enables or disables failure simulation
func (s *MockSubmitter) SetSimulateFailure(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.simulateFailure = fail
}
