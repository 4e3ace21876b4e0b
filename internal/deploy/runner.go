package deploy

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"stableDeploy/internal/chain"
	"stableDeploy/internal/ledger"
	"stableDeploy/internal/plan"
)

// Step outcomes reported by Runner.
const (
	OutcomeDeployed = "deployed"
	OutcomeLinked   = "linked"
	OutcomeSkipped  = "skipped"
)

// StepResult is the outcome of one plan step.
type StepResult struct {
	Step    string         `json:"step"`
	Kind    plan.Kind      `json:"kind"`
	Outcome string         `json:"outcome"`
	Address common.Address `json:"address,omitempty"`
	TxHash  common.Hash    `json:"tx_hash,omitempty"`
}

// Runner walks a plan in dependency order.
type Runner struct {
	deployer *Deployer
	plan     *plan.Plan
	logger   *zap.Logger
}

// NewRunner builds a Runner for p.
func NewRunner(d *Deployer, p *plan.Plan, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{deployer: d, plan: p, logger: logger}
}

// Run executes every incomplete step. Completed steps are skipped; the first
// failure stops the run and is returned with the results so far.
func (r *Runner) Run(ctx context.Context) ([]StepResult, error) {
	if r.deployer == nil {
		return nil, fmt.Errorf("deployer is nil")
	}
	if r.plan == nil {
		return nil, fmt.Errorf("plan is nil")
	}
	order, err := r.plan.Order()
	if err != nil {
		return nil, err
	}

	results := make([]StepResult, 0, len(order))
	for i, step := range order {
		select {
		case <-ctx.Done():
			return results, ctx.Err()
		default:
		}

		r.logger.Info("step", zap.Int("index", i+1), zap.Int("total", len(order)), zap.String("step", step.Name), zap.String("kind", string(step.Kind)))

		if result, done := r.completed(step); done {
			r.logger.Info("step already complete", zap.String("step", step.Name))
			results = append(results, result)
			continue
		}
		if err := r.checkRequirements(step); err != nil {
			return results, err
		}

		result, err := r.runStep(ctx, step)
		if err != nil {
			var already *AlreadyDeployedError
			if !errors.As(err, &already) {
				return results, fmt.Errorf("step %s: %w", step.Name, err)
			}
			result = StepResult{Step: step.Name, Kind: step.Kind, Outcome: OutcomeSkipped, Address: common.HexToAddress(already.Address)}
		}
		results = append(results, result)
	}
	return results, nil
}

func (r *Runner) completed(step plan.Step) (StepResult, bool) {
	d := r.deployer
	if d.cfg.Redeploy {
		return StepResult{}, false
	}
	result := StepResult{Step: step.Name, Kind: step.Kind, Outcome: OutcomeSkipped}
	switch step.Kind {
	case plan.KindDeploy:
		if d.ledger.Status(step.LedgerKey, d.journal, d.cfg.ChainID) != ledger.StatusConfirmed {
			return StepResult{}, false
		}
		value, _ := d.ledger.Get(step.LedgerKey)
		result.Address = common.HexToAddress(value)
	case plan.KindLink:
		value, ok := d.ledger.Lookup(step.Target)
		if !ok {
			return StepResult{}, false
		}
		target, err := chain.ParseAddress(value)
		if err != nil {
			return StepResult{}, false
		}
		entry, ok := d.linked(step.JournalKey(), target)
		if !ok {
			return StepResult{}, false
		}
		result.Address = target
		result.TxHash = common.HexToHash(entry.TxHash)
	default:
		return StepResult{}, false
	}
	d.metrics.Skipped(string(step.Kind))
	return result, true
}

func (r *Runner) checkRequirements(step plan.Step) error {
	for _, key := range step.Requires() {
		if _, ok := r.deployer.ledger.Lookup(key); !ok {
			return &ConfigurationError{Key: key, Reason: fmt.Sprintf("required by step %s but not in ledger", step.Name)}
		}
	}
	return nil
}

func (r *Runner) runStep(ctx context.Context, step plan.Step) (StepResult, error) {
	switch step.Kind {
	case plan.KindDeploy:
		addr, err := r.deployer.Deploy(ctx, RequestFromStep(step))
		if err != nil {
			return StepResult{}, err
		}
		return StepResult{Step: step.Name, Kind: step.Kind, Outcome: OutcomeDeployed, Address: addr}, nil
	case plan.KindLink:
		hash, err := r.deployer.Link(ctx, LinkFromStep(step))
		if err != nil {
			return StepResult{}, err
		}
		return StepResult{Step: step.Name, Kind: step.Kind, Outcome: OutcomeLinked, TxHash: hash}, nil
	default:
		return StepResult{}, fmt.Errorf("unknown step kind %q", step.Kind)
	}
}
