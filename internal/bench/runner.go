package bench

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/vnmchuo/llmbench/internal/pricing"
	"github.com/vnmchuo/llmbench/internal/provider"
	"github.com/vnmchuo/llmbench/pkg/ratelimit"
	"github.com/vnmchuo/llmbench/pkg/retry"
)

// Config wires the runner's collaborators. Registry and Engine are
// required; a nil Pacer disables pacing and DisableRetry collapses the
// retry budget to a single attempt.
type Config struct {
	Registry *provider.Registry
	Engine   *pricing.Engine
	Pacer    *ratelimit.Pacer
	Retry    retry.Policy

	DisableRetry bool

	// OnResult is invoked after each row is appended; the monitor uses
	// it to push progress. May be nil.
	OnResult func(TrialResult)
}

// RunSpec describes one benchmark run.
type RunSpec struct {
	Prompt       string
	SystemPrompt string
	Trials       int
	Vendors      []string
}

// Runner executes trials sequentially across an ordered vendor list.
// Each vendor carries its own circuit breaker so a vendor stuck in a
// hard outage fast-fails instead of burning its full retry budget on
// every remaining trial.
type Runner struct {
	cfg      Config
	breakers map[string]*gobreaker.CircuitBreaker
	tracer   trace.Tracer
}

func NewRunner(cfg Config) *Runner {
	breakers := make(map[string]*gobreaker.CircuitBreaker)
	for _, name := range cfg.Registry.Names() {
		settings := gobreaker.Settings{
			Name:        name,
			MaxRequests: 3,
			Interval:    5 * time.Second,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
		}
		breakers[name] = gobreaker.NewCircuitBreaker(settings)
	}
	return &Runner{
		cfg:      cfg,
		breakers: breakers,
		tracer:   otel.Tracer("llmbench/bench"),
	}
}

// Run executes spec.Trials passes over spec.Vendors in order, appending
// every call's outcome to rs. Vendor failures never abort the run; the
// only early exit is context cancellation between calls.
func (r *Runner) Run(ctx context.Context, spec RunSpec, rs *ResultSet) error {
	runID := uuid.New().String()
	log.Printf("bench: starting run %s (%d trials x %d vendors)", runID, spec.Trials, len(spec.Vendors))

	for trial := 1; trial <= spec.Trials; trial++ {
		for _, vendor := range spec.Vendors {
			if err := ctx.Err(); err != nil {
				return err
			}

			row := r.runCall(ctx, runID, trial, vendor, spec)
			rs.Append(row)
			if r.cfg.OnResult != nil {
				r.cfg.OnResult(row)
			}

			if row.Failed {
				log.Printf("bench: run %s trial %d %s failed: %s", runID, trial, vendor, row.ErrorMsg)
			} else {
				log.Printf("bench: run %s trial %d %s ok ($%.6f, %.0fms)",
					runID, trial, vendor, row.Cost.TotalCost, row.LatencyMs)
			}
		}
	}

	log.Printf("bench: run %s complete, %d rows", runID, rs.Len())
	return nil
}

func (r *Runner) runCall(ctx context.Context, runID string, trial int, vendor string, spec RunSpec) TrialResult {
	ctx, span := r.tracer.Start(ctx, "bench.call")
	defer span.End()
	span.SetAttributes(
		attribute.String("run_id", runID),
		attribute.String("vendor", vendor),
		attribute.Int("trial", trial),
	)

	p, err := r.cfg.Registry.Get(vendor)
	if err != nil {
		return r.errorRow(trial, vendor, "", spec, vendor, err, 0)
	}

	req := &provider.Request{Prompt: spec.Prompt, SystemPrompt: spec.SystemPrompt}
	policy := r.cfg.Retry
	if r.cfg.DisableRetry {
		policy.MaxRetries = 0
	}

	var resp *provider.Response
	start := time.Now()
	_, err = r.breakers[p.Name()].Execute(func() (interface{}, error) {
		retryErr := retry.Do(ctx, policy, func() error {
			if r.cfg.Pacer != nil {
				if werr := r.cfg.Pacer.Wait(ctx, p.Name()); werr != nil {
					return werr
				}
			}
			var callErr error
			resp, callErr = p.Complete(ctx, req)
			return callErr
		})
		return nil, retryErr
	})
	latency := float64(time.Since(start).Milliseconds())

	if err != nil {
		span.RecordError(err)
		return r.errorRow(trial, vendor, p.DefaultModel(), spec, p.DisplayName(), err, latency)
	}

	cost, err := r.cfg.Engine.Cost(p.Name(), resp.Usage)
	if err != nil {
		return r.errorRow(trial, vendor, resp.Model, spec, p.DisplayName(), err, latency)
	}
	span.SetAttributes(
		attribute.String("model", resp.Model),
		attribute.Float64("cost_usd", cost.TotalCost),
	)

	return TrialResult{
		RunNumber:    trial,
		Vendor:       p.DisplayName(),
		Model:        resp.Model,
		UserPrompt:   spec.Prompt,
		SystemPrompt: spec.SystemPrompt,
		Output:       resp.Output,
		Usage:        resp.Usage,
		Cost:         cost.Rounded(),
		LatencyMs:    latency,
	}
}

// errorRow records a failed call. Output carries the uniform error
// string the reporting layer keys on.
func (r *Runner) errorRow(trial int, vendor, model string, spec RunSpec, displayName string, err error, latency float64) TrialResult {
	msg := provider.CallError(displayName, err)
	return TrialResult{
		RunNumber:    trial,
		Vendor:       displayName,
		Model:        model,
		UserPrompt:   spec.Prompt,
		SystemPrompt: spec.SystemPrompt,
		Output:       msg,
		Failed:       true,
		ErrorMsg:     msg,
		LatencyMs:    latency,
	}
}
