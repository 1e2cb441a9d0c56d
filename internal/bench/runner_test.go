package bench

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/vnmchuo/llmbench/internal/pricing"
	"github.com/vnmchuo/llmbench/internal/provider"
	"github.com/vnmchuo/llmbench/internal/usage"
	"github.com/vnmchuo/llmbench/pkg/retry"
)

type stubProvider struct {
	name    string
	display string
	fail    bool
	calls   int
}

func (s *stubProvider) Complete(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	s.calls++
	if s.fail {
		return nil, errors.New("connection refused")
	}
	return &provider.Response{
		Output: "ok",
		Model:  "stub-model",
		Usage:  usage.Record{InputTokens: 100, CachedInputTokens: 20, OutputTokens: 50},
	}, nil
}

func (s *stubProvider) Name() string         { return s.name }
func (s *stubProvider) DisplayName() string  { return s.display }
func (s *stubProvider) DefaultModel() string { return "stub-model" }

func testTable() pricing.Table {
	flat := pricing.Rates{InputPerMTok: 2.50, CachedInputPerMTok: 1.25, OutputPerMTok: 10.00}
	return pricing.Table{
		"steady": {Strategy: pricing.StrategyFlat, Model: "stub-model", Flat: flat},
		"flaky":  {Strategy: pricing.StrategyFlat, Model: "stub-model", Flat: flat},
	}
}

func fastRetry() retry.Policy {
	return retry.Policy{MaxRetries: 2, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
}

// 3 trials x 2 vendors, one vendor healthy and one always failing: all
// 6 rows appear, the healthy half carries flat-formula costs, the
// failing half carries the uniform error prefix, and the summary
// reports 100% and 0% success.
func TestRunPartialFailure(t *testing.T) {
	steady := &stubProvider{name: "steady", display: "Steady"}
	flaky := &stubProvider{name: "flaky", display: "Flaky", fail: true}
	reg := provider.NewRegistry(steady, flaky)

	runner := NewRunner(Config{
		Registry: reg,
		Engine:   pricing.NewEngine(testTable(), ""),
		Retry:    fastRetry(),
	})

	rs := NewResultSet()
	err := runner.Run(context.Background(), RunSpec{
		Prompt:  "hello",
		Trials:  3,
		Vendors: []string{"steady", "flaky"},
	}, rs)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	rows := rs.Rows()
	if len(rows) != 6 {
		t.Fatalf("expected 6 rows, got %d", len(rows))
	}

	var ok, failed int
	for _, r := range rows {
		if r.Failed {
			failed++
			if !strings.HasPrefix(r.Output, "Flaky error: ") {
				t.Errorf("failed row output %q lacks the uniform error prefix", r.Output)
			}
			if r.Cost.TotalCost != 0 {
				t.Errorf("failed row has nonzero cost %v", r.Cost.TotalCost)
			}
			continue
		}
		ok++
		// uncached 80 at 2.50 + cached 20 at 1.25 + output 50 at 10.00
		if r.Cost.TotalCost != 0.000725 {
			t.Errorf("TotalCost = %v, want 0.000725", r.Cost.TotalCost)
		}
		if r.Vendor != "Steady" || r.Model != "stub-model" {
			t.Errorf("unexpected row identity: %+v", r)
		}
	}
	if ok != 3 || failed != 3 {
		t.Errorf("expected 3 ok and 3 failed rows, got %d and %d", ok, failed)
	}

	for _, s := range rs.Summary() {
		switch s.Vendor {
		case "Steady":
			if s.SuccessRate != 1.0 {
				t.Errorf("Steady success rate = %v, want 1.0", s.SuccessRate)
			}
		case "Flaky":
			if s.SuccessRate != 0.0 {
				t.Errorf("Flaky success rate = %v, want 0.0", s.SuccessRate)
			}
		default:
			t.Errorf("unexpected summary vendor %q", s.Vendor)
		}
	}
}

// Rows appear trial-major in the vendor order given, so interleaved
// vendor comparisons line up per trial.
func TestRunOrdering(t *testing.T) {
	a := &stubProvider{name: "steady", display: "Steady"}
	b := &stubProvider{name: "flaky", display: "Flaky"}
	reg := provider.NewRegistry(a, b)

	runner := NewRunner(Config{
		Registry: reg,
		Engine:   pricing.NewEngine(testTable(), ""),
		Retry:    fastRetry(),
	})

	rs := NewResultSet()
	if err := runner.Run(context.Background(), RunSpec{
		Prompt:  "p",
		Trials:  2,
		Vendors: []string{"steady", "flaky"},
	}, rs); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	want := []struct {
		run    int
		vendor string
	}{
		{1, "Steady"}, {1, "Flaky"}, {2, "Steady"}, {2, "Flaky"},
	}
	rows := rs.Rows()
	for i, w := range want {
		if rows[i].RunNumber != w.run || rows[i].Vendor != w.vendor {
			t.Errorf("row %d = run %d %s, want run %d %s",
				i, rows[i].RunNumber, rows[i].Vendor, w.run, w.vendor)
		}
	}
}

func TestRunRetriesBeforeFailing(t *testing.T) {
	flaky := &stubProvider{name: "flaky", display: "Flaky", fail: true}
	reg := provider.NewRegistry(flaky)

	runner := NewRunner(Config{
		Registry: reg,
		Engine:   pricing.NewEngine(testTable(), ""),
		Retry:    fastRetry(),
	})

	rs := NewResultSet()
	if err := runner.Run(context.Background(), RunSpec{
		Prompt:  "p",
		Trials:  1,
		Vendors: []string{"flaky"},
	}, rs); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if flaky.calls != 3 {
		t.Errorf("expected max_retries+1 = 3 attempts, got %d", flaky.calls)
	}
}

func TestRunDisableRetry(t *testing.T) {
	flaky := &stubProvider{name: "flaky", display: "Flaky", fail: true}
	reg := provider.NewRegistry(flaky)

	runner := NewRunner(Config{
		Registry:     reg,
		Engine:       pricing.NewEngine(testTable(), ""),
		Retry:        fastRetry(),
		DisableRetry: true,
	})

	rs := NewResultSet()
	if err := runner.Run(context.Background(), RunSpec{
		Prompt:  "p",
		Trials:  1,
		Vendors: []string{"flaky"},
	}, rs); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if flaky.calls != 1 {
		t.Errorf("expected 1 attempt with retry disabled, got %d", flaky.calls)
	}
}

// An unknown vendor name produces an error row, not a run abort.
func TestRunUnknownVendor(t *testing.T) {
	steady := &stubProvider{name: "steady", display: "Steady"}
	reg := provider.NewRegistry(steady)

	runner := NewRunner(Config{
		Registry: reg,
		Engine:   pricing.NewEngine(testTable(), ""),
		Retry:    fastRetry(),
	})

	rs := NewResultSet()
	if err := runner.Run(context.Background(), RunSpec{
		Prompt:  "p",
		Trials:  1,
		Vendors: []string{"steady", "mistral"},
	}, rs); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	rows := rs.Rows()
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if !rows[1].Failed || !strings.Contains(rows[1].Output, "unknown vendor") {
		t.Errorf("expected unknown-vendor error row, got %+v", rows[1])
	}
	if rows[0].Failed {
		t.Errorf("known vendor must be unaffected: %+v", rows[0])
	}
}

func TestRunContextCancel(t *testing.T) {
	steady := &stubProvider{name: "steady", display: "Steady"}
	reg := provider.NewRegistry(steady)

	runner := NewRunner(Config{
		Registry: reg,
		Engine:   pricing.NewEngine(testTable(), ""),
		Retry:    fastRetry(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rs := NewResultSet()
	err := runner.Run(ctx, RunSpec{Prompt: "p", Trials: 5, Vendors: []string{"steady"}}, rs)
	if err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if rs.Len() != 0 {
		t.Errorf("expected no rows after immediate cancel, got %d", rs.Len())
	}
}

func TestOnResultCallback(t *testing.T) {
	steady := &stubProvider{name: "steady", display: "Steady"}
	reg := provider.NewRegistry(steady)

	var seen int
	runner := NewRunner(Config{
		Registry: reg,
		Engine:   pricing.NewEngine(testTable(), ""),
		Retry:    fastRetry(),
		OnResult: func(TrialResult) { seen++ },
	})

	rs := NewResultSet()
	if err := runner.Run(context.Background(), RunSpec{
		Prompt:  "p",
		Trials:  2,
		Vendors: []string{"steady"},
	}, rs); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if seen != 2 {
		t.Errorf("OnResult fired %d times, want 2", seen)
	}
}
