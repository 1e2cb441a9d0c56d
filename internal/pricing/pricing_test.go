package pricing

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/vnmchuo/llmbench/internal/usage"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-12
}

func TestFlatFormula(t *testing.T) {
	cfg := Defaults()["openai"]
	u := usage.Record{InputTokens: 100, CachedInputTokens: 20, OutputTokens: 50}

	b, recognized := Compute(cfg, "", u)
	if !recognized {
		t.Fatal("flat strategy must always be recognized")
	}

	// uncached 80 at 2.50, cached 20 at 1.25, output 50 at 10.00
	if !approx(b.RegularInputCost, 0.0002) {
		t.Errorf("RegularInputCost = %v, want 0.0002", b.RegularInputCost)
	}
	if !approx(b.CachedCost, 0.000025) {
		t.Errorf("CachedCost = %v, want 0.000025", b.CachedCost)
	}
	if !approx(b.OutputCost, 0.0005) {
		t.Errorf("OutputCost = %v, want 0.0005", b.OutputCost)
	}
	if b.ReasoningCost != 0 {
		t.Errorf("ReasoningCost = %v, want 0", b.ReasoningCost)
	}
	if !approx(b.TotalCost, 0.000725) {
		t.Errorf("TotalCost = %v, want 0.000725", b.TotalCost)
	}
}

// A cached count larger than the input count clamps uncached input to
// zero instead of going negative.
func TestFlatCachedExceedsInput(t *testing.T) {
	cfg := Defaults()["openai"]
	u := usage.Record{InputTokens: 10, CachedInputTokens: 50, OutputTokens: 0}

	b, _ := Compute(cfg, "", u)
	if b.RegularInputCost != 0 {
		t.Errorf("RegularInputCost = %v, want 0", b.RegularInputCost)
	}
	if !approx(b.CachedCost, float64(50)*1.25/1e6) {
		t.Errorf("CachedCost = %v", b.CachedCost)
	}
}

func TestZeroUsageCostsNothing(t *testing.T) {
	for vendor, cfg := range Defaults() {
		b, _ := Compute(cfg, "", usage.Record{})
		if b.TotalCost != 0 {
			t.Errorf("%s: zero usage produced nonzero cost %v", vendor, b.TotalCost)
		}
	}
}

// A total exactly at the threshold stays on the low tier; one token
// past it moves to the high tier.
func TestTierBoundary(t *testing.T) {
	cfg := Defaults()["gemini"]

	low := usage.Record{InputTokens: 199990, OutputTokens: 10}
	b, _ := Compute(cfg, "", low)
	if !approx(b.RegularInputCost, float64(199990)*1.25/1e6) {
		t.Errorf("at threshold, expected low-tier input rate, got %v", b.RegularInputCost)
	}

	high := usage.Record{InputTokens: 199991, OutputTokens: 10}
	b, _ = Compute(cfg, "", high)
	if !approx(b.RegularInputCost, float64(199991)*2.50/1e6) {
		t.Errorf("past threshold, expected high-tier input rate, got %v", b.RegularInputCost)
	}
}

// Grok counts reasoning tokens toward the tier total and bills them at
// the selected tier's output rate; Gemini does neither.
func TestTierReasoningHandling(t *testing.T) {
	grok := Defaults()["grok"]
	u := usage.Record{InputTokens: 127000, OutputTokens: 500, ReasoningTokens: 1000}

	b, _ := Compute(grok, "", u)
	// 127000 + 500 + 1000 = 128500 > 128000, so the high tier applies.
	if !approx(b.RegularInputCost, float64(127000)*6.00/1e6) {
		t.Errorf("expected high-tier input rate, got %v", b.RegularInputCost)
	}
	if !approx(b.ReasoningCost, float64(1000)*30.00/1e6) {
		t.Errorf("ReasoningCost = %v, want high-tier output rate", b.ReasoningCost)
	}

	gemini := Defaults()["gemini"]
	b, _ = Compute(gemini, "", usage.Record{InputTokens: 100, OutputTokens: 10, ReasoningTokens: 5000})
	if b.ReasoningCost != 0 {
		t.Errorf("gemini must not bill reasoning tokens, got %v", b.ReasoningCost)
	}
	if !approx(b.RegularInputCost, float64(100)*1.25/1e6) {
		t.Errorf("reasoning tokens must not push gemini across tiers, got %v", b.RegularInputCost)
	}
}

func TestCacheTypeWorkedExample(t *testing.T) {
	cfg := Defaults()["anthropic"]
	u := usage.Record{
		InputTokens:         1000,
		CacheCreationTokens: 200,
		CacheReadTokens:     300,
		CachedInputTokens:   500,
		OutputTokens:        100,
	}

	b, recognized := Compute(cfg, "5m", u)
	if !recognized {
		t.Fatal("5m must be a recognized cache type")
	}

	if !approx(b.RegularInputCost, 0.0015) {
		t.Errorf("RegularInputCost = %v, want 0.0015", b.RegularInputCost)
	}
	// write 200×3.00×1.25/1e6 + read 300×3.00×0.10/1e6
	if !approx(b.CachedCost, 0.00075+0.00009) {
		t.Errorf("CachedCost = %v, want 0.00084", b.CachedCost)
	}
	if !approx(b.OutputCost, 0.0015) {
		t.Errorf("OutputCost = %v, want 0.0015", b.OutputCost)
	}
	if !approx(b.TotalCost, 0.00384) {
		t.Errorf("TotalCost = %v, want 0.00384", b.TotalCost)
	}
}

// An unrecognized cache type produces exactly the default type's
// breakdown, just flagged so the caller can warn.
func TestCacheTypeFallback(t *testing.T) {
	cfg := Defaults()["anthropic"]
	u := usage.Record{InputTokens: 1000, CacheCreationTokens: 200, CacheReadTokens: 300, OutputTokens: 100}

	want, _ := Compute(cfg, "5m", u)
	got, recognized := Compute(cfg, "2w", u)

	if recognized {
		t.Error("2w must not be recognized")
	}
	if got != want {
		t.Errorf("fallback breakdown %+v, want default-type breakdown %+v", got, want)
	}
}

func TestEngineUnknownVendor(t *testing.T) {
	e := NewEngine(Defaults(), "5m")
	if _, err := e.Cost("mistral", usage.Record{InputTokens: 1}); err == nil {
		t.Error("expected error for vendor missing from the table")
	}
}

func TestRounded(t *testing.T) {
	b := Breakdown{
		RegularInputCost: 0.0000004,
		CachedCost:       0.0000005,
		OutputCost:       0.1234567,
		TotalCost:        0.12345719,
	}
	r := b.Rounded()

	if r.RegularInputCost != 0 {
		t.Errorf("RegularInputCost = %v, want 0", r.RegularInputCost)
	}
	if r.CachedCost != 0.000001 {
		t.Errorf("CachedCost = %v, want 0.000001", r.CachedCost)
	}
	if r.OutputCost != 0.123457 {
		t.Errorf("OutputCost = %v, want 0.123457", r.OutputCost)
	}

	// Rounding must be idempotent so re-rounding at a second boundary
	// can never shift a value.
	if r.Rounded() != r {
		t.Errorf("Rounded is not idempotent: %+v vs %+v", r.Rounded(), r)
	}
}

func TestLoadFileOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pricing.yaml")
	content := `openai:
  strategy: flat
  model: gpt-4o-mini
  flat:
    input_per_mtok: 0.15
    cached_input_per_mtok: 0.075
    output_per_mtok: 0.60
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write pricing file: %v", err)
	}

	table, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if table["openai"].Model != "gpt-4o-mini" {
		t.Errorf("override not applied: %+v", table["openai"])
	}
	if table["openai"].Flat.InputPerMTok != 0.15 {
		t.Errorf("override rate not applied: %v", table["openai"].Flat.InputPerMTok)
	}
	if table["anthropic"].Model != Defaults()["anthropic"].Model {
		t.Error("vendors absent from the file must keep their defaults")
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile("/does/not/exist.yaml"); err == nil {
		t.Error("expected error for missing pricing file")
	}
}

func TestLoadFileEmptyPath(t *testing.T) {
	table, err := LoadFile("")
	if err != nil {
		t.Fatalf("LoadFile(\"\") failed: %v", err)
	}
	if len(table) != len(Defaults()) {
		t.Errorf("empty path must return defaults, got %d vendors", len(table))
	}
}
