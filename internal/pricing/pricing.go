package pricing

import (
	"fmt"
	"log"
	"math"

	"github.com/vnmchuo/llmbench/internal/usage"
)

// Strategy selects how a vendor's usage is turned into cost.
type Strategy string

const (
	StrategyFlat      Strategy = "flat"
	StrategyTiered    Strategy = "tiered"
	StrategyCacheType Strategy = "cache_type"
)

// Rates are USD per 1M tokens.
type Rates struct {
	InputPerMTok       float64 `yaml:"input_per_mtok"`
	CachedInputPerMTok float64 `yaml:"cached_input_per_mtok"`
	OutputPerMTok      float64 `yaml:"output_per_mtok"`
}

// TierConfig switches between two rate sets once the call's total token
// count crosses ThresholdTokens. Totals equal to the threshold stay on
// the low tier. CountReasoning controls whether reasoning tokens count
// toward the total; that varies per vendor's billing documentation.
type TierConfig struct {
	ThresholdTokens int   `yaml:"threshold_tokens"`
	CountReasoning  bool  `yaml:"count_reasoning"`
	Low             Rates `yaml:"low"`
	High            Rates `yaml:"high"`
}

// CacheTypeRates are multipliers applied to the base input rate for
// vendors that bill cache writes and reads as distinct events.
type CacheTypeRates struct {
	WriteMultiplier float64 `yaml:"write_multiplier"`
	ReadMultiplier  float64 `yaml:"read_multiplier"`
}

type CacheConfig struct {
	DefaultType string                    `yaml:"default_type"`
	Types       map[string]CacheTypeRates `yaml:"types"`
}

// VendorConfig is the complete pricing description for one vendor.
// Loaded once at startup and treated as read-only from then on.
type VendorConfig struct {
	Strategy Strategy `yaml:"strategy"`
	Model    string   `yaml:"model"`

	// Flat rates; for cache_type vendors InputPerMTok is the base rate
	// the multipliers apply to.
	Flat Rates `yaml:"flat"`

	Tier  *TierConfig  `yaml:"tier,omitempty"`
	Cache *CacheConfig `yaml:"cache,omitempty"`

	// ReasoningBilledAsOutput bills hidden reasoning tokens at the
	// output rate (the applicable tier's output rate when tiered).
	ReasoningBilledAsOutput bool `yaml:"reasoning_billed_as_output"`
}

// Table maps vendor name to its pricing config.
type Table map[string]VendorConfig

// Breakdown is the itemized USD cost of one call, full precision.
type Breakdown struct {
	RegularInputCost float64 `json:"regular_input_cost"`
	CachedCost       float64 `json:"cached_cost"`
	OutputCost       float64 `json:"output_cost"`
	ReasoningCost    float64 `json:"reasoning_cost"`
	TotalCost        float64 `json:"total_cost"`
}

// Rounded returns the breakdown rounded to 6 decimal places, the
// precision used at every output boundary (CSV, monitor, logs).
func (b Breakdown) Rounded() Breakdown {
	return Breakdown{
		RegularInputCost: round6(b.RegularInputCost),
		CachedCost:       round6(b.CachedCost),
		OutputCost:       round6(b.OutputCost),
		ReasoningCost:    round6(b.ReasoningCost),
		TotalCost:        round6(b.TotalCost),
	}
}

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

// Compute applies cfg's strategy to u. cacheType selects the cache TTL
// class for cache_type vendors; an unrecognized value falls back to the
// vendor's default type and recognized=false tells the caller to warn.
// Token counts of zero simply contribute zero cost terms.
func Compute(cfg VendorConfig, cacheType string, u usage.Record) (b Breakdown, recognized bool) {
	switch cfg.Strategy {
	case StrategyTiered:
		return computeTiered(cfg, u), true
	case StrategyCacheType:
		return computeCacheType(cfg, cacheType, u)
	default:
		return computeFlat(cfg.Flat, u, cfg.ReasoningBilledAsOutput), true
	}
}

func computeFlat(r Rates, u usage.Record, reasoningAsOutput bool) Breakdown {
	uncached := u.InputTokens - u.CachedInputTokens
	if uncached < 0 {
		uncached = 0
	}

	b := Breakdown{
		RegularInputCost: float64(uncached) * r.InputPerMTok / 1e6,
		CachedCost:       float64(u.CachedInputTokens) * r.CachedInputPerMTok / 1e6,
		OutputCost:       float64(u.OutputTokens) * r.OutputPerMTok / 1e6,
	}
	if reasoningAsOutput {
		b.ReasoningCost = float64(u.ReasoningTokens) * r.OutputPerMTok / 1e6
	}
	b.TotalCost = b.RegularInputCost + b.CachedCost + b.OutputCost + b.ReasoningCost
	return b
}

func computeTiered(cfg VendorConfig, u usage.Record) Breakdown {
	total := u.InputTokens + u.OutputTokens
	if cfg.Tier.CountReasoning {
		total += u.ReasoningTokens
	}

	rates := cfg.Tier.Low
	if total > cfg.Tier.ThresholdTokens {
		rates = cfg.Tier.High
	}
	return computeFlat(rates, u, cfg.ReasoningBilledAsOutput)
}

func computeCacheType(cfg VendorConfig, cacheType string, u usage.Record) (Breakdown, bool) {
	rates, recognized := resolveCacheType(cfg.Cache, cacheType)

	regular := u.InputTokens - u.CacheCreationTokens - u.CacheReadTokens
	if regular < 0 {
		regular = 0
	}

	base := cfg.Flat.InputPerMTok
	b := Breakdown{
		RegularInputCost: float64(regular) * base / 1e6,
		CachedCost: float64(u.CacheCreationTokens)*base*rates.WriteMultiplier/1e6 +
			float64(u.CacheReadTokens)*base*rates.ReadMultiplier/1e6,
		OutputCost: float64(u.OutputTokens) * cfg.Flat.OutputPerMTok / 1e6,
	}
	if cfg.ReasoningBilledAsOutput {
		b.ReasoningCost = float64(u.ReasoningTokens) * cfg.Flat.OutputPerMTok / 1e6
	}
	b.TotalCost = b.RegularInputCost + b.CachedCost + b.OutputCost + b.ReasoningCost
	return b, recognized
}

// resolveCacheType returns the multipliers for name, falling back to the
// config's default type when name is unrecognized. recognized=false on
// fallback; an empty name counts as asking for the default.
func resolveCacheType(c *CacheConfig, name string) (CacheTypeRates, bool) {
	if c == nil {
		return CacheTypeRates{}, false
	}
	if name == "" {
		name = c.DefaultType
	}
	if rates, ok := c.Types[name]; ok {
		return rates, true
	}
	return c.Types[c.DefaultType], false
}

// Engine binds a pricing table and the run's selected cache type so the
// orchestrator can stay agnostic to which strategy a vendor uses.
type Engine struct {
	table     Table
	cacheType string
}

func NewEngine(table Table, cacheType string) *Engine {
	return &Engine{table: table, cacheType: cacheType}
}

// Cost computes the breakdown for one vendor call. An unrecognized cache
// type is non-fatal: the vendor's default type is used and a warning is
// logged. A vendor missing from the table is an error the caller records
// against that call alone.
func (e *Engine) Cost(vendor string, u usage.Record) (Breakdown, error) {
	cfg, ok := e.table[vendor]
	if !ok {
		return Breakdown{}, fmt.Errorf("no pricing config for vendor: %s", vendor)
	}

	b, recognized := Compute(cfg, e.cacheType, u)
	if !recognized && cfg.Cache != nil {
		log.Printf("pricing: unrecognized cache type %q for %s, falling back to %q",
			e.cacheType, vendor, cfg.Cache.DefaultType)
	}
	return b, nil
}
