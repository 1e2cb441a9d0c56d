package pricing

// Defaults returns the built-in pricing table, current as of the models
// named below. A YAML file loaded via LoadFile overrides per vendor.
func Defaults() Table {
	return Table{
		"openai": {
			Strategy: StrategyFlat,
			Model:    "gpt-4o",
			Flat: Rates{
				InputPerMTok:       2.50,
				CachedInputPerMTok: 1.25,
				OutputPerMTok:      10.00,
			},
		},
		"anthropic": {
			Strategy: StrategyCacheType,
			Model:    "claude-3-7-sonnet-20250219",
			Flat: Rates{
				InputPerMTok:  3.00,
				OutputPerMTok: 15.00,
			},
			Cache: &CacheConfig{
				DefaultType: "5m",
				Types: map[string]CacheTypeRates{
					"5m": {WriteMultiplier: 1.25, ReadMultiplier: 0.10},
					"1h": {WriteMultiplier: 2.00, ReadMultiplier: 0.10},
				},
			},
		},
		"gemini": {
			Strategy: StrategyTiered,
			Model:    "gemini-2.5-pro",
			Tier: &TierConfig{
				ThresholdTokens: 200000,
				Low: Rates{
					InputPerMTok:       1.25,
					CachedInputPerMTok: 0.31,
					OutputPerMTok:      10.00,
				},
				High: Rates{
					InputPerMTok:       2.50,
					CachedInputPerMTok: 0.625,
					OutputPerMTok:      15.00,
				},
			},
		},
		"grok": {
			Strategy: StrategyTiered,
			Model:    "grok-3-beta",
			Tier: &TierConfig{
				ThresholdTokens: 128000,
				CountReasoning:  true,
				Low: Rates{
					InputPerMTok:  3.00,
					OutputPerMTok: 15.00,
				},
				High: Rates{
					InputPerMTok:  6.00,
					OutputPerMTok: 30.00,
				},
			},
			ReasoningBilledAsOutput: true,
		},
	}
}
