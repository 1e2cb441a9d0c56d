package usage

// Record is the canonical token accounting for one API call. Vendors
// expose these counters under different names and shapes; each provider
// package normalizes into this struct, with 0 for any counter the vendor
// does not report.
//
// CachedInputTokens is a subset of InputTokens billed at the cached rate.
// CacheCreationTokens and CacheReadTokens are kept separately for vendors
// that bill cache writes and reads at different multipliers; for those,
// CachedInputTokens is their sum.
type Record struct {
	InputTokens         int `json:"input_tokens"`
	CachedInputTokens   int `json:"cached_input_tokens"`
	CacheCreationTokens int `json:"cache_creation_tokens"`
	CacheReadTokens     int `json:"cache_read_tokens"`
	OutputTokens        int `json:"output_tokens"`
	ReasoningTokens     int `json:"reasoning_tokens"`
}

// TotalTokens is the visible input+output count, excluding reasoning.
func (r Record) TotalTokens() int {
	return r.InputTokens + r.OutputTokens
}

func (r Record) IsZero() bool {
	return r == Record{}
}
