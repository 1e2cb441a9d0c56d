package bench

import (
	"sync"

	"github.com/vnmchuo/llmbench/internal/pricing"
	"github.com/vnmchuo/llmbench/internal/usage"
)

// TrialResult is one row of the benchmark: a single vendor call inside
// a single trial, successful or not. Failed calls keep their row with
// the error text in Output and zeroed usage and cost fields.
type TrialResult struct {
	RunNumber    int    `json:"run_number"`
	Vendor       string `json:"vendor"`
	Model        string `json:"model"`
	UserPrompt   string `json:"user_prompt"`
	SystemPrompt string `json:"system_prompt"`
	Output       string `json:"output"`

	Usage usage.Record      `json:"usage"`
	Cost  pricing.Breakdown `json:"cost"`

	Failed    bool    `json:"failed"`
	ErrorMsg  string  `json:"error_msg,omitempty"`
	LatencyMs float64 `json:"latency_ms"`
}

// ResultSet accumulates rows as the run progresses. Safe for concurrent
// use so the monitor server can read while the runner appends.
type ResultSet struct {
	mu   sync.RWMutex
	rows []TrialResult
}

func NewResultSet() *ResultSet {
	return &ResultSet{}
}

func (rs *ResultSet) Append(r TrialResult) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.rows = append(rs.rows, r)
}

// Rows returns a copy of the accumulated rows in append order.
func (rs *ResultSet) Rows() []TrialResult {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	out := make([]TrialResult, len(rs.rows))
	copy(out, rs.rows)
	return out
}

func (rs *ResultSet) Len() int {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return len(rs.rows)
}

// VendorSummary aggregates one vendor's rows.
type VendorSummary struct {
	Vendor          string  `json:"vendor"`
	Calls           int     `json:"calls"`
	Failures        int     `json:"failures"`
	SuccessRate     float64 `json:"success_rate"`
	TotalCost       float64 `json:"total_cost"`
	AvgCostPerCall  float64 `json:"avg_cost_per_call"`
	TotalTokens     int     `json:"total_tokens"`
	AvgLatencyMs    float64 `json:"avg_latency_ms"`
	ReasoningTokens int     `json:"reasoning_tokens"`
}

// Summary aggregates per vendor, keyed and ordered by first appearance.
// Success rate counts successful calls over all calls for the vendor;
// cost and latency averages are over successful calls only.
func (rs *ResultSet) Summary() []VendorSummary {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	var order []string
	acc := make(map[string]*VendorSummary)
	latencySums := make(map[string]float64)

	for _, r := range rs.rows {
		s, ok := acc[r.Vendor]
		if !ok {
			s = &VendorSummary{Vendor: r.Vendor}
			acc[r.Vendor] = s
			order = append(order, r.Vendor)
		}
		s.Calls++
		if r.Failed {
			s.Failures++
			continue
		}
		s.TotalCost += r.Cost.TotalCost
		s.TotalTokens += r.Usage.TotalTokens()
		s.ReasoningTokens += r.Usage.ReasoningTokens
		latencySums[r.Vendor] += r.LatencyMs
	}

	out := make([]VendorSummary, 0, len(order))
	for _, vendor := range order {
		s := acc[vendor]
		if s.Calls > 0 {
			s.SuccessRate = float64(s.Calls-s.Failures) / float64(s.Calls)
		}
		if succeeded := s.Calls - s.Failures; succeeded > 0 {
			s.AvgCostPerCall = s.TotalCost / float64(succeeded)
			s.AvgLatencyMs = latencySums[vendor] / float64(succeeded)
		}
		out = append(out, *s)
	}
	return out
}
