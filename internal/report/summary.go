package report

import (
	"fmt"
	"io"

	"github.com/vnmchuo/llmbench/internal/bench"
)

// WriteSummary renders the per-vendor aggregate table as plain text for
// terminal display at the end of a run.
func WriteSummary(w io.Writer, rs *bench.ResultSet) error {
	summaries := rs.Summary()
	if len(summaries) == 0 {
		_, err := fmt.Fprintln(w, "No results.")
		return err
	}

	if _, err := fmt.Fprintf(w, "%-12s %8s %10s %14s %14s %12s %12s\n",
		"Vendor", "Calls", "Success", "Total Cost", "Avg Cost", "Tokens", "Avg ms"); err != nil {
		return err
	}

	for _, s := range summaries {
		if _, err := fmt.Fprintf(w, "%-12s %8d %9.0f%% %14.6f %14.6f %12d %12.0f\n",
			s.Vendor,
			s.Calls,
			s.SuccessRate*100,
			s.TotalCost,
			s.AvgCostPerCall,
			s.TotalTokens,
			s.AvgLatencyMs,
		); err != nil {
			return err
		}
	}
	return nil
}
