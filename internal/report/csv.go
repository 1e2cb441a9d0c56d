// Package report renders a finished result set as CSV and as a plain
// text summary.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/vnmchuo/llmbench/internal/bench"
)

// Columns is the CSV header, in output order. Downstream spreadsheet
// tooling keys on these exact names.
var Columns = []string{
	"Run Number",
	"Vendor",
	"Model",
	"User Prompt",
	"System Prompt",
	"Output",
	"Input Tokens",
	"Cached Input Tokens",
	"Output Tokens",
	"Reasoning Tokens",
	"Input Token Cost (USD)",
	"Cached Token Cost (USD)",
	"Output Token Cost (USD)",
	"Reasoning Token Cost (USD)",
	"Total Cost (USD)",
}

// WriteCSV writes the header and one row per trial result. Failed rows
// keep their identity and error-text output but leave every numeric
// cell empty, so success filtering in a spreadsheet is a non-blank
// check on Total Cost.
func WriteCSV(w io.Writer, rows []bench.TrialResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}

	for _, r := range rows {
		record := []string{
			strconv.Itoa(r.RunNumber),
			r.Vendor,
			r.Model,
			r.UserPrompt,
			r.SystemPrompt,
			r.Output,
		}
		if r.Failed {
			record = append(record, "", "", "", "", "", "", "", "", "")
		} else {
			record = append(record,
				strconv.Itoa(r.Usage.InputTokens),
				strconv.Itoa(r.Usage.CachedInputTokens),
				strconv.Itoa(r.Usage.OutputTokens),
				strconv.Itoa(r.Usage.ReasoningTokens),
				formatCost(r.Cost.RegularInputCost),
				formatCost(r.Cost.CachedCost),
				formatCost(r.Cost.OutputCost),
				formatCost(r.Cost.ReasoningCost),
				formatCost(r.Cost.TotalCost),
			)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatCost(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// SaveCSV writes the result set to a timestamped file derived from
// base and returns the path written.
func SaveCSV(base string, rows []bench.TrialResult) (string, error) {
	path := TimestampedFilename(base, time.Now())
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create csv: %w", err)
	}
	defer f.Close()

	if err := WriteCSV(f, rows); err != nil {
		return "", fmt.Errorf("write csv: %w", err)
	}
	return path, nil
}

// TimestampedFilename turns "results" into "results_20250131_142501.csv".
func TimestampedFilename(base string, t time.Time) string {
	return fmt.Sprintf("%s_%s.csv", base, t.Format("20060102_150405"))
}
