package provider

import (
	"context"
	"fmt"

	"github.com/vnmchuo/llmbench/internal/usage"
)

type Request struct {
	Prompt       string
	SystemPrompt string
	Model        string // empty selects the vendor default
}

type Response struct {
	Output string
	Model  string
	Usage  usage.Record
}

type Provider interface {
	Complete(ctx context.Context, req *Request) (*Response, error)
	Name() string        // registry key, lowercase
	DisplayName() string // form used in result rows and error output
	DefaultModel() string
}

// CallError formats the uniform failure output recorded for a vendor call.
// The summary and monitor layers key on this prefix to detect failed rows,
// so every vendor must go through it.
func CallError(displayName string, err error) string {
	return fmt.Sprintf("%s error: %v", displayName, err)
}
