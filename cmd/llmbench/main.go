package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vnmchuo/llmbench/config"
	"github.com/vnmchuo/llmbench/internal/bench"
	"github.com/vnmchuo/llmbench/internal/monitor"
	"github.com/vnmchuo/llmbench/internal/pricing"
	"github.com/vnmchuo/llmbench/internal/provider"
	"github.com/vnmchuo/llmbench/internal/provider/claude"
	"github.com/vnmchuo/llmbench/internal/provider/gemini"
	"github.com/vnmchuo/llmbench/internal/provider/grok"
	"github.com/vnmchuo/llmbench/internal/provider/openai"
	"github.com/vnmchuo/llmbench/internal/report"
	"github.com/vnmchuo/llmbench/internal/telemetry"
	"github.com/vnmchuo/llmbench/pkg/ratelimit"
	"github.com/vnmchuo/llmbench/pkg/retry"
)

func main() {
	root := &cobra.Command{
		Use:   "llmbench",
		Short: "Benchmark LLM vendors for cost, usage, and reliability",
	}
	root.AddCommand(newRunCmd(), newValidateCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRunCmd() *cobra.Command {
	var (
		prompt       string
		systemPrompt string
		trials       int
		vendors      []string
		output       string
		cacheType    string
		serve        bool
		noRetry      bool
		noRateLimit  bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run trials across the configured vendors and write a CSV report",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			shutdownTracer, err := telemetry.InitTracer("llmbench", cfg)
			if err != nil {
				return fmt.Errorf("init tracer: %w", err)
			}
			defer shutdownTracer()

			table, err := pricing.LoadFile(cfg.PricingFile)
			if err != nil {
				return err
			}

			if prompt == "" {
				prompt = cfg.DefaultPrompt
			}
			if systemPrompt == "" {
				systemPrompt = cfg.DefaultSystemPrompt
			}
			if trials <= 0 {
				trials = cfg.DefaultTrials
			}
			if cacheType == "" {
				cacheType = cfg.CacheType
			}

			registry := buildRegistry(cfg)
			if len(vendors) == 0 {
				vendors = registry.Names()
			}
			if len(vendors) == 0 {
				return fmt.Errorf("no vendors have usable API keys; run `llmbench validate`")
			}

			var pacer *ratelimit.Pacer
			if !noRateLimit {
				pacer = ratelimit.NewPacer(nil)
			}

			runner := bench.NewRunner(bench.Config{
				Registry: registry,
				Engine:   pricing.NewEngine(table, cacheType),
				Pacer:    pacer,
				Retry: retry.Policy{
					MaxRetries: cfg.MaxRetries,
					BaseDelay:  cfg.RetryBaseDelay,
					MaxDelay:   cfg.RetryMaxDelay,
				},
				DisableRetry: noRetry,
			})

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			rs := bench.NewResultSet()

			var mon *monitor.Server
			if serve {
				mon = monitor.NewServer(cfg.MonitorAddr, rs)
				go func() {
					if err := mon.Start(); err != nil && err != http.ErrServerClosed {
						log.Printf("monitor: %v", err)
					}
				}()
			}

			runErr := runner.Run(ctx, bench.RunSpec{
				Prompt:       prompt,
				SystemPrompt: systemPrompt,
				Trials:       trials,
				Vendors:      vendors,
			}, rs)

			if mon != nil {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := mon.Shutdown(shutdownCtx); err != nil {
					log.Printf("monitor shutdown: %v", err)
				}
			}

			if rs.Len() > 0 {
				path, err := report.SaveCSV(output, rs.Rows())
				if err != nil {
					return err
				}
				log.Printf("results written to %s", path)

				fmt.Println()
				if err := report.WriteSummary(os.Stdout, rs); err != nil {
					return err
				}
			}

			return runErr
		},
	}

	cmd.Flags().StringVarP(&prompt, "prompt", "p", "", "user prompt sent to every vendor")
	cmd.Flags().StringVarP(&systemPrompt, "system", "s", "", "system prompt sent to every vendor")
	cmd.Flags().IntVarP(&trials, "trials", "t", 0, "number of trials per vendor")
	cmd.Flags().StringSliceVar(&vendors, "vendors", nil, "vendors to benchmark, in run order (default: all with valid keys)")
	cmd.Flags().StringVarP(&output, "output", "o", "results", "CSV base name; a timestamp and .csv are appended")
	cmd.Flags().StringVar(&cacheType, "cache-type", "", "Anthropic cache TTL class (5m or 1h)")
	cmd.Flags().BoolVar(&serve, "serve", false, "serve live progress over HTTP while running")
	cmd.Flags().BoolVar(&noRetry, "no-retry", false, "fail calls on the first error")
	cmd.Flags().BoolVar(&noRateLimit, "no-rate-limit", false, "disable per-vendor pacing")

	return cmd
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check which vendors have usable API keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			usable := 0
			for _, vendor := range config.ValidVendors {
				if cfg.HasValidKey(vendor) {
					fmt.Printf("%-10s ok\n", vendor)
					usable++
				} else {
					fmt.Printf("%-10s missing or placeholder key\n", vendor)
				}
			}
			if usable == 0 {
				return fmt.Errorf("no usable API keys configured")
			}
			return nil
		},
	}
}

// buildRegistry registers a provider for every vendor with a usable
// key, in the canonical run order.
func buildRegistry(cfg *config.Config) *provider.Registry {
	var providers []provider.Provider
	for _, vendor := range config.ValidVendors {
		if !cfg.HasValidKey(vendor) {
			log.Printf("skipping %s: missing or placeholder API key", vendor)
			continue
		}
		switch vendor {
		case "openai":
			providers = append(providers, openai.New(cfg.OpenAIAPIKey))
		case "gemini":
			providers = append(providers, gemini.New(cfg.GeminiAPIKey))
		case "anthropic":
			providers = append(providers, claude.New(cfg.AnthropicAPIKey))
		case "grok":
			providers = append(providers, grok.New(cfg.GrokAPIKey))
		}
	}
	return provider.NewRegistry(providers...)
}
