package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/avetrov/claimsift/internal/model"
	"github.com/avetrov/claimsift/internal/pipeline"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	outJSON     string
	outMD       string
	runTimeout  time.Duration
	batchSize   int
	callTimeout time.Duration
	maxRetries  int
	concurrency int
	noCache     bool
	noFooter    bool
	provider    string
	providerMdl string
	strict      bool
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run <agent-outputs>",
	Short: "Process one deal's agent outputs into consolidated insights",
	Long: `Run processes a single deal:
- Read agent-output records from a JSON file or directory
- Extract candidate factual claims per agent
- Score claims by keyword weight and cap them per agent budget
- Verify retained claims in bounded concurrent batches with retry
- Merge outcomes into category-grouped consolidated insights

Example:
  claimsift run deal-outputs.json
  claimsift run outputs/ --json insights.json --md insights.md
  claimsift run deal-outputs.json --provider openai --model gpt-4o-mini`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	// Output flags
	runCmd.Flags().StringVar(&outJSON, "json", "insights.json", "output JSON path")
	runCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")

	// Verification flags
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 5*time.Minute, "overall run deadline (outstanding batches are abandoned, not awaited)")
	runCmd.Flags().IntVar(&batchSize, "batch-size", 5, "claims per verification call")
	runCmd.Flags().DurationVar(&callTimeout, "call-timeout", 30*time.Second, "deadline per verification call")
	runCmd.Flags().IntVar(&maxRetries, "max-retries", 3, "retries per batch after the first attempt")
	runCmd.Flags().IntVar(&concurrency, "concurrency", 4, "max simultaneous verification calls")
	runCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable verification result cache")
	runCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
	runCmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when any claim fails verification")

	// Provider flags
	runCmd.Flags().StringVar(&provider, "provider", "", "verification provider (openai; empty = offline mode)")
	runCmd.Flags().StringVar(&providerMdl, "model", "gpt-4o-mini", "provider model name")
}

func runRun(cmd *cobra.Command, args []string) error {
	input := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Processing: %s\n", input)
		fmt.Fprintf(os.Stderr, "Provider: %s\n", providerName(cfg))
		fmt.Fprintf(os.Stderr, "Batch size: %d, concurrency: %d\n", cfg.Verify.BatchSize, cfg.Concurrency.BatchWorkers)
		fmt.Fprintln(os.Stderr)
	}

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return err
	}

	insights, err := p.Run(ctx, input)
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}

	if err := renderOutputs(insights, outJSON, outMD); err != nil {
		return err
	}

	if strict && insights.Failed() {
		return fmt.Errorf("%d claims failed verification", insights.FailedCount)
	}

	return nil
}

// buildConfig layers flags over the loaded config file and defaults.
// Only flags the user set explicitly override config file values.
func buildConfig(cmd *cobra.Command) (*model.Config, error) {
	cfg := model.DefaultConfig()

	// Config file values (if any) override defaults
	if viper.ConfigFileUsed() != "" {
		if err := viper.Unmarshal(cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	flags := cmd.Flags()
	if flags.Changed("provider") {
		cfg.Verify.Provider = provider
	}
	if flags.Changed("model") {
		cfg.Verify.Model = providerMdl
	}
	if flags.Changed("batch-size") {
		cfg.Verify.BatchSize = batchSize
	}
	if flags.Changed("call-timeout") {
		cfg.Verify.CallTimeout = callTimeout
	}
	if flags.Changed("max-retries") {
		cfg.Verify.MaxRetries = maxRetries
	}
	if flags.Changed("concurrency") {
		cfg.Concurrency.BatchWorkers = concurrency
	}
	if flags.Changed("no-cache") {
		cfg.Cache.Enabled = !noCache
	}
	if flags.Changed("no-footer") {
		cfg.Output.IncludeFooter = !noFooter
	}
	if verbose {
		cfg.Output.Verbose = true
	}

	if cfg.Verify.Provider == "openai" {
		cfg.Verify.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.Verify.APIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	}

	return cfg, nil
}

func providerName(cfg *model.Config) string {
	if cfg.Verify.Provider == "" {
		return "none (offline mode)"
	}
	return cfg.Verify.Provider
}

func renderOutputs(insights *model.ConsolidatedInsights, jsonPath, mdPath string) error {
	renderer := pipeline.NewRenderer(!noFooter)

	if jsonPath != "" {
		if err := renderer.RenderJSON(insights, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote JSON: %s\n", jsonPath)
		}
	}

	if mdPath != "" {
		if err := renderer.RenderMarkdown(insights, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote Markdown: %s\n", mdPath)
		}
	}

	renderer.RenderSummary(insights)
	return nil
}
