package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/avetrov/claimsift/internal/pipeline"
	"github.com/avetrov/claimsift/internal/worker"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	runWorkers   int
	outputDir    string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <dir-or-list>",
	Short: "Process multiple deals in parallel",
	Long: `Batch processes several deals concurrently:
- A directory argument runs every *.json file in it as a separate deal
- A file argument is read as a manifest of input paths (one per line)
- Each run uses concurrent batched verification internally
- Individual insight reports are written per deal

Example:
  claimsift batch deals/
  claimsift batch deals.txt --workers 8 --output-dir ./insights
  claimsift batch deals/ --provider openai --timeout 30m`,
	Args: cobra.ExactArgs(1),
	RunE: runBatchCmd,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&runWorkers, "workers", runtime.NumCPU(), "number of concurrent deal runs")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./claimsift-insights", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "total deadline for all runs")

	// Shared with the run command
	batchCmd.Flags().IntVar(&batchSize, "batch-size", 5, "claims per verification call")
	batchCmd.Flags().DurationVar(&callTimeout, "call-timeout", 30*time.Second, "deadline per verification call")
	batchCmd.Flags().IntVar(&maxRetries, "max-retries", 3, "retries per batch after the first attempt")
	batchCmd.Flags().IntVar(&concurrency, "concurrency", 4, "max simultaneous verification calls per run")
	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable verification result cache")
	batchCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
	batchCmd.Flags().StringVar(&provider, "provider", "", "verification provider (openai; empty = offline mode)")
	batchCmd.Flags().StringVar(&providerMdl, "model", "gpt-4o-mini", "provider model name")
}

func runBatchCmd(cmd *cobra.Command, args []string) error {
	input := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	// The --workers default (NumCPU) applies unless the config file set one
	if cmd.Flags().Changed("workers") || !viper.IsSet("concurrency.run_workers") {
		cfg.Concurrency.RunWorkers = runWorkers
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return err
	}

	processor := worker.NewBatchProcessor(p, cfg.Concurrency.RunWorkers)

	info, err := os.Stat(input)
	if err != nil {
		return fmt.Errorf("stat input: %w", err)
	}

	var results []*worker.RunResult
	if info.IsDir() {
		results, err = processor.ProcessDir(ctx, input)
	} else {
		results, err = processor.ProcessList(ctx, input)
	}
	if err != nil {
		return err
	}

	renderer := pipeline.NewRenderer(!noFooter)
	failed := 0

	for _, result := range results {
		if result.Error != nil {
			failed++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Path, result.Error)
			continue
		}

		name := strings.TrimSuffix(filepath.Base(result.Path), ".json")
		jsonPath := filepath.Join(outputDir, name+".insights.json")
		if err := renderer.RenderJSON(result.Insights, jsonPath); err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Path, err)
			continue
		}

		status := "✓"
		if result.Insights.Failed() {
			status = "⚠"
		}
		fmt.Printf("%s %s: %d claims (%d unverified) -> %s\n",
			status, result.Path, result.Insights.Total(), result.Insights.FailedCount, jsonPath)
	}

	fmt.Printf("\nProcessed %d inputs, %d failed\n", len(results), failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d runs failed", failed, len(results))
	}
	return nil
}
