package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/avetrov/claimsift/internal/model"
)

// Runner processes one deal's agent outputs into consolidated insights
type Runner interface {
	Run(ctx context.Context, path string) (*model.ConsolidatedInsights, error)
}

// RunJob processes one input path
type RunJob struct {
	Path   string
	Runner Runner
}

// Execute executes the run job
func (j *RunJob) Execute(ctx context.Context) Result {
	insights, err := j.Runner.Run(ctx, j.Path)
	return &RunResult{
		Path:     j.Path,
		Insights: insights,
		Error:    err,
	}
}

// RunResult represents the result of one run
type RunResult struct {
	Path     string
	Insights *model.ConsolidatedInsights
	Error    error
}

// GetError returns the error from the run
func (r *RunResult) GetError() error {
	return r.Error
}

// BatchProcessor processes multiple deal inputs concurrently
type BatchProcessor struct {
	runner      Runner
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(runner Runner, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		runner:      runner,
		concurrency: concurrency,
	}
}

// ProcessPaths runs the pipeline over multiple input paths concurrently
func (b *BatchProcessor) ProcessPaths(ctx context.Context, paths []string) []*RunResult {
	if len(paths) == 0 {
		return []*RunResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for _, path := range paths {
		pool.Submit(&RunJob{Path: path, Runner: b.runner})
	}

	results := pool.Wait()

	runResults := make([]*RunResult, len(results))
	for i, result := range results {
		runResults[i] = result.(*RunResult)
	}

	return runResults
}

// ProcessList reads input paths from a manifest file (one per line) and
// processes them concurrently
func (b *BatchProcessor) ProcessList(ctx context.Context, listPath string) ([]*RunResult, error) {
	paths, err := ReadPathsFromFile(listPath)
	if err != nil {
		return nil, fmt.Errorf("read input list: %w", err)
	}

	return b.ProcessPaths(ctx, paths), nil
}

// ProcessDir processes every *.json file in a directory as a separate run
func (b *BatchProcessor) ProcessDir(ctx context.Context, dir string) ([]*RunResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read input dir: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}

	return b.ProcessPaths(ctx, paths), nil
}

// ReadPathsFromFile reads input paths from a file (one per line)
func ReadPathsFromFile(listPath string) ([]string, error) {
	file, err := os.Open(listPath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var paths []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			paths = append(paths, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return paths, nil
}
