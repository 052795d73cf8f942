package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/avetrov/claimsift/internal/aggregate"
	"github.com/avetrov/claimsift/internal/cache"
	"github.com/avetrov/claimsift/internal/extract"
	"github.com/avetrov/claimsift/internal/ingest"
	"github.com/avetrov/claimsift/internal/model"
	"github.com/avetrov/claimsift/internal/prioritize"
	"github.com/avetrov/claimsift/internal/verify"
)

// ErrNoClaims signals data loss: at least one agent reported output but
// nothing reached aggregation
var ErrNoClaims = errors.New("no claims reached aggregation although agents reported output")

// Pipeline orchestrates one run: ingest, extract, prioritize, verify,
// aggregate. Configuration is an explicit value; two pipelines with
// different settings can run concurrently.
type Pipeline struct {
	loader      *ingest.Loader
	extractor   *extract.ClaimExtractor
	prioritizer *prioritize.Prioritizer
	verifier    *verify.Verifier
	aggregator  *aggregate.Aggregator
	renderer    *Renderer
	config      *model.Config

	mu    sync.Mutex
	state model.RunState
}

// NewPipeline creates a new pipeline with the given configuration
func NewPipeline(cfg *model.Config) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	provider, err := verify.NewProvider(cfg.Verify)
	if err != nil {
		return nil, fmt.Errorf("create provider: %w", err)
	}

	var resultCache *cache.ResultCache
	if cfg.Cache.Enabled {
		dir := cfg.Cache.Dir
		if dir == "" {
			if userCache, err := os.UserCacheDir(); err == nil {
				dir = filepath.Join(userCache, "claimsift")
			}
		}
		if dir != "" {
			layered := cache.NewLayeredCache(cfg.Cache.MemoryTTL, dir, cfg.Cache.DiskTTL)
			resultCache = cache.NewResultCache(layered, cfg.Cache.DiskTTL)
		}
	}

	return &Pipeline{
		loader:      ingest.NewLoader(),
		extractor:   extract.NewClaimExtractor(),
		prioritizer: prioritize.NewPrioritizer(cfg.Budgets, cfg.Keywords),
		verifier:    verify.NewVerifier(provider, cfg.Verify, cfg.Concurrency.BatchWorkers, resultCache),
		aggregator:  aggregate.NewAggregator(),
		renderer:    NewRenderer(cfg.Output.IncludeFooter),
		config:      cfg,
		state:       model.StateIdle,
	}, nil
}

// State returns the current run state
func (p *Pipeline) State() model.RunState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Pipeline) setState(s model.RunState) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
}

// Run processes one input (a JSON file or a directory of agent records) and
// returns the consolidated insights. Partial verification failures never
// fail the run; integrity violations and data loss do.
func (p *Pipeline) Run(ctx context.Context, path string) (*model.ConsolidatedInsights, error) {
	// 1. Ingest and extract
	p.setState(model.StateExtracting)
	loaded, err := p.loader.Load(path)
	if err != nil {
		p.setState(model.StateFailed)
		return nil, fmt.Errorf("load agent outputs: %w", err)
	}

	agentsReported := 0
	for _, record := range loaded.Records {
		if !record.Empty() {
			agentsReported++
		}
	}

	claims := p.extractor.ExtractAll(loaded.Records)

	// 2. Prioritize
	p.setState(model.StatePrioritizing)
	retained := p.prioritizer.Prioritize(claims)

	if len(retained) == 0 && agentsReported > 0 {
		p.setState(model.StateFailed)
		return nil, fmt.Errorf("%w (%d agents reported)", ErrNoClaims, agentsReported)
	}

	// 3. Verify
	p.setState(model.StateVerifying)
	results := p.verifier.Verify(ctx, retained)

	// 4. Aggregate
	p.setState(model.StateAggregating)
	insights, err := p.aggregator.Aggregate(retained, results, path, loaded.Warnings)
	if err != nil {
		p.setState(model.StateFailed)
		return nil, err
	}

	insights.AgentsReported = agentsReported
	insights.ClaimsExtracted = len(claims)
	insights.ClaimsRetained = len(retained)

	p.setState(model.StateDone)
	return insights, nil
}
