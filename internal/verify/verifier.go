package verify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/avetrov/claimsift/internal/cache"
	"github.com/avetrov/claimsift/internal/model"
	"github.com/google/uuid"
)

// verifySleepFunc is the sleep function used between retries (injectable for tests)
var verifySleepFunc = time.Sleep

// Batch is one bounded group of claims submitted together to the provider
type Batch struct {
	ID    string   // uuid, used in diagnostics and results
	Start int      // Index of the batch's first claim in the dispatched list
	Texts []string // Claim texts in priority order
}

// Verifier partitions prioritized claims into batches and verifies them
// concurrently with timeout, retry, and backoff
type Verifier struct {
	provider    Provider
	results     *cache.ResultCache // nil disables caching
	limiter     *Limiter
	batchSize   int
	callTimeout time.Duration
	maxRetries  int
	maxWorkers  int
}

// NewVerifier creates a new verifier. A nil provider puts the verifier in
// offline mode: every claim is reported unverified with an explanatory note.
func NewVerifier(provider Provider, cfg model.VerifyConfig, maxWorkers int, results *cache.ResultCache) *Verifier {
	if maxWorkers <= 0 {
		maxWorkers = 4
	}

	return &Verifier{
		provider:    provider,
		results:     results,
		limiter:     NewLimiter(cfg.RateLimit, cfg.RateBurst),
		batchSize:   cfg.BatchSize,
		callTimeout: cfg.CallTimeout,
		maxRetries:  cfg.MaxRetries,
		maxWorkers:  maxWorkers,
	}
}

// Partition splits claims into contiguous batches of at most batchSize, in
// priority order. All batches except possibly the last are full.
func (v *Verifier) Partition(claims []model.Claim) []Batch {
	var batches []Batch
	for start := 0; start < len(claims); start += v.batchSize {
		end := start + v.batchSize
		if end > len(claims) {
			end = len(claims)
		}

		texts := make([]string, 0, end-start)
		for _, claim := range claims[start:end] {
			texts = append(texts, claim.Text)
		}

		batches = append(batches, Batch{
			ID:    uuid.NewString(),
			Start: start,
			Texts: texts,
		})
	}
	return batches
}

// Verify verifies all claims and returns exactly one result per claim, in
// claim order. Batch failures are recorded in the results, never raised:
// a batch that exhausts its retries reports every claim unverified with a
// note naming the failure. Context cancellation abandons outstanding batches
// the same way while keeping completed ones.
func (v *Verifier) Verify(ctx context.Context, claims []model.Claim) []model.VerificationResult {
	results := make([]model.VerificationResult, len(claims))
	if len(claims) == 0 {
		return results
	}

	batches := v.Partition(claims)

	if v.provider == nil {
		for _, batch := range batches {
			v.failBatch(results, batch, "verification disabled: no provider configured")
		}
		return results
	}

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, v.maxWorkers)

	for _, batch := range batches {
		wg.Add(1)
		go func(b Batch) {
			defer wg.Done()

			select {
			case <-ctx.Done():
				v.failBatch(results, b, fmt.Sprintf("abandoned: %v", ctx.Err()))
				return
			case semaphore <- struct{}{}:
			}
			defer func() { <-semaphore }()

			v.verifyBatch(ctx, results, b)
		}(batch)
	}

	wg.Wait()
	return results
}

// verifyBatch resolves one batch: cache lookup, then provider call with
// retry and exponential backoff, then failure record as last resort
func (v *Verifier) verifyBatch(ctx context.Context, results []model.VerificationResult, batch Batch) {
	if v.results != nil {
		if cached, found := v.results.Get(batch.Texts); found {
			for i, r := range cached {
				r.ClaimIndex = batch.Start + i
				r.BatchID = batch.ID
				results[batch.Start+i] = r
			}
			return
		}
	}

	attempts := v.maxRetries + 1
	var lastErr error

	for attempt := 0; attempt < attempts; attempt++ {
		if err := v.limiter.Wait(ctx); err != nil {
			v.failBatch(results, batch, fmt.Sprintf("abandoned: %v", err))
			return
		}

		callCtx, cancel := context.WithTimeout(ctx, v.callTimeout)
		resp, err := v.provider.VerifyBatch(callCtx, BatchRequest{
			BatchID: batch.ID,
			Texts:   batch.Texts,
		})
		cancel()

		if err == nil {
			err = checkResponse(batch, resp)
		}
		if err == nil {
			v.recordBatch(results, batch, resp)
			return
		}
		lastErr = err

		// The run deadline has passed; retrying cannot succeed
		if ctx.Err() != nil {
			v.failBatch(results, batch, fmt.Sprintf("abandoned: %v", ctx.Err()))
			return
		}

		if attempt < attempts-1 {
			backoff := time.Duration(1<<uint(attempt)) * time.Second
			if err := sleepOrDone(ctx, backoff); err != nil {
				v.failBatch(results, batch, fmt.Sprintf("abandoned: %v", err))
				return
			}
		}
	}

	v.failBatch(results, batch, fmt.Sprintf("verification failed after %d attempts: %v", attempts, lastErr))
}

// sleepOrDone waits out the backoff but gives up as soon as the run context
// ends, returning its error
func sleepOrDone(ctx context.Context, d time.Duration) error {
	slept := make(chan struct{})
	go func() {
		verifySleepFunc(d)
		close(slept)
	}()

	select {
	case <-slept:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// checkResponse rejects responses that violate the verdict contract: one
// in-range verdict per claim, no duplicates. Violations are retried like any
// other provider error rather than indexed blindly.
func checkResponse(batch Batch, resp *BatchResponse) error {
	if resp == nil {
		return fmt.Errorf("batch %s: provider returned no response", batch.ID)
	}
	if len(resp.Verdicts) != len(batch.Texts) {
		return fmt.Errorf("batch %s: provider returned %d verdicts for %d claims",
			batch.ID, len(resp.Verdicts), len(batch.Texts))
	}

	seen := make(map[int]bool, len(resp.Verdicts))
	for _, verdict := range resp.Verdicts {
		if verdict.Index < 0 || verdict.Index >= len(batch.Texts) {
			return fmt.Errorf("batch %s: verdict index %d out of range for %d claims",
				batch.ID, verdict.Index, len(batch.Texts))
		}
		if seen[verdict.Index] {
			return fmt.Errorf("batch %s: duplicate verdict for claim %d", batch.ID, verdict.Index)
		}
		seen[verdict.Index] = true
	}
	return nil
}

// recordBatch maps provider verdicts back to claim positions and stores the
// batch in the result cache
func (v *Verifier) recordBatch(results []model.VerificationResult, batch Batch, resp *BatchResponse) {
	relative := make([]model.VerificationResult, len(batch.Texts))
	for _, verdict := range resp.Verdicts {
		relative[verdict.Index] = model.VerificationResult{
			ClaimIndex: verdict.Index,
			BatchID:    batch.ID,
			Verified:   verdict.Verified,
			Confidence: verdict.Confidence,
			Note:       verdict.Note,
		}
	}

	for i, r := range relative {
		r.ClaimIndex = batch.Start + i
		results[batch.Start+i] = r
	}

	if v.results != nil {
		_ = v.results.Set(batch.Texts, relative)
	}
}

// failBatch records every claim in the batch as unverified with the given note
func (v *Verifier) failBatch(results []model.VerificationResult, batch Batch, note string) {
	for i := range batch.Texts {
		results[batch.Start+i] = model.VerificationResult{
			ClaimIndex: batch.Start + i,
			BatchID:    batch.ID,
			Verified:   false,
			Confidence: 0,
			Note:       note,
		}
	}
}
