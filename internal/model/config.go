package model

import (
	"fmt"
	"time"
)

// Config holds all settings for a pipeline run.
// It is an explicit value passed into the pipeline constructor, never global
// state, so concurrent runs with different settings cannot interfere.
type Config struct {
	Verify      VerifyConfig      `yaml:"verify" mapstructure:"verify"`
	Budgets     BudgetConfig      `yaml:"budgets" mapstructure:"budgets"`
	Keywords    map[string]int    `yaml:"keyword_weights" mapstructure:"keyword_weights"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
}

// VerifyConfig controls the batched verification calls
type VerifyConfig struct {
	Provider    string        `yaml:"provider" mapstructure:"provider"`         // "openai" or "" (offline mode)
	Model       string        `yaml:"model" mapstructure:"model"`               // Provider-specific model name
	APIKey      string        `yaml:"-" mapstructure:"-"`                       // From env only, never persisted
	BaseURL     string        `yaml:"base_url" mapstructure:"base_url"`         // Custom endpoint
	BatchSize   int           `yaml:"batch_size" mapstructure:"batch_size"`     // Claims per verification call
	CallTimeout time.Duration `yaml:"call_timeout" mapstructure:"call_timeout"` // Hard deadline per call
	MaxRetries  int           `yaml:"max_retries" mapstructure:"max_retries"`   // Attempts beyond the first
	RateLimit   float64       `yaml:"rate_limit" mapstructure:"rate_limit"`     // Calls per second (0 = unlimited)
	RateBurst   int           `yaml:"rate_burst" mapstructure:"rate_burst"`
}

// BudgetConfig caps how many claims each agent may retain after prioritization
type BudgetConfig struct {
	Default  int            `yaml:"default" mapstructure:"default"`     // Budget for agents not listed
	PerAgent map[string]int `yaml:"per_agent" mapstructure:"per_agent"` // Agent identifier -> max claims
}

// Budget returns the claim budget for the given agent
func (b BudgetConfig) Budget(agent string) int {
	if n, ok := b.PerAgent[agent]; ok {
		return n
	}
	return b.Default
}

// CacheConfig controls verification-result caching
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// ConcurrencyConfig controls parallelism
type ConcurrencyConfig struct {
	BatchWorkers int `yaml:"batch_workers" mapstructure:"batch_workers"` // Max simultaneous verification calls
	RunWorkers   int `yaml:"run_workers" mapstructure:"run_workers"`     // Parallel runs in batch mode
}

// OutputConfig controls report rendering
type OutputConfig struct {
	Verbose       bool `yaml:"verbose" mapstructure:"verbose"`
	IncludeFooter bool `yaml:"include_footer" mapstructure:"include_footer"`
}

// DefaultConfig returns the standard configuration
func DefaultConfig() *Config {
	return &Config{
		Verify: VerifyConfig{
			Provider:    "",
			Model:       "",
			BatchSize:   5,
			CallTimeout: 30 * time.Second,
			MaxRetries:  3,
			RateLimit:   0,
			RateBurst:   1,
		},
		Budgets: BudgetConfig{
			Default: 5,
			PerAgent: map[string]int{
				"financial_analyst":  15,
				"legal_counsel":      10,
				"risk_team":          8,
				"market_analyst":     6,
				"operations_analyst": 5,
				"tax_specialist":     4,
				"hr_analyst":         3,
			},
		},
		Keywords: map[string]int{
			"valuation":        3,
			"ebitda":           3,
			"critical_risk":    3,
			"material adverse": 3,
			"impairment":       2,
			"covenant":         2,
			"litigation":       2,
			"indemnity":        2,
			"compliance":       2,
			"liability":        2,
			"revenue":          2,
			"debt":             2,
			"regulatory":       2,
			"goodwill":         1,
			"synergy":          1,
			"escrow":           1,
			"warranty":         1,
			"margin":           1,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       "",
			MemoryTTL: 30 * time.Minute,
			DiskTTL:   24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			BatchWorkers: 4,
			RunWorkers:   4,
		},
		Output: OutputConfig{
			Verbose:       false,
			IncludeFooter: true,
		},
	}
}

// Validate checks the configuration for values the pipeline cannot run with
func (c *Config) Validate() error {
	if c.Verify.BatchSize < 1 {
		return fmt.Errorf("verify.batch_size must be >= 1, got %d", c.Verify.BatchSize)
	}
	if c.Verify.CallTimeout <= 0 {
		return fmt.Errorf("verify.call_timeout must be positive, got %v", c.Verify.CallTimeout)
	}
	if c.Verify.MaxRetries < 0 {
		return fmt.Errorf("verify.max_retries must be >= 0, got %d", c.Verify.MaxRetries)
	}
	if c.Concurrency.BatchWorkers < 1 {
		return fmt.Errorf("concurrency.batch_workers must be >= 1, got %d", c.Concurrency.BatchWorkers)
	}
	if c.Budgets.Default < 0 {
		return fmt.Errorf("budgets.default must be >= 0, got %d", c.Budgets.Default)
	}
	for agent, budget := range c.Budgets.PerAgent {
		if budget < 0 {
			return fmt.Errorf("budgets.per_agent[%s] must be >= 0, got %d", agent, budget)
		}
	}
	return nil
}
