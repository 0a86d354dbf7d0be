package contract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/huangsam/footprint/schema"
)

// Default values for configuration.
const (
	DefaultPrecision        = 1
	DefaultMaxPromptLines   = 200
	DefaultRemoteAttempts   = 3
	DefaultRemoteBackoff    = time.Second
	DefaultRemoteTimeout    = 60 * time.Second
	DefaultMinBaseMB        = 10.0
	DefaultRecommendFloorMB = 256.0
	DefaultChangeThreshold  = 0.10
	DefaultCacheSize        = 4096
	MaxRemoteAttempts       = 10
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// DefaultExtensions are the eligible source file suffixes.
var DefaultExtensions = []string{".py", ".go", ".js", ".jsx", ".ts", ".tsx"}

// DefaultSkipPatterns exclude test files and build entry points.
var DefaultSkipPatterns = []string{"test", "setup.py", "conftest.py", "*.spec.*", "*.config.js"}

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// Config holds the runtime configuration for the analysis.
// This struct remains the "final, validated" config.
type Config struct {
	RepoPath   string
	TargetPath string // Absolute form of the path given on the command line
	RepoID     string // Overrides the detected repository identity
	Workers    int
	Precision  int
	Output     schema.OutputMode
	OutputFile string
	Detail     bool
	Width      int // Terminal width override (0 = auto-detect)
	UseColors  bool
	DryRun     bool

	Extensions   []string
	SkipPatterns []string
	Excludes     []string

	Provider          schema.ProviderName
	Model             string
	OllamaHost        string
	MaxPromptLines    int
	RemoteAttempts    int
	RemoteBackoff     time.Duration
	RemoteTimeout     time.Duration
	RemoteRPS         float64
	RemoteConcurrency int

	Bounds            schema.Bounds
	MinBaseMB         float64
	RecommendFloorMB  float64
	ChangeThreshold   float64
	HeuristicsFile    string
	CacheSize         int

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	HistoryBackend   schema.DatabaseBackend
	HistoryDBConnect string // Please use env var as this is plaintext

	MetricsFile string
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	RepoPathStr string

	// --- Fields from rootCmd.PersistentFlags() ---
	Workers            int      `mapstructure:"workers"`
	Output             string   `mapstructure:"output"`
	OutputFile         string   `mapstructure:"output-file"`
	Precision          int      `mapstructure:"precision"`
	Detail             bool     `mapstructure:"detail"`
	Color              string   `mapstructure:"color"`
	Width              int      `mapstructure:"width"`
	Extensions         string   `mapstructure:"extensions"`
	SkipPatterns       string   `mapstructure:"skip-patterns"`
	Exclude            string   `mapstructure:"exclude"`
	Provider           string   `mapstructure:"provider"`
	Model              string   `mapstructure:"model"`
	OllamaHost         string   `mapstructure:"ollama-host"`
	MaxPromptLines     int      `mapstructure:"max-prompt-lines"`
	RemoteAttempts     int      `mapstructure:"remote-attempts"`
	RemoteBackoff      string   `mapstructure:"remote-backoff"`
	RemoteTimeout      string   `mapstructure:"remote-timeout"`
	RemoteRPS          float64  `mapstructure:"remote-rps"`
	RemoteConcurrency  int      `mapstructure:"remote-concurrency"`
	MemoryFloorMB      float64  `mapstructure:"memory-floor-mb"`
	MinBaseMB          float64  `mapstructure:"min-base-mb"`
	MinCores           float64  `mapstructure:"min-cores"`
	BandwidthFloorMbps float64  `mapstructure:"bandwidth-floor-mbps"`
	RecommendFloorMB   float64  `mapstructure:"recommend-floor-mb"`
	ChangeThreshold    *float64 `mapstructure:"change-threshold"`
	HeuristicsFile     string   `mapstructure:"heuristics-file"`
	CacheSize          int      `mapstructure:"cache-size"`
	CacheBackend       string   `mapstructure:"cache-backend"`
	CacheDBConnect     string   `mapstructure:"cache-db-connect"`
	HistoryBackend     string   `mapstructure:"history-backend"`
	HistoryDBConnect   string   `mapstructure:"history-db-connect"`
	RepoID             string   `mapstructure:"repo-id"`
	MetricsFile        string   `mapstructure:"metrics-file"`

	// --- Fields from profileCmd.Flags() ---
	DryRun bool `mapstructure:"dry-run"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Extensions = slices.Clone(c.Extensions)
	clone.SkipPatterns = slices.Clone(c.SkipPatterns)
	clone.Excludes = slices.Clone(c.Excludes)
	return &clone
}

// ProcessAndValidate performs all complex parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(ctx context.Context, cfg *Config, client RevisionClient, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processRemoteInputs(cfg, input); err != nil {
		return err
	}
	if err := processBounds(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	if err := resolveRepoPath(ctx, cfg, client, input); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfigs validates cache and history backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Cache Backend Validation ---
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if cfg.CacheBackend == "" {
		cfg.CacheBackend = schema.NoneBackend
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return fmt.Errorf("cache backend: %w", err)
	}

	// --- History Backend Validation ---
	cfg.HistoryBackend = schema.DatabaseBackend(strings.ToLower(input.HistoryBackend))
	if cfg.HistoryBackend == "" {
		cfg.HistoryBackend = schema.SQLiteBackend
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.HistoryBackend]; !ok {
		return fmt.Errorf("invalid history backend '%s'. must be sqlite, mysql, postgresql, none", input.HistoryBackend)
	}
	cfg.HistoryDBConnect = input.HistoryDBConnect
	if err := ValidateDatabaseConnectionString(cfg.HistoryBackend, cfg.HistoryDBConnect); err != nil {
		return fmt.Errorf("history backend: %w", err)
	}

	// Cache and history must not share one SQLite file
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.HistoryBackend == schema.SQLiteBackend {
		cachePath := cfg.CacheDBConnect
		if cachePath == "" {
			cachePath = GetCacheDBFilePath()
		}
		historyPath := cfg.HistoryDBConnect
		if historyPath == "" {
			historyPath = GetHistoryDBFilePath()
		}
		if cachePath == historyPath {
			return fmt.Errorf("cache and history storage must use different SQLite database files. Both resolve to %q", cachePath)
		}
	}

	return nil
}

// validateSimpleInputs processes and validates output, worker and discovery fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.OutputFile = input.OutputFile
	cfg.Detail = input.Detail
	cfg.Width = input.Width
	cfg.DryRun = input.DryRun
	cfg.RepoID = strings.TrimSpace(input.RepoID)
	cfg.HeuristicsFile = input.HeuristicsFile
	cfg.MetricsFile = input.MetricsFile

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- 1. Workers Validation ---
	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	// --- 2. Precision and Output Validation ---
	if input.Precision < 1 || input.Precision > 2 {
		return fmt.Errorf("precision must be 1 or 2 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json", cfg.Output)
	}

	// --- 3. Discovery filters ---
	cfg.Extensions = DefaultExtensions
	if input.Extensions != "" {
		cfg.Extensions = nil
		for _, ext := range ParseList(input.Extensions) {
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			cfg.Extensions = append(cfg.Extensions, strings.ToLower(ext))
		}
	}
	if len(cfg.Extensions) == 0 {
		return fmt.Errorf("at least one source extension is required")
	}

	cfg.SkipPatterns = DefaultSkipPatterns
	if input.SkipPatterns != "" {
		cfg.SkipPatterns = ParseList(input.SkipPatterns)
		if len(cfg.SkipPatterns) == 1 && cfg.SkipPatterns[0] == "none" {
			cfg.SkipPatterns = nil
		}
	}

	cfg.Excludes = []string{"node_modules/", "dist/", "build/", "out/", "target/", "bin/", "__pycache__/", ".min.js"}
	cfg.Excludes = append(cfg.Excludes, ParseList(input.Exclude)...)

	// --- 4. Cache size ---
	if input.CacheSize < 0 {
		return fmt.Errorf("cache-size cannot be negative (received %d)", input.CacheSize)
	}
	cfg.CacheSize = input.CacheSize
	if cfg.CacheSize == 0 {
		cfg.CacheSize = DefaultCacheSize
	}

	return nil
}

// processRemoteInputs validates provider selection and retry settings.
func processRemoteInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.Provider = schema.ProviderName(strings.ToLower(strings.TrimSpace(input.Provider)))
	if cfg.Provider == "" {
		cfg.Provider = schema.AutoProvider
	}
	if _, ok := schema.ValidProviders[cfg.Provider]; !ok {
		return fmt.Errorf("invalid provider '%s'. must be auto, anthropic, gemini, ollama, none", input.Provider)
	}
	cfg.Model = strings.TrimSpace(input.Model)
	cfg.OllamaHost = strings.TrimSpace(input.OllamaHost)

	if input.MaxPromptLines < 0 {
		return fmt.Errorf("max-prompt-lines cannot be negative (received %d)", input.MaxPromptLines)
	}
	cfg.MaxPromptLines = input.MaxPromptLines
	if cfg.MaxPromptLines == 0 {
		cfg.MaxPromptLines = DefaultMaxPromptLines
	}

	if input.RemoteAttempts < 1 || input.RemoteAttempts > MaxRemoteAttempts {
		return fmt.Errorf("remote-attempts must be between 1 and %d (received %d)", MaxRemoteAttempts, input.RemoteAttempts)
	}
	cfg.RemoteAttempts = input.RemoteAttempts

	backoff, err := parseDurationOr(input.RemoteBackoff, DefaultRemoteBackoff)
	if err != nil {
		return fmt.Errorf("invalid remote-backoff: %w", err)
	}
	cfg.RemoteBackoff = backoff

	timeout, err := parseDurationOr(input.RemoteTimeout, DefaultRemoteTimeout)
	if err != nil {
		return fmt.Errorf("invalid remote-timeout: %w", err)
	}
	cfg.RemoteTimeout = timeout

	if input.RemoteRPS < 0 {
		return fmt.Errorf("remote-rps cannot be negative (received %v)", input.RemoteRPS)
	}
	cfg.RemoteRPS = input.RemoteRPS

	if input.RemoteConcurrency < 0 {
		return fmt.Errorf("remote-concurrency cannot be negative (received %d)", input.RemoteConcurrency)
	}
	cfg.RemoteConcurrency = input.RemoteConcurrency

	return nil
}

// processBounds validates the estimate floors and change threshold.
func processBounds(cfg *Config, input *ConfigRawInput) error {
	bounds := schema.DefaultBounds()
	if input.MemoryFloorMB > 0 {
		bounds.MemoryFloorMB = input.MemoryFloorMB
	}
	if input.MinCores > 0 {
		if input.MinCores < 0.5 {
			return fmt.Errorf("min-cores cannot be below 0.5 (received %v)", input.MinCores)
		}
		bounds.MinCores = input.MinCores
	}
	if input.BandwidthFloorMbps < 0 {
		return fmt.Errorf("bandwidth-floor-mbps cannot be negative (received %v)", input.BandwidthFloorMbps)
	}
	if input.BandwidthFloorMbps > 0 {
		bounds.BandwidthFloorMbps = input.BandwidthFloorMbps
	}
	cfg.Bounds = bounds

	cfg.MinBaseMB = DefaultMinBaseMB
	if input.MinBaseMB > 0 {
		cfg.MinBaseMB = input.MinBaseMB
	}
	cfg.RecommendFloorMB = DefaultRecommendFloorMB
	if input.RecommendFloorMB > 0 {
		cfg.RecommendFloorMB = input.RecommendFloorMB
	}

	cfg.ChangeThreshold = DefaultChangeThreshold
	if input.ChangeThreshold != nil {
		if *input.ChangeThreshold < 0 || *input.ChangeThreshold >= 10 {
			return fmt.Errorf("change-threshold must be a non-negative fraction such as 0.1 (received %v)", *input.ChangeThreshold)
		}
		cfg.ChangeThreshold = *input.ChangeThreshold
	}
	return nil
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}

// resolveRepoPath resolves the analysis root. Inside a Git work tree the root is
// the repository top level; any other directory is analyzed as-is.
func resolveRepoPath(ctx context.Context, cfg *Config, client RevisionClient, input *ConfigRawInput) error {
	searchPath := input.RepoPathStr
	if searchPath == "" {
		searchPath = "."
	}
	absSearchPath, err := filepath.Abs(searchPath)
	if err != nil {
		return err
	}
	absSearchPath = filepath.Clean(absSearchPath)

	info, err := os.Stat(absSearchPath)
	if err != nil {
		return fmt.Errorf("cannot analyze %q: %w", searchPath, err)
	}
	cfg.TargetPath = absSearchPath
	contextPath := absSearchPath
	if !info.IsDir() {
		contextPath = filepath.Dir(absSearchPath)
	}
	cfg.RepoPath = contextPath

	if client == nil || !info.IsDir() {
		return nil
	}
	if root, err := client.GetRepoRoot(ctx, contextPath); err == nil && root == contextPath {
		cfg.RepoPath = root
	}
	return nil
}

// ParseList splits a comma-separated list and drops empty items.
func ParseList(s string) []string {
	var out []string
	for p := range strings.SplitSeq(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseDurationOr(s string, fallback time.Duration) (time.Duration, error) {
	if strings.TrimSpace(s) == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration cannot be negative: %s", s)
	}
	return d, nil
}
