package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for caching and history.
	DatabaseBackend string

	// Provenance tags which estimator produced a ResourceEstimate.
	Provenance string

	// ProviderName identifies a remote estimation provider.
	ProviderName string

	// ScalingDimension names the resource that should drive scaling decisions.
	ScalingDimension string
)

// All output modes supported.
const (
	CSVOut  OutputMode = "csv"
	TextOut OutputMode = "text" // default
	JSONOut OutputMode = "json"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default for history
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none" // default for the persistent cache
)

// All provenance kinds.
const (
	RemoteProvenance    Provenance = "remote"
	HeuristicProvenance Provenance = "heuristic"
)

// All remote providers supported.
const (
	AutoProvider      ProviderName = "auto" // default
	AnthropicProvider ProviderName = "anthropic"
	GeminiProvider    ProviderName = "gemini"
	OllamaProvider    ProviderName = "ollama"
	NoProvider        ProviderName = "none"
)

// All scaling dimensions, in precedence order after ScaleNone.
const (
	ScaleNone      ScalingDimension = "none"
	ScaleMemory    ScalingDimension = "memory"
	ScaleCPU       ScalingDimension = "cpu"
	ScaleBandwidth ScalingDimension = "bandwidth"
)

// AllProvenances lists provenance kinds in reporting order.
var AllProvenances = []Provenance{RemoteProvenance, HeuristicProvenance}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:  {},
	TextOut: {},
	JSONOut: {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidProviders lists all valid remote providers.
var ValidProviders = map[ProviderName]struct{}{
	AutoProvider:      {},
	AnthropicProvider: {},
	GeminiProvider:    {},
	OllamaProvider:    {},
	NoProvider:        {},
}
