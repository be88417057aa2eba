package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// Protocol and wire constants.
const (
	// APIVersion is sent in the APIVersionHeader on every request.
	APIVersion = "2025-11-08"

	// APIVersionHeader carries APIVersion.
	APIVersionHeader = "Anytype-Version"

	// RateLimitResetHeader is the primary rate-limit wait header, in seconds.
	RateLimitResetHeader = "ratelimit-reset"

	// RateLimitDurationHeader is consulted when RateLimitResetHeader is absent.
	RateLimitDurationHeader = "x-rate-limit-duration"

	// DefaultUserAgent identifies this client to the service.
	DefaultUserAgent = "anytype-client-go"

	// DefaultAppName is reported by the CLI.
	DefaultAppName = "anyapi"
)

// Endpoints.
const (
	// DefaultURL is the desktop application's local API endpoint.
	DefaultURL = "http://127.0.0.1:31009"

	// HeadlessURL is the endpoint of a headless server.
	HeadlessURL = "http://127.0.0.1:31012"
)

// Environment variables.
const (
	// EnvURL overrides the base URL.
	EnvURL = "ANYTYPE_URL"

	// EnvKey supplies the API key.
	EnvKey = "ANYTYPE_KEY"

	// EnvRateLimitMaxRetries overrides DefaultRateLimitMaxRetries.
	EnvRateLimitMaxRetries = "ANYTYPE_RATE_LIMIT_MAX_RETRIES"

	// EnvDisableCache disables the metadata cache when set to true or 1.
	EnvDisableCache = "ANYTYPE_DISABLE_CACHE"
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout bounds a single attempt.
	DefaultHTTPTimeout = 30 * time.Second

	// ShortHTTPTimeout is used for ping.
	ShortHTTPTimeout = 10 * time.Second
)

// Retry and rate limiting.
const (
	// MaxRetries is the transport retry budget for idempotent methods.
	MaxRetries = 3

	// DefaultRateLimitMaxRetries is the default rate-limit retry ceiling. Zero means unlimited.
	DefaultRateLimitMaxRetries = 5

	// RateLimitWaitWarn is the wait above which a rate-limit sleep is logged at warn level.
	RateLimitWaitWarn = 5 * time.Second

	// RateLimitWaitMax is the absolute ceiling for a server-requested wait.
	RateLimitWaitMax = 30 * time.Second

	// ExponentialBackoffBase is the base for exponential backoff.
	ExponentialBackoffBase = 2

	// MinBackoff is the shortest backoff between transport retries.
	MinBackoff = time.Second

	// JitterMin and JitterSpan define the backoff jitter factor range [0.5, 1.5).
	JitterMin  = 0.5
	JitterSpan = 1.0
)

// Pagination.
const (
	// DefaultPageLimit is the service's default page size.
	DefaultPageLimit = 100

	// MaxPageLimit is the largest page size the service accepts.
	MaxPageLimit = 1000
)

// Validation limits.
const (
	// MaxQueryLen bounds the encoded size of a request's query parameters.
	MaxQueryLen = 4000

	// MaxMarkdownLen bounds request bodies (10 MiB).
	MaxMarkdownLen = 10 * 1024 * 1024

	// MaxNameLen bounds names of spaces, properties and types.
	MaxNameLen = 1024

	// MaxIDLen bounds object and space identifiers.
	MaxIDLen = 256

	// MaxTagLen bounds tag names.
	MaxTagLen = 256
)

// Object id shape.
const (
	// ObjectIDPrefix starts every CIDv1 object id.
	ObjectIDPrefix = "bafyrei"

	// ObjectIDLen is the length of an object id without suffix.
	ObjectIDLen = 59

	// ObjectIDSuffixMaxLen bounds the optional base36 suffix after a dot.
	ObjectIDSuffixMaxLen = 13
)

// Concurrency.
const (
	// DefaultConcurrencyLimit bounds concurrent fetches while priming the cache.
	DefaultConcurrencyLimit = 4
)

// Snapshot backends.
const (
	// DefaultSnapshotTTL is how long a metadata snapshot stays valid in a backend.
	DefaultSnapshotTTL = 10 * time.Minute

	// DefaultSnapshotPrefix namespaces snapshot keys.
	DefaultSnapshotPrefix = "anytype:"

	// DefaultNATSBucket is the KV bucket used for snapshots.
	DefaultNATSBucket = "anytype_metadata"

	// RedisScanCount is the SCAN batch size used when clearing snapshots.
	RedisScanCount = 100

	// SnapshotScopeBytes is how many bytes of the credential hash scope snapshot keys.
	SnapshotScopeBytes = 8
)

// Byte size units.
const (
	// KiB is one kibibyte.
	KiB = 1024

	// MiB is one mebibyte.
	MiB = 1024 * 1024
)

// UI and display constants.
const (
	// CheckMarkSymbol is used to indicate current/active items.
	CheckMarkSymbol = "✓"

	// NotAvailable is used when information is not available.
	NotAvailable = "N/A"
)

// CLI configuration.
const (
	// ConfigDirName is the directory under $HOME holding the CLI config file.
	ConfigDirName = ".anyapi"

	// ConfigFileName is the CLI config file name without extension.
	ConfigFileName = "config"

	// ConfigFileType is the CLI config file format.
	ConfigFileType = "yml"

	// EnvPrefix prefixes environment overrides of CLI settings.
	EnvPrefix = "ANYAPI"

	// DotEnvFile is loaded, when present, before the environment is read.
	DotEnvFile = ".env"

	// MetricsNamespace prefixes exported prometheus metrics.
	MetricsNamespace = "anytype"
)

// Output formats.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)
