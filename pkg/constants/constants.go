// Package constants provides shared constants for the mortgage-calc application.
package constants

import "time"

// DateTimeLayout is the month format used for schedule start dates and the
// date column of exported schedules.
const DateTimeLayout = "2006-01"

// DayLayout is the format for maturity dates.
const DayLayout = "2006-01-02"

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// CurrencyPlaces is the number of decimal places rendered for currency
	CurrencyPlaces = 2

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// MaxAnnualRatePercent is the exclusive upper bound for annual rates
	MaxAnnualRatePercent = 100.0

	// MaxTermMonths is the longest accepted loan term (100 years)
	MaxTermMonths = 1200

	// CurrencyTolerance is the tolerance for currency comparisons (1 cent).
	// A balance within this tolerance counts as paid off.
	CurrencyTolerance = 0.01
)

// Refinance defaults
const (
	// DefaultPointCostPercent is the cost of one buydown point as a percentage
	// of the loan balance
	DefaultPointCostPercent = 1.0

	// DefaultRateReductionPerPoint is the rate reduction in percentage points
	// bought by one point
	DefaultRateReductionPerPoint = 0.25

	// ShortHorizonMonths and LongHorizonMonths are the horizons used for net
	// savings summaries
	ShortHorizonMonths = 60
	LongHorizonMonths  = 120
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the JSON output format
	OutputFormatJSON = "json"
)

// Mode constants for the CLI
const (
	// ModeSchedule prints the amortization schedule of the configured loan
	ModeSchedule = "schedule"

	// ModeRefinance prints the refinance analyses of the configured scenarios
	ModeRefinance = "refinance"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// ExampleConfigFile is the example configuration file name
	ExampleConfigFile = "config.yaml.example"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// EnvPrefix is the prefix for environment overrides of config keys
	EnvPrefix = "MORTGAGE"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxRequestSizeBytes is the default maximum request body size (256 KB)
	DefaultMaxRequestSizeBytes int64 = 256 * 1024

	// DefaultShutdownTimeout bounds graceful server shutdown
	DefaultShutdownTimeout = 10 * time.Second
)

// Market data defaults
const (
	// MarketSourceStatic serves a configured rate
	MarketSourceStatic = "static"

	// MarketSourceXML fetches the rate from an XML feed
	MarketSourceXML = "xml"

	// CacheBackendMemory keeps quotes in process memory
	CacheBackendMemory = "memory"

	// CacheBackendRedis keeps quotes in redis
	CacheBackendRedis = "redis"

	// DefaultRateType labels quotes whose feed does not say otherwise
	DefaultRateType = "30-year"

	// DefaultFeedTimeout is the HTTP timeout for rate feeds
	DefaultFeedTimeout = 10 * time.Second

	// DefaultQuoteTTL is how long a cached quote stays fresh
	DefaultQuoteTTL = time.Hour

	// DefaultRefreshSchedule is the cron spec of the quote refresher
	DefaultRefreshSchedule = "@every 1h"
)
