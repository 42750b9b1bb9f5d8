package config

import "time"

// Default constants for application configuration
const (
	DefaultLogLevel = "info"
	DefaultJSONLog  = false

	DefaultBaseURL   = "https://careers.microsoft.com/v2/global/en/home.html"
	DefaultSource    = "Microsoft Careers"
	DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	DefaultJobTitle = "AI"
	DefaultLocation = "Seattle"
	DefaultMaxJobs  = 50
	// Visible browser by default; headless is opt-in because the target is
	// more aggressive toward headless fingerprints.
	DefaultHeadless = false

	DefaultPageLoadTimeout = 30 * time.Second
	DefaultElementTimeout  = 15 * time.Second
	DefaultResultsTimeout  = 20 * time.Second

	DefaultRetryAttempts   = 3
	DefaultRetryMultiplier = 2.0
	DefaultRetryBaseDelay  = 4 * time.Second
	DefaultRetryMaxDelay   = 30 * time.Second

	DefaultNavRateRPS   = 1.0
	DefaultNavRateBurst = 2

	DefaultOutputDir = "output"
	DefaultFilePref  = "jobs"
)

// Default pacing bounds. Reading pauses are long, typing pauses are short and
// per keystroke; a fixed-rate type simulation is detectable, per-character
// jitter is not.
var (
	DefaultReadDelay   = DelayBounds{Min: 1 * time.Second, Max: 3 * time.Second}
	DefaultTypingDelay = DelayBounds{Min: 50 * time.Millisecond, Max: 150 * time.Millisecond}
	DefaultClickDelay  = DelayBounds{Min: 500 * time.Millisecond, Max: 1500 * time.Millisecond}
	DefaultRecordDelay = DelayBounds{Min: 500 * time.Millisecond, Max: 1500 * time.Millisecond}
	DefaultFieldPause  = DelayBounds{Min: 300 * time.Millisecond, Max: 800 * time.Millisecond}
)
