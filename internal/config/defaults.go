// Package config provides configuration loading and defaults for repohealth.
package config

// DefaultConfigDir is the default location for repohealth configuration.
const DefaultConfigDir = "~/.config/repohealth"

// DefaultDBName is the filename for the history SQLite database.
const DefaultDBName = "repohealth.db"

// DefaultFailUnder is the health score below which analyze exits non-zero,
// the top of the "Needs Improvement" tier.
const DefaultFailUnder = 50

// DefaultTopActions is how many priority actions the report lists.
const DefaultTopActions = 5

// DefaultScanConcurrency bounds parallel subtree walks during a scan.
const DefaultScanConcurrency = 4

// DefaultOutput holds the default output preferences.
var DefaultOutput = Output{
	Color: true,
	Width: 80,
}
