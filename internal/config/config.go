package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config is the top-level repohealth configuration.
type Config struct {
	// RulesPath points at a pattern catalog; empty selects the embedded
	// default catalog.
	RulesPath string `mapstructure:"rules_path"`

	// SkipDirs adds directory names to the scanner's built-in deny list.
	SkipDirs []string `mapstructure:"skip_dirs"`

	// FailUnder is the health score threshold for a non-zero exit.
	FailUnder int `mapstructure:"fail_under"`

	// TopActions is how many priority actions the report lists.
	TopActions int `mapstructure:"top_actions"`

	// ScanConcurrency bounds parallel subtree walks.
	ScanConcurrency int `mapstructure:"scan_concurrency"`

	// HistoryDB is the path to the history SQLite database.
	HistoryDB string `mapstructure:"history_db"`

	Output Output `mapstructure:"output"`
}

// Output defines output preferences.
type Output struct {
	Color bool `mapstructure:"color"`
	Width int  `mapstructure:"width"`
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Load reads configuration from the given path (or the default location)
// and returns a Config with all defaults applied. A missing config file is
// not an error.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("rules_path", "")
	v.SetDefault("skip_dirs", []string{})
	v.SetDefault("fail_under", DefaultFailUnder)
	v.SetDefault("top_actions", DefaultTopActions)
	v.SetDefault("scan_concurrency", DefaultScanConcurrency)
	v.SetDefault("history_db", DBPath())
	v.SetDefault("output.color", DefaultOutput.Color)
	v.SetDefault("output.width", DefaultOutput.Width)

	if cfgFile != "" {
		v.SetConfigFile(expandPath(cfgFile))
	} else {
		v.AddConfigPath(expandPath(DefaultConfigDir))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if !os.IsNotExist(err) {
				return nil, err
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.RulesPath = expandPath(cfg.RulesPath)
	cfg.HistoryDB = expandPath(cfg.HistoryDB)

	return &cfg, nil
}

// DBPath returns the default path to the history SQLite database.
func DBPath() string {
	return filepath.Join(expandPath(DefaultConfigDir), DefaultDBName)
}
