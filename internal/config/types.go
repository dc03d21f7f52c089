package config

import "time"

// Options holds global settings parsed from config and CLI overrides.
type Options struct {
	Interval      time.Duration
	Cooldown      time.Duration
	MessageDelay  time.Duration
	FollowUpDelay time.Duration
	Ceiling       int
	Verbose       bool

	FeedURL     string
	FeedTimeout time.Duration
	HistoryFile string
	WebhookURL  string

	RefLat float64
	RefLon float64

	IRCServer   string
	IRCPort     int
	IRCNick     string
	IRCRealname string
	IRCChannel  string
	IRCProxy    string

	MetricsListen string
	UIDisable     bool
}

// Config is the parsed configuration file with watchlist entries.
type Config struct {
	Global Options

	// Watchlist entries, one per line in their config sections.
	Squawks    []string
	Aircraft   []string
	Categories []string
}

// CLIOverrides holds optional CLI values that override config file values.
type CLIOverrides struct {
	Interval      *time.Duration
	Cooldown      *time.Duration
	MessageDelay  *time.Duration
	Verbose       *bool
	RefLat        *float64
	RefLon        *float64
	FeedURL       *string
	HistoryFile   *string
	MetricsListen *string
	UIDisable     *bool
}

// Parser defines config parsing behavior.
type Parser interface {
	LoadConfig(path string, overrides CLIOverrides) (*Config, error)
	ParseSpotterDirective(line string) (map[string]string, error)
}
