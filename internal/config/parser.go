package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// SpotterParser implements the Parser interface.
type SpotterParser struct{}

// DefaultOptions returns baseline settings used before config overrides.
func DefaultOptions() Options {
	return Options{
		Interval:      10 * time.Second,
		Cooldown:      15 * time.Minute,
		MessageDelay:  1 * time.Second,
		FollowUpDelay: 30 * time.Second,
		Ceiling:       5000,
		Verbose:       false,
		FeedTimeout:   5 * time.Second,
		HistoryFile:   "spotter-history.json",
		IRCPort:       6667,
		IRCNick:       "planespotter",
		IRCRealname:   "planespotter",
		MetricsListen: "",
		UIDisable:     false,
	}
}

// LoadConfig parses a spotter.conf file with CLI overrides applied.
func (p SpotterParser) LoadConfig(path string, overrides CLIOverrides) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	cfg := &Config{Global: DefaultOptions()}

	scanner := bufio.NewScanner(file)
	section := ""

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "#") {
			if strings.HasPrefix(line, "# spotter:") {
				pairs, err := p.ParseSpotterDirective(line)
				if err != nil {
					return nil, err
				}
				if err := applyDirective(&cfg.Global, pairs); err != nil {
					return nil, err
				}
			}
			continue
		}

		if strings.HasPrefix(line, "spotter:") {
			pairs, err := p.ParseSpotterDirective(line)
			if err != nil {
				return nil, err
			}
			if err := applyDirective(&cfg.Global, pairs); err != nil {
				return nil, err
			}
			continue
		}

		if strings.HasPrefix(line, "---") {
			name := strings.TrimSpace(strings.TrimPrefix(line, "---"))
			switch name {
			case "squawks", "aircraft", "categories":
				section = name
			default:
				return nil, fmt.Errorf("unknown watchlist section: %q", name)
			}
			continue
		}

		switch section {
		case "squawks":
			cfg.Squawks = append(cfg.Squawks, line)
		case "aircraft":
			cfg.Aircraft = append(cfg.Aircraft, line)
		case "categories":
			cfg.Categories = append(cfg.Categories, line)
		default:
			return nil, fmt.Errorf("watchlist entry outside a section: %q", line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	applyCLIOverrides(&cfg.Global, overrides)
	return cfg, nil
}

// ParseSpotterDirective extracts key=value pairs from a directive line.
func (p SpotterParser) ParseSpotterDirective(line string) (map[string]string, error) {
	trimmed := strings.TrimSpace(line)
	if strings.HasPrefix(trimmed, "#") {
		trimmed = strings.TrimSpace(strings.TrimPrefix(trimmed, "#"))
	} else if !strings.HasPrefix(trimmed, "spotter:") {
		return nil, fmt.Errorf("directive line must start with '# spotter:' or 'spotter:': %q", line)
	}
	payload := strings.TrimSpace(strings.TrimPrefix(trimmed, "spotter:"))
	if payload == "" {
		return map[string]string{}, nil
	}

	pairs := make(map[string]string)
	for _, token := range strings.Fields(payload) {
		kv := strings.SplitN(token, "=", 2)
		if len(kv) != 2 {
			return nil, fmt.Errorf("invalid directive token: %q", token)
		}
		pairs[kv[0]] = kv[1]
	}
	return pairs, nil
}

func applyDirective(global *Options, pairs map[string]string) error {
	for key, val := range pairs {
		switch key {
		case "interval":
			d, err := time.ParseDuration(val)
			if err != nil {
				return fmt.Errorf("invalid interval: %w", err)
			}
			global.Interval = d
		case "cooldown":
			d, err := time.ParseDuration(val)
			if err != nil {
				return fmt.Errorf("invalid cooldown: %w", err)
			}
			global.Cooldown = d
		case "delay":
			d, err := time.ParseDuration(val)
			if err != nil {
				return fmt.Errorf("invalid delay: %w", err)
			}
			global.MessageDelay = d
		case "followup.delay":
			d, err := time.ParseDuration(val)
			if err != nil {
				return fmt.Errorf("invalid followup.delay: %w", err)
			}
			global.FollowUpDelay = d
		case "ceiling":
			n, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("invalid ceiling: %w", err)
			}
			global.Ceiling = n
		case "verbose":
			b, err := strconv.ParseBool(val)
			if err != nil {
				return fmt.Errorf("invalid verbose: %w", err)
			}
			global.Verbose = b
		case "feed.url":
			global.FeedURL = val
		case "feed.timeout":
			d, err := time.ParseDuration(val)
			if err != nil {
				return fmt.Errorf("invalid feed.timeout: %w", err)
			}
			global.FeedTimeout = d
		case "history.file":
			global.HistoryFile = val
		case "webhook.url":
			global.WebhookURL = val
		case "ref.lat":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return fmt.Errorf("invalid ref.lat: %w", err)
			}
			global.RefLat = f
		case "ref.lon":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return fmt.Errorf("invalid ref.lon: %w", err)
			}
			global.RefLon = f
		case "irc.server":
			global.IRCServer = val
		case "irc.port":
			n, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("invalid irc.port: %w", err)
			}
			global.IRCPort = n
		case "irc.nick":
			global.IRCNick = val
		case "irc.realname":
			global.IRCRealname = val
		case "irc.channel":
			global.IRCChannel = val
		case "irc.proxy":
			global.IRCProxy = val
		case "metrics.listen":
			if isDigits(val) {
				global.MetricsListen = ":" + val
			} else {
				global.MetricsListen = val
			}
		case "ui.disable":
			b, err := strconv.ParseBool(val)
			if err != nil {
				return fmt.Errorf("invalid ui.disable: %w", err)
			}
			global.UIDisable = b
		default:
			// Ignore unknown keys for forward compatibility.
		}
	}
	return nil
}

func applyCLIOverrides(global *Options, overrides CLIOverrides) {
	if overrides.Interval != nil {
		global.Interval = *overrides.Interval
	}
	if overrides.Cooldown != nil {
		global.Cooldown = *overrides.Cooldown
	}
	if overrides.MessageDelay != nil {
		global.MessageDelay = *overrides.MessageDelay
	}
	if overrides.Verbose != nil {
		global.Verbose = *overrides.Verbose
	}
	if overrides.RefLat != nil {
		global.RefLat = *overrides.RefLat
	}
	if overrides.RefLon != nil {
		global.RefLon = *overrides.RefLon
	}
	if overrides.FeedURL != nil && *overrides.FeedURL != "" {
		global.FeedURL = *overrides.FeedURL
	}
	if overrides.HistoryFile != nil && *overrides.HistoryFile != "" {
		global.HistoryFile = *overrides.HistoryFile
	}
	if overrides.MetricsListen != nil && *overrides.MetricsListen != "" {
		val := *overrides.MetricsListen
		if isDigits(val) {
			val = ":" + val
		}
		global.MetricsListen = val
	}
	if overrides.UIDisable != nil {
		global.UIDisable = *overrides.UIDisable
	}
}

// Validate checks settings the daemon cannot run without.
func (c *Config) Validate() error {
	if c.Global.FeedURL == "" {
		return fmt.Errorf("feed.url is required")
	}
	if c.Global.IRCServer == "" {
		return fmt.Errorf("irc.server is required")
	}
	if c.Global.IRCChannel == "" {
		return fmt.Errorf("irc.channel is required")
	}
	if c.Global.Interval <= 0 {
		return fmt.Errorf("interval must be positive")
	}
	if c.Global.Cooldown < 0 {
		return fmt.Errorf("cooldown must not be negative")
	}
	return nil
}

func isDigits(value string) bool {
	if value == "" {
		return false
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
