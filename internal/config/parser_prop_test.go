package config

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/prop"
)

type directiveSpec struct {
	IntervalMs  int
	CooldownMs  int
	Ceiling     int
	Verbose     bool
	FeedURL     string
	MetricsPort int
	UIDisable   bool
}

type watchlistSpec struct {
	Squawks    []string
	Aircraft   []string
	Categories []string
}

func TestPropertyDirectiveParsing(t *testing.T) {
	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 25
	props := gopter.NewProperties(params)

	props.Property("spotter directives map to Options", prop.ForAll(
		func(spec directiveSpec) bool {
			directive := fmt.Sprintf(
				"# spotter: interval=%dms cooldown=%dms ceiling=%d verbose=%t feed.url=%s metrics.listen=%d ui.disable=%t\n",
				spec.IntervalMs,
				spec.CooldownMs,
				spec.Ceiling,
				spec.Verbose,
				spec.FeedURL,
				spec.MetricsPort,
				spec.UIDisable,
			)
			path := writeConfig(t, directive)
			cfg, err := SpotterParser{}.LoadConfig(path, CLIOverrides{})
			if err != nil {
				return false
			}
			if cfg.Global.Interval != time.Duration(spec.IntervalMs)*time.Millisecond {
				return false
			}
			if cfg.Global.Cooldown != time.Duration(spec.CooldownMs)*time.Millisecond {
				return false
			}
			if cfg.Global.Ceiling != spec.Ceiling {
				return false
			}
			if cfg.Global.Verbose != spec.Verbose {
				return false
			}
			if cfg.Global.FeedURL != spec.FeedURL {
				return false
			}
			if cfg.Global.MetricsListen != fmt.Sprintf(":%d", spec.MetricsPort) {
				return false
			}
			return cfg.Global.UIDisable == spec.UIDisable
		},
		genDirectiveSpec(),
	))

	props.TestingRun(t)
}

func TestPropertyWatchlistParsing(t *testing.T) {
	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 25
	props := gopter.NewProperties(params)

	props.Property("watchlist sections round-trip", prop.ForAll(
		func(spec watchlistSpec) bool {
			var lines []string
			lines = append(lines, "--- squawks")
			lines = append(lines, spec.Squawks...)
			lines = append(lines, "--- aircraft")
			lines = append(lines, spec.Aircraft...)
			lines = append(lines, "--- categories")
			lines = append(lines, spec.Categories...)

			path := writeConfig(t, strings.Join(lines, "\n"))
			cfg, err := SpotterParser{}.LoadConfig(path, CLIOverrides{})
			if err != nil {
				return false
			}
			return equalSlices(cfg.Squawks, spec.Squawks) &&
				equalSlices(cfg.Aircraft, spec.Aircraft) &&
				equalSlices(cfg.Categories, spec.Categories)
		},
		genWatchlistSpec(),
	))

	props.Property("comment-only files produce empty watchlists", prop.ForAll(
		func(count int) bool {
			lines := make([]string, 0, count)
			for i := 0; i < count; i++ {
				lines = append(lines, "# comment")
			}
			path := writeConfig(t, strings.Join(lines, "\n"))
			cfg, err := SpotterParser{}.LoadConfig(path, CLIOverrides{})
			if err != nil {
				return false
			}
			return len(cfg.Squawks) == 0 && len(cfg.Aircraft) == 0 && len(cfg.Categories) == 0
		},
		gopter.Gen(func(genParams *gopter.GenParameters) *gopter.GenResult {
			count := genParams.Rng.Intn(10) + 1
			return gopter.NewGenResult(count, gopter.NoShrinker)
		}),
	))

	props.TestingRun(t)
}

func TestPropertyCLIPriority(t *testing.T) {
	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 25
	props := gopter.NewProperties(params)

	props.Property("CLI overrides config values", prop.ForAll(
		func(intervalMs, cooldownMs int) bool {
			configText := fmt.Sprintf(
				"# spotter: interval=%dms cooldown=%dms verbose=false ui.disable=false\n",
				intervalMs,
				cooldownMs,
			)
			path := writeConfig(t, configText)

			overrideInterval := time.Duration(intervalMs+1) * time.Millisecond
			overrideCooldown := time.Duration(cooldownMs+1) * time.Millisecond
			overrideVerbose := true
			overrideNoUI := true
			overrides := CLIOverrides{
				Interval:  &overrideInterval,
				Cooldown:  &overrideCooldown,
				Verbose:   &overrideVerbose,
				UIDisable: &overrideNoUI,
			}

			cfg, err := SpotterParser{}.LoadConfig(path, overrides)
			if err != nil {
				return false
			}

			return cfg.Global.Interval == overrideInterval &&
				cfg.Global.Cooldown == overrideCooldown &&
				cfg.Global.Verbose &&
				cfg.Global.UIDisable
		},
		gopter.Gen(func(genParams *gopter.GenParameters) *gopter.GenResult {
			value := genParams.Rng.Intn(5000) + 1
			return gopter.NewGenResult(value, gopter.NoShrinker)
		}),
		gopter.Gen(func(genParams *gopter.GenParameters) *gopter.GenResult {
			value := genParams.Rng.Intn(5000) + 1
			return gopter.NewGenResult(value, gopter.NoShrinker)
		}),
	))

	props.TestingRun(t)
}

func genDirectiveSpec() gopter.Gen {
	return gopter.Gen(func(genParams *gopter.GenParameters) *gopter.GenResult {
		spec := directiveSpec{
			IntervalMs:  genParams.Rng.Intn(60000) + 1,
			CooldownMs:  genParams.Rng.Intn(3600000) + 1,
			Ceiling:     genParams.Rng.Intn(50000),
			Verbose:     genParams.Rng.Intn(2) == 0,
			FeedURL:     "http://" + randomToken(genParams.Rng) + "/data/aircraft.json",
			MetricsPort: genParams.Rng.Intn(60000) + 1024,
			UIDisable:   genParams.Rng.Intn(2) == 0,
		}
		return gopter.NewGenResult(spec, gopter.NoShrinker)
	})
}

func genWatchlistSpec() gopter.Gen {
	return gopter.Gen(func(genParams *gopter.GenParameters) *gopter.GenResult {
		spec := watchlistSpec{
			Squawks:    randomTokens(genParams.Rng),
			Aircraft:   randomTokens(genParams.Rng),
			Categories: randomTokens(genParams.Rng),
		}
		return gopter.NewGenResult(spec, gopter.NoShrinker)
	})
}

func randomTokens(rng *rand.Rand) []string {
	count := rng.Intn(4)
	tokens := make([]string, 0, count)
	for i := 0; i < count; i++ {
		tokens = append(tokens, randomToken(rng))
	}
	return tokens
}

func randomToken(rng *rand.Rand) string {
	const letters = "abcdefghijklmnopqrstuvwxyz0123456789"
	length := rng.Intn(8) + 1
	buf := make([]byte, length)
	for i := range buf {
		buf[i] = letters[rng.Intn(len(letters))]
	}
	return string(buf)
}

func equalSlices(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
