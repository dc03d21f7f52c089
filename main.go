package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/adsbwatch/planespotter/internal/alert"
	"github.com/adsbwatch/planespotter/internal/cli"
	"github.com/adsbwatch/planespotter/internal/config"
	"github.com/adsbwatch/planespotter/internal/feed"
	"github.com/adsbwatch/planespotter/internal/history"
	"github.com/adsbwatch/planespotter/internal/irc"
	applog "github.com/adsbwatch/planespotter/internal/log"
	"github.com/adsbwatch/planespotter/internal/metrics"
	"github.com/adsbwatch/planespotter/internal/state"
	"github.com/adsbwatch/planespotter/internal/ui"
	"github.com/adsbwatch/planespotter/internal/watch"
	"github.com/adsbwatch/planespotter/internal/webhook"
)

const version = "0.1.0"

func main() {
	var (
		flagInterval      cli.OptionalDuration
		flagCooldown      cli.OptionalDuration
		flagDelay         cli.OptionalDuration
		flagVerbose       cli.OptionalBool
		flagRefLat        cli.OptionalFloat
		flagRefLon        cli.OptionalFloat
		flagFeedURL       cli.OptionalString
		flagHistory       cli.OptionalString
		flagMetricsListen cli.OptionalString
		flagNoUI          cli.OptionalBool
		flagLogLevel      string
		flagVersion       bool
		flagVersionShort  bool
	)

	flag.Var(&flagInterval, "interval", "feed poll interval (override config)")
	flag.Var(&flagInterval, "i", "feed poll interval (override config)")
	flag.Var(&flagCooldown, "cooldown", "per-aircraft alert cooldown (override config)")
	flag.Var(&flagDelay, "delay", "delay between outbound messages (override config)")
	flag.Var(&flagVerbose, "verbose", "alert on every sighting regardless of watchlist")
	flag.Var(&flagRefLat, "ref-lat", "reference latitude for distance (override config)")
	flag.Var(&flagRefLon, "ref-lon", "reference longitude for distance (override config)")
	flag.Var(&flagFeedURL, "feed", "aircraft.json feed URL (override config)")
	flag.Var(&flagHistory, "history", "alert history file path (override config)")
	flag.Var(&flagMetricsListen, "metrics-listen", "metrics listen address (e.g. :9100)")
	flag.Var(&flagNoUI, "no-ui", "disable TUI (log only)")
	flag.StringVar(&flagLogLevel, "log-level", "info", "log level: debug|info|warn|error")
	flag.BoolVar(&flagVersion, "version", false, "show version")
	flag.BoolVar(&flagVersionShort, "v", false, "show version")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [options] <config-file>\n\n", os.Args[0])
		fmt.Fprintln(os.Stderr, "Options:")
		flag.PrintDefaults()
	}

	flag.Parse()

	if flagVersion || flagVersionShort {
		fmt.Fprintf(os.Stdout, "planespotter version %s\n", version)
		return
	}

	args := flag.Args()
	if len(args) < 1 {
		flag.Usage()
		os.Exit(1)
	}
	configPath := args[0]

	logger := applog.NewLogger(applog.ParseLevel(flagLogLevel))

	overrides := buildOverrides(flagInterval, flagCooldown, flagDelay, flagVerbose, flagRefLat, flagRefLon, flagFeedURL, flagHistory, flagMetricsListen, flagNoUI)

	parser := config.SpotterParser{}
	cfg, err := parser.LoadConfig(configPath, overrides)
	if err != nil {
		logger.LogConfigLoad(false, configPath, err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logger.LogConfigLoad(false, configPath, err)
		os.Exit(1)
	}
	logger.LogConfigLoad(true, configPath, nil)

	if err := run(cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.LogError("main", err, nil)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *applog.Logger) error {
	watchlist, err := watch.New(cfg.Squawks, cfg.Aircraft, cfg.Categories, cfg.Global.Ceiling)
	if err != nil {
		return fmt.Errorf("build watchlist: %w", err)
	}

	hist, err := history.Load(cfg.Global.HistoryFile, cfg.Global.Cooldown)
	if err != nil {
		// Malformed or unreadable history starts empty, never fatal.
		logger.Warn("starting with empty alert history", map[string]interface{}{
			"path":  cfg.Global.HistoryFile,
			"error": err.Error(),
		})
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	session, err := irc.Dial(ctx, irc.Config{
		Server:   cfg.Global.IRCServer,
		Port:     cfg.Global.IRCPort,
		Nick:     cfg.Global.IRCNick,
		Realname: cfg.Global.IRCRealname,
		Channel:  cfg.Global.IRCChannel,
		Proxy:    cfg.Global.IRCProxy,
	}, logger)
	if err != nil {
		return fmt.Errorf("irc session: %w", err)
	}
	defer session.Close()

	sinks := []alert.Sink{session}
	hook := webhook.New(cfg.Global.WebhookURL)
	if hook.Enabled() {
		sinks = append(sinks, hook)
	}

	store := state.NewStore()
	fetcher := feed.NewClient(cfg.Global.FeedURL, cfg.Global.FeedTimeout)
	engine := alert.NewEngine(cfg.Global, watchlist, hist, fetcher, sinks, store, logger)

	errCh := make(chan error, 4)

	go func() {
		errCh <- engine.Run(ctx)
	}()
	go func() {
		errCh <- session.Listen(ctx)
	}()
	if cfg.Global.MetricsListen != "" {
		go func() {
			errCh <- metrics.Serve(ctx, cfg.Global.MetricsListen, store)
		}()
	}
	if !cfg.Global.UIDisable {
		go func() {
			errCh <- ui.New(cfg.Global, store).Run(ctx)
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutting down", map[string]interface{}{"signal": sig.String()})
		cancel()
		return nil
	case err := <-errCh:
		cancel()
		return err
	}
}

func buildOverrides(
	interval cli.OptionalDuration,
	cooldown cli.OptionalDuration,
	delay cli.OptionalDuration,
	verbose cli.OptionalBool,
	refLat cli.OptionalFloat,
	refLon cli.OptionalFloat,
	feedURL cli.OptionalString,
	historyFile cli.OptionalString,
	metricsListen cli.OptionalString,
	noUI cli.OptionalBool,
) config.CLIOverrides {
	overrides := config.CLIOverrides{}

	if v, ok := interval.Value(); ok {
		value := v
		overrides.Interval = &value
	}
	if v, ok := cooldown.Value(); ok {
		value := v
		overrides.Cooldown = &value
	}
	if v, ok := delay.Value(); ok {
		value := v
		overrides.MessageDelay = &value
	}
	if v, ok := verbose.Value(); ok {
		value := v
		overrides.Verbose = &value
	}
	if v, ok := refLat.Value(); ok {
		value := v
		overrides.RefLat = &value
	}
	if v, ok := refLon.Value(); ok {
		value := v
		overrides.RefLon = &value
	}
	if v, ok := feedURL.Value(); ok && v != "" {
		value := v
		overrides.FeedURL = &value
	}
	if v, ok := historyFile.Value(); ok && v != "" {
		value := v
		overrides.HistoryFile = &value
	}
	if v, ok := metricsListen.Value(); ok && v != "" {
		value := v
		overrides.MetricsListen = &value
	}
	if v, ok := noUI.Value(); ok {
		value := v
		overrides.UIDisable = &value
	}

	return overrides
}
