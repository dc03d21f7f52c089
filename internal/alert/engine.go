package alert

import (
	"context"
	"time"

	"github.com/adsbwatch/planespotter/internal/config"
	"github.com/adsbwatch/planespotter/internal/feed"
	"github.com/adsbwatch/planespotter/internal/geo"
	"github.com/adsbwatch/planespotter/internal/history"
	"github.com/adsbwatch/planespotter/internal/log"
	"github.com/adsbwatch/planespotter/internal/state"
	"github.com/adsbwatch/planespotter/internal/watch"
)

// staleAfter bounds how long an unseen aircraft stays in the live view.
const staleAfter = 5 * time.Minute

// Engine drives the poll loop: fetch a snapshot, evaluate every record
// against the watchlist, dispatch cooldown-gated alerts and schedule
// follow-up checks for incomplete telemetry.
type Engine struct {
	opts      config.Options
	watchlist *watch.Watchlist
	hist      *history.History
	fetcher   Fetcher
	sinks     []Sink
	followups *FollowUpScheduler
	store     state.Store
	logger    *log.Logger

	// now is swappable for tests.
	now func() time.Time
}

// NewEngine wires the orchestrator. The follow-up scheduler shares the
// engine's fetcher and sinks.
func NewEngine(opts config.Options, watchlist *watch.Watchlist, hist *history.History, fetcher Fetcher, sinks []Sink, store state.Store, logger *log.Logger) *Engine {
	return &Engine{
		opts:      opts,
		watchlist: watchlist,
		hist:      hist,
		fetcher:   fetcher,
		sinks:     sinks,
		followups: NewFollowUpScheduler(opts.FollowUpDelay, opts.RefLat, opts.RefLon, fetcher, sinks, store, logger),
		store:     store,
		logger:    logger,
		now:       time.Now,
	}
}

// FollowUps exposes the scheduler, mainly for tests and metrics.
func (e *Engine) FollowUps() *FollowUpScheduler {
	return e.followups
}

// Run executes poll cycles until the context is cancelled. The interval is
// additive: each cycle's processing time plus one full interval passes
// between fetches.
func (e *Engine) Run(ctx context.Context) error {
	for {
		e.Cycle(ctx)

		timer := time.NewTimer(e.opts.Interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// Cycle performs one fetch-evaluate-dispatch pass. Fetch failures skip the
// cycle; nothing in here terminates the loop.
func (e *Engine) Cycle(ctx context.Context) {
	snap, err := e.fetcher.Fetch(ctx)
	if err != nil {
		e.store.RecordCycle(true)
		e.logger.LogFetch(e.opts.FeedURL, 0, err)
		return
	}
	e.store.RecordCycle(false)
	e.logger.LogFetch(e.opts.FeedURL, len(snap.Aircraft), nil)

	now := e.now()
	fired := false

	for _, a := range snap.Aircraft {
		if !a.Tracked() {
			continue
		}

		facts, eta := e.geoFacts(a)
		var distance *float64
		if facts != nil {
			distance = &facts.DistanceMiles
		}
		e.store.Observe(a, distance, now)

		if !e.watchlist.Matches(a) && !e.opts.Verbose {
			continue
		}
		if !e.hist.Eligible(a.Hex, now) {
			continue
		}

		text := Format(KindAlert, a, facts, eta)
		for _, sink := range e.sinks {
			if err := sink.Send(text); err != nil {
				e.logger.LogDispatchError(sink.Name(), a.Hex, err)
			}
		}

		e.hist.Record(a.Hex, now)
		e.store.RecordAlert(a.Hex, now)
		e.logger.LogAlert("alert", a.Hex, "watchlist match")
		fired = true

		if !a.HasPosition() || a.GS == nil {
			e.followups.Schedule(ctx, a)
		}

		e.pause(ctx, e.opts.MessageDelay)
	}

	if fired {
		if err := e.hist.Persist(); err != nil {
			e.logger.LogError("history", err, nil)
		}
	}

	e.store.Prune(now.Add(-staleAfter))
}

// geoFacts computes distance, bearing and ETA relative to the reference
// point, when the record has a position.
func (e *Engine) geoFacts(a feed.Aircraft) (*GeoFacts, *float64) {
	if !a.HasPosition() {
		return nil, nil
	}

	distance := geo.Distance(e.opts.RefLat, e.opts.RefLon, *a.Lat, *a.Lon)
	direction, bearing := geo.Bearing(e.opts.RefLat, e.opts.RefLon, *a.Lat, *a.Lon)
	facts := &GeoFacts{DistanceMiles: distance, Direction: direction, BearingDeg: bearing}

	if a.GS != nil && *a.GS > 0 {
		seconds := distance * 3600 / *a.GS
		return facts, &seconds
	}
	return facts, nil
}

// pause sleeps between outbound messages to respect chat rate limits.
func (e *Engine) pause(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	select {
	case <-ctx.Done():
		timer.Stop()
	case <-timer.C:
	}
}
