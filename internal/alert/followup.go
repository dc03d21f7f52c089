package alert

import (
	"context"
	"sync"
	"time"

	"github.com/adsbwatch/planespotter/internal/feed"
	"github.com/adsbwatch/planespotter/internal/geo"
	"github.com/adsbwatch/planespotter/internal/log"
	"github.com/adsbwatch/planespotter/internal/state"
)

// FollowUpScheduler re-checks aircraft that alerted with missing position or
// ground-speed data. Each hex holds at most one pending re-check at a time;
// the delayed task re-fetches the feed and dispatches an UPDATE message when
// the gap has filled in. Updates bypass the alert-history cooldown.
type FollowUpScheduler struct {
	mu      sync.Mutex
	pending map[string]struct{}

	delay   time.Duration
	refLat  float64
	refLon  float64
	fetcher Fetcher
	sinks   []Sink
	store   state.Store
	logger  *log.Logger
}

// NewFollowUpScheduler constructs a scheduler with no pending checks.
func NewFollowUpScheduler(delay time.Duration, refLat, refLon float64, fetcher Fetcher, sinks []Sink, store state.Store, logger *log.Logger) *FollowUpScheduler {
	return &FollowUpScheduler{
		pending: make(map[string]struct{}),
		delay:   delay,
		refLat:  refLat,
		refLon:  refLon,
		fetcher: fetcher,
		sinks:   sinks,
		store:   store,
		logger:  logger,
	}
}

// Schedule registers a delayed re-check for the aircraft. Returns false when
// a check is already pending for the same hex; the check-and-insert is one
// critical section so concurrent callers cannot double-schedule.
func (s *FollowUpScheduler) Schedule(ctx context.Context, captured feed.Aircraft) bool {
	if captured.Hex == "" {
		return false
	}

	s.mu.Lock()
	if _, ok := s.pending[captured.Hex]; ok {
		s.mu.Unlock()
		return false
	}
	s.pending[captured.Hex] = struct{}{}
	s.mu.Unlock()

	go s.run(ctx, captured)
	return true
}

// Pending reports whether a re-check is in flight for the hex.
func (s *FollowUpScheduler) Pending(hex string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pending[hex]
	return ok
}

// PendingCount returns the number of in-flight re-checks.
func (s *FollowUpScheduler) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

func (s *FollowUpScheduler) run(ctx context.Context, captured feed.Aircraft) {
	// The guard is released on every exit path, including fetch failure.
	defer func() {
		s.mu.Lock()
		delete(s.pending, captured.Hex)
		s.mu.Unlock()
	}()

	timer := time.NewTimer(s.delay)
	select {
	case <-ctx.Done():
		timer.Stop()
		return
	case <-timer.C:
	}

	snap, err := s.fetcher.Fetch(ctx)
	if err != nil {
		s.logger.Warn("follow-up fetch failed", map[string]interface{}{
			"hex":   captured.Hex,
			"error": err.Error(),
		})
		return
	}

	current, ok := snap.Find(captured.Hex)
	if !ok || !current.Tracked() {
		return
	}

	gainedPosition := !captured.HasPosition() && current.HasPosition()
	gainedSpeed := captured.GS == nil && current.GS != nil
	if !gainedPosition && !gainedSpeed {
		return
	}

	var facts *GeoFacts
	var eta *float64
	if current.HasPosition() {
		distance := geo.Distance(s.refLat, s.refLon, *current.Lat, *current.Lon)
		direction, bearing := geo.Bearing(s.refLat, s.refLon, *current.Lat, *current.Lon)
		facts = &GeoFacts{DistanceMiles: distance, Direction: direction, BearingDeg: bearing}
		if current.GS != nil && *current.GS > 0 {
			seconds := distance * 3600 / *current.GS
			eta = &seconds
		}
	}

	text := Format(KindUpdate, current, facts, eta)
	for _, sink := range s.sinks {
		if err := sink.Send(text); err != nil {
			s.logger.LogDispatchError(sink.Name(), current.Hex, err)
		}
	}
	s.store.RecordUpdate(current.Hex)
	s.logger.LogAlert("update", current.Hex, "telemetry gained")
}
