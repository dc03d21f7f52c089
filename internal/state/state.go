package state

import (
	"time"

	"github.com/adsbwatch/planespotter/internal/feed"
)

// Status describes how an aircraft last interacted with the watchlist.
type Status string

const (
	StatusSeen    Status = "SEEN"
	StatusAlerted Status = "ALERTED"
)

// Sighting captures the latest observed state for one aircraft.
type Sighting struct {
	Hex         string
	Flight      string
	Squawk      string
	Category    string
	Altitude    int
	Distance    *float64
	LastSeen    time.Time
	LastAlertAt time.Time
	AlertCount  int
	Status      Status
}

// Counters aggregates poll-loop totals for metrics.
type Counters struct {
	Cycles        uint64
	FetchFailures uint64
	Alerts        uint64
	Updates       uint64
}

// Store defines operations for tracking live sightings.
type Store interface {
	Observe(a feed.Aircraft, distance *float64, at time.Time)
	RecordAlert(hex string, at time.Time)
	RecordUpdate(hex string)
	RecordCycle(fetchFailed bool)
	Snapshot() []Sighting
	Totals() Counters
	Prune(before time.Time)
}
