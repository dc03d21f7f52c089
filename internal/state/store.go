package state

import (
	"sync"
	"time"

	"github.com/adsbwatch/planespotter/internal/feed"
)

// StoreImpl is a thread-safe in-memory sighting store.
type StoreImpl struct {
	mu        sync.RWMutex
	sightings map[string]*Sighting
	counters  Counters
}

// NewStore creates an empty sighting store.
func NewStore() *StoreImpl {
	return &StoreImpl{
		sightings: make(map[string]*Sighting),
	}
}

// Observe updates the sighting for one feed record. Alert bookkeeping is
// preserved across observations.
func (s *StoreImpl) Observe(a feed.Aircraft, distance *float64, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sighting, ok := s.sightings[a.Hex]
	if !ok {
		sighting = &Sighting{Hex: a.Hex, Status: StatusSeen}
		s.sightings[a.Hex] = sighting
	}

	sighting.Flight = a.FlightLabel()
	sighting.Squawk = a.Squawk
	sighting.Category = a.Category
	sighting.Altitude = int(a.AltBaro)
	sighting.LastSeen = at
	if distance != nil {
		value := *distance
		sighting.Distance = &value
	} else {
		sighting.Distance = nil
	}
}

// RecordAlert marks an aircraft as alerted and bumps counters.
func (s *StoreImpl) RecordAlert(hex string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counters.Alerts++
	sighting, ok := s.sightings[hex]
	if !ok {
		sighting = &Sighting{Hex: hex}
		s.sightings[hex] = sighting
	}
	sighting.Status = StatusAlerted
	sighting.LastAlertAt = at
	sighting.AlertCount++
}

// RecordUpdate counts a dispatched follow-up message.
func (s *StoreImpl) RecordUpdate(hex string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters.Updates++
}

// RecordCycle counts one poll cycle and, optionally, a fetch failure.
func (s *StoreImpl) RecordCycle(fetchFailed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters.Cycles++
	if fetchFailed {
		s.counters.FetchFailures++
	}
}

// Snapshot returns a copy of all current sightings.
func (s *StoreImpl) Snapshot() []Sighting {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]Sighting, 0, len(s.sightings))
	for _, sighting := range s.sightings {
		result = append(result, copySighting(sighting))
	}
	return result
}

// Get returns a copy of a single sighting.
func (s *StoreImpl) Get(hex string) (Sighting, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sighting, ok := s.sightings[hex]
	if !ok {
		return Sighting{}, false
	}
	return copySighting(sighting), true
}

// Totals returns a copy of the aggregate counters.
func (s *StoreImpl) Totals() Counters {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.counters
}

// Prune drops sightings last seen before the cutoff, keeping the live view
// bounded. Alert counters are unaffected.
func (s *StoreImpl) Prune(before time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for hex, sighting := range s.sightings {
		if sighting.LastSeen.Before(before) {
			delete(s.sightings, hex)
		}
	}
}

func copySighting(source *Sighting) Sighting {
	clone := *source
	if source.Distance != nil {
		value := *source.Distance
		clone.Distance = &value
	}
	return clone
}
