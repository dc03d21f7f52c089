package watch

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/adsbwatch/planespotter/internal/feed"
)

// SquawkRule matches either one exact transponder code or an inclusive
// numeric range written as "start-end".
type SquawkRule struct {
	Exact string
	Start int
	End   int
	Range bool
}

// Matches reports whether the squawk satisfies this rule. Range rules
// compare the codes as integers.
func (r SquawkRule) Matches(squawk string) bool {
	if !r.Range {
		return squawk == r.Exact
	}
	n, err := strconv.Atoi(squawk)
	if err != nil {
		return false
	}
	return n >= r.Start && n <= r.End
}

// Watchlist is the immutable set of alert criteria, built once at startup.
type Watchlist struct {
	squawks    []SquawkRule
	aircraft   map[string]struct{}
	categories map[string]struct{}
	ceiling    int
}

// New builds a watchlist from config entry lists. Squawk entries may be
// exact 4-digit codes or "start-end" ranges.
func New(squawks, aircraft, categories []string, ceiling int) (*Watchlist, error) {
	w := &Watchlist{
		aircraft:   make(map[string]struct{}, len(aircraft)),
		categories: make(map[string]struct{}, len(categories)),
		ceiling:    ceiling,
	}

	for _, entry := range squawks {
		rule, err := parseSquawkRule(entry)
		if err != nil {
			return nil, err
		}
		w.squawks = append(w.squawks, rule)
	}
	for _, hex := range aircraft {
		w.aircraft[hex] = struct{}{}
	}
	for _, cat := range categories {
		w.categories[cat] = struct{}{}
	}
	return w, nil
}

func parseSquawkRule(entry string) (SquawkRule, error) {
	entry = strings.TrimSpace(entry)
	if entry == "" {
		return SquawkRule{}, fmt.Errorf("empty squawk entry")
	}
	if !strings.Contains(entry, "-") {
		return SquawkRule{Exact: entry}, nil
	}

	parts := strings.SplitN(entry, "-", 2)
	start, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return SquawkRule{}, fmt.Errorf("invalid squawk range %q: %w", entry, err)
	}
	end, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return SquawkRule{}, fmt.Errorf("invalid squawk range %q: %w", entry, err)
	}
	if start > end {
		return SquawkRule{}, fmt.Errorf("inverted squawk range %q", entry)
	}
	return SquawkRule{Start: start, End: end, Range: true}, nil
}

// SquawkMatches reports whether a squawk hits any configured rule.
func (w *Watchlist) SquawkMatches(squawk string) bool {
	if squawk == "" {
		return false
	}
	for _, rule := range w.squawks {
		if rule.Matches(squawk) {
			return true
		}
	}
	return false
}

// Matches evaluates one record against the watchlist. A record matches when
// any single criterion holds. The verbose flag is the caller's concern.
func (w *Watchlist) Matches(a feed.Aircraft) bool {
	if w.SquawkMatches(a.Squawk) {
		return true
	}
	if _, ok := w.aircraft[a.Hex]; ok {
		return true
	}
	// Strict lower bound keeps mis-parsed altitudes (0) from matching.
	if a.AltBaro > 0 && int(a.AltBaro) < w.ceiling {
		return true
	}
	if a.Category != "" {
		if _, ok := w.categories[a.Category]; ok {
			return true
		}
	}
	if a.Emergency != "" && strings.ToLower(a.Emergency) != "none" {
		return true
	}
	return false
}
