package feed

import (
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Altitude is a barometric altitude in feet, decoded from a possibly-noisy
// feed value. tar1090 reports either a number or a string marker such as
// "ground"; unparsable input decodes to 0. A 0 from stripping is therefore
// indistinguishable from a true ground-level reading (known precision loss).
type Altitude int

// UnmarshalJSON accepts a JSON number or string, keeping only digit runes.
func (a *Altitude) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	n, err := strconv.Atoi(digits.String())
	if err != nil {
		*a = 0
		return nil
	}
	*a = Altitude(n)
	return nil
}

// Aircraft is one state report from the feed. Pointer fields distinguish
// "unavailable" from a present zero value.
type Aircraft struct {
	Hex       string   `json:"hex"`
	Flight    string   `json:"flight"`
	Squawk    string   `json:"squawk"`
	AltBaro   Altitude `json:"alt_baro"`
	Category  string   `json:"category"`
	Emergency string   `json:"emergency"`
	Lat       *float64 `json:"lat"`
	Lon       *float64 `json:"lon"`
	GS        *float64 `json:"gs"`
	IAS       *float64 `json:"ias"`
	TAS       *float64 `json:"tas"`
}

// NonICAOPrefix marks TIS-B and other synthetic addresses in the feed.
const NonICAOPrefix = "~"

// Tracked reports whether the record carries a usable ICAO address.
func (a Aircraft) Tracked() bool {
	return a.Hex != "" && !strings.HasPrefix(a.Hex, NonICAOPrefix)
}

// FlightLabel returns the trimmed flight callsign, or "Unknown" when absent.
func (a Aircraft) FlightLabel() string {
	label := strings.TrimSpace(a.Flight)
	if label == "" {
		return "Unknown"
	}
	return label
}

// HasPosition reports whether both coordinates are present.
func (a Aircraft) HasPosition() bool {
	return a.Lat != nil && a.Lon != nil
}

// Snapshot is one decoded aircraft.json document.
type Snapshot struct {
	Now      float64    `json:"now"`
	Messages int64      `json:"messages"`
	Aircraft []Aircraft `json:"aircraft"`
}

// Find returns the record with the given hex, in feed order.
func (s *Snapshot) Find(hex string) (Aircraft, bool) {
	for _, a := range s.Aircraft {
		if a.Hex == hex {
			return a, true
		}
	}
	return Aircraft{}, false
}

// DecodeSnapshot parses an aircraft.json document.
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}
