package alert

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/adsbwatch/planespotter/internal/feed"
)

// Kind distinguishes a first alert from a follow-up update.
type Kind int

const (
	KindAlert Kind = iota
	KindUpdate
)

// IRC formatting codes carried inside the message text. The chat sink
// renders them verbatim; other sinks receive the same bytes.
const (
	ircBold   = "\x02"
	ircColor  = "\x03"
	colorCyan = "00"
	colorGrn  = "03"
	colorYlw  = "08"
)

const trackURLPrefix = "https://globe.adsbexchange.com/?icao="

// GeoFacts holds the computed relation between the reference point and an
// aircraft position.
type GeoFacts struct {
	DistanceMiles float64
	Direction     string
	BearingDeg    float64
}

// Format assembles the alert text for one aircraft. geo and eta are optional
// segments, omitted when the underlying telemetry is unavailable.
func Format(kind Kind, a feed.Aircraft, geo *GeoFacts, etaSeconds *float64) string {
	prefix := "Alert!"
	if kind == KindUpdate {
		prefix = "UPDATE!"
	}

	flight := ircBold + ircColor + colorCyan + a.FlightLabel() + ircColor + ircBold
	altitude := ircBold + ircColor + colorYlw + strconv.Itoa(int(a.AltBaro)) + " ft" + ircColor + ircBold
	squawk := ircBold + ircColor + colorGrn + a.Squawk + ircColor + ircBold

	var b strings.Builder
	fmt.Fprintf(&b, "%s Aircraft %s (%s) with squawk %s at altitude %s, category %s, emergency status: %s. Location: %s, %s",
		prefix, flight, a.Hex, squawk, altitude, a.Category, a.Emergency,
		coord(a.Lat), coord(a.Lon))

	if geo != nil {
		fmt.Fprintf(&b, " | Distance: %.2f miles %s (%.1f°)", geo.DistanceMiles, geo.Direction, geo.BearingDeg)
	}

	if speeds := speedSegment(a); speeds != "" {
		b.WriteString(" | ")
		b.WriteString(speeds)
	}

	if etaSeconds != nil {
		fmt.Fprintf(&b, " | ETA: %.0f seconds", *etaSeconds)
	}

	if a.Hex != "" {
		b.WriteString(" | Track here: ")
		b.WriteString(trackURLPrefix)
		b.WriteString(a.Hex)
	}

	return b.String()
}

// speedSegment joins the available speeds, skipping absent ones.
func speedSegment(a feed.Aircraft) string {
	parts := make([]string, 0, 3)
	if a.GS != nil {
		parts = append(parts, fmt.Sprintf("Ground Speed: %s knots", knots(*a.GS)))
	}
	if a.IAS != nil {
		parts = append(parts, fmt.Sprintf("IAS: %s knots", knots(*a.IAS)))
	}
	if a.TAS != nil {
		parts = append(parts, fmt.Sprintf("TAS: %s knots", knots(*a.TAS)))
	}
	return strings.Join(parts, ", ")
}

func knots(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func coord(v *float64) string {
	if v == nil {
		return "unknown"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
