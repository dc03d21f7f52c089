package ui

import (
	"fmt"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/adsbwatch/planespotter/internal/state"
)

func TestPropertyPadOrTrim(t *testing.T) {
	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 100
	props := gopter.NewProperties(params)

	props.Property("result is exactly the requested width", prop.ForAll(
		func(value string, width int) bool {
			got := padOrTrim(value, width)
			return len([]rune(got)) == width
		},
		gen.AlphaString(),
		gen.IntRange(1, 40),
	))

	props.Property("zero or negative width yields empty string", prop.ForAll(
		func(value string, width int) bool {
			return padOrTrim(value, width) == ""
		},
		gen.AlphaString(),
		gen.IntRange(-10, 0),
	))

	props.TestingRun(t)
}

func TestPropertySortSightings(t *testing.T) {
	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 100
	props := gopter.NewProperties(params)

	props.Property("alerted aircraft sort before seen aircraft", prop.ForAll(
		func(alerted, seen int) bool {
			sightings := make([]state.Sighting, 0, alerted+seen)
			for i := 0; i < alerted; i++ {
				sightings = append(sightings, state.Sighting{
					Hex:    fmt.Sprintf("b%04x", i),
					Status: state.StatusAlerted,
				})
			}
			for i := 0; i < seen; i++ {
				sightings = append(sightings, state.Sighting{
					Hex:    fmt.Sprintf("a%04x", i),
					Status: state.StatusSeen,
				})
			}

			sorted := sortSightings(sightings)
			if len(sorted) != alerted+seen {
				return false
			}
			for i, s := range sorted {
				wantAlerted := i < alerted
				if (s.Status == state.StatusAlerted) != wantAlerted {
					return false
				}
			}
			return true
		},
		gen.IntRange(0, 15),
		gen.IntRange(0, 15),
	))

	props.Property("known distances sort ascending within a status band", prop.ForAll(
		func(distances []float64) bool {
			sightings := make([]state.Sighting, 0, len(distances))
			for i, d := range distances {
				value := d
				sightings = append(sightings, state.Sighting{
					Hex:      fmt.Sprintf("a%04x", i),
					Status:   state.StatusSeen,
					Distance: &value,
				})
			}

			sorted := sortSightings(sightings)
			for i := 1; i < len(sorted); i++ {
				if *sorted[i-1].Distance > *sorted[i].Distance {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.Float64Range(0, 500)),
	))

	props.TestingRun(t)
}

func TestPropertyFormatSightingLine(t *testing.T) {
	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 100
	props := gopter.NewProperties(params)

	props.Property("line width is stable regardless of content", prop.ForAll(
		func(hex, flight string, altitude int) bool {
			now := time.Now()
			base := formatSightingLine(state.Sighting{
				Hex:      "a0001",
				Flight:   "UAL123",
				Status:   state.StatusSeen,
				LastSeen: now,
			}, now)
			line := formatSightingLine(state.Sighting{
				Hex:      hex,
				Flight:   flight,
				Altitude: altitude,
				Status:   state.StatusSeen,
				LastSeen: now,
			}, now)
			// Every column except the age is fixed width, and both ages are 0s.
			return len([]rune(line)) == len([]rune(base))
		},
		gen.AlphaString(),
		gen.AlphaString(),
		gen.IntRange(0, 60000),
	))

	props.TestingRun(t)
}
