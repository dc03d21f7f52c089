package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestPropertyCooldown(t *testing.T) {
	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 200
	props := gopter.NewProperties(params)

	t0 := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	props.Property("eligible exactly when the cooldown has elapsed", prop.ForAll(
		func(cooldownSec, deltaSec int) bool {
			cooldown := time.Duration(cooldownSec) * time.Second
			delta := time.Duration(deltaSec) * time.Second

			h := New(filepath.Join(t.TempDir(), "history.json"), cooldown)
			h.Record("a0001", t0)

			return h.Eligible("a0001", t0.Add(delta)) == (delta >= cooldown)
		},
		gen.IntRange(1, 3600),
		gen.IntRange(0, 7200),
	))

	props.Property("round trip preserves eligibility to the second", prop.ForAll(
		func(cooldownSec, deltaSec int) bool {
			cooldown := time.Duration(cooldownSec) * time.Second
			at := t0.Add(time.Duration(deltaSec) * time.Second)
			path := filepath.Join(t.TempDir(), "history.json")

			original := New(path, cooldown)
			original.Record("a0001", t0)
			if err := original.Persist(); err != nil {
				return false
			}

			restored, err := Load(path, cooldown)
			if err != nil {
				return false
			}
			return restored.Eligible("a0001", at) == original.Eligible("a0001", at)
		},
		gen.IntRange(1, 3600),
		gen.IntRange(0, 7200),
	))

	props.TestingRun(t)
}
