package ui

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/adsbwatch/planespotter/internal/config"
	"github.com/adsbwatch/planespotter/internal/state"
)

const uiRefreshInterval = 500 * time.Millisecond

// UI renders a TUI view of currently tracked aircraft.
type UI struct {
	cfg   config.Options
	state state.Store
}

// New returns a UI instance.
func New(cfg config.Options, store state.Store) *UI {
	return &UI{cfg: cfg, state: store}
}

// Run blocks until the context is cancelled or the user quits.
func (u *UI) Run(ctx context.Context) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	screen.HideCursor()
	defer screen.Fini()

	eventCh := make(chan tcell.Event, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case eventCh <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	ticker := time.NewTicker(uiRefreshInterval)
	defer ticker.Stop()

	u.render(screen)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-eventCh:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if ev.Key() == tcell.KeyCtrlC || ev.Rune() == 'q' {
					return context.Canceled
				}
			case *tcell.EventResize:
				screen.Sync()
			}
		case <-ticker.C:
			u.render(screen)
		}
	}
}

func (u *UI) render(screen tcell.Screen) {
	screen.Clear()
	width, height := screen.Size()
	if width < 20 || height < 5 {
		screen.Show()
		return
	}

	now := time.Now()
	header := fmt.Sprintf(" planespotter  %s  (q to quit)", now.Format("2006-01-02 15:04:05"))
	drawText(screen, 0, 0, width, header, tcell.StyleDefault.Bold(true))

	totals := u.state.Totals()
	info := fmt.Sprintf(" interval=%s  cooldown=%s  cycles=%d  alerts=%d  updates=%d  fetch_errors=%d",
		u.cfg.Interval, u.cfg.Cooldown, totals.Cycles, totals.Alerts, totals.Updates, totals.FetchFailures)
	drawText(screen, 0, 1, width, info, tcell.StyleDefault.Foreground(tcell.ColorGray))

	columns := " HEX     FLIGHT    SQUAWK  ALT(ft)  DIST(mi)  ALERTS  STATUS   AGE"
	drawText(screen, 0, 2, width, columns, tcell.StyleDefault.Bold(true))

	sightings := sortSightings(u.state.Snapshot())
	maxRows := height - 3
	for i := 0; i < len(sightings) && i < maxRows; i++ {
		drawText(screen, 0, 3+i, width, formatSightingLine(sightings[i], now), rowStyle(sightings[i]))
	}

	screen.Show()
}

// sortSightings puts alerted aircraft first, then orders by distance when
// known and hex otherwise.
func sortSightings(sightings []state.Sighting) []state.Sighting {
	sort.Slice(sightings, func(i, j int) bool {
		a, b := sightings[i], sightings[j]
		if (a.Status == state.StatusAlerted) != (b.Status == state.StatusAlerted) {
			return a.Status == state.StatusAlerted
		}
		if a.Distance != nil && b.Distance != nil && *a.Distance != *b.Distance {
			return *a.Distance < *b.Distance
		}
		if (a.Distance != nil) != (b.Distance != nil) {
			return a.Distance != nil
		}
		return a.Hex < b.Hex
	})
	return sightings
}

func formatSightingLine(s state.Sighting, now time.Time) string {
	distance := "-"
	if s.Distance != nil {
		distance = fmt.Sprintf("%.1f", *s.Distance)
	}
	squawk := s.Squawk
	if squawk == "" {
		squawk = "-"
	}

	return fmt.Sprintf(" %s %s %s %s %s %s %s %s",
		padOrTrim(s.Hex, 7),
		padOrTrim(s.Flight, 9),
		padOrTrim(squawk, 7),
		padOrTrim(fmt.Sprintf("%d", s.Altitude), 8),
		padOrTrim(distance, 9),
		padOrTrim(fmt.Sprintf("%d", s.AlertCount), 7),
		padOrTrim(string(s.Status), 8),
		formatAge(now.Sub(s.LastSeen)))
}

func rowStyle(s state.Sighting) tcell.Style {
	if s.Status == state.StatusAlerted {
		return tcell.StyleDefault.Foreground(tcell.ColorRed)
	}
	return tcell.StyleDefault
}

func drawText(screen tcell.Screen, x, y, width int, text string, style tcell.Style) {
	if width <= 0 {
		return
	}
	col := x
	for _, r := range text {
		if col >= x+width {
			return
		}
		screen.SetContent(col, y, r, nil, style)
		col++
	}
	for col < x+width {
		screen.SetContent(col, y, ' ', nil, tcell.StyleDefault)
		col++
	}
}

func padOrTrim(value string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(value)
	if len(runes) > width {
		return string(runes[:width])
	}
	if len(runes) < width {
		return value + strings.Repeat(" ", width-len(runes))
	}
	return value
}

func formatAge(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	return fmt.Sprintf("%.1fm", d.Minutes())
}
