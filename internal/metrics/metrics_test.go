package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/adsbwatch/planespotter/internal/feed"
	"github.com/adsbwatch/planespotter/internal/state"
)

func fetchMetrics(t *testing.T, store state.Store) (int, string) {
	t.Helper()
	server := httptest.NewServer(NewServer(store).Handler())
	defer server.Close()

	resp, err := http.Get(server.URL)
	if err != nil {
		t.Fatalf("get metrics: %v", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, string(body)
}

func TestHandlerTotals(t *testing.T) {
	store := state.NewStore()
	store.RecordCycle(false)
	store.RecordCycle(true)
	store.RecordAlert("a0001", time.Now())
	store.RecordUpdate("a0001")

	status, body := fetchMetrics(t, store)
	if status != http.StatusOK {
		t.Fatalf("unexpected status %d", status)
	}

	for _, want := range []string{
		"spotter_cycles_total 2\n",
		"spotter_fetch_failures_total 1\n",
		"spotter_alerts_total 1\n",
		"spotter_updates_total 1\n",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("missing %q in:\n%s", want, body)
		}
	}
}

func TestHandlerSightings(t *testing.T) {
	store := state.NewStore()
	now := time.Now()
	dist := 3.25
	store.Observe(feed.Aircraft{
		Hex:     "a0001",
		Flight:  "UAL123",
		AltBaro: feed.Altitude(4000),
	}, &dist, now)
	store.Observe(feed.Aircraft{Hex: "b0002"}, nil, now)
	store.RecordAlert("a0001", now)

	_, body := fetchMetrics(t, store)

	if !strings.Contains(body, "spotter_aircraft_tracked 2\n") {
		t.Fatalf("missing tracked gauge in:\n%s", body)
	}
	if !strings.Contains(body, `spotter_aircraft_altitude_ft{hex="a0001",flight="UAL123"} 4000`) {
		t.Fatalf("missing altitude gauge in:\n%s", body)
	}
	if !strings.Contains(body, `spotter_aircraft_distance_miles{hex="a0001",flight="UAL123"} 3.25`) {
		t.Fatalf("missing distance gauge in:\n%s", body)
	}
	if !strings.Contains(body, `spotter_aircraft_alerts{hex="a0001",flight="UAL123"} 1`) {
		t.Fatalf("missing alert gauge in:\n%s", body)
	}
	if strings.Contains(body, `spotter_aircraft_distance_miles{hex="b0002"`) {
		t.Fatalf("distance must be omitted when unknown:\n%s", body)
	}
	if strings.Contains(body, `spotter_aircraft_alerts{hex="b0002"`) {
		t.Fatalf("alert gauge must be omitted at zero:\n%s", body)
	}
}

func TestHandlerContentType(t *testing.T) {
	server := httptest.NewServer(NewServer(state.NewStore()).Handler())
	defer server.Close()

	resp, err := http.Get(server.URL)
	if err != nil {
		t.Fatalf("get metrics: %v", err)
	}
	defer resp.Body.Close()

	if got := resp.Header.Get("Content-Type"); got != "text/plain; version=0.0.4" {
		t.Fatalf("unexpected content type %q", got)
	}
}

func TestHandlerMethodNotAllowed(t *testing.T) {
	server := httptest.NewServer(NewServer(state.NewStore()).Handler())
	defer server.Close()

	resp, err := http.Post(server.URL, "text/plain", nil)
	if err != nil {
		t.Fatalf("post metrics: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.StatusCode)
	}
}

func TestEscapeLabel(t *testing.T) {
	tests := []struct {
		in, out string
	}{
		{"UAL123", "UAL123"},
		{`say "hi"`, `say \"hi\"`},
		{`back\slash`, `back\\slash`},
	}
	for _, tt := range tests {
		if got := escapeLabel(tt.in); got != tt.out {
			t.Fatalf("escapeLabel(%q) = %q, want %q", tt.in, got, tt.out)
		}
	}
}
