package metrics

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/adsbwatch/planespotter/internal/state"
)

// Server exposes Prometheus-style metrics over the live sighting store.
type Server struct {
	store state.Store
}

// NewServer constructs a metrics server.
func NewServer(store state.Store) *Server {
	return &Server{store: store}
}

// Handler returns an http handler that serves metrics.
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
		bw := bufio.NewWriter(w)
		defer bw.Flush()
		s.writeMetrics(bw)
	})
}

func (s *Server) writeMetrics(w *bufio.Writer) {
	writeTotals(w, s.store.Totals())
	writeSightings(w, s.store.Snapshot())
}

func writeTotals(w *bufio.Writer, totals state.Counters) {
	fmt.Fprintf(w, "spotter_cycles_total %d\n", totals.Cycles)
	fmt.Fprintf(w, "spotter_fetch_failures_total %d\n", totals.FetchFailures)
	fmt.Fprintf(w, "spotter_alerts_total %d\n", totals.Alerts)
	fmt.Fprintf(w, "spotter_updates_total %d\n", totals.Updates)
}

func writeSightings(w *bufio.Writer, snapshot []state.Sighting) {
	fmt.Fprintf(w, "spotter_aircraft_tracked %d\n", len(snapshot))

	for _, sighting := range snapshot {
		labels := fmt.Sprintf(
			"hex=%q,flight=%q",
			escapeLabel(sighting.Hex),
			escapeLabel(sighting.Flight),
		)
		fmt.Fprintf(w, "spotter_aircraft_altitude_ft{%s} %d\n", labels, sighting.Altitude)
		if sighting.Distance != nil {
			fmt.Fprintf(w, "spotter_aircraft_distance_miles{%s} %.2f\n", labels, *sighting.Distance)
		}
		if sighting.AlertCount > 0 {
			fmt.Fprintf(w, "spotter_aircraft_alerts{%s} %d\n", labels, sighting.AlertCount)
		}
	}
}

func escapeLabel(value string) string {
	value = strings.ReplaceAll(value, "\\", "\\\\")
	value = strings.ReplaceAll(value, "\"", "\\\"")
	return value
}

// Serve starts an HTTP server and blocks until context cancellation.
func Serve(ctx context.Context, addr string, store state.Store) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", NewServer(store).Handler())
	server := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		_ = server.Shutdown(context.Background())
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return context.Canceled
		}
		return err
	}
}
