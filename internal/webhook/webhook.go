package webhook

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

const requestTimeout = 10 * time.Second

// Sink POSTs alert text to a configured URL. An empty URL makes every send a
// no-op, so the sink can always be wired in.
type Sink struct {
	url  string
	http *http.Client
}

// New constructs a webhook sink. url may be empty.
func New(url string) *Sink {
	return &Sink{
		url:  url,
		http: &http.Client{Timeout: requestTimeout},
	}
}

// Enabled reports whether a URL is configured.
func (s *Sink) Enabled() bool {
	return s.url != ""
}

// Name identifies the sink in logs.
func (s *Sink) Name() string {
	return "webhook"
}

// Send delivers the alert text as a POST body. Failures are returned for
// logging and never block subsequent alerts.
func (s *Sink) Send(text string) error {
	if s.url == "" {
		return nil
	}

	resp, err := s.http.Post(s.url, "text/plain", strings.NewReader(text))
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
