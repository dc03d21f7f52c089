package alert

import (
	"context"

	"github.com/adsbwatch/planespotter/internal/feed"
)

// Fetcher retrieves one feed snapshot.
type Fetcher interface {
	Fetch(ctx context.Context) (*feed.Snapshot, error)
}

// Sink delivers one formatted message to an outbound channel. Delivery
// failures are logged by the caller and never stop the poll loop.
type Sink interface {
	Name() string
	Send(text string) error
}
