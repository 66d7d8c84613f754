package policies

import (
	"context"
	"time"
)

// FeedEvent is one external calendar event with a half-open day span.
type FeedEvent struct {
	Start   time.Time
	End     time.Time
	Summary string
}

// FeedPort fetches and parses the external block calendar. A fetch or
// parse failure must be returned before the caller deletes anything.
type FeedPort interface {
	Fetch(ctx context.Context, url string) ([]FeedEvent, error)
}
