package ical

import (
	"context"
	"fmt"
	"net/http"
	"time"

	ics "github.com/arran4/golang-ical"

	"staybook/internal/app/policies"
)

// HTTPFeed downloads and parses an iCal feed. Parse errors surface to
// the caller before any stored data is touched.
type HTTPFeed struct {
	Client *http.Client
}

var _ policies.FeedPort = (*HTTPFeed)(nil)

func (f *HTTPFeed) Fetch(ctx context.Context, url string) ([]policies.FeedEvent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("ical: build request: %w", err)
	}
	resp, err := f.client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("ical: fetch feed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ical: feed returned status %d", resp.StatusCode)
	}
	cal, err := ics.ParseCalendar(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("ical: parse feed: %w", err)
	}
	var out []policies.FeedEvent
	for _, ev := range cal.Events() {
		start, err := eventStart(ev)
		if err != nil {
			continue
		}
		end, err := eventEnd(ev)
		if err != nil {
			continue
		}
		summary := ""
		if prop := ev.GetProperty(ics.ComponentPropertySummary); prop != nil {
			summary = prop.Value
		}
		out = append(out, policies.FeedEvent{Start: start, End: end, Summary: summary})
	}
	return out, nil
}

func (f *HTTPFeed) client() *http.Client {
	if f.Client != nil {
		return f.Client
	}
	return &http.Client{Timeout: 30 * time.Second}
}

func eventStart(ev *ics.VEvent) (time.Time, error) {
	if t, err := ev.GetStartAt(); err == nil {
		return t, nil
	}
	return ev.GetAllDayStartAt()
}

func eventEnd(ev *ics.VEvent) (time.Time, error) {
	if t, err := ev.GetEndAt(); err == nil {
		return t, nil
	}
	return ev.GetAllDayEndAt()
}
