package availability_test

import (
	"context"
	"testing"
	"time"

	appavailability "staybook/internal/app/availability"
	"staybook/internal/app/uow"
	domainavailability "staybook/internal/domain/availability"
	domainproperty "staybook/internal/domain/property"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/infra/storage/memory"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestBlockedDatesMergesSources(t *testing.T) {
	store := memory.NewStore()
	store.SeedProperty(&domainproperty.Property{ID: "prop-1"})

	unit, err := memory.Factory{Store: store}.Begin(context.Background(), uow.TxOptions{})
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	blocks := []domainavailability.BlockedDate{
		{PropertyID: "prop-1", Date: day(2026, 9, 10), Source: domainavailability.SourceManual},
		{PropertyID: "prop-1", Date: day(2026, 9, 11), Source: domainavailability.SourceAirbnb},
		// Same day from both sources must surface once.
		{PropertyID: "prop-1", Date: day(2026, 9, 10), Source: domainavailability.SourceAirbnb},
		// Outside the queried window.
		{PropertyID: "prop-1", Date: day(2026, 10, 1), Source: domainavailability.SourceManual},
	}
	if err := unit.Blocks().Upsert(context.Background(), blocks); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := unit.Commit(context.Background()); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	resolver := &appavailability.Resolver{UoWFactory: memory.Factory{Store: store}}
	dr, err := daterange.New(day(2026, 9, 1), day(2026, 10, 1))
	if err != nil {
		t.Fatalf("daterange.New: %v", err)
	}
	dates, err := resolver.BlockedDates(context.Background(), dr)
	if err != nil {
		t.Fatalf("BlockedDates: %v", err)
	}
	want := []string{"2026-09-10", "2026-09-11"}
	if len(dates) != len(want) {
		t.Fatalf("dates = %v, want %v", dates, want)
	}
	for i := range want {
		if dates[i] != want[i] {
			t.Fatalf("dates = %v, want %v", dates, want)
		}
	}
}
