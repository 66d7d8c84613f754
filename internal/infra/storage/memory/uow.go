package memory

import (
	"context"
	"sync"

	appoutbox "staybook/internal/app/outbox"
	"staybook/internal/app/uow"
	domainavailability "staybook/internal/domain/availability"
	domainbooking "staybook/internal/domain/booking"
	domainproperty "staybook/internal/domain/property"
	domainsettings "staybook/internal/domain/settings"
)

type blockKey struct {
	propertyID string
	date       string
	source     string
}

// Store is the in-memory database used by tests and local runs.
type Store struct {
	mu sync.Mutex

	property *domainproperty.Property
	settings *domainsettings.SiteSettings
	bookings map[string]*domainbooking.Booking
	blocks   map[blockKey]domainavailability.BlockedDate
	outbox   []appoutbox.EventRecord
}

func NewStore() *Store {
	return &Store{
		bookings: map[string]*domainbooking.Booking{},
		blocks:   map[blockKey]domainavailability.BlockedDate{},
	}
}

// SeedProperty installs the singleton property row.
func (s *Store) SeedProperty(p *domainproperty.Property) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *p
	s.property = &copied
}

// SeedSettings installs the singleton settings row.
func (s *Store) SeedSettings(set *domainsettings.SiteSettings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *set
	s.settings = &copied
}

// Blocks returns a snapshot of all blocked days.
func (s *Store) Blocks() []domainavailability.BlockedDate {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domainavailability.BlockedDate, 0, len(s.blocks))
	for _, b := range s.blocks {
		out = append(out, b)
	}
	return out
}

// Booking returns the stored booking or nil.
func (s *Store) Booking(id domainbooking.BookingID) *domainbooking.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[string(id)]
	if !ok {
		return nil
	}
	copied := *b
	return &copied
}

// OutboxRecords returns every event record added so far.
func (s *Store) OutboxRecords() []appoutbox.EventRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]appoutbox.EventRecord(nil), s.outbox...)
}

// Factory hands out units of work over the shared store. Each unit
// holds the store lock for its lifetime, so transactions serialize the
// way row locks would.
type Factory struct {
	Store *Store
}

func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	f.Store.mu.Lock()
	u := &Unit{store: f.Store}
	u.snapshot()
	return u, nil
}

// Unit applies changes directly to the store and restores a snapshot
// on rollback.
type Unit struct {
	store *Store
	done  bool

	prevProperty *domainproperty.Property
	prevSettings *domainsettings.SiteSettings
	prevBookings map[string]*domainbooking.Booking
	prevBlocks   map[blockKey]domainavailability.BlockedDate
	prevOutbox   []appoutbox.EventRecord
}

func (u *Unit) snapshot() {
	u.prevProperty = u.store.property
	u.prevSettings = u.store.settings
	u.prevBookings = make(map[string]*domainbooking.Booking, len(u.store.bookings))
	for k, v := range u.store.bookings {
		copied := *v
		u.prevBookings[k] = &copied
	}
	u.prevBlocks = make(map[blockKey]domainavailability.BlockedDate, len(u.store.blocks))
	for k, v := range u.store.blocks {
		u.prevBlocks[k] = v
	}
	u.prevOutbox = append([]appoutbox.EventRecord(nil), u.store.outbox...)
}

func (u *Unit) Property() domainproperty.Repository {
	return propertyRepository{store: u.store}
}

func (u *Unit) Bookings() domainbooking.Repository {
	return bookingRepository{store: u.store}
}

func (u *Unit) Blocks() domainavailability.Repository {
	return blockedDateRepository{store: u.store}
}

func (u *Unit) Settings() domainsettings.Repository {
	return settingsRepository{store: u.store}
}

func (u *Unit) Outbox() appoutbox.Outbox {
	return outboxStore{store: u.store}
}

func (u *Unit) Commit(ctx context.Context) error {
	if u.done {
		return nil
	}
	u.done = true
	u.store.mu.Unlock()
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	if u.done {
		return nil
	}
	u.done = true
	u.store.property = u.prevProperty
	u.store.settings = u.prevSettings
	u.store.bookings = u.prevBookings
	u.store.blocks = u.prevBlocks
	u.store.outbox = u.prevOutbox
	u.store.mu.Unlock()
	return nil
}
