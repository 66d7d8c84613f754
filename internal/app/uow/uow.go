package uow

import (
	"context"

	domainavailability "staybook/internal/domain/availability"
	domainbooking "staybook/internal/domain/booking"
	domainproperty "staybook/internal/domain/property"
	domainsettings "staybook/internal/domain/settings"

	"staybook/internal/app/outbox"
)

// UnitOfWork coordinates repositories inside a transaction boundary.
type UnitOfWork interface {
	Property() domainproperty.Repository
	Bookings() domainbooking.Repository
	Blocks() domainavailability.Repository
	Settings() domainsettings.Repository
	Outbox() outbox.Outbox

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UoWFactory starts unit of work instances.
type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

// TxOptions configure transaction boundaries.
type TxOptions struct {
	ReadOnly bool
}
