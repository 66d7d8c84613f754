package postgres

import (
	"context"
	"database/sql"
	"errors"

	"gorm.io/gorm"

	appoutbox "staybook/internal/app/outbox"
	"staybook/internal/app/uow"
	domainavailability "staybook/internal/domain/availability"
	domainbooking "staybook/internal/domain/booking"
	domainproperty "staybook/internal/domain/property"
	domainsettings "staybook/internal/domain/settings"
)

// ErrFactoryMisconfigured indicates a missing database handle.
var ErrFactoryMisconfigured = errors.New("postgres: unit of work factory misconfigured")

// Factory opens database transactions as unit-of-work boundaries.
type Factory struct {
	DB         *gorm.DB
	Properties *PropertyCache
}

func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.DB == nil {
		return nil, ErrFactoryMisconfigured
	}
	var txOpts *sql.TxOptions
	if opts.ReadOnly {
		txOpts = &sql.TxOptions{ReadOnly: true}
	}
	tx := f.DB.WithContext(ctx).Begin(txOpts)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &Unit{tx: tx, properties: f.Properties}, nil
}

// Unit binds the repositories to one database transaction.
type Unit struct {
	tx         *gorm.DB
	properties *PropertyCache
	done       bool
}

func (u *Unit) Property() domainproperty.Repository {
	return propertyRepository{db: u.tx, cache: u.properties}
}

func (u *Unit) Bookings() domainbooking.Repository {
	return bookingRepository{db: u.tx}
}

func (u *Unit) Blocks() domainavailability.Repository {
	return blockedDateRepository{db: u.tx}
}

func (u *Unit) Settings() domainsettings.Repository {
	return settingsRepository{db: u.tx}
}

func (u *Unit) Outbox() appoutbox.Outbox {
	return outboxStore{db: u.tx}
}

func (u *Unit) Commit(ctx context.Context) error {
	if u.done {
		return nil
	}
	u.done = true
	return u.tx.Commit().Error
}

func (u *Unit) Rollback(ctx context.Context) error {
	if u.done {
		return nil
	}
	u.done = true
	return u.tx.Rollback().Error
}
