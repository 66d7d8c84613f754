package settings

import (
	"context"
	"errors"
)

var ErrSettingsNotFound = errors.New("settings: not found")

// SiteSettings is the singleton holding external integration knobs.
type SiteSettings struct {
	AirbnbICalURL     string
	NotificationEmail string
}

// Repository reads the singleton settings record.
type Repository interface {
	Get(ctx context.Context) (*SiteSettings, error)
}
