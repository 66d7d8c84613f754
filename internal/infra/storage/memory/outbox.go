package memory

import (
	"context"

	appoutbox "staybook/internal/app/outbox"
)

type outboxStore struct {
	store *Store
}

func (s outboxStore) Add(ctx context.Context, record appoutbox.EventRecord) error {
	s.store.outbox = append(s.store.outbox, record)
	return nil
}
