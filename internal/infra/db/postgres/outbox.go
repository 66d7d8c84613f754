package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	appoutbox "staybook/internal/app/outbox"
	infraoutbox "staybook/internal/infra/outbox"
)

const (
	outboxStatusPending = "pending"
	outboxStatusClaimed = "claimed"
	outboxStatusSent    = "sent"
)

// outboxStore appends event records inside the surrounding transaction.
type outboxStore struct {
	db *gorm.DB
}

func (s outboxStore) Add(ctx context.Context, record appoutbox.EventRecord) error {
	row := outboxRow{
		ID:          record.ID,
		Name:        record.Name,
		Aggregate:   record.Aggregate,
		Payload:     record.Payload,
		Headers:     record.Headers,
		Status:      outboxStatusPending,
		NextRetryAt: record.OccurredAt,
		OccurredAt:  record.OccurredAt,
	}
	return s.db.WithContext(ctx).Create(&row).Error
}

// OutboxStore is the worker-facing side of the outbox table, operating
// on the base connection outside any unit of work.
type OutboxStore struct {
	DB *gorm.DB
	// ClaimTimeout bounds how long a claimed row stays off-limits. A
	// worker that dies between Claim and MarkSent/MarkFailed would
	// otherwise strand the event forever.
	ClaimTimeout time.Duration
}

const defaultClaimTimeout = 5 * time.Minute

func (s *OutboxStore) claimCutoff(now time.Time) time.Time {
	timeout := s.ClaimTimeout
	if timeout <= 0 {
		timeout = defaultClaimTimeout
	}
	return now.Add(-timeout)
}

// Claim picks one due pending event, marks it claimed and returns it.
// SKIP LOCKED keeps concurrent workers off the same row; claims older
// than the timeout are treated as abandoned and requeued.
func (s *OutboxStore) Claim(ctx context.Context, workerID string) (*infraoutbox.EventDocument, error) {
	now := time.Now()
	var row outboxRow
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("(status = ? AND next_retry_at <= ?) OR (status = ? AND claimed_at <= ?)",
				outboxStatusPending, now, outboxStatusClaimed, s.claimCutoff(now)).
			Order("occurred_at").
			First(&row).Error
		if err != nil {
			return err
		}
		return tx.Model(&outboxRow{}).Where("id = ?", row.ID).Updates(map[string]any{
			"status":     outboxStatusClaimed,
			"claimed_by": workerID,
			"claimed_at": now,
			"attempts":   gorm.Expr("attempts + 1"),
		}).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &infraoutbox.EventDocument{
		ID:         row.ID,
		Name:       row.Name,
		Aggregate:  row.Aggregate,
		Payload:    row.Payload,
		Headers:    row.Headers,
		Attempts:   row.Attempts + 1,
		OccurredAt: row.OccurredAt,
	}, nil
}

func (s *OutboxStore) MarkSent(ctx context.Context, id string) error {
	return s.DB.WithContext(ctx).Model(&outboxRow{}).Where("id = ?", id).
		Update("status", outboxStatusSent).Error
}

func (s *OutboxStore) MarkFailed(ctx context.Context, id string, retryAt time.Time, reason string) error {
	return s.DB.WithContext(ctx).Model(&outboxRow{}).Where("id = ?", id).Updates(map[string]any{
		"status":        outboxStatusPending,
		"next_retry_at": retryAt,
		"last_error":    reason,
	}).Error
}
