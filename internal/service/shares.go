package service

import (
	"context"
	"fmt"

	"github.com/punchamoorthee/formgate/internal/models"
)

// Share quotas. A phone becomes form-eligible once both are met.
const (
	FriendShareCap = 10
	GroupShareCap  = 2
)

// ShareLedger tracks per-phone share counters.
type ShareLedger struct {
	store Store
}

func NewShareLedger(s Store) *ShareLedger {
	return &ShareLedger{store: s}
}

// RecordShare advances the counter for kind by one, clamped at its cap,
// and returns the post-update record. Each call below the cap moves state
// by exactly one unit; at the cap further calls are no-ops.
func (l *ShareLedger) RecordShare(ctx context.Context, phone, kind string) (*models.ShareRecord, error) {
	if phone == "" {
		return nil, fmt.Errorf("%w: phone is required", ErrInvalidArgument)
	}

	var limit int
	switch kind {
	case models.ShareKindFriend:
		limit = FriendShareCap
	case models.ShareKindGroup:
		limit = GroupShareCap
	default:
		return nil, fmt.Errorf("%w: share type must be %q or %q", ErrInvalidArgument,
			models.ShareKindFriend, models.ShareKindGroup)
	}

	return l.store.IncrementShare(ctx, phone, kind, limit)
}

// GetShares returns the counters for phone. A phone that never shared
// reads as the zero record, not as missing.
func (l *ShareLedger) GetShares(ctx context.Context, phone string) (*models.ShareRecord, error) {
	return l.store.GetShares(ctx, phone)
}
