package service

import (
	"context"
	"fmt"

	"github.com/punchamoorthee/formgate/internal/models"
)

// EligibilityEvaluator combines share counters and payment state into the
// admission decision. Pure read, no mutation.
type EligibilityEvaluator struct {
	store Store
}

func NewEligibilityEvaluator(s Store) *EligibilityEvaluator {
	return &EligibilityEvaluator{store: s}
}

// Evaluate returns whether phone may access the form (both share quotas
// met) and whether it has a verified payment.
func (e *EligibilityEvaluator) Evaluate(ctx context.Context, phone string) (*models.Eligibility, error) {
	if phone == "" {
		return nil, fmt.Errorf("%w: phone is required", ErrInvalidArgument)
	}

	shares, err := e.store.GetShares(ctx, phone)
	if err != nil {
		return nil, err
	}
	paid, err := e.store.HasSuccessfulPayment(ctx, phone)
	if err != nil {
		return nil, err
	}

	return &models.Eligibility{
		CanAccessForm: shares.Friends >= FriendShareCap && shares.Groups >= GroupShareCap,
		Paid:          paid,
	}, nil
}
