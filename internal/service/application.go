package service

import (
	"context"
	"fmt"

	"github.com/punchamoorthee/formgate/internal/models"
)

// ApplicationService gates form submissions behind the eligibility check.
type ApplicationService struct {
	store       Store
	eligibility *EligibilityEvaluator
}

func NewApplicationService(s Store, e *EligibilityEvaluator) *ApplicationService {
	return &ApplicationService{store: s, eligibility: e}
}

// Submit stores the form for phone. Eligibility is re-evaluated here
// rather than trusting a client-cached decision, closing the gap between
// a status poll and the actual submission. Resubmission upserts the form
// and preserves a previously-set upgraded flag.
func (a *ApplicationService) Submit(ctx context.Context, phone string, form map[string]interface{}) error {
	if phone == "" {
		return fmt.Errorf("%w: phone is required", ErrInvalidArgument)
	}

	elig, err := a.eligibility.Evaluate(ctx, phone)
	if err != nil {
		return err
	}
	if !elig.CanAccessForm {
		return fmt.Errorf("%w: share quota not reached for %s", ErrForbidden, phone)
	}

	return a.store.UpsertApplication(ctx, &models.Application{
		Phone: phone,
		Form:  form,
	})
}

// Get returns the stored application for phone, or ErrNotFound.
func (a *ApplicationService) Get(ctx context.Context, phone string) (*models.Application, error) {
	if phone == "" {
		return nil, fmt.Errorf("%w: phone is required", ErrInvalidArgument)
	}
	app, err := a.store.GetApplication(ctx, phone)
	if err != nil {
		return nil, err
	}
	if app == nil {
		return nil, fmt.Errorf("%w: no application for %s", ErrNotFound, phone)
	}
	return app, nil
}
