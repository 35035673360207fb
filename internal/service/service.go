// Package service holds the eligibility state machine: capped share
// counters, the payment lifecycle, and the form-submission gate that
// combines them.
package service

import (
	"context"
	"errors"

	"github.com/punchamoorthee/formgate/internal/models"
	"github.com/punchamoorthee/formgate/internal/paystack"
)

var (
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrForbidden        = errors.New("eligibility not met")
	ErrNotFound         = errors.New("record not found")
	ErrUpstream         = errors.New("payment provider error")
	ErrMalformedPayload = errors.New("malformed webhook payload")
)

// Store is the persistence contract the services operate against. Every
// mutation is a single atomic upsert so concurrent callers converge
// without application-level locking.
type Store interface {
	IncrementShare(ctx context.Context, phone, kind string, limit int) (*models.ShareRecord, error)
	GetShares(ctx context.Context, phone string) (*models.ShareRecord, error)

	CreatePayment(ctx context.Context, rec *models.PaymentRecord) error
	GetPayment(ctx context.Context, reference string) (*models.PaymentRecord, error)
	HasSuccessfulPayment(ctx context.Context, phone string) (bool, error)
	MarkPaymentSuccess(ctx context.Context, phone, reference string, upgrade bool, amount int64) error
	MarkPaymentFailed(ctx context.Context, reference string) error

	UpsertApplication(ctx context.Context, app *models.Application) error
	GetApplication(ctx context.Context, phone string) (*models.Application, error)
	SetApplicationUpgraded(ctx context.Context, phone string) error
}

// PaymentProvider is the slice of the Paystack API the payment ledger
// needs.
type PaymentProvider interface {
	Initialize(ctx context.Context, req paystack.InitializeRequest) (*paystack.InitializeData, error)
	Verify(ctx context.Context, reference string) (*paystack.VerifyData, error)
}
