package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/punchamoorthee/formgate/internal/models"
	"github.com/punchamoorthee/formgate/internal/paystack"
	"go.uber.org/zap"
)

// referencePrefix namespaces our payment references so they are
// recognizable in the provider dashboard.
const referencePrefix = "fg_"

// PaymentLedger drives the payment lifecycle: initiate against the
// provider, then reconcile the outcome from whichever of the synchronous
// verify call or the asynchronous webhook arrives first.
type PaymentLedger struct {
	store                Store
	provider             PaymentProvider
	log                  *zap.Logger
	callbackURL          string
	upgradeThresholdKobo int64
}

func NewPaymentLedger(s Store, p PaymentProvider, log *zap.Logger, callbackURL string, upgradeThresholdKobo int64) *PaymentLedger {
	return &PaymentLedger{
		store:                s,
		provider:             p,
		log:                  log,
		callbackURL:          callbackURL,
		upgradeThresholdKobo: upgradeThresholdKobo,
	}
}

// Initiate opens a hosted checkout session for phone and records the
// pending payment. Amount is in major currency units; the provider is
// quoted minor units. A provider failure leaves no record behind, so the
// caller simply re-initiates.
func (l *PaymentLedger) Initiate(ctx context.Context, phone string, amount int64, email string, isUpgrade bool) (*models.InitPaymentResponse, error) {
	if phone == "" || email == "" {
		return nil, fmt.Errorf("%w: phone and email are required", ErrInvalidArgument)
	}
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidArgument)
	}

	reference := referencePrefix + uuid.NewString()
	init, err := l.provider.Initialize(ctx, paystack.InitializeRequest{
		Email:       email,
		Amount:      amount * 100,
		Reference:   reference,
		CallbackURL: l.callbackURL,
		Metadata: paystack.Metadata{
			Phone:     phone,
			IsUpgrade: isUpgrade,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: initialize failed: %v", ErrUpstream, err)
	}

	rec := &models.PaymentRecord{
		Phone:     phone,
		Reference: reference,
		Status:    models.PaymentPending,
		Upgrade:   isUpgrade,
		Amount:    amount,
	}
	if err := l.store.CreatePayment(ctx, rec); err != nil {
		return nil, err
	}

	return &models.InitPaymentResponse{
		AuthorizationURL: init.AuthorizationURL,
		AccessCode:       init.AccessCode,
		Reference:        reference,
	}, nil
}

// Verify reconciles the payment for reference against the provider.
// Provider "success" moves the record to its success terminal state and
// propagates the upgrade flag to the application. The provider's terminal
// "failed" moves a pending record to failed. Any other provider status
// leaves the record pending so a later retry or the webhook can resolve
// it.
func (l *PaymentLedger) Verify(ctx context.Context, reference string) (*models.VerifyPaymentResponse, error) {
	rec, err := l.store.GetPayment(ctx, reference)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: unknown reference %s", ErrNotFound, reference)
	}

	// Terminal records are settled; repeat verifies replay the outcome
	// without another provider round-trip.
	switch rec.Status {
	case models.PaymentSuccess:
		if err := l.flagUpgrade(ctx, rec.Phone, rec.Upgrade); err != nil {
			return nil, err
		}
		return &models.VerifyPaymentResponse{Success: true, Amount: rec.Amount, IsUpgrade: rec.Upgrade}, nil
	case models.PaymentFailed:
		return &models.VerifyPaymentResponse{Success: false}, nil
	}

	data, err := l.provider.Verify(ctx, reference)
	if err != nil {
		return nil, fmt.Errorf("%w: verify failed: %v", ErrUpstream, err)
	}

	switch data.Status {
	case "success":
		if err := l.store.MarkPaymentSuccess(ctx, rec.Phone, reference, rec.Upgrade, rec.Amount); err != nil {
			return nil, err
		}
		if err := l.flagUpgrade(ctx, rec.Phone, rec.Upgrade); err != nil {
			return nil, err
		}
		return &models.VerifyPaymentResponse{Success: true, Amount: rec.Amount, IsUpgrade: rec.Upgrade}, nil
	case "failed":
		if err := l.store.MarkPaymentFailed(ctx, reference); err != nil {
			return nil, err
		}
		return &models.VerifyPaymentResponse{Success: false}, nil
	default:
		// abandoned / ongoing / pending: leave the record as-is.
		return &models.VerifyPaymentResponse{Success: false}, nil
	}
}

// HandleWebhook processes a provider-pushed event. Only charge.success
// mutates state. Internal failures are returned for logging; the HTTP
// layer still acknowledges the provider either way.
func (l *PaymentLedger) HandleWebhook(ctx context.Context, payload []byte) error {
	var event paystack.Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	if event.Event != "charge.success" {
		l.log.Debug("ignoring webhook event", zap.String("event", event.Event))
		return nil
	}

	phone := event.Data.Metadata.Phone
	if phone == "" {
		phone = event.Data.Customer.Phone
	}
	if phone == "" {
		// Structurally unresolvable; failing would only trigger provider
		// retries for an event that can never succeed.
		l.log.Warn("webhook event has no resolvable phone",
			zap.String("reference", event.Data.Reference))
		return nil
	}

	upgrade := event.Data.Metadata.IsUpgrade || event.Data.Amount >= l.upgradeThresholdKobo
	if err := l.store.MarkPaymentSuccess(ctx, phone, event.Data.Reference, upgrade, event.Data.Amount/100); err != nil {
		return err
	}
	return l.flagUpgrade(ctx, phone, upgrade)
}

// flagUpgrade marks the phone's application as upgraded when the verified
// payment was an upgrade and an application already exists.
func (l *PaymentLedger) flagUpgrade(ctx context.Context, phone string, upgrade bool) error {
	if !upgrade {
		return nil
	}
	app, err := l.store.GetApplication(ctx, phone)
	if err != nil {
		return err
	}
	if app == nil {
		return nil
	}
	return l.store.SetApplicationUpgraded(ctx, phone)
}
