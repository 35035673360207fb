// Package testutil provides in-memory fakes for the persistence and
// payment-provider collaborators.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/punchamoorthee/formgate/internal/models"
)

// MemStore is an in-memory service.Store with the same conditional-update
// semantics as the Postgres implementation.
type MemStore struct {
	mu           sync.Mutex
	Shares       map[string]*models.ShareRecord
	Payments     map[string]*models.PaymentRecord // by reference
	Applications map[string]*models.Application   // by phone
}

func NewMemStore() *MemStore {
	return &MemStore{
		Shares:       make(map[string]*models.ShareRecord),
		Payments:     make(map[string]*models.PaymentRecord),
		Applications: make(map[string]*models.Application),
	}
}

func (m *MemStore) IncrementShare(_ context.Context, phone, kind string, limit int) (*models.ShareRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.Shares[phone]
	if !ok {
		rec = &models.ShareRecord{Phone: phone}
		m.Shares[phone] = rec
	}
	switch kind {
	case models.ShareKindFriend:
		if rec.Friends < limit {
			rec.Friends++
		}
	case models.ShareKindGroup:
		if rec.Groups < limit {
			rec.Groups++
		}
	default:
		return nil, fmt.Errorf("unknown share kind %q", kind)
	}
	out := *rec
	return &out, nil
}

func (m *MemStore) GetShares(_ context.Context, phone string) (*models.ShareRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec, ok := m.Shares[phone]; ok {
		out := *rec
		return &out, nil
	}
	return &models.ShareRecord{Phone: phone}, nil
}

func (m *MemStore) CreatePayment(_ context.Context, rec *models.PaymentRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.Payments[rec.Reference]; ok {
		existing.Upgrade = rec.Upgrade
		existing.Amount = rec.Amount
		return nil
	}
	cp := *rec
	m.Payments[rec.Reference] = &cp
	return nil
}

func (m *MemStore) GetPayment(_ context.Context, reference string) (*models.PaymentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec, ok := m.Payments[reference]; ok {
		out := *rec
		return &out, nil
	}
	return nil, nil
}

func (m *MemStore) HasSuccessfulPayment(_ context.Context, phone string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range m.Payments {
		if rec.Phone == phone && rec.Status == models.PaymentSuccess {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemStore) MarkPaymentSuccess(_ context.Context, phone, reference string, upgrade bool, amount int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	rec, ok := m.Payments[reference]
	if !ok {
		m.Payments[reference] = &models.PaymentRecord{
			Phone:      phone,
			Reference:  reference,
			Status:     models.PaymentSuccess,
			Upgrade:    upgrade,
			Amount:     amount,
			VerifiedAt: &now,
		}
		return nil
	}
	if rec.Status == models.PaymentFailed {
		return nil
	}
	rec.Status = models.PaymentSuccess
	rec.Upgrade = upgrade
	if rec.VerifiedAt == nil {
		rec.VerifiedAt = &now
	}
	return nil
}

func (m *MemStore) MarkPaymentFailed(_ context.Context, reference string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec, ok := m.Payments[reference]; ok && rec.Status == models.PaymentPending {
		rec.Status = models.PaymentFailed
	}
	return nil
}

func (m *MemStore) UpsertApplication(_ context.Context, app *models.Application) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.Applications[app.Phone]; ok {
		existing.Form = app.Form
		existing.UpdatedAt = time.Now()
		return nil
	}
	cp := *app
	cp.UpdatedAt = time.Now()
	m.Applications[app.Phone] = &cp
	return nil
}

func (m *MemStore) GetApplication(_ context.Context, phone string) (*models.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if app, ok := m.Applications[phone]; ok {
		out := *app
		return &out, nil
	}
	return nil, nil
}

func (m *MemStore) SetApplicationUpgraded(_ context.Context, phone string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if app, ok := m.Applications[phone]; ok {
		app.Upgraded = true
		app.UpdatedAt = time.Now()
	}
	return nil
}
