package testutil

import (
	"context"
	"errors"

	"github.com/punchamoorthee/formgate/internal/paystack"
)

// FakeProvider is a scripted service.PaymentProvider.
type FakeProvider struct {
	InitErr     error
	VerifyErr   error
	VerifyState map[string]*paystack.VerifyData // by reference

	InitCalls   []paystack.InitializeRequest
	VerifyCalls []string
}

func NewFakeProvider() *FakeProvider {
	return &FakeProvider{VerifyState: make(map[string]*paystack.VerifyData)}
}

func (p *FakeProvider) Initialize(_ context.Context, req paystack.InitializeRequest) (*paystack.InitializeData, error) {
	p.InitCalls = append(p.InitCalls, req)
	if p.InitErr != nil {
		return nil, p.InitErr
	}
	return &paystack.InitializeData{
		AuthorizationURL: "https://checkout.paystack.com/" + req.Reference,
		AccessCode:       "ac_" + req.Reference,
		Reference:        req.Reference,
	}, nil
}

func (p *FakeProvider) Verify(_ context.Context, reference string) (*paystack.VerifyData, error) {
	p.VerifyCalls = append(p.VerifyCalls, reference)
	if p.VerifyErr != nil {
		return nil, p.VerifyErr
	}
	if data, ok := p.VerifyState[reference]; ok {
		return data, nil
	}
	return nil, errors.New("transaction not found")
}
