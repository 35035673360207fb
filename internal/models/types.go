package models

import "time"

// Share kinds accepted by POST /api/share.
const (
	ShareKindFriend = "friend"
	ShareKindGroup  = "group"
)

// Payment statuses. A record starts pending and moves to exactly one
// terminal status.
const (
	PaymentPending = "pending"
	PaymentSuccess = "success"
	PaymentFailed  = "failed"
)

// ShareRecord tracks capped share counters for one phone number.
type ShareRecord struct {
	Phone   string `json:"phone"`
	Friends int    `json:"friends"`
	Groups  int    `json:"groups"`
}

// PaymentRecord is the stored state of one payment attempt, keyed by
// (phone, reference). Amount is in major currency units as received from
// the client; the provider is paid in minor units (amount * 100).
type PaymentRecord struct {
	Phone      string     `json:"phone"`
	Reference  string     `json:"reference"`
	Status     string     `json:"status"`
	Upgrade    bool       `json:"upgrade"`
	Amount     int64      `json:"amount"`
	VerifiedAt *time.Time `json:"verified_at,omitempty"`
}

// Application is the submitted form for one phone number. Form holds the
// client-supplied fields verbatim; Upgraded is a one-way flag set when an
// upgrade payment for the phone is verified.
type Application struct {
	Phone     string                 `json:"phone"`
	Form      map[string]interface{} `json:"form"`
	Upgraded  bool                   `json:"upgraded"`
	UpdatedAt time.Time              `json:"updated_at"`
}

// Eligibility is the combined admission decision for a phone.
type Eligibility struct {
	CanAccessForm bool `json:"canAccessForm"`
	Paid          bool `json:"paid"`
}

// ShareRequest is the payload for POST /api/share.
type ShareRequest struct {
	Phone string `json:"phone" validate:"required"`
	Type  string `json:"type" validate:"required,oneof=friend group"`
}

// ShareResponse reports the post-update counters.
type ShareResponse struct {
	Friends int `json:"friends"`
	Groups  int `json:"groups"`
}

// InitPaymentRequest is the payload for POST /api/init-payment.
type InitPaymentRequest struct {
	Phone     string `json:"phone" validate:"required"`
	Amount    int64  `json:"amount" validate:"required,gt=0"`
	Email     string `json:"email" validate:"required,email"`
	IsUpgrade bool   `json:"isUpgrade"`
}

// InitPaymentResponse mirrors the provider's checkout handle plus our
// correlation reference.
type InitPaymentResponse struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

// VerifyPaymentRequest is the payload for POST /api/verify-payment.
type VerifyPaymentRequest struct {
	Phone     string `json:"phone"`
	Reference string `json:"reference" validate:"required"`
}

// VerifyPaymentResponse reports the reconciled outcome for a reference.
type VerifyPaymentResponse struct {
	Success   bool  `json:"success"`
	Amount    int64 `json:"amount,omitempty"`
	IsUpgrade bool  `json:"isUpgrade,omitempty"`
}
