package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/punchamoorthee/formgate/internal/models"
	"github.com/punchamoorthee/formgate/internal/service"
	"go.uber.org/zap"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "formgate_http_requests_total",
		Help: "Total HTTP requests processed, labeled by status code",
	}, []string{"method", "endpoint", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "formgate_http_request_duration_seconds",
		Help:    "Latency distribution of HTTP requests",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"method", "endpoint"})

	paymentOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "formgate_payment_outcomes_total",
		Help: "Payment reconciliation outcomes by source",
	}, []string{"source", "outcome"})
)

type Handler struct {
	shares       *service.ShareLedger
	payments     *service.PaymentLedger
	eligibility  *service.EligibilityEvaluator
	applications *service.ApplicationService
	validate     *validator.Validate
	log          *zap.Logger
}

func NewHandler(shares *service.ShareLedger, payments *service.PaymentLedger,
	eligibility *service.EligibilityEvaluator, applications *service.ApplicationService,
	log *zap.Logger) *Handler {
	return &Handler{
		shares:       shares,
		payments:     payments,
		eligibility:  eligibility,
		applications: applications,
		validate:     validator.New(),
		log:          log,
	}
}

func (h *Handler) HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"}, r.Method, "/health")
}

// RecordShareHandler handles POST /api/share.
func (h *Handler) RecordShareHandler(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(httpRequestDuration.WithLabelValues("POST", "/api/share"))
	defer timer.ObserveDuration()

	var req models.ShareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Malformed JSON body", "POST", "/api/share")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.respondError(w, http.StatusBadRequest, "phone and type (friend|group) are required", "POST", "/api/share")
		return
	}

	rec, err := h.shares.RecordShare(r.Context(), req.Phone, req.Type)
	if err != nil {
		h.respondServiceError(w, err, "POST", "/api/share")
		return
	}
	h.respondJSON(w, http.StatusOK, models.ShareResponse{Friends: rec.Friends, Groups: rec.Groups}, "POST", "/api/share")
}

// ShareStatusHandler handles GET /api/share-status. An unknown phone reads
// as the zero record.
func (h *Handler) ShareStatusHandler(w http.ResponseWriter, r *http.Request) {
	phone := r.URL.Query().Get("phone")
	rec, err := h.shares.GetShares(r.Context(), phone)
	if err != nil {
		h.respondServiceError(w, err, "GET", "/api/share-status")
		return
	}
	h.respondJSON(w, http.StatusOK, models.ShareResponse{Friends: rec.Friends, Groups: rec.Groups}, "GET", "/api/share-status")
}

// EligibilityHandler handles GET /api/eligibility.
func (h *Handler) EligibilityHandler(w http.ResponseWriter, r *http.Request) {
	phone := r.URL.Query().Get("phone")
	elig, err := h.eligibility.Evaluate(r.Context(), phone)
	if err != nil {
		h.respondServiceError(w, err, "GET", "/api/eligibility")
		return
	}
	h.respondJSON(w, http.StatusOK, elig, "GET", "/api/eligibility")
}

// SubmitApplicationHandler handles POST /api/application. The body is the
// form itself plus the phone field; eligibility is re-checked at
// submission time.
func (h *Handler) SubmitApplicationHandler(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(httpRequestDuration.WithLabelValues("POST", "/api/application"))
	defer timer.ObserveDuration()

	var form map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		h.respondError(w, http.StatusBadRequest, "Malformed JSON body", "POST", "/api/application")
		return
	}
	phone, _ := form["phone"].(string)
	if phone == "" {
		h.respondError(w, http.StatusBadRequest, "phone is required", "POST", "/api/application")
		return
	}
	delete(form, "phone")

	if err := h.applications.Submit(r.Context(), phone, form); err != nil {
		h.respondServiceError(w, err, "POST", "/api/application")
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]bool{"success": true}, "POST", "/api/application")
}

// InitPaymentHandler handles POST /api/init-payment.
func (h *Handler) InitPaymentHandler(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(httpRequestDuration.WithLabelValues("POST", "/api/init-payment"))
	defer timer.ObserveDuration()

	var req models.InitPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Malformed JSON body", "POST", "/api/init-payment")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.respondError(w, http.StatusBadRequest, "phone, positive amount and email are required", "POST", "/api/init-payment")
		return
	}

	resp, err := h.payments.Initiate(r.Context(), req.Phone, req.Amount, req.Email, req.IsUpgrade)
	if err != nil {
		h.respondServiceError(w, err, "POST", "/api/init-payment")
		return
	}
	h.respondJSON(w, http.StatusOK, resp, "POST", "/api/init-payment")
}

// VerifyPaymentHandler handles GET and POST /api/verify-payment. The GET
// variant takes ?reference=, the POST variant a JSON body.
func (h *Handler) VerifyPaymentHandler(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(httpRequestDuration.WithLabelValues(r.Method, "/api/verify-payment"))
	defer timer.ObserveDuration()

	var reference string
	if r.Method == http.MethodGet {
		reference = r.URL.Query().Get("reference")
	} else {
		var req models.VerifyPaymentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.respondError(w, http.StatusBadRequest, "Malformed JSON body", r.Method, "/api/verify-payment")
			return
		}
		reference = req.Reference
	}
	if reference == "" {
		h.respondError(w, http.StatusBadRequest, "reference is required", r.Method, "/api/verify-payment")
		return
	}

	resp, err := h.payments.Verify(r.Context(), reference)
	if err != nil {
		paymentOutcomes.WithLabelValues("verify", "error").Inc()
		h.respondServiceError(w, err, r.Method, "/api/verify-payment")
		return
	}
	if resp.Success {
		paymentOutcomes.WithLabelValues("verify", "success").Inc()
	} else {
		paymentOutcomes.WithLabelValues("verify", "unresolved").Inc()
	}
	h.respondJSON(w, http.StatusOK, resp, r.Method, "/api/verify-payment")
}

// WebhookHandler handles POST /api/paystack-webhook. It acknowledges the
// provider unconditionally; internal failures are logged and counted, not
// surfaced, so a structurally broken event cannot cause a retry storm.
func (h *Handler) WebhookHandler(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(httpRequestDuration.WithLabelValues("POST", "/api/paystack-webhook"))
	defer timer.ObserveDuration()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.log.Error("webhook body read failed", zap.Error(err))
		paymentOutcomes.WithLabelValues("webhook", "error").Inc()
		h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"}, "POST", "/api/paystack-webhook")
		return
	}

	if err := h.payments.HandleWebhook(r.Context(), body); err != nil {
		h.log.Error("webhook processing failed", zap.Error(err))
		paymentOutcomes.WithLabelValues("webhook", "error").Inc()
	} else {
		paymentOutcomes.WithLabelValues("webhook", "success").Inc()
	}
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"}, "POST", "/api/paystack-webhook")
}

func (h *Handler) respondServiceError(w http.ResponseWriter, err error, method, endpoint string) {
	switch {
	case errors.Is(err, service.ErrInvalidArgument):
		h.respondError(w, http.StatusBadRequest, err.Error(), method, endpoint)
	case errors.Is(err, service.ErrForbidden):
		h.respondError(w, http.StatusForbidden, err.Error(), method, endpoint)
	case errors.Is(err, service.ErrNotFound):
		h.respondError(w, http.StatusNotFound, err.Error(), method, endpoint)
	case errors.Is(err, service.ErrUpstream):
		h.log.Error("payment provider failure", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "payment provider unavailable", method, endpoint)
	default:
		h.log.Error("internal error", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "Internal Server Error", method, endpoint)
	}
}

func (h *Handler) respondJSON(w http.ResponseWriter, code int, payload interface{}, method, endpoint string) {
	httpRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(code)).Inc()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

func (h *Handler) respondError(w http.ResponseWriter, code int, message, method, endpoint string) {
	h.respondJSON(w, code, map[string]string{"error": message}, method, endpoint)
}
