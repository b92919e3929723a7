package payment

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mkanatbekov/epay-gateway/internal/middleware"
	ordersvc "github.com/mkanatbekov/epay-gateway/internal/order"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

var builderErrs = []error{
	ordersvc.ErrNoOrderID,
	ordersvc.ErrNoConsumerEmail,
	ordersvc.ErrNoConsumerName,
	ordersvc.ErrNoLanguage,
	ordersvc.ErrNoCurrency,
	ordersvc.ErrNoItems,
	ordersvc.ErrEmptyProductName,
	ordersvc.ErrZeroCost,
	ordersvc.ErrZeroQuantity,
}

func isBuilderErr(err error) bool {
	for _, e := range builderErrs {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}

func writeEbill(w http.ResponseWriter, status int, e any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(e)
}

func (h *Handler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	merchantID := middleware.MerchantIDFromContext(r.Context())

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	bill, err := h.svc.CreatePayment(r.Context(), merchantID, req)
	switch {
	case err == nil:
		writeEbill(w, http.StatusCreated, bill)
	case isBuilderErr(err):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *Handler) GetPayment(w http.ResponseWriter, r *http.Request) {
	merchantID := middleware.MerchantIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	bill, err := h.svc.GetPayment(r.Context(), merchantID, id)
	switch {
	case err == nil:
		writeEbill(w, http.StatusOK, bill)
	case errors.Is(err, ordersvc.ErrOrderNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// Postback receives the bank's settlement callback. Invalid payloads are the
// caller's problem (400); broken invariants are ours (500).
func (h *Handler) Postback(w http.ResponseWriter, r *http.Request) {
	payload := r.FormValue("response")

	bill, err := h.svc.HandleResponse(r.Context(), payload)
	switch {
	case err == nil:
		writeEbill(w, http.StatusOK, bill)
	case errors.Is(err, ErrEmptyResponse),
		errors.Is(err, ErrInvalidResponse),
		errors.Is(err, ErrUnknownOrder):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrAlreadyHandled):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
