package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mmeshcher/san-gateway/internal/model"
	"github.com/mmeshcher/san-gateway/internal/validation"
)

type transactionView struct {
	model.Transaction
	TimingLabel string `json:"timingLabel,omitempty"`
}

type transactionsResponse struct {
	Transactions []transactionView `json:"transactions"`
	Total        int               `json:"total"`
	Page         int               `json:"page"`
	TotalPages   int               `json:"totalPages"`
}

// GetTransactions возвращает страницу истории платежей. Параметры: page, date (ГГГГ-ММ-ДД).
func (h *Handler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(r)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	q := r.URL.Query()

	page := 1
	if v := q.Get("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil || p < 1 {
			h.badRequest(w, r)
			return
		}
		page = p
	}

	var date *time.Time
	if v := q.Get("date"); v != "" {
		d, err := time.Parse(time.DateOnly, v)
		if err != nil {
			h.badRequest(w, r)
			return
		}
		date = &d
	}

	history, err := h.service.Transactions(r.Context(), id, page, date)
	if err != nil {
		h.writeError(w, r, "get transactions", err)
		return
	}

	resp := transactionsResponse{
		Transactions: make([]transactionView, 0, len(history.Transactions)),
		Total:        history.Total,
		Page:         history.Page,
		TotalPages:   history.TotalPages,
	}
	for _, tx := range history.Transactions {
		v := transactionView{Transaction: tx}
		if tx.PaymentStatus != "" {
			v.TimingLabel = h.t(r, "Payment."+string(tx.PaymentStatus), nil)
		}
		resp.Transactions = append(resp.Transactions, v)
	}

	h.writeJSON(w, http.StatusOK, resp)
}

// GetBanks возвращает справочник банков.
func (h *Handler) GetBanks(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(r)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	banks, err := h.service.Banks(r.Context(), id)
	if err != nil {
		h.writeError(w, r, "get banks", err)
		return
	}

	h.writeJSON(w, http.StatusOK, banks)
}

// GetPaymentMethods возвращает способы оплаты пользователя.
func (h *Handler) GetPaymentMethods(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(r)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	methods, err := h.service.PaymentMethods(r.Context(), id)
	if err != nil {
		h.writeError(w, r, "get payment methods", err)
		return
	}

	if len(methods) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	h.writeJSON(w, http.StatusOK, methods)
}

// GetPaymentMethod возвращает способ оплаты по идентификатору.
func (h *Handler) GetPaymentMethod(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(r)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	pm, err := h.service.PaymentMethod(r.Context(), id, chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, "get payment method", err)
		return
	}

	h.writeJSON(w, http.StatusOK, pm)
}

// CreatePaymentMethod добавляет способ оплаты.
func (h *Handler) CreatePaymentMethod(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(r)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var form validation.PaymentMethodForm
	if err := decodeJSON(r, &form); err != nil {
		h.badRequest(w, r)
		return
	}
	if err := validation.Validate(form); err != nil {
		h.writeError(w, r, "create payment method", err)
		return
	}

	pm, err := h.service.CreatePaymentMethod(r.Context(), id, form.Input())
	if err != nil {
		h.writeError(w, r, "create payment method", err)
		return
	}

	h.writeJSON(w, http.StatusCreated, pm)
}

// UpdatePaymentMethod изменяет способ оплаты.
func (h *Handler) UpdatePaymentMethod(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(r)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var form validation.PaymentMethodUpdateForm
	if err := decodeJSON(r, &form); err != nil {
		h.badRequest(w, r)
		return
	}
	if err := validation.Validate(form); err != nil {
		h.writeError(w, r, "update payment method", err)
		return
	}

	pm, err := h.service.UpdatePaymentMethod(r.Context(), id, chi.URLParam(r, "id"), form.Input())
	if err != nil {
		h.writeError(w, r, "update payment method", err)
		return
	}

	h.writeJSON(w, http.StatusOK, pm)
}

// DeletePaymentMethod удаляет способ оплаты.
func (h *Handler) DeletePaymentMethod(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(r)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	if err := h.service.DeletePaymentMethod(r.Context(), id, chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, "delete payment method", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
