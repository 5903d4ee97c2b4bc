package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mmeshcher/san-gateway/internal/flow"
	"github.com/mmeshcher/san-gateway/internal/validation"
)

type localizedNotification struct {
	Level   flow.Level `json:"level"`
	Title   string     `json:"title"`
	Message string     `json:"message"`
}

type submitResponse struct {
	Action        flow.Action             `json:"action"`
	Succeeded     bool                    `json:"succeeded"`
	Refreshed     bool                    `json:"refreshed"`
	Account       *accountResponse        `json:"account,omitempty"`
	Notifications []localizedNotification `json:"notifications"`
}

// GetAvailableSans возвращает SAN, открытые для вступления.
func (h *Handler) GetAvailableSans(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(r)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	sans, err := h.service.AvailableSans(r.Context(), id)
	if err != nil {
		h.writeError(w, r, "get available sans", err)
		return
	}

	h.writeJSON(w, http.StatusOK, sans)
}

// GetSanDetail возвращает состояние ротации SAN с отметками участников.
func (h *Handler) GetSanDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(r)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	detail, err := h.service.SanDetail(r.Context(), id, chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, "get san detail", err)
		return
	}

	h.writeJSON(w, http.StatusOK, h.sanView(r, detail))
}

// JoinSan отправляет платёж за вступление в SAN.
func (h *Handler) JoinSan(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, flow.ActionJoin)
}

// PaySan отправляет платёж за очередной ход.
func (h *Handler) PaySan(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, flow.ActionPayment)
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request, action flow.Action) {
	id, ok := sessionID(r)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var form validation.PaymentForm
	if err := decodeJSON(r, &form); err != nil {
		h.badRequest(w, r)
		return
	}
	if err := validation.Validate(form); err != nil {
		h.writeError(w, r, "submit "+string(action), err)
		return
	}

	date, err := time.Parse(time.DateOnly, form.Date)
	if err != nil {
		h.badRequest(w, r)
		return
	}

	res := h.service.Submit(r.Context(), id, action, flow.Payload{
		SanID:              form.San,
		BankID:             form.Bank,
		Amount:             form.Amount,
		OperationReference: form.OperationReference,
		Date:               date,
	})

	// Ошибка отправки без уведомлений: занятость, нет сессии или неизвестное действие.
	if !res.Succeeded && len(res.Notifications) == 0 {
		h.writeError(w, r, "submit "+string(action), res.Err)
		return
	}

	resp := submitResponse{
		Action:        res.Action,
		Succeeded:     res.Succeeded,
		Refreshed:     res.Refreshed,
		Notifications: make([]localizedNotification, 0, len(res.Notifications)),
	}
	for _, n := range res.Notifications {
		resp.Notifications = append(resp.Notifications, h.localize(r, n, res.Err))
	}
	if res.Account != nil {
		view := h.accountView(r, res.Account)
		resp.Account = &view
	}

	status := http.StatusOK
	if !res.Succeeded {
		status = statusForKind(res.Notifications[0].Kind)
	}
	h.writeJSON(w, status, resp)
}

// localize переводит уведомление. Для ошибки валидации или конфликта
// показывается текст сервера.
func (h *Handler) localize(r *http.Request, n flow.Notification, err error) localizedNotification {
	ln := localizedNotification{
		Level:   n.Level,
		Title:   h.t(r, n.Title, nil),
		Message: h.t(r, n.Message, nil),
	}
	if n.Level == flow.LevelError && err != nil {
		if msg := serverMessage(err); msg != "" {
			ln.Message = msg
		}
	}
	return ln
}
