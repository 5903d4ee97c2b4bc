package handler

import (
	"net/http"

	"github.com/mmeshcher/san-gateway/internal/model"
	"github.com/mmeshcher/san-gateway/internal/turn"
)

type nextPaymentLabels struct {
	Action string `json:"action"`
	Turn   string `json:"turn"`
	Date   string `json:"date"`
}

type accountLabels struct {
	Due          string              `json:"due"`
	NextPayments []nextPaymentLabels `json:"nextPayments"`
}

type accountResponse struct {
	Account *model.Account   `json:"account"`
	View    turn.AccountView `json:"view"`
	Labels  accountLabels    `json:"labels"`
}

type memberLabels struct {
	Payment   string `json:"payment"`
	Completed string `json:"completed,omitempty"`
	Current   string `json:"current,omitempty"`
	Turn      string `json:"turn"`
}

type sanLabels struct {
	Status  string         `json:"status"`
	Members []memberLabels `json:"members"`
}

type sanDetailResponse struct {
	San    *model.SanDetail `json:"san"`
	View   turn.SanView     `json:"view"`
	Labels sanLabels        `json:"labels"`
}

func (h *Handler) accountView(r *http.Request, a *model.Account) accountResponse {
	view := turn.DescribeAccount(*a)

	labels := accountLabels{
		NextPayments: make([]nextPaymentLabels, 0, len(view.NextPayments)),
	}

	switch {
	case len(a.NextPayments) == 0:
		labels.Due = h.t(r, "HomeScreen.noPaymentDate", nil)
	case view.Due.Kind == turn.DueUpcoming:
		labels.Due = h.t(r, "HomeScreen.paymentUpcoming", map[string]any{"days": view.Due.Days})
	case view.Due.Kind == turn.DueToday:
		labels.Due = h.t(r, "HomeScreen.paymentToday", nil)
	default:
		labels.Due = h.t(r, "HomeScreen.paymentOverdue", map[string]any{"days": view.Due.Days})
	}

	for i, np := range view.NextPayments {
		l := nextPaymentLabels{
			Action: h.t(r, "HomeScreen.PaymentButton", nil),
			Turn:   h.t(r, "SANDetails.turn", map[string]any{"turn": np.TurnLabel}),
			Date:   h.t(r, "HomeScreen.noPaymentDate", nil),
		}
		if np.Action == turn.ActionEarlyPayment {
			l.Action = h.t(r, "HomeScreen.earlyPaymentButton", nil)
		}
		if d := a.NextPayments[i].NextPaymentDate; d != nil {
			l.Date = *d
		}
		labels.NextPayments = append(labels.NextPayments, l)
	}

	return accountResponse{Account: a, View: view, Labels: labels}
}

func (h *Handler) sanView(r *http.Request, d *model.SanDetail) sanDetailResponse {
	view := turn.DescribeSan(*d)

	labels := sanLabels{
		Members: make([]memberLabels, 0, len(view.Members)),
	}

	switch view.Status.Kind {
	case turn.StatusAlreadyReceived:
		labels.Status = h.t(r, "SANDetails.alreadyReceived", nil)
	case turn.StatusCurrentTurn:
		labels.Status = h.t(r, "SANDetails.currentTurn", nil)
	default:
		labels.Status = h.t(r, "SANDetails.turnsRemaining", map[string]any{"remaining": view.Status.Remaining})
	}

	for _, m := range view.Members {
		l := memberLabels{
			Payment: h.t(r, "SANDetails.pending", nil),
			Turn:    h.t(r, "SANDetails.turn", map[string]any{"turn": m.Position}),
		}
		if m.Badges.Payment == turn.BadgePaid {
			l.Payment = h.t(r, "SANDetails.paid", nil)
		}
		if m.Badges.Completed {
			l.Completed = h.t(r, "SANDetails.completed", nil)
		}
		if m.Badges.Current {
			l.Current = h.t(r, "SANDetails.current", nil)
		}
		labels.Members = append(labels.Members, l)
	}

	return sanDetailResponse{San: d, View: view, Labels: labels}
}
