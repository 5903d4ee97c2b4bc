// Package handler содержит HTTP-обработчики API шлюза SAN для мобильного клиента.
package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/mmeshcher/san-gateway/internal/flow"
	"github.com/mmeshcher/san-gateway/internal/locale"
	"github.com/mmeshcher/san-gateway/internal/middleware"
	"github.com/mmeshcher/san-gateway/internal/model"
	"github.com/mmeshcher/san-gateway/internal/sanapi"
	"github.com/mmeshcher/san-gateway/internal/service"
	"github.com/mmeshcher/san-gateway/internal/validation"
)

const maxPhotoSize = 5 << 20

// Service определяет контракт бизнес-логики, используемой HTTP-обработчиками.
type Service interface {
	Login(ctx context.Context, creds model.Credentials) (*service.Session, error)
	Register(ctx context.Context, reg model.Registration) (*service.Session, error)
	Logout(ctx context.Context, sessionID string) error
	Account(ctx context.Context, sessionID string) (*model.Account, error)
	UpdateProfile(ctx context.Context, sessionID string, upd model.ProfileUpdate) (*model.User, error)
	UploadImage(ctx context.Context, sessionID string, img model.Image) error
	RequestRecoveryCode(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, rec model.Recovery) error

	AvailableSans(ctx context.Context, sessionID string) ([]model.San, error)
	SanDetail(ctx context.Context, sessionID, sanID string) (*model.SanDetail, error)
	Submit(ctx context.Context, sessionID string, action flow.Action, p flow.Payload) flow.Result

	Transactions(ctx context.Context, sessionID string, page int, date *time.Time) (*model.TransactionHistory, error)
	Banks(ctx context.Context, sessionID string) ([]model.Bank, error)

	PaymentMethods(ctx context.Context, sessionID string) ([]model.PaymentMethod, error)
	PaymentMethod(ctx context.Context, sessionID, id string) (*model.PaymentMethod, error)
	CreatePaymentMethod(ctx context.Context, sessionID string, in model.PaymentMethodInput) (*model.PaymentMethod, error)
	UpdatePaymentMethod(ctx context.Context, sessionID, id string, in model.PaymentMethodInput) (*model.PaymentMethod, error)
	DeletePaymentMethod(ctx context.Context, sessionID, id string) error
}

// Handler реализует HTTP-обработчики API шлюза SAN.
type Handler struct {
	service        Service
	logger         *zap.Logger
	authMiddleware *middleware.AuthMiddleware
	limiter        *middleware.RateLimiter
	bundles        *locale.Bundles
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
func NewHandler(s Service, logger *zap.Logger, auth *middleware.AuthMiddleware, bundles *locale.Bundles) *Handler {
	return &Handler{
		service:        s,
		logger:         logger,
		authMiddleware: auth,
		limiter:        middleware.NewRateLimiter(1, 5, logger),
		bundles:        bundles,
	}
}

type errorResponse struct {
	Error   string            `json:"error"`
	Title   string            `json:"title"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func language(r *http.Request) string {
	return locale.Resolve(r.Header.Get("Accept-Language"))
}

func (h *Handler) t(r *http.Request, key string, params map[string]any) string {
	return h.bundles.T(language(r), key, params)
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encode response error", zap.Error(err))
	}
}

func (h *Handler) badRequest(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusBadRequest, errorResponse{
		Error:   string(sanapi.KindValidation),
		Title:   h.t(r, "errors.validation", nil),
		Message: h.t(r, "errors.validation", nil),
	})
}

func statusForKind(k sanapi.Kind) int {
	switch k {
	case sanapi.KindNetwork, sanapi.KindServer, sanapi.KindDecode:
		return http.StatusBadGateway
	case sanapi.KindUnauthorized:
		return http.StatusUnauthorized
	case sanapi.KindValidation:
		return http.StatusBadRequest
	case sanapi.KindNotFound:
		return http.StatusNotFound
	case sanapi.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError отвечает локализованной ошибкой. op попадает только в журнал.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for field, key := range verrs {
			fields[field] = h.t(r, key, nil)
		}
		h.writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:   string(sanapi.KindValidation),
			Title:   h.t(r, "errors.validation", nil),
			Message: h.t(r, "errors.validation", nil),
			Fields:  fields,
		})
		return
	}

	if errors.Is(err, service.ErrNoSession) {
		h.authMiddleware.ClearSessionCookie(w)
		h.writeJSON(w, http.StatusUnauthorized, errorResponse{
			Error:   "session",
			Title:   h.t(r, "errors.session", nil),
			Message: h.t(r, "errors.session", nil),
		})
		return
	}

	if errors.Is(err, flow.ErrBusy) {
		h.writeJSON(w, http.StatusConflict, errorResponse{
			Error:   "busy",
			Title:   h.t(r, "errors.busy", nil),
			Message: h.t(r, "errors.busy", nil),
		})
		return
	}

	var apiErr *sanapi.APIError
	if errors.As(err, &apiErr) {
		status := statusForKind(apiErr.Kind)
		title := h.t(r, "errors."+string(apiErr.Kind), nil)

		msg := serverMessage(apiErr)
		if msg == "" {
			msg = title
		}

		if status >= http.StatusInternalServerError || status == http.StatusBadGateway {
			h.logger.Error(op+" error", zap.Error(err))
		} else {
			h.logger.Info(op+" rejected", zap.Error(err))
		}

		h.writeJSON(w, status, errorResponse{
			Error:   string(apiErr.Kind),
			Title:   title,
			Message: msg,
			Fields:  apiErr.Fields,
		})
		return
	}

	h.logger.Error(op+" error", zap.Error(err))
	h.writeJSON(w, http.StatusInternalServerError, errorResponse{
		Error:   string(sanapi.KindUnknown),
		Title:   h.t(r, "errors.unknown", nil),
		Message: h.t(r, "errors.unknown", nil),
	})
}

// serverMessage возвращает текст ошибки от сервера. Для сетевых ошибок
// и ошибок разбора ответа возвращается пустая строка.
func serverMessage(err error) string {
	var apiErr *sanapi.APIError
	if !errors.As(err, &apiErr) {
		return ""
	}
	if apiErr.Kind == sanapi.KindNetwork || apiErr.Kind == sanapi.KindDecode {
		return ""
	}
	if apiErr.Message == "" && len(apiErr.Fields) == 0 {
		return ""
	}
	return sanapi.Flatten(apiErr)
}

func sessionID(r *http.Request) (string, bool) {
	return middleware.GetSessionIDFromContext(r.Context())
}
