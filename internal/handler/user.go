package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mmeshcher/san-gateway/internal/model"
	"github.com/mmeshcher/san-gateway/internal/service"
	"github.com/mmeshcher/san-gateway/internal/validation"
)

type sessionResponse struct {
	User    model.User       `json:"user"`
	Account *accountResponse `json:"account,omitempty"`
}

type noticeResponse struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

func (h *Handler) startSession(w http.ResponseWriter, r *http.Request, sess *service.Session) {
	h.authMiddleware.SetSessionCookie(w, sess.ID)

	resp := sessionResponse{}
	if sess.User != nil {
		resp.User = *sess.User
		// Токен API остаётся на сервере.
		resp.User.Token = ""
	}
	if sess.Account != nil {
		view := h.accountView(r, sess.Account)
		resp.Account = &view
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// Register обрабатывает регистрацию нового пользователя.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var form validation.RegisterForm
	if err := decodeJSON(r, &form); err != nil {
		h.badRequest(w, r)
		return
	}
	if err := validation.Validate(form); err != nil {
		h.writeError(w, r, "register", err)
		return
	}

	sess, err := h.service.Register(r.Context(), model.Registration{
		Name:     form.Name,
		LastName: form.LastName,
		Email:    form.Email,
		Password: form.Password,
	})
	if err != nil {
		h.writeError(w, r, "register", err)
		return
	}

	h.startSession(w, r, sess)
}

// Login выполняет вход и устанавливает cookie сессии.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var form validation.LoginForm
	if err := decodeJSON(r, &form); err != nil {
		h.badRequest(w, r)
		return
	}
	if err := validation.Validate(form); err != nil {
		h.writeError(w, r, "login", err)
		return
	}

	sess, err := h.service.Login(r.Context(), model.Credentials{
		Email:    form.Email,
		Password: form.Password,
	})
	if err != nil {
		h.writeError(w, r, "login", err)
		return
	}

	h.startSession(w, r, sess)
}

// Logout завершает сессию.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(r)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	if err := h.service.Logout(r.Context(), id); err != nil {
		h.writeError(w, r, "logout", err)
		return
	}

	h.authMiddleware.ClearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// GetAccount возвращает снимок аккаунта с производным состоянием главного экрана.
func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(r)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	account, err := h.service.Account(r.Context(), id)
	if err != nil {
		h.writeError(w, r, "get account", err)
		return
	}

	h.writeJSON(w, http.StatusOK, h.accountView(r, account))
}

// UpdateProfile изменяет имя, фамилию и почту пользователя.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(r)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var form validation.ProfileForm
	if err := decodeJSON(r, &form); err != nil {
		h.badRequest(w, r)
		return
	}
	if err := validation.Validate(form); err != nil {
		h.writeError(w, r, "update profile", err)
		return
	}

	user, err := h.service.UpdateProfile(r.Context(), id, model.ProfileUpdate{
		Name:     form.Name,
		LastName: form.LastName,
		Email:    form.Email,
	})
	if err != nil {
		h.writeError(w, r, "update profile", err)
		return
	}

	resp := model.User{}
	if user != nil {
		resp = *user
		resp.Token = ""
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// UploadPhoto принимает фото профиля в поле формы "photo".
func (h *Handler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(r)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxPhotoSize)
	if err := r.ParseMultipartForm(maxPhotoSize); err != nil {
		h.badRequest(w, r)
		return
	}

	file, header, err := r.FormFile("photo")
	if err != nil {
		h.badRequest(w, r)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil || len(data) == 0 {
		h.badRequest(w, r)
		return
	}

	imageType := r.FormValue("type")
	if imageType == "" {
		imageType = "profile"
	}
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	err = h.service.UploadImage(r.Context(), id, model.Image{
		Data:        data,
		Filename:    header.Filename,
		ContentType: contentType,
		ImageType:   imageType,
	})
	if err != nil {
		h.writeError(w, r, "upload photo", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RequestRecovery отправляет код восстановления на почту из пути запроса.
func (h *Handler) RequestRecovery(w http.ResponseWriter, r *http.Request) {
	form := validation.RecoveryRequestForm{Email: chi.URLParam(r, "email")}
	if err := validation.Validate(form); err != nil {
		h.writeError(w, r, "request recovery", err)
		return
	}

	if err := h.service.RequestRecoveryCode(r.Context(), form.Email); err != nil {
		h.writeError(w, r, "request recovery", err)
		return
	}

	h.writeJSON(w, http.StatusOK, noticeResponse{
		Title:   h.t(r, "EmailStepScreen.codeSentTitle", nil),
		Message: h.t(r, "EmailStepScreen.codeSentMessage", nil),
	})
}

// ResetPassword устанавливает новый пароль по коду из письма.
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var form validation.RecoveryResetForm
	if err := decodeJSON(r, &form); err != nil {
		h.badRequest(w, r)
		return
	}
	if err := validation.Validate(form); err != nil {
		h.writeError(w, r, "reset password", err)
		return
	}

	code, err := strconv.Atoi(form.Code)
	if err != nil {
		h.badRequest(w, r)
		return
	}

	err = h.service.ResetPassword(r.Context(), model.Recovery{
		Code:    code,
		Email:   form.Email,
		NewPass: form.NewPassword,
	})
	if err != nil {
		h.writeError(w, r, "reset password", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
