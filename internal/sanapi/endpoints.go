package sanapi

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"time"

	"github.com/mmeshcher/san-gateway/internal/model"
)

// Login выполняет вход и возвращает пользователя с токеном.
func (c *Client) Login(ctx context.Context, creds model.Credentials) (*model.User, error) {
	var u model.User
	err := c.do(ctx, request{op: "login", method: http.MethodPost, path: "/user/login", body: creds}, &u)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Register регистрирует пользователя и возвращает его вместе с токеном.
func (c *Client) Register(ctx context.Context, reg model.Registration) (*model.User, error) {
	var u model.User
	err := c.do(ctx, request{op: "register", method: http.MethodPost, path: "/user/register", body: reg}, &u)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Logout завершает сессию на стороне сервера.
func (c *Client) Logout(ctx context.Context, token string) error {
	return c.do(ctx, request{op: "logout", method: http.MethodPost, path: "/user/logout", token: token}, nil)
}

// Account запрашивает снимок аккаунта пользователя.
func (c *Client) Account(ctx context.Context, token string) (*model.Account, error) {
	var a model.Account
	err := c.do(ctx, request{op: "account", method: http.MethodGet, path: "/user/account", token: token}, &a)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// UpdateProfile изменяет поля профиля пользователя.
func (c *Client) UpdateProfile(ctx context.Context, token string, upd model.ProfileUpdate) (*model.User, error) {
	var u model.User
	err := c.do(ctx, request{op: "update_profile", method: http.MethodPatch, path: "/user", token: token, body: upd}, &u)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// RequestRecoveryCode запрашивает отправку кода восстановления на почту.
func (c *Client) RequestRecoveryCode(ctx context.Context, email string) error {
	return c.do(ctx, request{
		op:     "recovery_request",
		method: http.MethodGet,
		path:   "/user/recovery/" + url.PathEscape(email),
	}, nil)
}

// ResetPassword устанавливает новый пароль по коду восстановления.
func (c *Client) ResetPassword(ctx context.Context, rec model.Recovery) error {
	return c.do(ctx, request{op: "recovery_reset", method: http.MethodPost, path: "/user/recovery", body: rec}, nil)
}

// UploadImage загружает изображение профиля как multipart/form-data.
func (c *Client) UploadImage(ctx context.Context, token string, img model.Image) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	contentType := img.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	filename := img.Filename
	if filename == "" {
		filename = "image"
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, filename))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return &APIError{Kind: KindDecode, Err: fmt.Errorf("create image part: %w", err)}
	}
	if _, err := part.Write(img.Data); err != nil {
		return &APIError{Kind: KindDecode, Err: fmt.Errorf("write image part: %w", err)}
	}
	if err := mw.WriteField("imageType", img.ImageType); err != nil {
		return &APIError{Kind: KindDecode, Err: fmt.Errorf("write image type: %w", err)}
	}
	if err := mw.Close(); err != nil {
		return &APIError{Kind: KindDecode, Err: fmt.Errorf("close multipart: %w", err)}
	}

	return c.do(ctx, request{
		op:          "upload_image",
		method:      http.MethodPost,
		path:        "/company/upload",
		token:       token,
		raw:         buf.Bytes(),
		contentType: mw.FormDataContentType(),
	}, nil)
}

// AvailableSans возвращает SAN, открытые для вступления.
func (c *Client) AvailableSans(ctx context.Context, token string) ([]model.San, error) {
	var res []model.San
	err := c.do(ctx, request{op: "available_sans", method: http.MethodGet, path: "/san/available", token: token}, &res)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// SanDetail возвращает состояние ротации SAN.
func (c *Client) SanDetail(ctx context.Context, token, id string) (*model.SanDetail, error) {
	var d model.SanDetail
	err := c.do(ctx, request{op: "san_detail", method: http.MethodGet, path: "/san/" + url.PathEscape(id), token: token}, &d)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// JoinSan отправляет заявку на вступление вместе с первым платежом.
func (c *Client) JoinSan(ctx context.Context, token string, p model.SanPayment) error {
	return c.do(ctx, request{op: "join_san", method: http.MethodPost, path: "/san/join", token: token, body: p}, nil)
}

// PaySan регистрирует платёж за ход.
func (c *Client) PaySan(ctx context.Context, token string, p model.SanPayment) error {
	return c.do(ctx, request{op: "pay_san", method: http.MethodPost, path: "/san/payment", token: token, body: p}, nil)
}

// TransactionHistory возвращает страницу истории транзакций, опционально за дату.
func (c *Client) TransactionHistory(ctx context.Context, token string, page int, date *time.Time) (*model.TransactionHistory, error) {
	if page < 1 {
		page = 1
	}
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	if date != nil {
		q.Set("date", date.Format(time.DateOnly))
	}

	var h model.TransactionHistory
	err := c.do(ctx, request{
		op:     "transaction_history",
		method: http.MethodGet,
		path:   "/transaction/history?" + q.Encode(),
		token:  token,
	}, &h)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// Banks возвращает справочник банков.
func (c *Client) Banks(ctx context.Context, token string) ([]model.Bank, error) {
	var res []model.Bank
	err := c.do(ctx, request{op: "banks", method: http.MethodGet, path: "/bank", token: token}, &res)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// PaymentMethods возвращает способы оплаты пользователя.
func (c *Client) PaymentMethods(ctx context.Context, token string) ([]model.PaymentMethod, error) {
	var res []model.PaymentMethod
	err := c.do(ctx, request{op: "payment_methods", method: http.MethodGet, path: "/paymentMethod", token: token}, &res)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// PaymentMethod возвращает способ оплаты по идентификатору.
func (c *Client) PaymentMethod(ctx context.Context, token, id string) (*model.PaymentMethod, error) {
	var pm model.PaymentMethod
	err := c.do(ctx, request{op: "payment_method", method: http.MethodGet, path: "/paymentMethod/" + url.PathEscape(id), token: token}, &pm)
	if err != nil {
		return nil, err
	}
	return &pm, nil
}

// CreatePaymentMethod создаёт способ оплаты.
func (c *Client) CreatePaymentMethod(ctx context.Context, token string, in model.PaymentMethodInput) (*model.PaymentMethod, error) {
	var pm model.PaymentMethod
	err := c.do(ctx, request{op: "create_payment_method", method: http.MethodPost, path: "/paymentMethod", token: token, body: in}, &pm)
	if err != nil {
		return nil, err
	}
	return &pm, nil
}

// UpdatePaymentMethod частично изменяет способ оплаты.
func (c *Client) UpdatePaymentMethod(ctx context.Context, token, id string, in model.PaymentMethodInput) (*model.PaymentMethod, error) {
	var pm model.PaymentMethod
	err := c.do(ctx, request{
		op:     "update_payment_method",
		method: http.MethodPatch,
		path:   "/paymentMethod/" + url.PathEscape(id),
		token:  token,
		body:   in,
	}, &pm)
	if err != nil {
		return nil, err
	}
	return &pm, nil
}

// DeletePaymentMethod удаляет способ оплаты.
func (c *Client) DeletePaymentMethod(ctx context.Context, token, id string) error {
	return c.do(ctx, request{
		op:     "delete_payment_method",
		method: http.MethodDelete,
		path:   "/paymentMethod/" + url.PathEscape(id),
		token:  token,
	}, nil)
}
