// Package service реализует бизнес-логику шлюза SAN: сессии, снимок аккаунта,
// кэш запросов и отправку платежей.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mmeshcher/san-gateway/internal/cache"
	"github.com/mmeshcher/san-gateway/internal/flow"
	"github.com/mmeshcher/san-gateway/internal/model"
	"github.com/mmeshcher/san-gateway/internal/repository"
	"github.com/mmeshcher/san-gateway/internal/sanapi"
	"github.com/mmeshcher/san-gateway/internal/state"
)

// ErrNoSession возвращается, если у сессии нет токена.
var ErrNoSession = errors.New("session not found")

const uploadContentType = "multipart/form-data"

// API описывает удалённый REST API, используемый сервисом.
type API interface {
	Login(ctx context.Context, creds model.Credentials) (*model.User, error)
	Register(ctx context.Context, reg model.Registration) (*model.User, error)
	Logout(ctx context.Context, token string) error
	Account(ctx context.Context, token string) (*model.Account, error)
	UpdateProfile(ctx context.Context, token string, upd model.ProfileUpdate) (*model.User, error)
	RequestRecoveryCode(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, rec model.Recovery) error
	UploadImage(ctx context.Context, token string, img model.Image) error

	AvailableSans(ctx context.Context, token string) ([]model.San, error)
	SanDetail(ctx context.Context, token, id string) (*model.SanDetail, error)
	JoinSan(ctx context.Context, token string, p model.SanPayment) error
	PaySan(ctx context.Context, token string, p model.SanPayment) error

	TransactionHistory(ctx context.Context, token string, page int, date *time.Time) (*model.TransactionHistory, error)
	Banks(ctx context.Context, token string) ([]model.Bank, error)

	PaymentMethods(ctx context.Context, token string) ([]model.PaymentMethod, error)
	PaymentMethod(ctx context.Context, token, id string) (*model.PaymentMethod, error)
	CreatePaymentMethod(ctx context.Context, token string, in model.PaymentMethodInput) (*model.PaymentMethod, error)
	UpdatePaymentMethod(ctx context.Context, token, id string, in model.PaymentMethodInput) (*model.PaymentMethod, error)
	DeletePaymentMethod(ctx context.Context, token, id string) error
}

// Repository описывает хранилище учётных данных сессий.
type Repository interface {
	Close() error
	Get(ctx context.Context, sessionID, key string) (string, error)
	Set(ctx context.Context, sessionID, key, value string) error
	Remove(ctx context.Context, sessionID, key string) error
	RemoveSession(ctx context.Context, sessionID string) error
	PurgeIdle(ctx context.Context, maxIdle time.Duration) ([]string, error)
}

// Session описывает результат входа или регистрации.
type Session struct {
	ID      string
	User    *model.User
	Account *model.Account
}

// Service содержит бизнес-логику шлюза SAN.
type Service struct {
	api    API
	repo   Repository
	cache  *cache.Cache
	store  *state.Store
	flow   *flow.Flow
	logger *zap.Logger
}

// NewService создаёт новый сервис.
func NewService(api API, repo Repository, c *cache.Cache, store *state.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		api:    api,
		repo:   repo,
		cache:  c,
		store:  store,
		logger: logger,
	}
	s.flow = flow.New(api, c, s, logger)
	return s
}

// Flow возвращает автомат отправки платежей.
func (s *Service) Flow() *flow.Flow {
	return s.flow
}

// Close закрывает ресурсы сервиса.
func (s *Service) Close() error {
	if s.repo != nil {
		return s.repo.Close()
	}
	return nil
}

func (s *Service) token(ctx context.Context, sessionID string) (string, error) {
	if sessionID == "" {
		return "", ErrNoSession
	}
	tok, err := s.repo.Get(ctx, sessionID, repository.KeyToken)
	if err != nil {
		if errors.Is(err, repository.ErrCredentialNotFound) {
			return "", ErrNoSession
		}
		return "", fmt.Errorf("read token: %w", err)
	}
	return tok, nil
}

// Login выполняет вход, сохраняет токен в новой сессии и загружает аккаунт.
func (s *Service) Login(ctx context.Context, creds model.Credentials) (*Session, error) {
	user, err := s.api.Login(ctx, creds)
	if err != nil {
		return nil, err
	}
	return s.open(ctx, user)
}

// Register регистрирует пользователя и открывает сессию.
// Если API не вернул токен, выполняется вход с теми же данными.
func (s *Service) Register(ctx context.Context, reg model.Registration) (*Session, error) {
	user, err := s.api.Register(ctx, reg)
	if err != nil {
		return nil, err
	}
	if user.Token == "" {
		return s.Login(ctx, model.Credentials{Email: reg.Email, Password: reg.Password})
	}
	return s.open(ctx, user)
}

func (s *Service) open(ctx context.Context, user *model.User) (*Session, error) {
	if user == nil || user.Token == "" {
		return nil, &sanapi.APIError{Kind: sanapi.KindDecode, Message: "missing token in response"}
	}

	id := uuid.NewString()
	if err := s.repo.Set(ctx, id, repository.KeyToken, user.Token); err != nil {
		return nil, fmt.Errorf("store token: %w", err)
	}

	sess := &Session{ID: id, User: user}
	account, err := s.RefreshAccount(ctx, id)
	if err != nil {
		// Вход состоялся, аккаунт подгрузится при следующем запросе.
		s.logger.Warn("account fetch after login failed", zap.String("session", id), zap.Error(err))
		return sess, nil
	}
	sess.Account = account
	return sess, nil
}

// Logout завершает сессию. Ошибка удалённого выхода не мешает очистке.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	tok, err := s.token(ctx, sessionID)
	if err != nil && !errors.Is(err, ErrNoSession) {
		return err
	}
	if tok != "" {
		if err := s.api.Logout(ctx, tok); err != nil {
			s.logger.Warn("remote logout failed", zap.String("session", sessionID), zap.Error(err))
		}
	}

	s.store.Clear(sessionID)
	s.cache.InvalidateSession(sessionID)
	if err := s.repo.RemoveSession(ctx, sessionID); err != nil {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

// Account возвращает снимок аккаунта из кэша или загружает его.
func (s *Service) Account(ctx context.Context, sessionID string) (*model.Account, error) {
	// Сессия без учётных данных не получает снимок даже из кэша.
	if _, err := s.token(ctx, sessionID); err != nil {
		return nil, err
	}
	if a, ok := cache.Lookup[*model.Account](s.cache, cache.SessionKey(cache.KeyAccount, sessionID)); ok {
		return a, nil
	}
	return s.RefreshAccount(ctx, sessionID)
}

// RefreshAccount загружает аккаунт в обход кэша и заменяет хранимый снимок целиком.
func (s *Service) RefreshAccount(ctx context.Context, sessionID string) (*model.Account, error) {
	tok, err := s.token(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	account, err := s.api.Account(ctx, tok)
	if err != nil {
		return nil, err
	}
	s.store.Replace(sessionID, account)
	s.cache.Set(cache.SessionKey(cache.KeyAccount, sessionID), account)
	return account, nil
}

// CurrentAccount возвращает хранимый снимок без обращения к API.
func (s *Service) CurrentAccount(sessionID string) (*model.Account, bool) {
	return s.store.Current(sessionID)
}

// UpdateProfile изменяет профиль пользователя.
func (s *Service) UpdateProfile(ctx context.Context, sessionID string, upd model.ProfileUpdate) (*model.User, error) {
	tok, err := s.token(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	user, err := s.api.UpdateProfile(ctx, tok, upd)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(cache.SessionKey(cache.KeyAccount, sessionID))
	return user, nil
}

// UploadImage загружает фото профиля. На время загрузки у сессии выставлен
// признак contentType.
func (s *Service) UploadImage(ctx context.Context, sessionID string, img model.Image) error {
	tok, err := s.token(ctx, sessionID)
	if err != nil {
		return err
	}

	if err := s.repo.Set(ctx, sessionID, repository.KeyContentType, uploadContentType); err != nil {
		return fmt.Errorf("set content type: %w", err)
	}
	defer func() {
		if err := s.repo.Remove(context.WithoutCancel(ctx), sessionID, repository.KeyContentType); err != nil {
			s.logger.Warn("remove content type failed", zap.String("session", sessionID), zap.Error(err))
		}
	}()

	if err := s.api.UploadImage(ctx, tok, img); err != nil {
		return err
	}
	s.cache.Invalidate(cache.SessionKey(cache.KeyAccount, sessionID))
	return nil
}

// RequestRecoveryCode отправляет код восстановления на почту.
func (s *Service) RequestRecoveryCode(ctx context.Context, email string) error {
	return s.api.RequestRecoveryCode(ctx, email)
}

// ResetPassword устанавливает новый пароль по коду.
func (s *Service) ResetPassword(ctx context.Context, rec model.Recovery) error {
	return s.api.ResetPassword(ctx, rec)
}

// AvailableSans возвращает SAN, открытые для вступления.
func (s *Service) AvailableSans(ctx context.Context, sessionID string) ([]model.San, error) {
	tok, err := s.token(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	key := cache.SessionKey(cache.KeyAvailableSans, sessionID)
	if sans, ok := cache.Lookup[[]model.San](s.cache, key); ok {
		return sans, nil
	}
	sans, err := s.api.AvailableSans(ctx, tok)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, sans)
	return sans, nil
}

// SanDetail возвращает состояние ротации SAN.
func (s *Service) SanDetail(ctx context.Context, sessionID, sanID string) (*model.SanDetail, error) {
	tok, err := s.token(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.api.SanDetail(ctx, tok, sanID)
}

// Transactions возвращает страницу истории платежей.
func (s *Service) Transactions(ctx context.Context, sessionID string, page int, date *time.Time) (*model.TransactionHistory, error) {
	tok, err := s.token(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}
	return s.api.TransactionHistory(ctx, tok, page, date)
}

// Banks возвращает справочник банков.
func (s *Service) Banks(ctx context.Context, sessionID string) ([]model.Bank, error) {
	tok, err := s.token(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if banks, ok := cache.Lookup[[]model.Bank](s.cache, cache.KeyBanks); ok {
		return banks, nil
	}
	banks, err := s.api.Banks(ctx, tok)
	if err != nil {
		return nil, err
	}
	s.cache.Set(cache.KeyBanks, banks)
	return banks, nil
}

// PaymentMethods возвращает способы оплаты пользователя.
func (s *Service) PaymentMethods(ctx context.Context, sessionID string) ([]model.PaymentMethod, error) {
	tok, err := s.token(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	key := cache.SessionKey(cache.KeyPaymentMethods, sessionID)
	if methods, ok := cache.Lookup[[]model.PaymentMethod](s.cache, key); ok {
		return methods, nil
	}
	methods, err := s.api.PaymentMethods(ctx, tok)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, methods)
	return methods, nil
}

// PaymentMethod возвращает способ оплаты по идентификатору.
func (s *Service) PaymentMethod(ctx context.Context, sessionID, id string) (*model.PaymentMethod, error) {
	tok, err := s.token(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.api.PaymentMethod(ctx, tok, id)
}

// CreatePaymentMethod добавляет способ оплаты.
func (s *Service) CreatePaymentMethod(ctx context.Context, sessionID string, in model.PaymentMethodInput) (*model.PaymentMethod, error) {
	tok, err := s.token(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	pm, err := s.api.CreatePaymentMethod(ctx, tok, in)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(cache.SessionKey(cache.KeyPaymentMethods, sessionID))
	return pm, nil
}

// UpdatePaymentMethod изменяет способ оплаты.
func (s *Service) UpdatePaymentMethod(ctx context.Context, sessionID, id string, in model.PaymentMethodInput) (*model.PaymentMethod, error) {
	tok, err := s.token(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	pm, err := s.api.UpdatePaymentMethod(ctx, tok, id, in)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(cache.SessionKey(cache.KeyPaymentMethods, sessionID))
	return pm, nil
}

// DeletePaymentMethod удаляет способ оплаты.
func (s *Service) DeletePaymentMethod(ctx context.Context, sessionID, id string) error {
	tok, err := s.token(ctx, sessionID)
	if err != nil {
		return err
	}
	if err := s.api.DeletePaymentMethod(ctx, tok, id); err != nil {
		return err
	}
	s.cache.Invalidate(cache.SessionKey(cache.KeyPaymentMethods, sessionID))
	return nil
}

// Submit отправляет заявку на вступление или платёж за ход.
func (s *Service) Submit(ctx context.Context, sessionID string, action flow.Action, p flow.Payload) flow.Result {
	tok, err := s.token(ctx, sessionID)
	if err != nil {
		return flow.Result{Action: action, Err: err}
	}
	return s.flow.Submit(ctx, sessionID, tok, action, p)
}

// StartSessionCleanup запускает фоновое удаление сессий, неактивных дольше maxIdle.
func (s *Service) StartSessionCleanup(ctx context.Context, interval, maxIdle time.Duration) {
	if s.repo == nil || interval <= 0 {
		return
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := s.PurgeIdleSessions(ctx, maxIdle); err != nil {
					s.logger.Warn("purge idle sessions failed", zap.Error(err))
				}
			}
		}
	}()
}

// PurgeIdleSessions удаляет учётные данные, снимки и кэш сессий, неактивных дольше maxIdle.
func (s *Service) PurgeIdleSessions(ctx context.Context, maxIdle time.Duration) ([]string, error) {
	ids, err := s.repo.PurgeIdle(ctx, maxIdle)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		s.store.Clear(id)
		s.cache.InvalidateSession(id)
	}
	if len(ids) > 0 {
		s.logger.Info("idle sessions purged", zap.Int("count", len(ids)))
	}
	return ids, nil
}
