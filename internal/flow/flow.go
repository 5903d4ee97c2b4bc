// Package flow реализует отправку платежа или заявки на вступление в SAN
// с последующим обновлением снимка аккаунта.
//
// Состояния одной отправки:
//
//	IDLE → SUBMITTING → SUCCESS → REFRESHING_ACCOUNT → IDLE
//	                  ↘ FAILURE → IDLE
package flow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mmeshcher/san-gateway/internal/cache"
	"github.com/mmeshcher/san-gateway/internal/metrics"
	"github.com/mmeshcher/san-gateway/internal/model"
	"github.com/mmeshcher/san-gateway/internal/sanapi"
)

// ErrBusy возвращается, если у сессии уже идёт отправка.
var ErrBusy = errors.New("submission already in progress")

// Action описывает вид отправки.
type Action string

const (
	ActionJoin    Action = "join"
	ActionPayment Action = "payment"
)

// State описывает состояние конечного автомата отправки.
type State string

const (
	StateIdle              State = "IDLE"
	StateSubmitting        State = "SUBMITTING"
	StateSuccess           State = "SUCCESS"
	StateRefreshingAccount State = "REFRESHING_ACCOUNT"
	StateFailure           State = "FAILURE"
)

// Level описывает тип уведомления для пользователя.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notification представляет кратковременное уведомление. Title и Message содержат ключи локализации.
type Notification struct {
	Level   Level       `json:"level"`
	Title   string      `json:"title"`
	Message string      `json:"message"`
	Kind    sanapi.Kind `json:"kind,omitempty"`
}

// Payload содержит данные платежа из формы.
type Payload struct {
	SanID              string
	BankID             string
	Amount             float64
	OperationReference string
	Date               time.Time
}

func (p Payload) toModel() model.SanPayment {
	return model.SanPayment{
		San:                p.SanID,
		Bank:               p.BankID,
		Amount:             p.Amount,
		OperationReference: p.OperationReference,
		Date:               p.Date.Format(time.DateOnly),
	}
}

// Result описывает итог отправки.
type Result struct {
	Action        Action         `json:"action"`
	Succeeded     bool           `json:"succeeded"`
	Refreshed     bool           `json:"refreshed"`
	Account       *model.Account `json:"-"`
	Notifications []Notification `json:"notifications"`
	Err           error          `json:"-"`
}

// Submitter отправляет мутации в удалённый API.
type Submitter interface {
	JoinSan(ctx context.Context, token string, p model.SanPayment) error
	PaySan(ctx context.Context, token string, p model.SanPayment) error
}

// Invalidator сбрасывает закэшированные запросы.
type Invalidator interface {
	Invalidate(key string)
}

// Refresher перезапрашивает снимок аккаунта и заменяет хранимый объект.
type Refresher interface {
	RefreshAccount(ctx context.Context, sessionID string) (*model.Account, error)
}

// Observer получает каждый переход состояния.
type Observer func(sessionID string, from, to State)

// Flow управляет отправками для всех сессий; у каждой сессии свой автомат.
type Flow struct {
	submitter Submitter
	cache     Invalidator
	refresher Refresher
	logger    *zap.Logger
	observer  Observer

	mu     sync.Mutex
	states map[string]State
}

// New создаёт Flow.
func New(submitter Submitter, cache Invalidator, refresher Refresher, logger *zap.Logger) *Flow {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Flow{
		submitter: submitter,
		cache:     cache,
		refresher: refresher,
		logger:    logger,
		states:    make(map[string]State),
	}
}

// SetObserver устанавливает наблюдателя переходов.
func (f *Flow) SetObserver(o Observer) {
	f.mu.Lock()
	f.observer = o
	f.mu.Unlock()
}

// State возвращает текущее состояние сессии.
func (f *Flow) State(sessionID string) State {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.states[sessionID]; ok {
		return s
	}
	return StateIdle
}

func (f *Flow) begin(sessionID string) bool {
	f.mu.Lock()
	cur, ok := f.states[sessionID]
	if ok && cur != StateIdle {
		f.mu.Unlock()
		return false
	}
	f.states[sessionID] = StateSubmitting
	o := f.observer
	f.mu.Unlock()

	if o != nil {
		o(sessionID, StateIdle, StateSubmitting)
	}
	return true
}

func (f *Flow) transition(sessionID string, to State) {
	f.mu.Lock()
	from, ok := f.states[sessionID]
	if !ok {
		from = StateIdle
	}
	if to == StateIdle {
		delete(f.states, sessionID)
	} else {
		f.states[sessionID] = to
	}
	o := f.observer
	f.mu.Unlock()

	f.logger.Debug("submission transition",
		zap.String("session", sessionID),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
	)
	if o != nil {
		o(sessionID, from, to)
	}
}

// Submit выполняет отправку. Повторных попыток при ошибке нет.
func (f *Flow) Submit(ctx context.Context, sessionID, token string, action Action, p Payload) Result {
	res := Result{Action: action}

	if action != ActionJoin && action != ActionPayment {
		res.Err = fmt.Errorf("unknown action %q", action)
		return res
	}

	if !f.begin(sessionID) {
		res.Err = ErrBusy
		return res
	}

	var err error
	switch action {
	case ActionJoin:
		err = f.submitter.JoinSan(ctx, token, p.toModel())
	case ActionPayment:
		err = f.submitter.PaySan(ctx, token, p.toModel())
	}

	if err != nil {
		f.transition(sessionID, StateFailure)
		f.logger.Warn("submission failed",
			zap.String("session", sessionID),
			zap.String("action", string(action)),
			zap.String("san", p.SanID),
			zap.Error(err),
		)
		metrics.RecordSubmission(string(action), "failure")

		res.Err = err
		res.Notifications = append(res.Notifications, Notification{
			Level:   LevelError,
			Title:   "Payment.paymentErrorTitle",
			Message: "errors." + string(sanapi.KindOf(err)),
			Kind:    sanapi.KindOf(err),
		})
		f.transition(sessionID, StateIdle)
		return res
	}

	f.transition(sessionID, StateSuccess)
	metrics.RecordSubmission(string(action), "success")
	res.Succeeded = true
	res.Notifications = append(res.Notifications, Notification{
		Level:   LevelSuccess,
		Title:   "Payment.paymentSuccessTitle",
		Message: "Payment.paymentSuccessMessage",
	})

	accountKey := cache.SessionKey(cache.KeyAccount, sessionID)

	if action == ActionPayment {
		// Снимок не перезапрашивается: его обновит следующая загрузка экрана.
		f.cache.Invalidate(accountKey)
		f.transition(sessionID, StateIdle)
		return res
	}

	f.cache.Invalidate(cache.SessionKey(cache.KeyAvailableSans, sessionID))
	f.cache.Invalidate(accountKey)

	f.transition(sessionID, StateRefreshingAccount)
	account, err := f.refresher.RefreshAccount(ctx, sessionID)
	if err != nil {
		f.logger.Warn("account refresh after join failed",
			zap.String("session", sessionID),
			zap.Error(err),
		)
		res.Err = fmt.Errorf("refresh account: %w", err)
		res.Notifications = append(res.Notifications, Notification{
			Level:   LevelError,
			Title:   "Payment.accountRefreshErrorTitle",
			Message: "errors." + string(sanapi.KindOf(err)),
			Kind:    sanapi.KindOf(err),
		})
	} else {
		res.Refreshed = true
		res.Account = account
	}

	f.transition(sessionID, StateIdle)
	return res
}
