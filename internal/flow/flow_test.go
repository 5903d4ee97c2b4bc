package flow

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmeshcher/san-gateway/internal/cache"
	"github.com/mmeshcher/san-gateway/internal/model"
	"github.com/mmeshcher/san-gateway/internal/sanapi"
	"github.com/mmeshcher/san-gateway/internal/state"
)

type stubSubmitter struct {
	joinErr error
	payErr  error

	joined []model.SanPayment
	paid   []model.SanPayment

	block chan struct{}
}

func (s *stubSubmitter) JoinSan(ctx context.Context, token string, p model.SanPayment) error {
	if s.block != nil {
		<-s.block
	}
	s.joined = append(s.joined, p)
	return s.joinErr
}

func (s *stubSubmitter) PaySan(ctx context.Context, token string, p model.SanPayment) error {
	s.paid = append(s.paid, p)
	return s.payErr
}

type recordingCache struct {
	mu          sync.Mutex
	invalidated []string
}

func (c *recordingCache) Invalidate(key string) {
	c.mu.Lock()
	c.invalidated = append(c.invalidated, key)
	c.mu.Unlock()
}

// storeRefresher ведёт себя как сервис: перезапрашивает аккаунт и заменяет его целиком.
type storeRefresher struct {
	store *state.Store
	next  *model.Account
	err   error
	calls int
}

func (r *storeRefresher) RefreshAccount(ctx context.Context, sessionID string) (*model.Account, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	r.store.Replace(sessionID, r.next)
	return r.next, nil
}

func samplePayload() Payload {
	return Payload{
		SanID:              "san-1",
		BankID:             "bank-1",
		Amount:             100,
		OperationReference: "123456",
		Date:               time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}
}

func recordTransitions(f *Flow) *[]State {
	var mu sync.Mutex
	seq := []State{}
	f.SetObserver(func(_ string, _, to State) {
		mu.Lock()
		seq = append(seq, to)
		mu.Unlock()
	})
	return &seq
}

func TestSubmit_JoinReplacesAccountOnce(t *testing.T) {
	store := state.NewStore()
	old := &model.Account{User: model.UserAccount{Points: 10}}
	store.Replace("s1", old)

	fresh := &model.Account{User: model.UserAccount{Points: 30}, Sans: []model.SanMin{{ID: "san-1"}}}
	refresher := &storeRefresher{store: store, next: fresh}
	sub := &stubSubmitter{}
	c := &recordingCache{}

	f := New(sub, c, refresher, nil)
	seq := recordTransitions(f)

	res := f.Submit(context.Background(), "s1", "tkn", ActionJoin, samplePayload())

	require.NoError(t, res.Err)
	assert.True(t, res.Succeeded)
	assert.True(t, res.Refreshed)
	assert.Same(t, fresh, res.Account)

	assert.Equal(t, 1, refresher.calls)
	assert.Equal(t, uint64(2), store.Version("s1"), "exactly one replacement after join")

	held, ok := store.Current("s1")
	require.True(t, ok)
	assert.Same(t, fresh, held)
	assert.NotSame(t, old, held)
	assert.Equal(t, 10, old.User.Points, "previous snapshot must stay untouched")

	assert.ElementsMatch(t, []string{cache.SessionKey(cache.KeyAvailableSans, "s1"), cache.SessionKey(cache.KeyAccount, "s1")}, c.invalidated)
	assert.Equal(t, []State{StateSubmitting, StateSuccess, StateRefreshingAccount, StateIdle}, *seq)

	require.Len(t, sub.joined, 1)
	assert.Equal(t, "2024-05-01", sub.joined[0].Date)
	assert.Equal(t, "san-1", sub.joined[0].San)
	assert.Equal(t, StateIdle, f.State("s1"))
}

func TestSubmit_PaymentDoesNotRefresh(t *testing.T) {
	store := state.NewStore()
	old := &model.Account{}
	store.Replace("s1", old)

	refresher := &storeRefresher{store: store, next: &model.Account{}}
	c := &recordingCache{}
	f := New(&stubSubmitter{}, c, refresher, nil)
	seq := recordTransitions(f)

	res := f.Submit(context.Background(), "s1", "tkn", ActionPayment, samplePayload())

	require.NoError(t, res.Err)
	assert.True(t, res.Succeeded)
	assert.False(t, res.Refreshed)
	assert.Zero(t, refresher.calls)
	assert.Equal(t, uint64(1), store.Version("s1"))

	held, _ := store.Current("s1")
	assert.Same(t, old, held)

	assert.Equal(t, []string{cache.SessionKey(cache.KeyAccount, "s1")}, c.invalidated)
	assert.Equal(t, []State{StateSubmitting, StateSuccess, StateIdle}, *seq)
	require.Len(t, res.Notifications, 1)
	assert.Equal(t, LevelSuccess, res.Notifications[0].Level)
}

func TestSubmit_FailureNoRetry(t *testing.T) {
	apiErr := &sanapi.APIError{Kind: sanapi.KindValidation, Status: 400, Message: "Referencia duplicada"}
	sub := &stubSubmitter{joinErr: apiErr}
	store := state.NewStore()
	refresher := &storeRefresher{store: store, next: &model.Account{}}
	c := &recordingCache{}

	f := New(sub, c, refresher, nil)
	seq := recordTransitions(f)

	res := f.Submit(context.Background(), "s1", "tkn", ActionJoin, samplePayload())

	assert.False(t, res.Succeeded)
	assert.ErrorIs(t, res.Err, apiErr)
	assert.Len(t, sub.joined, 1)
	assert.Zero(t, refresher.calls)
	assert.Empty(t, c.invalidated)
	assert.Equal(t, []State{StateSubmitting, StateFailure, StateIdle}, *seq)

	require.Len(t, res.Notifications, 1)
	assert.Equal(t, LevelError, res.Notifications[0].Level)
	assert.Equal(t, sanapi.KindValidation, res.Notifications[0].Kind)
	assert.Equal(t, "errors.validation", res.Notifications[0].Message)
}

func TestSubmit_RefreshFailureKeepsStaleAccount(t *testing.T) {
	store := state.NewStore()
	old := &model.Account{}
	store.Replace("s1", old)

	refresher := &storeRefresher{store: store, err: &sanapi.APIError{Kind: sanapi.KindNetwork}}
	f := New(&stubSubmitter{}, &recordingCache{}, refresher, nil)

	res := f.Submit(context.Background(), "s1", "tkn", ActionJoin, samplePayload())

	assert.True(t, res.Succeeded)
	assert.False(t, res.Refreshed)
	assert.Error(t, res.Err)
	require.Len(t, res.Notifications, 2)
	assert.Equal(t, LevelSuccess, res.Notifications[0].Level)
	assert.Equal(t, LevelError, res.Notifications[1].Level)

	held, _ := store.Current("s1")
	assert.Same(t, old, held)
	assert.Equal(t, StateIdle, f.State("s1"))
}

func TestSubmit_BusyWhileInFlight(t *testing.T) {
	sub := &stubSubmitter{block: make(chan struct{})}
	store := state.NewStore()
	f := New(sub, &recordingCache{}, &storeRefresher{store: store, next: &model.Account{}}, nil)

	done := make(chan Result)
	go func() {
		done <- f.Submit(context.Background(), "s1", "tkn", ActionJoin, samplePayload())
	}()

	require.Eventually(t, func() bool {
		return f.State("s1") == StateSubmitting
	}, time.Second, time.Millisecond)

	busy := f.Submit(context.Background(), "s1", "tkn", ActionPayment, samplePayload())
	assert.True(t, errors.Is(busy.Err, ErrBusy))

	other := f.Submit(context.Background(), "s2", "tkn", ActionPayment, samplePayload())
	assert.NoError(t, other.Err)

	close(sub.block)
	res := <-done
	assert.NoError(t, res.Err)
	assert.Equal(t, StateIdle, f.State("s1"))
}

func TestSubmit_UnknownAction(t *testing.T) {
	f := New(&stubSubmitter{}, &recordingCache{}, nil, nil)
	res := f.Submit(context.Background(), "s1", "tkn", Action("refund"), samplePayload())
	assert.Error(t, res.Err)
	assert.Equal(t, StateIdle, f.State("s1"))
}
