// Package state хранит текущий снимок аккаунта каждой сессии.
//
// Снимок только заменяется целиком (Replace) или удаляется (Clear); изменять
// полученный через Current объект запрещено.
package state

import (
	"sync"

	"github.com/mmeshcher/san-gateway/internal/metrics"
	"github.com/mmeshcher/san-gateway/internal/model"
)

type entry struct {
	account *model.Account
	version uint64
}

// Store хранит снимки аккаунтов по сессиям.
type Store struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// NewStore создаёт пустое хранилище.
func NewStore() *Store {
	return &Store{entries: make(map[string]entry)}
}

// Current возвращает снимок аккаунта сессии.
func (s *Store) Current(sessionID string) (*model.Account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[sessionID]
	if !ok || e.account == nil {
		return nil, false
	}
	return e.account, true
}

// Version возвращает число замен снимка сессии.
func (s *Store) Version(sessionID string) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries[sessionID].version
}

// Replace заменяет снимок сессии новым объектом.
func (s *Store) Replace(sessionID string, account *model.Account) {
	if account == nil {
		return
	}

	s.mu.Lock()
	e := s.entries[sessionID]
	e.account = account
	e.version++
	s.entries[sessionID] = e
	s.mu.Unlock()

	metrics.RecordAccountReplacement()
}

// Clear удаляет снимок сессии.
func (s *Store) Clear(sessionID string) {
	s.mu.Lock()
	delete(s.entries, sessionID)
	s.mu.Unlock()
}
