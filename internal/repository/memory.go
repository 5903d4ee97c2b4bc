package repository

import (
	"context"
	"sync"
	"time"
)

type memoryValue struct {
	value     string
	updatedAt time.Time
}

// MemoryRepository хранит учётные данные сессий в памяти процесса.
// Используется, когда адрес БД не задан.
type MemoryRepository struct {
	mu       sync.Mutex
	sessions map[string]map[string]memoryValue
	now      func() time.Time
}

// NewMemoryRepository создаёт пустое хранилище в памяти.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		sessions: make(map[string]map[string]memoryValue),
		now:      time.Now,
	}
}

// Close ничего не делает.
func (r *MemoryRepository) Close() error { return nil }

// Get возвращает значение ключа сессии и отмечает сессию активной.
func (r *MemoryRepository) Get(_ context.Context, sessionID, key string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.sessions[sessionID]
	v, ok := s[key]
	if !ok {
		return "", ErrCredentialNotFound
	}
	v.updatedAt = r.now()
	s[key] = v
	return v.value, nil
}

// Set сохраняет значение ключа сессии.
func (r *MemoryRepository) Set(_ context.Context, sessionID, key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[sessionID]
	if !ok {
		s = make(map[string]memoryValue)
		r.sessions[sessionID] = s
	}
	s[key] = memoryValue{value: value, updatedAt: r.now()}
	return nil
}

// Remove удаляет ключ сессии.
func (r *MemoryRepository) Remove(_ context.Context, sessionID, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[sessionID]; ok {
		delete(s, key)
		if len(s) == 0 {
			delete(r.sessions, sessionID)
		}
	}
	return nil
}

// RemoveSession удаляет все ключи сессии.
func (r *MemoryRepository) RemoveSession(_ context.Context, sessionID string) error {
	r.mu.Lock()
	delete(r.sessions, sessionID)
	r.mu.Unlock()
	return nil
}

// PurgeIdle удаляет сессии, к которым не обращались дольше maxIdle, и возвращает их идентификаторы.
func (r *MemoryRepository) PurgeIdle(_ context.Context, maxIdle time.Duration) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-maxIdle)
	var removed []string
	for id, s := range r.sessions {
		var last time.Time
		for _, v := range s {
			if v.updatedAt.After(last) {
				last = v.updatedAt
			}
		}
		if last.Before(cutoff) {
			removed = append(removed, id)
			delete(r.sessions, id)
		}
	}
	return removed, nil
}
