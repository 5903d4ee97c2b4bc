package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmeshcher/san-gateway/internal/model"
)

func TestStore_ReplaceKeepsWholeObject(t *testing.T) {
	s := NewStore()

	_, ok := s.Current("s1")
	assert.False(t, ok)

	first := &model.Account{User: model.UserAccount{Points: 10}}
	s.Replace("s1", first)

	got, ok := s.Current("s1")
	require.True(t, ok)
	assert.Same(t, first, got)
	assert.Equal(t, uint64(1), s.Version("s1"))

	second := &model.Account{User: model.UserAccount{Points: 20}}
	s.Replace("s1", second)

	got, _ = s.Current("s1")
	assert.Same(t, second, got)
	assert.NotSame(t, first, got)
	assert.Equal(t, 10, first.User.Points, "old snapshot must not be patched")
	assert.Equal(t, uint64(2), s.Version("s1"))
}

func TestStore_NilIgnored(t *testing.T) {
	s := NewStore()
	s.Replace("s1", nil)

	_, ok := s.Current("s1")
	assert.False(t, ok)
	assert.Zero(t, s.Version("s1"))
}

func TestStore_Clear(t *testing.T) {
	s := NewStore()
	s.Replace("s1", &model.Account{})
	s.Replace("s2", &model.Account{})

	s.Clear("s1")

	_, ok := s.Current("s1")
	assert.False(t, ok)
	_, ok = s.Current("s2")
	assert.True(t, ok)
}
