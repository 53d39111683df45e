package session

import (
	"context"
	"sync"
	"time"

	"github.com/example/bistrobook/internal/wizard"
)

type entry struct {
	state   wizard.State
	savedAt time.Time
}

// Memory is a process local Store. Sessions not saved within ttl read as
// missing even before a sweep removes them; a zero ttl never expires.
type Memory struct {
	mu  sync.Mutex
	m   map[string]entry
	ttl time.Duration
	now func() time.Time
}

func NewMemory(ttl time.Duration) *Memory {
	return &Memory{m: map[string]entry{}, ttl: ttl, now: time.Now}
}

func (s *Memory) Load(_ context.Context, id string) (wizard.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.m[id]
	if !ok {
		return wizard.State{}, ErrNotFound
	}
	if s.ttl > 0 && s.now().Sub(e.savedAt) > s.ttl {
		delete(s.m, id)
		return wizard.State{}, ErrNotFound
	}
	return e.state, nil
}

func (s *Memory) Save(_ context.Context, id string, st wizard.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[id] = entry{state: st, savedAt: s.now()}
	return nil
}

func (s *Memory) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, id)
	return nil
}

func (s *Memory) Sweep(_ context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, e := range s.m {
		if e.savedAt.Before(before) {
			delete(s.m, id)
			n++
		}
	}
	return n, nil
}

// Len is the number of live sessions.
func (s *Memory) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}
