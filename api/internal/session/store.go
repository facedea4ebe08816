// Package session keeps the per-user Pending Submission that bridges a
// received photo and the classification code typed after it.
package session

import (
	"context"
	"sync"
	"time"
)

// Pending is a photo waiting for its code.
type Pending struct {
	Image     []byte
	MIME      string
	Submitter string
	CreatedAt time.Time
}

// Store is keyed by Telegram user id. Entries live until deleted; there is
// no expiry.
type Store interface {
	Get(ctx context.Context, userID int64) (Pending, bool, error)
	Put(ctx context.Context, userID int64, p Pending) error
	Delete(ctx context.Context, userID int64) error
}

// Memory is a process-local Store. Pending submissions are lost on restart.
type Memory struct {
	m sync.Map // userID -> Pending
}

func NewMemory() *Memory { return &Memory{} }

func (s *Memory) Get(_ context.Context, userID int64) (Pending, bool, error) {
	if v, ok := s.m.Load(userID); ok {
		return v.(Pending), true, nil
	}
	return Pending{}, false, nil
}

func (s *Memory) Put(_ context.Context, userID int64, p Pending) error {
	s.m.Store(userID, p)
	return nil
}

func (s *Memory) Delete(_ context.Context, userID int64) error {
	s.m.Delete(userID)
	return nil
}

// Len counts pending entries.
func (s *Memory) Len() int {
	n := 0
	s.m.Range(func(_, _ any) bool { n++; return true })
	return n
}
