package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	_, ok, err := s.Get(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	p := Pending{Image: []byte{1, 2}, MIME: "image/jpeg", Submitter: "ali", CreatedAt: time.Now()}
	require.NoError(t, s.Put(ctx, 1, p))
	require.NoError(t, s.Put(ctx, 2, Pending{Submitter: "veli"}))

	got, ok, err := s.Get(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "ali", got.Submitter)
	assert.Equal(t, 2, s.Len())

	require.NoError(t, s.Delete(ctx, 1))
	_, ok, _ = s.Get(ctx, 1)
	assert.False(t, ok)
	_, ok, _ = s.Get(ctx, 2)
	assert.True(t, ok, "other users are untouched")
}

func TestMemory_ConcurrentUsers(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	var wg sync.WaitGroup
	for i := int64(0); i < 50; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			_ = s.Put(ctx, id, Pending{Submitter: "u"})
			if id%2 == 0 {
				_ = s.Delete(ctx, id)
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 25, s.Len())
}
