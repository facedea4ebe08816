package telegram

import (
	"context"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// HandlerFunc handles one update.
type HandlerFunc func(ctx context.Context, upd tgbotapi.Update)

// Dispatcher runs updates of one user in arrival order while different users
// proceed in parallel. A user's goroutine exits once their queue is drained.
type Dispatcher struct {
	handle HandlerFunc
	log    *zap.Logger

	mu     sync.Mutex
	queues map[int64][]tgbotapi.Update
	wg     sync.WaitGroup
}

func NewDispatcher(h HandlerFunc, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{handle: h, log: log.Named("dispatch"), queues: make(map[int64][]tgbotapi.Update)}
}

// Dispatch queues upd and returns immediately.
func (d *Dispatcher) Dispatch(ctx context.Context, upd tgbotapi.Update) {
	key := updateKey(upd)

	d.mu.Lock()
	if q, busy := d.queues[key]; busy {
		d.queues[key] = append(q, upd)
		d.mu.Unlock()
		return
	}
	d.queues[key] = nil
	d.wg.Add(1)
	d.mu.Unlock()

	go d.run(ctx, key, upd)
}

// Wait blocks until every queued update has been handled.
func (d *Dispatcher) Wait() { d.wg.Wait() }

func (d *Dispatcher) run(ctx context.Context, key int64, upd tgbotapi.Update) {
	defer d.wg.Done()
	for {
		d.one(ctx, key, upd)

		d.mu.Lock()
		q := d.queues[key]
		if len(q) == 0 {
			delete(d.queues, key)
			d.mu.Unlock()
			return
		}
		upd = q[0]
		d.queues[key] = q[1:]
		d.mu.Unlock()
	}
}

func (d *Dispatcher) one(ctx context.Context, key int64, upd tgbotapi.Update) {
	log := d.log.With(
		zap.Int("update_id", upd.UpdateID),
		zap.Int64("user_id", key),
		zap.String("trace", uuid.NewString()),
	)
	defer func() {
		if p := recover(); p != nil {
			log.Error("update handler panicked", zap.Any("panic", p))
		}
	}()
	log.Debug("update")
	d.handle(ctx, upd)
}

// updateKey is the sender of the update, falling back to the chat.
func updateKey(upd tgbotapi.Update) int64 {
	switch {
	case upd.Message != nil && upd.Message.From != nil:
		return upd.Message.From.ID
	case upd.Message != nil && upd.Message.Chat != nil:
		return upd.Message.Chat.ID
	case upd.EditedMessage != nil && upd.EditedMessage.From != nil:
		return upd.EditedMessage.From.ID
	case upd.CallbackQuery != nil && upd.CallbackQuery.From != nil:
		return upd.CallbackQuery.From.ID
	}
	return 0
}
