// Package worker hosts background tasks owned by the ticket lifecycle.
package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/domain"
	"github.com/spec-kit/ticket-bot/internal/platform"
	"github.com/spec-kit/ticket-bot/internal/store"
)

// Deleter schedules deferred channel deletions. Each pending deletion is a
// cancellable timer keyed by channel id; firing is best-effort and a
// failure is logged, never retried.
type Deleter struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
	client platform.Client
	store  *store.Store
	delay  time.Duration
	logger *zap.Logger
}

// NewDeleter constructs the scheduler.
func NewDeleter(client platform.Client, st *store.Store, delay time.Duration, logger *zap.Logger) *Deleter {
	return &Deleter{
		timers: make(map[string]*time.Timer),
		client: client,
		store:  st,
		delay:  delay,
		logger: logger,
	}
}

// Schedule arms a deletion timer for the channel. Scheduling the same
// channel twice resets the timer.
func (d *Deleter) Schedule(channelID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if timer, ok := d.timers[channelID]; ok {
		timer.Stop()
	}
	d.timers[channelID] = time.AfterFunc(d.delay, func() {
		d.fire(channelID)
	})
}

// Cancel disarms a pending deletion. It reports whether a timer existed.
// Nothing calls this on late channel interactions; the window between the
// closing notice and deletion intentionally stays open.
func (d *Deleter) Cancel(channelID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	timer, ok := d.timers[channelID]
	if ok {
		timer.Stop()
		delete(d.timers, channelID)
	}
	return ok
}

// Stop disarms all pending deletions, for shutdown.
func (d *Deleter) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for id, timer := range d.timers {
		timer.Stop()
		delete(d.timers, id)
	}
}

func (d *Deleter) fire(channelID string) {
	d.mu.Lock()
	delete(d.timers, channelID)
	d.mu.Unlock()

	ctx := context.Background()
	if err := d.client.DeleteChannel(ctx, channelID); err != nil {
		// Points and transcript already landed; nothing is rolled back.
		d.logger.Error("channel deletion failed", zap.String("channel_id", channelID), zap.Error(err))
		return
	}

	err := d.store.Update(ctx, func(doc *domain.Document) error {
		delete(doc.Tickets, channelID)
		return nil
	})
	if err != nil {
		d.logger.Warn("failed to drop ticket record", zap.String("channel_id", channelID), zap.Error(err))
	}
	d.logger.Info("ticket channel deleted", zap.String("channel_id", channelID))
}
