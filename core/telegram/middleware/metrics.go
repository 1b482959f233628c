package middleware

import (
	"context"
	"sync/atomic"

	tghelpers "github.com/m3rciful/clinicbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

type countersKey struct{}

const countersCtxKey = "counters"

// Counters tracks what a single update produced.
type Counters struct {
	messages atomic.Int64
	keyboard atomic.Bool
}

// Count records one outbound message; hasKeyboard marks that a keyboard was attached.
func (c *Counters) Count(hasKeyboard bool) {
	if c == nil {
		return
	}
	c.messages.Add(1)
	if hasKeyboard {
		c.keyboard.Store(true)
	}
}

// Snapshot returns the message count and keyboard flag.
func (c *Counters) Snapshot() (int, bool) {
	if c == nil {
		return 0, false
	}
	return int(c.messages.Load()), c.keyboard.Load()
}

// WithCounters attaches counters to ctx.
func WithCounters(ctx context.Context, c *Counters) context.Context {
	return context.WithValue(ctx, countersKey{}, c)
}

// CountersFrom returns the counters attached to ctx, or nil.
func CountersFrom(ctx context.Context) *Counters {
	if ctx == nil {
		return nil
	}
	c, _ := ctx.Value(countersKey{}).(*Counters)
	return c
}

// CountMessage records an outbound message against the update carried by ctx.
func CountMessage(ctx context.Context, hasKeyboard bool) {
	CountersFrom(ctx).Count(hasKeyboard)
}

// MessageMetricsMiddleware attaches fresh counters to the update context.
// Transports report through CountMessage; routers read them with GetCounters.
func MessageMetricsMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		counters := &Counters{}
		c.Set(countersCtxKey, counters)
		tghelpers.StoreContext(c, WithCounters(tghelpers.BuildContext(c), counters))
		return next(c)
	}
}

// GetCounters reads message count and keyboard presence for the update.
func GetCounters(c tele.Context) (int, bool) {
	counters, _ := c.Get(countersCtxKey).(*Counters)
	return counters.Snapshot()
}
