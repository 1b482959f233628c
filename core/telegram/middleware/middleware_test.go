package middleware

import (
	"errors"
	"strings"
	"testing"
	"time"

	tghelpers "github.com/m3rciful/clinicbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

func newContext(t *testing.T, updateID int, chatID int64) tele.Context {
	t.Helper()
	bot, err := tele.NewBot(tele.Settings{Offline: true})
	if err != nil {
		t.Fatalf("offline bot: %v", err)
	}
	return bot.NewContext(tele.Update{
		ID: updateID,
		Message: &tele.Message{
			Text:   "hello",
			Chat:   &tele.Chat{ID: chatID, Type: tele.ChatPrivate},
			Sender: &tele.User{ID: 7},
		},
	})
}

func TestChatOnly(t *testing.T) {
	called, rejected := false, false
	mw := ChatOnly(ChatOptions{ChatID: 100, OnReject: func(tele.Context) error {
		rejected = true
		return nil
	}})
	h := mw(func(tele.Context) error {
		called = true
		return nil
	})

	if err := h(newContext(t, 1, 100)); err != nil || !called {
		t.Fatalf("operator chat should pass: called=%v err=%v", called, err)
	}
	called = false
	if err := h(newContext(t, 2, 5)); err != nil || called || !rejected {
		t.Fatalf("foreign chat should be rejected: called=%v rejected=%v err=%v", called, rejected, err)
	}
}

func TestRecoverMiddleware(t *testing.T) {
	h := RecoverMiddleware(func(tele.Context) error { panic("boom") })
	err := h(newContext(t, 3, 1))
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("expected panic to surface as error, got %v", err)
	}

	want := errors.New("plain")
	if got := RecoverMiddleware(func(tele.Context) error { return want })(newContext(t, 4, 1)); !errors.Is(got, want) {
		t.Fatalf("errors should pass through, got %v", got)
	}
}

func TestMessageMetrics(t *testing.T) {
	c := newContext(t, 5, 1)
	h := LoggerMiddleware(MessageMetricsMiddleware(func(c tele.Context) error {
		ctx, ok := tghelpers.ContextFrom(c)
		if !ok {
			t.Fatal("context should be stored")
		}
		CountMessage(ctx, false)
		CountMessage(ctx, true)
		return nil
	}))
	if err := h(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	msgs, kb := GetCounters(c)
	if msgs != 2 || !kb {
		t.Fatalf("counters = (%d, %v)", msgs, kb)
	}
}

func TestCountersNilSafe(t *testing.T) {
	var c *Counters
	c.Count(true)
	if n, kb := c.Snapshot(); n != 0 || kb {
		t.Fatal("nil counters should stay empty")
	}
	CountMessage(nil, true)
}

func TestRecentUpdatesDeduplicates(t *testing.T) {
	r := &recentUpdates{seen: make(map[int]time.Time), keepFor: time.Minute}
	now := time.Now()
	if !r.firstTime(1, now) || r.firstTime(1, now) {
		t.Fatal("second sighting should be reported as seen")
	}
	if !r.firstTime(1, now.Add(2*time.Minute)) {
		t.Fatal("expired entries should be forgotten")
	}
}
