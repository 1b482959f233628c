package telegram

import (
	"testing"
	"time"

	tele "gopkg.in/telebot.v4"
)

func TestBuildPollerWebhook(t *testing.T) {
	p := BuildPoller(PollerOptions{
		RunMode: "webhook",
		Webhook: WebhookOptions{Listen: "0.0.0.0", Port: 8443, URL: "https://bot.example.org/hook"},
	})
	wh, ok := p.(*tele.Webhook)
	if !ok {
		t.Fatalf("expected webhook poller, got %T", p)
	}
	if wh.Listen != "0.0.0.0:8443" || wh.Endpoint.PublicURL != "https://bot.example.org/hook" {
		t.Fatalf("unexpected webhook %+v", wh)
	}
}

func TestBuildPollerLongpoll(t *testing.T) {
	p := BuildPoller(PollerOptions{RunMode: "longpoll"})
	lp, ok := p.(*tele.LongPoller)
	if !ok {
		t.Fatalf("expected long poller, got %T", p)
	}
	if lp.Timeout != defaultLongPollTimeout {
		t.Fatalf("unexpected timeout %v", lp.Timeout)
	}
	if got := BuildPoller(PollerOptions{LongPollTimeoutSeconds: 30}).(*tele.LongPoller).Timeout; got != 30*time.Second {
		t.Fatalf("unexpected custom timeout %v", got)
	}
}
