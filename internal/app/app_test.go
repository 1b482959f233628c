package app

import (
	"context"
	"errors"
	"testing"
)

type countStub struct {
	n     int
	err   error
	calls int
}

func (c *countStub) CountOpen(context.Context) (int, error) {
	c.calls++
	return c.n, c.err
}

func TestLogOpenRequests(t *testing.T) {
	ok := &countStub{n: 3}
	if err := logOpenRequests(context.Background(), ok); err != nil || ok.calls != 1 {
		t.Fatalf("unexpected result err=%v calls=%d", err, ok.calls)
	}

	boom := errors.New("archive: count open: no such table")
	failing := &countStub{err: boom}
	if err := logOpenRequests(context.Background(), failing); !errors.Is(err, boom) {
		t.Fatalf("expected count error, got %v", err)
	}
}
