// Package session keeps quiz progress per user in memory and evicts idle entries.
package session

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/m3rciful/clinicbot/core/logger"
	"github.com/m3rciful/clinicbot/core/telegram/state"
)

const component = "service.sessions"

// ErrStaleAnswer is returned when an answer does not target the next unanswered question.
var ErrStaleAnswer = errors.New("session: answer does not match current question")

// Session is a snapshot of one user's quiz progress.
type Session struct {
	UserID       int64
	Answers      []int
	LastActivity time.Time
}

// Options configure the store. Zero values fall back to 30m idle / 5m sweep.
type Options struct {
	IdleTimeout   time.Duration
	SweepInterval time.Duration
	Now           func() time.Time
}

// Store owns all quiz sessions. It is safe for concurrent use.
type Store struct {
	mem  *state.Memory[Session]
	opts Options
}

// NewStore constructs an empty store.
func NewStore(opts Options) *Store {
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = 30 * time.Minute
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = 5 * time.Minute
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Store{mem: state.NewMemory[Session](), opts: opts}
}

// Start drops any previous progress and begins a fresh session.
func (s *Store) Start(userID int64) Session {
	sess := Session{UserID: userID, Answers: []int{}, LastActivity: s.opts.Now()}
	s.mem.Set(userID, sess)
	return clone(sess)
}

// GetOrCreate returns the user's session, creating an empty one if absent.
func (s *Store) GetOrCreate(userID int64) Session {
	return clone(s.mem.Update(userID, func(cur Session, ok bool) (Session, bool) {
		if !ok {
			return Session{UserID: userID, Answers: []int{}, LastActivity: s.opts.Now()}, true
		}
		return cur, true
	}))
}

// RecordAnswer appends option for question and refreshes the activity timestamp.
// The session is created lazily; question must equal the number of answers recorded so far.
func (s *Store) RecordAnswer(userID int64, question, option int) (Session, error) {
	var err error
	sess := s.mem.Update(userID, func(cur Session, ok bool) (Session, bool) {
		if !ok {
			cur = Session{UserID: userID}
		}
		cur.LastActivity = s.opts.Now()
		if question != len(cur.Answers) {
			err = ErrStaleAnswer
			return cur, true
		}
		answers := make([]int, len(cur.Answers), len(cur.Answers)+1)
		copy(answers, cur.Answers)
		cur.Answers = append(answers, option)
		return cur, true
	})
	return clone(sess), err
}

// Touch refreshes the activity timestamp of an existing session.
func (s *Store) Touch(userID int64) {
	s.mem.Update(userID, func(cur Session, ok bool) (Session, bool) {
		if ok {
			cur.LastActivity = s.opts.Now()
		}
		return cur, ok
	})
}

// FinalizeAndRemove returns the recorded answers and deletes the session.
func (s *Store) FinalizeAndRemove(userID int64) []int {
	sess, _ := s.mem.Delete(userID)
	return append([]int(nil), sess.Answers...)
}

// Remove deletes the session if present.
func (s *Store) Remove(userID int64) {
	s.mem.Delete(userID)
}

// Get returns a copy of the session if present.
func (s *Store) Get(userID int64) (Session, bool) {
	sess, ok := s.mem.Get(userID)
	return clone(sess), ok
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	return s.mem.Len()
}

// Sweep removes sessions idle for longer than the configured timeout and returns their user IDs.
func (s *Store) Sweep(now time.Time) []int64 {
	return s.mem.DeleteFunc(func(_ int64, sess Session) bool {
		return now.Sub(sess.LastActivity) > s.opts.IdleTimeout
	})
}

// Run sweeps on every interval until ctx is done.
func (s *Store) Run(ctx context.Context) {
	ticker := time.NewTicker(s.opts.SweepInterval)
	defer ticker.Stop()
	logger.Info(ctx, component, "sweeper.start",
		slog.Duration("idle_timeout", s.opts.IdleTimeout),
		slog.Duration("interval", s.opts.SweepInterval),
	)
	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, component, "sweeper.stop")
			return
		case <-ticker.C:
			evicted := s.Sweep(s.opts.Now())
			if len(evicted) > 0 {
				logger.Info(ctx, component, "sessions.swept",
					slog.Int("evicted", len(evicted)),
					slog.Int("sessions", s.Len()),
				)
			}
		}
	}
}

func clone(s Session) Session {
	s.Answers = append([]int(nil), s.Answers...)
	return s
}
