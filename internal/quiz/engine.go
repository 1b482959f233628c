// Package quiz runs the screening questionnaire one question at a time.
package quiz

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/m3rciful/clinicbot/core/logger"
	"github.com/m3rciful/clinicbot/internal/chat"
	"github.com/m3rciful/clinicbot/internal/session"
)

const component = "service.quiz"

const (
	healthyText = "Вы ответили на все вопросы отрицательно, поздравляем - у Вас здоровые ноги! " +
		"Если Вас все еще что-то беспокоит, Вы можете записаться на консультацию к флебологу"
	recommendText = "У вас %s, рекомендуем обратиться к флебологу за консультацией"

	bookLabel     = "Записаться к врачу"
	mainMenuLabel = "В главное меню"
)

// Screen is what the user should see after a quiz step.
type Screen struct {
	Prompt chat.Prompt
	// Index is the question shown, or the question count once the quiz is over.
	Index       int
	Completed   bool
	Affirmative int
	// Unchanged means the message on screen should stay as it is.
	Unchanged bool
}

// Engine presents questions and tallies answers kept in a session store.
type Engine struct {
	questions []Question
	sessions  *session.Store
}

// NewEngine builds an engine over an immutable questionnaire.
func NewEngine(questions []Question, sessions *session.Store) *Engine {
	return &Engine{questions: questions, sessions: sessions}
}

// Len returns the number of questions.
func (e *Engine) Len() int {
	return len(e.questions)
}

// Start resets the user's progress and presents the first question.
func (e *Engine) Start(ctx context.Context, userID int64) Screen {
	e.sessions.Start(userID)
	logger.Debug(ctx, component, "quiz.started", slog.Int("questions", len(e.questions)))
	return e.Present(ctx, userID, 0)
}

// Present renders question index, or the summary when index equals the question count.
// Presenting the summary destroys the session.
func (e *Engine) Present(ctx context.Context, userID int64, index int) Screen {
	if index >= len(e.questions) {
		return e.complete(ctx, userID)
	}
	if index < 0 {
		index = 0
	}
	e.sessions.Touch(userID)
	q := e.questions[index]
	rows := make([][]chat.Option, 0, len(q.Options))
	for i, opt := range q.Options {
		rows = append(rows, chat.Row(chat.Button(opt.Label, chat.Answer{Question: index, Option: i})))
	}
	return Screen{
		Prompt: chat.Prompt{
			Text:    "Вопрос №" + strconv.Itoa(index+1) + "\n\n" + q.Prompt,
			Options: rows,
		},
		Index: index,
	}
}

// Answer records option for question and presents the next screen.
// Stale or out of range presses re-present the question the user is actually on.
// A press on a later question with no session left (a finished or evicted quiz)
// returns an Unchanged screen.
func (e *Engine) Answer(ctx context.Context, userID int64, question, option int) Screen {
	if _, ok := e.sessions.Get(userID); !ok && question != 0 {
		logger.Debug(ctx, component, "answer.orphaned",
			slog.String("status", "skip"),
			slog.Int("question", question),
		)
		return Screen{Index: question, Unchanged: true}
	}
	if question < 0 || question >= len(e.questions) || option < 0 || option >= len(e.questions[question].Options) {
		sess := e.sessions.GetOrCreate(userID)
		logger.Debug(ctx, component, "answer.invalid",
			slog.String("status", "invalid"),
			slog.Int("question", question),
			slog.Int("option", option),
		)
		return e.Present(ctx, userID, len(sess.Answers))
	}
	sess, err := e.sessions.RecordAnswer(userID, question, option)
	if errors.Is(err, session.ErrStaleAnswer) {
		logger.Debug(ctx, component, "answer.stale",
			slog.String("status", "skip"),
			slog.Int("question", question),
			slog.Int("answers", len(sess.Answers)),
		)
	}
	return e.Present(ctx, userID, len(sess.Answers))
}

// Quit drops the user's progress without a summary.
func (e *Engine) Quit(userID int64) {
	e.sessions.Remove(userID)
}

func (e *Engine) complete(ctx context.Context, userID int64) Screen {
	answers := e.sessions.FinalizeAndRemove(userID)
	count := e.countAffirmative(answers)
	text := healthyText
	if count > 0 {
		text = fmt.Sprintf(recommendText, Pluralize(count))
	}
	logger.Info(ctx, component, "quiz.completed",
		slog.String("status", "ok"),
		slog.Int("answers", len(answers)),
		slog.Int("affirmative", count),
	)
	return Screen{
		Prompt: chat.Prompt{
			Text: text,
			Options: [][]chat.Option{chat.Row(
				chat.Button(bookLabel, chat.ChooseScenario{}),
				chat.Button(mainMenuLabel, chat.MainMenu{}),
			)},
		},
		Index:       len(e.questions),
		Completed:   true,
		Affirmative: count,
	}
}

func (e *Engine) countAffirmative(answers []int) int {
	n := 0
	for i, a := range answers {
		if i >= len(e.questions) {
			break
		}
		opts := e.questions[i].Options
		if a >= 0 && a < len(opts) && opts[a].Affirmative {
			n++
		}
	}
	return n
}

// Pluralize renders n with the matching Russian form of "положительный ответ".
func Pluralize(n int) string {
	mod10, mod100 := n%10, n%100
	switch {
	case mod10 == 1 && mod100 != 11:
		return strconv.Itoa(n) + " положительный ответ"
	case mod10 >= 2 && mod10 <= 4 && (mod100 < 12 || mod100 > 14):
		return strconv.Itoa(n) + " положительных ответа"
	default:
		return strconv.Itoa(n) + " положительных ответов"
	}
}
