// Package clinic dispatches inbound events to the quiz and intake flows.
package clinic

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/m3rciful/clinicbot/core/logger"
	"github.com/m3rciful/clinicbot/core/telegram/state"
	"github.com/m3rciful/clinicbot/internal/chat"
	"github.com/m3rciful/clinicbot/internal/intake"
	"github.com/m3rciful/clinicbot/internal/quiz"
)

const (
	componentRouter = "service.router"
	componentIntake = "service.intake"
)

const (
	welcomeBody = "Вас приветствует виртуальный помощник «Файбер Клиник» — ваш надежный консультант в вопросах здоровья вен. " +
		"Здесь вы можете записаться на прием к флебологу, а также пройти тест относительно диагностики, " +
		"лечения варикозного расширения вен и сосудистых звездочек.\n\n" +
		"Будем рады проконсультировать вас онлайн и организовать очный прием врача-флеболога!\n\n" +
		"Ваш комфорт и здоровье — наша главная забота."
	startQuizLabel = "Пройти тест"
	bookLabel      = "Записаться к врачу"

	scenarioText      = "Отлично! Выберите, где вам удобнее записаться."
	telegramFormLabel = "Телеграм заявка"
	siteLabel         = "Сайт"
)

// ErrMissingDependency is returned by NewService when a required collaborator is nil.
var ErrMissingDependency = errors.New("clinic: missing dependency")

// Journal keeps an audit trail of submitted requests.
type Journal interface {
	Record(ctx context.Context, req intake.Request) error
	SetDone(ctx context.Context, requestID string, done bool) error
}

// Options wire a Service.
type Options struct {
	Transport      chat.Transport
	Quiz           *quiz.Engine
	Flow           *intake.Flow
	OperatorChatID int64
	BookingURL     string

	// Journal is optional.
	Journal Journal
	Now     func() time.Time
	NewID   func() string
}

// Service owns the intake states and serializes work per user.
type Service struct {
	transport  chat.Transport
	quiz       *quiz.Engine
	flow       *intake.Flow
	operatorID int64
	bookingURL string
	journal    Journal
	now        func() time.Time
	newID      func() string

	locker  *state.KeyLocker
	intakes *state.Memory[intake.State]
}

// NewService validates opts and builds a Service.
func NewService(opts Options) (*Service, error) {
	switch {
	case opts.Transport == nil:
		return nil, fmt.Errorf("%w: transport", ErrMissingDependency)
	case opts.Quiz == nil:
		return nil, fmt.Errorf("%w: quiz engine", ErrMissingDependency)
	case opts.Flow == nil:
		return nil, fmt.Errorf("%w: intake flow", ErrMissingDependency)
	case opts.OperatorChatID == 0:
		return nil, fmt.Errorf("%w: operator chat id", ErrMissingDependency)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	return &Service{
		transport:  opts.Transport,
		quiz:       opts.Quiz,
		flow:       opts.Flow,
		operatorID: opts.OperatorChatID,
		bookingURL: opts.BookingURL,
		journal:    opts.Journal,
		now:        opts.Now,
		newID:      opts.NewID,
		locker:     state.NewKeyLocker(),
		intakes:    state.NewMemory[intake.State](),
	}, nil
}

// IntakeActive reports whether the user is inside the request flow.
func (s *Service) IntakeActive(userID int64) bool {
	st, ok := s.intakes.Get(userID)
	return ok && st != nil
}

// IntakeState returns the user's current flow state, nil when inactive.
func (s *Service) IntakeState(userID int64) intake.State {
	st, _ := s.intakes.Get(userID)
	return st
}

// Handle processes one event inside the user's critical section.
// Returned errors are transport failures; conversation state is already updated.
func (s *Service) Handle(ctx context.Context, ev Event) error {
	unlock := s.locker.Lock(ev.UserID)
	defer unlock()

	switch ev.Kind {
	case EventCommand:
		return s.handleCommand(ctx, ev)
	case EventButton:
		return s.handleButton(ctx, ev)
	case EventText:
		return s.stepIntake(ctx, ev, intake.Text{Value: ev.Text})
	case EventPhoto:
		return s.stepIntake(ctx, ev, ev.Photo)
	case EventMedia:
		return s.stepIntake(ctx, ev, intake.Media{Kind: ev.MediaKind})
	}
	logger.Debug(ctx, componentRouter, "event.ignored",
		slog.String("status", "skip"),
		slog.String("reason", "unknown_kind"),
	)
	return nil
}

func (s *Service) handleCommand(ctx context.Context, ev Event) error {
	if !strings.EqualFold(ev.Command, CommandStart) {
		logger.Debug(ctx, componentRouter, "command.ignored",
			slog.String("status", "skip"),
			slog.String("command", logger.SanitizeLimit(ev.Command, 64)),
		)
		return nil
	}
	s.quiz.Quit(ev.UserID)
	s.intakes.Delete(ev.UserID)
	_, err := s.send(ctx, ev.ChatID, welcomePrompt(ev.FirstName))
	return err
}

func (s *Service) handleButton(ctx context.Context, ev Event) error {
	switch a := ev.Action.(type) {
	case chat.StartQuiz:
		var errs []error
		if !ev.Message.IsZero() {
			errs = append(errs, s.delete(ctx, ev.Message))
		}
		screen := s.quiz.Start(ctx, ev.UserID)
		_, err := s.send(ctx, ev.ChatID, screen.Prompt)
		return errors.Join(append(errs, err)...)

	case chat.Answer:
		screen := s.quiz.Answer(ctx, ev.UserID, a.Question, a.Option)
		if screen.Unchanged {
			return nil
		}
		if ev.Message.IsZero() {
			_, err := s.send(ctx, ev.ChatID, screen.Prompt)
			return err
		}
		if err := s.transport.EditPrompt(ctx, ev.Message, screen.Prompt); err != nil {
			return fmt.Errorf("clinic: edit quiz screen: %w", err)
		}
		return nil

	case chat.MainMenu:
		s.quiz.Quit(ev.UserID)
		_, err := s.send(ctx, ev.ChatID, welcomePrompt(ev.FirstName))
		if ev.Message.IsZero() {
			return err
		}
		return errors.Join(err, s.delete(ctx, ev.Message))

	case chat.ChooseScenario:
		_, err := s.send(ctx, ev.ChatID, s.scenarioPrompt())
		return err

	case chat.StartIntake:
		st, p := s.flow.Begin()
		s.intakes.Set(ev.UserID, st)
		logger.Debug(ctx, componentIntake, "intake.started", slog.String("state", st.Name()))
		_, err := s.send(ctx, ev.ChatID, p)
		return err

	case chat.MarkDone:
		return s.toggleDone(ctx, ev, a.RequestID, true)
	case chat.MarkUndone:
		return s.toggleDone(ctx, ev, a.RequestID, false)

	case chat.Agree, chat.WithPhoto, chat.WithoutPhoto, chat.CancelPhoto:
		return s.stepIntake(ctx, ev, intake.Button{Action: a})
	}

	logger.Debug(ctx, componentRouter, "button.ignored", slog.String("status", "skip"))
	return nil
}

func (s *Service) stepIntake(ctx context.Context, ev Event, in intake.Input) error {
	cur, _ := s.intakes.Get(ev.UserID)
	out := s.flow.Step(cur, in)
	if !out.Handled {
		attrs := []slog.Attr{slog.String("status", "skip"), slog.String("kind", ev.Kind.String())}
		if cur != nil {
			attrs = append(attrs, slog.String("state", cur.Name()))
		}
		logger.Debug(ctx, componentIntake, "input.ignored", attrs...)
		return nil
	}

	if out.Next == nil {
		s.intakes.Delete(ev.UserID)
	} else {
		s.intakes.Set(ev.UserID, out.Next)
	}
	logger.Debug(ctx, componentIntake, "intake.step",
		slog.String("state", stateName(cur)),
		slog.String("next_state", stateName(out.Next)),
		slog.String("kind", ev.Kind.String()),
	)

	var errs []error
	for _, p := range out.Replies {
		if _, err := s.send(ctx, ev.ChatID, p); err != nil {
			errs = append(errs, err)
		}
	}
	if out.Submit != nil {
		errs = append(errs, s.submit(ctx, ev, *out.Submit))
	}
	return errors.Join(errs...)
}

func (s *Service) submit(ctx context.Context, ev Event, sub intake.Submission) error {
	req := intake.NewRequest(s.newID(), ev.UserID, sub, s.now())
	p := intake.OperatorPrompt(req)

	var notifyErr error
	if req.HasPhoto() {
		notifyErr = s.transport.SendOperatorPhoto(ctx, req.PhotoFileID, p)
	} else {
		notifyErr = s.transport.SendOperatorNotification(ctx, p)
	}
	if notifyErr != nil {
		notifyErr = fmt.Errorf("clinic: notify operator: %w", notifyErr)
		logger.Error(ctx, componentIntake, "notify.failed",
			append([]slog.Attr{
				slog.String("status", "fail"),
				slog.String("request_id", req.ID),
			}, logger.Err(notifyErr)...)...,
		)
	}

	if s.journal != nil {
		if err := s.journal.Record(ctx, req); err != nil {
			logger.Warn(ctx, componentIntake, "journal.record_failed",
				append([]slog.Attr{slog.String("request_id", req.ID)}, logger.Err(err)...)...,
			)
		}
	}

	logger.Info(ctx, componentIntake, "request.submitted",
		slog.String("status", logger.Status(notifyErr)),
		slog.String("request_id", req.ID),
		slog.Bool("photo", req.HasPhoto()),
	)

	_, ackErr := s.send(ctx, ev.ChatID, chat.Prompt{Text: intake.SubmittedText})
	return errors.Join(notifyErr, ackErr)
}

func (s *Service) toggleDone(ctx context.Context, ev Event, requestID string, done bool) error {
	if ev.ChatID != s.operatorID {
		logger.Warn(ctx, componentIntake, "toggle.rejected",
			slog.String("status", "skip"),
			slog.String("reason", "not_operator_chat"),
		)
		return nil
	}
	if s.journal != nil && requestID != "" {
		if err := s.journal.SetDone(ctx, requestID, done); err != nil {
			logger.Warn(ctx, componentIntake, "journal.toggle_failed",
				append([]slog.Attr{slog.String("request_id", requestID)}, logger.Err(err)...)...,
			)
		}
	}
	if err := s.transport.EditOptions(ctx, ev.Message, intake.DoneOptions(requestID, done)); err != nil {
		return fmt.Errorf("clinic: toggle done: %w", err)
	}
	return nil
}

func (s *Service) send(ctx context.Context, chatID int64, p chat.Prompt) (chat.MessageRef, error) {
	ref, err := s.transport.SendPrompt(ctx, chatID, p)
	if err != nil {
		return ref, fmt.Errorf("clinic: send prompt: %w", err)
	}
	return ref, nil
}

func (s *Service) delete(ctx context.Context, ref chat.MessageRef) error {
	if err := s.transport.DeletePrompt(ctx, ref); err != nil {
		return fmt.Errorf("clinic: delete prompt: %w", err)
	}
	return nil
}

func (s *Service) scenarioPrompt() chat.Prompt {
	row := chat.Row(chat.Button(telegramFormLabel, chat.StartIntake{}))
	if s.bookingURL != "" {
		row = append(row, chat.Link(siteLabel, s.bookingURL))
	}
	return chat.Prompt{Text: scenarioText, Options: [][]chat.Option{row}}
}

func welcomePrompt(firstName string) chat.Prompt {
	greeting := "Здравствуйте! 🌿"
	if name := strings.TrimSpace(firstName); name != "" {
		greeting = name + ", здравствуйте! 🌿"
	}
	return chat.Prompt{
		Text: greeting + "\n\n" + welcomeBody,
		Options: [][]chat.Option{chat.Row(
			chat.Button(startQuizLabel, chat.StartQuiz{}),
			chat.Button(bookLabel, chat.ChooseScenario{}),
		)},
	}
}

func stateName(st intake.State) string {
	if st == nil {
		return "none"
	}
	return st.Name()
}
