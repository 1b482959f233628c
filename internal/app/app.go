// Package app composes the clinic bot from configuration.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/m3rciful/clinicbot/core/bootstrap"
	corecmd "github.com/m3rciful/clinicbot/core/cmd"
	coreconfig "github.com/m3rciful/clinicbot/core/config"
	"github.com/m3rciful/clinicbot/core/logger"
	coretelegram "github.com/m3rciful/clinicbot/core/telegram"
	tgsender "github.com/m3rciful/clinicbot/core/telegram/sender"
	"github.com/m3rciful/clinicbot/internal/archive"
	"github.com/m3rciful/clinicbot/internal/clinic"
	"github.com/m3rciful/clinicbot/internal/intake"
	"github.com/m3rciful/clinicbot/internal/quiz"
	"github.com/m3rciful/clinicbot/internal/session"
	"github.com/m3rciful/clinicbot/internal/tgbot"
)

// App holds the long-lived pieces shared by the bot runtime.
type App struct {
	cfg       *coreconfig.Config
	infra     *bootstrap.Result
	questions []quiz.Question
	sessions  *session.Store
	journal   *archive.Repository

	stopSweeper context.CancelFunc
	sweeperDone sync.WaitGroup
}

// Bootstrap initializes logging, the optional archive and the questionnaire.
func Bootstrap(ctx context.Context, cfg *coreconfig.Config) (corecmd.TelegramApp, error) {
	infra, err := bootstrap.Run(ctx, bootstrap.Options{Config: cfg})
	if err != nil {
		return nil, err
	}
	questions, err := quiz.LoadQuestions(cfg.Clinic.QuestionsFile)
	if err != nil {
		_ = infra.Close()
		return nil, fmt.Errorf("app: %w", err)
	}
	logger.Info(ctx, "app", "questions.loaded",
		slog.Int("questions", len(questions)),
		slog.Bool("embedded", cfg.Clinic.QuestionsFile == ""),
	)

	a := &App{
		cfg:       cfg,
		infra:     infra,
		questions: questions,
		sessions: session.NewStore(session.Options{
			IdleTimeout:   cfg.Sessions.IdleTimeout,
			SweepInterval: cfg.Sessions.SweepInterval,
		}),
	}
	if infra.DB != nil {
		a.journal = archive.NewRepository(infra.DB)
		_ = logOpenRequests(ctx, a.journal)
	}
	return a, nil
}

type openCounter interface {
	CountOpen(ctx context.Context) (int, error)
}

// logOpenRequests reports the archived requests still waiting for an operator.
// A failed count is logged and returned but does not stop the bot.
func logOpenRequests(ctx context.Context, c openCounter) error {
	n, err := c.CountOpen(ctx)
	if err != nil {
		logger.Warn(ctx, "app", "archive.open",
			append([]slog.Attr{slog.String("status", "fail")}, logger.Err(err)...)...,
		)
		return err
	}
	logger.Info(ctx, "app", "archive.open", slog.Int("open", n))
	return nil
}

// TelegramRunOptions builds the bot, the service and its routes.
func (a *App) TelegramRunOptions(_ context.Context) (coretelegram.RunOptions, error) {
	bot, err := coretelegram.BuildBot(a.cfg)
	if err != nil {
		return coretelegram.RunOptions{}, err
	}
	dispatcher := tgsender.NewDispatcher(tgsender.Options{Workers: 2})
	operator := a.cfg.Telegram.OperatorChatID

	opts := clinic.Options{
		Transport:      tgbot.NewTransport(bot, dispatcher, operator),
		Quiz:           quiz.NewEngine(a.questions, a.sessions),
		Flow:           intake.NewFlow(intake.Options{MaxPhotoBytes: a.cfg.Clinic.MaxPhotoBytes, PolicyURL: a.cfg.Clinic.PolicyURL}),
		OperatorChatID: operator,
		BookingURL:     a.cfg.Clinic.BookingURL,
	}
	if a.journal != nil {
		opts.Journal = a.journal
	}
	svc, err := clinic.NewService(opts)
	if err != nil {
		dispatcher.Close()
		return coretelegram.RunOptions{}, fmt.Errorf("app: %w", err)
	}

	reg := coretelegram.NewRegistry()
	tb := tgbot.New(svc, operator)
	if err := tb.Register(reg); err != nil {
		dispatcher.Close()
		return coretelegram.RunOptions{}, fmt.Errorf("app: %w", err)
	}

	return coretelegram.RunOptions{
		Config:      a.cfg,
		Registry:    reg,
		Bot:         bot,
		Dispatcher:  dispatcher,
		Middlewares: coretelegram.DefaultMiddlewares(),
		Routes:      tb.Routes(reg),
		OnStart:     a.startSweeper,
		OnStop:      a.stop,
	}, nil
}

func (a *App) startSweeper(ctx context.Context, _ coretelegram.Runtime) error {
	ctx, a.stopSweeper = context.WithCancel(ctx)
	a.sweeperDone.Add(1)
	go func() {
		defer a.sweeperDone.Done()
		a.sessions.Run(ctx)
	}()
	return nil
}

func (a *App) stop(context.Context, coretelegram.Runtime) error {
	if a.stopSweeper != nil {
		a.stopSweeper()
	}
	a.sweeperDone.Wait()
	return nil
}

// Close releases the archive connection.
func (a *App) Close() error {
	return a.infra.Close()
}
