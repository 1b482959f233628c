package chat

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Callback keys used on inline buttons.
const (
	KeyStartQuiz      = "test_button"
	KeyAnswer         = "answer"
	KeyMainMenu       = "main_menu"
	KeyChooseScenario = "scenario_selection"
	KeyStartIntake    = "sign_up_to_doctor_tg"
	KeyAgree          = "agreement"
	KeyWithPhoto      = "with_photo"
	KeyWithoutPhoto   = "without_photo"
	KeyCancelPhoto    = "cancel_photo"
	KeyMarkDone       = "check_done"
	KeyMarkUndone     = "reverb_done_button"
)

// ErrUnknownAction is returned by Decode for keys no action owns.
var ErrUnknownAction = errors.New("chat: unknown action")

// ErrBadPayload is returned by Decode when a payload cannot be parsed.
var ErrBadPayload = errors.New("chat: malformed action payload")

// Action is a decoded button press. The set of implementations is closed.
type Action interface {
	// Key is the callback key the action is registered under.
	Key() string
	// Payload is the callback data carried next to the key.
	Payload() string
	isAction()
}

type (
	StartQuiz      struct{}
	MainMenu       struct{}
	ChooseScenario struct{}
	StartIntake    struct{}
	Agree          struct{}
	WithPhoto      struct{}
	WithoutPhoto   struct{}
	CancelPhoto    struct{}

	// Answer selects Option of Question, both zero based.
	Answer struct {
		Question int
		Option   int
	}

	// MarkDone flags the operator copy of a request as handled.
	MarkDone struct{ RequestID string }
	// MarkUndone reverts MarkDone.
	MarkUndone struct{ RequestID string }
)

func (StartQuiz) Key() string      { return KeyStartQuiz }
func (MainMenu) Key() string       { return KeyMainMenu }
func (ChooseScenario) Key() string { return KeyChooseScenario }
func (StartIntake) Key() string    { return KeyStartIntake }
func (Agree) Key() string          { return KeyAgree }
func (WithPhoto) Key() string      { return KeyWithPhoto }
func (WithoutPhoto) Key() string   { return KeyWithoutPhoto }
func (CancelPhoto) Key() string    { return KeyCancelPhoto }
func (Answer) Key() string         { return KeyAnswer }
func (MarkDone) Key() string       { return KeyMarkDone }
func (MarkUndone) Key() string     { return KeyMarkUndone }

func (StartQuiz) Payload() string      { return "" }
func (MainMenu) Payload() string       { return "" }
func (ChooseScenario) Payload() string { return "" }
func (StartIntake) Payload() string    { return "" }
func (Agree) Payload() string          { return "" }
func (WithPhoto) Payload() string      { return "" }
func (WithoutPhoto) Payload() string   { return "" }
func (CancelPhoto) Payload() string    { return "" }
func (a Answer) Payload() string       { return strconv.Itoa(a.Question) + "_" + strconv.Itoa(a.Option) }
func (a MarkDone) Payload() string     { return a.RequestID }
func (a MarkUndone) Payload() string   { return a.RequestID }

func (StartQuiz) isAction()      {}
func (MainMenu) isAction()       {}
func (ChooseScenario) isAction() {}
func (StartIntake) isAction()    {}
func (Agree) isAction()          {}
func (WithPhoto) isAction()      {}
func (WithoutPhoto) isAction()   {}
func (CancelPhoto) isAction()    {}
func (Answer) isAction()         {}
func (MarkDone) isAction()       {}
func (MarkUndone) isAction()     {}

// Keys lists every callback key in registration order.
func Keys() []string {
	return []string{
		KeyStartQuiz, KeyAnswer, KeyMainMenu, KeyChooseScenario, KeyStartIntake,
		KeyAgree, KeyWithPhoto, KeyWithoutPhoto, KeyCancelPhoto, KeyMarkDone, KeyMarkUndone,
	}
}

// Decode turns a callback key and payload back into an Action.
func Decode(key, payload string) (Action, error) {
	switch strings.TrimSpace(key) {
	case KeyStartQuiz:
		return StartQuiz{}, nil
	case KeyMainMenu:
		return MainMenu{}, nil
	case KeyChooseScenario:
		return ChooseScenario{}, nil
	case KeyStartIntake:
		return StartIntake{}, nil
	case KeyAgree:
		return Agree{}, nil
	case KeyWithPhoto:
		return WithPhoto{}, nil
	case KeyWithoutPhoto:
		return WithoutPhoto{}, nil
	case KeyCancelPhoto:
		return CancelPhoto{}, nil
	case KeyMarkDone:
		return MarkDone{RequestID: payload}, nil
	case KeyMarkUndone:
		return MarkUndone{RequestID: payload}, nil
	case KeyAnswer:
		return decodeAnswer(payload)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownAction, key)
}

func decodeAnswer(payload string) (Action, error) {
	q, o, ok := strings.Cut(payload, "_")
	if !ok {
		return nil, fmt.Errorf("%w: answer %q", ErrBadPayload, payload)
	}
	question, err := strconv.Atoi(q)
	if err != nil || question < 0 {
		return nil, fmt.Errorf("%w: answer question %q", ErrBadPayload, q)
	}
	option, err := strconv.Atoi(o)
	if err != nil || option < 0 {
		return nil, fmt.Errorf("%w: answer option %q", ErrBadPayload, o)
	}
	return Answer{Question: question, Option: option}, nil
}
