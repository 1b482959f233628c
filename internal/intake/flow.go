// Package intake implements the appointment request conversation:
// agreement, full name, phone and an optional photo.
package intake

import (
	"time"

	"github.com/m3rciful/clinicbot/internal/chat"
	"github.com/m3rciful/clinicbot/internal/validate"
)

// DefaultMaxPhotoBytes bounds accepted photos when Options leaves it unset.
const DefaultMaxPhotoBytes int64 = 10 * 1024 * 1024

// State is the position of a user inside the flow. The set of implementations is closed.
type State interface {
	Name() string
	isState()
}

type (
	AwaitingAgreement struct{}
	AwaitingFullName  struct{}
	AwaitingPhone     struct{ FullName string }

	AwaitingPhotoChoice struct {
		FullName string
		Phone    string
	}

	AwaitingPhoto struct {
		FullName string
		Phone    string
	}
)

func (AwaitingAgreement) Name() string   { return "awaiting_agreement" }
func (AwaitingFullName) Name() string    { return "awaiting_full_name" }
func (AwaitingPhone) Name() string       { return "awaiting_phone" }
func (AwaitingPhotoChoice) Name() string { return "awaiting_photo_choice" }
func (AwaitingPhoto) Name() string       { return "awaiting_photo" }

func (AwaitingAgreement) isState()   {}
func (AwaitingFullName) isState()    {}
func (AwaitingPhone) isState()       {}
func (AwaitingPhotoChoice) isState() {}
func (AwaitingPhoto) isState()       {}

// Input is something the user did while a flow may be active.
type Input interface{ isInput() }

type (
	// Text is a plain text message.
	Text struct{ Value string }
	// Photo is a photo message; FileID refers to the largest size.
	Photo struct {
		FileID string
		Size   int64
	}
	// Media is any other non-text message.
	Media struct{ Kind string }
	// Button is a decoded button press.
	Button struct{ Action chat.Action }
)

func (Text) isInput()   {}
func (Photo) isInput()  {}
func (Media) isInput()  {}
func (Button) isInput() {}

// Submission is the validated data collected by a completed flow.
type Submission struct {
	FullName    string
	Phone       string
	PhotoFileID string
}

// Request is a submission stamped for delivery to the operator chat.
type Request struct {
	ID          string
	UserID      int64
	FullName    string
	Phone       string
	PhotoFileID string
	SubmittedAt time.Time
}

// HasPhoto reports whether the request carries a photo.
func (r Request) HasPhoto() bool {
	return r.PhotoFileID != ""
}

// NewRequest stamps a submission.
func NewRequest(id string, userID int64, sub Submission, at time.Time) Request {
	return Request{
		ID:          id,
		UserID:      userID,
		FullName:    sub.FullName,
		Phone:       sub.Phone,
		PhotoFileID: sub.PhotoFileID,
		SubmittedAt: at,
	}
}

// Outcome describes the effect of one input.
type Outcome struct {
	// Handled is false when the input does not apply to the current state.
	Handled bool
	// Next is the state to keep; nil clears the flow.
	Next State
	// Replies are sent to the user in order, before any submission.
	Replies []chat.Prompt
	// Submit is set when the flow completed.
	Submit *Submission
}

// Options configure a Flow.
type Options struct {
	MaxPhotoBytes int64
	PolicyURL     string
}

// Flow holds the transition rules. It keeps no per-user data.
type Flow struct {
	maxPhotoBytes int64
	policyURL     string
}

// NewFlow constructs a flow.
func NewFlow(opts Options) *Flow {
	if opts.MaxPhotoBytes <= 0 {
		opts.MaxPhotoBytes = DefaultMaxPhotoBytes
	}
	return &Flow{maxPhotoBytes: opts.MaxPhotoBytes, policyURL: opts.PolicyURL}
}

// Begin opens the flow with the agreement screen.
func (f *Flow) Begin() (State, chat.Prompt) {
	return AwaitingAgreement{}, introPrompt(f.policyURL)
}

// Step applies in to st. st may be nil when no flow is active.
func (f *Flow) Step(st State, in Input) Outcome {
	if b, ok := in.(Button); ok {
		if _, agree := b.Action.(chat.Agree); agree {
			return reply(AwaitingFullName{}, chat.Prompt{Text: askNameText})
		}
	}

	switch s := st.(type) {
	case AwaitingAgreement:
		if _, ok := in.(Button); ok {
			return Outcome{Next: s}
		}
		return reply(s, introPrompt(f.policyURL))

	case AwaitingFullName:
		switch v := in.(type) {
		case Text:
			if !validate.IsValidFullName(v.Value) {
				return reply(s, chat.Prompt{Text: badNameText})
			}
			return reply(AwaitingPhone{FullName: validate.NormalizeFullName(v.Value)}, chat.Prompt{Text: askPhoneText})
		case Button:
			return Outcome{Next: s}
		default:
			return reply(s, chat.Prompt{Text: badNameText})
		}

	case AwaitingPhone:
		switch v := in.(type) {
		case Text:
			if !validate.IsRussianPhoneNumber(v.Value) {
				return reply(s, chat.Prompt{Text: badPhoneText})
			}
			next := AwaitingPhotoChoice{FullName: s.FullName, Phone: v.Value}
			return reply(next, chat.Prompt{Text: askPhotoChoiceText, Options: photoChoiceOptions()})
		case Button:
			return Outcome{Next: s}
		default:
			return reply(s, chat.Prompt{Text: badPhoneText})
		}

	case AwaitingPhotoChoice:
		if b, ok := in.(Button); ok {
			switch b.Action.(type) {
			case chat.WithPhoto:
				return reply(AwaitingPhoto(s), chat.Prompt{Text: askPhotoText, Options: cancelPhotoOptions()})
			case chat.WithoutPhoto:
				return submit(Submission{FullName: s.FullName, Phone: s.Phone})
			}
			return Outcome{Next: s}
		}
		return reply(s, chat.Prompt{Text: repeatChoiceText, Options: photoChoiceOptions()})

	case AwaitingPhoto:
		return f.stepPhoto(s, in)
	}

	return Outcome{Next: st}
}

func (f *Flow) stepPhoto(s AwaitingPhoto, in Input) Outcome {
	base := Submission{FullName: s.FullName, Phone: s.Phone}
	switch v := in.(type) {
	case Photo:
		if v.Size > f.maxPhotoBytes {
			return reply(s, chat.Prompt{Text: tooLargeText(f.maxPhotoBytes), Options: cancelPhotoOptions()})
		}
		base.PhotoFileID = v.FileID
		return submit(base)
	case Button:
		switch v.Action.(type) {
		case chat.CancelPhoto:
			out := submit(base)
			out.Replies = []chat.Prompt{{Text: photoCanceledText}}
			return out
		case chat.WithoutPhoto:
			return submit(base)
		case chat.WithPhoto:
			return reply(s, chat.Prompt{Text: askPhotoText, Options: cancelPhotoOptions()})
		}
		return Outcome{Next: s}
	default:
		return reply(s, chat.Prompt{Text: repeatChoiceText, Options: photoChoiceOptions()})
	}
}

func reply(next State, p chat.Prompt) Outcome {
	return Outcome{Handled: true, Next: next, Replies: []chat.Prompt{p}}
}

func submit(sub Submission) Outcome {
	return Outcome{Handled: true, Submit: &sub}
}
