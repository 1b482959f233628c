package intake

import (
	"strings"
	"testing"

	"pgregory.net/rapid"

	"github.com/m3rciful/clinicbot/internal/chat"
)

func newTestFlow() *Flow {
	return NewFlow(Options{PolicyURL: "https://example.org/policy"})
}

func TestBeginOffersAgreement(t *testing.T) {
	st, p := newTestFlow().Begin()
	if _, ok := st.(AwaitingAgreement); !ok {
		t.Fatalf("unexpected state %T", st)
	}
	row := p.Options[0]
	if len(row) != 2 || row[0].Action != (chat.Agree{}) || row[1].URL != "https://example.org/policy" {
		t.Fatalf("unexpected agreement keyboard %#v", row)
	}
}

func TestAgreementRepromptsOnText(t *testing.T) {
	f := newTestFlow()
	out := f.Step(AwaitingAgreement{}, Text{Value: "Иванов Иван"})
	if _, ok := out.Next.(AwaitingAgreement); !ok || !out.Handled {
		t.Fatalf("expected agreement re-prompt, got %+v", out)
	}
	if out.Replies[0].Text != introText {
		t.Fatalf("unexpected reply %q", out.Replies[0].Text)
	}
}

func TestAgreeRestartsFromAnyState(t *testing.T) {
	f := newTestFlow()
	for _, st := range []State{nil, AwaitingAgreement{}, AwaitingPhone{FullName: "Иванов Иван"}, AwaitingPhoto{FullName: "Иванов Иван", Phone: "89991234567"}} {
		out := f.Step(st, Button{Action: chat.Agree{}})
		if _, ok := out.Next.(AwaitingFullName); !ok {
			t.Fatalf("from %T: expected AwaitingFullName, got %T", st, out.Next)
		}
	}
}

func TestValidFullNameAdvances(t *testing.T) {
	out := newTestFlow().Step(AwaitingFullName{}, Text{Value: "  Иванов   Иван  "})
	next, ok := out.Next.(AwaitingPhone)
	if !ok {
		t.Fatalf("expected AwaitingPhone, got %T", out.Next)
	}
	if next.FullName != "Иванов Иван" {
		t.Fatalf("name not normalized: %q", next.FullName)
	}
	if out.Replies[0].Text != askPhoneText {
		t.Fatalf("unexpected reply %q", out.Replies[0].Text)
	}
}

func TestInvalidFullNameStays(t *testing.T) {
	f := newTestFlow()
	for _, in := range []Input{Text{Value: "иванов иван"}, Text{Value: "Ivanov Ivan"}, Photo{FileID: "x"}} {
		out := f.Step(AwaitingFullName{}, in)
		if _, ok := out.Next.(AwaitingFullName); !ok {
			t.Fatalf("input %#v: expected to stay, got %T", in, out.Next)
		}
		if out.Replies[0].Text != badNameText {
			t.Fatalf("unexpected reply %q", out.Replies[0].Text)
		}
	}
}

func TestValidPhoneOffersPhoto(t *testing.T) {
	out := newTestFlow().Step(AwaitingPhone{FullName: "Иванов Иван"}, Text{Value: "+7 (999) 123-45-67"})
	next, ok := out.Next.(AwaitingPhotoChoice)
	if !ok {
		t.Fatalf("expected AwaitingPhotoChoice, got %T", out.Next)
	}
	if next.Phone != "+7 (999) 123-45-67" || next.FullName != "Иванов Иван" {
		t.Fatalf("unexpected state %+v", next)
	}
	if len(out.Replies[0].Options) != 2 {
		t.Fatalf("expected photo choice keyboard")
	}
}

func TestInvalidPhoneStays(t *testing.T) {
	out := newTestFlow().Step(AwaitingPhone{FullName: "Иванов Иван"}, Text{Value: "12345"})
	if _, ok := out.Next.(AwaitingPhone); !ok {
		t.Fatalf("expected AwaitingPhone, got %T", out.Next)
	}
	if out.Replies[0].Text != badPhoneText {
		t.Fatalf("unexpected reply %q", out.Replies[0].Text)
	}
}

func TestSkipPhotoSubmits(t *testing.T) {
	out := newTestFlow().Step(AwaitingPhotoChoice{FullName: "Иванов Иван", Phone: "89991234567"}, Button{Action: chat.WithoutPhoto{}})
	if out.Next != nil || out.Submit == nil {
		t.Fatalf("expected submission, got %+v", out)
	}
	if out.Submit.PhotoFileID != "" {
		t.Fatal("skip must not attach a photo")
	}
}

func TestPhotoChoiceRepromptsOnMessages(t *testing.T) {
	st := AwaitingPhotoChoice{FullName: "Иванов Иван", Phone: "89991234567"}
	out := newTestFlow().Step(st, Text{Value: "да"})
	if out.Next != st || out.Replies[0].Text != repeatChoiceText {
		t.Fatalf("unexpected outcome %+v", out)
	}
}

func TestPhotoAccepted(t *testing.T) {
	f := newTestFlow()
	st := AwaitingPhoto{FullName: "Иванов Иван", Phone: "89991234567"}
	out := f.Step(st, Photo{FileID: "file-1", Size: DefaultMaxPhotoBytes})
	if out.Submit == nil || out.Submit.PhotoFileID != "file-1" {
		t.Fatalf("expected submission with photo, got %+v", out)
	}
}

func TestPhotoTooLarge(t *testing.T) {
	st := AwaitingPhoto{FullName: "Иванов Иван", Phone: "89991234567"}
	out := newTestFlow().Step(st, Photo{FileID: "big", Size: DefaultMaxPhotoBytes + 1})
	if out.Next != st || out.Submit != nil {
		t.Fatalf("oversized photo should keep state, got %+v", out)
	}
	if !strings.Contains(out.Replies[0].Text, "максимум 10МБ") {
		t.Fatalf("unexpected reply %q", out.Replies[0].Text)
	}
	if out.Replies[0].Options[0][0].Action != (chat.CancelPhoto{}) {
		t.Fatal("expected cancel keyboard")
	}
}

func TestPhotoLimitText(t *testing.T) {
	cases := map[int64]string{
		10 * 1024 * 1024:  "максимум 10МБ",
		1536 * 1024:       "максимум 1,5МБ",
		512 * 1024:        "максимум 512КБ",
		1000:              "максимум 1000Б",
		2*1024*1024 + 100: "максимум 2МБ",
	}
	for limit, want := range cases {
		st := AwaitingPhoto{FullName: "Иванов Иван", Phone: "89991234567"}
		out := NewFlow(Options{MaxPhotoBytes: limit}).Step(st, Photo{FileID: "big", Size: limit + 1})
		if len(out.Replies) != 1 || !strings.Contains(out.Replies[0].Text, want) {
			t.Fatalf("limit %d: want %q in %+v", limit, want, out.Replies)
		}
	}
}

func TestCancelPhotoAcknowledgesAndSubmits(t *testing.T) {
	out := newTestFlow().Step(AwaitingPhoto{FullName: "Иванов Иван", Phone: "89991234567"}, Button{Action: chat.CancelPhoto{}})
	if out.Submit == nil || out.Submit.PhotoFileID != "" {
		t.Fatalf("expected photo-less submission, got %+v", out)
	}
	if len(out.Replies) != 1 || out.Replies[0].Text != photoCanceledText {
		t.Fatalf("expected cancel acknowledgement, got %+v", out.Replies)
	}
}

func TestPhotoStateRepromptsOnOtherMedia(t *testing.T) {
	st := AwaitingPhoto{FullName: "Иванов Иван", Phone: "89991234567"}
	for _, in := range []Input{Text{Value: "вот"}, Media{Kind: "document"}} {
		out := newTestFlow().Step(st, in)
		if out.Next != st || out.Replies[0].Text != repeatChoiceText {
			t.Fatalf("input %#v: unexpected outcome %+v", in, out)
		}
	}
}

func TestInactiveFlowIgnoresInput(t *testing.T) {
	f := newTestFlow()
	for _, in := range []Input{Text{Value: "привет"}, Photo{FileID: "x"}, Button{Action: chat.WithoutPhoto{}}} {
		out := f.Step(nil, in)
		if out.Handled || out.Next != nil {
			t.Fatalf("input %#v should be ignored, got %+v", in, out)
		}
	}
}

func TestStateScopedButtonsIgnoredElsewhere(t *testing.T) {
	out := newTestFlow().Step(AwaitingFullName{}, Button{Action: chat.CancelPhoto{}})
	if out.Handled {
		t.Fatal("cancel photo should not apply while asking for a name")
	}
	if _, ok := out.Next.(AwaitingFullName); !ok {
		t.Fatalf("state must be kept, got %T", out.Next)
	}
}

func TestCompletionNeedsNameAndPhone(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		f := newTestFlow()
		inputs := []Input{
			Text{Value: "Иванов Иван"},
			Text{Value: "nope"},
			Text{Value: "89991234567"},
			Photo{FileID: "p", Size: 100},
			Photo{FileID: "big", Size: DefaultMaxPhotoBytes * 2},
			Media{Kind: "sticker"},
			Button{Action: chat.Agree{}},
			Button{Action: chat.WithPhoto{}},
			Button{Action: chat.WithoutPhoto{}},
			Button{Action: chat.CancelPhoto{}},
		}
		var st State
		steps := rapid.IntRange(1, 30).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			in := rapid.SampledFrom(inputs).Draw(rt, "input")
			out := f.Step(st, in)
			if out.Submit != nil {
				if out.Submit.FullName != "Иванов Иван" || out.Submit.Phone != "89991234567" {
					rt.Fatalf("submitted unvalidated data %+v", out.Submit)
				}
			}
			st = out.Next
		}
	})
}

func TestOperatorPrompt(t *testing.T) {
	req := Request{ID: "r1", UserID: 42, FullName: "Иванов Иван", Phone: "89991234567"}
	p := OperatorPrompt(req)
	for _, want := range []string{"Клиент: Иванов Иван", "Телефон: 89991234567", "ID пользователя: 42", noPhotoNote} {
		if !strings.Contains(p.Text, want) {
			t.Fatalf("missing %q in %q", want, p.Text)
		}
	}
	if p.Options[0][0].Action != (chat.MarkDone{RequestID: "r1"}) {
		t.Fatalf("unexpected toggle %#v", p.Options[0][0].Action)
	}

	req.PhotoFileID = "photo"
	if strings.Contains(OperatorPrompt(req).Text, noPhotoNote) {
		t.Fatal("photo note must be absent when a photo is attached")
	}
}

func TestDoneOptionsToggle(t *testing.T) {
	done := DoneOptions("r1", true)[0][0]
	if done.Label != markUndoneLabel || done.Action != (chat.MarkUndone{RequestID: "r1"}) {
		t.Fatalf("unexpected done button %#v", done)
	}
	undone := DoneOptions("r1", false)[0][0]
	if undone.Label != markDoneLabel {
		t.Fatalf("unexpected undone button %#v", undone)
	}
}
