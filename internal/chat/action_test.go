package chat

import (
	"errors"
	"testing"

	"pgregory.net/rapid"
)

func TestDecodeLiteralKeys(t *testing.T) {
	cases := []struct {
		key  string
		want Action
	}{
		{KeyStartQuiz, StartQuiz{}},
		{KeyMainMenu, MainMenu{}},
		{KeyChooseScenario, ChooseScenario{}},
		{KeyStartIntake, StartIntake{}},
		{KeyAgree, Agree{}},
		{KeyWithPhoto, WithPhoto{}},
		{KeyWithoutPhoto, WithoutPhoto{}},
		{KeyCancelPhoto, CancelPhoto{}},
	}
	for _, tc := range cases {
		got, err := Decode(tc.key, "")
		if err != nil {
			t.Fatalf("Decode(%q): %v", tc.key, err)
		}
		if got != tc.want {
			t.Fatalf("Decode(%q) = %#v, want %#v", tc.key, got, tc.want)
		}
	}
}

func TestDecodeAnswer(t *testing.T) {
	got, err := Decode(KeyAnswer, "3_1")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got != (Answer{Question: 3, Option: 1}) {
		t.Fatalf("unexpected action %#v", got)
	}

	for _, bad := range []string{"", "3", "a_1", "1_b", "-1_0", "1_-2"} {
		if _, err := Decode(KeyAnswer, bad); !errors.Is(err, ErrBadPayload) {
			t.Fatalf("payload %q: expected ErrBadPayload, got %v", bad, err)
		}
	}
}

func TestDecodeUnknownKey(t *testing.T) {
	if _, err := Decode("nope", ""); !errors.Is(err, ErrUnknownAction) {
		t.Fatalf("expected ErrUnknownAction, got %v", err)
	}
}

func TestMarkDoneCarriesRequestID(t *testing.T) {
	a, err := Decode(KeyMarkDone, "req-1")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if a.(MarkDone).RequestID != "req-1" {
		t.Fatalf("unexpected action %#v", a)
	}
}

func TestAnswerPayloadDecodesBack(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		a := Answer{
			Question: rapid.IntRange(0, 1000).Draw(rt, "question"),
			Option:   rapid.IntRange(0, 50).Draw(rt, "option"),
		}
		got, err := Decode(a.Key(), a.Payload())
		if err != nil {
			rt.Fatalf("Decode: %v", err)
		}
		if got != a {
			rt.Fatalf("got %#v want %#v", got, a)
		}
	})
}

func TestEveryKeyDecodes(t *testing.T) {
	for _, key := range Keys() {
		payload := ""
		if key == KeyAnswer {
			payload = "0_0"
		}
		a, err := Decode(key, payload)
		if err != nil {
			t.Fatalf("Decode(%q): %v", key, err)
		}
		if a.Key() != key {
			t.Fatalf("key mismatch: %q vs %q", a.Key(), key)
		}
	}
}

func TestPromptHasOptions(t *testing.T) {
	if (Prompt{Text: "x"}).HasOptions() {
		t.Fatal("plain prompt should have no options")
	}
	if (Prompt{Options: [][]Option{{}}}).HasOptions() {
		t.Fatal("empty rows do not count as options")
	}
	p := Prompt{Options: [][]Option{Row(Button("a", StartQuiz{}))}}
	if !p.HasOptions() {
		t.Fatal("expected options")
	}
}
