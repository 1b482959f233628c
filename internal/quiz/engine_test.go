package quiz

import (
	"context"
	"errors"
	"strings"
	"testing"

	"pgregory.net/rapid"

	"github.com/m3rciful/clinicbot/internal/chat"
	"github.com/m3rciful/clinicbot/internal/session"
)

func testQuestions() []Question {
	yesNo := []Choice{{Label: "Да", Affirmative: true}, {Label: "Иногда", Affirmative: true}, {Label: "Нет"}}
	return []Question{
		{Prompt: "Тяжесть в ногах?", Options: yesNo},
		{Prompt: "Отёки?", Options: yesNo},
		{Prompt: "Звёздочки?", Options: yesNo},
	}
}

func newTestEngine() (*Engine, *session.Store) {
	store := session.NewStore(session.Options{})
	return NewEngine(testQuestions(), store), store
}

func TestPluralize(t *testing.T) {
	cases := map[int]string{
		1:   "1 положительный ответ",
		2:   "2 положительных ответа",
		3:   "3 положительных ответа",
		4:   "4 положительных ответа",
		5:   "5 положительных ответов",
		11:  "11 положительных ответов",
		12:  "12 положительных ответов",
		14:  "14 положительных ответов",
		20:  "20 положительных ответов",
		21:  "21 положительный ответ",
		22:  "22 положительных ответа",
		111: "111 положительных ответов",
		112: "112 положительных ответов",
	}
	for n, want := range cases {
		if got := Pluralize(n); got != want {
			t.Fatalf("Pluralize(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestPluralizeCycle(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 10000).Draw(rt, "n")
		if Pluralize(n) != Pluralize(n+100) {
			rt.Fatalf("forms for %d and %d differ", n, n+100)
		}
	})
}

func TestPresentFirstQuestion(t *testing.T) {
	e, _ := newTestEngine()
	screen := e.Start(context.Background(), 7)
	if !strings.HasPrefix(screen.Prompt.Text, "Вопрос №1\n\n") {
		t.Fatalf("unexpected text %q", screen.Prompt.Text)
	}
	if len(screen.Prompt.Options) != 3 {
		t.Fatalf("expected one row per option, got %d", len(screen.Prompt.Options))
	}
	second := screen.Prompt.Options[1][0]
	if second.Action != (chat.Answer{Question: 0, Option: 1}) {
		t.Fatalf("unexpected action %#v", second.Action)
	}
}

func TestCompletionAllNegative(t *testing.T) {
	e, store := newTestEngine()
	ctx := context.Background()
	e.Start(ctx, 1)
	var screen Screen
	for q := 0; q < e.Len(); q++ {
		screen = e.Answer(ctx, 1, q, 2)
	}
	if !screen.Completed || screen.Affirmative != 0 {
		t.Fatalf("unexpected screen %+v", screen)
	}
	if screen.Prompt.Text != healthyText {
		t.Fatalf("unexpected text %q", screen.Prompt.Text)
	}
	if _, ok := store.Get(1); ok {
		t.Fatal("session should be destroyed after completion")
	}
	row := screen.Prompt.Options[0]
	if len(row) != 2 || row[0].Action != (chat.ChooseScenario{}) || row[1].Action != (chat.MainMenu{}) {
		t.Fatalf("unexpected summary keyboard %#v", row)
	}
}

func TestCompletionWithAffirmative(t *testing.T) {
	e, _ := newTestEngine()
	ctx := context.Background()
	e.Start(ctx, 1)
	e.Answer(ctx, 1, 0, 0)
	e.Answer(ctx, 1, 1, 1)
	screen := e.Answer(ctx, 1, 2, 2)
	want := "У вас 2 положительных ответа, рекомендуем обратиться к флебологу за консультацией"
	if screen.Prompt.Text != want {
		t.Fatalf("got %q", screen.Prompt.Text)
	}
}

func TestAnswerOutOfRangeRepresentsCurrent(t *testing.T) {
	e, store := newTestEngine()
	ctx := context.Background()
	e.Start(ctx, 1)
	e.Answer(ctx, 1, 0, 0)

	screen := e.Answer(ctx, 1, 1, 9)
	if screen.Index != 1 || screen.Completed {
		t.Fatalf("expected question 2 re-presented, got %+v", screen)
	}
	screen = e.Answer(ctx, 1, 0, 1)
	if screen.Index != 1 {
		t.Fatalf("stale press should re-present question 2, got %d", screen.Index)
	}
	if sess, _ := store.Get(1); len(sess.Answers) != 1 {
		t.Fatalf("answers changed on invalid press: %v", sess.Answers)
	}
}

func TestAnswerWithoutSessionCreatesOne(t *testing.T) {
	e, store := newTestEngine()
	screen := e.Answer(context.Background(), 3, 0, 2)
	if screen.Index != 1 {
		t.Fatalf("expected second question, got %d", screen.Index)
	}
	if _, ok := store.Get(3); !ok {
		t.Fatal("session should be created lazily")
	}
}

func TestAnswersStayValid(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		e, store := newTestEngine()
		ctx := context.Background()
		e.Start(ctx, 1)
		presses := rapid.IntRange(0, 10).Draw(rt, "presses")
		for i := 0; i < presses; i++ {
			q := rapid.IntRange(-1, 4).Draw(rt, "q")
			o := rapid.IntRange(-1, 4).Draw(rt, "o")
			if e.Answer(ctx, 1, q, o).Completed {
				return
			}
			sess, _ := store.Get(1)
			for idx, a := range sess.Answers {
				if a < 0 || a >= len(e.questions[idx].Options) {
					rt.Fatalf("answer %d=%d out of range", idx, a)
				}
			}
		}
	})
}

func TestEmbeddedQuestionnaire(t *testing.T) {
	qs, err := LoadQuestions("")
	if err != nil {
		t.Fatalf("LoadQuestions: %v", err)
	}
	if len(qs) == 0 {
		t.Fatal("embedded questionnaire is empty")
	}
	for i, q := range qs {
		affirmative := false
		for _, o := range q.Options {
			affirmative = affirmative || o.Affirmative
		}
		if !affirmative {
			t.Fatalf("question %d has no affirmative option", i+1)
		}
	}
}

func TestParseQuestionsRejectsInvalid(t *testing.T) {
	if _, err := ParseQuestions([]byte("questions: []")); !errors.Is(err, ErrEmptyQuestionnaire) {
		t.Fatalf("expected ErrEmptyQuestionnaire, got %v", err)
	}
	if _, err := ParseQuestions([]byte("questions:\n  - prompt: \"x\"\n")); err == nil {
		t.Fatal("question without options should fail")
	}
	if _, err := ParseQuestions([]byte("questions: [")); err == nil {
		t.Fatal("broken yaml should fail")
	}
}

func TestAnswerAfterSummaryLeavesScreen(t *testing.T) {
	e, store := newTestEngine()
	ctx := context.Background()
	e.Start(ctx, 1)
	e.Answer(ctx, 1, 0, 2)
	e.Answer(ctx, 1, 1, 2)
	if screen := e.Answer(ctx, 1, 2, 2); !screen.Completed {
		t.Fatalf("expected summary, got %+v", screen)
	}

	screen := e.Answer(ctx, 1, 2, 2)
	if !screen.Unchanged || screen.Completed {
		t.Fatalf("repeated last press must leave the summary alone, got %+v", screen)
	}
	if _, ok := store.Get(1); ok {
		t.Fatal("repeated press must not recreate a session")
	}

	// The first question still works without a session, e.g. after eviction.
	if screen := e.Answer(ctx, 1, 0, 0); screen.Unchanged || screen.Index != 1 {
		t.Fatalf("first answer should start over lazily, got %+v", screen)
	}
}
