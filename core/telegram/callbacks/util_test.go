package callbacks

import (
	"testing"

	tele "gopkg.in/telebot.v4"
)

func TestParseData(t *testing.T) {
	cases := []struct {
		raw, key, payload string
	}{
		{"\fanswer|2_1", "answer", "2_1"},
		{"\fmain_menu", "main_menu", ""},
		{"\fcheck_done|a|b", "check_done", "a|b"},
		{"plain", "plain", ""},
		{"", "", ""},
	}
	for _, tc := range cases {
		key, payload := ParseData(tc.raw)
		if key != tc.key || payload != tc.payload {
			t.Fatalf("ParseData(%q) = (%q, %q), want (%q, %q)", tc.raw, key, payload, tc.key, tc.payload)
		}
	}
}

func TestParsePrefersUnique(t *testing.T) {
	key, payload := Parse(&tele.Callback{Unique: "answer", Data: "0_1"})
	if key != "answer" || payload != "0_1" {
		t.Fatalf("got (%q, %q)", key, payload)
	}
	if key, payload := Parse(nil); key != "" || payload != "" {
		t.Fatal("nil callback should parse to empty values")
	}
}
