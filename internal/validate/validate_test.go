package validate

import (
	"strings"
	"testing"

	"pgregory.net/rapid"
)

func TestIsValidFullName(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"Иванов Иван", true},
		{"Иванов Иван Иванович", true},
		{"Петрова Анна-Мария Ивановна", true},
		{"Ёлкин Пётр", true},
		{"  Иванов   Иван  ", true},
		{"Иванов\tИван", true},
		{"Иванов", false},
		{"Иванов Иван Иванович Старший", false},
		{"иванов Иван", false},
		{"Ivanov Ivan", false},
		{"Иванов Ivan", false},
		{"Иванов Иван2", false},
		{"12345", false},
		{"И Иван", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := IsValidFullName(tc.in); got != tc.want {
			t.Errorf("IsValidFullName(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestIsRussianPhoneNumber(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"+79991234567", true},
		{"89991234567", true},
		{"+7 999 123 45 67", true},
		{"+7 (999) 123-45-67", true},
		{"8(999)123-45-67", true},
		{"8-999-123-45-67", true},
		{"+7999123456", false},
		{"+799912345678", false},
		{"79991234567", false},
		{"+89991234567", false},
		{"+7 999 123 45 67 ", false},
		{"+7  999 123 45 67", false},
		{"+7_999_123_45_67", false},
		{"tel: +79991234567", false},
		{"12345", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := IsRussianPhoneNumber(tc.in); got != tc.want {
			t.Errorf("IsRussianPhoneNumber(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeFullName(t *testing.T) {
	if got := NormalizeFullName("  Иванов \n Иван\t\tИванович "); got != "Иванов Иван Иванович" {
		t.Fatalf("unexpected normalization: %q", got)
	}
}

var (
	upper = []rune("АБВГДЕЁЖЗИЙКЛМНОПРСТУФХЦЧШЩЭЮЯ")
	lower = []rune("абвгдеёжзийклмнопрстуфхцчшщъыьэюя-")
)

func drawWord(rt *rapid.T, label string) string {
	first := rapid.SampledFrom(upper).Draw(rt, label+"_first")
	rest := rapid.SliceOfN(rapid.SampledFrom(lower), 1, 12).Draw(rt, label+"_rest")
	return string(first) + string(rest)
}

func TestFullNameAcceptsWellFormedNames(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(2, 3).Draw(rt, "words")
		words := make([]string, n)
		for i := range words {
			words[i] = drawWord(rt, "w")
		}
		name := strings.Join(words, " ")
		if !IsValidFullName(name) {
			rt.Fatalf("expected %q to be valid", name)
		}
	})
}

func TestFullNameRejectsSingleWordAndDigits(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		word := drawWord(rt, "w")
		if IsValidFullName(word) {
			rt.Fatalf("single word %q accepted", word)
		}
		digit := rapid.IntRange(0, 9).Draw(rt, "digit")
		withDigit := word + " " + drawWord(rt, "v") + string(rune('0'+digit))
		if IsValidFullName(withDigit) {
			rt.Fatalf("name with digit %q accepted", withDigit)
		}
		latin := rapid.StringMatching(`[A-Z][a-z]{2,8} [A-Z][a-z]{2,8}`).Draw(rt, "latin")
		if IsValidFullName(latin) {
			rt.Fatalf("latin name %q accepted", latin)
		}
	})
}

func TestPhoneAcceptsTenDigitsAfterPrefix(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		prefix := rapid.SampledFrom([]string{"+7", "8"}).Draw(rt, "prefix")
		digits := rapid.StringMatching(`[0-9]{10}`).Draw(rt, "digits")
		sep := rapid.SampledFrom([]string{"", " ", "-"}).Draw(rt, "sep")
		parens := rapid.Bool().Draw(rt, "parens")

		area := digits[:3]
		if parens {
			area = "(" + area + ")"
		}
		phone := prefix + sep + area + sep + digits[3:6] + sep + digits[6:8] + sep + digits[8:]
		if !IsRussianPhoneNumber(phone) {
			rt.Fatalf("expected %q to be valid", phone)
		}
	})
}

func TestPhoneRejectsWrongDigitCount(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		prefix := rapid.SampledFrom([]string{"+7", "8"}).Draw(rt, "prefix")
		n := rapid.SampledFrom([]int{8, 9, 11, 12}).Draw(rt, "n")
		digits := rapid.StringOfN(rapid.RuneFrom([]rune("0123456789")), n, n, -1).Draw(rt, "digits")
		phone := prefix + digits
		if IsRussianPhoneNumber(phone) {
			rt.Fatalf("expected %q to be rejected", phone)
		}
	})
}
