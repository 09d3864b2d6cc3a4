//go:build unit

package slug

import (
	"strings"
	"testing"
)

func TestGenerate(t *testing.T) {
	testCases := []struct {
		name  string
		title string
		want  string
	}{
		{"simple title", "Market Update Q3", "market-update-q3"},
		{"collapses whitespace", "  Breaking    News \t Today ", "breaking-news-today"},
		{"strips punctuation", "What's next? Rates, inflation & jobs!", "what-s-next-rates-inflation-jobs"},
		{"folds diacritics", "Café Müller açılış", "cafe-muller-acilis"},
		{"folds letters without decomposition", "Əliyev və Straße", "eliyev-ve-strasse"},
		{"keeps digits", "Top 10 of 2024", "top-10-of-2024"},
		{"only symbols", "!!! ???", "article"},
		{"empty", "", "article"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Generate(tc.title); got != tc.want {
				t.Errorf("Generate(%q) = %q, want %q", tc.title, got, tc.want)
			}
		})
	}
}

func TestGenerate_SafeAlphabet(t *testing.T) {
	titles := []string{
		"Hello",
		"Market Update Q3",
		"Ünïcödé / Slash \\ Back",
		"../../etc/passwd title",
		"Fifty characters long title with many words inside",
		"Tabs\tand\nnewlines\r\nhere",
	}
	for _, title := range titles {
		got := Generate(title)
		for _, r := range got {
			if !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-') {
				t.Errorf("Generate(%q) = %q contains unsafe rune %q", title, got, r)
			}
		}
		if strings.HasPrefix(got, "-") || strings.HasSuffix(got, "-") || strings.Contains(got, "--") {
			t.Errorf("Generate(%q) = %q has stray separators", title, got)
		}
	}
}

func TestGenerate_MaxLength(t *testing.T) {
	title := strings.Repeat("word ", 40)
	got := Generate(title)
	if len(got) > maxLength {
		t.Errorf("expected slug of at most %d chars, got %d", maxLength, len(got))
	}
	if strings.HasSuffix(got, "-") {
		t.Errorf("slug should not end with a separator: %q", got)
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	if Generate("Same Title") != Generate("Same Title") {
		t.Error("expected identical slugs for identical titles")
	}
}
