// Package slug derives URL-safe identifiers from article titles.
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	separator = '-'
	maxLength = 80
	fallback  = "article"
)

// Letters that survive NFD decomposition unchanged.
var folds = map[rune]string{
	'ə': "e", 'Ə': "e",
	'ı': "i",
	'ß': "ss",
	'ø': "o", 'Ø': "o",
	'æ': "ae", 'Æ': "ae",
	'œ': "oe", 'Œ': "oe",
	'đ': "d", 'Đ': "d",
	'ł': "l", 'Ł': "l",
	'þ': "th", 'Þ': "th",
}

// Generate turns a title into a lower-case slug made of [a-z0-9] runs joined
// by single dashes. It is deterministic and does not guarantee uniqueness.
func Generate(title string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, title)
	if err != nil {
		folded = title
	}

	var b strings.Builder
	pendingSep := false
	n := 0
	write := func(s string) {
		for _, r := range s {
			if n >= maxLength {
				return
			}
			if pendingSep && n > 0 {
				if n+1 >= maxLength {
					return
				}
				b.WriteRune(separator)
				n++
			}
			pendingSep = false
			b.WriteRune(r)
			n++
		}
	}

	for _, r := range folded {
		if f, ok := folds[r]; ok {
			write(f)
			continue
		}
		r = unicode.ToLower(r)
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			write(string(r))
			continue
		}
		pendingSep = true
	}

	if b.Len() == 0 {
		return fallback
	}
	return b.String()
}
