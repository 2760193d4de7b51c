package schema

import (
	"strings"
	"unicode"
)

// Label derives a title from a node name: "shipping_address" and
// "shippingAddress" both become "Shipping Address", "line2" becomes "Line 2".
func Label(name string) string {
	var words []string
	var word []rune
	flush := func() {
		if len(word) > 0 {
			words = append(words, capitalize(word))
			word = word[:0]
		}
	}

	runes := []rune(name)
	for i, r := range runes {
		if r == '_' || r == '-' || unicode.IsSpace(r) {
			flush()
			continue
		}
		if i > 0 && wordBoundary(runes[i-1], r) {
			flush()
		}
		word = append(word, r)
	}
	flush()
	return strings.Join(words, " ")
}

func wordBoundary(prev, r rune) bool {
	switch {
	case unicode.IsLower(prev) && unicode.IsUpper(r):
		return true
	case unicode.IsLetter(prev) && unicode.IsDigit(r):
		return true
	case unicode.IsDigit(prev) && unicode.IsLetter(r):
		return true
	}
	return false
}

func capitalize(word []rune) string {
	out := []rune(strings.ToLower(string(word)))
	out[0] = unicode.ToUpper(out[0])
	return string(out)
}
