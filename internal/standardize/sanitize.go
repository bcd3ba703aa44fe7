package standardize

import (
	"net/url"
	"strings"
	"unicode"
)

// Clean strips control characters that break the platform's rich-text
// fields, keeping newlines and tabs. Idempotent.
func Clean(s string) string {
	if s == "" {
		return s
	}
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

// SafeDecode attempts to percent-decode legacy values that were stored
// URI-encoded. The fallback chain never fails: if the input is not valid
// percent-encoding, or decoding would not round idempotently, the input
// is returned unchanged.
func SafeDecode(s string) string {
	if !strings.Contains(s, "%") {
		return s
	}
	// PathUnescape, not QueryUnescape: '+' must stay a literal plus.
	decoded, err := url.PathUnescape(s)
	if err != nil {
		return s
	}
	// A decoded form that still carries a valid escape would decode
	// again on the next pass. Leave such values alone so repeated
	// standardization of the stored bank is stable.
	if containsEscape(decoded) {
		return s
	}
	return decoded
}

// containsEscape reports whether s holds a decodable %XX sequence.
func containsEscape(s string) bool {
	for i := 0; i+2 < len(s); i++ {
		if s[i] == '%' && isHex(s[i+1]) && isHex(s[i+2]) {
			return true
		}
	}
	return false
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}
