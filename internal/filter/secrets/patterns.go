package secrets

import (
	"regexp"
	"strings"
)

type Category string

const (
	// CategoryCredential covers keys, tokens and connection strings.
	CategoryCredential Category = "credential"
	// CategoryIdentity covers government identity numbers a farmer may paste
	// from a form into the location or query box.
	CategoryIdentity Category = "identity"
)

type Pattern struct {
	Name     string
	Category Category
	Regex    *regexp.Regexp
	// Valid, when set, must also accept text[start:end] for the match to count.
	Valid func(text string, start, end int) bool
}

func credential(name, expr string) Pattern {
	return Pattern{Name: name, Category: CategoryCredential, Regex: regexp.MustCompile(expr)}
}

// DefaultPatterns returns the built-in patterns. Anything matched here would
// otherwise be sent to the AI service and embedded in a cache key.
func DefaultPatterns() []Pattern {
	return []Pattern{
		credential("Google API Key", `AIza[0-9A-Za-z\-_]{35}`),
		credential("OpenAI API Key", `\bsk-(?:proj-)?[A-Za-z0-9_\-]{20,}`),
		credential("AWS Access Key", `AKIA[0-9A-Z]{16}`),
		credential("GitHub Token", `gh[pousr]_[A-Za-z0-9_]{36,}`),
		credential("Private Key", `-----BEGIN (?:RSA |EC |DSA |OPENSSH )?PRIVATE KEY-----`),
		credential("Connection String", `(?:postgres|postgresql|mysql|mongodb(?:\+srv)?|redis)://\S+`),
		credential("JWT Token", `eyJ[A-Za-z0-9\-_]+\.eyJ[A-Za-z0-9\-_]+\.[A-Za-z0-9\-_]+`),

		// 12 digits, never starting with 0 or 1, printed either ungrouped or as
		// 4-4-4 with single spaces.
		{
			Name:     "Aadhaar Number",
			Category: CategoryIdentity,
			Regex:    regexp.MustCompile(`\b[2-9][0-9]{3}(?: [0-9]{4} [0-9]{4}|[0-9]{8})\b`),
			Valid:    validAadhaar,
		},
		// Fourth letter encodes the holder type (P person, C company, ...).
		{
			Name:     "PAN",
			Category: CategoryIdentity,
			Regex:    regexp.MustCompile(`\b[A-Z]{3}[ABCFGHJLPT][A-Z][0-9]{4}[A-Z]\b`),
		},
	}
}

// validAadhaar accepts a candidate that stands alone (no digit group directly
// before or after it), whose groups do not all read as calendar years, and
// whose last digit is the Verhoeff check digit. Year lists and price ranges
// such as "2023 2024 2025" or "5000 6000 7000 8000" are rejected.
func validAadhaar(text string, start, end int) bool {
	if digitGroupBefore(text, start) || digitGroupAfter(text, end) {
		return false
	}
	digits := strings.ReplaceAll(text[start:end], " ", "")
	if len(digits) != 12 {
		return false
	}
	if yearLike(digits[0:4]) && yearLike(digits[4:8]) && yearLike(digits[8:12]) {
		return false
	}
	return verhoeff(digits)
}

func separator(b byte) bool {
	return b == ' ' || b == '-' || b == ',' || b == '/' || b == '.'
}

func digitGroupBefore(text string, i int) bool {
	for i > 0 && separator(text[i-1]) {
		i--
	}
	return i > 0 && text[i-1] >= '0' && text[i-1] <= '9'
}

func digitGroupAfter(text string, i int) bool {
	for i < len(text) && separator(text[i]) {
		i++
	}
	return i < len(text) && text[i] >= '0' && text[i] <= '9'
}

func yearLike(s string) bool {
	return s >= "1900" && s <= "2099"
}

var (
	verhoeffD = [10][10]int{
		{0, 1, 2, 3, 4, 5, 6, 7, 8, 9},
		{1, 2, 3, 4, 0, 6, 7, 8, 9, 5},
		{2, 3, 4, 0, 1, 7, 8, 9, 5, 6},
		{3, 4, 0, 1, 2, 8, 9, 5, 6, 7},
		{4, 0, 1, 2, 3, 9, 5, 6, 7, 8},
		{5, 9, 8, 7, 6, 0, 4, 3, 2, 1},
		{6, 5, 9, 8, 7, 1, 0, 4, 3, 2},
		{7, 6, 5, 9, 8, 2, 1, 0, 4, 3},
		{8, 7, 6, 5, 9, 3, 2, 1, 0, 4},
		{9, 8, 7, 6, 5, 4, 3, 2, 1, 0},
	}
	verhoeffP = [8][10]int{
		{0, 1, 2, 3, 4, 5, 6, 7, 8, 9},
		{1, 5, 7, 6, 2, 8, 3, 0, 9, 4},
		{5, 8, 0, 3, 7, 9, 6, 1, 4, 2},
		{8, 9, 1, 6, 0, 4, 3, 5, 2, 7},
		{9, 4, 5, 3, 1, 2, 6, 8, 7, 0},
		{4, 2, 8, 6, 5, 7, 3, 9, 1, 0},
		{2, 7, 9, 3, 8, 0, 6, 4, 1, 5},
		{7, 0, 4, 6, 9, 1, 3, 2, 5, 8},
	}
)

// verhoeff reports whether the last digit of s is its Verhoeff check digit.
func verhoeff(s string) bool {
	c := 0
	for i := 0; i < len(s); i++ {
		ch := s[len(s)-1-i]
		if ch < '0' || ch > '9' {
			return false
		}
		c = verhoeffD[c][verhoeffP[i%8][ch-'0']]
	}
	return c == 0
}
