// Package mask hides template variables from translation backends.
//
// Three variable forms are recognised:
//
//	{name}     brace-delimited
//	%user%     percent-delimited
//	<b>        angle-bracket-delimited
//
// Each match is replaced, left to right, by an opaque token of the form
// [[VAR<n>]]. Text that already looks like a token is masked too, so it comes
// back verbatim instead of being taken for one of the call's own tokens. Numbering starts at 0 for every masked string and the
// token→original pairs live only in the Placeholders value returned by Mask,
// so concurrent callers never see each other's tokens.
package mask

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// variablePattern matches token-shaped text and {…}, %…% and <…> substrings.
// Delimiter balance is not validated; malformed input gets whatever the
// regexp finds.
var variablePattern = regexp.MustCompile(`(?i:\[\[\s*VAR\s*\d+\s*\]\])|\{[^}]+\}|%[^%]+%|<[^>]+>`)

// tokenPattern matches a placeholder token as a backend may return it:
// original form, lower-cased, or with whitespace inserted inside the brackets.
var tokenPattern = regexp.MustCompile(`(?i)\[\[\s*VAR\s*(\d+)\s*\]\]`)

// Placeholder is one masked variable.
type Placeholder struct {
	// Token is the synthetic marker sent to the backend (e.g. "[[VAR0]]").
	Token string
	// Original is the variable text the token stands for (e.g. "{name}").
	Original string
}

// Placeholders is the ordered set of variables masked in a single string.
// The index of each element equals the number in its token.
type Placeholders []Placeholder

// Token returns the placeholder token for index n.
func Token(n int) string {
	return fmt.Sprintf("[[VAR%d]]", n)
}

// Mask replaces every template variable in text with a placeholder token.
func Mask(text string) (string, Placeholders) {
	var ph Placeholders
	masked := variablePattern.ReplaceAllStringFunc(text, func(v string) string {
		tok := Token(len(ph))
		ph = append(ph, Placeholder{Token: tok, Original: v})
		return tok
	})
	return masked, ph
}

// Restore puts the original variables back in place of this set's tokens.
// Tokens with an index outside the set are left as they are.
func (p Placeholders) Restore(text string) string {
	if len(p) == 0 {
		return text
	}
	return tokenPattern.ReplaceAllStringFunc(text, func(tok string) string {
		if orig, ok := p.lookup(tok); ok {
			return orig
		}
		return tok
	})
}

// Strip removes this set's tokens from text.
func (p Placeholders) Strip(text string) string {
	if len(p) == 0 {
		return text
	}
	return tokenPattern.ReplaceAllStringFunc(text, func(tok string) string {
		if _, ok := p.lookup(tok); ok {
			return ""
		}
		return tok
	})
}

// Missing returns the tokens of this set that do not occur in text.
func (p Placeholders) Missing(text string) []string {
	seen := make(map[int]bool, len(p))
	for _, m := range tokenPattern.FindAllStringSubmatch(text, -1) {
		if n, err := strconv.Atoi(m[1]); err == nil {
			seen[n] = true
		}
	}
	var missing []string
	for i, ph := range p {
		if !seen[i] {
			missing = append(missing, ph.Token)
		}
	}
	return missing
}

// Originals returns the masked variable texts in order.
func (p Placeholders) Originals() []string {
	out := make([]string, len(p))
	for i, ph := range p {
		out[i] = ph.Original
	}
	return out
}

func (p Placeholders) lookup(tok string) (string, bool) {
	m := tokenPattern.FindStringSubmatch(tok)
	if m == nil {
		return "", false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 0 || n >= len(p) {
		return "", false
	}
	return p[n].Original, true
}

// OnlyVariables reports whether masked text holds nothing but this set's
// tokens and whitespace, so there is nothing left to translate.
func (p Placeholders) OnlyVariables(masked string) bool {
	return len(p) > 0 && strings.TrimSpace(p.Strip(masked)) == ""
}
