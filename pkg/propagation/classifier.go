package propagation

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultKeywords are the whole-word markers of misinformation.
var DefaultKeywords = []string{"fake", "hoax", "conspiracy"}

// Classifier flags content by keyword or by how far it spread. It is
// advisory: it never changes a message's state.
type Classifier struct {
	keywords  []string
	pattern   *regexp.Regexp
	threshold float64
}

// Word characters are Unicode letters, digits and '_'. RE2's \b only knows
// ASCII, so keyword boundaries are spelled out with these classes.
const (
	wordClass    = `[\p{L}\p{N}_]`
	nonWordClass = `[^\p{L}\p{N}_]`
)

// NewClassifier builds a classifier for the given spread threshold. With no
// keywords, DefaultKeywords are used; empty keywords are ignored. Matching is
// case-sensitive.
func NewClassifier(threshold float64, keywords ...string) *Classifier {
	kept := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k != "" {
			kept = append(kept, k)
		}
	}
	if len(kept) == 0 {
		kept = DefaultKeywords
	}

	alts := make([]string, len(kept))
	for i, k := range kept {
		alts[i] = wholeWord(k)
	}

	return &Classifier{
		keywords:  append([]string(nil), kept...),
		pattern:   regexp.MustCompile(strings.Join(alts, "|")),
		threshold: threshold,
	}
}

// wholeWord matches k only where a word boundary sits on each side of it.
// Next to a word character the boundary needs a non-word neighbor or the end
// of the text; next to a non-word character it needs a word neighbor.
func wholeWord(k string) string {
	first, _ := utf8.DecodeRuneInString(k)
	last, _ := utf8.DecodeLastRuneInString(k)

	left := wordClass
	if isWordRune(first) {
		left = `(?:^|` + nonWordClass + `)`
	}
	right := wordClass
	if isWordRune(last) {
		right = `(?:` + nonWordClass + `|$)`
	}
	return `(?:` + left + regexp.QuoteMeta(k) + right + `)`
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

// Keywords returns the keyword set.
func (c *Classifier) Keywords() []string {
	return append([]string(nil), c.keywords...)
}

// Threshold returns the spread threshold.
func (c *Classifier) Threshold() float64 { return c.threshold }

// MatchesKeyword reports whether content contains a keyword as a whole word.
func (c *Classifier) MatchesKeyword(content string) bool {
	return c.pattern.MatchString(content)
}

// IsMisinformation reports a keyword match or a spread above the threshold.
func (c *Classifier) IsMisinformation(content string, spread float64) bool {
	return c.MatchesKeyword(content) || spread > c.threshold
}
