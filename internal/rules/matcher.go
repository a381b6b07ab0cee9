package rules

import (
	"regexp"
	"strings"
)

// Matcher tests whether a policy statement exhibits a risky shape.
type Matcher interface {
	Matches(statement string) bool
}

type regexMatcher struct {
	re *regexp.Regexp
}

func (m regexMatcher) Matches(statement string) bool {
	return m.re.MatchString(statement)
}

// Phrase builds a case-insensitive whole-word matcher for a fixed phrase.
// Each space in the phrase matches any run of whitespace in the statement.
func Phrase(phrase string) Matcher {
	words := strings.Fields(phrase)
	for i, word := range words {
		words[i] = regexp.QuoteMeta(word)
	}
	expr := `(?i)\b` + strings.Join(words, `\s+`) + `\b`
	return regexMatcher{re: regexp.MustCompile(expr)}
}

// Pattern builds a matcher from a raw regular expression, applied
// case-insensitively. Used for catalogs loaded from file.
func Pattern(expr string) (Matcher, error) {
	re, err := regexp.Compile(`(?i)` + expr)
	if err != nil {
		return nil, err
	}
	return regexMatcher{re: re}, nil
}

type anyMatcher struct {
	matchers []Matcher
}

func (m anyMatcher) Matches(statement string) bool {
	for _, matcher := range m.matchers {
		if matcher.Matches(statement) {
			return true
		}
	}
	return false
}

// AnyOf matches when any of the given matchers match.
func AnyOf(matchers ...Matcher) Matcher {
	return anyMatcher{matchers: matchers}
}
