package augment

import (
	"regexp"
	"strings"
)

var keywordSeparator = regexp.MustCompile(`[,，]`)

// KeywordSet is an immutable list of filter keywords.
type KeywordSet struct {
	words []string
}

// ParseKeywords splits raw on ASCII and full-width commas, trims every entry
// and drops empty and repeated ones.
func ParseKeywords(raw string) KeywordSet {
	seen := make(map[string]bool)
	var words []string
	for _, w := range keywordSeparator.Split(raw, -1) {
		w = strings.TrimSpace(w)
		if w == "" || seen[w] {
			continue
		}
		seen[w] = true
		words = append(words, w)
	}
	return KeywordSet{words: words}
}

// Empty reports whether there is nothing to filter on.
func (k KeywordSet) Empty() bool { return len(k.words) == 0 }

// Words returns a copy of the keywords in input order.
func (k KeywordSet) Words() []string { return append([]string(nil), k.words...) }

// Match reports whether any keyword is a case-sensitive substring of text.
func (k KeywordSet) Match(text string) bool {
	for _, w := range k.words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

// MatchAny reports whether any keyword occurs in any of texts.
func (k KeywordSet) MatchAny(texts []string) bool {
	for _, t := range texts {
		if k.Match(t) {
			return true
		}
	}
	return false
}
