// Package tokenize splits raw corpus text into lowercase word tokens.
//
// The same filter (IsWord) decides what a word is for training and for
// queries, so a prefix typed by a user is cut into exactly the tokens the
// transition tables were keyed on.
package tokenize

import (
	"regexp"
	"strings"
	"unicode"
)

// rawPattern matches either a run of word runes, optionally joined by
// hyphens, apostrophes, underscores or inner periods, or a single
// punctuation rune. Whitespace is never matched.
var rawPattern = regexp.MustCompile(`[\p{L}\p{N}\p{M}]+(?:[-'’_.][\p{L}\p{N}\p{M}]+)*|[^\s\p{L}\p{N}\p{M}]`)

// clitics are split off the end of a word the way Treebank tokenizers do,
// so "don't" becomes "do" + "n't" and "Bennet's" becomes "Bennet" + "'s".
var clitics = []string{"n't", "n’t", "'s", "’s", "'re", "’re", "'ve", "’ve", "'ll", "’ll", "'d", "’d", "'m", "’m"}

// Raw returns every token of text, punctuation included, in order.
func Raw(text string) []string {
	matches := rawPattern.FindAllString(text, -1)
	if len(matches) == 0 {
		return nil
	}

	tokens := make([]string, 0, len(matches)+len(matches)/8)
	for _, m := range matches {
		if head, tail, ok := splitClitic(m); ok {
			tokens = append(tokens, head, tail)
			continue
		}
		tokens = append(tokens, m)
	}
	return tokens
}

// Tokenize returns the lowercase word tokens of text. Tokens without a
// letter are dropped.
func Tokenize(text string) []string {
	raw := Raw(text)
	words := make([]string, 0, len(raw))
	for _, tok := range raw {
		if IsWord(tok) {
			words = append(words, strings.ToLower(tok))
		}
	}
	return words
}

// IsWord reports whether token is non-empty after trimming and contains at
// least one letter.
func IsWord(token string) bool {
	if strings.TrimSpace(token) == "" {
		return false
	}
	for _, r := range token {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

func splitClitic(tok string) (string, string, bool) {
	lower := strings.ToLower(tok)
	for _, c := range clitics {
		if len(lower) > len(c) && strings.HasSuffix(lower, c) {
			cut := len(tok) - len(c)
			return tok[:cut], tok[cut:], true
		}
	}
	return "", "", false
}
