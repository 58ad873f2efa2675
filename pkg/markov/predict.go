package markov

import (
	"math"
	"strings"

	"github.com/bastiangx/wordchain/pkg/tokenize"
)

const (
	// DefaultSuggestions is used when a caller asks for k <= 0 suggestions.
	DefaultSuggestions = 3

	// contextWords bounds the fallback context when the prefix ends in a period.
	contextWords = 10
)

// Suggestion is one predicted next word with its integer percentage.
type Suggestion struct {
	Word        string `json:"word" msgpack:"word"`
	Probability int    `json:"probability" msgpack:"probability"`
}

// Predict returns up to k next-word suggestions for prefix and the order of
// the table that produced them (2 for a word-pair match, 1 otherwise).
// An untrained model or a blank prefix yields no suggestions and order 1.
func (m *Model) Predict(prefix string, k int) ([]Suggestion, int) {
	if k <= 0 {
		k = DefaultSuggestions
	}
	if !m.Trained() || strings.TrimSpace(prefix) == "" {
		return []Suggestion{}, 1
	}

	words := tokenize.Tokenize(ExtractContext(prefix))

	if n := len(words); n >= 2 {
		if t := m.second[Pair{A: words[n-2], B: words[n-1]}]; t.Len() > 0 {
			return top(t, k), 2
		}
	}

	if n := len(words); n >= 1 {
		if t := m.first[words[n-1]]; t.Len() > 0 {
			return top(t, k), 1
		}
	}

	if m.global.Len() == 0 {
		return []Suggestion{}, 1
	}
	return top(m.global, k), 1
}

// ExtractContext returns the part of prefix used for prediction: the text
// after the last period, or, when the prefix ends with a period, its last
// ten words.
func ExtractContext(prefix string) string {
	text := strings.TrimSpace(prefix)

	segments := strings.Split(text, ".")
	if last := strings.TrimSpace(segments[len(segments)-1]); last != "" {
		return last
	}

	fields := strings.Fields(text)
	if len(fields) > contextWords {
		fields = fields[len(fields)-contextWords:]
	}
	return strings.Join(fields, " ")
}

func top(t *Transitions, k int) []Suggestion {
	out := make([]Suggestion, 0, min(k, t.Len()))
	for _, e := range t.ranked {
		if len(out) == k {
			break
		}
		if !tokenize.IsWord(e.Word) {
			continue
		}
		out = append(out, Suggestion{
			Word:        e.Word,
			Probability: percent(e.Count, t.total),
		})
	}
	return out
}

// percent rounds half to even.
func percent(count, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.RoundToEven(float64(count) / float64(total) * 100))
}
