/*
Package markov builds word-transition tables from corpus text and predicts
the next word of a prefix.

A Model is built in one pass over the tokenized text and never changes
afterwards. It holds two tables:

	first:  word        -> next word -> count
	second: (word, word) -> next word -> count

plus the per-key totals, a global next-word aggregate used as the last
fallback, and a patricia trie of the vocabulary for word completion.

# Training policy

Every retrain discards the previous model and rescans the whole active
corpus, so a source toggle costs O(corpus):

	model := markov.Build(text)

Other strategies can be plugged in through Builder, provided they produce a
Model equal to the one Build returns for the same text.

# Prediction

Predict looks at the last two context words first (order 2), then the last
word (order 1), then the global next-word frequencies:

	suggestions, order := model.Predict("the cat", 3)

Probabilities are integer percentages of the matched key's own total,
rounded half to even. They do not sum to 100 unless every next word of the
key is returned.
*/
package markov

import (
	"strings"
	"time"

	"github.com/bastiangx/wordchain/pkg/tokenize"
	"github.com/charmbracelet/log"
)

// Model is an immutable snapshot of the transition tables.
type Model struct {
	first      map[string]*Transitions
	second     map[Pair]*Transitions
	global     *Transitions
	vocab      *Vocabulary
	tokenCount int
	charCount  int
	trained    bool
	buildTime  time.Duration
}

// Builder turns the concatenated active corpus into a Model.
type Builder interface {
	Build(text string) *Model
}

// FullRebuild rebuilds every table from scratch on each call.
type FullRebuild struct{}

// Build implements Builder.
func (FullRebuild) Build(text string) *Model {
	return Build(text)
}

// Empty returns an untrained model.
func Empty() *Model {
	return &Model{
		first:  make(map[string]*Transitions),
		second: make(map[Pair]*Transitions),
		global: newTransitions(),
		vocab:  newVocabulary(),
	}
}

// Build tokenizes text once and counts every adjacent pair and triple.
// Blank text yields an untrained, empty model.
func Build(text string) *Model {
	start := time.Now()
	m := Empty()

	if strings.TrimSpace(text) == "" {
		log.Debug("No active sources to train from")
		return m
	}

	m.charCount = len(text)
	log.Debugf("Processing %d characters of text", m.charCount)

	tokens := tokenize.Tokenize(text)
	m.tokenCount = len(tokens)
	log.Debugf("Tokenized into %d word tokens", len(tokens))

	// first-seen order of first-order keys, for the global aggregate
	var keys []string

	for i := 0; i+1 < len(tokens); i++ {
		cur := tokens[i]
		t, ok := m.first[cur]
		if !ok {
			t = newTransitions()
			m.first[cur] = t
			keys = append(keys, cur)
		}
		t.add(tokens[i+1], 1)
	}

	for i := 0; i+2 < len(tokens); i++ {
		key := Pair{A: tokens[i], B: tokens[i+1]}
		t, ok := m.second[key]
		if !ok {
			t = newTransitions()
			m.second[key] = t
		}
		t.add(tokens[i+2], 1)
	}

	for _, k := range keys {
		t := m.first[k]
		for _, e := range t.entries {
			m.global.add(e.Word, e.Count)
		}
		t.seal()
	}
	for _, t := range m.second {
		t.seal()
	}
	m.global.seal()

	for _, tok := range tokens {
		m.vocab.add(tok)
	}
	m.vocab.seal()

	m.trained = true
	m.buildTime = time.Since(start)

	log.Debugf("Training completed in %v", m.buildTime)
	log.Debugf("First-order transitions: %d", len(m.first))
	log.Debugf("Second-order transitions: %d", len(m.second))
	return m
}

// Trained reports whether the model was built from non-blank text.
func (m *Model) Trained() bool {
	return m != nil && m.trained
}

// First returns the next-word counts following word, or nil.
func (m *Model) First(word string) *Transitions {
	if m == nil {
		return nil
	}
	return m.first[word]
}

// Second returns the next-word counts following the pair (a, b), or nil.
func (m *Model) Second(a, b string) *Transitions {
	if m == nil {
		return nil
	}
	return m.second[Pair{A: a, B: b}]
}

// FirstCounts returns a copy of the first-order table.
func (m *Model) FirstCounts() map[string]map[string]int {
	if m == nil {
		return nil
	}
	out := make(map[string]map[string]int, len(m.first))
	for k, t := range m.first {
		out[k] = t.counts()
	}
	return out
}

// SecondCounts returns a copy of the second-order table.
func (m *Model) SecondCounts() map[Pair]map[string]int {
	if m == nil {
		return nil
	}
	out := make(map[Pair]map[string]int, len(m.second))
	for k, t := range m.second {
		out[k] = t.counts()
	}
	return out
}

// Stats describes a model.
type Stats struct {
	Trained     bool          `json:"trained" msgpack:"trained"`
	Characters  int           `json:"characters" msgpack:"characters"`
	Tokens      int           `json:"tokens" msgpack:"tokens"`
	FirstOrder  int           `json:"first_order_keys" msgpack:"first_order_keys"`
	SecondOrder int           `json:"second_order_keys" msgpack:"second_order_keys"`
	Vocabulary  int           `json:"vocabulary" msgpack:"vocabulary"`
	BuildTime   time.Duration `json:"build_time_ns" msgpack:"build_time_ns"`
}

// Stats returns table sizes and build information.
func (m *Model) Stats() Stats {
	if m == nil {
		return Stats{}
	}
	return Stats{
		Trained:     m.trained,
		Characters:  m.charCount,
		Tokens:      m.tokenCount,
		FirstOrder:  len(m.first),
		SecondOrder: len(m.second),
		Vocabulary:  m.vocab.Len(),
		BuildTime:   m.buildTime,
	}
}
