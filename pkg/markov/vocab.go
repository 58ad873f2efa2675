package markov

import (
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

// Completion is a vocabulary word that extends a typed prefix.
type Completion struct {
	Word      string `json:"word" msgpack:"w"`
	Frequency int    `json:"frequency" msgpack:"f"`
}

// Vocabulary indexes the trained word tokens by prefix.
type Vocabulary struct {
	trie  *patricia.Trie
	freqs map[string]int
}

func newVocabulary() *Vocabulary {
	return &Vocabulary{
		trie:  patricia.NewTrie(),
		freqs: make(map[string]int),
	}
}

func (v *Vocabulary) add(word string) {
	v.freqs[word]++
}

// seal moves the counted words into the trie.
func (v *Vocabulary) seal() {
	for word, freq := range v.freqs {
		v.trie.Insert(patricia.Prefix(word), freq)
	}
}

// Len returns the number of distinct words.
func (v *Vocabulary) Len() int {
	if v == nil {
		return 0
	}
	return len(v.freqs)
}

// Frequency returns how often word occurred in the corpus.
func (v *Vocabulary) Frequency(word string) int {
	if v == nil {
		return 0
	}
	return v.freqs[word]
}

// Complete returns up to limit words starting with prefix, most frequent
// first. The prefix itself is never returned.
func (v *Vocabulary) Complete(prefix string, limit int) []Completion {
	lowerPrefix := strings.ToLower(strings.TrimSpace(prefix))
	if v == nil || lowerPrefix == "" {
		return []Completion{}
	}

	var completions []Completion
	err := v.trie.VisitSubtree(patricia.Prefix(lowerPrefix), func(p patricia.Prefix, item patricia.Item) error {
		word := string(p)
		if word == lowerPrefix {
			return nil
		}
		freq, ok := item.(int)
		if !ok {
			log.Errorf("Unknown item type: %T for word %s", item, p)
			return nil
		}
		completions = append(completions, Completion{Word: word, Frequency: freq})
		return nil
	})
	if err != nil {
		log.Errorf("Error visiting vocabulary subtree: %v", err)
		return []Completion{}
	}

	sort.Slice(completions, func(i, j int) bool {
		if completions[i].Frequency != completions[j].Frequency {
			return completions[i].Frequency > completions[j].Frequency
		}
		return completions[i].Word < completions[j].Word
	})

	if limit > 0 && len(completions) > limit {
		completions = completions[:limit]
	}
	if completions == nil {
		return []Completion{}
	}
	return completions
}

// Complete completes a partially typed word against the model vocabulary.
func (m *Model) Complete(prefix string, limit int) []Completion {
	if !m.Trained() {
		return []Completion{}
	}
	return m.vocab.Complete(prefix, limit)
}
