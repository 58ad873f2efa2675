package markov

import (
	"testing"

	"github.com/bastiangx/wordchain/pkg/tokenize"
	"github.com/stretchr/testify/assert"
)

func TestPredict(t *testing.T) {
	m := Build(catCorpus)

	testCases := []struct {
		prefix   string
		k        int
		expected []Suggestion
		order    int
		desc     string
	}{
		{"the cat", 3, []Suggestion{{"sat", 50}, {"ran", 50}}, 2, "pair match"},
		{"The Cat", 3, []Suggestion{{"sat", 50}, {"ran", 50}}, 2, "case insensitive"},
		{"the cat", 1, []Suggestion{{"sat", 50}}, 2, "k limits output"},
		{"the", 3, []Suggestion{{"cat", 67}, {"mat", 33}}, 1, "single word uses order 1"},
		{"xyz cat", 3, []Suggestion{{"sat", 50}, {"ran", 50}}, 1, "unknown pair falls back to last word"},
		{"the mat.", 3, []Suggestion{{"the", 100}}, 2, "trailing period uses last words"},
		{"a dog. the", 3, []Suggestion{{"cat", 67}, {"mat", 33}}, 1, "only the last sentence counts"},
		{"zebra", 3, []Suggestion{{"cat", 25}, {"the", 25}, {"mat", 12}}, 1, "global fallback rounds half to even"},
		{"!!!", 2, []Suggestion{{"cat", 25}, {"the", 25}}, 1, "no context tokens uses global"},
		{"", 3, []Suggestion{}, 1, "empty prefix"},
		{"   ", 3, []Suggestion{}, 1, "blank prefix"},
		{"the cat", 0, []Suggestion{{"sat", 50}, {"ran", 50}}, 2, "k <= 0 uses default"},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			got, order := m.Predict(tc.prefix, tc.k)
			assert.Equal(t, tc.expected, got)
			assert.Equal(t, tc.order, order)
		})
	}
}

func TestPredictUntrained(t *testing.T) {
	got, order := Empty().Predict("the cat", 3)
	assert.Equal(t, []Suggestion{}, got)
	assert.Equal(t, 1, order)

	var nilModel *Model
	got, order = nilModel.Predict("the cat", 3)
	assert.Empty(t, got)
	assert.Equal(t, 1, order)
}

func TestPredictPrefersSecondOrder(t *testing.T) {
	// "on the" is followed by "mat" but "the" alone is mostly followed by "cat".
	m := Build(catCorpus)
	got, order := m.Predict("sat on the", 3)
	assert.Equal(t, 2, order)
	assert.Equal(t, []Suggestion{{"mat", 100}}, got)
}

func TestPredictSuggestionsAreWords(t *testing.T) {
	m := Build(`"Oh dear! Oh dear! I shall be late!" (when she thought it over afterwards, ` +
		`it occurred to her that she ought to have wondered at this...)`)

	for _, prefix := range []string{"oh", "oh dear", "she", "it", "unknown", "to have", "."} {
		got, _ := m.Predict(prefix, 10)
		for _, s := range got {
			assert.True(t, tokenize.IsWord(s.Word), "prefix %q returned %q", prefix, s.Word)
			assert.GreaterOrEqual(t, s.Probability, 0)
			assert.LessOrEqual(t, s.Probability, 100)
		}
	}
}

func TestExtractContext(t *testing.T) {
	assert.Equal(t, "the cat", ExtractContext("  the cat  "))
	assert.Equal(t, "ran", ExtractContext("the cat sat. ran"))
	assert.Equal(t, "the cat sat.", ExtractContext("the cat sat."))
	assert.Equal(t, "c d e f g h i j k l.", ExtractContext("a b c d e f g h i j k l."))
	assert.Equal(t, "...", ExtractContext("..."))
	assert.Equal(t, "", ExtractContext(""))
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 50, percent(1, 2))
	assert.Equal(t, 12, percent(1, 8))
	assert.Equal(t, 38, percent(3, 8))
	assert.Equal(t, 100, percent(4, 4))
	assert.Equal(t, 0, percent(1, 0))
}
