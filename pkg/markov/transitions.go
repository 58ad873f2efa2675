package markov

import "sort"

// Pair is the two-word context key of the second-order table.
type Pair struct {
	A, B string
}

// Entry is one next-word count.
type Entry struct {
	Word  string
	Count int
}

// Transitions holds next-word counts for one context key. Entries keep the
// order in which each next word was first seen, which is the tie-break used
// when ranking equal counts.
type Transitions struct {
	entries []Entry
	index   map[string]int
	ranked  []Entry
	total   int
}

func newTransitions() *Transitions {
	return &Transitions{index: make(map[string]int, 2)}
}

func (t *Transitions) add(word string, n int) {
	if i, ok := t.index[word]; ok {
		t.entries[i].Count += n
	} else {
		t.index[word] = len(t.entries)
		t.entries = append(t.entries, Entry{Word: word, Count: n})
	}
	t.total += n
}

// seal ranks the entries by count, highest first. Equal counts keep
// first-seen order. Must be called once, after the last add.
func (t *Transitions) seal() {
	t.ranked = make([]Entry, len(t.entries))
	copy(t.ranked, t.entries)
	sort.SliceStable(t.ranked, func(i, j int) bool {
		return t.ranked[i].Count > t.ranked[j].Count
	})
}

// Total is the sum of all next-word counts for the key.
func (t *Transitions) Total() int {
	if t == nil {
		return 0
	}
	return t.total
}

// Len returns the number of distinct next words.
func (t *Transitions) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Count returns the count for word, or 0.
func (t *Transitions) Count(word string) int {
	if t == nil {
		return 0
	}
	if i, ok := t.index[word]; ok {
		return t.entries[i].Count
	}
	return 0
}

// Ranked returns a copy of the entries ordered by count descending.
func (t *Transitions) Ranked() []Entry {
	if t == nil {
		return nil
	}
	out := make([]Entry, len(t.ranked))
	copy(out, t.ranked)
	return out
}

func (t *Transitions) counts() map[string]int {
	m := make(map[string]int, len(t.entries))
	for _, e := range t.entries {
		m[e.Word] = e.Count
	}
	return m
}
