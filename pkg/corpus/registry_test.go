package corpus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistryUpsertKeepsOrder(t *testing.T) {
	r := NewRegistry()
	assert.True(t, r.Upsert("b.txt", "bee", true))
	assert.True(t, r.Upsert("a.txt", "ay", false))
	assert.False(t, r.Upsert("b.txt", "buzz", false), "overwrite is not new")

	assert.Equal(t, []string{"b.txt", "a.txt"}, r.Names())
	assert.Equal(t, []SourceInfo{{"b.txt", false}, {"a.txt", false}}, r.List())

	s, ok := r.Get("b.txt")
	assert.True(t, ok)
	assert.Equal(t, "buzz", s.Content)
	assert.Equal(t, 2, r.Len())
}

func TestRegistrySetActive(t *testing.T) {
	r := NewRegistry()
	r.Upsert("one", "1", true)

	assert.True(t, r.SetActive("one", false))
	assert.Equal(t, 0, r.ActiveCount())
	assert.False(t, r.SetActive("ghost", true))

	_, ok := r.Get("ghost")
	assert.False(t, ok)
	assert.Equal(t, 1, r.Len())
}

func TestRegistryActiveText(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, "", r.ActiveText())

	r.Upsert("first", "the cat", true)
	r.Upsert("second", "sat down", false)
	r.Upsert("third", "on the mat", true)
	assert.Equal(t, "the cat on the mat", r.ActiveText())

	r.SetActive("second", true)
	assert.Equal(t, "the cat sat down on the mat", r.ActiveText())

	r.SetActive("first", false)
	r.SetActive("second", false)
	r.SetActive("third", false)
	assert.Equal(t, "", r.ActiveText())
}

func TestRegistryListIsACopy(t *testing.T) {
	r := NewRegistry()
	r.Upsert("x", "text", true)
	list := r.List()
	list[0].Active = false

	s, _ := r.Get("x")
	assert.True(t, s.Active)
}
