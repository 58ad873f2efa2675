// Package engine owns the corpus registry and the current transition model
// and is the single entry point for the HTTP, IPC and CLI front ends.
package engine

import (
	"github.com/bastiangx/wordchain/pkg/corpus"
	"github.com/bastiangx/wordchain/pkg/markov"
)

// IPredictor is what the front ends need from an Engine.
type IPredictor interface {
	// PredictNextWords returns up to k suggestions and the table order used
	PredictNextWords(text string, k int) ([]markov.Suggestion, int)

	// Complete returns vocabulary words extending a partial word
	Complete(prefix string, limit int) []markov.Completion

	// ListSources returns sources in insertion order
	ListSources() []corpus.SourceInfo

	// ToggleSource sets a source's flag; false when the name is unknown
	ToggleSource(name string, active bool) bool

	// ClosestSource returns the registered name most similar to name
	ClosestSource(name string) (string, bool)

	Stats() Stats
}

var _ IPredictor = (*Engine)(nil)
