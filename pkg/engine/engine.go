package engine

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bastiangx/wordchain/internal/logger"
	"github.com/bastiangx/wordchain/pkg/corpus"
	"github.com/bastiangx/wordchain/pkg/markov"
	"github.com/charmbracelet/log"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Options configures an Engine.
type Options struct {
	// Builder rebuilds the model after every registry change.
	// Default: markov.FullRebuild
	Builder markov.Builder

	// Extensions recognized by LoadSourcesFromDirectory.
	// Default: corpus.DefaultExtensions
	Extensions []string

	// ReadWorkers bounds concurrent file reads. Default: 4
	ReadWorkers int

	// Logger for engine events. Default: logger.New("engine")
	Logger *log.Logger
}

// Stats combines registry and model statistics.
type Stats struct {
	markov.Stats
	Sources       int       `json:"sources" msgpack:"sources"`
	ActiveSources int       `json:"active_sources" msgpack:"active_sources"`
	Retrains      int64     `json:"retrains" msgpack:"retrains"`
	LastTrained   time.Time `json:"last_trained" msgpack:"last_trained"`
}

// Engine serializes registry changes and retrains under mu, and publishes
// each new model through an atomic pointer. Predictions read one snapshot
// and never see a model that is still being built.
type Engine struct {
	mu          sync.Mutex
	registry    *corpus.Registry
	builder     markov.Builder
	extensions  []string
	readWorkers int
	logger      *log.Logger
	retrains    int64
	lastTrained time.Time

	model atomic.Pointer[markov.Model]
}

// New returns an engine with no sources and an untrained model.
func New(opts Options) *Engine {
	if opts.Builder == nil {
		opts.Builder = markov.FullRebuild{}
	}
	if len(opts.Extensions) == 0 {
		opts.Extensions = corpus.DefaultExtensions
	}
	if opts.ReadWorkers < 1 {
		opts.ReadWorkers = 4
	}
	if opts.Logger == nil {
		opts.Logger = logger.New("engine")
	}

	e := &Engine{
		registry:    corpus.NewRegistry(),
		builder:     opts.Builder,
		extensions:  opts.Extensions,
		readWorkers: opts.ReadWorkers,
		logger:      opts.Logger,
	}
	e.model.Store(markov.Empty())
	return e
}

// AddSource inserts or overwrites a source and retrains.
func (e *Engine) AddSource(name, content string, active bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.registry.Upsert(name, content, active) {
		e.logger.Debug("Added source", "name", name, "active", active, "chars", len(content))
	} else {
		e.logger.Debug("Replaced source", "name", name, "active", active, "chars", len(content))
	}
	e.retrain()
}

// AddSources upserts every file as an active source and retrains once.
// The resulting model is the same as adding the files one by one.
func (e *Engine) AddSources(files []corpus.File) {
	if len(files) == 0 {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	for _, f := range files {
		e.registry.Upsert(f.Name, f.Content, true)
		e.logger.Debug("Loaded source", "name", f.Name, "chars", len(f.Content))
	}
	e.retrain()
}

// ToggleSource sets the active flag of a known source and retrains. Unknown
// names return false and leave the model untouched.
func (e *Engine) ToggleSource(name string, active bool) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.registry.SetActive(name, active) {
		if closest, ok := e.closestLocked(name); ok {
			e.logger.Warn("Unknown source", "name", name, "closest", closest)
		} else {
			e.logger.Warn("Unknown source", "name", name)
		}
		return false
	}

	e.logger.Info("Toggled source", "name", name, "active", active)
	e.retrain()
	return true
}

// ListSources returns every source's name and flag in insertion order.
func (e *Engine) ListSources() []corpus.SourceInfo {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.registry.List()
}

// ClosestSource returns the registered source name most similar to name.
func (e *Engine) ClosestSource(name string) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closestLocked(name)
}

func (e *Engine) closestLocked(name string) (string, bool) {
	names := e.registry.Names()
	if len(names) == 0 || name == "" {
		return "", false
	}

	if ranks := fuzzy.RankFindNormalizedFold(name, names); len(ranks) > 0 {
		sort.Sort(ranks)
		return ranks[0].Target, true
	}

	best, bestDist := "", -1
	lower := strings.ToLower(name)
	for _, n := range names {
		d := fuzzy.LevenshteinDistance(lower, strings.ToLower(n))
		if bestDist < 0 || d < bestDist {
			best, bestDist = n, d
		}
	}
	if bestDist > max(2, len(name)/3) {
		return "", false
	}
	return best, true
}

// LoadSourcesFromDirectory adds every recognized file in dir as an active
// source and returns the names loaded, sorted. Unreadable files are logged
// and left out.
func (e *Engine) LoadSourcesFromDirectory(ctx context.Context, dir string) ([]string, error) {
	files, skipped, err := corpus.ReadDirectory(ctx, dir, corpus.LoaderOptions{
		Extensions: e.extensions,
		Workers:    e.readWorkers,
	})
	if err != nil {
		return nil, err
	}
	if skipped > 0 {
		sourceReadFailures.Add(float64(skipped))
	}

	e.AddSources(files)

	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, f.Name)
	}
	e.logger.Info("Loaded sources", "dir", dir, "count", len(names))
	return names, nil
}

// ReloadFiles re-reads the given paths and upserts them as active sources.
// It is the handler used for watcher batches.
func (e *Engine) ReloadFiles(ctx context.Context, paths []string) []string {
	files, skipped, err := corpus.ReadFiles(ctx, paths, e.readWorkers)
	if err != nil {
		e.logger.Error("Reloading sources failed", "err", err)
		return nil
	}
	if skipped > 0 {
		sourceReadFailures.Add(float64(skipped))
	}

	e.AddSources(files)

	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, f.Name)
	}
	if len(names) > 0 {
		e.logger.Info("Reloaded sources", "names", names)
	}
	return names
}

// PredictNextWords predicts up to k next words for text.
func (e *Engine) PredictNextWords(text string, k int) ([]markov.Suggestion, int) {
	start := time.Now()
	suggestions, order := e.model.Load().Predict(text, k)

	predictionDuration.Observe(time.Since(start).Seconds())
	predictionsTotal.WithLabelValues(strconv.Itoa(order)).Inc()
	return suggestions, order
}

// Complete returns up to limit vocabulary words starting with prefix.
func (e *Engine) Complete(prefix string, limit int) []markov.Completion {
	return e.model.Load().Complete(prefix, limit)
}

// Model returns the current model snapshot.
func (e *Engine) Model() *markov.Model {
	return e.model.Load()
}

// Stats returns registry and model statistics.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()

	return Stats{
		Stats:         e.model.Load().Stats(),
		Sources:       e.registry.Len(),
		ActiveSources: e.registry.ActiveCount(),
		Retrains:      e.retrains,
		LastTrained:   e.lastTrained,
	}
}

// retrain rebuilds the model from the active sources. Caller holds mu.
func (e *Engine) retrain() {
	start := time.Now()
	e.logger.Debug("Training model", "active", e.registry.ActiveCount(), "sources", e.registry.Len())

	m := e.builder.Build(e.registry.ActiveText())
	e.model.Store(m)

	elapsed := time.Since(start)
	e.retrains++
	e.lastTrained = time.Now()

	retrainsTotal.Inc()
	retrainDuration.Observe(elapsed.Seconds())
	sourcesGauge.Set(float64(e.registry.Len()))
	activeSourcesGauge.Set(float64(e.registry.ActiveCount()))

	if !m.Trained() {
		e.logger.Info("No active sources, model is untrained")
		return
	}
	s := m.Stats()
	e.logger.Debug("Training done",
		"took", elapsed,
		"tokens", s.Tokens,
		"first", s.FirstOrder,
		"second", s.SecondOrder)
}
