package server

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/bastiangx/wordchain/pkg/engine"
	"github.com/bastiangx/wordchain/pkg/markov"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func init() {
	log.SetLevel(log.FatalLevel)
}

func newTestEngine() *engine.Engine {
	e := engine.New(engine.Options{Logger: log.New(io.Discard)})
	e.AddSource("cats.txt", "the cat sat on the mat. the cat ran.", true)
	e.AddSource("dogs.txt", "the dog barked.", false)
	return e
}

func encodeRequests(t *testing.T, reqs ...any) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	for _, r := range reqs {
		require.NoError(t, enc.Encode(r))
	}
	return &buf
}

// run serves the requests and returns a decoder positioned after the ready message
func run(t *testing.T, e *engine.Engine, in io.Reader) (*msgpack.Decoder, error) {
	t.Helper()
	var out bytes.Buffer
	s := NewServerWithIO(e, Limits{DefaultSuggestions: 3, MaxSuggestions: 5, MaxTextLength: 64}, in, &out)
	err := s.Start(context.Background())

	dec := msgpack.NewDecoder(&out)
	var ready HealthResponse
	require.NoError(t, dec.Decode(&ready))
	assert.Equal(t, "ready", ready.Status)
	assert.True(t, ready.Trained)
	return dec, err
}

func active(b bool) *bool { return &b }

func TestPredict(t *testing.T) {
	in := encodeRequests(t,
		Request{ID: "1", Action: ActionPredict, Text: "the cat"},
		Request{ID: "2", Text: "the", K: 1},
		Request{ID: "3", Action: "PREDICT", Text: ""},
	)
	dec, err := run(t, newTestEngine(), in)
	require.NoError(t, err)

	var resp PredictResponse
	require.NoError(t, dec.Decode(&resp))
	assert.Equal(t, "1", resp.ID)
	assert.Equal(t, statusOK, resp.Status)
	assert.Equal(t, 2, resp.Order)
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, []markov.Suggestion{{Word: "sat", Probability: 50}, {Word: "ran", Probability: 50}}, resp.Suggestions)
	assert.GreaterOrEqual(t, resp.TimeTaken, int64(0))

	resp = PredictResponse{}
	require.NoError(t, dec.Decode(&resp))
	assert.Equal(t, "2", resp.ID)
	assert.Equal(t, []markov.Suggestion{{Word: "cat", Probability: 67}}, resp.Suggestions)
	assert.Equal(t, 1, resp.Order)

	resp = PredictResponse{}
	require.NoError(t, dec.Decode(&resp))
	assert.Equal(t, "3", resp.ID)
	assert.Empty(t, resp.Suggestions)
	assert.Equal(t, 1, resp.Order)
}

func TestPredictTextTooLong(t *testing.T) {
	in := encodeRequests(t, Request{ID: "long", Text: string(bytes.Repeat([]byte("a "), 40))})
	dec, err := run(t, newTestEngine(), in)
	require.NoError(t, err)

	var resp ErrorResponse
	require.NoError(t, dec.Decode(&resp))
	assert.Equal(t, statusError, resp.Status)
	assert.Equal(t, 413, resp.Code)
}

func TestSourcesAndToggle(t *testing.T) {
	e := newTestEngine()
	in := encodeRequests(t,
		Request{ID: "s", Action: ActionSources},
		Request{ID: "t1", Action: ActionToggle, Source: "dogs.txt", Active: active(true)},
		Request{ID: "t2", Action: ActionToggle, Source: "dog", Active: active(false)},
		Request{ID: "t3", Action: ActionToggle, Source: "cats.txt", Active: active(false)},
		Request{ID: "t4", Action: ActionToggle, Source: "cats.txt"},
	)
	dec, err := run(t, e, in)
	require.NoError(t, err)

	var sources SourcesResponse
	require.NoError(t, dec.Decode(&sources))
	require.Len(t, sources.Sources, 2)
	assert.Equal(t, "cats.txt", sources.Sources[0].Name)
	assert.False(t, sources.Sources[1].Active)

	var toggled ToggleResponse
	require.NoError(t, dec.Decode(&toggled))
	assert.True(t, toggled.Success)
	assert.True(t, toggled.Active)
	assert.Equal(t, 2, e.Stats().ActiveSources)

	var unknown ToggleResponse
	require.NoError(t, dec.Decode(&unknown))
	assert.Equal(t, "t2", unknown.ID)
	assert.Equal(t, statusOK, unknown.Status)
	assert.False(t, unknown.Success)
	assert.Equal(t, "dogs.txt", unknown.Closest)

	var off, defaulted ToggleResponse
	require.NoError(t, dec.Decode(&off))
	assert.True(t, off.Success)
	assert.False(t, off.Active)
	require.NoError(t, dec.Decode(&defaulted))
	assert.True(t, defaulted.Success)
	assert.True(t, defaulted.Active, "missing active means true")
	assert.Equal(t, 2, e.Stats().ActiveSources)
}

func TestCompleteStatsHealth(t *testing.T) {
	in := encodeRequests(t,
		Request{ID: "c", Action: ActionComplete, Prefix: "ca"},
		Request{ID: "c2", Action: ActionComplete},
		Request{ID: "st", Action: ActionStats},
		Request{ID: "h", Action: ActionHealth},
		Request{ID: "x", Action: "explode"},
	)
	dec, err := run(t, newTestEngine(), in)
	require.NoError(t, err)

	var complete CompleteResponse
	require.NoError(t, dec.Decode(&complete))
	require.Equal(t, 1, complete.Count)
	assert.Equal(t, "cat", complete.Completions[0].Word)
	assert.Equal(t, 2, complete.Completions[0].Frequency)

	var missing ErrorResponse
	require.NoError(t, dec.Decode(&missing))
	assert.Equal(t, 400, missing.Code)

	var stats StatsResponse
	require.NoError(t, dec.Decode(&stats))
	assert.Equal(t, 2, stats.Stats.Sources)
	assert.Equal(t, 1, stats.Stats.ActiveSources)
	assert.Equal(t, 9, stats.Stats.Tokens)

	var health HealthResponse
	require.NoError(t, dec.Decode(&health))
	assert.Equal(t, "h", health.ID)
	assert.Equal(t, statusOK, health.Status)

	var unknown ErrorResponse
	require.NoError(t, dec.Decode(&unknown))
	assert.Contains(t, unknown.Error, "unknown action")
}

func TestInvalidRequestKeepsServing(t *testing.T) {
	in := encodeRequests(t, "not a map", Request{ID: "ok", Action: ActionHealth})
	dec, err := run(t, newTestEngine(), in)
	require.NoError(t, err)

	var bad ErrorResponse
	require.NoError(t, dec.Decode(&bad))
	assert.Equal(t, 400, bad.Code)

	var health HealthResponse
	require.NoError(t, dec.Decode(&health))
	assert.Equal(t, "ok", health.ID)
}

func TestMalformedStreamStops(t *testing.T) {
	// 0xc1 is never used by msgpack
	dec, err := run(t, newTestEngine(), bytes.NewReader([]byte{0xc1}))
	assert.Error(t, err)

	var bad ErrorResponse
	require.NoError(t, dec.Decode(&bad))
	assert.Equal(t, statusError, bad.Status)
}
