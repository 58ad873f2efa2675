/*
Package server implements msgpack IPC for next-word prediction.

The server reads a stream of msgpack maps from stdin and writes one msgpack
map per request to stdout. There is no framing beyond msgpack itself.
Logs never go to stdout.

On startup the server writes:

	{"status": "ready"}

Every request carries an id and an action:

	{"id": "r1", "action": "predict", "text": "the cat", "k": 3}
	{"id": "r2", "action": "sources"}
	{"id": "r3", "action": "toggle", "source": "sample1.txt", "active": false}
	{"id": "r4", "action": "complete", "prefix": "ca", "k": 5}
	{"id": "r5", "action": "stats"}
	{"id": "r6", "action": "health"}

A request without an action is treated as predict.

Predictions come back ranked, with the table order used and the time taken
in microseconds:

	{"id": "r1", "status": "ok", "s": [{"word": "sat", "probability": 50}, {"word": "ran", "probability": 50}], "o": 2, "c": 2, "t": 12}

A toggle of an unknown source is not an error. It reports success false
and the closest known name, if any. A missing active means true:

	{"id": "r3", "status": "ok", "success": false, "source": "samp1.txt", "active": false, "closest": "sample1.txt"}

Failures carry status "error", a message and an HTTP-like code:

	{"id": "r7", "status": "error", "e": "missing 'prefix' parameter", "code": 400}
*/
package server

import (
	"github.com/bastiangx/wordchain/pkg/corpus"
	"github.com/bastiangx/wordchain/pkg/engine"
	"github.com/bastiangx/wordchain/pkg/markov"
)

// Actions understood by the server.
const (
	ActionPredict  = "predict"
	ActionSources  = "sources"
	ActionToggle   = "toggle"
	ActionComplete = "complete"
	ActionStats    = "stats"
	ActionHealth   = "health"
)

const (
	statusOK    = "ok"
	statusError = "error"
)

// Request is the single request shape for every action.
type Request struct {
	ID     string `msgpack:"id"`
	Action string `msgpack:"action"`
	Text   string `msgpack:"text,omitempty"`
	K      int    `msgpack:"k,omitempty"`
	Source string `msgpack:"source,omitempty"`
	Active *bool  `msgpack:"active,omitempty"`
	Prefix string `msgpack:"prefix,omitempty"`
}

// PredictResponse answers predict.
type PredictResponse struct {
	ID          string              `msgpack:"id"`
	Status      string              `msgpack:"status"`
	Suggestions []markov.Suggestion `msgpack:"s"`
	Order       int                 `msgpack:"o"`
	Count       int                 `msgpack:"c"`
	TimeTaken   int64               `msgpack:"t"`
}

// SourcesResponse answers sources.
type SourcesResponse struct {
	ID      string              `msgpack:"id"`
	Status  string              `msgpack:"status"`
	Sources []corpus.SourceInfo `msgpack:"sources"`
}

// ToggleResponse answers toggle. Success is false for unknown sources.
type ToggleResponse struct {
	ID      string `msgpack:"id"`
	Status  string `msgpack:"status"`
	Success bool   `msgpack:"success"`
	Source  string `msgpack:"source"`
	Active  bool   `msgpack:"active"`
	Closest string `msgpack:"closest,omitempty"`
}

// CompleteResponse answers complete.
type CompleteResponse struct {
	ID          string              `msgpack:"id"`
	Status      string              `msgpack:"status"`
	Completions []markov.Completion `msgpack:"completions"`
	Count       int                 `msgpack:"c"`
	TimeTaken   int64               `msgpack:"t"`
}

// StatsResponse answers stats.
type StatsResponse struct {
	ID     string       `msgpack:"id"`
	Status string       `msgpack:"status"`
	Stats  engine.Stats `msgpack:"stats"`
}

// HealthResponse answers health and is also the ready message.
type HealthResponse struct {
	ID      string `msgpack:"id,omitempty"`
	Status  string `msgpack:"status"`
	Trained bool   `msgpack:"trained"`
}

// ErrorResponse reports a failed request.
type ErrorResponse struct {
	ID     string `msgpack:"id"`
	Status string `msgpack:"status"`
	Error  string `msgpack:"e"`
	Code   int    `msgpack:"code"`
}
