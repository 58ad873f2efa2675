package httpapi

import (
	"github.com/bastiangx/wordchain/pkg/corpus"
	"github.com/bastiangx/wordchain/pkg/markov"
)

// PredictRequest is the body of POST /predict. K is optional.
type PredictRequest struct {
	Text string `json:"text"`
	K    *int   `json:"k,omitempty"`
}

// PredictResponse is returned by POST /predict.
type PredictResponse struct {
	Suggestions []markov.Suggestion `json:"suggestions"`
	Order       int                 `json:"order"`
}

// SourcesResponse is returned by GET /sources.
type SourcesResponse struct {
	Sources []corpus.SourceInfo `json:"sources"`
}

// ToggleRequest is the body of POST /toggle_source. A missing active
// means true.
type ToggleRequest struct {
	Source string `json:"source"`
	Active *bool  `json:"active"`
}

// ToggleResponse is returned by POST /toggle_source. Closest is only set
// when the source is unknown and a similar name exists.
type ToggleResponse struct {
	Success bool   `json:"success"`
	Closest string `json:"closest,omitempty"`
}

// CompleteRequest is the body of POST /complete.
type CompleteRequest struct {
	Prefix string `json:"prefix" binding:"required"`
	Limit  int    `json:"limit,omitempty"`
}

// CompleteResponse is returned by POST /complete.
type CompleteResponse struct {
	Completions []markov.Completion `json:"completions"`
}

// ErrorResponse is the body of every 4xx/5xx reply.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}
