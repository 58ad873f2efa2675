package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/bastiangx/wordchain/internal/logger"
	"github.com/bastiangx/wordchain/pkg/engine"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// Limits bounds request values.
type Limits struct {
	DefaultSuggestions int
	MaxSuggestions     int
	MaxTextLength      int
}

// Server handles the IPC for next-word predictions
type Server struct {
	predictor engine.IPredictor
	limits    Limits
	logger    *log.Logger

	dec *msgpack.Decoder

	mu     sync.Mutex
	writer *bufio.Writer
	enc    *msgpack.Encoder

	requests int64
}

// NewServer creates a server using stdin/stdout for IPC
func NewServer(predictor engine.IPredictor, limits Limits) *Server {
	return NewServerWithIO(predictor, limits, os.Stdin, os.Stdout)
}

// NewServerWithIO creates a server on arbitrary streams.
func NewServerWithIO(predictor engine.IPredictor, limits Limits, r io.Reader, w io.Writer) *Server {
	if limits.MaxSuggestions < 1 {
		limits.MaxSuggestions = 20
	}
	if limits.DefaultSuggestions < 1 {
		limits.DefaultSuggestions = min(3, limits.MaxSuggestions)
	}
	if limits.MaxTextLength < 1 {
		limits.MaxTextLength = 4096
	}

	bw := bufio.NewWriter(w)
	return &Server{
		predictor: predictor,
		limits:    limits,
		logger:    logger.New("ipc"),
		dec:       msgpack.NewDecoder(bufio.NewReader(r)),
		writer:    bw,
		enc:       msgpack.NewEncoder(bw),
	}
}

// SetLogger replaces the server's logger. Call before Start.
func (s *Server) SetLogger(l *log.Logger) {
	s.logger = l
}

// Start announces readiness and serves requests until the input ends or
// ctx is canceled. A clean EOF returns nil.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Debug("Starting IPC server")

	if err := s.send(HealthResponse{Status: "ready", Trained: s.predictor.Stats().Trained}); err != nil {
		return fmt.Errorf("writing ready message: %w", err)
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		raw, err := s.dec.DecodeRaw()
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.logger.Debug("Input closed", "requests", s.requests)
				return nil
			}
			s.logger.Error("Reading request", "err", err)
			// the stream cannot be resynchronized after a broken frame
			_ = s.sendError("", "malformed msgpack stream", 400)
			return fmt.Errorf("reading request: %w", err)
		}

		s.requests++
		s.handleRequest(raw)
	}
}

// handleRequest decodes a single request and dispatches on its action
func (s *Server) handleRequest(raw msgpack.RawMessage) {
	var req Request
	if err := msgpack.Unmarshal(raw, &req); err != nil {
		s.logger.Warn("Invalid request", "err", err)
		s.sendError("", "invalid request: expected a map", 400)
		return
	}

	action := strings.ToLower(strings.TrimSpace(req.Action))
	if action == "" {
		action = ActionPredict
	}

	var err error
	switch action {
	case ActionPredict:
		err = s.handlePredict(req)
	case ActionSources:
		err = s.send(SourcesResponse{ID: req.ID, Status: statusOK, Sources: s.predictor.ListSources()})
	case ActionToggle:
		err = s.handleToggle(req)
	case ActionComplete:
		err = s.handleComplete(req)
	case ActionStats:
		err = s.send(StatsResponse{ID: req.ID, Status: statusOK, Stats: s.predictor.Stats()})
	case ActionHealth:
		err = s.send(HealthResponse{ID: req.ID, Status: statusOK, Trained: s.predictor.Stats().Trained})
	default:
		err = s.sendError(req.ID, fmt.Sprintf("unknown action: %s", req.Action), 400)
	}
	if err != nil {
		s.logger.Error("Writing response", "id", req.ID, "err", err)
	}
}

func (s *Server) handlePredict(req Request) error {
	if len(req.Text) > s.limits.MaxTextLength {
		return s.sendError(req.ID, fmt.Sprintf("text exceeds maximum length of %d bytes", s.limits.MaxTextLength), 413)
	}

	k := s.clampK(req.K)
	start := time.Now()
	suggestions, order := s.predictor.PredictNextWords(req.Text, k)
	elapsed := time.Since(start)

	s.logger.Debug("Prediction", "id", req.ID, "took", elapsed, "order", order, "count", len(suggestions))
	return s.send(PredictResponse{
		ID:          req.ID,
		Status:      statusOK,
		Suggestions: suggestions,
		Order:       order,
		Count:       len(suggestions),
		TimeTaken:   elapsed.Microseconds(),
	})
}

func (s *Server) handleToggle(req Request) error {
	active := true
	if req.Active != nil {
		active = *req.Active
	}

	resp := ToggleResponse{
		ID:      req.ID,
		Status:  statusOK,
		Success: s.predictor.ToggleSource(req.Source, active),
		Source:  req.Source,
		Active:  active,
	}
	if !resp.Success {
		resp.Closest, _ = s.predictor.ClosestSource(req.Source)
	}
	return s.send(resp)
}

func (s *Server) handleComplete(req Request) error {
	prefix := strings.TrimSpace(req.Prefix)
	if prefix == "" {
		return s.sendError(req.ID, "missing 'prefix' parameter", 400)
	}

	limit := req.K
	if limit < 1 || limit > s.limits.MaxSuggestions {
		limit = s.limits.MaxSuggestions
	}
	start := time.Now()
	completions := s.predictor.Complete(prefix, limit)
	return s.send(CompleteResponse{
		ID:          req.ID,
		Status:      statusOK,
		Completions: completions,
		Count:       len(completions),
		TimeTaken:   time.Since(start).Microseconds(),
	})
}

func (s *Server) clampK(k int) int {
	if k < 1 {
		return s.limits.DefaultSuggestions
	}
	return min(k, s.limits.MaxSuggestions)
}

// send encodes one response and flushes it
func (s *Server) send(response any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.enc.Encode(response); err != nil {
		return err
	}
	return s.writer.Flush()
}

// sendError sends an error response
func (s *Server) sendError(id, message string, code int) error {
	return s.send(ErrorResponse{
		ID:     id,
		Status: statusError,
		Error:  message,
		Code:   code,
	})
}
