package server

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"hsnserve/internal/logger"
	"hsnserve/pkg/catalog"
	"hsnserve/pkg/config"
	"hsnserve/pkg/index"
	"hsnserve/pkg/suggest"
	"hsnserve/pkg/validate"

	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// Server handles the IPC for validation and suggestion requests.
type Server struct {
	validator *validate.Validator
	engine    *suggest.Engine
	cat       *catalog.Catalog
	idx       *index.Index
	cfg       *config.Config
	dec       *msgpack.Decoder
	enc       *msgpack.Encoder
	log       *log.Logger
}

// NewServer creates a server using stdin/stdout for IPC.
func NewServer(v *validate.Validator, e *suggest.Engine, cat *catalog.Catalog, ix *index.Index, cfg *config.Config) *Server {
	return newServerWithIO(v, e, cat, ix, cfg, os.Stdin, os.Stdout)
}

func newServerWithIO(v *validate.Validator, e *suggest.Engine, cat *catalog.Catalog, ix *index.Index, cfg *config.Config, r io.Reader, w io.Writer) *Server {
	return &Server{
		validator: v,
		engine:    e,
		cat:       cat,
		idx:       ix,
		cfg:       cfg,
		dec:       msgpack.NewDecoder(r),
		enc:       msgpack.NewEncoder(w),
		log:       logger.New("ipc"),
	}
}

// Start begins listening for IPC requests. It returns nil on clean EOF.
func (s *Server) Start() error {
	s.log.Debug("Starting server")
	s.send(map[string]string{"status": "ready"})

	for {
		var req Request
		if err := s.dec.Decode(&req); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			// A corrupt stream cannot be resynchronized; report and stop.
			s.log.Errorf("Decoding request: %v", err)
			s.sendError("", "Invalid msgpack request", 400)
			return err
		}
		s.handleRequest(req)
	}
}

// handleRequest dispatches one decoded request by op.
func (s *Server) handleRequest(req Request) {
	switch req.Op {
	case "validate":
		s.handleValidate(req)
	case "suggest":
		s.handleSuggest(req)
	case "explain":
		s.handleExplain(req)
	case "children":
		s.handleChildren(req)
	case "summary":
		s.handleSummary(req)
	case "health":
		s.handleHealth(req)
	default:
		s.sendError(req.ID, fmt.Sprintf("Unknown op: %s", req.Op), 400)
	}
}

func (s *Server) handleValidate(req Request) {
	codes := req.Codes
	if len(codes) == 0 {
		if req.Code == "" {
			s.sendError(req.ID, "Missing 'code' or 'codes' parameter", 400)
			return
		}
		codes = []string{req.Code}
	}
	if max := s.cfg.Server.MaxBatch; max > 0 && len(codes) > max {
		s.sendError(req.ID, fmt.Sprintf("Batch exceeds maximum of %d codes", max), 400)
		return
	}

	start := time.Now()
	results := s.validator.ValidateAll(codes)
	elapsed := time.Since(start)

	payloads := make([]ValidationPayload, len(results))
	for i, r := range results {
		payloads[i] = ValidationPayload{
			InputCode:      r.InputCode,
			CleanedCode:    r.CleanedCode,
			FormatValid:    r.FormatValid,
			Exists:         r.Exists,
			Description:    r.Description,
			HierarchyValid: r.HierarchyValid,
			ParentCodes:    r.ParentCodes,
			ValidParents:   r.ValidParents,
			MissingParents: r.MissingParents,
			OverallValid:   r.OverallValid,
			Error:          r.Err,
		}
	}

	s.send(ValidateResponse{
		ID:        req.ID,
		Results:   payloads,
		Count:     len(payloads),
		TimeTaken: elapsed.Microseconds(),
	})
}

// checkQuery validates shared suggest/explain request fields and returns the
// clamped limit, or false when an error response was already sent.
func (s *Server) checkQuery(req Request) (int, bool) {
	if strings.TrimSpace(req.Query) == "" {
		s.sendError(req.ID, "Missing 'q' parameter", 400)
		return 0, false
	}
	if max := s.cfg.Server.MaxQueryLen; max > 0 && len(req.Query) > max {
		s.sendError(req.ID, fmt.Sprintf("Query exceeds maximum length of %d", max), 400)
		return 0, false
	}

	limit := req.Limit
	if limit < 1 {
		limit = s.cfg.Suggest.DefaultTopK
	}
	if max := s.cfg.Server.MaxLimit; max > 0 && limit > max {
		limit = max
	}
	return limit, true
}

func (s *Server) handleSuggest(req Request) {
	limit, ok := s.checkQuery(req)
	if !ok {
		return
	}

	start := time.Now()
	suggestions := s.engine.Suggest(req.Query, limit)
	elapsed := time.Since(start)

	s.send(SuggestResponse{
		ID:          req.ID,
		Query:       req.Query,
		Suggestions: toPayloads(suggestions),
		Count:       len(suggestions),
		TimeTaken:   elapsed.Microseconds(),
	})
}

func (s *Server) handleExplain(req Request) {
	limit, ok := s.checkQuery(req)
	if !ok {
		return
	}

	start := time.Now()
	explained := s.engine.SuggestWithExplanation(req.Query, limit)
	elapsed := time.Since(start)

	methods := make([]string, len(explained.Methods))
	for i, m := range explained.Methods {
		methods[i] = string(m)
	}

	s.send(ExplainResponse{
		ID:          req.ID,
		Query:       explained.Query,
		Suggestions: toPayloads(explained.Suggestions),
		KeyTerms:    explained.KeyTerms,
		Methods:     methods,
		Count:       len(explained.Suggestions),
		TimeTaken:   elapsed.Microseconds(),
	})
}

func (s *Server) handleChildren(req Request) {
	if req.Code == "" {
		s.sendError(req.ID, "Missing 'code' parameter", 400)
		return
	}

	children := s.cat.Children(req.Code)
	entries := make([]EntryPayload, len(children))
	for i, e := range children {
		entries[i] = EntryPayload{Code: e.Code, Description: e.Description}
	}

	s.send(ChildrenResponse{
		ID:      req.ID,
		Code:    req.Code,
		Entries: entries,
		Count:   len(entries),
	})
}

func (s *Server) handleSummary(req Request) {
	summary := s.cat.Summarize()
	s.send(SummaryResponse{
		ID:           req.ID,
		TotalCodes:   summary.TotalCodes,
		LengthCounts: summary.LengthCounts,
	})
}

func (s *Server) handleHealth(req Request) {
	s.send(HealthResponse{
		ID:         req.ID,
		Status:     "ok",
		DataLoaded: s.cat.Len() > 0,
		VocabTerms: s.idx.VocabSize(),
	})
}

// send encodes one response message to the client.
func (s *Server) send(response any) {
	if err := s.enc.Encode(response); err != nil {
		s.log.Errorf("Encoding response: %v", err)
	}
}

// sendError sends an error response
func (s *Server) sendError(id, message string, code int) {
	s.send(ErrorResponse{ID: id, Error: message, Code: code})
}

func toPayloads(suggestions []suggest.Suggestion) []SuggestionPayload {
	out := make([]SuggestionPayload, len(suggestions))
	for i, sg := range suggestions {
		out[i] = SuggestionPayload{
			Code:        sg.Code,
			Description: sg.Description,
			Score:       sg.Score,
			Confidence:  string(sg.Confidence),
			Method:      string(sg.Method),
		}
	}
	return out
}
