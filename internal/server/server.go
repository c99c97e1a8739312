package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/example/go-nertags/internal/config"
	"github.com/example/go-nertags/internal/indexer"
	"github.com/example/go-nertags/internal/pad"
	"github.com/example/go-nertags/internal/text"
	"github.com/example/go-nertags/internal/token"
	"github.com/example/go-nertags/internal/vocab"
)

// ParseLogLevel converts a case-insensitive level string to slog.Level.
// An empty string returns slog.LevelInfo. Unknown strings return an error.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q (want debug|info|warn|error)", s)
	}
}

// ---------------------------------------------------------------------------
// Functional options
// ---------------------------------------------------------------------------

type options struct {
	maxTokens    int
	maxBodyBytes int64
	logger       *slog.Logger
}

func defaultOptions() options {
	return options{
		maxTokens:    512,
		maxBodyBytes: 1 << 20,
		logger:       slog.Default(),
	}
}

// Option configures the HTTP handler.
type Option func(*options)

// WithMaxTokens sets the maximum number of tokens accepted per request.
func WithMaxTokens(n int) Option {
	return func(o *options) { o.maxTokens = n }
}

// WithMaxBodyBytes caps the request body size.
func WithMaxBodyBytes(n int64) Option {
	return func(o *options) { o.maxBodyBytes = n }
}

// WithLogger sets the slog.Logger used for request logging.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// ---------------------------------------------------------------------------
// handler
// ---------------------------------------------------------------------------

type handler struct {
	ix    indexer.TokenIndexer
	vocab *vocab.Vocabulary
	opts  options
	log   *slog.Logger
}

// NewHandler returns an http.Handler that serves /health, /vocab,
// /vocab/{namespace}, POST /count and POST /index.
func NewHandler(ix indexer.TokenIndexer, v *vocab.Vocabulary, optFns ...Option) http.Handler {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	h := &handler{
		ix:    ix,
		vocab: v,
		opts:  opts,
		log:   opts.logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", h.handleHealth)
	mux.HandleFunc("/vocab", h.handleVocab)
	mux.HandleFunc("/vocab/{namespace}", h.handleNamespace)
	mux.HandleFunc("/count", h.handleCount)
	mux.HandleFunc("/index", h.handleIndex)
	return mux
}

func buildVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func (h *handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildVersion(),
	})
}

type vocabResponse struct {
	Indexer    string         `json:"indexer_namespace"`
	Namespaces map[string]int `json:"namespaces"`
}

func (h *handler) handleVocab(w http.ResponseWriter, _ *http.Request) {
	resp := vocabResponse{
		Indexer:    h.ix.Namespace(),
		Namespaces: map[string]int{},
	}
	for _, ns := range h.vocab.Namespaces() {
		resp.Namespaces[ns] = h.vocab.Size(ns)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) handleNamespace(w http.ResponseWriter, r *http.Request) {
	ns := r.PathValue("namespace")
	tokens := h.vocab.Tokens(ns)
	if tokens == nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("namespace %q not found", ns))
		return
	}
	writeJSON(w, http.StatusOK, tokens)
}

type tokensRequest struct {
	Tokens []token.Token `json:"tokens"`
	Length *int          `json:"length,omitempty"`
}

type indexResponse struct {
	IDs          []int  `json:"ids"`
	Mask         []bool `json:"mask"`
	PaddingToken int    `json:"padding_token"`
}

// decodeTokens reads and validates a tokens request. It writes the error
// response itself and returns false on failure.
func (h *handler) decodeTokens(w http.ResponseWriter, r *http.Request) (tokensRequest, bool) {
	var req tokensRequest

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return req, false
	}

	if r.Body == nil {
		writeError(w, http.StatusBadRequest, "request body is required")
		return req, false
	}

	body := http.MaxBytesReader(w, r.Body, h.opts.maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request body exceeds %d bytes", h.opts.maxBodyBytes))
			return req, false
		}
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return req, false
	}

	if len(req.Tokens) == 0 {
		writeError(w, http.StatusBadRequest, "tokens field is required")
		return req, false
	}

	if h.opts.maxTokens > 0 && len(req.Tokens) > h.opts.maxTokens {
		writeError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("request exceeds maximum of %d tokens", h.opts.maxTokens))
		return req, false
	}

	for i, tok := range req.Tokens {
		word, err := text.Token(tok.Text)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("token %d: %v", i, err))
			return req, false
		}
		req.Tokens[i].Text = word
		req.Tokens[i].EntType = text.Label(tok.EntType)
		req.Tokens[i].POS = text.Label(tok.POS)
	}

	if req.Length != nil && *req.Length < 0 {
		writeError(w, http.StatusBadRequest, "length must not be negative")
		return req, false
	}

	return req, true
}

func (h *handler) handleCount(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeTokens(w, r)
	if !ok {
		return
	}

	counter := vocab.Counter{}
	indexer.CountTokens(h.ix, req.Tokens, counter)
	writeJSON(w, http.StatusOK, counter)
}

func (h *handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeTokens(w, r)
	if !ok {
		return
	}

	start := time.Now()
	ids, err := indexer.IndexTokens(h.ix, req.Tokens, h.vocab)
	if err != nil {
		h.fail(r.Context(), w, "indexing failed", len(req.Tokens), err)
		return
	}

	padTok, err := h.ix.PaddingToken(h.vocab)
	if err != nil {
		h.fail(r.Context(), w, "padding token lookup failed", len(req.Tokens), err)
		return
	}

	length := len(ids)
	if req.Length != nil {
		length = *req.Length
	}
	padded := h.ix.PadTokenSequence(ids, length, map[string]int{}, padTok)

	h.log.InfoContext(r.Context(), "indexed tokens",
		slog.String("namespace", h.ix.Namespace()),
		slog.Int("num_tokens", len(req.Tokens)),
		slog.Int("length", length),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
	)

	writeJSON(w, http.StatusOK, indexResponse{
		IDs:          padded,
		Mask:         pad.Mask(len(ids), length),
		PaddingToken: padTok,
	})
}

func (h *handler) fail(ctx context.Context, w http.ResponseWriter, msg string, numTokens int, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, vocab.ErrTokenNotFound) {
		status = http.StatusUnprocessableEntity
	}
	h.log.WarnContext(ctx, msg,
		slog.String("namespace", h.ix.Namespace()),
		slog.Int("num_tokens", numTokens),
		slog.String("error", err.Error()),
	)
	writeError(w, status, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// ---------------------------------------------------------------------------
// Server
// ---------------------------------------------------------------------------

// Server wires the HTTP handler into a net/http.Server with graceful shutdown.
type Server struct {
	cfg             config.Config
	ix              indexer.TokenIndexer
	vocab           *vocab.Vocabulary
	logger          *slog.Logger
	shutdownTimeout time.Duration
}

func New(cfg config.Config, ix indexer.TokenIndexer, v *vocab.Vocabulary) *Server {
	return &Server{
		cfg:             cfg,
		ix:              ix,
		vocab:           v,
		logger:          slog.Default(),
		shutdownTimeout: 30 * time.Second,
	}
}

// WithShutdownTimeout overrides the graceful-shutdown drain period.
func (s *Server) WithShutdownTimeout(d time.Duration) *Server {
	s.shutdownTimeout = d
	return s
}

// WithLogger overrides the request logger.
func (s *Server) WithLogger(l *slog.Logger) *Server {
	s.logger = l
	return s
}

func (s *Server) Start(ctx context.Context) error {
	if s.ix == nil || s.vocab == nil {
		return errors.New("server requires an indexer and a vocabulary")
	}

	h := NewHandler(s.ix, s.vocab,
		WithMaxTokens(s.cfg.Server.MaxTokens),
		WithLogger(s.logger),
	)

	timeout := time.Duration(s.cfg.Server.RequestTimeout) * time.Second
	httpServer := &http.Server{
		Addr:              s.cfg.Server.ListenAddr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       timeout,
		WriteTimeout:      timeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	s.logger.InfoContext(ctx, "server listening",
		slog.String("addr", s.cfg.Server.ListenAddr),
		slog.String("namespace", s.ix.Namespace()),
	)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http listen: %w", err)
	}
}

func ProbeHTTP(addr string) error {
	resp, err := http.Get("http://" + addr + "/health") //nolint:noctx
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected health status: %s", resp.Status)
	}
	return nil
}
