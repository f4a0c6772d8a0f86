package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/CTAG07/wordmarkov/pkg/markov"
)

// ChainAPI holds the dependencies for the chain API handlers.
type ChainAPI struct {
	session *Session
	logger  *slog.Logger
}

// NewChainAPI creates a new instance of the ChainAPI.
func NewChainAPI(session *Session, logger *slog.Logger) *ChainAPI {
	return &ChainAPI{
		session: session,
		logger:  logger,
	}
}

// RegisterRoutes sets up the routing for all /api/chain endpoints.
func (c *ChainAPI) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/chain/parse", c.handleParse)
	mux.HandleFunc("/api/chain/train", c.handleTrain)
	mux.HandleFunc("/api/chain/compose", c.handleCompose)
	mux.HandleFunc("/api/chain/stream", c.handleStream)
	mux.HandleFunc("/api/chain/stats", c.handleStats)
	mux.HandleFunc("/api/chain/export", c.handleExport)
	mux.HandleFunc("/api/chain/import", c.handleImport)
	mux.HandleFunc("/api/chain/prune", c.handlePrune)
	mux.HandleFunc("/api/chain/save", c.handleSave)
}

type ParseRequest struct {
	Text string `json:"text"`
}

type PruneRequest struct {
	MinHits int `json:"min_hits"`
}

type ComposeResponse struct {
	Sentence string `json:"sentence"`
}

// requireMethod writes a 405 and returns false unless r uses method.
func requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		w.Header().Set("Allow", method)
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return false
	}
	return true
}

// handleParse learns a single sentence.
func (c *ChainAPI) handleParse(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req ParseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid JSON request body")
		return
	}
	if req.Text == "" {
		respondWithError(w, http.StatusBadRequest, "Text is required")
		return
	}
	c.session.Parse(req.Text)
	w.WriteHeader(http.StatusNoContent)
}

// handleTrain learns every line of a plain text request body.
func (c *ChainAPI) handleTrain(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	lines, err := c.session.Train(r.Context(), r.Body)
	if err != nil {
		c.logger.Error("Failed to train chain", "error", err)
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Training failed: %v", err))
		return
	}
	respondWithJSON(w, http.StatusAccepted, map[string]int{"lines": lines})
}

// handleCompose composes a sentence. With a prompt parameter it seeds from
// the prompt's words, with a seed parameter from that exact word, and
// otherwise from a random textlet.
func (c *ChainAPI) handleCompose(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	query := r.URL.Query()

	maxLength := 0
	if raw := query.Get("max_length"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respondWithError(w, http.StatusBadRequest, "max_length must be a non-negative integer")
			return
		}
		maxLength = n
	}

	var (
		sentence string
		err      error
	)
	if prompt := query.Get("prompt"); prompt != "" {
		sentence, err = c.session.Compose(prompt, maxLength)
	} else {
		sentence, err = c.session.ComposeFrom(query.Get("seed"), maxLength)
	}
	if err != nil {
		respondWithError(w, composeErrorStatus(err), err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, ComposeResponse{Sentence: sentence})
}

// handleStream composes a sentence and sends it as plain text, one token per
// flushed write.
func (c *ChainAPI) handleStream(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	var flush func()
	if flusher, ok := w.(http.Flusher); ok {
		flush = flusher.Flush
	}

	started := false
	sw := writerFunc(func(p []byte) (int, error) {
		if !started {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.WriteHeader(http.StatusOK)
			started = true
		}
		return w.Write(p)
	})

	err := c.session.StreamTo(r.Context(), sw, flush, r.URL.Query().Get("seed"))
	if err != nil && !started {
		respondWithError(w, composeErrorStatus(err), err.Error())
		return
	}
	if err != nil {
		c.logger.Debug("Stream ended early", "error", err)
	}
}

// writerFunc adapts a function to io.Writer.
type writerFunc func(p []byte) (int, error)

func (f writerFunc) Write(p []byte) (int, error) { return f(p) }

// composeErrorStatus maps a composition failure onto an HTTP status.
func composeErrorStatus(err error) int {
	switch {
	case errors.Is(err, markov.ErrSeedNotFound):
		return http.StatusNotFound
	case errors.Is(err, markov.ErrEmptyChain):
		return http.StatusConflict
	case errors.Is(err, markov.ErrDeadEnd):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (c *ChainAPI) handleStats(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	respondWithJSON(w, http.StatusOK, c.session.Stats())
}

func (c *ChainAPI) handleExport(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.json\"", c.session.chainName))
	if err := c.session.Export(w); err != nil {
		c.logger.Error("Failed to export chain", "error", err)
	}
}

// handleImport merges an uploaded JSON chain into the live chain.
func (c *ChainAPI) handleImport(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	if err := c.session.Import(r.Body); err != nil {
		c.logger.Error("Failed to import chain", "error", err)
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Import failed: %v", err))
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (c *ChainAPI) handlePrune(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req PruneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid JSON request body")
		return
	}
	if req.MinHits < 0 {
		respondWithError(w, http.StatusBadRequest, "min_hits must not be negative")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]int{"removed": c.session.Prune(req.MinHits)})
}

// handleSave writes the live chain to the database.
func (c *ChainAPI) handleSave(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	if err := c.session.Save(r.Context()); err != nil {
		c.logger.Error("Failed to save chain", "error", err)
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Save failed: %v", err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		err := json.NewEncoder(w).Encode(payload)
		if err != nil {
			fmt.Printf("ERROR: Failed to encode JSON response: %v\n", err)
		}
	}
}
