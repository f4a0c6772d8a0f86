package main

import (
	"log/slog"
	"net/http"
)

const actionShutdown = "shutdown"

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// ServerAPI holds the dependencies for the process control handlers.
type ServerAPI struct {
	actionChan chan string
	logger     *slog.Logger
}

// VersionInfo defines the structure for build/version information.
type VersionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
}

// NewServerAPI creates a new instance of the ServerAPI.
func NewServerAPI(actionChan chan string, logger *slog.Logger) *ServerAPI {
	return &ServerAPI{
		actionChan: actionChan,
		logger:     logger,
	}
}

// RegisterRoutes sets up the routing for all /api/server endpoints.
func (a *ServerAPI) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/server/version", a.handleVersion)
	mux.HandleFunc("/api/server/shutdown", a.handleShutdown)
}

// handleVersion returns the application's build information.
func (a *ServerAPI) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	respondWithJSON(w, http.StatusOK, VersionInfo{
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
	})
}

// handleShutdown initiates a graceful shutdown.
func (a *ServerAPI) handleShutdown(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	a.logger.Warn("Shutdown initiated via API")
	respondWithJSON(w, http.StatusAccepted, map[string]string{"message": "Shutting down..."})

	sendAction(a.actionChan, actionShutdown)
}

// NewAPIHandler assembles every API route behind the key check.
func NewAPIHandler(session *Session, config *Config, actionChan chan string, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	NewChainAPI(session, logger).RegisterRoutes(mux)
	NewServerAPI(actionChan, logger).RegisterRoutes(mux)

	root := http.NewServeMux()
	root.Handle("/api/", NewAuthAPI(config.ApiKey, logger).Authenticate(mux))
	return root
}
