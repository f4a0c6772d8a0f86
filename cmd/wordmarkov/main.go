package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/CTAG07/wordmarkov/pkg/markov"
)

func main() {
	configPath := flag.String("config", "./config.json", "path to the JSON or YAML config file")
	noREPL := flag.Bool("no-repl", false, "serve the API only, without the interactive prompt")
	flag.Parse()

	baseLogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	actionChan := make(chan string, 1)

	go func() {
		osSignalChan := make(chan os.Signal, 1)
		signal.Notify(osSignalChan, syscall.SIGINT, syscall.SIGTERM)
		<-osSignalChan
		baseLogger.Info("OS signal received, initiating shutdown.")
		sendAction(actionChan, actionShutdown)
	}()

	if err := run(*configPath, flag.Args(), !*noREPL, actionChan); err != nil {
		baseLogger.Error("An error occurred, shutting down.", "error", err)
		os.Exit(1)
	}
}

// sendAction delivers action unless one is already pending.
func sendAction(actionChan chan string, action string) {
	select {
	case actionChan <- action:
	default:
	}
}

// run loads everything, serves until an action arrives, then saves and
// closes.
func run(configPath string, corpusArgs []string, withREPL bool, actionChan chan string) error {
	config, err := LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: parseLogLevel(config.LogLevel)}))
	logger.Info("Starting wordmarkov", "version", Version, "chain_name", config.ChainName)

	if config.DataDir != "" {
		if err = os.MkdirAll(config.DataDir, 0o755); err != nil {
			return fmt.Errorf("failed to create data dir: %w", err)
		}
	}

	var (
		db    *sql.DB
		store *markov.Store
	)
	if config.DatabasePath != "" {
		db, store, err = openStore(config.DatabasePath, logger)
		if err != nil {
			return err
		}
		defer func() {
			store.Close()
			logger.Info("Closing database connection.")
			if err := db.Close(); err != nil {
				logger.Error("Failed to close database", "error", err)
			}
		}()
	}

	session, err := NewSession(config, store, logger)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	ctx := context.Background()
	if store != nil {
		if err = session.Load(ctx); err != nil {
			return err
		}
	}

	files := append(append([]string{}, config.CorpusFiles...), corpusArgs...)
	if len(files) > 0 {
		lines := session.TrainFiles(ctx, files)
		logger.Info("Corpus loaded", "files", len(files), "lines", lines)
	}
	if config.MinPruneHits > 0 {
		session.Prune(config.MinPruneHits)
	}

	var apiHttpServer *http.Server
	if config.ApiAddr != "" {
		apiHttpServer = &http.Server{
			Addr:              config.ApiAddr,
			Handler:           NewAPIHandler(session, config, actionChan, logger),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			logger.Info("Starting api server", "address", apiHttpServer.Addr)
			if err := apiHttpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Api server failed", "error", err)
				sendAction(actionChan, actionShutdown)
			}
		}()
	}

	replCtx, cancelREPL := context.WithCancel(ctx)
	defer cancelREPL()
	if withREPL {
		go func() {
			if err := NewREPL(session, os.Stdin, os.Stdout).Run(replCtx); err != nil {
				logger.Error("Prompt loop failed", "error", err)
			}
			sendAction(actionChan, actionShutdown)
		}()
	} else if apiHttpServer == nil {
		return errors.New("nothing to do: the prompt is disabled and api_addr is empty")
	}

	action := <-actionChan // Block here until the prompt, the API or an OS signal sends an action.
	cancelREPL()

	logger.Info("Stopping for " + action + "...")
	if apiHttpServer != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err = apiHttpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("Api server shutdown failed", "error", err)
		}
		logger.Info("HTTP server stopped.")
	}

	if config.Autosave && store != nil {
		if err = session.Save(ctx); err != nil {
			logger.Error("Failed to save chain", "error", err)
		}
	}

	logger.Info("wordmarkov has shut down.")
	return nil
}

// openStore opens the database, sets up the schema and prepares a Store.
func openStore(dataSource string, logger *slog.Logger) (*sql.DB, *markov.Store, error) {
	db, err := openDB(dataSource)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if err = markov.SetupSchema(db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to setup chain schema: %w", err)
	}
	store, err := markov.NewStore(db)
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to prepare chain store: %w", err)
	}
	store.SetLogger(logger)
	return db, store, nil
}
