// chaski answers natural-language questions about Peruvian government
// transparency data: legislative attendance, voting records, and public
// procurement.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/vigilaperu/chaski/internal/config"
	"github.com/vigilaperu/chaski/internal/db/postgres"
	"github.com/vigilaperu/chaski/internal/db/sqlite"
	"github.com/vigilaperu/chaski/internal/llm"
	"github.com/vigilaperu/chaski/internal/pipeline"
	"github.com/vigilaperu/chaski/internal/retrieval"
	"github.com/vigilaperu/chaski/internal/server"
	"github.com/vigilaperu/chaski/internal/session"
	"github.com/vigilaperu/chaski/internal/sqlagent"
	"github.com/vigilaperu/chaski/internal/watcher"
	"github.com/vigilaperu/chaski/internal/websearch"
)

func main() {
	debug := flag.Bool("debug", false, "enable debug logging")
	port := flag.Int("port", 0, "listen port (overrides configuration)")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	// Optional .env for local development; absence is not an error.
	_ = godotenv.Load()

	if err := run(*port); err != nil {
		log.Fatal().Err(err).Msg("chaski exited")
	}
}

func run(portOverride int) error {
	if err := config.EnsureAll(); err != nil {
		return fmt.Errorf("initialize configuration: %w", err)
	}
	cfg, _ := config.Load()
	if portOverride > 0 {
		cfg.ListenPort = portOverride
	}

	models, err := config.LoadModels()
	if err != nil {
		log.Warn().Err(err).Msg("Model configuration unreadable, using defaults")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Procurement store.
	executor, cleanup, err := openExecutor(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	// Conversation archive, when enabled.
	var archive pipeline.Archiver
	var archiveStore *sqlite.Store
	if cfg.ArchiveTranscripts {
		archiveStore, err = sqlite.Open(config.DBPath())
		if err != nil {
			return fmt.Errorf("open archive store: %w", err)
		}
		defer archiveStore.Close()
		archive, err = sqlite.NewTranscriptStore(archiveStore)
		if err != nil {
			return fmt.Errorf("initialize transcript store: %w", err)
		}
	}

	gens := pipeline.StageGenerators{
		Rewrite:  stageGenerator(cfg, "rewrite", models.Rewrite),
		Classify: stageGenerator(cfg, "classify", models.Classify),
		Answer:   stageGenerator(cfg, "answer", models.Answer),
		Fallback: stageGenerator(cfg, "fallback", models.Fallback),
	}

	tools := &pipeline.ToolSet{
		Attendance: retrieval.New(cfg.AttendanceCollection,
			retrieval.NewHTTPSearcher(cfg.RetrievalURL, cfg.AttendanceCollection)),
		Voting: retrieval.New(cfg.VotingCollection,
			retrieval.NewHTTPSearcher(cfg.RetrievalURL, cfg.VotingCollection)),
		Procurement: sqlagent.New(stageGenerator(cfg, "sql", models.SQL), executor),
		Web:         websearch.NewHTTPClient(cfg.SearchURL, cfg.SearchKey),
	}

	engine := pipeline.New(gens, tools, session.NewStore(), archive)
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ListenPort),
		Handler:           server.New(engine).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Exit on configuration change; the supervisor restarts with fresh config.
	w, err := watcher.New(func(path string) {
		log.Info().Str("path", path).Msg("Configuration changed, shutting down for restart")
		stop()
	}, config.SettingsPath(), config.ModelsPath())
	if err != nil {
		log.Warn().Err(err).Msg("Configuration watcher unavailable")
	} else {
		if err := w.Start(); err == nil {
			defer w.Stop()
		}
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.ListenPort).Str("backend", cfg.Backend).Msg("chaski listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info().Msg("chaski stopped")
	return nil
}

// openExecutor selects the procurement store from configuration.
func openExecutor(ctx context.Context, cfg *config.Config) (sqlagent.Executor, func(), error) {
	switch cfg.Backend {
	case "postgres":
		exec, err := postgres.Connect(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		return exec, exec.Close, nil
	case "sqlite":
		store, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return sqlite.NewExecutor(store), func() { _ = store.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

// stageGenerator builds the primary/backup failover pair for one stage.
func stageGenerator(cfg *config.Config, name string, spec config.ModelSpec) llm.Generator {
	primary := llm.NewOpenAI(llm.OpenAIConfig{
		BaseURL:     cfg.LLMBaseURL,
		APIKey:      cfg.LLMKey,
		Model:       spec.Model,
		Temperature: spec.Temperature,
	})
	if spec.Backup == "" || spec.Backup == spec.Model {
		return primary
	}
	backup := llm.NewOpenAI(llm.OpenAIConfig{
		BaseURL:     cfg.LLMBaseURL,
		APIKey:      cfg.LLMKey,
		Model:       spec.Backup,
		Temperature: spec.Temperature,
	})
	return llm.NewFailover(name, primary, backup)
}
