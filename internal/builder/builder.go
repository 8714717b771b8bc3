package builder

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Hkishore1/ClaimsRAG/internal/agent"
	"github.com/Hkishore1/ClaimsRAG/internal/api"
	agentapi "github.com/Hkishore1/ClaimsRAG/internal/api/agent"
	queryapi "github.com/Hkishore1/ClaimsRAG/internal/api/query"
	"github.com/Hkishore1/ClaimsRAG/internal/config"
	"github.com/Hkishore1/ClaimsRAG/internal/embedding"
	"github.com/Hkishore1/ClaimsRAG/internal/ingest"
	"github.com/Hkishore1/ClaimsRAG/internal/llm"
	"github.com/Hkishore1/ClaimsRAG/internal/pkg/formatter"
	"github.com/Hkishore1/ClaimsRAG/internal/repository"
	"github.com/Hkishore1/ClaimsRAG/internal/retriever"
	"github.com/Hkishore1/ClaimsRAG/internal/telegram"
	chatuc "github.com/Hkishore1/ClaimsRAG/internal/usecase/chat"
	queryuc "github.com/Hkishore1/ClaimsRAG/internal/usecase/query"
)

func Build() (*App, error) {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	logger.Info("Building application",
		zap.String("environment", cfg.Environment),
		zap.String("server_addr", cfg.ServerAddr),
	)

	db, err := setupStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	historyRepo := repository.NewHistorySQLite(db)
	logger.Info("Repositories initialized")

	embedder, model := setupCollaborators(cfg, logger)

	corpus, err := ingest.NewBuilder(cfg, embedder, logger).Build(ctx)
	if err != nil {
		if !errors.Is(err, ingest.ErrNoDocuments) {
			db.Close()
			return nil, fmt.Errorf("build corpus: %w", err)
		}
		// Serve anyway; /healthz and /ask report the index as not ready.
		logger.Warn("no documents found, starting without an index",
			zap.String("data_dir", cfg.DataDir),
		)
		corpus = nil
	}

	retr := retriever.NewRetriever(corpus, embedder, cfg.CacheCfg, logger)

	decider := agent.NewDecider(model)
	responder := agent.NewResponder(model)

	queryUC := queryuc.NewUsecase(retr, cfg, logger)
	chatUC := chatuc.NewUsecase(retr, decider, responder, historyRepo, cfg, logger)
	logger.Info("Use cases initialized")

	queryHandler := queryapi.NewHandler(queryUC, retr, cfg)
	agentHandler := agentapi.NewHandler(chatUC, formatter.NewPDFFormatter())
	logger.Info("API handlers initialized")

	router := api.SetupRouter(queryHandler, agentHandler, logger)
	logger.Info("HTTP router configured")

	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("Application built successfully",
		zap.String("environment", cfg.Environment),
	)

	return &App{
		server: server,
		db:     db,
		logger: logger,
	}, nil
}

// BuildTelegramBot creates and initializes the Telegram bot
func BuildTelegramBot() (telegram.Bot, *zap.Logger, error) {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("setup logger: %w", err)
	}

	logger.Info("Building Telegram bot",
		zap.String("environment", cfg.Environment),
	)

	db, err := setupStorage(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	historyRepo := repository.NewHistorySQLite(db)

	embedder, model := setupCollaborators(cfg, logger)

	corpus, err := ingest.NewBuilder(cfg, embedder, logger).Build(ctx)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("build corpus: %w", err)
	}

	retr := retriever.NewRetriever(corpus, embedder, cfg.CacheCfg, logger)

	decider := agent.NewDecider(model)
	responder := agent.NewResponder(model)
	chatUC := chatuc.NewUsecase(retr, decider, responder, historyRepo, cfg, logger)

	bot, err := telegram.NewBot(&cfg.TelegramCfg, chatUC, logger)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("initialize telegram bot: %w", err)
	}

	logger.Info("Telegram bot built successfully",
		zap.String("environment", cfg.Environment),
	)

	return bot, logger, nil
}

// setupStorage opens the history database and brings the schema up to date.
func setupStorage(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*sql.DB, error) {
	db, err := setupDatabase(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("setup database: %w", err)
	}

	logger.Info("Running database migrations")
	if err := repository.RunMigrations("sqlite3://" + cfg.DBPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("Database migrations completed successfully")

	return db, nil
}

// setupCollaborators selects the embedding and language model backends.
// With mocks enabled both are deterministic: the hash embedder stands in
// for the embeddings API and the blank language model makes the agent take
// its deterministic fallback paths.
func setupCollaborators(cfg *config.Config, logger *zap.Logger) (embedding.Embedder, llm.LLM) {
	if cfg.EnableMocks {
		logger.Info("Using mock collaborators for external services")
		return embedding.NewMockEmbedder(cfg.EmbeddingCfg.Dimension), llm.NewMockLLM("")
	}

	logger.Info("Using real collaborators for external services")
	embedder, err := embedding.NewOpenAIEmbedder(cfg.EmbeddingCfg)
	if err != nil {
		logger.Warn("embedding backend unavailable, falling back to mock", zap.Error(err))
		return embedding.NewMockEmbedder(cfg.EmbeddingCfg.Dimension), llm.NewMockLLM("")
	}

	model, err := llm.NewOpenAILLM(cfg.LLMCfg)
	if err != nil {
		logger.Warn("language model unavailable, agent will use deterministic fallbacks", zap.Error(err))
		return embedder, llm.NewMockLLM("")
	}

	return embedder, model
}
