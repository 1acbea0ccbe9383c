package server

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/gofiber/fiber/v2"

	"audiobook/app/api"
	"audiobook/config"
	"audiobook/model"
	"audiobook/rag"
	"audiobook/splitter"
	"audiobook/store"
)

type Server struct {
	listenAddr string
	logger     *log.Logger
	app        *fiber.App
	service    *rag.Service
}

// New wires the vector store, the provider chains and the RAG service,
// and registers the HTTP routes.
func New(ctx context.Context, cfg config.Config, logger *log.Logger) (*Server, error) {
	storer, err := newStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("store init: %w", err)
	}
	if err := storer.Init(ctx); err != nil {
		return nil, fmt.Errorf("store schema: %w", err)
	}

	embedder, completer, err := newProviders(cfg)
	if err != nil {
		return nil, err
	}

	service := rag.NewService(logger, storer, embedder, completer, model.NewTiktokenCounter(), rag.Options{
		TopK:             cfg.TopK,
		HistoryWindow:    cfg.HistoryWindow,
		MaxContextTokens: cfg.MaxContextTokens,
		SplitMethod:      splitter.Method(cfg.SplitMethod),
		ChunkSize:        cfg.ChunkSize,
		Overlap:          cfg.Overlap,
	})

	app := fiber.New(fiber.Config{
		ErrorHandler: api.ErrorHandler,
	})

	var (
		checkHandler   = api.NewCheckHandler()
		requestHandler = api.NewRequestHandler(service)
		check          = app.Group("/check")
		apiv1          = app.Group("/api/v1")
	)

	check.Get("/healthy", checkHandler.HandleHealthy)
	apiv1.Post("/documents", requestHandler.HandleIndex)
	apiv1.Post("/documents/upload", requestHandler.HandleUpload)
	apiv1.Post("/ask", requestHandler.HandleAsk)
	apiv1.Get("/history", requestHandler.HandleHistory)
	apiv1.Delete("/history", requestHandler.HandleClearHistory)

	return &Server{
		listenAddr: cfg.ServerAddr,
		logger:     logger,
		app:        app,
		service:    service,
	}, nil
}

func (s *Server) Run() error {
	s.logger.Info("server listening", "addr", s.listenAddr)
	return s.app.Listen(s.listenAddr)
}

func (s *Server) Stop() {
	if err := s.app.Shutdown(); err != nil {
		s.logger.Error("server shutdown", "err", err)
	}
	if err := s.service.Close(); err != nil {
		s.logger.Error("store close", "err", err)
	}
	s.logger.Info("server stopped")
}

func newStore(ctx context.Context, cfg config.Config) (store.VectorStorer, error) {
	switch cfg.Store {
	case "memory":
		return store.NewMemoryStore(cfg.EmbedDimension), nil
	case "postgres", "":
		return store.NewPostgresStore(ctx, cfg.PostgresDSN, cfg.EmbedDimension)
	default:
		return nil, fmt.Errorf("unknown vector store %q", cfg.Store)
	}
}

// newProviders builds the embedding and completion chains. Ollama comes
// first; an OpenAI-compatible provider joins when a key is configured.
func newProviders(cfg config.Config) (model.Embedder, model.Completer, error) {
	ollama := model.NewOllamaClient(model.OllamaParams{
		BaseURL:      cfg.OllamaURL,
		EmbedModel:   cfg.OllamaEmbedModel,
		LLMModel:     cfg.OllamaLLMModel,
		Dimension:    cfg.EmbedDimension,
		BatchSize:    cfg.EmbedBatchSize,
		EmbedTimeout: cfg.EmbedTimeout,
		LLMTimeout:   cfg.LLMTimeout,
	})

	embedders := []model.Embedder{ollama}
	completers := []model.Completer{ollama}

	if cfg.OpenAIKey != "" {
		openaiClient := model.NewOpenAIClient(model.OpenAIParams{
			APIKey:       cfg.OpenAIKey,
			BaseURL:      cfg.OpenAIBaseURL,
			EmbedModel:   cfg.OpenAIEmbedModel,
			ChatModel:    cfg.OpenAIChatModel,
			Dimension:    cfg.EmbedDimension,
			EmbedTimeout: cfg.EmbedTimeout,
			LLMTimeout:   cfg.LLMTimeout,
		})
		embedders = append(embedders, openaiClient)
		completers = append(completers, openaiClient)
	}

	embedChain, err := model.NewEmbedderChain(embedders...)
	if err != nil {
		return nil, nil, err
	}
	completeChain, err := model.NewCompleterChain(completers...)
	if err != nil {
		return nil, nil, err
	}
	return embedChain, completeChain, nil
}
