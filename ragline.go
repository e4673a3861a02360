// Package ragline provides a local retrieval-augmented generation pipeline:
// PDF ingestion, chunk embedding, vector similarity search, and answer
// generation with locally-run GGUF models.
//
// Basic usage:
//
//	client, err := ragline.New(
//	    ragline.WithConfig(cfg),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Ingest a document
//	outcome, err := client.Ingest.Ingest(ctx, "report.pdf", pdfBytes)
//
//	// Ask a question grounded in it
//	result, err := client.Chat.Ask(ctx, service.NewChatRequest(
//	    "what does the report conclude?", "", "",
//	    []int64{outcome.Document().ID()}, 0,
//	))
package ragline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/ragline/ragline/application/service"
	"github.com/ragline/ragline/domain/document"
	"github.com/ragline/ragline/infrastructure/chunking"
	"github.com/ragline/ragline/infrastructure/parsing"
	"github.com/ragline/ragline/infrastructure/persistence"
	"github.com/ragline/ragline/infrastructure/provider"
	"github.com/ragline/ragline/infrastructure/runtime"
	"github.com/ragline/ragline/internal/config"
	"github.com/ragline/ragline/internal/database"
)

// Client is the main entry point for the ragline library.
//
// Access resources via struct fields:
//
//	client.Ingest.Ingest(ctx, title, data)
//	client.Chat.Ask(ctx, req)
//	client.Models.List()
type Client struct {
	Ingest *service.IngestService
	Chat   *service.ChatService
	Models *service.ModelService

	store    document.Store
	db       database.Database
	cache    *runtime.Cache
	profiles config.ModelProfiles
	closers  []io.Closer

	cfg    config.AppConfig
	logger *slog.Logger
	closed atomic.Bool
}

// New creates a new Client with the given options.
func New(opts ...Option) (*Client, error) {
	cc := newClientConfig()
	for _, opt := range opts {
		opt(cc)
	}

	cfg := cc.cfg
	logger := cc.logger
	if logger == nil {
		logger = slog.Default()
	}

	if err := cfg.EnsureDataDir(); err != nil {
		return nil, fmt.Errorf("prepare data directory: %w", err)
	}

	ctx := context.Background()
	db, err := database.NewDatabase(ctx, cfg.DBURL())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := persistence.AutoMigrate(db); err != nil {
		errClose := db.Close()
		return nil, errors.Join(fmt.Errorf("auto migrate: %w", err), errClose)
	}
	if err := persistence.ValidateSchema(db); err != nil {
		errClose := db.Close()
		return nil, errors.Join(fmt.Errorf("validate schema: %w", err), errClose)
	}

	c := &Client{
		db:     db,
		cfg:    cfg,
		logger: logger,
	}

	store := persistence.NewDocumentStore(db, logger)
	c.store = store

	parser := cc.parser
	if parser == nil {
		pdfParser, err := parsing.NewPDFParser(logger)
		if err != nil {
			errClose := db.Close()
			return nil, errors.Join(fmt.Errorf("init pdf parser: %w", err), errClose)
		}
		c.closers = append(c.closers, pdfParser)
		parser = pdfParser
	}

	embedder := cc.embedder
	if embedder == nil {
		lazy := provider.NewLazyEmbedder(cfg, logger)
		c.closers = append(c.closers, lazy)
		embedder = lazy
	}

	profiles, err := config.LoadModelProfiles(cfg.ProfilesPath())
	if err != nil {
		errClose := db.Close()
		return nil, errors.Join(fmt.Errorf("load model profiles: %w", err), errClose)
	}
	c.profiles = profiles

	factory := cc.factory
	if factory == nil {
		factory = runtime.NewLlamaServerFactory(logger)
	}

	resolver := runtime.NewResolver(cfg.ModelDir(), profiles.AliasTable())
	c.cache = runtime.NewCache(factory, cfg.Runtime(), logger)

	params := chunking.ChunkParams{
		Size:    cfg.ChunkSize(),
		Overlap: cfg.ChunkOverlap(),
	}

	c.Ingest = service.NewIngestService(store, parser, embedder, params, logger)
	c.Chat = service.NewChatService(store, embedder, resolver, c.cache, profiles, cfg.Sampling(), cfg.TopK(), logger)
	c.Models = service.NewModelService(resolver, c.cache)

	return c, nil
}

// Store returns the document store.
func (c *Client) Store() document.Store { return c.store }

// Config returns the configuration the client was built with.
func (c *Client) Config() config.AppConfig { return c.cfg }

// Logger returns the client's logger.
func (c *Client) Logger() *slog.Logger { return c.logger }

// Profiles returns the model retrieval profiles.
func (c *Client) Profiles() config.ModelProfiles { return c.profiles }

// Close releases the runtime cache, providers, and the database.
// Safe to call more than once.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}

	var errs []error
	if err := c.cache.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close runtime cache: %w", err))
	}
	for _, closer := range c.closers {
		if err := closer.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := c.db.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close database: %w", err))
	}
	return errors.Join(errs...)
}
