package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jonathan/profile-builder/internal/cache"
	"github.com/jonathan/profile-builder/internal/config"
	"github.com/jonathan/profile-builder/internal/db"
	"github.com/jonathan/profile-builder/internal/documents"
	"github.com/jonathan/profile-builder/internal/fetch"
	"github.com/jonathan/profile-builder/internal/ingestion"
	"github.com/jonathan/profile-builder/internal/llm"
	"github.com/jonathan/profile-builder/internal/observability"
	"github.com/jonathan/profile-builder/internal/server"
)

var (
	servePort     int
	serveConfig   string
	serveInMemory bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes the profile, import and document endpoints.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides PORT)")
	serveCmd.Flags().StringVarP(&serveConfig, "config", "c", "", "Path to a JSON config file")
	serveCmd.Flags().BoolVar(&serveInMemory, "in-memory", false, "Keep data in memory instead of PostgreSQL")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(serveConfig)
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Port = servePort
	}

	logger := observability.NewLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	jwtCfg, err := config.NewJWTConfig()
	if err != nil {
		return err
	}
	pwCfg, err := config.NewPasswordConfig()
	if err != nil {
		return err
	}

	a, err := buildApp(context.Background(), cfg, serveInMemory, logger)
	if err != nil {
		return err
	}
	defer a.close()

	srv, err := server.New(server.Config{
		Port:           cfg.Port,
		AllowedOrigins: cfg.AllowedOrigins,
		UploadMaxBytes: cfg.UploadMaxBytes,
	}, server.Deps{
		Store:     a.store,
		JWT:       jwtCfg,
		Passwords: pwCfg,
		Parser:    a.importer,
		Tagline:   a.tagline,
		Documents: a.generator,
		Logger:    logger,
	})
	if err != nil {
		a.store.Close()
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}

// app is the wired set of collaborators behind the server.
type app struct {
	store     db.Store
	importer  *ingestion.Importer
	tagline   server.TaglineWriter
	generator *documents.Generator
	closers   []func()
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func buildApp(ctx context.Context, cfg *config.Config, inMemory bool, logger *logrus.Logger) (*app, error) {
	a := &app{}

	var base db.Store
	if inMemory {
		logger.Warn("[serve] using in-memory store; data is lost on exit")
		base = db.NewMemory()
	} else {
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required (or use --in-memory)")
		}
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		base = database
	}

	redisCache := cache.NewRedis(ctx, cfg.RedisURL, time.Duration(cfg.CacheTTL), logger.WithField("component", "cache"))
	a.closers = append(a.closers, func() { _ = redisCache.Close() })
	// Server.Close releases the store.
	a.store = cache.NewStore(base, redisCache, logger.WithField("component", "cache"))

	var extractor ingestion.ProfileExtractor
	llmClient, err := llm.NewClient(ctx, llm.DefaultConfig(), cfg.GeminiAPIKey)
	switch {
	case err == nil:
		assistant := llm.NewAssistant(llmClient)
		extractor = assistant
		a.tagline = assistant
		a.closers = append(a.closers, func() { _ = llmClient.Close() })
	case errors.Is(err, llm.ErrNotConfigured):
		logger.Info("[serve] GEMINI_API_KEY not set; using heuristic resume parsing and disabling taglines")
	default:
		a.close()
		a.store.Close()
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	a.importer = ingestion.NewImporter(extractor, logger.WithField("component", "import"))

	fetchOpts := []fetch.Option{fetch.WithCache(redisCache, 0)}
	if cfg.UseBrowser {
		fetchOpts = append(fetchOpts, fetch.WithRenderer(fetch.NewChromeRenderer()))
	}
	fetcher := fetch.NewFetcher(logger.WithField("component", "fetch"), fetchOpts...)

	a.generator, err = documents.NewGenerator(fetcher)
	if err != nil {
		a.close()
		a.store.Close()
		return nil, fmt.Errorf("failed to load document templates: %w", err)
	}
	return a, nil
}
