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

	"podcast_studio/config"
	"podcast_studio/database"
	"podcast_studio/episode"
	"podcast_studio/generator"
	"podcast_studio/media"
	"podcast_studio/server"
	"podcast_studio/storage"
	"podcast_studio/studio"
)

func main() {
	configPath := flag.String("config", "config/config.toml", "path to config.toml or config.json")
	serve := flag.Bool("serve", false, "start web server")
	addr := flag.String("addr", "", "http listen address when --serve (overrides config.server_addr)")
	list := flag.Bool("list", false, "print trending episodes and exit")
	verbose := flag.Bool("v", false, "enable debug logs")
	flag.Parse()

	if err := run(*configPath, *serve, *addr, *list, *verbose); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath string, serve bool, addr string, list bool, verbose bool) error {
	if !serve && !list {
		return errors.New("nothing to do: pass --serve or --list")
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Log, verbose)
	slog.SetDefault(logger)

	db, err := database.Open(cfg.DataPath)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	episodes, err := episode.NewStore(ctx, db)
	if err != nil {
		return err
	}

	if list {
		return printTrending(ctx, episodes)
	}

	deps, blobs, err := buildDeps(ctx, cfg, db, episodes, logger)
	if err != nil {
		return err
	}
	srv, err := server.New(deps, episodes, blobs, server.Options{
		RequestTimeout:    cfg.RequestTimeout(),
		GeneratePerMinute: cfg.Limits.GeneratePerMinute,
		Burst:             cfg.Limits.Burst,
		SessionTTL:        cfg.SessionTTL(),
		WebhookSecret:     cfg.Identity.WebhookSecret,
		Logger:            logger,
	})
	if err != nil {
		return err
	}
	listen := cfg.ServerAddr
	if addr != "" {
		listen = addr
	}
	if listen == "" {
		listen = ":8080"
	}
	logger.Info("starting web server", "addr", listen, "provider", cfg.LLM.Provider, "storage", cfg.Storage.Kind)
	return http.ListenAndServe(listen, srv.Routes())
}

// buildDeps assembles the collaborators every editing session shares.
// blobs is nil when assets are kept by a remote store.
func buildDeps(ctx context.Context, cfg config.Config, db *sql.DB, episodes *episode.Store, logger *slog.Logger) (studio.Deps, server.BlobOpener, error) {
	client, err := buildClient(cfg.LLM)
	if err != nil {
		return studio.Deps{}, nil, err
	}
	agent, err := generator.NewAgent(client)
	if err != nil {
		return studio.Deps{}, nil, err
	}

	var (
		store storage.ObjectStore
		blobs server.BlobOpener
	)
	switch cfg.Storage.Kind {
	case config.StorageRemote:
		remote, err := storage.NewRemote(cfg.Storage.UploadURL, cfg.Storage.ResolveURL, cfg.Storage.Token, nil)
		if err != nil {
			return studio.Deps{}, nil, err
		}
		store = remote
	default:
		local, err := storage.NewLocal(ctx, db, cfg.PublicBaseURL)
		if err != nil {
			return studio.Deps{}, nil, err
		}
		store, blobs = local, local
	}

	gate, err := studio.NewCommitGate(episodes, episodes, logger)
	if err != nil {
		return studio.Deps{}, nil, err
	}
	deps := studio.Deps{
		Generator: agent,
		Enhancer:  agent,
		Store:     store,
		Gate:      gate,
		Logger:    logger,
	}
	if cfg.Media.ProbeDuration {
		deps.Probe = media.NewProbe(cfg.Media.FFprobePath)
	}
	return deps, blobs, nil
}

func buildClient(cfg config.LLM) (generator.Client, error) {
	settings := &generator.LLMSettings{
		Provider:    cfg.Provider,
		Model:       cfg.Model,
		APIKey:      cfg.ResolveAPIKey(),
		BaseURL:     cfg.BaseURL,
		SpeechModel: cfg.SpeechModel,
		ImageModel:  cfg.ImageModel,
		ImageSize:   cfg.ImageSize,
	}
	switch cfg.Provider {
	case config.ProviderOpenAI:
		if settings.APIKey == "" {
			slog.Warn("no api key configured; generation requests will fail until one is set")
		}
		return generator.NewOpenAIClientFromConfig(settings)
	case config.ProviderDeepSeek:
		// DeepSeek 提供 OpenAI 兼容接口，需填写 base_url（例如官方/网关地址）。
		if cfg.BaseURL == "" {
			return nil, fmt.Errorf("llm provider deepseek requires base_url (OpenAI-compatible endpoint)")
		}
		return generator.NewOpenAIClientFromConfig(settings)
	case config.ProviderMock:
		return generator.MockClient{}, nil
	default:
		return nil, fmt.Errorf("llm provider %s not supported", cfg.Provider)
	}
}

func newLogger(cfg config.Log, verbose bool) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func printTrending(ctx context.Context, episodes *episode.Store) error {
	list, err := episodes.List(ctx, 20)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Println("No episodes yet.")
		return nil
	}
	fmt.Println(renderEpisodes(list))
	return nil
}
