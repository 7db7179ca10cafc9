// Package main provides the cipherduel client binary: an interactive
// terminal client for the two-human word-guessing game, with an offline
// practice mode against a local interception agent.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"go.uber.org/zap"

	"github.com/mwaltari/cipherduel/internal/client"
	"github.com/mwaltari/cipherduel/internal/config"
	"github.com/mwaltari/cipherduel/internal/dispatch"
	"github.com/mwaltari/cipherduel/internal/game/practice"
	"github.com/mwaltari/cipherduel/internal/game/state"
	"github.com/mwaltari/cipherduel/internal/observability"
	"github.com/mwaltari/cipherduel/internal/server"
	"github.com/mwaltari/cipherduel/internal/ui"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/client.yaml", "path to configuration file")
	practiceMode := flag.Bool("practice", false, "play offline against the local interception agent")
	transcriptDir := flag.String("transcripts", ".", "directory for game transcripts; empty disables export")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if *practiceMode {
		cfg.Practice.Enabled = true
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()
	store := state.NewStore()
	lifecycle := server.NewLifecycle(logger)

	var console *ui.Console
	if cfg.Practice.Enabled {
		console, err = buildPracticeConsole(cfg, store, *transcriptDir, logger)
		if err != nil {
			logger.Fatal("initializing practice mode", zap.Error(err))
		}
	} else {
		socketURL, err := cfg.Server.SocketURL()
		if err != nil {
			logger.Fatal("deriving socket url", zap.Error(err))
		}
		logger.Info("starting cipherduel client",
			zap.String("server", cfg.Server.BaseURL),
			zap.String("socket", socketURL),
		)

		transport := client.NewWebsocketTransport(cfg.Transport.ConnectTimeout)
		dispatcher := dispatch.NewDispatcher(store, logger)
		manager := client.NewManager(client.Config{
			URL:            socketURL,
			Reconnection:   cfg.Transport.Reconnection,
			MaxAttempts:    cfg.Transport.MaxAttempts,
			RetryDelay:     cfg.Transport.RetryDelay,
			ConnectTimeout: cfg.Transport.ConnectTimeout,
		}, transport, store, dispatcher, logger)
		outbound := dispatch.NewOutbound(store, manager, cfg.Guard.Threshold, logger)
		rest := client.NewRESTClient(cfg.Server.BaseURL, cfg.Transport.ConnectTimeout, logger)

		if err := rest.Health(ctx); err != nil {
			logger.Warn("server health check failed", zap.Error(err))
		}

		console = ui.NewConsole(store, outbound, rest, nil, *transcriptDir, os.Stdin, os.Stdout, logger)

		lifecycle.Add("connection", &server.FuncService{
			StartFn: func(ctx context.Context) error {
				if err := manager.Connect(ctx); err != nil {
					return err
				}
				<-ctx.Done()
				return nil
			},
			StopFn: func() {
				manager.Disconnect()
			},
		})
	}

	lifecycle.Add("console", console)

	logger.Info("client initialized",
		zap.Bool("practice", cfg.Practice.Enabled),
		zap.Duration("startup", time.Since(start)),
	)

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("client error", zap.Error(err))
	}
}

func buildPracticeConsole(cfg config.Config, store *state.Store, transcriptDir string, logger *zap.Logger) (*ui.Console, error) {
	words, err := practice.LoadWords(cfg.Practice.WordsFile)
	if err != nil {
		return nil, err
	}

	ac := anthropic.NewClient() // API key from ANTHROPIC_API_KEY
	interceptor := practice.NewInterceptor(&ac.Messages, cfg.Practice.Model, logger)
	sess, err := practice.NewSession(store, interceptor, words, cfg.Practice.MaxRounds, cfg.Guard.Threshold, logger)
	if err != nil {
		return nil, err
	}

	logger.Info("practice mode ready",
		zap.String("model", cfg.Practice.Model),
		zap.Int("words", len(words)),
		zap.Int("max_rounds", cfg.Practice.MaxRounds),
	)
	return ui.NewConsole(store, nil, nil, sess, transcriptDir, os.Stdin, os.Stdout, logger), nil
}
