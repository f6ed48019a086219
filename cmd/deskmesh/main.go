// Command deskmesh runs the workspace automation bot: it wires the durable
// stores, the Slack client, the reasoning engine and the agent team into the
// dispatch pipeline and serves the events endpoint.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	openaisdk "github.com/openai/openai-go"

	"github.com/hupe1980/deskmesh"
	"github.com/hupe1980/deskmesh/assistant"
	"github.com/hupe1980/deskmesh/config"
	"github.com/hupe1980/deskmesh/docstore"
	"github.com/hupe1980/deskmesh/history"
	"github.com/hupe1980/deskmesh/knowledge"
	"github.com/hupe1980/deskmesh/logging"
	"github.com/hupe1980/deskmesh/mailer"
	"github.com/hupe1980/deskmesh/model"
	"github.com/hupe1980/deskmesh/model/anthropic"
	"github.com/hupe1980/deskmesh/model/openai"
	"github.com/hupe1980/deskmesh/records"
	"github.com/hupe1980/deskmesh/transcripts"
	"github.com/hupe1980/deskmesh/workspace"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	logger := logging.NewJSONLogger(os.Stdout, parseLevel(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("fatal", "error", err.Error())
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger logging.Logger) error {
	var historyStore history.Store = history.NewInMemoryStore()
	var recordStore records.Store = records.NewInMemoryStore()

	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer pool.Close()

		turns := history.NewPostgresStore(pool)
		if err := turns.Init(ctx); err != nil {
			return err
		}
		docs := records.NewPostgresStore(pool)
		if err := docs.Init(ctx); err != nil {
			return err
		}
		historyStore = turns
		recordStore = docs
	} else {
		logger.Warn("no DATABASE_URL set, using in-memory stores")
	}

	llm, err := buildModel(cfg)
	if err != nil {
		return err
	}

	messenger := workspace.NewClient(cfg.SlackBotToken, func(o *workspace.Options) {
		o.Logger = logger
	})

	var docs docstore.Store
	if cfg.DriveCredentialsFile != "" {
		creds, err := os.ReadFile(cfg.DriveCredentialsFile)
		if err != nil {
			return err
		}
		docs, err = docstore.NewDrive(creds)
		if err != nil {
			return err
		}
	}

	var retriever knowledge.Retriever
	if cfg.VectorStoreID != "" {
		client := openaisdk.NewClient()
		retriever = knowledge.NewVectorStoreRetriever(&client, cfg.VectorStoreID)
	}

	var mail mailer.Sender
	if cfg.SMTPHost != "" {
		mail, err = mailer.NewSMTPSender(cfg.SMTPHost, cfg.MailFrom, func(o *mailer.SMTPOptions) {
			o.Port = cfg.SMTPPort
			o.Username = cfg.SMTPUsername
			o.Password = cfg.SMTPPassword
		})
		if err != nil {
			return err
		}
	}

	var ingestor *transcripts.Ingestor
	if cfg.FirefliesToken != "" {
		source := transcripts.NewFirefliesClient(cfg.FirefliesToken)
		ingestor = transcripts.NewIngestor(source, llm, recordStore, messenger, func(o *transcripts.IngestorOptions) {
			o.ReportChannel = cfg.ReportChannelID
			o.Logger = logger
		})
	}

	bot := deskmesh.New(assistant.Deps{
		Model:     llm,
		Messenger: messenger,
		Docs:      docs,
		Records:   recordStore,
		Knowledge: retriever,
		Mail:      mail,
		Logger:    logger,
	}, func(o *deskmesh.Options) {
		o.HistoryStore = historyStore
		o.SigningSecret = cfg.SlackSigningSecret
		o.Ingestor = ingestor
		o.Logger = logger
	})
	defer bot.Close()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           bot.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func buildModel(cfg *config.Config) (model.Model, error) {
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		return openai.NewModel(), nil
	default:
		return anthropic.NewModel(func(o *anthropic.Options) {
			o.APIKey = cfg.AnthropicAPIKey
		}), nil
	}
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
