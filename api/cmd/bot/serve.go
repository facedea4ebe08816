package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"sorubank-bot/api/internal/config"
	"sorubank-bot/api/internal/conversation"
	"sorubank-bot/api/internal/drive"
	"sorubank-bot/api/internal/httpserver"
	"sorubank-bot/api/internal/questions"
	"sorubank-bot/api/internal/session"
	"sorubank-bot/api/internal/store"
	"sorubank-bot/api/internal/suggest"
	"sorubank-bot/api/internal/taxonomy"
	"sorubank-bot/api/internal/telegram"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the bot (long polling, or webhook when WEBHOOK_URL is set)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx)
		},
	}
}

func serve(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := newLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	tax, err := taxonomy.Load(cfg.TaxonomyFile)
	if err != nil {
		return err
	}
	log.Info("taxonomy loaded", zap.String("file", cfg.TaxonomyFile), zap.Int("subjects", len(tax.Subjects)))

	storage, err := openDrive(ctx, cfg, log)
	if err != nil {
		return err
	}

	var (
		sessions session.Store = session.NewMemory()
		journal  conversation.Journal
		recent   telegram.RecentLister
		checks   = map[string]httpserver.HealthFunc{}
	)
	if cfg.DatabaseURL != "" {
		db, err := store.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := store.Migrate(db); err != nil {
			return err
		}
		log.Info("database ready")

		repo := store.NewSubmissionRepo(db)
		sessions = session.NewPostgres(db.DB)
		journal = conversation.JournalFunc(func(ctx context.Context, r conversation.Record) error {
			return repo.Insert(ctx, store.Submission{
				UserID:    r.UserID,
				Submitter: r.Submitter,
				Code:      r.Code,
				Seq:       r.Seq,
				FileID:    r.File.ID,
				FileName:  r.File.Name,
				Link:      r.File.ViewLink,
				CreatedAt: r.At,
			})
		})
		recent = repo
		checks["db"] = db.PingContext
	}

	machine := conversation.NewMachine(tax, sessions, storage, log)
	machine.Journal = journal

	_ = tgbotapi.SetLogger(zap.NewStdLog(log.Named("tgbotapi")))
	bot, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return fmt.Errorf("telegram: %w", err)
	}
	log.Info("telegram authorized", zap.String("bot", bot.Self.UserName))

	router := telegram.NewRouter(bot, tax, machine, questions.NewService(tax, storage, log), log)
	router.MenuChunk = cfg.MenuChunk
	router.Recent = recent
	if eng := suggest.New(cfg.GeminiAPIKey, cfg.GeminiModel, log); eng != nil {
		router.Suggest = eng
		log.Info("code suggestions enabled", zap.String("model", eng.GetModel()))
	}

	// in-flight turns finish after a shutdown signal
	work := context.WithoutCancel(ctx)
	disp := telegram.NewDispatcher(router.HandleUpdate, log)
	engine := httpserver.NewEngine(log, checks)
	addr := "0.0.0.0:" + cfg.Port

	g, gctx := errgroup.WithContext(ctx)
	if hook := strings.TrimSpace(cfg.WebhookURL); hook != "" {
		path, err := setWebhook(bot, hook)
		if err != nil {
			return err
		}
		engine.POST(path, func(c *gin.Context) {
			upd, err := bot.HandleUpdate(c.Request)
			if err != nil {
				log.Warn("webhook payload", zap.Error(err))
				c.Status(http.StatusBadRequest)
				return
			}
			disp.Dispatch(work, *upd)
			c.Status(http.StatusOK)
		})
		log.Info("webhook mode", zap.String("path", path))
	} else {
		if _, err := bot.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
			log.Warn("delete webhook", zap.Error(err))
		}
		g.Go(func() error {
			runPolling(gctx, bot, log, func(upd tgbotapi.Update) { disp.Dispatch(work, upd) })
			return nil
		})
		log.Info("polling mode")
	}
	g.Go(func() error { return httpserver.Run(gctx, addr, engine, log) })

	err = g.Wait()
	disp.Wait()
	return err
}

func openDrive(ctx context.Context, cfg *config.Config, log *zap.Logger) (*drive.Storage, error) {
	oc, err := drive.LoadOAuthConfig(cfg.ClientSecretFile)
	if err != nil {
		return nil, err
	}
	tok, err := drive.LoadToken(cfg.TokenFile)
	if errors.Is(err, drive.ErrNoToken) {
		return nil, fmt.Errorf("%w: run `bot auth` first", err)
	}
	if err != nil {
		return nil, err
	}
	gd, err := drive.NewGDrive(ctx, drive.NewHTTPClient(ctx, oc, tok, cfg.TokenFile, log))
	if err != nil {
		return nil, err
	}
	st := drive.NewStorage(gd, cfg.RootFolder, log)
	if _, err := st.EnsureRootFolder(ctx); err != nil {
		return nil, fmt.Errorf("drive root folder %q: %w", cfg.RootFolder, err)
	}
	return st, nil
}

// setWebhook registers baseURL plus a token-derived secret path and returns
// the path to serve.
func setWebhook(bot *tgbotapi.BotAPI, baseURL string) (string, error) {
	path := "/webhook/" + shortHash(bot.Token)
	wh, err := tgbotapi.NewWebhook(strings.TrimRight(baseURL, "/") + path)
	if err != nil {
		return "", fmt.Errorf("webhook url: %w", err)
	}
	wh.DropPendingUpdates = true
	if _, err := bot.Request(wh); err != nil {
		return "", fmt.Errorf("set webhook: %w", err)
	}
	return path, nil
}
