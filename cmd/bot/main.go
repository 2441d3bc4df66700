package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/fqrmix/what-is-the-price-now/internal/application"
	"github.com/fqrmix/what-is-the-price-now/internal/config"
	"github.com/fqrmix/what-is-the-price-now/internal/infra/adapters/shop"
	"github.com/fqrmix/what-is-the-price-now/internal/infra/adapters/telegram"
	"github.com/fqrmix/what-is-the-price-now/internal/infra/db/postgres"
	"github.com/fqrmix/what-is-the-price-now/internal/infra/logging"
	"github.com/fqrmix/what-is-the-price-now/internal/infra/metrics"
	"github.com/fqrmix/what-is-the-price-now/internal/infra/ops"
	red "github.com/fqrmix/what-is-the-price-now/internal/infra/redis"
	"github.com/fqrmix/what-is-the-price-now/internal/infra/sched"
	"github.com/fqrmix/what-is-the-price-now/internal/usecase"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to config file")
	dev := flag.Bool("dev", false, "development mode (console logs)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath, *dev)
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logging.New(cfg.Log, cfg.Runtime.Dev)
	log.Info().Str("config", *cfgPath).Msg("starting what-is-the-price-now")

	metrics.MustRegister()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- Storage ----
	pool, err := postgres.NewPgxPool(ctx, cfg.Database.URL, int32(cfg.Database.MaxConns))
	if err != nil {
		log.Fatal().Err(err).Msg("postgres connect failed")
	}
	defer pool.Close()
	userRepo := postgres.NewUserRepo(pool)
	subRepo := postgres.NewSubscriptionRepo(pool)
	fbRepo := postgres.NewFeedbackRepo(pool)

	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("redis connect failed")
	}
	defer redisClient.Close()
	rateLimiter := red.NewRateLimiter(redisClient)

	// ---- Adapters ----
	dispatch := shop.New(cfg.Fetch.Timeout(), cfg.Fetch.UserAgent, log)

	botAPI, err := tgbotapi.NewBotAPI(cfg.Bot.Token)
	if err != nil {
		log.Fatal().Err(err).Msg("telegram auth failed")
	}
	notifier := telegram.NewNotifier(botAPI, log)

	scheduler := sched.New(ctx, log)
	defer scheduler.Shutdown()

	// ---- Usecases ----
	checkUC := usecase.NewCheckUseCase(subRepo, userRepo, dispatch, notifier, scheduler, log)
	subUC := usecase.NewSubscriptionUseCase(subRepo, userRepo, dispatch, scheduler, rateLimiter, checkUC.Run, log)
	userUC := usecase.NewUserUseCase(userRepo, logging.Component(log, "UserUseCase"))
	convUC := usecase.NewConversationUseCase(subRepo, dispatch, log)
	fbUC := usecase.NewFeedbackUseCase(fbRepo, logging.Component(log, "FeedbackUseCase"))

	facade := application.NewBotFacade(userUC, subUC, convUC, fbUC, log)

	// Arm a timer for every stored subscription; past-due checks fire
	// right away.
	if err := facade.OnStartup(ctx); err != nil {
		log.Fatal().Err(err).Msg("re-arm subscriptions failed")
	}

	// ---- Telegram ----
	botAdapter, err := telegram.NewRealTelegramBotAdapter(&cfg.Bot, botAPI, facade, rateLimiter, log)
	if err != nil {
		log.Fatal().Err(err).Msg("telegram adapter failed")
	}
	go func() {
		if err := botAdapter.StartPolling(ctx); err != nil && err != context.Canceled {
			log.Error().Err(err).Msg("telegram polling stopped")
		}
	}()

	// ---- Ops server ----
	opsSrv := ops.NewServer(cfg.Ops.Port, logging.Component(log, "Ops"))
	go func() {
		if err := opsSrv.Start(); err != nil {
			log.Error().Err(err).Msg("ops server stopped")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	log.Info().Msg("shutdown requested")

	botAdapter.StopPolling()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := opsSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("ops server shutdown failed")
	}
	cancel()
}
