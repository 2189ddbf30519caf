// README: Entry point; loads config, wires services, runs the Telegram bot and the HTTP API until a signal arrives.
package main

import (
    "context"
    "errors"
    "log"
    "net/http"
    "os"
    "os/signal"
    "syscall"
    "time"

    "go.uber.org/zap"

    "secrethouse/internal/ai"
    "secrethouse/internal/config"
    "secrethouse/internal/dates"
    httptransport "secrethouse/internal/http"
    "secrethouse/internal/infra"
    "secrethouse/internal/modules/availability"
    "secrethouse/internal/modules/booking"
    "secrethouse/internal/modules/dialog"
    "secrethouse/internal/modules/faq"
    "secrethouse/internal/modules/pricing"
    "secrethouse/internal/telegram"
)

func main() {
    cfg, err := config.Load()
    if err != nil {
        log.Fatal(err)
    }

    logger, err := infra.NewLogger(cfg.Production(), cfg.LogLevel)
    if err != nil {
        log.Fatal(err)
    }
    defer func() { _ = logger.Sync() }()

    ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
    defer stop()

    if err := run(ctx, cfg, logger); err != nil {
        logger.Fatal("secrethouse stopped", zap.Error(err))
    }
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
    loc := cfg.Location()

    dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
    if err != nil {
        return err
    }
    defer dbPool.Close()
    if cfg.DB.AutoMigrate {
        dir, err := infra.FindMigrationsDir()
        if err != nil {
            return err
        }
        if err := infra.ApplyMigrations(ctx, dbPool, dir); err != nil {
            return err
        }
    }

    redisClient, err := infra.NewRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
    if err != nil {
        return err
    }
    defer redisClient.Close()

    pricingStore := pricing.NewStore(cfg.PricingPath, logger.Named("pricing"))
    table, err := pricingStore.Load()
    if err != nil {
        return err
    }
    pricingSvc := pricing.NewService(table, cfg.Currency)
    pricingStore.Watch(pricingSvc.Replace)

    var (
        extractor ai.FieldExtractor
        answerer  ai.Answerer
    )
    if cfg.AI.GeminiKey != "" {
        provider, err := ai.NewGeminiProvider(ctx, cfg.AI.GeminiKey)
        if err != nil {
            return err
        }
        defer provider.Close()
        extractor, answerer = provider, provider
    } else {
        logger.Warn("GEMINI_API_KEY not set; booking runs on heuristics and FAQ answers with the fallback reply")
    }

    ex := dates.NewExtractor(loc, nil)

    bookingStore := booking.NewStore(dbPool)
    bookingSvc := booking.NewService(bookingStore, nil, loc, logger.Named("booking"))
    availabilitySvc := availability.NewService(bookingStore, ex, logger.Named("availability"))

    quota := faq.NewQuota(faq.NewQuotaStore(dbPool), cfg.FAQ.DailyLimit, loc)
    faqSvc := faq.NewService(answerer, pricingSvc, quota, faq.Config{Timeout: cfg.AI.Timeout, TTL: cfg.FAQ.TTL}, logger.Named("faq"))

    flow := booking.NewFlow(extractor, pricingSvc, ex, booking.FlowConfig{
        Payment: booking.PaymentDetails{
            CardNumber: cfg.Payment.CardNumber,
            Phone:      cfg.Payment.Phone,
            Currency:   cfg.Currency,
        },
        AITimeout: cfg.AI.Timeout,
    }, logger.Named("flow"))

    dialogSvc := dialog.NewService(dialog.Deps{
        Store:        dialog.NewRedisStateStore(redisClient, cfg.Redis.StateTTL),
        Flow:         flow,
        Pricing:      pricingSvc,
        Parser:       pricing.NewParser(ex),
        Availability: availabilitySvc,
        FAQ:          faqSvc,
        Sink:         bookingSvc,
        Logger:       logger.Named("dialog"),
    })

    notifiers := booking.Notifiers{dialog.NewReviewListener(dialogSvc)}
    var bot *telegram.Bot
    if cfg.Bot.Token != "" {
        bot, err = telegram.New(cfg.Bot.Token, dialogSvc, bookingSvc, cfg.Bot.AdminChatID, logger.Named("telegram"))
        if err != nil {
            return err
        }
        bot.SetLimiter(telegram.NewRedisLimiter(redisClient, cfg.Bot.RateLimitPerMinute, time.Minute))
        notifiers = append(notifiers, bot.Notifier())
    } else {
        logger.Warn("TELEGRAM_BOT_TOKEN not set; serving the HTTP API only")
    }
    bookingSvc.SetNotifier(notifiers)

    handler := httptransport.NewRouter(httptransport.RouterDeps{
        Conversations: dialogSvc,
        Pricing:       pricingSvc,
        Availability:  availabilitySvc,
        Bookings:      bookingSvc,
        Location:      loc,
        APIKey:        cfg.HTTP.APIKey,
        Logger:        logger.Named("http"),
    })
    server := &http.Server{Addr: cfg.HTTP.Addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}

    errCh := make(chan error, 1)
    go func() {
        logger.Info("http server listening", zap.String("addr", cfg.HTTP.Addr))
        if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
            errCh <- err
        }
    }()
    botDone := make(chan struct{})
    go func() {
        defer close(botDone)
        if bot != nil {
            bot.Start(ctx)
        }
    }()

    select {
    case <-ctx.Done():
        logger.Info("shutting down")
    case err = <-errCh:
    }

    shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
    defer cancel()
    if shutdownErr := server.Shutdown(shutdownCtx); shutdownErr != nil {
        logger.Warn("http shutdown", zap.Error(shutdownErr))
    }
    if err == nil {
        <-botDone
    }
    return err
}
