package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appauth "github.com/Zhima-Mochi/pizzeria/internal/application/auth"
	appcart "github.com/Zhima-Mochi/pizzeria/internal/application/cart"
	appmenu "github.com/Zhima-Mochi/pizzeria/internal/application/menu"
	apporder "github.com/Zhima-Mochi/pizzeria/internal/application/order"
	appuser "github.com/Zhima-Mochi/pizzeria/internal/application/user"
	"github.com/Zhima-Mochi/pizzeria/internal/config"
	"github.com/Zhima-Mochi/pizzeria/internal/domain/document"
	"github.com/Zhima-Mochi/pizzeria/internal/infrastructure/docrepo"
	"github.com/Zhima-Mochi/pizzeria/internal/infrastructure/filestore"
	"github.com/Zhima-Mochi/pizzeria/internal/infrastructure/id"
	"github.com/Zhima-Mochi/pizzeria/internal/infrastructure/memory"
	"github.com/Zhima-Mochi/pizzeria/internal/infrastructure/notification/logmail"
	"github.com/Zhima-Mochi/pizzeria/internal/infrastructure/notification/smtp"
	infraobs "github.com/Zhima-Mochi/pizzeria/internal/infrastructure/observability"
	"github.com/Zhima-Mochi/pizzeria/internal/infrastructure/observability/oteltrace"
	"github.com/Zhima-Mochi/pizzeria/internal/infrastructure/observability/prometrics"
	"github.com/Zhima-Mochi/pizzeria/internal/infrastructure/observability/zaplogger"
	"github.com/Zhima-Mochi/pizzeria/internal/infrastructure/outbox"
	"github.com/Zhima-Mochi/pizzeria/internal/infrastructure/payment/simulated"
	"github.com/Zhima-Mochi/pizzeria/internal/infrastructure/payment/stripe"
	userworker "github.com/Zhima-Mochi/pizzeria/internal/infrastructure/user/worker"
	"github.com/Zhima-Mochi/pizzeria/internal/observability"
	"github.com/Zhima-Mochi/pizzeria/internal/pkg/logging"
	httppresentation "github.com/Zhima-Mochi/pizzeria/internal/presentation/http"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		logging.MustNewLogger(logging.Options{Service: "pizzeria"}).Fatal("config_load_failed", zap.Error(err))
	}

	baseLogger := logging.MustNewLogger(logging.Options{
		Service: cfg.ServiceName,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		File:    cfg.LogFile,
	})
	defer func() { _ = baseLogger.Sync() }()
	zap.ReplaceGlobals(baseLogger)

	systemLogger := logging.WithTrace(baseLogger, logging.SystemTraceID, logging.SystemSpanID)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := oteltrace.Setup(ctx, cfg.ServiceName, cfg.Env, cfg.OTLPEndpoint)
	if err != nil {
		systemLogger.Fatal("tracing_setup_failed", zap.Error(err))
	}

	metrics, err := prometrics.New(prometheus.DefaultRegisterer, "",
		observability.CounterSpecs, observability.HistogramSpecs)
	if err != nil {
		systemLogger.Fatal("metrics_setup_failed", zap.Error(err))
	}
	logger := zaplogger.New(baseLogger)
	tel := infraobs.New(oteltrace.New(cfg.ServiceName), logger, metrics)

	store, err := openStore(cfg)
	if err != nil {
		systemLogger.Fatal("storage_open_failed", zap.Error(err), zap.String("dir", cfg.DataDir))
	}
	users := docrepo.NewUserRepository(store)
	tokens := docrepo.NewTokenRepository(store)
	menuItems := docrepo.NewMenuRepository(store)
	carts := docrepo.NewCartRepository(store)
	orders := docrepo.NewOrderRepository(store)

	// In-memory event bus for account cleanup and order notifications.
	bus := outbox.NewBus(tel, outbox.Options{})

	ids := id.NewRandomGenerator(20)
	hasher := appauth.NewHasher(cfg.HashingSecret)
	authService := appauth.NewService(users, tokens, hasher, ids, tel, appauth.Options{
		TTL:      cfg.TokenTTL,
		RenewTTL: cfg.TokenRenewTTL,
	})
	menuService := appmenu.NewService(menuItems, authService, cfg.CatalogAdmins, tel)

	notifier, err := newNotifier(cfg.Mail, logger)
	if err != nil {
		systemLogger.Fatal("notifier_setup_failed", zap.Error(err))
	}

	services := httppresentation.Services{
		Auth:  authService,
		Users: appuser.NewService(users, hasher, authService, bus, tel),
		Menu:  menuService,
		Cart:  appcart.NewService(carts, users, authService, menuService, ids, tel),
		Checkout: apporder.NewCheckoutUseCase(authService, carts, users, orders,
			newPayments(cfg.Payment, logger), notifier, ids, bus, tel,
			apporder.CheckoutOptions{Currency: cfg.Payment.Currency, Sender: cfg.Mail.From}),
		Orders: apporder.NewService(orders, authService, tel),
	}

	userworker.New(bus, appuser.NewCleanupUseCase(carts, authService, tel)).Start()
	bus.Start(context.Background())

	api := httppresentation.NewServer(httppresentation.NewDispatcher(httppresentation.Routes(services)...), tel)
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", api.Handler())

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		systemLogger.Info("http_server_start",
			zap.String("addr", server.Addr),
			zap.String("storage", cfg.StorageDriver),
		)
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			systemLogger.Error("http_server_error",
				zap.Error(err),
			)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		systemLogger.Error("http_server_shutdown_error",
			zap.Error(err),
		)
	} else {
		systemLogger.Info("http_server_stopped")
	}
	bus.Stop(shutdownCtx)
	if err := shutdownTracing(shutdownCtx); err != nil {
		systemLogger.Error("tracing_shutdown_error", zap.Error(err))
	}
}

func openStore(cfg config.Config) (document.Store, error) {
	if cfg.StorageDriver == config.StorageMemory {
		return memory.NewDocuments(), nil
	}
	fs, err := filestore.New(cfg.DataDir)
	if err != nil {
		return nil, err
	}
	return fs, nil
}

func newPayments(cfg config.PaymentConfig, logger observability.Logger) apporder.PaymentPort {
	if cfg.StripeSecretKey != "" {
		return stripe.New(cfg.StripeSecretKey, logger)
	}
	return simulated.New(cfg.SuccessRate, logger)
}

func newNotifier(cfg config.MailConfig, logger observability.Logger) (apporder.NotificationPort, error) {
	if cfg.Host == "" {
		return logmail.New(logger), nil
	}
	return smtp.New(smtp.Config{
		Host:      cfg.Host,
		Port:      cfg.Port,
		Username:  cfg.Username,
		Password:  cfg.Password,
		TLSPolicy: cfg.TLSPolicy,
	}, logger)
}
