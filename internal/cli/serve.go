package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appcart "github.com/Zhima-Mochi/corralon-storefront/internal/application/cart"
	appcatalog "github.com/Zhima-Mochi/corralon-storefront/internal/application/catalog"
	appinventory "github.com/Zhima-Mochi/corralon-storefront/internal/application/inventory"
	apporder "github.com/Zhima-Mochi/corralon-storefront/internal/application/order"
	apppayment "github.com/Zhima-Mochi/corralon-storefront/internal/application/payment"
	"github.com/Zhima-Mochi/corralon-storefront/internal/infrastructure/id"
	infraobs "github.com/Zhima-Mochi/corralon-storefront/internal/infrastructure/observability"
	"github.com/Zhima-Mochi/corralon-storefront/internal/infrastructure/observability/oteltrace"
	"github.com/Zhima-Mochi/corralon-storefront/internal/infrastructure/observability/prometrics"
	"github.com/Zhima-Mochi/corralon-storefront/internal/infrastructure/outbox"
	infrapayment "github.com/Zhima-Mochi/corralon-storefront/internal/infrastructure/payment"
	"github.com/Zhima-Mochi/corralon-storefront/internal/infrastructure/seed"
	"github.com/Zhima-Mochi/corralon-storefront/internal/observability"
	httppresentation "github.com/Zhima-Mochi/corralon-storefront/internal/presentation/http"
	workerpresentation "github.com/Zhima-Mochi/corralon-storefront/internal/presentation/worker"
	"github.com/spf13/cobra"
)

func newServeCommand(rt *runtime) *cobra.Command {
	var seedFile string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP storefront",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, rt, seedFile)
		},
	}
	cmd.Flags().StringVar(&seedFile, "seed", "", "YAML file applied to storage before serving")
	return cmd
}

// app is the wired process: storage, bus, use cases and the router.
type app struct {
	storage  *storage
	bus      *outbox.Bus
	sessions *appcart.Sessions
	handler  http.Handler
}

func wire(ctx context.Context, rt *runtime, tel observability.Observability, metrics http.Handler) (*app, error) {
	cfg := rt.cfg
	st, err := openStorage(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}

	bus := outbox.NewBus(tel.Logger(), outbox.Options{
		QueueSize:      cfg.Bus.QueueSize,
		Concurrency:    cfg.Bus.Concurrency,
		HandlerTimeout: cfg.Bus.HandlerTimeout,
	})
	subscriber := workerpresentation.NewSubscriber(bus, tel)
	ids := id.NewUUIDGenerator()

	sessions := appcart.NewSessions(st.carts, tel, appcart.SessionOptions{IdleTTL: cfg.Cart.IdleTTL})
	carts := appcart.NewService(sessions, st.products, st.storefronts, bus, tel)
	reserve := appinventory.NewReserveInventoryUseCase(st.products, bus, tel)
	pay := apppayment.NewProcessPaymentUseCase(st.orders, infrapayment.NewSimulator(cfg.Payment.SuccessRate), bus, tel)
	checkout := apporder.NewPlaceOrderUseCase(st.orders, carts, ids, bus, apporder.ShippingRates{Express: cfg.ExpressShipping()}, tel)

	appcart.NewWorker(subscriber, tel).Start()
	appinventory.NewWorker(subscriber, reserve, tel).Start()
	apporder.NewWorker(st.orders, subscriber, bus, tel).Start()
	apppayment.NewWorker(subscriber, pay, tel).Start()

	h := httppresentation.NewHandler(httppresentation.Deps{
		Cart:          carts,
		Catalog:       appcatalog.NewService(st.products, st.storefronts, ids, tel),
		Checkout:      checkout,
		History:       apporder.NewHistory(st.orders, tel),
		Metrics:       metrics,
		RatePerSecond: cfg.HTTP.RateLimit.PerSecond,
		RateBurst:     cfg.HTTP.RateLimit.Burst,
	}, tel)

	return &app{storage: st, bus: bus, sessions: sessions, handler: h.Router()}, nil
}

func serve(ctx context.Context, rt *runtime, seedFile string) error {
	cfg := rt.cfg
	log := rt.logger

	_, shutdownTracing, err := oteltrace.NewProvider(ctx, oteltrace.Options{
		ServiceName: cfg.Service,
		Env:         cfg.Env,
		Endpoint:    cfg.Tracing.Endpoint,
		Insecure:    cfg.Tracing.Insecure,
		SampleRatio: cfg.Tracing.SampleRatio,
	})
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}

	registry := prometrics.New("")
	std := prometrics.Standard(registry)
	tel := infraobs.New(oteltrace.New(cfg.Service), log, std.Counters, std.Histograms, std.Gauges)

	a, err := wire(ctx, rt, tel, registry.Handler())
	if err != nil {
		_ = shutdownTracing(context.Background())
		return err
	}
	defer a.storage.Close()

	if seedFile != "" {
		f, err := seed.LoadFile(seedFile)
		if err != nil {
			return err
		}
		res, err := seed.Apply(ctx, f, a.storage.storefronts, a.storage.products)
		if err != nil {
			return err
		}
		log.Info("seed_applied",
			observability.F("file", seedFile),
			observability.F("stores", res.Stores),
			observability.F("products", res.Products),
		)
	}

	a.bus.Start(ctx)
	go a.sessions.Run(ctx, cfg.Cart.SweepInterval)

	server := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           a.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("http_server_starting",
			observability.F("addr", cfg.HTTP.Addr),
			observability.F("storage", cfg.Storage.Driver),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("shutdown_signal_received")
	case err, ok := <-serverErr:
		if ok {
			runErr = fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("http_shutdown_failed", observability.F("error", err.Error()))
	}
	if err := a.bus.Stop(shutdownCtx); err != nil {
		log.Error("bus_shutdown_failed", observability.F("error", err.Error()))
	}
	if err := a.sessions.CloseAll(shutdownCtx); err != nil {
		log.Error("cart_sessions_flush_failed", observability.F("error", err.Error()))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("tracer_shutdown_failed", observability.F("error", err.Error()))
	}

	log.Info("shutdown_complete")
	return runErr
}
