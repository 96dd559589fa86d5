package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/yunusarridwan/ninanoorweb-sub001/internal/api"
	"github.com/yunusarridwan/ninanoorweb-sub001/internal/app"
	"github.com/yunusarridwan/ninanoorweb-sub001/internal/cart"
	"github.com/yunusarridwan/ninanoorweb-sub001/internal/gateway"
	"github.com/yunusarridwan/ninanoorweb-sub001/internal/httpapi"
	"github.com/yunusarridwan/ninanoorweb-sub001/internal/order"
	"github.com/yunusarridwan/ninanoorweb-sub001/internal/payment"
	"github.com/yunusarridwan/ninanoorweb-sub001/internal/review"
	"github.com/yunusarridwan/ninanoorweb-sub001/pkg/config"
	"github.com/yunusarridwan/ninanoorweb-sub001/pkg/logger"
	"github.com/yunusarridwan/ninanoorweb-sub001/pkg/shutdown"
)

func main() {
	cfg := config.Load()
	log := logger.New(logger.Options{
		Service: "storefront",
		Env:     cfg.AppEnv,
		Level:   cfg.LogLevel,
	})

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}

	// State is constructed before the clients so they can pull the bearer
	// credential from it; the circular wiring goes through the token func.
	var state *app.State
	client := api.NewClient(cfg.BackendBaseURL, func() string { return state.Token() })

	cartAPI := api.NewCartAPI(client)
	orderAPI := api.NewOrderAPI(client)
	paymentAPI := api.NewPaymentAPI(client)
	reviewAPI := api.NewReviewAPI(client)
	catalogAPI := api.NewCatalogAPI(client)

	if err := catalogAPI.Reload(ctx); err != nil {
		// The catalog endpoint is public; carts degrade to zero-value
		// stale references until the next reload succeeds.
		log.Warn("initial catalog load failed", "error", err)
	}

	cartStore := cart.NewStore(cartAPI, catalogAPI, log)
	orders := order.NewRepository(orderAPI, log)
	sessions := payment.NewSessionCache(payment.NewRedisStore(redisClient), paymentAPI, log)
	reconciler := payment.NewReconciler(paymentAPI, orders, sessions, orderAPI, log)
	reviews := review.NewGate(reviewAPI, orders, log)

	state = app.NewState(cartStore, orders, reviews, sessions, log)
	reconciler.SetAuthExpiredHook(func() { state.Logout(context.Background()) })

	consumer := gateway.NewConsumer(reconciler, log, cfg.KafkaBrokers...)
	defer consumer.Close()
	go consumer.Run(ctx)

	router := httpapi.NewRouter(httpapi.Deps{
		Cart:           httpapi.NewCartHandler(cartStore),
		Checkout:       httpapi.NewCheckoutHandler(cartStore, orders, catalogAPI),
		Orders:         httpapi.NewOrdersHandler(orders),
		Payments:       httpapi.NewPaymentHandler(orders, sessions, reconciler),
		Reviews:        httpapi.NewReviewHandler(reviews, reviewAPI),
		Tokens:         state,
		RequestTimeout: cfg.RequestTimeout,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      otelhttp.NewHandler(router, "storefront"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("storefront listening", "port", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()

	log.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}
	log.Info("storefront stopped")
}
