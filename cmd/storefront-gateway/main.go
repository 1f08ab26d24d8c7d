package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"storefront-gateway/internal/cache"
	"storefront-gateway/internal/catalog"
	"storefront-gateway/internal/config"
	"storefront-gateway/internal/handler"
	"storefront-gateway/internal/messaging"
	"storefront-gateway/internal/middleware"
	"storefront-gateway/internal/notify"
	"storefront-gateway/internal/observability"
	"storefront-gateway/internal/repository/postgres"
	"storefront-gateway/internal/security"
	"storefront-gateway/internal/state"
	"storefront-gateway/internal/websocket"
)

func main() {
	cfg := config.Load()

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logFormat := os.Getenv("LOG_FORMAT")
	if logFormat == "" {
		logFormat = "json"
	}
	observability.InitLogger(logLevel, logFormat)

	slog.Info("starting storefront gateway")

	connCtx, connCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer connCancel()

	db, err := config.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	if err := db.PingContext(connCtx); err != nil {
		slog.Error("database ping failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	slog.Info("connected to postgresql")

	snapshots, err := cache.NewRedisCache(cfg.RedisURL)
	if err != nil {
		slog.Error("failed to connect to redis", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer snapshots.Close()
	slog.Info("connected to redis")

	rmqCtx, rmqCancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer rmqCancel()

	rmq, err := messaging.NewRabbitMQWithRetry(rmqCtx, cfg.RabbitMQURL)
	if err != nil {
		slog.Error("failed to connect to rabbitmq", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer rmq.Close()

	cipher := security.NewTokenCipher(cfg.SessionSecret)
	signer := security.NewCookieSigner(cfg.SessionSecret)

	sessionRepo, err := postgres.NewSessionRepository(db, cipher)
	if err != nil {
		slog.Error("failed to prepare session repository", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Notifications fan out through RabbitMQ so every replica's websocket
	// hub sees them, whichever replica handled the failing call.
	center := notify.NewCenter()
	center.AddSink(rmq)

	client := catalog.NewClient(cfg.CatalogAPIURL, center)

	auth := state.NewAuth(client, sessionRepo, snapshots, center)
	cart := state.NewCart(client, snapshots, center)
	wishlist := state.NewWishlist(client, snapshots, center)

	client.OnSessionExpired(auth.HandleSessionExpired)
	auth.OnSessionEnd(cart.Drop)
	auth.OnSessionEnd(wishlist.Drop)

	hub := websocket.NewHub()

	hubCtx, hubCancel := context.WithCancel(context.Background())
	defer hubCancel()
	go func() {
		if err := hub.Run(hubCtx); err != nil && err != context.Canceled {
			slog.Error("hub error", slog.String("error", err.Error()))
		}
	}()
	slog.Info("websocket hub started")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	consumer := messaging.NewNotificationConsumer(rmq, hub)
	if err := consumer.Start(ctx); err != nil {
		slog.Error("failed to start notification consumer", slog.String("error", err.Error()))
		os.Exit(1)
	}
	slog.Info("notification consumer started")

	go startSessionCleanup(ctx, auth)
	slog.Info("session cleanup task started")

	secureCookies := cfg.IsProduction()
	origins := middleware.ParseOrigins(cfg.AllowedOrigins)

	authHandler := handler.NewAuthHandler(auth, signer, secureCookies)
	productHandler := handler.NewProductHandler(client)
	cartHandler := handler.NewCartHandler(cart)
	wishlistHandler := handler.NewWishlistHandler(wishlist)
	orderHandler := handler.NewOrderHandler(client, cart, cfg.CheckoutReturnURL)
	addressHandler := handler.NewAddressHandler(client)
	profileHandler := handler.NewProfileHandler(auth, secureCookies)
	notificationHandler := handler.NewNotificationHandler(hub, origins)

	r := chi.NewRouter()

	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.CORS(origins))
	r.Use(middleware.CSRF(origins))
	r.Use(middleware.Metrics())
	r.Use(middleware.OpenAPIValidator(middleware.DefaultOpenAPIValidatorConfig()))

	r.Get("/health", handler.Health)
	r.Get("/health/ready", handler.Ready(db, snapshots, rmq))
	r.Handle("/metrics", promhttp.Handler())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Not Found", http.StatusNotFound)
	})

	r.Route("/api/v1", func(r chi.Router) {
		authLimiter := middleware.NewRateLimiter(5, 10)
		apiLimiter := middleware.NewRateLimiter(20, 50)

		r.Group(func(r chi.Router) {
			r.Use(authLimiter.Middleware())
			r.Post("/auth/register", authHandler.Register)
			r.Post("/auth/login", authHandler.Login)
		})

		r.Group(func(r chi.Router) {
			r.Use(apiLimiter.Middleware())
			r.Get("/products", productHandler.Products)
			r.Get("/products/{id}", productHandler.Product)
			r.Get("/categories", productHandler.Categories)
			r.Get("/brands", productHandler.Brands)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(signer, auth))
			r.Use(apiLimiter.Middleware())

			r.Get("/auth/me", authHandler.Me)
			r.Post("/auth/logout", authHandler.Logout)

			r.Get("/cart", cartHandler.Get)
			r.Delete("/cart", cartHandler.Clear)
			r.Post("/cart/{productId}", cartHandler.AddItem)
			r.Put("/cart/{productId}", cartHandler.UpdateItem)
			r.Delete("/cart/{productId}", cartHandler.RemoveItem)

			r.Get("/wishlist", wishlistHandler.Get)
			r.Post("/wishlist", wishlistHandler.AddItem)
			r.Delete("/wishlist/{productId}", wishlistHandler.RemoveItem)

			r.Get("/orders", orderHandler.List)
			r.Post("/orders/{cartId}", orderHandler.CreateCash)
			r.Post("/orders/checkout-session/{cartId}", orderHandler.Checkout)

			r.Get("/addresses", addressHandler.List)
			r.Post("/addresses", addressHandler.Create)
			r.Put("/addresses/{id}", addressHandler.Update)
			r.Delete("/addresses/{id}", addressHandler.Delete)

			r.Put("/users/me", profileHandler.Update)
			r.Put("/users/password", profileHandler.ChangePassword)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(signer, auth))
		r.Get("/ws/notifications", notificationHandler.Connect)
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("storefront gateway listening", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", slog.String("error", err.Error()))
	}

	cancel()
	hubCancel()

	time.Sleep(100 * time.Millisecond)

	slog.Info("server stopped gracefully")
}

// startSessionCleanup deletes expired durable session rows once an hour.
func startSessionCleanup(ctx context.Context, auth *state.Auth) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("stopping session cleanup task")
			return
		case <-ticker.C:
			cleanupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			count, err := auth.DeleteExpired(cleanupCtx)
			if err != nil {
				slog.Error("session cleanup failed", slog.String("error", err.Error()))
			} else {
				slog.Info("session cleanup completed",
					slog.Int64("sessions_deleted", count))
			}
			cancel()
		}
	}
}
