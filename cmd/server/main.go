package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/scorrilo/budbudbud/internal/auth"
	"github.com/scorrilo/budbudbud/internal/config"
	"github.com/scorrilo/budbudbud/internal/mail"
	"github.com/scorrilo/budbudbud/internal/middleware"
	"github.com/scorrilo/budbudbud/internal/service"
	"github.com/scorrilo/budbudbud/internal/storage/sqlite"
	"github.com/scorrilo/budbudbud/pkg/api"
	"github.com/scorrilo/budbudbud/pkg/logging"
)

func main() {
	logging.Setup()

	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Initialize SQLite storage
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	jwtManager := auth.NewJWTManager(cfg.AuthSecret, cfg.TokenDuration)
	authenticator := auth.NewPasswordAuthenticator(store)

	var mailer mail.Mailer
	if cfg.SMTP.Host != "" {
		mailer, err = mail.NewSMTPMailer(cfg.SMTP)
		if err != nil {
			slog.Error("Failed to initialize mailer", "error", err)
			os.Exit(1)
		}
		slog.Info("SMTP mailer initialized", "host", cfg.SMTP.Host)
	} else {
		mailer = mail.LogMailer{}
		slog.Warn("No SMTP_HOST configured, invite emails will be logged only")
	}

	publicOpts := connect.WithInterceptors(
		middleware.MetricsInterceptor(),
		middleware.LoggingInterceptor(),
	)
	sessionOpts := connect.WithInterceptors(
		middleware.MetricsInterceptor(),
		middleware.LoggingInterceptor(),
		middleware.RequireAuth(jwtManager),
	)

	mux := http.NewServeMux()

	authPath, authHandler := api.NewAuthServiceHandler(
		service.NewAuthService(authenticator, jwtManager, store, cfg.AuthSecret, slog.Default()),
		publicOpts,
	)
	mux.Handle(authPath, authHandler)

	userPath, userHandler := api.NewUserServiceHandler(service.NewUserService(store), sessionOpts)
	mux.Handle(userPath, userHandler)

	groupPath, groupHandler := api.NewGroupServiceHandler(
		service.NewGroupService(store, mailer, cfg.AuthSecret, cfg.BaseURL),
		sessionOpts,
	)
	mux.Handle(groupPath, groupHandler)

	meetPath, meetHandler := api.NewMeetServiceHandler(service.NewMeetService(store), sessionOpts)
	mux.Handle(meetPath, meetHandler)

	mux.Handle("/metrics", promhttp.Handler())

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", "Connect-Protocol-Version", "Connect-Timeout-Ms"},
		ExposedHeaders: []string{"Connect-Protocol-Version", "Connect-Timeout-Ms"},
	}).Handler(mux)

	// h2c so Connect clients can use HTTP/2 without TLS
	h2cHandler := h2c.NewHandler(corsHandler, &http2.Server{})

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: h2cHandler,
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ctrlc
		slog.Info("Shutting down")
		server.Close()
	}()

	slog.Info("Connect server starting", "address", server.Addr, "base_url", cfg.BaseURL)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
