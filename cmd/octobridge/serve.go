package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/octobridge/octobridge/pkg/authflow"
	"github.com/octobridge/octobridge/pkg/catalog"
	"github.com/octobridge/octobridge/pkg/config"
	"github.com/octobridge/octobridge/pkg/dispatch"
	"github.com/octobridge/octobridge/pkg/ghapi"
	"github.com/octobridge/octobridge/pkg/http"
	"github.com/octobridge/octobridge/pkg/mcpserve"
	"github.com/octobridge/octobridge/pkg/utils"
)

const shutdownTimeout = 10 * time.Second

func runHTTP(cfg *config.Config, logger *slog.Logger) error {
	host, err := utils.NewAPIHost(cfg.Host)
	if err != nil {
		return fmt.Errorf("failed to resolve API host: %w", err)
	}

	store := authflow.NewMemoryStore(authflow.WithStoreLogger(logger))
	defer store.Close()

	exchanger, err := authflow.NewExchanger(authflow.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURI:  cfg.RedirectURI,
		Host:         host,
	}, store, authflow.WithExchangerLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to build exchanger: %w", err)
	}

	auth := authflow.NewHandler(store, exchanger, cfg.ClientOrigin, authflow.WithHandlerLogger(logger))

	cat := catalog.New()
	api := ghapi.NewClient(host, ghapi.WithLogger(logger), ghapi.WithUserAgent(userAgent()))
	dispatcher, err := dispatch.New(cat, api, dispatch.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to build dispatcher: %w", err)
	}

	router := http.NewRouter(auth, http.NewToolHandler(cat, dispatcher, logger))

	srv := &nethttp.Server{
		Addr:              cfg.ListenAddress,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "address", cfg.ListenAddress)
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			return err
		}
		return nil
	case sig := <-sigCh:
		logger.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(ctx)
}

func runStdio(cfg *config.Config, logger *slog.Logger) error {
	host, err := utils.NewAPIHost(cfg.Host)
	if err != nil {
		return fmt.Errorf("failed to resolve API host: %w", err)
	}

	cat := catalog.New()
	api := ghapi.NewClient(host, ghapi.WithLogger(logger), ghapi.WithUserAgent(userAgent()))
	dispatcher, err := dispatch.New(cat, api, dispatch.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to build dispatcher: %w", err)
	}

	srv, err := mcpserve.New(cat, dispatcher, version, cfg.Token, mcpserve.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to build stdio server: %w", err)
	}

	logger.Info("stdio server ready")
	return srv.Serve()
}

func userAgent() string {
	return fmt.Sprintf("octobridge/%s", version)
}
