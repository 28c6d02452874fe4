package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"imagestore/adapters/db"
	"imagestore/api"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := newRootCmd().Execute(); err != nil {
		slog.Error("Fail to execute command", slog.Any("error", err))
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "imagestore",
		Short:        "Upload images to object storage and list them",
		SilenceUsage: true,
	}
	root.AddCommand(newServeCmd(), newMigrateCmd())
	return root
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			args, err := ParseArgs(cmd.Flags())
			if err != nil {
				return err
			}
			slog.SetDefault(createLogger(os.Stderr, args.LogLevel))
			if err := args.Validate(); err != nil {
				return fmt.Errorf("missing arguments: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, args)
		},
	}
	addCommonFlags(cmd.Flags())
	addDBFlags(cmd.Flags())
	addServeFlags(cmd.Flags())
	return cmd
}

func serve(ctx context.Context, args Args) error {
	server, err := api.NewServer(ctx, args.ServerConfig)
	if err != nil {
		return err
	}
	defer server.Close()
	server.Start()

	router := gin.Default()
	api.RegisterHandlers(router, server)
	httpServer := &http.Server{
		Addr:    args.ServerURL,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Start HTTP server", slog.String("addr", args.ServerURL))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("fail to shutdown http server: %w", err)
	}
	return nil
}

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the images table",
		RunE: func(cmd *cobra.Command, _ []string) error {
			args, err := ParseMigrateArgs(cmd.Flags())
			if err != nil {
				return err
			}
			slog.SetDefault(createLogger(os.Stderr, args.LogLevel))

			conn, err := db.Open(args.DB)
			if err != nil {
				return err
			}
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			defer sqlDB.Close()
			if err := db.Migrate(conn); err != nil {
				return err
			}
			slog.Info("Images table is up to date", slog.String("driver", args.DB.Driver))
			return nil
		},
	}
	addCommonFlags(cmd.Flags())
	addDBFlags(cmd.Flags())
	return cmd
}
