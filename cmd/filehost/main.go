package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hayley-d/filehost/internal/config"
	"github.com/hayley-d/filehost/internal/credstore"
	"github.com/hayley-d/filehost/internal/filestore"
	"github.com/hayley-d/filehost/internal/logsink"
	"github.com/hayley-d/filehost/internal/server"
	"github.com/hayley-d/filehost/internal/session"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:   "filehost [port]",
		Short: "Static file server with session-gated deletes",
		Long: "filehost serves static files over a hand-rolled HTTP/1.1 loop,\n" +
			"with signup/login backed by bcrypt and session-gated DELETE.",
		Args: cobra.MaximumNArgs(1),
		RunE: run,
		// Errors are logged by run; cobra should not repeat them.
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.Flags().StringVarP(&configPath, "config", "c", "", "path to config file")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	// A positional port overrides config and environment.
	if len(args) == 1 {
		port, err := strconv.Atoi(args[0])
		if err != nil || port < 1 || port > 65535 {
			return fmt.Errorf("invalid port %q", args[0])
		}
		cfg.Port = port
	}

	sink, err := logsink.Open(cfg.LogPath)
	if err != nil {
		return fmt.Errorf("opening log sink: %w", err)
	}
	defer sink.Close()

	creds, err := openCredStore(cfg)
	if err != nil {
		sink.Error("startup", "opening credential store", nil, err)
		return err
	}
	defer creds.Close()

	files, err := openFileStore(cmd.Context(), cfg)
	if err != nil {
		sink.Error("startup", "opening file store", nil, err)
		return err
	}

	audit := server.NewAuditor(sink, server.AuditPolicy(cfg.AuditPolicy))
	coord := server.NewCoordinator()
	handlers := &server.Handlers{
		Files:    files,
		Creds:    creds,
		Sessions: session.NewStore(cfg.SessionTTL),
		Audit:    audit,
	}

	srv := server.New(server.Config{
		Host:        cfg.Host,
		Port:        cfg.Port,
		ReadTimeout: cfg.ReadTimeout,
		MaxConns:    cfg.MaxConns,
	}, handlers, sink, audit, coord)

	if err := srv.Listen(); err != nil {
		sink.Error("startup", "binding listener", nil, err)
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(context.Background())
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		sink.Info("signal", sig.String(), nil)
		srv.Shutdown()
		if err := <-errCh; err != nil {
			return err
		}
	case err := <-errCh:
		if err != nil {
			return err
		}
	}
	sink.Info("exit", "graceful shutdown complete", nil)
	return nil
}

func openCredStore(cfg *config.Config) (credstore.Store, error) {
	if cfg.DatabaseURL != "" {
		return credstore.OpenPostgres(cfg.DatabaseURL)
	}
	return credstore.NewMemory(), nil
}

func openFileStore(ctx context.Context, cfg *config.Config) (filestore.Store, error) {
	if cfg.S3Endpoint != "" {
		return filestore.NewMinio(ctx, filestore.MinioConfig{
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
			UseSSL:    cfg.S3UseSSL,
		})
	}
	return filestore.NewDisk(cfg.StaticDir), nil
}
