package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/lioia/pagerank/pkg/server"
	"github.com/lioia/pagerank/pkg/utils"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the gRPC ranker and the HTTP API",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := objectStore(cfg)
	if err != nil {
		return err
	}
	svc := server.NewService(cfg.Params, store)

	lis, err := net.Listen("tcp", fmt.Sprintf("%s:%d", cfg.Host, cfg.GRPCPort))
	if err != nil {
		return fmt.Errorf("failed to listen for gRPC server: %w", err)
	}
	grpcServer := server.NewGRPCServer(svc)
	httpServer := server.NewHTTPServer(svc)
	httpAddr := fmt.Sprintf("%s:%d", cfg.Host, cfg.HTTPPort)

	g, ctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error {
		utils.ServerLog("Starting gRPC server at %s", lis.Addr().String())
		return grpcServer.Serve(lis)
	})
	g.Go(func() error {
		utils.ServerLog("Starting HTTP server at %s", httpAddr)
		if err := httpServer.Start(httpAddr); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		utils.ServerLog("Shutting down")
		grpcServer.GracefulStop()
		shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdown)
	})
	return g.Wait()
}
