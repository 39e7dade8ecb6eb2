// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/topic-tree/internal/web"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the interactive topic research page",
	Long: `Serve starts a web page with the configuration form (main topic, levels,
child topics per level, keyword data, blog drafts, layout) and shows the
graph, detailed log and keyword data of the last run.

Keyword data is offered when a RapidAPI key is configured, and blog drafts
when WordPress is configured.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return bindMetricsCache(viper.GetViper(), cmd)
	},
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", ":8501", "listen address")
	serveCmd.Flags().Duration("build-timeout", 0, "maximum duration of one run (0 = no limit)")
	serveCmd.Flags().String("metrics-cache", "", "SQLite file caching keyword volumes")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	addr, _ := cmd.Flags().GetString("addr")
	buildTimeout, _ := cmd.Flags().GetDuration("build-timeout")

	w, err := wire(viper.GetViper(), loadedSecrets, need{optMetrics: true, optPublish: true}, logger)
	if err != nil {
		return err
	}
	defer w.Close()

	srv := web.NewServer(w.builder, web.Config{
		MetricsEnabled: w.metrics,
		PublishEnabled: w.publish,
		BuildTimeout:   buildTimeout,
	}, logger)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		logger.Info("serving", zap.String("addr", addr),
			zap.Bool("keyword_data", w.metrics), zap.Bool("drafts", w.publish))
		fmt.Fprintf(cmd.OutOrStdout(), "Listening on %s\n", addr)
		errc <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	logger.Info("shutting down")
	return httpServer.Shutdown(shutdownCtx)
}
