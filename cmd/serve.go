package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sot/chandra-ecf/ecf"
	"github.com/sot/chandra-ecf/ecf/server"
)

var (
	serveAddr    string // Listen address
	servePreload bool   // Load every shape before accepting requests
)

// serveCmd serves lookups over HTTP until interrupted.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve ECF lookups over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveConfig(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("addr") {
			cfg.Serve.Addr = serveAddr
		}
		cat := ecf.NewCatalog(newSource(cfg))

		if servePreload {
			for _, name := range ecf.ShapeNames() {
				if _, err := cat.Grid(ecf.Shape(name)); err != nil {
					logrus.Warnf("Preload of %s grid failed: %v", name, err)
				}
			}
		}

		srv := &http.Server{
			Addr:              cfg.Serve.Addr,
			Handler:           server.NewRouter(cat),
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logrus.Errorf("Server shutdown: %v", err)
			}
		}()

		logrus.Infof("Serving ECF lookups on %s (data dir %s)", cfg.Serve.Addr, cfg.DataDir)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		logrus.Info("Server stopped.")
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", defaultAddr, "Listen address")
	serveCmd.Flags().BoolVar(&servePreload, "preload", false, "Load every shape's grid at startup")
}
