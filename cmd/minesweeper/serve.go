package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vancomm/minesweeper-engine/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve games over websockets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.ValidateServe(); err != nil {
			return err
		}

		mainCtx, stop := signal.NotifyContext(
			cmd.Context(),
			os.Interrupt, syscall.SIGTERM,
		)
		defer stop()

		if serveAddr != "" {
			cfg.Addr = serveAddr
		}

		log.Info("starting up, mode = ", cfg.Mode)
		log.WithFields(cfg.Fields()).Debug("config")

		storage, closeStorage, err := openStorage(mainCtx, cfg.Storage)
		if err != nil {
			return err
		}
		defer closeStorage()

		httpServer := &http.Server{
			Addr:    cfg.Addr,
			Handler: server.New(cfg, storage, log).Handler(),
			BaseContext: func(l net.Listener) context.Context {
				return mainCtx
			},
		}

		log.Infof("ready to serve @ %s", cfg.Addr)

		g, gCtx := errgroup.WithContext(mainCtx)
		g.Go(func() error {
			return httpServer.ListenAndServe()
		})
		g.Go(func() error {
			<-gCtx.Done()
			return httpServer.Shutdown(context.Background())
		})

		if err := g.Wait(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		log.Info("shut down")
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", "", "listen address, overrides the config")
}
