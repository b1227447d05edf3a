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
	"go.uber.org/zap"

	"github.com/anglerlog/tacklebox/internal/httpapi"
	"github.com/anglerlog/tacklebox/pkg/tacklebox"
	"github.com/anglerlog/tacklebox/pkg/tacklebox/config"
	"github.com/anglerlog/tacklebox/pkg/tacklebox/identity"
	"github.com/anglerlog/tacklebox/pkg/tacklebox/store/sqlite"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the catalog HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Default()
		if cfgFile != "" {
			var err error
			cfg, err = config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
		}

		log, err := zap.NewProduction()
		if err != nil {
			return err
		}
		defer log.Sync()

		ctx := cmd.Context()
		st, err := sqlite.OpenSQLite(ctx, cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer st.Close()

		schemas, err := (&config.Loader{SchemasPath: cfg.SchemasPath}).Load()
		if err != nil {
			return err
		}

		id := &identity.StoreProvider{Store: st}
		box := tacklebox.New(tacklebox.Options{
			Store:    st,
			Identity: id,
			Schemas:  schemas,
			Timeout:  cfg.Timeout(),
		})

		srv := &http.Server{
			Addr:    cfg.Listen,
			Handler: httpapi.New(box, id, log, cfg.ErrorLimit).Handler(),
		}

		errCh := make(chan error, 1)
		go func() {
			log.Info("tacklebox listening", zap.String("addr", cfg.Listen), zap.String("db", cfg.DBPath))
			errCh <- srv.ListenAndServe()
		}()

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return err
			}
		case <-stop:
			log.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return err
			}
		}
		return nil
	},
}
