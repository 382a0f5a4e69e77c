package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/quantumfinancegroupltd-commits/Local-Link-sub004/internal/browse"
	"github.com/quantumfinancegroupltd-commits/Local-Link-sub004/internal/model"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the browse API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		loader, closeLoader, err := initLoader()
		if err != nil {
			return err
		}
		defer closeLoader()

		// Warm all three collections so first requests rank instead of fetch.
		if err := loader.Preload(ctx, model.KindProducts, model.KindServices, model.KindArtisans); err != nil {
			zap.L().Warn("collection preload incomplete", zap.Error(err))
		}

		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{http.MethodGet},
		}))

		r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Get("/api/browse/{kind}", func(w http.ResponseWriter, req *http.Request) {
			kind := model.Kind(chi.URLParam(req, "kind"))
			if !kind.IsValid() {
				writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown kind"})
				return
			}

			// The request query string IS the filter state: same
			// parameters a shared browse URL carries.
			filters := browse.DecodeQuery(req.URL.RawQuery)

			results, err := browse.Browse(req.Context(), loader, kind, filters, cfg.Browse.SearchLimit)
			if err != nil {
				zap.L().Error("browse failed",
					zap.String("kind", string(kind)),
					zap.Error(err),
				)
				writeJSON(w, http.StatusBadGateway, map[string]string{"error": "collection unavailable"})
				return
			}

			writeJSON(w, http.StatusOK, map[string]any{
				"kind":    kind,
				"query":   browse.EncodeQuery(filters),
				"total":   len(results),
				"results": results,
			})
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
