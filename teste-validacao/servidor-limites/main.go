package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/viper"

	"limites-harness/harness/fakeapi"
	"limites-harness/internal/logging"
)

// Sobe uma versão falsa do serviço de limites para validar o harness:
//
//	go run ./teste-validacao/servidor-limites
//	BASE_URL=http://localhost:8080 go run ./cmd/harness load
func main() {
	v := viper.New()
	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("fake_latency", "0s")
	v.SetDefault("log_level", "info")
	v.AutomaticEnv()

	logger := logging.New(logging.Options{Level: v.GetString("log_level"), Prefix: "fakeapi", ReportTimestamp: true})

	var docs []string
	for _, d := range strings.Split(v.GetString("fake_docs"), ",") {
		if d = strings.TrimSpace(d); d != "" {
			docs = append(docs, d)
		}
	}

	api := fakeapi.New(fakeapi.Options{
		Documents:   docs,
		SyncRecalc:  v.GetBool("fake_sync_recalc"),
		Latency:     v.GetDuration("fake_latency"),
		RequireRole: v.GetString("fake_require_role"),
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	addr := v.GetString("listen_addr")
	srv := &http.Server{
		Addr:              addr,
		Handler:           api,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("fake limits api listening", "addr", addr, "docs", len(docs),
		"sync_recalc", v.GetBool("fake_sync_recalc"), "latency", v.GetDuration("fake_latency"))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "err", err)
		os.Exit(1)
	}
}
