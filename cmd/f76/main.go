// File path: cmd/f76/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/rofenac/fo76-ml-db/internal/api"
	"github.com/rofenac/fo76-ml-db/internal/common"
	"github.com/rofenac/fo76-ml-db/internal/engine"
	"github.com/rofenac/fo76-ml-db/internal/exact"
	"github.com/rofenac/fo76-ml-db/internal/intent"
	"github.com/rofenac/fo76-ml-db/internal/llm"
	"github.com/rofenac/fo76-ml-db/internal/retriever"
	"github.com/rofenac/fo76-ml-db/internal/store"
	"github.com/rofenac/fo76-ml-db/internal/vector"
)

func main() {
	logger := common.Logger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := godotenv.Load(); err != nil {
		logger.Warn("f76: .env file not loaded", "error", err)
	} else {
		logger.Info("f76: environment loaded from .env")
	}

	addr := flag.String("addr", ":8080", "listen address")
	dbPath := flag.String("db", "", "path to the SQLite game catalog (defaults to F76_DB_PATH)")
	repl := flag.Bool("repl", false, "run an interactive question loop instead of the HTTP server")
	reindex := flag.Bool("reindex", false, "rebuild the vector index from the catalog and exit")
	flag.Parse()

	logger.Info("f76: startup initiated", "addr", *addr, "repl", *repl)

	st, err := store.Open(*dbPath)
	if err != nil {
		logger.Error("f76: store open failed", "error", err)
		fmt.Println("store error:", err)
		os.Exit(1)
	}
	defer st.Close()

	index, err := vector.NewFromEnv(ctx)
	if err != nil {
		logger.Error("f76: vector client init failed", "error", err)
		fmt.Println("vector error:", err)
		os.Exit(1)
	}
	defer index.Close()

	provider := llm.NewFromEnv()
	ret := retriever.New(provider, index, st)

	if *reindex {
		if err := ret.Reindex(ctx); err != nil {
			logger.Error("f76: reindex failed", "error", err)
			fmt.Println("reindex error:", err)
			os.Exit(1)
		}
		fmt.Println("vector index rebuilt")
		return
	}

	eng := engine.New(
		intent.NewClassifier(intent.DefaultOptions),
		exact.New(provider, st),
		ret,
		provider,
	)

	if *repl {
		runREPL(ctx, eng)
		return
	}

	server, err := api.NewServer(eng)
	if err != nil {
		logger.Error("f76: server init failed", "error", err)
		fmt.Println("server error:", err)
		os.Exit(1)
	}

	httpServer := &http.Server{
		Addr:              *addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("f76: listening", "addr", *addr)
		errCh <- httpServer.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("f76: shutting down", "signal", sig.String())
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("f76: shutdown failed", "error", err)
		}
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logger.Error("f76: server stopped", "error", err)
			fmt.Println("server error:", err)
			os.Exit(1)
		}
	}
}
