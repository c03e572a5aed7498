package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/lazypower/synapse/internal/config"
	"github.com/lazypower/synapse/internal/embed"
	"github.com/lazypower/synapse/internal/graph"
	"github.com/lazypower/synapse/internal/server"
	"github.com/lazypower/synapse/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	db, err := openDB(cfg)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	g := graph.NewStore()
	if err := db.LoadGraph(g); err != nil {
		return fmt.Errorf("load graph: %w", err)
	}
	fmt.Fprintf(os.Stderr, "  graph: %d nodes, %d edges\n", g.NodeCount(), g.EdgeCount())

	provider := pickProvider(cfg)
	fmt.Fprintf(os.Stderr, "  embedder: %s (%d dims)\n", provider.Model(), provider.Dimensions())

	builder := graph.NewBuilder(g, provider)
	builder.Threshold = cfg.Graph.SimilarityThreshold

	srv := server.New(g, builder, db, cfg, VersionString())
	addr := cfg.ListenAddr()

	httpServer := &http.Server{
		Addr:    addr,
		Handler: srv,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		fmt.Fprintf(os.Stderr, "synapse serving on %s\n", addr)
		fmt.Fprintf(os.Stderr, "  db: %s\n", db.Path)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "server error: %v\n", err)
			os.Exit(1)
		}
	}()

	<-done
	fmt.Fprintln(os.Stderr, "\nshutting down...")

	// Final snapshot so nothing since the last write-triggered save is lost.
	if err := db.SaveGraph(g.Export(), provider.Model()); err != nil {
		fmt.Fprintf(os.Stderr, "save graph: %v\n", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return httpServer.Shutdown(ctx)
}

// pickProvider probes the configured Ollama instance and falls back to the
// local hashing embedder when it is unreachable.
func pickProvider(cfg config.Config) embed.Provider {
	if embed.ProbeOllama(cfg.Embedder.OllamaURL, cfg.Embedder.Model) {
		return embed.NewOllamaProvider(cfg.Embedder.OllamaURL, cfg.Embedder.Model, cfg.Embedder.Dimensions)
	}
	fmt.Fprintf(os.Stderr, "  ollama unreachable at %s, using hashing fallback\n", cfg.Embedder.OllamaURL)
	return embed.NewHashingProvider(512)
}

// openDB resolves the database path from config and opens it.
func openDB(cfg config.Config) (*store.DB, error) {
	path := cfg.Database.Path
	if path == "" {
		if env := os.Getenv("SYNAPSE_DB"); env != "" {
			path = env
		} else {
			var err error
			path, err = store.DefaultDBPath()
			if err != nil {
				return nil, err
			}
		}
	}
	return store.Open(path)
}
