package cli

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nostrbank/ledgerd/internal/config"
	"github.com/nostrbank/ledgerd/internal/engine"
	"github.com/nostrbank/ledgerd/internal/httpintro"
	"github.com/nostrbank/ledgerd/internal/ledgerstore"
	"github.com/nostrbank/ledgerd/internal/ledgerstore/postgres"
	kvpebble "github.com/nostrbank/ledgerd/internal/storage/kv/pebble"
	"github.com/nostrbank/ledgerd/internal/relay"
)

// serveCmd is the default command: it loads configuration, opens the
// ledger store and relay pool, and runs the engine until a shutdown
// signal arrives.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the ledger engine",
	Long: `serve loads configuration from the environment, connects to the
ledger store and the configured relays, and runs the transaction-processing
engine until interrupted.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.RunE = runServe
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if !quiet {
		fmt.Println("ledgerd starting")
		fmt.Printf("  identity: %s\n", cfg.NostrPublicKey)
		fmt.Printf("  relays:   %v\n", cfg.NostrRelays)
	}

	storeConfig := ledgerstore.NewConfig()
	storeConfig.ConnectionString = cfg.DatabaseURL
	store, err := postgres.NewStore(storeConfig)
	if err != nil {
		return fmt.Errorf("build ledger store: %w", err)
	}
	manager := ledgerstore.NewManager(store, storeConfig, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := manager.Open(ctx); err != nil {
		return fmt.Errorf("open ledger store: %w", err)
	}
	defer manager.Close(context.Background())

	cursorStore, err := kvpebble.Open(cfg.CursorPath)
	if err != nil {
		return fmt.Errorf("open ingest cursor store: %w", err)
	}
	defer cursorStore.Close()

	pool, err := relay.New(relay.Config{
		LedgerIdentity:  cfg.NostrPublicKey,
		Relays:          cfg.NostrRelays,
		FreshnessWindow: cfg.FreshnessWindow,
	}, cursorStore, log)
	if err != nil {
		return fmt.Errorf("build relay pool: %w", err)
	}
	go pool.Run(ctx)

	counters := &httpintro.Counters{}

	eng := engine.New(manager.Store(), pool, pool, engine.Config{
		MinterIdentity:        cfg.MinterPublicKey,
		MaxRetries:            cfg.MaxRetries,
		RepublishInterval:     cfg.RepublishInterval,
		MaxConcurrentRequests: cfg.MaxConcurrentRequests,
	}, log, counters)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: httpintro.NewHandler(storePinger{manager.Store()}, pool, counters),
	}
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("introspection server failed", "error", err)
		}
	}()
	defer httpServer.Close()

	if !quiet {
		fmt.Printf("  introspection: http://localhost:%d/healthz\n", cfg.Port)
	}

	return eng.Run(ctx)
}

// storePinger adapts ledgerstore.Store to httpintro.Pinger.
type storePinger struct {
	store ledgerstore.Store
}

func (p storePinger) Ping(ctx context.Context) error {
	return p.store.System().Ping(ctx)
}
