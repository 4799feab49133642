package app

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"arb_go/internal/infra"
	"arb_go/internal/storage"

	"github.com/joho/godotenv"
)

// Bootstrap orchestrates the application startup sequence.
type Bootstrap struct {
	Config  *infra.Config
	Journal *storage.Journal
}

// NewBootstrap creates a new Bootstrap instance.
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize loads credentials and config, sets up logging and opens the
// trade journal.
func (b *Bootstrap) Initialize() error {
	// 0. Credentials from .env, if present. Environment wins over config.
	if err := godotenv.Load(); err == nil {
		slog.Info("Loaded credentials from .env")
	}

	// 1. Config
	cfg, err := infra.LoadConfig(infra.ResolveConfigPath())
	if err != nil {
		return err
	}
	b.Config = cfg

	// 2. Logger
	logger := infra.NewLogger(cfg)
	slog.SetDefault(logger)

	infra.PrintBanner(cfg)

	// 3. Live-trading safety latch
	if os.Getenv("ARB_CONFIRM_LIVE") != "true" {
		return fmt.Errorf("SAFETY_GUARD: live trading requires 'ARB_CONFIRM_LIVE=true' environment variable")
	}

	// 4. Trade journal (diagnostic only; state is rebuilt from venue queries)
	if cfg.Journal.Enabled {
		path := cfg.Journal.Path
		if path == "" {
			path = filepath.Join("_workspace", "data", "journal.db")
		}
		if err := infra.EnsureDir(filepath.Dir(path)); err != nil {
			return fmt.Errorf("failed to create journal dir: %w", err)
		}
		journal, err := storage.NewJournal(path)
		if err != nil {
			return err
		}
		b.Journal = journal
		slog.Info("✅ Trade journal opened (WAL-mode)", "path", path)
	}

	return nil
}

// Close releases bootstrap-owned resources.
func (b *Bootstrap) Close() {
	if b.Journal != nil {
		if err := b.Journal.Close(); err != nil {
			slog.Warn("Journal close failed", slog.Any("error", err))
		}
	}
}
