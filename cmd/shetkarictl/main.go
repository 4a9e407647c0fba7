// Command shetkarictl queries the Smart Shetkari AI client from a terminal.
// Responses are cached in a local SQLite file so repeated questions work
// offline.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/af-corp/shetkari-gateway/internal/cache"
	"github.com/af-corp/shetkari-gateway/internal/config"
	"github.com/af-corp/shetkari-gateway/internal/gemini"
	"github.com/af-corp/shetkari-gateway/internal/types"
)

var (
	configDir string
	cachePath string
	noCache   bool
	language  string
	location  string
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "shetkarictl",
	Short: "Crop advice for Indian farmers from the command line",
	Long: `shetkarictl asks the Gemini models behind Smart Shetkari for crop
suggestions, crop and product details, market price trends and photographs.

The API key is read from GEMINI_API_KEY or from gateway.yaml in --config.`,
	SilenceUsage: true,
}

func init() {
	home, _ := os.UserHomeDir()
	defaultCache := filepath.Join(home, ".shetkari", "cache.db")

	rootCmd.PersistentFlags().StringVar(&configDir, "config", "configs", "gateway config directory (optional)")
	rootCmd.PersistentFlags().StringVar(&cachePath, "cache", defaultCache, "SQLite response cache path")
	rootCmd.PersistentFlags().BoolVar(&noCache, "no-cache", false, "keep responses in memory only")
	rootCmd.PersistentFlags().StringVarP(&language, "lang", "l", "mr", "response language: mr, hi or en")
	rootCmd.PersistentFlags().StringVar(&location, "location", "", "village, district or city")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log requests to stderr")

	rootCmd.AddCommand(suggestCmd, detailsCmd, pricesCmd, imageCmd, logoCmd, wizardCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// session bundles the client with the store it must close.
type session struct {
	client *gemini.Client
	store  cache.Store
}

func (s *session) Close() error { return s.store.Close() }

func openSession(ctx context.Context) (*session, error) {
	cfg, models, err := loadConfig()
	if err != nil {
		return nil, err
	}

	var logger *slog.Logger
	if verbose {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	} else {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	var store cache.Store
	if noCache {
		store = cache.NewMemoryStore()
	} else {
		sqlite, err := cache.OpenSQLite(cachePath)
		if err != nil {
			return nil, err
		}
		logger.Debug("response cache opened", "path", sqlite.Path())
		store = sqlite
	}

	client, err := gemini.NewFromConfig(ctx, cfg.Gemini, gemini.Options{
		Cache:  cache.New(store, logger, nil),
		Models: func() *config.ModelsConfig { return models },
		Logger: logger,
	})
	if err != nil {
		store.Close()
		return nil, err
	}
	return &session{client: client, store: store}, nil
}

// loadConfig reads gateway.yaml and models.yaml when present. The environment
// key always wins over the file.
func loadConfig() (*config.Config, *config.ModelsConfig, error) {
	cfg := config.DefaultConfig()
	if err := config.LoadFile(filepath.Join(configDir, "gateway.yaml"), cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, nil, err
	}
	models := config.DefaultModels()
	if err := config.LoadFile(filepath.Join(configDir, "models.yaml"), models); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, nil, err
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		cfg.Gemini.APIKey = key
	}
	return cfg, models, nil
}

func parseLanguage() (types.Language, error) {
	lang, ok := types.ParseLanguage(language)
	if !ok {
		return "", fmt.Errorf("unsupported language %q (use mr, hi or en)", language)
	}
	return lang, nil
}
