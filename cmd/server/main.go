package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/djamelwaw6-beep/djamelwaw6-beep-lol/internal/cache"
	"github.com/djamelwaw6-beep/djamelwaw6-beep-lol/internal/clock"
	"github.com/djamelwaw6-beep/djamelwaw6-beep-lol/internal/config"
	"github.com/djamelwaw6-beep/djamelwaw6-beep-lol/internal/domain"
	"github.com/djamelwaw6-beep/djamelwaw6-beep-lol/internal/httpapi"
	"github.com/djamelwaw6-beep/djamelwaw6-beep-lol/internal/service"
	"github.com/djamelwaw6-beep/djamelwaw6-beep-lol/internal/showcase"
	"github.com/djamelwaw6-beep/djamelwaw6-beep-lol/internal/store"
	"github.com/djamelwaw6-beep/djamelwaw6-beep-lol/internal/store/memory"
	pgstore "github.com/djamelwaw6-beep/djamelwaw6-beep-lol/internal/store/postgres"
	"github.com/djamelwaw6-beep/djamelwaw6-beep-lol/internal/store/seed"
	sqlitestore "github.com/djamelwaw6-beep/djamelwaw6-beep-lol/internal/store/sqlite"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		logrus.WithError(err).Fatal("storefront exited")
	}
}

func newRootCommand() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "storefront",
		Short: "Storefront backend with live campaigns and a product showcase",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logrus.SetFormatter(&logrus.JSONFormatter{})
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			}
		},
		SilenceUsage: true,
	}
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	cmd.AddCommand(newServeCommand())
	cmd.AddCommand(newPreviewCommand())
	return cmd
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(config.Load())
		},
	}
}

func newPreviewCommand() *cobra.Command {
	var filter string
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Print the storefront layout as JSON",
		Long: `Build the storefront from the configured repository (or the seed
file) and print the section layout for one filter token, then exit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return preview(cmd.Context(), config.Load(), filter, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&filter, "filter", "all", "filter token: all, a category, or bot-offer-<campaign id>")
	return cmd
}

func serve(cfg config.Config) error {
	if err := validateSecurityConfig(cfg); err != nil {
		return fmt.Errorf("invalid security configuration: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	catalog, err := loadSeed(cfg)
	if err != nil {
		return err
	}
	repo, closers, err := openRepository(ctx, cfg, catalog)
	if err != nil {
		return err
	}
	defer func() { runClosers(closers) }()

	carts := cache.CartCache(cache.NoopCartCache{})
	if cfg.RedisAddr != "" {
		redisCache := cache.NewRedisCartCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := redisCache.Ping(ctx); err != nil {
			logrus.WithError(err).Warn("redis unavailable, using noop cart cache")
		} else {
			carts = redisCache
			closers = append(closers, redisCache.Close)
			logrus.Info("cart cache: redis")
		}
	} else {
		logrus.Info("cart cache: noop")
	}

	svc, err := service.New(context.Background(), repo, carts, clock.Real{}, serviceConfig(cfg, catalog.Wilayas), logrus.StandardLogger())
	if err != nil {
		return fmt.Errorf("start service: %w", err)
	}
	defer svc.Close()

	auth := httpapi.NewAuthManager(cfg.AuthSecret, time.Duration(cfg.AccessTokenTTLMinutes)*time.Minute, cfg.AdminPassword)
	api := httpapi.New(svc, auth, cfg.AllowedOrigin, logrus.StandardLogger())

	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logrus.WithField("addr", cfg.Address()).Info("storefront listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Warn("shutdown error")
	}
	logrus.Info("server stopped")
	return nil
}

func preview(ctx context.Context, cfg config.Config, filter string, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	catalog, err := loadSeed(cfg)
	if err != nil {
		return err
	}
	repo, closers, err := openRepository(ctx, cfg, catalog)
	if err != nil {
		return err
	}
	defer runClosers(closers)

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	svc, err := service.New(ctx, repo, nil, clock.Real{}, serviceConfig(cfg, catalog.Wilayas), logger)
	if err != nil {
		return err
	}
	defer svc.Close()

	return writePreview(out, svc.Preview(filter))
}

// loadSeed returns the configured seed file, or the built-in catalog.
func loadSeed(cfg config.Config) (seed.Catalog, error) {
	if cfg.SeedFile == "" {
		return seed.Default(), nil
	}
	loaded, err := seed.Load(cfg.SeedFile)
	if err != nil {
		return seed.Catalog{}, fmt.Errorf("load seed file: %w", err)
	}
	logrus.WithField("path", cfg.SeedFile).Info("seed catalog loaded")
	return loaded, nil
}

// openRepository picks postgres, then sqlite, then memory. The seed
// catalog fills whichever store has no products yet.
func openRepository(ctx context.Context, cfg config.Config, catalog seed.Catalog) (store.Repository, []func() error, error) {
	var (
		repo    store.Repository
		closers []func() error
	)
	switch {
	case cfg.DatabaseURL != "":
		pg, err := pgstore.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres unavailable and DATABASE_URL is set; refusing to start with in-memory fallback: %w", err)
		}
		repo = pg
		closers = append(closers, pg.Close)
		logrus.Info("repository: postgres")
	case cfg.SQLitePath != "":
		lite, err := sqlitestore.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite: %w", err)
		}
		repo = lite
		closers = append(closers, lite.Close)
		logrus.WithField("path", cfg.SQLitePath).Info("repository: sqlite")
	default:
		logrus.Info("repository: in-memory")
		return memory.NewFromCatalog(catalog), nil, nil
	}

	if err := seedIfEmpty(ctx, repo, catalog); err != nil {
		runClosers(closers)
		return nil, nil, err
	}
	return repo, closers, nil
}

func seedIfEmpty(ctx context.Context, repo store.Repository, catalog seed.Catalog) error {
	if _, err := repo.LoadProducts(ctx); !errors.Is(err, store.ErrNotFound) {
		return err
	}
	if err := repo.SaveProducts(ctx, catalog.Products); err != nil {
		return fmt.Errorf("seed products: %w", err)
	}
	if _, err := repo.LoadSettings(ctx); errors.Is(err, store.ErrNotFound) {
		if err := repo.SaveSettings(ctx, catalog.Settings); err != nil {
			return fmt.Errorf("seed settings: %w", err)
		}
	}
	return nil
}

func runClosers(closers []func() error) {
	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			logrus.WithError(err).Warn("close error")
		}
	}
}

func serviceConfig(cfg config.Config, wilayas []domain.Wilaya) service.Config {
	return service.Config{
		Showcase: showcase.Config{
			Dwell: cfg.ShowcaseDwell,
			Tick:  cfg.ShowcaseTick,
			Intro: cfg.ShowcaseIntro,
		},
		CountdownPeriod: cfg.CountdownTick,
		CartTTL:         cfg.CartTTL(),
		Locale:          cfg.Locale,
		Wilayas:         wilayas,
	}
}
