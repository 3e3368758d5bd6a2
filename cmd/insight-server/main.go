// Command insight-server serves the analyzed episodes and the insight
// catalog over HTTP. It is read-only: content changes by re-running the
// batch tools, not through the API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mostlymid/mostly-mid/server"
)

type Config struct {
	Addr           string
	TranscriptsDir string
	CacheDir       string
	CatalogPath    string
	StaticDir      string
	Mode           string
}

func defaultConfig() Config {
	return Config{
		Addr:           ":8000",
		TranscriptsDir: "transcripts",
		CacheDir:       "analysis_cache",
		CatalogPath:    "productreps_insights.json",
		StaticDir:      "static",
		Mode:           "dev",
	}
}

func parseFlags(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := defaultConfig()
	fs.SetOutput(os.Stderr)
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "Listen address")
	fs.StringVar(&cfg.TranscriptsDir, "transcripts", cfg.TranscriptsDir, "Transcripts directory (also scanned for analysis JSON)")
	fs.StringVar(&cfg.CacheDir, "cache", cfg.CacheDir, "Analysis cache directory")
	fs.StringVar(&cfg.CatalogPath, "catalog", cfg.CatalogPath, "Insight catalog JSON path")
	fs.StringVar(&cfg.StaticDir, "static", cfg.StaticDir, "Static assets directory (empty disables)")
	fs.StringVar(&cfg.Mode, "mode", cfg.Mode, "Run mode: dev or prod")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	cfg.TranscriptsDir = filepath.Clean(cfg.TranscriptsDir)
	cfg.CacheDir = filepath.Clean(cfg.CacheDir)
	cfg.CatalogPath = filepath.Clean(cfg.CatalogPath)
	if cfg.StaticDir != "" {
		cfg.StaticDir = filepath.Clean(cfg.StaticDir)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Addr == "" {
		return errors.New("-addr is required")
	}
	if c.CacheDir == "" && c.TranscriptsDir == "" {
		return errors.New("at least one of -cache or -transcripts is required")
	}
	return nil
}

func main() {
	cfg, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}

	log, err := server.NewLogger(cfg.Mode)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}
	defer log.Sync()

	if cfg.Mode == "prod" || cfg.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := server.NewRouter(server.Config{
		TranscriptsDir: cfg.TranscriptsDir,
		CacheDir:       cfg.CacheDir,
		CatalogPath:    cfg.CatalogPath,
		StaticDir:      cfg.StaticDir,
	}, log)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", cfg.Addr, "mode", cfg.Mode)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("shutdown", "err", err)
			os.Exit(1)
		}
		log.Info("stopped")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("serve", "err", err)
			os.Exit(1)
		}
	}
}
