package main

import (
	"errors"
	"flag"
	"os"
	"path/filepath"
	"time"

	"github.com/mostlymid/mostly-mid/pipeline"
)

type Config struct {
	TranscriptsDir string
	CacheDir       string
	Model          string
	Schema         string
	APIKey         string
	Force          bool
	Concurrency    int
	MaxChars       int
	Temperature    float64
	CallsPerMinute int
	CallTimeout    time.Duration
}

func defaultConfig() Config {
	return Config{
		TranscriptsDir: "transcripts",
		CacheDir:       "analysis_cache",
		Model:          "gpt-5-mini",
		Schema:         string(pipeline.GenerationHybrid),
		Concurrency:    1,
		MaxChars:       50000,
		Temperature:    0.3,
		CallsPerMinute: 20,
		CallTimeout:    5 * time.Minute,
	}
}

func parseFlags(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := defaultConfig()
	fs.SetOutput(os.Stderr)
	fs.StringVar(&cfg.TranscriptsDir, "transcripts", cfg.TranscriptsDir, "Directory containing transcript .txt files")
	fs.StringVar(&cfg.CacheDir, "cache", cfg.CacheDir, "Directory for analysis JSON documents")
	fs.StringVar(&cfg.Model, "model", cfg.Model, "OpenAI model to use (e.g. gpt-5-mini)")
	fs.StringVar(&cfg.Schema, "schema", cfg.Schema, "Analysis schema to produce: hybrid or critical")
	fs.BoolVar(&cfg.Force, "force", false, "Re-analyze transcripts that already have a cached document")
	fs.IntVar(&cfg.Concurrency, "concurrency", cfg.Concurrency, "Max concurrent transcript analyses")
	fs.IntVar(&cfg.MaxChars, "max-chars", cfg.MaxChars, "Max transcript characters sent to the model")
	fs.Float64Var(&cfg.Temperature, "temperature", cfg.Temperature, "Sampling temperature for scoring consistency")
	fs.IntVar(&cfg.CallsPerMinute, "calls-per-minute", cfg.CallsPerMinute, "Rate limit on model calls")
	fs.DurationVar(&cfg.CallTimeout, "call-timeout", cfg.CallTimeout, "Per-call timeout")
	fs.StringVar(&cfg.APIKey, "api-key", "", "OpenAI API key (overrides OPENAI_API_KEY env var)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	cfg.TranscriptsDir = filepath.Clean(cfg.TranscriptsDir)
	cfg.CacheDir = filepath.Clean(cfg.CacheDir)
	return cfg, nil
}

func (c Config) Validate() error {
	if c.TranscriptsDir == "" {
		return errors.New("-transcripts is required")
	}
	if c.CacheDir == "" {
		return errors.New("-cache is required")
	}
	if c.Model == "" {
		return errors.New("-model is required")
	}
	switch c.Schema {
	case string(pipeline.GenerationHybrid), string(pipeline.GenerationCritical):
	default:
		return errors.New("-schema must be hybrid or critical")
	}
	if c.MaxChars <= 0 {
		return errors.New("-max-chars must be positive")
	}
	if c.CallsPerMinute <= 0 {
		return errors.New("-calls-per-minute must be positive")
	}
	return nil
}

func (c Config) generation() pipeline.Generation {
	if c.Schema == string(pipeline.GenerationCritical) {
		return pipeline.GenerationCritical
	}
	return pipeline.GenerationHybrid
}
