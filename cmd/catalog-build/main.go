// Command catalog-build merges every cached analysis document into the single
// insight catalog JSON the serving layer and clients read. The catalog is
// regenerated wholesale; card ids are fresh UUIDs on every run.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mostlymid/mostly-mid/pipeline"
	"github.com/mostlymid/mostly-mid/pipeline/fileutils"
)

type Config struct {
	TranscriptsDir string
	CacheDir       string
	OutPath        string
	Pretty         bool
}

func defaultConfig() Config {
	return Config{
		TranscriptsDir: "transcripts",
		CacheDir:       "analysis_cache",
		OutPath:        "productreps_insights.json",
		Pretty:         true,
	}
}

func parseFlags(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := defaultConfig()
	fs.SetOutput(os.Stderr)
	fs.StringVar(&cfg.TranscriptsDir, "transcripts", cfg.TranscriptsDir, "Transcripts directory also scanned for analysis JSON files")
	fs.StringVar(&cfg.CacheDir, "cache", cfg.CacheDir, "Analysis cache directory (wins over -transcripts on duplicate filenames)")
	fs.StringVar(&cfg.OutPath, "out", cfg.OutPath, "Output path for the insight catalog JSON")
	fs.BoolVar(&cfg.Pretty, "pretty", cfg.Pretty, "Pretty-print the catalog JSON")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	cfg.TranscriptsDir = filepath.Clean(cfg.TranscriptsDir)
	cfg.CacheDir = filepath.Clean(cfg.CacheDir)
	cfg.OutPath = filepath.Clean(cfg.OutPath)
	return cfg, nil
}

func (c Config) Validate() error {
	if c.OutPath == "" {
		return errors.New("-out is required")
	}
	if c.TranscriptsDir == "" && c.CacheDir == "" {
		return errors.New("at least one of -transcripts or -cache is required")
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

	paths, err := pipeline.CollectAnalysisFiles(cfg.TranscriptsDir, cfg.CacheDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}
	if len(paths) == 0 {
		fmt.Fprintln(os.Stderr, "no analysis JSON files found")
		os.Exit(2)
	}

	catalog := pipeline.BuildCatalog(paths, pipeline.BuildOptions{
		TranscriptsDir: cfg.TranscriptsDir,
		Logf: func(format string, args ...any) {
			fmt.Fprintf(os.Stderr, "warn catalog-build: "+format+"\n", args...)
		},
	})

	if err := fileutils.WriteJSONFileAtomic(cfg.OutPath, catalog, cfg.Pretty); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	byCategory := make(map[pipeline.Category]int)
	for _, card := range catalog.Insights {
		byCategory[card.Category]++
	}
	for _, cat := range pipeline.Categories() {
		if n := byCategory[cat]; n > 0 {
			fmt.Fprintf(os.Stderr, "catalog-build: %s=%d\n", cat, n)
		}
	}

	fmt.Fprintf(os.Stdout, "insights=%d sources=%d podcasts=%d guests=%d out=%s\n",
		catalog.TotalInsights, catalog.Metadata.Sources, len(catalog.Metadata.Podcasts), len(catalog.Metadata.Guests), cfg.OutPath)
}
