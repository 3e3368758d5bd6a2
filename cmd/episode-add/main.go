// Command episode-add files a new podcast transcript into the transcripts
// directory with a metadata header and a collision-safe filename, or reports
// the analyzed-vs-pending status of everything already filed.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mostlymid/mostly-mid/pipeline"
)

type Config struct {
	TranscriptsDir string
	CacheDir       string

	Podcast  string
	Episode  string
	Guest    string
	Category string
	Date     string
	URL      string

	// FromPath is the transcript body source; "-" or empty reads stdin.
	FromPath string

	Status bool
}

func defaultConfig() Config {
	return Config{
		TranscriptsDir: "transcripts",
		CacheDir:       "analysis_cache",
	}
}

func parseFlags(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := defaultConfig()
	fs.SetOutput(os.Stderr)
	fs.StringVar(&cfg.TranscriptsDir, "transcripts", cfg.TranscriptsDir, "Directory containing transcript .txt files")
	fs.StringVar(&cfg.CacheDir, "cache", cfg.CacheDir, "Analysis cache directory (used by -status)")
	fs.StringVar(&cfg.Podcast, "podcast", "", "Podcast name")
	fs.StringVar(&cfg.Episode, "episode", "", "Episode title")
	fs.StringVar(&cfg.Guest, "guest", "", "Guest name")
	fs.StringVar(&cfg.Category, "category", "", "Primary category (learn_from_legends, build_ai_products, speak_ai_fluently, ai_superpowers)")
	fs.StringVar(&cfg.Date, "date", "", "Episode date (YYYY-MM-DD)")
	fs.StringVar(&cfg.URL, "url", "", "Episode URL")
	fs.StringVar(&cfg.FromPath, "from", "", "Transcript body file ('-' or empty reads stdin)")
	fs.BoolVar(&cfg.Status, "status", false, "Report analyzed vs pending transcripts instead of adding one")

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
	if c.Status {
		return nil
	}
	if c.Category != "" && !pipeline.ValidCategory(pipeline.Category(c.Category)) {
		return errors.New("-category must be one of learn_from_legends, build_ai_products, speak_ai_fluently, ai_superpowers")
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

	if cfg.Status {
		if err := reportStatus(cfg); err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}
		return
	}

	if err := addEpisode(cfg); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func addEpisode(cfg Config) error {
	content, err := readBody(cfg.FromPath)
	if err != nil {
		return err
	}

	// A header already present in the source file supplies defaults; explicit
	// flags win over it.
	meta, body, state := pipeline.ParseTranscript(content)
	if state == pipeline.HeaderMalformed {
		fmt.Fprintln(os.Stderr, "warn episode-add: source has a metadata header with no closing delimiter; treating it as body")
	}

	if cfg.Podcast != "" {
		meta.Podcast = cfg.Podcast
	}
	if cfg.Episode != "" {
		meta.Episode = cfg.Episode
	}
	if cfg.Guest != "" {
		meta.Guest = cfg.Guest
	}
	if cfg.Category != "" {
		meta.PrimaryCategory = pipeline.Category(cfg.Category)
	}
	if cfg.Date != "" {
		meta.Date = cfg.Date
	}
	if cfg.URL != "" {
		meta.URL = cfg.URL
	}
	if meta.PrimaryCategory == "" {
		meta.PrimaryCategory = pipeline.DefaultCategory
	}

	if meta.Podcast == "" || meta.Episode == "" || meta.Guest == "" {
		return errors.New("need -podcast, -episode, and -guest (or a source file with a metadata header)")
	}

	path, err := pipeline.WriteTranscript(cfg.TranscriptsDir, meta, body)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "added=%s podcast=%q guest=%q category=%s\n",
		path, meta.Podcast, meta.Guest, meta.PrimaryCategory)
	return nil
}

func readBody(fromPath string) (string, error) {
	if fromPath == "" || fromPath == "-" {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(b), nil
	}
	b, err := os.ReadFile(fromPath)
	if err != nil {
		return "", fmt.Errorf("read -from: %w", err)
	}
	return string(b), nil
}

func reportStatus(cfg Config) error {
	ids, err := pipeline.ListTranscriptIDs(cfg.TranscriptsDir)
	if err != nil {
		return err
	}

	cache := pipeline.Cache{Dir: cfg.CacheDir}
	var analyzed, pending int
	for _, id := range ids {
		if cache.Has(id, pipeline.GenerationHybrid) || cache.Has(id, pipeline.GenerationCritical) {
			analyzed++
			fmt.Fprintf(os.Stderr, "analyzed %s\n", id)
		} else {
			pending++
			fmt.Fprintf(os.Stderr, "pending  %s\n", id)
		}
	}

	fmt.Fprintf(os.Stdout, "transcripts=%d analyzed=%d pending=%d\n", len(ids), analyzed, pending)
	return nil
}
