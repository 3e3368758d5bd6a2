// Command feed-import pulls a podcast RSS feed and files one stub transcript
// per episode, headers prefilled from the feed. The body carries a paste
// marker; transcription itself happens elsewhere. Episodes whose stub already
// exists are skipped, so re-running against a growing feed only adds new ones.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/mostlymid/mostly-mid/pipeline"
	"github.com/mostlymid/mostly-mid/pipeline/fileutils"
)

const pasteMarker = "[PASTE TRANSCRIPT CONTENT BELOW THIS LINE]"

type Config struct {
	FeedURL        string
	TranscriptsDir string
	Podcast        string
	Category       string
	Limit          int
	Timeout        time.Duration
}

func defaultConfig() Config {
	return Config{
		TranscriptsDir: "transcripts",
		Limit:          20,
		Timeout:        30 * time.Second,
	}
}

func parseFlags(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := defaultConfig()
	fs.SetOutput(os.Stderr)
	fs.StringVar(&cfg.FeedURL, "feed", "", "Podcast RSS/Atom feed URL")
	fs.StringVar(&cfg.TranscriptsDir, "transcripts", cfg.TranscriptsDir, "Directory for transcript .txt files")
	fs.StringVar(&cfg.Podcast, "podcast", "", "Podcast name override (default: feed title)")
	fs.StringVar(&cfg.Category, "category", "", "Primary category for imported episodes")
	fs.IntVar(&cfg.Limit, "limit", cfg.Limit, "Max feed items to import (0 = all)")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "Feed fetch timeout")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	cfg.TranscriptsDir = filepath.Clean(cfg.TranscriptsDir)
	return cfg, nil
}

func (c Config) Validate() error {
	if c.FeedURL == "" {
		return errors.New("-feed is required")
	}
	if c.TranscriptsDir == "" {
		return errors.New("-transcripts is required")
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fetchCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	feed, err := gofeed.NewParser().ParseURLWithContext(cfg.FeedURL, fetchCtx)
	if err != nil {
		fmt.Fprintln(os.Stderr, fmt.Errorf("fetch feed: %w", err).Error())
		os.Exit(1)
	}

	if err := os.MkdirAll(cfg.TranscriptsDir, 0o755); err != nil {
		fmt.Fprintln(os.Stderr, fmt.Errorf("mkdir -transcripts: %w", err).Error())
		os.Exit(1)
	}

	podcast := cfg.Podcast
	if podcast == "" {
		podcast = strings.TrimSpace(feed.Title)
	}
	if podcast == "" {
		podcast = "Unknown Podcast"
	}

	var imported, skipped int
	for i, item := range feed.Items {
		if cfg.Limit > 0 && i >= cfg.Limit {
			break
		}
		meta := metadataFromItem(podcast, cfg.Category, item)

		path := filepath.Join(cfg.TranscriptsDir,
			pipeline.TranscriptBaseName(meta.Guest, meta.Episode)+".txt")
		if fileutils.FileExists(path) {
			skipped++
			continue
		}

		body := pasteMarker + "\n"
		if _, err := pipeline.WriteTranscript(cfg.TranscriptsDir, meta, body); err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}
		imported++
		fmt.Fprintf(os.Stderr, "progress feed-import: filed %q\n", meta.Episode)
	}

	fmt.Fprintf(os.Stdout, "imported=%d skipped=%d podcast=%q transcripts=%s\n",
		imported, skipped, podcast, cfg.TranscriptsDir)
}

func metadataFromItem(podcast, category string, item *gofeed.Item) pipeline.EpisodeMetadata {
	meta := pipeline.EpisodeMetadata{
		Podcast:         podcast,
		Episode:         strings.TrimSpace(item.Title),
		Guest:           "Unknown Guest",
		PrimaryCategory: pipeline.NormalizeCategory(pipeline.Category(category), pipeline.DefaultCategory),
		URL:             strings.TrimSpace(item.Link),
	}
	if meta.Episode == "" {
		meta.Episode = "Untitled Episode"
	}
	if len(item.Authors) > 0 && strings.TrimSpace(item.Authors[0].Name) != "" {
		meta.Guest = strings.TrimSpace(item.Authors[0].Name)
	}
	if item.PublishedParsed != nil {
		meta.Date = item.PublishedParsed.Format("2006-01-02")
	}
	return meta
}
