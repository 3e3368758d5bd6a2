package main

import (
	"flag"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/mostlymid/mostly-mid/pipeline"
)

func TestParseFlags_RequiresFeed(t *testing.T) {
	t.Parallel()

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg, err := parseFlags(fs, nil)
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for missing -feed")
	}
}

func TestMetadataFromItem(t *testing.T) {
	t.Parallel()

	published := time.Date(2026, 2, 10, 8, 0, 0, 0, time.UTC)
	item := &gofeed.Item{
		Title: "  Scaling past PMF  ",
		Link:  "https://example.com/ep42",
		Authors: []*gofeed.Person{
			{Name: "Jane Doe"},
		},
		PublishedParsed: &published,
	}

	meta := metadataFromItem("Pod Show", "build_ai_products", item)
	want := pipeline.EpisodeMetadata{
		Podcast:         "Pod Show",
		Episode:         "Scaling past PMF",
		Guest:           "Jane Doe",
		PrimaryCategory: pipeline.CategoryBuildAIProducts,
		Date:            "2026-02-10",
		URL:             "https://example.com/ep42",
	}
	if meta != want {
		t.Fatalf("got=%+v want=%+v", meta, want)
	}
}

func TestMetadataFromItem_Defaults(t *testing.T) {
	t.Parallel()

	meta := metadataFromItem("Pod Show", "", &gofeed.Item{})
	if meta.Episode != "Untitled Episode" || meta.Guest != "Unknown Guest" {
		t.Fatalf("meta=%+v", meta)
	}
	if meta.PrimaryCategory != pipeline.DefaultCategory {
		t.Fatalf("category=%q", meta.PrimaryCategory)
	}
}
