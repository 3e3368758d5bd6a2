package main

import (
	"flag"
	"strings"
	"testing"

	"github.com/mostlymid/mostly-mid/pipeline"
)

func TestParseFlags_Defaults(t *testing.T) {
	t.Parallel()

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg, err := parseFlags(fs, nil)
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if cfg.Schema != "hybrid" || cfg.MaxChars != 50000 || cfg.Temperature != 0.3 {
		t.Fatalf("cfg=%+v", cfg)
	}
	if cfg.generation() != pipeline.GenerationHybrid {
		t.Fatalf("generation=%q", cfg.generation())
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestParseFlags_CriticalSchema(t *testing.T) {
	t.Parallel()

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg, err := parseFlags(fs, []string{"-schema", "critical", "-force"})
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if cfg.generation() != pipeline.GenerationCritical || !cfg.Force {
		t.Fatalf("cfg=%+v", cfg)
	}
}

func TestValidate_RejectsUnknownSchema(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	cfg.Schema = "vibes"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error")
	}
}

func TestBuildAnalysisInput_TruncatesAndPrependsContext(t *testing.T) {
	t.Parallel()

	meta := pipeline.EpisodeMetadata{
		Podcast:         "Pod Show",
		Episode:         "Scaling",
		Guest:           "Jane Doe",
		PrimaryCategory: pipeline.CategoryBuildAIProducts,
	}
	long := strings.Repeat("word ", 100)
	input := buildAnalysisInput(&meta, long, 50)

	if !strings.Contains(input, "EPISODE CONTEXT:") || !strings.Contains(input, "guest: Jane Doe") {
		t.Fatalf("input=%q", input)
	}
	idx := strings.Index(input, "TRANSCRIPT TO ANALYZE:\n")
	if idx == -1 {
		t.Fatalf("input=%q", input)
	}
	body := input[idx+len("TRANSCRIPT TO ANALYZE:\n"):]
	if len([]rune(body)) > 51 {
		t.Fatalf("transcript not truncated: len=%d", len(body))
	}
}

func TestBuildAnalysisInput_NoMetadata(t *testing.T) {
	t.Parallel()

	input := buildAnalysisInput(nil, "short transcript", 50000)
	if strings.Contains(input, "EPISODE CONTEXT:") {
		t.Fatalf("input=%q", input)
	}
	if !strings.HasSuffix(input, "short transcript") {
		t.Fatalf("input=%q", input)
	}
}

func TestHybridSchema_Strict(t *testing.T) {
	t.Parallel()

	if hybridSchema["type"] != "object" {
		t.Fatalf("type=%v", hybridSchema["type"])
	}
	if ap, ok := hybridSchema["additionalProperties"].(bool); !ok || ap {
		t.Fatalf("additionalProperties=%v", hybridSchema["additionalProperties"])
	}
	props, ok := hybridSchema["properties"].(map[string]interface{})
	if !ok {
		t.Fatalf("properties=%T", hybridSchema["properties"])
	}
	for _, key := range []string{"scores", "verdict", "insights", "why_these_scores", "summary", "characteristics", "obvious_insights_rejected"} {
		if _, ok := props[key]; !ok {
			t.Fatalf("missing property %q", key)
		}
	}
	// Bookkeeping fields stamped locally must never reach the model schema.
	for _, key := range []string{"analyzed_at", "model", "scoring_mode", "episode_metadata"} {
		if _, ok := props[key]; ok {
			t.Fatalf("unexpected property %q", key)
		}
	}
}

func TestCriticalSchema_HasLegacyKeys(t *testing.T) {
	t.Parallel()

	props, ok := criticalSchema["properties"].(map[string]interface{})
	if !ok {
		t.Fatalf("properties=%T", criticalSchema["properties"])
	}
	for _, key := range []string{"freshness_score", "insight_score", "top_5_takeaways"} {
		if _, ok := props[key]; !ok {
			t.Fatalf("missing property %q", key)
		}
	}
}
