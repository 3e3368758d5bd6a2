package main

import (
	"flag"
	"testing"
)

func TestParseFlags_Defaults(t *testing.T) {
	t.Parallel()

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg, err := parseFlags(fs, nil)
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if cfg.OutPath != "productreps_insights.json" || !cfg.Pretty {
		t.Fatalf("cfg=%+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidate_RequiresOut(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	cfg.OutPath = ""
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error")
	}
}
