package pipeline

import (
	"testing"
)

func TestParseTranscript_Header(t *testing.T) {
	t.Parallel()

	content := "---\n" +
		"podcast: Lenny's Podcast\n" +
		"episode: How to ship faster\n" +
		"guest: Shreyas Doshi\n" +
		"category: build_ai_products\n" +
		"date: 2025-11-02\n" +
		"url: https://example.com/ep\n" +
		"---\n" +
		"Welcome to the show.\n"

	meta, body, state := ParseTranscript(content)
	if state != HeaderPresent {
		t.Fatalf("state=%v", state)
	}
	if meta.Podcast != "Lenny's Podcast" || meta.Episode != "How to ship faster" || meta.Guest != "Shreyas Doshi" {
		t.Fatalf("meta=%+v", meta)
	}
	if meta.PrimaryCategory != CategoryBuildAIProducts {
		t.Fatalf("category=%q", meta.PrimaryCategory)
	}
	if meta.Date != "2025-11-02" || meta.URL != "https://example.com/ep" {
		t.Fatalf("meta=%+v", meta)
	}
	if body != "Welcome to the show.\n" {
		t.Fatalf("body=%q", body)
	}
}

func TestParseTranscript_NoHeader(t *testing.T) {
	t.Parallel()

	content := "Just a raw transcript with --- dashes later.\n---\n"
	_, body, state := ParseTranscript(content)
	if state != HeaderAbsent {
		t.Fatalf("state=%v", state)
	}
	if body != content {
		t.Fatalf("body=%q", body)
	}
}

func TestParseTranscript_MalformedHeaderKeepsContent(t *testing.T) {
	t.Parallel()

	content := "---\npodcast: Orphaned Header\nno closing delimiter here\n"
	meta, body, state := ParseTranscript(content)
	if state != HeaderMalformed {
		t.Fatalf("state=%v", state)
	}
	if meta.Podcast != "" {
		t.Fatalf("meta should be empty, got %+v", meta)
	}
	if body != content {
		t.Fatalf("body=%q", body)
	}
}

func TestParseTranscript_UnknownCategoryFallsBack(t *testing.T) {
	t.Parallel()

	content := "---\npodcast: P\nepisode: E\nguest: G\ncategory: hot_takes\n---\nbody\n"
	meta, _, state := ParseTranscript(content)
	if state != HeaderPresent {
		t.Fatalf("state=%v", state)
	}
	if meta.PrimaryCategory != DefaultCategory {
		t.Fatalf("category=%q", meta.PrimaryCategory)
	}
}

func TestParseTranscript_ValueWithColon(t *testing.T) {
	t.Parallel()

	content := "---\nepisode: Ep 12: The Big One\npodcast: P\nguest: G\n---\nx\n"
	meta, _, _ := ParseTranscript(content)
	if meta.Episode != "Ep 12: The Big One" {
		t.Fatalf("episode=%q", meta.Episode)
	}
}

func TestRenderHeader_RoundTrips(t *testing.T) {
	t.Parallel()

	in := EpisodeMetadata{
		Podcast:         "20VC",
		Episode:         "The fundraising episode",
		Guest:           "Harry Stebbings",
		PrimaryCategory: CategorySpeakAIFluently,
		Date:            "2026-01-15",
		URL:             "https://example.com",
	}

	meta, body, state := ParseTranscript(RenderHeader(in) + "body text\n")
	if state != HeaderPresent {
		t.Fatalf("state=%v", state)
	}
	if meta != in {
		t.Fatalf("got=%+v want=%+v", meta, in)
	}
	if body != "body text\n" {
		t.Fatalf("body=%q", body)
	}
}

func TestMetadataFromFilename(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		filename string
		want     EpisodeMetadata
	}{
		{
			name:     "full_shape",
			filename: "lennys_podcast_shreyas_doshi_product_sense.txt",
			want: EpisodeMetadata{
				Podcast:         "Lennys Podcast",
				Guest:           "Shreyas Doshi",
				Episode:         "Product Sense",
				PrimaryCategory: DefaultCategory,
			},
		},
		{
			name:     "analysis_suffix_stripped",
			filename: "lennys_podcast_shreyas_doshi_product_sense_analysis_hybrid.json",
			want: EpisodeMetadata{
				Podcast:         "Lennys Podcast",
				Guest:           "Shreyas Doshi",
				Episode:         "Product Sense",
				PrimaryCategory: DefaultCategory,
			},
		},
		{
			name:     "too_few_tokens",
			filename: "interview_raw.txt",
			want: EpisodeMetadata{
				Podcast:         "Interview Raw",
				Guest:           "Unknown Guest",
				Episode:         "Unknown Episode",
				PrimaryCategory: DefaultCategory,
			},
		},
		{
			name:     "empty_stem",
			filename: ".txt",
			want: EpisodeMetadata{
				Podcast:         "Unknown Podcast",
				Guest:           "Unknown Guest",
				Episode:         "Unknown Episode",
				PrimaryCategory: DefaultCategory,
			},
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := MetadataFromFilename(tc.filename); got != tc.want {
				t.Fatalf("got=%+v want=%+v", got, tc.want)
			}
		})
	}
}

func TestResolveMetadata_HeaderWinsOverFilename(t *testing.T) {
	t.Parallel()

	content := "---\npodcast: Real Podcast\nepisode: Real Episode\nguest: Real Guest\n---\nbody\n"
	meta, _, state := ResolveMetadata(content, "other_show_someone_else_thing.txt")
	if state != HeaderPresent {
		t.Fatalf("state=%v", state)
	}
	if meta.Podcast != "Real Podcast" {
		t.Fatalf("meta=%+v", meta)
	}
}

func TestResolveMetadata_MalformedHeaderFallsBackToFilename(t *testing.T) {
	t.Parallel()

	content := "---\npodcast: Broken\nnever closed\n"
	meta, _, state := ResolveMetadata(content, "acq_pod_jane_doe_origins.txt")
	if state != HeaderMalformed {
		t.Fatalf("state=%v", state)
	}
	if meta.Podcast != "Acq Pod" || meta.Guest != "Jane Doe" || meta.Episode != "Origins" {
		t.Fatalf("meta=%+v", meta)
	}
}
