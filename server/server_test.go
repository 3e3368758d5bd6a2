package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/mostlymid/mostly-mid/pipeline"
	"github.com/mostlymid/mostly-mid/pipeline/fileutils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func writeDoc(t *testing.T, dir, name string, v any) {
	t.Helper()
	if err := fileutils.WriteJSONFileAtomic(filepath.Join(dir, name), v, true); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func newTestRouter(t *testing.T, cfg Config) *gin.Engine {
	t.Helper()
	return NewRouter(cfg, NopLogger())
}

func doGET(t *testing.T, r *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t, Config{CacheDir: t.TempDir()})
	w := doGET(t, r, "/api/health")
	if w.Code != http.StatusOK {
		t.Fatalf("code=%d", w.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["status"] != "ok" {
		t.Fatalf("body=%v", body)
	}
	if body["catalogPresent"] != false {
		t.Fatalf("body=%v", body)
	}
}

func TestEpisodes_MergesGenerationsAndNormalizesLegacy(t *testing.T) {
	t.Parallel()

	cache := t.TempDir()
	writeDoc(t, cache, "pod_show_jane_doe_scaling"+pipeline.GenerationHybrid.Suffix(), pipeline.HybridAnalysis{
		EpisodeMetadata: &pipeline.EpisodeMetadata{
			Podcast: "Pod Show", Episode: "Scaling", Guest: "Jane Doe",
			PrimaryCategory: pipeline.CategoryBuildAIProducts,
		},
		Scores:  pipeline.Scores{InsightDensity: 8, SignalToNoise: 6, Actionability: 7, ContrarianIndex: 5, Freshness: 4, HostQuality: 6},
		Summary: "hybrid summary",
	})
	writeDoc(t, cache, "acq_pod_john_smith_origins"+pipeline.GenerationCritical.Suffix(), pipeline.LegacyAnalysis{
		FreshnessScore: 7,
		InsightScore:   6,
		Summary:        "legacy summary",
		TopTakeaways:   []pipeline.Insight{{Rank: 1, Insight: "old gold"}},
	})

	r := newTestRouter(t, Config{CacheDir: cache})
	w := doGET(t, r, "/api/episodes")
	if w.Code != http.StatusOK {
		t.Fatalf("code=%d", w.Code)
	}

	var body struct {
		Episodes []Episode `json:"episodes"`
		Total    int       `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Total != 2 {
		t.Fatalf("total=%d", body.Total)
	}

	var legacy Episode
	for _, ep := range body.Episodes {
		if ep.Schema == pipeline.GenerationCritical {
			legacy = ep
		}
	}
	if legacy.ID != "acq_pod_john_smith_origins" {
		t.Fatalf("legacy=%+v", legacy)
	}
	// Filename-derived metadata and neutral placeholder dimensions.
	if legacy.Podcast != "Acq Pod" || legacy.Guest != "John Smith" {
		t.Fatalf("legacy=%+v", legacy)
	}
	if legacy.Scores.Actionability != pipeline.NeutralScore || legacy.Scores.Freshness != 7 {
		t.Fatalf("scores=%+v", legacy.Scores)
	}
	if legacy.Verdict.TLDR != "legacy summary" {
		t.Fatalf("verdict=%+v", legacy.Verdict)
	}
}

func TestEpisodes_CacheCopyWinsOverTranscriptsDir(t *testing.T) {
	t.Parallel()

	transcripts := t.TempDir()
	cache := t.TempDir()
	name := "pod_show_jane_doe_scaling" + pipeline.GenerationHybrid.Suffix()
	writeDoc(t, transcripts, name, pipeline.HybridAnalysis{Summary: "stale transcripts-dir copy"})
	writeDoc(t, cache, name, pipeline.HybridAnalysis{Summary: "cache copy"})

	r := newTestRouter(t, Config{TranscriptsDir: transcripts, CacheDir: cache})
	w := doGET(t, r, "/api/episodes/pod_show_jane_doe_scaling")
	if w.Code != http.StatusOK {
		t.Fatalf("code=%d body=%s", w.Code, w.Body.String())
	}

	var ep Episode
	if err := json.Unmarshal(w.Body.Bytes(), &ep); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if ep.Summary != "cache copy" {
		t.Fatalf("summary=%q", ep.Summary)
	}
}

func TestEpisodes_HybridWinsOverLegacyForSameID(t *testing.T) {
	t.Parallel()

	cache := t.TempDir()
	writeDoc(t, cache, "pod_show_jane_doe_x"+pipeline.GenerationCritical.Suffix(), pipeline.LegacyAnalysis{Summary: "legacy"})
	writeDoc(t, cache, "pod_show_jane_doe_x"+pipeline.GenerationHybrid.Suffix(), pipeline.HybridAnalysis{Summary: "hybrid"})

	r := newTestRouter(t, Config{CacheDir: cache})
	w := doGET(t, r, "/api/episodes/pod_show_jane_doe_x")
	if w.Code != http.StatusOK {
		t.Fatalf("code=%d", w.Code)
	}
	var ep Episode
	if err := json.Unmarshal(w.Body.Bytes(), &ep); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if ep.Schema != pipeline.GenerationHybrid || ep.Summary != "hybrid" {
		t.Fatalf("ep=%+v", ep)
	}
}

func TestEpisode_NotFound(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t, Config{CacheDir: t.TempDir()})
	w := doGET(t, r, "/api/episodes/nope")
	if w.Code != http.StatusNotFound {
		t.Fatalf("code=%d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["error"] == "" {
		t.Fatalf("body=%v", body)
	}
}

func TestPodcasts_Listing(t *testing.T) {
	t.Parallel()

	cache := t.TempDir()
	writeDoc(t, cache, "pod_show_jane_doe_scaling"+pipeline.GenerationHybrid.Suffix(), pipeline.HybridAnalysis{
		EpisodeMetadata: &pipeline.EpisodeMetadata{Podcast: "Pod Show", Episode: "Scaling", Guest: "Jane Doe"},
		Scores:          pipeline.Scores{InsightDensity: 8, Freshness: 4},
		Summary:         "summary text",
		Insights:        []pipeline.Insight{{Rank: 1, Insight: "the best one"}},
	})

	r := newTestRouter(t, Config{CacheDir: cache})
	w := doGET(t, r, "/api/podcasts")
	if w.Code != http.StatusOK {
		t.Fatalf("code=%d", w.Code)
	}

	var body struct {
		Podcasts []podcastEntry `json:"podcasts"`
		Total    int            `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Total != 1 {
		t.Fatalf("total=%d", body.Total)
	}
	entry := body.Podcasts[0]
	if entry.Insight != 8 || entry.Freshness != 4 || entry.TopInsight != "the best one" {
		t.Fatalf("entry=%+v", entry)
	}
}

func TestCatalog_ServedAndMissing(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	catalogPath := filepath.Join(dir, "productreps_insights.json")

	r := newTestRouter(t, Config{CacheDir: dir, CatalogPath: catalogPath})
	if w := doGET(t, r, "/api/catalog"); w.Code != http.StatusNotFound {
		t.Fatalf("code=%d", w.Code)
	}

	cat := pipeline.Catalog{Version: pipeline.CatalogVersion, TotalInsights: 0, Insights: []pipeline.InsightCard{}}
	if err := fileutils.WriteJSONFileAtomic(catalogPath, cat, true); err != nil {
		t.Fatalf("write: %v", err)
	}
	w := doGET(t, r, "/api/catalog")
	if w.Code != http.StatusOK {
		t.Fatalf("code=%d", w.Code)
	}
	var got pipeline.Catalog
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Version != pipeline.CatalogVersion {
		t.Fatalf("got=%+v", got)
	}
}

func TestEpisodes_MalformedDocumentSkipped(t *testing.T) {
	t.Parallel()

	cache := t.TempDir()
	if err := os.WriteFile(filepath.Join(cache, "broken_analysis_hybrid.json"), []byte("{nope"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	writeDoc(t, cache, "pod_show_jane_doe_ok"+pipeline.GenerationHybrid.Suffix(), pipeline.HybridAnalysis{Summary: "fine"})

	r := newTestRouter(t, Config{CacheDir: cache})
	w := doGET(t, r, "/api/episodes")
	if w.Code != http.StatusOK {
		t.Fatalf("code=%d", w.Code)
	}
	var body struct {
		Total int `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Total != 1 {
		t.Fatalf("total=%d", body.Total)
	}
}
