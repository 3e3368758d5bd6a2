package pipeline

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CatalogVersion marks the catalog file format.
const CatalogVersion = "2.0"

// CardScores is the document-level score subset denormalized onto each card.
type CardScores struct {
	Freshness      float64 `json:"freshness"`
	InsightDensity float64 `json:"insightDensity"`
	Contrarian     float64 `json:"contrarian"`
	Actionability  float64 `json:"actionability"`
}

// CardVerdict is the episode verdict denormalized onto each card.
type CardVerdict struct {
	BestQuote string `json:"bestQuote"`
	BestFor   string `json:"bestFor"`
	SkipIf    string `json:"skipIf"`
	TLDR      string `json:"tldr"`
}

// InsightCard is one catalog entry: a single insight made self-contained for
// the consuming client by attaching its episode-level context. The id is a
// fresh UUID on every aggregation run, never derived from content, and each
// card is traceable back to its source analysis file.
type InsightCard struct {
	ID           string `json:"id"`
	PodcastTitle string `json:"podcastTitle"`
	EpisodeTitle string `json:"episodeTitle"`
	Guest        string `json:"guest"`

	Insight          string `json:"insight"`
	Timestamp        string `json:"timestamp"`
	WhyValuable      string `json:"whyValuable"`
	ObviousnessLevel string `json:"obviousnessLevel"`
	SpicyRating      int    `json:"spicyRating"`
	Rank             int    `json:"rank"`

	Category        Category `json:"category"`
	PodcastSourceID string   `json:"podcastSourceId"`

	SourceFile      string      `json:"sourceFile"`
	Characteristics []string    `json:"characteristics"`
	Scores          CardScores  `json:"scores"`
	Verdict         CardVerdict `json:"verdict"`

	ActionabilityType string `json:"actionabilityType"`

	Explanation      string `json:"explanation,omitempty"`
	Analogy          string `json:"analogy,omitempty"`
	RealWorldExample string `json:"realWorldExample,omitempty"`
	ProTip           string `json:"proTip,omitempty"`
	Evidence         string `json:"evidence,omitempty"`
	MemorableStat    string `json:"memorableStat,omitempty"`
	LearningHook     string `json:"learningHook,omitempty"`

	CreatedAt string `json:"createdAt"`
	IsPinned  bool   `json:"isPinned"`
	IsSaved   bool   `json:"isSaved"`
}

// CatalogMetadata holds the index sets actually present in the catalog, not
// the full enums.
type CatalogMetadata struct {
	Sources         int      `json:"sources"`
	Categories      []string `json:"categories"`
	Characteristics []string `json:"characteristics"`
	Guests          []string `json:"guests"`
	Podcasts        []string `json:"podcasts"`
}

// Catalog is the merged insight collection served to clients. It is rebuilt
// wholesale on each aggregation run; given identical inputs the insight
// content is stable and only ids and timestamps vary.
type Catalog struct {
	Version       string          `json:"version"`
	GeneratedAt   string          `json:"generatedAt"`
	TotalInsights int             `json:"totalInsights"`
	Insights      []InsightCard   `json:"insights"`
	Metadata      CatalogMetadata `json:"metadata"`
}

// CollectAnalysisFiles walks dirs for analysis documents of either schema
// generation. When the same filename appears in more than one dir, the last
// dir wins, so callers list lower-priority dirs first. Results are sorted by
// base name for stable iteration.
func CollectAnalysisFiles(dirs ...string) ([]string, error) {
	byName := make(map[string]string)
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			name := strings.ToLower(d.Name())
			if strings.HasSuffix(name, GenerationHybrid.Suffix()) || strings.HasSuffix(name, GenerationCritical.Suffix()) {
				byName[d.Name()] = path
			}
			return nil
		})
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("walk analysis dir %s: %w", dir, err)
		}
	}

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	paths := make([]string, 0, len(names))
	for _, name := range names {
		paths = append(paths, byName[name])
	}
	return paths, nil
}

// AnalysisIDFromFilename strips the generation suffix from an analysis
// filename, returning the transcript id and its generation.
func AnalysisIDFromFilename(name string) (string, Generation, bool) {
	base := filepath.Base(name)
	if strings.HasSuffix(base, GenerationHybrid.Suffix()) {
		return strings.TrimSuffix(base, GenerationHybrid.Suffix()), GenerationHybrid, true
	}
	if strings.HasSuffix(base, GenerationCritical.Suffix()) {
		return strings.TrimSuffix(base, GenerationCritical.Suffix()), GenerationCritical, true
	}
	return "", "", false
}

// LoadAnalysisFile reads one analysis document, picking the variant by the
// filename's generation suffix.
func LoadAnalysisFile(path string) (Analysis, string, error) {
	id, gen, ok := AnalysisIDFromFilename(path)
	if !ok {
		return nil, "", fmt.Errorf("not an analysis file: %s", path)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read analysis %s: %w", path, err)
	}

	switch gen {
	case GenerationCritical:
		var doc LegacyAnalysis
		if err := json.Unmarshal(b, &doc); err != nil {
			return nil, "", fmt.Errorf("unmarshal legacy analysis %s: %w", path, err)
		}
		return &doc, id, nil
	default:
		var doc HybridAnalysis
		if err := json.Unmarshal(b, &doc); err != nil {
			return nil, "", fmt.Errorf("unmarshal hybrid analysis %s: %w", path, err)
		}
		return &doc, id, nil
	}
}

// ResolveDocumentMetadata picks episode metadata for an analysis document:
// the embedded block when present, else the matching transcript's header
// under transcriptsDir, else the filename heuristic.
func ResolveDocumentMetadata(doc Analysis, id, sourceFile, transcriptsDir string) EpisodeMetadata {
	if meta := doc.EpisodeMeta(); meta != nil {
		return *meta
	}
	if transcriptsDir != "" {
		if b, err := os.ReadFile(filepath.Join(transcriptsDir, id+".txt")); err == nil {
			if meta, _, state := ParseTranscript(string(b)); state == HeaderPresent {
				return meta
			}
		}
	}
	return MetadataFromFilename(sourceFile)
}

// BuildOptions lets tests pin the clock and id source; zero values use the
// real ones.
type BuildOptions struct {
	// TranscriptsDir, when set, lets metadata resolution consult the original
	// transcript header for documents without an embedded metadata block.
	TranscriptsDir string

	Now   func() time.Time
	NewID func() string

	// Logf receives per-document skip diagnostics. Nil discards them.
	Logf func(format string, args ...any)
}

// BuildCatalog aggregates analysis documents of both generations into one
// catalog. A malformed document is logged and skipped; it never aborts the
// run for the remaining documents.
func BuildCatalog(paths []string, opts BuildOptions) Catalog {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	newID := opts.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	logf := opts.Logf
	if logf == nil {
		logf = func(string, ...any) {}
	}

	var (
		cards   []InsightCard
		sources int
	)
	for _, path := range paths {
		doc, id, err := LoadAnalysisFile(path)
		if err != nil {
			logf("skipping %s: %v", path, err)
			continue
		}
		sources++
		meta := ResolveDocumentMetadata(doc, id, filepath.Base(path), opts.TranscriptsDir)
		cards = append(cards, cardsFromDocument(doc, meta, filepath.Base(path), now, newID)...)
	}

	return Catalog{
		Version:       CatalogVersion,
		GeneratedAt:   now().Format(time.RFC3339),
		TotalInsights: len(cards),
		Insights:      cards,
		Metadata:      buildIndexSets(cards, sources),
	}
}

func cardsFromDocument(doc Analysis, meta EpisodeMetadata, sourceFile string, now func() time.Time, newID func() string) []InsightCard {
	primary := NormalizeCategory(meta.PrimaryCategory, DefaultCategory)

	dims := doc.Dimensions()
	verdict := doc.VerdictBlock()
	tags := dedupeStrings(doc.Tags())
	createdAt := now().Format(time.RFC3339)

	insights := doc.InsightRecords()
	cards := make([]InsightCard, 0, len(insights))
	for i, in := range insights {
		rank := in.Rank
		if rank == 0 {
			rank = i + 1
		}

		actionability := in.Actionability
		if actionability == "" {
			actionability = "strategic"
		}

		cards = append(cards, InsightCard{
			ID:           newID(),
			PodcastTitle: meta.Podcast,
			EpisodeTitle: meta.Episode,
			Guest:        meta.Guest,

			Insight:          in.Insight,
			Timestamp:        in.Timestamp,
			WhyValuable:      in.WhyValuable,
			ObviousnessLevel: in.ObviousnessLevel,
			SpicyRating:      ResolveSpicyRating(in),
			Rank:             rank,

			Category:        NormalizeCategory(Category(in.Category), primary),
			PodcastSourceID: meta.Podcast,

			SourceFile:      sourceFile,
			Characteristics: tags,
			Scores: CardScores{
				Freshness:      dims.Freshness,
				InsightDensity: dims.InsightDensity,
				Contrarian:     dims.ContrarianIndex,
				Actionability:  dims.Actionability,
			},
			Verdict: CardVerdict{
				BestQuote: verdict.BestQuote,
				BestFor:   verdict.BestFor,
				SkipIf:    verdict.SkipIf,
				TLDR:      verdict.TLDR,
			},

			ActionabilityType: actionability,

			Explanation:      in.Explanation,
			Analogy:          in.Analogy,
			RealWorldExample: in.RealWorldExample,
			ProTip:           in.ProTip,
			Evidence:         in.Evidence,
			MemorableStat:    in.MemorableStat,
			LearningHook:     in.LearningHook,

			CreatedAt: createdAt,
		})
	}
	return cards
}

func buildIndexSets(cards []InsightCard, sources int) CatalogMetadata {
	categories := make(map[string]struct{})
	characteristics := make(map[string]struct{})
	guests := make(map[string]struct{})
	podcasts := make(map[string]struct{})

	for _, c := range cards {
		categories[string(c.Category)] = struct{}{}
		guests[c.Guest] = struct{}{}
		podcasts[c.PodcastTitle] = struct{}{}
		for _, tag := range c.Characteristics {
			characteristics[tag] = struct{}{}
		}
	}

	return CatalogMetadata{
		Sources:         sources,
		Categories:      sortedKeys(categories),
		Characteristics: sortedKeys(characteristics),
		Guests:          sortedKeys(guests),
		Podcasts:        sortedKeys(podcasts),
	}
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func dedupeStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		key := strings.ToLower(s)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}

// LoadCatalog reads a previously written catalog file.
func LoadCatalog(path string) (Catalog, error) {
	var cat Catalog
	b, err := os.ReadFile(path)
	if err != nil {
		return cat, fmt.Errorf("read catalog %s: %w", path, err)
	}
	if err := json.Unmarshal(b, &cat); err != nil {
		return cat, fmt.Errorf("unmarshal catalog %s: %w", path, err)
	}
	return cat, nil
}
