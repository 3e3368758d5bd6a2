// Package pipeline holds the shared data model and transformations for the
// Mostly Mid transcript pipeline: transcript metadata resolution, analysis
// document shapes across both schema generations, the analysis cache, and
// the insight catalog build.
package pipeline

// Category is the fixed four-way classification used across the pipeline.
type Category string

const (
	CategoryLearnFromLegends Category = "learn_from_legends"
	CategoryBuildAIProducts  Category = "build_ai_products"
	CategorySpeakAIFluently  Category = "speak_ai_fluently"
	CategoryAISuperpowers    Category = "ai_superpowers"

	// DefaultCategory is assigned whenever a category is missing or not in
	// the enum.
	DefaultCategory = CategoryLearnFromLegends
)

// Categories returns the full enum in display order.
func Categories() []Category {
	return []Category{
		CategoryLearnFromLegends,
		CategoryBuildAIProducts,
		CategorySpeakAIFluently,
		CategoryAISuperpowers,
	}
}

// ValidCategory reports whether c is one of the four known categories.
func ValidCategory(c Category) bool {
	switch c {
	case CategoryLearnFromLegends, CategoryBuildAIProducts, CategorySpeakAIFluently, CategoryAISuperpowers:
		return true
	}
	return false
}

// NormalizeCategory maps anything outside the enum to fallback.
func NormalizeCategory(c Category, fallback Category) Category {
	if ValidCategory(c) {
		return c
	}
	if ValidCategory(fallback) {
		return fallback
	}
	return DefaultCategory
}

// Obviousness tiers assigned by the model to each insight.
const (
	ObviousnessTrulyNonObvious      = "truly_non_obvious"
	ObviousnessModeratelyNonObvious = "moderately_non_obvious"
	ObviousnessBestAvailable        = "best_available"
)

// Generation identifies one of the two historical analysis document shapes.
type Generation string

const (
	// GenerationHybrid is the current shape: six weighted dimensions and a
	// 15-20 item insight list.
	GenerationHybrid Generation = "hybrid"

	// GenerationCritical is the legacy shape: flat freshness/insight scores
	// and exactly five takeaways.
	GenerationCritical Generation = "critical"
)

// Suffix returns the cache filename suffix for this generation. The schema
// version is encoded in the filename, so switching generations naturally
// bypasses stale cache entries.
func (g Generation) Suffix() string {
	switch g {
	case GenerationCritical:
		return "_analysis_critical.json"
	default:
		return "_analysis_hybrid.json"
	}
}

// EpisodeMetadata is the canonical identity of one episode.
type EpisodeMetadata struct {
	Podcast         string   `json:"podcast"`
	Episode         string   `json:"episode"`
	Guest           string   `json:"guest"`
	PrimaryCategory Category `json:"primary_category"`
	Date            string   `json:"date,omitempty"`
	URL             string   `json:"url,omitempty"`
}

// Scores are the six weighted dimensions plus the derived overall. Overall is
// always recomputed locally; the model's own arithmetic is never trusted.
type Scores struct {
	InsightDensity  float64 `json:"insight_density"`
	SignalToNoise   float64 `json:"signal_to_noise"`
	Actionability   float64 `json:"actionability"`
	ContrarianIndex float64 `json:"contrarian_index"`
	Freshness       float64 `json:"freshness"`
	HostQuality     float64 `json:"host_quality"`
	Overall         float64 `json:"overall"`
}

// ScoreRationale carries the model's per-dimension justification text.
type ScoreRationale struct {
	InsightDensity  string `json:"insight_density"`
	SignalToNoise   string `json:"signal_to_noise"`
	Actionability   string `json:"actionability"`
	ContrarianIndex string `json:"contrarian_index"`
	Freshness       string `json:"freshness"`
	HostQuality     string `json:"host_quality"`
}

// Verdict is the listen-or-skip summary block.
type Verdict struct {
	TLDR      string `json:"tldr"`
	BestFor   string `json:"best_for"`
	SkipIf    string `json:"skip_if"`
	WorthIt   bool   `json:"worth_it"`
	BestQuote string `json:"best_quote"`
}

// Insight is one extracted insight. The hybrid generation fills the category,
// spicy rating, actionability, and nugget fields; legacy takeaways carry only
// the core rank/insight/timestamp/why/obviousness set. Enrichment fields are
// present or absent depending on nugget_type.
type Insight struct {
	Rank             int    `json:"rank"`
	Insight          string `json:"insight"`
	Timestamp        string `json:"timestamp"`
	WhyValuable      string `json:"why_valuable"`
	ObviousnessLevel string `json:"obviousness_level"`

	Category      string `json:"category,omitempty"`
	SpicyRating   int    `json:"spicy_rating,omitempty"`
	Actionability string `json:"actionability,omitempty"`
	NuggetType    string `json:"nugget_type,omitempty"`

	Explanation      string `json:"explanation,omitempty"`
	Analogy          string `json:"analogy,omitempty"`
	RealWorldExample string `json:"real_world_example,omitempty"`
	ProTip           string `json:"pro_tip,omitempty"`
	Evidence         string `json:"evidence,omitempty"`
	MemorableStat    string `json:"memorable_stat,omitempty"`
	LearningHook     string `json:"learning_hook,omitempty"`
}

// HybridAnalysis is the current-generation analysis document.
type HybridAnalysis struct {
	EpisodeMetadata *EpisodeMetadata `json:"episode_metadata,omitempty"`
	Scores          Scores           `json:"scores"`
	Verdict         Verdict          `json:"verdict"`
	Insights        []Insight        `json:"insights"`
	WhyTheseScores  *ScoreRationale  `json:"why_these_scores,omitempty"`
	Summary         string           `json:"summary"`
	Characteristics []string         `json:"characteristics,omitempty"`

	// ObviousInsightsRejected is the audit trail of insights the model found
	// but discarded as too common.
	ObviousInsightsRejected []string `json:"obvious_insights_rejected,omitempty"`

	AnalyzedAt  string `json:"analyzed_at,omitempty"`
	Model       string `json:"model,omitempty"`
	ScoringMode string `json:"scoring_mode,omitempty"`
}

// LegacyAnalysis is the deprecated first-generation document: flat freshness
// and insight scores plus exactly five takeaways. Kept as a compatibility
// shim; the hybrid shape is ground truth for everything new.
type LegacyAnalysis struct {
	FreshnessScore     float64 `json:"freshness_score"`
	FreshnessReasoning string  `json:"freshness_reasoning,omitempty"`
	InsightScore       float64 `json:"insight_score"`
	InsightReasoning   string  `json:"insight_reasoning,omitempty"`

	TopTakeaways []Insight `json:"top_5_takeaways"`

	Summary                 string   `json:"summary"`
	Characteristics         []string `json:"characteristics,omitempty"`
	ObviousInsightsRejected []string `json:"obvious_insights_rejected,omitempty"`

	AnalyzedAt  string `json:"analyzed_at,omitempty"`
	Model       string `json:"model,omitempty"`
	ScoringMode string `json:"scoring_mode,omitempty"`

	// Error marks the fixed neutral-score fallback document produced when a
	// legacy analysis call failed.
	Error string `json:"error,omitempty"`
}

// Analysis is the generation-independent view of an analysis document. Both
// variants implement it so downstream code never branches on key presence.
type Analysis interface {
	Generation() Generation

	// InsightRecords returns the ordered insight list regardless of the
	// underlying key (insights vs top_5_takeaways).
	InsightRecords() []Insight

	// Dimensions returns six-dimension scores with overall recomputed.
	// Legacy documents are normalized with fixed neutral placeholders for
	// dimensions that shape never captured.
	Dimensions() Scores

	EpisodeMeta() *EpisodeMetadata
	VerdictBlock() Verdict
	EpisodeSummary() string
	Tags() []string
}

func (a *HybridAnalysis) Generation() Generation { return GenerationHybrid }

func (a *HybridAnalysis) InsightRecords() []Insight { return a.Insights }

func (a *HybridAnalysis) Dimensions() Scores { return a.Scores.WithRecomputedOverall() }

func (a *HybridAnalysis) EpisodeMeta() *EpisodeMetadata { return a.EpisodeMetadata }

func (a *HybridAnalysis) VerdictBlock() Verdict { return a.Verdict }

func (a *HybridAnalysis) EpisodeSummary() string { return a.Summary }

func (a *HybridAnalysis) Tags() []string { return a.Characteristics }

func (a *LegacyAnalysis) Generation() Generation { return GenerationCritical }

func (a *LegacyAnalysis) InsightRecords() []Insight { return a.TopTakeaways }

func (a *LegacyAnalysis) Dimensions() Scores {
	s := Scores{
		InsightDensity:  a.InsightScore,
		SignalToNoise:   NeutralScore,
		Actionability:   NeutralScore,
		ContrarianIndex: NeutralScore,
		Freshness:       a.FreshnessScore,
		HostQuality:     NeutralScore,
	}
	return s.WithRecomputedOverall()
}

// EpisodeMeta returns nil: the legacy shape never embedded episode metadata,
// so callers fall back to filename heuristics.
func (a *LegacyAnalysis) EpisodeMeta() *EpisodeMetadata { return nil }

func (a *LegacyAnalysis) VerdictBlock() Verdict { return Verdict{TLDR: a.Summary} }

func (a *LegacyAnalysis) EpisodeSummary() string { return a.Summary }

func (a *LegacyAnalysis) Tags() []string { return a.Characteristics }

// FallbackLegacyAnalysis is the neutral-score placeholder cached when a
// legacy analysis call fails, so a bad episode does not block the batch.
func FallbackLegacyAnalysis(err error) LegacyAnalysis {
	msg := "analysis failed"
	if err != nil {
		msg = err.Error()
	}
	return LegacyAnalysis{
		FreshnessScore:     NeutralScore,
		FreshnessReasoning: "Analysis failed",
		InsightScore:       NeutralScore,
		InsightReasoning:   "Analysis failed",
		TopTakeaways:       []Insight{},
		Summary:            "Analysis could not be completed.",
		Characteristics:    []string{"error"},
		ScoringMode:        "critical",
		Error:              msg,
	}
}
