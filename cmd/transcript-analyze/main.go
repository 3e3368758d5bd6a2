// Command transcript-analyze runs the scoring model over pending podcast
// transcripts and caches one analysis document per transcript per schema.
// Already-analyzed transcripts are skipped unless -force is set; the cache
// file name carries the schema generation, so switching -schema never reads
// stale documents.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
	"golang.org/x/time/rate"

	"github.com/mostlymid/mostly-mid/pipeline"
	"github.com/mostlymid/mostly-mid/pipeline/fileutils"
	"github.com/mostlymid/mostly-mid/pipeline/provider"
)

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

	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		fmt.Fprintln(os.Stderr, "missing OPENAI_API_KEY (or pass -api-key)")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := os.MkdirAll(cfg.CacheDir, 0o755); err != nil {
		fmt.Fprintln(os.Stderr, fmt.Errorf("mkdir -cache: %w", err).Error())
		os.Exit(2)
	}

	ids, err := pipeline.ListTranscriptIDs(cfg.TranscriptsDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}
	if len(ids) == 0 {
		fmt.Fprintln(os.Stderr, "no .txt transcripts found in -transcripts")
		os.Exit(2)
	}

	client := openai.NewClient(option.WithAPIKey(apiKey))
	analyzer := openAIAnalyzer{
		client:      &client,
		model:       cfg.Model,
		maxChars:    cfg.MaxChars,
		temperature: cfg.Temperature,
		callTimeout: cfg.CallTimeout,
		limiter:     rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.CallsPerMinute)), 1),
	}
	cache := pipeline.Cache{Dir: cfg.CacheDir}
	gen := cfg.generation()

	start := time.Now()
	total := int64(len(ids))

	var analyzed, skipped int64
	if err := forEachTranscriptConcurrent(ctx, cfg.Concurrency, ids, func(ctx context.Context, id string) error {
		if cache.Has(id, gen) && !cfg.Force {
			atomic.AddInt64(&skipped, 1)
			return nil
		}
		if err := processTranscript(ctx, cfg, cache, analyzer, id); err != nil {
			return err
		}
		n := atomic.AddInt64(&analyzed, 1)
		fmt.Fprintf(os.Stderr, "progress transcript-analyze: %d/%d transcripts analyzed (last=%s elapsed=%s)\n",
			n, total, id, time.Since(start).Round(time.Second))
		return nil
	}); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	fmt.Fprintf(os.Stdout, "transcripts_analyzed=%d skipped=%d schema=%s cache_dir=%s\n",
		analyzed, skipped, cfg.Schema, cfg.CacheDir)
}

func processTranscript(ctx context.Context, cfg Config, cache pipeline.Cache, analyzer openAIAnalyzer, id string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	path := filepath.Join(cfg.TranscriptsDir, id+".txt")
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read transcript %s: %w", id, err)
	}

	meta, body, state := pipeline.ResolveMetadata(string(raw), id+".txt")
	if state == pipeline.HeaderMalformed {
		fmt.Fprintf(os.Stderr, "warn transcript-analyze: %s has a metadata header with no closing delimiter; using filename metadata\n", id)
	}

	now := time.Now().Format(time.RFC3339)

	if cfg.generation() == pipeline.GenerationCritical {
		doc, err := analyzer.AnalyzeCritical(ctx, body)
		if err != nil {
			// Legacy-mode failures cache a neutral placeholder so one bad
			// episode never blocks the batch.
			fmt.Fprintf(os.Stderr, "warn transcript-analyze: %s failed, caching neutral fallback: %v\n", id, err)
			doc = pipeline.FallbackLegacyAnalysis(err)
		}
		doc.AnalyzedAt = now
		doc.Model = cfg.Model
		doc.ScoringMode = "critical"
		return cache.PutLegacy(id, doc)
	}

	doc, err := analyzer.AnalyzeHybrid(ctx, meta, body)
	if err != nil {
		return fmt.Errorf("analyze %s: %w", id, err)
	}
	doc.EpisodeMetadata = &meta
	doc.AnalyzedAt = now
	doc.Model = cfg.Model
	doc.ScoringMode = "hybrid_critical"
	return cache.PutHybrid(id, doc)
}

type openAIAnalyzer struct {
	client      *openai.Client
	model       string
	maxChars    int
	temperature float64
	callTimeout time.Duration
	limiter     *rate.Limiter
}

// hybridResponse is the model-facing shape: the stamped bookkeeping fields
// (analyzed_at, model, scoring_mode, episode_metadata) are ours, not the
// model's, so they stay out of the schema.
type hybridResponse struct {
	Scores                  pipeline.Scores         `json:"scores"`
	Verdict                 pipeline.Verdict        `json:"verdict"`
	Insights                []pipeline.Insight      `json:"insights"`
	WhyTheseScores          pipeline.ScoreRationale `json:"why_these_scores"`
	Summary                 string                  `json:"summary"`
	Characteristics         []string                `json:"characteristics"`
	ObviousInsightsRejected []string                `json:"obvious_insights_rejected"`
}

type criticalResponse struct {
	FreshnessScore          float64            `json:"freshness_score"`
	FreshnessReasoning      string             `json:"freshness_reasoning"`
	InsightScore            float64            `json:"insight_score"`
	InsightReasoning        string             `json:"insight_reasoning"`
	TopTakeaways            []pipeline.Insight `json:"top_5_takeaways"`
	Summary                 string             `json:"summary"`
	Characteristics         []string           `json:"characteristics"`
	ObviousInsightsRejected []string           `json:"obvious_insights_rejected"`
}

var hybridSchema = provider.GenerateSchema[hybridResponse]()
var criticalSchema = provider.GenerateSchema[criticalResponse]()

func (a openAIAnalyzer) AnalyzeHybrid(ctx context.Context, meta pipeline.EpisodeMetadata, transcript string) (pipeline.HybridAnalysis, error) {
	if a.client == nil {
		return pipeline.HybridAnalysis{}, errors.New("openAIAnalyzer: client is nil")
	}
	if a.model == "" {
		return pipeline.HybridAnalysis{}, errors.New("openAIAnalyzer: model is empty")
	}

	input := buildAnalysisInput(&meta, transcript, a.maxChars)
	format := responses.ResponseFormatTextConfigUnionParam{
		OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
			Name:        "PodcastAnalysis",
			Schema:      hybridSchema,
			Strict:      openai.Bool(true),
			Description: openai.String("Podcast analysis JSON"),
			Type:        "json_schema",
		},
	}

	var out hybridResponse
	if err := a.call(ctx, hybridAnalysisPrompt, input, format, 9000, 14000, &out); err != nil {
		return pipeline.HybridAnalysis{}, err
	}

	return pipeline.HybridAnalysis{
		Scores:                  out.Scores.WithRecomputedOverall(),
		Verdict:                 out.Verdict,
		Insights:                out.Insights,
		WhyTheseScores:          &out.WhyTheseScores,
		Summary:                 out.Summary,
		Characteristics:         out.Characteristics,
		ObviousInsightsRejected: out.ObviousInsightsRejected,
	}, nil
}

func (a openAIAnalyzer) AnalyzeCritical(ctx context.Context, transcript string) (pipeline.LegacyAnalysis, error) {
	if a.client == nil {
		return pipeline.LegacyAnalysis{}, errors.New("openAIAnalyzer: client is nil")
	}
	if a.model == "" {
		return pipeline.LegacyAnalysis{}, errors.New("openAIAnalyzer: model is empty")
	}

	input := buildAnalysisInput(nil, transcript, a.maxChars)
	format := responses.ResponseFormatTextConfigUnionParam{
		OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
			Name:        "PodcastCriticalAnalysis",
			Schema:      criticalSchema,
			Strict:      openai.Bool(true),
			Description: openai.String("Legacy podcast analysis JSON"),
			Type:        "json_schema",
		},
	}

	var out criticalResponse
	if err := a.call(ctx, criticalAnalysisPrompt, input, format, 3000, 4500, &out); err != nil {
		return pipeline.LegacyAnalysis{}, err
	}

	return pipeline.LegacyAnalysis{
		FreshnessScore:          out.FreshnessScore,
		FreshnessReasoning:      out.FreshnessReasoning,
		InsightScore:            out.InsightScore,
		InsightReasoning:        out.InsightReasoning,
		TopTakeaways:            out.TopTakeaways,
		Summary:                 out.Summary,
		Characteristics:         out.Characteristics,
		ObviousInsightsRejected: out.ObviousInsightsRejected,
	}, nil
}

func (a openAIAnalyzer) call(ctx context.Context, prompt, input string, format responses.ResponseFormatTextConfigUnionParam, maxOut, retryMaxOut int64, v any) error {
	var lastOut string
	for attempt := 0; attempt < 2; attempt++ {
		instructions := prompt
		tokens := maxOut
		if attempt == 1 {
			// Second attempt: more output room, and explicit permission to
			// shorten lists rather than truncate the JSON.
			tokens = retryMaxOut
			instructions = prompt + "\n\nIMPORTANT: Ensure the JSON is complete and valid. If needed, shorten the insight list and rationale text to fit."
		}

		if a.limiter != nil {
			if err := a.limiter.Wait(ctx); err != nil {
				return err
			}
		}

		out, err := a.callOnce(ctx, instructions, input, format, tokens)
		if err != nil {
			return err
		}

		lastOut = out
		if err := provider.DecodeModelJSON(lastOut, v); err != nil {
			if attempt == 0 && provider.IsRecoverableJSONError(err) {
				continue
			}
			return fmt.Errorf("unmarshal analysis: %w (model_output_prefix=%q)", err, fileutils.Truncate(lastOut, 500))
		}
		return nil
	}
	return fmt.Errorf("analysis output never decoded (model_output_prefix=%q)", fileutils.Truncate(lastOut, 500))
}

func (a openAIAnalyzer) callOnce(ctx context.Context, instructions, input string, format responses.ResponseFormatTextConfigUnionParam, maxOut int64) (string, error) {
	if a.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.callTimeout)
		defer cancel()
	}

	params := responses.ResponseNewParams{
		Model:           a.model,
		MaxOutputTokens: openai.Int(maxOut),
		Temperature:     openai.Float(a.temperature),
		Instructions:    openai.String(instructions),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: []responses.ResponseInputItemUnionParam{
				responses.ResponseInputItemParamOfMessage(input, responses.EasyInputMessageRoleUser),
			},
		},
		Text: responses.ResponseTextConfigParam{
			Format: format,
		},
	}

	resp, err := provider.CallWithRetry(ctx, a.client, params)
	if err != nil {
		return "", err
	}
	return resp.OutputText(), nil
}

// buildAnalysisInput assembles the per-call user message: optional episode
// context, then the transcript cut at maxChars so one long episode cannot
// blow the context window.
func buildAnalysisInput(meta *pipeline.EpisodeMetadata, transcript string, maxChars int) string {
	var b []byte
	if meta != nil {
		b = append(b, "EPISODE CONTEXT:\n"...)
		b = append(b, fmt.Sprintf("podcast: %s\nepisode: %s\nguest: %s\nprimary_category: %s\n",
			meta.Podcast, meta.Episode, meta.Guest, meta.PrimaryCategory)...)
		b = append(b, '\n')
	}
	b = append(b, "TRANSCRIPT TO ANALYZE:\n"...)
	b = append(b, fileutils.Truncate(transcript, maxChars)...)
	return string(b)
}

func forEachTranscriptConcurrent(ctx context.Context, concurrency int, ids []string, fn func(context.Context, string) error) error {
	if concurrency <= 0 {
		concurrency = 1
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sem := make(chan struct{}, concurrency)
	errCh := make(chan error, len(ids))

	var wg sync.WaitGroup
	for _, id := range ids {
		id := id
		wg.Add(1)
		go func() {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return
			}
			defer func() { <-sem }()

			if err := fn(ctx, id); err != nil {
				errCh <- err
				cancel()
				return
			}
		}()
	}

	wg.Wait()
	close(errCh)

	for err := range errCh {
		if err != nil {
			return err
		}
	}
	if ctx.Err() != nil && !errors.Is(ctx.Err(), context.Canceled) {
		return ctx.Err()
	}
	return nil
}
