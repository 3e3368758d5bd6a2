package server

import (
	"github.com/mostlymid/mostly-mid/pipeline"
)

// Episode is the read-model one analysis document projects to. Legacy
// documents are normalized into the same shape: neutral placeholder scores
// for the dimensions that generation never captured, summary standing in for
// the verdict.
type Episode struct {
	ID              string                   `json:"id"`
	Schema          pipeline.Generation      `json:"schema"`
	Podcast         string                   `json:"podcast"`
	EpisodeTitle    string                   `json:"episodeTitle"`
	Guest           string                   `json:"guest"`
	Category        pipeline.Category        `json:"category"`
	Scores          pipeline.Scores          `json:"scores"`
	Verdict         pipeline.Verdict         `json:"verdict"`
	Summary         string                   `json:"summary"`
	Characteristics []string                 `json:"characteristics"`
	Insights        []pipeline.Insight       `json:"insights"`
	AnalyzedAt      string                   `json:"analyzedAt,omitempty"`
	Model           string                   `json:"model,omitempty"`
	SourceFile      string                   `json:"sourceFile"`
	WhyTheseScores  *pipeline.ScoreRationale `json:"whyTheseScores,omitempty"`
}

func episodeFromDocument(doc pipeline.Analysis, id, sourceFile, transcriptsDir string) Episode {
	meta := pipeline.ResolveDocumentMetadata(doc, id, sourceFile, transcriptsDir)

	ep := Episode{
		ID:              id,
		Schema:          doc.Generation(),
		Podcast:         meta.Podcast,
		EpisodeTitle:    meta.Episode,
		Guest:           meta.Guest,
		Category:        pipeline.NormalizeCategory(meta.PrimaryCategory, pipeline.DefaultCategory),
		Scores:          doc.Dimensions(),
		Verdict:         doc.VerdictBlock(),
		Summary:         doc.EpisodeSummary(),
		Characteristics: doc.Tags(),
		Insights:        doc.InsightRecords(),
		SourceFile:      sourceFile,
	}

	switch d := doc.(type) {
	case *pipeline.HybridAnalysis:
		ep.AnalyzedAt = d.AnalyzedAt
		ep.Model = d.Model
		ep.WhyTheseScores = d.WhyTheseScores
	case *pipeline.LegacyAnalysis:
		ep.AnalyzedAt = d.AnalyzedAt
		ep.Model = d.Model
	}
	return ep
}

// loadEpisodes reads every analysis document under the configured dirs and
// projects each to an Episode. When the same transcript has documents of both
// generations, the hybrid one wins. Malformed documents are logged and
// skipped.
func (s *Server) loadEpisodes() ([]Episode, error) {
	paths, err := pipeline.CollectAnalysisFiles(s.cfg.TranscriptsDir, s.cfg.CacheDir)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]Episode)
	var order []string
	for _, path := range paths {
		doc, id, err := pipeline.LoadAnalysisFile(path)
		if err != nil {
			s.log.Warn("skipping analysis document", "path", path, "err", err)
			continue
		}
		ep := episodeFromDocument(doc, id, pathBase(path), s.cfg.TranscriptsDir)

		prev, seen := byID[id]
		if !seen {
			order = append(order, id)
			byID[id] = ep
			continue
		}
		if prev.Schema == pipeline.GenerationCritical && ep.Schema == pipeline.GenerationHybrid {
			byID[id] = ep
		}
	}

	episodes := make([]Episode, 0, len(order))
	for _, id := range order {
		episodes = append(episodes, byID[id])
	}
	return episodes, nil
}
