// Package server exposes the analyzed episodes and the insight catalog over a
// read-only HTTP API. It owns no state: every request reads the analysis
// files and catalog from disk, so a rerun of the batch tools is visible
// without a restart.
package server

import (
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/mostlymid/mostly-mid/pipeline"
	"github.com/mostlymid/mostly-mid/pipeline/fileutils"
)

type Config struct {
	// TranscriptsDir is also scanned for analysis documents; CacheDir wins on
	// duplicate filenames.
	TranscriptsDir string
	CacheDir       string
	CatalogPath    string

	// StaticDir holds index.html and assets. Empty disables static serving.
	StaticDir string
}

type Server struct {
	cfg Config
	log *Logger
}

// NewRouter wires the read-only API. The gin mode (release vs debug) is the
// caller's concern.
func NewRouter(cfg Config, log *Logger) *gin.Engine {
	if log == nil {
		log = NopLogger()
	}
	s := &Server{cfg: cfg, log: log}

	r := gin.New()
	r.Use(gin.Recovery())

	api := r.Group("/api")
	{
		api.GET("/health", s.handleHealth)
		api.GET("/episodes", s.handleEpisodes)
		api.GET("/episodes/:id", s.handleEpisode)
		api.GET("/podcasts", s.handlePodcasts)
		api.GET("/catalog", s.handleCatalog)
	}

	if cfg.StaticDir != "" {
		r.StaticFile("/", filepath.Join(cfg.StaticDir, "index.html"))
		r.Static("/static", cfg.StaticDir)
	}

	return r
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":         "ok",
		"catalogPresent": fileutils.FileExists(s.cfg.CatalogPath),
	})
}

func (s *Server) handleEpisodes(c *gin.Context) {
	episodes, err := s.loadEpisodes()
	if err != nil {
		s.log.Error("load episodes", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load episodes"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"episodes": episodes,
		"total":    len(episodes),
	})
}

func (s *Server) handleEpisode(c *gin.Context) {
	id := c.Param("id")
	episodes, err := s.loadEpisodes()
	if err != nil {
		s.log.Error("load episodes", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load episodes"})
		return
	}
	for _, ep := range episodes {
		if ep.ID == id {
			c.JSON(http.StatusOK, ep)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "episode not found"})
}

// podcastEntry is the compact listing the podcast index page renders: one row
// per episode with the two headline scores and the strongest insight.
type podcastEntry struct {
	ID         string            `json:"id"`
	Podcast    string            `json:"podcast"`
	Episode    string            `json:"episode"`
	Guest      string            `json:"guest"`
	Category   pipeline.Category `json:"category"`
	Freshness  float64           `json:"freshness"`
	Insight    float64           `json:"insight"`
	Overall    float64           `json:"overall"`
	Summary    string            `json:"summary"`
	TopInsight string            `json:"topInsight,omitempty"`
}

func (s *Server) handlePodcasts(c *gin.Context) {
	episodes, err := s.loadEpisodes()
	if err != nil {
		s.log.Error("load episodes", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load episodes"})
		return
	}

	entries := make([]podcastEntry, 0, len(episodes))
	for _, ep := range episodes {
		entry := podcastEntry{
			ID:        ep.ID,
			Podcast:   ep.Podcast,
			Episode:   ep.EpisodeTitle,
			Guest:     ep.Guest,
			Category:  ep.Category,
			Freshness: ep.Scores.Freshness,
			Insight:   ep.Scores.InsightDensity,
			Overall:   ep.Scores.Overall,
			Summary:   ep.Summary,
		}
		if len(ep.Insights) > 0 {
			entry.TopInsight = ep.Insights[0].Insight
		}
		entries = append(entries, entry)
	}
	c.JSON(http.StatusOK, gin.H{
		"podcasts": entries,
		"total":    len(entries),
	})
}

func (s *Server) handleCatalog(c *gin.Context) {
	catalog, err := pipeline.LoadCatalog(s.cfg.CatalogPath)
	if err != nil {
		if !fileutils.FileExists(s.cfg.CatalogPath) {
			c.JSON(http.StatusNotFound, gin.H{"error": "catalog not built yet"})
			return
		}
		s.log.Error("load catalog", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load catalog"})
		return
	}
	c.JSON(http.StatusOK, catalog)
}

func pathBase(path string) string {
	return filepath.Base(path)
}
