package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mostlymid/mostly-mid/pipeline/fileutils"
)

// Slugify converts free text to a safe lowercase filename slug.
func Slugify(text string) string {
	slug := strings.ToLower(text)
	var b strings.Builder
	b.Grow(len(slug))
	for _, r := range slug {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_' || r == '.' || r == ',' || r == ':':
			b.WriteByte('_')
		}
	}
	slug = b.String()
	for strings.Contains(slug, "__") {
		slug = strings.ReplaceAll(slug, "__", "_")
	}
	return strings.Trim(slug, "_")
}

// maxEpisodeSlugLen caps the episode part of generated filenames.
const maxEpisodeSlugLen = 30

// TranscriptBaseName returns the natural filename for a transcript, without
// any collision counter.
func TranscriptBaseName(guest, episode string) string {
	guestSlug := Slugify(guest)
	episodeSlug := Slugify(episode)
	if len(episodeSlug) > maxEpisodeSlugLen {
		episodeSlug = strings.Trim(episodeSlug[:maxEpisodeSlugLen], "_")
	}
	return guestSlug + "_" + episodeSlug
}

// TranscriptPath returns a free path for a new transcript derived from guest
// and episode, appending a collision counter when the natural name is taken.
func TranscriptPath(dir, guest, episode string) string {
	base := TranscriptBaseName(guest, episode)
	path := filepath.Join(dir, base+".txt")
	for counter := 1; fileutils.FileExists(path); counter++ {
		path = filepath.Join(dir, fmt.Sprintf("%s_%d.txt", base, counter))
	}
	return path
}

// WriteTranscript creates a transcript file with a metadata header followed
// by body, returning the path written. The caller owns slug collision
// behavior via TranscriptPath.
func WriteTranscript(dir string, meta EpisodeMetadata, body string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir transcripts dir: %w", err)
	}
	path := TranscriptPath(dir, meta.Guest, meta.Episode)

	var b strings.Builder
	b.WriteString(RenderHeader(meta))
	b.WriteString("\n")
	b.WriteString(body)
	if !strings.HasSuffix(body, "\n") {
		b.WriteString("\n")
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("write transcript: %w", err)
	}
	return path, nil
}

// ListTranscriptIDs returns the sorted ids (file stems) of all .txt
// transcripts in dir. A missing directory yields an empty list.
func ListTranscriptIDs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read transcripts dir: %w", err)
	}

	var ids []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".txt") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(e.Name(), ".txt"))
	}
	sort.Strings(ids)
	return ids, nil
}
