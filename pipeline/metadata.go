package pipeline

import (
	"fmt"
	"path/filepath"
	"strings"
)

// HeaderState distinguishes the three outcomes of looking for a metadata
// header. A malformed header degrades to the filename heuristic exactly like
// an absent one, but callers can log the two cases differently.
type HeaderState int

const (
	HeaderAbsent HeaderState = iota
	HeaderPresent
	HeaderMalformed
)

func (s HeaderState) String() string {
	switch s {
	case HeaderPresent:
		return "present"
	case HeaderMalformed:
		return "malformed"
	default:
		return "absent"
	}
}

const headerDelimiter = "---"

// ParseTranscript splits transcript file content into its metadata header and
// body. Content that does not begin with the delimiter is all body. A header
// with no closing delimiter is treated as no header (the whole content stays
// body) but reported as HeaderMalformed.
func ParseTranscript(content string) (EpisodeMetadata, string, HeaderState) {
	var meta EpisodeMetadata

	trimmed := strings.TrimLeft(content, "\n\r \t")
	if !strings.HasPrefix(trimmed, headerDelimiter) {
		return meta, content, HeaderAbsent
	}

	rest := trimmed[len(headerDelimiter):]
	rest = strings.TrimPrefix(rest, "\r\n")
	rest = strings.TrimPrefix(rest, "\n")

	end := -1
	lines := strings.Split(rest, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) == headerDelimiter {
			end = i
			break
		}
	}
	if end == -1 {
		return EpisodeMetadata{}, content, HeaderMalformed
	}

	for _, line := range lines[:end] {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(strings.ToLower(key))
		value = strings.TrimSpace(value)
		switch key {
		case "podcast":
			meta.Podcast = value
		case "episode":
			meta.Episode = value
		case "guest":
			meta.Guest = value
		case "category":
			meta.PrimaryCategory = NormalizeCategory(Category(value), DefaultCategory)
		case "date":
			meta.Date = value
		case "url":
			meta.URL = value
		}
	}
	if meta.PrimaryCategory == "" {
		meta.PrimaryCategory = DefaultCategory
	}

	body := strings.Join(lines[end+1:], "\n")
	body = strings.TrimPrefix(body, "\n")
	return meta, body, HeaderPresent
}

// MetadataFromFilename derives best-effort metadata from an underscore-
// delimited transcript filename: the first two tokens become the podcast
// name, the next two the guest name, and the remainder the episode title,
// each title-cased. This is a fallback control path only; a present header
// always wins.
func MetadataFromFilename(filename string) EpisodeMetadata {
	base := filepath.Base(filename)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	for _, gen := range []Generation{GenerationHybrid, GenerationCritical} {
		base = strings.TrimSuffix(base, strings.TrimSuffix(gen.Suffix(), ".json"))
	}

	meta := EpisodeMetadata{
		Podcast:         "Unknown Podcast",
		Episode:         "Unknown Episode",
		Guest:           "Unknown Guest",
		PrimaryCategory: DefaultCategory,
	}

	var tokens []string
	for _, tok := range strings.Split(base, "_") {
		if tok = strings.TrimSpace(tok); tok != "" {
			tokens = append(tokens, tok)
		}
	}
	if len(tokens) == 0 {
		return meta
	}

	take := func(n int) []string {
		if n > len(tokens) {
			n = len(tokens)
		}
		out := tokens[:n]
		tokens = tokens[n:]
		return out
	}

	if podcast := take(2); len(podcast) > 0 {
		meta.Podcast = titleCase(podcast)
	}
	if guest := take(2); len(guest) > 0 {
		meta.Guest = titleCase(guest)
	}
	if len(tokens) > 0 {
		meta.Episode = titleCase(tokens)
	}
	return meta
}

// ResolveMetadata applies the header-first, filename-fallback contract: the
// header is authoritative when present; otherwise the filename heuristic
// fills in everything.
func ResolveMetadata(content, filename string) (EpisodeMetadata, string, HeaderState) {
	meta, body, state := ParseTranscript(content)
	if state != HeaderPresent {
		return MetadataFromFilename(filename), body, state
	}
	return meta, body, state
}

func titleCase(tokens []string) string {
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		out = append(out, upperFirst(tok))
	}
	return strings.Join(out, " ")
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(strings.ToLower(s))
	r[0] = []rune(strings.ToUpper(string(r[0])))[0]
	return string(r)
}

// RenderHeader produces the delimited header block for a transcript file.
// ParseTranscript round-trips its output exactly.
func RenderHeader(meta EpisodeMetadata) string {
	var b strings.Builder
	b.WriteString(headerDelimiter + "\n")
	fmt.Fprintf(&b, "podcast: %s\n", meta.Podcast)
	fmt.Fprintf(&b, "episode: %s\n", meta.Episode)
	fmt.Fprintf(&b, "guest: %s\n", meta.Guest)
	fmt.Fprintf(&b, "category: %s\n", meta.PrimaryCategory)
	if meta.Date != "" {
		fmt.Fprintf(&b, "date: %s\n", meta.Date)
	}
	if meta.URL != "" {
		fmt.Fprintf(&b, "url: %s\n", meta.URL)
	}
	b.WriteString(headerDelimiter + "\n")
	return b.String()
}
