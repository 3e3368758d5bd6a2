package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mostlymid/mostly-mid/pipeline/fileutils"
)

// Cache persists one analysis document per transcript per schema generation
// as {id}{suffix} JSON files. There is no TTL and no locking: a hit is
// permanent until the file is deleted or the generation suffix changes, and
// concurrent writers to the same key are out of scope for the single-operator
// batch usage this serves.
type Cache struct {
	Dir string
}

// Path returns the physical cache file for an id and generation.
func (c Cache) Path(id string, gen Generation) string {
	return filepath.Join(c.Dir, id+gen.Suffix())
}

// Has reports whether a cached document exists.
func (c Cache) Has(id string, gen Generation) bool {
	return fileutils.FileExists(c.Path(id, gen))
}

// GetHybrid loads a cached hybrid document. The second return is false when
// no entry exists.
func (c Cache) GetHybrid(id string) (HybridAnalysis, bool, error) {
	var doc HybridAnalysis
	ok, err := c.read(id, GenerationHybrid, &doc)
	return doc, ok, err
}

// GetLegacy loads a cached legacy document.
func (c Cache) GetLegacy(id string) (LegacyAnalysis, bool, error) {
	var doc LegacyAnalysis
	ok, err := c.read(id, GenerationCritical, &doc)
	return doc, ok, err
}

func (c Cache) read(id string, gen Generation, v any) (bool, error) {
	b, err := os.ReadFile(c.Path(id, gen))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("read cache %s: %w", c.Path(id, gen), err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return false, fmt.Errorf("unmarshal cache %s: %w", c.Path(id, gen), err)
	}
	return true, nil
}

// PutHybrid writes a hybrid document, replacing any existing entry.
func (c Cache) PutHybrid(id string, doc HybridAnalysis) error {
	return fileutils.WriteJSONFileAtomic(c.Path(id, GenerationHybrid), doc, true)
}

// PutLegacy writes a legacy document.
func (c Cache) PutLegacy(id string, doc LegacyAnalysis) error {
	return fileutils.WriteJSONFileAtomic(c.Path(id, GenerationCritical), doc, true)
}

// List returns the sorted ids with a cached document of the given generation.
// A missing cache directory yields an empty list.
func (c Cache) List(gen Generation) ([]string, error) {
	entries, err := os.ReadDir(c.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read cache dir: %w", err)
	}

	suffix := gen.Suffix()
	var ids []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), suffix) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(e.Name(), suffix))
	}
	sort.Strings(ids)
	return ids, nil
}
