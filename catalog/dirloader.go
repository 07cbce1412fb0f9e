package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/glyphica/iconsearch/core"
)

// libraryEntry is the on-disk shape of one icon inside a library's
// JSON file.
type libraryEntry struct {
	Name     string   `json:"name"`
	Category string   `json:"category,omitempty"`
	Tags     []string `json:"tags,omitempty"`
	Synonyms []string `json:"synonyms,omitempty"`
	SVG      string   `json:"svg,omitempty"`
}

// DirLoader loads icon libraries from per-library JSON files in a
// directory: "<dir>/<library>.json" holds an array of icon entries.
type DirLoader struct {
	dir    string
	logger *slog.Logger
}

var _ Loader = (*DirLoader)(nil)

// NewDirLoader creates a loader rooted at dir.
func NewDirLoader(dir string) *DirLoader {
	return &DirLoader{
		dir:    dir,
		logger: slog.Default().With("component", "catalog-loader"),
	}
}

// LoadIcons reads each named library's JSON file. A missing library
// file is skipped with a warning rather than failing the whole load,
// so one bad library name cannot take out the catalog.
func (l *DirLoader) LoadIcons(ctx context.Context, libraries []string) ([]core.Icon, error) {
	var icons []core.Icon

	for _, library := range libraries {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		entries, err := l.readLibrary(library)
		if err != nil {
			if os.IsNotExist(err) {
				l.logger.Warn("library file missing, skipping", "library", library)
				continue
			}
			return nil, fmt.Errorf("loading library %q: %w", library, err)
		}

		for _, entry := range entries {
			icons = append(icons, entryToIcon(library, entry))
		}
	}

	return icons, nil
}

func (l *DirLoader) readLibrary(library string) ([]libraryEntry, error) {
	data, err := os.ReadFile(filepath.Join(l.dir, library+".json"))
	if err != nil {
		return nil, err
	}

	var entries []libraryEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func entryToIcon(library string, entry libraryEntry) core.Icon {
	tags := entry.Tags
	if len(tags) == 0 {
		tags = DeriveTags(entry.Name)
	}

	return core.Icon{
		Id:       core.IconID(library, entry.Name),
		Name:     entry.Name,
		Library:  library,
		Category: entry.Category,
		Tags:     tags,
		Synonyms: entry.Synonyms,
		SVG:      entry.SVG,
	}
}

// DeriveTags splits a hyphenated icon name into its component words.
func DeriveTags(name string) []string {
	var tags []string
	for _, part := range strings.Split(strings.ToLower(name), "-") {
		if part != "" {
			tags = append(tags, part)
		}
	}
	return tags
}
