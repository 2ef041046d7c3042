// Package seeds owns the seed-message input boundary.
//
// Ownership boundary:
// - reading captured raw messages from a directory
// - presenting them in readable form to the pipeline
package seeds

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/danmuck/corpusgen/internal/hybrid"
)

// Load reads every regular file under dir and returns its full byte content
// decoded to readable form, ordered by file name. File names carry no
// meaning beyond ordering; the corpus is read-only input.
func Load(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("seeds: read dir %s: %w", dir, err)
	}
	var messages []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("seeds: read %s: %w", entry.Name(), err)
		}
		messages = append(messages, hybrid.Decode(raw))
	}
	return messages, nil
}
