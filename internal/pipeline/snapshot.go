package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/danmuck/corpusgen/internal/config"
)

// snapshotter persists intermediate artifacts twice: once under the stage's
// own directory for human inspection, once under the numbered audit
// directory recording oracle output order. Snapshot failures are logged and
// swallowed; they never interrupt a run.
type snapshotter struct {
	root  string
	audit string
	log   zerolog.Logger
	seq   int
}

func newSnapshotter(cfg config.Config, outputDir string, log zerolog.Logger) *snapshotter {
	return &snapshotter{
		root:  outputDir,
		audit: filepath.Join(outputDir, cfg.Dirs.Audit),
		log:   log,
	}
}

func (s *snapshotter) save(dir, protocol, label string, v any) {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		s.log.Error().Err(err).Str("label", label).Msg("snapshot marshal failed")
		return
	}
	name := fmt.Sprintf("%s_%s.json", protocol, label)
	s.write(filepath.Join(s.root, dir, name), data, label)

	s.seq++
	auditName := fmt.Sprintf("%d_%s_%s.json", s.seq, protocol, label)
	s.write(filepath.Join(s.audit, auditName), data, label)
}

func (s *snapshotter) write(path string, data []byte, label string) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		s.log.Error().Err(err).Str("label", label).Msg("snapshot dir create failed")
		return
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		s.log.Error().Err(err).Str("label", label).Msg("snapshot write failed")
	}
}
