// Package pipeline owns the run orchestration: stage ordering, the run
// state machine, seed interleaving, and artifact snapshotting.
//
// Ownership boundary:
// - stage sequencing and the fatal/skip policy between stages
// - run state transitions and their logging
// - snapshot and audit file layout under the output directory
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/danmuck/corpusgen/internal/artifact"
	"github.com/danmuck/corpusgen/internal/config"
	"github.com/danmuck/corpusgen/internal/corpus"
	"github.com/danmuck/corpusgen/internal/oracle"
	"github.com/danmuck/corpusgen/internal/seeds"
	"github.com/danmuck/corpusgen/internal/stage"
)

// ErrNoCorpus reports a run that finished without producing a single corpus
// file. The command treats it as a soft failure.
var ErrNoCorpus = errors.New("pipeline: no corpus files produced")

// State is the orchestrator's position in a run.
type State int

const (
	StateInit State = iota
	StateTypesExtracted
	StateStructuresExtracted
	StateSequencesGenerated
	StateTestCasesMaterialized
	StatePersisted
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateTypesExtracted:
		return "types_extracted"
	case StateStructuresExtracted:
		return "structures_extracted"
	case StateSequencesGenerated:
		return "sequences_generated"
	case StateTestCasesMaterialized:
		return "test_cases_materialized"
	case StatePersisted:
		return "persisted"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Options select the per-run inputs and outputs.
type Options struct {
	Protocol   string
	OutputDir  string
	SeedDir    string
	Dictionary string
}

// Runner drives one corpus synthesis run through its stages.
type Runner struct {
	cfg    config.Config
	stages *stage.Stages
	log    zerolog.Logger
}

func New(cfg config.Config, client *oracle.Client, log zerolog.Logger) *Runner {
	return &Runner{
		cfg:    cfg,
		stages: &stage.Stages{Client: client, Config: cfg, Log: log},
		log:    log,
	}
}

// Run executes the full pipeline for one protocol. Type extraction and
// sequence generation failures abort the run; structure extraction, test
// case materialization, and seed parsing degrade by skipping their failed
// unit; the dictionary stage never fails the run.
func (r *Runner) Run(ctx context.Context, opts Options) error {
	state := StateInit
	snap := newSnapshotter(r.cfg, opts.OutputDir, r.log)
	r.log.Info().
		Str("protocol", opts.Protocol).
		Str("output", opts.OutputDir).
		Stringer("state", state).
		Msg("run starting")

	seedPasses, err := r.loadSeeds(ctx, opts)
	if err != nil {
		return err
	}

	catalog, err := r.stages.Types(ctx, opts.Protocol)
	if err != nil {
		return fmt.Errorf("pipeline: type extraction failed: %w", err)
	}
	snap.save(r.cfg.Dirs.Types, opts.Protocol, "types", &catalog)
	state = r.advance(state, StateTypesExtracted, opts.Protocol)

	structures, err := r.stages.Structures(ctx, catalog)
	if err != nil {
		return fmt.Errorf("pipeline: structure extraction failed: %w", err)
	}
	if len(structures) == 0 {
		return fmt.Errorf("pipeline: no message structure survived extraction for %s", opts.Protocol)
	}
	snap.save(r.cfg.Dirs.Structures, opts.Protocol, "structures", structures)
	state = r.advance(state, StateStructuresExtracted, opts.Protocol)

	plain, err := r.stages.Sequences(ctx, catalog)
	if err != nil {
		return fmt.Errorf("pipeline: sequence generation failed: %w", err)
	}
	snap.save(r.cfg.Dirs.Sequences, opts.Protocol, "sequences", &plain)

	repeated, err := r.stages.RepeatedSequences(ctx, catalog)
	if err != nil {
		return fmt.Errorf("pipeline: repeated sequence generation failed: %w", err)
	}
	snap.save(r.cfg.Dirs.Sequences, opts.Protocol, "repeated_sequences", &repeated)
	if repeated.Empty() {
		r.log.Info().
			Str("protocol", opts.Protocol).
			Msg("no repeated sequences, skipping their materialization passes")
	}
	state = r.advance(state, StateSequencesGenerated, opts.Protocol)

	type batch struct {
		label string
		set   artifact.SequenceSet
	}
	batches := []batch{{"sequences", plain}}
	if !repeated.Empty() {
		batches = append(batches, batch{"repeated_sequences", repeated})
	}

	var cases []artifact.TestCase
	for _, batch := range batches {
		passes := append([][]string{nil}, seedPasses...)
		for i, pass := range passes {
			tc, err := r.stages.TestCases(ctx, batch.set, structures, pass)
			if err != nil {
				return fmt.Errorf("pipeline: test case materialization failed: %w", err)
			}
			label := batch.label + "_testcases"
			if pass != nil {
				label = fmt.Sprintf("%s_seeded_%d_testcases", batch.label, i)
			}
			snap.save(r.cfg.Dirs.TestCases, opts.Protocol, label, &tc)
			if len(tc.Sequences) > 0 {
				cases = append(cases, tc)
			}
		}
	}
	state = r.advance(state, StateTestCasesMaterialized, opts.Protocol)

	written, err := corpus.Persist(opts.OutputDir, cases)
	if err != nil {
		return err
	}
	state = r.advance(state, StatePersisted, opts.Protocol)
	r.log.Info().
		Str("protocol", opts.Protocol).
		Int("corpus_files", written).
		Stringer("state", state).
		Msg("corpus persisted")

	seedSample := ""
	if len(seedPasses) > 0 {
		seedSample = strings.Join(seedPasses[0], "\n")
	}
	r.writeDictionary(ctx, opts, catalog, seedSample, snap)

	if written == 0 {
		return ErrNoCorpus
	}
	return nil
}

// loadSeeds reads and oracle-parses the seed corpus when one was given.
// Each seed file becomes one group of parsed messages and drives one extra
// materialization pass. A seed that fails to parse is logged and dropped.
func (r *Runner) loadSeeds(ctx context.Context, opts Options) ([][]string, error) {
	if opts.SeedDir == "" {
		return nil, nil
	}
	readable, err := seeds.Load(opts.SeedDir)
	if err != nil {
		return nil, fmt.Errorf("pipeline: seed load failed: %w", err)
	}
	var groups [][]string
	for i, seed := range readable {
		parsed, err := r.stages.ParseSeed(ctx, opts.Protocol, seed)
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			r.log.Warn().
				Err(err).
				Str("protocol", opts.Protocol).
				Int("seed", i).
				Msg("seed parse failed, dropping seed")
			continue
		}
		group := make([]string, 0, len(parsed.MessageSequences))
		for _, chunk := range parsed.MessageSequences {
			group = append(group, chunk.Message)
		}
		groups = append(groups, group)
	}
	r.log.Info().
		Str("protocol", opts.Protocol).
		Int("seed_files", len(readable)).
		Int("seed_groups", len(groups)).
		Msg("seed corpus parsed")
	return groups, nil
}

// writeDictionary runs the dictionary stage and writes the keyword file.
// Failures are logged, never fatal; the corpus is already on disk.
func (r *Runner) writeDictionary(ctx context.Context, opts Options, catalog artifact.TypeCatalog, seedSample string, snap *snapshotter) {
	dict, err := r.stages.Dictionary(ctx, opts.Protocol, catalog.Names(), opts.Dictionary, seedSample)
	if err != nil {
		r.log.Error().
			Err(err).
			Str("protocol", opts.Protocol).
			Msg("dictionary synthesis failed")
		return
	}
	snap.save(r.cfg.Dirs.Dictionaries, opts.Protocol, "dictionary", &dict)

	path := filepath.Join(opts.OutputDir, opts.Protocol+".dict")
	if err := corpus.WriteDictionary(path, dict); err != nil {
		r.log.Error().
			Err(err).
			Str("protocol", opts.Protocol).
			Msg("dictionary write failed")
		return
	}
	r.log.Info().
		Str("protocol", opts.Protocol).
		Str("path", path).
		Int("entries", len(dict.Entries)).
		Msg("fuzzing dictionary written")
}

func (r *Runner) advance(from, to State, protocol string) State {
	r.log.Debug().
		Str("protocol", protocol).
		Stringer("from", from).
		Stringer("to", to).
		Msg("state transition")
	return to
}
