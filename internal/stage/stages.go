// Package stage owns the individual oracle-driven pipeline stages: type
// extraction, structure extraction, sequence generation, seed parsing, test
// case materialization, and dictionary synthesis.
//
// Ownership boundary:
// - prompt construction per stage
// - response schemas per stage
// - per-stage failure discipline (what is fatal, what is skipped)
package stage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/danmuck/corpusgen/internal/artifact"
	"github.com/danmuck/corpusgen/internal/config"
	"github.com/danmuck/corpusgen/internal/oracle"
)

// Stage names used in retry exhaustion reports and logs.
const (
	StageTypes             = "types"
	StageStructures        = "structures"
	StageSequences         = "sequences"
	StageRepeatedSequences = "repeated_sequences"
	StageSeedParse         = "seed_parse"
	StageTestCases         = "test_cases"
	StageDictionary        = "dictionary"
)

var (
	typeCatalogSchema = oracle.MustSchemaFor("type_catalog", artifact.TypeCatalog{})
	structureSchema   = oracle.MustSchemaFor("message_structure", artifact.MessageStructure{})
	sequenceSetSchema = oracle.MustSchemaFor("sequence_set", artifact.SequenceSet{})
	testCaseSchema    = oracle.MustSchemaFor("test_case", artifact.TestCase{})
	parsedSeedSchema  = oracle.MustSchemaFor("parsed_seed", artifact.ParsedSeed{})
	dictionarySchema  = oracle.MustSchemaFor("fuzzing_dictionary", artifact.FuzzingDictionary{})
)

// Stages runs the pipeline stages against one retrying oracle client.
type Stages struct {
	Client *oracle.Client
	Config config.Config
	Log    zerolog.Logger
}

// Types extracts the protocol's client-to-server type catalog. A failure
// here is fatal to the run; every later stage consumes the catalog.
func (s *Stages) Types(ctx context.Context, protocol string) (artifact.TypeCatalog, error) {
	var catalog artifact.TypeCatalog
	err := oracle.Generate(ctx, s.Client, oracle.Call{
		Stage:    StageTypes,
		Protocol: protocol,
		Timeout:  config.Timeout(s.Config.Timeouts.Types),
		Request: oracle.Request{
			Prompt:      expand(typesPrompt, "[PROTOCOL]", protocol),
			Schema:      typeCatalogSchema,
			Temperature: s.Config.Temperatures.Types,
		},
	}, &catalog)
	if err != nil {
		return artifact.TypeCatalog{}, err
	}
	return catalog, nil
}

// Structures extracts the field breakdown for every catalog type, fanning
// out across a bounded worker pool. A type whose extraction exhausts its
// retries is dropped from the map and logged; the run continues with the
// types that succeeded.
func (s *Stages) Structures(ctx context.Context, catalog artifact.TypeCatalog) (artifact.StructureMap, error) {
	structures := make(artifact.StructureMap, len(catalog.Messages))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.Config.StructureWorkers)
	for _, mt := range catalog.Messages {
		g.Go(func() error {
			st, err := s.structure(gctx, catalog.Protocol, mt)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				s.Log.Warn().
					Err(err).
					Str("protocol", catalog.Protocol).
					Str("message_type", mt.Name).
					Msg("structure extraction failed, dropping type")
				return nil
			}
			mu.Lock()
			structures[mt.Name] = st
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return structures, nil
}

func (s *Stages) structure(ctx context.Context, protocol string, mt artifact.MessageType) (artifact.MessageStructure, error) {
	prompt := expand(structurePrompt,
		"[PROTOCOL]", protocol,
		"[TYPE]", mt.Name,
		"[CODE]", mt.Code,
		"[DESCRIPTION]", mt.Description,
	)
	var st artifact.MessageStructure
	err := oracle.Generate(ctx, s.Client, oracle.Call{
		Stage:    StageStructures,
		Protocol: protocol,
		Timeout:  config.Timeout(s.Config.Timeouts.Structures),
		Request: oracle.Request{
			Prompt:      prompt,
			Schema:      structureSchema,
			Temperature: s.Config.Temperatures.Structures,
		},
	}, &st)
	if err != nil {
		return artifact.MessageStructure{}, err
	}
	return st, nil
}

// Sequences generates the coverage-oriented type sequences. An empty batch
// is a schema violation here; the plain pass must produce work.
func (s *Stages) Sequences(ctx context.Context, catalog artifact.TypeCatalog) (artifact.SequenceSet, error) {
	return s.sequenceCall(ctx, catalog, StageSequences, sequencesPrompt, func(out any) error {
		set := out.(*artifact.SequenceSet)
		if set.Empty() {
			return fmt.Errorf("stage: sequence batch is empty")
		}
		return nil
	})
}

// RepeatedSequences generates the state-revisiting sequence batch. An empty
// batch is valid output: the protocol has no meaningful looping behavior and
// the downstream pass for this batch is skipped.
func (s *Stages) RepeatedSequences(ctx context.Context, catalog artifact.TypeCatalog) (artifact.SequenceSet, error) {
	return s.sequenceCall(ctx, catalog, StageRepeatedSequences, repeatedSequencesPrompt, nil)
}

func (s *Stages) sequenceCall(ctx context.Context, catalog artifact.TypeCatalog, stage, prompt string, check func(any) error) (artifact.SequenceSet, error) {
	var set artifact.SequenceSet
	err := oracle.Generate(ctx, s.Client, oracle.Call{
		Stage:    stage,
		Protocol: catalog.Protocol,
		Timeout:  config.Timeout(s.Config.Timeouts.Sequences),
		Check:    check,
		Request: oracle.Request{
			Prompt: expand(prompt,
				"[PROTOCOL]", catalog.Protocol,
				"[TYPES]", strings.Join(catalog.Names(), ", "),
			),
			Schema:      sequenceSetSchema,
			Temperature: s.Config.Temperatures.Sequences,
		},
	}, &set)
	if err != nil {
		return artifact.SequenceSet{}, err
	}
	return set, nil
}

// ParseSeed asks the oracle to split one readable seed capture into
// individual protocol messages.
func (s *Stages) ParseSeed(ctx context.Context, protocol, seed string) (artifact.ParsedSeed, error) {
	var parsed artifact.ParsedSeed
	err := oracle.Generate(ctx, s.Client, oracle.Call{
		Stage:    StageSeedParse,
		Protocol: protocol,
		Timeout:  config.Timeout(s.Config.Timeouts.SeedParse),
		Request: oracle.Request{
			Prompt: expand(seedParsePrompt,
				"[PROTOCOL]", protocol,
				"[SEED_MESSAGE]", seed,
			),
			Schema: parsedSeedSchema,
		},
	}, &parsed)
	if err != nil {
		return artifact.ParsedSeed{}, err
	}
	return parsed, nil
}

// TestCases materializes every type sequence of the set into concrete
// message sequences. Sequences referencing a type with no extracted
// structure are skipped, as are sequences that exhaust their retries; the
// survivors are merged into one test case. Seed messages, when present, are
// appended to each prompt as live-traffic examples.
func (s *Stages) TestCases(ctx context.Context, set artifact.SequenceSet, structures artifact.StructureMap, seedMessages []string) (artifact.TestCase, error) {
	result := artifact.TestCase{Protocol: set.Protocol}
	for _, seq := range set.Sequences {
		if err := ctx.Err(); err != nil {
			return artifact.TestCase{}, err
		}
		stMap, err := resolveStructures(structures, seq)
		if err != nil {
			var ute *artifact.UnknownTypeError
			if errors.As(err, &ute) {
				s.Log.Warn().
					Str("protocol", set.Protocol).
					Str("sequence_id", seq.SequenceID).
					Str("message_type", ute.Name).
					Msg("sequence references a type with no structure, skipping")
				continue
			}
			return artifact.TestCase{}, err
		}

		tc, err := s.materialize(ctx, set.Protocol, seq, stMap, seedMessages)
		if err != nil {
			s.Log.Warn().
				Err(err).
				Str("protocol", set.Protocol).
				Str("sequence_id", seq.SequenceID).
				Msg("test case materialization failed, skipping sequence")
			continue
		}
		result.Sequences = append(result.Sequences, tc.Sequences...)
	}
	return result, nil
}

func (s *Stages) materialize(ctx context.Context, protocol string, seq artifact.Sequence, structures []artifact.MessageStructure, seedMessages []string) (artifact.TestCase, error) {
	structureJSON, err := json.MarshalIndent(structures, "", "  ")
	if err != nil {
		return artifact.TestCase{}, fmt.Errorf("stage: marshal structures for %s: %w", seq.SequenceID, err)
	}

	seedSection := ""
	if len(seedMessages) > 0 {
		seedSection = expand(testCasesSeedContext,
			"[PROTOCOL]", protocol,
			"[SEED]", strings.Join(seedMessages, "\n---\n"),
		)
	}

	prompt := expand(testCasesPrompt,
		"[PROTOCOL]", protocol,
		"[SEQUENCE]", strings.Join(seq.TypeSequence, " -> "),
		"[STRUCTURE]", string(structureJSON),
		"[NUMBER]", strconv.Itoa(s.Config.SequenceVariants),
		"[SEED_CONTEXT]", seedSection,
	)

	want := len(seq.TypeSequence)
	var tc artifact.TestCase
	genErr := oracle.Generate(ctx, s.Client, oracle.Call{
		Stage:    StageTestCases,
		Protocol: protocol,
		Timeout:  config.Timeout(s.Config.Timeouts.TestCases),
		Check: func(out any) error {
			got := out.(*artifact.TestCase)
			for _, cs := range got.Sequences {
				if len(cs.Messages) != want {
					return fmt.Errorf("stage: sequence %q has %d messages, type sequence has %d",
						cs.SequenceID, len(cs.Messages), want)
				}
			}
			return nil
		},
		Request: oracle.Request{
			Prompt:      prompt,
			Schema:      testCaseSchema,
			Temperature: s.Config.Temperatures.TestCases,
		},
	}, &tc)
	if genErr != nil {
		return artifact.TestCase{}, genErr
	}
	return tc, nil
}

// resolveStructures collects the structures for every type a sequence
// references, in first-reference order without duplicates.
func resolveStructures(structures artifact.StructureMap, seq artifact.Sequence) ([]artifact.MessageStructure, error) {
	seen := make(map[string]struct{}, len(seq.TypeSequence))
	resolved := make([]artifact.MessageStructure, 0, len(seq.TypeSequence))
	for _, name := range seq.TypeSequence {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		st, err := structures.Resolve(name)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, st)
	}
	return resolved, nil
}

// Dictionary synthesizes the fuzzing dictionary, enhancing basePath's
// content when one is given and generating from scratch otherwise. A
// non-empty seedSample is embedded as a live-traffic example for the oracle
// to mine field values from. Entries past the protocol-class byte ceiling
// fail the attempt.
func (s *Stages) Dictionary(ctx context.Context, protocol string, typeNames []string, basePath, seedSample string) (artifact.FuzzingDictionary, error) {
	limit := s.Config.DictionaryLimit()

	seedSection := ""
	if seedSample != "" {
		seedSection = expand(dictionarySeedSection, "[SEED_INPUT]", seedSample)
	}

	var prompt string
	if basePath != "" {
		base, err := os.ReadFile(basePath)
		if err != nil {
			return artifact.FuzzingDictionary{}, fmt.Errorf("stage: read base dictionary %s: %w", basePath, err)
		}
		prompt = expand(dictionaryBasePrompt,
			"[PROTOCOL]", protocol,
			"[SEED_SECTION]", seedSection,
			"[BASE_DICTIONARY]", string(base),
			"[TYPES]", strings.Join(typeNames, ", "),
			"[LIMIT]", strconv.Itoa(limit),
		)
	} else {
		prompt = expand(dictionaryScratchPrompt,
			"[PROTOCOL]", protocol,
			"[SEED_SECTION]", seedSection,
			"[TYPES]", strings.Join(typeNames, ", "),
			"[LIMIT]", strconv.Itoa(limit),
		)
	}

	var dict artifact.FuzzingDictionary
	err := oracle.Generate(ctx, s.Client, oracle.Call{
		Stage:    StageDictionary,
		Protocol: protocol,
		Timeout:  config.Timeout(s.Config.Timeouts.Dictionary),
		Check: func(out any) error {
			return out.(*artifact.FuzzingDictionary).CheckEntrySizes(limit)
		},
		Request: oracle.Request{
			Prompt: prompt,
			Schema: dictionarySchema,
		},
	}, &dict)
	if err != nil {
		return artifact.FuzzingDictionary{}, err
	}
	return dict, nil
}

// expand substitutes placeholder/value pairs into a prompt template.
func expand(template string, pairs ...string) string {
	return strings.NewReplacer(pairs...).Replace(template)
}
