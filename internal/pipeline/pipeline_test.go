package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/danmuck/corpusgen/internal/artifact"
	"github.com/danmuck/corpusgen/internal/config"
	"github.com/danmuck/corpusgen/internal/oracle"
	"github.com/danmuck/corpusgen/internal/oracle/oracletest"
)

func newRunner(script *oracletest.Script) *Runner {
	cfg := config.Default()
	return New(cfg, oracle.NewClient(script, cfg.MaxRetries, zerolog.Nop()), zerolog.Nop())
}

func scriptCatalog(script *oracletest.Script) {
	script.Respond("type_catalog", artifact.TypeCatalog{
		Protocol: "smtp",
		Messages: []artifact.MessageType{
			{Name: "HELO", Description: "identify the client"},
			{Name: "QUIT", Description: "end the session"},
		},
	})
	script.Handle("message_structure", func(prompt string) (json.RawMessage, error) {
		for _, name := range []string{"HELO", "QUIT"} {
			if strings.Contains(prompt, "message type "+name) {
				return json.Marshal(artifact.MessageStructure{
					Protocol:    "smtp",
					MessageType: name,
				})
			}
		}
		return nil, fmt.Errorf("unrecognized structure prompt")
	})
}

func scriptSequences(script *oracletest.Script, plain, repeated artifact.SequenceSet) {
	script.Handle("sequence_set", func(prompt string) (json.RawMessage, error) {
		if strings.Contains(prompt, "revisit") {
			return json.Marshal(repeated)
		}
		return json.Marshal(plain)
	})
}

func TestRunFullPipeline(t *testing.T) {
	script := oracletest.New()
	scriptCatalog(script)
	scriptSequences(script,
		artifact.SequenceSet{
			Protocol: "smtp",
			Sequences: []artifact.Sequence{
				{SequenceID: "seq-1", TypeSequence: []string{"HELO", "QUIT"}},
			},
		},
		artifact.SequenceSet{Protocol: "smtp"},
	)
	script.Respond("parsed_seed", artifact.ParsedSeed{
		MessageSequences: []artifact.SeedChunk{{Message: "HELO mail.example.com\r\n"}},
	})
	script.Respond("test_case", artifact.TestCase{
		Protocol: "smtp",
		Sequences: []artifact.ConcreteSequence{{
			SequenceID: "seq-1-v1",
			Messages: []artifact.ConcreteMessage{
				{Message: "HELO example.com"},
				{Message: "QUIT"},
			},
		}},
	})
	var dictSawSeed bool
	script.Handle("fuzzing_dictionary", func(prompt string) (json.RawMessage, error) {
		dictSawSeed = strings.Contains(prompt, "HELO mail.example.com")
		return json.Marshal(artifact.FuzzingDictionary{
			Protocol: "smtp",
			Entries:  []artifact.DictionaryEntry{{Name: "verb helo", Data: "HELO "}},
		})
	})

	seedDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(seedDir, "capture.raw"), []byte("HELO mail.example.com\r\nQUIT\r\n"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}
	outDir := filepath.Join(t.TempDir(), "results")

	r := newRunner(script)
	err := r.Run(context.Background(), Options{
		Protocol:  "smtp",
		OutputDir: outDir,
		SeedDir:   seedDir,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	// one unseeded and one seeded pass over the plain batch
	if got := script.Calls("test_case"); got != 2 {
		t.Fatalf("test case calls: %d, want 2", got)
	}
	for _, name := range []string{"new_1.raw", "new_2.raw"} {
		data, err := os.ReadFile(filepath.Join(outDir, name))
		if err != nil {
			t.Fatalf("corpus file %s: %v", name, err)
		}
		if string(data) != "HELO example.com\r\nQUIT\r\n" {
			t.Fatalf("corpus file %s: %q", name, data)
		}
	}
	if _, err := os.Stat(filepath.Join(outDir, "smtp.dict")); err != nil {
		t.Fatalf("dictionary file: %v", err)
	}
	if !dictSawSeed {
		t.Fatalf("seed sample missing from dictionary prompt")
	}

	cfg := config.Default()
	for _, p := range []string{
		filepath.Join(cfg.Dirs.Types, "smtp_types.json"),
		filepath.Join(cfg.Dirs.Structures, "smtp_structures.json"),
		filepath.Join(cfg.Dirs.Sequences, "smtp_sequences.json"),
		filepath.Join(cfg.Dirs.Sequences, "smtp_repeated_sequences.json"),
		filepath.Join(cfg.Dirs.TestCases, "smtp_sequences_testcases.json"),
		filepath.Join(cfg.Dirs.TestCases, "smtp_sequences_seeded_1_testcases.json"),
		filepath.Join(cfg.Dirs.Dictionaries, "smtp_dictionary.json"),
		filepath.Join(cfg.Dirs.Audit, "1_smtp_types.json"),
	} {
		if _, err := os.Stat(filepath.Join(outDir, p)); err != nil {
			t.Fatalf("missing snapshot %s: %v", p, err)
		}
	}
}

func TestRunTypesFailureIsFatal(t *testing.T) {
	script := oracletest.New()
	script.Fail("type_catalog", fmt.Errorf("scripted outage"))

	r := newRunner(script)
	err := r.Run(context.Background(), Options{Protocol: "smtp", OutputDir: t.TempDir()})
	var ee oracle.ExhaustedError
	if !errors.As(err, &ee) {
		t.Fatalf("expected exhaustion, got %v", err)
	}
	if script.Calls("message_structure") != 0 {
		t.Fatalf("structure stage ran after fatal type failure")
	}
}

func TestRunRepeatedBatchDoublesPasses(t *testing.T) {
	script := oracletest.New()
	scriptCatalog(script)
	scriptSequences(script,
		artifact.SequenceSet{
			Protocol: "smtp",
			Sequences: []artifact.Sequence{
				{SequenceID: "seq-1", TypeSequence: []string{"HELO"}},
			},
		},
		artifact.SequenceSet{
			Protocol: "smtp",
			Sequences: []artifact.Sequence{
				{SequenceID: "loop-1", TypeSequence: []string{"QUIT"}},
			},
		},
	)
	script.Respond("test_case", artifact.TestCase{
		Protocol: "smtp",
		Sequences: []artifact.ConcreteSequence{{
			SequenceID: "v1",
			Messages:   []artifact.ConcreteMessage{{Message: "QUIT"}},
		}},
	})
	script.Respond("fuzzing_dictionary", artifact.FuzzingDictionary{
		Protocol: "smtp",
		Entries:  []artifact.DictionaryEntry{{Name: "verb quit", Data: "QUIT"}},
	})

	r := newRunner(script)
	if err := r.Run(context.Background(), Options{Protocol: "smtp", OutputDir: filepath.Join(t.TempDir(), "out")}); err != nil {
		t.Fatalf("run: %v", err)
	}
	// no seeds: one pass per batch, two batches
	if got := script.Calls("test_case"); got != 2 {
		t.Fatalf("test case calls: %d, want 2", got)
	}
}

func TestRunEmptyCorpusIsSoftFailure(t *testing.T) {
	script := oracletest.New()
	scriptCatalog(script)
	scriptSequences(script,
		artifact.SequenceSet{
			Protocol: "smtp",
			Sequences: []artifact.Sequence{
				{SequenceID: "seq-1", TypeSequence: []string{"HELO", "UNKNOWN"}},
			},
		},
		artifact.SequenceSet{Protocol: "smtp"},
	)
	script.Respond("fuzzing_dictionary", artifact.FuzzingDictionary{
		Protocol: "smtp",
		Entries:  []artifact.DictionaryEntry{{Name: "verb helo", Data: "HELO "}},
	})

	r := newRunner(script)
	err := r.Run(context.Background(), Options{Protocol: "smtp", OutputDir: filepath.Join(t.TempDir(), "out")})
	if !errors.Is(err, ErrNoCorpus) {
		t.Fatalf("expected ErrNoCorpus, got %v", err)
	}
	// the lone sequence references a type with no structure, so the
	// materialization oracle is never consulted
	if script.Calls("test_case") != 0 {
		t.Fatalf("test case calls: %d, want 0", script.Calls("test_case"))
	}
}
