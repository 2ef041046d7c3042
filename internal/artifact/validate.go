package artifact

import (
	"fmt"
	"strings"

	"github.com/danmuck/corpusgen/internal/hybrid"
)

// Validate enforces a non-empty catalog with unique, non-empty type names.
func (c *TypeCatalog) Validate() error {
	if len(c.Messages) == 0 {
		return fmt.Errorf("artifact: type catalog is empty")
	}
	seen := make(map[string]struct{}, len(c.Messages))
	for i, m := range c.Messages {
		name := strings.TrimSpace(m.Name)
		if name == "" {
			return fmt.Errorf("artifact: type catalog entry %d has no name", i)
		}
		if _, ok := seen[name]; ok {
			return fmt.Errorf("artifact: duplicate message type %q", name)
		}
		seen[name] = struct{}{}
	}
	return nil
}

// Validate enforces the minimum structure shape.
func (s *MessageStructure) Validate() error {
	if strings.TrimSpace(s.MessageType) == "" {
		return fmt.Errorf("artifact: structure missing message_type")
	}
	return nil
}

// Validate enforces unique sequence ids and non-empty type sequences.
// A set with zero sequences is valid; the repeated variant uses that to
// signal it has nothing to add.
func (s *SequenceSet) Validate() error {
	seen := make(map[string]struct{}, len(s.Sequences))
	for i, seq := range s.Sequences {
		id := strings.TrimSpace(seq.SequenceID)
		if id == "" {
			return fmt.Errorf("artifact: sequence %d has no sequenceId", i)
		}
		if _, ok := seen[id]; ok {
			return fmt.Errorf("artifact: duplicate sequenceId %q", id)
		}
		seen[id] = struct{}{}
		if len(seq.TypeSequence) == 0 {
			return fmt.Errorf("artifact: sequence %q has an empty type_sequence", id)
		}
	}
	return nil
}

// Validate checks the hybrid-encoding constraint: a binary payload must be
// nothing but hex byte tokens.
func (m *ConcreteMessage) Validate() error {
	if !m.IsBinary {
		return nil
	}
	for _, tok := range strings.Split(m.Message, " ") {
		if tok == "" {
			continue
		}
		if !hybrid.IsBinaryToken(tok) {
			return &EncodingError{
				Context: fmt.Sprintf("binary message %q", m.Message),
				Reason:  fmt.Sprintf("unparseable hex token %q", tok),
			}
		}
	}
	return nil
}

// Validate enforces at least one sequence, at least one message per
// sequence, and per-message encoding constraints.
func (t *TestCase) Validate() error {
	if len(t.Sequences) == 0 {
		return fmt.Errorf("artifact: test case has no sequences")
	}
	for _, seq := range t.Sequences {
		if len(seq.Messages) == 0 {
			return fmt.Errorf("artifact: sequence %q has no messages", seq.SequenceID)
		}
		for _, msg := range seq.Messages {
			if err := msg.Validate(); err != nil {
				return err
			}
		}
	}
	return nil
}

// Validate enforces non-empty, uniquely named dictionary entries.
func (d *FuzzingDictionary) Validate() error {
	if len(d.Entries) == 0 {
		return fmt.Errorf("artifact: fuzzing dictionary is empty")
	}
	seen := make(map[string]struct{}, len(d.Entries))
	for i, e := range d.Entries {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			return fmt.Errorf("artifact: dictionary entry %d has no name", i)
		}
		if _, ok := seen[name]; ok {
			return fmt.Errorf("artifact: duplicate dictionary entry %q", name)
		}
		seen[name] = struct{}{}
	}
	return nil
}

// CheckEntrySizes enforces the protocol-class byte ceiling on every entry's
// decoded payload. Oversized entries fail validation, they are not trimmed.
func (d *FuzzingDictionary) CheckEntrySizes(limit int) error {
	for _, e := range d.Entries {
		if n := len(hybrid.Encode(e.Data)); n > limit {
			return &EncodingError{
				Context: fmt.Sprintf("dictionary entry %q", e.Name),
				Reason:  fmt.Sprintf("decoded payload is %d bytes, ceiling is %d", n, limit),
			}
		}
	}
	return nil
}

// Validate enforces at least one parsed chunk.
func (p *ParsedSeed) Validate() error {
	if len(p.MessageSequences) == 0 {
		return fmt.Errorf("artifact: parsed seed has no message chunks")
	}
	return nil
}
