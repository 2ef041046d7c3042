// Package artifact owns the typed stage artifacts exchanged through the
// pipeline and their shape validation.
//
// Ownership boundary:
// - artifact shapes and their JSON field names (the oracle contract)
// - per-artifact validation entry points
// - hybrid-payload validation primitives
package artifact

// MessageType is one entry of a protocol's client-to-server type catalog.
type MessageType struct {
	Name        string `json:"name"`
	Code        string `json:"code,omitempty"`
	Description string `json:"description"`
}

// TypeCatalog enumerates the message types usable as sequence elements.
// Produced once per protocol and immutable afterwards.
type TypeCatalog struct {
	Protocol string        `json:"protocol"`
	Messages []MessageType `json:"client_to_server_messages"`
}

// Names returns the catalog's type names in catalog order.
func (c *TypeCatalog) Names() []string {
	names := make([]string, 0, len(c.Messages))
	for _, m := range c.Messages {
		names = append(names, m.Name)
	}
	return names
}

// Field describes one field of a message structure.
type Field struct {
	Name            string  `json:"name"`
	FixedByteLength *uint   `json:"fixed_byte_length"`
	DataType        string  `json:"data_type"`
	Description     string  `json:"description"`
	Details         *string `json:"details"`
}

// MessageStructure is the per-type field breakdown extracted from protocol
// documentation by the oracle.
type MessageStructure struct {
	Protocol        string  `json:"protocol"`
	MessageType     string  `json:"message_type"`
	Code            *string `json:"code"`
	TypeDescription string  `json:"type_description"`
	Fields          []Field `json:"fields"`
	Reasoning       string  `json:"reasoning"`
}

// StructureMap holds message structures keyed by type name. Entries for
// types whose extraction failed are simply absent.
type StructureMap map[string]MessageStructure

// Resolve looks up the structure for a type name.
func (m StructureMap) Resolve(name string) (MessageStructure, error) {
	st, ok := m[name]
	if !ok {
		return MessageStructure{}, &UnknownTypeError{Name: name}
	}
	return st, nil
}

// Coverage describes the coverage rationale attached to one sequence.
type Coverage struct {
	Line   string `json:"line"`
	State  string `json:"state"`
	Branch string `json:"branch"`
}

// Sequence is an ordered list of message-type references. Repeats are
// allowed; the coverage rationale is optional.
type Sequence struct {
	SequenceID   string    `json:"sequenceId"`
	TypeSequence []string  `json:"type_sequence"`
	Coverage     *Coverage `json:"coverage,omitempty"`
}

// SequenceSet is one oracle-produced batch of message-type sequences.
type SequenceSet struct {
	Protocol    string     `json:"protocol"`
	Sequences   []Sequence `json:"sequences"`
	Explanation string     `json:"explanation"`
}

// Empty reports whether the set carries no sequences. An empty repeated set
// is legal and short-circuits its downstream materialization pass.
func (s *SequenceSet) Empty() bool {
	return s == nil || len(s.Sequences) == 0
}

// ConcreteMessage is one hybrid-encoded payload. When IsBinary is set the
// payload must be entirely hex byte tokens; text payloads may still embed
// stray hex tokens and the codec handles the mix.
type ConcreteMessage struct {
	Message  string `json:"message"`
	IsBinary bool   `json:"is_binary"`
}

// ConcreteSequence is one materialized run of concrete messages.
type ConcreteSequence struct {
	SequenceID  string            `json:"sequenceId"`
	Messages    []ConcreteMessage `json:"messages"`
	Explanation string            `json:"explanation"`
}

// TestCase is a fully materialized set of concrete message sequences for
// one protocol.
type TestCase struct {
	Protocol  string             `json:"protocol"`
	Sequences []ConcreteSequence `json:"sequences"`
}

// DictionaryEntry is one named fuzzing payload fragment.
type DictionaryEntry struct {
	Name string `json:"name"`
	Data string `json:"data"`
}

// FuzzingDictionary is a named set of crafted payload fragments for a
// downstream mutation fuzzer.
type FuzzingDictionary struct {
	Protocol string            `json:"protocol"`
	Entries  []DictionaryEntry `json:"fuzzing_dictionary"`
}

// SeedChunk is one message boundary the oracle identified inside a seed.
type SeedChunk struct {
	Message string `json:"message"`
}

// ParsedSeed is the oracle's segmentation of one readable seed message into
// individual protocol messages.
type ParsedSeed struct {
	MessageSequences []SeedChunk `json:"message_sequences"`
}
