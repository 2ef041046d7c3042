package artifact

import (
	"errors"
	"testing"
)

func TestTypeCatalogValidate(t *testing.T) {
	cases := []struct {
		name    string
		catalog TypeCatalog
		wantErr bool
	}{
		{"ok", TypeCatalog{Protocol: "FTP", Messages: []MessageType{{Name: "USER"}, {Name: "QUIT"}}}, false},
		{"empty", TypeCatalog{Protocol: "FTP"}, true},
		{"blank name", TypeCatalog{Messages: []MessageType{{Name: "  "}}}, true},
		{"duplicate", TypeCatalog{Messages: []MessageType{{Name: "USER"}, {Name: "USER"}}}, true},
	}
	for _, tc := range cases {
		err := tc.catalog.Validate()
		if (err != nil) != tc.wantErr {
			t.Fatalf("%s: err=%v wantErr=%v", tc.name, err, tc.wantErr)
		}
	}
}

func TestStructureMapResolveMissing(t *testing.T) {
	m := StructureMap{"USER": {MessageType: "USER"}}
	if _, err := m.Resolve("USER"); err != nil {
		t.Fatalf("resolve USER: %v", err)
	}
	_, err := m.Resolve("NOOP")
	var unknown *UnknownTypeError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownTypeError, got %v", err)
	}
	if unknown.Name != "NOOP" {
		t.Fatalf("unknown type name: %q", unknown.Name)
	}
}

func TestSequenceSetValidate(t *testing.T) {
	empty := SequenceSet{Protocol: "FTP"}
	if err := empty.Validate(); err != nil {
		t.Fatalf("empty set must validate: %v", err)
	}
	if !empty.Empty() {
		t.Fatalf("expected Empty")
	}

	dup := SequenceSet{Sequences: []Sequence{
		{SequenceID: "1", TypeSequence: []string{"USER"}},
		{SequenceID: "1", TypeSequence: []string{"QUIT"}},
	}}
	if err := dup.Validate(); err == nil {
		t.Fatalf("expected duplicate sequenceId error")
	}

	blank := SequenceSet{Sequences: []Sequence{{SequenceID: "1"}}}
	if err := blank.Validate(); err == nil {
		t.Fatalf("expected empty type_sequence error")
	}
}

func TestConcreteMessageBinaryTokens(t *testing.T) {
	ok := ConcreteMessage{Message: "0x1a 0x0b 0x34 0x00", IsBinary: true}
	if err := ok.Validate(); err != nil {
		t.Fatalf("valid binary message: %v", err)
	}

	mixed := ConcreteMessage{Message: "HELO 0x00 world", IsBinary: false}
	if err := mixed.Validate(); err != nil {
		t.Fatalf("mixed text message must pass: %v", err)
	}

	bad := ConcreteMessage{Message: "0x1a DATA", IsBinary: true}
	err := bad.Validate()
	var enc *EncodingError
	if !errors.As(err, &enc) {
		t.Fatalf("expected EncodingError, got %v", err)
	}
}

func TestDictionarySizeCeiling(t *testing.T) {
	dict := FuzzingDictionary{
		Protocol: "DICOM",
		Entries: []DictionaryEntry{
			{Name: "pdu-type-overflow", Data: "0x01 0x00 0x00 0x00"},
		},
	}
	if err := dict.CheckEntrySizes(16); err != nil {
		t.Fatalf("4-byte entry under 16-byte ceiling: %v", err)
	}

	long := FuzzingDictionary{
		Protocol: "DICOM",
		Entries: []DictionaryEntry{
			{Name: "oversized", Data: "AAAAAAAAAAAAAAAAAAAAAAAAA"},
		},
	}
	err := long.CheckEntrySizes(16)
	var enc *EncodingError
	if !errors.As(err, &enc) {
		t.Fatalf("expected EncodingError, got %v", err)
	}
}

func TestTestCaseValidate(t *testing.T) {
	tc := TestCase{
		Protocol: "SMTP",
		Sequences: []ConcreteSequence{
			{SequenceID: "1", Messages: []ConcreteMessage{{Message: "HELO example.com"}}},
		},
	}
	if err := tc.Validate(); err != nil {
		t.Fatalf("valid test case: %v", err)
	}

	hollow := TestCase{Protocol: "SMTP", Sequences: []ConcreteSequence{{SequenceID: "1"}}}
	if err := hollow.Validate(); err == nil {
		t.Fatalf("expected error for sequence without messages")
	}
}
