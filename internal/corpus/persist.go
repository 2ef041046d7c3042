// Package corpus owns the on-disk fuzzing corpus: raw seed files assembled
// from concrete message sequences, and AFL-style dictionary files.
//
// Ownership boundary:
// - corpus file naming and numbering
// - message framing on write (terminators)
// - dictionary file format and escaping
package corpus

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/danmuck/corpusgen/internal/artifact"
	"github.com/danmuck/corpusgen/internal/hybrid"
)

// Persist writes every concrete sequence of every test case as one raw
// corpus file under dir. Numbering continues past whatever new_<n>.raw files
// already exist, so repeated runs extend the corpus instead of clobbering
// it. Returns the number of files written.
func Persist(dir string, cases []artifact.TestCase) (int, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("corpus: create %s: %w", dir, err)
	}
	next := 1
	written := 0
	for _, tc := range cases {
		for _, seq := range tc.Sequences {
			path, n := nextFree(dir, next)
			if err := os.WriteFile(path, Assemble(seq), 0o644); err != nil {
				return written, fmt.Errorf("corpus: write %s: %w", path, err)
			}
			next = n + 1
			written++
		}
	}
	return written, nil
}

// Assemble concatenates a sequence's messages into one raw payload. Binary
// messages always get a CRLF terminator; text messages get one unless they
// already end in a newline of their own.
func Assemble(seq artifact.ConcreteSequence) []byte {
	var buf []byte
	for _, msg := range seq.Messages {
		buf = append(buf, hybrid.Encode(msg.Message)...)
		if msg.IsBinary || !strings.HasSuffix(msg.Message, "\n") {
			buf = append(buf, '\r', '\n')
		}
	}
	return buf
}

// nextFree finds the first unoccupied new_<n>.raw slot at or past from.
// Checked per file, so gaps in an existing corpus are filled without
// touching the occupied slots around them.
func nextFree(dir string, from int) (string, int) {
	for {
		path := filepath.Join(dir, fmt.Sprintf("new_%d.raw", from))
		if _, err := os.Stat(path); err != nil {
			return path, from
		}
		from++
	}
}

// WriteDictionary writes the dictionary in AFL keyword format, one
// name="escaped payload" line per entry, names sanitized and entries sorted
// by name for stable output.
func WriteDictionary(path string, dict artifact.FuzzingDictionary) error {
	entries := make([]artifact.DictionaryEntry, len(dict.Entries))
	copy(entries, dict.Entries)
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })

	var b strings.Builder
	fmt.Fprintf(&b, "# %s fuzzing dictionary\n", dict.Protocol)
	for _, e := range entries {
		fmt.Fprintf(&b, "%s=\"%s\"\n", sanitizeName(e.Name), escape(hybrid.Encode(e.Data)))
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("corpus: create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("corpus: write dictionary %s: %w", path, err)
	}
	return nil
}

// sanitizeName maps an entry name to the keyword charset dictionary parsers
// accept.
func sanitizeName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "entry"
	}
	return b.String()
}

// escape renders payload bytes for a quoted dictionary value: printable
// ASCII stays literal, quotes and backslashes get a backslash, everything
// else becomes \xHH.
func escape(data []byte) string {
	var b strings.Builder
	for _, c := range data {
		switch {
		case c == '"' || c == '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case c >= 0x20 && c <= 0x7e:
			b.WriteByte(c)
		default:
			fmt.Fprintf(&b, "\\x%02x", c)
		}
	}
	return b.String()
}
