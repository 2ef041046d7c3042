package artifact

import "fmt"

// UnknownTypeError reports a sequence referencing a type name with no
// structure entry. Callers skip the sequence rather than abort the run.
type UnknownTypeError struct {
	Name string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("artifact: unknown message type %q", e.Name)
}

// EncodingError reports a malformed hybrid-encoded payload or a dictionary
// entry breaching its size ceiling. Never repaired silently.
type EncodingError struct {
	Context string
	Reason  string
}

func (e *EncodingError) Error() string {
	if e.Context == "" {
		return "artifact: " + e.Reason
	}
	return fmt.Sprintf("artifact: %s: %s", e.Context, e.Reason)
}
