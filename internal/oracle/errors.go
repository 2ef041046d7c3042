package oracle

import "fmt"

// TransportError is a timeout or transport-level failure from the oracle.
// Always retried up to the bound.
type TransportError struct {
	Err error
}

func (e TransportError) Error() string {
	return fmt.Sprintf("oracle: transport failure: %v", e.Err)
}

func (e TransportError) Unwrap() error { return e.Err }

// SchemaError is oracle output that does not conform to the expected shape.
// Retried exactly like a transport failure.
type SchemaError struct {
	Reason string
	Err    error
}

func (e SchemaError) Error() string {
	if e.Err == nil {
		return "oracle: schema violation: " + e.Reason
	}
	return fmt.Sprintf("oracle: schema violation: %s: %v", e.Reason, e.Err)
}

func (e SchemaError) Unwrap() error { return e.Err }

// ExhaustedError reports a stage call that consumed every retry. It names
// the stage and protocol so the orchestrator can log and route the failure.
type ExhaustedError struct {
	Stage    string
	Protocol string
	Attempts int
	Err      error
}

func (e ExhaustedError) Error() string {
	return fmt.Sprintf("oracle: %s generation for %s exhausted after %d attempts: %v",
		e.Stage, e.Protocol, e.Attempts, e.Err)
}

func (e ExhaustedError) Unwrap() error { return e.Err }
