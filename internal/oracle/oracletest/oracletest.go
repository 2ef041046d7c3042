// Package oracletest provides a scripted, deterministic Oracle substitute
// for tests. Invocations are routed by response-schema name.
package oracletest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/danmuck/corpusgen/internal/oracle"
)

// Responder produces one scripted response for a prompt.
type Responder func(prompt string) (json.RawMessage, error)

// Script is an oracle.Oracle whose answers are keyed by schema name.
type Script struct {
	mu       sync.Mutex
	handlers map[string]Responder
	calls    map[string]int
}

func New() *Script {
	return &Script{
		handlers: make(map[string]Responder),
		calls:    make(map[string]int),
	}
}

// Handle installs a responder for a schema name.
func (s *Script) Handle(schema string, fn Responder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[schema] = fn
}

// Respond installs a responder that always returns v marshaled as JSON.
func (s *Script) Respond(schema string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	s.Handle(schema, func(string) (json.RawMessage, error) {
		return json.RawMessage(data), nil
	})
}

// Fail installs a responder that always fails with err.
func (s *Script) Fail(schema string, err error) {
	s.Handle(schema, func(string) (json.RawMessage, error) {
		return nil, err
	})
}

// FailThenRespond fails the first n invocations, then returns v.
func (s *Script) FailThenRespond(schema string, n int, failErr error, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	var count int
	var mu sync.Mutex
	s.Handle(schema, func(string) (json.RawMessage, error) {
		mu.Lock()
		defer mu.Unlock()
		count++
		if count <= n {
			return nil, failErr
		}
		return json.RawMessage(data), nil
	})
}

// Calls reports how many invocations a schema name received.
func (s *Script) Calls(schema string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[schema]
}

func (s *Script) Invoke(ctx context.Context, req oracle.Request) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.calls[req.Schema.Name]++
	fn, ok := s.handlers[req.Schema.Name]
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("oracletest: no responder for schema %q", req.Schema.Name)
	}
	return fn(req.Prompt)
}
