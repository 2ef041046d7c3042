package oracle_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"

	"github.com/danmuck/corpusgen/internal/oracle"
	"github.com/danmuck/corpusgen/internal/oracle/oracletest"
)

type greeting struct {
	Word string `json:"word"`
}

func (g *greeting) Validate() error {
	if g.Word == "" {
		return errors.New("empty word")
	}
	return nil
}

var greetingSchema = oracle.MustSchemaFor("greeting", greeting{})

func call() oracle.Call {
	return oracle.Call{
		Stage:    "greeting",
		Protocol: "SMTP",
		Request:  oracle.Request{Prompt: "say hello", Schema: greetingSchema},
	}
}

func TestRetryBound(t *testing.T) {
	script := oracletest.New()
	script.Fail("greeting", errors.New("connection reset"))
	client := oracle.NewClient(script, 3, zerolog.Nop())

	var out greeting
	err := oracle.Generate(context.Background(), client, call(), &out)

	var exhausted oracle.ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("expected ExhaustedError, got %v", err)
	}
	if exhausted.Stage != "greeting" || exhausted.Protocol != "SMTP" {
		t.Fatalf("exhausted identity: %+v", exhausted)
	}
	if exhausted.Attempts != 3 {
		t.Fatalf("attempts: %d", exhausted.Attempts)
	}
	if got := script.Calls("greeting"); got != 3 {
		t.Fatalf("oracle invoked %d times, want exactly 3", got)
	}
	var transport oracle.TransportError
	if !errors.As(err, &transport) {
		t.Fatalf("expected wrapped TransportError, got %v", err)
	}
}

func TestShortCircuitOnFirstSuccess(t *testing.T) {
	script := oracletest.New()
	script.Respond("greeting", greeting{Word: "hello"})
	client := oracle.NewClient(script, 3, zerolog.Nop())

	var out greeting
	if err := oracle.Generate(context.Background(), client, call(), &out); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if out.Word != "hello" {
		t.Fatalf("out: %+v", out)
	}
	if got := script.Calls("greeting"); got != 1 {
		t.Fatalf("oracle invoked %d times, want 1", got)
	}
}

func TestRecoveryAfterTransientFailure(t *testing.T) {
	script := oracletest.New()
	script.FailThenRespond("greeting", 2, errors.New("timeout"), greeting{Word: "hello"})
	client := oracle.NewClient(script, 3, zerolog.Nop())

	var out greeting
	if err := oracle.Generate(context.Background(), client, call(), &out); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if got := script.Calls("greeting"); got != 3 {
		t.Fatalf("oracle invoked %d times, want 3", got)
	}
}

func TestMalformedOutputIsSchemaViolation(t *testing.T) {
	script := oracletest.New()
	script.Handle("greeting", func(string) (json.RawMessage, error) {
		return json.RawMessage("not json"), nil
	})
	client := oracle.NewClient(script, 2, zerolog.Nop())

	var out greeting
	err := oracle.Generate(context.Background(), client, call(), &out)
	var schemaErr oracle.SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected SchemaError in chain, got %v", err)
	}
	if got := script.Calls("greeting"); got != 2 {
		t.Fatalf("schema violations must be retried: %d calls", got)
	}
}

func TestValidatorRejectionIsRetried(t *testing.T) {
	script := oracletest.New()
	script.Respond("greeting", greeting{Word: ""})
	client := oracle.NewClient(script, 3, zerolog.Nop())

	var out greeting
	err := oracle.Generate(context.Background(), client, call(), &out)
	var schemaErr oracle.SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
	if got := script.Calls("greeting"); got != 3 {
		t.Fatalf("oracle invoked %d times, want 3", got)
	}
}

func TestCheckHookFailureIsRetried(t *testing.T) {
	script := oracletest.New()
	script.Respond("greeting", greeting{Word: "hello"})
	client := oracle.NewClient(script, 3, zerolog.Nop())

	c := call()
	c.Check = func(out any) error {
		return fmt.Errorf("want goodbye, got %q", out.(*greeting).Word)
	}
	var out greeting
	err := oracle.Generate(context.Background(), client, c, &out)
	var exhausted oracle.ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("expected ExhaustedError, got %v", err)
	}
	if got := script.Calls("greeting"); got != 3 {
		t.Fatalf("oracle invoked %d times, want 3", got)
	}
}

func TestCanceledContextStopsAttempts(t *testing.T) {
	script := oracletest.New()
	script.Respond("greeting", greeting{Word: "hello"})
	client := oracle.NewClient(script, 3, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var out greeting
	err := oracle.Generate(ctx, client, call(), &out)
	var exhausted oracle.ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("expected ExhaustedError, got %v", err)
	}
	if got := script.Calls("greeting"); got != 0 {
		t.Fatalf("canceled context must not invoke the oracle, got %d calls", got)
	}
	if exhausted.Attempts != 0 {
		t.Fatalf("attempts: %d, want 0 for a pre-canceled context", exhausted.Attempts)
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("cancellation cause missing from chain: %v", err)
	}
}
