package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"
)

// DefaultMaxRetries bounds sequential attempts for one stage call.
const DefaultMaxRetries = 3

// Validator is implemented by artifacts that check their own shape after
// decoding. A failing validation counts as a schema violation.
type Validator interface {
	Validate() error
}

// Call is one stage-level generation request. Check is an optional extra
// validation hook run against the decoded artifact on every attempt; a Check
// failure is a schema violation and triggers a retry like any other.
type Call struct {
	Stage    string
	Protocol string
	Request  Request
	Timeout  time.Duration
	Check    func(out any) error
}

// Client wraps an Oracle with the bounded retry policy: at most MaxRetries
// sequential attempts, first success wins, no backoff, no merging of
// partial results. Attempts are independent; nothing guarantees two
// attempts agree with each other.
type Client struct {
	oracle  Oracle
	retries int
	log     zerolog.Logger
}

// NewClient builds a retrying client; retries <= 0 selects the default.
func NewClient(o Oracle, retries int, log zerolog.Logger) *Client {
	if retries <= 0 {
		retries = DefaultMaxRetries
	}
	return &Client{oracle: o, retries: retries, log: log}
}

// Generate runs one stage call against the oracle and decodes the result
// into a fresh T. All retries consumed surfaces an ExhaustedError naming the
// stage, the protocol, and the number of attempts actually issued (zero when
// the context was canceled before the first attempt).
func Generate[T any](ctx context.Context, c *Client, call Call, out *T) error {
	var lastErr error
	attempts := 0
	for attempts < c.retries {
		if err := ctx.Err(); err != nil {
			lastErr = TransportError{Err: err}
			break
		}
		attempts++
		var result T
		err := c.attempt(ctx, call, &result)
		if err == nil {
			*out = result
			return nil
		}
		lastErr = err
		c.log.Warn().
			Err(err).
			Str("stage", call.Stage).
			Str("protocol", call.Protocol).
			Int("attempt", attempts).
			Int("max_attempts", c.retries).
			Msg("oracle attempt failed")
	}
	return ExhaustedError{
		Stage:    call.Stage,
		Protocol: call.Protocol,
		Attempts: attempts,
		Err:      lastErr,
	}
}

func (c *Client) attempt(ctx context.Context, call Call, out any) error {
	actx := ctx
	if call.Timeout > 0 {
		var cancel context.CancelFunc
		actx, cancel = context.WithTimeout(ctx, call.Timeout)
		defer cancel()
	}

	raw, err := c.oracle.Invoke(actx, call.Request)
	if err != nil {
		var te TransportError
		var se SchemaError
		if errors.As(err, &te) || errors.As(err, &se) {
			return err
		}
		return TransportError{Err: err}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return SchemaError{Reason: "malformed oracle output", Err: err}
	}
	if v, ok := out.(Validator); ok {
		if err := v.Validate(); err != nil {
			return SchemaError{Reason: "artifact validation failed", Err: err}
		}
	}
	if call.Check != nil {
		if err := call.Check(out); err != nil {
			return SchemaError{Reason: "stage validation failed", Err: err}
		}
	}
	return nil
}
