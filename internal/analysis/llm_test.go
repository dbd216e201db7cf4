package analysis

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestStripCodeFences(t *testing.T) {
	in := "```json\n{\"a\":1}\n```"
	got := stripCodeFences(in)
	if got != "{\"a\":1}" {
		t.Fatalf("unexpected: %q", got)
	}
}

func TestBackoffDelay(t *testing.T) {
	if backoffDelay(1).Seconds() != 1 {
		t.Fatal("attempt 1 should be 1s")
	}
	if backoffDelay(2).Seconds() != 2 {
		t.Fatal("attempt 2 should be 2s")
	}
}

func TestClassifyTransportErrorAvoidsBroadNumericMatch(t *testing.T) {
	err := classifyTransportError(assertErr("failed after 5 retries while waiting 4 seconds"))
	if err != failureServer {
		t.Fatalf("expected default server classification, got %v", err)
	}
	err = classifyTransportError(assertErr("status code: 400 bad request"))
	if err != failureClient {
		t.Fatalf("expected client failure classification, got %v", err)
	}
	err = classifyTransportError(assertErr("status=500 upstream error"))
	if err != failureServer {
		t.Fatalf("expected server failure classification, got %v", err)
	}
	err = classifyTransportError(assertErr("429 too many requests"))
	if err != failureRateLimit {
		t.Fatalf("expected rate limit classification, got %v", err)
	}
}

func TestClassifyTransportErrorCancellation(t *testing.T) {
	if got := classifyTransportError(context.Canceled); got != failureCanceled {
		t.Fatalf("expected cancellation classification, got %v", got)
	}
	wrapped := fmt.Errorf("post failed: %w", context.Canceled)
	if got := classifyTransportError(wrapped); got != failureCanceled {
		t.Fatalf("expected cancellation classification for wrapped error, got %v", got)
	}
}

type erroringCaller struct {
	err   error
	calls int
}

func (c *erroringCaller) GenerateJSON(context.Context, string) (string, error) {
	c.calls++
	return "", c.err
}

func TestRunStopsImmediatelyOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	caller := &erroringCaller{err: fmt.Errorf("post failed: %w", context.Canceled)}
	exec := NewStageExecutor(caller)

	start := time.Now()
	var out struct{}
	metrics, err := exec.Run(ctx, StageStructuredAnalysis, "prompt", &out, func() error { return nil })
	if err == nil {
		t.Fatal("expected error from cancelled context")
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled in chain", err)
	}
	if caller.calls != 1 || metrics.Attempts != 1 {
		t.Fatalf("calls = %d attempts = %d, want 1 and 1", caller.calls, metrics.Attempts)
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Fatalf("run backed off for %v against a dead context", elapsed)
	}
}

func TestRunDoesNotRetryCancellationError(t *testing.T) {
	caller := &erroringCaller{err: fmt.Errorf("post failed: %w", context.Canceled)}
	exec := NewStageExecutor(caller)

	var out struct{}
	_, err := exec.Run(context.Background(), StageStructuredAnalysis, "prompt", &out, func() error { return nil })
	if err == nil {
		t.Fatal("expected error")
	}
	if caller.calls != 1 {
		t.Fatalf("calls = %d, want 1", caller.calls)
	}
}

func TestNewAnthropicCallerFromEnvMissingKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	if _, err := NewAnthropicCallerFromEnv(); err == nil {
		t.Fatal("expected error without ANTHROPIC_API_KEY")
	}
	if _, err := NewAnthropicNarratorFromEnv(); err == nil {
		t.Fatal("expected narrator error without ANTHROPIC_API_KEY")
	}
}

type assertErr string

func (e assertErr) Error() string { return string(e) }
