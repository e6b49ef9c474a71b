package connect

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestWithRetry_SucceedsAfterFailures(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), Options{
		Name:     "broker",
		Attempts: 5,
		Delay:    time.Millisecond,
		Log:      zerolog.Nop(),
	}, func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("refused")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestWithRetry_Exhausted(t *testing.T) {
	calls := 0
	refused := errors.New("refused")
	err := WithRetry(context.Background(), Options{
		Name:     "broker",
		Attempts: 5,
		Delay:    time.Millisecond,
		Log:      zerolog.Nop(),
	}, func(context.Context) error {
		calls++
		return refused
	})
	if !errors.Is(err, ErrExhausted) {
		t.Fatalf("expected ErrExhausted, got %v", err)
	}
	if !errors.Is(err, refused) {
		t.Errorf("expected last error to be wrapped, got %v", err)
	}
	if calls != 5 {
		t.Errorf("calls = %d, want 5", calls)
	}
}

func TestWithRetry_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := WithRetry(ctx, Options{
		Name:     "broker",
		Attempts: 5,
		Delay:    time.Hour,
		Log:      zerolog.Nop(),
	}, func(context.Context) error {
		calls++
		cancel()
		return errors.New("refused")
	})
	if err == nil {
		t.Fatal("expected error after cancel")
	}
	if errors.Is(err, ErrExhausted) {
		t.Errorf("cancel must not report exhaustion: %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}
