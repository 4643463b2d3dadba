package logs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"tether/internal/logs"
)

func TestTailLastLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backend.log")
	if err := os.WriteFile(path, []byte("a\nb\nc\npartial"), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}

	result, err := logs.Tail(context.Background(), path, logs.TailOptions{Offset: -1, Limit: 2})
	if err != nil {
		t.Fatalf("tail returned error: %v", err)
	}
	if len(result.Lines) != 2 || result.Lines[0] != "b" || result.Lines[1] != "c" {
		t.Fatalf("unexpected lines: %#v", result.Lines)
	}
	if result.Offset != int64(len("a\nb\nc\n")) {
		t.Fatalf("expected offset before the partial line, got %d", result.Offset)
	}
}

func TestTailMissingFile(t *testing.T) {
	result, err := logs.Tail(context.Background(), filepath.Join(t.TempDir(), "absent.log"), logs.TailOptions{Offset: -1, Limit: 5})
	if err != nil {
		t.Fatalf("tail returned error: %v", err)
	}
	if len(result.Lines) != 0 || result.Offset != 0 {
		t.Fatalf("unexpected result %#v", result)
	}
}

func TestTailFollowWaits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tether.log")
	if err := os.WriteFile(path, []byte("start\n"), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}

	first, err := logs.Tail(context.Background(), path, logs.TailOptions{Offset: -1, Limit: 1})
	if err != nil || len(first.Lines) != 1 {
		t.Fatalf("initial tail: %#v, %v", first, err)
	}

	done := make(chan logs.TailResult, 1)
	go func() {
		res, err := logs.Tail(context.Background(), path, logs.TailOptions{
			Offset: first.Offset,
			Wait:   5 * time.Second,
			Poll:   10 * time.Millisecond,
		})
		if err != nil {
			t.Errorf("follow tail error: %v", err)
		}
		done <- res
	}()

	time.Sleep(30 * time.Millisecond)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	if _, err := f.WriteString("later\n"); err != nil {
		t.Fatalf("append: %v", err)
	}
	f.Close()

	select {
	case res := <-done:
		if len(res.Lines) != 1 || res.Lines[0] != "later" {
			t.Fatalf("unexpected follow lines: %#v", res.Lines)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("follow tail did not return")
	}
}

func TestTailWaitTimesOutWithoutLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tether.log")
	if err := os.WriteFile(path, []byte("only\n"), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
	res, err := logs.Tail(context.Background(), path, logs.TailOptions{Offset: 5, Wait: 30 * time.Millisecond, Poll: 5 * time.Millisecond})
	if err != nil {
		t.Fatalf("tail: %v", err)
	}
	if len(res.Lines) != 0 || res.Offset != 5 {
		t.Fatalf("unexpected result %#v", res)
	}
}
