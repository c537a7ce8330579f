package clipboardx

import (
	"testing"
	"time"
)

func TestWriteFeedsReadFallback(t *testing.T) {
	Write("forwarded lines")
	if got := Read(); got != "forwarded lines" {
		t.Fatalf("expected written text back, got %q", got)
	}
}

func TestWriteAsyncReportsCompletion(t *testing.T) {
	done := WriteAsync("async copy")
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("clipboard write never reported completion")
	}
	if got := Read(); got != "async copy" {
		t.Fatalf("expected async text readable, got %q", got)
	}
}

func TestWriteAsyncChannelIsBuffered(t *testing.T) {
	// Hosts are allowed to drop the channel on the floor; the goroutine
	// must still finish.
	_ = WriteAsync("ignored result")
	deadline := time.Now().Add(5 * time.Second)
	for Read() != "ignored result" {
		if time.Now().After(deadline) {
			t.Fatalf("write did not land, got %q", Read())
		}
		time.Sleep(10 * time.Millisecond)
	}
}
