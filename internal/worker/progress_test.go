package worker

import (
	"bytes"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestProgress_Throttled(t *testing.T) {
	var buf bytes.Buffer
	var mu sync.Mutex
	logger := slog.New(slog.NewTextHandler(&lockedWriter{w: &buf, mu: &mu}, nil))

	p := NewProgress(100, time.Hour, logger)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Done("doc")
		}()
	}
	wg.Wait()

	if p.Count() != 100 {
		t.Errorf("expected 100 completions, got %d", p.Count())
	}

	mu.Lock()
	out := buf.String()
	mu.Unlock()

	// First completion and the final one; the hour-long interval suppresses the rest
	if n := strings.Count(out, "normalizing documents"); n != 1 {
		t.Errorf("expected 1 throttled progress line, got %d:\n%s", n, out)
	}
	if n := strings.Count(out, "msg=\"normalized documents\""); n != 1 {
		t.Errorf("expected 1 completion line, got %d:\n%s", n, out)
	}
}

type lockedWriter struct {
	w  *bytes.Buffer
	mu *sync.Mutex
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
