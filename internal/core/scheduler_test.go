package core

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"
)

// syncBuffer is a bytes.Buffer safe for one writer and one reader.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestService_StartStatusReporter(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	var buf syncBuffer
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))

	svc := NewService(newMemStore(), &fakeScanner{raw: validRaw("x")}, nil, UpdateAsync)
	if _, err := svc.RunValidationJob(context.Background(), testResource); err != nil {
		t.Fatalf("RunValidationJob() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.StartStatusReporter(ctx, time.Hour)
		close(done)
	}()

	// The first report runs immediately.
	deadline := time.Now().Add(time.Second)
	for !strings.Contains(buf.String(), "validation records") && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	cancel()
	<-done

	out := buf.String()
	if !strings.Contains(out, "success=1") {
		t.Errorf("log output %q has no success count", out)
	}
	if !strings.Contains(out, "status reporter stopped") {
		t.Errorf("log output %q has no stop entry", out)
	}
}
