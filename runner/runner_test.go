package runner

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"
)

func newTestRunner(t *testing.T) *Runner {
	t.Helper()
	r, err := New(Config{WorkDir: t.TempDir(), MaxConcurrent: 2})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return r
}

func TestRunCapturesStdout(t *testing.T) {
	r := newTestRunner(t)

	out, err := r.Run(context.Background(), "sh", []string{"-c", "echo hello"})
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if got := strings.TrimSpace(string(out)); got != "hello" {
		t.Errorf("stdout = %q, want %q", got, "hello")
	}
}

func TestRunNonZeroExit(t *testing.T) {
	r := newTestRunner(t)

	_, err := r.Run(context.Background(), "sh", []string{"-c", "echo diagnostic >&2; exit 3"})
	if err == nil {
		t.Fatal("expected error for non-zero exit")
	}

	toolErr, ok := err.(*ToolError)
	if !ok {
		t.Fatalf("expected *ToolError, got %T", err)
	}
	if !strings.Contains(toolErr.Message, "exited with code 3") {
		t.Errorf("unexpected message: %q", toolErr.Message)
	}
}

func TestRunSurfacesStderrSignature(t *testing.T) {
	r := newTestRunner(t)

	_, err := r.Run(context.Background(), "sh",
		[]string{"-c", "echo 'ERROR: unable to extract video data' >&2; exit 1"})
	if err == nil {
		t.Fatal("expected error")
	}

	toolErr, ok := err.(*ToolError)
	if !ok {
		t.Fatalf("expected *ToolError, got %T", err)
	}
	if !strings.Contains(toolErr.Message, "unable to extract video data") {
		t.Errorf("expected stderr signature in message, got %q", toolErr.Message)
	}
}

func TestRunLaunchFailure(t *testing.T) {
	r := newTestRunner(t)

	_, err := r.Run(context.Background(), "definitely-not-a-real-binary", nil)
	if err == nil {
		t.Fatal("expected error for missing binary")
	}

	toolErr, ok := err.(*ToolError)
	if !ok {
		t.Fatalf("expected *ToolError, got %T", err)
	}
	if !strings.Contains(toolErr.Message, "failed to launch") {
		t.Errorf("expected launch failure message, got %q", toolErr.Message)
	}
}

func TestRunRespectsCancelledContext(t *testing.T) {
	r := newTestRunner(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := r.Run(ctx, "sh", []string{"-c", "sleep 5"}); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestEnvironWithLocalPath(t *testing.T) {
	env := environWithLocalPath("/opt/yt-clip")

	var path string
	for _, kv := range env {
		if strings.HasPrefix(kv, "PATH=") {
			path = kv
			break
		}
	}
	if path == "" {
		t.Fatal("PATH missing from environment")
	}
	if !strings.HasPrefix(path, "PATH=/opt/yt-clip") {
		t.Errorf("work dir not prepended to PATH: %q", path)
	}
}

func TestFirstDiagnostic(t *testing.T) {
	tests := []struct {
		name   string
		stderr string
		want   string
	}{
		{
			name:   "ytdlp error line",
			stderr: "WARNING: something\nERROR: Video unavailable\n",
			want:   "ERROR: Video unavailable",
		},
		{
			name:   "missing dependency",
			stderr: "ffprobe and ffmpeg not found. Please install or provide the path\n",
			want:   "ffprobe and ffmpeg not found. Please install or provide the path",
		},
		{
			name:   "no recognizable line",
			stderr: "frame= 100 fps=25\n",
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := firstDiagnostic(tt.stderr); got != tt.want {
				t.Errorf("firstDiagnostic() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRunWaitsForFreeSlot(t *testing.T) {
	r, err := New(Config{WorkDir: t.TempDir(), MaxConcurrent: 1})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	// Hold the only slot so a concurrent Run has nowhere to go.
	if err := r.sem.Acquire(context.Background(), 1); err != nil {
		t.Fatalf("Acquire() failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err = r.Run(ctx, "sh", []string{"-c", "echo blocked"})
	if err == nil {
		t.Fatal("expected error while slot is held")
	}
	if !strings.Contains(err.Error(), "subprocess slot unavailable") {
		t.Errorf("error = %q, want slot unavailable", err)
	}

	r.sem.Release(1)

	if _, err := r.Run(context.Background(), "sh", []string{"-c", "echo freed"}); err != nil {
		t.Errorf("Run() after release failed: %v", err)
	}
}

func TestRunSerializesUnderConcurrencyCap(t *testing.T) {
	r, err := New(Config{WorkDir: t.TempDir(), MaxConcurrent: 1})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	start := time.Now()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = r.Run(context.Background(), "sh", []string{"-c", "sleep 0.3"})
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("Run() %d failed: %v", i, err)
		}
	}
	// Two 300ms subprocesses through a single slot cannot overlap.
	if elapsed := time.Since(start); elapsed < 500*time.Millisecond {
		t.Errorf("elapsed = %v, want at least 500ms for serialized runs", elapsed)
	}
}

func TestRunThrottlesLaunchBurst(t *testing.T) {
	// One launch per second with a single-token bucket.
	r, err := New(Config{WorkDir: t.TempDir(), MaxConcurrent: 1, LaunchesPerMinute: 60})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	if _, err := r.Run(context.Background(), "sh", []string{"-c", ":"}); err != nil {
		t.Fatalf("first Run() failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err = r.Run(ctx, "sh", []string{"-c", ":"})
	if err == nil {
		t.Fatal("expected throttle error for immediate second launch")
	}
	if !strings.Contains(err.Error(), "subprocess launch throttled") {
		t.Errorf("error = %q, want launch throttled", err)
	}
}
