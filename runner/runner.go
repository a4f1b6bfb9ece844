// Package runner executes external command-line tools. User-controlled values
// reach a tool only as discrete argv elements, never through a shell.
package runner

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Config holds the configuration for the Runner.
type Config struct {
	// WorkDir is prepended to PATH so helper binaries placed next to the
	// application are found before system-installed versions. Empty means
	// the process working directory.
	WorkDir string

	// MaxConcurrent caps concurrently running subprocesses.
	MaxConcurrent int

	// LaunchesPerMinute throttles subprocess spawns; 0 disables throttling.
	LaunchesPerMinute int
}

type Runner struct {
	workDir string
	sem     *semaphore.Weighted
	limiter *rate.Limiter
	logger  *logrus.Logger
}

func New(cfg Config) (*Runner, error) {
	if cfg.MaxConcurrent <= 0 {
		return nil, fmt.Errorf("max concurrent subprocesses must be positive")
	}

	workDir := cfg.WorkDir
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve working directory: %w", err)
		}
		workDir = wd
	}

	var limiter *rate.Limiter
	if cfg.LaunchesPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.LaunchesPerMinute)/60, cfg.MaxConcurrent)
	}

	return &Runner{
		workDir: workDir,
		sem:     semaphore.NewWeighted(int64(cfg.MaxConcurrent)),
		limiter: limiter,
		logger:  logrus.StandardLogger(),
	}, nil
}

// Run executes command with args and returns its accumulated stdout. A
// non-zero exit or a failure to launch yields a *ToolError. Admission is
// bounded: Run blocks until a subprocess slot is free or ctx is done.
func (r *Runner) Run(ctx context.Context, command string, args []string) ([]byte, error) {
	const op = "Runner.Run"

	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return nil, newToolError(op, err, "subprocess launch throttled")
		}
	}

	if err := r.sem.Acquire(ctx, 1); err != nil {
		return nil, newToolError(op, err, "subprocess slot unavailable")
	}
	defer r.sem.Release(1)

	logger := r.logger.WithFields(logrus.Fields{
		"command": command,
		"args":    args,
	})
	logger.Debug("Executing command")

	cmd := exec.CommandContext(ctx, command, args...)
	cmd.Env = environWithLocalPath(r.workDir)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		stderrOutput := stderr.String()
		logger.WithFields(logrus.Fields{
			"error":  err,
			"stderr": stderrOutput,
		}).Error("Command execution failed")

		if exitErr, ok := err.(*exec.ExitError); ok {
			if diag := firstDiagnostic(stderrOutput); diag != "" {
				return nil, newToolError(op, err, diag)
			}
			return nil, newToolError(op, err,
				fmt.Sprintf("%s exited with code %d", command, exitErr.ExitCode()))
		}
		return nil, newToolError(op, err, fmt.Sprintf("failed to launch %s", command))
	}

	return stdout.Bytes(), nil
}

// environWithLocalPath returns the parent environment with workDir prepended
// to PATH.
func environWithLocalPath(workDir string) []string {
	env := os.Environ()
	for i, kv := range env {
		if strings.HasPrefix(kv, "PATH=") {
			env[i] = "PATH=" + workDir + string(os.PathListSeparator) + kv[len("PATH="):]
			return env
		}
	}
	return append(env, "PATH="+workDir)
}

// firstDiagnostic scans stderr for a recognizable tool failure line, yt-dlp
// "ERROR:" lines and missing-dependency messages in particular.
func firstDiagnostic(stderr string) string {
	for _, line := range strings.Split(stderr, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "ERROR:") ||
			strings.Contains(line, "not found") ||
			strings.Contains(line, "No such file or directory") {
			return line
		}
	}
	return ""
}
