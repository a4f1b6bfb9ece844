package clip

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

// Janitor sweeps the clips directory and removes transient files that
// outlived their useful window. Files are normally deleted right after
// delivery; the sweep is the backstop for crashed or abandoned requests.
type Janitor struct {
	dir      string
	maxAge   time.Duration
	interval time.Duration
	logger   *logrus.Logger
	clock    func() time.Time
}

func NewJanitor(dir string, maxAge, interval time.Duration) *Janitor {
	return &Janitor{
		dir:      dir,
		maxAge:   maxAge,
		interval: interval,
		logger:   logrus.StandardLogger(),
		clock:    time.Now,
	}
}

// Run sweeps periodically until ctx is done.
func (j *Janitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.Sweep()
		}
	}
}

// Sweep removes clip files older than maxAge. Failures are logged, never
// fatal.
func (j *Janitor) Sweep() {
	entries, err := os.ReadDir(j.dir)
	if err != nil {
		j.logger.WithError(err).Warn("Failed to read clips directory")
		return
	}

	cutoff := j.clock().Add(-j.maxAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}

		path := filepath.Join(j.dir, entry.Name())
		if err := os.Remove(path); err != nil {
			j.logger.WithError(err).WithField("path", path).Warn("Failed to remove stale clip")
			continue
		}
		removed++
	}

	if removed > 0 {
		j.logger.WithField("removed", removed).Info("Swept stale clip files")
	}
}
