// Package downloader wraps the external YouTube downloader tool (yt-dlp) to
// resolve video metadata and direct media-stream URLs.
package downloader

import (
	"context"
	"encoding/json"

	"yt-clip/models"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// formatSelector caps the output profile at 1080p and prefers mp4/m4a so the
// extraction step can stream-copy video without a re-encode.
const formatSelector = "bestvideo[height<=1080][ext=mp4]+bestaudio[ext=m4a]/best[height<=1080][ext=mp4]/best[height<=1080]"

// CommandRunner executes an external command and returns its stdout.
type CommandRunner interface {
	Run(ctx context.Context, command string, args []string) ([]byte, error)
}

// Config holds the configuration for the Fetcher.
type Config struct {
	BinaryPath string
	UserAgent  string
}

type Fetcher struct {
	runner CommandRunner
	config Config
	logger *logrus.Logger
}

func NewFetcher(r CommandRunner, cfg Config) *Fetcher {
	return &Fetcher{
		runner: r,
		config: cfg,
		logger: logrus.StandardLogger(),
	}
}

// dumpResult is the subset of the tool's JSON dump this system reads. When
// the best format is not pre-muxed the top-level url is absent and the
// resolved stream URLs arrive per requested format instead.
type dumpResult struct {
	Title     string  `json:"title"`
	Thumbnail string  `json:"thumbnail"`
	Duration  float64 `json:"duration"`
	Channel   string  `json:"channel"`
	Uploader  string  `json:"uploader"`
	Width     int     `json:"width"`
	Height    int     `json:"height"`
	URL       string  `json:"url"`

	RequestedFormats []struct {
		URL    string `json:"url"`
		VCodec string `json:"vcodec"`
		ACodec string `json:"acodec"`
	} `json:"requested_formats"`
}

// FetchMetadata runs the downloader against url and parses its metadata dump.
// No file is downloaded; only descriptive fields and short-lived stream
// locators are resolved.
func (f *Fetcher) FetchMetadata(ctx context.Context, url string) (*models.VideoMetadata, error) {
	args := f.buildArgs(url)

	f.logger.WithFields(logrus.Fields{
		"url":  url,
		"args": args,
	}).Debug("Resolving video metadata")

	output, err := f.runner.Run(ctx, f.config.BinaryPath, args)
	if err != nil {
		return nil, err
	}

	return parseDump(url, output)
}

func (f *Fetcher) buildArgs(url string) []string {
	args := []string{
		"--dump-json",
		"--no-playlist",
		"--format", formatSelector,
	}
	if f.config.UserAgent != "" {
		args = append(args, "--user-agent", f.config.UserAgent)
	}
	return append(args, url)
}

func parseDump(url string, output []byte) (*models.VideoMetadata, error) {
	var dump dumpResult
	if err := json.Unmarshal(output, &dump); err != nil {
		return nil, errors.Wrap(err, "failed to parse downloader output")
	}

	meta := &models.VideoMetadata{
		URL:       url,
		Title:     dump.Title,
		Thumbnail: dump.Thumbnail,
		Duration:  int(dump.Duration),
		Channel:   dump.Channel,
		Width:     dump.Width,
		Height:    dump.Height,
	}
	if meta.Channel == "" {
		meta.Channel = dump.Uploader
	}

	switch {
	case len(dump.RequestedFormats) > 0:
		for _, format := range dump.RequestedFormats {
			if format.VCodec != "" && format.VCodec != "none" {
				meta.VideoStreamURL = format.URL
			} else if format.ACodec != "" && format.ACodec != "none" {
				meta.AudioStreamURL = format.URL
			}
		}
	case dump.URL != "":
		// Pre-muxed format: one locator carries both tracks.
		meta.VideoStreamURL = dump.URL
		meta.AudioStreamURL = dump.URL
	}

	if meta.VideoStreamURL == "" {
		return nil, errors.New("downloader output contains no stream URL")
	}
	if meta.AudioStreamURL == "" {
		meta.AudioStreamURL = meta.VideoStreamURL
	}

	return meta, nil
}
