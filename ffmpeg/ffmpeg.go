// Package ffmpeg wraps the external transcoder tool for segment extraction
// and aspect-ratio cropping.
package ffmpeg

import (
	"context"
	"strconv"

	"yt-clip/models"

	"github.com/sirupsen/logrus"
)

// CommandRunner executes an external command and returns its stdout.
type CommandRunner interface {
	Run(ctx context.Context, command string, args []string) ([]byte, error)
}

// Config holds the configuration for the Transcoder.
type Config struct {
	BinaryPath string
	UserAgent  string
}

type Transcoder struct {
	runner CommandRunner
	config Config
	logger *logrus.Logger
}

func NewTranscoder(r CommandRunner, cfg Config) *Transcoder {
	return &Transcoder{
		runner: r,
		config: cfg,
		logger: logrus.StandardLogger(),
	}
}

// ExtractSegment pulls [startSec, startSec+durationSec) from the given stream
// locators into outputPath. Video is stream-copied (extraction is meant to be
// fast and lossless; any re-encode happens at crop time), audio is normalized
// to AAC for broad playability, and the container is written fast-start so
// the result previews immediately.
func (t *Transcoder) ExtractSegment(
	ctx context.Context,
	videoURL, audioURL string,
	startSec, durationSec int,
	outputPath string,
) error {
	args := t.buildExtractArgs(videoURL, audioURL, startSec, durationSec, outputPath)

	t.logger.WithFields(logrus.Fields{
		"start":    startSec,
		"duration": durationSec,
		"output":   outputPath,
	}).Debug("Extracting segment")

	_, err := t.runner.Run(ctx, t.config.BinaryPath, args)
	return err
}

// Crop produces outputPath from inputPath per spec. A 16:9 target is a pure
// stream copy; any other ratio re-encodes video with a speed-first preset and
// copies audio unchanged.
func (t *Transcoder) Crop(
	ctx context.Context,
	inputPath, outputPath string,
	spec models.CropSpec,
) error {
	args := buildCropArgs(inputPath, outputPath, spec)

	t.logger.WithFields(logrus.Fields{
		"input":  inputPath,
		"ratio":  spec.Ratio,
		"output": outputPath,
	}).Debug("Cropping clip")

	_, err := t.runner.Run(ctx, t.config.BinaryPath, args)
	return err
}

func (t *Transcoder) buildExtractArgs(
	videoURL, audioURL string,
	startSec, durationSec int,
	outputPath string,
) []string {
	start := strconv.Itoa(startSec)
	duration := strconv.Itoa(durationSec)

	var args []string
	input := func(url string) {
		if t.config.UserAgent != "" {
			args = append(args, "-user_agent", t.config.UserAgent)
		}
		args = append(args, "-ss", start, "-t", duration, "-i", url)
	}

	input(videoURL)
	if audioURL != videoURL {
		input(audioURL)
		args = append(args, "-map", "0:v:0", "-map", "1:a:0")
	}

	args = append(args,
		"-c:v", "copy",
		"-c:a", "aac",
		"-b:a", "128k",
		"-movflags", "+faststart",
		"-y", outputPath,
	)
	return args
}

func buildCropArgs(inputPath, outputPath string, spec models.CropSpec) []string {
	args := []string{"-i", inputPath}

	if spec.NeedsReencode() {
		args = append(args,
			"-vf", CropFilter(spec),
			"-c:v", "libx264",
			"-preset", "ultrafast",
			"-c:a", "copy",
		)
	} else {
		args = append(args, "-c", "copy")
	}

	return append(args, "-movflags", "+faststart", "-y", outputPath)
}

// CropFilter renders the symmetric-crop expression for spec. Output width is
// derived from source height and the target ratio, full height is kept, and
// the horizontal offset walks the slack width by position percent, so the
// caller picks which slice of a wider source survives.
func CropFilter(spec models.CropSpec) string {
	w, h := spec.Ratio.Fraction()
	width := "ih*" + strconv.Itoa(w) + "/" + strconv.Itoa(h)
	offset := "(iw-" + width + ")*" + strconv.FormatFloat(spec.Position, 'f', -1, 64) + "/100"
	return "crop=" + width + ":ih:" + offset + ":0"
}

// CropWidth is the concrete-pixel counterpart of the filter's width term.
func CropWidth(srcHeight int, ratio models.AspectRatio) int {
	w, h := ratio.Fraction()
	return srcHeight * w / h
}

// CropOffsetX is the concrete-pixel counterpart of the filter's offset term:
// (iw-ow)*position/100.
func CropOffsetX(srcWidth, srcHeight int, ratio models.AspectRatio, position float64) int {
	return int(float64(srcWidth-CropWidth(srcHeight, ratio)) * position / 100)
}
