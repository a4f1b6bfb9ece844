package clip

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"yt-clip/cache"
	"yt-clip/errors"
	"yt-clip/models"
	"yt-clip/timecode"
	"yt-clip/validation"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type service struct {
	cache      *cache.MetadataCache
	fetcher    MetadataFetcher
	transcoder Transcoder
	validator  *validation.Validator
	config     Config
	logger     *logrus.Logger

	clock func() time.Time
	idGen func() uuid.UUID
}

func NewService(
	metadataCache *cache.MetadataCache,
	fetcher MetadataFetcher,
	transcoder Transcoder,
	validator *validation.Validator,
	config Config,
) Service {
	return &service{
		cache:      metadataCache,
		fetcher:    fetcher,
		transcoder: transcoder,
		validator:  validator,
		config:     config,
		logger:     logrus.StandardLogger(),
		clock:      time.Now,
		idGen:      uuid.New,
	}
}

func (s *service) ResolveMetadata(ctx context.Context, url string) (*models.VideoInfo, error) {
	const op = "ClipService.ResolveMetadata"
	logger := s.logger.WithFields(logrus.Fields{
		"operation": op,
		"url":       url,
	})

	if err := s.validator.ValidateURL(url); err != nil {
		logger.WithError(err).Info("URL validation failed")
		return nil, err
	}

	if meta, ok := s.cache.Get(url); ok {
		logger.Debug("Metadata cache hit")
		return models.NewVideoInfo(meta), nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.ProcessTimeout)
	defer cancel()

	logger.Info("Resolving video metadata")
	meta, err := s.fetcher.FetchMetadata(ctx, url)
	if err != nil {
		logger.WithError(err).Error("Metadata resolution failed")
		return nil, errors.Internal(op, err, "Video metadata is unavailable")
	}

	s.cache.Put(url, meta)

	return models.NewVideoInfo(meta), nil
}

func (s *service) ExtractSegment(ctx context.Context, url, startText, endText string) (*models.Clip, error) {
	const op = "ClipService.ExtractSegment"
	logger := s.logger.WithFields(logrus.Fields{
		"operation": op,
		"url":       url,
	})

	if err := s.validator.ValidateURL(url); err != nil {
		logger.WithError(err).Info("URL validation failed")
		return nil, err
	}

	// Extraction must use locators from the same session as the duration
	// check the caller performed; a stale entry is never silently re-resolved.
	meta, ok := s.cache.Get(url)
	if !ok {
		logger.Info("No fresh metadata for extraction")
		return nil, errors.SessionExpired(op, "Session expired, please reload video info")
	}

	start := timecode.Parse(startText)
	end := timecode.Parse(endText)
	if err := s.validateRange(start, end, meta.Duration); err != nil {
		logger.WithError(err).Info("Time range validation failed")
		return nil, err
	}
	duration := end - start

	filename := s.generateFilename("clip")
	outputPath := filepath.Join(s.config.ClipsDir, filename)

	ctx, cancel := context.WithTimeout(ctx, s.config.ProcessTimeout)
	defer cancel()

	logger.WithFields(logrus.Fields{
		"start":    timecode.Format(start),
		"end":      timecode.Format(end),
		"filename": filename,
	}).Info("Extracting segment")

	err := s.transcoder.ExtractSegment(ctx, meta.VideoStreamURL, meta.AudioStreamURL, start, duration, outputPath)
	if err != nil {
		s.removeQuietly(outputPath)
		return nil, errors.Internal(op, err, "Failed to extract segment")
	}

	if _, err := os.Stat(outputPath); err != nil {
		return nil, errors.Internal(op, err, "Extraction produced no output")
	}

	return &models.Clip{
		Filename: filename,
		Path:     outputPath,
		Start:    start,
		End:      end,
		Created:  s.clock(),
	}, nil
}

func (s *service) CropAndFinalize(ctx context.Context, filename string, spec models.CropSpec) (string, error) {
	const op = "ClipService.CropAndFinalize"
	logger := s.logger.WithFields(logrus.Fields{
		"operation": op,
		"filename":  filename,
		"ratio":     spec.Ratio,
	})

	inputPath, err := s.resolveClipPath(filename)
	if err != nil {
		logger.WithError(err).Info("Clip path resolution failed")
		return "", err
	}

	outputPath := filepath.Join(s.config.ClipsDir, s.generateFilename("final"))

	ctx, cancel := context.WithTimeout(ctx, s.config.ProcessTimeout)
	defer cancel()

	logger.Info("Processing crop")
	if err := s.transcoder.Crop(ctx, inputPath, outputPath, spec); err != nil {
		s.removeQuietly(outputPath)
		return "", errors.Internal(op, err, "Failed to process clip")
	}

	if _, err := os.Stat(outputPath); err != nil {
		return "", errors.Internal(op, err, "Crop produced no output")
	}

	return outputPath, nil
}

func (s *service) validateRange(start, end, videoDuration int) error {
	const op = "ClipService.validateRange"

	if end <= start {
		return errors.InvalidInput(op, nil, "End time must be after start time")
	}
	if videoDuration > 0 && end > videoDuration {
		return errors.InvalidInput(op, nil, "End time is past the end of the video")
	}
	if max := int(s.config.MaxSegmentDuration.Seconds()); max > 0 && end-start > max {
		return errors.InvalidInput(op, nil,
			fmt.Sprintf("Segment may not be longer than %s", timecode.Format(max)))
	}
	return nil
}

// resolveClipPath maps a client-supplied filename to a path inside the
// managed clips directory. Anything that is not a plain existing filename in
// that directory is rejected.
func (s *service) resolveClipPath(filename string) (string, error) {
	const op = "ClipService.resolveClipPath"

	if filename == "" || filename != filepath.Base(filename) || strings.HasPrefix(filename, ".") {
		return "", errors.InvalidInput(op, nil, "Invalid clip filename")
	}

	path := filepath.Join(s.config.ClipsDir, filename)
	if _, err := os.Stat(path); err != nil {
		return "", errors.NotFound(op, err, "Source clip expired or invalid")
	}
	return path, nil
}

// Filenames embed a high-resolution timestamp plus a random fragment so
// concurrent requests never collide.
func (s *service) generateFilename(prefix string) string {
	return fmt.Sprintf("%s_%d_%.8s.mp4", prefix, s.clock().UnixNano(), s.idGen().String())
}

func (s *service) removeQuietly(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		s.logger.WithError(err).WithField("path", path).Warn("Failed to remove partial file")
	}
}
