package clip

import (
	"context"
	"time"

	"yt-clip/models"
)

type Service interface {
	// ResolveMetadata validates the URL and returns descriptive video fields,
	// resolving and caching stream locators as a side effect.
	ResolveMetadata(ctx context.Context, url string) (*models.VideoInfo, error)

	// ExtractSegment cuts [start, end) from the video's cached stream
	// locators into an intermediate clip file.
	ExtractSegment(ctx context.Context, url, startText, endText string) (*models.Clip, error)

	// CropAndFinalize crops a previously extracted clip to the requested
	// aspect ratio and returns the path of the final file. The caller owns
	// delivery and deletion of the result.
	CropAndFinalize(ctx context.Context, filename string, spec models.CropSpec) (string, error)
}

// MetadataFetcher resolves video metadata through the downloader tool.
type MetadataFetcher interface {
	FetchMetadata(ctx context.Context, url string) (*models.VideoMetadata, error)
}

// Transcoder performs segment extraction and cropping through the transcoder
// tool.
type Transcoder interface {
	ExtractSegment(ctx context.Context, videoURL, audioURL string, startSec, durationSec int, outputPath string) error
	Crop(ctx context.Context, inputPath, outputPath string, spec models.CropSpec) error
}

type Config struct {
	// ClipsDir is the managed directory holding intermediate and final files.
	ClipsDir string

	// ProcessTimeout is the maximum time allowed for a single tool invocation.
	ProcessTimeout time.Duration

	// MaxSegmentDuration caps the length of an extracted segment; 0 means
	// uncapped.
	MaxSegmentDuration time.Duration
}
