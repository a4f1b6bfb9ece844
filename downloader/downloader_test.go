package downloader

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type runnerStub struct {
	output  []byte
	err     error
	command string
	args    []string
}

func (s *runnerStub) Run(ctx context.Context, command string, args []string) ([]byte, error) {
	s.command = command
	s.args = args
	return s.output, s.err
}

func TestFetchMetadataSplitStreams(t *testing.T) {
	stub := &runnerStub{output: []byte(`{
		"title": "test video",
		"thumbnail": "https://i.ytimg.com/vi/abc123/hq720.jpg",
		"duration": 120,
		"channel": "test channel",
		"width": 1920,
		"height": 1080,
		"requested_formats": [
			{"url": "https://cdn.example/video", "vcodec": "avc1.640028", "acodec": "none"},
			{"url": "https://cdn.example/audio", "vcodec": "none", "acodec": "mp4a.40.2"}
		]
	}`)}

	f := NewFetcher(stub, Config{BinaryPath: "yt-dlp", UserAgent: "test-agent"})
	meta, err := f.FetchMetadata(context.Background(), "https://www.youtube.com/watch?v=abc123")
	require.NoError(t, err)

	require.Equal(t, "yt-dlp", stub.command)
	require.Contains(t, stub.args, "--dump-json")
	require.Contains(t, stub.args, "--format")
	require.Contains(t, stub.args, "--user-agent")
	// The URL must be a discrete argv element, last.
	require.Equal(t, "https://www.youtube.com/watch?v=abc123", stub.args[len(stub.args)-1])

	require.Equal(t, "test video", meta.Title)
	require.Equal(t, 120, meta.Duration)
	require.Equal(t, "test channel", meta.Channel)
	require.Equal(t, 1920, meta.Width)
	require.Equal(t, 1080, meta.Height)
	require.Equal(t, "https://cdn.example/video", meta.VideoStreamURL)
	require.Equal(t, "https://cdn.example/audio", meta.AudioStreamURL)
}

func TestFetchMetadataPremuxed(t *testing.T) {
	stub := &runnerStub{output: []byte(`{
		"title": "test video",
		"duration": 60.9,
		"uploader": "uploader name",
		"url": "https://cdn.example/muxed"
	}`)}

	f := NewFetcher(stub, Config{BinaryPath: "yt-dlp"})
	meta, err := f.FetchMetadata(context.Background(), "https://www.youtube.com/watch?v=abc123")
	require.NoError(t, err)

	require.Equal(t, 60, meta.Duration)
	require.Equal(t, "uploader name", meta.Channel)
	require.Equal(t, "https://cdn.example/muxed", meta.VideoStreamURL)
	require.Equal(t, "https://cdn.example/muxed", meta.AudioStreamURL)
}

func TestFetchMetadataBadOutput(t *testing.T) {
	f := NewFetcher(&runnerStub{output: []byte("not json")}, Config{BinaryPath: "yt-dlp"})
	_, err := f.FetchMetadata(context.Background(), "https://www.youtube.com/watch?v=abc123")
	require.Error(t, err)
}

func TestFetchMetadataNoStreams(t *testing.T) {
	f := NewFetcher(&runnerStub{output: []byte(`{"title": "t"}`)}, Config{BinaryPath: "yt-dlp"})
	_, err := f.FetchMetadata(context.Background(), "https://www.youtube.com/watch?v=abc123")
	require.Error(t, err)
}
