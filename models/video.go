package models

import (
	"time"
)

// VideoMetadata is the cached result of a metadata lookup for a source URL.
// The stream locators are short-lived, authorization-bearing URLs issued by
// the downloader; they are opaque to this system and must never be exposed
// outside the clip pipeline.
type VideoMetadata struct {
	URL       string `json:"url"`
	Title     string `json:"title"`
	Thumbnail string `json:"thumbnail"`
	Duration  int    `json:"duration"`
	Channel   string `json:"channel"`

	Width  int `json:"width"`
	Height int `json:"height"`

	VideoStreamURL string `json:"-"`
	AudioStreamURL string `json:"-"`

	FetchedAt time.Time `json:"-"`
}

// IsFresh reports whether the entry is still inside the freshness window at
// the given instant. Stale locators are session-bound and fail if reused.
func (m *VideoMetadata) IsFresh(now time.Time, window time.Duration) bool {
	return now.Sub(m.FetchedAt) < window
}

// VideoInfo carries only the descriptive fields of a metadata entry; this is
// what leaves the pipeline.
type VideoInfo struct {
	Title     string `json:"title"`
	Thumbnail string `json:"thumbnail"`
	Duration  int    `json:"duration"`
	Channel   string `json:"channel"`
}

func NewVideoInfo(m *VideoMetadata) *VideoInfo {
	return &VideoInfo{
		Title:     m.Title,
		Thumbnail: m.Thumbnail,
		Duration:  m.Duration,
		Channel:   m.Channel,
	}
}

// Clip is an extracted segment stored under the managed clips directory.
type Clip struct {
	Filename string    `json:"filename"`
	Path     string    `json:"-"`
	Start    int       `json:"start"`
	End      int       `json:"end"`
	Created  time.Time `json:"-"`
}
