package cache

import (
	"sync"
	"testing"
	"time"

	"yt-clip/models"
)

func TestGetMiss(t *testing.T) {
	c := New(30 * time.Minute)

	if _, ok := c.Get("https://www.youtube.com/watch?v=abc123"); ok {
		t.Error("expected miss for unknown URL")
	}
}

func TestPutThenGet(t *testing.T) {
	now := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	c := NewWithClock(30*time.Minute, func() time.Time { return now })

	url := "https://www.youtube.com/watch?v=abc123"
	c.Put(url, &models.VideoMetadata{
		URL:            url,
		Title:          "test video",
		Duration:       120,
		Channel:        "test channel",
		VideoStreamURL: "https://cdn.example/video",
		AudioStreamURL: "https://cdn.example/audio",
	})

	got, ok := c.Get(url)
	if !ok {
		t.Fatal("expected hit inside freshness window")
	}
	if got.Title != "test video" || got.Duration != 120 {
		t.Errorf("unexpected entry: %+v", got)
	}
	if got.FetchedAt != now {
		t.Errorf("expected FetchedAt %v, got %v", now, got.FetchedAt)
	}
}

func TestExpiryIsLogical(t *testing.T) {
	now := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	c := NewWithClock(30*time.Minute, func() time.Time { return now })

	url := "https://www.youtube.com/watch?v=abc123"
	c.Put(url, &models.VideoMetadata{URL: url, Title: "test video"})

	// Just inside the window.
	now = now.Add(30*time.Minute - time.Second)
	if _, ok := c.Get(url); !ok {
		t.Error("expected hit just inside the window")
	}

	// Past the window the read behaves as a miss, but the entry stays until
	// a newer lookup supersedes it.
	now = now.Add(2 * time.Second)
	if _, ok := c.Get(url); ok {
		t.Error("expected miss past the window")
	}
	if c.Len() != 1 {
		t.Errorf("expected expired entry to remain stored, Len() = %d", c.Len())
	}

	// A fresh Put supersedes the stale entry.
	c.Put(url, &models.VideoMetadata{URL: url, Title: "refreshed"})
	got, ok := c.Get(url)
	if !ok || got.Title != "refreshed" {
		t.Errorf("expected refreshed entry, got %+v ok=%v", got, ok)
	}
}

func TestPutCopiesEntry(t *testing.T) {
	c := New(30 * time.Minute)

	url := "https://www.youtube.com/watch?v=abc123"
	meta := &models.VideoMetadata{URL: url, Title: "original"}
	c.Put(url, meta)

	// Mutating the caller's value must not affect the stored entry.
	meta.Title = "mutated"

	got, ok := c.Get(url)
	if !ok {
		t.Fatal("expected hit")
	}
	if got.Title != "original" {
		t.Errorf("stored entry was mutated through caller reference: %q", got.Title)
	}
}

func TestConcurrentAccess(t *testing.T) {
	c := New(30 * time.Minute)
	url := "https://www.youtube.com/watch?v=abc123"

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			c.Put(url, &models.VideoMetadata{URL: url, Title: "t"})
		}()
		go func() {
			defer wg.Done()
			c.Get(url)
		}()
	}
	wg.Wait()
}
