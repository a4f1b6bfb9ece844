package handlers

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"yt-clip/errors"
	"yt-clip/models"
	"yt-clip/services/clip"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type ClipHandler struct {
	service clip.Service
}

func NewClipHandler(service clip.Service) *ClipHandler {
	return &ClipHandler{service: service}
}

func (h *ClipHandler) VideoInfo(c *fiber.Ctx) error {
	const op = "ClipHandler.VideoInfo"

	url := c.Query("url")
	if url == "" {
		return errors.InvalidInput(op, nil, "URL is required")
	}

	info, err := h.service.ResolveMetadata(c.UserContext(), url)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    info,
	})
}

func (h *ClipHandler) FetchSegment(c *fiber.Ctx) error {
	const op = "ClipHandler.FetchSegment"

	var req models.FetchSegmentRequest
	if err := c.BodyParser(&req); err != nil {
		return errors.InvalidInput(op, err, "Invalid request body")
	}
	if req.URL == "" {
		return errors.InvalidInput(op, nil, "URL is required")
	}
	if req.StartTime == "" || req.EndTime == "" {
		return errors.InvalidInput(op, nil, "Start and end times are required")
	}

	result, err := h.service.ExtractSegment(c.UserContext(), req.URL, req.StartTime, req.EndTime)
	if err != nil {
		return err
	}

	return c.JSON(models.FetchSegmentResponse{
		Success:  true,
		VideoURL: "/clips/" + result.Filename,
		Filename: result.Filename,
	})
}

func (h *ClipHandler) ProcessCrop(c *fiber.Ctx) error {
	const op = "ClipHandler.ProcessCrop"

	var req models.ProcessCropRequest
	if err := c.BodyParser(&req); err != nil {
		return errors.InvalidInput(op, err, "Invalid request body")
	}
	if req.Filename == "" {
		return errors.InvalidInput(op, nil, "Filename is required")
	}

	ratio, err := models.ParseAspectRatio(req.AspectRatio)
	if err != nil {
		return errors.InvalidInput(op, err, "Unsupported aspect ratio")
	}
	if req.Position < 0 || req.Position > 100 {
		return errors.InvalidInput(op, nil, "Position must be between 0 and 100")
	}

	path, err := h.service.CropAndFinalize(c.UserContext(), req.Filename, models.CropSpec{
		Ratio:    ratio,
		Position: req.Position,
	})
	if err != nil {
		return err
	}

	// Download opens the file before the handler returns, so unlinking here
	// still lets the response stream the bytes; the final clip never outlives
	// its delivery.
	defer func() {
		if err := os.Remove(path); err != nil {
			logrus.WithError(err).WithField("path", path).Warn("Failed to remove final clip")
		}
	}()

	return c.Download(path, downloadName(req.Filename, ratio))
}

// downloadName derives the attachment filename from the source clip and the
// requested ratio, e.g. "clip_17_a1b2.mp4" at 9:16 becomes
// "clip_17_a1b2_9x16.mp4".
func downloadName(source string, ratio models.AspectRatio) string {
	base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	return fmt.Sprintf("%s_%s.mp4", base, strings.ReplaceAll(string(ratio), ":", "x"))
}
