package handlers

import (
	"os/exec"
	"time"

	"yt-clip/config"

	"github.com/gofiber/fiber/v2"
)

type HealthHandler struct {
	config *config.Config
}

func NewHealthHandler(cfg *config.Config) *HealthHandler {
	return &HealthHandler{config: cfg}
}

// Check reports service liveness plus whether the external tools resolve on
// the search path.
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	tools := fiber.Map{
		"downloader": toolAvailable(h.config.Tools.DownloaderPath),
		"transcoder": toolAvailable(h.config.Tools.TranscoderPath),
	}

	return c.JSON(fiber.Map{
		"status":    "ok",
		"version":   h.config.Version,
		"timestamp": time.Now().Format(time.RFC3339),
		"tools":     tools,
	})
}

func toolAvailable(path string) bool {
	_, err := exec.LookPath(path)
	return err == nil
}
