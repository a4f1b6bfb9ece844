package handlers

import (
	stderrors "errors"

	"yt-clip/errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		code = appErr.Code
		message = appErr.Message
	}

	logrus.WithFields(logrus.Fields{
		"request_id": c.GetRespHeader("X-Request-ID"),
		"path":       c.Path(),
		"method":     c.Method(),
		"status":     code,
		"error":      err.Error(),
	}).Error("Request error")

	return c.Status(code).JSON(fiber.Map{
		"success":    false,
		"error":      message,
		"request_id": c.GetRespHeader("X-Request-ID"),
	})
}
