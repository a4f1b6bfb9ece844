// Package middleware holds HTTP middleware not covered by fiber's built-ins.
package middleware

import (
	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"
)

// RateLimiter throttles the HTTP surface with a token bucket: a sustained
// rate of requestsPerMinute, with short bursts up to burst requests.
type RateLimiter struct {
	limiter *rate.Limiter
}

func NewRateLimiter(requestsPerMinute, burst int) *RateLimiter {
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(requestsPerMinute)/60, burst),
	}
}

// Allow reports whether a request may proceed right now.
func (rl *RateLimiter) Allow() bool {
	return rl.limiter.Allow()
}

// Handle rejects requests above the configured rate with 429.
func (rl *RateLimiter) Handle(c *fiber.Ctx) error {
	if !rl.Allow() {
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"success": false,
			"error":   "Rate limit exceeded. Please try again later.",
		})
	}
	return c.Next()
}
