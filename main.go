package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"yt-clip/cache"
	"yt-clip/config"
	"yt-clip/downloader"
	"yt-clip/ffmpeg"
	"yt-clip/handlers"
	"yt-clip/logger"
	"yt-clip/middleware"
	"yt-clip/runner"
	"yt-clip/services/clip"
	"yt-clip/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/etag"
	fiberLogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/google/uuid"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	if _, err := logger.Init(cfg.LogDir, cfg.Debug); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	requestLogConfig, err := logger.NewRequestLoggerConfig(cfg.LogDir)
	if err != nil {
		log.Fatalf("Failed to initialize request logger: %v", err)
	}

	// Initialize process runner
	processRunner, err := runner.New(runner.Config{
		MaxConcurrent:     cfg.Tools.MaxConcurrent,
		LaunchesPerMinute: cfg.Tools.LaunchesPerMinute,
	})
	if err != nil {
		log.Fatalf("Failed to initialize process runner: %v", err)
	}

	// Initialize tool wrappers
	fetcher := downloader.NewFetcher(processRunner, downloader.Config{
		BinaryPath: cfg.Tools.DownloaderPath,
		UserAgent:  cfg.Tools.UserAgent,
	})
	transcoder := ffmpeg.NewTranscoder(processRunner, ffmpeg.Config{
		BinaryPath: cfg.Tools.TranscoderPath,
		UserAgent:  cfg.Tools.UserAgent,
	})

	// Initialize clip service
	metadataCache := cache.New(cfg.Clip.FreshnessWindow)
	validator := validation.NewValidator(cfg)
	clipService := clip.NewService(
		metadataCache,
		fetcher,
		transcoder,
		validator,
		clip.Config{
			ClipsDir:           cfg.ClipsDir,
			ProcessTimeout:     cfg.Clip.ProcessTimeout,
			MaxSegmentDuration: cfg.Clip.MaxSegmentDuration,
		},
	)

	// Start the transient-file janitor
	janitorCtx, stopJanitor := context.WithCancel(context.Background())
	defer stopJanitor()
	go clip.NewJanitor(cfg.ClipsDir, cfg.Clip.MaxFileAge, cfg.Clip.SweepInterval).Run(janitorCtx)

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		ReadTimeout:           cfg.ReadTimeout,
		WriteTimeout:          cfg.WriteTimeout,
		IdleTimeout:           cfg.IdleTimeout,
		ErrorHandler:          handlers.ErrorHandler,
		DisableStartupMessage: !cfg.Debug,
		StrictRouting:         true,
		CaseSensitive:         true,
		AppName:               "yt-clip " + cfg.Version,
	})

	// Setup middleware
	setupMiddleware(app, cfg, requestLogConfig)

	// Setup routes
	clipHandler := handlers.NewClipHandler(clipService)
	healthHandler := handlers.NewHealthHandler(cfg)

	// API routes
	app.Get("/api/video-info", clipHandler.VideoInfo)
	app.Post("/api/fetch-segment", clipHandler.FetchSegment)
	app.Post("/api/process-crop", clipHandler.ProcessCrop)

	// Health check
	app.Get("/health", healthHandler.Check)

	// Extracted segments are previewable until the janitor removes them.
	app.Static("/clips", cfg.ClipsDir)

	// Static files
	app.Static("/", cfg.StaticDir)

	// Graceful shutdown setup
	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-shutdownChan
		log.Println("Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := app.ShutdownWithContext(ctx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
		stopJanitor()
	}()

	// Start server
	serverAddr := ":" + cfg.ServerPort
	if cfg.Debug {
		log.Printf("Server starting on http://localhost%s", serverAddr)
	}

	if err := app.Listen(serverAddr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}

func setupMiddleware(app *fiber.App, cfg *config.Config, logConfig *fiberLogger.Config) {
	if cfg.Middleware.EnableRecover {
		app.Use(recover.New(recover.Config{
			EnableStackTrace: cfg.Debug,
		}))
	}

	if cfg.Middleware.EnableRequestID {
		app.Use(requestid.New(requestid.Config{
			Header: "X-Request-ID",
			Generator: func() string {
				return uuid.New().String()
			},
		}))
	}

	if cfg.Middleware.EnableLogger {
		app.Use(fiberLogger.New(*logConfig))
	}

	if cfg.Middleware.EnableCORS {
		app.Use(cors.New(cors.Config{
			AllowOrigins:     strings.Join(cfg.CORS.AllowedOrigins, ","),
			AllowMethods:     strings.Join(cfg.CORS.AllowedMethods, ","),
			AllowHeaders:     strings.Join(cfg.CORS.AllowedHeaders, ","),
			ExposeHeaders:    strings.Join(cfg.CORS.ExposedHeaders, ","),
			AllowCredentials: cfg.CORS.AllowCredentials,
			MaxAge:           cfg.CORS.MaxAge,
		}))
	}

	if cfg.Middleware.EnableRateLimit && cfg.RateLimit.Enabled {
		app.Use(middleware.NewRateLimiter(
			cfg.RateLimit.RequestsPerMinute,
			cfg.RateLimit.BurstSize,
		).Handle)
	}

	if cfg.Middleware.EnableTimeout {
		app.Use(timeout.New(func(c *fiber.Ctx) error {
			return c.Next()
		}, cfg.RequestTimeout))
	}

	if cfg.Middleware.EnableCompress {
		app.Use(compress.New(compress.Config{
			Level: compress.LevelDefault,
		}))
	}

	if cfg.Middleware.EnableETag {
		app.Use(etag.New())
	}
}
