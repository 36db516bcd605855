package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"aeye-server/internal/jsoncodec"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
)

const requestIDKey = "requestid"

type AppConfig struct {
	Name      string
	BodyLimit int
}

// NewApp creates the fiber app with the JSON codec and error handling every
// route relies on.
func NewApp(cfg AppConfig, log *slog.Logger) *fiber.App {
	return fiber.New(fiber.Config{
		AppName:               cfg.Name,
		BodyLimit:             cfg.BodyLimit,
		JSONEncoder:           jsoncodec.Marshal,
		JSONDecoder:           jsoncodec.Unmarshal,
		ErrorHandler:          ErrorHandler(log),
		DisableStartupMessage: true,
	})
}

type RouterOptions struct {
	AccessLog        io.Writer
	CORSAllowOrigins string
	Metrics          fiber.Handler
	Panel            http.FileSystem
}

func SetupRouter(app *fiber.App, handler *Handler, opts RouterOptions) {
	// Middleware
	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(requestid.New(requestid.Config{
		Header:     fiber.HeaderXRequestID,
		Generator:  uuid.NewString,
		ContextKey: requestIDKey,
	}))
	if opts.AccessLog != nil {
		app.Use(logger.New(logger.Config{
			Format: "${time} | ${status} | ${latency} | ${method} ${path} | ${locals:requestid}\n",
			Output: opts.AccessLog,
		}))
	}
	origins := opts.CORSAllowOrigins
	if origins == "" {
		origins = "*"
	}
	app.Use(cors.New(cors.Config{AllowOrigins: origins}))

	app.Get("/", handler.HandleRoot)
	app.Get("/health", handler.HandleHealth)
	app.Post("/analyze", handler.HandleAnalyze)

	apiGroup := app.Group("/api")
	apiGroup.Get("/status", handler.HandleStatus)
	apiGroup.Get("/devices/:device_id", handler.HandleDeviceUsage)

	if opts.Metrics != nil {
		app.Get("/metrics", opts.Metrics)
	}
	if opts.Panel != nil {
		app.Use("/panel", filesystem.New(filesystem.Config{
			Root:  opts.Panel,
			Index: "index.html",
		}))
	}
}

// ErrorHandler turns anything a handler returns (or panics with) into JSON.
func ErrorHandler(log *slog.Logger) fiber.ErrorHandler {
	if log == nil {
		log = slog.Default()
	}
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
			return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
		}

		log.Error("unhandled error",
			"request_id", requestID(c),
			"method", c.Method(),
			"path", c.Path(),
			"error", err,
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Internal server error",
			"message": err.Error(),
		})
	}
}
