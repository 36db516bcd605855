package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"aeye-server/internal/domain/entity"
	"aeye-server/internal/jsoncodec"
	"aeye-server/internal/usecase"

	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	responder *usecase.Responder
	status    *usecase.StatusService
	info      usecase.ServerInfo
	log       *slog.Logger

	// lifecycle is cancelled on shutdown; pending analyses wait on it
	// instead of the per-request context.
	lifecycle context.Context
}

func NewHandler(lifecycle context.Context, responder *usecase.Responder, status *usecase.StatusService, info usecase.ServerInfo, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{
		responder: responder,
		status:    status,
		info:      info,
		log:       log,
		lifecycle: lifecycle,
	}
}

func (h *Handler) HandleAnalyze(c *fiber.Ctx) error {
	log := h.log.With("request_id", requestID(c))
	log.Info("received analysis request")

	var req entity.AnalysisRequest
	if body := c.Body(); len(body) > 0 {
		if err := jsoncodec.Unmarshal(body, &req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":   "Invalid request body",
				"message": err.Error(),
			})
		}
	}

	resp, err := h.responder.Analyze(usecase.WithLogger(h.lifecycle, log), req)
	if err != nil {
		switch {
		case errors.Is(err, entity.ErrMissingImage):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No image data provided"})
		case errors.Is(err, entity.ErrShuttingDown):
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error":   "Service unavailable",
				"message": err.Error(),
			})
		}
		return err
	}

	return c.Status(fiber.StatusOK).JSON(resp)
}

func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(h.status.Health())
}

func (h *Handler) HandleRoot(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": "Mock AI Analysis Server for ESP32 Glasses",
		"version": h.info.Version,
		"endpoints": fiber.Map{
			"analyze": "POST /analyze - Send base64 image for analysis",
			"health":  "GET /health - Check server status",
			"status":  "GET /api/status - Control panel status",
			"devices": "GET /api/devices/:device_id - Analyses requested by a device",
			"metrics": "GET /metrics - Prometheus metrics",
			"panel":   "GET /panel/ - Control panel",
		},
		"usage": fiber.Map{
			"image_format":    "base64 encoded JPEG",
			"max_size":        fmt.Sprintf("%dMB", h.info.MaxUploadMB),
			"response_format": "JSON with faces, objects, and context",
		},
	})
}

func (h *Handler) HandleStatus(c *fiber.Ctx) error {
	return c.JSON(h.status.System(c.UserContext()))
}

func (h *Handler) HandleDeviceUsage(c *fiber.Ctx) error {
	usage, err := h.status.DeviceUsage(c.UserContext(), c.Params("device_id"))
	if err != nil {
		return err
	}
	return c.JSON(usage)
}

func requestID(c *fiber.Ctx) string {
	id, _ := c.Locals(requestIDKey).(string)
	return id
}
