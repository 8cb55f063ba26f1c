package controller

import (
	"errors"

	"calext-licensing-be/internal/dto"
	"calext-licensing-be/internal/pkg/serverutils"
	"calext-licensing-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IWebhookController interface {
	RegisterRoutes(r fiber.Router)
	HandlePaddle(ctx *fiber.Ctx) error
}

type webhookController struct {
	service service.IWebhookService
}

func NewWebhookController(service service.IWebhookService) IWebhookController {
	return &webhookController{service: service}
}

func (c *webhookController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/webhooks")
	h.Post("/paddle", c.HandlePaddle)
}

// HandlePaddle receives provider webhooks. The status code is the retry
// protocol: 2xx acknowledges, 4xx tells the provider the delivery is
// permanently unacceptable, 5xx asks it to redeliver later.
func (c *webhookController) HandlePaddle(ctx *fiber.Ctx) error {
	body := ctx.Body()
	signature := ctx.Get("Paddle-Signature")
	if signature == "" {
		signature = ctx.FormValue("p_signature")
	}

	if err := c.service.ProcessRawEvent(ctx.Context(), body, signature); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidSignature):
			return ctx.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(401, "invalid signature"))
		case errors.Is(err, service.ErrMalformedPayload):
			return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
		default:
			// Transient failure: signal the provider to retry.
			return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, "processing failed"))
		}
	}
	return ctx.JSON(dto.WebhookAckResponse{Success: true})
}
