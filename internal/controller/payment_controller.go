package controller

import (
	"errors"

	"calext-licensing-be/internal/dto"
	"calext-licensing-be/internal/pkg/serverutils"
	"calext-licensing-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IPaymentController interface {
	RegisterRoutes(r fiber.Router)
	CreateAttempt(ctx *fiber.Ctx) error
	GetStatus(ctx *fiber.Ctx) error
	Cancel(ctx *fiber.Ctx) error
}

type paymentController struct {
	service service.ICheckoutService
}

func NewPaymentController(service service.ICheckoutService) IPaymentController {
	return &paymentController{service: service}
}

func (c *paymentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/payment")

	// Protected Routes
	h.Post("/attempt", serverutils.JwtMiddleware, c.CreateAttempt)
	h.Get("/status", serverutils.JwtMiddleware, c.GetStatus)
	h.Post("/cancel", serverutils.JwtMiddleware, c.Cancel)
}

func (c *paymentController) CreateAttempt(ctx *fiber.Ctx) error {
	var req dto.CreateAttemptRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "invalid request body"))
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.CreateAttempt(ctx.Context(), userId, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownPlan):
			return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
		case errors.Is(err, service.ErrUserNotFound):
			return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, err.Error()))
		default:
			return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
		}
	}
	return ctx.JSON(serverutils.SuccessResponse("Payment attempt created", res))
}

func (c *paymentController) GetStatus(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.GetStatus(ctx.Context(), userId)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Subscription status", res))
}

func (c *paymentController) Cancel(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}

	if err := c.service.Cancel(ctx.Context(), userId); err != nil {
		if errors.Is(err, service.ErrNoActiveSubscription) {
			return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, err.Error()))
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Cancellation requested", nil))
}

func currentUserId(ctx *fiber.Ctx) (uuid.UUID, error) {
	userIdStr, ok := ctx.Locals("user_id").(string)
	if !ok {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "invalid token subject")
	}
	userId, err := uuid.Parse(userIdStr)
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "invalid token subject")
	}
	return userId, nil
}
