package controller

import (
	"errors"

	"calext-licensing-be/internal/dto"
	"calext-licensing-be/internal/pkg/serverutils"
	"calext-licensing-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ILicenseController interface {
	RegisterRoutes(r fiber.Router)
	Verify(ctx *fiber.Ctx) error
	GetInfo(ctx *fiber.Ctx) error
}

type licenseController struct {
	service service.ILicenseService
}

func NewLicenseController(service service.ILicenseService) ILicenseController {
	return &licenseController{service: service}
}

func (c *licenseController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/license")
	h.Post("/verify", c.Verify)

	// Protected Routes
	h.Get("/info", serverutils.JwtMiddleware, c.GetInfo)
}

// Verify answers the extension client. The response body is the verification
// contract itself, not wrapped, because the extension predates the envelope.
func (c *licenseController) Verify(ctx *fiber.Ctx) error {
	var req dto.LicenseVerifyRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "invalid request body"))
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Verify(ctx.Context(), req.LicenseKey)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidLicenseFormat):
			return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
		case errors.Is(err, service.ErrLicenseNotFound):
			return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, err.Error()))
		default:
			return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, "verification failed"))
		}
	}
	return ctx.JSON(res)
}

func (c *licenseController) GetInfo(ctx *fiber.Ctx) error {
	userIdStr, ok := ctx.Locals("user_id").(string)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(401, "invalid token subject"))
	}
	userId, err := uuid.Parse(userIdStr)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(401, "invalid token subject"))
	}

	res, err := c.service.GetInfo(ctx.Context(), userId)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, err.Error()))
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("License info", res))
}
