package controller

import (
	"decision-ledger-be/internal/dto"
	"decision-ledger-be/internal/pkg/serverutils"
	"decision-ledger-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IDecisionController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	Confirm(ctx *fiber.Ctx) error
	Ignore(ctx *fiber.Ctx) error
}

type decisionController struct {
	decisionService service.IDecisionService
}

func NewDecisionController(decisionService service.IDecisionService) IDecisionController {
	return &decisionController{
		decisionService: decisionService,
	}
}

func (c *decisionController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/decision/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("", c.List)
	h.Get(":id", c.Show)
	h.Put(":id", c.Update)
	h.Delete(":id", c.Delete)
	h.Post(":id/confirm", c.Confirm)
	h.Post(":id/ignore", c.Ignore)
}

func decisionID(ctx *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "invalid decision id")
	}
	return id, nil
}

func (c *decisionController) List(ctx *fiber.Ctx) error {
	var req dto.ListDecisionsRequest
	if err := ctx.QueryParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.decisionService.List(ctx.Context(), serverutils.WorkspaceID(ctx), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list decisions", res))
}

func (c *decisionController) Show(ctx *fiber.Ctx) error {
	id, err := decisionID(ctx)
	if err != nil {
		return err
	}
	res, err := c.decisionService.Show(ctx.Context(), serverutils.WorkspaceID(ctx), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success show decision", res))
}

func (c *decisionController) Update(ctx *fiber.Ctx) error {
	id, err := decisionID(ctx)
	if err != nil {
		return err
	}

	var req dto.UpdateDecisionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	req.Id = id

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.decisionService.Update(ctx.Context(), serverutils.WorkspaceID(ctx), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success update decision", res))
}

func (c *decisionController) Delete(ctx *fiber.Ctx) error {
	id, err := decisionID(ctx)
	if err != nil {
		return err
	}
	if err := c.decisionService.Delete(ctx.Context(), serverutils.WorkspaceID(ctx), id); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete decision", nil))
}

func (c *decisionController) Confirm(ctx *fiber.Ctx) error {
	id, err := decisionID(ctx)
	if err != nil {
		return err
	}
	res, err := c.decisionService.Confirm(ctx.Context(), serverutils.WorkspaceID(ctx), id, serverutils.UserID(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success confirm decision", res))
}

func (c *decisionController) Ignore(ctx *fiber.Ctx) error {
	id, err := decisionID(ctx)
	if err != nil {
		return err
	}
	res, err := c.decisionService.Ignore(ctx.Context(), serverutils.WorkspaceID(ctx), id, serverutils.UserID(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success ignore decision", res))
}
