package controller

import (
	"decision-ledger-be/internal/dto"
	"decision-ledger-be/internal/pkg/serverutils"
	"decision-ledger-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IWorkspaceController interface {
	RegisterRoutes(r fiber.Router)
}

type workspaceController struct {
	workspaceService service.IWorkspaceService
}

func NewWorkspaceController(workspaceService service.IWorkspaceService) IWorkspaceController {
	return &workspaceController{
		workspaceService: workspaceService,
	}
}

func (c *workspaceController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/workspace/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("channels", c.ListChannels)
	h.Post("channels", c.AddChannel)
	h.Put("channels/:channelId", c.ToggleChannel)
	h.Get("trackers", c.GetTrackers)
	h.Put("trackers", c.UpdateTrackers)
	h.Post("backfill", c.StartBackfill)
	h.Delete("backfill", c.CancelBackfill)
	h.Get("backfill", c.BackfillStatus)
	h.Get("analytics", c.Analytics)
}

func (c *workspaceController) ListChannels(ctx *fiber.Ctx) error {
	res, err := c.workspaceService.ListChannels(ctx.Context(), serverutils.WorkspaceID(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list channels", res))
}

func (c *workspaceController) AddChannel(ctx *fiber.Ctx) error {
	var req dto.AddChannelRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}
	res, err := c.workspaceService.AddChannel(ctx.Context(), serverutils.WorkspaceID(ctx), &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success add channel", res))
}

func (c *workspaceController) ToggleChannel(ctx *fiber.Ctx) error {
	var req dto.ToggleChannelRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}
	res, err := c.workspaceService.ToggleChannel(ctx.Context(), serverutils.WorkspaceID(ctx), ctx.Params("channelId"), *req.Enabled)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success update channel", res))
}

func (c *workspaceController) GetTrackers(ctx *fiber.Ctx) error {
	res, err := c.workspaceService.GetTrackerSettings(ctx.Context(), serverutils.WorkspaceID(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success show tracker settings", res))
}

func (c *workspaceController) UpdateTrackers(ctx *fiber.Ctx) error {
	var req dto.TrackerSettingsRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}
	res, err := c.workspaceService.UpdateTrackerSettings(ctx.Context(), serverutils.WorkspaceID(ctx), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success update tracker settings", res))
}

func (c *workspaceController) StartBackfill(ctx *fiber.Ctx) error {
	var req dto.StartBackfillRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}
	res, err := c.workspaceService.StartBackfill(ctx.Context(), serverutils.WorkspaceID(ctx), req.WindowDays)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Backfill started", res))
}

func (c *workspaceController) CancelBackfill(ctx *fiber.Ctx) error {
	res, err := c.workspaceService.CancelBackfill(ctx.Context(), serverutils.WorkspaceID(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Backfill cancelled", res))
}

func (c *workspaceController) BackfillStatus(ctx *fiber.Ctx) error {
	res, err := c.workspaceService.BackfillStatus(ctx.Context(), serverutils.WorkspaceID(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success show backfill status", res))
}

func (c *workspaceController) Analytics(ctx *fiber.Ctx) error {
	res, err := c.workspaceService.Analytics(ctx.Context(), serverutils.WorkspaceID(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success show analytics", res))
}
