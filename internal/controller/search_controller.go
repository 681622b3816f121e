package controller

import (
	"decision-ledger-be/internal/dto"
	"decision-ledger-be/internal/entity"
	"decision-ledger-be/internal/pkg/serverutils"
	"decision-ledger-be/internal/service"
	"decision-ledger-be/pkg/rag/search"

	"github.com/gofiber/fiber/v2"
)

type ISearchController interface {
	RegisterRoutes(r fiber.Router)
	Query(ctx *fiber.Ctx) error
	Feedback(ctx *fiber.Ctx) error
}

type searchController struct {
	queryService service.IQueryService
}

func NewSearchController(queryService service.IQueryService) ISearchController {
	return &searchController{
		queryService: queryService,
	}
}

func (c *searchController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/search/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("", c.Query)
	h.Post("feedback", c.Feedback)
}

func (c *searchController) Query(ctx *fiber.Ctx) error {
	var req dto.SearchRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	filters := search.Filters{
		DateFrom:   req.DateFrom,
		DateTo:     req.DateTo,
		OwnerID:    req.OwnerId,
		Categories: req.Categories,
		Tags:       req.Tags,
	}
	var requester *string
	if userId := serverutils.UserID(ctx); userId != "" {
		requester = &userId
	}

	answer, err := c.queryService.HandleQuery(ctx.Context(), serverutils.WorkspaceID(ctx), req.Query, filters, requester, entity.QuerySourceWeb)
	if err != nil {
		return err
	}

	res := &dto.SearchResponse{
		Answer:         answer.Answer,
		Results:        make([]dto.SearchResultItem, len(answer.Results)),
		ResponseTimeMs: answer.ResponseTimeMs,
		QueryLogId:     answer.QueryLogID,
	}
	for i, r := range answer.Results {
		res.Results[i] = dto.SearchResultItem{
			Decision:     service.ToDecisionResponse(r.Decision, answer.Links[r.Decision.Id]),
			Score:        r.Score,
			VectorScore:  r.VectorScore,
			KeywordScore: r.KeywordScore,
			TagBonus:     r.TagBonus,
		}
	}
	return ctx.JSON(serverutils.SuccessResponse("Success search decisions", res))
}

func (c *searchController) Feedback(ctx *fiber.Ctx) error {
	var req dto.SearchFeedbackRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.queryService.MarkHelpful(ctx.Context(), serverutils.WorkspaceID(ctx), req.QueryLogId, *req.Helpful); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Success record feedback", nil))
}
