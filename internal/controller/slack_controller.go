package controller

import (
	"encoding/json"
	"log"
	"strings"

	"decision-ledger-be/internal/dto"
	"decision-ledger-be/internal/entity"
	"decision-ledger-be/internal/pkg/serverutils"
	"decision-ledger-be/internal/service"
	"decision-ledger-be/pkg/slack"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ISlackController interface {
	RegisterRoutes(r fiber.Router)
	Events(ctx *fiber.Ctx) error
	Interactive(ctx *fiber.Ctx) error
	Commands(ctx *fiber.Ctx) error
}

type slackController struct {
	signingSecret    string
	workspaceService service.IWorkspaceService
	pipelineService  service.IPipelineService
	decisionService  service.IDecisionService
	publisherService service.IPublisherService
}

func NewSlackController(
	signingSecret string,
	workspaceService service.IWorkspaceService,
	pipelineService service.IPipelineService,
	decisionService service.IDecisionService,
	publisherService service.IPublisherService,
) ISlackController {
	return &slackController{
		signingSecret:    signingSecret,
		workspaceService: workspaceService,
		pipelineService:  pipelineService,
		decisionService:  decisionService,
		publisherService: publisherService,
	}
}

func (c *slackController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/slack")
	h.Use(serverutils.SlackSignatureMiddleware(c.signingSecret))
	h.Post("events", c.Events)
	h.Post("interactive", c.Interactive)
	h.Post("commands", c.Commands)
}

// Events always answers 200 once the signature is valid; Slack retries
// anything else.
func (c *slackController) Events(ctx *fiber.Ctx) error {
	var envelope dto.SlackEventEnvelope
	if err := json.Unmarshal(ctx.Body(), &envelope); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid event payload")
	}

	if envelope.Type == "url_verification" {
		return ctx.JSON(fiber.Map{"challenge": envelope.Challenge})
	}

	var event dto.SlackMessageEvent
	if len(envelope.Event) == 0 || json.Unmarshal(envelope.Event, &event) != nil {
		return ctx.SendStatus(fiber.StatusOK)
	}
	if event.Type != "message" || event.BotId != "" || event.Subtype != "" {
		return ctx.SendStatus(fiber.StatusOK)
	}

	workspace, err := c.workspaceService.FindByTeamID(ctx.Context(), envelope.TeamId)
	if err != nil {
		return err
	}
	if workspace == nil {
		log.Printf("[WARN] Slack event for unknown team %s", envelope.TeamId)
		return ctx.SendStatus(fiber.StatusOK)
	}

	monitored, err := c.workspaceService.IsMonitored(ctx.Context(), workspace.Id, event.Channel)
	if err != nil {
		return err
	}
	if !monitored {
		return ctx.SendStatus(fiber.StatusOK)
	}

	message := &entity.RawMessage{
		WorkspaceId: workspace.Id,
		ChannelId:   event.Channel,
		Text:        event.Text,
		MessageTs:   event.TS,
	}
	if event.User != "" {
		message.UserId = &event.User
	}
	if event.ThreadTS != "" {
		message.ThreadTs = &event.ThreadTS
	}
	if event.ClientMsgId != "" {
		message.ExternalMessageId = &event.ClientMsgId
	}
	hint := entity.SourceHintLive
	if event.SourceHint == entity.SourceHintHuddleTranscript {
		hint = entity.SourceHintHuddleTranscript
	}
	message.SourceHint = &hint

	if _, err := c.pipelineService.StoreMessage(ctx.Context(), message); err != nil {
		return err
	}
	return ctx.SendStatus(fiber.StatusOK)
}

func (c *slackController) Interactive(ctx *fiber.Ctx) error {
	var payload dto.SlackInteractionPayload
	if err := json.Unmarshal([]byte(ctx.FormValue("payload", "{}")), &payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid interaction payload")
	}

	workspace, err := c.workspaceService.FindByTeamID(ctx.Context(), payload.Team.Id)
	if err != nil {
		return err
	}
	if workspace == nil {
		return ctx.SendStatus(fiber.StatusOK)
	}

	switch payload.Type {
	case "block_actions":
		if len(payload.Actions) == 0 {
			return ctx.SendStatus(fiber.StatusOK)
		}
		action := payload.Actions[0]
		decisionId, err := uuid.Parse(action.Value)
		if err != nil {
			return ctx.SendStatus(fiber.StatusOK)
		}

		channelId := payload.Channel.Id
		if channelId == "" {
			channelId = payload.Container.ChannelId
		}
		messageTs := payload.Message.TS
		if messageTs == "" {
			messageTs = payload.Container.MessageTs
		}

		switch action.ActionId {
		case slack.ActionConfirm, slack.ActionIgnore:
			resolution := service.ActionConfirm
			if action.ActionId == slack.ActionIgnore {
				resolution = service.ActionIgnore
			}
			if err := c.publisherService.Enqueue(ctx.Context(), service.JobResolveConfirmation, map[string]interface{}{
				"workspace_id": workspace.Id.String(),
				"decision_id":  decisionId.String(),
				"action":       string(resolution),
				"actor_id":     payload.User.Id,
				"channel_id":   channelId,
				"message_ts":   messageTs,
			}); err != nil {
				return err
			}
		case slack.ActionEdit:
			if err := c.decisionService.OpenEditModal(ctx.Context(), workspace.Id, decisionId, payload.TriggerId); err != nil {
				log.Printf("[WARN] Failed to open edit modal for %s: %v", decisionId, err)
			}
		}
		return ctx.SendStatus(fiber.StatusOK)

	case "view_submission":
		if payload.View == nil || payload.View.CallbackId != slack.EditModalCallbackID {
			return ctx.SendStatus(fiber.StatusOK)
		}
		decisionId, err := uuid.Parse(payload.View.PrivateMetadata)
		if err != nil {
			return ctx.SendStatus(fiber.StatusOK)
		}
		edit := service.ModalEdit{
			Title:     payload.View.Value("title_block", "title_input"),
			Summary:   payload.View.Value("summary_block", "summary_input"),
			Rationale: payload.View.Value("rationale_block", "rationale_input"),
			Tags:      payload.View.Value("tags_block", "tags_input"),
		}
		if err := c.decisionService.ApplyModalEdit(ctx.Context(), workspace.Id, decisionId, edit); err != nil {
			log.Printf("[WARN] Failed to apply modal edit for %s: %v", decisionId, err)
		}
		return ctx.SendStatus(fiber.StatusOK)
	}

	return ctx.SendStatus(fiber.StatusOK)
}

func (c *slackController) Commands(ctx *fiber.Ctx) error {
	var req dto.SlackCommandRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid command payload")
	}
	text := strings.TrimSpace(req.Text)

	if text == "" {
		return ctx.JSON(fiber.Map{"response_type": "ephemeral", "text": slack.UsageText})
	}

	workspace, err := c.workspaceService.FindByTeamID(ctx.Context(), req.TeamId)
	if err != nil {
		return err
	}
	if workspace == nil {
		return ctx.JSON(fiber.Map{"response_type": "ephemeral", "text": "This workspace is not connected yet."})
	}

	if err := c.publisherService.Enqueue(ctx.Context(), service.JobProcessQuery, map[string]interface{}{
		"workspace_id": workspace.Id.String(),
		"text":         text,
		"requester_id": req.UserId,
		"channel_id":   req.ChannelId,
		"response_url": req.ResponseURL,
	}); err != nil {
		return err
	}

	return ctx.JSON(fiber.Map{"response_type": "ephemeral", "text": slack.SearchingText})
}
