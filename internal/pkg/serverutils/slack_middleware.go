package serverutils

import (
	"time"

	"decision-ledger-be/pkg/slack"

	"github.com/gofiber/fiber/v2"
)

// SlackSignatureMiddleware rejects webhook calls that are not signed with
// the app's signing secret. An empty secret disables the check.
func SlackSignatureMiddleware(signingSecret string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if signingSecret == "" {
			return ctx.Next()
		}
		ok := slack.VerifySignature(
			signingSecret,
			ctx.Get("X-Slack-Request-Timestamp"),
			ctx.Body(),
			ctx.Get("X-Slack-Signature"),
			time.Now(),
		)
		if !ok {
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid signature"})
		}
		return ctx.Next()
	}
}
