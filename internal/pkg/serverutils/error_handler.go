package serverutils

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
)

// StatusMapper turns a domain error into an HTTP status. ok=false leaves it
// to the default handling.
type StatusMapper func(err error) (status int, ok bool)

var statusMappers []StatusMapper

// RegisterStatusMapper lets the service layer declare its sentinel errors
// without serverutils importing it.
func RegisterStatusMapper(m StatusMapper) {
	statusMappers = append(statusMappers, m)
}

func statusFor(err error) int {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return fiber.StatusBadRequest
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	for _, m := range statusMappers {
		if status, ok := m(err); ok {
			return status
		}
	}
	return fiber.StatusInternalServerError
}

func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		status := statusFor(err)
		message := err.Error()
		if status == fiber.StatusInternalServerError {
			log.Printf("[ERROR] %s %s: %v", ctx.Method(), ctx.Path(), err)
			message = "Internal server error"
		}
		return ctx.Status(status).JSON(ErrorResponse(status, message))
	}
}
