package serverutils

import (
	"errors"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrTokenWorkspace = errors.New("token has no workspace")
)

// ParseToken validates an HS256 token signed with JWT_SECRET and returns the
// workspace and user it was issued for.
func ParseToken(tokenStr string) (uuid.UUID, string, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		return []byte(os.Getenv("JWT_SECRET")), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return uuid.Nil, "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, "", ErrInvalidToken
	}
	workspaceStr, _ := claims["workspace_id"].(string)
	workspaceId, err := uuid.Parse(workspaceStr)
	if err != nil {
		return uuid.Nil, "", ErrTokenWorkspace
	}
	userId, _ := claims["user_id"].(string)
	return workspaceId, userId, nil
}

// JwtMiddleware accepts HS256 tokens whose claims carry the caller's
// workspace_id and user_id.
func JwtMiddleware(ctx *fiber.Ctx) error {
	authHeader := ctx.Get("Authorization")
	if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Missing token"})
	}

	workspaceId, userId, err := ParseToken(authHeader[7:])
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": err.Error()})
	}

	ctx.Locals("workspace_id", workspaceId.String())
	ctx.Locals("user_id", userId)
	return ctx.Next()
}

func WorkspaceID(ctx *fiber.Ctx) uuid.UUID {
	s, _ := ctx.Locals("workspace_id").(string)
	id, _ := uuid.Parse(s)
	return id
}

func UserID(ctx *fiber.Ctx) string {
	s, _ := ctx.Locals("user_id").(string)
	return s
}

// IssueToken signs a token for the given workspace. Used by ledgerctl and tests.
func IssueToken(secret string, workspaceId uuid.UUID, userId string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"workspace_id": workspaceId.String(),
		"user_id":      userId,
	})
	return token.SignedString([]byte(secret))
}
