package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"decision-ledger-be/internal/pkg/logger"
	"decision-ledger-be/internal/pkg/serverutils"
	internalWS "decision-ledger-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedHandshake(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	h := NewFeedHandler(internalWS.NewHub(nil, logger.NewNopLogger()), logger.NewNopLogger())
	app := fiber.New()
	h.RegisterRoutes(app)

	token, err := serverutils.IssueToken("s3cret", uuid.New(), "U1")
	require.NoError(t, err)

	tests := []struct {
		name   string
		target string
		header string
		status int
	}{
		{"missing token", "/ws/feed", "", http.StatusUnauthorized},
		{"bad token", "/ws/feed?token=nope", "", http.StatusUnauthorized},
		{"query token without upgrade", "/ws/feed?token=" + token, "", http.StatusUpgradeRequired},
		{"header token without upgrade", "/ws/feed", "Bearer " + token, http.StatusUpgradeRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}
