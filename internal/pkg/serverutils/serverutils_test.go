package serverutils

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	ID   string `validate:"required,uuid"`
	Text string `validate:"required,max=5"`
}

func TestValidateRequest(t *testing.T) {
	assert.NoError(t, ValidateRequest(sample{ID: "3f2a6f1e-8c1b-4d7e-9a55-0b6c2d1e4f00", Text: "hi"}))

	err := ValidateRequest(sample{ID: "nope", Text: "too long"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "must be a valid UUID", verr.Fields["ID"])
	assert.Equal(t, "must be at most 5 characters", verr.Fields["Text"])
}

func newApp(h fiber.Handler, mw ...fiber.Handler) *fiber.App {
	app := fiber.New()
	app.Use(ErrorHandlerMiddleware())
	handlers := append(mw, h)
	app.Get("/x", handlers...)
	return app
}

func decode(t *testing.T, body io.Reader) map[string]interface{} {
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(body).Decode(&out))
	return out
}

func TestErrorHandlerMiddleware(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"not found", NotFound(errors.New("chat session not found")), fiber.StatusNotFound},
		{"bad request", BadRequest(errors.New("bad")), fiber.StatusBadRequest},
		{"validation", &ValidationError{Fields: map[string]string{"Chat": "is required"}}, fiber.StatusBadRequest},
		{"fiber error", fiber.ErrUnprocessableEntity, fiber.StatusUnprocessableEntity},
		{"unknown", errors.New("boom"), fiber.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newApp(func(c *fiber.Ctx) error { return tt.err })
			resp, err := app.Test(httptest.NewRequest("GET", "/x", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.code, resp.StatusCode)

			body := decode(t, resp.Body)
			assert.Equal(t, false, body["success"])
			assert.EqualValues(t, tt.code, body["code"])
		})
	}
}

func TestJwtMiddleware(t *testing.T) {
	ok := func(c *fiber.Ctx) error { return c.JSON(SuccessResponse("ok", c.Locals("subject"))) }

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "ops",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("s3cret"))
	require.NoError(t, err)

	tests := []struct {
		name   string
		secret string
		header string
		code   int
	}{
		{"disabled", "", "", fiber.StatusOK},
		{"missing token", "s3cret", "", fiber.StatusUnauthorized},
		{"wrong secret", "other", "Bearer " + signed, fiber.StatusUnauthorized},
		{"valid", "s3cret", "Bearer " + signed, fiber.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newApp(ok, NewJwtMiddleware(tt.secret))
			req := httptest.NewRequest("GET", "/x", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.code, resp.StatusCode)
		})
	}
}
