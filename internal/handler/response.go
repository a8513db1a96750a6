package handler

import (
	"github.com/labstack/echo/v4"

	"userboard/internal/errors"
)

// Response is the envelope every endpoint returns. OK is the discriminator
// clients branch on; Message is for humans only.
type Response struct {
	OK         bool        `json:"ok"`
	StatusCode int         `json:"statusCode"`
	Message    string      `json:"message,omitempty"`
	Data       interface{} `json:"data,omitempty"`
}

func respond(c echo.Context, status int, message string, data interface{}) error {
	return c.JSON(status, Response{
		OK:         status < 400,
		StatusCode: status,
		Message:    message,
		Data:       data,
	})
}

func respondError(c echo.Context, err error) error {
	he := errors.MapErrorToHTTP(err)
	return c.JSON(he.StatusCode, Response{
		OK:         false,
		StatusCode: he.StatusCode,
		Message:    he.Message,
	})
}
