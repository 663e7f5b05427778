package handler

import (
	"github.com/labstack/echo/v4"
)

// Envelope wraps every successful response.
type Envelope struct {
	Message string `json:"message"`
	Data    any    `json:"data"`
	Status  int    `json:"status"`
}

// ErrorEnvelope wraps every error response. Data is null or a field → messages map.
type ErrorEnvelope struct {
	Error  string `json:"error"`
	Data   any    `json:"data"`
	Status int    `json:"status"`
}

func respond(c echo.Context, status int, message string, data any) error {
	return c.JSON(status, Envelope{Message: message, Data: data, Status: status})
}
