package httputil

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kientrank3/revita-scheduling-api/pkg/errors"
)

// Response wraps all API responses
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *Error      `json:"error,omitempty"`
}

// Error represents an API error payload
type Error struct {
	Code     string                `json:"code"`
	Message  string                `json:"message"`
	Conflict *errors.ConflictError `json:"conflict,omitempty"`
}

// RespondWithSuccess sends a 200 success response
func RespondWithSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

// RespondWithCreated sends a 201 success response
func RespondWithCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Success: true, Data: data})
}

// RespondWithError maps application errors to HTTP responses. Conflict
// errors keep their interval detail; anything untyped becomes a 500.
func RespondWithError(c *gin.Context, err error) {
	if conflict, ok := errors.AsConflict(err); ok {
		c.JSON(http.StatusConflict, Response{
			Success: false,
			Error: &Error{
				Code:     string(errors.CodeConflict),
				Message:  conflict.Error(),
				Conflict: conflict,
			},
		})
		return
	}

	if appErr, ok := err.(*errors.AppError); ok {
		c.JSON(appErr.StatusCode(), Response{
			Success: false,
			Error:   &Error{Code: string(appErr.Code), Message: appErr.Message},
		})
		return
	}

	c.JSON(http.StatusInternalServerError, Response{
		Success: false,
		Error:   &Error{Code: string(errors.CodeInternal), Message: "internal server error"},
	})
}
