// internal/interfaces/http/handlers/response.go
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
	"github.com/your-org/storefront-backend/internal/pkg/validation"
)

// Status mirrors the HTTP status inside the envelope
type Status struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Envelope is the success wrapper used by catalog and settings endpoints
type Envelope struct {
	Success    bool        `json:"success"`
	Status     Status      `json:"status"`
	RequestID  string      `json:"requestId,omitempty"`
	Timestamp  string      `json:"timestamp"`
	Data       interface{} `json:"data"`
	Pagination interface{} `json:"pagination,omitempty"`
}

func respondSuccess(c *gin.Context, code int, data, pagination interface{}) {
	c.JSON(code, Envelope{
		Success: true,
		Status: Status{
			Code:    code,
			Message: http.StatusText(code),
		},
		RequestID:  c.GetString(middleware.ContextRequestID),
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Data:       data,
		Pagination: pagination,
	})
}

func respondError(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{
		"error": message,
	})
}

func respondInvalid(c *gin.Context, details interface{}) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "Invalid request data",
		"details": details,
	})
}

// bindJSON binds the request body and its binding rules. On failure it
// replies 400 with per-field details when the body parsed but broke a rule.
func bindJSON(c *gin.Context, obj interface{}) bool {
	err := c.ShouldBindJSON(obj)
	if err == nil {
		return true
	}

	if fields, ok := validation.Fields(err); ok {
		respondInvalid(c, fields)
	} else {
		respondInvalid(c, err.Error())
	}
	return false
}
