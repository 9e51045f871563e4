package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SEB120195/gestion-palettes-backend/internal/apperr"
)

// apiResponse is the envelope every endpoint answers with.
type apiResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Count   *int   `json:"count,omitempty"`
}

func respondData(c *gin.Context, status int, data any) {
	c.JSON(status, apiResponse{Success: true, Data: data})
}

// respondList adds the count field used by collection endpoints.
func respondList(c *gin.Context, data any, count int) {
	c.JSON(http.StatusOK, apiResponse{Success: true, Data: data, Count: &count})
}

func respondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, apiResponse{Success: true, Message: message})
}

// respondError maps the error taxonomy onto HTTP statuses. Internal
// failures are logged with full detail and answered with a generic
// message.
func respondError(c *gin.Context, err error) {
	var status int
	message := err.Error()

	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		status = http.StatusBadRequest
	case apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindConflict:
		status = http.StatusConflict
	default:
		status = http.StatusInternalServerError
		log.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		message = "internal server error"
	}

	c.AbortWithStatusJSON(status, apiResponse{Success: false, Message: message})
}
