package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error writes a flat failure body: {"message": "..."}.
func Error(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"message": message})
}

// Unexpected writes the uniform 500 wrapper for unanticipated collaborator
// failures, surfacing the raw error message without rethrowing.
func Unexpected(c *gin.Context, message string, err error) {
	c.JSON(http.StatusInternalServerError, gin.H{"message": message, "error": err.Error()})
}
