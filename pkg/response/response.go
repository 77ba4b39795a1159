package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/Kaensy/mathed-romania/pkg/errors"
)

// JSON sends a success payload as-is. The auth API uses flat response
// bodies ({message, user?} or a bare record) rather than an envelope,
// because browser clients consume these shapes directly.
func JSON(c *gin.Context, status int, data interface{}) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(status, data)
}

// Message sends a {"message": ...} body.
func Message(c *gin.Context, status int, message string) {
	JSON(c, status, gin.H{"message": message})
}

// Created responds with HTTP 201 Created.
func Created(c *gin.Context, data interface{}) {
	JSON(c, http.StatusCreated, data)
}

// Error converts the error into the wire contract: validation failures
// serialise as a field -> messages map, everything else as {"error": ...}.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	if len(appErr.Fields) > 0 {
		c.JSON(appErr.Status, appErr.Fields)
		return
	}
	c.JSON(appErr.Status, gin.H{"error": appErr.Message})
}

// NoContent sends a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
