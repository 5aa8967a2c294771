package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskforge-dev/taskforge/internal/apperrors"
	"github.com/taskforge-dev/taskforge/pkg/logger"
)

var log = logger.Nop()

// UseLogger installs the process logger; wired once from main.
func UseLogger(l logger.Logger) {
	log = l
}

// respondError maps a domain error to its HTTP status. Internal failures are
// logged with their cause but never leak it to the client.
func respondError(ctx *gin.Context, err error) {
	status := apperrors.HTTPStatus(err)

	if status == http.StatusInternalServerError {
		log.Error("request failed",
			"path", ctx.Request.URL.Path,
			"error", err,
		)
		ctx.JSON(status, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(status, gin.H{"error": err.Error()})
}
