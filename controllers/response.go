package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sipstation/bubble-tea-pos-api/services"
)

// statusForKind maps a service error kind to its HTTP status
var statusForKind = map[services.ErrorKind]int{
	services.KindValidation:         http.StatusBadRequest,
	services.KindNotFound:           http.StatusNotFound,
	services.KindConflict:           http.StatusConflict,
	services.KindFeatureUnavailable: http.StatusNotImplemented,
	services.KindPersistence:        http.StatusInternalServerError,
}

func respondData(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// respondServiceError renders err with the status of its kind. Only the
// client-safe message is rendered; the cause goes to the log.
func respondServiceError(c *gin.Context, logger *zap.Logger, err error) {
	kind := services.KindOf(err)
	status, ok := statusForKind[kind]
	if !ok {
		status = http.StatusInternalServerError
	}

	message := "Internal server error"
	var svcErr *services.Error
	if errors.As(err, &svcErr) {
		message = svcErr.Message
	}

	if status >= http.StatusInternalServerError {
		logger.Error("Request failed",
			zap.String("path", c.FullPath()),
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
	}
	respondError(c, status, string(kind), message)
}

func respondBindError(c *gin.Context, err error) {
	respondError(c, http.StatusBadRequest, string(services.KindValidation), "Invalid request data: "+err.Error())
}

// parseID reads a positive integer path parameter, answering 400 otherwise
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}
