package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sipstation/bubble-tea-pos-api/services"
)

// AddManagerRequest represents the request body for adding a manager
type AddManagerRequest struct {
	Email string `json:"email" binding:"required"`
}

// ManagerController serves the manager allow-list endpoints
type ManagerController struct {
	managers *services.ManagerService
	logger   *zap.Logger
}

// NewManagerController creates a manager controller
func NewManagerController(managers *services.ManagerService, logger *zap.Logger) *ManagerController {
	return &ManagerController{managers: managers, logger: logger}
}

// ListManagers handles GET /api/v1/managers
func (ctl *ManagerController) ListManagers(c *gin.Context) {
	managers, err := ctl.managers.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, ctl.logger, err)
		return
	}
	respondData(c, http.StatusOK, managers)
}

// AddManager handles POST /api/v1/managers
func (ctl *ManagerController) AddManager(c *gin.Context) {
	var req AddManagerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	manager, err := ctl.managers.Add(c.Request.Context(), req.Email)
	if err != nil {
		respondServiceError(c, ctl.logger, err)
		return
	}
	respondData(c, http.StatusCreated, manager)
}

// DeleteManager handles DELETE /api/v1/managers/:id - the last manager
// cannot be removed
func (ctl *ManagerController) DeleteManager(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	email, err := ctl.managers.Delete(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, ctl.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Manager deleted successfully",
		"data":    gin.H{"email": email},
	})
}

// CheckManager handles GET /api/v1/managers/check/:email
func (ctl *ManagerController) CheckManager(c *gin.Context) {
	email := c.Param("email")
	isManager, err := ctl.managers.IsManager(c.Request.Context(), email)
	if err != nil {
		respondServiceError(c, ctl.logger, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{
		"email":     services.NormalizeEmail(email),
		"isManager": isManager,
	})
}
