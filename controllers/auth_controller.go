package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sipstation/bubble-tea-pos-api/middleware"
)

// GoogleLoginRequest carries the ID token returned by Google Sign-In
type GoogleLoginRequest struct {
	Credential string `json:"credential" binding:"required"`
}

// AuthController verifies kiosk and console sign-ins
type AuthController struct {
	verifier middleware.TokenVerifier
	managers middleware.ManagerChecker
	logger   *zap.Logger
}

// NewAuthController creates an auth controller
func NewAuthController(verifier middleware.TokenVerifier, managers middleware.ManagerChecker, logger *zap.Logger) *AuthController {
	return &AuthController{verifier: verifier, managers: managers, logger: logger}
}

// GoogleLogin handles POST /api/v1/auth/google - verifies the credential and
// reports whether the account may open the manager console
func (ctl *AuthController) GoogleLogin(c *gin.Context) {
	var req GoogleLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	_, profile, err := middleware.VerifyCredential(c.Request.Context(), ctl.verifier, req.Credential)
	if err != nil {
		ctl.logger.Info("Google credential rejected", zap.Error(err))
		respondError(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid Google credential")
		return
	}

	isManager, err := ctl.managers.IsManager(c.Request.Context(), profile.Email)
	if err != nil {
		respondServiceError(c, ctl.logger, err)
		return
	}

	respondData(c, http.StatusOK, gin.H{
		"email":     profile.Email,
		"name":      profile.Name,
		"picture":   profile.Picture,
		"isManager": isManager,
	})
}

// Me handles GET /api/v1/auth/me - returns the profile of the bearer token.
// It runs behind EnsureValidToken.
func (ctl *AuthController) Me(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
		return
	}
	claims, err := middleware.GetClaims(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
		return
	}
	profile, ok := claims.CustomClaims.(*middleware.CustomClaims)
	if !ok {
		respondError(c, http.StatusUnauthorized, "INVALID_TOKEN", "Token has no profile claims")
		return
	}

	isManager, err := ctl.managers.IsManager(c.Request.Context(), profile.Email)
	if err != nil {
		respondServiceError(c, ctl.logger, err)
		return
	}

	respondData(c, http.StatusOK, gin.H{
		"id":        userID,
		"email":     profile.Email,
		"name":      profile.Name,
		"picture":   profile.Picture,
		"isManager": isManager,
	})
}
