package controllers

import (
	"net/http"

	apperrors "attire-service/common/errors"
	"attire-service/middleware"
	"attire-service/services"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	authService *services.AuthService
}

func NewAuthController(authService *services.AuthService) *AuthController {
	return &AuthController{authService: authService}
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

func (ac *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}
	token, err := ac.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "token_type": "Bearer"})
}

func (ac *AuthController) ChangePassword(c *gin.Context) {
	username, err := middleware.GetUsername(c)
	if err != nil {
		apperrors.Respond(c, apperrors.ErrUnauthorized)
		return
	}
	var req changePasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := ac.authService.ChangePassword(c.Request.Context(), username, req.OldPassword, req.NewPassword); err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
}
