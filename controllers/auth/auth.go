package auth

import (
	"parcel-delivery/apperrors"
	"parcel-delivery/config"
	"parcel-delivery/logger"
	"parcel-delivery/middleware"
	"parcel-delivery/services/token"
	userService "parcel-delivery/services/user"
	"parcel-delivery/types"
	authTypes "parcel-delivery/types/auth"
	"parcel-delivery/utils"

	"github.com/gofiber/fiber/v2"
)

type AuthController struct {
	cfg        *config.Config
	users      *userService.Service
	tokens     *token.Service
	tokenStore *token.Store
	asyncLog   *logger.AsyncLogger
}

func NewAuthController(cfg *config.Config, users *userService.Service, tokens *token.Service, tokenStore *token.Store, asyncLog *logger.AsyncLogger) *AuthController {
	return &AuthController{
		cfg:        cfg,
		users:      users,
		tokens:     tokens,
		tokenStore: tokenStore,
		asyncLog:   asyncLog,
	}
}

// Helper function to set secure cookies based on environment
func (h *AuthController) setSecureCookie(c *fiber.Ctx, name, value string, maxAge int) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    value,
		HTTPOnly: true,
		Secure:   h.cfg.IsProduction(),
		SameSite: "Strict",
		MaxAge:   maxAge,
		Path:     "/",
	})
}

// Login verifies credentials and issues the access/refresh token pair.
func (h *AuthController) Login(c *fiber.Ctx) error {
	var req authTypes.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Error parsing request body", err)
		return apperrors.Handle(c, apperrors.Validation("Invalid request body"))
	}
	if err := req.Validate(); err != nil {
		return apperrors.Handle(c, apperrors.Validation(err.Error()))
	}

	u, err := h.users.Authenticate(req.Email, req.Password)
	if err != nil {
		return apperrors.Handle(c, err)
	}

	claims := token.Claims{UserID: u.ID, Email: u.Email, Role: u.Role, Status: u.Status}
	accessToken, err := h.tokens.GenerateAccessToken(claims)
	if err != nil {
		return apperrors.Handle(c, apperrors.Internal("Failed to issue access token", err))
	}
	refreshToken, err := h.tokens.GenerateRefreshToken(claims)
	if err != nil {
		return apperrors.Handle(c, apperrors.Internal("Failed to issue refresh token", err))
	}

	if err := h.tokenStore.Save(c.Context(), refreshToken, u.ID, h.cfg.JWTRefreshExpires); err != nil {
		return apperrors.Handle(c, apperrors.Internal("Failed to persist refresh token", err))
	}

	h.setSecureCookie(c, "access", accessToken, int(h.cfg.JWTAccessExpires.Seconds()))
	h.setSecureCookie(c, "refresh", refreshToken, int(h.cfg.JWTRefreshExpires.Seconds()))

	h.asyncLog.Log(utils.CreateSanitizedLogEntry(c, &u.ID))

	logger.Success("User logged in successfully: " + u.Email)
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Success: true,
		Message: "Login successful",
		Status:  fiber.StatusOK,
		Data: authTypes.LoginData{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			User:         u,
		},
	})
}

// RefreshToken exchanges a valid, unrevoked refresh token for a new access
// token. The user's current status is re-checked against the store.
func (h *AuthController) RefreshToken(c *fiber.Ctx) error {
	var req authTypes.RefreshTokenRequest
	if err := c.BodyParser(&req); err != nil && c.Cookies("refresh") == "" {
		return apperrors.Handle(c, apperrors.Validation("Invalid request body"))
	}

	refreshToken := req.RefreshToken
	if refreshToken == "" {
		refreshToken = c.Cookies("refresh")
	}
	if refreshToken == "" {
		return apperrors.Handle(c, apperrors.Validation("Refresh token is required"))
	}

	claims, err := h.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return apperrors.Handle(c, err)
	}

	active, err := h.tokenStore.Exists(c.Context(), refreshToken)
	if err != nil {
		return apperrors.Handle(c, apperrors.Internal("Failed to check refresh token", err))
	}
	if !active {
		return apperrors.Handle(c, apperrors.Unauthorized("Refresh token has been revoked"))
	}

	u, err := h.users.FindByID(claims.UserID)
	if err != nil {
		return apperrors.Handle(c, err)
	}
	if !u.IsUsable() {
		return apperrors.Handle(c, apperrors.Forbidden("User is blocked, deleted or inactive"))
	}

	accessToken, err := h.tokens.GenerateAccessToken(token.Claims{
		UserID: u.ID, Email: u.Email, Role: u.Role, Status: u.Status,
	})
	if err != nil {
		return apperrors.Handle(c, apperrors.Internal("Failed to issue access token", err))
	}

	h.setSecureCookie(c, "access", accessToken, int(h.cfg.JWTAccessExpires.Seconds()))

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Success: true,
		Message: "Access token refreshed",
		Status:  fiber.StatusOK,
		Data:    fiber.Map{"accessToken": accessToken},
	})
}

// Logout revokes the refresh token and clears the auth cookies.
func (h *AuthController) Logout(c *fiber.Ctx) error {
	var req authTypes.RefreshTokenRequest
	_ = c.BodyParser(&req)

	refreshToken := req.RefreshToken
	if refreshToken == "" {
		refreshToken = c.Cookies("refresh")
	}
	if refreshToken != "" {
		if err := h.tokenStore.Revoke(c.Context(), refreshToken); err != nil {
			logger.Error("Failed to revoke refresh token", err)
		}
	}

	h.setSecureCookie(c, "access", "", -1)
	h.setSecureCookie(c, "refresh", "", -1)

	logger.Success("Logout successful")
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Success: true,
		Message: "Logout successful",
		Status:  fiber.StatusOK,
	})
}

// ChangePassword verifies the old credential and stores a new hash.
func (h *AuthController) ChangePassword(c *fiber.Ctx) error {
	claims, ok := middleware.CurrentUser(c)
	if !ok {
		return apperrors.Handle(c, apperrors.Unauthorized("Invalid user claims"))
	}

	var req authTypes.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Handle(c, apperrors.Validation("Invalid request body"))
	}
	if err := req.Validate(); err != nil {
		return apperrors.Handle(c, apperrors.Validation(err.Error()))
	}

	if err := h.users.ChangePassword(claims.UserID, req.OldPassword, req.NewPassword); err != nil {
		return apperrors.Handle(c, err)
	}

	logger.Success("Password changed for user: " + claims.Email)
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Success: true,
		Message: "Password changed successfully",
		Status:  fiber.StatusOK,
	})
}
