package user

import (
	"strconv"

	"parcel-delivery/apperrors"
	"parcel-delivery/constants"
	"parcel-delivery/logger"
	"parcel-delivery/middleware"
	userService "parcel-delivery/services/user"
	"parcel-delivery/types"
	userTypes "parcel-delivery/types/user"
	"parcel-delivery/utils"

	"github.com/gofiber/fiber/v2"
)

type UserController struct {
	users    *userService.Service
	asyncLog *logger.AsyncLogger
}

func NewUserController(users *userService.Service, asyncLog *logger.AsyncLogger) *UserController {
	return &UserController{users: users, asyncLog: asyncLog}
}

// Register creates a new account. The password hash is never echoed back.
func (h *UserController) Register(c *fiber.Ctx) error {
	var req userTypes.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Error parsing request body", err)
		return apperrors.Handle(c, apperrors.Validation("Invalid request body"))
	}
	if err := req.Validate(); err != nil {
		return apperrors.Handle(c, apperrors.Validation(err.Error()))
	}

	u, err := h.users.Register(req)
	if err != nil {
		return apperrors.Handle(c, err)
	}

	h.asyncLog.Log(utils.CreateSanitizedLogEntry(c, &u.ID))

	logger.Success("User registered successfully: " + u.Email)
	return c.Status(fiber.StatusCreated).JSON(types.ApiResponse{
		Success: true,
		Message: "User registered successfully",
		Status:  fiber.StatusCreated,
		Data:    u,
	})
}

// List returns all users with a total count. Admin only.
func (h *UserController) List(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "10"))

	users, total, err := h.users.List(page, limit)
	if err != nil {
		return apperrors.Handle(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Success: true,
		Message: "Users retrieved successfully",
		Status:  fiber.StatusOK,
		Data:    users,
		Meta:    &types.Meta{Total: total, Page: page, Limit: limit},
	})
}

// GetProfile returns the acting user's own record.
func (h *UserController) GetProfile(c *fiber.Ctx) error {
	claims, ok := middleware.CurrentUser(c)
	if !ok {
		return apperrors.Handle(c, apperrors.Unauthorized("Invalid user claims"))
	}

	u, err := h.users.FindByID(claims.UserID)
	if err != nil {
		return apperrors.Handle(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Success: true,
		Message: "Profile retrieved successfully",
		Status:  fiber.StatusOK,
		Data:    u,
	})
}

// Update applies a PATCH to a user record, subject to the role and status
// change restrictions enforced by the service.
func (h *UserController) Update(c *fiber.Ctx) error {
	claims, ok := middleware.CurrentUser(c)
	if !ok {
		return apperrors.Handle(c, apperrors.Unauthorized("Invalid user claims"))
	}

	targetID, err := utils.ParseIDParam(c, "id")
	if err != nil || targetID == 0 {
		return apperrors.Handle(c, apperrors.Validation("Invalid user id"))
	}

	if claims.Role != constants.RoleAdmin && targetID != claims.UserID {
		return apperrors.Handle(c, apperrors.Forbidden("You can only update your own account"))
	}

	var req userTypes.UpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Handle(c, apperrors.Validation("Invalid request body"))
	}
	if err := req.Validate(); err != nil {
		return apperrors.Handle(c, apperrors.Validation(err.Error()))
	}

	updated, err := h.users.Update(targetID, req, claims.Role)
	if err != nil {
		return apperrors.Handle(c, err)
	}

	logger.Success("User updated successfully: " + updated.Email)
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Success: true,
		Message: "User updated successfully",
		Status:  fiber.StatusOK,
		Data:    updated,
	})
}
