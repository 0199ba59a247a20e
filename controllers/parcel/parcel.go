package parcel

import (
	"fmt"
	"strconv"

	"parcel-delivery/apperrors"
	"parcel-delivery/logger"
	"parcel-delivery/middleware"
	parcelModel "parcel-delivery/models/parcel"
	parcelService "parcel-delivery/services/parcel"
	"parcel-delivery/types"
	parcelTypes "parcel-delivery/types/parcel"
	"parcel-delivery/utils"

	"github.com/gofiber/fiber/v2"
)

// ParcelController handles parcel-related HTTP requests
type ParcelController struct {
	parcels  *parcelService.Service
	asyncLog *logger.AsyncLogger
}

// NewParcelController creates a new parcel controller
func NewParcelController(parcels *parcelService.Service, asyncLog *logger.AsyncLogger) *ParcelController {
	return &ParcelController{parcels: parcels, asyncLog: asyncLog}
}

// Store creates a new parcel for the acting sender.
func (pc *ParcelController) Store(c *fiber.Ctx) error {
	claims, ok := middleware.CurrentUser(c)
	if !ok {
		return apperrors.Handle(c, apperrors.Unauthorized("Invalid user claims"))
	}

	var req parcelTypes.CreateParcelRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", err)
		return apperrors.Handle(c, apperrors.Validation("Invalid request body"))
	}
	if err := req.Validate(); err != nil {
		return apperrors.Handle(c, apperrors.Validation(err.Error()))
	}

	created, err := pc.parcels.Create(claims.UserID, req)
	if err != nil {
		return apperrors.Handle(c, err)
	}

	pc.asyncLog.Log(utils.CreateSanitizedLogEntry(c, &claims.UserID))

	logger.Success(fmt.Sprintf("Parcel created successfully with tracking id: %s", created.TrackingID))
	return c.Status(fiber.StatusCreated).JSON(types.ApiResponse{
		Success: true,
		Message: "Parcel created successfully",
		Status:  fiber.StatusCreated,
		Data:    created,
	})
}

// List returns all parcels for the admin view, filterable and paginated.
func (pc *ParcelController) List(c *fiber.Ctx) error {
	filters := parcelTypes.ListFilters{
		IsCancelled: utils.ParseBoolQuery(c, "isCancelled"),
		IsDelivered: utils.ParseBoolQuery(c, "isDelivered"),
		IsBlocked:   utils.ParseBoolQuery(c, "isBlocked"),
	}
	if raw := c.Query("status"); raw != "" {
		status := parcelModel.Status(raw)
		if !status.IsValid() {
			return apperrors.Handle(c, apperrors.Validation("Unknown parcel status: "+raw))
		}
		filters.Status = &status
	}

	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "10"))

	parcels, total, err := pc.parcels.List(filters, page, limit)
	if err != nil {
		return apperrors.Handle(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Success: true,
		Message: "Parcels retrieved successfully",
		Status:  fiber.StatusOK,
		Data:    parcels,
		Meta:    &types.Meta{Total: total, Page: page, Limit: limit},
	})
}

// MyParcels returns the acting sender's parcels.
func (pc *ParcelController) MyParcels(c *fiber.Ctx) error {
	claims, ok := middleware.CurrentUser(c)
	if !ok {
		return apperrors.Handle(c, apperrors.Unauthorized("Invalid user claims"))
	}

	parcels, err := pc.parcels.MyParcels(claims.UserID)
	if err != nil {
		return apperrors.Handle(c, err)
	}

	message := "Your parcels retrieved successfully"
	if len(parcels) == 0 {
		message = "No parcels found"
	}
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Success: true,
		Message: message,
		Status:  fiber.StatusOK,
		Data:    parcels,
	})
}

// IncomingParcels returns parcels addressed to the acting receiver.
func (pc *ParcelController) IncomingParcels(c *fiber.Ctx) error {
	claims, ok := middleware.CurrentUser(c)
	if !ok {
		return apperrors.Handle(c, apperrors.Unauthorized("Invalid user claims"))
	}

	parcels, err := pc.parcels.IncomingParcels(claims.UserID)
	if err != nil {
		return apperrors.Handle(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Success: true,
		Message: "Incoming parcels retrieved successfully",
		Status:  fiber.StatusOK,
		Data:    parcels,
	})
}

// GetSingle returns one parcel to its sender, linked receiver or an admin.
func (pc *ParcelController) GetSingle(c *fiber.Ctx) error {
	claims, ok := middleware.CurrentUser(c)
	if !ok {
		return apperrors.Handle(c, apperrors.Unauthorized("Invalid user claims"))
	}

	parcelID, err := utils.ParseIDParam(c, "id")
	if err != nil || parcelID == 0 {
		return apperrors.Handle(c, apperrors.Validation("Invalid parcel id"))
	}

	p, err := pc.parcels.GetSingle(parcelID, claims)
	if err != nil {
		return apperrors.Handle(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Success: true,
		Message: "Parcel retrieved successfully",
		Status:  fiber.StatusOK,
		Data:    p,
	})
}

// Cancel lets the original sender cancel a parcel while still REQUESTED.
func (pc *ParcelController) Cancel(c *fiber.Ctx) error {
	claims, ok := middleware.CurrentUser(c)
	if !ok {
		return apperrors.Handle(c, apperrors.Unauthorized("Invalid user claims"))
	}

	parcelID, err := utils.ParseIDParam(c, "id")
	if err != nil || parcelID == 0 {
		return apperrors.Handle(c, apperrors.Validation("Invalid parcel id"))
	}

	p, err := pc.parcels.Cancel(parcelID, claims.UserID)
	if err != nil {
		return apperrors.Handle(c, err)
	}

	logger.Success(fmt.Sprintf("Parcel cancelled: %s", p.TrackingID))
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Success: true,
		Message: "Parcel cancelled successfully",
		Status:  fiber.StatusOK,
		Data:    p,
	})
}

// UpdateStatus applies an admin status change.
func (pc *ParcelController) UpdateStatus(c *fiber.Ctx) error {
	claims, ok := middleware.CurrentUser(c)
	if !ok {
		return apperrors.Handle(c, apperrors.Unauthorized("Invalid user claims"))
	}

	parcelID, err := utils.ParseIDParam(c, "id")
	if err != nil || parcelID == 0 {
		return apperrors.Handle(c, apperrors.Validation("Invalid parcel id"))
	}

	var req parcelTypes.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Handle(c, apperrors.Validation("Invalid request body"))
	}
	if err := req.Validate(); err != nil {
		return apperrors.Handle(c, apperrors.Validation(err.Error()))
	}

	p, err := pc.parcels.UpdateStatus(parcelID, claims.UserID, parcelModel.Status(req.Status), req.Location, req.Note)
	if err != nil {
		return apperrors.Handle(c, err)
	}

	logger.Success(fmt.Sprintf("Parcel %s status updated to %s", p.TrackingID, p.CurrentStatus))
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Success: true,
		Message: "Parcel status updated successfully",
		Status:  fiber.StatusOK,
		Data:    p,
	})
}

// ConfirmDelivery lets the linked receiver confirm a deliverable parcel.
func (pc *ParcelController) ConfirmDelivery(c *fiber.Ctx) error {
	claims, ok := middleware.CurrentUser(c)
	if !ok {
		return apperrors.Handle(c, apperrors.Unauthorized("Invalid user claims"))
	}

	parcelID, err := utils.ParseIDParam(c, "id")
	if err != nil || parcelID == 0 {
		return apperrors.Handle(c, apperrors.Validation("Invalid parcel id"))
	}

	p, err := pc.parcels.ConfirmDelivery(parcelID, claims.UserID)
	if err != nil {
		return apperrors.Handle(c, err)
	}

	logger.Success(fmt.Sprintf("Parcel delivery confirmed: %s", p.TrackingID))
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Success: true,
		Message: "Parcel delivery confirmed successfully",
		Status:  fiber.StatusOK,
		Data:    p,
	})
}

// Delete hard-removes a parcel and its status log. Admin only.
func (pc *ParcelController) Delete(c *fiber.Ctx) error {
	parcelID, err := utils.ParseIDParam(c, "id")
	if err != nil || parcelID == 0 {
		return apperrors.Handle(c, apperrors.Validation("Invalid parcel id"))
	}

	if err := pc.parcels.Delete(parcelID); err != nil {
		return apperrors.Handle(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Success: true,
		Message: "Parcel deleted successfully",
		Status:  fiber.StatusOK,
	})
}

// Track is the public tracking endpoint; it returns only the redacted
// projection.
func (pc *ParcelController) Track(c *fiber.Ctx) error {
	trackingID := c.Params("trackingId")
	if trackingID == "" {
		return apperrors.Handle(c, apperrors.Validation("Tracking id is required"))
	}

	view, err := pc.parcels.GetByTrackingID(trackingID)
	if err != nil {
		return apperrors.Handle(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Success: true,
		Message: "Parcel retrieved successfully",
		Status:  fiber.StatusOK,
		Data:    view,
	})
}

// Block flags a parcel against further status changes. Admin only.
func (pc *ParcelController) Block(c *fiber.Ctx) error {
	parcelID, err := utils.ParseIDParam(c, "id")
	if err != nil || parcelID == 0 {
		return apperrors.Handle(c, apperrors.Validation("Invalid parcel id"))
	}

	p, err := pc.parcels.Block(parcelID)
	if err != nil {
		return apperrors.Handle(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Success: true,
		Message: "Parcel blocked successfully",
		Status:  fiber.StatusOK,
		Data:    p,
	})
}

// Unblock clears the blocked flag. Admin only.
func (pc *ParcelController) Unblock(c *fiber.Ctx) error {
	parcelID, err := utils.ParseIDParam(c, "id")
	if err != nil || parcelID == 0 {
		return apperrors.Handle(c, apperrors.Validation("Invalid parcel id"))
	}

	p, err := pc.parcels.Unblock(parcelID)
	if err != nil {
		return apperrors.Handle(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Success: true,
		Message: "Parcel unblocked successfully",
		Status:  fiber.StatusOK,
		Data:    p,
	})
}

// Stats returns aggregate parcel counts. Admin only.
func (pc *ParcelController) Stats(c *fiber.Ctx) error {
	stats, err := pc.parcels.Stats()
	if err != nil {
		return apperrors.Handle(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Success: true,
		Message: "Parcel statistics fetched successfully",
		Status:  fiber.StatusOK,
		Data:    stats,
	})
}
