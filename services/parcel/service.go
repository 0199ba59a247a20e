package parcel

import (
	"errors"
	"time"

	"parcel-delivery/apperrors"
	"parcel-delivery/constants"
	parcelModel "parcel-delivery/models/parcel"
	userModel "parcel-delivery/models/user"
	"parcel-delivery/services/token"
	parcelTypes "parcel-delivery/types/parcel"

	"github.com/jinzhu/now"
	"gorm.io/gorm"
)

const estimatedDeliveryDays = 3

// Service is the parcel lifecycle engine. All status and flag mutations go
// through appendTransition so the denormalized current_status column and the
// status log tail can never diverge.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// appendTransition is the only mutator of CurrentStatus and the status log.
// It persists the parcel (including any flag changes made by the caller) and
// the new log row inside the caller's transaction.
func (s *Service) appendTransition(tx *gorm.DB, p *parcelModel.Parcel, entry parcelModel.StatusLog) error {
	p.CurrentStatus = entry.Status
	entry.ParcelID = p.ID
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	if err := tx.Save(p).Error; err != nil {
		return err
	}
	return tx.Create(&entry).Error
}

func (s *Service) findByID(parcelID uint) (*parcelModel.Parcel, error) {
	var p parcelModel.Parcel
	err := s.db.
		Preload("StatusLogs", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&p, parcelID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Parcel not found")
		}
		return nil, apperrors.Internal("Failed to load parcel", err)
	}
	return &p, nil
}

// Create registers a new parcel for the sender: fee computation, tracking id
// generation, best-effort receiver account linking by phone, initial
// REQUESTED log entry.
func (s *Service) Create(senderID uint, req parcelTypes.CreateParcelRequest) (*parcelModel.Parcel, error) {
	if req.Weight <= 0 {
		return nil, apperrors.Validation("Weight must be greater than zero")
	}
	if req.Receiver.Name == "" || req.Receiver.Phone == "" || req.Receiver.Address == "" {
		return nil, apperrors.Validation("Receiver name, phone and address are required")
	}
	if req.DeliveryAddress == "" {
		return nil, apperrors.Validation("Delivery address is required")
	}

	createdAt := time.Now()
	fee := calculateParcelFee(req.Weight, req.ParcelType)
	eta := now.With(createdAt.AddDate(0, 0, estimatedDeliveryDays)).EndOfDay()

	// Best-effort: link an existing account whose phone matches the receiver
	// contact. Absence is not an error.
	var receiverUserID *uint
	var receiverUser userModel.User
	if err := s.db.Where("phone = ?", req.Receiver.Phone).First(&receiverUser).Error; err == nil {
		receiverUserID = &receiverUser.ID
	}

	note := "Parcel created by sender"
	var created *parcelModel.Parcel

	// The unique index on tracking_id is the authoritative collision guard;
	// retry once with a fresh suffix before giving up.
	for attempt := 0; attempt < 2; attempt++ {
		trackingID, err := generateTrackingID(createdAt)
		if err != nil {
			return nil, apperrors.Internal("Failed to generate tracking id", err)
		}

		p := parcelModel.Parcel{
			TrackingID:            trackingID,
			SenderID:              senderID,
			ReceiverName:          req.Receiver.Name,
			ReceiverPhone:         req.Receiver.Phone,
			ReceiverAddress:       req.Receiver.Address,
			ReceiverUserID:        receiverUserID,
			ParcelType:            req.ParcelType,
			Weight:                req.Weight,
			DeliveryAddress:       req.DeliveryAddress,
			ParcelFee:             fee,
			CurrentStatus:         parcelModel.StatusRequested,
			EstimatedDeliveryDate: &eta,
		}

		err = s.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&p).Error; err != nil {
				return err
			}
			return s.appendTransition(tx, &p, parcelModel.StatusLog{
				Status:    parcelModel.StatusRequested,
				Timestamp: createdAt,
				Note:      &note,
			})
		})
		if err == nil {
			created = &p
			break
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) && attempt == 0 {
			continue
		}
		return nil, apperrors.Internal("Failed to create parcel", err)
	}

	return s.findByID(created.ID)
}

// Cancel lets the original sender cancel a parcel while it is still
// REQUESTED.
func (s *Service) Cancel(parcelID, actorID uint) (*parcelModel.Parcel, error) {
	p, err := s.findByID(parcelID)
	if err != nil {
		return nil, err
	}

	if p.SenderID != actorID {
		return nil, apperrors.Forbidden("Only the sender can cancel this parcel")
	}
	if p.IsBlocked {
		return nil, apperrors.InvalidTransition("Cannot cancel a blocked parcel")
	}
	if p.CurrentStatus != parcelModel.StatusRequested {
		return nil, apperrors.InvalidTransition("Cannot cancel parcel after approval")
	}

	note := "Cancelled by sender"
	p.IsCancelled = true
	err = s.db.Transaction(func(tx *gorm.DB) error {
		return s.appendTransition(tx, p, parcelModel.StatusLog{
			Status:    parcelModel.StatusCancelled,
			UpdatedBy: &actorID,
			Note:      &note,
		})
	})
	if err != nil {
		return nil, apperrors.Internal("Failed to cancel parcel", err)
	}

	return s.findByID(p.ID)
}

// UpdateStatus applies an admin status change. Any valid status value is
// accepted; only the cancelled/delivered/blocked guards apply.
func (s *Service) UpdateStatus(parcelID, adminID uint, status parcelModel.Status, location, note *string) (*parcelModel.Parcel, error) {
	if !status.IsValid() {
		return nil, apperrors.Validation("Unknown parcel status: " + status.String())
	}

	p, err := s.findByID(parcelID)
	if err != nil {
		return nil, err
	}

	if p.IsCancelled {
		return nil, apperrors.InvalidTransition("Cannot update cancelled parcel")
	}
	if p.IsDelivered {
		return nil, apperrors.InvalidTransition("Cannot update delivered parcel")
	}
	if p.IsBlocked {
		return nil, apperrors.InvalidTransition("Cannot update blocked parcel")
	}

	if status == parcelModel.StatusDelivered {
		p.IsDelivered = true
	}
	if status == parcelModel.StatusCancelled {
		p.IsCancelled = true
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		return s.appendTransition(tx, p, parcelModel.StatusLog{
			Status:    status,
			Location:  location,
			UpdatedBy: &adminID,
			Note:      note,
		})
	})
	if err != nil {
		return nil, apperrors.Internal("Failed to update parcel status", err)
	}

	return s.findByID(p.ID)
}

// ConfirmDelivery lets the linked receiver account mark a deliverable parcel
// as delivered.
func (s *Service) ConfirmDelivery(parcelID, receiverID uint) (*parcelModel.Parcel, error) {
	p, err := s.findByID(parcelID)
	if err != nil {
		return nil, err
	}

	if p.ReceiverUserID == nil || *p.ReceiverUserID != receiverID {
		return nil, apperrors.Forbidden("You are not authorized to confirm this delivery")
	}
	if p.IsDelivered {
		return nil, apperrors.InvalidTransition("Parcel already delivered")
	}
	if p.IsCancelled {
		return nil, apperrors.InvalidTransition("Cannot deliver cancelled parcel")
	}
	if p.IsBlocked {
		return nil, apperrors.InvalidTransition("Cannot deliver blocked parcel")
	}
	if !p.CurrentStatus.IsDeliverable() {
		return nil, apperrors.InvalidTransition("Parcel not in a deliverable state")
	}

	note := "Delivery confirmed by receiver"
	p.IsDelivered = true
	err = s.db.Transaction(func(tx *gorm.DB) error {
		return s.appendTransition(tx, p, parcelModel.StatusLog{
			Status:    parcelModel.StatusDelivered,
			UpdatedBy: &receiverID,
			Note:      &note,
		})
	})
	if err != nil {
		return nil, apperrors.Internal("Failed to confirm delivery", err)
	}

	return s.findByID(p.ID)
}

// GetByTrackingID returns the public redacted projection for the tracking
// endpoint. No sender or receiver identity fields leave the engine here.
func (s *Service) GetByTrackingID(trackingID string) (*parcelTypes.PublicParcelView, error) {
	var p parcelModel.Parcel
	err := s.db.
		Preload("StatusLogs", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Where("tracking_id = ?", trackingID).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Parcel not found")
		}
		return nil, apperrors.Internal("Failed to load parcel", err)
	}

	view := &parcelTypes.PublicParcelView{
		TrackingID:            p.TrackingID,
		CurrentStatus:         p.CurrentStatus,
		EstimatedDeliveryDate: p.EstimatedDeliveryDate,
		StatusLogs:            make([]parcelTypes.PublicStatusLog, 0, len(p.StatusLogs)),
	}
	for _, entry := range p.StatusLogs {
		view.StatusLogs = append(view.StatusLogs, parcelTypes.PublicStatusLog{
			Status:    entry.Status,
			Timestamp: entry.Timestamp,
			Location:  entry.Location,
			Note:      entry.Note,
		})
	}
	return view, nil
}

// GetSingle returns a parcel to its sender, its linked receiver, or an admin.
func (s *Service) GetSingle(parcelID uint, actor *token.Claims) (*parcelModel.Parcel, error) {
	p, err := s.findByID(parcelID)
	if err != nil {
		return nil, err
	}

	isSender := p.SenderID == actor.UserID
	isReceiver := p.ReceiverUserID != nil && *p.ReceiverUserID == actor.UserID
	isAdmin := actor.Role == constants.RoleAdmin
	if !isSender && !isReceiver && !isAdmin {
		return nil, apperrors.Forbidden("Access denied")
	}

	return p, nil
}

// List returns parcels newest-first for the admin view, applying the
// exact-match filters and pagination.
func (s *Service) List(filters parcelTypes.ListFilters, page, limit int) ([]parcelModel.Parcel, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	query := s.db.Model(&parcelModel.Parcel{})
	if filters.Status != nil {
		query = query.Where("current_status = ?", *filters.Status)
	}
	if filters.IsCancelled != nil {
		query = query.Where("is_cancelled = ?", *filters.IsCancelled)
	}
	if filters.IsDelivered != nil {
		query = query.Where("is_delivered = ?", *filters.IsDelivered)
	}
	if filters.IsBlocked != nil {
		query = query.Where("is_blocked = ?", *filters.IsBlocked)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Internal("Failed to count parcels", err)
	}

	var parcels []parcelModel.Parcel
	err := query.
		Preload("StatusLogs", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&parcels).Error
	if err != nil {
		return nil, 0, apperrors.Internal("Failed to list parcels", err)
	}

	return parcels, total, nil
}

// MyParcels returns the sender's parcels newest-first.
func (s *Service) MyParcels(senderID uint) ([]parcelModel.Parcel, error) {
	var parcels []parcelModel.Parcel
	err := s.db.
		Preload("StatusLogs", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Where("sender_id = ?", senderID).
		Order("created_at DESC").
		Find(&parcels).Error
	if err != nil {
		return nil, apperrors.Internal("Failed to list parcels", err)
	}
	return parcels, nil
}

// IncomingParcels returns parcels addressed to the receiver's linked account,
// newest-first.
func (s *Service) IncomingParcels(receiverID uint) ([]parcelModel.Parcel, error) {
	var parcels []parcelModel.Parcel
	err := s.db.
		Preload("StatusLogs", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Where("receiver_user_id = ?", receiverID).
		Order("created_at DESC").
		Find(&parcels).Error
	if err != nil {
		return nil, apperrors.Internal("Failed to list parcels", err)
	}
	return parcels, nil
}

// Delete hard-removes the aggregate and its status log.
func (s *Service) Delete(parcelID uint) error {
	p, err := s.findByID(parcelID)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("parcel_id = ?", p.ID).Delete(&parcelModel.StatusLog{}).Error; err != nil {
			return err
		}
		return tx.Delete(&parcelModel.Parcel{}, p.ID).Error
	})
	if err != nil {
		return apperrors.Internal("Failed to delete parcel", err)
	}
	return nil
}

// Block flags a parcel so no status-changing operation succeeds until it is
// unblocked. The flag is not a status and appends no log entry.
func (s *Service) Block(parcelID uint) (*parcelModel.Parcel, error) {
	return s.setBlocked(parcelID, true)
}

// Unblock clears the blocked flag.
func (s *Service) Unblock(parcelID uint) (*parcelModel.Parcel, error) {
	return s.setBlocked(parcelID, false)
}

func (s *Service) setBlocked(parcelID uint, blocked bool) (*parcelModel.Parcel, error) {
	p, err := s.findByID(parcelID)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(p).Update("is_blocked", blocked).Error; err != nil {
		return nil, apperrors.Internal("Failed to update parcel", err)
	}
	return s.findByID(p.ID)
}

// Stats aggregates parcel counts for the admin dashboard.
func (s *Service) Stats() (*parcelTypes.Stats, error) {
	stats := &parcelTypes.Stats{ByStatus: make(map[string]int64)}

	if err := s.db.Model(&parcelModel.Parcel{}).Count(&stats.Total).Error; err != nil {
		return nil, apperrors.Internal("Failed to compute parcel stats", err)
	}
	if err := s.db.Model(&parcelModel.Parcel{}).Where("is_delivered = ?", true).Count(&stats.Delivered).Error; err != nil {
		return nil, apperrors.Internal("Failed to compute parcel stats", err)
	}
	if err := s.db.Model(&parcelModel.Parcel{}).Where("is_cancelled = ?", true).Count(&stats.Cancelled).Error; err != nil {
		return nil, apperrors.Internal("Failed to compute parcel stats", err)
	}
	if err := s.db.Model(&parcelModel.Parcel{}).Where("is_blocked = ?", true).Count(&stats.Blocked).Error; err != nil {
		return nil, apperrors.Internal("Failed to compute parcel stats", err)
	}

	rows := []struct {
		CurrentStatus string
		Count         int64
	}{}
	err := s.db.Model(&parcelModel.Parcel{}).
		Select("current_status, count(*) as count").
		Group("current_status").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Internal("Failed to compute parcel stats", err)
	}
	for _, row := range rows {
		stats.ByStatus[row.CurrentStatus] = row.Count
	}

	return stats, nil
}
