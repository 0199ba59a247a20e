package parcel

import (
	"time"

	"github.com/go-playground/validator/v10"

	parcelModel "parcel-delivery/models/parcel"
)

type ReceiverContact struct {
	Name    string `json:"name" validate:"required,min=1,max=255"`
	Phone   string `json:"phone" validate:"required,max=20"`
	Address string `json:"address" validate:"required,min=1"`
}

type CreateParcelRequest struct {
	Receiver        ReceiverContact `json:"receiver" validate:"required"`
	ParcelType      string          `json:"parcel_type" validate:"required,min=1,max=50"`
	Weight          float64         `json:"weight" validate:"required,gt=0"`
	DeliveryAddress string          `json:"delivery_address" validate:"required,min=1"`
}

func (req *CreateParcelRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(req)
}

type UpdateStatusRequest struct {
	Status   string  `json:"status" validate:"required"`
	Location *string `json:"location" validate:"omitempty,max=255"`
	Note     *string `json:"note"`
}

func (req *UpdateStatusRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(req)
}

// ListFilters are the admin list predicates; each non-nil field is an
// exact-match condition ANDed with the others.
type ListFilters struct {
	Status      *parcelModel.Status
	IsCancelled *bool
	IsDelivered *bool
	IsBlocked   *bool
}

// PublicStatusLog is the redacted log projection for the tracking endpoint.
type PublicStatusLog struct {
	Status    parcelModel.Status `json:"status"`
	Timestamp time.Time          `json:"timestamp"`
	Location  *string            `json:"location,omitempty"`
	Note      *string            `json:"note,omitempty"`
}

// PublicParcelView is the unauthenticated tracking projection. No sender or
// receiver identity fields.
type PublicParcelView struct {
	TrackingID            string             `json:"tracking_id"`
	CurrentStatus         parcelModel.Status `json:"current_status"`
	EstimatedDeliveryDate *time.Time         `json:"estimated_delivery_date,omitempty"`
	StatusLogs            []PublicStatusLog  `json:"status_logs"`
}

// Stats is the admin dashboard aggregate.
type Stats struct {
	Total     int64            `json:"total"`
	Delivered int64            `json:"delivered"`
	Cancelled int64            `json:"cancelled"`
	Blocked   int64            `json:"blocked"`
	ByStatus  map[string]int64 `json:"by_status"`
}
