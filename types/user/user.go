package user

import "github.com/go-playground/validator/v10"

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=255"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Phone    string `json:"phone" validate:"omitempty,max=20"`
	Address  string `json:"address" validate:"omitempty"`
	Role     string `json:"role" validate:"omitempty,oneof=SENDER RECEIVER"`
}

func (req *RegisterRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(req)
}

// UpdateRequest carries the PATCH /users/:id payload. Pointer fields
// distinguish "absent" from "set to zero value". Email is immutable and has
// no field here on purpose.
type UpdateRequest struct {
	Name       *string `json:"name" validate:"omitempty,min=1,max=255"`
	Phone      *string `json:"phone" validate:"omitempty,max=20"`
	Address    *string `json:"address"`
	Picture    *string `json:"picture" validate:"omitempty,max=2048"`
	Password   *string `json:"password" validate:"omitempty,min=6"`
	Role       *string `json:"role" validate:"omitempty,oneof=ADMIN SENDER RECEIVER"`
	Status     *string `json:"status" validate:"omitempty,oneof=ACTIVE INACTIVE BLOCKED DELETED"`
	IsDeleted  *bool   `json:"is_deleted"`
	IsVerified *bool   `json:"is_verified"`
}

func (req *UpdateRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(req)
}
