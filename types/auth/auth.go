package auth

import "github.com/go-playground/validator/v10"

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (req *LoginRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(req)
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" validate:"omitempty"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

func (req *ChangePasswordRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(req)
}

// LoginData is the payload returned on a successful login.
type LoginData struct {
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
	User         interface{} `json:"user"`
}
