package user

import (
	"errors"

	"parcel-delivery/apperrors"
	"parcel-delivery/constants"
	userModel "parcel-delivery/models/user"
	userTypes "parcel-delivery/types/user"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Dummy hash compared against when the email is unknown, so login latency
// does not reveal whether an account exists.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// Service implements identity operations: registration, credential
// verification and the role/status-restricted update rules.
type Service struct {
	db         *gorm.DB
	bcryptCost int
}

func NewService(db *gorm.DB, bcryptCost int) *Service {
	return &Service{db: db, bcryptCost: bcryptCost}
}

// Register creates a new account. Role defaults to SENDER, status to ACTIVE.
// A duplicate email is a Conflict.
func (s *Service) Register(req userTypes.RegisterRequest) (*userModel.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, apperrors.Internal("Failed to hash password", err)
	}

	role := req.Role
	if role == "" {
		role = constants.RoleSender
	}

	u := userModel.User{
		Uuid:     uuid.NewString(),
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hashed),
		Phone:    req.Phone,
		Address:  req.Address,
		Role:     role,
		Status:   constants.StatusActive,
	}

	if err := s.db.Create(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Conflict("A user with this email already exists")
		}
		return nil, apperrors.Internal("Failed to create user", err)
	}

	return &u, nil
}

// Authenticate verifies an email/password pair. The bcrypt comparison always
// runs, even for unknown emails.
func (s *Service) Authenticate(email, password string) (*userModel.User, error) {
	var u userModel.User
	findErr := s.db.Where("email = ?", email).First(&u).Error

	passwordHash := dummyHash
	if findErr == nil {
		passwordHash = u.Password
	}
	compareErr := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password))

	if findErr != nil || compareErr != nil {
		return nil, apperrors.Unauthorized("Invalid email or password")
	}
	if !u.IsUsable() {
		return nil, apperrors.Forbidden("User is blocked, deleted or inactive")
	}

	return &u, nil
}

// FindByID loads a single user record.
func (s *Service) FindByID(userID uint) (*userModel.User, error) {
	var u userModel.User
	if err := s.db.First(&u, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("User not found")
		}
		return nil, apperrors.Internal("Failed to load user", err)
	}
	return &u, nil
}

// ChangePassword verifies the old password and stores a new hash.
func (s *Service) ChangePassword(userID uint, oldPassword, newPassword string) error {
	u, err := s.FindByID(userID)
	if err != nil {
		return err
	}
	if !u.IsUsable() {
		return apperrors.Forbidden("User is blocked, deleted or inactive")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(oldPassword)); err != nil {
		return apperrors.Unauthorized("Old password incorrect")
	}
	if oldPassword == newPassword {
		return apperrors.Validation("New password cannot be same as old")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return apperrors.Internal("Failed to hash password", err)
	}

	if err := s.db.Model(u).Update("password", string(hashed)).Error; err != nil {
		return apperrors.Internal("Failed to update password", err)
	}
	return nil
}

// Update applies a PATCH to a user record, enforcing the role and status
// change restrictions:
//   - email is immutable (no field on the request type),
//   - SENDER/RECEIVER actors may never change roles,
//   - only an ADMIN may promote to ADMIN or touch status/is_deleted/is_verified.
func (s *Service) Update(targetID uint, req userTypes.UpdateRequest, actorRole string) (*userModel.User, error) {
	u, err := s.FindByID(targetID)
	if err != nil {
		return nil, err
	}

	if req.Role != nil {
		if actorRole == constants.RoleSender || actorRole == constants.RoleReceiver {
			return nil, apperrors.Forbidden("You are not authorized to change roles")
		}
		if *req.Role == constants.RoleAdmin && actorRole != constants.RoleAdmin {
			return nil, apperrors.Forbidden("You are not authorized to promote to admin")
		}
		u.Role = *req.Role
	}

	if req.Status != nil || req.IsDeleted != nil || req.IsVerified != nil {
		if actorRole != constants.RoleAdmin {
			return nil, apperrors.Forbidden("You are not authorized to change user status")
		}
		if req.Status != nil {
			u.Status = *req.Status
		}
		if req.IsDeleted != nil {
			u.IsDeleted = *req.IsDeleted
		}
		if req.IsVerified != nil {
			u.IsVerified = *req.IsVerified
		}
	}

	if req.Name != nil {
		u.Name = *req.Name
	}
	if req.Phone != nil {
		u.Phone = *req.Phone
	}
	if req.Address != nil {
		u.Address = *req.Address
	}
	if req.Picture != nil {
		u.Picture = *req.Picture
	}
	if req.Password != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*req.Password), s.bcryptCost)
		if err != nil {
			return nil, apperrors.Internal("Failed to hash password", err)
		}
		u.Password = string(hashed)
	}

	if err := s.db.Save(u).Error; err != nil {
		return nil, apperrors.Internal("Failed to update user", err)
	}
	return u, nil
}

// List returns users with a total count for the admin view.
func (s *Service) List(page, limit int) ([]userModel.User, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	var total int64
	if err := s.db.Model(&userModel.User{}).Count(&total).Error; err != nil {
		return nil, 0, apperrors.Internal("Failed to count users", err)
	}

	var users []userModel.User
	err := s.db.
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, 0, apperrors.Internal("Failed to list users", err)
	}

	return users, total, nil
}
