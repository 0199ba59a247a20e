package database

import (
	"fmt"

	"parcel-delivery/config"
	"parcel-delivery/constants"
	"parcel-delivery/logger"
	log_model "parcel-delivery/models/log"
	parcel_model "parcel-delivery/models/parcel"
	user_model "parcel-delivery/models/user"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// InitDB opens the PostgreSQL connection, runs migrations and creates
// indexes. The returned handle is passed explicitly to every consumer; there
// is no package-level connection.
func InitDB(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.DBHost, cfg.DBPort, cfg.DBUsername, cfg.DBPassword, cfg.DBDatabase, cfg.DBSSLMode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		logger.Error("Failed to connect to the database", err)
		return nil, err
	}
	logger.Success("Successfully connected to the database")

	if err := autoMigrate(db); err != nil {
		logger.Error("Failed to run migrations", err)
		return nil, err
	}
	logger.Success("All migrations completed successfully")

	if err := createIndexes(db); err != nil {
		logger.Error("Failed to create indexes", err)
		return nil, err
	}
	logger.Success("All indexes created successfully")

	return db, nil
}

// autoMigrate runs auto migration for all models
func autoMigrate(db *gorm.DB) error {
	// Stage 1: Core foundation models
	stage1Models := []interface{}{
		&user_model.User{},
	}

	for _, model := range stage1Models {
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	// Stage 2: Models with dependencies on Stage 1
	stage2Models := []interface{}{
		&parcel_model.Parcel{},
		&parcel_model.StatusLog{},
	}

	for _, model := range stage2Models {
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	// Stage 3: Remaining models
	remainingModels := []interface{}{
		// Logging
		&log_model.Log{},
	}

	for _, model := range remainingModels {
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	return nil
}

// createIndexes creates additional indexes for better performance
func createIndexes(db *gorm.DB) error {
	// User indexes
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_users_email ON users(email)").Error; err != nil {
		return fmt.Errorf("failed to create user email index: %w", err)
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_users_phone ON users(phone)").Error; err != nil {
		return fmt.Errorf("failed to create user phone index: %w", err)
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_users_role ON users(role)").Error; err != nil {
		return fmt.Errorf("failed to create user role index: %w", err)
	}

	// Parcel indexes
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_parcels_tracking_id ON parcels(tracking_id)").Error; err != nil {
		return fmt.Errorf("failed to create parcel tracking_id index: %w", err)
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_parcels_sender_id ON parcels(sender_id)").Error; err != nil {
		return fmt.Errorf("failed to create parcel sender_id index: %w", err)
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_parcels_current_status ON parcels(current_status)").Error; err != nil {
		return fmt.Errorf("failed to create parcel current_status index: %w", err)
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_parcels_created_at ON parcels(created_at)").Error; err != nil {
		return fmt.Errorf("failed to create parcel created_at index: %w", err)
	}

	// Status log indexes
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_parcel_status_logs_parcel_id ON parcel_status_logs(parcel_id)").Error; err != nil {
		return fmt.Errorf("failed to create status log parcel_id index: %w", err)
	}

	// Log indexes
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_logs_status_code ON logs(status_code)").Error; err != nil {
		return fmt.Errorf("failed to create log status_code index: %w", err)
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_logs_created_at ON logs(created_at)").Error; err != nil {
		return fmt.Errorf("failed to create log created_at index: %w", err)
	}

	return nil
}

// SeedAdmin creates the bootstrap admin account when no admin exists yet.
// Credentials come from ADMIN_EMAIL / ADMIN_PASSWORD; both empty means no
// seeding.
func SeedAdmin(db *gorm.DB, cfg *config.Config, email, password string) error {
	if email == "" || password == "" {
		return nil
	}

	var count int64
	if err := db.Model(&user_model.User{}).Where("role = ?", constants.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cfg.BcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := user_model.User{
		Uuid:       uuid.NewString(),
		Name:       "System Admin",
		Email:      email,
		Password:   string(hashed),
		Role:       constants.RoleAdmin,
		Status:     constants.StatusActive,
		IsVerified: true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}
	logger.Success("Bootstrap admin account created: " + email)
	return nil
}
