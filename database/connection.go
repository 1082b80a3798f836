package database

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/hanapp-ph/hanapp-backend/internal/config"
	"github.com/hanapp-ph/hanapp-backend/internal/models"
)

// For Cloud Run with Cloud SQL
const socketDir = "/cloudsql"

// DSN builds the connection string, preferring the Cloud SQL unix socket when configured
func DSN(cfg config.DatabaseConfig) string {
	if cfg.InstanceConnectionName != "" {
		return fmt.Sprintf("host=%s/%s user=%s password=%s dbname=%s sslmode=disable",
			socketDir, cfg.InstanceConnectionName, cfg.User, cfg.Password, cfg.Name)
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s",
		cfg.Host, cfg.User, cfg.Password, cfg.Name, cfg.Port, cfg.SSLMode)
}

// Connect opens the pool. Unique violations surface as gorm.ErrDuplicatedKey.
func Connect(cfg config.DatabaseConfig, logger *zap.Logger) (*gorm.DB, error) {
	if cfg.InstanceConnectionName != "" {
		logger.Info("connecting to Cloud SQL via socket", zap.String("instance", cfg.InstanceConnectionName))
	} else {
		logger.Info("connecting to PostgreSQL", zap.String("host", cfg.Host), zap.Int("port", cfg.Port))
	}

	db, err := gorm.Open(postgres.Open(DSN(cfg)), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	logger.Info("database connected")
	return db, nil
}

// Migrate creates or updates every table the API uses
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.OtpVerification{},
		&models.Message{},
		&models.ServiceRequest{},
		&models.JobApplication{},
		&models.ServiceListing{},
		&models.Service{},
		&models.Booking{},
		&models.BookingService{},
		&models.Review{},
	)
}
