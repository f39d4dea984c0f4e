package repository

import (
	"agency-billing-backend/internal/models"

	"gorm.io/gorm"
)

// AutoMigrate creates or updates every table the service owns.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Client{},
		&models.Domain{},
		&models.HostingService{},
		&models.SslCertificate{},
		&models.Bill{},
		&models.BillSequence{},
		&models.BillAuditLog{},
		&models.Employee{},
		&models.PaySalary{},
	)
}
