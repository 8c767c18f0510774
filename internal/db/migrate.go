package db

import (
	"fundholdings/internal/models"
)

func AutoMigrate(db *DB) error {
	if db == nil || db.Gorm == nil || db.SQL == nil {
		return nil
	}

	return db.Gorm.AutoMigrate(
		&models.Fund{},
		&models.Holding{},
		&models.APIKey{},
		&models.APILog{},
	)
}
