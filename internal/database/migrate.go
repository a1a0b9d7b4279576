package database

import (
	"github.com/s/courseCatalog/internal/models"
	"gorm.io/gorm"
)

func AutoMigrate(db *gorm.DB) error {
	if err := db.SetupJoinTable(&models.Course{}, "Categories", &models.CourseCategory{}); err != nil {
		return err
	}
	return db.AutoMigrate(
		&models.User{},
		&models.Instructor{},
		&models.Category{},
		&models.Course{},
		&models.CourseCategory{},
		&models.Price{},
		&models.Lesson{},
		&models.FAQ{},
		&models.CourseContent{},
		&models.SEO{},
		&models.Review{},
		&models.Enrollment{},
		&models.AuditLog{},
	)
}
