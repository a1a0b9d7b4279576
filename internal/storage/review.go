package storage

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/s/courseCatalog/internal/models"
)

type ReviewRepo struct {
	db *gorm.DB
}

func NewReviewRepo(db *gorm.DB) *ReviewRepo {
	return &ReviewRepo{db: db}
}

func (r *ReviewRepo) ListByCourse(ctx context.Context, courseID uuid.UUID) ([]models.Review, error) {
	reviews := []models.Review{}
	err := r.db.WithContext(ctx).Preload("User").
		Where("course_id = ?", courseID).
		Order("created_at DESC").
		Find(&reviews).Error
	return reviews, err
}

// Upsert stores the user's review of a course, replacing an earlier one.
func (r *ReviewRepo) Upsert(ctx context.Context, review *models.Review) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireCourse(tx, review.CourseID); err != nil {
			return err
		}
		var existing models.Review
		err := tx.Where("user_id = ? AND course_id = ?", review.UserID, review.CourseID).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return tx.Create(review).Error
		case err != nil:
			return err
		}
		existing.Rating = review.Rating
		existing.Comment = review.Comment
		if err := tx.Save(&existing).Error; err != nil {
			return err
		}
		*review = existing
		return nil
	})
	return translate(err)
}
