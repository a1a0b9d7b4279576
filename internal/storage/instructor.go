package storage

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/s/courseCatalog/internal/models"
)

type InstructorRepo struct {
	db *gorm.DB
}

func NewInstructorRepo(db *gorm.DB) *InstructorRepo {
	return &InstructorRepo{db: db}
}

func (r *InstructorRepo) List(ctx context.Context) ([]models.Instructor, error) {
	instructors := []models.Instructor{}
	err := r.db.WithContext(ctx).Order("name ASC").Find(&instructors).Error
	return instructors, err
}

func (r *InstructorRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Instructor, error) {
	var in models.Instructor
	if err := r.db.WithContext(ctx).First(&in, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &in, nil
}

func (r *InstructorRepo) Create(ctx context.Context, in *models.Instructor) error {
	taken, err := slugTaken(r.db.WithContext(ctx), &models.Instructor{}, in.Slug, uuid.Nil)
	if err != nil {
		return errors.Wrap(err, "check slug")
	}
	if taken {
		return ErrDuplicateSlug
	}
	return translate(slugConflict(r.db.WithContext(ctx).Create(in).Error))
}

func (r *InstructorRepo) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*models.Instructor, error) {
	in, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if slug, ok := fields["slug"].(string); ok {
		taken, err := slugTaken(r.db.WithContext(ctx), &models.Instructor{}, slug, id)
		if err != nil {
			return nil, errors.Wrap(err, "check slug")
		}
		if taken {
			return nil, ErrDuplicateSlug
		}
	}
	if len(fields) > 0 {
		if err := r.db.WithContext(ctx).Model(in).Updates(fields).Error; err != nil {
			return nil, translate(slugConflict(err))
		}
	}
	return r.GetByID(ctx, id)
}

// Delete removes the instructor and clears it from the courses that referenced it.
func (r *InstructorRepo) Delete(ctx context.Context, id uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Course{}).Where("instructor_id = ?", id).
			UpdateColumn("instructor_id", nil).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Instructor{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	return translate(err)
}
