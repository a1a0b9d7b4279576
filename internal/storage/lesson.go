package storage

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/s/courseCatalog/internal/models"
)

// LessonRepo stores lessons. New lessons go to the end of the course unless a position is given.
type LessonRepo struct {
	db *gorm.DB
}

func NewLessonRepo(db *gorm.DB) *LessonRepo {
	return &LessonRepo{db: db}
}

func (r *LessonRepo) ListByCourse(ctx context.Context, courseID uuid.UUID) ([]models.Lesson, error) {
	lessons := []models.Lesson{}
	err := r.db.WithContext(ctx).Where("course_id = ?", courseID).
		Order("position ASC, created_at ASC").Find(&lessons).Error
	return lessons, err
}

func (r *LessonRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Lesson, error) {
	var l models.Lesson
	if err := r.db.WithContext(ctx).First(&l, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &l, nil
}

func (r *LessonRepo) Create(ctx context.Context, l *models.Lesson) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireCourse(tx, l.CourseID); err != nil {
			return err
		}
		if l.Position == 0 {
			pos, err := nextPosition(tx, &models.Lesson{}, l.CourseID)
			if err != nil {
				return err
			}
			l.Position = pos
		}
		return tx.Create(l).Error
	})
	return translate(err)
}

func (r *LessonRepo) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*models.Lesson, error) {
	l, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(fields) > 0 {
		if err := r.db.WithContext(ctx).Model(l).Updates(fields).Error; err != nil {
			return nil, translate(err)
		}
	}
	return r.GetByID(ctx, id)
}

func (r *LessonRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(r.db.WithContext(ctx), &models.Lesson{}, id)
}

type FAQRepo struct {
	db *gorm.DB
}

func NewFAQRepo(db *gorm.DB) *FAQRepo {
	return &FAQRepo{db: db}
}

func (r *FAQRepo) ListByCourse(ctx context.Context, courseID uuid.UUID) ([]models.FAQ, error) {
	faqs := []models.FAQ{}
	err := r.db.WithContext(ctx).Where("course_id = ?", courseID).
		Order("position ASC, created_at ASC").Find(&faqs).Error
	return faqs, err
}

func (r *FAQRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.FAQ, error) {
	var f models.FAQ
	if err := r.db.WithContext(ctx).First(&f, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &f, nil
}

func (r *FAQRepo) Create(ctx context.Context, f *models.FAQ) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireCourse(tx, f.CourseID); err != nil {
			return err
		}
		if f.Position == 0 {
			pos, err := nextPosition(tx, &models.FAQ{}, f.CourseID)
			if err != nil {
				return err
			}
			f.Position = pos
		}
		return tx.Create(f).Error
	})
	return translate(err)
}

func (r *FAQRepo) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*models.FAQ, error) {
	f, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(fields) > 0 {
		if err := r.db.WithContext(ctx).Model(f).Updates(fields).Error; err != nil {
			return nil, translate(err)
		}
	}
	return r.GetByID(ctx, id)
}

func (r *FAQRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(r.db.WithContext(ctx), &models.FAQ{}, id)
}

func requireCourse(tx *gorm.DB, courseID uuid.UUID) error {
	var n int64
	if err := tx.Model(&models.Course{}).Where("id = ?", courseID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func nextPosition(tx *gorm.DB, model interface{}, courseID uuid.UUID) (int, error) {
	var max int
	err := tx.Model(model).Where("course_id = ?", courseID).
		Select("COALESCE(MAX(position), 0)").Scan(&max).Error
	return max + 1, err
}

func deleteByID(db *gorm.DB, model interface{}, id uuid.UUID) error {
	res := db.Delete(model, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
