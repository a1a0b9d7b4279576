package storage

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/s/courseCatalog/internal/models"
)

type EnrollmentRepo struct {
	db *gorm.DB
}

func NewEnrollmentRepo(db *gorm.DB) *EnrollmentRepo {
	return &EnrollmentRepo{db: db}
}

// Submit creates a pending enrollment or returns the one the user already has.
func (r *EnrollmentRepo) Submit(ctx context.Context, userID, courseID uuid.UUID) (*models.Enrollment, error) {
	var e models.Enrollment
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireCourse(tx, courseID); err != nil {
			return err
		}
		err := tx.Where("user_id = ? AND course_id = ?", userID, courseID).First(&e).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			e = models.Enrollment{UserID: userID, CourseID: courseID, Status: models.EnrollmentPending}
			return tx.Create(&e).Error
		}
		return err
	})
	if err != nil {
		return nil, translate(err)
	}
	return &e, nil
}

// EnrollmentFilter narrows the moderation list. Zero values mean "no filter".
type EnrollmentFilter struct {
	UserID   uuid.UUID
	CourseID uuid.UUID
	Status   string
	Search   string // student name or email
}

// List returns one page of enrollments, newest first, with user and course loaded.
func (r *EnrollmentRepo) List(ctx context.Context, f EnrollmentFilter, offset, limit int) ([]models.Enrollment, int64, error) {
	filtered := func() *gorm.DB {
		db := r.db.WithContext(ctx).Model(&models.Enrollment{})
		if f.UserID != uuid.Nil {
			db = db.Where("enrollments.user_id = ?", f.UserID)
		}
		if f.CourseID != uuid.Nil {
			db = db.Where("enrollments.course_id = ?", f.CourseID)
		}
		if f.Status != "" {
			db = db.Where("enrollments.status = ?", f.Status)
		}
		if s := strings.TrimSpace(f.Search); s != "" {
			like := "%" + escapeLike(strings.ToLower(s)) + "%"
			db = db.Joins("JOIN users ON users.id = enrollments.user_id").
				Where("(LOWER(users.name) LIKE ? ESCAPE '!' OR LOWER(users.email) LIKE ? ESCAPE '!')", like, like)
		}
		return db
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count enrollments")
	}
	enrollments := []models.Enrollment{}
	if total == 0 || int64(offset) >= total {
		return enrollments, total, nil
	}
	err := filtered().
		Preload("User").
		Preload("Course", func(db *gorm.DB) *gorm.DB { return db.Select("id", "title", "slug") }).
		Order("enrollments.created_at DESC").
		Offset(offset).Limit(limit).
		Find(&enrollments).Error
	return enrollments, total, errors.Wrap(err, "list enrollments")
}

// SetStatus moves an enrollment to pending, approved or rejected.
func (r *EnrollmentRepo) SetStatus(ctx context.Context, id uuid.UUID, status string) (*models.Enrollment, error) {
	res := r.db.WithContext(ctx).Model(&models.Enrollment{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return nil, res.Error
	}
	var e models.Enrollment
	if err := r.db.WithContext(ctx).First(&e, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &e, nil
}
