package storage

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/s/courseCatalog/internal/models"
)

type CategoryRepo struct {
	db *gorm.DB
}

func NewCategoryRepo(db *gorm.DB) *CategoryRepo {
	return &CategoryRepo{db: db}
}

func (r *CategoryRepo) List(ctx context.Context) ([]models.Category, error) {
	categories := []models.Category{}
	err := r.db.WithContext(ctx).Order("sort_order ASC, name ASC").Find(&categories).Error
	return categories, err
}

func (r *CategoryRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var c models.Category
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *CategoryRepo) Create(ctx context.Context, c *models.Category) error {
	taken, err := slugTaken(r.db.WithContext(ctx), &models.Category{}, c.Slug, uuid.Nil)
	if err != nil {
		return errors.Wrap(err, "check slug")
	}
	if taken {
		return ErrDuplicateSlug
	}
	return translate(slugConflict(r.db.WithContext(ctx).Create(c).Error))
}

func (r *CategoryRepo) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*models.Category, error) {
	c, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if slug, ok := fields["slug"].(string); ok {
		taken, err := slugTaken(r.db.WithContext(ctx), &models.Category{}, slug, id)
		if err != nil {
			return nil, errors.Wrap(err, "check slug")
		}
		if taken {
			return nil, ErrDuplicateSlug
		}
	}
	if len(fields) > 0 {
		if err := r.db.WithContext(ctx).Model(c).Updates(fields).Error; err != nil {
			return nil, translate(slugConflict(err))
		}
	}
	return r.GetByID(ctx, id)
}

// Delete drops the category and its course links.
func (r *CategoryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("category_id = ?", id).Delete(&models.CourseCategory{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Category{}, "id = ?", id)
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
