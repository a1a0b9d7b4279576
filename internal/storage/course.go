package storage

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/s/courseCatalog/internal/models"
)

// SortColumns maps the sort keys accepted by the API onto course columns.
var SortColumns = map[string]string{
	"createdAt":    "created_at",
	"updatedAt":    "updated_at",
	"title":        "title",
	"rating":       "rating",
	"displayOrder": "display_order",
}

// CourseFilter narrows a course listing. Zero values mean "no filter".
type CourseFilter struct {
	Status       *models.CourseStatus
	CategoryID   *uuid.UUID
	Search       string
	Level        models.CourseLevel
	FeaturedOnly bool
}

// CourseOrder is either rank order (ByRank) or a single column from SortColumns.
type CourseOrder struct {
	ByRank bool
	Field  string
	Desc   bool
}

type ListOptions struct {
	Filter CourseFilter
	Order  CourseOrder
	Offset int
	Limit  int
}

type CourseRepo struct {
	db *gorm.DB
}

func NewCourseRepo(db *gorm.DB) *CourseRepo {
	return &CourseRepo{db: db}
}

// DB exposes the handle so callers can open transactions spanning several repos.
func (r *CourseRepo) DB() *gorm.DB {
	return r.db
}

// SlugTaken reports whether another course already uses slug.
// exclude may be uuid.Nil.
func (r *CourseRepo) SlugTaken(ctx context.Context, slug string, exclude uuid.UUID) (bool, error) {
	return slugTaken(r.db.WithContext(ctx), &models.Course{}, slug, exclude)
}

func slugTaken(db *gorm.DB, model interface{}, slug string, exclude uuid.UUID) (bool, error) {
	var n int64
	q := db.Model(model).Where("slug = ?", slug)
	if exclude != uuid.Nil {
		q = q.Where("id <> ?", exclude)
	}
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// Create inserts the course together with its price and category links.
// The slug check is a fast path; the unique index decides concurrent races.
func (r *CourseRepo) Create(ctx context.Context, course *models.Course, categoryIDs []uuid.UUID) error {
	taken, err := r.SlugTaken(ctx, course.Slug, uuid.Nil)
	if err != nil {
		return errors.Wrap(err, "check slug")
	}
	if taken {
		return ErrDuplicateSlug
	}
	if course.Status == "" {
		course.Status = models.StatusDraft
	}
	course.DisplayOrder = nil

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		price := course.Price
		course.Price = nil
		if err := tx.Omit(clause.Associations).Create(course).Error; err != nil {
			return slugConflict(err)
		}
		if price != nil {
			price.CourseID = course.ID
			if err := tx.Create(price).Error; err != nil {
				return err
			}
			course.Price = price
		}
		return linkCategories(tx, course.ID, categoryIDs)
	})
	return translate(err)
}

func linkCategories(tx *gorm.DB, courseID uuid.UUID, categoryIDs []uuid.UUID) error {
	if len(categoryIDs) == 0 {
		return nil
	}
	var found int64
	if err := tx.Model(&models.Category{}).Where("id IN ?", categoryIDs).Count(&found).Error; err != nil {
		return err
	}
	if int(found) != len(uniqueIDs(categoryIDs)) {
		return errors.Wrap(ErrNotFound, "category")
	}
	links := make([]models.CourseCategory, 0, len(categoryIDs))
	for _, id := range uniqueIDs(categoryIDs) {
		links = append(links, models.CourseCategory{CourseID: courseID, CategoryID: id})
	}
	return tx.Create(&links).Error
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func (r *CourseRepo) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Instructor").
		Preload("Price").
		Preload("Categories", func(db *gorm.DB) *gorm.DB {
			return db.Order("categories.sort_order ASC, categories.name ASC")
		})
}

// GetByID loads a course with its price, categories, instructor, lessons, FAQs and SEO.
func (r *CourseRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Course, error) {
	var course models.Course
	err := r.preloaded(ctx).
		Preload("Lessons", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("FAQs", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Contents", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("SEO").
		First(&course, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &course, nil
}

func (r *CourseRepo) GetBySlug(ctx context.Context, slug string) (*models.Course, error) {
	var course models.Course
	err := r.preloaded(ctx).
		Preload("Lessons", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("FAQs", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Contents", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("SEO").
		First(&course, "slug = ?", slug).Error
	if err != nil {
		return nil, translate(err)
	}
	return &course, nil
}

// Exists reports whether a course with id is stored.
func (r *CourseRepo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Course{}).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

// CourseUpdate carries the fields of an edit. Nil pointers are left untouched.
type CourseUpdate struct {
	Fields      map[string]interface{}
	Slug        *string
	Price       *models.Price
	CategoryIDs *[]uuid.UUID
}

func (r *CourseRepo) Update(ctx context.Context, id uuid.UUID, upd CourseUpdate) (*models.Course, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var course models.Course
		if err := tx.First(&course, "id = ?", id).Error; err != nil {
			return err
		}
		if upd.Slug != nil {
			taken, err := slugTaken(tx, &models.Course{}, *upd.Slug, id)
			if err != nil {
				return errors.Wrap(err, "check slug")
			}
			if taken {
				return ErrDuplicateSlug
			}
		}

		fields := make(map[string]interface{}, len(upd.Fields)+1)
		for k, v := range upd.Fields {
			fields[k] = v
		}
		if upd.Slug != nil {
			fields["slug"] = *upd.Slug
		}
		if len(fields) > 0 {
			if err := tx.Model(&course).Updates(fields).Error; err != nil {
				return slugConflict(err)
			}
		}

		if upd.Price != nil {
			var price models.Price
			err := tx.Where("course_id = ?", id).First(&price).Error
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				price = *upd.Price
				price.CourseID = id
				if err := tx.Create(&price).Error; err != nil {
					return err
				}
			case err != nil:
				return err
			default:
				price.OriginalPrice = upd.Price.OriginalPrice
				price.DiscountedPrice = upd.Price.DiscountedPrice
				price.Currency = upd.Price.Currency
				if err := tx.Save(&price).Error; err != nil {
					return err
				}
			}
		}

		if upd.CategoryIDs != nil {
			if err := tx.Where("course_id = ?", id).Delete(&models.CourseCategory{}).Error; err != nil {
				return err
			}
			if err := linkCategories(tx, id, *upd.CategoryIDs); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}
	return r.GetByID(ctx, id)
}

// Delete removes the children of a course one table at a time and then the course.
// Not every relation is guaranteed to carry an ON DELETE CASCADE constraint.
func (r *CourseRepo) Delete(ctx context.Context, id uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Course{}).Where("id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}

		children := []interface{}{
			&models.Lesson{},
			&models.FAQ{},
			&models.CourseContent{},
			&models.Enrollment{},
			&models.Review{},
			&models.SEO{},
			&models.CourseCategory{},
			&models.Price{},
		}
		for _, child := range children {
			if err := tx.Where("course_id = ?", id).Delete(child).Error; err != nil {
				return errors.Wrapf(err, "delete %T", child)
			}
		}
		return tx.Delete(&models.Course{}, "id = ?", id).Error
	})
	return translate(err)
}

// List returns one page of courses and the number of courses matching the filter.
func (r *CourseRepo) List(ctx context.Context, opts ListOptions) ([]models.Course, int64, error) {
	filtered := func() *gorm.DB {
		root := r.db.WithContext(ctx)
		return applyFilter(root, root.Model(&models.Course{}), opts.Filter)
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count courses")
	}

	courses := []models.Course{}
	if total == 0 || int64(opts.Offset) >= total {
		return courses, total, nil
	}

	q := filtered().Preload("Instructor").
		Preload("Price").
		Preload("Categories", func(db *gorm.DB) *gorm.DB {
			return db.Order("categories.sort_order ASC, categories.name ASC")
		})
	for _, o := range orderClauses(opts.Order) {
		q = q.Order(o)
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if err := q.Offset(opts.Offset).Find(&courses).Error; err != nil {
		return nil, 0, errors.Wrap(err, "list courses")
	}
	return courses, total, nil
}

func applyFilter(root, db *gorm.DB, f CourseFilter) *gorm.DB {
	if f.Status != nil {
		db = db.Where("courses.status = ?", *f.Status)
	}
	if f.Level != "" {
		db = db.Where("courses.level = ?", f.Level)
	}
	if f.FeaturedOnly {
		db = db.Where("courses.featured = ?", true)
	}
	if f.CategoryID != nil {
		sub := root.Model(&models.CourseCategory{}).Select("course_id").Where("category_id = ?", *f.CategoryID)
		db = db.Where("courses.id IN (?)", sub)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + escapeLike(strings.ToLower(s)) + "%"
		db = db.Where("(LOWER(courses.title) LIKE ? ESCAPE '!' OR LOWER(courses.description) LIKE ? ESCAPE '!')", like, like)
	}
	return db
}

func escapeLike(s string) string {
	return strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(s)
}

// orderClauses renders rank order as "unranked last, rank asc, newest first".
// Written without NULLS LAST so it works on every supported dialect.
func orderClauses(o CourseOrder) []string {
	if o.ByRank || o.Field == "" {
		return []string{
			"CASE WHEN courses.display_order IS NULL THEN 1 ELSE 0 END ASC",
			"courses.display_order ASC",
			"courses.created_at DESC",
		}
	}
	col, ok := SortColumns[o.Field]
	if !ok {
		col = "created_at"
	}
	dir := "ASC"
	if o.Desc {
		dir = "DESC"
	}
	return []string{"courses." + col + " " + dir, "courses.created_at DESC"}
}

// ListUnranked returns the courses without a rank, oldest first.
func (r *CourseRepo) ListUnranked(ctx context.Context, tx *gorm.DB) ([]models.Course, error) {
	var courses []models.Course
	err := r.use(ctx, tx).
		Select("id", "created_at").
		Where("display_order IS NULL").
		Order("created_at ASC").
		Find(&courses).Error
	return courses, err
}

// CountExisting returns how many of ids belong to stored courses.
func (r *CourseRepo) CountExisting(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) (int, error) {
	var n int64
	err := r.use(ctx, tx).Model(&models.Course{}).Where("id IN ?", ids).Count(&n).Error
	return int(n), err
}

// SetRank writes a single rank.
func (r *CourseRepo) SetRank(ctx context.Context, tx *gorm.DB, id uuid.UUID, rank int) error {
	return r.use(ctx, tx).Model(&models.Course{}).Where("id = ?", id).UpdateColumn("display_order", rank).Error
}

func (r *CourseRepo) use(ctx context.Context, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx.WithContext(ctx)
	}
	return r.db.WithContext(ctx)
}

// UpsertSEO creates or replaces the SEO metadata of a course.
func (r *CourseRepo) UpsertSEO(ctx context.Context, seo *models.SEO) error {
	ok, err := r.Exists(ctx, seo.CourseID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.SEO
		err := tx.Where("course_id = ?", seo.CourseID).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(seo).Error
		}
		if err != nil {
			return err
		}
		seo.ID = existing.ID
		seo.CreatedAt = existing.CreatedAt
		return tx.Save(seo).Error
	})
	return translate(err)
}

// ReplaceContent swaps the content blocks of a course for blocks, keeping their order.
func (r *CourseRepo) ReplaceContent(ctx context.Context, courseID uuid.UUID, blocks []models.CourseContent) ([]models.CourseContent, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireCourse(tx, courseID); err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", courseID).Delete(&models.CourseContent{}).Error; err != nil {
			return err
		}
		for i := range blocks {
			blocks[i].ID = uuid.Nil
			blocks[i].CourseID = courseID
			blocks[i].Position = i + 1
		}
		if len(blocks) == 0 {
			return nil
		}
		return tx.Create(&blocks).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return blocks, nil
}

// RecalculateRating refreshes the cached rating and review count from the reviews table.
func (r *CourseRepo) RecalculateRating(ctx context.Context, id uuid.UUID) error {
	var agg struct {
		AvgRating   float64
		ReviewCount int
	}
	err := r.db.WithContext(ctx).Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0) AS avg_rating, COUNT(*) AS review_count").
		Where("course_id = ?", id).
		Scan(&agg).Error
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Model(&models.Course{}).Where("id = ?", id).
		UpdateColumns(map[string]interface{}{"rating": agg.AvgRating, "review_count": agg.ReviewCount}).Error
}
