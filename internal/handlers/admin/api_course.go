package admin

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/s/courseCatalog/internal/catalog"
	"github.com/s/courseCatalog/internal/handlers"
	"github.com/s/courseCatalog/internal/models"
	"github.com/s/courseCatalog/internal/storage"
	"github.com/s/courseCatalog/internal/validation"
)

type priceInput struct {
	OriginalPrice   decimal.Decimal  `json:"originalPrice"`
	DiscountedPrice *decimal.Decimal `json:"discountedPrice"`
	Currency        string           `json:"currency" validate:"omitempty,iso4217"`
}

func (p *priceInput) toModel() (*models.Price, error) {
	if p == nil {
		return nil, nil
	}
	if p.OriginalPrice.IsNegative() {
		return nil, validation.Field("price.originalPrice", "originalPrice must not be negative")
	}
	if d := p.DiscountedPrice; d != nil && (d.IsNegative() || d.GreaterThan(p.OriginalPrice)) {
		return nil, validation.Field("price.discountedPrice", "discountedPrice must be between 0 and originalPrice")
	}
	return &models.Price{
		OriginalPrice:   p.OriginalPrice,
		DiscountedPrice: p.DiscountedPrice,
		Currency:        p.Currency,
	}, nil
}

type createCourseRequest struct {
	Title            string              `json:"title" validate:"required,max=255"`
	Slug             string              `json:"slug" validate:"omitempty,max=255,slug"`
	ShortDescription string              `json:"shortDescription" validate:"max=512"`
	Description      string              `json:"description"`
	Status           models.CourseStatus `json:"status" validate:"omitempty,oneof=DRAFT PUBLISHED"`
	Level            models.CourseLevel  `json:"level" validate:"omitempty,oneof=BEGINNER INTERMEDIATE ADVANCED"`
	Featured         bool                `json:"featured"`
	ImageURL         string              `json:"imageUrl" validate:"omitempty,url"`
	Language         string              `json:"language" validate:"max=32"`
	DurationHours    int                 `json:"durationHours" validate:"gte=0"`
	InstructorID     *uuid.UUID          `json:"instructorId"`
	CategoryIDs      []uuid.UUID         `json:"categoryIds"`
	Price            *priceInput         `json:"price"`
}

type updateCourseRequest struct {
	Title            *string              `json:"title" validate:"omitnil,min=1,max=255"`
	Slug             *string              `json:"slug" validate:"omitnil,max=255,slug"`
	ShortDescription *string              `json:"shortDescription" validate:"omitempty,max=512"`
	Description      *string              `json:"description"`
	Status           *models.CourseStatus `json:"status" validate:"omitempty,oneof=DRAFT PUBLISHED"`
	Level            *models.CourseLevel  `json:"level" validate:"omitempty,oneof=BEGINNER INTERMEDIATE ADVANCED"`
	Featured         *bool                `json:"featured"`
	ImageURL         *string              `json:"imageUrl" validate:"omitempty,url"`
	Language         *string              `json:"language" validate:"omitempty,max=32"`
	DurationHours    *int                 `json:"durationHours" validate:"omitempty,gte=0"`
	InstructorID     *uuid.UUID           `json:"instructorId"`
	CategoryIDs      *[]uuid.UUID         `json:"categoryIds"`
	Price            *priceInput          `json:"price"`
}

func (req *updateCourseRequest) fields() map[string]interface{} {
	f := map[string]interface{}{}
	if req.Title != nil {
		f["title"] = *req.Title
	}
	if req.ShortDescription != nil {
		f["short_description"] = *req.ShortDescription
	}
	if req.Description != nil {
		f["description"] = *req.Description
	}
	if req.Status != nil {
		f["status"] = *req.Status
	}
	if req.Level != nil {
		f["level"] = *req.Level
	}
	if req.Featured != nil {
		f["featured"] = *req.Featured
	}
	if req.ImageURL != nil {
		f["image_url"] = *req.ImageURL
	}
	if req.Language != nil {
		f["language"] = *req.Language
	}
	if req.DurationHours != nil {
		f["duration_hours"] = *req.DurationHours
	}
	// uuid.Nil unassigns the instructor.
	if req.InstructorID != nil {
		if *req.InstructorID == uuid.Nil {
			f["instructor_id"] = nil
		} else {
			f["instructor_id"] = *req.InstructorID
		}
	}
	return f
}

func (s *Service) requireInstructor(r *http.Request, id *uuid.UUID) error {
	if id == nil || *id == uuid.Nil {
		return nil
	}
	if _, err := s.Instructors.GetByID(r.Context(), *id); err != nil {
		return errors.Wrap(err, "instructor")
	}
	return nil
}

// GET /api/admin/courses?page&limit&status&sortByOrder&sortBy&order&search&categoryId&level&featured
func (s *Service) ListCourses(w http.ResponseWriter, r *http.Request) {
	p, err := handlers.ParseListParams(r.URL.Query())
	if err != nil {
		s.Error(w, r, err)
		return
	}
	page, err := s.Catalog.ListAdmin(r.Context(), p.Filter, p.Sort, p.Page, p.Limit)
	if err != nil {
		s.Error(w, r, err)
		return
	}
	handlers.Paged(w, page.Items, page.Page, page.PageSize, page.Total)
}

// GET /api/admin/courses/{id}
func (s *Service) GetCourse(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathID(r, "id")
	if err != nil {
		s.Error(w, r, err)
		return
	}
	course, err := s.Courses.GetByID(r.Context(), id)
	if err != nil {
		s.Error(w, r, err)
		return
	}
	handlers.JSON(w, http.StatusOK, course)
}

// POST /api/admin/courses
func (s *Service) CreateCourse(w http.ResponseWriter, r *http.Request) {
	var req createCourseRequest
	if err := s.Decode(r, &req); err != nil {
		s.Error(w, r, err)
		return
	}
	if req.Slug == "" {
		req.Slug = validation.Slugify(req.Title)
		if req.Slug == "" {
			s.Error(w, r, validation.Field("slug", "slug is required"))
			return
		}
	}
	price, err := req.Price.toModel()
	if err != nil {
		s.Error(w, r, err)
		return
	}
	if err := s.requireInstructor(r, req.InstructorID); err != nil {
		s.Error(w, r, err)
		return
	}

	course := models.Course{
		Title:            req.Title,
		Slug:             req.Slug,
		ShortDescription: req.ShortDescription,
		Description:      req.Description,
		Status:           req.Status,
		Level:            req.Level,
		Featured:         req.Featured,
		ImageURL:         req.ImageURL,
		Language:         req.Language,
		DurationHours:    req.DurationHours,
		InstructorID:     req.InstructorID,
		Price:            price,
	}
	if err := s.Courses.Create(r.Context(), &course, req.CategoryIDs); err != nil {
		s.Error(w, r, err)
		return
	}
	created, err := s.Courses.GetByID(r.Context(), course.ID)
	if err != nil {
		s.Error(w, r, err)
		return
	}
	s.changed(r, "create", "course", created.ID, created.Slug)
	handlers.JSON(w, http.StatusCreated, created)
}

// PUT /api/admin/courses/{id}
func (s *Service) UpdateCourse(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathID(r, "id")
	if err != nil {
		s.Error(w, r, err)
		return
	}
	var req updateCourseRequest
	if err := s.Decode(r, &req); err != nil {
		s.Error(w, r, err)
		return
	}
	price, err := req.Price.toModel()
	if err != nil {
		s.Error(w, r, err)
		return
	}
	if err := s.requireInstructor(r, req.InstructorID); err != nil {
		s.Error(w, r, err)
		return
	}

	course, err := s.Courses.Update(r.Context(), id, storage.CourseUpdate{
		Fields:      req.fields(),
		Slug:        req.Slug,
		Price:       price,
		CategoryIDs: req.CategoryIDs,
	})
	if err != nil {
		s.Error(w, r, err)
		return
	}
	s.changed(r, "update", "course", course.ID, course.Slug)
	handlers.JSON(w, http.StatusOK, course)
}

// DELETE /api/admin/courses/{id}
func (s *Service) DeleteCourse(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathID(r, "id")
	if err != nil {
		s.Error(w, r, err)
		return
	}
	if err := s.Courses.Delete(r.Context(), id); err != nil {
		s.Error(w, r, err)
		return
	}
	s.changed(r, "delete", "course", id, "")
	handlers.OK(w)
}

type reorderRequest struct {
	Orders []struct {
		ID           uuid.UUID `json:"id"`
		DisplayOrder int       `json:"displayOrder"`
	} `json:"orders"`
	IDs []uuid.UUID `json:"ids"`
}

// POST /api/admin/courses/bulk/reorder
// Body is either {orders:[{id, displayOrder}]} or {ids:[...]} in display order.
func (s *Service) BulkReorder(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if err := s.Decode(r, &req); err != nil {
		s.Error(w, r, err)
		return
	}

	var err error
	if len(req.Orders) > 0 {
		assignments := make([]catalog.RankAssignment, len(req.Orders))
		for i, o := range req.Orders {
			assignments[i] = catalog.RankAssignment{ID: o.ID, DisplayOrder: o.DisplayOrder}
		}
		err = s.Ordering.ApplyRanks(r.Context(), assignments)
	} else {
		err = s.Ordering.BulkReorder(r.Context(), req.IDs)
	}
	if err != nil {
		s.Error(w, r, err)
		return
	}
	s.Record(r, "reorder", "course", "bulk", "")
	handlers.OK(w)
}

// POST /api/admin/courses/ranks/initialize
func (s *Service) InitializeRanks(w http.ResponseWriter, r *http.Request) {
	n, err := s.Ordering.InitializeRanks(r.Context())
	if err != nil {
		s.Error(w, r, err)
		return
	}
	s.Record(r, "reorder", "course", "initialize", "")
	handlers.JSON(w, http.StatusOK, map[string]int{"ranked": n})
}

type seoRequest struct {
	MetaTitle       string   `json:"metaTitle" validate:"max=255"`
	MetaDescription string   `json:"metaDescription" validate:"max=512"`
	Keywords        []string `json:"keywords" validate:"max=30,dive,max=64"`
	CanonicalURL    string   `json:"canonicalUrl" validate:"omitempty,url"`
}

// PUT /api/admin/courses/{id}/seo
func (s *Service) UpdateSEO(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathID(r, "id")
	if err != nil {
		s.Error(w, r, err)
		return
	}
	var req seoRequest
	if err := s.Decode(r, &req); err != nil {
		s.Error(w, r, err)
		return
	}
	keywords := req.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	raw, err := json.Marshal(keywords)
	if err != nil {
		s.Error(w, r, err)
		return
	}
	seo := models.SEO{
		CourseID:        id,
		MetaTitle:       req.MetaTitle,
		MetaDescription: req.MetaDescription,
		Keywords:        datatypes.JSON(raw),
		CanonicalURL:    req.CanonicalURL,
	}
	if err := s.Courses.UpsertSEO(r.Context(), &seo); err != nil {
		s.Error(w, r, err)
		return
	}
	s.changed(r, "update", "seo", id, "")
	handlers.JSON(w, http.StatusOK, seo)
}

type contentRequest struct {
	Blocks []struct {
		Kind string         `json:"kind" validate:"required,max=32"`
		Data datatypes.JSON `json:"data"`
	} `json:"blocks" validate:"dive"`
}

// PUT /api/admin/courses/{id}/content
func (s *Service) ReplaceContent(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathID(r, "id")
	if err != nil {
		s.Error(w, r, err)
		return
	}
	var req contentRequest
	if err := s.Decode(r, &req); err != nil {
		s.Error(w, r, err)
		return
	}
	blocks := make([]models.CourseContent, len(req.Blocks))
	for i, b := range req.Blocks {
		blocks[i] = models.CourseContent{Kind: b.Kind, Blocks: b.Data}
	}
	saved, err := s.Courses.ReplaceContent(r.Context(), id, blocks)
	if err != nil {
		s.Error(w, r, err)
		return
	}
	s.changed(r, "update", "content", id, "")
	handlers.JSON(w, http.StatusOK, saved)
}
