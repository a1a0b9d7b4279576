package admin

import (
	"net/http"

	"github.com/s/courseCatalog/internal/handlers"
	"github.com/s/courseCatalog/internal/models"
	"github.com/s/courseCatalog/internal/validation"
)

type categoryRequest struct {
	Name        string `json:"name" validate:"required,max=120"`
	Slug        string `json:"slug" validate:"omitempty,max=120,slug"`
	Description string `json:"description"`
	Icon        string `json:"icon" validate:"max=64"`
	Gradient    string `json:"gradient" validate:"max=128"`
	SortOrder   int    `json:"sortOrder"`
}

type categoryUpdate struct {
	Name        *string `json:"name" validate:"omitnil,min=1,max=120"`
	Slug        *string `json:"slug" validate:"omitnil,max=120,slug"`
	Description *string `json:"description"`
	Icon        *string `json:"icon" validate:"omitnil,max=64"`
	Gradient    *string `json:"gradient" validate:"omitnil,max=128"`
	SortOrder   *int    `json:"sortOrder"`
}

func (s *Service) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.Categories.List(r.Context())
	if err != nil {
		s.Error(w, r, err)
		return
	}
	handlers.JSON(w, http.StatusOK, categories)
}

func (s *Service) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := s.Decode(r, &req); err != nil {
		s.Error(w, r, err)
		return
	}
	if req.Slug == "" {
		if req.Slug = validation.Slugify(req.Name); req.Slug == "" {
			s.Error(w, r, validation.Field("slug", "slug is required"))
			return
		}
	}
	c := models.Category{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		Icon:        req.Icon,
		Gradient:    req.Gradient,
		SortOrder:   req.SortOrder,
	}
	if err := s.Categories.Create(r.Context(), &c); err != nil {
		s.Error(w, r, err)
		return
	}
	s.changed(r, "create", "category", c.ID, c.Slug)
	handlers.JSON(w, http.StatusCreated, c)
}

func (s *Service) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathID(r, "id")
	if err != nil {
		s.Error(w, r, err)
		return
	}
	var req categoryUpdate
	if err := s.Decode(r, &req); err != nil {
		s.Error(w, r, err)
		return
	}
	fields := map[string]interface{}{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Slug != nil {
		fields["slug"] = *req.Slug
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.Icon != nil {
		fields["icon"] = *req.Icon
	}
	if req.Gradient != nil {
		fields["gradient"] = *req.Gradient
	}
	if req.SortOrder != nil {
		fields["sort_order"] = *req.SortOrder
	}

	c, err := s.Categories.Update(r.Context(), id, fields)
	if err != nil {
		s.Error(w, r, err)
		return
	}
	s.changed(r, "update", "category", c.ID, c.Slug)
	handlers.JSON(w, http.StatusOK, c)
}

func (s *Service) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathID(r, "id")
	if err != nil {
		s.Error(w, r, err)
		return
	}
	if err := s.Categories.Delete(r.Context(), id); err != nil {
		s.Error(w, r, err)
		return
	}
	s.changed(r, "delete", "category", id, "")
	handlers.OK(w)
}
