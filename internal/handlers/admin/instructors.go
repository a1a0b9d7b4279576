package admin

import (
	"net/http"

	"github.com/s/courseCatalog/internal/handlers"
	"github.com/s/courseCatalog/internal/models"
	"github.com/s/courseCatalog/internal/validation"
)

type instructorRequest struct {
	Name      string `json:"name" validate:"required,max=255"`
	Slug      string `json:"slug" validate:"omitempty,max=255,slug"`
	Title     string `json:"title" validate:"max=255"`
	Bio       string `json:"bio"`
	AvatarURL string `json:"avatarUrl" validate:"omitempty,url"`
}

type instructorUpdate struct {
	Name      *string `json:"name" validate:"omitnil,min=1,max=255"`
	Slug      *string `json:"slug" validate:"omitnil,max=255,slug"`
	Title     *string `json:"title" validate:"omitnil,max=255"`
	Bio       *string `json:"bio"`
	AvatarURL *string `json:"avatarUrl" validate:"omitempty,url"`
}

func (s *Service) ListInstructors(w http.ResponseWriter, r *http.Request) {
	instructors, err := s.Instructors.List(r.Context())
	if err != nil {
		s.Error(w, r, err)
		return
	}
	handlers.JSON(w, http.StatusOK, instructors)
}

func (s *Service) CreateInstructor(w http.ResponseWriter, r *http.Request) {
	var req instructorRequest
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
	in := models.Instructor{
		Name:      req.Name,
		Slug:      req.Slug,
		Title:     req.Title,
		Bio:       req.Bio,
		AvatarURL: req.AvatarURL,
	}
	if err := s.Instructors.Create(r.Context(), &in); err != nil {
		s.Error(w, r, err)
		return
	}
	s.changed(r, "create", "instructor", in.ID, in.Slug)
	handlers.JSON(w, http.StatusCreated, in)
}

func (s *Service) UpdateInstructor(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathID(r, "id")
	if err != nil {
		s.Error(w, r, err)
		return
	}
	var req instructorUpdate
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
	if req.Title != nil {
		fields["title"] = *req.Title
	}
	if req.Bio != nil {
		fields["bio"] = *req.Bio
	}
	if req.AvatarURL != nil {
		fields["avatar_url"] = *req.AvatarURL
	}

	in, err := s.Instructors.Update(r.Context(), id, fields)
	if err != nil {
		s.Error(w, r, err)
		return
	}
	s.changed(r, "update", "instructor", in.ID, in.Slug)
	handlers.JSON(w, http.StatusOK, in)
}

func (s *Service) DeleteInstructor(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathID(r, "id")
	if err != nil {
		s.Error(w, r, err)
		return
	}
	if err := s.Instructors.Delete(r.Context(), id); err != nil {
		s.Error(w, r, err)
		return
	}
	s.changed(r, "delete", "instructor", id, "")
	handlers.OK(w)
}
