package personal

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"github.com/s/courseCatalog/internal/catalog"
	"github.com/s/courseCatalog/internal/handlers"
	"github.com/s/courseCatalog/internal/models"
	"github.com/s/courseCatalog/internal/storage"
	"github.com/s/courseCatalog/internal/validation"
)

// Service serves enrollment lists: the student's own and the admin moderation queue.
type Service struct {
	*handlers.Handler
}

func pageParams(q url.Values) (page, limit int) {
	page, _ = strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(q.Get("limit"))
	switch {
	case limit < 1:
		limit = catalog.DefaultPageSize
	case limit > catalog.MaxPageSize:
		limit = catalog.MaxPageSize
	}
	return page, limit
}

func validStatus(s string) bool {
	switch s {
	case models.EnrollmentPending, models.EnrollmentApproved, models.EnrollmentRejected:
		return true
	}
	return false
}

// GET /api/me/enrollments
func (s *Service) ListMyEnrollments(w http.ResponseWriter, r *http.Request) {
	u, err := s.CurrentUser(r)
	if err != nil {
		s.Error(w, r, err)
		return
	}
	page, limit := pageParams(r.URL.Query())
	items, total, err := s.Enrollments.List(r.Context(), storage.EnrollmentFilter{UserID: u.ID}, (page-1)*limit, limit)
	if err != nil {
		s.Error(w, r, err)
		return
	}
	handlers.Paged(w, items, page, limit, total)
}

// GET /api/admin/enrollments?page&limit&courseId&status&search
func (s *Service) ListEnrollments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, limit := pageParams(q)

	var f storage.EnrollmentFilter
	if v := q.Get("courseId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			s.Error(w, r, validation.Field("courseId", "courseId must be a valid id"))
			return
		}
		f.CourseID = id
	}
	if v := q.Get("status"); v != "" && v != "all" {
		if !validStatus(v) {
			s.Error(w, r, validation.Field("status", "status must be one of pending approved rejected"))
			return
		}
		f.Status = v
	}
	f.Search = q.Get("search")

	items, total, err := s.Enrollments.List(r.Context(), f, (page-1)*limit, limit)
	if err != nil {
		s.Error(w, r, err)
		return
	}
	handlers.Paged(w, items, page, limit, total)
}

type statusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending approved rejected"`
}

// PUT /api/admin/enrollments/{id}
func (s *Service) UpdateEnrollmentStatus(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathID(r, "id")
	if err != nil {
		s.Error(w, r, err)
		return
	}
	var req statusRequest
	if err := s.Decode(r, &req); err != nil {
		s.Error(w, r, err)
		return
	}
	e, err := s.Enrollments.SetStatus(r.Context(), id, req.Status)
	if err != nil {
		s.Error(w, r, err)
		return
	}
	s.Record(r, "update", "enrollment", e.ID, "status="+req.Status)
	handlers.JSON(w, http.StatusOK, e)
}
