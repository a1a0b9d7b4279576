package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/s/courseCatalog/internal/models"
)

type reviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=2000"`
}

// POST /api/courses/{id}/reviews
func (h *Handler) AddReview(w http.ResponseWriter, r *http.Request) {
	courseID, err := PathID(r, "id")
	if err != nil {
		h.Error(w, r, err)
		return
	}
	u, err := h.CurrentUser(r)
	if err != nil {
		h.Error(w, r, err)
		return
	}
	var req reviewRequest
	if err := h.Decode(r, &req); err != nil {
		h.Error(w, r, err)
		return
	}

	review := models.Review{
		UserID:   u.ID,
		CourseID: courseID,
		Rating:   req.Rating,
		Comment:  req.Comment,
	}
	if err := h.Reviews.Upsert(r.Context(), &review); err != nil {
		h.Error(w, r, err)
		return
	}
	if err := h.Courses.RecalculateRating(r.Context(), courseID); err != nil {
		h.Error(w, r, errors.Wrap(err, "recalculate rating"))
		return
	}
	h.Invalidate()

	review.User = u
	JSON(w, http.StatusOK, review)
}

// GET /api/courses/{id}/reviews
func (h *Handler) ListReviews(w http.ResponseWriter, r *http.Request) {
	courseID, err := PathID(r, "id")
	if err != nil {
		h.Error(w, r, err)
		return
	}
	reviews, err := h.Reviews.ListByCourse(r.Context(), courseID)
	if err != nil {
		h.Error(w, r, err)
		return
	}
	JSON(w, http.StatusOK, reviews)
}

type enrollRequest struct {
	CourseID uuid.UUID `json:"courseId"`
}

// POST /api/enroll
func (h *Handler) SubmitEnrollment(w http.ResponseWriter, r *http.Request) {
	u, err := h.CurrentUser(r)
	if err != nil {
		h.Error(w, r, err)
		return
	}
	var req enrollRequest
	if err := h.Decode(r, &req); err != nil {
		h.Error(w, r, err)
		return
	}
	enrollment, err := h.Enrollments.Submit(r.Context(), u.ID, req.CourseID)
	if err != nil {
		h.Error(w, r, err)
		return
	}
	JSON(w, http.StatusOK, enrollment)
}
