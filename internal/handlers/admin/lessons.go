package admin

import (
	"net/http"

	"github.com/s/courseCatalog/internal/handlers"
	"github.com/s/courseCatalog/internal/models"
)

type lessonRequest struct {
	Title           string `json:"title" validate:"required,max=255"`
	Description     string `json:"description"`
	VideoURL        string `json:"videoUrl" validate:"omitempty,url"`
	DurationMinutes int    `json:"durationMinutes" validate:"gte=0"`
	Position        int    `json:"position" validate:"gte=0"`
	IsPreview       bool   `json:"isPreview"`
}

type lessonUpdate struct {
	Title           *string `json:"title" validate:"omitnil,min=1,max=255"`
	Description     *string `json:"description"`
	VideoURL        *string `json:"videoUrl" validate:"omitempty,url"`
	DurationMinutes *int    `json:"durationMinutes" validate:"omitnil,gte=0"`
	Position        *int    `json:"position" validate:"omitnil,gte=0"`
	IsPreview       *bool   `json:"isPreview"`
}

// GET /api/admin/courses/{id}/lessons
func (s *Service) ListLessons(w http.ResponseWriter, r *http.Request) {
	courseID, err := handlers.PathID(r, "id")
	if err != nil {
		s.Error(w, r, err)
		return
	}
	lessons, err := s.Lessons.ListByCourse(r.Context(), courseID)
	if err != nil {
		s.Error(w, r, err)
		return
	}
	handlers.JSON(w, http.StatusOK, lessons)
}

// POST /api/admin/courses/{id}/lessons
func (s *Service) CreateLesson(w http.ResponseWriter, r *http.Request) {
	courseID, err := handlers.PathID(r, "id")
	if err != nil {
		s.Error(w, r, err)
		return
	}
	var req lessonRequest
	if err := s.Decode(r, &req); err != nil {
		s.Error(w, r, err)
		return
	}
	l := models.Lesson{
		CourseID:        courseID,
		Title:           req.Title,
		Description:     req.Description,
		VideoURL:        req.VideoURL,
		DurationMinutes: req.DurationMinutes,
		Position:        req.Position,
		IsPreview:       req.IsPreview,
	}
	if err := s.Lessons.Create(r.Context(), &l); err != nil {
		s.Error(w, r, err)
		return
	}
	s.changed(r, "create", "lesson", l.ID, l.Title)
	handlers.JSON(w, http.StatusCreated, l)
}

// PUT /api/admin/lessons/{id}
func (s *Service) UpdateLesson(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathID(r, "id")
	if err != nil {
		s.Error(w, r, err)
		return
	}
	var req lessonUpdate
	if err := s.Decode(r, &req); err != nil {
		s.Error(w, r, err)
		return
	}
	fields := map[string]interface{}{}
	if req.Title != nil {
		fields["title"] = *req.Title
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.VideoURL != nil {
		fields["video_url"] = *req.VideoURL
	}
	if req.DurationMinutes != nil {
		fields["duration_minutes"] = *req.DurationMinutes
	}
	if req.Position != nil {
		fields["position"] = *req.Position
	}
	if req.IsPreview != nil {
		fields["is_preview"] = *req.IsPreview
	}

	l, err := s.Lessons.Update(r.Context(), id, fields)
	if err != nil {
		s.Error(w, r, err)
		return
	}
	s.changed(r, "update", "lesson", l.ID, l.Title)
	handlers.JSON(w, http.StatusOK, l)
}

// DELETE /api/admin/lessons/{id}
func (s *Service) DeleteLesson(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathID(r, "id")
	if err != nil {
		s.Error(w, r, err)
		return
	}
	if err := s.Lessons.Delete(r.Context(), id); err != nil {
		s.Error(w, r, err)
		return
	}
	s.changed(r, "delete", "lesson", id, "")
	handlers.OK(w)
}

type faqRequest struct {
	Question string `json:"question" validate:"required"`
	Answer   string `json:"answer" validate:"required"`
	Position int    `json:"position" validate:"gte=0"`
}

type faqUpdate struct {
	Question *string `json:"question" validate:"omitnil,min=1"`
	Answer   *string `json:"answer" validate:"omitnil,min=1"`
	Position *int    `json:"position" validate:"omitnil,gte=0"`
}

// GET /api/admin/courses/{id}/faqs
func (s *Service) ListFAQs(w http.ResponseWriter, r *http.Request) {
	courseID, err := handlers.PathID(r, "id")
	if err != nil {
		s.Error(w, r, err)
		return
	}
	faqs, err := s.FAQs.ListByCourse(r.Context(), courseID)
	if err != nil {
		s.Error(w, r, err)
		return
	}
	handlers.JSON(w, http.StatusOK, faqs)
}

// POST /api/admin/courses/{id}/faqs
func (s *Service) CreateFAQ(w http.ResponseWriter, r *http.Request) {
	courseID, err := handlers.PathID(r, "id")
	if err != nil {
		s.Error(w, r, err)
		return
	}
	var req faqRequest
	if err := s.Decode(r, &req); err != nil {
		s.Error(w, r, err)
		return
	}
	f := models.FAQ{CourseID: courseID, Question: req.Question, Answer: req.Answer, Position: req.Position}
	if err := s.FAQs.Create(r.Context(), &f); err != nil {
		s.Error(w, r, err)
		return
	}
	s.changed(r, "create", "faq", f.ID, "")
	handlers.JSON(w, http.StatusCreated, f)
}

// PUT /api/admin/faqs/{id}
func (s *Service) UpdateFAQ(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathID(r, "id")
	if err != nil {
		s.Error(w, r, err)
		return
	}
	var req faqUpdate
	if err := s.Decode(r, &req); err != nil {
		s.Error(w, r, err)
		return
	}
	fields := map[string]interface{}{}
	if req.Question != nil {
		fields["question"] = *req.Question
	}
	if req.Answer != nil {
		fields["answer"] = *req.Answer
	}
	if req.Position != nil {
		fields["position"] = *req.Position
	}

	f, err := s.FAQs.Update(r.Context(), id, fields)
	if err != nil {
		s.Error(w, r, err)
		return
	}
	s.changed(r, "update", "faq", f.ID, "")
	handlers.JSON(w, http.StatusOK, f)
}

// DELETE /api/admin/faqs/{id}
func (s *Service) DeleteFAQ(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathID(r, "id")
	if err != nil {
		s.Error(w, r, err)
		return
	}
	if err := s.FAQs.Delete(r.Context(), id); err != nil {
		s.Error(w, r, err)
		return
	}
	s.changed(r, "delete", "faq", id, "")
	handlers.OK(w)
}
