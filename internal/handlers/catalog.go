package handlers

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/s/courseCatalog/internal/catalog"
	"github.com/s/courseCatalog/internal/models"
	"github.com/s/courseCatalog/internal/storage"
	"github.com/s/courseCatalog/internal/validation"
)

// ListParams is the parsed query string of a course listing.
type ListParams struct {
	Filter storage.CourseFilter
	Sort   catalog.Sort
	Page   int
	Limit  int
}

// ParseListParams reads page, limit, categoryId, search, level, featured, status,
// sortBy, order and sortByOrder. Without sortBy the listing is in rank order.
func ParseListParams(q url.Values) (ListParams, error) {
	p := ListParams{Page: 1, Limit: catalog.DefaultPageSize}
	fields := map[string]string{}

	intParam := func(name string, dst *int) {
		if v := q.Get(name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				fields[name] = name + " must be an integer"
				return
			}
			*dst = n
		}
	}
	intParam("page", &p.Page)
	intParam("limit", &p.Limit)

	if v := q.Get("categoryId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			fields["categoryId"] = "categoryId must be a valid id"
		} else {
			p.Filter.CategoryID = &id
		}
	}

	p.Filter.Search = strings.TrimSpace(q.Get("search"))

	if v := strings.ToUpper(q.Get("level")); v != "" {
		switch level := models.CourseLevel(v); level {
		case models.LevelBeginner, models.LevelIntermediate, models.LevelAdvanced:
			p.Filter.Level = level
		default:
			fields["level"] = "level must be one of BEGINNER INTERMEDIATE ADVANCED"
		}
	}

	if v := strings.ToUpper(q.Get("status")); v != "" {
		switch status := models.CourseStatus(v); status {
		case models.StatusDraft, models.StatusPublished:
			p.Filter.Status = &status
		default:
			fields["status"] = "status must be one of DRAFT PUBLISHED"
		}
	}

	if v := q.Get("featured"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			fields["featured"] = "featured must be a boolean"
		}
		p.Filter.FeaturedOnly = b
	}

	byRank, _ := strconv.ParseBool(q.Get("sortByOrder"))
	p.Sort = catalog.Sort{ByRank: byRank || q.Get("sortBy") == ""}
	if !p.Sort.ByRank {
		p.Sort.Field = q.Get("sortBy")
		p.Sort.Desc = !strings.EqualFold(q.Get("order"), "asc")
	}

	if len(fields) > 0 {
		return p, &validation.Error{Message: "invalid query parameters", Fields: fields}
	}
	return p, nil
}

// GET /api/courses
func (h *Handler) ListCourses(w http.ResponseWriter, r *http.Request) {
	p, err := ParseListParams(r.URL.Query())
	if err != nil {
		h.Error(w, r, err)
		return
	}
	page, err := h.Catalog.ListPublic(r.Context(), p.Filter, p.Sort, p.Page, p.Limit)
	if err != nil {
		h.Error(w, r, err)
		return
	}
	Paged(w, page.Items, page.Page, page.PageSize, page.Total)
}

// GET /api/courses/{slug}
func (h *Handler) GetCourse(w http.ResponseWriter, r *http.Request) {
	course, err := h.Courses.GetBySlug(r.Context(), mux.Vars(r)["slug"])
	if err == nil && course.Status != models.StatusPublished {
		err = storage.ErrNotFound
	}
	if err != nil {
		h.Error(w, r, err)
		return
	}
	JSON(w, http.StatusOK, course)
}

// GET /api/categories
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Categories.List(r.Context())
	if err != nil {
		h.Error(w, r, err)
		return
	}
	JSON(w, http.StatusOK, categories)
}

// GET /api/instructors
func (h *Handler) ListInstructors(w http.ResponseWriter, r *http.Request) {
	instructors, err := h.Instructors.List(r.Context())
	if err != nil {
		h.Error(w, r, err)
		return
	}
	JSON(w, http.StatusOK, instructors)
}
