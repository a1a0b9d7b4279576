package catalog

import (
	"context"
	"math"

	"github.com/s/courseCatalog/internal/models"
	"github.com/s/courseCatalog/internal/storage"
	"github.com/s/courseCatalog/internal/validation"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Sort selects rank order or a single whitelisted field.
type Sort struct {
	ByRank bool
	Field  string
	Desc   bool
}

type Page struct {
	Items      []models.Course `json:"items"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	PageSize   int             `json:"pageSize"`
	TotalPages int             `json:"totalPages"`
}

type Query struct {
	courses *storage.CourseRepo
}

func NewQuery(courses *storage.CourseRepo) *Query {
	return &Query{courses: courses}
}

// ListPublic lists published courses only, whatever status the filter asks for.
func (q *Query) ListPublic(ctx context.Context, filter storage.CourseFilter, sort Sort, page, pageSize int) (Page, error) {
	published := models.StatusPublished
	filter.Status = &published
	return q.list(ctx, filter, sort, page, pageSize)
}

// ListAdmin lists courses in every status. Callers must have checked the admin role.
func (q *Query) ListAdmin(ctx context.Context, filter storage.CourseFilter, sort Sort, page, pageSize int) (Page, error) {
	return q.list(ctx, filter, sort, page, pageSize)
}

func (q *Query) list(ctx context.Context, filter storage.CourseFilter, sort Sort, page, pageSize int) (Page, error) {
	if !sort.ByRank && sort.Field != "" {
		if _, ok := storage.SortColumns[sort.Field]; !ok {
			return Page{}, validation.Field("sortBy", "unsupported sort field "+sort.Field)
		}
	}
	if page < 1 {
		page = 1
	}
	switch {
	case pageSize < 1:
		pageSize = DefaultPageSize
	case pageSize > MaxPageSize:
		pageSize = MaxPageSize
	}

	// An offset that would overflow is past any real total.
	offset := math.MaxInt
	if page-1 <= math.MaxInt/pageSize {
		offset = (page - 1) * pageSize
	}

	items, total, err := q.courses.List(ctx, storage.ListOptions{
		Filter: filter,
		Order:  storage.CourseOrder{ByRank: sort.ByRank, Field: sort.Field, Desc: sort.Desc},
		Offset: offset,
		Limit:  pageSize,
	})
	if err != nil {
		return Page{}, err
	}
	return Page{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: int((total + int64(pageSize) - 1) / int64(pageSize)),
	}, nil
}
