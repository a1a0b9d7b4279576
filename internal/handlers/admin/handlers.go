package admin

import (
	"net/http"
	"strconv"

	"github.com/s/courseCatalog/internal/catalog"
	"github.com/s/courseCatalog/internal/handlers"
)

// Service holds the admin API. Every route is mounted behind the ADMIN role check.
type Service struct {
	*handlers.Handler
}

// changed records the mutation and drops the cached public pages.
func (s *Service) changed(r *http.Request, action, entityType string, entityID interface{}, details string) {
	s.Record(r, action, entityType, entityID, details)
	s.Invalidate()
}

// GET /api/admin/audit?page&limit
func (s *Service) ListAudit(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit < 1 || limit > catalog.MaxPageSize {
		limit = catalog.DefaultPageSize
	}

	logs, total, err := s.Audit.List(r.Context(), (page-1)*limit, limit)
	if err != nil {
		s.Error(w, r, err)
		return
	}
	handlers.Paged(w, logs, page, limit, total)
}
