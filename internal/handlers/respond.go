package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/s/courseCatalog/internal/catalog"
	"github.com/s/courseCatalog/internal/storage"
	"github.com/s/courseCatalog/internal/validation"
)

// ErrUnauthorized is returned when the session is missing or lacks the required role.
var ErrUnauthorized = errors.New("Unauthorized")

// Pagination is the paging block of list responses.
type Pagination struct {
	Page         int   `json:"page"`
	Limit        int   `json:"limit"`
	TotalCourses int64 `json:"totalCourses"`
	TotalPages   int   `json:"totalPages"`
}

type envelope struct {
	Success    bool              `json:"success"`
	Data       interface{}       `json:"data,omitempty"`
	Error      string            `json:"error,omitempty"`
	Fields     map[string]string `json:"fields,omitempty"`
	Pagination *Pagination       `json:"pagination,omitempty"`
}

func write(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// JSON writes {success:true, data}.
func JSON(w http.ResponseWriter, status int, data interface{}) {
	write(w, status, envelope{Success: true, Data: data})
}

// OK writes {success:true} without data.
func OK(w http.ResponseWriter) {
	write(w, http.StatusOK, envelope{Success: true})
}

// Paged writes a list response with its pagination block.
func Paged(w http.ResponseWriter, data interface{}, page, limit int, total int64) {
	pages := 0
	if limit > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}
	write(w, http.StatusOK, envelope{
		Success: true,
		Data:    data,
		Pagination: &Pagination{
			Page:         page,
			Limit:        limit,
			TotalCourses: total,
			TotalPages:   pages,
		},
	})
}

// Fail writes {success:false, error}.
func Fail(w http.ResponseWriter, status int, msg string) {
	write(w, status, envelope{Error: msg})
}

// Error converts err into the matching status. Anything unexpected is logged and
// reported to the client with a generic message.
func (h *Handler) Error(w http.ResponseWriter, r *http.Request, err error) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		write(w, http.StatusBadRequest, envelope{Error: verr.Message, Fields: verr.Fields})
	case errors.Is(err, ErrUnauthorized):
		Fail(w, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, storage.ErrDuplicateSlug):
		write(w, http.StatusBadRequest, envelope{
			Error:  "validation failed",
			Fields: map[string]string{"slug": storage.ErrDuplicateSlug.Error()},
		})
	case errors.Is(err, storage.ErrConflict):
		Fail(w, http.StatusBadRequest, storage.ErrConflict.Error())
	case errors.Is(err, catalog.ErrDuplicateID),
		errors.Is(err, catalog.ErrEmptyOrder),
		errors.Is(err, catalog.ErrBadRank):
		Fail(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, storage.ErrNotFound):
		Fail(w, http.StatusNotFound, notFoundMessage(err))
	default:
		h.Log.Error("request failed", map[string]interface{}{
			"method": r.Method,
			"path":   r.URL.Path,
		}, err)
		Fail(w, http.StatusInternalServerError, "Internal server error")
	}
}

// notFoundMessage turns "category: record not found" into "category not found".
func notFoundMessage(err error) string {
	msg := err.Error()
	if prefix := strings.TrimSuffix(msg, ": "+storage.ErrNotFound.Error()); prefix != msg {
		return prefix + " not found"
	}
	return "Not found"
}

// Decode reads a JSON body into dst and validates it.
func (h *Handler) Decode(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return validation.New("invalid JSON payload")
	}
	return h.Validate.Struct(dst)
}

// PathID parses the {name} route variable as a uuid.
func PathID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		return uuid.Nil, validation.Field(name, "must be a valid id")
	}
	return id, nil
}
