package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/s/courseCatalog/internal/cache"
	"github.com/s/courseCatalog/internal/handlers"
	"github.com/s/courseCatalog/internal/handlers/admin"
	"github.com/s/courseCatalog/internal/handlers/personal"
	"github.com/s/courseCatalog/internal/middleware"
	"github.com/s/courseCatalog/internal/models"
)

// NewRouter mounts every route. pages may be nil to disable response caching.
func NewRouter(h *handlers.Handler, pages *cache.PageCache, corsOrigins []string) http.Handler {
	adminService := admin.Service{Handler: h}
	personalService := personal.Service{Handler: h}

	adminOnly := middleware.RequiredRole(h, models.RoleAdmin)
	signedIn := middleware.RequiredRole(h, models.RoleUser, models.RoleAdmin)

	cached := func(fn http.HandlerFunc) http.Handler {
		if pages == nil {
			return fn
		}
		return pages.Middleware(fn)
	}

	r := mux.NewRouter()
	r.Use(middleware.Logger(h.Log))
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlers.Fail(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlers.Fail(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	// --- Auth ---
	r.HandleFunc("/auth/google/login", h.HandleGoogleLogin).Methods("GET")
	r.HandleFunc("/auth/google/callback", h.HandleGoogleCallback).Methods("GET")
	r.HandleFunc("/logout", h.HandleLogout).Methods("GET", "POST")
	r.HandleFunc("/api/me", h.HandleMe).Methods("GET")
	r.HandleFunc("/api/me/enrollments", signedIn(personalService.ListMyEnrollments)).Methods("GET")

	// --- Public catalog ---
	r.Handle("/api/courses", cached(h.ListCourses)).Methods("GET")
	r.Handle("/api/courses/{slug}", cached(h.GetCourse)).Methods("GET")
	r.Handle("/api/courses/{id}/reviews", cached(h.ListReviews)).Methods("GET")
	r.Handle("/api/categories", cached(h.ListCategories)).Methods("GET")
	r.Handle("/api/instructors", cached(h.ListInstructors)).Methods("GET")

	r.HandleFunc("/api/courses/{id}/reviews", signedIn(h.AddReview)).Methods("POST")
	r.HandleFunc("/api/enroll", signedIn(h.SubmitEnrollment)).Methods("POST")

	// --- Admin API ---
	r.HandleFunc("/api/admin/courses/bulk/reorder", adminOnly(adminService.BulkReorder)).Methods("POST")
	r.HandleFunc("/api/admin/courses/ranks/initialize", adminOnly(adminService.InitializeRanks)).Methods("POST")
	r.HandleFunc("/api/admin/courses", adminOnly(adminService.ListCourses)).Methods("GET")
	r.HandleFunc("/api/admin/courses", adminOnly(adminService.CreateCourse)).Methods("POST")
	r.HandleFunc("/api/admin/courses/{id}", adminOnly(adminService.GetCourse)).Methods("GET")
	r.HandleFunc("/api/admin/courses/{id}", adminOnly(adminService.UpdateCourse)).Methods("PUT")
	r.HandleFunc("/api/admin/courses/{id}", adminOnly(adminService.DeleteCourse)).Methods("DELETE")
	r.HandleFunc("/api/admin/courses/{id}/seo", adminOnly(adminService.UpdateSEO)).Methods("PUT")
	r.HandleFunc("/api/admin/courses/{id}/content", adminOnly(adminService.ReplaceContent)).Methods("PUT")

	r.HandleFunc("/api/admin/courses/{id}/lessons", adminOnly(adminService.ListLessons)).Methods("GET")
	r.HandleFunc("/api/admin/courses/{id}/lessons", adminOnly(adminService.CreateLesson)).Methods("POST")
	r.HandleFunc("/api/admin/lessons/{id}", adminOnly(adminService.UpdateLesson)).Methods("PUT")
	r.HandleFunc("/api/admin/lessons/{id}", adminOnly(adminService.DeleteLesson)).Methods("DELETE")

	r.HandleFunc("/api/admin/courses/{id}/faqs", adminOnly(adminService.ListFAQs)).Methods("GET")
	r.HandleFunc("/api/admin/courses/{id}/faqs", adminOnly(adminService.CreateFAQ)).Methods("POST")
	r.HandleFunc("/api/admin/faqs/{id}", adminOnly(adminService.UpdateFAQ)).Methods("PUT")
	r.HandleFunc("/api/admin/faqs/{id}", adminOnly(adminService.DeleteFAQ)).Methods("DELETE")

	r.HandleFunc("/api/admin/categories", adminOnly(adminService.ListCategories)).Methods("GET")
	r.HandleFunc("/api/admin/categories", adminOnly(adminService.CreateCategory)).Methods("POST")
	r.HandleFunc("/api/admin/categories/{id}", adminOnly(adminService.UpdateCategory)).Methods("PUT")
	r.HandleFunc("/api/admin/categories/{id}", adminOnly(adminService.DeleteCategory)).Methods("DELETE")

	r.HandleFunc("/api/admin/instructors", adminOnly(adminService.ListInstructors)).Methods("GET")
	r.HandleFunc("/api/admin/instructors", adminOnly(adminService.CreateInstructor)).Methods("POST")
	r.HandleFunc("/api/admin/instructors/{id}", adminOnly(adminService.UpdateInstructor)).Methods("PUT")
	r.HandleFunc("/api/admin/instructors/{id}", adminOnly(adminService.DeleteInstructor)).Methods("DELETE")

	r.HandleFunc("/api/admin/enrollments", adminOnly(personalService.ListEnrollments)).Methods("GET")
	r.HandleFunc("/api/admin/enrollments/{id}", adminOnly(personalService.UpdateEnrollmentStatus)).Methods("PUT")

	r.HandleFunc("/api/admin/audit", adminOnly(adminService.ListAudit)).Methods("GET")

	return cors.New(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(r)
}
