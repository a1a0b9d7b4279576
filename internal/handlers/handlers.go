package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
	"gorm.io/gorm"

	"github.com/s/courseCatalog/internal/auth"
	"github.com/s/courseCatalog/internal/cache"
	"github.com/s/courseCatalog/internal/catalog"
	"github.com/s/courseCatalog/internal/logger"
	"github.com/s/courseCatalog/internal/models"
	"github.com/s/courseCatalog/internal/storage"
	"github.com/s/courseCatalog/internal/validation"
)

const (
	SessionName = "session"
	sessionUser = "user_id"
	oauthState  = "oauth_state"
)

// Options carries everything a Handler needs besides the database.
type Options struct {
	Store       sessions.Store
	OAuth       *oauth2.Config // nil disables Google login
	Log         logger.Logger
	Cache       cache.Invalidator
	AdminEmails []string
	SessionAge  int
	Secure      bool
}

type Handler struct {
	Store    sessions.Store
	OAuth    *oauth2.Config
	Log      logger.Logger
	Validate *validation.Validator
	Cache    cache.Invalidator

	Users       *storage.UserRepo
	Courses     *storage.CourseRepo
	Categories  *storage.CategoryRepo
	Instructors *storage.InstructorRepo
	Lessons     *storage.LessonRepo
	FAQs        *storage.FAQRepo
	Reviews     *storage.ReviewRepo
	Enrollments *storage.EnrollmentRepo
	Audit       *storage.AuditRepo

	Catalog  *catalog.Query
	Ordering *catalog.Ordering

	sessionAge int
	secure     bool
}

func NewHandler(db *gorm.DB, opts Options) *Handler {
	courses := storage.NewCourseRepo(db)
	age := opts.SessionAge
	if age == 0 {
		age = 86400 * 7
	}
	return &Handler{
		Store:    opts.Store,
		OAuth:    opts.OAuth,
		Log:      opts.Log,
		Validate: validation.NewValidator(),
		Cache:    opts.Cache,

		Users:       storage.NewUserRepo(db, opts.AdminEmails),
		Courses:     courses,
		Categories:  storage.NewCategoryRepo(db),
		Instructors: storage.NewInstructorRepo(db),
		Lessons:     storage.NewLessonRepo(db),
		FAQs:        storage.NewFAQRepo(db),
		Reviews:     storage.NewReviewRepo(db),
		Enrollments: storage.NewEnrollmentRepo(db),
		Audit:       storage.NewAuditRepo(db),

		Catalog:  catalog.NewQuery(courses),
		Ordering: catalog.NewOrdering(courses, opts.Cache, opts.Log),

		sessionAge: age,
		secure:     opts.Secure,
	}
}

// Invalidate drops cached public pages after a write.
func (h *Handler) Invalidate() {
	if h.Cache != nil {
		h.Cache.Invalidate(catalog.CatalogPaths...)
	}
}

type ctxKey int

const userKey ctxKey = iota

// WithUser stores the authenticated user in ctx.
func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// UserFrom returns the user placed in ctx by the auth middleware, or nil.
func UserFrom(ctx context.Context) *models.User {
	u, _ := ctx.Value(userKey).(*models.User)
	return u
}

// CurrentUser loads the user referenced by the session cookie.
func (h *Handler) CurrentUser(r *http.Request) (*models.User, error) {
	if u := UserFrom(r.Context()); u != nil {
		return u, nil
	}
	session, err := h.Store.Get(r, SessionName)
	if err != nil {
		return nil, ErrUnauthorized
	}
	raw, _ := session.Values[sessionUser].(string)
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, ErrUnauthorized
	}
	u, err := h.Users.GetByID(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrUnauthorized
	}
	return u, err
}

func (h *Handler) sessionOptions(maxAge int) *sessions.Options {
	return &sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// Login writes the user id into the session cookie.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request, u *models.User) error {
	session, _ := h.Store.Get(r, SessionName)
	delete(session.Values, oauthState)
	session.Values[sessionUser] = u.ID.String()
	session.Options = h.sessionOptions(h.sessionAge)
	return session.Save(r, w)
}

// GET /api/me
func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	u, err := h.CurrentUser(r)
	if err != nil {
		h.Error(w, r, err)
		return
	}
	JSON(w, http.StatusOK, u)
}

func (h *Handler) HandleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	if h.OAuth == nil {
		Fail(w, http.StatusNotFound, "Google login is not configured")
		return
	}
	state := uuid.NewString()
	session, _ := h.Store.Get(r, SessionName)
	session.Values[oauthState] = state
	session.Options = h.sessionOptions(600)
	if err := session.Save(r, w); err != nil {
		h.Error(w, r, errors.Wrap(err, "save session"))
		return
	}
	http.Redirect(w, r, h.OAuth.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

type googleUser struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

func (h *Handler) HandleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	if h.OAuth == nil {
		Fail(w, http.StatusNotFound, "Google login is not configured")
		return
	}
	session, _ := h.Store.Get(r, SessionName)
	want, _ := session.Values[oauthState].(string)
	if want == "" || r.URL.Query().Get("state") != want {
		Fail(w, http.StatusUnauthorized, "Invalid state")
		return
	}

	ctx := r.Context()
	token, err := h.OAuth.Exchange(ctx, r.URL.Query().Get("code"))
	if err != nil {
		h.Log.Warn("google token exchange failed", err)
		Fail(w, http.StatusBadRequest, "Token exchange error")
		return
	}

	resp, err := h.OAuth.Client(ctx, token).Get(auth.UserInfoURL)
	if err != nil {
		h.Error(w, r, errors.Wrap(err, "google userinfo"))
		return
	}
	defer resp.Body.Close()

	var info googleUser
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		h.Error(w, r, errors.Wrap(err, "decode google userinfo"))
		return
	}
	if info.ID == "" {
		Fail(w, http.StatusBadRequest, "Google account has no id")
		return
	}

	u, err := h.Users.SaveUser(ctx, models.User{
		GoogleID: info.ID,
		Email:    info.Email,
		Name:     info.Name,
		Picture:  info.Picture,
	})
	if err != nil {
		h.Error(w, r, err)
		return
	}
	if err := h.Login(w, r, u); err != nil {
		h.Error(w, r, errors.Wrap(err, "save session"))
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	session, _ := h.Store.Get(r, SessionName)
	session.Values = map[interface{}]interface{}{}
	session.Options = h.sessionOptions(-1)
	_ = session.Save(r, w)
	if r.Method == http.MethodPost {
		OK(w)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Record writes an audit entry for the acting admin. A failed write is logged, not returned.
func (h *Handler) Record(r *http.Request, action, entityType string, entityID interface{}, details string) {
	var actor uuid.UUID
	if u := UserFrom(r.Context()); u != nil {
		actor = u.ID
	}
	id := fmt.Sprint(entityID)
	if err := h.Audit.Record(r.Context(), actor, action, entityType, id, details); err != nil {
		h.Log.Warn("audit record failed", map[string]interface{}{
			"action": action,
			"entity": entityType,
			"id":     id,
		}, err)
	}
}
