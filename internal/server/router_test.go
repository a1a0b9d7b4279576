package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/s/courseCatalog/internal/cache"
	"github.com/s/courseCatalog/internal/database/dbtest"
	"github.com/s/courseCatalog/internal/handlers"
	"github.com/s/courseCatalog/internal/logger"
	"github.com/s/courseCatalog/internal/models"
)

type response struct {
	Success    bool                 `json:"success"`
	Data       json.RawMessage      `json:"data"`
	Error      string               `json:"error"`
	Fields     map[string]string    `json:"fields"`
	Pagination *handlers.Pagination `json:"pagination"`
}

type testApp struct {
	t      *testing.T
	db     *gorm.DB
	h      *handlers.Handler
	router http.Handler

	admin []*http.Cookie
	user  []*http.Cookie
}

func newTestApp(t *testing.T) *testApp {
	db := dbtest.Open(t)
	store := sessions.NewCookieStore([]byte("test-session-key-0123456789abcdef"))
	pages := cache.NewPageCache(time.Minute)
	h := handlers.NewHandler(db, handlers.Options{
		Store: store,
		Log:   logger.New(log.New(io.Discard, "", 0), logger.Options{}),
		Cache: pages,
	})
	app := &testApp{t: t, db: db, h: h, router: NewRouter(h, pages, []string{"*"})}
	app.admin = app.login(models.RoleAdmin)
	app.user = app.login(models.RoleUser)
	return app
}

func (a *testApp) login(role string) []*http.Cookie {
	u := &models.User{GoogleID: "g-" + role, Email: role + "@example.com", Name: role, Role: role}
	require.NoError(a.t, a.db.Create(u).Error)

	rec := httptest.NewRecorder()
	require.NoError(a.t, a.h.Login(rec, httptest.NewRequest(http.MethodGet, "/", nil), u))
	cookies := rec.Result().Cookies()
	require.NotEmpty(a.t, cookies)
	return cookies
}

func (a *testApp) do(method, path string, body interface{}, cookies []*http.Cookie) (int, response) {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)

	var resp response
	require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return rec.Code, resp
}

func (a *testApp) createCourse(body map[string]interface{}) models.Course {
	a.t.Helper()
	code, resp := a.do(http.MethodPost, "/api/admin/courses", body, a.admin)
	require.Equal(a.t, http.StatusCreated, code, resp.Error)
	var c models.Course
	require.NoError(a.t, json.Unmarshal(resp.Data, &c))
	return c
}

func (a *testApp) publicTitles(query string) []string {
	a.t.Helper()
	code, resp := a.do(http.MethodGet, "/api/courses"+query, nil, nil)
	require.Equal(a.t, http.StatusOK, code)
	var courses []models.Course
	require.NoError(a.t, json.Unmarshal(resp.Data, &courses))
	out := make([]string, len(courses))
	for i, c := range courses {
		out[i] = c.Title
	}
	return out
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	app := newTestApp(t)

	tests := []struct {
		name    string
		method  string
		path    string
		cookies []*http.Cookie
	}{
		{"anonymous list", http.MethodGet, "/api/admin/courses", nil},
		{"user list", http.MethodGet, "/api/admin/courses", app.user},
		{"user create", http.MethodPost, "/api/admin/courses", app.user},
		{"user reorder", http.MethodPost, "/api/admin/courses/bulk/reorder", app.user},
		{"anonymous delete", http.MethodDelete, "/api/admin/courses/" + uuid.NewString(), nil},
		{"anonymous category", http.MethodPost, "/api/admin/categories", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, resp := app.do(tt.method, tt.path, map[string]string{"title": "Sneaky"}, tt.cookies)
			assert.Equal(t, http.StatusUnauthorized, code)
			assert.False(t, resp.Success)
			assert.Equal(t, "Unauthorized", resp.Error)
		})
	}

	var n int64
	require.NoError(t, app.db.Model(&models.Course{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestCreateCourseValidation(t *testing.T) {
	app := newTestApp(t)

	c := app.createCourse(map[string]interface{}{
		"title": "Go in Practice",
		"price": map[string]interface{}{"originalPrice": 80, "discountedPrice": 60},
	})
	assert.Equal(t, "go-in-practice", c.Slug)
	assert.Equal(t, models.StatusDraft, c.Status)
	assert.Nil(t, c.DisplayOrder)
	require.NotNil(t, c.Price)
	assert.Equal(t, 25, c.Price.DiscountPercentage)

	code, resp := app.do(http.MethodPost, "/api/admin/courses", map[string]interface{}{
		"title": "Another", "slug": "go-in-practice",
	}, app.admin)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, resp.Fields, "slug")

	code, resp = app.do(http.MethodPost, "/api/admin/courses", map[string]interface{}{"slug": "no-title"}, app.admin)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "title is required", resp.Fields["title"])

	code, resp = app.do(http.MethodPost, "/api/admin/courses", map[string]interface{}{
		"title": "Cheap", "price": map[string]interface{}{"originalPrice": 10, "discountedPrice": 20},
	}, app.admin)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, resp.Fields, "price.discountedPrice")

	var n int64
	require.NoError(t, app.db.Model(&models.Course{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestPublicListingAndCacheInvalidation(t *testing.T) {
	app := newTestApp(t)

	c := app.createCourse(map[string]interface{}{"title": "Hidden"})
	assert.Empty(t, app.publicTitles(""))

	code, _ := app.do(http.MethodGet, "/api/courses/"+c.Slug, nil, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = app.do(http.MethodPut, "/api/admin/courses/"+c.ID.String(), map[string]interface{}{"status": "PUBLISHED"}, app.admin)
	require.Equal(t, http.StatusOK, code)

	// The cached empty page must be gone after the update.
	assert.Equal(t, []string{"Hidden"}, app.publicTitles(""))

	code, resp := app.do(http.MethodGet, "/api/courses?page=5&limit=2", nil, nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `[]`, string(resp.Data))
	require.NotNil(t, resp.Pagination)
	assert.Equal(t, handlers.Pagination{Page: 5, Limit: 2, TotalCourses: 1, TotalPages: 1}, *resp.Pagination)

	code, resp = app.do(http.MethodGet, "/api/courses?sortBy=secret", nil, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, resp.Fields, "sortBy")

	code, resp = app.do(http.MethodGet, "/api/courses?level=EXPERT", nil, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, resp.Fields, "level")
}

func TestReorderEndpoints(t *testing.T) {
	app := newTestApp(t)

	ids := map[string]uuid.UUID{}
	for _, title := range []string{"A", "B", "C"} {
		c := app.createCourse(map[string]interface{}{"title": "Course " + title, "status": "PUBLISHED"})
		ids[title] = c.ID
	}

	code, resp := app.do(http.MethodPost, "/api/admin/courses/ranks/initialize", nil, app.admin)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"ranked":3}`, string(resp.Data))

	code, resp = app.do(http.MethodPost, "/api/admin/courses/bulk/reorder", map[string]interface{}{
		"ids": []uuid.UUID{ids["C"], ids["A"], ids["B"]},
	}, app.admin)
	require.Equal(t, http.StatusOK, code, resp.Error)
	assert.True(t, resp.Success)
	assert.Equal(t, []string{"Course C", "Course A", "Course B"}, app.publicTitles(""))

	code, _ = app.do(http.MethodPost, "/api/admin/courses/bulk/reorder", map[string]interface{}{
		"orders": []map[string]interface{}{
			{"id": ids["B"], "displayOrder": 1},
			{"id": ids["C"], "displayOrder": 2},
			{"id": ids["A"], "displayOrder": 3},
		},
	}, app.admin)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []string{"Course B", "Course C", "Course A"}, app.publicTitles("?sortByOrder=true"))

	code, resp = app.do(http.MethodPost, "/api/admin/courses/bulk/reorder", map[string]interface{}{
		"ids": []uuid.UUID{ids["A"], ids["A"]},
	}, app.admin)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.False(t, resp.Success)

	code, _ = app.do(http.MethodPost, "/api/admin/courses/bulk/reorder", map[string]interface{}{
		"ids": []uuid.UUID{ids["A"], uuid.New()},
	}, app.admin)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = app.do(http.MethodPost, "/api/admin/courses/bulk/reorder", map[string]interface{}{}, app.admin)
	assert.Equal(t, http.StatusBadRequest, code)

	assert.Equal(t, []string{"Course B", "Course C", "Course A"}, app.publicTitles(""))
}

func TestDeleteCourseRemovesChildren(t *testing.T) {
	app := newTestApp(t)
	c := app.createCourse(map[string]interface{}{"title": "Doomed"})
	base := "/api/admin/courses/" + c.ID.String()

	for _, title := range []string{"Lesson 1", "Lesson 2"} {
		code, resp := app.do(http.MethodPost, base+"/lessons", map[string]interface{}{"title": title}, app.admin)
		require.Equal(t, http.StatusCreated, code, resp.Error)
	}
	code, _ := app.do(http.MethodPost, base+"/faqs", map[string]interface{}{"question": "Why?", "answer": "Because."}, app.admin)
	require.Equal(t, http.StatusCreated, code)
	code, _ = app.do(http.MethodPut, base+"/seo", map[string]interface{}{"metaTitle": "Doomed", "keywords": []string{"go"}}, app.admin)
	require.Equal(t, http.StatusOK, code)

	code, resp := app.do(http.MethodGet, base, nil, app.admin)
	require.Equal(t, http.StatusOK, code)
	var loaded models.Course
	require.NoError(t, json.Unmarshal(resp.Data, &loaded))
	assert.Len(t, loaded.Lessons, 2)
	assert.Len(t, loaded.FAQs, 1)
	require.NotNil(t, loaded.SEO)

	code, resp = app.do(http.MethodDelete, base, nil, app.admin)
	require.Equal(t, http.StatusOK, code)
	assert.True(t, resp.Success)

	code, _ = app.do(http.MethodGet, base, nil, app.admin)
	assert.Equal(t, http.StatusNotFound, code)
	code, resp = app.do(http.MethodGet, base+"/lessons", nil, app.admin)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `[]`, string(resp.Data))

	for _, m := range []interface{}{&models.Lesson{}, &models.FAQ{}, &models.SEO{}} {
		var n int64
		require.NoError(t, app.db.Model(m).Where("course_id = ?", c.ID).Count(&n).Error)
		assert.Zero(t, n, "%T", m)
	}

	code, _ = app.do(http.MethodDelete, base, nil, app.admin)
	assert.Equal(t, http.StatusNotFound, code)

	code, resp = app.do(http.MethodGet, "/api/admin/audit?limit=50", nil, app.admin)
	require.Equal(t, http.StatusOK, code)
	var logs []models.AuditLog
	require.NoError(t, json.Unmarshal(resp.Data, &logs))
	assert.Len(t, logs, 6)
}

func TestCategoryAndInstructorCRUD(t *testing.T) {
	app := newTestApp(t)

	code, resp := app.do(http.MethodPost, "/api/admin/categories", map[string]interface{}{"name": "Web Design", "icon": "palette"}, app.admin)
	require.Equal(t, http.StatusCreated, code, resp.Error)
	var cat models.Category
	require.NoError(t, json.Unmarshal(resp.Data, &cat))
	assert.Equal(t, "web-design", cat.Slug)

	code, resp = app.do(http.MethodPost, "/api/admin/categories", map[string]interface{}{"name": "Other", "slug": "web-design"}, app.admin)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, resp.Fields, "slug")

	code, resp = app.do(http.MethodPost, "/api/admin/categories", map[string]interface{}{"name": "Bad", "slug": "Not A Slug"}, app.admin)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, resp.Fields, "slug")

	code, resp = app.do(http.MethodPost, "/api/admin/instructors", map[string]interface{}{"name": "Ada Lovelace"}, app.admin)
	require.Equal(t, http.StatusCreated, code, resp.Error)
	var in models.Instructor
	require.NoError(t, json.Unmarshal(resp.Data, &in))

	c := app.createCourse(map[string]interface{}{
		"title":        "Analytical Engines",
		"status":       "PUBLISHED",
		"instructorId": in.ID,
		"categoryIds":  []uuid.UUID{cat.ID},
	})
	assert.Len(t, app.publicTitles("?categoryId="+cat.ID.String()), 1)

	code, _ = app.do(http.MethodDelete, "/api/admin/categories/"+cat.ID.String(), nil, app.admin)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, app.publicTitles("?categoryId="+cat.ID.String()))

	code, _ = app.do(http.MethodDelete, "/api/admin/instructors/"+in.ID.String(), nil, app.admin)
	require.Equal(t, http.StatusOK, code)
	code, resp = app.do(http.MethodGet, "/api/admin/courses/"+c.ID.String(), nil, app.admin)
	require.Equal(t, http.StatusOK, code)
	var got models.Course
	require.NoError(t, json.Unmarshal(resp.Data, &got))
	assert.Nil(t, got.InstructorID)

	code, _ = app.do(http.MethodPut, "/api/admin/categories/"+uuid.NewString(), map[string]interface{}{"name": "x"}, app.admin)
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = app.do(http.MethodPut, "/api/admin/categories/not-an-id", map[string]interface{}{"name": "x"}, app.admin)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestReviewsAndEnrollments(t *testing.T) {
	app := newTestApp(t)
	c := app.createCourse(map[string]interface{}{"title": "Reviewed", "status": "PUBLISHED"})
	reviews := "/api/courses/" + c.ID.String() + "/reviews"

	code, _ := app.do(http.MethodPost, reviews, map[string]interface{}{"rating": 5}, nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, resp := app.do(http.MethodPost, reviews, map[string]interface{}{"rating": 9}, app.user)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, resp.Fields, "rating")

	code, _ = app.do(http.MethodPost, reviews, map[string]interface{}{"rating": 4, "comment": "Solid"}, app.user)
	require.Equal(t, http.StatusOK, code)
	code, _ = app.do(http.MethodPost, reviews, map[string]interface{}{"rating": 2}, app.admin)
	require.Equal(t, http.StatusOK, code)

	code, resp = app.do(http.MethodGet, reviews, nil, nil)
	require.Equal(t, http.StatusOK, code)
	var list []models.Review
	require.NoError(t, json.Unmarshal(resp.Data, &list))
	assert.Len(t, list, 2)

	code, resp = app.do(http.MethodGet, "/api/courses/"+c.Slug, nil, nil)
	require.Equal(t, http.StatusOK, code)
	var got models.Course
	require.NoError(t, json.Unmarshal(resp.Data, &got))
	assert.InDelta(t, 3.0, got.Rating, 0.001)
	assert.Equal(t, 2, got.ReviewCount)

	code, _ = app.do(http.MethodPost, "/api/enroll", map[string]interface{}{"courseId": c.ID}, app.user)
	require.Equal(t, http.StatusOK, code)
	code, resp = app.do(http.MethodGet, "/api/me/enrollments", nil, app.user)
	require.Equal(t, http.StatusOK, code)
	var mine []models.Enrollment
	require.NoError(t, json.Unmarshal(resp.Data, &mine))
	require.Len(t, mine, 1)
	assert.Equal(t, models.EnrollmentPending, mine[0].Status)

	code, resp = app.do(http.MethodPut, "/api/admin/enrollments/"+mine[0].ID.String(), map[string]interface{}{"status": "approved"}, app.admin)
	require.Equal(t, http.StatusOK, code, resp.Error)
	code, resp = app.do(http.MethodGet, "/api/admin/enrollments?status=approved", nil, app.admin)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, resp.Pagination.TotalCourses)

	code, _ = app.do(http.MethodGet, "/api/me", nil, app.user)
	assert.Equal(t, http.StatusOK, code)
	code, _ = app.do(http.MethodGet, "/api/me", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}
