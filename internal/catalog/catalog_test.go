package catalog

import (
	"context"
	"io"
	"log"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s/courseCatalog/internal/database/dbtest"
	"github.com/s/courseCatalog/internal/logger"
	"github.com/s/courseCatalog/internal/models"
	"github.com/s/courseCatalog/internal/storage"
	"github.com/s/courseCatalog/internal/validation"
)

type invalidations struct {
	calls [][]string
}

func (i *invalidations) Invalidate(prefixes ...string) {
	i.calls = append(i.calls, prefixes)
}

type fixture struct {
	repo     *storage.CourseRepo
	ordering *Ordering
	query    *Query
	inv      *invalidations
	base     time.Time
}

func newFixture(t *testing.T) *fixture {
	db := dbtest.Open(t)
	repo := storage.NewCourseRepo(db)
	inv := &invalidations{}
	return &fixture{
		repo:     repo,
		ordering: NewOrdering(repo, inv, logger.New(log.New(io.Discard, "", 0), logger.Options{})),
		query:    NewQuery(repo),
		inv:      inv,
		base:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// course stores a course created n hours after the fixture base time.
func (f *fixture) course(t *testing.T, title string, status models.CourseStatus, n int) *models.Course {
	c := &models.Course{
		Title:  title,
		Slug:   validation.Slugify(title),
		Status: status,
		Level:  models.LevelBeginner,
	}
	c.CreatedAt = f.base.Add(time.Duration(n) * time.Hour)
	require.NoError(t, f.repo.Create(context.Background(), c, nil))
	return c
}

func titles(courses []models.Course) []string {
	out := make([]string, len(courses))
	for i, c := range courses {
		out[i] = c.Title
	}
	return out
}

func rankOf(t *testing.T, repo *storage.CourseRepo, id uuid.UUID) *int {
	c, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	return c.DisplayOrder
}

func TestOrdering_InitializeThenReorder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.course(t, "A", models.StatusPublished, 1)
	b := f.course(t, "B", models.StatusPublished, 2)
	c := f.course(t, "C", models.StatusPublished, 3)

	n, err := f.ordering.InitializeRanks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, 1, *rankOf(t, f.repo, a.ID))
	assert.Equal(t, 2, *rankOf(t, f.repo, b.ID))
	assert.Equal(t, 3, *rankOf(t, f.repo, c.ID))

	require.NoError(t, f.ordering.BulkReorder(ctx, []uuid.UUID{c.ID, a.ID, b.ID}))

	page, err := f.query.ListPublic(ctx, storage.CourseFilter{}, Sort{ByRank: true}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "A", "B"}, titles(page.Items))
	assert.EqualValues(t, 3, page.Total)

	assert.Len(t, f.inv.calls, 2)
	assert.Equal(t, CatalogPaths, f.inv.calls[0])
}

func TestOrdering_InitializeSkipsRankedCourses(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ranked := f.course(t, "Ranked", models.StatusDraft, 1)
	require.NoError(t, f.repo.SetRank(ctx, nil, ranked.ID, 7))
	f.course(t, "New", models.StatusDraft, 2)

	n, err := f.ordering.InitializeRanks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 7, *rankOf(t, f.repo, ranked.ID))

	n, err = f.ordering.InitializeRanks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Len(t, f.inv.calls, 1)
}

func TestOrdering_RejectsBadInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.course(t, "A", models.StatusDraft, 1)

	err := f.ordering.BulkReorder(ctx, nil)
	assert.True(t, errors.Is(err, ErrEmptyOrder))

	err = f.ordering.BulkReorder(ctx, []uuid.UUID{a.ID, a.ID})
	assert.True(t, errors.Is(err, ErrDuplicateID))

	err = f.ordering.ApplyRanks(ctx, []RankAssignment{{ID: a.ID, DisplayOrder: 0}})
	assert.True(t, errors.Is(err, ErrBadRank))

	assert.Nil(t, rankOf(t, f.repo, a.ID))
	assert.Empty(t, f.inv.calls)
}

func TestOrdering_UnknownIDRollsBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.course(t, "A", models.StatusDraft, 1)
	b := f.course(t, "B", models.StatusDraft, 2)

	err := f.ordering.BulkReorder(ctx, []uuid.UUID{b.ID, uuid.New(), a.ID})
	assert.True(t, errors.Is(err, storage.ErrNotFound))
	assert.Nil(t, rankOf(t, f.repo, a.ID))
	assert.Nil(t, rankOf(t, f.repo, b.ID))
	assert.Empty(t, f.inv.calls)
}

func TestOrdering_ApplyRanks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.course(t, "A", models.StatusDraft, 1)
	b := f.course(t, "B", models.StatusDraft, 2)

	require.NoError(t, f.ordering.ApplyRanks(ctx, []RankAssignment{
		{ID: a.ID, DisplayOrder: 20},
		{ID: b.ID, DisplayOrder: 10},
	}))

	page, err := f.query.ListAdmin(ctx, storage.CourseFilter{}, Sort{ByRank: true}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "A"}, titles(page.Items))
}

func TestQuery_RankTieBreak(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.course(t, "Old unranked", models.StatusPublished, 1)
	f.course(t, "New unranked", models.StatusPublished, 2)
	ranked := f.course(t, "Ranked", models.StatusPublished, 0)
	require.NoError(t, f.repo.SetRank(ctx, nil, ranked.ID, 1))

	page, err := f.query.ListPublic(ctx, storage.CourseFilter{}, Sort{}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"Ranked", "New unranked", "Old unranked"}, titles(page.Items))
}

func TestQuery_ListPublicHidesDrafts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.course(t, "Published", models.StatusPublished, 1)
	f.course(t, "Draft", models.StatusDraft, 2)

	draft := models.StatusDraft
	page, err := f.query.ListPublic(ctx, storage.CourseFilter{Status: &draft}, Sort{}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"Published"}, titles(page.Items))

	page, err = f.query.ListAdmin(ctx, storage.CourseFilter{}, Sort{}, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)

	page, err = f.query.ListAdmin(ctx, storage.CourseFilter{Status: &draft}, Sort{}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"Draft"}, titles(page.Items))
}

func TestQuery_Pagination(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i, title := range []string{"One", "Two", "Three"} {
		f.course(t, title, models.StatusPublished, i)
	}

	tests := []struct {
		name      string
		page      int
		pageSize  int
		wantItems []string
		wantPage  int
		wantSize  int
		wantPages int
	}{
		{"first page", 1, 2, []string{"Three", "Two"}, 1, 2, 2},
		{"second page", 2, 2, []string{"One"}, 2, 2, 2},
		{"out of range", 5, 2, []string{}, 5, 2, 2},
		{"offset overflow", math.MaxInt, 10, []string{}, math.MaxInt, 10, 1},
		{"offset just below overflow", math.MaxInt/10 + 1, 10, []string{}, math.MaxInt/10 + 1, 10, 1},
		{"page below one", 0, 2, []string{"Three", "Two"}, 1, 2, 2},
		{"default size", 1, 0, []string{"Three", "Two", "One"}, 1, DefaultPageSize, 1},
		{"size capped", 1, 1000, []string{"Three", "Two", "One"}, 1, MaxPageSize, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := f.query.ListPublic(ctx, storage.CourseFilter{}, Sort{Field: "createdAt", Desc: true}, tt.page, tt.pageSize)
			require.NoError(t, err)
			assert.Equal(t, tt.wantItems, titles(page.Items))
			assert.EqualValues(t, 3, page.Total)
			assert.Equal(t, tt.wantPage, page.Page)
			assert.Equal(t, tt.wantSize, page.PageSize)
			assert.Equal(t, tt.wantPages, page.TotalPages)
		})
	}
}

func TestQuery_FiltersAndSort(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	golang := f.course(t, "Learning Go", models.StatusPublished, 1)
	f.course(t, "Rust for 100% beginners", models.StatusPublished, 2)
	f.course(t, "Advanced Python", models.StatusPublished, 3)

	page, err := f.query.ListPublic(ctx, storage.CourseFilter{Search: "GO"}, Sort{}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"Learning Go"}, titles(page.Items))

	page, err = f.query.ListPublic(ctx, storage.CourseFilter{Search: "100%"}, Sort{}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"Rust for 100% beginners"}, titles(page.Items))

	_, err = f.repo.Update(ctx, golang.ID, storage.CourseUpdate{Fields: map[string]interface{}{"featured": true}})
	require.NoError(t, err)
	page, err = f.query.ListPublic(ctx, storage.CourseFilter{FeaturedOnly: true}, Sort{}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"Learning Go"}, titles(page.Items))

	page, err = f.query.ListPublic(ctx, storage.CourseFilter{}, Sort{Field: "title"}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"Advanced Python", "Learning Go", "Rust for 100% beginners"}, titles(page.Items))

	_, err = f.query.ListPublic(ctx, storage.CourseFilter{}, Sort{Field: "password"}, 1, 10)
	var verr *validation.Error
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "sortBy")
}
