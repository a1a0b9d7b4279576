package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/s/courseCatalog/internal/cache"
	"github.com/s/courseCatalog/internal/logger"
	"github.com/s/courseCatalog/internal/storage"
)

var (
	ErrEmptyOrder  = errors.New("at least one course id is required")
	ErrDuplicateID = errors.New("course ids must be unique")
	ErrBadRank     = errors.New("display order must be a positive integer")
)

// CatalogPaths are the public routes whose cached pages depend on course data.
var CatalogPaths = []string{"/api/courses", "/api/categories", "/api/instructors"}

// RankAssignment pins a course to an explicit display order.
type RankAssignment struct {
	ID           uuid.UUID
	DisplayOrder int
}

type Ordering struct {
	courses *storage.CourseRepo
	cache   cache.Invalidator
	log     logger.Logger
}

// NewOrdering wires the rank operations. inv may be nil.
func NewOrdering(courses *storage.CourseRepo, inv cache.Invalidator, log logger.Logger) *Ordering {
	return &Ordering{courses: courses, cache: inv, log: log}
}

// InitializeRanks gives every unranked course a rank 1..N, oldest course first.
// Courses that already have a rank are left alone. It returns how many courses were ranked.
func (o *Ordering) InitializeRanks(ctx context.Context) (int, error) {
	var ranked int
	err := o.courses.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		unranked, err := o.courses.ListUnranked(ctx, tx)
		if err != nil {
			return errors.Wrap(err, "list unranked courses")
		}
		for i, c := range unranked {
			if err := o.courses.SetRank(ctx, tx, c.ID, i+1); err != nil {
				return errors.Wrapf(err, "rank course %s", c.ID)
			}
		}
		ranked = len(unranked)
		return nil
	})
	if err != nil {
		return 0, err
	}
	if ranked > 0 {
		o.invalidate()
		o.log.Info("initialized course ranks", map[string]interface{}{"count": ranked})
	}
	return ranked, nil
}

// BulkReorder sets displayOrder = position+1 for each id. Either every rank
// is written or none is.
func (o *Ordering) BulkReorder(ctx context.Context, ids []uuid.UUID) error {
	assignments := make([]RankAssignment, len(ids))
	for i, id := range ids {
		assignments[i] = RankAssignment{ID: id, DisplayOrder: i + 1}
	}
	return o.ApplyRanks(ctx, assignments)
}

// ApplyRanks writes explicit ranks in one transaction. An unknown id aborts
// the whole batch with storage.ErrNotFound.
func (o *Ordering) ApplyRanks(ctx context.Context, assignments []RankAssignment) error {
	if len(assignments) == 0 {
		return ErrEmptyOrder
	}
	ids := make([]uuid.UUID, 0, len(assignments))
	seen := make(map[uuid.UUID]bool, len(assignments))
	for _, a := range assignments {
		if seen[a.ID] {
			return errors.Wrap(ErrDuplicateID, a.ID.String())
		}
		if a.DisplayOrder < 1 {
			return ErrBadRank
		}
		seen[a.ID] = true
		ids = append(ids, a.ID)
	}

	err := o.courses.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, err := o.courses.CountExisting(ctx, tx, ids)
		if err != nil {
			return errors.Wrap(err, "count courses")
		}
		if found != len(ids) {
			return errors.Wrap(storage.ErrNotFound, "course")
		}
		for _, a := range assignments {
			if err := o.courses.SetRank(ctx, tx, a.ID, a.DisplayOrder); err != nil {
				return errors.Wrapf(err, "rank course %s", a.ID)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	o.invalidate()
	return nil
}

func (o *Ordering) invalidate() {
	if o.cache != nil {
		o.cache.Invalidate(CatalogPaths...)
	}
}
