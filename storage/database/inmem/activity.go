package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/bouncearound/daycare/core"
	"github.com/bouncearound/daycare/core/activity"
)

type activityRepository struct {
	db *DB
}

var _ activity.Repository = (*activityRepository)(nil)

func NewActivityRepository(db *DB) *activityRepository {
	return &activityRepository{db: db}
}

func (repo *activityRepository) query() []activity.Activity {
	activities := make([]activity.Activity, 0, len(repo.db.activities))
	for _, a := range repo.db.activities {
		activities = append(activities, *a)
	}
	sort.Slice(activities, func(i, j int) bool { return activities[i].OccurredAt.After(activities[j].OccurredAt) })
	return activities
}

func (repo *activityRepository) CreateActivity(ctx context.Context, a activity.Activity) (activity.Activity, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	a.ID = uuid.New().String()
	repo.db.activities[a.ID] = &a
	return a, nil
}

func (repo *activityRepository) GetActivityByID(ctx context.Context, id string) (activity.Activity, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if a, ok := repo.db.activities[id]; ok {
		return *a, nil
	}
	return activity.Activity{}, activity.ErrNotFound
}

func (repo *activityRepository) FilterActivities(ctx context.Context, filter activity.QueryFilter, page core.Pagination) ([]activity.Activity, int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var date time.Time
	if filter.Date != "" {
		var err error
		if date, err = core.ParseDate(filter.Date); err != nil {
			return nil, 0, core.NewValidationError(err, core.FieldError{Field: "date", Error: "must be a valid YYYY-MM-DD date"})
		}
	}

	var matches []activity.Activity
	for _, a := range repo.query() {
		if filter.Date != "" && !a.Date.Equal(date) {
			continue
		}
		if filter.ChildID != "" && a.ChildID != filter.ChildID {
			continue
		}
		if filter.Type != "" && a.Type != filter.Type {
			continue
		}
		matches = append(matches, a)
	}

	page.Clamp()
	items, total := core.Paginate(matches, page)
	return items, total, nil
}

func (repo *activityRepository) UpdateActivity(ctx context.Context, a activity.Activity) (activity.Activity, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.activities[a.ID]; !ok {
		return activity.Activity{}, activity.ErrNotFound
	}
	repo.db.activities[a.ID] = &a
	return a, nil
}

func (repo *activityRepository) DeleteActivity(ctx context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.activities[id]; !ok {
		return activity.ErrNotFound
	}
	delete(repo.db.activities, id)
	return nil
}
