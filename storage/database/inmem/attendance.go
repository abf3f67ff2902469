package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/bouncearound/daycare/core"
	"github.com/bouncearound/daycare/core/attendance"
)

type attendanceRepository struct {
	db *DB
}

var _ attendance.Repository = (*attendanceRepository)(nil)

func NewAttendanceRepository(db *DB) *attendanceRepository {
	return &attendanceRepository{db: db}
}

func (repo *attendanceRepository) query() []attendance.Attendance {
	records := make([]attendance.Attendance, 0, len(repo.db.attendance))
	for _, a := range repo.db.attendance {
		records = append(records, *a)
	}
	// most recent first
	sort.Slice(records, func(i, j int) bool {
		if !records[i].Date.Equal(records[j].Date) {
			return records[i].Date.After(records[j].Date)
		}
		return records[i].CheckInAt.After(records[j].CheckInAt)
	})
	return records
}

func (repo *attendanceRepository) CreateAttendance(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	a.ID = uuid.New().String()
	repo.db.attendance[a.ID] = &a
	return a, nil
}

func (repo *attendanceRepository) GetAttendanceByID(ctx context.Context, id string) (attendance.Attendance, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if a, ok := repo.db.attendance[id]; ok {
		return *a, nil
	}
	return attendance.Attendance{}, attendance.ErrNotFound
}

func (repo *attendanceRepository) GetAttendanceForDay(ctx context.Context, childID string, date time.Time) (attendance.Attendance, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	day := core.DateOf(date)
	for _, a := range repo.db.attendance {
		if a.ChildID == childID && a.Date.Equal(day) {
			return *a, nil
		}
	}
	return attendance.Attendance{}, attendance.ErrNotFound
}

func (repo *attendanceRepository) FilterAttendance(ctx context.Context, filter attendance.QueryFilter, page core.Pagination) ([]attendance.Attendance, int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	parseDate := func(s, field string) (time.Time, error) {
		date, err := core.ParseDate(s)
		if err != nil {
			return time.Time{}, core.NewValidationError(err, core.FieldError{Field: field, Error: "must be a valid YYYY-MM-DD date"})
		}
		return date, nil
	}

	var date, from, to time.Time
	var err error
	if filter.Date != "" {
		if date, err = parseDate(filter.Date, "date"); err != nil {
			return nil, 0, err
		}
	}
	if filter.From != "" {
		if from, err = parseDate(filter.From, "start_date"); err != nil {
			return nil, 0, err
		}
	}
	if filter.To != "" {
		if to, err = parseDate(filter.To, "end_date"); err != nil {
			return nil, 0, err
		}
	}

	var matches []attendance.Attendance
	for _, a := range repo.query() {
		if filter.Date != "" && !a.Date.Equal(date) {
			continue
		}
		if filter.ChildID != "" && a.ChildID != filter.ChildID {
			continue
		}
		if filter.CheckedOut != nil && a.CheckedOut() != *filter.CheckedOut {
			continue
		}
		if filter.From != "" && a.Date.Before(from) {
			continue
		}
		if filter.To != "" && a.Date.After(to) {
			continue
		}
		if filter.LateOnly && !a.IsLatePickup {
			continue
		}
		matches = append(matches, a)
	}

	page.Clamp()
	items, total := core.Paginate(matches, page)
	return items, total, nil
}

func (repo *attendanceRepository) UpdateAttendance(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.attendance[a.ID]; !ok {
		return attendance.Attendance{}, attendance.ErrNotFound
	}
	repo.db.attendance[a.ID] = &a
	return a, nil
}

func (repo *attendanceRepository) DeleteAttendance(ctx context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.attendance[id]; !ok {
		return attendance.ErrNotFound
	}
	delete(repo.db.attendance, id)
	return nil
}
