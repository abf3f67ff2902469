package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/bouncearound/daycare/core"
	"github.com/bouncearound/daycare/core/activity"
)

type activityRepository struct {
	db *sqlx.DB
}

var _ activity.Repository = (*activityRepository)(nil) // interface compliance check

func NewActivityRepository(db *sqlx.DB) *activityRepository {
	return &activityRepository{db: db}
}

type activityRow struct {
	ID              string        `db:"id"`
	ChildID         string        `db:"child_id"`
	Date            time.Time     `db:"date"`
	OccurredAt      time.Time     `db:"occurred_at"`
	Type            string        `db:"activity_type"`
	Name            string        `db:"activity_name"`
	Description     string        `db:"description"`
	Mood            string        `db:"mood"`
	DurationMinutes sql.NullInt64 `db:"duration_minutes"`
	Notes           string        `db:"notes"`
	LoggedBy        string        `db:"logged_by"`
	CreatedAt       time.Time     `db:"created_at"`
	UpdatedAt       time.Time     `db:"updated_at"`
}

func (repo activityRepository) toRow(a activity.Activity) activityRow {
	row := activityRow{
		ID:          a.ID,
		ChildID:     a.ChildID,
		Date:        a.Date,
		OccurredAt:  a.OccurredAt.UTC(),
		Type:        a.Type,
		Name:        a.Name,
		Description: a.Description,
		Mood:        a.Mood,
		Notes:       a.Notes,
		LoggedBy:    a.LoggedBy,
		CreatedAt:   a.CreatedAt.UTC(),
		UpdatedAt:   a.UpdatedAt.UTC(),
	}
	if a.DurationMinutes != nil {
		row.DurationMinutes = sql.NullInt64{Int64: int64(*a.DurationMinutes), Valid: true}
	}
	return row
}

func (repo activityRepository) fromRow(row activityRow) activity.Activity {
	a := activity.Activity{
		ID:          row.ID,
		ChildID:     row.ChildID,
		Date:        core.DateOf(row.Date),
		OccurredAt:  row.OccurredAt.UTC(),
		Type:        row.Type,
		Name:        row.Name,
		Description: row.Description,
		Mood:        row.Mood,
		Notes:       row.Notes,
		LoggedBy:    row.LoggedBy,
		CreatedAt:   row.CreatedAt.UTC(),
		UpdatedAt:   row.UpdatedAt.UTC(),
	}
	if row.DurationMinutes.Valid {
		mins := int(row.DurationMinutes.Int64)
		a.DurationMinutes = &mins
	}
	return a
}

func (repo activityRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return activity.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo activityRepository) CreateActivity(ctx context.Context, a activity.Activity) (activity.Activity, error) {
	a.ID = uuid.New().String()
	row := repo.toRow(a)
	query := `
		INSERT INTO activity (id, child_id, date, occurred_at, activity_type, activity_name, description, mood,
		                      duration_minutes, notes, logged_by, created_at, updated_at)
		VALUES (:id, :child_id, :date, :occurred_at, :activity_type, :activity_name, :description, :mood,
		        :duration_minutes, :notes, :logged_by, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, query, row); err != nil {
		return activity.Activity{}, errors.Wrap(err, "inserting activity")
	}
	return repo.fromRow(row), nil
}

func (repo activityRepository) GetActivityByID(ctx context.Context, id string) (activity.Activity, error) {
	var row activityRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM activity WHERE id = $1`, id); err != nil {
		return activity.Activity{}, repo.trapNoRowsErr(err, "getting activity")
	}
	return repo.fromRow(row), nil
}

func (repo activityRepository) FilterActivities(ctx context.Context, filter activity.QueryFilter, page core.Pagination) ([]activity.Activity, int, error) {
	var conds []string
	var args []interface{}

	if filter.Date != "" {
		date, err := core.ParseDate(filter.Date)
		if err != nil {
			return nil, 0, core.NewValidationError(err, core.FieldError{Field: "date", Error: "must be a valid YYYY-MM-DD date"})
		}
		args = append(args, date)
		conds = append(conds, fmt.Sprintf("date = $%d", len(args)))
	}
	if filter.ChildID != "" {
		args = append(args, filter.ChildID)
		conds = append(conds, fmt.Sprintf("child_id = $%d", len(args)))
	}
	if filter.Type != "" {
		args = append(args, filter.Type)
		conds = append(conds, fmt.Sprintf("activity_type = $%d", len(args)))
	}
	where := whereClause(conds)

	var total int
	if err := repo.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM activity`+where, args...); err != nil {
		return nil, 0, errors.Wrap(err, "counting activities")
	}

	page.Clamp()
	query := fmt.Sprintf(`SELECT * FROM activity%s ORDER BY occurred_at DESC LIMIT %d OFFSET %d`, where, page.PageSize, page.Offset())
	var rows []activityRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, errors.Wrap(err, "filtering activities")
	}

	activities := make([]activity.Activity, 0, len(rows))
	for _, row := range rows {
		activities = append(activities, repo.fromRow(row))
	}
	return activities, total, nil
}

func (repo activityRepository) UpdateActivity(ctx context.Context, a activity.Activity) (activity.Activity, error) {
	row := repo.toRow(a)
	query := `
		UPDATE activity
		SET activity_type = :activity_type, activity_name = :activity_name, description = :description,
		    mood = :mood, duration_minutes = :duration_minutes, notes = :notes, updated_at = :updated_at
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, query, row)
	if err != nil {
		return activity.Activity{}, errors.Wrap(err, "updating activity")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return activity.Activity{}, activity.ErrNotFound
	}
	return repo.fromRow(row), nil
}

func (repo activityRepository) DeleteActivity(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM activity WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting activity")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return activity.ErrNotFound
	}
	return nil
}
