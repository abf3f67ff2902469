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
	"github.com/bouncearound/daycare/core/attendance"
)

type attendanceRepository struct {
	db *sqlx.DB
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *sqlx.DB) *attendanceRepository {
	return &attendanceRepository{db: db}
}

type attendanceRow struct {
	ID             string       `db:"id"`
	ChildID        string       `db:"child_id"`
	Date           time.Time    `db:"date"`
	CheckInAt      time.Time    `db:"check_in_at"`
	CheckInByName  string       `db:"check_in_by_name"`
	CheckOutAt     sql.NullTime `db:"check_out_at"`
	CheckOutByName string       `db:"check_out_by_name"`
	IsLatePickup   bool         `db:"is_late_pickup"`
	LateMinutes    int          `db:"late_minutes"`
	LateFee        float64      `db:"late_fee"`
	Notes          string       `db:"notes"`
	RecordedBy     string       `db:"recorded_by"`
	CreatedAt      time.Time    `db:"created_at"`
	UpdatedAt      time.Time    `db:"updated_at"`
}

func (repo attendanceRepository) toRow(a attendance.Attendance) attendanceRow {
	return attendanceRow{
		ID:             a.ID,
		ChildID:        a.ChildID,
		Date:           a.Date,
		CheckInAt:      a.CheckInAt.UTC(),
		CheckInByName:  a.CheckInByName,
		CheckOutAt:     nullTime(a.CheckOutAt),
		CheckOutByName: a.CheckOutByName,
		IsLatePickup:   a.IsLatePickup,
		LateMinutes:    a.LateMinutes,
		LateFee:        a.LateFee,
		Notes:          a.Notes,
		RecordedBy:     a.RecordedBy,
		CreatedAt:      a.CreatedAt.UTC(),
		UpdatedAt:      a.UpdatedAt.UTC(),
	}
}

func (repo attendanceRepository) fromRow(row attendanceRow) attendance.Attendance {
	return attendance.Attendance{
		ID:             row.ID,
		ChildID:        row.ChildID,
		Date:           core.DateOf(row.Date),
		CheckInAt:      row.CheckInAt.UTC(),
		CheckInByName:  row.CheckInByName,
		CheckOutAt:     timePtr(row.CheckOutAt),
		CheckOutByName: row.CheckOutByName,
		IsLatePickup:   row.IsLatePickup,
		LateMinutes:    row.LateMinutes,
		LateFee:        row.LateFee,
		Notes:          row.Notes,
		RecordedBy:     row.RecordedBy,
		CreatedAt:      row.CreatedAt.UTC(),
		UpdatedAt:      row.UpdatedAt.UTC(),
	}
}

func (repo attendanceRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return attendance.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo attendanceRepository) CreateAttendance(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	a.ID = uuid.New().String()
	row := repo.toRow(a)
	query := `
		INSERT INTO attendance (id, child_id, date, check_in_at, check_in_by_name, check_out_at, check_out_by_name,
		                        is_late_pickup, late_minutes, late_fee, notes, recorded_by, created_at, updated_at)
		VALUES (:id, :child_id, :date, :check_in_at, :check_in_by_name, :check_out_at, :check_out_by_name,
		        :is_late_pickup, :late_minutes, :late_fee, :notes, :recorded_by, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, query, row); err != nil {
		return attendance.Attendance{}, errors.Wrap(err, "inserting attendance")
	}
	return repo.fromRow(row), nil
}

func (repo attendanceRepository) GetAttendanceByID(ctx context.Context, id string) (attendance.Attendance, error) {
	var row attendanceRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM attendance WHERE id = $1`, id); err != nil {
		return attendance.Attendance{}, repo.trapNoRowsErr(err, "getting attendance")
	}
	return repo.fromRow(row), nil
}

func (repo attendanceRepository) GetAttendanceForDay(ctx context.Context, childID string, date time.Time) (attendance.Attendance, error) {
	var row attendanceRow
	query := `SELECT * FROM attendance WHERE child_id = $1 AND date = $2`
	if err := repo.db.GetContext(ctx, &row, query, childID, core.DateOf(date)); err != nil {
		return attendance.Attendance{}, repo.trapNoRowsErr(err, "getting attendance for day")
	}
	return repo.fromRow(row), nil
}

func (repo attendanceRepository) FilterAttendance(ctx context.Context, filter attendance.QueryFilter, page core.Pagination) ([]attendance.Attendance, int, error) {
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
	if filter.CheckedOut != nil {
		if *filter.CheckedOut {
			conds = append(conds, "check_out_at IS NOT NULL")
		} else {
			conds = append(conds, "check_out_at IS NULL")
		}
	}
	if filter.From != "" {
		from, err := core.ParseDate(filter.From)
		if err != nil {
			return nil, 0, core.NewValidationError(err, core.FieldError{Field: "start_date", Error: "must be a valid YYYY-MM-DD date"})
		}
		args = append(args, from)
		conds = append(conds, fmt.Sprintf("date >= $%d", len(args)))
	}
	if filter.To != "" {
		to, err := core.ParseDate(filter.To)
		if err != nil {
			return nil, 0, core.NewValidationError(err, core.FieldError{Field: "end_date", Error: "must be a valid YYYY-MM-DD date"})
		}
		args = append(args, to)
		conds = append(conds, fmt.Sprintf("date <= $%d", len(args)))
	}
	if filter.LateOnly {
		conds = append(conds, "is_late_pickup = TRUE")
	}
	where := whereClause(conds)

	var total int
	if err := repo.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM attendance`+where, args...); err != nil {
		return nil, 0, errors.Wrap(err, "counting attendance")
	}

	page.Clamp()
	query := fmt.Sprintf(`SELECT * FROM attendance%s ORDER BY date DESC, check_in_at DESC LIMIT %d OFFSET %d`, where, page.PageSize, page.Offset())
	var rows []attendanceRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, errors.Wrap(err, "filtering attendance")
	}

	records := make([]attendance.Attendance, 0, len(rows))
	for _, row := range rows {
		records = append(records, repo.fromRow(row))
	}
	return records, total, nil
}

func (repo attendanceRepository) UpdateAttendance(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	row := repo.toRow(a)
	query := `
		UPDATE attendance
		SET check_in_at = :check_in_at, check_in_by_name = :check_in_by_name, check_out_at = :check_out_at,
		    check_out_by_name = :check_out_by_name, is_late_pickup = :is_late_pickup, late_minutes = :late_minutes,
		    late_fee = :late_fee, notes = :notes, updated_at = :updated_at
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, query, row)
	if err != nil {
		return attendance.Attendance{}, errors.Wrap(err, "updating attendance")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return attendance.Attendance{}, attendance.ErrNotFound
	}
	return repo.fromRow(row), nil
}

func (repo attendanceRepository) DeleteAttendance(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM attendance WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting attendance")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return attendance.ErrNotFound
	}
	return nil
}
