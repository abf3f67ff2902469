package attendance

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/bouncearound/daycare/core"
	"github.com/bouncearound/daycare/core/child"
)

var (
	// errors
	ErrNotFound = errors.New("attendance record not found")

	nowFunc = time.Now // mockable
)

type (
	Repository interface {
		CreateAttendance(ctx context.Context, a Attendance) (Attendance, error)
		GetAttendanceByID(ctx context.Context, id string) (Attendance, error)
		// GetAttendanceForDay returns the record for (childID, date)
		// regardless of checkout state, or ErrNotFound.
		GetAttendanceForDay(ctx context.Context, childID string, date time.Time) (Attendance, error)
		// FilterAttendance applies AND on the available filter fields, most
		// recent first.
		FilterAttendance(ctx context.Context, filter QueryFilter, page core.Pagination) ([]Attendance, int, error)
		UpdateAttendance(ctx context.Context, a Attendance) (Attendance, error)
		DeleteAttendance(ctx context.Context, id string) error
	}

	// ChildDirectory is the slice of the child service this package needs.
	ChildDirectory interface {
		GetChild(ctx context.Context, id string) (child.Child, error)
	}

	Service struct {
		repo     Repository
		children ChildDirectory
		policy   LateFeePolicy
	}
)

func NewService(conf *core.Config, repo Repository, children ChildDirectory) *Service {
	return &Service{
		repo:     repo,
		children: children,
		policy: LateFeePolicy{
			Cutoff:       conf.Daycare.PickupCutoff,
			Grace:        conf.Daycare.LatePickupGrace,
			FeePerMinute: conf.Daycare.LateFeePerMinute,
		},
	}
}

// CheckIn opens today's attendance record for a child. Inactive children
// cannot be checked in; a child checks in at most once per day.
func (svc *Service) CheckIn(ctx context.Context, ci CheckIn, recordedBy string) (Attendance, error) {
	c, err := svc.children.GetChild(ctx, ci.ChildID)
	if err != nil {
		return Attendance{}, err
	}
	if !c.IsActive {
		return Attendance{}, core.NewValidationError(
			errors.New("cannot check in inactive child"),
			core.FieldError{Field: "child_id", Error: "cannot check in inactive child"},
		)
	}

	now := nowFunc().UTC()
	today := core.DateOf(now)

	if existing, err := svc.repo.GetAttendanceForDay(ctx, ci.ChildID, today); err == nil {
		return Attendance{}, core.NewConflictError(fmt.Sprintf(
			"child already checked in today at %s", existing.CheckInAt.Format("15:04")))
	} else if errors.Cause(err) != ErrNotFound {
		return Attendance{}, errors.Wrap(err, "checking existing attendance")
	}

	checkInClock, err := core.ParseClockTime(ci.CheckInTime)
	if err != nil {
		return Attendance{}, core.NewValidationError(err, core.FieldError{Field: "check_in_time", Error: "must be a valid HH:MM time"})
	}

	a := Attendance{
		ChildID:       ci.ChildID,
		Date:          today,
		CheckInAt:     core.CombineDateTime(today, checkInClock),
		CheckInByName: ci.CheckInByName,
		Notes:         ci.Notes,
		RecordedBy:    recordedBy,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	return svc.repo.CreateAttendance(ctx, a)
}

// CheckOut closes an open attendance record and assesses the late fee.
func (svc *Service) CheckOut(ctx context.Context, id string, co CheckOut) (Attendance, error) {
	a, err := svc.repo.GetAttendanceByID(ctx, id)
	if err != nil {
		return Attendance{}, err
	}
	if a.CheckedOut() {
		return Attendance{}, core.NewConflictError(fmt.Sprintf(
			"child already checked out at %s", a.CheckOutAt.Format("15:04")))
	}

	checkOutClock, err := core.ParseClockTime(co.CheckOutTime)
	if err != nil {
		return Attendance{}, core.NewValidationError(err, core.FieldError{Field: "check_out_time", Error: "must be a valid HH:MM time"})
	}

	checkOutAt := core.CombineDateTime(a.Date, checkOutClock)
	a.CheckOutAt = &checkOutAt
	a.CheckOutByName = co.CheckOutByName

	fee := svc.policy.Assess(checkOutClock)
	a.IsLatePickup = fee.IsLate
	a.LateMinutes = fee.Minutes
	a.LateFee = fee.Fee

	if co.Notes != "" {
		if a.Notes != "" {
			a.Notes += "\n[Checkout] " + co.Notes
		} else {
			a.Notes = co.Notes
		}
	}

	a.UpdatedAt = nowFunc().UTC()
	return svc.repo.UpdateAttendance(ctx, a)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Attendance, error) {
	return svc.repo.GetAttendanceByID(ctx, id)
}

func (svc *Service) Filter(ctx context.Context, filter QueryFilter, page core.Pagination) ([]Attendance, int, error) {
	return svc.repo.FilterAttendance(ctx, filter, page)
}

// Today lists today's records; with openOnly, only children not yet
// checked out.
func (svc *Service) Today(ctx context.Context, openOnly bool, page core.Pagination) ([]Attendance, int, error) {
	filter := QueryFilter{Date: core.DateOf(nowFunc()).Format(core.DateLayout)}
	if openOnly {
		f := false
		filter.CheckedOut = &f
	}
	return svc.repo.FilterAttendance(ctx, filter, page)
}

func (svc *Service) ChildHistory(ctx context.Context, childID string, filter QueryFilter, page core.Pagination) ([]Attendance, int, error) {
	if _, err := svc.children.GetChild(ctx, childID); err != nil {
		return nil, 0, err
	}
	filter.ChildID = childID
	return svc.repo.FilterAttendance(ctx, filter, page)
}

// LatePickups reports late pickup incidents for billing and compliance.
func (svc *Service) LatePickups(ctx context.Context, filter QueryFilter, page core.Pagination) ([]Attendance, int, error) {
	filter.LateOnly = true
	return svc.repo.FilterAttendance(ctx, filter, page)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	if _, err := svc.repo.GetAttendanceByID(ctx, id); err != nil {
		return err
	}
	return svc.repo.DeleteAttendance(ctx, id)
}
