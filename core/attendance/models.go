package attendance

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/bouncearound/daycare/core"
)

type Attendance struct {
	ID             string     `json:"id"`
	ChildID        string     `json:"child_id"`
	Date           time.Time  `json:"date"` // UTC midnight
	CheckInAt      time.Time  `json:"check_in_at"`
	CheckInByName  string     `json:"check_in_by_name"`
	CheckOutAt     *time.Time `json:"check_out_at,omitempty"`
	CheckOutByName string     `json:"check_out_by_name,omitempty"`
	IsLatePickup   bool       `json:"is_late_pickup"`
	LateMinutes    int        `json:"late_minutes"`
	LateFee        float64    `json:"late_fee"`
	Notes          string     `json:"notes,omitempty"`
	RecordedBy     string     `json:"recorded_by"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (a Attendance) CheckedOut() bool {
	return a.CheckOutAt != nil
}

type CheckIn struct {
	ChildID       string `json:"child_id" validate:"required,uuid4"`
	CheckInTime   string `json:"check_in_time" validate:"required,clocktime"`
	CheckInByName string `json:"check_in_by_name" validate:"required"`
	Notes         string `json:"notes"`
}

func (ci *CheckIn) Validate(validate *validator.Validate) error {
	ci.CheckInByName = core.CleanString(ci.CheckInByName)
	return validate.Struct(ci)
}

type CheckOut struct {
	CheckOutTime   string `json:"check_out_time" validate:"required,clocktime"`
	CheckOutByName string `json:"check_out_by_name" validate:"required"`
	Notes          string `json:"notes"`
}

func (co *CheckOut) Validate(validate *validator.Validate) error {
	co.CheckOutByName = core.CleanString(co.CheckOutByName)
	return validate.Struct(co)
}

type QueryFilter struct {
	Date       string `query:"date"`
	ChildID    string `query:"child_id"`
	CheckedOut *bool  `query:"checked_out"`
	From       string `query:"start_date"`
	To         string `query:"end_date"`
	LateOnly   bool   `query:"-"`
}

func (qf *QueryFilter) Clean() {
	qf.Date = core.CleanString(qf.Date)
	qf.ChildID = core.CleanString(qf.ChildID)
	qf.From = core.CleanString(qf.From)
	qf.To = core.CleanString(qf.To)
}
