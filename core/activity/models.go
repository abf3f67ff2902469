package activity

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/bouncearound/daycare/core"
)

// Activity is a single daily log entry (meal, nap, diaper change, ...).
type Activity struct {
	ID              string    `json:"id"`
	ChildID         string    `json:"child_id"`
	Date            time.Time `json:"date"` // UTC midnight
	OccurredAt      time.Time `json:"occurred_at"`
	Type            string    `json:"activity_type"`
	Name            string    `json:"activity_name"`
	Description     string    `json:"description,omitempty"`
	Mood            string    `json:"mood,omitempty"`
	DurationMinutes *int      `json:"duration_minutes,omitempty"`
	Notes           string    `json:"notes,omitempty"`
	LoggedBy        string    `json:"logged_by"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type NewActivity struct {
	ChildID         string `json:"child_id" validate:"required,uuid4"`
	Date            string `json:"date" validate:"required,date"`
	Time            string `json:"time" validate:"required,clocktime"`
	Type            string `json:"activity_type" validate:"required,oneof=meal nap diaper play learning outdoor"`
	Name            string `json:"activity_name" validate:"required"`
	Description     string `json:"description"`
	Mood            string `json:"mood" validate:"omitempty,oneof=happy sad energetic tired cranky neutral"`
	DurationMinutes *int   `json:"duration_minutes" validate:"omitempty,min=1"`
	Notes           string `json:"notes"`
}

func (na *NewActivity) Validate(validate *validator.Validate) error {
	na.Name = core.CleanString(na.Name)
	return validate.Struct(na)
}

type UpdateActivity struct {
	Type            string  `json:"activity_type" validate:"omitempty,oneof=meal nap diaper play learning outdoor"`
	Name            string  `json:"activity_name"`
	Description     *string `json:"description"`
	Mood            string  `json:"mood" validate:"omitempty,oneof=happy sad energetic tired cranky neutral"`
	DurationMinutes *int    `json:"duration_minutes" validate:"omitempty,min=1"`
	Notes           *string `json:"notes"`
}

func (ua *UpdateActivity) Validate(validate *validator.Validate) error {
	ua.Name = core.CleanString(ua.Name)
	return validate.Struct(ua)
}

type QueryFilter struct {
	Date    string `query:"date"`
	ChildID string `query:"child_id"`
	Type    string `query:"activity_type"`
}

func (qf *QueryFilter) Clean() {
	qf.Date = core.CleanString(qf.Date)
	qf.ChildID = core.CleanString(qf.ChildID)
	qf.Type = core.CleanString(qf.Type, true /* lower */)
}
