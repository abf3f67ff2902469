package activity

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/bouncearound/daycare/core"
	"github.com/bouncearound/daycare/core/child"
)

var (
	// errors
	ErrNotFound = errors.New("activity not found")

	nowFunc = time.Now // mockable
)

type (
	Repository interface {
		CreateActivity(ctx context.Context, a Activity) (Activity, error)
		GetActivityByID(ctx context.Context, id string) (Activity, error)
		FilterActivities(ctx context.Context, filter QueryFilter, page core.Pagination) ([]Activity, int, error)
		UpdateActivity(ctx context.Context, a Activity) (Activity, error)
		DeleteActivity(ctx context.Context, id string) error
	}

	ChildDirectory interface {
		GetChild(ctx context.Context, id string) (child.Child, error)
	}

	Service struct {
		repo     Repository
		children ChildDirectory
	}
)

func NewService(repo Repository, children ChildDirectory) *Service {
	return &Service{repo: repo, children: children}
}

func (svc *Service) Create(ctx context.Context, na NewActivity, loggedBy string) (Activity, error) {
	if _, err := svc.children.GetChild(ctx, na.ChildID); err != nil {
		return Activity{}, err
	}

	date, err := core.ParseDate(na.Date)
	if err != nil {
		return Activity{}, core.NewValidationError(err, core.FieldError{Field: "date", Error: "must be a valid YYYY-MM-DD date"})
	}
	clock, err := core.ParseClockTime(na.Time)
	if err != nil {
		return Activity{}, core.NewValidationError(err, core.FieldError{Field: "time", Error: "must be a valid HH:MM time"})
	}

	now := nowFunc().UTC()
	a := Activity{
		ChildID:         na.ChildID,
		Date:            date,
		OccurredAt:      core.CombineDateTime(date, clock),
		Type:            na.Type,
		Name:            na.Name,
		Description:     na.Description,
		Mood:            na.Mood,
		DurationMinutes: na.DurationMinutes,
		Notes:           na.Notes,
		LoggedBy:        loggedBy,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	return svc.repo.CreateActivity(ctx, a)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Activity, error) {
	return svc.repo.GetActivityByID(ctx, id)
}

func (svc *Service) Filter(ctx context.Context, filter QueryFilter, page core.Pagination) ([]Activity, int, error) {
	return svc.repo.FilterActivities(ctx, filter, page)
}

func (svc *Service) Update(ctx context.Context, id string, ua UpdateActivity) (Activity, error) {
	a, err := svc.repo.GetActivityByID(ctx, id)
	if err != nil {
		return Activity{}, err
	}

	if ua.Type != "" {
		a.Type = ua.Type
	}
	if ua.Name != "" {
		a.Name = ua.Name
	}
	if ua.Description != nil {
		a.Description = *ua.Description
	}
	if ua.Mood != "" {
		a.Mood = ua.Mood
	}
	if ua.DurationMinutes != nil {
		a.DurationMinutes = ua.DurationMinutes
	}
	if ua.Notes != nil {
		a.Notes = *ua.Notes
	}

	a.UpdatedAt = nowFunc().UTC()
	return svc.repo.UpdateActivity(ctx, a)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	if _, err := svc.repo.GetActivityByID(ctx, id); err != nil {
		return err
	}
	return svc.repo.DeleteActivity(ctx, id)
}
