package compliance

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/bouncearound/daycare/core"
	"github.com/bouncearound/daycare/core/child"
)

var (
	// errors
	ErrImmunizationNotFound = errors.New("immunization record not found")
	ErrCredentialNotFound   = errors.New("staff credential not found")
	ErrFormNotFound         = errors.New("enrollment form not found")

	nowFunc = time.Now // mockable
)

type (
	Repository interface {
		CreateImmunization(ctx context.Context, rec ImmunizationRecord) (ImmunizationRecord, error)
		GetImmunizationByID(ctx context.Context, id string) (ImmunizationRecord, error)
		ListImmunizationsByChild(ctx context.Context, childID string) ([]ImmunizationRecord, error)
		// ListExpiringImmunizations returns records with an expiration date
		// on or before the deadline, already-expired ones included.
		ListExpiringImmunizations(ctx context.Context, deadline time.Time) ([]ImmunizationRecord, error)
		UpdateImmunization(ctx context.Context, rec ImmunizationRecord) (ImmunizationRecord, error)
		DeleteImmunization(ctx context.Context, id string) error

		CreateCredential(ctx context.Context, cred StaffCredential) (StaffCredential, error)
		GetCredentialByID(ctx context.Context, id string) (StaffCredential, error)
		ListCredentialsByUser(ctx context.Context, userID string) ([]StaffCredential, error)
		ListExpiringCredentials(ctx context.Context, deadline time.Time) ([]StaffCredential, error)
		UpdateCredential(ctx context.Context, cred StaffCredential) (StaffCredential, error)
		DeleteCredential(ctx context.Context, id string) error

		CreateForm(ctx context.Context, form EnrollmentForm) (EnrollmentForm, error)
		GetFormByID(ctx context.Context, id string) (EnrollmentForm, error)
		GetFormByChild(ctx context.Context, childID string) (EnrollmentForm, error)
		ListIncompleteForms(ctx context.Context) ([]EnrollmentForm, error)
		UpdateForm(ctx context.Context, form EnrollmentForm) (EnrollmentForm, error)
	}

	// ChildDirectory is the slice of the child service this package needs.
	ChildDirectory interface {
		GetChild(ctx context.Context, id string) (child.Child, error)
		CountContacts(ctx context.Context, childID string) (int, error)
	}

	Service struct {
		conf     *core.Config
		repo     Repository
		children ChildDirectory
	}
)

func NewService(conf *core.Config, repo Repository, children ChildDirectory) *Service {
	return &Service{conf: conf, repo: repo, children: children}
}

// Immunizations

func (svc *Service) CreateImmunization(ctx context.Context, ni NewImmunization) (ImmunizationRecord, error) {
	if _, err := svc.children.GetChild(ctx, ni.ChildID); err != nil {
		return ImmunizationRecord{}, err
	}

	administered, err := core.ParseDate(ni.AdministrationDate)
	if err != nil {
		return ImmunizationRecord{}, core.NewValidationError(err, core.FieldError{Field: "administration_date", Error: "must be a valid YYYY-MM-DD date"})
	}

	now := nowFunc().UTC()
	rec := ImmunizationRecord{
		ChildID:            ni.ChildID,
		VaccineName:        ni.VaccineName,
		AdministrationDate: administered,
		ProviderName:       ni.ProviderName,
		Notes:              ni.Notes,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if ni.ExpirationDate != "" {
		exp, err := core.ParseDate(ni.ExpirationDate)
		if err != nil {
			return ImmunizationRecord{}, core.NewValidationError(err, core.FieldError{Field: "expiration_date", Error: "must be a valid YYYY-MM-DD date"})
		}
		rec.ExpirationDate = &exp
	}
	return svc.repo.CreateImmunization(ctx, rec)
}

func (svc *Service) GetImmunization(ctx context.Context, id string) (ImmunizationRecord, error) {
	return svc.repo.GetImmunizationByID(ctx, id)
}

func (svc *Service) ListChildImmunizations(ctx context.Context, childID string) ([]ImmunizationRecord, error) {
	if _, err := svc.children.GetChild(ctx, childID); err != nil {
		return nil, err
	}
	return svc.repo.ListImmunizationsByChild(ctx, childID)
}

// ExpiringImmunizations reports records expiring within the given window
// (default: the configured warning window).
func (svc *Service) ExpiringImmunizations(ctx context.Context, windowDays int) ([]ImmunizationRecord, error) {
	if windowDays <= 0 {
		windowDays = svc.conf.Daycare.ExpiryWarningDays
	}
	deadline := core.DateOf(nowFunc()).AddDate(0, 0, windowDays)
	return svc.repo.ListExpiringImmunizations(ctx, deadline)
}

func (svc *Service) UpdateImmunization(ctx context.Context, id string, ui UpdateImmunization) (ImmunizationRecord, error) {
	rec, err := svc.repo.GetImmunizationByID(ctx, id)
	if err != nil {
		return ImmunizationRecord{}, err
	}

	if ui.VaccineName != "" {
		rec.VaccineName = ui.VaccineName
	}
	if ui.AdministrationDate != "" {
		d, err := core.ParseDate(ui.AdministrationDate)
		if err != nil {
			return ImmunizationRecord{}, core.NewValidationError(err, core.FieldError{Field: "administration_date", Error: "must be a valid YYYY-MM-DD date"})
		}
		rec.AdministrationDate = d
	}
	if ui.ExpirationDate != "" {
		d, err := core.ParseDate(ui.ExpirationDate)
		if err != nil {
			return ImmunizationRecord{}, core.NewValidationError(err, core.FieldError{Field: "expiration_date", Error: "must be a valid YYYY-MM-DD date"})
		}
		rec.ExpirationDate = &d
	}
	if ui.ProviderName != nil {
		rec.ProviderName = *ui.ProviderName
	}
	if ui.Notes != nil {
		rec.Notes = *ui.Notes
	}
	if ui.IsVerified != nil {
		rec.IsVerified = *ui.IsVerified
	}

	rec.UpdatedAt = nowFunc().UTC()
	return svc.repo.UpdateImmunization(ctx, rec)
}

func (svc *Service) DeleteImmunization(ctx context.Context, id string) error {
	if _, err := svc.repo.GetImmunizationByID(ctx, id); err != nil {
		return err
	}
	return svc.repo.DeleteImmunization(ctx, id)
}

// Staff credentials

func (svc *Service) CreateCredential(ctx context.Context, nc NewCredential) (StaffCredential, error) {
	issued, err := core.ParseDate(nc.IssueDate)
	if err != nil {
		return StaffCredential{}, core.NewValidationError(err, core.FieldError{Field: "issue_date", Error: "must be a valid YYYY-MM-DD date"})
	}

	now := nowFunc().UTC()
	cred := StaffCredential{
		UserID:           nc.UserID,
		CredentialType:   nc.CredentialType,
		CredentialNumber: nc.CredentialNumber,
		IssueDate:        issued,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if nc.ExpirationDate != "" {
		exp, err := core.ParseDate(nc.ExpirationDate)
		if err != nil {
			return StaffCredential{}, core.NewValidationError(err, core.FieldError{Field: "expiration_date", Error: "must be a valid YYYY-MM-DD date"})
		}
		cred.ExpirationDate = &exp
	}
	return svc.repo.CreateCredential(ctx, cred)
}

func (svc *Service) GetCredential(ctx context.Context, id string) (StaffCredential, error) {
	return svc.repo.GetCredentialByID(ctx, id)
}

func (svc *Service) ListUserCredentials(ctx context.Context, userID string) ([]StaffCredential, error) {
	return svc.repo.ListCredentialsByUser(ctx, userID)
}

func (svc *Service) ExpiringCredentials(ctx context.Context, windowDays int) ([]StaffCredential, error) {
	if windowDays <= 0 {
		windowDays = svc.conf.Daycare.ExpiryWarningDays
	}
	deadline := core.DateOf(nowFunc()).AddDate(0, 0, windowDays)
	return svc.repo.ListExpiringCredentials(ctx, deadline)
}

// ExpiredCredentials reports credentials whose expiration date has passed.
func (svc *Service) ExpiredCredentials(ctx context.Context) ([]StaffCredential, error) {
	yesterday := core.DateOf(nowFunc()).AddDate(0, 0, -1)
	return svc.repo.ListExpiringCredentials(ctx, yesterday)
}

func (svc *Service) UpdateCredential(ctx context.Context, id string, uc UpdateCredential) (StaffCredential, error) {
	cred, err := svc.repo.GetCredentialByID(ctx, id)
	if err != nil {
		return StaffCredential{}, err
	}

	if uc.CredentialType != "" {
		cred.CredentialType = uc.CredentialType
	}
	if uc.CredentialNumber != nil {
		cred.CredentialNumber = *uc.CredentialNumber
	}
	if uc.IssueDate != "" {
		d, err := core.ParseDate(uc.IssueDate)
		if err != nil {
			return StaffCredential{}, core.NewValidationError(err, core.FieldError{Field: "issue_date", Error: "must be a valid YYYY-MM-DD date"})
		}
		cred.IssueDate = d
	}
	if uc.ExpirationDate != "" {
		d, err := core.ParseDate(uc.ExpirationDate)
		if err != nil {
			return StaffCredential{}, core.NewValidationError(err, core.FieldError{Field: "expiration_date", Error: "must be a valid YYYY-MM-DD date"})
		}
		cred.ExpirationDate = &d
	}
	if uc.IsVerified != nil {
		cred.IsVerified = *uc.IsVerified
	}

	cred.UpdatedAt = nowFunc().UTC()
	return svc.repo.UpdateCredential(ctx, cred)
}

func (svc *Service) DeleteCredential(ctx context.Context, id string) error {
	if _, err := svc.repo.GetCredentialByID(ctx, id); err != nil {
		return err
	}
	return svc.repo.DeleteCredential(ctx, id)
}

// Enrollment forms

func (svc *Service) CreateForm(ctx context.Context, nf NewEnrollmentForm) (EnrollmentForm, error) {
	if _, err := svc.children.GetChild(ctx, nf.ChildID); err != nil {
		return EnrollmentForm{}, err
	}
	if _, err := svc.repo.GetFormByChild(ctx, nf.ChildID); err == nil {
		return EnrollmentForm{}, core.NewConflictError("an enrollment form already exists for this child")
	} else if errors.Cause(err) != ErrFormNotFound {
		return EnrollmentForm{}, errors.Wrap(err, "checking existing form")
	}

	enrolled, err := core.ParseDate(nf.EnrollmentDate)
	if err != nil {
		return EnrollmentForm{}, core.NewValidationError(err, core.FieldError{Field: "enrollment_date", Error: "must be a valid YYYY-MM-DD date"})
	}

	now := nowFunc().UTC()
	form := EnrollmentForm{
		ChildID:        nf.ChildID,
		EnrollmentDate: enrolled,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	return svc.repo.CreateForm(ctx, form)
}

func (svc *Service) GetForm(ctx context.Context, id string) (EnrollmentForm, error) {
	return svc.repo.GetFormByID(ctx, id)
}

func (svc *Service) GetChildForm(ctx context.Context, childID string) (EnrollmentForm, error) {
	if _, err := svc.children.GetChild(ctx, childID); err != nil {
		return EnrollmentForm{}, err
	}
	return svc.repo.GetFormByChild(ctx, childID)
}

func (svc *Service) IncompleteForms(ctx context.Context) ([]EnrollmentForm, error) {
	return svc.repo.ListIncompleteForms(ctx)
}

func (svc *Service) UpdateForm(ctx context.Context, id string, uf UpdateEnrollmentForm, updatedBy string) (EnrollmentForm, error) {
	form, err := svc.repo.GetFormByID(ctx, id)
	if err != nil {
		return EnrollmentForm{}, err
	}

	now := nowFunc().UTC()
	if uf.ParentSigned != nil && *uf.ParentSigned && form.ParentSignedAt == nil {
		form.ParentSignedAt = &now
	}
	if uf.StaffSigned != nil && *uf.StaffSigned && form.StaffSignedAt == nil {
		form.StaffSignedAt = &now
	}
	if uf.IsComplete != nil {
		form.IsComplete = *uf.IsComplete
		if form.IsComplete {
			form.CompletedBy = updatedBy
		}
	}

	form.UpdatedAt = now
	return svc.repo.UpdateForm(ctx, form)
}

// ChildStatus assembles the read-time compliance report for one child:
// the DCFS two-contact minimum, enrollment form completeness, and
// immunizations expired or expiring within the warning window.
func (svc *Service) ChildStatus(ctx context.Context, childID string) (ChildStatus, error) {
	if _, err := svc.children.GetChild(ctx, childID); err != nil {
		return ChildStatus{}, err
	}

	contacts, err := svc.children.CountContacts(ctx, childID)
	if err != nil {
		return ChildStatus{}, errors.Wrap(err, "counting emergency contacts")
	}

	status := ChildStatus{
		ChildID:               childID,
		EmergencyContactCount: contacts,
		HasMinimumContacts:    contacts >= svc.conf.Daycare.MinEmergencyContacts,
		ExpiredImmunizations:  []ImmunizationRecord{},
		ExpiringImmunizations: []ImmunizationRecord{},
	}

	if form, err := svc.repo.GetFormByChild(ctx, childID); err == nil {
		status.EnrollmentFormComplete = form.IsComplete
	} else if errors.Cause(err) != ErrFormNotFound {
		return ChildStatus{}, errors.Wrap(err, "fetching enrollment form")
	}

	records, err := svc.repo.ListImmunizationsByChild(ctx, childID)
	if err != nil {
		return ChildStatus{}, errors.Wrap(err, "listing immunizations")
	}
	today := core.DateOf(nowFunc())
	deadline := today.AddDate(0, 0, svc.conf.Daycare.ExpiryWarningDays)
	for _, rec := range records {
		if rec.ExpirationDate == nil {
			continue
		}
		switch {
		case rec.ExpirationDate.Before(today):
			status.ExpiredImmunizations = append(status.ExpiredImmunizations, rec)
		case !rec.ExpirationDate.After(deadline):
			status.ExpiringImmunizations = append(status.ExpiringImmunizations, rec)
		}
	}

	status.IsCompliant = status.HasMinimumContacts &&
		status.EnrollmentFormComplete &&
		len(status.ExpiredImmunizations) == 0
	return status, nil
}
