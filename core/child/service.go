package child

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/bouncearound/daycare/core"
)

var (
	// errors
	ErrNotFound        = errors.New("child not found")
	ErrContactNotFound = errors.New("emergency contact not found")
	ErrPickupNotFound  = errors.New("authorized pickup not found")

	nowFunc = time.Now // mockable
)

type (
	Repository interface {
		CreateChild(ctx context.Context, c Child) (Child, error)
		GetChildByID(ctx context.Context, id string) (Child, error)
		FilterChildren(ctx context.Context, filter QueryFilter, page core.Pagination) ([]Child, int, error)
		UpdateChild(ctx context.Context, c Child) (Child, error)
		DeleteChild(ctx context.Context, id string) error

		CreateContact(ctx context.Context, ec EmergencyContact) (EmergencyContact, error)
		GetContactByID(ctx context.Context, id string) (EmergencyContact, error)
		// ListContacts returns a child's contacts ordered by priority.
		ListContacts(ctx context.Context, childID string) ([]EmergencyContact, error)
		UpdateContact(ctx context.Context, ec EmergencyContact) (EmergencyContact, error)
		DeleteContact(ctx context.Context, id string) error

		CreatePickup(ctx context.Context, ap AuthorizedPickup) (AuthorizedPickup, error)
		GetPickupByID(ctx context.Context, id string) (AuthorizedPickup, error)
		ListPickups(ctx context.Context, childID string) ([]AuthorizedPickup, error)
		UpdatePickup(ctx context.Context, ap AuthorizedPickup) (AuthorizedPickup, error)
		DeletePickup(ctx context.Context, id string) error
	}

	Service struct {
		conf *core.Config
		repo Repository
	}
)

func NewService(conf *core.Config, repo Repository) *Service {
	return &Service{conf: conf, repo: repo}
}

func (svc *Service) Create(ctx context.Context, nc NewChild, createdBy string) (Child, error) {
	dob, err := core.ParseDate(nc.DateOfBirth)
	if err != nil {
		return Child{}, core.NewValidationError(err, core.FieldError{Field: "date_of_birth", Error: "must be a valid YYYY-MM-DD date"})
	}
	enrolled, err := core.ParseDate(nc.EnrollmentDate)
	if err != nil {
		return Child{}, core.NewValidationError(err, core.FieldError{Field: "enrollment_date", Error: "must be a valid YYYY-MM-DD date"})
	}

	now := nowFunc().UTC()
	c := Child{
		FirstName:           nc.FirstName,
		LastName:            nc.LastName,
		DateOfBirth:         dob,
		Gender:              nc.Gender,
		Allergies:           nc.Allergies,
		DietaryRestrictions: nc.DietaryRestrictions,
		MedicalConditions:   nc.MedicalConditions,
		SpecialNeeds:        nc.SpecialNeeds,
		EnrollmentDate:      enrolled,
		IsActive:            true,
		CreatedBy:           createdBy,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	return svc.repo.CreateChild(ctx, c)
}

func (svc *Service) GetChild(ctx context.Context, id string) (Child, error) {
	return svc.repo.GetChildByID(ctx, id)
}

func (svc *Service) Filter(ctx context.Context, filter QueryFilter, page core.Pagination) ([]Child, int, error) {
	return svc.repo.FilterChildren(ctx, filter, page)
}

func (svc *Service) Update(ctx context.Context, id string, uc UpdateChild) (Child, error) {
	c, err := svc.repo.GetChildByID(ctx, id)
	if err != nil {
		return Child{}, err
	}

	if uc.FirstName != "" {
		c.FirstName = uc.FirstName
	}
	if uc.LastName != "" {
		c.LastName = uc.LastName
	}
	if uc.DateOfBirth != "" {
		dob, err := core.ParseDate(uc.DateOfBirth)
		if err != nil {
			return Child{}, core.NewValidationError(err, core.FieldError{Field: "date_of_birth", Error: "must be a valid YYYY-MM-DD date"})
		}
		c.DateOfBirth = dob
	}
	if uc.Gender != "" {
		c.Gender = uc.Gender
	}
	if uc.Allergies != nil {
		c.Allergies = *uc.Allergies
	}
	if uc.DietaryRestrictions != nil {
		c.DietaryRestrictions = *uc.DietaryRestrictions
	}
	if uc.MedicalConditions != nil {
		c.MedicalConditions = *uc.MedicalConditions
	}
	if uc.SpecialNeeds != nil {
		c.SpecialNeeds = *uc.SpecialNeeds
	}
	if uc.WithdrawalDate != "" {
		wd, err := core.ParseDate(uc.WithdrawalDate)
		if err != nil {
			return Child{}, core.NewValidationError(err, core.FieldError{Field: "withdrawal_date", Error: "must be a valid YYYY-MM-DD date"})
		}
		c.WithdrawalDate = &wd
	}

	c.UpdatedAt = nowFunc().UTC()
	return svc.repo.UpdateChild(ctx, c)
}

// SetActive toggles the soft-delete flag. Attendance history is untouched.
func (svc *Service) SetActive(ctx context.Context, id string, active bool) (Child, error) {
	c, err := svc.repo.GetChildByID(ctx, id)
	if err != nil {
		return Child{}, err
	}
	c.IsActive = active
	c.UpdatedAt = nowFunc().UTC()
	return svc.repo.UpdateChild(ctx, c)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	if _, err := svc.repo.GetChildByID(ctx, id); err != nil {
		return err
	}
	return svc.repo.DeleteChild(ctx, id)
}

// Emergency contacts

func (svc *Service) CreateContact(ctx context.Context, nec NewEmergencyContact) (EmergencyContact, error) {
	if _, err := svc.repo.GetChildByID(ctx, nec.ChildID); err != nil {
		return EmergencyContact{}, err
	}

	existing, err := svc.repo.ListContacts(ctx, nec.ChildID)
	if err != nil {
		return EmergencyContact{}, errors.Wrap(err, "listing contacts")
	}
	for _, ec := range existing {
		if ec.PriorityOrder == nec.PriorityOrder {
			return EmergencyContact{}, core.NewConflictError(
				fmt.Sprintf("priority order %d is already assigned to another contact for this child", nec.PriorityOrder))
		}
	}

	now := nowFunc().UTC()
	ec := EmergencyContact{
		ChildID:          nec.ChildID,
		Name:             nec.Name,
		RelationshipType: nec.RelationshipType,
		PhonePrimary:     nec.PhonePrimary,
		PhoneSecondary:   nec.PhoneSecondary,
		PriorityOrder:    nec.PriorityOrder,
		Notes:            nec.Notes,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	return svc.repo.CreateContact(ctx, ec)
}

func (svc *Service) GetContact(ctx context.Context, id string) (EmergencyContact, error) {
	return svc.repo.GetContactByID(ctx, id)
}

func (svc *Service) ListContacts(ctx context.Context, childID string) ([]EmergencyContact, error) {
	if _, err := svc.repo.GetChildByID(ctx, childID); err != nil {
		return nil, err
	}
	return svc.repo.ListContacts(ctx, childID)
}

// CountContacts reports how many emergency contacts a child has on file.
func (svc *Service) CountContacts(ctx context.Context, childID string) (int, error) {
	contacts, err := svc.repo.ListContacts(ctx, childID)
	if err != nil {
		return 0, err
	}
	return len(contacts), nil
}

func (svc *Service) UpdateContact(ctx context.Context, id string, uec UpdateEmergencyContact) (EmergencyContact, error) {
	ec, err := svc.repo.GetContactByID(ctx, id)
	if err != nil {
		return EmergencyContact{}, err
	}

	if uec.PriorityOrder != 0 && uec.PriorityOrder != ec.PriorityOrder {
		siblings, err := svc.repo.ListContacts(ctx, ec.ChildID)
		if err != nil {
			return EmergencyContact{}, errors.Wrap(err, "listing contacts")
		}
		for _, other := range siblings {
			if other.ID != ec.ID && other.PriorityOrder == uec.PriorityOrder {
				return EmergencyContact{}, core.NewConflictError(
					fmt.Sprintf("priority order %d is already assigned to another contact for this child", uec.PriorityOrder))
			}
		}
		ec.PriorityOrder = uec.PriorityOrder
	}
	if uec.Name != "" {
		ec.Name = uec.Name
	}
	if uec.RelationshipType != "" {
		ec.RelationshipType = uec.RelationshipType
	}
	if uec.PhonePrimary != "" {
		ec.PhonePrimary = uec.PhonePrimary
	}
	if uec.PhoneSecondary != "" {
		ec.PhoneSecondary = uec.PhoneSecondary
	}
	if uec.Notes != nil {
		ec.Notes = *uec.Notes
	}

	ec.UpdatedAt = nowFunc().UTC()
	return svc.repo.UpdateContact(ctx, ec)
}

// DeleteContact removes a contact unless that would leave the child below
// the DCFS minimum.
func (svc *Service) DeleteContact(ctx context.Context, id string) error {
	ec, err := svc.repo.GetContactByID(ctx, id)
	if err != nil {
		return err
	}
	siblings, err := svc.repo.ListContacts(ctx, ec.ChildID)
	if err != nil {
		return errors.Wrap(err, "listing contacts")
	}
	if len(siblings) <= svc.conf.Daycare.MinEmergencyContacts {
		return core.NewConflictError(fmt.Sprintf(
			"DCFS requires a minimum of %d emergency contacts per child; deletion would leave %d",
			svc.conf.Daycare.MinEmergencyContacts, len(siblings)-1))
	}
	return svc.repo.DeleteContact(ctx, id)
}

// Authorized pickups

func (svc *Service) CreatePickup(ctx context.Context, nap NewAuthorizedPickup) (AuthorizedPickup, error) {
	if _, err := svc.repo.GetChildByID(ctx, nap.ChildID); err != nil {
		return AuthorizedPickup{}, err
	}

	now := nowFunc().UTC()
	ap := AuthorizedPickup{
		ChildID:             nap.ChildID,
		Name:                nap.Name,
		RelationshipType:    nap.RelationshipType,
		Phone:               nap.Phone,
		IdentificationNotes: nap.IdentificationNotes,
		RequiresPassword:    nap.RequiresPassword,
		PasswordHint:        nap.PasswordHint,
		IsActive:            true,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	return svc.repo.CreatePickup(ctx, ap)
}

func (svc *Service) GetPickup(ctx context.Context, id string) (AuthorizedPickup, error) {
	return svc.repo.GetPickupByID(ctx, id)
}

func (svc *Service) ListPickups(ctx context.Context, childID string) ([]AuthorizedPickup, error) {
	if _, err := svc.repo.GetChildByID(ctx, childID); err != nil {
		return nil, err
	}
	return svc.repo.ListPickups(ctx, childID)
}

func (svc *Service) UpdatePickup(ctx context.Context, id string, uap UpdateAuthorizedPickup) (AuthorizedPickup, error) {
	ap, err := svc.repo.GetPickupByID(ctx, id)
	if err != nil {
		return AuthorizedPickup{}, err
	}

	if uap.Name != "" {
		ap.Name = uap.Name
	}
	if uap.RelationshipType != "" {
		ap.RelationshipType = uap.RelationshipType
	}
	if uap.Phone != "" {
		ap.Phone = uap.Phone
	}
	if uap.IdentificationNotes != nil {
		ap.IdentificationNotes = *uap.IdentificationNotes
	}
	if uap.RequiresPassword != nil {
		ap.RequiresPassword = *uap.RequiresPassword
	}
	if uap.PasswordHint != nil {
		ap.PasswordHint = *uap.PasswordHint
	}

	ap.UpdatedAt = nowFunc().UTC()
	return svc.repo.UpdatePickup(ctx, ap)
}

func (svc *Service) SetPickupActive(ctx context.Context, id string, active bool) (AuthorizedPickup, error) {
	ap, err := svc.repo.GetPickupByID(ctx, id)
	if err != nil {
		return AuthorizedPickup{}, err
	}
	ap.IsActive = active
	ap.UpdatedAt = nowFunc().UTC()
	return svc.repo.UpdatePickup(ctx, ap)
}

func (svc *Service) DeletePickup(ctx context.Context, id string) error {
	if _, err := svc.repo.GetPickupByID(ctx, id); err != nil {
		return err
	}
	return svc.repo.DeletePickup(ctx, id)
}
