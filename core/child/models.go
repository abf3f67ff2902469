package child

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/bouncearound/daycare/core"
)

type Child struct {
	ID                  string     `json:"id"`
	FirstName           string     `json:"first_name"`
	LastName            string     `json:"last_name"`
	DateOfBirth         time.Time  `json:"date_of_birth"`
	Gender              string     `json:"gender,omitempty"`
	Allergies           string     `json:"allergies,omitempty"`
	DietaryRestrictions string     `json:"dietary_restrictions,omitempty"`
	MedicalConditions   string     `json:"medical_conditions,omitempty"`
	SpecialNeeds        string     `json:"special_needs,omitempty"`
	EnrollmentDate      time.Time  `json:"enrollment_date"`
	WithdrawalDate      *time.Time `json:"withdrawal_date,omitempty"`
	IsActive            bool       `json:"is_active"`
	CreatedBy           string     `json:"created_by,omitempty"`
	CreatedAt           time.Time  `json:"created_at"` // UTC
	UpdatedAt           time.Time  `json:"updated_at"` // UTC
}

// EmergencyContact is a DCFS-mandated contact; every child needs at least
// two before it counts as compliant.
type EmergencyContact struct {
	ID               string    `json:"id"`
	ChildID          string    `json:"child_id"`
	Name             string    `json:"name"`
	RelationshipType string    `json:"relationship_type"`
	PhonePrimary     string    `json:"phone_primary"`
	PhoneSecondary   string    `json:"phone_secondary,omitempty"`
	PriorityOrder    int       `json:"priority_order"`
	Notes            string    `json:"notes,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type AuthorizedPickup struct {
	ID                  string    `json:"id"`
	ChildID             string    `json:"child_id"`
	Name                string    `json:"name"`
	RelationshipType    string    `json:"relationship_type"`
	Phone               string    `json:"phone"`
	IdentificationNotes string    `json:"identification_notes,omitempty"`
	RequiresPassword    bool      `json:"requires_password"`
	PasswordHint        string    `json:"password_hint,omitempty"`
	IsActive            bool      `json:"is_active"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

type NewChild struct {
	FirstName           string `json:"first_name" validate:"required"`
	LastName            string `json:"last_name" validate:"required"`
	DateOfBirth         string `json:"date_of_birth" validate:"required,date"`
	Gender              string `json:"gender" validate:"omitempty,oneof=male female other"`
	Allergies           string `json:"allergies"`
	DietaryRestrictions string `json:"dietary_restrictions"`
	MedicalConditions   string `json:"medical_conditions"`
	SpecialNeeds        string `json:"special_needs"`
	EnrollmentDate      string `json:"enrollment_date" validate:"required,date"`
}

func (nc *NewChild) Validate(validate *validator.Validate) error {
	nc.FirstName = core.CleanString(nc.FirstName)
	nc.LastName = core.CleanString(nc.LastName)
	return validate.Struct(nc)
}

type UpdateChild struct {
	FirstName           string  `json:"first_name"`
	LastName            string  `json:"last_name"`
	DateOfBirth         string  `json:"date_of_birth" validate:"omitempty,date"`
	Gender              string  `json:"gender" validate:"omitempty,oneof=male female other"`
	Allergies           *string `json:"allergies"`
	DietaryRestrictions *string `json:"dietary_restrictions"`
	MedicalConditions   *string `json:"medical_conditions"`
	SpecialNeeds        *string `json:"special_needs"`
	WithdrawalDate      string  `json:"withdrawal_date" validate:"omitempty,date"`
}

func (uc *UpdateChild) Validate(validate *validator.Validate) error {
	uc.FirstName = core.CleanString(uc.FirstName)
	uc.LastName = core.CleanString(uc.LastName)
	return validate.Struct(uc)
}

type NewEmergencyContact struct {
	ChildID          string `json:"child_id" validate:"required,uuid4"`
	Name             string `json:"name" validate:"required"`
	RelationshipType string `json:"relationship_type" validate:"required,oneof=mother father guardian grandparent aunt uncle sibling friend other"`
	PhonePrimary     string `json:"phone_primary" validate:"required"`
	PhoneSecondary   string `json:"phone_secondary"`
	PriorityOrder    int    `json:"priority_order" validate:"required,min=1"`
	Notes            string `json:"notes"`
}

func (nec *NewEmergencyContact) Validate(validate *validator.Validate) error {
	nec.Name = core.CleanString(nec.Name)
	return validate.Struct(nec)
}

type UpdateEmergencyContact struct {
	Name             string  `json:"name"`
	RelationshipType string  `json:"relationship_type" validate:"omitempty,oneof=mother father guardian grandparent aunt uncle sibling friend other"`
	PhonePrimary     string  `json:"phone_primary"`
	PhoneSecondary   string  `json:"phone_secondary"`
	PriorityOrder    int     `json:"priority_order" validate:"omitempty,min=1"`
	Notes            *string `json:"notes"`
}

func (uec *UpdateEmergencyContact) Validate(validate *validator.Validate) error {
	uec.Name = core.CleanString(uec.Name)
	return validate.Struct(uec)
}

type NewAuthorizedPickup struct {
	ChildID             string `json:"child_id" validate:"required,uuid4"`
	Name                string `json:"name" validate:"required"`
	RelationshipType    string `json:"relationship_type" validate:"required,oneof=mother father guardian grandparent aunt uncle sibling friend other"`
	Phone               string `json:"phone" validate:"required"`
	IdentificationNotes string `json:"identification_notes"`
	RequiresPassword    bool   `json:"requires_password"`
	PasswordHint        string `json:"password_hint"`
}

func (nap *NewAuthorizedPickup) Validate(validate *validator.Validate) error {
	nap.Name = core.CleanString(nap.Name)
	return validate.Struct(nap)
}

type UpdateAuthorizedPickup struct {
	Name                string  `json:"name"`
	RelationshipType    string  `json:"relationship_type" validate:"omitempty,oneof=mother father guardian grandparent aunt uncle sibling friend other"`
	Phone               string  `json:"phone"`
	IdentificationNotes *string `json:"identification_notes"`
	RequiresPassword    *bool   `json:"requires_password"`
	PasswordHint        *string `json:"password_hint"`
}

func (uap *UpdateAuthorizedPickup) Validate(validate *validator.Validate) error {
	uap.Name = core.CleanString(uap.Name)
	return validate.Struct(uap)
}

type QueryFilter struct {
	Search   string `query:"search"`
	IsActive *bool  `query:"is_active"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}
