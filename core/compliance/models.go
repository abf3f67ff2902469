package compliance

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/bouncearound/daycare/core"
)

// ImmunizationRecord tracks a child's vaccinations for DCFS reporting.
type ImmunizationRecord struct {
	ID                 string     `json:"id"`
	ChildID            string     `json:"child_id"`
	VaccineName        string     `json:"vaccine_name"`
	AdministrationDate time.Time  `json:"administration_date"`
	ExpirationDate     *time.Time `json:"expiration_date,omitempty"`
	ProviderName       string     `json:"provider_name,omitempty"`
	Notes              string     `json:"notes,omitempty"`
	IsVerified         bool       `json:"is_verified"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// StaffCredential tracks DCFS-required staff certifications.
type StaffCredential struct {
	ID               string     `json:"id"`
	UserID           string     `json:"user_id"`
	CredentialType   string     `json:"credential_type"`
	CredentialNumber string     `json:"credential_number,omitempty"`
	IssueDate        time.Time  `json:"issue_date"`
	ExpirationDate   *time.Time `json:"expiration_date,omitempty"`
	IsVerified       bool       `json:"is_verified"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// EnrollmentForm is the DCFS Form 602 record; one per child.
type EnrollmentForm struct {
	ID             string     `json:"id"`
	ChildID        string     `json:"child_id"`
	EnrollmentDate time.Time  `json:"enrollment_date"`
	ParentSignedAt *time.Time `json:"parent_signed_at,omitempty"`
	StaffSignedAt  *time.Time `json:"staff_signed_at,omitempty"`
	IsComplete     bool       `json:"is_complete"`
	CompletedBy    string     `json:"completed_by,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// ChildStatus is the read-time compliance report for one child.
type ChildStatus struct {
	ChildID                string               `json:"child_id"`
	EmergencyContactCount  int                  `json:"emergency_contact_count"`
	HasMinimumContacts     bool                 `json:"has_minimum_contacts"`
	EnrollmentFormComplete bool                 `json:"enrollment_form_complete"`
	ExpiredImmunizations   []ImmunizationRecord `json:"expired_immunizations"`
	ExpiringImmunizations  []ImmunizationRecord `json:"expiring_immunizations"`
	IsCompliant            bool                 `json:"is_compliant"`
}

type NewImmunization struct {
	ChildID            string `json:"child_id" validate:"required,uuid4"`
	VaccineName        string `json:"vaccine_name" validate:"required"`
	AdministrationDate string `json:"administration_date" validate:"required,date"`
	ExpirationDate     string `json:"expiration_date" validate:"omitempty,date"`
	ProviderName       string `json:"provider_name"`
	Notes              string `json:"notes"`
}

func (ni *NewImmunization) Validate(validate *validator.Validate) error {
	ni.VaccineName = core.CleanString(ni.VaccineName)
	return validate.Struct(ni)
}

type UpdateImmunization struct {
	VaccineName        string  `json:"vaccine_name"`
	AdministrationDate string  `json:"administration_date" validate:"omitempty,date"`
	ExpirationDate     string  `json:"expiration_date" validate:"omitempty,date"`
	ProviderName       *string `json:"provider_name"`
	Notes              *string `json:"notes"`
	IsVerified         *bool   `json:"is_verified"`
}

func (ui *UpdateImmunization) Validate(validate *validator.Validate) error {
	ui.VaccineName = core.CleanString(ui.VaccineName)
	return validate.Struct(ui)
}

type NewCredential struct {
	UserID           string `json:"user_id" validate:"required,uuid4"`
	CredentialType   string `json:"credential_type" validate:"required,oneof=cpr first_aid background_check tb_test dcfs_training"`
	CredentialNumber string `json:"credential_number"`
	IssueDate        string `json:"issue_date" validate:"required,date"`
	ExpirationDate   string `json:"expiration_date" validate:"omitempty,date"`
}

func (nc *NewCredential) Validate(validate *validator.Validate) error {
	return validate.Struct(nc)
}

type UpdateCredential struct {
	CredentialType   string  `json:"credential_type" validate:"omitempty,oneof=cpr first_aid background_check tb_test dcfs_training"`
	CredentialNumber *string `json:"credential_number"`
	IssueDate        string  `json:"issue_date" validate:"omitempty,date"`
	ExpirationDate   string  `json:"expiration_date" validate:"omitempty,date"`
	IsVerified       *bool   `json:"is_verified"`
}

func (uc *UpdateCredential) Validate(validate *validator.Validate) error {
	return validate.Struct(uc)
}

type NewEnrollmentForm struct {
	ChildID        string `json:"child_id" validate:"required,uuid4"`
	EnrollmentDate string `json:"enrollment_date" validate:"required,date"`
}

func (nf *NewEnrollmentForm) Validate(validate *validator.Validate) error {
	return validate.Struct(nf)
}

type UpdateEnrollmentForm struct {
	ParentSigned *bool `json:"parent_signed"`
	StaffSigned  *bool `json:"staff_signed"`
	IsComplete   *bool `json:"is_complete"`
}

func (uf *UpdateEnrollmentForm) Validate(validate *validator.Validate) error {
	return validate.Struct(uf)
}
