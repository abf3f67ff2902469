package parent

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/bouncearound/daycare/core"
)

type Parent struct {
	ID               string    `json:"id"`
	FirstName        string    `json:"first_name"`
	LastName         string    `json:"last_name"`
	Email            string    `json:"email,omitempty"`
	PhonePrimary     string    `json:"phone_primary"`
	PhoneSecondary   string    `json:"phone_secondary,omitempty"`
	AddressStreet    string    `json:"address_street,omitempty"`
	AddressCity      string    `json:"address_city,omitempty"`
	AddressState     string    `json:"address_state,omitempty"`
	AddressZip       string    `json:"address_zip,omitempty"`
	Employer         string    `json:"employer,omitempty"`
	WorkPhone        string    `json:"work_phone,omitempty"`
	IsPrimaryContact bool      `json:"is_primary_contact"`
	CreatedAt        time.Time `json:"created_at"` // UTC
	UpdatedAt        time.Time `json:"updated_at"` // UTC
}

// ChildLink ties a parent/guardian to a child with its custody flags.
type ChildLink struct {
	ID               string    `json:"id"`
	ChildID          string    `json:"child_id"`
	ParentID         string    `json:"parent_id"`
	RelationshipType string    `json:"relationship_type"`
	IsPrimary        bool      `json:"is_primary"`
	HasCustody       bool      `json:"has_custody"`
	CanPickup        bool      `json:"can_pickup"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type NewParent struct {
	FirstName        string `json:"first_name" validate:"required"`
	LastName         string `json:"last_name" validate:"required"`
	Email            string `json:"email" validate:"omitempty,email"`
	PhonePrimary     string `json:"phone_primary" validate:"required"`
	PhoneSecondary   string `json:"phone_secondary"`
	AddressStreet    string `json:"address_street"`
	AddressCity      string `json:"address_city"`
	AddressState     string `json:"address_state" validate:"omitempty,len=2"`
	AddressZip       string `json:"address_zip"`
	Employer         string `json:"employer"`
	WorkPhone        string `json:"work_phone"`
	IsPrimaryContact bool   `json:"is_primary_contact"`
}

func (np *NewParent) Validate(validate *validator.Validate) error {
	np.FirstName = core.CleanString(np.FirstName)
	np.LastName = core.CleanString(np.LastName)
	np.Email = core.CleanString(np.Email, true /* lower */)
	return validate.Struct(np)
}

type UpdateParent struct {
	FirstName        string  `json:"first_name"`
	LastName         string  `json:"last_name"`
	Email            string  `json:"email" validate:"omitempty,email"`
	PhonePrimary     string  `json:"phone_primary"`
	PhoneSecondary   string  `json:"phone_secondary"`
	AddressStreet    *string `json:"address_street"`
	AddressCity      *string `json:"address_city"`
	AddressState     string  `json:"address_state" validate:"omitempty,len=2"`
	AddressZip       *string `json:"address_zip"`
	Employer         *string `json:"employer"`
	WorkPhone        *string `json:"work_phone"`
	IsPrimaryContact *bool   `json:"is_primary_contact"`
}

func (up *UpdateParent) Validate(validate *validator.Validate) error {
	up.FirstName = core.CleanString(up.FirstName)
	up.LastName = core.CleanString(up.LastName)
	up.Email = core.CleanString(up.Email, true /* lower */)
	return validate.Struct(up)
}

type NewChildLink struct {
	ChildID          string `json:"child_id" validate:"required,uuid4"`
	RelationshipType string `json:"relationship_type" validate:"required,oneof=mother father guardian grandparent aunt uncle sibling other"`
	IsPrimary        bool   `json:"is_primary"`
	HasCustody       *bool  `json:"has_custody"`
	CanPickup        *bool  `json:"can_pickup"`
}

func (nl *NewChildLink) Validate(validate *validator.Validate) error {
	return validate.Struct(nl)
}

type QueryFilter struct {
	Search  string `query:"search"`
	ChildID string `query:"child_id"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}
