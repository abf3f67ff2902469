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
	"github.com/bouncearound/daycare/core/child"
)

type childRepository struct {
	db *sqlx.DB
}

var _ child.Repository = (*childRepository)(nil) // interface compliance check

func NewChildRepository(db *sqlx.DB) *childRepository {
	return &childRepository{db: db}
}

type childRow struct {
	ID                  string       `db:"id"`
	FirstName           string       `db:"first_name"`
	LastName            string       `db:"last_name"`
	DateOfBirth         time.Time    `db:"date_of_birth"`
	Gender              string       `db:"gender"`
	Allergies           string       `db:"allergies"`
	DietaryRestrictions string       `db:"dietary_restrictions"`
	MedicalConditions   string       `db:"medical_conditions"`
	SpecialNeeds        string       `db:"special_needs"`
	EnrollmentDate      time.Time    `db:"enrollment_date"`
	WithdrawalDate      sql.NullTime `db:"withdrawal_date"`
	IsActive            bool         `db:"is_active"`
	CreatedBy           string       `db:"created_by"`
	CreatedAt           time.Time    `db:"created_at"`
	UpdatedAt           time.Time    `db:"updated_at"`
}

type contactRow struct {
	ID               string    `db:"id"`
	ChildID          string    `db:"child_id"`
	Name             string    `db:"name"`
	RelationshipType string    `db:"relationship_type"`
	PhonePrimary     string    `db:"phone_primary"`
	PhoneSecondary   string    `db:"phone_secondary"`
	PriorityOrder    int       `db:"priority_order"`
	Notes            string    `db:"notes"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}

type pickupRow struct {
	ID                  string    `db:"id"`
	ChildID             string    `db:"child_id"`
	Name                string    `db:"name"`
	RelationshipType    string    `db:"relationship_type"`
	Phone               string    `db:"phone"`
	IdentificationNotes string    `db:"identification_notes"`
	RequiresPassword    bool      `db:"requires_password"`
	PasswordHint        string    `db:"password_hint"`
	IsActive            bool      `db:"is_active"`
	CreatedAt           time.Time `db:"created_at"`
	UpdatedAt           time.Time `db:"updated_at"`
}

func (repo childRepository) toRow(c child.Child) childRow {
	return childRow{
		ID:                  c.ID,
		FirstName:           c.FirstName,
		LastName:            c.LastName,
		DateOfBirth:         c.DateOfBirth,
		Gender:              c.Gender,
		Allergies:           c.Allergies,
		DietaryRestrictions: c.DietaryRestrictions,
		MedicalConditions:   c.MedicalConditions,
		SpecialNeeds:        c.SpecialNeeds,
		EnrollmentDate:      c.EnrollmentDate,
		WithdrawalDate:      nullTime(c.WithdrawalDate),
		IsActive:            c.IsActive,
		CreatedBy:           c.CreatedBy,
		CreatedAt:           c.CreatedAt.UTC(),
		UpdatedAt:           c.UpdatedAt.UTC(),
	}
}

func (repo childRepository) fromRow(row childRow) child.Child {
	return child.Child{
		ID:                  row.ID,
		FirstName:           row.FirstName,
		LastName:            row.LastName,
		DateOfBirth:         core.DateOf(row.DateOfBirth),
		Gender:              row.Gender,
		Allergies:           row.Allergies,
		DietaryRestrictions: row.DietaryRestrictions,
		MedicalConditions:   row.MedicalConditions,
		SpecialNeeds:        row.SpecialNeeds,
		EnrollmentDate:      core.DateOf(row.EnrollmentDate),
		WithdrawalDate:      timePtr(row.WithdrawalDate),
		IsActive:            row.IsActive,
		CreatedBy:           row.CreatedBy,
		CreatedAt:           row.CreatedAt.UTC(),
		UpdatedAt:           row.UpdatedAt.UTC(),
	}
}

func (repo childRepository) toContactRow(ec child.EmergencyContact) contactRow {
	return contactRow{
		ID:               ec.ID,
		ChildID:          ec.ChildID,
		Name:             ec.Name,
		RelationshipType: ec.RelationshipType,
		PhonePrimary:     ec.PhonePrimary,
		PhoneSecondary:   ec.PhoneSecondary,
		PriorityOrder:    ec.PriorityOrder,
		Notes:            ec.Notes,
		CreatedAt:        ec.CreatedAt.UTC(),
		UpdatedAt:        ec.UpdatedAt.UTC(),
	}
}

func (repo childRepository) fromContactRow(row contactRow) child.EmergencyContact {
	return child.EmergencyContact{
		ID:               row.ID,
		ChildID:          row.ChildID,
		Name:             row.Name,
		RelationshipType: row.RelationshipType,
		PhonePrimary:     row.PhonePrimary,
		PhoneSecondary:   row.PhoneSecondary,
		PriorityOrder:    row.PriorityOrder,
		Notes:            row.Notes,
		CreatedAt:        row.CreatedAt.UTC(),
		UpdatedAt:        row.UpdatedAt.UTC(),
	}
}

func (repo childRepository) toPickupRow(ap child.AuthorizedPickup) pickupRow {
	return pickupRow{
		ID:                  ap.ID,
		ChildID:             ap.ChildID,
		Name:                ap.Name,
		RelationshipType:    ap.RelationshipType,
		Phone:               ap.Phone,
		IdentificationNotes: ap.IdentificationNotes,
		RequiresPassword:    ap.RequiresPassword,
		PasswordHint:        ap.PasswordHint,
		IsActive:            ap.IsActive,
		CreatedAt:           ap.CreatedAt.UTC(),
		UpdatedAt:           ap.UpdatedAt.UTC(),
	}
}

func (repo childRepository) fromPickupRow(row pickupRow) child.AuthorizedPickup {
	return child.AuthorizedPickup{
		ID:                  row.ID,
		ChildID:             row.ChildID,
		Name:                row.Name,
		RelationshipType:    row.RelationshipType,
		Phone:               row.Phone,
		IdentificationNotes: row.IdentificationNotes,
		RequiresPassword:    row.RequiresPassword,
		PasswordHint:        row.PasswordHint,
		IsActive:            row.IsActive,
		CreatedAt:           row.CreatedAt.UTC(),
		UpdatedAt:           row.UpdatedAt.UTC(),
	}
}

func (repo childRepository) trapNoRowsErr(err, notFound error, msg string) error {
	if err == sql.ErrNoRows {
		return notFound
	}
	return errors.Wrap(err, msg)
}

func (repo childRepository) CreateChild(ctx context.Context, c child.Child) (child.Child, error) {
	c.ID = uuid.New().String()
	row := repo.toRow(c)
	query := `
		INSERT INTO child (id, first_name, last_name, date_of_birth, gender, allergies, dietary_restrictions,
		                   medical_conditions, special_needs, enrollment_date, withdrawal_date, is_active,
		                   created_by, created_at, updated_at)
		VALUES (:id, :first_name, :last_name, :date_of_birth, :gender, :allergies, :dietary_restrictions,
		        :medical_conditions, :special_needs, :enrollment_date, :withdrawal_date, :is_active,
		        :created_by, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, query, row); err != nil {
		return child.Child{}, errors.Wrap(err, "inserting child")
	}
	return repo.fromRow(row), nil
}

func (repo childRepository) GetChildByID(ctx context.Context, id string) (child.Child, error) {
	var row childRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM child WHERE id = $1`, id); err != nil {
		return child.Child{}, repo.trapNoRowsErr(err, child.ErrNotFound, "getting child")
	}
	return repo.fromRow(row), nil
}

func (repo childRepository) FilterChildren(ctx context.Context, filter child.QueryFilter, page core.Pagination) ([]child.Child, int, error) {
	var conds []string
	var args []interface{}

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		p := fmt.Sprintf("$%d", len(args))
		conds = append(conds, fmt.Sprintf("(first_name ILIKE %[1]s OR last_name ILIKE %[1]s)", p))
	}
	if filter.IsActive != nil {
		args = append(args, *filter.IsActive)
		conds = append(conds, fmt.Sprintf("is_active = $%d", len(args)))
	}
	where := whereClause(conds)

	var total int
	if err := repo.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM child`+where, args...); err != nil {
		return nil, 0, errors.Wrap(err, "counting children")
	}

	page.Clamp()
	query := fmt.Sprintf(`SELECT * FROM child%s ORDER BY last_name, first_name LIMIT %d OFFSET %d`, where, page.PageSize, page.Offset())
	var rows []childRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, errors.Wrap(err, "filtering children")
	}

	children := make([]child.Child, 0, len(rows))
	for _, row := range rows {
		children = append(children, repo.fromRow(row))
	}
	return children, total, nil
}

func (repo childRepository) UpdateChild(ctx context.Context, c child.Child) (child.Child, error) {
	row := repo.toRow(c)
	query := `
		UPDATE child
		SET first_name = :first_name, last_name = :last_name, date_of_birth = :date_of_birth, gender = :gender,
		    allergies = :allergies, dietary_restrictions = :dietary_restrictions, medical_conditions = :medical_conditions,
		    special_needs = :special_needs, enrollment_date = :enrollment_date, withdrawal_date = :withdrawal_date,
		    is_active = :is_active, updated_at = :updated_at
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, query, row)
	if err != nil {
		return child.Child{}, errors.Wrap(err, "updating child")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return child.Child{}, child.ErrNotFound
	}
	return repo.fromRow(row), nil
}

func (repo childRepository) DeleteChild(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM child WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting child")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return child.ErrNotFound
	}
	return nil
}

func (repo childRepository) CreateContact(ctx context.Context, ec child.EmergencyContact) (child.EmergencyContact, error) {
	ec.ID = uuid.New().String()
	row := repo.toContactRow(ec)
	query := `
		INSERT INTO emergency_contact (id, child_id, name, relationship_type, phone_primary, phone_secondary,
		                               priority_order, notes, created_at, updated_at)
		VALUES (:id, :child_id, :name, :relationship_type, :phone_primary, :phone_secondary,
		        :priority_order, :notes, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, query, row); err != nil {
		return child.EmergencyContact{}, errors.Wrap(err, "inserting emergency contact")
	}
	return repo.fromContactRow(row), nil
}

func (repo childRepository) GetContactByID(ctx context.Context, id string) (child.EmergencyContact, error) {
	var row contactRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM emergency_contact WHERE id = $1`, id); err != nil {
		return child.EmergencyContact{}, repo.trapNoRowsErr(err, child.ErrContactNotFound, "getting emergency contact")
	}
	return repo.fromContactRow(row), nil
}

func (repo childRepository) ListContacts(ctx context.Context, childID string) ([]child.EmergencyContact, error) {
	var rows []contactRow
	query := `SELECT * FROM emergency_contact WHERE child_id = $1 ORDER BY priority_order`
	if err := repo.db.SelectContext(ctx, &rows, query, childID); err != nil {
		return nil, errors.Wrap(err, "listing emergency contacts")
	}

	contacts := make([]child.EmergencyContact, 0, len(rows))
	for _, row := range rows {
		contacts = append(contacts, repo.fromContactRow(row))
	}
	return contacts, nil
}

func (repo childRepository) UpdateContact(ctx context.Context, ec child.EmergencyContact) (child.EmergencyContact, error) {
	row := repo.toContactRow(ec)
	query := `
		UPDATE emergency_contact
		SET name = :name, relationship_type = :relationship_type, phone_primary = :phone_primary,
		    phone_secondary = :phone_secondary, priority_order = :priority_order, notes = :notes, updated_at = :updated_at
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, query, row)
	if err != nil {
		return child.EmergencyContact{}, errors.Wrap(err, "updating emergency contact")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return child.EmergencyContact{}, child.ErrContactNotFound
	}
	return repo.fromContactRow(row), nil
}

func (repo childRepository) DeleteContact(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM emergency_contact WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting emergency contact")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return child.ErrContactNotFound
	}
	return nil
}

func (repo childRepository) CreatePickup(ctx context.Context, ap child.AuthorizedPickup) (child.AuthorizedPickup, error) {
	ap.ID = uuid.New().String()
	row := repo.toPickupRow(ap)
	query := `
		INSERT INTO authorized_pickup (id, child_id, name, relationship_type, phone, identification_notes,
		                               requires_password, password_hint, is_active, created_at, updated_at)
		VALUES (:id, :child_id, :name, :relationship_type, :phone, :identification_notes,
		        :requires_password, :password_hint, :is_active, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, query, row); err != nil {
		return child.AuthorizedPickup{}, errors.Wrap(err, "inserting authorized pickup")
	}
	return repo.fromPickupRow(row), nil
}

func (repo childRepository) GetPickupByID(ctx context.Context, id string) (child.AuthorizedPickup, error) {
	var row pickupRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM authorized_pickup WHERE id = $1`, id); err != nil {
		return child.AuthorizedPickup{}, repo.trapNoRowsErr(err, child.ErrPickupNotFound, "getting authorized pickup")
	}
	return repo.fromPickupRow(row), nil
}

func (repo childRepository) ListPickups(ctx context.Context, childID string) ([]child.AuthorizedPickup, error) {
	var rows []pickupRow
	query := `SELECT * FROM authorized_pickup WHERE child_id = $1 ORDER BY name`
	if err := repo.db.SelectContext(ctx, &rows, query, childID); err != nil {
		return nil, errors.Wrap(err, "listing authorized pickups")
	}

	pickups := make([]child.AuthorizedPickup, 0, len(rows))
	for _, row := range rows {
		pickups = append(pickups, repo.fromPickupRow(row))
	}
	return pickups, nil
}

func (repo childRepository) UpdatePickup(ctx context.Context, ap child.AuthorizedPickup) (child.AuthorizedPickup, error) {
	row := repo.toPickupRow(ap)
	query := `
		UPDATE authorized_pickup
		SET name = :name, relationship_type = :relationship_type, phone = :phone,
		    identification_notes = :identification_notes, requires_password = :requires_password,
		    password_hint = :password_hint, is_active = :is_active, updated_at = :updated_at
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, query, row)
	if err != nil {
		return child.AuthorizedPickup{}, errors.Wrap(err, "updating authorized pickup")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return child.AuthorizedPickup{}, child.ErrPickupNotFound
	}
	return repo.fromPickupRow(row), nil
}

func (repo childRepository) DeletePickup(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM authorized_pickup WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting authorized pickup")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return child.ErrPickupNotFound
	}
	return nil
}
