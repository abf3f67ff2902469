package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/bouncearound/daycare/core"
	"github.com/bouncearound/daycare/core/compliance"
)

type complianceRepository struct {
	db *sqlx.DB
}

var _ compliance.Repository = (*complianceRepository)(nil) // interface compliance check

func NewComplianceRepository(db *sqlx.DB) *complianceRepository {
	return &complianceRepository{db: db}
}

type immunizationRow struct {
	ID                 string       `db:"id"`
	ChildID            string       `db:"child_id"`
	VaccineName        string       `db:"vaccine_name"`
	AdministrationDate time.Time    `db:"administration_date"`
	ExpirationDate     sql.NullTime `db:"expiration_date"`
	ProviderName       string       `db:"provider_name"`
	Notes              string       `db:"notes"`
	IsVerified         bool         `db:"is_verified"`
	CreatedAt          time.Time    `db:"created_at"`
	UpdatedAt          time.Time    `db:"updated_at"`
}

type credentialRow struct {
	ID               string       `db:"id"`
	UserID           string       `db:"user_id"`
	CredentialType   string       `db:"credential_type"`
	CredentialNumber string       `db:"credential_number"`
	IssueDate        time.Time    `db:"issue_date"`
	ExpirationDate   sql.NullTime `db:"expiration_date"`
	IsVerified       bool         `db:"is_verified"`
	CreatedAt        time.Time    `db:"created_at"`
	UpdatedAt        time.Time    `db:"updated_at"`
}

type enrollmentFormRow struct {
	ID             string       `db:"id"`
	ChildID        string       `db:"child_id"`
	EnrollmentDate time.Time    `db:"enrollment_date"`
	ParentSignedAt sql.NullTime `db:"parent_signed_at"`
	StaffSignedAt  sql.NullTime `db:"staff_signed_at"`
	IsComplete     bool         `db:"is_complete"`
	CompletedBy    string       `db:"completed_by"`
	CreatedAt      time.Time    `db:"created_at"`
	UpdatedAt      time.Time    `db:"updated_at"`
}

func (repo complianceRepository) toImmunizationRow(rec compliance.ImmunizationRecord) immunizationRow {
	return immunizationRow{
		ID:                 rec.ID,
		ChildID:            rec.ChildID,
		VaccineName:        rec.VaccineName,
		AdministrationDate: rec.AdministrationDate,
		ExpirationDate:     nullTime(rec.ExpirationDate),
		ProviderName:       rec.ProviderName,
		Notes:              rec.Notes,
		IsVerified:         rec.IsVerified,
		CreatedAt:          rec.CreatedAt.UTC(),
		UpdatedAt:          rec.UpdatedAt.UTC(),
	}
}

func (repo complianceRepository) fromImmunizationRow(row immunizationRow) compliance.ImmunizationRecord {
	return compliance.ImmunizationRecord{
		ID:                 row.ID,
		ChildID:            row.ChildID,
		VaccineName:        row.VaccineName,
		AdministrationDate: core.DateOf(row.AdministrationDate),
		ExpirationDate:     timePtr(row.ExpirationDate),
		ProviderName:       row.ProviderName,
		Notes:              row.Notes,
		IsVerified:         row.IsVerified,
		CreatedAt:          row.CreatedAt.UTC(),
		UpdatedAt:          row.UpdatedAt.UTC(),
	}
}

func (repo complianceRepository) fromImmunizationRows(rows []immunizationRow) []compliance.ImmunizationRecord {
	records := make([]compliance.ImmunizationRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, repo.fromImmunizationRow(row))
	}
	return records
}

func (repo complianceRepository) toCredentialRow(cred compliance.StaffCredential) credentialRow {
	return credentialRow{
		ID:               cred.ID,
		UserID:           cred.UserID,
		CredentialType:   cred.CredentialType,
		CredentialNumber: cred.CredentialNumber,
		IssueDate:        cred.IssueDate,
		ExpirationDate:   nullTime(cred.ExpirationDate),
		IsVerified:       cred.IsVerified,
		CreatedAt:        cred.CreatedAt.UTC(),
		UpdatedAt:        cred.UpdatedAt.UTC(),
	}
}

func (repo complianceRepository) fromCredentialRow(row credentialRow) compliance.StaffCredential {
	return compliance.StaffCredential{
		ID:               row.ID,
		UserID:           row.UserID,
		CredentialType:   row.CredentialType,
		CredentialNumber: row.CredentialNumber,
		IssueDate:        core.DateOf(row.IssueDate),
		ExpirationDate:   timePtr(row.ExpirationDate),
		IsVerified:       row.IsVerified,
		CreatedAt:        row.CreatedAt.UTC(),
		UpdatedAt:        row.UpdatedAt.UTC(),
	}
}

func (repo complianceRepository) fromCredentialRows(rows []credentialRow) []compliance.StaffCredential {
	creds := make([]compliance.StaffCredential, 0, len(rows))
	for _, row := range rows {
		creds = append(creds, repo.fromCredentialRow(row))
	}
	return creds
}

func (repo complianceRepository) toFormRow(form compliance.EnrollmentForm) enrollmentFormRow {
	return enrollmentFormRow{
		ID:             form.ID,
		ChildID:        form.ChildID,
		EnrollmentDate: form.EnrollmentDate,
		ParentSignedAt: nullTime(form.ParentSignedAt),
		StaffSignedAt:  nullTime(form.StaffSignedAt),
		IsComplete:     form.IsComplete,
		CompletedBy:    form.CompletedBy,
		CreatedAt:      form.CreatedAt.UTC(),
		UpdatedAt:      form.UpdatedAt.UTC(),
	}
}

func (repo complianceRepository) fromFormRow(row enrollmentFormRow) compliance.EnrollmentForm {
	return compliance.EnrollmentForm{
		ID:             row.ID,
		ChildID:        row.ChildID,
		EnrollmentDate: core.DateOf(row.EnrollmentDate),
		ParentSignedAt: timePtr(row.ParentSignedAt),
		StaffSignedAt:  timePtr(row.StaffSignedAt),
		IsComplete:     row.IsComplete,
		CompletedBy:    row.CompletedBy,
		CreatedAt:      row.CreatedAt.UTC(),
		UpdatedAt:      row.UpdatedAt.UTC(),
	}
}

func (repo complianceRepository) trapNoRowsErr(err, notFound error, msg string) error {
	if err == sql.ErrNoRows {
		return notFound
	}
	return errors.Wrap(err, msg)
}

func (repo complianceRepository) CreateImmunization(ctx context.Context, rec compliance.ImmunizationRecord) (compliance.ImmunizationRecord, error) {
	rec.ID = uuid.New().String()
	row := repo.toImmunizationRow(rec)
	query := `
		INSERT INTO immunization_record (id, child_id, vaccine_name, administration_date, expiration_date,
		                                 provider_name, notes, is_verified, created_at, updated_at)
		VALUES (:id, :child_id, :vaccine_name, :administration_date, :expiration_date,
		        :provider_name, :notes, :is_verified, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, query, row); err != nil {
		return compliance.ImmunizationRecord{}, errors.Wrap(err, "inserting immunization record")
	}
	return repo.fromImmunizationRow(row), nil
}

func (repo complianceRepository) GetImmunizationByID(ctx context.Context, id string) (compliance.ImmunizationRecord, error) {
	var row immunizationRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM immunization_record WHERE id = $1`, id); err != nil {
		return compliance.ImmunizationRecord{}, repo.trapNoRowsErr(err, compliance.ErrImmunizationNotFound, "getting immunization record")
	}
	return repo.fromImmunizationRow(row), nil
}

func (repo complianceRepository) ListImmunizationsByChild(ctx context.Context, childID string) ([]compliance.ImmunizationRecord, error) {
	var rows []immunizationRow
	query := `SELECT * FROM immunization_record WHERE child_id = $1 ORDER BY administration_date DESC`
	if err := repo.db.SelectContext(ctx, &rows, query, childID); err != nil {
		return nil, errors.Wrap(err, "listing immunization records")
	}
	return repo.fromImmunizationRows(rows), nil
}

func (repo complianceRepository) ListExpiringImmunizations(ctx context.Context, deadline time.Time) ([]compliance.ImmunizationRecord, error) {
	var rows []immunizationRow
	query := `SELECT * FROM immunization_record WHERE expiration_date IS NOT NULL AND expiration_date <= $1 ORDER BY expiration_date`
	if err := repo.db.SelectContext(ctx, &rows, query, core.DateOf(deadline)); err != nil {
		return nil, errors.Wrap(err, "listing expiring immunizations")
	}
	return repo.fromImmunizationRows(rows), nil
}

func (repo complianceRepository) UpdateImmunization(ctx context.Context, rec compliance.ImmunizationRecord) (compliance.ImmunizationRecord, error) {
	row := repo.toImmunizationRow(rec)
	query := `
		UPDATE immunization_record
		SET vaccine_name = :vaccine_name, administration_date = :administration_date, expiration_date = :expiration_date,
		    provider_name = :provider_name, notes = :notes, is_verified = :is_verified, updated_at = :updated_at
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, query, row)
	if err != nil {
		return compliance.ImmunizationRecord{}, errors.Wrap(err, "updating immunization record")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return compliance.ImmunizationRecord{}, compliance.ErrImmunizationNotFound
	}
	return repo.fromImmunizationRow(row), nil
}

func (repo complianceRepository) DeleteImmunization(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM immunization_record WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting immunization record")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return compliance.ErrImmunizationNotFound
	}
	return nil
}

func (repo complianceRepository) CreateCredential(ctx context.Context, cred compliance.StaffCredential) (compliance.StaffCredential, error) {
	cred.ID = uuid.New().String()
	row := repo.toCredentialRow(cred)
	query := `
		INSERT INTO staff_credential (id, user_id, credential_type, credential_number, issue_date, expiration_date,
		                              is_verified, created_at, updated_at)
		VALUES (:id, :user_id, :credential_type, :credential_number, :issue_date, :expiration_date,
		        :is_verified, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, query, row); err != nil {
		return compliance.StaffCredential{}, errors.Wrap(err, "inserting staff credential")
	}
	return repo.fromCredentialRow(row), nil
}

func (repo complianceRepository) GetCredentialByID(ctx context.Context, id string) (compliance.StaffCredential, error) {
	var row credentialRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM staff_credential WHERE id = $1`, id); err != nil {
		return compliance.StaffCredential{}, repo.trapNoRowsErr(err, compliance.ErrCredentialNotFound, "getting staff credential")
	}
	return repo.fromCredentialRow(row), nil
}

func (repo complianceRepository) ListCredentialsByUser(ctx context.Context, userID string) ([]compliance.StaffCredential, error) {
	var rows []credentialRow
	query := `SELECT * FROM staff_credential WHERE user_id = $1 ORDER BY issue_date DESC`
	if err := repo.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, errors.Wrap(err, "listing staff credentials")
	}
	return repo.fromCredentialRows(rows), nil
}

func (repo complianceRepository) ListExpiringCredentials(ctx context.Context, deadline time.Time) ([]compliance.StaffCredential, error) {
	var rows []credentialRow
	query := `SELECT * FROM staff_credential WHERE expiration_date IS NOT NULL AND expiration_date <= $1 ORDER BY expiration_date`
	if err := repo.db.SelectContext(ctx, &rows, query, core.DateOf(deadline)); err != nil {
		return nil, errors.Wrap(err, "listing expiring credentials")
	}
	return repo.fromCredentialRows(rows), nil
}

func (repo complianceRepository) UpdateCredential(ctx context.Context, cred compliance.StaffCredential) (compliance.StaffCredential, error) {
	row := repo.toCredentialRow(cred)
	query := `
		UPDATE staff_credential
		SET credential_type = :credential_type, credential_number = :credential_number, issue_date = :issue_date,
		    expiration_date = :expiration_date, is_verified = :is_verified, updated_at = :updated_at
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, query, row)
	if err != nil {
		return compliance.StaffCredential{}, errors.Wrap(err, "updating staff credential")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return compliance.StaffCredential{}, compliance.ErrCredentialNotFound
	}
	return repo.fromCredentialRow(row), nil
}

func (repo complianceRepository) DeleteCredential(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM staff_credential WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting staff credential")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return compliance.ErrCredentialNotFound
	}
	return nil
}

func (repo complianceRepository) CreateForm(ctx context.Context, form compliance.EnrollmentForm) (compliance.EnrollmentForm, error) {
	form.ID = uuid.New().String()
	row := repo.toFormRow(form)
	query := `
		INSERT INTO enrollment_form (id, child_id, enrollment_date, parent_signed_at, staff_signed_at, is_complete,
		                             completed_by, created_at, updated_at)
		VALUES (:id, :child_id, :enrollment_date, :parent_signed_at, :staff_signed_at, :is_complete,
		        :completed_by, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, query, row); err != nil {
		return compliance.EnrollmentForm{}, errors.Wrap(err, "inserting enrollment form")
	}
	return repo.fromFormRow(row), nil
}

func (repo complianceRepository) GetFormByID(ctx context.Context, id string) (compliance.EnrollmentForm, error) {
	var row enrollmentFormRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM enrollment_form WHERE id = $1`, id); err != nil {
		return compliance.EnrollmentForm{}, repo.trapNoRowsErr(err, compliance.ErrFormNotFound, "getting enrollment form")
	}
	return repo.fromFormRow(row), nil
}

func (repo complianceRepository) GetFormByChild(ctx context.Context, childID string) (compliance.EnrollmentForm, error) {
	var row enrollmentFormRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM enrollment_form WHERE child_id = $1`, childID); err != nil {
		return compliance.EnrollmentForm{}, repo.trapNoRowsErr(err, compliance.ErrFormNotFound, "getting enrollment form")
	}
	return repo.fromFormRow(row), nil
}

func (repo complianceRepository) ListIncompleteForms(ctx context.Context) ([]compliance.EnrollmentForm, error) {
	var rows []enrollmentFormRow
	query := `SELECT * FROM enrollment_form WHERE is_complete = FALSE ORDER BY enrollment_date`
	if err := repo.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, errors.Wrap(err, "listing incomplete forms")
	}

	forms := make([]compliance.EnrollmentForm, 0, len(rows))
	for _, row := range rows {
		forms = append(forms, repo.fromFormRow(row))
	}
	return forms, nil
}

func (repo complianceRepository) UpdateForm(ctx context.Context, form compliance.EnrollmentForm) (compliance.EnrollmentForm, error) {
	row := repo.toFormRow(form)
	query := `
		UPDATE enrollment_form
		SET enrollment_date = :enrollment_date, parent_signed_at = :parent_signed_at, staff_signed_at = :staff_signed_at,
		    is_complete = :is_complete, completed_by = :completed_by, updated_at = :updated_at
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, query, row)
	if err != nil {
		return compliance.EnrollmentForm{}, errors.Wrap(err, "updating enrollment form")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return compliance.EnrollmentForm{}, compliance.ErrFormNotFound
	}
	return repo.fromFormRow(row), nil
}
