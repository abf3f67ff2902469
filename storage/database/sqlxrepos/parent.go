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
	"github.com/bouncearound/daycare/core/parent"
)

type parentRepository struct {
	db *sqlx.DB
}

var _ parent.Repository = (*parentRepository)(nil) // interface compliance check

func NewParentRepository(db *sqlx.DB) *parentRepository {
	return &parentRepository{db: db}
}

type parentRow struct {
	ID               string    `db:"id"`
	FirstName        string    `db:"first_name"`
	LastName         string    `db:"last_name"`
	Email            string    `db:"email"`
	PhonePrimary     string    `db:"phone_primary"`
	PhoneSecondary   string    `db:"phone_secondary"`
	AddressStreet    string    `db:"address_street"`
	AddressCity      string    `db:"address_city"`
	AddressState     string    `db:"address_state"`
	AddressZip       string    `db:"address_zip"`
	Employer         string    `db:"employer"`
	WorkPhone        string    `db:"work_phone"`
	IsPrimaryContact bool      `db:"is_primary_contact"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}

type childLinkRow struct {
	ID               string    `db:"id"`
	ChildID          string    `db:"child_id"`
	ParentID         string    `db:"parent_id"`
	RelationshipType string    `db:"relationship_type"`
	IsPrimary        bool      `db:"is_primary"`
	HasCustody       bool      `db:"has_custody"`
	CanPickup        bool      `db:"can_pickup"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}

func (repo parentRepository) toRow(p parent.Parent) parentRow {
	return parentRow{
		ID:               p.ID,
		FirstName:        p.FirstName,
		LastName:         p.LastName,
		Email:            p.Email,
		PhonePrimary:     p.PhonePrimary,
		PhoneSecondary:   p.PhoneSecondary,
		AddressStreet:    p.AddressStreet,
		AddressCity:      p.AddressCity,
		AddressState:     p.AddressState,
		AddressZip:       p.AddressZip,
		Employer:         p.Employer,
		WorkPhone:        p.WorkPhone,
		IsPrimaryContact: p.IsPrimaryContact,
		CreatedAt:        p.CreatedAt.UTC(),
		UpdatedAt:        p.UpdatedAt.UTC(),
	}
}

func (repo parentRepository) fromRow(row parentRow) parent.Parent {
	return parent.Parent{
		ID:               row.ID,
		FirstName:        row.FirstName,
		LastName:         row.LastName,
		Email:            row.Email,
		PhonePrimary:     row.PhonePrimary,
		PhoneSecondary:   row.PhoneSecondary,
		AddressStreet:    row.AddressStreet,
		AddressCity:      row.AddressCity,
		AddressState:     row.AddressState,
		AddressZip:       row.AddressZip,
		Employer:         row.Employer,
		WorkPhone:        row.WorkPhone,
		IsPrimaryContact: row.IsPrimaryContact,
		CreatedAt:        row.CreatedAt.UTC(),
		UpdatedAt:        row.UpdatedAt.UTC(),
	}
}

func (repo parentRepository) toLinkRow(link parent.ChildLink) childLinkRow {
	return childLinkRow{
		ID:               link.ID,
		ChildID:          link.ChildID,
		ParentID:         link.ParentID,
		RelationshipType: link.RelationshipType,
		IsPrimary:        link.IsPrimary,
		HasCustody:       link.HasCustody,
		CanPickup:        link.CanPickup,
		CreatedAt:        link.CreatedAt.UTC(),
		UpdatedAt:        link.UpdatedAt.UTC(),
	}
}

func (repo parentRepository) fromLinkRow(row childLinkRow) parent.ChildLink {
	return parent.ChildLink{
		ID:               row.ID,
		ChildID:          row.ChildID,
		ParentID:         row.ParentID,
		RelationshipType: row.RelationshipType,
		IsPrimary:        row.IsPrimary,
		HasCustody:       row.HasCustody,
		CanPickup:        row.CanPickup,
		CreatedAt:        row.CreatedAt.UTC(),
		UpdatedAt:        row.UpdatedAt.UTC(),
	}
}

func (repo parentRepository) trapNoRowsErr(err, notFound error, msg string) error {
	if err == sql.ErrNoRows {
		return notFound
	}
	return errors.Wrap(err, msg)
}

func (repo parentRepository) CreateParent(ctx context.Context, p parent.Parent) (parent.Parent, error) {
	p.ID = uuid.New().String()
	row := repo.toRow(p)
	query := `
		INSERT INTO parent (id, first_name, last_name, email, phone_primary, phone_secondary, address_street,
		                    address_city, address_state, address_zip, employer, work_phone, is_primary_contact,
		                    created_at, updated_at)
		VALUES (:id, :first_name, :last_name, :email, :phone_primary, :phone_secondary, :address_street,
		        :address_city, :address_state, :address_zip, :employer, :work_phone, :is_primary_contact,
		        :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, query, row); err != nil {
		return parent.Parent{}, errors.Wrap(err, "inserting parent")
	}
	return repo.fromRow(row), nil
}

func (repo parentRepository) GetParentByID(ctx context.Context, id string) (parent.Parent, error) {
	var row parentRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM parent WHERE id = $1`, id); err != nil {
		return parent.Parent{}, repo.trapNoRowsErr(err, parent.ErrNotFound, "getting parent")
	}
	return repo.fromRow(row), nil
}

func (repo parentRepository) FilterParents(ctx context.Context, filter parent.QueryFilter, page core.Pagination) ([]parent.Parent, int, error) {
	var conds []string
	var args []interface{}

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		p := fmt.Sprintf("$%d", len(args))
		conds = append(conds, fmt.Sprintf("(first_name ILIKE %[1]s OR last_name ILIKE %[1]s OR email ILIKE %[1]s)", p))
	}
	if filter.ChildID != "" {
		args = append(args, filter.ChildID)
		conds = append(conds, fmt.Sprintf("id IN (SELECT parent_id FROM child_parent WHERE child_id = $%d)", len(args)))
	}
	where := whereClause(conds)

	var total int
	if err := repo.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM parent`+where, args...); err != nil {
		return nil, 0, errors.Wrap(err, "counting parents")
	}

	page.Clamp()
	query := fmt.Sprintf(`SELECT * FROM parent%s ORDER BY last_name, first_name LIMIT %d OFFSET %d`, where, page.PageSize, page.Offset())
	var rows []parentRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, errors.Wrap(err, "filtering parents")
	}

	parents := make([]parent.Parent, 0, len(rows))
	for _, row := range rows {
		parents = append(parents, repo.fromRow(row))
	}
	return parents, total, nil
}

func (repo parentRepository) UpdateParent(ctx context.Context, p parent.Parent) (parent.Parent, error) {
	row := repo.toRow(p)
	query := `
		UPDATE parent
		SET first_name = :first_name, last_name = :last_name, email = :email, phone_primary = :phone_primary,
		    phone_secondary = :phone_secondary, address_street = :address_street, address_city = :address_city,
		    address_state = :address_state, address_zip = :address_zip, employer = :employer,
		    work_phone = :work_phone, is_primary_contact = :is_primary_contact, updated_at = :updated_at
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, query, row)
	if err != nil {
		return parent.Parent{}, errors.Wrap(err, "updating parent")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return parent.Parent{}, parent.ErrNotFound
	}
	return repo.fromRow(row), nil
}

func (repo parentRepository) DeleteParent(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM parent WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting parent")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return parent.ErrNotFound
	}
	return nil
}

func (repo parentRepository) CreateLink(ctx context.Context, link parent.ChildLink) (parent.ChildLink, error) {
	link.ID = uuid.New().String()
	row := repo.toLinkRow(link)
	query := `
		INSERT INTO child_parent (id, child_id, parent_id, relationship_type, is_primary, has_custody, can_pickup,
		                          created_at, updated_at)
		VALUES (:id, :child_id, :parent_id, :relationship_type, :is_primary, :has_custody, :can_pickup,
		        :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, query, row); err != nil {
		return parent.ChildLink{}, errors.Wrap(err, "inserting child link")
	}
	return repo.fromLinkRow(row), nil
}

func (repo parentRepository) GetLinkByID(ctx context.Context, id string) (parent.ChildLink, error) {
	var row childLinkRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM child_parent WHERE id = $1`, id); err != nil {
		return parent.ChildLink{}, repo.trapNoRowsErr(err, parent.ErrLinkNotFound, "getting child link")
	}
	return repo.fromLinkRow(row), nil
}

func (repo parentRepository) ListLinksByParent(ctx context.Context, parentID string) ([]parent.ChildLink, error) {
	var rows []childLinkRow
	query := `SELECT * FROM child_parent WHERE parent_id = $1 ORDER BY created_at`
	if err := repo.db.SelectContext(ctx, &rows, query, parentID); err != nil {
		return nil, errors.Wrap(err, "listing child links")
	}

	links := make([]parent.ChildLink, 0, len(rows))
	for _, row := range rows {
		links = append(links, repo.fromLinkRow(row))
	}
	return links, nil
}

func (repo parentRepository) DeleteLink(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM child_parent WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting child link")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return parent.ErrLinkNotFound
	}
	return nil
}
