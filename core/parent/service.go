package parent

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/bouncearound/daycare/core"
	"github.com/bouncearound/daycare/core/child"
)

var (
	// errors
	ErrNotFound     = errors.New("parent not found")
	ErrLinkNotFound = errors.New("child link not found")

	nowFunc = time.Now // mockable
)

type (
	Repository interface {
		CreateParent(ctx context.Context, p Parent) (Parent, error)
		GetParentByID(ctx context.Context, id string) (Parent, error)
		// FilterParents matches Search against names and email; ChildID
		// restricts to parents linked to that child.
		FilterParents(ctx context.Context, filter QueryFilter, page core.Pagination) ([]Parent, int, error)
		UpdateParent(ctx context.Context, p Parent) (Parent, error)
		DeleteParent(ctx context.Context, id string) error

		CreateLink(ctx context.Context, link ChildLink) (ChildLink, error)
		GetLinkByID(ctx context.Context, id string) (ChildLink, error)
		ListLinksByParent(ctx context.Context, parentID string) ([]ChildLink, error)
		DeleteLink(ctx context.Context, id string) error
	}

	// ChildDirectory is the slice of the child service this package needs.
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

func (svc *Service) Create(ctx context.Context, np NewParent) (Parent, error) {
	now := nowFunc().UTC()
	p := Parent{
		FirstName:        np.FirstName,
		LastName:         np.LastName,
		Email:            np.Email,
		PhonePrimary:     np.PhonePrimary,
		PhoneSecondary:   np.PhoneSecondary,
		AddressStreet:    np.AddressStreet,
		AddressCity:      np.AddressCity,
		AddressState:     np.AddressState,
		AddressZip:       np.AddressZip,
		Employer:         np.Employer,
		WorkPhone:        np.WorkPhone,
		IsPrimaryContact: np.IsPrimaryContact,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	return svc.repo.CreateParent(ctx, p)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Parent, error) {
	return svc.repo.GetParentByID(ctx, id)
}

func (svc *Service) Filter(ctx context.Context, filter QueryFilter, page core.Pagination) ([]Parent, int, error) {
	return svc.repo.FilterParents(ctx, filter, page)
}

func (svc *Service) Update(ctx context.Context, id string, up UpdateParent) (Parent, error) {
	p, err := svc.repo.GetParentByID(ctx, id)
	if err != nil {
		return Parent{}, err
	}

	if up.FirstName != "" {
		p.FirstName = up.FirstName
	}
	if up.LastName != "" {
		p.LastName = up.LastName
	}
	if up.Email != "" {
		p.Email = up.Email
	}
	if up.PhonePrimary != "" {
		p.PhonePrimary = up.PhonePrimary
	}
	if up.PhoneSecondary != "" {
		p.PhoneSecondary = up.PhoneSecondary
	}
	if up.AddressStreet != nil {
		p.AddressStreet = *up.AddressStreet
	}
	if up.AddressCity != nil {
		p.AddressCity = *up.AddressCity
	}
	if up.AddressState != "" {
		p.AddressState = up.AddressState
	}
	if up.AddressZip != nil {
		p.AddressZip = *up.AddressZip
	}
	if up.Employer != nil {
		p.Employer = *up.Employer
	}
	if up.WorkPhone != nil {
		p.WorkPhone = *up.WorkPhone
	}
	if up.IsPrimaryContact != nil {
		p.IsPrimaryContact = *up.IsPrimaryContact
	}

	p.UpdatedAt = nowFunc().UTC()
	return svc.repo.UpdateParent(ctx, p)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	if _, err := svc.repo.GetParentByID(ctx, id); err != nil {
		return err
	}
	return svc.repo.DeleteParent(ctx, id)
}

// LinkChild associates a parent with a child; one link per pair.
func (svc *Service) LinkChild(ctx context.Context, parentID string, nl NewChildLink) (ChildLink, error) {
	if _, err := svc.repo.GetParentByID(ctx, parentID); err != nil {
		return ChildLink{}, err
	}
	if _, err := svc.children.GetChild(ctx, nl.ChildID); err != nil {
		return ChildLink{}, err
	}

	links, err := svc.repo.ListLinksByParent(ctx, parentID)
	if err != nil {
		return ChildLink{}, errors.Wrap(err, "listing child links")
	}
	for _, l := range links {
		if l.ChildID == nl.ChildID {
			return ChildLink{}, core.NewConflictError("this parent is already linked to this child")
		}
	}

	hasCustody, canPickup := true, true
	if nl.HasCustody != nil {
		hasCustody = *nl.HasCustody
	}
	if nl.CanPickup != nil {
		canPickup = *nl.CanPickup
	}

	now := nowFunc().UTC()
	link := ChildLink{
		ChildID:          nl.ChildID,
		ParentID:         parentID,
		RelationshipType: nl.RelationshipType,
		IsPrimary:        nl.IsPrimary,
		HasCustody:       hasCustody,
		CanPickup:        canPickup,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	return svc.repo.CreateLink(ctx, link)
}

func (svc *Service) ListChildLinks(ctx context.Context, parentID string) ([]ChildLink, error) {
	if _, err := svc.repo.GetParentByID(ctx, parentID); err != nil {
		return nil, err
	}
	return svc.repo.ListLinksByParent(ctx, parentID)
}

func (svc *Service) UnlinkChild(ctx context.Context, parentID, linkID string) error {
	link, err := svc.repo.GetLinkByID(ctx, linkID)
	if err != nil {
		return err
	}
	if link.ParentID != parentID {
		return ErrLinkNotFound
	}
	return svc.repo.DeleteLink(ctx, linkID)
}
