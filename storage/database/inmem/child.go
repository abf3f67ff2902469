package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/bouncearound/daycare/core"
	"github.com/bouncearound/daycare/core/child"
)

type childRepository struct {
	db *DB
}

var _ child.Repository = (*childRepository)(nil)

func NewChildRepository(db *DB) *childRepository {
	return &childRepository{db: db}
}

func (repo *childRepository) query() []child.Child {
	children := make([]child.Child, 0, len(repo.db.children))
	for _, c := range repo.db.children {
		children = append(children, *c)
	}
	sort.Slice(children, func(i, j int) bool {
		if children[i].LastName != children[j].LastName {
			return children[i].LastName < children[j].LastName
		}
		return children[i].FirstName < children[j].FirstName
	})
	return children
}

func (repo *childRepository) CreateChild(ctx context.Context, c child.Child) (child.Child, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	c.ID = uuid.New().String()
	repo.db.children[c.ID] = &c
	return c, nil
}

func (repo *childRepository) GetChildByID(ctx context.Context, id string) (child.Child, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if c, ok := repo.db.children[id]; ok {
		return *c, nil
	}
	return child.Child{}, child.ErrNotFound
}

func (repo *childRepository) FilterChildren(ctx context.Context, filter child.QueryFilter, page core.Pagination) ([]child.Child, int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var matches []child.Child
	search := strings.ToLower(filter.Search)
	for _, c := range repo.query() {
		if search != "" &&
			!strings.Contains(strings.ToLower(c.FirstName), search) &&
			!strings.Contains(strings.ToLower(c.LastName), search) {
			continue
		}
		if filter.IsActive != nil && c.IsActive != *filter.IsActive {
			continue
		}
		matches = append(matches, c)
	}

	page.Clamp()
	items, total := core.Paginate(matches, page)
	return items, total, nil
}

func (repo *childRepository) UpdateChild(ctx context.Context, c child.Child) (child.Child, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.children[c.ID]; !ok {
		return child.Child{}, child.ErrNotFound
	}
	repo.db.children[c.ID] = &c
	return c, nil
}

func (repo *childRepository) DeleteChild(ctx context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.children[id]; !ok {
		return child.ErrNotFound
	}
	delete(repo.db.children, id)
	for cid, ec := range repo.db.contacts {
		if ec.ChildID == id {
			delete(repo.db.contacts, cid)
		}
	}
	for pid, ap := range repo.db.pickups {
		if ap.ChildID == id {
			delete(repo.db.pickups, pid)
		}
	}
	return nil
}

func (repo *childRepository) CreateContact(ctx context.Context, ec child.EmergencyContact) (child.EmergencyContact, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	ec.ID = uuid.New().String()
	repo.db.contacts[ec.ID] = &ec
	return ec, nil
}

func (repo *childRepository) GetContactByID(ctx context.Context, id string) (child.EmergencyContact, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if ec, ok := repo.db.contacts[id]; ok {
		return *ec, nil
	}
	return child.EmergencyContact{}, child.ErrContactNotFound
}

func (repo *childRepository) ListContacts(ctx context.Context, childID string) ([]child.EmergencyContact, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	contacts := make([]child.EmergencyContact, 0)
	for _, ec := range repo.db.contacts {
		if ec.ChildID == childID {
			contacts = append(contacts, *ec)
		}
	}
	sort.Slice(contacts, func(i, j int) bool { return contacts[i].PriorityOrder < contacts[j].PriorityOrder })
	return contacts, nil
}

func (repo *childRepository) UpdateContact(ctx context.Context, ec child.EmergencyContact) (child.EmergencyContact, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.contacts[ec.ID]; !ok {
		return child.EmergencyContact{}, child.ErrContactNotFound
	}
	repo.db.contacts[ec.ID] = &ec
	return ec, nil
}

func (repo *childRepository) DeleteContact(ctx context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.contacts[id]; !ok {
		return child.ErrContactNotFound
	}
	delete(repo.db.contacts, id)
	return nil
}

func (repo *childRepository) CreatePickup(ctx context.Context, ap child.AuthorizedPickup) (child.AuthorizedPickup, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	ap.ID = uuid.New().String()
	repo.db.pickups[ap.ID] = &ap
	return ap, nil
}

func (repo *childRepository) GetPickupByID(ctx context.Context, id string) (child.AuthorizedPickup, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if ap, ok := repo.db.pickups[id]; ok {
		return *ap, nil
	}
	return child.AuthorizedPickup{}, child.ErrPickupNotFound
}

func (repo *childRepository) ListPickups(ctx context.Context, childID string) ([]child.AuthorizedPickup, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	pickups := make([]child.AuthorizedPickup, 0)
	for _, ap := range repo.db.pickups {
		if ap.ChildID == childID {
			pickups = append(pickups, *ap)
		}
	}
	sort.Slice(pickups, func(i, j int) bool { return pickups[i].Name < pickups[j].Name })
	return pickups, nil
}

func (repo *childRepository) UpdatePickup(ctx context.Context, ap child.AuthorizedPickup) (child.AuthorizedPickup, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.pickups[ap.ID]; !ok {
		return child.AuthorizedPickup{}, child.ErrPickupNotFound
	}
	repo.db.pickups[ap.ID] = &ap
	return ap, nil
}

func (repo *childRepository) DeletePickup(ctx context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.pickups[id]; !ok {
		return child.ErrPickupNotFound
	}
	delete(repo.db.pickups, id)
	return nil
}
