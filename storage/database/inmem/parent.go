package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/bouncearound/daycare/core"
	"github.com/bouncearound/daycare/core/parent"
)

type parentRepository struct {
	db *DB
}

var _ parent.Repository = (*parentRepository)(nil)

func NewParentRepository(db *DB) *parentRepository {
	return &parentRepository{db: db}
}

func (repo *parentRepository) query() []parent.Parent {
	parents := make([]parent.Parent, 0, len(repo.db.parents))
	for _, p := range repo.db.parents {
		parents = append(parents, *p)
	}
	sort.Slice(parents, func(i, j int) bool {
		if parents[i].LastName != parents[j].LastName {
			return parents[i].LastName < parents[j].LastName
		}
		return parents[i].FirstName < parents[j].FirstName
	})
	return parents
}

func (repo *parentRepository) CreateParent(ctx context.Context, p parent.Parent) (parent.Parent, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	p.ID = uuid.New().String()
	repo.db.parents[p.ID] = &p
	return p, nil
}

func (repo *parentRepository) GetParentByID(ctx context.Context, id string) (parent.Parent, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if p, ok := repo.db.parents[id]; ok {
		return *p, nil
	}
	return parent.Parent{}, parent.ErrNotFound
}

func (repo *parentRepository) FilterParents(ctx context.Context, filter parent.QueryFilter, page core.Pagination) ([]parent.Parent, int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	linked := make(map[string]bool)
	if filter.ChildID != "" {
		for _, link := range repo.db.links {
			if link.ChildID == filter.ChildID {
				linked[link.ParentID] = true
			}
		}
	}

	var matches []parent.Parent
	search := strings.ToLower(filter.Search)
	for _, p := range repo.query() {
		if search != "" &&
			!strings.Contains(strings.ToLower(p.FirstName), search) &&
			!strings.Contains(strings.ToLower(p.LastName), search) &&
			!strings.Contains(strings.ToLower(p.Email), search) {
			continue
		}
		if filter.ChildID != "" && !linked[p.ID] {
			continue
		}
		matches = append(matches, p)
	}

	page.Clamp()
	items, total := core.Paginate(matches, page)
	return items, total, nil
}

func (repo *parentRepository) UpdateParent(ctx context.Context, p parent.Parent) (parent.Parent, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.parents[p.ID]; !ok {
		return parent.Parent{}, parent.ErrNotFound
	}
	repo.db.parents[p.ID] = &p
	return p, nil
}

func (repo *parentRepository) DeleteParent(ctx context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.parents[id]; !ok {
		return parent.ErrNotFound
	}
	delete(repo.db.parents, id)
	for lid, link := range repo.db.links {
		if link.ParentID == id {
			delete(repo.db.links, lid)
		}
	}
	return nil
}

func (repo *parentRepository) CreateLink(ctx context.Context, link parent.ChildLink) (parent.ChildLink, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	link.ID = uuid.New().String()
	repo.db.links[link.ID] = &link
	return link, nil
}

func (repo *parentRepository) GetLinkByID(ctx context.Context, id string) (parent.ChildLink, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if link, ok := repo.db.links[id]; ok {
		return *link, nil
	}
	return parent.ChildLink{}, parent.ErrLinkNotFound
}

func (repo *parentRepository) ListLinksByParent(ctx context.Context, parentID string) ([]parent.ChildLink, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	links := make([]parent.ChildLink, 0)
	for _, link := range repo.db.links {
		if link.ParentID == parentID {
			links = append(links, *link)
		}
	}
	sort.Slice(links, func(i, j int) bool { return links[i].CreatedAt.Before(links[j].CreatedAt) })
	return links, nil
}

func (repo *parentRepository) DeleteLink(ctx context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.links[id]; !ok {
		return parent.ErrLinkNotFound
	}
	delete(repo.db.links, id)
	return nil
}
