package menu

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// InMemoryRepository backs tests and local development. InTx stages
// all mutations on a deep copy and only publishes them when the
// callback succeeds, mirroring the Postgres transaction contract.
type InMemoryRepository struct {
	mu     sync.Mutex
	stores map[string]*memStore

	itemCreateErr map[string]error
}

type memTranslation struct {
	name        string
	description string
}

type memCategory struct {
	id    string
	order int
	tr    map[string]memTranslation
}

type memItem struct {
	id         string
	categoryID string
	priceCents int
	allergens  []string
	order      int
	tr         map[string]memTranslation
}

type memGroup struct {
	id        string
	groupType string
	tr        map[string]memTranslation
	choices   []ChoiceInput
}

type memStore struct {
	categories []*memCategory
	items      []*memItem
	groups     []*memGroup
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		stores:        make(map[string]*memStore),
		itemCreateErr: make(map[string]error),
	}
}

// FailItemCreate makes the next CreateItem for the named item return
// err, simulating a mid-transaction write failure.
func (r *InMemoryRepository) FailItemCreate(name string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.itemCreateErr[name] = err
}

func (r *InMemoryRepository) GetMenu(
	ctx context.Context,
	storeID, language string,
) (*Menu, error) {

	r.mu.Lock()
	defer r.mu.Unlock()

	st, ok := r.stores[storeID]
	if !ok {
		return &Menu{}, nil
	}

	menu := &Menu{}
	for _, c := range st.categories {
		tr := c.tr[language]
		cat := Category{
			ID:          c.id,
			Name:        tr.name,
			Description: tr.description,
		}
		for _, it := range st.items {
			if it.categoryID != c.id {
				continue
			}
			itr := it.tr[language]
			cat.Items = append(cat.Items, Item{
				ID:          it.id,
				CategoryID:  it.categoryID,
				Name:        itr.name,
				Description: itr.description,
				PriceCents:  it.priceCents,
				Allergens:   append([]string(nil), it.allergens...),
			})
		}
		menu.Categories = append(menu.Categories, cat)
	}

	for _, g := range st.groups {
		tr := g.tr[language]
		group := OptionGroup{
			ID:   g.id,
			Name: tr.name,
			Type: g.groupType,
		}
		for _, ch := range g.choices {
			group.Choices = append(group.Choices, Choice{
				ID:                 g.id + "/" + ch.Name,
				Name:               ch.Name,
				PriceModifierCents: ch.PriceModifierCents,
			})
		}
		menu.OptionGroups = append(menu.OptionGroups, group)
	}

	return menu, nil
}

func (r *InMemoryRepository) InTx(
	ctx context.Context,
	fn func(tx Tx) error,
) error {

	r.mu.Lock()
	defer r.mu.Unlock()

	staged := make(map[string]*memStore, len(r.stores))
	for id, st := range r.stores {
		staged[id] = st.clone()
	}

	tx := &memTx{repo: r, stores: staged}
	if err := fn(tx); err != nil {
		return err
	}

	r.stores = staged
	return nil
}

// --------------------------------------------------
// Seed helpers (tests set up existing menus with these)
// --------------------------------------------------

func (r *InMemoryRepository) SeedCategory(storeID, language string, in CategoryInput) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	st := r.store(storeID)
	c := &memCategory{
		id:    uuid.New().String(),
		order: len(st.categories) + 1,
		tr:    map[string]memTranslation{language: {in.Name, in.Description}},
	}
	st.categories = append(st.categories, c)
	return c.id
}

func (r *InMemoryRepository) SeedItem(storeID, categoryID, language string, in ItemInput) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	st := r.store(storeID)
	it := &memItem{
		id:         uuid.New().String(),
		categoryID: categoryID,
		priceCents: in.PriceCents,
		allergens:  append([]string(nil), in.Allergens...),
		order:      len(st.items) + 1,
		tr:         map[string]memTranslation{language: {in.Name, in.Description}},
	}
	st.items = append(st.items, it)
	return it.id
}

func (r *InMemoryRepository) SeedOptionGroup(storeID, language string, in OptionGroupInput) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	st := r.store(storeID)
	g := &memGroup{
		id:        uuid.New().String(),
		groupType: in.Type,
		tr:        map[string]memTranslation{language: {name: in.Name}},
		choices:   append([]ChoiceInput(nil), in.Choices...),
	}
	st.groups = append(st.groups, g)
	return g.id
}

// RemoveCategory simulates a concurrent deletion between comparison
// and apply.
func (r *InMemoryRepository) RemoveCategory(storeID, categoryID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	st := r.store(storeID)
	kept := st.categories[:0]
	for _, c := range st.categories {
		if c.id != categoryID {
			kept = append(kept, c)
		}
	}
	st.categories = kept
}

func (r *InMemoryRepository) store(storeID string) *memStore {
	st, ok := r.stores[storeID]
	if !ok {
		st = &memStore{}
		r.stores[storeID] = st
	}
	return st
}

func (s *memStore) clone() *memStore {
	out := &memStore{}
	for _, c := range s.categories {
		cc := *c
		cc.tr = cloneTranslations(c.tr)
		out.categories = append(out.categories, &cc)
	}
	for _, it := range s.items {
		ii := *it
		ii.tr = cloneTranslations(it.tr)
		ii.allergens = append([]string(nil), it.allergens...)
		out.items = append(out.items, &ii)
	}
	for _, g := range s.groups {
		gg := *g
		gg.tr = cloneTranslations(g.tr)
		gg.choices = append([]ChoiceInput(nil), g.choices...)
		out.groups = append(out.groups, &gg)
	}
	return out
}

func cloneTranslations(tr map[string]memTranslation) map[string]memTranslation {
	out := make(map[string]memTranslation, len(tr))
	for k, v := range tr {
		out[k] = v
	}
	return out
}

// --------------------------------------------------
// Staged transaction
// --------------------------------------------------

type memTx struct {
	repo   *InMemoryRepository
	stores map[string]*memStore
}

func (t *memTx) store(storeID string) *memStore {
	st, ok := t.stores[storeID]
	if !ok {
		st = &memStore{}
		t.stores[storeID] = st
	}
	return st
}

func (t *memTx) CreateCategory(
	ctx context.Context,
	storeID, language string,
	in CategoryInput,
) (string, error) {

	st := t.store(storeID)
	c := &memCategory{
		id:    uuid.New().String(),
		order: len(st.categories) + 1,
		tr:    map[string]memTranslation{language: {in.Name, in.Description}},
	}
	st.categories = append(st.categories, c)
	return c.id, nil
}

func (t *memTx) UpdateCategory(
	ctx context.Context,
	storeID, categoryID, language string,
	patch CategoryPatch,
) error {

	for _, c := range t.store(storeID).categories {
		if c.id != categoryID {
			continue
		}
		tr := c.tr[language]
		if patch.Name != nil {
			tr.name = *patch.Name
		}
		if patch.Description != nil {
			tr.description = *patch.Description
		}
		c.tr[language] = tr
		return nil
	}
	return ErrNotFound
}

func (t *memTx) CreateItem(
	ctx context.Context,
	storeID, categoryID, language string,
	in ItemInput,
) (string, error) {

	if err, ok := t.repo.itemCreateErr[in.Name]; ok {
		return "", err
	}

	st := t.store(storeID)

	found := false
	for _, c := range st.categories {
		if c.id == categoryID {
			found = true
			break
		}
	}
	if !found {
		return "", ErrNotFound
	}

	it := &memItem{
		id:         uuid.New().String(),
		categoryID: categoryID,
		priceCents: in.PriceCents,
		allergens:  append([]string(nil), in.Allergens...),
		order:      len(st.items) + 1,
		tr:         map[string]memTranslation{language: {in.Name, in.Description}},
	}
	st.items = append(st.items, it)
	return it.id, nil
}

func (t *memTx) UpdateItem(
	ctx context.Context,
	storeID, itemID, language string,
	patch ItemPatch,
) error {

	for _, it := range t.store(storeID).items {
		if it.id != itemID {
			continue
		}
		tr := it.tr[language]
		if patch.Name != nil {
			tr.name = *patch.Name
		}
		if patch.Description != nil {
			tr.description = *patch.Description
		}
		it.tr[language] = tr
		if patch.PriceCents != nil {
			it.priceCents = *patch.PriceCents
		}
		if patch.Allergens != nil {
			it.allergens = append([]string(nil), (*patch.Allergens)...)
		}
		return nil
	}
	return ErrNotFound
}

func (t *memTx) CreateOptionGroup(
	ctx context.Context,
	storeID, language string,
	in OptionGroupInput,
) (string, error) {

	st := t.store(storeID)
	g := &memGroup{
		id:        uuid.New().String(),
		groupType: in.Type,
		tr:        map[string]memTranslation{language: {name: in.Name}},
		choices:   append([]ChoiceInput(nil), in.Choices...),
	}
	st.groups = append(st.groups, g)
	return g.id, nil
}

func (t *memTx) UpdateOptionGroup(
	ctx context.Context,
	storeID, groupID, language string,
	patch OptionGroupPatch,
) error {

	for _, g := range t.store(storeID).groups {
		if g.id != groupID {
			continue
		}
		if patch.Name != nil {
			tr := g.tr[language]
			tr.name = *patch.Name
			g.tr[language] = tr
		}
		if patch.Type != nil {
			g.groupType = *patch.Type
		}
		if patch.Choices != nil {
			g.choices = append([]ChoiceInput(nil), (*patch.Choices)...)
		}
		return nil
	}
	return ErrNotFound
}
