package menu

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// --------------------------------------------------
// READ: FULL MENU TREE (ONE LANGUAGE)
// --------------------------------------------------
func (r *PostgresRepository) GetMenu(
	ctx context.Context,
	storeID, language string,
) (*Menu, error) {

	menu := &Menu{}

	rows, err := r.db.Query(ctx, `
		SELECT c.id, COALESCE(t.name, ''), COALESCE(t.description, '')
		FROM categories c
		LEFT JOIN category_translations t
		       ON t.category_id = c.id AND t.language = $2
		WHERE c.store_id = $1
		ORDER BY c.display_order, c.created_at
	`, storeID, language)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := make(map[string]int)
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description); err != nil {
			return nil, err
		}
		menu.Categories = append(menu.Categories, c)
		byID[c.ID] = len(menu.Categories) - 1
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	itemRows, err := r.db.Query(ctx, `
		SELECT i.id, i.category_id,
		       COALESCE(t.name, ''), COALESCE(t.description, ''),
		       i.price_cents, i.allergens
		FROM items i
		LEFT JOIN item_translations t
		       ON t.item_id = i.id AND t.language = $2
		WHERE i.store_id = $1
		ORDER BY i.display_order, i.created_at
	`, storeID, language)
	if err != nil {
		return nil, err
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var it Item
		if err := itemRows.Scan(
			&it.ID, &it.CategoryID,
			&it.Name, &it.Description,
			&it.PriceCents, &it.Allergens,
		); err != nil {
			return nil, err
		}
		if pos, ok := byID[it.CategoryID]; ok {
			menu.Categories[pos].Items = append(menu.Categories[pos].Items, it)
		}
	}
	if err := itemRows.Err(); err != nil {
		return nil, err
	}

	groups, err := r.loadOptionGroups(ctx, storeID, language)
	if err != nil {
		return nil, err
	}
	menu.OptionGroups = groups

	return menu, nil
}

func (r *PostgresRepository) loadOptionGroups(
	ctx context.Context,
	storeID, language string,
) ([]OptionGroup, error) {

	rows, err := r.db.Query(ctx, `
		SELECT g.id, COALESCE(t.name, ''), g.group_type
		FROM option_groups g
		LEFT JOIN option_group_translations t
		       ON t.option_group_id = g.id AND t.language = $2
		WHERE g.store_id = $1
		ORDER BY g.created_at
	`, storeID, language)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []OptionGroup
	byID := make(map[string]int)
	for rows.Next() {
		var g OptionGroup
		if err := rows.Scan(&g.ID, &g.Name, &g.Type); err != nil {
			return nil, err
		}
		groups = append(groups, g)
		byID[g.ID] = len(groups) - 1
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(groups) == 0 {
		return nil, nil
	}

	choiceRows, err := r.db.Query(ctx, `
		SELECT ch.id, ch.option_group_id, ch.name, ch.price_modifier_cents
		FROM option_choices ch
		JOIN option_groups g ON g.id = ch.option_group_id
		WHERE g.store_id = $1
		ORDER BY ch.display_order, ch.created_at
	`, storeID)
	if err != nil {
		return nil, err
	}
	defer choiceRows.Close()

	for choiceRows.Next() {
		var (
			ch      Choice
			groupID string
		)
		if err := choiceRows.Scan(&ch.ID, &groupID, &ch.Name, &ch.PriceModifierCents); err != nil {
			return nil, err
		}
		if pos, ok := byID[groupID]; ok {
			groups[pos].Choices = append(groups[pos].Choices, ch)
		}
	}
	if err := choiceRows.Err(); err != nil {
		return nil, err
	}

	return groups, nil
}

// --------------------------------------------------
// TRANSACTIONAL MUTATIONS
// --------------------------------------------------
func (r *PostgresRepository) InTx(
	ctx context.Context,
	fn func(tx Tx) error,
) error {

	pgtx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer pgtx.Rollback(ctx)

	if err := fn(&postgresTx{tx: pgtx}); err != nil {
		return err
	}

	return pgtx.Commit(ctx)
}

type postgresTx struct {
	tx pgx.Tx
}

func (t *postgresTx) CreateCategory(
	ctx context.Context,
	storeID, language string,
	in CategoryInput,
) (string, error) {

	id := uuid.New().String()

	_, err := t.tx.Exec(ctx, `
		INSERT INTO categories (id, store_id, display_order, created_at, updated_at)
		VALUES (
			$1, $2,
			(SELECT COALESCE(MAX(display_order), 0) + 1 FROM categories WHERE store_id = $2),
			now(), now()
		)
	`, id, storeID)
	if err != nil {
		return "", err
	}

	_, err = t.tx.Exec(ctx, `
		INSERT INTO category_translations (category_id, language, name, description)
		VALUES ($1, $2, $3, $4)
	`, id, language, in.Name, in.Description)
	if err != nil {
		return "", err
	}

	return id, nil
}

func (t *postgresTx) UpdateCategory(
	ctx context.Context,
	storeID, categoryID, language string,
	patch CategoryPatch,
) error {

	// Re-validate the row still exists in this store; the comparison
	// snapshot may be stale by the time the merchant applies it.
	cmd, err := t.tx.Exec(ctx, `
		UPDATE categories
		SET updated_at = now()
		WHERE id = $1 AND store_id = $2
	`, categoryID, storeID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}

	// Only the one language's translation slot is touched; other
	// languages keep their existing rows.
	_, err = t.tx.Exec(ctx, `
		INSERT INTO category_translations (category_id, language, name, description)
		VALUES ($1, $2, COALESCE($3, ''), COALESCE($4, ''))
		ON CONFLICT (category_id, language) DO UPDATE SET
			name        = COALESCE($3, category_translations.name),
			description = COALESCE($4, category_translations.description)
	`, categoryID, language, patch.Name, patch.Description)

	return err
}

func (t *postgresTx) CreateItem(
	ctx context.Context,
	storeID, categoryID, language string,
	in ItemInput,
) (string, error) {

	id := uuid.New().String()

	cmd, err := t.tx.Exec(ctx, `
		INSERT INTO items (id, category_id, store_id, price_cents, allergens, display_order, created_at, updated_at)
		SELECT $1, $2, $3, $4, $5,
		       (SELECT COALESCE(MAX(display_order), 0) + 1 FROM items WHERE category_id = $2),
		       now(), now()
		WHERE EXISTS (SELECT 1 FROM categories WHERE id = $2 AND store_id = $3)
	`, id, categoryID, storeID, in.PriceCents, in.Allergens)
	if err != nil {
		return "", err
	}
	if cmd.RowsAffected() == 0 {
		return "", ErrNotFound
	}

	_, err = t.tx.Exec(ctx, `
		INSERT INTO item_translations (item_id, language, name, description)
		VALUES ($1, $2, $3, $4)
	`, id, language, in.Name, in.Description)
	if err != nil {
		return "", err
	}

	return id, nil
}

func (t *postgresTx) UpdateItem(
	ctx context.Context,
	storeID, itemID, language string,
	patch ItemPatch,
) error {

	var allergens any
	if patch.Allergens != nil {
		allergens = *patch.Allergens
	}

	cmd, err := t.tx.Exec(ctx, `
		UPDATE items
		SET price_cents = COALESCE($3, price_cents),
		    allergens   = COALESCE($4, allergens),
		    updated_at  = now()
		WHERE id = $1 AND store_id = $2
	`, itemID, storeID, patch.PriceCents, allergens)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}

	_, err = t.tx.Exec(ctx, `
		INSERT INTO item_translations (item_id, language, name, description)
		VALUES ($1, $2, COALESCE($3, ''), COALESCE($4, ''))
		ON CONFLICT (item_id, language) DO UPDATE SET
			name        = COALESCE($3, item_translations.name),
			description = COALESCE($4, item_translations.description)
	`, itemID, language, patch.Name, patch.Description)

	return err
}

func (t *postgresTx) CreateOptionGroup(
	ctx context.Context,
	storeID, language string,
	in OptionGroupInput,
) (string, error) {

	id := uuid.New().String()

	_, err := t.tx.Exec(ctx, `
		INSERT INTO option_groups (id, store_id, group_type, created_at, updated_at)
		VALUES ($1, $2, $3, now(), now())
	`, id, storeID, in.Type)
	if err != nil {
		return "", err
	}

	_, err = t.tx.Exec(ctx, `
		INSERT INTO option_group_translations (option_group_id, language, name)
		VALUES ($1, $2, $3)
	`, id, language, in.Name)
	if err != nil {
		return "", err
	}

	if err := t.insertChoices(ctx, id, in.Choices); err != nil {
		return "", err
	}

	return id, nil
}

func (t *postgresTx) UpdateOptionGroup(
	ctx context.Context,
	storeID, groupID, language string,
	patch OptionGroupPatch,
) error {

	cmd, err := t.tx.Exec(ctx, `
		UPDATE option_groups
		SET group_type = COALESCE($3, group_type),
		    updated_at = now()
		WHERE id = $1 AND store_id = $2
	`, groupID, storeID, patch.Type)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}

	if patch.Name != nil {
		_, err = t.tx.Exec(ctx, `
			INSERT INTO option_group_translations (option_group_id, language, name)
			VALUES ($1, $2, $3)
			ON CONFLICT (option_group_id, language) DO UPDATE SET
				name = $3
		`, groupID, language, *patch.Name)
		if err != nil {
			return err
		}
	}

	// Choices are replaced wholesale, never element-diffed.
	if patch.Choices != nil {
		_, err = t.tx.Exec(ctx, `
			DELETE FROM option_choices WHERE option_group_id = $1
		`, groupID)
		if err != nil {
			return err
		}
		if err := t.insertChoices(ctx, groupID, *patch.Choices); err != nil {
			return err
		}
	}

	return nil
}

func (t *postgresTx) insertChoices(
	ctx context.Context,
	groupID string,
	choices []ChoiceInput,
) error {

	for i, ch := range choices {
		_, err := t.tx.Exec(ctx, `
			INSERT INTO option_choices (id, option_group_id, name, price_modifier_cents, display_order, created_at)
			VALUES ($1, $2, $3, $4, $5, now())
		`, uuid.New().String(), groupID, ch.Name, ch.PriceModifierCents, i+1)
		if err != nil {
			return err
		}
	}
	return nil
}
