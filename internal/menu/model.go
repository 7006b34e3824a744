package menu

// Menu is a store's menu tree in one language: categories with their
// items, plus the store's option groups. This is the snapshot the
// import comparison runs against.
type Menu struct {
	Categories   []Category    `json:"categories"`
	OptionGroups []OptionGroup `json:"option_groups"`
}

type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Items       []Item `json:"items"`
}

type Item struct {
	ID          string   `json:"id"`
	CategoryID  string   `json:"category_id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	PriceCents  int      `json:"price_cents"`
	Allergens   []string `json:"allergens,omitempty"`
}

type OptionGroup struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Type    string   `json:"type"` // single | multiple
	Choices []Choice `json:"choices"`
}

type Choice struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	PriceModifierCents int    `json:"price_modifier_cents"`
}

// --------------------------------------------------
// Mutation inputs (used by the import apply step)
// --------------------------------------------------

type CategoryInput struct {
	Name        string
	Description string
}

// CategoryPatch updates only non-nil fields on the target category's
// translation row for one language.
type CategoryPatch struct {
	Name        *string
	Description *string
}

type ItemInput struct {
	Name        string
	Description string
	PriceCents  int
	Allergens   []string
}

type ItemPatch struct {
	Name        *string
	Description *string
	PriceCents  *int
	Allergens   *[]string
}

type OptionGroupInput struct {
	Name    string
	Type    string
	Choices []ChoiceInput
}

// OptionGroupPatch replaces choices wholesale when Choices is non-nil;
// there is no per-choice diffing.
type OptionGroupPatch struct {
	Name    *string
	Type    *string
	Choices *[]ChoiceInput
}

type ChoiceInput struct {
	Name               string
	PriceModifierCents int
}
