package extraction

// ExtractedMenu is the normalized result of one extraction run.
// It is single-language (the store's default language) and carries
// no identity beyond names — matching against existing records
// happens later, in the importer.
type ExtractedMenu struct {
	Categories   []ExtractedCategory    `json:"categories"`
	OptionGroups []ExtractedOptionGroup `json:"option_groups"`
}

type ExtractedCategory struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Items       []ExtractedItem `json:"items"`
}

type ExtractedItem struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	PriceCents  int      `json:"price_cents"`
	Allergens   []string `json:"allergens,omitempty"`
	// CategoryName ties the item back to its category when the
	// extractor emits a flat item list.
	CategoryName string `json:"category_name,omitempty"`
}

type ExtractedOptionGroup struct {
	Name    string            `json:"name"`
	Type    string            `json:"type"` // single | multiple
	Choices []ExtractedChoice `json:"choices"`
}

type ExtractedChoice struct {
	Name               string `json:"name"`
	PriceModifierCents int    `json:"price_modifier_cents"`
}
