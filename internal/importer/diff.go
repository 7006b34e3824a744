package importer

import (
	"strings"

	"menuvo/internal/extraction"
	"menuvo/internal/menu"
)

// The diff engine computes {action, changes} for one extracted entity
// against its matched existing record. Field rules:
//   - strings compare trimmed, case-sensitive
//   - prices compare as integer cents, no tolerance
//   - arrays (allergens, choices) compare as sets; a change reports
//     the whole new array, never an element-level diff

func diffCategory(extracted extraction.ExtractedCategory, existing *menu.Category) (DiffAction, []FieldChange) {
	if existing == nil {
		return ActionCreate, nil
	}

	var changes []FieldChange
	if c, ok := diffString("name", existing.Name, extracted.Name); ok {
		changes = append(changes, c)
	}
	if c, ok := diffString("description", existing.Description, extracted.Description); ok {
		changes = append(changes, c)
	}

	if len(changes) == 0 {
		return ActionSkip, nil
	}
	return ActionUpdate, changes
}

func diffItem(extracted extraction.ExtractedItem, existing *menu.Item) (DiffAction, []FieldChange) {
	if existing == nil {
		return ActionCreate, nil
	}

	var changes []FieldChange
	if c, ok := diffString("name", existing.Name, extracted.Name); ok {
		changes = append(changes, c)
	}
	if c, ok := diffString("description", existing.Description, extracted.Description); ok {
		changes = append(changes, c)
	}
	if existing.PriceCents != extracted.PriceCents {
		changes = append(changes, FieldChange{
			Field:  "price",
			Before: existing.PriceCents,
			After:  extracted.PriceCents,
		})
	}
	if !stringSetEqual(existing.Allergens, extracted.Allergens) {
		changes = append(changes, FieldChange{
			Field:  "allergens",
			Before: existing.Allergens,
			After:  extracted.Allergens,
		})
	}

	if len(changes) == 0 {
		return ActionSkip, nil
	}
	return ActionUpdate, changes
}

func diffOptionGroup(extracted extraction.ExtractedOptionGroup, existing *menu.OptionGroup) (DiffAction, []FieldChange) {
	if existing == nil {
		return ActionCreate, nil
	}

	var changes []FieldChange
	if c, ok := diffString("name", existing.Name, extracted.Name); ok {
		changes = append(changes, c)
	}
	if c, ok := diffString("type", existing.Type, extracted.Type); ok {
		changes = append(changes, c)
	}
	if !choiceSetEqual(existing.Choices, extracted.Choices) {
		changes = append(changes, FieldChange{
			Field:  "choices",
			Before: existing.Choices,
			After:  extracted.Choices,
		})
	}

	if len(changes) == 0 {
		return ActionSkip, nil
	}
	return ActionUpdate, changes
}

func diffString(field, before, after string) (FieldChange, bool) {
	b := strings.TrimSpace(before)
	a := strings.TrimSpace(after)
	if b == a {
		return FieldChange{}, false
	}
	return FieldChange{Field: field, Before: b, After: a}, true
}

func stringSetEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]int, len(a))
	for _, s := range a {
		set[strings.TrimSpace(s)]++
	}
	for _, s := range b {
		set[strings.TrimSpace(s)]--
	}
	for _, n := range set {
		if n != 0 {
			return false
		}
	}
	return true
}

func choiceSetEqual(existing []menu.Choice, extracted []extraction.ExtractedChoice) bool {
	if len(existing) != len(extracted) {
		return false
	}
	type key struct {
		name  string
		cents int
	}
	set := make(map[key]int, len(existing))
	for _, ch := range existing {
		set[key{strings.TrimSpace(ch.Name), ch.PriceModifierCents}]++
	}
	for _, ch := range extracted {
		set[key{strings.TrimSpace(ch.Name), ch.PriceModifierCents}]--
	}
	for _, n := range set {
		if n != 0 {
			return false
		}
	}
	return true
}
