package importer

import (
	"menuvo/internal/extraction"
	"menuvo/internal/menu"
)

// ComparisonBuilder walks a full extracted menu against the store's
// existing menu and produces the import plan. Pure value computation:
// no side effects, deterministic for fixed inputs.
type ComparisonBuilder struct {
	matcher Matcher
}

func NewComparisonBuilder(matcher Matcher) *ComparisonBuilder {
	return &ComparisonBuilder{matcher: matcher}
}

func (b *ComparisonBuilder) Build(extracted *extraction.ExtractedMenu, existing *menu.Menu) *ComparisonData {
	data := &ComparisonData{}

	// Items of unmatched categories match against every item in the
	// store, so an item that moved categories still updates instead
	// of duplicating.
	var allItems []menu.Item
	for _, c := range existing.Categories {
		allItems = append(allItems, c.Items...)
	}

	for _, cat := range extracted.Categories {
		matched := b.matcher.MatchCategory(cat.Name, existing.Categories)
		action, changes := diffCategory(cat, matched)

		cmp := CategoryComparison{
			Extracted: cat,
			Action:    action,
			Changes:   changes,
		}

		itemScope := allItems
		if matched != nil {
			cmp.ExistingID = &matched.ID
			itemScope = matched.Items
		}

		for _, it := range cat.Items {
			matchedItem := b.matcher.MatchItem(it.Name, itemScope)
			itemAction, itemChanges := diffItem(it, matchedItem)

			itemCmp := ItemComparison{
				Extracted: it,
				Action:    itemAction,
				Changes:   itemChanges,
			}
			if matchedItem != nil {
				itemCmp.ExistingID = &matchedItem.ID
			}

			cmp.Items = append(cmp.Items, itemCmp)
		}

		data.Categories = append(data.Categories, cmp)
	}

	for _, group := range extracted.OptionGroups {
		matched := b.matcher.MatchOptionGroup(group.Name, existing.OptionGroups)
		action, changes := diffOptionGroup(group, matched)

		cmp := OptionGroupComparison{
			Extracted: group,
			Action:    action,
			Changes:   changes,
		}
		if matched != nil {
			cmp.ExistingID = &matched.ID
		}

		data.OptionGroups = append(data.OptionGroups, cmp)
	}

	data.Summary = tally(data)
	return data
}

func tally(data *ComparisonData) Summary {
	var s Summary

	for _, cat := range data.Categories {
		s.TotalCategories++
		switch cat.Action {
		case ActionCreate:
			s.NewCategories++
		case ActionUpdate:
			s.UpdatedCategories++
		}

		for _, it := range cat.Items {
			s.TotalItems++
			switch it.Action {
			case ActionCreate:
				s.NewItems++
			case ActionUpdate:
				s.UpdatedItems++
			}
		}
	}

	for _, group := range data.OptionGroups {
		switch group.Action {
		case ActionCreate:
			s.NewOptionGroups++
		case ActionUpdate:
			s.UpdatedOptionGroups++
		}
	}

	return s
}
