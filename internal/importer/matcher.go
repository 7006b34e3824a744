package importer

import (
	"strings"

	"menuvo/internal/menu"
)

// Matcher decides whether an extracted entity corresponds to an
// existing row of the same type. The interface exists so a fuzzier
// implementation (accent folding, edit distance) can be swapped in
// without touching the diff engine or comparison builder.
type Matcher interface {
	MatchCategory(name string, existing []menu.Category) *menu.Category
	MatchItem(name string, existing []menu.Item) *menu.Item
	MatchOptionGroup(name string, existing []menu.OptionGroup) *menu.OptionGroup
}

// NameMatcher matches on case-normalized, trimmed name equality.
// Near-duplicates (accents, inner whitespace differences) do NOT
// match and are treated as new entities. When several existing rows
// share a name, the first in display order wins.
type NameMatcher struct{}

func NewNameMatcher() *NameMatcher {
	return &NameMatcher{}
}

func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func (m *NameMatcher) MatchCategory(name string, existing []menu.Category) *menu.Category {
	want := normalizeName(name)
	for i := range existing {
		if normalizeName(existing[i].Name) == want {
			return &existing[i]
		}
	}
	return nil
}

func (m *NameMatcher) MatchItem(name string, existing []menu.Item) *menu.Item {
	want := normalizeName(name)
	for i := range existing {
		if normalizeName(existing[i].Name) == want {
			return &existing[i]
		}
	}
	return nil
}

func (m *NameMatcher) MatchOptionGroup(name string, existing []menu.OptionGroup) *menu.OptionGroup {
	want := normalizeName(name)
	for i := range existing {
		if normalizeName(existing[i].Name) == want {
			return &existing[i]
		}
	}
	return nil
}
