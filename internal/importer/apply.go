package importer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"menuvo/internal/menu"
)

// Apply materializes the merchant-approved subset of a READY job's
// plan into the store's menu. All mutations run in one transaction:
// a hard failure rolls everything back and leaves the job READY so
// the merchant can retry. On success the job moves to COMPLETED and
// can never be applied again.
//
// Selections are a strict whitelist keyed by (type, extracted name).
// An entity without an "apply" selection — or whose plan says skip —
// is never touched. Updates whose target row vanished since the
// comparison was built are downgraded to a skip with a warning
// instead of aborting the whole apply.
func (s *Service) Apply(
	ctx context.Context,
	merchantID, storeID, jobID string,
	selections []ImportSelection,
) ([]string, error) {

	if len(selections) == 0 {
		return nil, ErrEmptySelections
	}

	if err := s.authorize(ctx, storeID, merchantID); err != nil {
		return nil, err
	}

	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.StoreID != storeID {
		return nil, ErrJobNotFound
	}
	if job.Status != StatusReady {
		return nil, ErrInvalidJobState
	}
	if job.ComparisonData == nil {
		return nil, ErrComparisonMissing
	}

	language, err := s.stores.DefaultLanguage(ctx, storeID)
	if err != nil {
		return nil, err
	}

	selected := make(map[selectionKey]ImportSelection, len(selections))
	for _, sel := range selections {
		selected[selKey(sel.Type, sel.ExtractedName)] = sel
	}

	var warnings []string
	err = s.menus.InTx(ctx, func(tx menu.Tx) error {
		// Categories first: item creates need their category id.
		for _, cat := range job.ComparisonData.Categories {
			categoryID, err := s.applyCategory(ctx, tx, storeID, language, cat, selected, &warnings)
			if err != nil {
				return err
			}

			for _, it := range cat.Items {
				if err := s.applyItem(ctx, tx, storeID, categoryID, language, it, selected, &warnings); err != nil {
					return err
				}
			}
		}

		// Option groups are flat, independent of the category walk.
		for _, group := range job.ComparisonData.OptionGroups {
			if err := s.applyOptionGroup(ctx, tx, storeID, language, group, selected, &warnings); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.jobs.MarkCompleted(ctx, jobID); err != nil {
		return warnings, err
	}

	log.Printf("IMPORT_APPLIED job=%s store=%s warnings=%d", jobID, storeID, len(warnings))
	return warnings, nil
}

// applyCategory executes one category's selection, if any, and
// returns the category id items under it should attach to — the
// newly created id, the existing one, or "" when there is none.
func (s *Service) applyCategory(
	ctx context.Context,
	tx menu.Tx,
	storeID, language string,
	cat CategoryComparison,
	selected map[selectionKey]ImportSelection,
	warnings *[]string,
) (string, error) {

	categoryID := ""
	if cat.ExistingID != nil {
		categoryID = *cat.ExistingID
	}

	sel, picked := selected[selKey(SelectionCategory, cat.Extracted.Name)]
	if !picked || sel.Action != SelectionApply {
		return categoryID, nil
	}

	action, targetID, full := effectiveAction(cat.Action, cat.ExistingID, sel.MatchedEntityID)

	switch action {
	case ActionCreate:
		id, err := tx.CreateCategory(ctx, storeID, language, menu.CategoryInput{
			Name:        strings.TrimSpace(cat.Extracted.Name),
			Description: strings.TrimSpace(cat.Extracted.Description),
		})
		if err != nil {
			return "", err
		}
		return id, nil

	case ActionUpdate:
		err := tx.UpdateCategory(ctx, storeID, targetID, language, categoryPatch(cat, full))
		if errors.Is(err, menu.ErrNotFound) {
			*warnings = append(*warnings, fmt.Sprintf(
				"category %q skipped: existing category no longer exists", cat.Extracted.Name))
			return "", nil
		}
		if err != nil {
			return "", err
		}
		return targetID, nil
	}

	return categoryID, nil
}

func (s *Service) applyItem(
	ctx context.Context,
	tx menu.Tx,
	storeID, categoryID, language string,
	it ItemComparison,
	selected map[selectionKey]ImportSelection,
	warnings *[]string,
) error {

	sel, picked := selected[selKey(SelectionItem, it.Extracted.Name)]
	if !picked || sel.Action != SelectionApply {
		return nil
	}

	action, targetID, full := effectiveAction(it.Action, it.ExistingID, sel.MatchedEntityID)

	switch action {
	case ActionCreate:
		if categoryID == "" {
			*warnings = append(*warnings, fmt.Sprintf(
				"item %q skipped: its category was not applied", it.Extracted.Name))
			return nil
		}
		_, err := tx.CreateItem(ctx, storeID, categoryID, language, menu.ItemInput{
			Name:        strings.TrimSpace(it.Extracted.Name),
			Description: strings.TrimSpace(it.Extracted.Description),
			PriceCents:  it.Extracted.PriceCents,
			Allergens:   it.Extracted.Allergens,
		})
		if errors.Is(err, menu.ErrNotFound) {
			*warnings = append(*warnings, fmt.Sprintf(
				"item %q skipped: its category no longer exists", it.Extracted.Name))
			return nil
		}
		return err

	case ActionUpdate:
		err := tx.UpdateItem(ctx, storeID, targetID, language, itemPatch(it, full))
		if errors.Is(err, menu.ErrNotFound) {
			*warnings = append(*warnings, fmt.Sprintf(
				"item %q skipped: existing item no longer exists", it.Extracted.Name))
			return nil
		}
		return err
	}

	return nil
}

func (s *Service) applyOptionGroup(
	ctx context.Context,
	tx menu.Tx,
	storeID, language string,
	group OptionGroupComparison,
	selected map[selectionKey]ImportSelection,
	warnings *[]string,
) error {

	sel, picked := selected[selKey(SelectionOptionGroup, group.Extracted.Name)]
	if !picked || sel.Action != SelectionApply {
		return nil
	}

	action, targetID, full := effectiveAction(group.Action, group.ExistingID, sel.MatchedEntityID)

	switch action {
	case ActionCreate:
		_, err := tx.CreateOptionGroup(ctx, storeID, language, menu.OptionGroupInput{
			Name:    strings.TrimSpace(group.Extracted.Name),
			Type:    strings.TrimSpace(group.Extracted.Type),
			Choices: choiceInputs(group),
		})
		return err

	case ActionUpdate:
		err := tx.UpdateOptionGroup(ctx, storeID, targetID, language, optionGroupPatch(group, full))
		if errors.Is(err, menu.ErrNotFound) {
			*warnings = append(*warnings, fmt.Sprintf(
				"option group %q skipped: existing group no longer exists", group.Extracted.Name))
			return nil
		}
		return err
	}

	return nil
}

// --------------------------------------------------
// Effective action + patch derivation
// --------------------------------------------------

type selectionKey struct {
	entityType string
	name       string
}

func selKey(entityType, name string) selectionKey {
	return selectionKey{
		entityType: strings.TrimSpace(entityType),
		name:       normalizeName(name),
	}
}

// effectiveAction re-derives the action to execute. The stored plan
// wins, with one override: a planned create whose selection carries a
// matchedEntityId becomes an update against that id (the merchant
// matched it by hand), patching every tracked field.
func effectiveAction(planned DiffAction, existingID, overrideID *string) (action DiffAction, targetID string, full bool) {
	switch planned {
	case ActionCreate:
		if overrideID != nil && *overrideID != "" {
			return ActionUpdate, *overrideID, true
		}
		return ActionCreate, "", false
	case ActionUpdate:
		if existingID != nil {
			return ActionUpdate, *existingID, false
		}
		// An update plan without a target is malformed; do nothing.
		return ActionSkip, "", false
	default:
		return ActionSkip, "", false
	}
}

// Patches are built from the extracted record, using the stored
// changes only to decide WHICH fields to touch. Change values
// themselves round-trip through JSON and are for display only.

func categoryPatch(cat CategoryComparison, full bool) menu.CategoryPatch {
	var p menu.CategoryPatch
	for _, field := range changedFields(cat.Changes, full, "name", "description") {
		switch field {
		case "name":
			p.Name = trimmed(cat.Extracted.Name)
		case "description":
			p.Description = trimmed(cat.Extracted.Description)
		}
	}
	return p
}

func itemPatch(it ItemComparison, full bool) menu.ItemPatch {
	var p menu.ItemPatch
	for _, field := range changedFields(it.Changes, full, "name", "description", "price", "allergens") {
		switch field {
		case "name":
			p.Name = trimmed(it.Extracted.Name)
		case "description":
			p.Description = trimmed(it.Extracted.Description)
		case "price":
			price := it.Extracted.PriceCents
			p.PriceCents = &price
		case "allergens":
			allergens := it.Extracted.Allergens
			p.Allergens = &allergens
		}
	}
	return p
}

func optionGroupPatch(group OptionGroupComparison, full bool) menu.OptionGroupPatch {
	var p menu.OptionGroupPatch
	for _, field := range changedFields(group.Changes, full, "name", "type", "choices") {
		switch field {
		case "name":
			p.Name = trimmed(group.Extracted.Name)
		case "type":
			p.Type = trimmed(group.Extracted.Type)
		case "choices":
			choices := choiceInputs(group)
			p.Choices = &choices
		}
	}
	return p
}

func changedFields(changes []FieldChange, full bool, allFields ...string) []string {
	if full {
		return allFields
	}
	fields := make([]string, 0, len(changes))
	for _, ch := range changes {
		fields = append(fields, ch.Field)
	}
	return fields
}

func choiceInputs(group OptionGroupComparison) []menu.ChoiceInput {
	choices := make([]menu.ChoiceInput, 0, len(group.Extracted.Choices))
	for _, ch := range group.Extracted.Choices {
		choices = append(choices, menu.ChoiceInput{
			Name:               strings.TrimSpace(ch.Name),
			PriceModifierCents: ch.PriceModifierCents,
		})
	}
	return choices
}

func trimmed(s string) *string {
	t := strings.TrimSpace(s)
	return &t
}
