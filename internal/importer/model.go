package importer

import (
	"time"

	"menuvo/internal/extraction"
)

// JobStatus is the import job lifecycle state.
// PROCESSING → READY | FAILED ; READY → COMPLETED. Never reopened.
type JobStatus string

const (
	StatusProcessing JobStatus = "PROCESSING"
	StatusReady      JobStatus = "READY"
	StatusCompleted  JobStatus = "COMPLETED"
	StatusFailed     JobStatus = "FAILED"
)

// ImportJob tracks one uploaded menu file from upload through apply.
type ImportJob struct {
	ID               string          `json:"id"`
	StoreID          string          `json:"store_id"`
	OriginalFilename string          `json:"original_filename"`
	FileType         string          `json:"file_type"`
	FileKey          string          `json:"file_key"`
	Status           JobStatus       `json:"status"`
	ErrorMessage     *string         `json:"error_message,omitempty"`
	ComparisonData   *ComparisonData `json:"comparison_data,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

// DiffAction is the planned action for one extracted entity.
type DiffAction string

const (
	ActionCreate DiffAction = "create"
	ActionUpdate DiffAction = "update"
	ActionSkip   DiffAction = "skip"
)

// FieldChange records one differing field on an update.
// Before/After round-trip through JSON, so numeric values may come
// back as float64 — the apply step patches from the extracted record,
// never from these values.
type FieldChange struct {
	Field  string `json:"field"`
	Before any    `json:"before"`
	After  any    `json:"after"`
}

// ComparisonData is the persisted import plan: every extracted entity
// with its planned action, stored as an opaque blob on the job row.
type ComparisonData struct {
	Categories   []CategoryComparison    `json:"categories"`
	OptionGroups []OptionGroupComparison `json:"option_groups"`
	Summary      Summary                 `json:"summary"`
}

type CategoryComparison struct {
	Extracted  extraction.ExtractedCategory `json:"extracted"`
	ExistingID *string                      `json:"existing_id,omitempty"`
	Action     DiffAction                   `json:"action"`
	Changes    []FieldChange                `json:"changes,omitempty"`
	Items      []ItemComparison             `json:"items"`
}

type ItemComparison struct {
	Extracted  extraction.ExtractedItem `json:"extracted"`
	ExistingID *string                  `json:"existing_id,omitempty"`
	Action     DiffAction               `json:"action"`
	Changes    []FieldChange            `json:"changes,omitempty"`
}

type OptionGroupComparison struct {
	Extracted  extraction.ExtractedOptionGroup `json:"extracted"`
	ExistingID *string                         `json:"existing_id,omitempty"`
	Action     DiffAction                      `json:"action"`
	Changes    []FieldChange                   `json:"changes,omitempty"`
}

type Summary struct {
	TotalCategories     int `json:"total_categories"`
	TotalItems          int `json:"total_items"`
	NewCategories       int `json:"new_categories"`
	NewItems            int `json:"new_items"`
	UpdatedCategories   int `json:"updated_categories"`
	UpdatedItems        int `json:"updated_items"`
	NewOptionGroups     int `json:"new_option_groups"`
	UpdatedOptionGroups int `json:"updated_option_groups"`
}

// Selection entity types and actions.
const (
	SelectionCategory    = "category"
	SelectionItem        = "item"
	SelectionOptionGroup = "optionGroup"

	SelectionApply = "apply"
	SelectionSkip  = "skip"
)

// ImportSelection is a merchant's explicit opt-in for one named
// entity of the stored plan. Entities without a selection are never
// touched by the apply step.
type ImportSelection struct {
	Type            string  `json:"type"` // category | item | optionGroup
	ExtractedName   string  `json:"extracted_name"`
	Action          string  `json:"action"` // apply | skip
	MatchedEntityID *string `json:"matched_entity_id,omitempty"`
}
