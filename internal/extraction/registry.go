package extraction

import (
	"fmt"
	"strings"
)

// Registry maps a declared file type to the extractor that handles it.
// It is built once at startup and passed to the import service —
// no package-level registration, no load-order surprises.
type Registry struct {
	extractors map[string]Extractor
}

func NewRegistry() *Registry {
	return &Registry{extractors: make(map[string]Extractor)}
}

func (r *Registry) Register(fileType string, e Extractor) {
	r.extractors[strings.ToLower(strings.TrimSpace(fileType))] = e
}

// Lookup returns the extractor for a file type, or an error the
// caller can surface directly to the merchant.
func (r *Registry) Lookup(fileType string) (Extractor, error) {
	e, ok := r.extractors[strings.ToLower(strings.TrimSpace(fileType))]
	if !ok {
		return nil, fmt.Errorf("unsupported file type: %s", fileType)
	}
	return e, nil
}

// SupportedTypes lists every registered file type.
func (r *Registry) SupportedTypes() []string {
	types := make([]string, 0, len(r.extractors))
	for t := range r.extractors {
		types = append(types, t)
	}
	return types
}
