package extraction

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/jszwec/csvutil"
)

// CSVExtractor parses spreadsheet exports directly, skipping the LLM.
// Expected columns: category, name, price, and optionally
// category_description, description, allergens (pipe-separated).
type CSVExtractor struct{}

func NewCSVExtractor() *CSVExtractor {
	return &CSVExtractor{}
}

type csvMenuRow struct {
	Category            string `csv:"category"`
	CategoryDescription string `csv:"category_description,omitempty"`
	Name                string `csv:"name"`
	Description         string `csv:"description,omitempty"`
	Price               string `csv:"price"`
	Allergens           string `csv:"allergens,omitempty"`
}

func (e *CSVExtractor) Extract(ctx context.Context, data []byte, fileType string) (*ExtractedMenu, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.TrimLeadingSpace = true

	decoder, err := csvutil.NewDecoder(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create CSV decoder: %w", err)
	}

	var rows []csvMenuRow
	if err := decoder.Decode(&rows); err != nil {
		return nil, fmt.Errorf("failed to decode CSV: %w", err)
	}

	menu := &ExtractedMenu{}
	index := make(map[string]int) // category name -> position in menu.Categories

	for i, row := range rows {
		name := strings.TrimSpace(row.Name)
		categoryName := strings.TrimSpace(row.Category)
		if name == "" || categoryName == "" {
			return nil, fmt.Errorf("row %d: category and name are required", i+1)
		}

		price, err := parsePriceCents(row.Price)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}

		pos, ok := index[strings.ToLower(categoryName)]
		if !ok {
			menu.Categories = append(menu.Categories, ExtractedCategory{
				Name:        categoryName,
				Description: strings.TrimSpace(row.CategoryDescription),
			})
			pos = len(menu.Categories) - 1
			index[strings.ToLower(categoryName)] = pos
		}

		menu.Categories[pos].Items = append(menu.Categories[pos].Items, ExtractedItem{
			Name:         name,
			Description:  strings.TrimSpace(row.Description),
			PriceCents:   price,
			Allergens:    splitAllergens(row.Allergens),
			CategoryName: categoryName,
		})
	}

	return menu, nil
}

// parsePriceCents accepts decimal prices ("6.99") and returns integer cents.
func parsePriceCents(raw string) (int, error) {
	s := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "€"))
	s = strings.ReplaceAll(s, ",", ".")
	if s == "" {
		return 0, fmt.Errorf("missing price")
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid price %q", raw)
	}
	if f < 0 {
		return 0, fmt.Errorf("negative price %q", raw)
	}

	return int(math.Round(f * 100)), nil
}

func splitAllergens(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	var out []string
	for _, a := range strings.Split(raw, "|") {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, a)
		}
	}
	return out
}
