package extraction

import "context"

// Extractor converts raw uploaded file bytes into a structured menu.
type Extractor interface {
	Extract(ctx context.Context, data []byte, fileType string) (*ExtractedMenu, error)
}
