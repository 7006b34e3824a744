package extraction

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// GeminiExtractor sends menu files to Gemini and guarantees JSON-only output.
type GeminiExtractor struct {
	apiKey string
	model  string
	client *http.Client
}

func NewGeminiExtractor() *GeminiExtractor {
	return &GeminiExtractor{
		apiKey: os.Getenv("GEMINI_API_KEY"),
		model:  os.Getenv("GEMINI_MODEL"),
		client: &http.Client{Timeout: 60 * time.Second},
	}
}

var binaryMimeTypes = map[string]string{
	"pdf":  "application/pdf",
	"xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

func (g *GeminiExtractor) Extract(ctx context.Context, data []byte, fileType string) (*ExtractedMenu, error) {
	if g.apiKey == "" {
		return nil, errors.New("missing GEMINI_API_KEY")
	}
	if g.model == "" {
		return nil, errors.New("missing GEMINI_MODEL")
	}
	if len(data) == 0 {
		return nil, errors.New("empty menu file")
	}

	url := fmt.Sprintf(
		"https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent?key=%s",
		g.model,
		g.apiKey,
	)

	// Text formats go into the prompt directly; binary formats
	// are attached inline so Gemini can read them natively.
	var parts []map[string]any
	if mime, ok := binaryMimeTypes[fileType]; ok {
		parts = []map[string]any{
			{"text": BuildMenuExtractPrompt("(attached file)")},
			{"inline_data": map[string]string{
				"mime_type": mime,
				"data":      base64.StdEncoding.EncodeToString(data),
			}},
		}
	} else {
		parts = []map[string]any{
			{"text": BuildMenuExtractPrompt(string(data))},
		}
	}

	payload := map[string]any{
		"contents": []map[string]any{
			{"parts": parts},
		},
		"generationConfig": map[string]any{
			"temperature":      0.2,
			"maxOutputTokens":  8192,
			"responseMimeType": "application/json",
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gemini api error: %s", string(raw))
	}

	// Gemini response shape
	var result struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}

	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, err
	}

	if len(result.Candidates) == 0 ||
		len(result.Candidates[0].Content.Parts) == 0 {
		return nil, errors.New("empty gemini response")
	}

	output := result.Candidates[0].Content.Parts[0].Text

	if !json.Valid([]byte(output)) {
		return nil, errors.New("gemini returned non-json output")
	}

	var menu ExtractedMenu
	if err := json.Unmarshal([]byte(output), &menu); err != nil {
		return nil, fmt.Errorf("gemini returned unexpected menu shape: %w", err)
	}

	return &menu, nil
}
