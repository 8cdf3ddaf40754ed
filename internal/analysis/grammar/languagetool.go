package grammar

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// LanguageToolConfig holds configuration for a LanguageTool server backend.
type LanguageToolConfig struct {
	BaseURL  string // default: "http://localhost:8010"
	Language string // default: "en-US"
	Timeout  time.Duration
}

// LanguageTool checks grammar against a LanguageTool HTTP server.
type LanguageTool struct {
	cfg        LanguageToolConfig
	httpClient *http.Client
}

// NewLanguageTool creates a LanguageTool checker with defaults applied.
func NewLanguageTool(cfg LanguageToolConfig) *LanguageTool {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8010"
	}
	if cfg.Language == "" {
		cfg.Language = "en-US"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &LanguageTool{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

func (lt *LanguageTool) Name() string { return "languagetool" }

// Check posts the text to /v2/check and maps the matches onto Issues.
func (lt *LanguageTool) Check(ctx context.Context, text string) (*Result, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyTranscript
	}

	form := url.Values{}
	form.Set("text", text)
	form.Set("language", lt.cfg.Language)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, lt.cfg.BaseURL+"/v2/check", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := lt.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("languagetool request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("languagetool %s: %s", resp.Status, string(body))
	}

	var apiResp struct {
		Matches []struct {
			Message string `json:"message"`
			Offset  int    `json:"offset"`
			Length  int    `json:"length"`
			Rule    struct {
				ID string `json:"id"`
			} `json:"rule"`
		} `json:"matches"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("languagetool decode: %w", err)
	}

	result := &Result{IssueCount: len(apiResp.Matches)}
	for _, m := range apiResp.Matches {
		result.Issues = append(result.Issues, Issue{
			Message: m.Message,
			Rule:    m.Rule.ID,
			Offset:  m.Offset,
			Length:  m.Length,
		})
	}
	return result, nil
}
