package content

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"fedilens/internal/config"
	"fedilens/internal/metrics"
)

const systemPrompt = "You are an expert annotator for social-media posts about AI & technology. " +
	"Given one post, extract EXACTLY three concise keywords (1–3 words each). " +
	"Focus on domain terms, named entities, or specific technologies; avoid generic words " +
	"like 'ai', 'technology', 'news', 'today', 'thoughts'. Keep them informative but short. " +
	"Lowercase everything. Output STRICTLY this JSON schema:\n" +
	`{"keywords": ["k1", "k2", "k3"]}` + "\n" +
	"Do not include explanations or any other fields."

// Extractor calls an OpenAI-compatible chat-completions endpoint to pull
// keywords out of post text.
type Extractor struct {
	cfg     config.LLMConfig
	backoff Backoff
}

func NewExtractor(cfg config.LLMConfig) *Extractor {
	return &Extractor{cfg: cfg, backoff: DefaultBackoff()}
}

// --- light http helpers (decoupled for testability) ---

var httpDo = defaultDo

func defaultDo(req *http.Request) (*http.Response, error) {
	client := &http.Client{}
	return client.Do(req)
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	MaxTokens      int           `json:"max_tokens"`
	ResponseFormat *chatFormat   `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Extract returns up to three cleaned keywords for one post. Transient
// call failures retry under the extractor's backoff policy; exhaustion
// propagates. Malformed model JSON falls back to a comma split rather
// than failing the post.
func (e *Extractor) Extract(ctx context.Context, text string, tags []string) ([]string, error) {
	if text == "" && len(tags) == 0 {
		return nil, nil
	}
	prompt := buildUserPrompt(text, tags)
	var raw string
	err := e.backoff.Do(ctx, func() error {
		var callErr error
		raw, callErr = e.call(ctx, prompt)
		return callErr
	})
	if err != nil {
		return nil, err
	}
	return ParseKeywords(raw, tags), nil
}

func buildUserPrompt(text string, tags []string) string {
	tagStr := "none"
	if len(tags) > 0 {
		parts := make([]string, len(tags))
		for i, t := range tags {
			parts[i] = "#" + t
		}
		tagStr = strings.Join(parts, ", ")
	}
	return fmt.Sprintf("post:\n\"\"\"\n%s\n\"\"\"\nhashtags: %s\nReturn only JSON.", text, tagStr)
}

func (e *Extractor) call(ctx context.Context, prompt string) (string, error) {
	metrics.LLMCalls.Inc()
	base := e.cfg.BaseURL
	if base == "" {
		base = "https://api.openai.com/v1"
	}
	body, err := json.Marshal(chatRequest{
		Model: e.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature:    0.4,
		MaxTokens:      60,
		ResponseFormat: &chatFormat{Type: "json_object"},
	})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(base, "/")+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+e.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	resp, err := httpDo(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("llm status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("llm returned no choices")
	}
	return out.Choices[0].Message.Content, nil
}

var (
	leadingMark  = regexp.MustCompile(`^[#@]`)
	disallowed   = regexp.MustCompile(`[^a-z0-9\-\s\.]+`)
	stopKeywords = map[string]struct{}{
		"ai": {}, "tech": {}, "technology": {}, "news": {}, "today": {}, "post": {},
	}
	stopTags = map[string]struct{}{"ai": {}, "technology": {}}
)

// ParseKeywords cleans the model output into at most three keywords.
// JSON parse failure degrades to a naive comma split; hashtags backfill
// when fewer than three survive cleaning.
func ParseKeywords(raw string, fallbackTags []string) []string {
	var kws []string
	var obj struct {
		Keywords []string `json:"keywords"`
	}
	if err := json.Unmarshal([]byte(raw), &obj); err == nil && obj.Keywords != nil {
		kws = obj.Keywords
	} else {
		for _, part := range strings.Split(raw, ",") {
			if p := strings.TrimSpace(part); p != "" {
				kws = append(kws, p)
			}
		}
	}

	var cleaned []string
	for _, k := range kws {
		k = leadingMark.ReplaceAllString(strings.ToLower(k), "")
		k = strings.TrimSpace(disallowed.ReplaceAllString(k, ""))
		if k == "" {
			continue
		}
		if _, stop := stopKeywords[k]; stop {
			continue
		}
		if contains(cleaned, k) {
			continue
		}
		cleaned = append(cleaned, k)
	}
	for _, t := range fallbackTags {
		if len(cleaned) >= 3 {
			break
		}
		t = strings.TrimSpace(strings.ToLower(t))
		if t == "" || contains(cleaned, t) {
			continue
		}
		if _, stop := stopTags[t]; stop {
			continue
		}
		cleaned = append(cleaned, t)
	}
	if len(cleaned) > 3 {
		cleaned = cleaned[:3]
	}
	return cleaned
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
