package fortune

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	// FallbackText is returned whenever generation fails. The lookup flow
	// never sees a raw upstream error.
	FallbackText = "新年快乐！(AI 生成失败，请重试)"

	defaultBaseURL = "https://generativelanguage.googleapis.com"
	defaultModel   = "gemini-3-flash-preview"
	defaultTimeout = 10 * time.Second
)

var (
	errMissingAPIKey = errors.New("fortune: api key not configured")
	errEmptyResponse = errors.New("fortune: upstream returned no candidates")
)

// ClientConfig wires the text-generation client.
type ClientConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client proxies fortune generation to a Gemini-style generateContent
// endpoint. It is a pure pass-through: prompt in, plain text out.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient constructs a Client with sane defaults.
func NewClient(cfg ClientConfig) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		model:      model,
		httpClient: httpClient,
		logger:     logger,
	}
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Generate produces a festive fortune for the named attendee. Any upstream
// failure is logged and masked behind FallbackText; the error return is
// informational only and callers may ignore it.
func (c *Client) Generate(ctx context.Context, name, tableName string) (string, error) {
	text, err := c.generate(ctx, name, tableName)
	if err != nil {
		c.logger.Warn("fortune generation failed, serving fallback", zap.Error(err))
		return FallbackText, err
	}
	return text, nil
}

func (c *Client) generate(ctx context.Context, name, tableName string) (string, error) {
	if strings.TrimSpace(c.apiKey) == "" {
		return "", errMissingAPIKey
	}

	payload := generateRequest{
		Contents: []content{{Parts: []part{{Text: buildPrompt(name, tableName)}}}},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		c.baseURL, c.model, url.QueryEscape(c.apiKey))
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := c.httpClient.Do(request)
	if err != nil {
		return "", err
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fortune: upstream status %d", response.StatusCode)
	}

	var decoded generateResponse
	if err := json.NewDecoder(response.Body).Decode(&decoded); err != nil {
		return "", err
	}
	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return "", errEmptyResponse
	}
	text := strings.TrimSpace(decoded.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		return "", errEmptyResponse
	}
	return text, nil
}

func buildPrompt(name, tableName string) string {
	return fmt.Sprintf(`You are the host of a lively corporate annual meeting in China.
Generate a short, witty, and encouraging "2025 Annual Fortune" (新年签) for an attendee named %q who is sitting at the %q.

Requirements:
- Language: Chinese (Simplified).
- Tone: Festive, professional yet fun, slightly humorous.
- Length: Under 50 words.
- Include a lucky number or lucky color based on their table name randomly.
- Do not output markdown, just plain text.`, name, tableName)
}
