package claude

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"regscan/internal/config"
	"regscan/internal/domain"
	"regscan/internal/extract"
	"regscan/internal/port"
)

const apiVersion = "2023-06-01"

// Client implements port.RowExtractor using the Anthropic Messages API.
type Client struct {
	apiKey   string
	endpoint string
	client   *http.Client
	selector *modelSelector
	caller   *extract.Caller
}

// NewClient creates a Claude-backed row extractor from the model config.
func NewClient(cfg *config.ModelConfig) *Client {
	return NewClientWithEndpoint(cfg, cfg.Endpoint)
}

// NewClientWithEndpoint creates a client pointing at a custom API base URL
// (for testing).
func NewClientWithEndpoint(cfg *config.ModelConfig, endpoint string) *Client {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	c := &Client{
		apiKey:   cfg.APIKey,
		endpoint: strings.TrimSuffix(endpoint, "/"),
		client:   &http.Client{Timeout: timeout},
		caller:   extract.NewCaller(),
	}
	c.selector = newModelSelector(cfg.ModelOverride, c.listModels)
	return c
}

// Extract locates rows matching the target codes and returns the parsed,
// structurally validated result. Retries and model fallback follow the
// policy in extract.Caller.
func (c *Client) Extract(ctx context.Context, input port.ExtractInput) (*domain.ExtractionResult, error) {
	prompt := extract.BuildRowMatchPrompt(input.ProductCodes)
	transport := &messageTransport{client: c, input: input, prompt: prompt}

	out, err := c.caller.Do(ctx, c.selector, transport)
	if err != nil {
		return nil, err
	}

	payload, err := extract.ParseModelResponse(out.Raw)
	if err != nil {
		return nil, err
	}

	return &domain.ExtractionResult{
		Items:         payload.Items,
		TotalFound:    payload.TotalFound,
		Confidence:    payload.Confidence,
		Provider:      domain.ProviderClaude,
		Model:         out.Model,
		CorrelationID: out.CorrelationID,
	}, nil
}

// TestConnection resolves the model that the next extraction would use.
func (c *Client) TestConnection(ctx context.Context) (string, error) {
	return c.selector.Select(ctx)
}

// messageTransport binds one extraction's image and prompt into a
// retry-driven transport.
type messageTransport struct {
	client *Client
	input  port.ExtractInput
	prompt string
}

func (t *messageTransport) Call(ctx context.Context, model, correlationID string) (string, error) {
	return t.client.callMessages(ctx, model, correlationID, t.input, t.prompt)
}

// apiResponse models the Anthropic Messages API response.
type apiResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

func (c *Client) callMessages(ctx context.Context, model, correlationID string, input port.ExtractInput, prompt string) (string, error) {
	reqBody := map[string]interface{}{
		"model":      model,
		"max_tokens": 4096,
		"messages": []map[string]interface{}{
			{
				"role": "user",
				"content": []map[string]interface{}{
					{
						"type": "image",
						"source": map[string]interface{}{
							"type":       "base64",
							"media_type": input.ContentType,
							"data":       base64.StdEncoding.EncodeToString(input.ImageBytes),
						},
					},
					{
						"type": "text",
						"text": prompt,
					},
				},
			},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/v1/messages", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", apiVersion)
	req.Header.Set("X-Correlation-ID", correlationID)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", &extract.NetworkError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &extract.NetworkError{Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		baseErr := fmt.Errorf("anthropic API error (status %d): %s", resp.StatusCode, respBody)
		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			retryAfter := extract.ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
			return "", extract.NewRateLimitError(baseErr, retryAfter)
		case resp.StatusCode == http.StatusNotFound, bytes.Contains(respBody, []byte("not_found_error")):
			return "", &extract.ModelNotFoundError{Model: model, Err: baseErr}
		case resp.StatusCode >= 500:
			return "", &extract.ServerError{Status: resp.StatusCode, Err: baseErr}
		default:
			return "", baseErr
		}
	}

	var parsed apiResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("%w: unmarshaling response: %v", domain.ErrMalformedResponse, err)
	}
	if len(parsed.Content) == 0 {
		return "", fmt.Errorf("%w: empty response from API", domain.ErrMalformedResponse)
	}
	if parsed.StopReason == "max_tokens" {
		return "", fmt.Errorf("%w: output truncated (stop_reason: max_tokens)", domain.ErrMalformedResponse)
	}

	return parsed.Content[0].Text, nil
}

// listModels queries the provider's model catalog.
func (c *Client) listModels(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/v1/models", nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("querying model catalog: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("model catalog error (status %d): %s", resp.StatusCode, body)
	}

	var catalog struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&catalog); err != nil {
		return nil, fmt.Errorf("decoding model catalog: %w", err)
	}

	ids := make([]string, 0, len(catalog.Data))
	for _, m := range catalog.Data {
		ids = append(ids, m.ID)
	}
	return ids, nil
}
