package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// HTTPChatClient is the production ChatClient: a thin REST client against a
// single configurable base URL, grounded on the teacher's Supabase REST
// client (infrastructure/database/supabase_client.go) — a bearer-keyed
// http.Client wrapper, no vendor SDK dependency, so AIConfig.BaseURL can
// point at any OpenAI-compatible chat/embeddings endpoint.
type HTTPChatClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPChatClient builds a client against baseURL (e.g.
// "https://api.openai.com/v1"), authenticating with apiKey as a bearer
// token. An empty baseURL still returns a usable client; every call then
// fails with a "no base url configured" error before any request is sent,
// which the RAG engine degrades on (spec §9:
// the AI path is never in the critical path).
func NewHTTPChatClient(baseURL, apiKey string) *HTTPChatClient {
	return &HTTPChatClient{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 20 * time.Second},
	}
}

type embeddingRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// Embed calls the embeddings endpoint and returns the first result vector.
func (c *HTTPChatClient) Embed(ctx context.Context, text string) ([]float32, error) {
	var resp embeddingResponse
	if err := c.post(ctx, "/embeddings", embeddingRequest{Model: "text-embedding-3-small", Input: text}, &resp); err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("ai: empty embedding response")
	}
	return resp.Data[0].Embedding, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Complete calls the chat-completions endpoint with a system and user
// message and returns the first choice's content.
func (c *HTTPChatClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	req := chatRequest{
		Model: "gpt-4o-mini",
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
	}
	var resp chatResponse
	if err := c.post(ctx, "/chat/completions", req, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("ai: empty completion response")
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *HTTPChatClient) post(ctx context.Context, path string, body, out interface{}) error {
	if c.baseURL == "" {
		return fmt.Errorf("ai: no base url configured")
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("ai: %s returned status %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
