// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package aiex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// groqAPIURL is the Groq chat-completions endpoint. Package-level var
// for test substitution.
var groqAPIURL = "https://api.groq.com/openai/v1/chat/completions"

var groqModels = []Model{
	{Name: "llama-3.1-8b-instant", ContextTokens: 131072},
	{Name: "llama-3.3-70b-versatile", ContextTokens: 131072},
	{Name: "llama-4-scout-17b", ContextTokens: 131072, Vision: true},
}

// GroqProvider calls the Groq cloud API over its OpenAI-compatible wire
// format.
type GroqProvider struct {
	APIKey string
	Client *http.Client
}

func (g *GroqProvider) Name() string { return "groq" }

// Available requires only a configured key; reachability surfaces as a
// Complete error the chain already handles.
func (g *GroqProvider) Available(_ context.Context) bool {
	return g.APIKey != ""
}

func (g *GroqProvider) SelectModel(requiresVision bool, estimatedTokens int) (Model, bool) {
	return chooseModel(groqModels, requiresVision, estimatedTokens)
}

type groqMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type groqRequest struct {
	Model     string        `json:"model"`
	Messages  []groqMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type groqResponse struct {
	Choices []struct {
		Message groqMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

func (g *GroqProvider) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	body, err := json.Marshal(groqRequest{
		Model:     req.Model,
		Messages:  []groqMessage{{Role: "user", Content: req.Prompt}},
		MaxTokens: req.MaxTokens,
	})
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, groqAPIURL, bytes.NewReader(body))
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+g.APIKey)

	client := g.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("calling groq: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return CompletionResponse{}, fmt.Errorf("groq returned %d: %s", resp.StatusCode, string(respBody))
	}

	var gResp groqResponse
	if err := json.NewDecoder(resp.Body).Decode(&gResp); err != nil {
		return CompletionResponse{}, fmt.Errorf("decoding groq response: %w", err)
	}
	if len(gResp.Choices) == 0 {
		return CompletionResponse{}, fmt.Errorf("groq returned no choices")
	}
	return CompletionResponse{
		Text:       gResp.Choices[0].Message.Content,
		TokensUsed: gResp.Usage.TotalTokens,
	}, nil
}
