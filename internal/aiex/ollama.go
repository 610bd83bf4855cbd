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

// ollamaModels are the local models we know how to drive, smallest
// context first.
var ollamaModels = []Model{
	{Name: "mistral:7b", ContextTokens: 32768},
	{Name: "llama3.1:8b", ContextTokens: 131072},
	{Name: "llava:13b", ContextTokens: 32768, Vision: true},
}

// OllamaProvider drives a local Ollama server.
type OllamaProvider struct {
	BaseURL string
	Client  *http.Client
}

func (o *OllamaProvider) Name() string { return "ollama" }

// Available probes the server's tag listing. Any response at all means a
// server is listening.
func (o *OllamaProvider) Available(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.BaseURL+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := o.client().Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	return resp.StatusCode == http.StatusOK
}

func (o *OllamaProvider) SelectModel(requiresVision bool, estimatedTokens int) (Model, bool) {
	return chooseModel(ollamaModels, requiresVision, estimatedTokens)
}

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type ollamaResponse struct {
	Response  string `json:"response"`
	EvalCount int    `json:"eval_count"`
}

// Complete posts a non-streaming generate request.
func (o *OllamaProvider) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	body, err := json.Marshal(ollamaRequest{Model: req.Model, Prompt: req.Prompt})
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.BaseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := o.client().Do(httpReq)
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("calling ollama: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return CompletionResponse{}, fmt.Errorf("ollama returned %d: %s", resp.StatusCode, string(respBody))
	}

	var oResp ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&oResp); err != nil {
		return CompletionResponse{}, fmt.Errorf("decoding ollama response: %w", err)
	}
	return CompletionResponse{Text: oResp.Response, TokensUsed: oResp.EvalCount}, nil
}

func (o *OllamaProvider) client() *http.Client {
	if o.Client != nil {
		return o.Client
	}
	return http.DefaultClient
}
