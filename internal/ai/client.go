// Storekeep - Inventory and Stock Management Backend
// Copyright 2026 Storekeep Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/storekeep/storekeep

// Package ai calls an OpenAI-compatible chat completions API to draft
// product descriptions. It is an optional collaborator: when disabled the
// endpoint reports so and nothing else in the system depends on it.
package ai

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/storekeep/storekeep/internal/config"
)

const maxResponseBytes = 1 << 20

// Client talks to a chat completions endpoint.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// NewClient builds a client from configuration. Returns nil when the
// feature is disabled or no API key is configured.
func NewClient(cfg *config.AIConfig) *Client {
	if !cfg.Enabled || cfg.APIKey == "" {
		return nil
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		client:  &http.Client{Timeout: timeout},
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Suggestion is a generated product description.
type Suggestion struct {
	Text  string `json:"text"`
	Model string `json:"model"`
}

// SuggestDescription asks the model for a short product description based
// on the product name and optional category.
func (c *Client) SuggestDescription(ctx context.Context, name, category string) (*Suggestion, error) {
	prompt := fmt.Sprintf("Write a concise, factual product description (2-3 sentences) for an inventory system. Product name: %q.", name)
	if category != "" {
		prompt += fmt.Sprintf(" Category: %q.", category)
	}

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: "You write terse product descriptions for warehouse software. No marketing superlatives."},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   200,
		Temperature: 0.4,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("completion request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		if parsed.Error != nil {
			return nil, fmt.Errorf("completion API error: %s", parsed.Error.Message)
		}
		return nil, fmt.Errorf("completion API returned status %d", resp.StatusCode)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("completion API returned no choices")
	}

	model := parsed.Model
	if model == "" {
		model = c.model
	}
	return &Suggestion{
		Text:  strings.TrimSpace(parsed.Choices[0].Message.Content),
		Model: model,
	}, nil
}
