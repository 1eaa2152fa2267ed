/*
Package geminiservice talks to the Gemini generateContent API. It exposes a
single Generate call that the recommendation engine consumes through its
Generator interface; retries and backoff live here, not in the core.
*/
package geminiservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	geminiAPIURL   = "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.5-flash:generateContent?key="
	maxRetries     = 3
	initialBackoff = 1 * time.Second
	requestTimeout = 30 * time.Second
)

// --- Structs for Gemini API Request/Response ---

type GeminiPayload struct {
	Contents []GeminiContent `json:"contents"`
}

type GeminiContent struct {
	Parts []GeminiPart `json:"parts"`
}

type GeminiPart struct {
	Text string `json:"text,omitempty"`
}

type GeminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Client is a thin Gemini API client. Build one with NewClient; the zero
// value has no HTTP client.
type Client struct {
	httpClient *http.Client
}

func NewClient() *Client {
	return &Client{httpClient: &http.Client{Timeout: requestTimeout}}
}

// Generate sends the prompt to Gemini and returns the raw text of the first
// candidate. The response may or may not be the JSON the prompt asked for;
// callers are responsible for tolerant parsing. Attempts are retried with
// exponential backoff; ctx cancellation aborts between attempts.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		log.Error().Msg("FATAL: GEMINI_API_KEY environment variable is not set.")
		return "", fmt.Errorf("server is not configured for AI recommendations")
	}

	payload := GeminiPayload{
		Contents: []GeminiContent{
			{Parts: []GeminiPart{{Text: prompt}}},
		},
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal payload: %w", err)
	}

	var lastErr error

	for i := 0; i < maxRetries; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)

		req, err := http.NewRequestWithContext(reqCtx, "POST", geminiAPIURL+apiKey, bytes.NewBuffer(payloadBytes))
		if err != nil {
			cancel()
			return "", fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		log.Info().Msgf("Attempt %d: Calling Gemini API...", i+1)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			cancel()
			lastErr = fmt.Errorf("request failed: %w", err)
			log.Warn().Err(lastErr).Msgf("Attempt %d failed", i+1)

			time.Sleep(initialBackoff * time.Duration(math.Pow(2, float64(i))))
			continue
		}

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			lastErr = fmt.Errorf("API returned non-200 status: %s, Body: %s", resp.Status, string(body))
			log.Warn().Err(lastErr).Msgf("Attempt %d failed", i+1)

			resp.Body.Close()
			cancel()
			time.Sleep(initialBackoff * time.Duration(math.Pow(2, float64(i))))
			continue
		}

		var geminiResp GeminiResponse
		if err := json.NewDecoder(resp.Body).Decode(&geminiResp); err != nil {
			resp.Body.Close()
			cancel()
			return "", fmt.Errorf("failed to decode response: %w", err)
		}
		resp.Body.Close()
		cancel()

		if len(geminiResp.Candidates) > 0 && len(geminiResp.Candidates[0].Content.Parts) > 0 {
			return geminiResp.Candidates[0].Content.Parts[0].Text, nil
		}

		return "", fmt.Errorf("no content found in Gemini response")
	}

	return "", fmt.Errorf("failed to call Gemini API after %d attempts: %w", maxRetries, lastErr)
}
