// Package concierge is the adapter for the external text-generation service.
// Both entry points resolve every failure path to a displayable string;
// callers never see an error and never retry.
package concierge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/tsukuda/clubpass/internal/model"
)

// Fallback strings shown when the service cannot answer. Missing
// credentials, call failure, and an empty completion are distinguishable to
// the user but identical in behavior.
const (
	fallbackNoKey    = "申し訳ありません。現在AIとの通信ができません。"
	fallbackAPIError = "申し訳ありません。エラーが発生しました。時間をおいて再度お試しください。"
	fallbackEmpty    = "申し訳ありません。もう一度お聞きしてもよろしいですか？"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel   = "gemini-2.5-flash"
)

// Config holds the completion-service credentials. An empty APIKey is a
// valid, expected state that routes every call to fallback text.
type Config struct {
	APIKey string
	Model  string
}

// Service builds prompts from user, catalog, and config context and calls
// the completion service, one attempt per call.
type Service struct {
	cfg        Config
	baseURL    string
	httpClient *http.Client
	now        func() time.Time
	logger     *slog.Logger
}

// NewService creates the concierge adapter.
func NewService(cfg Config, logger *slog.Logger) *Service {
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	return &Service{
		cfg:        cfg,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		now:        time.Now,
		logger:     logger,
	}
}

// Configured reports whether an API key is present.
func (s *Service) Configured() bool {
	return s.cfg.APIKey != ""
}

// GetRecommendation returns a short greeting-plus-recommendation for the
// home tab. Always returns a non-empty string.
func (s *Service) GetRecommendation(ctx context.Context, user model.User, coupons []model.Coupon) string {
	if !s.Configured() {
		return fallbackNoKey
	}

	prompt := recommendationPrompt(user, coupons, TimeOfDay(s.now().Hour()))
	text, err := s.generate(ctx, prompt)
	if err != nil {
		s.logger.Error("recommendation request failed", "error", err)
		return fallbackAPIError
	}
	if text == "" {
		return fallbackEmpty
	}
	return text
}

// GetChatReply answers one chat turn given the running transcript. Always
// returns a non-empty string.
func (s *Service) GetChatReply(ctx context.Context, user model.User, coupons []model.Coupon, history []model.ChatMessage, userMessage string, cfg model.AppConfig) string {
	if !s.Configured() {
		return fallbackNoKey
	}

	prompt := chatPrompt(user, coupons, history, userMessage, TimeOfDay(s.now().Hour()), cfg)
	text, err := s.generate(ctx, prompt)
	if err != nil {
		s.logger.Error("chat request failed", "error", err)
		return fallbackAPIError
	}
	if text == "" {
		return fallbackEmpty
	}
	return text
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

// generate sends one completion request and returns the first candidate's
// text. An empty completion is not an error; callers map it to a fallback.
func (s *Service) generate(ctx context.Context, prompt string) (string, error) {
	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", s.baseURL, s.cfg.Model, s.cfg.APIKey)

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("completion API status %d: %s", resp.StatusCode, msg)
	}

	var gr generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return "", fmt.Errorf("decode completion response: %w", err)
	}

	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return "", nil
	}
	return gr.Candidates[0].Content.Parts[0].Text, nil
}
