// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package factcheck

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sashabaranov/go-openai"

	"github.com/danielhkuo/onlyfringe/models"
)

// OpenAIJudge asks an OpenAI-compatible chat model for a JSON verdict
type OpenAIJudge struct {
	client   *openai.Client
	cfg      Config
	validate *validator.Validate
	rec      Recorder
}

func NewOpenAIJudge(cfg Config, rec Recorder) *OpenAIJudge {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	if cfg.Model == "" {
		cfg.Model = openai.GPT4
	}

	return &OpenAIJudge{
		client:   openai.NewClientWithConfig(clientConfig),
		cfg:      cfg,
		validate: validator.New(),
		rec:      rec,
	}
}

func (j *OpenAIJudge) Enabled() bool { return true }

func (j *OpenAIJudge) CheckArgument(ctx context.Context, content string, sources []models.SourceInput) models.Verdict {
	return j.check(ctx, "argument", argumentPrompt(content, sources))
}

func (j *OpenAIJudge) CheckRebuttal(ctx context.Context, content, originalArgument string, sources []models.SourceInput) models.Verdict {
	return j.check(ctx, "rebuttal", rebuttalPrompt(content, originalArgument, sources))
}

func (j *OpenAIJudge) check(ctx context.Context, kind, prompt string) models.Verdict {
	verdict, err := j.complete(ctx, prompt)
	if err != nil {
		outcome := OutcomeInvalid
		if errors.Is(err, ErrJudgeUnavailable) {
			outcome = OutcomeUnavailable
		}
		slog.Warn("fact-check failed", "kind", kind, "outcome", outcome, "error", err)
		observe(j.rec, kind, outcome)
		return FailureVerdict(err)
	}

	observe(j.rec, kind, OutcomeOK)
	return verdict
}

func (j *OpenAIJudge) complete(ctx context.Context, prompt string) (models.Verdict, error) {
	if j.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.cfg.Timeout)
		defer cancel()
	}

	resp, err := j.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: j.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: float32(j.cfg.Temperature),
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return models.Verdict{}, fmt.Errorf("%w: %v", ErrJudgeUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return models.Verdict{}, fmt.Errorf("%w: no response from model", ErrJudgeUnavailable)
	}

	verdict, err := j.parseVerdict(resp.Choices[0].Message.Content)
	if err != nil {
		return models.Verdict{}, fmt.Errorf("%w: %v", ErrJudgeError, err)
	}
	return verdict, nil
}

// rawVerdict is the reply schema. Pointers distinguish a missing field
// from its zero value; unknown fields are ignored.
type rawVerdict struct {
	IsValid         *bool    `json:"is_valid" validate:"required"`
	Score           *float64 `json:"score" validate:"required,min=0,max=100"`
	Issues          []string `json:"issues"`
	Recommendations []string `json:"recommendations"`

	FactualAccuracy     json.RawMessage `json:"factual_accuracy"`
	LogicalCoherence    json.RawMessage `json:"logical_coherence"`
	SourceQuality       json.RawMessage `json:"source_quality"`
	ContextCompleteness json.RawMessage `json:"context_completeness"`
	AddressesOriginal   json.RawMessage `json:"addresses_original"`
	EvidenceQuality     json.RawMessage `json:"evidence_quality"`
}

func (j *OpenAIJudge) parseVerdict(content string) (models.Verdict, error) {
	var raw rawVerdict
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &raw); err != nil {
		return models.Verdict{}, fmt.Errorf("decode verdict: %w", err)
	}
	if err := j.validate.Struct(raw); err != nil {
		return models.Verdict{}, fmt.Errorf("verdict schema: %w", err)
	}

	v := models.Verdict{
		IsValid:             *raw.IsValid,
		Score:               int(math.Floor(*raw.Score)), // never round up across the threshold
		Issues:              raw.Issues,
		Recommendations:     raw.Recommendations,
		FactualAccuracy:     assessment(raw.FactualAccuracy),
		LogicalCoherence:    assessment(raw.LogicalCoherence),
		SourceQuality:       assessment(raw.SourceQuality),
		ContextCompleteness: assessment(raw.ContextCompleteness),
		AddressesOriginal:   assessment(raw.AddressesOriginal),
		EvidenceQuality:     assessment(raw.EvidenceQuality),
	}
	if v.Issues == nil {
		v.Issues = []string{}
	}
	if v.Recommendations == nil {
		v.Recommendations = []string{}
	}
	return v, nil
}

// assessment flattens a free-text field. Models sometimes answer with a
// bool or an object instead of a sentence; those are kept as raw JSON.
func assessment(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
