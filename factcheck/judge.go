// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package factcheck

import (
	"context"
	"errors"
	"time"

	"github.com/danielhkuo/onlyfringe/models"
)

var (
	// ErrJudgeUnavailable covers transport failures, timeouts, and empty replies.
	ErrJudgeUnavailable = errors.New("fact-check service unavailable")
	// ErrJudgeError covers replies that are not a well-formed verdict.
	ErrJudgeError = errors.New("fact-check returned an invalid verdict")
)

// Judge scores submissions. Implementations never return an error:
// every failure becomes a verdict that cannot be approved.
type Judge interface {
	CheckArgument(ctx context.Context, content string, sources []models.SourceInput) models.Verdict
	CheckRebuttal(ctx context.Context, content, originalArgument string, sources []models.SourceInput) models.Verdict
	Enabled() bool
}

// Recorder receives one observation per judge call.
// kind is "argument" or "rebuttal"; outcome is ok, unavailable, invalid, or disabled.
type Recorder interface {
	ObserveJudgeCall(kind, outcome string)
}

// Call outcomes
const (
	OutcomeOK          = "ok"
	OutcomeUnavailable = "unavailable"
	OutcomeInvalid     = "invalid"
	OutcomeDisabled    = "disabled"
)

type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	Timeout     time.Duration
}

// New returns the OpenAI judge, or Disabled when no key is configured
func New(cfg Config, rec Recorder) Judge {
	if cfg.APIKey == "" {
		return Disabled{Recorder: rec}
	}
	return NewOpenAIJudge(cfg, rec)
}

// Disabled is the judge used without an API key. It makes no calls.
type Disabled struct {
	Recorder Recorder
}

func (d Disabled) CheckArgument(ctx context.Context, content string, sources []models.SourceInput) models.Verdict {
	observe(d.Recorder, "argument", OutcomeDisabled)
	return DisabledVerdict()
}

func (d Disabled) CheckRebuttal(ctx context.Context, content, originalArgument string, sources []models.SourceInput) models.Verdict {
	observe(d.Recorder, "rebuttal", OutcomeDisabled)
	return DisabledVerdict()
}

func (d Disabled) Enabled() bool { return false }

// DisabledVerdict is returned for every submission when fact-checking is off
func DisabledVerdict() models.Verdict {
	return models.Verdict{
		IsValid:         false,
		Score:           0,
		Issues:          []string{"OpenAI API key not configured"},
		Recommendations: []string{"Configure OPENAI_API_KEY to enable fact-checking"},
	}
}

// FailureVerdict turns a judge failure into a rejecting verdict
func FailureVerdict(err error) models.Verdict {
	return models.Verdict{
		IsValid:         false,
		Score:           0,
		Issues:          []string{"Error during fact-checking: " + err.Error()},
		Recommendations: []string{"Please try again or contact support"},
	}
}

func observe(rec Recorder, kind, outcome string) {
	if rec != nil {
		rec.ObserveJudgeCall(kind, outcome)
	}
}
