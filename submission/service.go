// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package submission

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/onlyfringe/factcheck"
	"github.com/danielhkuo/onlyfringe/models"
)

// Store is everything the submission workflow reads and writes
type Store interface {
	Lookup
	CreateArgument(ctx context.Context, a *models.Argument) error
	CreateRebuttal(ctx context.Context, r *models.Rebuttal) error
}

// Recorder receives one observation per persisted submission
type Recorder interface {
	ObserveSubmission(kind, status string)
}

// Service runs validate, fact-check, decide, persist for one submission
type Service struct {
	Store    Store
	Judge    factcheck.Judge
	Rules    Rules
	Recorder Recorder

	Now   func() time.Time
	NewID func() string
}

func NewService(st Store, judge factcheck.Judge, rules Rules, rec Recorder) *Service {
	return &Service{
		Store:    st,
		Judge:    judge,
		Rules:    rules,
		Recorder: rec,
		Now:      time.Now,
		NewID:    uuid.NewString,
	}
}

func (s *Service) validator() Validator {
	return Validator{Rules: s.Rules, Lookup: s.Store}
}

// SubmitArgument validates, fact-checks, and stores a new argument.
// The judge is only called once every structural check has passed.
func (s *Service) SubmitArgument(ctx context.Context, req models.SubmitArgumentRequest) (models.ArgumentResponse, error) {
	author, err := s.validator().Argument(ctx, req)
	if err != nil {
		return models.ArgumentResponse{}, err
	}

	verdict := s.Judge.CheckArgument(ctx, req.Content, req.Sources)
	status := factcheck.Decide(verdict, s.Rules.ApprovalThreshold)

	now := s.Now().UTC()
	arg := models.Argument{
		ID:                 s.NewID(),
		Title:              strings.TrimSpace(req.Title),
		Content:            req.Content,
		Category:           optional(req.Category),
		UserID:             author.ID,
		Author:             &author,
		CreatedAt:          now,
		UpdatedAt:          now,
		IsVerified:         status == models.StatusApproved,
		VerificationStatus: status,
		FactCheck:          &verdict,
		Sources:            s.sources(req.Sources, now),
		Rebuttals:          []models.Rebuttal{},
	}

	if err := s.Store.CreateArgument(ctx, &arg); err != nil {
		return models.ArgumentResponse{}, fmt.Errorf("save argument: %w", err)
	}

	slog.Info("argument submitted",
		"argument_id", arg.ID,
		"user_id", arg.UserID,
		"status", status,
		"score", verdict.Score,
	)
	s.observe("argument", status)

	return models.ArgumentResponse{Argument: arg, FactCheck: verdict}, nil
}

// SubmitRebuttal validates, fact-checks, and stores a rebuttal to an
// approved argument
func (s *Service) SubmitRebuttal(ctx context.Context, argumentID string, req models.SubmitRebuttalRequest) (models.RebuttalResponse, error) {
	parent, author, err := s.validator().Rebuttal(ctx, argumentID, req)
	if err != nil {
		return models.RebuttalResponse{}, err
	}

	verdict := s.Judge.CheckRebuttal(ctx, req.Content, parent.Content, req.Sources)
	status := factcheck.Decide(verdict, s.Rules.ApprovalThreshold)

	now := s.Now().UTC()
	reb := models.Rebuttal{
		ID:                 s.NewID(),
		ArgumentID:         parent.ID,
		Content:            req.Content,
		UserID:             author.ID,
		Author:             &author,
		CreatedAt:          now,
		UpdatedAt:          now,
		IsVerified:         status == models.StatusApproved,
		VerificationStatus: status,
		FactCheck:          &verdict,
		Sources:            s.sources(req.Sources, now),
	}

	if err := s.Store.CreateRebuttal(ctx, &reb); err != nil {
		return models.RebuttalResponse{}, fmt.Errorf("save rebuttal: %w", err)
	}

	slog.Info("rebuttal submitted",
		"rebuttal_id", reb.ID,
		"argument_id", parent.ID,
		"user_id", reb.UserID,
		"status", status,
		"score", verdict.Score,
	)
	s.observe("rebuttal", status)

	return models.RebuttalResponse{Rebuttal: reb, FactCheck: verdict}, nil
}

func (s *Service) sources(in []models.SourceInput, now time.Time) []models.Source {
	out := make([]models.Source, len(in))
	for i, src := range in {
		out[i] = models.Source{
			ID:          s.NewID(),
			URL:         src.URL,
			Title:       optional(src.Title),
			Description: optional(src.Description),
			IsValid:     true,
			CreatedAt:   now,
		}
	}
	return out
}

func (s *Service) observe(kind, status string) {
	if s.Recorder != nil {
		s.Recorder.ObserveSubmission(kind, status)
	}
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
