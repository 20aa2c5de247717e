// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package submission

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/danielhkuo/onlyfringe/models"
	"github.com/danielhkuo/onlyfringe/store"
)

// Rules are the structural requirements for a submission
type Rules struct {
	MinSources        int
	MinArgumentLength int
	MaxArgumentLength int
	ApprovalThreshold int
}

// Lookup is the read side of the store the validator needs
type Lookup interface {
	GetUser(ctx context.Context, id string) (models.User, error)
	GetArgument(ctx context.Context, id string) (models.Argument, error)
}

// Validator runs the ordered, fail-fast checks that gate the judge
type Validator struct {
	Rules  Rules
	Lookup Lookup
}

// Argument checks a new argument and returns its author
func (v Validator) Argument(ctx context.Context, req models.SubmitArgumentRequest) (models.User, error) {
	if strings.TrimSpace(req.Title) == "" {
		return models.User{}, invalid(ErrMissingField, "Title is required")
	}
	if tooLong(req.Title, models.MaxTitleLength) {
		return models.User{}, invalid(ErrLengthOutOfRange,
			fmt.Sprintf("Title must not exceed %d characters", models.MaxTitleLength))
	}
	if tooLong(req.Category, models.MaxCategoryLength) {
		return models.User{}, invalid(ErrLengthOutOfRange,
			fmt.Sprintf("Category must not exceed %d characters", models.MaxCategoryLength))
	}
	if strings.TrimSpace(req.Content) == "" {
		return models.User{}, invalid(ErrMissingField, "Content is required")
	}
	if strings.TrimSpace(req.UserID) == "" {
		return models.User{}, invalid(ErrMissingField, "User ID is required")
	}
	if err := v.checkSourceCount(req.Sources); err != nil {
		return models.User{}, err
	}

	n := utf8.RuneCountInString(req.Content)
	if n < v.Rules.MinArgumentLength {
		return models.User{}, invalid(ErrLengthOutOfRange,
			fmt.Sprintf("Argument must be at least %d characters", v.Rules.MinArgumentLength))
	}
	if n > v.Rules.MaxArgumentLength {
		return models.User{}, invalid(ErrLengthOutOfRange,
			fmt.Sprintf("Argument must not exceed %d characters", v.Rules.MaxArgumentLength))
	}
	if err := checkSourceTitles(req.Sources); err != nil {
		return models.User{}, err
	}

	user, err := v.author(ctx, req.UserID)
	if err != nil {
		return models.User{}, err
	}

	if err := checkURLs(req.Sources); err != nil {
		return models.User{}, err
	}
	return user, nil
}

// Rebuttal checks a rebuttal against argumentID. The parent is checked
// before the body: a missing or unapproved parent refuses any content.
func (v Validator) Rebuttal(ctx context.Context, argumentID string, req models.SubmitRebuttalRequest) (models.Argument, models.User, error) {
	parent, err := v.Lookup.GetArgument(ctx, argumentID)
	if errors.Is(err, store.ErrNotFound) {
		return models.Argument{}, models.User{}, invalid(ErrArgumentNotFound, "Argument not found")
	}
	if err != nil {
		return models.Argument{}, models.User{}, fmt.Errorf("load argument: %w", err)
	}
	if parent.VerificationStatus != models.StatusApproved {
		return models.Argument{}, models.User{}, invalid(ErrArgumentNotRebuttable, "Can only rebut approved arguments")
	}

	if strings.TrimSpace(req.Content) == "" {
		return models.Argument{}, models.User{}, invalid(ErrMissingField, "Content is required")
	}
	if strings.TrimSpace(req.UserID) == "" {
		return models.Argument{}, models.User{}, invalid(ErrMissingField, "User ID is required")
	}
	if err := v.checkSourceCount(req.Sources); err != nil {
		return models.Argument{}, models.User{}, err
	}
	if err := checkSourceTitles(req.Sources); err != nil {
		return models.Argument{}, models.User{}, err
	}

	user, err := v.author(ctx, req.UserID)
	if err != nil {
		return models.Argument{}, models.User{}, err
	}

	if err := checkURLs(req.Sources); err != nil {
		return models.Argument{}, models.User{}, err
	}
	return parent, user, nil
}

func (v Validator) checkSourceCount(sources []models.SourceInput) error {
	if len(sources) == 0 || len(sources) < v.Rules.MinSources {
		min := v.Rules.MinSources
		if min < 1 {
			min = 1
		}
		return invalid(ErrInsufficientSources, fmt.Sprintf("At least %d sources are required", min))
	}
	return nil
}

func checkSourceTitles(sources []models.SourceInput) error {
	for _, s := range sources {
		if tooLong(s.Title, models.MaxSourceTitleLength) {
			return invalid(ErrLengthOutOfRange,
				fmt.Sprintf("Source title must not exceed %d characters", models.MaxSourceTitleLength))
		}
	}
	return nil
}

// tooLong measures s as stored: trimmed, in characters
func tooLong(s string, limit int) bool {
	return utf8.RuneCountInString(strings.TrimSpace(s)) > limit
}

func (v Validator) author(ctx context.Context, id string) (models.User, error) {
	user, err := v.Lookup.GetUser(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return models.User{}, invalid(ErrUserNotFound, "User not found")
	}
	if err != nil {
		return models.User{}, fmt.Errorf("load user: %w", err)
	}
	return user, nil
}

func checkURLs(sources []models.SourceInput) error {
	if failed := invalidSources(sources); len(failed) > 0 {
		return &ValidationError{
			Kind:           ErrInvalidSourceURL,
			Message:        "Invalid source URLs",
			InvalidSources: failed,
		}
	}
	return nil
}
