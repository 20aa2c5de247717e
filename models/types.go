package models

import "time"

// Verification status constants
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Column widths of the postgres schema, in characters
const (
	MaxUsernameLength    = 80
	MaxEmailLength       = 120
	MaxTitleLength       = 200
	MaxCategoryLength    = 100
	MaxURLLength         = 500
	MaxSourceTitleLength = 200
)

// Request types

type CreateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

type SourceInput struct {
	URL         string `json:"url"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

type SubmitArgumentRequest struct {
	Title    string        `json:"title"`
	Content  string        `json:"content"`
	Category string        `json:"category,omitempty"`
	UserID   string        `json:"user_id"`
	Sources  []SourceInput `json:"sources"`
}

type SubmitRebuttalRequest struct {
	Content string        `json:"content"`
	UserID  string        `json:"user_id"`
	Sources []SourceInput `json:"sources"`
}

// Response types

type ArgumentResponse struct {
	Argument
	FactCheck Verdict `json:"fact_check"`
}

type RebuttalResponse struct {
	Rebuttal
	FactCheck Verdict `json:"fact_check"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Database  string `json:"database"`
	AIEnabled bool   `json:"ai_enabled"`
	Uptime    string `json:"uptime"`
}

// Domain types

type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type Argument struct {
	ID                 string     `json:"id"`
	Title              string     `json:"title"`
	Content            string     `json:"content"`
	Category           *string    `json:"category"`
	UserID             string     `json:"-"`
	Author             *User      `json:"author"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
	IsVerified         bool       `json:"is_verified"`
	VerificationStatus string     `json:"verification_status"`
	FactCheck          *Verdict   `json:"-"` // stored verdict, only exposed on submission
	Sources            []Source   `json:"sources"`
	Rebuttals          []Rebuttal `json:"rebuttals"`
}

type Source struct {
	ID          string    `json:"id"`
	URL         string    `json:"url"`
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	IsValid     bool      `json:"is_valid"`
	CreatedAt   time.Time `json:"-"`
}

type Rebuttal struct {
	ID                 string    `json:"id"`
	ArgumentID         string    `json:"-"`
	Content            string    `json:"content"`
	UserID             string    `json:"-"`
	Author             *User     `json:"author"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
	IsVerified         bool      `json:"is_verified"`
	VerificationStatus string    `json:"verification_status"`
	FactCheck          *Verdict  `json:"-"`
	Sources            []Source  `json:"sources"`
}

// Verdict is the structured output of the fact-check judge.
// Only IsValid and Score feed the approval decision; the text fields are informational.
type Verdict struct {
	IsValid         bool     `json:"is_valid"`
	Score           int      `json:"score"`
	Issues          []string `json:"issues"`
	Recommendations []string `json:"recommendations"`

	FactualAccuracy     string `json:"factual_accuracy,omitempty"`
	LogicalCoherence    string `json:"logical_coherence,omitempty"`
	SourceQuality       string `json:"source_quality,omitempty"`
	ContextCompleteness string `json:"context_completeness,omitempty"`
	AddressesOriginal   string `json:"addresses_original,omitempty"`
	EvidenceQuality     string `json:"evidence_quality,omitempty"`
}

// SourceCheck reports the URL check for one submitted source.
type SourceCheck struct {
	URL            string `json:"url"`
	IsValidURL     bool   `json:"is_valid_url"`
	Title          string `json:"title,omitempty"`
	HasDescription bool   `json:"has_description"`
}

// Error response

// Error holds the human-readable message; Code names the failure kind.
type ErrorResponse struct {
	Error          string        `json:"error"`
	Code           string        `json:"code,omitempty"`
	InvalidSources []SourceCheck `json:"invalid_sources,omitempty"`
}
