// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/onlyfringe/cliparse"
	"github.com/danielhkuo/onlyfringe/db"
	"github.com/danielhkuo/onlyfringe/models"
	"github.com/danielhkuo/onlyfringe/store"
)

var dbCounter atomic.Int64

// SetupTestDB creates a fresh in-memory SQLite database with the full schema
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	name := fmt.Sprintf("test_%d_%d", time.Now().UnixNano(), dbCounter.Add(1))
	conn, err := db.Open(db.DialectSQLite, "file:"+name+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.Migrate(conn, db.DialectSQLite); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return conn
}

// SetupTestStore returns a store over a fresh test database
func SetupTestStore(t *testing.T) *store.Store {
	t.Helper()
	return store.New(SetupTestDB(t), db.DialectSQLite)
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:              5000,
		DatabaseURL:       "file::memory:",
		DatabaseType:      db.DialectSQLite,
		MinSources:        cliparse.DefaultMinSources,
		MinArgumentLength: cliparse.DefaultMinArgumentLength,
		MaxArgumentLength: cliparse.DefaultMaxArgumentLength,
		ApprovalThreshold: cliparse.DefaultApprovalThreshold,
		AIModel:           cliparse.DefaultAIModel,
		AITemperature:     cliparse.DefaultAITemperature,
		AITimeout:         cliparse.DefaultAITimeout,
		SubmitBurst:       cliparse.DefaultSubmitBurst,
		LogLevel:          "error",
	}
}

// ValidContent returns argument text that satisfies the default length rules
func ValidContent() string {
	return strings.Repeat("Evidence suggests the claim holds under review. ", 4)
}

// ValidSources returns two well-formed sources
func ValidSources() []models.SourceInput {
	return []models.SourceInput{
		{URL: "https://example.com/study", Title: "Study", Description: "Primary data"},
		{URL: "https://example.org/review"},
	}
}

// CreateTestUser inserts a user and returns it
func CreateTestUser(t *testing.T, st *store.Store, username string) models.User {
	t.Helper()

	u := models.User{
		ID:        uuid.NewString(),
		Username:  username,
		Email:     username + "@example.com",
		CreatedAt: time.Now().UTC(),
	}
	if err := st.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return u
}

// CreateTestArgument inserts an argument with two sources.
// status should be "pending", "approved", or "rejected"
func CreateTestArgument(t *testing.T, st *store.Store, userID, status string) models.Argument {
	t.Helper()
	return CreateTestArgumentAt(t, st, userID, status, time.Now().UTC())
}

// CreateTestArgumentAt is CreateTestArgument with a fixed creation time
func CreateTestArgumentAt(t *testing.T, st *store.Store, userID, status string, createdAt time.Time) models.Argument {
	t.Helper()

	verdict := models.Verdict{IsValid: status == models.StatusApproved, Score: 50}
	if status == models.StatusApproved {
		verdict.Score = 90
	}

	a := models.Argument{
		ID:                 uuid.NewString(),
		Title:              "Test Argument",
		Content:            ValidContent(),
		UserID:             userID,
		CreatedAt:          createdAt,
		UpdatedAt:          createdAt,
		IsVerified:         status == models.StatusApproved,
		VerificationStatus: status,
		FactCheck:          &verdict,
	}
	for _, src := range ValidSources() {
		title := src.Title
		s := models.Source{ID: uuid.NewString(), URL: src.URL, IsValid: true, CreatedAt: createdAt}
		if title != "" {
			s.Title = &title
		}
		a.Sources = append(a.Sources, s)
	}

	if err := st.CreateArgument(context.Background(), &a); err != nil {
		t.Fatalf("Failed to create test argument: %v", err)
	}
	return a
}

// StubJudge returns a fixed verdict and counts calls
type StubJudge struct {
	Verdict models.Verdict
	Off     bool

	mu    sync.Mutex
	calls int
	last  string
}

// ApprovingJudge returns a stub that approves with the given score
func ApprovingJudge(score int) *StubJudge {
	return &StubJudge{Verdict: models.Verdict{
		IsValid:         true,
		Score:           score,
		Issues:          []string{},
		Recommendations: []string{},
	}}
}

// RejectingJudge returns a stub whose verdict is invalid
func RejectingJudge() *StubJudge {
	return &StubJudge{Verdict: models.Verdict{
		IsValid:         false,
		Score:           20,
		Issues:          []string{"Claims are not supported by the sources"},
		Recommendations: []string{"Cite primary research"},
	}}
}

func (j *StubJudge) CheckArgument(ctx context.Context, content string, sources []models.SourceInput) models.Verdict {
	j.record("argument")
	return j.Verdict
}

func (j *StubJudge) CheckRebuttal(ctx context.Context, content, originalArgument string, sources []models.SourceInput) models.Verdict {
	j.record("rebuttal")
	return j.Verdict
}

func (j *StubJudge) Enabled() bool { return !j.Off }

func (j *StubJudge) record(kind string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.calls++
	j.last = kind
}

// Calls returns how many times the judge was consulted
func (j *StubJudge) Calls() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.calls
}

// LastKind returns "argument" or "rebuttal" for the most recent call
func (j *StubJudge) LastKind() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.last
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
