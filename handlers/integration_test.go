// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/onlyfringe/factcheck"
	"github.com/danielhkuo/onlyfringe/models"
	"github.com/danielhkuo/onlyfringe/submission"
	"github.com/danielhkuo/onlyfringe/testutil"
)

// TestFullDebateWorkflow tests the complete end-to-end workflow:
// 1. Create users
// 2. Submit an argument that the judge approves
// 3. List approved arguments
// 4. Submit a rebuttal
// 5. Fetch the argument with its rebuttal
// 6. Submit an argument that the judge rejects
// 7. Verify it is hidden from the default listing
func TestFullDebateWorkflow(t *testing.T) {
	st := testutil.SetupTestStore(t)
	judge := testutil.ApprovingJudge(88)

	userHandler := NewUserHandler(st)
	argumentHandler := NewArgumentHandler(st, submission.NewService(st, judge, testRules(), nil))

	// Step 1: Create users
	userIDs := map[string]string{}
	for _, name := range []string{"alice", "bob"} {
		body, _ := json.Marshal(models.CreateUserRequest{Username: name, Email: name + "@example.com"})
		req := httptest.NewRequest("POST", "/api/users", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		userHandler.CreateUser(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("Step 1 - Create user %s failed: %d - %s", name, w.Code, w.Body.String())
		}

		var user models.User
		json.NewDecoder(w.Body).Decode(&user)
		userIDs[name] = user.ID
	}
	t.Logf("Step 1 - Created users: %v", userIDs)

	// Step 2: Submit an argument
	argReq := models.SubmitArgumentRequest{
		Title:    "Remote work raises productivity",
		Content:  testutil.ValidContent(),
		Category: "economics",
		UserID:   userIDs["alice"],
		Sources:  testutil.ValidSources(),
	}
	body, _ := json.Marshal(argReq)
	req := httptest.NewRequest("POST", "/api/arguments", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	argumentHandler.SubmitArgument(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("Step 2 - Submit argument failed: %d - %s", w.Code, w.Body.String())
	}

	var argResp models.ArgumentResponse
	json.NewDecoder(w.Body).Decode(&argResp)
	if argResp.VerificationStatus != models.StatusApproved {
		t.Fatalf("Step 2 - Expected approved, got %s", argResp.VerificationStatus)
	}
	argumentID := argResp.ID
	t.Logf("Step 2 - Argument %s approved with score %d", argumentID, argResp.FactCheck.Score)

	// Step 3: List approved arguments
	req = httptest.NewRequest("GET", "/api/arguments", nil)
	w = httptest.NewRecorder()
	argumentHandler.ListArguments(w, req)

	var listed []models.Argument
	json.NewDecoder(w.Body).Decode(&listed)
	if len(listed) != 1 || listed[0].ID != argumentID {
		t.Fatalf("Step 3 - Expected only the approved argument, got %+v", listed)
	}
	if listed[0].Author == nil || listed[0].Author.Username != "alice" {
		t.Errorf("Step 3 - Expected author alice, got %+v", listed[0].Author)
	}

	// Step 4: Bob rebuts
	rebReq := models.SubmitRebuttalRequest{
		Content: "Several of these studies measure self-reported output only.",
		UserID:  userIDs["bob"],
		Sources: testutil.ValidSources(),
	}
	body, _ = json.Marshal(rebReq)
	req = httptest.NewRequest("POST", "/api/arguments/"+argumentID+"/rebuttals", bytes.NewReader(body))
	req.SetPathValue("id", argumentID)
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	argumentHandler.SubmitRebuttal(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("Step 4 - Submit rebuttal failed: %d - %s", w.Code, w.Body.String())
	}

	var rebResp models.RebuttalResponse
	json.NewDecoder(w.Body).Decode(&rebResp)
	t.Logf("Step 4 - Rebuttal %s is %s", rebResp.ID, rebResp.VerificationStatus)

	// Step 5: Fetch the argument with its rebuttal
	req = httptest.NewRequest("GET", "/api/arguments/"+argumentID, nil)
	req.SetPathValue("id", argumentID)
	w = httptest.NewRecorder()
	argumentHandler.GetArgument(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Step 5 - Get argument failed: %d - %s", w.Code, w.Body.String())
	}

	var full models.Argument
	json.NewDecoder(w.Body).Decode(&full)
	if len(full.Rebuttals) != 1 || full.Rebuttals[0].ID != rebResp.ID {
		t.Fatalf("Step 5 - Expected the rebuttal, got %+v", full.Rebuttals)
	}
	if full.Rebuttals[0].Author == nil || full.Rebuttals[0].Author.Username != "bob" {
		t.Errorf("Step 5 - Expected rebuttal author bob, got %+v", full.Rebuttals[0].Author)
	}
	if len(full.Rebuttals[0].Sources) != 2 {
		t.Errorf("Step 5 - Expected 2 rebuttal sources, got %d", len(full.Rebuttals[0].Sources))
	}

	// Step 6: A rejected argument
	judge.Verdict = testutil.RejectingJudge().Verdict
	argReq.Title = "A weaker claim"
	body, _ = json.Marshal(argReq)
	req = httptest.NewRequest("POST", "/api/arguments", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	argumentHandler.SubmitArgument(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("Step 6 - Submit argument failed: %d - %s", w.Code, w.Body.String())
	}
	json.NewDecoder(w.Body).Decode(&argResp)
	if argResp.VerificationStatus != models.StatusRejected {
		t.Fatalf("Step 6 - Expected rejected, got %s", argResp.VerificationStatus)
	}

	// Step 7: Default listing still shows one, status=all shows both
	for query, want := range map[string]int{"": 1, "?status=all": 2, "?status=rejected": 1} {
		req = httptest.NewRequest("GET", "/api/arguments"+query, nil)
		w = httptest.NewRecorder()
		argumentHandler.ListArguments(w, req)

		var list []models.Argument
		json.NewDecoder(w.Body).Decode(&list)
		if len(list) != want {
			t.Errorf("Step 7 - %q: expected %d arguments, got %d", query, want, len(list))
		}
	}

	if judge.Calls() != 3 {
		t.Errorf("Expected 3 judge calls, got %d", judge.Calls())
	}
}

// TestDebateWorkflow_JudgeDisabled runs the flow with no API key:
// the argument is stored rejected and cannot be rebutted.
func TestDebateWorkflow_JudgeDisabled(t *testing.T) {
	st := testutil.SetupTestStore(t)

	userHandler := NewUserHandler(st)
	argumentHandler := NewArgumentHandler(st, submission.NewService(st, factcheck.Disabled{}, testRules(), nil))

	// Step 1: Create alice
	w := httptest.NewRecorder()
	userHandler.CreateUser(w, testutil.MakeRequest("POST", "/api/users",
		models.CreateUserRequest{Username: "alice", Email: "alice@example.com"}, nil))
	testutil.AssertStatus(t, w, http.StatusCreated)

	var alice models.User
	testutil.AssertJSON(t, w, &alice)

	// Step 2: The argument is stored but rejected with score 0
	w = submitArgument(argumentHandler, models.SubmitArgumentRequest{
		Title:   "Remote work raises productivity",
		Content: testutil.ValidContent(),
		UserID:  alice.ID,
		Sources: testutil.ValidSources(),
	})
	testutil.AssertStatus(t, w, http.StatusCreated)

	var argResp models.ArgumentResponse
	testutil.AssertJSON(t, w, &argResp)
	if argResp.VerificationStatus != models.StatusRejected {
		t.Fatalf("Step 2 - Expected rejected, got %s", argResp.VerificationStatus)
	}
	if argResp.FactCheck.Score != 0 || argResp.FactCheck.IsValid {
		t.Errorf("Step 2 - Expected the disabled verdict, got %+v", argResp.FactCheck)
	}
	if len(argResp.FactCheck.Issues) == 0 {
		t.Error("Step 2 - Expected the disabled verdict to explain itself")
	}

	// Step 3: A rebuttal to it is refused
	w = submitRebuttal(argumentHandler, argResp.ID, models.SubmitRebuttalRequest{
		Content: "The studies measure self-reported output only.",
		UserID:  alice.ID,
		Sources: testutil.ValidSources(),
	})
	testutil.AssertStatus(t, w, http.StatusBadRequest)

	var errResp models.ErrorResponse
	testutil.AssertJSON(t, w, &errResp)
	if errResp.Code != "ArgumentNotRebuttable" {
		t.Errorf("Step 3 - Expected ArgumentNotRebuttable, got %q (%s)", errResp.Code, errResp.Error)
	}

	// Step 4: The default listing hides it
	req := httptest.NewRequest("GET", "/api/arguments", nil)
	w = httptest.NewRecorder()
	argumentHandler.ListArguments(w, req)

	var list []models.Argument
	testutil.AssertJSON(t, w, &list)
	if len(list) != 0 {
		t.Errorf("Step 4 - Expected no approved arguments, got %d", len(list))
	}
}
