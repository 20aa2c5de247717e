// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - CreateUserRequest: username, email
  - SubmitArgumentRequest: title, content, category, user_id, sources
  - SubmitRebuttalRequest: content, user_id, sources
  - SourceInput: url, title, description

# Response Types

  - ArgumentResponse: argument plus the fact_check verdict
  - RebuttalResponse: rebuttal plus the fact_check verdict
  - HealthResponse: status, database, ai_enabled, uptime
  - ErrorResponse: error, code, invalid_sources

# Domain Types

  - User: platform participant (username and email unique)
  - Argument: sourced claim with verification state, sources, and rebuttals
  - Rebuttal: sourced counter-claim attached to an approved argument
  - Source: citation owned by an argument or a rebuttal
  - Verdict: structured output of the fact-check judge

# Constants

Verification status values:

	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"

Pending is only the column default; a submission always ends approved or rejected.
*/
package models
