// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the OnlyFringe API.

# Handler Types

Each handler is a struct holding its dependencies:

  - UserHandler: user registration and lookup
  - ArgumentHandler: argument listing, retrieval, and submission of
    arguments and rebuttals
  - HealthHandler: welcome document and health report

Handlers are created via constructor functions:

	users := handlers.NewUserHandler(st)
	arguments := handlers.NewArgumentHandler(st, submission.NewService(st, judge, rules, m))

# Submission Flow

Submissions go through the submission service, which validates the
request, consults the fact-check judge, decides the verification status,
and persists the result:

	POST /api/arguments                → SubmitArgument
	POST /api/arguments/{id}/rebuttals → SubmitRebuttal

Validation failures never reach the judge. They are returned as

	{"error": "...", "code": "InsufficientSources"}

with status 404 for an unknown user or argument and 400 otherwise.
Invalid source URLs are listed under invalid_sources.

A rejected submission is still stored and returned with 201; its
verification_status is "rejected".

# Listing

	GET /api/arguments?status=approved&category=science

status defaults to approved. status=all lists every status.
*/
package handlers
