// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package factcheck scores arguments and rebuttals with an AI judge and turns
the verdict into a verification status.

# Judge

	judge := factcheck.New(factcheck.Config{APIKey: key, Model: "gpt-4"}, recorder)
	verdict := judge.CheckArgument(ctx, content, sources)

The judge never returns an error. Without an API key New returns Disabled,
whose verdicts are invalid with score 0. Transport failures and timeouts
(ErrJudgeUnavailable) and malformed replies (ErrJudgeError) both become
FailureVerdict; the Recorder sees which one happened.

Replies must be a JSON object with is_valid and a score within 0-100.
Other fields are optional and unknown ones are ignored.

# Decision

	status := factcheck.Decide(verdict, 70) // "approved" or "rejected"
*/
package factcheck
