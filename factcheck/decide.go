// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package factcheck

import "github.com/danielhkuo/onlyfringe/models"

// Decide maps a verdict to a verification status.
// Approved iff the judge found it valid and the score reaches threshold.
func Decide(v models.Verdict, threshold int) string {
	if v.IsValid && v.Score >= threshold {
		return models.StatusApproved
	}
	return models.StatusRejected
}
