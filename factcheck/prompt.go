// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package factcheck

import (
	"fmt"
	"strings"

	"github.com/danielhkuo/onlyfringe/models"
)

const systemPrompt = "You are an expert fact-checker and logical reasoning analyst. Provide thorough, unbiased analysis."

const argumentTemplate = `You are a rigorous fact-checker for a debate platform. Analyze the following argument for:
1. Factual accuracy - Are the claims verifiable and true?
2. Logical coherence - Is the reasoning sound and well-structured?
3. Source quality - Are the sources credible and relevant?
4. Context completeness - Does the argument provide full context?
5. Evidence-based reasoning - Are claims supported by evidence?

Argument:
%s

Sources provided:
%s

Provide your analysis in the following JSON format:
{
    "is_valid": true/false,
    "score": 0-100,
    "issues": ["list of any issues found"],
    "recommendations": ["list of recommendations for improvement"],
    "factual_accuracy": "assessment of factual claims",
    "logical_coherence": "assessment of logical structure",
    "source_quality": "assessment of sources",
    "context_completeness": "assessment of context provided"
}
`

const rebuttalTemplate = `You are a rigorous fact-checker for a debate platform. Analyze the following rebuttal for:
1. Factual accuracy - Are the claims verifiable and true?
2. Logical response - Does it address the original argument effectively?
3. Evidence-based reasoning - Are counter-claims supported by evidence?
4. Source quality - Are the sources credible and relevant?
5. Avoidance of rhetoric - Does it focus on facts rather than emotional appeals?

Original Argument:
%s

Rebuttal:
%s

Sources provided for rebuttal:
%s

Provide your analysis in the following JSON format:
{
    "is_valid": true/false,
    "score": 0-100,
    "issues": ["list of any issues found"],
    "recommendations": ["list of recommendations for improvement"],
    "addresses_original": "does the rebuttal address the original argument",
    "factual_accuracy": "assessment of factual claims",
    "evidence_quality": "assessment of evidence provided"
}
`

func argumentPrompt(content string, sources []models.SourceInput) string {
	return fmt.Sprintf(argumentTemplate, content, formatSources(sources))
}

func rebuttalPrompt(content, original string, sources []models.SourceInput) string {
	return fmt.Sprintf(rebuttalTemplate, original, content, formatSources(sources))
}

// formatSources renders one line per source:
// - <title>: <url> - <description>
func formatSources(sources []models.SourceInput) string {
	lines := make([]string, 0, len(sources))
	for _, s := range sources {
		title := s.Title
		if title == "" {
			title = "Untitled"
		}
		url := s.URL
		if url == "" {
			url = "No URL"
		}
		desc := s.Description
		if desc == "" {
			desc = "No description"
		}
		lines = append(lines, fmt.Sprintf("- %s: %s - %s", title, url, desc))
	}
	return strings.Join(lines, "\n")
}
