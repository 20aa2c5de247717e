// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

Commands that own their flag set (cobra) register the flags with BindFlags
and resolve them after parsing:

	cliparse.BindFlags(cmd.Flags())
	cfg, err := cliparse.Resolve(cmd.Flags())

# CLI Flags and Environment Variables

	-p, --port             PORT                  (default: 5000)
	-d, --database-url     DATABASE_URL          (default: file:onlyfringe.db)
	-t, --database-type    DATABASE_TYPE         (default: sqlite)
	--min-sources          MIN_SOURCES_REQUIRED  (default: 2)
	--min-length           MIN_ARGUMENT_LENGTH   (default: 100)
	--max-length           MAX_ARGUMENT_LENGTH   (default: 5000)
	--approval-threshold   APPROVAL_THRESHOLD    (default: 70)
	--ai-model             AI_MODEL              (default: gpt-4)
	--ai-temperature       AI_TEMPERATURE        (default: 0.3)
	--ai-timeout           AI_TIMEOUT            (default: 30s, max: 90s)
	--ai-base-url          OPENAI_BASE_URL
	--key-file             API_KEY_FILE          (default: .hexstrike_api_keys)
	--redis-url            REDIS_URL
	--submit-rate          SUBMIT_RATE           (default: 0, disabled)
	--submit-burst         SUBMIT_BURST          (default: 5)
	--log-level            LOG_LEVEL             (default: info)

CLI flags take precedence over environment variables.

# API Key

The fact-check key is read from the key file (KEY=VALUE lines, # comments)
first and OPENAI_API_KEY second. It has no flag. Without a key the
fact-check judge is disabled and every submission is rejected.

# Validation

Resolve returns an error for out-of-range values: unknown database type,
an approval threshold outside 0-100, an inverted length range, or a
non-positive AI timeout.
*/
package cliparse
