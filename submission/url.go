// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package submission

import (
	"net"
	"net/url"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/danielhkuo/onlyfringe/models"
)

// ValidURL reports whether raw is an absolute URL with a scheme and a
// well-formed host that fits the url column. It is a syntax check only;
// nothing is fetched.
func ValidURL(raw string) bool {
	if raw == "" || strings.IndexFunc(raw, unicode.IsSpace) >= 0 {
		return false
	}
	if utf8.RuneCountInString(raw) > models.MaxURLLength {
		return false
	}

	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" || u.Opaque != "" {
		return false
	}

	if port := u.Port(); port != "" {
		n, err := strconv.Atoi(port)
		if err != nil || n < 1 || n > 65535 {
			return false
		}
	} else if strings.HasSuffix(u.Host, ":") {
		return false
	}

	return validHost(u.Hostname())
}

// validHost accepts IP literals, localhost, and dotted hostnames whose
// last label is alphabetic
func validHost(host string) bool {
	if host == "" {
		return false
	}
	if net.ParseIP(host) != nil {
		return true
	}
	if strings.EqualFold(host, "localhost") {
		return true
	}

	host = strings.TrimSuffix(host, ".")
	labels := strings.Split(host, ".")
	if len(labels) < 2 || len(host) > 253 {
		return false
	}
	for _, label := range labels {
		if !validLabel(label) {
			return false
		}
	}

	tld := labels[len(labels)-1]
	if len(tld) < 2 {
		return false
	}
	for _, r := range tld {
		if !unicode.IsLetter(r) {
			// punycode TLDs
			return strings.HasPrefix(strings.ToLower(tld), "xn--")
		}
	}
	return true
}

func validLabel(label string) bool {
	if label == "" || len(label) > 63 {
		return false
	}
	if label[0] == '-' || label[len(label)-1] == '-' {
		return false
	}
	for _, r := range label {
		if r != '-' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// CheckSources reports the URL check for every source, in input order
func CheckSources(sources []models.SourceInput) []models.SourceCheck {
	checks := make([]models.SourceCheck, len(sources))
	for i, s := range sources {
		checks[i] = models.SourceCheck{
			URL:            s.URL,
			IsValidURL:     ValidURL(s.URL),
			Title:          s.Title,
			HasDescription: s.Description != "",
		}
	}
	return checks
}

// invalidSources returns the failed checks, or nil when all passed
func invalidSources(sources []models.SourceInput) []models.SourceCheck {
	var failed []models.SourceCheck
	for _, c := range CheckSources(sources) {
		if !c.IsValidURL {
			failed = append(failed, c)
		}
	}
	return failed
}
