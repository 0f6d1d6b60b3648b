// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/url"
	"strings"
	"unicode/utf8"
)

// Validation limits for submitted and administered fields.
const (
	maxNameLen        = 120
	maxTitleLen       = 200
	maxDescriptionLen = 2_000
	maxEmailLen       = 254
	maxHrefLen        = 2_048
	maxTagLen         = 50
	maxTags           = 20
)

// validateSubmission checks public submission inputs and returns the first
// error found as a user-facing message, or "" when everything passes.
func validateSubmission(name, email, title, description, href string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Name is required."
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		return "Name is too long (max 120 characters)."
	}
	if msg := validateEmail(email); msg != "" {
		return msg
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return "Title is required."
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return "Title is too long (max 200 characters)."
	}
	if utf8.RuneCountInString(description) > maxDescriptionLen {
		return "Description is too long (max 2,000 characters)."
	}
	if href != "" {
		if msg := validateHref(href); msg != "" {
			return msg
		}
	}
	return ""
}

// validateEmail does a shallow shape check. Real verification happens when
// staff contact the submitter.
func validateEmail(email string) string {
	email = strings.TrimSpace(email)
	if email == "" {
		return "Email is required."
	}
	if utf8.RuneCountInString(email) > maxEmailLen {
		return "Email is too long (max 254 characters)."
	}
	at := strings.Index(email, "@")
	if at < 1 || at == len(email)-1 || !strings.Contains(email[at:], ".") {
		return "Email does not look valid."
	}
	return ""
}

// validateHref requires an absolute http or https URL.
func validateHref(href string) string {
	if utf8.RuneCountInString(href) > maxHrefLen {
		return "Link is too long (max 2,048 characters)."
	}
	u, err := url.Parse(href)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return "Link must be an absolute URL."
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "Link must use http or https."
	}
	return ""
}

// validateTags bounds the tag list a service carries.
func validateTags(tags []string) string {
	if len(tags) > maxTags {
		return "Too many tags (max 20)."
	}
	for _, tag := range tags {
		if strings.TrimSpace(tag) == "" {
			return "Tags cannot be blank."
		}
		if utf8.RuneCountInString(tag) > maxTagLen {
			return "Tags are too long (max 50 characters each)."
		}
	}
	return ""
}
