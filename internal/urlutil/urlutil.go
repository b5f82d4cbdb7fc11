// Package urlutil provides URL canonicalization for link resolution and
// source deduplication. URLs are resolved to absolute form and stripped of
// fragments so that the same target expressed differently compares equal.
package urlutil

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

var (
	// ErrInvalidURL is returned when a URL or href cannot be parsed.
	ErrInvalidURL = errors.New("invalid URL")

	// ErrEmptyHref is returned when an empty href is resolved.
	ErrEmptyHref = errors.New("empty href")
)

// Absolute resolves href against base and returns the absolute URL.
func Absolute(base, href string) (string, error) {
	if strings.TrimSpace(href) == "" {
		return "", fmt.Errorf("resolve %q against %q: %w", href, base, ErrEmptyHref)
	}

	baseURL, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse base %q: %w", base, ErrInvalidURL)
	}

	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", fmt.Errorf("parse href %q: %w", href, ErrInvalidURL)
	}

	return baseURL.ResolveReference(ref).String(), nil
}

// WithoutFragment strips the #fragment component from a URL. The query
// string is preserved. An empty input returns an empty string.
func WithoutFragment(rawURL string) string {
	if rawURL == "" {
		return ""
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		// unparsable URLs pass through so callers can still dedupe on
		// the raw string
		return rawURL
	}

	parsed.Fragment = ""
	parsed.RawFragment = ""
	return parsed.String()
}

// IDNToASCII converts a URL with an internationalized host to its ASCII
// (Punycode) form. Non-IDN hosts pass through unchanged.
func IDNToASCII(rawURL string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("parse %q: %w", rawURL, ErrInvalidURL)
	}

	host := parsed.Hostname()
	if host == "" {
		return parsed.String(), nil
	}

	ascii, err := idna.Lookup.ToASCII(host)
	if err != nil {
		return "", fmt.Errorf("idna %q: %w", host, err)
	}

	if port := parsed.Port(); port != "" {
		parsed.Host = ascii + ":" + port
	} else {
		parsed.Host = ascii
	}
	return parsed.String(), nil
}

// Host returns the ASCII hostname of a URL, for domain matching.
func Host(rawURL string) (string, error) {
	ascii, err := IDNToASCII(rawURL)
	if err != nil {
		return "", err
	}

	parsed, err := url.Parse(ascii)
	if err != nil {
		return "", fmt.Errorf("parse %q: %w", ascii, ErrInvalidURL)
	}
	if parsed.Hostname() == "" {
		return "", fmt.Errorf("no host in %q: %w", rawURL, ErrInvalidURL)
	}
	return strings.ToLower(parsed.Hostname()), nil
}

// DedupCanonical resolves each href against base, strips fragments, and
// returns the unique URLs in first-seen order. Fetch order downstream is
// observable, so the order must be deterministic. Unresolvable hrefs are
// skipped.
func DedupCanonical(base string, hrefs []string) []string {
	seen := make(map[string]struct{}, len(hrefs))
	unique := make([]string, 0, len(hrefs))

	for _, href := range hrefs {
		abs, err := Absolute(base, href)
		if err != nil {
			continue
		}

		canonical := WithoutFragment(abs)
		if _, ok := seen[canonical]; ok {
			continue
		}
		seen[canonical] = struct{}{}
		unique = append(unique, canonical)
	}

	return unique
}
