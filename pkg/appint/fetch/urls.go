package fetch

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// AppStoreBase is the listing host every candidate URL points at.
const AppStoreBase = "https://apps.shopify.com"

const maxSlugLen = 50

var (
	slugStripRe = regexp.MustCompile(`[^\p{L}\p{N}_\s-]`)
	slugDashRe  = regexp.MustCompile(`[-\s]+`)
	specialRe   = regexp.MustCompile(`[^\p{L}\p{N}\s]`)
)

// CleanURL reduces a listing URL to https://apps.shopify.com/<slug>,
// dropping query, fragment and trailing slash. It reports false for URLs
// that do not point at a listing.
func CleanURL(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	if host != "apps.shopify.com" {
		return "", false
	}
	path := strings.Trim(u.Path, "/")
	if path == "" {
		return "", false
	}
	slug, _, _ := strings.Cut(path, "/")
	if len(slug) < 2 {
		return "", false
	}
	return AppStoreBase + "/" + slug, true
}

// IsAppURL reports whether raw points at a listing page.
func IsAppURL(raw string) bool {
	_, ok := CleanURL(raw)
	return ok
}

// Slug converts an app name into a listing slug.
func Slug(name string) string {
	s := slugStripRe.ReplaceAllString(strings.TrimSpace(name), "")
	s = slugDashRe.ReplaceAllString(s, "-")
	s = strings.ToLower(strings.Trim(s, "-"))
	if r := []rune(s); len(r) > maxSlugLen {
		s = strings.TrimRight(string(r[:maxSlugLen]), "-")
	}
	return s
}

// CandidateURLs lists the listing URLs worth trying for an app, most likely
// first: the recorded store URL, slugs derived from the name, then the
// numeric app ID route.
func CandidateURLs(name, appID, storeURL string) []string {
	var out []string
	seen := make(map[string]struct{})
	add := func(u string) {
		if u == "" {
			return
		}
		if _, ok := seen[u]; ok {
			return
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	addSlug := func(s string) {
		if s = Slug(s); len(s) >= 2 {
			add(AppStoreBase + "/" + s)
		}
	}

	if u, ok := CleanURL(storeURL); ok {
		add(u)
	}
	if name = strings.TrimSpace(name); name != "" {
		addSlug(name)
		addSlug(specialRe.ReplaceAllString(name, ""))
		words := strings.Fields(name)
		addSlug(words[0])
		if len(words) >= 2 {
			addSlug(words[0] + " " + words[1])
		}
	}
	if id := strings.TrimSpace(appID); id != "" {
		if _, err := strconv.ParseUint(id, 10, 64); err == nil {
			add(fmt.Sprintf("%s/app/%s", AppStoreBase, id))
		}
	}
	return out
}
