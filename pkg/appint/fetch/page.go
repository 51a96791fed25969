package fetch

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
)

// Page is the integration-relevant content of an app listing.
type Page struct {
	URL         string
	Name        string
	Description string
	Sections    []string // features, benefits, integrations
	WorksWith   []string // items listed under a "Works with" heading
	Valid       bool     // the document looks like an app listing
}

// Text joins the description and sections for mention extraction.
func (p Page) Text() string {
	parts := make([]string, 0, 1+len(p.Sections))
	if p.Description != "" {
		parts = append(parts, p.Description)
	}
	parts = append(parts, p.Sections...)
	return strings.Join(parts, "\n")
}

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	nameSuffixRe = regexp.MustCompile(`\s*[-–—]\s*(?:Shopify App|App)\b.*$`)
	worksWithRe  = regexp.MustCompile(`(?i)^\s*works with\s*$`)
)

// section selectors, first match per group wins
var (
	descriptionSel = "div.app-details__description, div.description, div.app-description, div.app-details-description"
	sectionSels    = []string{
		"div.app-details__features, div.features",
		"div.app-details__benefits, div.benefits",
		"div.app-details__integrations, div.integrations",
	}
	indicatorSel = strings.Join([]string{
		"div.app-details", "div.app-listing", "div.app-block", "div.app-listing-hero", "div.app-listing__hero",
		"h1.heading--1", "h1.app-title", "h1.app-listing__heading", "h2.heading--1", "h2.app-title",
		"div.app-description", "div.app-details-description", "div.app-listing__description",
		"div.app-pricing", "div.pricing-section", "div.app-listing__pricing",
		"div.app-developer", "div.developer-info", "div.app-listing__developer",
		"div.app-reviews", "div.reviews-section", "div.app-listing__reviews",
		`main[role="main"]`,
	}, ", ")
)

// ParsePage decodes content to UTF-8 using contentType and any in-document
// charset declaration, then extracts the listing sections.
func ParsePage(content []byte, contentType string) (Page, error) {
	enc, _, _ := charset.DetermineEncoding(content, contentType)
	data, err := enc.NewDecoder().Bytes(content)
	if err != nil {
		if !utf8.Valid(content) {
			return Page{}, err
		}
		data = content
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return Page{}, err
	}
	doc.Find("script:not([type='application/ld+json']),noscript,style").Remove()

	p := Page{
		Name:  pageName(doc),
		Valid: isAppPage(doc),
	}

	p.Description = text(doc.Find(descriptionSel).First())
	if p.Description == "" {
		p.Description = strings.TrimSpace(doc.Find(`meta[property="og:description"]`).AttrOr("content", ""))
	}
	if p.Description == "" {
		p.Description = strings.TrimSpace(doc.Find(`meta[name="description"]`).AttrOr("content", ""))
	}
	for _, sel := range sectionSels {
		if t := text(doc.Find(sel).First()); t != "" {
			p.Sections = append(p.Sections, t)
		}
	}
	p.WorksWith = worksWith(doc)
	return p, nil
}

func text(s *goquery.Selection) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s.Text(), " "))
}

func pageName(doc *goquery.Document) string {
	candidates := []string{
		doc.Find(`meta[property="og:title"]`).AttrOr("content", ""),
		doc.Find("title").First().Text(),
		doc.Find("h1.heading--1, h1.app-title, h1.title, h2.heading--1, h2.app-title, h2.title").First().Text(),
	}
	for _, c := range candidates {
		name, _, _ := strings.Cut(c, "|")
		name = nameSuffixRe.ReplaceAllString(strings.TrimSpace(name), "")
		name = strings.TrimSpace(whitespaceRe.ReplaceAllString(name, " "))
		if name != "" {
			return name
		}
	}
	return ""
}

func isAppPage(doc *goquery.Document) bool {
	if doc.Find(indicatorSel).Length() > 0 {
		return true
	}

	ogTitle := doc.Find(`meta[property="og:title"]`).Length() > 0
	ogType := doc.Find(`meta[property="og:type"]`).Length() > 0
	ogURL := doc.Find(`meta[property="og:url"]`).AttrOr("content", "")
	if ogTitle && ogType && strings.Contains(ogURL, "apps.shopify.com") {
		return true
	}

	found := false
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		found = isSoftwareApplication([]byte(s.Text()))
		return !found
	})
	return found
}

// isSoftwareApplication reports whether a JSON-LD block declares
// @type SoftwareApplication, either directly or in an array or @graph.
func isSoftwareApplication(data []byte) bool {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return false
	}
	return hasSoftwareType(v)
}

func hasSoftwareType(v any) bool {
	switch t := v.(type) {
	case []any:
		for _, e := range t {
			if hasSoftwareType(e) {
				return true
			}
		}
	case map[string]any:
		switch typ := t["@type"].(type) {
		case string:
			if typ == "SoftwareApplication" || typ == "WebApplication" {
				return true
			}
		case []any:
			for _, e := range typ {
				if s, ok := e.(string); ok && (s == "SoftwareApplication" || s == "WebApplication") {
					return true
				}
			}
		}
		if g, ok := t["@graph"]; ok {
			return hasSoftwareType(g)
		}
	}
	return false
}

// worksWith collects link and list item texts from the ul/div siblings
// following a "Works with" heading.
func worksWith(doc *goquery.Document) []string {
	var out []string
	seen := make(map[string]struct{})
	doc.Find("h2, h3, h4, p, span, div, dt, strong").Each(func(_ int, s *goquery.Selection) {
		if s.Children().Length() > 0 || !worksWithRe.MatchString(s.Text()) {
			return
		}
		s.NextAllFiltered("ul, div, dd").Find("a, li").Each(func(_ int, item *goquery.Selection) {
			t := text(item)
			if utf8.RuneCountInString(t) < 2 {
				return
			}
			if _, ok := seen[t]; ok {
				return
			}
			seen[t] = struct{}{}
			out = append(out, t)
		})
	})
	return out
}
