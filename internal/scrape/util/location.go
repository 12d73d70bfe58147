package util

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// FindLocation looks for an explicit location in markup: the given selectors
// first, then a "Location:" label in og:description, then in the body text.
// It returns "" when the page states no location.
func FindLocation(doc *goquery.Document, selectors []string) string {
	for _, sel := range selectors {
		if t := CleanText(doc.Find(sel).First().Text()); t != "" {
			return NormalizeLocation(t)
		}
	}

	if v, ok := doc.Find(`meta[property="og:description"]`).Attr("content"); ok {
		if loc := ExtractLocationFromLabeledText(v); loc != "" {
			return NormalizeLocation(loc)
		}
	}

	body := doc.Find("body").Text()
	if loc := ExtractLocationFromLabeledText(body); loc != "" {
		return NormalizeLocation(loc)
	}

	return ""
}

// locationLabel matches on the original text so byte offsets stay valid
// when case folding would change a rune's width.
var locationLabel = regexp.MustCompile(`(?i)(?:job location|locations?):`)

// ExtractLocationFromLabeledText extracts the text after a "Location:" label.
func ExtractLocationFromLabeledText(s string) string {
	for _, m := range locationLabel.FindAllStringIndex(s, -1) {
		rest := strings.TrimSpace(s[m[1]:])

		// stop at line-ish boundaries
		for _, cut := range []string{"\n", "\r", " | ", " · "} {
			if j := strings.Index(rest, cut); j >= 0 {
				rest = rest[:j]
			}
		}

		rest = CleanText(rest)
		if rest != "" && len(rest) <= 80 {
			return rest
		}
	}
	return ""
}
