package scrape

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"jobscout-engine/internal/scrape/util"
)

// jobPosting holds the schema.org JobPosting fields we fall back to when the
// page markup has no explicit value.
type jobPosting struct {
	Description    string
	DatePosted     string
	EmploymentType string
	Location       string
	Telecommute    bool
}

// findJobPosting returns the first JobPosting found in the page's JSON-LD
// blocks. Blocks may hold one object, an array, or an @graph.
func findJobPosting(doc *goquery.Document) (jobPosting, bool) {
	var (
		jp    jobPosting
		found bool
	)
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var raw any
		if err := json.Unmarshal([]byte(s.Text()), &raw); err != nil {
			return true
		}
		if obj := firstJobPosting(raw); obj != nil {
			jp = parseJobPosting(obj)
			found = true
			return false
		}
		return true
	})
	return jp, found
}

func firstJobPosting(v any) map[string]any {
	switch t := v.(type) {
	case []any:
		for _, it := range t {
			if obj := firstJobPosting(it); obj != nil {
				return obj
			}
		}
	case map[string]any:
		if isType(t["@type"], "JobPosting") {
			return t
		}
		if g, ok := t["@graph"]; ok {
			return firstJobPosting(g)
		}
	}
	return nil
}

func isType(v any, want string) bool {
	switch t := v.(type) {
	case string:
		return strings.EqualFold(t, want)
	case []any:
		for _, it := range t {
			if isType(it, want) {
				return true
			}
		}
	}
	return false
}

func parseJobPosting(obj map[string]any) jobPosting {
	jp := jobPosting{
		Description:    htmlToText(str(obj["description"])),
		DatePosted:     util.CleanText(str(obj["datePosted"])),
		EmploymentType: strings.Join(strs(obj["employmentType"]), " "),
	}
	for _, lt := range strs(obj["jobLocationType"]) {
		if strings.EqualFold(lt, "TELECOMMUTE") {
			jp.Telecommute = true
		}
	}
	jp.Location = postingLocation(obj["jobLocation"])
	return jp
}

// postingLocation flattens the first jobLocation's postal address into
// "Locality, Region, Country".
func postingLocation(v any) string {
	switch t := v.(type) {
	case []any:
		for _, it := range t {
			if loc := postingLocation(it); loc != "" {
				return loc
			}
		}
	case map[string]any:
		addr, ok := t["address"].(map[string]any)
		if !ok {
			return util.CleanText(str(t["name"]))
		}
		country := str(addr["addressCountry"])
		if c, ok := addr["addressCountry"].(map[string]any); ok {
			country = str(c["name"])
		}
		return util.NormalizeLocation(strings.Join([]string{
			str(addr["addressLocality"]),
			str(addr["addressRegion"]),
			country,
		}, ","))
	}
	return ""
}

func htmlToText(s string) string {
	if !strings.Contains(s, "<") {
		return util.CleanText(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return util.CleanText(s)
	}
	return util.CleanText(doc.Text())
}

func str(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

func strs(v any) []string {
	switch t := v.(type) {
	case string:
		if t = strings.TrimSpace(t); t != "" {
			return []string{t}
		}
	case []any:
		var out []string
		for _, it := range t {
			if s := str(it); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
