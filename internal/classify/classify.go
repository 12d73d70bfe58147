package classify

import (
	"regexp"
	"strings"

	"jobscout-engine/internal/domain"
)

var employmentPatterns = []struct {
	typ domain.EmploymentType
	re  *regexp.Regexp
}{
	{domain.FullTime, regexp.MustCompile(`(?i)\bfull[\s-]?time\b`)},
	{domain.PartTime, regexp.MustCompile(`(?i)\bpart[\s-]?time\b`)},
	{domain.Contract, regexp.MustCompile(`(?i)\bcontract(s|or|ors|ual)?\b`)},
	{domain.Freelance, regexp.MustCompile(`(?i)\bfreelanc(e|er|ers|ing)\b`)},
	{domain.Internship, regexp.MustCompile(`(?i)\bintern(s|ship|ships)?\b`)},
}

var locationPattern = regexp.MustCompile(`(?i)\b(remote|worldwide|anywhere|united states|usa|canada|mexico|brazil|argentina|latin america|latam|united kingdom|uk|ireland|germany|france|spain|portugal|netherlands|poland|europe|emea|india|pakistan|philippines|singapore|japan|australia|new zealand|asia|apac|africa|nigeria|kenya|south africa)\b`)

// Classifier evaluates category rules over free text. It is immutable after
// construction and safe for concurrent use.
type Classifier struct {
	rules []compiledRule
}

type compiledRule struct {
	label    string
	keywords []string
}

// New builds a Classifier from rules, preserving their order. Empty labels
// and empty keywords are skipped. A nil or empty slice yields
// DefaultCategoryRules.
func New(rules []CategoryRule) *Classifier {
	if len(rules) == 0 {
		rules = DefaultCategoryRules
	}
	c := &Classifier{rules: make([]compiledRule, 0, len(rules))}
	for _, r := range rules {
		label := strings.TrimSpace(r.Label)
		if label == "" {
			continue
		}
		cr := compiledRule{label: label}
		for _, kw := range r.Keywords {
			kw = fold(strings.TrimSpace(kw))
			if kw != "" {
				cr.keywords = append(cr.keywords, kw)
			}
		}
		if len(cr.keywords) > 0 {
			c.rules = append(c.rules, cr)
		}
	}
	return c
}

// Category returns the label of the first rule with a keyword contained in
// text, or "Other".
func (c *Classifier) Category(text string) string {
	blob := fold(text)
	for _, r := range c.rules {
		for _, kw := range r.keywords {
			if strings.Contains(blob, kw) {
				return r.label
			}
		}
	}
	return domain.CategoryOther
}

// EmploymentType returns the first matching type in full-time, part-time,
// contract, freelance, internship order, or "Unknown Type".
func EmploymentType(text string) domain.EmploymentType {
	for _, p := range employmentPatterns {
		if p.re.MatchString(text) {
			return p.typ
		}
	}
	return domain.UnknownType
}

// Location returns the first known location token in text with its original
// casing, or "Location not found".
func Location(text string) string {
	if m := locationPattern.FindString(text); m != "" {
		return m
	}
	return domain.LocationNotFound
}
