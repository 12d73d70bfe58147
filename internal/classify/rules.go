package classify

// CategoryRule maps a label to the keywords that indicate it.
type CategoryRule struct {
	Label    string   `yaml:"label"`
	Keywords []string `yaml:"keywords"`
}

// DefaultCategoryRules is evaluated top to bottom; earlier rules win.
var DefaultCategoryRules = []CategoryRule{
	{Label: "Software Engineering", Keywords: []string{
		"software engineer", "software developer", "backend", "back-end", "frontend", "front-end",
		"full stack", "full-stack", "fullstack", "web developer", "mobile developer", "ios developer",
		"android developer", "devops", "site reliability", "platform engineer", "golang", "typescript",
	}},
	{Label: "Data & Analytics", Keywords: []string{
		"data scientist", "data science", "data engineer", "data analyst", "machine learning",
		"deep learning", "analytics", "business intelligence", "statistics",
	}},
	{Label: "Design", Keywords: []string{
		"product designer", "ux designer", "ui designer", "ui/ux", "ux/ui", "graphic design",
		"visual design", "figma", "illustrator",
	}},
	{Label: "Product Management", Keywords: []string{
		"product manager", "product owner", "product management", "roadmap",
	}},
	{Label: "Marketing", Keywords: []string{
		"marketing", "seo", "content writer", "copywriter", "social media", "growth manager",
	}},
	{Label: "Sales", Keywords: []string{
		"sales", "account executive", "business development", "account manager",
	}},
	{Label: "Customer Support", Keywords: []string{
		"customer support", "customer success", "customer service", "help desk", "support specialist",
	}},
	{Label: "Finance", Keywords: []string{
		"accountant", "accounting", "finance", "bookkeeping", "payroll",
	}},
	{Label: "Human Resources", Keywords: []string{
		"recruiter", "recruiting", "talent acquisition", "human resources", "people operations",
	}},
	{Label: "Operations", Keywords: []string{
		"operations", "project manager", "logistics", "administrative", "executive assistant",
	}},
}
