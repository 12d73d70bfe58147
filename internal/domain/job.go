package domain

// Placeholders written by discovery when a listing element lacks a field.
const (
	TitleNotFound   = "Title not found"
	CompanyNotFound = "Company not found"
)

// Sentinels written by enrichment.
const (
	NoDescription    = "No description found"
	DateNotFound     = "Date not found"
	LocationNotFound = "Location not found"
	CategoryOther    = "Other"

	FailedDescription = "Failed to load"
	FailedDate        = "Error"
	FailedLocation    = "Unknown"
	FailedTitle       = "Unknown"
)

type EmploymentType string

const (
	FullTime    EmploymentType = "Full-time"
	PartTime    EmploymentType = "Part-time"
	Contract    EmploymentType = "Contract"
	Freelance   EmploymentType = "Freelance"
	Internship  EmploymentType = "Internship"
	UnknownType EmploymentType = "Unknown Type"
	ErrorType   EmploymentType = "Error"
)

type Status string

const (
	StatusOK     Status = "ok"
	StatusFailed Status = "failed"
)

// ListingCandidate is one entry discovered on a listing page.
// Link is always absolute.
type ListingCandidate struct {
	Title   string
	Company string
	Link    string
}

// HasTitle reports whether discovery found a real title for the candidate.
func (c ListingCandidate) HasTitle() bool {
	return c.Title != "" && c.Title != TitleNotFound
}

// DetailRecord is the enriched output for exactly one candidate.
// The JSON keys are fixed for existing consumers; Status is internal.
type DetailRecord struct {
	Title          string         `json:"jobTitle"`
	Company        string         `json:"jobCompany"`
	Link           string         `json:"jobLink"`
	Description    string         `json:"jobDescription"`
	EmploymentType EmploymentType `json:"jobType"`
	Location       string         `json:"jobLocation"`
	PostedDate     string         `json:"jobDate"`
	Status         Status         `json:"-"`
}

// FailedRecord builds the fallback record for a candidate whose detail page
// could not be enriched.
func FailedRecord(c ListingCandidate) DetailRecord {
	title := c.Title
	if !c.HasTitle() {
		title = FailedTitle
	}
	company := c.Company
	if company == "" {
		company = CompanyNotFound
	}
	return DetailRecord{
		Title:          title,
		Company:        company,
		Link:           c.Link,
		Description:    FailedDescription,
		EmploymentType: ErrorType,
		Location:       FailedLocation,
		PostedDate:     FailedDate,
		Status:         StatusFailed,
	}
}
