package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFailedRecord_KeepsDiscoveredFields(t *testing.T) {
	c := ListingCandidate{Title: "Backend Engineer", Company: "Acme", Link: "https://example.com/jobs/1"}

	r := FailedRecord(c)

	assert.Equal(t, "Backend Engineer", r.Title)
	assert.Equal(t, "Acme", r.Company)
	assert.Equal(t, "https://example.com/jobs/1", r.Link)
	assert.Equal(t, FailedDescription, r.Description)
	assert.Equal(t, ErrorType, r.EmploymentType)
	assert.Equal(t, FailedLocation, r.Location)
	assert.Equal(t, FailedDate, r.PostedDate)
	assert.Equal(t, StatusFailed, r.Status)
}

func TestFailedRecord_PlaceholderTitleBecomesUnknown(t *testing.T) {
	r := FailedRecord(ListingCandidate{Title: TitleNotFound, Company: CompanyNotFound, Link: "https://example.com/jobs/2"})

	assert.Equal(t, FailedTitle, r.Title)
	assert.Equal(t, CompanyNotFound, r.Company)
}

func TestDetailRecord_JSONKeys(t *testing.T) {
	b, err := json.Marshal(DetailRecord{
		Title:          "t",
		Company:        "c",
		Link:           "l",
		Description:    "d",
		EmploymentType: FullTime,
		Location:       "Remote",
		PostedDate:     "2026-01-01",
		Status:         StatusOK,
	})
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))

	for _, k := range []string{"jobTitle", "jobCompany", "jobLink", "jobDescription", "jobType", "jobLocation", "jobDate"} {
		assert.Contains(t, m, k)
	}
	assert.Len(t, m, 7)
	assert.Equal(t, "Full-time", m["jobType"])
}
